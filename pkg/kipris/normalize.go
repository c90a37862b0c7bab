package kipris

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/clbanning/mxj/v2"
)

const snippetLength = 256

// Tree is a decoded response document. Each element maps to its children;
// repeated sibling elements become a []any in document order, leaf elements
// become strings and attributes are keyed with a leading "-".
type Tree map[string]any

// Normalize decodes body into a Tree. Empty or malformed documents yield an
// empty Tree; the parse failure is logged with a truncated snippet of the input.
func Normalize(ctx context.Context, body string) Tree {
	if strings.TrimSpace(body) == "" {
		return Tree{}
	}

	m, err := mxj.NewMapXml([]byte(body))
	if err != nil {
		log.FromContext(ctx).Error("malformed kipris response",
			"error", err,
			"snippet", truncate(body, snippetLength),
		)
		return Tree{}
	}

	return Tree(m)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
