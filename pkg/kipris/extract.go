package kipris

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/clbanning/mxj/v2"
	"github.com/cockroachdb/errors"
)

var (
	ErrEmptyPath = errors.New("extraction path is empty")
	ErrBadPath   = errors.New("extraction path has an empty segment")
)

// HeaderPath locates the diagnostic header every KIPRIS response carries.
var HeaderPath = MustParsePath("response.header")

// Path is a parsed dotted extraction path such as "response.body.items.item".
type Path []string

// ParsePath splits a dotted path. Empty paths and empty segments are rejected.
func ParsePath(s string) (Path, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptyPath
	}

	segments := strings.Split(s, ".")
	for i, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return nil, errors.Wrapf(ErrBadPath, "segment %d of %q", i, s)
		}
	}

	return Path(segments), nil
}

// MustParsePath is ParsePath for static paths; it panics on a malformed path.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

func (p Path) last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Lookup walks tree one segment at a time and returns def as soon as a segment
// is missing or the walk reaches something that is not a mapping.
func Lookup(tree Tree, path Path, def any) any {
	var current any = map[string]any(tree)

	for _, key := range path {
		m, ok := asMap(current)
		if !ok {
			return def
		}

		next, ok := m[key]
		if !ok {
			return def
		}
		current = next
	}

	return current
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Tree:
		return m, true
	case mxj.Map:
		return m, true
	default:
		return nil, false
	}
}

// Record is one result row. Field names are the XML element and attribute names
// found under the extraction path.
type Record map[string]string

// RecordSet is an ordered list of records; empty means "no data".
type RecordSet []Record

// Fields returns every field name present in the set, sorted.
func (rs RecordSet) Fields() []string {
	seen := make(map[string]struct{})
	for _, record := range rs {
		for field := range record {
			seen[field] = struct{}{}
		}
	}

	fields := make([]string, 0, len(seen))
	for field := range seen {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	return fields
}

// Extract returns the records stored at path. A single mapping yields a
// one-element set. When nothing is found the response header is logged so the
// upstream reason (bad key, quota, no match) is visible.
func Extract(ctx context.Context, tree Tree, path Path) RecordSet {
	records := toRecords(Lookup(tree, path, nil), path.last())
	if len(records) == 0 {
		logHeader(ctx, tree, path)
	}
	return records
}

func toRecords(value any, scalarField string) RecordSet {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		records := make(RecordSet, 0, len(v))
		for _, item := range v {
			if record, ok := toRecord(item, scalarField); ok {
				records = append(records, record)
			}
		}
		if len(records) == 0 {
			return nil
		}
		return records
	default:
		if record, ok := toRecord(v, scalarField); ok {
			return RecordSet{record}
		}
		return nil
	}
}

func toRecord(value any, scalarField string) (Record, bool) {
	if m, ok := asMap(value); ok {
		record := make(Record, len(m))
		for key, field := range m {
			if !strings.HasPrefix(key, "-") {
				record[key] = stringify(leafValue(field))
			}
		}
		// Attributes lose their "-" unless a child element already owns the name.
		for key, field := range m {
			if name, ok := strings.CutPrefix(key, "-"); ok {
				if _, taken := record[name]; taken {
					name = key
				}
				record[name] = stringify(field)
			}
		}
		return record, true
	}

	text := stringify(value)
	if text == "" {
		return nil, false
	}
	return Record{scalarField: text}, true
}

// leafValue unwraps an element that carries attributes around plain text,
// e.g. <ApplicationNumber kind="x">123</ApplicationNumber>, to its text.
func leafValue(value any) any {
	m, ok := asMap(value)
	if !ok {
		return value
	}

	text, ok := m["#text"]
	if !ok {
		return value
	}
	for key := range m {
		if key != "#text" && !strings.HasPrefix(key, "-") {
			return value
		}
	}
	return text
}

// stringify renders leaf values as-is and nested structures as compact JSON.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Sprint(value)
	}
	return strings.TrimSpace(buf.String())
}

func logHeader(ctx context.Context, tree Tree, path Path) {
	logger := log.FromContext(ctx)

	logger.Info("kipris response has no records", "path", path.String())

	if header := Lookup(tree, HeaderPath, nil); header != nil {
		logger.Warn("kipris response header", "header", truncate(stringify(header), snippetLength))
	}
}
