// Package kipris implements the request and response pipeline for the KIPRIS Plus
// XML search API: query construction, transport, XML normalization and record
// extraction.
package kipris

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"
)

// Credential field names used by the two KIPRIS API families.
const (
	FieldAccessKey  = "accessKey"
	FieldServiceKey = "ServiceKey"
)

// Credential is the account key together with the query field it travels under.
type Credential struct {
	Field string
	Value string
}

// BuildURL encodes params onto endpoint. Names are converted to lowerCamelCase,
// nil and empty-string values are dropped, and the credential is written last so
// a caller-supplied value for the same field never survives.
func BuildURL(endpoint string, cred Credential, params map[string]any) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrapf(err, "parse endpoint %q", endpoint)
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	query := u.Query()
	for _, name := range names {
		text, ok := formatValue(params[name])
		if !ok {
			continue
		}

		key := strcase.ToLowerCamel(name)
		if cred.Field != "" && strings.EqualFold(key, cred.Field) {
			continue
		}
		query.Set(key, text)
	}

	if cred.Field != "" {
		query.Set(cred.Field, cred.Value)
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}

// formatValue renders a parameter value as query text. The second result is
// false when the value should be left out of the query entirely.
func formatValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case *string:
		if v == nil {
			return "", false
		}
		return *v, *v != ""
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case float32:
		return formatFloat(float64(v)), true
	case float64:
		return formatFloat(v), true
	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	default:
		s := fmt.Sprint(v)
		return s, s != ""
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// redactURL masks credential values so request URLs can be logged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}

	query := u.Query()
	for key := range query {
		if strings.EqualFold(key, FieldAccessKey) || strings.EqualFold(key, FieldServiceKey) {
			query.Set(key, "REDACTED")
		}
	}
	u.RawQuery = query.Encode()

	return u.String()
}
