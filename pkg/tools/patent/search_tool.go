// Package patent exposes KIPRIS patent searches as MCP tools. Every tool is
// driven by one Definition row; SearchTool is the only implementation.
package patent

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nuri428/mcp-kipris/pkg/kipris"
	"github.com/nuri428/mcp-kipris/pkg/tools"
	"github.com/nuri428/mcp-kipris/pkg/tools/utils"
)

// Searcher runs one request through the KIPRIS pipeline.
type Searcher interface {
	Search(ctx context.Context, req kipris.Request) (kipris.RecordSet, error)
}

// SearchTool serves one Definition.
type SearchTool struct {
	*tools.BaseTool
	def      Definition
	path     kipris.Path
	searcher Searcher
	validate *validator.Validate
}

// NewSearchTool builds the tool for def. A malformed extraction path is a
// programming error and is reported here rather than on first call.
func NewSearchTool(def Definition, searcher Searcher, validate *validator.Validate) (*SearchTool, error) {
	path, err := kipris.ParsePath(def.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "tool %s", def.Name)
	}

	if validate == nil {
		validate = validator.New()
	}

	return &SearchTool{
		BaseTool: tools.NewBaseTool(def.Name, buildHandle(def)),
		def:      def,
		path:     path,
		searcher: searcher,
		validate: validate,
	}, nil
}

func buildHandle(def Definition) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(def.Description),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	}
	if def.Title != "" {
		opts = append(opts, mcp.WithTitleAnnotation(def.Title))
	}

	for _, p := range def.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}

		switch p.Kind {
		case KindInteger:
			props = append(props, integerType)
			if n, ok := p.Default.(int); ok {
				props = append(props, mcp.DefaultNumber(float64(n)))
			}
			if p.Range != nil {
				props = append(props, mcp.Min(float64(p.Range.Min)), mcp.Max(float64(p.Range.Max)))
			}
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case KindBoolean:
			if b, ok := p.Default.(bool); ok {
				props = append(props, mcp.DefaultBool(b))
			}
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		default:
			if len(p.Enum) > 0 {
				props = append(props, mcp.Enum(p.Enum...))
			}
			if s, ok := p.Default.(string); ok {
				props = append(props, mcp.DefaultString(s))
			}
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}

	return mcp.NewTool(def.Name, opts...)
}

// integerType narrows a number property to whole numbers in the schema.
func integerType(schema map[string]any) {
	schema["type"] = "integer"
}

// Handler validates the arguments, runs the search and renders the records.
// Bad arguments come back as an error result; an empty search as NoResultText.
func (t *SearchTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params, err := t.decode(request)
	if err != nil {
		log.FromContext(ctx).Warn("invalid arguments", "tool", t.def.Name, "error", err)
		return utils.HandleParameterError(err), nil
	}

	records, err := t.searcher.Search(ctx, kipris.Request{
		Endpoint:        t.def.Endpoint,
		CredentialField: t.def.CredentialField,
		Params:          params,
		Path:            t.path,
	})
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "tool %s", t.def.Name), tools.ErrExternalAPIError)
	}

	if len(records) == 0 {
		return tools.NewTextResult(tools.NoResultText), nil
	}

	text, err := Render(t.def, records)
	if err != nil {
		return tools.NewErrorResult(errors.Mark(errors.Wrap(err, "render results"), tools.ErrInternalError)), nil
	}

	return tools.NewTextResult(text), nil
}

// decode reads every declared argument, fills defaults and validates the
// result. The returned map is keyed by upstream parameter name.
func (t *SearchTool) decode(request mcp.CallToolRequest) (map[string]any, error) {
	params := make(map[string]any, len(t.def.Params))

	for _, p := range t.def.Params {
		value, err := t.argument(request, p)
		if err != nil {
			return nil, err
		}

		if rule := rules(p); rule != "" {
			if err := t.validate.Var(value, rule); err != nil {
				return nil, describe(p, err)
			}
		}

		params[p.upstream()] = value
	}

	return params, nil
}

func (t *SearchTool) argument(request mcp.CallToolRequest, p Param) (any, error) {
	supplied := utils.HasParam(request, p.Name)
	if !supplied && !p.Required && p.Default != nil {
		return p.Default, nil
	}

	switch p.Kind {
	case KindInteger:
		return utils.GetIntParam(request, p.Name, p.Required)
	case KindBoolean:
		return utils.GetBoolParam(request, p.Name, p.Required)
	default:
		return utils.GetStringParam(request, p.Name, p.Required)
	}
}

// rules turns a Param's constraints into a validator tag.
func rules(p Param) string {
	var tags []string

	if p.Kind == KindString {
		if p.Required {
			tags = append(tags, "required")
		} else if len(p.Enum) > 0 || p.Rules != "" {
			tags = append(tags, "omitempty")
		}

		if choices := nonEmpty(p.Enum); len(choices) > 0 {
			tags = append(tags, "oneof="+strings.Join(choices, " "))
		}
	}

	if p.Range != nil {
		tags = append(tags, fmt.Sprintf("gte=%d,lte=%d", p.Range.Min, p.Range.Max))
	}

	if p.Rules != "" {
		tags = append(tags, p.Rules)
	}

	return strings.Join(tags, ",")
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func describe(p Param, err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return errors.Mark(errors.Wrapf(err, "'%s'", p.Name), tools.ErrInvalidParams)
	}

	fe := fieldErrors[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("'%s' is required", p.Name)
	case "oneof":
		msg = fmt.Sprintf("'%s' must be one of: %s", p.Name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte", "lte":
		if p.Range == nil {
			msg = fmt.Sprintf("'%s' failed %s=%s", p.Name, fe.Tag(), fe.Param())
			break
		}
		msg = fmt.Sprintf("'%s' must be between %d and %d", p.Name, p.Range.Min, p.Range.Max)
	case "max":
		msg = fmt.Sprintf("'%s' must be at most %s characters", p.Name, fe.Param())
	default:
		msg = fmt.Sprintf("'%s' failed %s=%s", p.Name, fe.Tag(), fe.Param())
	}

	return errors.Mark(errors.New(msg), tools.ErrInvalidParams)
}
