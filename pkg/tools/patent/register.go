package patent

import (
	"github.com/go-playground/validator/v10"
	"github.com/nuri428/mcp-kipris/core"
	"github.com/nuri428/mcp-kipris/pkg/tools"
	"github.com/openai/openai-go"
)

// RegisterPatentTools builds a SearchTool for every row of the search table.
func RegisterPatentTools(searcher Searcher) ([]core.Tool, error) {
	validate := validator.New()
	definitions := Definitions()

	list := make([]core.Tool, 0, len(definitions))
	for _, def := range definitions {
		tool, err := NewSearchTool(def, searcher, validate)
		if err != nil {
			return nil, err
		}
		list = append(list, tool)
	}

	return list, nil
}

// ToOpenAITools returns the tools that can describe themselves in OpenAI format
func ToOpenAITools(list []core.Tool) []openai.ChatCompletionToolParam {
	described := make([]tools.Tool, 0, len(list))
	for _, tool := range list {
		if t, ok := tool.(tools.Tool); ok {
			described = append(described, t)
		}
	}

	return tools.GetOpenAITools(described)
}
