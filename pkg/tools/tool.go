// Package tools provides interfaces and helpers shared by the MCP tools
package tools

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/openai/openai-go"
)

// Standard errors for consistent error handling
var (
	ErrInvalidParams    = errors.New("invalid parameters")
	ErrExternalAPIError = errors.New("external API error")
	ErrInternalError    = errors.New("internal server error")
)

// NoResultText is returned in place of an empty result table.
const NoResultText = "검색 결과가 없습니다."

// Tool defines the interface for all tools in the system
type Tool interface {
	// Handle returns the underlying MCP tool
	Handle() mcp.Tool

	// ToOpenAITool converts the tool to OpenAI format
	ToOpenAITool() openai.ChatCompletionToolParam

	// Handler processes tool requests and returns responses
	Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

	// Name returns the name of the tool
	Name() string
}

// BaseTool provides common functionality for all tools
type BaseTool struct {
	name   string
	handle mcp.Tool
}

// NewBaseTool creates a new BaseTool with the given name and handle
func NewBaseTool(name string, handle mcp.Tool) *BaseTool {
	return &BaseTool{
		name:   name,
		handle: handle,
	}
}

// Handle returns the MCP Tool definition
func (b *BaseTool) Handle() mcp.Tool {
	return b.handle
}

// Name returns the name of the tool
func (b *BaseTool) Name() string {
	return b.name
}

// ToOpenAITool exposes the MCP input schema as an OpenAI function definition.
func (b *BaseTool) ToOpenAITool() openai.ChatCompletionToolParam {
	return OpenAIToolFromMCP(b.handle)
}

// OpenAIToolFromMCP converts an MCP tool definition to OpenAI function-calling format.
func OpenAIToolFromMCP(tool mcp.Tool) openai.ChatCompletionToolParam {
	properties := tool.InputSchema.Properties
	if properties == nil {
		properties = map[string]any{}
	}

	parameters := openai.FunctionParameters{
		"type":       "object",
		"properties": properties,
	}
	if len(tool.InputSchema.Required) > 0 {
		parameters["required"] = tool.InputSchema.Required
	}

	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  parameters,
		},
	}
}

// NewErrorResult creates a standard error result
func NewErrorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

// NewTextResult creates a standard text result
func NewTextResult(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

// GetOpenAITools converts a slice of tools to OpenAI format
func GetOpenAITools(tools []Tool) []openai.ChatCompletionToolParam {
	openaiTools := make([]openai.ChatCompletionToolParam, len(tools))
	for i, tool := range tools {
		openaiTools[i] = tool.ToOpenAITool()
	}
	return openaiTools
}
