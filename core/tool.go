// Package core holds the contract every MCP tool satisfies and the registry
// that binds tools to a server.
package core

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool is one callable MCP tool: its schema and the handler that serves it.
// Handler is the only call contract; the server runs handlers on their own
// goroutines, so a tool never offers a separate async entry point.
type Tool interface {
	Handle() mcp.Tool
	Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}
