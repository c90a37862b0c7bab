package core

import (
	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/server"
)

var (
	ErrDuplicateTool = errors.New("tool already registered")
	ErrUnnamedTool   = errors.New("tool has no name")
)

/*
Registry manages tool registration for one MCP server. It is built once at
startup and handed to whatever needs the tool list; there is no package level
registry.
*/
type Registry struct {
	server *server.MCPServer
	tools  map[string]Tool
	order  []string
}

// NewRegistry creates a registry bound to mcpServer. A nil server is allowed
// for callers that only need the tool list, such as schema export.
func NewRegistry(mcpServer *server.MCPServer) *Registry {
	return &Registry{
		server: mcpServer,
		tools:  make(map[string]Tool),
	}
}

// RegisterTool adds tool under the name in its schema and exposes it on the server.
func (r *Registry) RegisterTool(tool Tool) error {
	name := tool.Handle().Name
	if name == "" {
		return ErrUnnamedTool
	}

	if _, exists := r.tools[name]; exists {
		return errors.Wrapf(ErrDuplicateTool, "%q", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)

	if r.server != nil {
		r.server.AddTool(tool.Handle(), tool.Handler)
	}

	return nil
}

// RegisterTools registers each tool in turn and stops at the first failure.
func (r *Registry) RegisterTools(tools ...Tool) error {
	for _, tool := range tools {
		if err := r.RegisterTool(tool); err != nil {
			return err
		}
	}
	return nil
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Len reports how many tools are registered.
func (r *Registry) Len() int {
	return len(r.order)
}
