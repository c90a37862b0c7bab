// Package middleware provides middleware components for MCP tool handlers
package middleware

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Logging gives every tool call its own logger, tagged with the tool name and
// a fresh call id, and stores it in the context for the handler and the
// KIPRIS pipeline beneath it. Start, outcome and elapsed time are logged.
func Logging(logger *log.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			callLogger := logger.With("tool", request.Params.Name, "call_id", uuid.NewString())
			ctx = log.WithContext(ctx, callLogger)

			started := time.Now()
			callLogger.Info("tool call started", "args", argumentNames(request))

			result, err := next(ctx, request)

			elapsed := time.Since(started).Round(time.Millisecond)
			switch {
			case err != nil:
				callLogger.Error("tool call failed", "elapsed", elapsed, "error", err)
			case result != nil && result.IsError:
				callLogger.Warn("tool call rejected", "elapsed", elapsed, "reason", firstText(result))
			default:
				callLogger.Info("tool call finished", "elapsed", elapsed)
			}

			return result, err
		}
	}
}

func argumentNames(request mcp.CallToolRequest) string {
	args := request.GetArguments()
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func firstText(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			return text.Text
		}
	}
	return ""
}
