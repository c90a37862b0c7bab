// Command server is the main entry point for the KIPRIS patent search MCP server
package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nuri428/mcp-kipris/core"
	"github.com/nuri428/mcp-kipris/core/middleware"
	"github.com/nuri428/mcp-kipris/pkg/config"
	"github.com/nuri428/mcp-kipris/pkg/kipris"
	"github.com/nuri428/mcp-kipris/pkg/tools/patent"
	"github.com/spf13/pflag"
)

const (
	serverName    = "mcp-kipris"
	serverVersion = "0.2.0"

	instructions = "KIPRIS patent search tools. Korean tools search the Korean patent and utility model " +
		"database; foreign_* tools search US, EP, WO, JP, CN and other collections mirrored by KIPRIS."
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet(serverName, pflag.ContinueOnError)
	config.RegisterFlags(fs)
	dumpTools := fs.Bool("dump-tools", false, "print the tool definitions in OpenAI function format and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, os.Stderr)
	log.SetDefault(logger)

	if *dumpTools {
		return writeTools(stdout)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := kipris.New(cfg.KIPRIS.APIKey,
		kipris.WithBaseURL(cfg.KIPRIS.BaseURL),
		kipris.WithTimeouts(cfg.KIPRIS.ConnectTimeout, cfg.KIPRIS.ResponseTimeout),
		kipris.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	mcpServer, registry, err := buildServer(client, logger)
	if err != nil {
		return err
	}

	logger.Info("starting server",
		"transport", cfg.Server.Transport,
		"tools", registry.Len(),
		"kipris", client.BaseURL(),
	)

	return serve(cfg, mcpServer, logger)
}

// buildServer creates the MCP server and registers every patent tool on it.
func buildServer(searcher patent.Searcher, logger *log.Logger) (*server.MCPServer, *core.Registry, error) {
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithLogging(),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(middleware.Logging(logger)),
		server.WithInstructions(instructions),
	)

	registry := core.NewRegistry(mcpServer)

	tools, err := patent.RegisterPatentTools(searcher)
	if err != nil {
		return nil, nil, err
	}
	if err := registry.RegisterTools(tools...); err != nil {
		return nil, nil, err
	}

	return mcpServer, registry, nil
}

func writeTools(w io.Writer) error {
	tools, err := patent.RegisterPatentTools(nil)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(patent.ToOpenAITools(tools))
}

func serve(cfg *config.Config, mcpServer *server.MCPServer, logger *log.Logger) error {
	switch cfg.Server.Transport {
	case config.TransportSSE:
		opts := []server.SSEOption{}
		if cfg.Server.PublicURL != "" {
			opts = append(opts, server.WithBaseURL(cfg.Server.PublicURL))
		}
		sse := server.NewSSEServer(mcpServer, opts...)
		return listen(cfg.Server.Addr, sse.Start, sse.Shutdown, logger)

	case config.TransportHTTP:
		streamable := server.NewStreamableHTTPServer(mcpServer, server.WithLogger(logger))
		return listen(cfg.Server.Addr, streamable.Start, streamable.Shutdown, logger)

	default:
		errorLogger := logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})
		if err := server.ServeStdio(mcpServer, server.WithErrorLogger(errorLogger)); err != nil {
			return errors.Wrap(err, "stdio server")
		}
		logger.Info("server shutdown complete")
		return nil
	}
}

// listen runs a network transport until it fails or the process is signalled,
// then shuts it down gracefully.
func listen(
	addr string,
	start func(string) error,
	shutdown func(context.Context) error,
	logger *log.Logger,
) error {
	errs := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errs <- start(addr)
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "listen on %s", addr)
	case sig := <-signals:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	logger.Info("server shutdown complete")
	return nil
}
