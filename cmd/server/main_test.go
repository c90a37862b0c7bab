package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nuri428/mcp-kipris/pkg/config"
	"github.com/nuri428/mcp-kipris/pkg/kipris"
	"github.com/nuri428/mcp-kipris/pkg/tools"
	. "github.com/smartystreets/goconvey/convey"
)

type emptySearcher struct{}

func (emptySearcher) Search(context.Context, kipris.Request) (kipris.RecordSet, error) {
	return nil, nil
}

func TestBuildServer(t *testing.T) {
	Convey("Given a server built with a searcher that finds nothing", t, func() {
		var buf bytes.Buffer
		logger := log.New(&buf)

		mcpServer, registry, err := buildServer(emptySearcher{}, logger)
		So(err, ShouldBeNil)

		Convey("Every patent tool is exposed on the server", func() {
			So(registry.Len(), ShouldEqual, 15)
			So(len(mcpServer.ListTools()), ShouldEqual, 15)
			So(mcpServer.GetTool("patent_applicant_search"), ShouldNotBeNil)
			So(mcpServer.GetTool("foreign_international_open_number_search"), ShouldNotBeNil)
		})

		Convey("A registered handler answers with the no-result text", func() {
			registered := mcpServer.GetTool("patent_free_search")
			result, err := registered.Handler(context.Background(), mcp.CallToolRequest{
				Params: mcp.CallToolParams{Name: "patent_free_search", Arguments: map[string]any{"word": "배터리"}},
			})
			So(err, ShouldBeNil)

			text, ok := mcp.AsTextContent(result.Content[0])
			So(ok, ShouldBeTrue)
			So(text.Text, ShouldEqual, tools.NoResultText)
		})
	})
}

func TestWriteTools(t *testing.T) {
	Convey("Given the tool dump", t, func() {
		var buf bytes.Buffer
		So(writeTools(&buf), ShouldBeNil)

		var dumped []map[string]any
		So(json.Unmarshal(buf.Bytes(), &dumped), ShouldBeNil)

		Convey("It lists every tool as an OpenAI function", func() {
			So(len(dumped), ShouldEqual, 15)
			So(dumped[0]["type"], ShouldEqual, "function")
			function := dumped[0]["function"].(map[string]any)
			So(function["name"], ShouldEqual, "patent_applicant_search")
		})
	})
}

func TestNewLogger(t *testing.T) {
	Convey("Given logging settings", t, func() {
		cfg := &config.Config{}

		Convey("A known level is honoured", func() {
			cfg.Log.Level = "debug"
			cfg.Log.Format = "json"
			logger := newLogger(cfg, &bytes.Buffer{})
			So(logger.GetLevel(), ShouldEqual, log.DebugLevel)
		})

		Convey("An unknown level falls back to info with a warning", func() {
			var buf bytes.Buffer
			cfg.Log.Level = "chatty"
			cfg.Log.Format = "text"
			logger := newLogger(cfg, &buf)
			So(logger.GetLevel(), ShouldEqual, log.InfoLevel)
			So(buf.String(), ShouldContainSubstring, "unknown log level")
		})
	})
}
