package main

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/nuri428/mcp-kipris/pkg/config"
)

// newLogger builds the root logger. It writes to w, never stdout, since the
// stdio transport owns stdout.
func newLogger(cfg *config.Config, w io.Writer) *log.Logger {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}

	formatter := log.TextFormatter
	switch cfg.Log.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "mcp-kipris",
		ReportTimestamp: true,
		Formatter:       formatter,
	})

	if err != nil {
		logger.Warn("unknown log level, using info", "level", cfg.Log.Level)
	}

	return logger
}
