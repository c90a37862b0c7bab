// Package config provides centralized configuration management for the KIPRIS MCP server.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nuri428/mcp-kipris/pkg/kipris"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Transports the server can speak.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Config holds the complete configuration for the application
type Config struct {
	// KIPRIS Plus API access
	KIPRIS struct {
		APIKey          string
		BaseURL         string
		ConnectTimeout  time.Duration
		ResponseTimeout time.Duration
	}

	// MCP server transport
	Server struct {
		Transport string
		Addr      string
		PublicURL string
	}

	Log struct {
		Level  string
		Format string
	}
}

// setting ties a viper key to its environment variable and default.
type setting struct {
	key string
	env string
	def any
}

var settings = []setting{
	{"kipris.api_key", "KIPRIS_API_KEY", ""},
	{"kipris.base_url", "KIPRIS_BASE_URL", kipris.DefaultBaseURL},
	{"kipris.connect_timeout", "KIPRIS_CONNECT_TIMEOUT", kipris.DefaultConnectTimeout.String()},
	{"kipris.response_timeout", "KIPRIS_RESPONSE_TIMEOUT", kipris.DefaultResponseTimeout.String()},
	{"server.transport", "MCP_TRANSPORT", TransportStdio},
	{"server.addr", "MCP_ADDR", ":8000"},
	{"server.public_url", "MCP_PUBLIC_URL", ""},
	{"log.level", "LOG_LEVEL", "info"},
	{"log.format", "LOG_FORMAT", "text"},
}

// flagKeys maps command line flags onto viper keys.
var flagKeys = map[string]string{
	"base-url":   "kipris.base_url",
	"transport":  "server.transport",
	"addr":       "server.addr",
	"public-url": "server.public_url",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// RegisterFlags adds the server's flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("env-file", ".env", "dotenv file to read settings from, if present")
	fs.String("base-url", "", "KIPRIS Plus base URL")
	fs.StringP("transport", "t", "", "MCP transport: stdio, sse or http")
	fs.String("addr", "", "listen address for the sse and http transports")
	fs.String("public-url", "", "externally visible base URL for the sse transport")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.String("log-format", "", "log format: text, json or logfmt")
}

// Load reads configuration from defaults, an optional dotenv file, the
// environment and finally any flags set on fs (which may be nil).
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	dotenv, err := readDotenv(fs)
	if err != nil {
		return nil, err
	}

	for _, s := range settings {
		def := s.def
		if dotenv != nil && dotenv.IsSet(strings.ToLower(s.env)) {
			def = dotenv.GetString(strings.ToLower(s.env))
		}
		v.SetDefault(s.key, def)

		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, errors.Wrapf(err, "bind %s", s.env)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			flag := fs.Lookup(name)
			if flag == nil || !flag.Changed {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errors.Wrapf(err, "bind flag --%s", name)
			}
		}
	}

	config := &Config{}

	config.KIPRIS.APIKey = strings.TrimSpace(v.GetString("kipris.api_key"))
	config.KIPRIS.BaseURL = v.GetString("kipris.base_url")
	if config.KIPRIS.ConnectTimeout, err = duration(v, "kipris.connect_timeout"); err != nil {
		return nil, err
	}
	if config.KIPRIS.ResponseTimeout, err = duration(v, "kipris.response_timeout"); err != nil {
		return nil, err
	}

	config.Server.Transport = strings.ToLower(v.GetString("server.transport"))
	config.Server.Addr = v.GetString("server.addr")
	config.Server.PublicURL = v.GetString("server.public_url")

	config.Log.Level = v.GetString("log.level")
	config.Log.Format = strings.ToLower(v.GetString("log.format"))

	return config, nil
}

func readDotenv(fs *pflag.FlagSet) (*viper.Viper, error) {
	path := ".env"
	if fs != nil {
		if flag := fs.Lookup("env-file"); flag != nil {
			path = flag.Value.String()
		}
	}
	if path == "" {
		return nil, nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(path)
	dotenv.SetConfigType("env")
	if err := dotenv.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	return dotenv, nil
}

// duration accepts Go duration text ("90s") or a bare number of seconds.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid duration for %s", key)
	}
	return d, nil
}

// Validate checks if all required configuration values are set
func (c *Config) Validate() error {
	var problems []string

	switch c.Server.Transport {
	case TransportStdio, TransportSSE, TransportHTTP:
	default:
		problems = append(problems, "unknown transport "+strconv.Quote(c.Server.Transport))
	}

	if c.Server.Transport != TransportStdio && c.Server.Addr == "" {
		problems = append(problems, "listen address is required for "+c.Server.Transport)
	}

	if c.KIPRIS.ConnectTimeout <= 0 || c.KIPRIS.ResponseTimeout <= 0 {
		problems = append(problems, "timeouts must be positive")
	}

	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		problems = append(problems, "unknown log format "+strconv.Quote(c.Log.Format))
	}

	if c.KIPRIS.APIKey == "" {
		return errors.Wrapf(kipris.ErrMissingCredential,
			"configuration validation failed: %v", append(problems, "KIPRIS API key is missing"))
	}

	if len(problems) > 0 {
		return errors.Newf("configuration validation failed: %v", problems)
	}

	return nil
}
