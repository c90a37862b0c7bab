package kipris

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// DefaultBaseURL is the public KIPRIS Plus host.
const DefaultBaseURL = "http://plus.kipris.or.kr"

// ErrMissingCredential is returned by New when no API key is configured.
var ErrMissingCredential = errors.New("KIPRIS API key is required (set KIPRIS_API_KEY)")

// Client holds the process-wide pieces of the pipeline: the credential, the
// base URL and one shared HTTP client. It keeps no per-call state and is safe
// for concurrent use.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   *http.Client
	maxBodyBytes int64
	logger       *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeouts replaces the connect and total request timeouts.
func WithTimeouts(connect, total time.Duration) Option {
	return func(c *Client) {
		c.httpClient = newHTTPClient(connect, total)
	}
}

// WithLogger sets the logger used when the call context carries none.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client. An empty apiKey is a configuration error.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingCredential
	}

	c := &Client{
		apiKey:       apiKey,
		baseURL:      DefaultBaseURL,
		httpClient:   newHTTPClient(DefaultConnectTimeout, DefaultResponseTimeout),
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL reports the host requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one search call.
type Request struct {
	// Endpoint is a path below the base URL, or an absolute URL.
	Endpoint string
	// CredentialField is the query field the API key is sent under.
	CredentialField string
	Params          map[string]any
	Path            Path
}

// URL builds the fully qualified request URL for endpoint with the stored
// credential injected under credentialField.
func (c *Client) URL(endpoint, credentialField string, params map[string]any) (string, error) {
	return BuildURL(c.resolve(endpoint), Credential{Field: credentialField, Value: c.apiKey}, params)
}

func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// Search runs req through the whole pipeline. Transport and format failures
// surface as an empty RecordSet; the error is reserved for malformed requests.
func (c *Client) Search(ctx context.Context, req Request) (RecordSet, error) {
	if len(req.Path) == 0 {
		return nil, ErrEmptyPath
	}

	target, err := c.URL(req.Endpoint, req.CredentialField, req.Params)
	if err != nil {
		return nil, err
	}

	ctx = c.withLogger(ctx)
	logger := log.FromContext(ctx)
	started := time.Now()

	tree := Normalize(ctx, c.Fetch(ctx, target))
	records := Extract(ctx, tree, req.Path)

	if header := Lookup(tree, HeaderPath, nil); header != nil {
		logger.Info("kipris response header", "header", truncate(stringify(header), snippetLength))
	}
	logger.Info("kipris search complete",
		"endpoint", req.Endpoint,
		"records", len(records),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	return records, nil
}

func (c *Client) withLogger(ctx context.Context) context.Context {
	if _, ok := ctx.Value(log.ContextKey).(*log.Logger); ok {
		return ctx
	}
	return log.WithContext(ctx, c.logger)
}
