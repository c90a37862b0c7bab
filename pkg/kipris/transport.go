package kipris

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

const (
	// DefaultConnectTimeout bounds establishing the TCP connection.
	DefaultConnectTimeout = 60 * time.Second
	// DefaultResponseTimeout bounds the whole exchange, body included.
	DefaultResponseTimeout = 600 * time.Second

	defaultMaxBodyBytes = 16 << 20
)

func newHTTPClient(connect, total time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   connect,
		KeepAlive: 30 * time.Second,
	}

	return &http.Client{
		Timeout: total,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: connect,
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Fetch issues a single GET for target and returns the response body. Every
// failure (timeout, refused connection, error status, read error) is logged
// and reported as an empty string; Fetch never retries.
func (c *Client) Fetch(ctx context.Context, target string) string {
	logger := log.FromContext(ctx)
	started := time.Now()
	logger.Debug("kipris request", "url", redactURL(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		logger.Error("failed to build kipris request", "error", err)
		return ""
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		elapsed := time.Since(started).Round(time.Millisecond)
		if isTimeout(err) {
			logger.Error("kipris request timed out", "elapsed", elapsed, "error", err)
		} else {
			logger.Error("kipris request failed", "elapsed", elapsed, "error", err)
		}
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		logger.Error("kipris returned error status",
			"status", resp.StatusCode,
			"elapsed", time.Since(started).Round(time.Millisecond),
		)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		logger.Error("failed to read kipris response", "error", err)
		return ""
	}

	logger.Info("kipris response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	return string(body)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
