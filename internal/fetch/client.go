// Package fetch implements the URL fetcher behind the package-level API:
// one shared HTTP client the response cache installs onto, a per-host rate
// limiter, and the retry loop.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/datasvc-labs/scrapekit/internal/config"
	"github.com/datasvc-labs/scrapekit/pkg/webcache"
)

// Version is the library version, advertised in the default User-Agent.
const Version = "1.0.0"

const (
	// DefaultMaxAttempts bounds retries when backoff is enabled.
	DefaultMaxAttempts = 5

	// DefaultBackoffBase is the wait before the first retry. It doubles
	// after each further failure.
	DefaultBackoffBase = 10 * time.Second
)

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the shared fetcher.
type Client struct {
	settings config.Settings
	limiter  *rateLimiter

	mu    sync.Mutex
	http  *http.Client
	base  http.RoundTripper
	cache *webcache.Transport

	backoffBase time.Duration
	maxAttempts int
}

// NewClient creates a client with the provided settings.
func NewClient(settings config.Settings) *Client {
	return &Client{
		settings:    settings,
		limiter:     newRateLimiter(DefaultHitPeriod),
		http:        &http.Client{Timeout: settings.HTTPTimeout},
		base:        http.DefaultTransport,
		backoffBase: DefaultBackoffBase,
		maxAttempts: DefaultMaxAttempts,
	}
}

// RequestURL fetches rawurl. With backoff enabled (the default) failed
// attempts are retried with exponentially growing waits, and exhaustion is
// reported as a MaxRetriesError wrapping the final attempt's error. With
// backoff disabled the single attempt's error is returned as is.
func (c *Client) RequestURL(ctx context.Context, rawurl string, opts ...Option) (*http.Response, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	attempts := 1
	if o.Backoff {
		attempts = c.maxAttempts
	}
	back := newBackoff(c.backoffBase)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.attempt(ctx, rawurl, &o)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		delay := back.Next()
		logger.Info().Err(err).Str("url", rawurl).Dur("retry_in", delay).Msg("request failed, retrying")
		if werr := wait(ctx, delay); werr != nil {
			return nil, werr
		}
	}
	if !o.Backoff {
		return nil, lastErr
	}
	return nil, &MaxRetriesError{URL: rawurl, Attempts: attempts, Err: lastErr}
}

// DownloadURL fetches rawurl and returns the whole response body as an
// in-memory reader positioned at the start.
func (c *Client) DownloadURL(ctx context.Context, rawurl string, opts ...Option) (*bytes.Reader, error) {
	logger.Info().Str("url", rawurl).Msg("downloading")
	resp, err := c.RequestURL(ctx, rawurl, opts...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// DisableRateLimit turns off the per-host rate limit until the returned
// restore function is called.
func (c *Client) DisableRateLimit() (restore func()) {
	return c.limiter.disable()
}

func (c *Client) attempt(ctx context.Context, rawurl string, o *Options) (*http.Response, error) {
	req, err := c.newRequest(ctx, rawurl, o)
	if err != nil {
		return nil, err
	}

	// A request the cache will answer never reaches the network, so the
	// rate limit does not apply to it.
	if cache := c.cacheTransport(); cache != nil && o.Client == nil && cache.Cached(req) {
		logger.Debug().Str("url", rawurl).Msg("cached, skipping rate limit")
	} else if err := c.limiter.wait(ctx, req.URL.Host); err != nil {
		return nil, err
	}

	resp, err := c.clientFor(o).Do(req)
	if err != nil {
		return nil, err
	}
	if o.CheckStatus && resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, &StatusError{URL: rawurl, Code: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, rawurl string, o *Options) (*http.Request, error) {
	var body io.Reader
	if len(o.Body) > 0 {
		body = bytes.NewReader(o.Body)
	}
	req, err := http.NewRequestWithContext(ctx, o.Method, rawurl, body)
	if err != nil {
		return nil, err
	}
	for key, values := range o.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent())
	}
	if len(o.Query) > 0 {
		q := req.URL.Query()
		for key, values := range o.Query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		req.URL.RawQuery = q.Encode()
	}
	return req, nil
}

func (c *Client) userAgent() string {
	if c.settings.UserAgent != "" {
		return c.settings.UserAgent
	}
	return "scrapekit/" + Version + " (+https://github.com/datasvc-labs/scrapekit)"
}

// clientFor picks the client for a single request: the caller's own
// client, a copy with an adjusted timeout, or the shared one.
func (c *Client) clientFor(o *Options) HTTPClient {
	if o.Client != nil {
		return o.Client
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if o.Timeout > 0 && o.Timeout != c.http.Timeout {
		clone := *c.http
		clone.Timeout = o.Timeout
		return &clone
	}
	return c.http
}

func (c *Client) cacheTransport() *webcache.Transport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache
}
