package webcache

import (
	"bufio"
	"bytes"
	"net/http"
	"net/http/httputil"
	"time"
)

// DefaultExpiry is how long stored responses stay fresh unless configured
// otherwise.
const DefaultExpiry = 12 * time.Hour

// HitHeader is set on responses served from the cache.
const HitHeader = "X-Cache"

// Config controls what the transport caches and for how long.
type Config struct {
	// Expiry is how long stored responses stay fresh. Zero selects
	// DefaultExpiry.
	Expiry time.Duration

	// CachePOST also caches POST responses. Only GET responses are
	// cached otherwise.
	CachePOST bool
}

// Transport is an http.RoundTripper that serves responses from a Store,
// falling back to the wrapped transport on a miss and storing fresh 200
// responses on the way back. Storage and expiry are entirely the store's
// concern; the transport only serializes responses and derives keys.
type Transport struct {
	base  http.RoundTripper
	store Store
	cfg   Config
}

// NewTransport wraps base with response caching backed by store. A nil base
// falls back to http.DefaultTransport.
func NewTransport(base http.RoundTripper, store Store, cfg Config) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = DefaultExpiry
	}
	return &Transport{base: base, store: store, cfg: cfg}
}

// RoundTrip serves cacheable requests from the store when possible. Store
// failures are treated as misses so that a broken cache degrades to plain
// HTTP instead of failing requests.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.cacheable(req) {
		return t.base.RoundTrip(req)
	}

	key, err := Key(req)
	if err != nil {
		closeRequestBody(req)
		return nil, err
	}

	ctx := req.Context()
	if data, ok, err := t.store.Get(ctx, key); err == nil && ok {
		resp, err := readResponse(data, req)
		if err == nil {
			// The base transport never sees this request, so the body
			// is closed here.
			closeRequestBody(req)
			resp.Header.Set(HitHeader, "HIT")
			return resp, nil
		}
		// Corrupt entry: drop it and refetch.
		_ = t.store.Delete(ctx, key)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	// DumpResponse drains and replaces resp.Body, so the caller still
	// gets a readable response.
	data, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return resp, nil
	}
	_ = t.store.Set(ctx, key, data, t.cfg.Expiry)
	return resp, nil
}

// Cached reports whether req would currently be served from the cache.
// Nothing is fetched.
func (t *Transport) Cached(req *http.Request) bool {
	if !t.cacheable(req) {
		return false
	}
	key, err := Key(req)
	if err != nil {
		return false
	}
	_, ok, err := t.store.Get(req.Context(), key)
	return err == nil && ok
}

// Close closes the underlying store.
func (t *Transport) Close() error {
	return t.store.Close()
}

// Base returns the wrapped transport.
func (t *Transport) Base() http.RoundTripper {
	return t.base
}

// closeRequestBody closes req's body on paths that never reach the base
// transport.
func closeRequestBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}

func (t *Transport) cacheable(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet:
		return true
	case http.MethodPost:
		return t.cfg.CachePOST
	default:
		return false
	}
}

// FromCache reports whether resp was served from the cache.
func FromCache(resp *http.Response) bool {
	return resp.Header.Get(HitHeader) == "HIT"
}

func readResponse(data []byte, req *http.Request) (*http.Response, error) {
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), req)
}
