package fetch

import (
	"net/http"
	"net/url"
	"time"
)

// Options holds the per-request configuration collected from Option values.
type Options struct {
	Method      string
	Header      http.Header
	Query       url.Values
	Body        []byte
	Timeout     time.Duration
	Backoff     bool
	CheckStatus bool
	Client      HTTPClient
}

// Option configures a single request.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Method:      http.MethodGet,
		Header:      make(http.Header),
		Query:       make(url.Values),
		Backoff:     true,
		CheckStatus: true,
	}
}

// WithMethod sets the request method. GET is the default.
func WithMethod(method string) Option {
	return func(o *Options) { o.Method = method }
}

// WithHeader adds a header to the request.
func WithHeader(key, value string) Option {
	return func(o *Options) { o.Header.Add(key, value) }
}

// WithQuery adds a query parameter to the request URL.
func WithQuery(key, value string) Option {
	return func(o *Options) { o.Query.Add(key, value) }
}

// WithBody sets the request body. Retried attempts resend it from the
// start.
func WithBody(body []byte) Option {
	return func(o *Options) { o.Body = body }
}

// WithTimeout overrides the default timeout for this request.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithoutBackoff makes exactly one attempt and surfaces its error
// immediately instead of retrying.
func WithoutBackoff() Option {
	return func(o *Options) { o.Backoff = false }
}

// WithoutStatusCheck hands HTTP error responses (status 400 and above)
// back to the caller instead of treating them as failed attempts.
func WithoutStatusCheck() Option {
	return func(o *Options) { o.CheckStatus = false }
}

// WithHTTPClient sends the request through a custom client, bypassing the
// shared one and any installed cache.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *Options) { o.Client = client }
}
