package scrapekit

import (
	"net/http"
	"time"

	"github.com/datasvc-labs/scrapekit/internal/fetch"
)

// RequestOption configures a single RequestURL or DownloadURL call.
type RequestOption = fetch.Option

// WithMethod sets the request method. GET is the default.
func WithMethod(method string) RequestOption {
	return fetch.WithMethod(method)
}

// WithHeader adds a header to the request. Setting a User-Agent here
// replaces the library default.
func WithHeader(key, value string) RequestOption {
	return fetch.WithHeader(key, value)
}

// WithQuery adds a query parameter to the request URL.
func WithQuery(key, value string) RequestOption {
	return fetch.WithQuery(key, value)
}

// WithBody sets the request body. Retried attempts resend it from the
// start. Most useful together with WithMethod(http.MethodPost).
func WithBody(body []byte) RequestOption {
	return fetch.WithBody(body)
}

// WithTimeout overrides the default timeout for this request. The default
// is 60 seconds, or SCRAPEKIT_HTTP_TIMEOUT when set.
func WithTimeout(d time.Duration) RequestOption {
	return fetch.WithTimeout(d)
}

// WithoutBackoff makes exactly one attempt and surfaces its error
// immediately instead of retrying.
func WithoutBackoff() RequestOption {
	return fetch.WithoutBackoff()
}

// WithoutStatusCheck hands HTTP error responses (status 400 and above)
// back to the caller instead of treating them as failed attempts.
func WithoutStatusCheck() RequestOption {
	return fetch.WithoutStatusCheck()
}

// WithHTTPClient sends the request through a custom client, bypassing the
// shared one and any installed cache. Useful for injecting mocks in tests.
func WithHTTPClient(client HTTPClient) RequestOption {
	return fetch.WithHTTPClient(client)
}

var _ HTTPClient = (*http.Client)(nil)
