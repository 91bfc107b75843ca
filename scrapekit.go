// Package scrapekit provides small conveniences for data-processing
// scripts: batched writes, a table status recorder, a process-wide HTTP
// response cache and a URL fetcher with retries and per-host rate
// limiting.
//
// Example usage:
//
//	if err := scrapekit.InstallCache(scrapekit.CacheConfig{}); err != nil {
//	    log.Fatal(err)
//	}
//	body, err := scrapekit.DownloadURL(ctx, "https://example.com/report.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// ... parse body, save rows ...
//	if err := scrapekit.UpdateStatus(ctx, "reports", "date_scraped"); err != nil {
//	    log.Fatal(err)
//	}
//
// Batching lives in the standalone package
// github.com/datasvc-labs/scrapekit/pkg/batch, and the cache transport with
// its storage backends in github.com/datasvc-labs/scrapekit/pkg/webcache.
package scrapekit

import (
	"bytes"
	"context"
	"net/http"
	"sync"

	"github.com/datasvc-labs/scrapekit/internal/config"
	"github.com/datasvc-labs/scrapekit/internal/fetch"
	"github.com/datasvc-labs/scrapekit/internal/status"
	"github.com/rs/zerolog"
)

// Version is the library version, advertised in the default User-Agent.
const Version = fetch.Version

// CacheConfig configures the process-wide response cache installed by
// InstallCache.
type CacheConfig = fetch.CacheConfig

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = fetch.HTTPClient

var (
	stdOnce   sync.Once
	stdClient *fetch.Client
)

// std returns the shared fetcher, created on first use from the
// environment settings.
func std() *fetch.Client {
	stdOnce.Do(func() {
		stdClient = fetch.NewClient(config.Load())
	})
	return stdClient
}

// RequestURL fetches rawurl and returns the response. By default failed
// attempts (network errors and HTTP statuses of 400 and above) are retried
// up to five times with exponentially growing waits, and exhaustion is
// reported as a *MaxRetriesError wrapping the final attempt's error. Pass
// WithoutBackoff to make a single attempt instead.
//
// Requests to the same host are spaced out by a couple of seconds unless
// the response would come from the installed cache; see DisableRateLimit.
func RequestURL(ctx context.Context, rawurl string, opts ...RequestOption) (*http.Response, error) {
	return std().RequestURL(ctx, rawurl, opts...)
}

// DownloadURL fetches rawurl like RequestURL and returns the whole
// response body as an in-memory reader positioned at the start.
func DownloadURL(ctx context.Context, rawurl string, opts ...RequestOption) (*bytes.Reader, error) {
	return std().DownloadURL(ctx, rawurl, opts...)
}

// InstallCache routes all requests made through this package via a caching
// transport. Repeated GETs (and POSTs, when enabled) are answered from the
// cache until the stored response expires. Without an explicit Store the
// cache lives in a local SQLite file, scrapekit_cache.sqlite by default.
// Installing again replaces the previous cache and closes its store.
// Returns ErrCacheUnavailable when the backend cannot be opened or read.
func InstallCache(cfg CacheConfig) error {
	return std().InstallCache(cfg)
}

// DisableRateLimit turns off the per-host request spacing until the
// returned restore function is called:
//
//	restore := scrapekit.DisableRateLimit()
//	defer restore()
func DisableRateLimit() (restore func()) {
	return std().DisableRateLimit()
}

// UpdateStatus records the current UTC time in dateColumn of the status
// row for tableName, creating the row (and column) on first use. Status
// rows live in the local SQLite database, scrapekit.sqlite by default.
func UpdateStatus(ctx context.Context, tableName, dateColumn string) error {
	store, err := status.Open(config.Load().Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Touch(ctx, tableName, dateColumn); err != nil {
		return err
	}
	l := Logger()
	l.Debug().Str("table", tableName).Str("column", dateColumn).Msg("status updated")
	return nil
}

// MostRecentRecord returns the largest value of column in tableName from
// the local SQLite database, useful for resuming incremental scrapes.
// Returns ErrNoRecords when the table holds no values.
func MostRecentRecord(ctx context.Context, tableName, column string) (string, error) {
	store, err := status.Open(config.Load().Database)
	if err != nil {
		return "", err
	}
	defer store.Close()
	return store.MostRecent(ctx, tableName, column)
}

// Logger returns the package-level zerolog logger.
func Logger() zerolog.Logger {
	return fetch.Logger()
}

// SetLogger replaces the package-level zerolog logger. Scripts that want
// quiet output can install a disabled logger:
//
//	scrapekit.SetLogger(zerolog.Nop())
func SetLogger(l zerolog.Logger) {
	fetch.SetLogger(l)
}
