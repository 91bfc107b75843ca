package scrapekit

import (
	"github.com/datasvc-labs/scrapekit/internal/fetch"
	"github.com/datasvc-labs/scrapekit/internal/status"
)

// Errors returned by the public API. They can be checked with errors.Is
// and errors.As.
var (
	// ErrCacheUnavailable is returned by InstallCache when the cache
	// backend cannot be opened or reached.
	ErrCacheUnavailable = fetch.ErrCacheUnavailable

	// ErrNoRecords is returned by MostRecentRecord when the table holds
	// no values.
	ErrNoRecords = status.ErrNoRecords
)

// StatusError reports a response with an HTTP error status (400 or above).
type StatusError = fetch.StatusError

// MaxRetriesError reports that every attempt at a URL failed. It wraps the
// error from the final attempt.
type MaxRetriesError = fetch.MaxRetriesError
