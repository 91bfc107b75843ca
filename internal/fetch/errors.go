package fetch

import (
	"errors"
	"fmt"
)

// ErrCacheUnavailable is returned by InstallCache when the cache backend
// cannot be opened or reached.
var ErrCacheUnavailable = errors.New("scrapekit: cache backend unavailable")

// StatusError reports a response with an HTTP error status (400 or above).
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scrapekit: %s returned %s", e.URL, e.Status)
}

// MaxRetriesError reports that every attempt at a URL failed. It wraps the
// error from the final attempt.
type MaxRetriesError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *MaxRetriesError) Error() string {
	return fmt.Sprintf("scrapekit: giving up on %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *MaxRetriesError) Unwrap() error { return e.Err }
