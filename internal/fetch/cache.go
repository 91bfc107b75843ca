package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/datasvc-labs/scrapekit/pkg/webcache"
)

// CacheConfig configures the process-wide response cache.
type CacheConfig struct {
	// Expiry is how long cached responses stay fresh. Zero selects
	// webcache.DefaultExpiry.
	Expiry time.Duration

	// CachePOST also caches POST responses. Only GET responses are
	// cached otherwise.
	CachePOST bool

	// Store overrides the default SQLite backend. The installer takes
	// ownership and closes it when the cache is replaced.
	Store webcache.Store
}

// installCheckKey is read once at install time to confirm a supplied
// store is reachable. A miss is fine; only a failing read rejects the
// store.
const installCheckKey = "scrapekit:install-check"

// InstallCache routes the shared client through a caching transport.
// Installing again replaces the previous cache and closes its store.
// Returns ErrCacheUnavailable when the default backend cannot be opened
// or a supplied store cannot be read.
func (c *Client) InstallCache(cfg CacheConfig) error {
	store := cfg.Store
	if store == nil {
		s, err := webcache.NewSQLiteStore(c.settings.CacheDatabase)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
		}
		store = s
	} else if _, _, err := store.Get(context.Background(), installCheckKey); err != nil {
		return fmt.Errorf("%w: %w", ErrCacheUnavailable, err)
	}

	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = webcache.DefaultExpiry
	}
	t := webcache.NewTransport(c.base, store, webcache.Config{
		Expiry:    expiry,
		CachePOST: cfg.CachePOST,
	})

	c.mu.Lock()
	old := c.cache
	c.cache = t
	c.http.Transport = t
	c.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			logger.Error().Err(err).Msg("cache install: close previous store failed")
		}
	}
	logger.Info().Dur("expiry", expiry).Bool("cache_post", cfg.CachePOST).Msg("response cache installed")
	return nil
}
