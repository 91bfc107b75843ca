// Package config loads library settings from SCRAPEKIT_* environment
// variables.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings are the environment-derived defaults for the library. Every
// field has a working fallback so scripts run with no environment at all.
type Settings struct {
	// Database is the SQLite file holding script data and status rows.
	Database string `env:"SCRAPEKIT_DATABASE" envDefault:"scrapekit.sqlite"`

	// CacheDatabase is the SQLite file used by the default response
	// cache backend.
	CacheDatabase string `env:"SCRAPEKIT_CACHE_DATABASE" envDefault:"scrapekit_cache.sqlite"`

	// UserAgent overrides the User-Agent header sent with requests.
	UserAgent string `env:"SCRAPEKIT_USER_AGENT"`

	// HTTPTimeout bounds each request attempt, including reading the
	// response body.
	HTTPTimeout time.Duration `env:"SCRAPEKIT_HTTP_TIMEOUT" envDefault:"60s"`
}

// Load reads settings from the environment. A malformed variable falls
// back to the defaults rather than failing the calling script.
func Load() Settings {
	cfg := defaults()
	if err := env.Parse(&cfg); err != nil {
		return defaults()
	}
	return cfg
}

func defaults() Settings {
	return Settings{
		Database:      "scrapekit.sqlite",
		CacheDatabase: "scrapekit_cache.sqlite",
		HTTPTimeout:   60 * time.Second,
	}
}
