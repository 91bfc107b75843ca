package config

import (
	"os"
	"testing"
	"time"
)

// unsetenv clears key for the duration of the test, restoring any prior
// value afterwards.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SCRAPEKIT_DATABASE",
		"SCRAPEKIT_CACHE_DATABASE",
		"SCRAPEKIT_USER_AGENT",
		"SCRAPEKIT_HTTP_TIMEOUT",
	} {
		unsetenv(t, key)
	}

	cfg := Load()
	if cfg.Database != "scrapekit.sqlite" {
		t.Errorf("Database = %q, want scrapekit.sqlite", cfg.Database)
	}
	if cfg.CacheDatabase != "scrapekit_cache.sqlite" {
		t.Errorf("CacheDatabase = %q, want scrapekit_cache.sqlite", cfg.CacheDatabase)
	}
	if cfg.UserAgent != "" {
		t.Errorf("UserAgent = %q, want empty", cfg.UserAgent)
	}
	if cfg.HTTPTimeout != 60*time.Second {
		t.Errorf("HTTPTimeout = %v, want 60s", cfg.HTTPTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SCRAPEKIT_DATABASE", "data/other.sqlite")
	t.Setenv("SCRAPEKIT_USER_AGENT", "mybot/1.0")
	t.Setenv("SCRAPEKIT_HTTP_TIMEOUT", "5s")

	cfg := Load()
	if cfg.Database != "data/other.sqlite" {
		t.Errorf("Database = %q, want data/other.sqlite", cfg.Database)
	}
	if cfg.UserAgent != "mybot/1.0" {
		t.Errorf("UserAgent = %q, want mybot/1.0", cfg.UserAgent)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
}

func TestLoad_MalformedDurationFallsBack(t *testing.T) {
	t.Setenv("SCRAPEKIT_HTTP_TIMEOUT", "soon")

	cfg := Load()
	if cfg.HTTPTimeout != 60*time.Second {
		t.Errorf("HTTPTimeout = %v, want the 60s default", cfg.HTTPTimeout)
	}
}
