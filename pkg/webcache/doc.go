// Package webcache provides a caching http.RoundTripper with pluggable
// storage backends.
//
// The transport serves repeated GET requests (and optionally POST) from a
// Store until the stored response expires, then refetches. Only responses
// with status 200 are stored. Responses served from the cache carry the
// "X-Cache: HIT" header; use FromCache to check for it.
//
// # Usage
//
// Install the transport on an http.Client:
//
//	store, err := webcache.NewSQLiteStore("cache.sqlite")
//	if err != nil {
//	    return err
//	}
//	client := &http.Client{
//	    Transport: webcache.NewTransport(nil, store, webcache.Config{
//	        Expiry: time.Hour,
//	    }),
//	}
//
// # Backends
//
// Four Store implementations are provided: SQLiteStore (a local file, the
// usual choice for scripts), MemoryStore (process-local, gone on exit),
// RedisStore and MongoStore (shared between workers). Anything
// implementing Store can be plugged in.
//
// Expiry is owned by the backend: SQLite and memory check it on read,
// Redis uses native key TTLs, MongoDB combines a TTL index with a read
// filter. The transport itself has no eviction logic.
package webcache
