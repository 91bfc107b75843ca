package webcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newCountingServer(t *testing.T, body string) (*httptest.Server, *int) {
	t.Helper()
	hits := new(int)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		(*hits)++
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts, hits
}

func TestRoundTrip_SecondRequestServedFromCache(t *testing.T) {
	ts, hits := newCountingServer(t, "payload")
	client := &http.Client{Transport: NewTransport(nil, NewMemoryStore(), Config{Expiry: time.Minute})}

	for i := 0; i < 2; i++ {
		resp, err := client.Get(ts.URL)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("read body %d: %v", i, err)
		}
		if string(body) != "payload" {
			t.Errorf("body %d = %q, want %q", i, body, "payload")
		}
		if want := i == 1; FromCache(resp) != want {
			t.Errorf("FromCache(resp %d) = %v, want %v", i, FromCache(resp), want)
		}
	}
	if *hits != 1 {
		t.Errorf("server hits = %d, want 1", *hits)
	}
}

func TestRoundTrip_ExpiredEntryRefetched(t *testing.T) {
	ts, hits := newCountingServer(t, "payload")
	client := &http.Client{Transport: NewTransport(nil, NewMemoryStore(), Config{Expiry: 20 * time.Millisecond})}

	if _, err := client.Get(ts.URL); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if FromCache(resp) {
		t.Error("expired entry served from cache")
	}
	if *hits != 2 {
		t.Errorf("server hits = %d, want 2", *hits)
	}
}

func TestRoundTrip_POSTNotCachedByDefault(t *testing.T) {
	ts, hits := newCountingServer(t, "ok")
	client := &http.Client{Transport: NewTransport(nil, NewMemoryStore(), Config{Expiry: time.Minute})}

	for i := 0; i < 2; i++ {
		resp, err := client.Post(ts.URL, "text/plain", strings.NewReader("data"))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}
	if *hits != 2 {
		t.Errorf("server hits = %d, want 2", *hits)
	}
}

func TestRoundTrip_POSTCachedWhenEnabled(t *testing.T) {
	ts, hits := newCountingServer(t, "ok")
	client := &http.Client{Transport: NewTransport(nil, NewMemoryStore(), Config{Expiry: time.Minute, CachePOST: true})}

	// Same body twice hits the server once.
	for i := 0; i < 2; i++ {
		resp, err := client.Post(ts.URL, "text/plain", strings.NewReader("data"))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}
	if *hits != 1 {
		t.Errorf("server hits after same body = %d, want 1", *hits)
	}

	// A different body is a different entry.
	resp, err := client.Post(ts.URL, "text/plain", strings.NewReader("other"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if *hits != 2 {
		t.Errorf("server hits after new body = %d, want 2", *hits)
	}
}

func TestRoundTrip_ErrorStatusNotStored(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer ts.Close()

	client := &http.Client{Transport: NewTransport(nil, NewMemoryStore(), Config{Expiry: time.Minute})}
	for i := 0; i < 2; i++ {
		resp, err := client.Get(ts.URL)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}
	}
	if hits != 2 {
		t.Errorf("server hits = %d, want 2", hits)
	}
}

func TestRoundTrip_QueryOrderSharesEntry(t *testing.T) {
	ts, hits := newCountingServer(t, "ok")
	client := &http.Client{Transport: NewTransport(nil, NewMemoryStore(), Config{Expiry: time.Minute})}

	for _, q := range []string{"?a=1&b=2", "?b=2&a=1"} {
		resp, err := client.Get(ts.URL + q)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}
	if *hits != 1 {
		t.Errorf("server hits = %d, want 1 for reordered query", *hits)
	}
}

func TestCached(t *testing.T) {
	ts, _ := newCountingServer(t, "ok")
	tr := NewTransport(nil, NewMemoryStore(), Config{Expiry: time.Minute})
	client := &http.Client{Transport: tr}

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Cached(req) {
		t.Error("Cached = true before any request")
	}

	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if !tr.Cached(req) {
		t.Error("Cached = false after a stored response")
	}

	post, err := http.NewRequest(http.MethodPost, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Cached(post) {
		t.Error("Cached = true for an uncacheable method")
	}
}

func TestRoundTrip_CorruptEntryRefetched(t *testing.T) {
	ts, hits := newCountingServer(t, "payload")
	store := NewMemoryStore()
	tr := NewTransport(nil, store, Config{Expiry: time.Minute})
	client := &http.Client{Transport: tr}

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	key, err := Key(req)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(context.Background(), key, []byte("not a response"), time.Minute); err != nil {
		t.Fatal(err)
	}

	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if FromCache(resp) {
		t.Error("corrupt entry served from cache")
	}
	if string(body) != "payload" {
		t.Errorf("body = %q, want %q", body, "payload")
	}
	if *hits != 1 {
		t.Errorf("server hits = %d, want 1", *hits)
	}
}

// bodyCloseRecorder reports whether a request body was closed.
type bodyCloseRecorder struct {
	io.Reader
	closed bool
}

func (b *bodyCloseRecorder) Close() error {
	b.closed = true
	return nil
}

func TestRoundTrip_CacheHitClosesRequestBody(t *testing.T) {
	ts, hits := newCountingServer(t, "ok")
	tr := NewTransport(nil, NewMemoryStore(), Config{Expiry: time.Minute, CachePOST: true})
	client := &http.Client{Transport: tr}

	// Prime the cache.
	resp, err := client.Post(ts.URL, "text/plain", strings.NewReader("data"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	body := &bodyCloseRecorder{Reader: strings.NewReader("data")}
	req, err := http.NewRequest(http.MethodPost, ts.URL, body)
	if err != nil {
		t.Fatal(err)
	}
	// Key derivation reads the copy, leaving the original body for the
	// transport to close.
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("data")), nil
	}

	resp, err = tr.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if !FromCache(resp) {
		t.Fatal("repeated request missed the cache")
	}
	if !body.closed {
		t.Error("request body left open on a cache hit")
	}
	if *hits != 1 {
		t.Errorf("server hits = %d, want 1", *hits)
	}
}
