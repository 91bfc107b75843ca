package webcache

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func mustKey(t *testing.T, req *http.Request) string {
	t.Helper()
	key, err := Key(req)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	return key
}

func TestKey_QueryOrderIndependent(t *testing.T) {
	a, err := http.NewRequest(http.MethodGet, "http://example.com/data?a=1&b=2", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := http.NewRequest(http.MethodGet, "http://example.com/data?b=2&a=1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if mustKey(t, a) != mustKey(t, b) {
		t.Error("keys differ for reordered query parameters")
	}
}

func TestKey_MethodDistinguishes(t *testing.T) {
	get, err := http.NewRequest(http.MethodGet, "http://example.com/data", nil)
	if err != nil {
		t.Fatal(err)
	}
	post, err := http.NewRequest(http.MethodPost, "http://example.com/data", nil)
	if err != nil {
		t.Fatal(err)
	}
	if mustKey(t, get) == mustKey(t, post) {
		t.Error("keys identical for different methods")
	}
}

func TestKey_BodyDistinguishes(t *testing.T) {
	a, err := http.NewRequest(http.MethodPost, "http://example.com/data", strings.NewReader("alpha"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := http.NewRequest(http.MethodPost, "http://example.com/data", strings.NewReader("beta"))
	if err != nil {
		t.Fatal(err)
	}
	if mustKey(t, a) == mustKey(t, b) {
		t.Error("keys identical for different bodies")
	}
}

func TestKey_BodyRemainsReadable(t *testing.T) {
	// A raw ReadCloser without GetBody forces Key to consume and restore
	// the body.
	req, err := http.NewRequest(http.MethodPost, "http://example.com/data", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Body = io.NopCloser(strings.NewReader("alpha"))
	req.GetBody = nil

	mustKey(t, req)

	body, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "alpha" {
		t.Errorf("body after Key = %q, want %q", body, "alpha")
	}
}
