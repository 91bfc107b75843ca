package webcache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Key derives the cache key for req: a SHA-256 digest over the method, the
// canonicalized URL and the request body. Query parameters are sorted
// during canonicalization so that requests differing only in parameter
// order share an entry. The request body, when present, is restored and
// remains readable after the call.
func Key(req *http.Request) (string, error) {
	h := sha256.New()
	io.WriteString(h, req.Method)
	io.WriteString(h, " ")
	io.WriteString(h, canonicalURL(req.URL))

	body, err := peekBody(req)
	if err != nil {
		return "", fmt.Errorf("read request body: %w", err)
	}
	if len(body) > 0 {
		io.WriteString(h, " ")
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// canonicalURL renders u with its query parameters in sorted order.
func canonicalURL(u *url.URL) string {
	c := *u
	c.RawQuery = c.Query().Encode()
	c.Fragment = ""
	return c.String()
}

// peekBody returns the request body bytes without consuming them. GetBody
// is preferred; otherwise the body is read once and replaced with an
// in-memory copy.
func peekBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}
