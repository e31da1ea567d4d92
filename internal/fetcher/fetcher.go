// Package fetcher performs rate-limited, retried HTTP GETs against facility
// pages and provider APIs, and decodes their bodies.
package fetcher

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
)

// ErrTooLarge is returned when a body exceeds the configured size cap.
var ErrTooLarge = eris.New("fetcher: body too large")

// Response is a fully read HTTP response.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher downloads a URL. header may be nil.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, header http.Header) (*Response, error)
}

// toHeader converts a simple header map, as providers configure them.
func toHeader(m map[string]string) http.Header {
	if len(m) == 0 {
		return nil
	}
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}
