package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeJSON decodes a provider response body into T.
func DecodeJSON[T any](body []byte) (*T, error) {
	var out T
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&out); err != nil {
		return nil, eris.Wrap(err, "json: decode")
	}
	return &out, nil
}

// GetJSON fetches rawURL and decodes the body into T.
func GetJSON[T any](ctx context.Context, f Fetcher, rawURL string, header map[string]string) (*T, error) {
	resp, err := f.Get(ctx, rawURL, toHeader(header))
	if err != nil {
		return nil, err
	}
	return DecodeJSON[T](resp.Body)
}

// DecodeJSONArray streams the elements of a top-level JSON array. Both
// channels are closed when the array ends or decoding fails.
func DecodeJSONArray[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	out := make(chan T, 64)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		dec := json.NewDecoder(r)
		tok, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			errc <- eris.Wrap(err, "json: read opening token")
			return
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			errc <- eris.Errorf("json: expected array, got %v", tok)
			return
		}

		for dec.More() {
			var item T
			if err := dec.Decode(&item); err != nil {
				errc <- eris.Wrap(err, "json: decode element")
				return
			}
			select {
			case out <- item:
			case <-ctx.Done():
				errc <- eris.Wrap(ctx.Err(), "json: cancelled")
				return
			}
		}
	}()

	return out, errc
}
