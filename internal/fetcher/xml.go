package fetcher

import (
	"context"
	"encoding/xml"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// StreamXML decodes every element named elementName into T, e.g. the <row>
// entries of a Seoul open-data response. Declared charsets such as EUC-KR
// are honored. Both channels are closed when the document ends.
func StreamXML[T any](ctx context.Context, r io.Reader, elementName string) (<-chan T, <-chan error) {
	out := make(chan T, 64)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		dec := xml.NewDecoder(r)
		dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
			enc, err := htmlindex.Get(charset)
			if err != nil {
				return nil, eris.Wrapf(err, "xml: unsupported charset %q", charset)
			}
			return enc.NewDecoder().Reader(input), nil
		}

		for {
			tok, err := dec.Token()
			if err == io.EOF {
				return
			}
			if err != nil {
				errc <- eris.Wrap(err, "xml: read token")
				return
			}
			se, ok := tok.(xml.StartElement)
			if !ok || se.Name.Local != elementName {
				continue
			}

			var item T
			if err := dec.DecodeElement(&item, &se); err != nil {
				errc <- eris.Wrap(err, "xml: decode element")
				return
			}
			select {
			case out <- item:
			case <-ctx.Done():
				errc <- eris.Wrap(ctx.Err(), "xml: cancelled")
				return
			}
		}
	}()

	return out, errc
}

// CollectXML drains StreamXML into a slice.
func CollectXML[T any](ctx context.Context, r io.Reader, elementName string) ([]T, error) {
	items, errc := StreamXML[T](ctx, r, elementName)
	var out []T
	for item := range items {
		out = append(out, item)
	}
	if err := <-errc; err != nil {
		return out, err
	}
	return out, nil
}
