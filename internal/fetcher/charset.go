package fetcher

import (
	"mime"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

var metaCharsetRe = regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([a-zA-Z0-9_\-]+)`)

// DecodeText returns body as UTF-8. The charset comes from the
// Content-Type parameter, then a <meta charset> tag in the first 2 KB.
// Korean sites still commonly serve EUC-KR.
func DecodeText(body []byte, contentType string) string {
	name := ""
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		name = params["charset"]
	}
	if name == "" {
		head := body
		if len(head) > 2048 {
			head = head[:2048]
		}
		if m := metaCharsetRe.FindSubmatch(head); m != nil {
			name = string(m[1])
		}
	}
	if name == "" {
		return string(body)
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return string(body)
	}
	if n, _ := htmlindex.Name(enc); n == "utf-8" {
		return string(body)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil || !utf8.Valid(out) {
		return string(body)
	}
	return string(out)
}
