package scrape

import (
	"bytes"
	"strings"
)

// BlockType names the reason a fetched page carries no usable content.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

// shellMaxBytes bounds the body size checked for shell markers. Larger
// pages carry real content even when they also include a noscript notice.
const shellMaxBytes = 2000

type blockRule struct {
	kind BlockType
	// match reports whether the lowercased body shows the block.
	match func(lower string) bool
}

func anyOf(markers ...string) func(string) bool {
	return func(lower string) bool {
		for _, m := range markers {
			if strings.Contains(lower, m) {
				return true
			}
		}
		return false
	}
}

var blockRules = []blockRule{
	{BlockCloudflare, func(lower string) bool {
		return anyOf("checking your browser", "cf-browser-verification")(lower) ||
			(strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge"))
	}},
	{BlockCaptcha, anyOf("g-recaptcha", "hcaptcha", "자동입력 방지")},
}

// Municipal facility sites often redirect from the index through a frameset
// or meta refresh, leaving nothing to read.
var shellRules = []blockRule{
	{BlockJSShell, func(lower string) bool {
		return strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript")
	}},
	{BlockJSShell, anyOf(`http-equiv="refresh"`, "<frameset")},
}

// DetectBlock reports whether body is an anti-bot challenge or a script
// shell that needs a real browser.
func DetectBlock(body []byte) (bool, BlockType) {
	lower := string(bytes.ToLower(body))
	rules := blockRules
	if len(body) < shellMaxBytes {
		rules = append(rules[:len(rules):len(rules)], shellRules...)
	}
	for _, r := range rules {
		if r.match(lower) {
			return true, r.kind
		}
	}
	return false, BlockNone
}
