package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		blocked bool
		want    BlockType
	}{
		{"cloudflare challenge", `<html><title>Just a moment...</title><body>Checking your browser before accessing</body></html>`, true, BlockCloudflare},
		{"recaptcha", `<div class="g-recaptcha" data-sitekey="x"></div>`, true, BlockCaptcha},
		{"korean captcha", `<p>자동입력 방지 문자를 입력하세요</p>`, true, BlockCaptcha},
		{"noscript shell", `<html><noscript>Please enable JavaScript</noscript><div id="app"></div></html>`, true, BlockJSShell},
		{"meta refresh", `<html><head><meta http-equiv="refresh" content="0;url=/main.do"></head></html>`, true, BlockJSShell},
		{"frameset", `<html><frameset><frame src="/index2.html"></frameset></html>`, true, BlockJSShell},
		{"normal page", `<html><body><h1>자유수영 안내</h1><p>평일 06:00~22:00</p></body></html>`, false, BlockNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, bt := DetectBlock([]byte(tt.body))
			assert.Equal(t, tt.blocked, blocked)
			assert.Equal(t, tt.want, bt)
		})
	}
}

func TestDetectBlock_LargeNoscriptPageNotShell(t *testing.T) {
	t.Parallel()
	body := `<html><noscript>javascript disabled</noscript><p>` + strings.Repeat("수영장 이용 안내 ", 300) + `</p></html>`
	blocked, _ := DetectBlock([]byte(body))
	assert.False(t, blocked)
}
