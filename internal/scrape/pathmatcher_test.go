package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathMatcher_IsExcluded(t *testing.T) {
	t.Parallel()
	m := NewPathMatcher(nil, "/board/*", "/*.pdf")

	tests := []struct {
		name     string
		url      string
		excluded bool
	}{
		{"naver blog host", "https://blog.naver.com/user/123", true},
		{"daum cafe", "https://cafe.daum.net/swim/abc", true},
		{"post path", "https://m.example.kr/post/55", true},
		{"news site", "https://news.example.kr/article/1", true},
		{"board pattern", "https://pool.example.kr/board/notice/3", true},
		{"board root", "https://pool.example.kr/board", true},
		{"root pdf", "https://pool.example.kr/fee.pdf", true},
		{"nested pdf", "https://pool.example.kr/docs/fee.pdf", false},
		{"facility page", "https://www.sisul.or.kr/open_content/swim/", false},
		{"uppercase keyword", "https://BLOG.example.kr/", true},
		{"not http", "ftp://pool.example.kr/fee", true},
		{"relative", "/pool/fee", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.excluded, m.IsExcluded(tt.url))
		})
	}
}

func TestPathMatcher_CustomKeywords(t *testing.T) {
	t.Parallel()
	m := NewPathMatcher([]string{"Instagram"})
	assert.Equal(t, []string{"instagram"}, m.Keywords())
	assert.True(t, m.IsExcluded("https://www.instagram.com/pool"))
	assert.False(t, m.IsExcluded("https://blog.naver.com/x"))
}
