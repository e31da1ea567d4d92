package scrape

import (
	"net/url"
	"path"
	"strings"
)

// DefaultExcludedKeywords mark community and press pages whose prices are
// second-hand and often stale.
var DefaultExcludedKeywords = []string{"blog", "cafe", "post", "news"}

// PathMatcher filters URLs by keyword (matched against host and path) and
// by glob-style path patterns. A pattern like "/board/*" also matches
// multi-level paths like "/board/a/b".
type PathMatcher struct {
	keywords []string
	patterns []string
}

// NewPathMatcher creates a PathMatcher. Falls back to the default keywords
// if none are provided.
func NewPathMatcher(keywords []string, patterns ...string) *PathMatcher {
	if len(keywords) == 0 {
		keywords = DefaultExcludedKeywords
	}
	lk := make([]string, len(keywords))
	for i, k := range keywords {
		lk[i] = strings.ToLower(k)
	}
	lp := make([]string, len(patterns))
	for i, p := range patterns {
		lp[i] = strings.ToLower(p)
	}
	return &PathMatcher{keywords: lk, patterns: lp}
}

// Keywords returns the configured keywords.
func (m *PathMatcher) Keywords() []string {
	return m.keywords
}

// IsExcluded checks whether a URL matches any keyword or pattern.
// Unparseable and non-HTTP URLs are excluded.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return true
	}
	target := strings.ToLower(u.Host + u.Path)
	for _, k := range m.keywords {
		if strings.Contains(target, k) {
			return true
		}
	}
	p := strings.ToLower(u.Path)
	for _, pattern := range m.patterns {
		if matchSegmented(pattern, p) {
			return true
		}
	}
	return false
}

// matchSegmented tries path.Match first, then treats a trailing "/*" as a
// prefix match.
func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}
	return false
}
