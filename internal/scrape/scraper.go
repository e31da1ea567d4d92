// Package scrape fetches readable text for facility pages and searches the
// web for pages about a facility.
package scrape

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Page is the readable text of one fetched URL.
type Page struct {
	URL        string
	Title      string
	Text       string
	StatusCode int
}

// Result holds a scraped page with its source.
type Result struct {
	Page   Page
	Source string // e.g. "local_http", "jina", "browser"
}

// Scraper fetches a single URL and returns its content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
	Supports(url string) bool
}

// CleanLines trims every line, drops blank ones and collapses inner runs
// of whitespace. Line structure is kept for the line-based extractor.
func CleanLines(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		clean := strings.Join(strings.Fields(line), " ")
		if clean != "" {
			out = append(out, clean)
		}
	}
	return strings.Join(out, "\n")
}

// Truncate clips s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
