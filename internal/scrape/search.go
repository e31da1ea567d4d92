package scrape

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/poolfinder/pool-cli/pkg/jina"
	"github.com/poolfinder/pool-cli/pkg/naver"
)

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string
	Snippet string
	URL     string
}

// Searcher runs a web search and returns up to n results.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]SearchResult, error)
}

// NaverSearcher searches Korean web documents via the Naver search API.
type NaverSearcher struct {
	client naver.Client
}

// NewNaverSearcher creates a NaverSearcher.
func NewNaverSearcher(c naver.Client) *NaverSearcher {
	return &NaverSearcher{client: c}
}

func (s *NaverSearcher) Search(ctx context.Context, query string, n int) ([]SearchResult, error) {
	resp, err := s.client.WebSearch(ctx, query, n)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: naver search")
	}
	out := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, SearchResult{
			Title:   naver.StripMarkup(item.Title),
			Snippet: naver.StripMarkup(item.Description),
			URL:     item.Link,
		})
	}
	return out, nil
}

// JinaSearcher searches via Jina Search. Used when no Naver credentials
// are configured.
type JinaSearcher struct {
	client jina.Client
}

// NewJinaSearcher creates a JinaSearcher.
func NewJinaSearcher(c jina.Client) *JinaSearcher {
	return &JinaSearcher{client: c}
}

func (s *JinaSearcher) Search(ctx context.Context, query string, n int) ([]SearchResult, error) {
	resp, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: jina search")
	}
	out := make([]SearchResult, 0, n)
	for _, r := range resp.Data {
		if n > 0 && len(out) >= n {
			break
		}
		snippet := strings.TrimSpace(r.Description)
		if snippet == "" {
			snippet = Truncate(strings.TrimSpace(r.Content), 300)
		}
		out = append(out, SearchResult{Title: r.Title, Snippet: snippet, URL: r.URL})
	}
	return out, nil
}
