package enrich

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/poolfinder/pool-cli/internal/extract"
	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/scrape"
)

// Text sources reported in outcomes.
const (
	SourceURL    = "url"
	SourceSearch = "search"
)

// acquireText returns extractor input for rec and where it came from. The
// record's own page is tried first; the web search is only consulted when
// that yields nothing usable. Errors and timeouts count as no text.
func (o *Orchestrator) acquireText(ctx context.Context, rec *model.FacilityRecord) (string, string) {
	if rec.URL != "" {
		if text := o.fetchText(ctx, rec.URL, o.cfg.MaxTextChars); usable(text) {
			return text, SourceURL
		}
	}
	if o.deps.Searcher == nil {
		return "", ""
	}
	if text := o.searchText(ctx, rec.Name); usable(text) {
		return text, SourceSearch
	}
	return "", ""
}

func usable(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= extract.MinTextLength
}

// fetchText scrapes one page under the fetch timeout.
func (o *Orchestrator) fetchText(ctx context.Context, url string, limit int) string {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	defer cancel()

	res, err := o.deps.Scraper.Scrape(ctx, url)
	if err != nil {
		zap.L().Debug("enrich: fetch failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	if res == nil {
		return ""
	}
	return scrape.Truncate(strings.TrimSpace(res.Page.Text), limit)
}

// searchText composes title/snippet/url blocks for the top search hits and
// appends the page text of the first hit that is not a blog, cafe or news
// page.
func (o *Orchestrator) searchText(ctx context.Context, name string) string {
	query := fmt.Sprintf("%s %s", name, o.cfg.SearchSuffix)

	sctx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	results, err := o.deps.Searcher.Search(sctx, query, o.cfg.SearchResults)
	cancel()
	if err != nil {
		zap.L().Debug("enrich: search failed", zap.String("query", query), zap.Error(err))
		return ""
	}

	var blocks []string
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("제목: %s\n내용: %s\nURL: %s", r.Title, r.Snippet, r.URL))
	}
	for _, r := range results {
		if o.deps.Exclude.IsExcluded(r.URL) {
			continue
		}
		if page := o.fetchText(ctx, r.URL, o.cfg.SearchPageChars); page != "" {
			blocks = append(blocks, "--- 페이지 내용 ---\n"+page)
		}
		break
	}
	return scrape.Truncate(strings.Join(blocks, "\n\n"), o.cfg.MaxTextChars)
}
