package scrape

import (
	"bytes"
	"context"
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	readability "codeberg.org/readeck/go-readability/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/poolfinder/pool-cli/internal/fetcher"
)

// minReadableRunes is the shortest readability output preferred over the
// plain tag-stripped text. Pricing tables often fall outside the main
// article, so short articles lose to the full page.
const minReadableRunes = 200

// LocalScraper fetches HTML through the rate-limited fetcher, detects
// blocks, and converts the page to line-structured text. Free, no API
// calls. Falls through to Jina or the browser when blocked.
type LocalScraper struct {
	fetcher fetcher.Fetcher
}

// NewLocalScraper creates a LocalScraper over f.
func NewLocalScraper(f fetcher.Fetcher) *LocalScraper {
	return &LocalScraper{fetcher: f}
}

func (l *LocalScraper) Name() string           { return "local_http" }
func (l *LocalScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL, detects blocks, and extracts readable text.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := l.fetcher.Get(ctx, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}

	if blocked, blockType := DetectBlock(resp.Body); blocked {
		return nil, eris.Errorf("local_http: blocked (%s)", blockType)
	}
	if len(resp.Body) < 100 {
		return nil, eris.New("local_http: empty page")
	}

	doc := fetcher.DecodeText(resp.Body, resp.ContentType)
	title, text := PageText(doc, resp.URL)
	return &Result{
		Page: Page{
			URL:        resp.URL,
			Title:      title,
			Text:       text,
			StatusCode: resp.StatusCode,
		},
		Source: "local_http",
	}, nil
}

// PageText extracts a title and readable text from an HTML document.
func PageText(doc, pageURL string) (title, text string) {
	stripped := StripHTML(doc)
	title = extractTitle(doc)

	u, err := url.Parse(pageURL)
	if err != nil {
		return title, stripped
	}
	article, err := readability.FromReader(strings.NewReader(doc), u)
	if err != nil {
		zap.L().Debug("scrape: readability failed", zap.String("url", pageURL), zap.Error(err))
		return title, stripped
	}
	var buf bytes.Buffer
	if err := article.RenderText(&buf); err != nil {
		return title, stripped
	}
	readable := CleanLines(buf.String())
	if title == "" {
		title = strings.TrimSpace(article.Title())
	}
	if utf8.RuneCountInString(readable) < minReadableRunes {
		return title, stripped
	}
	return title, readable
}

var (
	titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	// Boilerplate blocks removed entirely.
	dropBlockRes = func() []*regexp.Regexp {
		var out []*regexp.Regexp
		for _, tag := range []string{"head", "script", "style", "noscript", "nav", "footer", "header", "aside"} {
			out = append(out, regexp.MustCompile(`(?is)<`+tag+`[\s>].*?</`+tag+`>`))
		}
		return out
	}()
	commentRe  = regexp.MustCompile(`(?s)<!--.*?-->`)
	breakTagRe = regexp.MustCompile(`(?i)<(br|/p|/div|/tr|/li|/h[1-6]|/table|/section|/article|/dd|/dt|/ul|/ol)\b[^>]*>`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
)

// extractTitle pulls the <title> from HTML.
func extractTitle(doc string) string {
	m := titleRe.FindStringSubmatch(doc)
	if len(m) > 1 {
		return strings.TrimSpace(html.UnescapeString(m[1]))
	}
	return ""
}

// StripHTML removes boilerplate blocks, turns block-level closing tags into
// line breaks, strips remaining tags, and decodes entities.
func StripHTML(doc string) string {
	doc = commentRe.ReplaceAllString(doc, "")
	for _, re := range dropBlockRes {
		doc = re.ReplaceAllString(doc, "")
	}
	doc = breakTagRe.ReplaceAllString(doc, "\n")
	doc = tagRe.ReplaceAllString(doc, " ")
	doc = html.UnescapeString(doc)
	return CleanLines(doc)
}
