package scrape

import (
	"context"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrExcluded is returned for URLs the chain refuses to fetch.
var ErrExcluded = eris.New("scrape: url excluded")

// Chain tries scrapers in priority order, returning the first success.
type Chain struct {
	PathMatcher *PathMatcher
	scrapers    []Scraper
}

// NewChain builds a Chain. A nil matcher excludes nothing.
func NewChain(matcher *PathMatcher, scrapers ...Scraper) *Chain {
	if matcher == nil {
		matcher = NewPathMatcher(nil)
	}
	return &Chain{
		PathMatcher: matcher,
		scrapers:    scrapers,
	}
}

func (c *Chain) Name() string { return "chain" }

// Supports reports whether the URL passes the path matcher.
func (c *Chain) Supports(targetURL string) bool {
	return !c.PathMatcher.IsExcluded(targetURL)
}

// Scrape returns the first result with text, trying scrapers in order.
// When every candidate fails the error carries each scraper's failure.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	if c.PathMatcher.IsExcluded(targetURL) {
		return nil, eris.Wrapf(ErrExcluded, "scrape: %s", targetURL)
	}

	var failures []error
	for _, s := range c.scrapers {
		if !s.Supports(targetURL) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "scrape: context done")
		}
		result, err := s.Scrape(ctx, targetURL)
		if err == nil && (result == nil || result.Page.Text == "") {
			err = eris.Errorf("scrape: %s returned no text", s.Name())
		}
		if err == nil {
			return result, nil
		}
		zap.L().Debug("scrape: falling through",
			zap.String("scraper", s.Name()),
			zap.String("url", targetURL),
			zap.Error(err),
		)
		failures = append(failures, fmt.Errorf("%s: %w", s.Name(), err))
	}
	if len(failures) == 0 {
		return nil, eris.Errorf("scrape: no suitable scraper for url: %s", targetURL)
	}
	return nil, eris.Wrap(errors.Join(failures...), "scrape: all scrapers failed")
}
