package scrape

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// BrowserOptions configures the headless Chrome scraper.
type BrowserOptions struct {
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
	// Settle is how long scripts get to render after navigation. Default 2s.
	Settle time.Duration
	// Timeout bounds one page load. Default 30s.
	Timeout   time.Duration
	UserAgent string
}

// BrowserScraper renders JavaScript-only pages in headless Chrome. It is the
// last link in the chain since it is slow and needs a local browser.
type BrowserScraper struct {
	opts BrowserOptions
	// sem limits concurrent browser processes.
	sem chan struct{}
}

// NewBrowserScraper creates a BrowserScraper allowing up to maxTabs
// concurrent pages.
func NewBrowserScraper(opts BrowserOptions, maxTabs int) *BrowserScraper {
	if opts.Settle <= 0 {
		opts.Settle = 2 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if maxTabs <= 0 {
		maxTabs = 1
	}
	return &BrowserScraper{opts: opts, sem: make(chan struct{}, maxTabs)}
}

func (b *BrowserScraper) Name() string           { return "browser" }
func (b *BrowserScraper) Supports(_ string) bool { return true }

func (b *BrowserScraper) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("log-level", "3"),
		chromedp.WindowSize(1280, 900),
	)
	if b.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.opts.UserAgent))
	}
	if b.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.opts.ExecPath))
	}
	return opts
}

// Scrape loads the URL, waits for scripts to settle, and extracts text
// from the rendered DOM.
func (b *BrowserScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	select {
	case b.sem <- struct{}{}:
		defer func() { <-b.sem }()
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "browser: wait for tab")
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.opts.Timeout)
	defer cancelTimeout()

	var doc, location string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(targetURL),
		chromedp.Sleep(b.opts.Settle),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &doc, chromedp.ByQuery),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "browser: render %s", targetURL)
	}
	if location == "" {
		location = targetURL
	}

	title, text := PageText(doc, location)
	return &Result{
		Page: Page{
			URL:        location,
			Title:      title,
			Text:       text,
			StatusCode: 200,
		},
		Source: "browser",
	}, nil
}
