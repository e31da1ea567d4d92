package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/poolfinder/pool-cli/internal/config"
	"github.com/poolfinder/pool-cli/internal/enrich"
	"github.com/poolfinder/pool-cli/internal/extract"
	"github.com/poolfinder/pool-cli/internal/facility"
	"github.com/poolfinder/pool-cli/internal/fetcher"
	"github.com/poolfinder/pool-cli/internal/scrape"
	"github.com/poolfinder/pool-cli/internal/source"
	"github.com/poolfinder/pool-cli/internal/store"
	"github.com/poolfinder/pool-cli/pkg/anthropic"
	"github.com/poolfinder/pool-cli/pkg/google"
	"github.com/poolfinder/pool-cli/pkg/jina"
	"github.com/poolfinder/pool-cli/pkg/kakao"
	"github.com/poolfinder/pool-cli/pkg/naver"
	"github.com/poolfinder/pool-cli/pkg/openai"
)

func newFetcher(c *config.Config, timeout time.Duration) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: c.Scrape.UserAgent,
		Timeout:   timeout,
	})
}

// buildCompleter returns the completer for the configured provider, or nil
// when no key is set.
func buildCompleter(c *config.Config) extract.Completer {
	switch c.Enrich.Provider {
	case "openai":
		if c.OpenAI.Key == "" {
			return nil
		}
		var opts []openai.Option
		if c.OpenAI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(c.OpenAI.BaseURL))
		}
		return extract.NewOpenAICompleter(openai.NewClient(c.OpenAI.Key, opts...), c.OpenAI.Model)
	default:
		if c.Anthropic.Key == "" {
			return nil
		}
		return extract.NewAnthropicCompleter(anthropic.NewClient(c.Anthropic.Key), c.Anthropic.Model)
	}
}

// buildExtractor resolves the enrichment strategy. Auto falls back to the
// heuristic when the model finds nothing, or uses the heuristic alone when
// no key is configured.
func buildExtractor(c *config.Config) (extract.Extractor, error) {
	heuristic := extract.NewHeuristic()
	switch c.Enrich.Strategy {
	case config.StrategyHeuristic:
		return heuristic, nil
	case config.StrategyModel:
		completer := buildCompleter(c)
		if completer == nil {
			return nil, eris.Errorf("%s.key is required for the model strategy", c.Enrich.Provider)
		}
		return extract.NewModel(completer, c.Enrich.Provider, extract.WithCompletionTimeout(extractTimeout(c)))
	case config.StrategyAuto, "":
		completer := buildCompleter(c)
		if completer == nil {
			zap.L().Info("enrich: no model key configured, using heuristic extractor")
			return heuristic, nil
		}
		m, err := extract.NewModel(completer, c.Enrich.Provider, extract.WithCompletionTimeout(extractTimeout(c)))
		if err != nil {
			return nil, err
		}
		return extract.NewFallback(m, heuristic), nil
	default:
		return nil, eris.Errorf("unknown enrichment strategy %q", c.Enrich.Strategy)
	}
}

func newJinaClient(c *config.Config) jina.Client {
	var opts []jina.Option
	if c.Jina.BaseURL != "" {
		opts = append(opts, jina.WithBaseURL(c.Jina.BaseURL))
	}
	if c.Jina.SearchBaseURL != "" {
		opts = append(opts, jina.WithSearchBaseURL(c.Jina.SearchBaseURL))
	}
	return jina.NewClient(c.Jina.Key, opts...)
}

func newNaverClient(c *config.Config) naver.Client {
	var opts []naver.Option
	if c.Naver.BaseURL != "" {
		opts = append(opts, naver.WithBaseURL(c.Naver.BaseURL))
	}
	return naver.NewClient(c.Naver.ClientID, c.Naver.ClientSecret, opts...)
}

// buildScraper assembles local HTTP, then Jina, then the headless browser.
func buildScraper(c *config.Config, f fetcher.Fetcher) *scrape.Chain {
	scrapers := []scrape.Scraper{scrape.NewLocalScraper(f)}
	if c.Scrape.Jina {
		scrapers = append(scrapers, scrape.NewJinaAdapter(newJinaClient(c)))
	}
	if b := c.Scrape.Browser; b.Enabled {
		scrapers = append(scrapers, scrape.NewBrowserScraper(scrape.BrowserOptions{
			ExecPath:  b.ExecPath,
			Settle:    time.Duration(b.SettleMS) * time.Millisecond,
			Timeout:   time.Duration(b.TimeoutSecs) * time.Second,
			UserAgent: c.Scrape.UserAgent,
		}, b.MaxTabs))
	}
	return scrape.NewChain(excludeMatcher(c), scrapers...)
}

func excludeMatcher(c *config.Config) *scrape.PathMatcher {
	return scrape.NewPathMatcher(c.Scrape.ExcludeKeywords, c.Scrape.ExcludePatterns...)
}

// buildSearcher returns nil when search is disabled. Naver is used only
// when its credentials are present; otherwise Jina search stands in.
func buildSearcher(c *config.Config) scrape.Searcher {
	switch c.Enrich.SearchProvider {
	case "none":
		return nil
	case "jina":
		return scrape.NewJinaSearcher(newJinaClient(c))
	default:
		if c.Naver.ClientID != "" && c.Naver.ClientSecret != "" {
			return scrape.NewNaverSearcher(newNaverClient(c))
		}
		if c.Scrape.Jina {
			zap.L().Info("enrich: naver credentials missing, searching with jina")
			return scrape.NewJinaSearcher(newJinaClient(c))
		}
		return nil
	}
}

// extractTimeout bounds one model completion. The orchestrator allows a
// fetch timeout on top so the heuristic fallback still runs after a timed
// out completion.
func extractTimeout(c *config.Config) time.Duration {
	return time.Duration(c.Enrich.ExtractTimeoutSecs) * time.Second
}

// buildOrchestrator wires the enrichment orchestrator over st.
func buildOrchestrator(c *config.Config, st store.Store, engine *facility.Engine) (*enrich.Orchestrator, error) {
	ex, err := buildExtractor(c)
	if err != nil {
		return nil, err
	}
	fetchTimeout := time.Duration(c.Enrich.FetchTimeoutSecs) * time.Second
	f := newFetcher(c, fetchTimeout)
	return enrich.New(enrich.Config{
		Pacing:          time.Duration(c.Enrich.PacingMS) * time.Millisecond,
		FetchTimeout:    fetchTimeout,
		ExtractTimeout:  extractTimeout(c) + fetchTimeout,
		Concurrency:     c.Enrich.Concurrency,
		MaxTextChars:    c.Enrich.MaxTextChars,
		SearchPageChars: c.Enrich.SearchPageChars,
		SearchResults:   c.Enrich.SearchResults,
		SearchSuffix:    c.Enrich.SearchSuffix,
	}, enrich.Deps{
		Store:     st,
		Engine:    engine,
		Scraper:   buildScraper(c, f),
		Searcher:  buildSearcher(c),
		Extractor: ex,
		Exclude:   excludeMatcher(c),
	})
}

// buildRegistry registers every source whose settings are present. The
// static source is always available.
func buildRegistry(c *config.Config, f fetcher.Fetcher) *source.Registry {
	pacing := time.Duration(c.Ingest.PacingMS) * time.Millisecond
	reg := source.NewRegistry()

	if c.Kakao.RestKey != "" {
		var opts []kakao.Option
		if c.Kakao.BaseURL != "" {
			opts = append(opts, kakao.WithBaseURL(c.Kakao.BaseURL))
		}
		reg.Register(source.NewKakao(kakao.NewClient(c.Kakao.RestKey, opts...), nil, pacing))
	}
	if c.Naver.ClientID != "" && c.Naver.ClientSecret != "" {
		reg.Register(source.NewNaverLocal(newNaverClient(c), nil, pacing))
	}
	if c.Google.Key != "" {
		var opts []google.Option
		if c.Google.BaseURL != "" {
			opts = append(opts, google.WithBaseURL(c.Google.BaseURL))
		}
		reg.Register(source.NewGooglePlaces(google.NewClient(c.Google.Key, opts...), nil, pacing))
	}
	if c.Seoul.Key != "" {
		var opts []source.SeoulOption
		if c.Seoul.BaseURL != "" {
			opts = append(opts, source.WithSeoulBaseURL(c.Seoul.BaseURL))
		}
		reg.Register(source.NewSeoul(f, c.Seoul.Key, opts...))
	}
	if c.PublicData.Key != "" {
		opts := []source.PublicDataOption{source.WithPublicDataPacing(pacing)}
		if c.PublicData.BaseURL != "" {
			opts = append(opts, source.WithPublicDataURL(c.PublicData.BaseURL))
		}
		reg.Register(source.NewPublicData(f, c.PublicData.Key, opts...))
	}
	reg.Register(source.NewStatic(c.Ingest.StaticPath))
	return reg
}
