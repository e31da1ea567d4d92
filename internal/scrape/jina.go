package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/poolfinder/pool-cli/internal/resilience"
	"github.com/poolfinder/pool-cli/pkg/jina"
)

// JinaAdapter wraps a Jina Reader client as a Scraper with a circuit breaker.
type JinaAdapter struct {
	client  jina.Client
	breaker *resilience.Breaker
}

// NewJinaAdapter creates a JinaAdapter from a Jina client. Three consecutive
// failures open the circuit for 60s, causing immediate fallback to the next
// scraper.
func NewJinaAdapter(client jina.Client) *JinaAdapter {
	return &JinaAdapter{
		client: client,
		breaker: resilience.NewBreaker("jina", resilience.BreakerConfig{
			FailureThreshold: 3,
			Cooldown:         60 * time.Second,
		}),
	}
}

func (j *JinaAdapter) Name() string { return "jina" }

// Supports returns true unless the circuit breaker is open.
func (j *JinaAdapter) Supports(_ string) bool {
	return !j.breaker.Open()
}

// Scrape fetches a URL via Jina Reader and validates the response.
func (j *JinaAdapter) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := resilience.Call(ctx, j.breaker, func(ctx context.Context) (*jina.ReadResponse, error) {
		resp, err := j.client.Read(ctx, targetURL)
		if err != nil {
			return nil, err
		}
		if needsFallback(resp) {
			return nil, eris.New("jina: response needs fallback")
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	pageURL := resp.Data.URL
	if pageURL == "" {
		pageURL = targetURL
	}
	return &Result{
		Page: Page{
			URL:        pageURL,
			Title:      resp.Data.Title,
			Text:       CleanLines(resp.Data.Content),
			StatusCode: resp.Code,
		},
		Source: "jina",
	}, nil
}

// Reader output for a challenge or maintenance page is short and carries
// one of these phrases.
var fallbackPhrases = []string{
	"just a moment",
	"attention required",
	"access denied",
	"403 forbidden",
	"enable javascript",
	"please enable cookies",
	"접근이 거부",
	"서비스 점검",
}

const (
	minReaderChars       = 100
	challengeMaxChars = 1000
)

// needsFallback reports whether a Jina response is empty or a challenge
// page that another scraper should retry.
func needsFallback(resp *jina.ReadResponse) bool {
	if resp == nil || (resp.Code != 0 && resp.Code != 200) {
		return true
	}
	content := strings.TrimSpace(resp.Data.Content)
	if len(content) < minReaderChars {
		return true
	}
	if len(content) >= challengeMaxChars {
		return false
	}
	if blocked, _ := DetectBlock([]byte(content)); blocked {
		return true
	}
	lower := strings.ToLower(content)
	for _, p := range fallbackPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
