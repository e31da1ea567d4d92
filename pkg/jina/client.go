// Package jina reads pages as text and runs localized web searches through
// Jina AI Reader and Search.
package jina

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/poolfinder/pool-cli/internal/resilience"
)

// Client defines the Jina AI Reader operations.
type Client interface {
	// Read fetches a URL via Jina AI Reader and returns its text content.
	Read(ctx context.Context, targetURL string) (*ReadResponse, error)
	// Search performs a web search via Jina AI Search and returns results.
	Search(ctx context.Context, query string) (*SearchResponse, error)
}

// ReadResponse is the parsed Jina API response.
type ReadResponse struct {
	Code int      `json:"code"`
	Data ReadData `json:"data"`
}

// ReadData holds the content from Jina.
type ReadData struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchResponse is the parsed Jina Search API response.
type SearchResponse struct {
	Code int            `json:"code"`
	Data []SearchResult `json:"data"`
}

// SearchResult represents a single search result.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

// Option configures the Jina client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithSearchBaseURL sets a custom search base URL (for testing).
func WithSearchBaseURL(url string) Option {
	return func(c *httpClient) {
		c.searchBaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithLocale sets the search region and language. Defaults to kr/ko.
func WithLocale(region, language string) Option {
	return func(c *httpClient) {
		c.region, c.language = region, language
	}
}

type httpClient struct {
	apiKey        string
	baseURL       string
	searchBaseURL string
	region        string
	language      string
	http          *http.Client
	retry         resilience.RetryConfig
}

// NewClient creates a new Jina AI client. The key may be empty for the
// keyless tier.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:        apiKey,
		baseURL:       "https://r.jina.ai",
		searchBaseURL: "https://s.jina.ai",
		region:        "kr",
		language:      "ko",
		http:          &http.Client{Timeout: 30 * time.Second},
		retry:         resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get sends a GET with retries on 429 and 5xx. 422 comes back as a status
// so Search can treat it as no results.
func (c *httpClient) get(ctx context.Context, rawURL, op string, header http.Header) ([]byte, int, error) {
	type reply struct {
		body []byte
		code int
	}
	cfg := c.retry
	cfg.OnRetry = resilience.RetryLogger("jina", op)
	r, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (reply, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return reply{}, eris.Wrapf(err, "jina: build %s request", op)
		}
		req.Header = header.Clone()
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return reply{}, eris.Wrapf(err, "jina: %s", op)
		}
		defer resp.Body.Close() //nolint:errcheck
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return reply{}, eris.Wrapf(err, "jina: read %s body", op)
		}
		if resp.StatusCode != http.StatusUnprocessableEntity {
			if err := resilience.CheckStatus("jina", resp.StatusCode, string(body)); err != nil {
				return reply{}, err
			}
		}
		return reply{body: body, code: resp.StatusCode}, nil
	})
	return r.body, r.code, err
}

// Read returns the page as plain text, with navigation and footer removed
// before conversion.
func (c *httpClient) Read(ctx context.Context, targetURL string) (*ReadResponse, error) {
	header := http.Header{}
	header.Set("X-Return-Format", "text")
	header.Set("X-Remove-Selector", "nav, footer, header")
	header.Set("X-Locale", c.language+"-"+strings.ToUpper(c.region))

	body, code, err := c.get(ctx, c.baseURL+"/"+targetURL, "read", header)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, eris.Errorf("jina: read status %d: %s", code, string(body))
	}
	var out ReadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "jina: decode read response")
	}
	return &out, nil
}

// Search runs a web search localized to the client's region.
func (c *httpClient) Search(ctx context.Context, query string) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("gl", c.region)
	q.Set("hl", c.language)
	rawURL := fmt.Sprintf("%s/%s?%s", c.searchBaseURL, url.PathEscape(query), q.Encode())

	body, code, err := c.get(ctx, rawURL, "search", http.Header{})
	if err != nil {
		return nil, err
	}
	if code == http.StatusUnprocessableEntity {
		return &SearchResponse{Code: code}, nil
	}
	var out SearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "jina: decode search response")
	}
	return &out, nil
}
