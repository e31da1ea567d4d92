// Package naver provides a client for the Naver open search APIs (web
// documents and local places).
package naver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/poolfinder/pool-cli/internal/resilience"
)

const defaultBaseURL = "https://openapi.naver.com/v1/search"

// Client performs Naver search operations.
type Client interface {
	WebSearch(ctx context.Context, query string, display int) (*WebResponse, error)
	LocalSearch(ctx context.Context, query string, display, start int) (*LocalResponse, error)
}

// WebResponse is the response from the web document search.
type WebResponse struct {
	Total int       `json:"total"`
	Items []WebItem `json:"items"`
}

// WebItem is one web document hit. Title and Description carry <b> markup.
type WebItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

// LocalResponse is the response from the local place search.
type LocalResponse struct {
	Total   int         `json:"total"`
	Start   int         `json:"start"`
	Display int         `json:"display"`
	Items   []LocalItem `json:"items"`
}

// LocalItem is one place hit. MapX/MapY are WGS84 degrees scaled by 1e7.
type LocalItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Telephone   string `json:"telephone"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

// Coordinates converts MapX/MapY to latitude and longitude.
func (it LocalItem) Coordinates() (lat, lng float64, ok bool) {
	x, errX := strconv.ParseFloat(it.MapX, 64)
	y, errY := strconv.ParseFloat(it.MapY, 64)
	if errX != nil || errY != nil || x == 0 || y == 0 {
		return 0, 0, false
	}
	return y / 1e7, x / 1e7, true
}

var markupReplacer = strings.NewReplacer("<b>", "", "</b>", "", "&amp;", "&", "&quot;", `"`, "&lt;", "<", "&gt;", ">")

// StripMarkup removes the bold tags and entities Naver puts in titles.
func StripMarkup(s string) string {
	return strings.TrimSpace(markupReplacer.Replace(s))
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
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

type httpClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	http         *http.Client
	retry        resilience.RetryConfig
}

// NewClient creates a Naver search client.
func NewClient(clientID, clientSecret string, opts ...Option) Client {
	c := &httpClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	c.retry.OnRetry = resilience.RetryLogger("naver", "search")
	return c
}

func (c *httpClient) WebSearch(ctx context.Context, query string, display int) (*WebResponse, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("display", strconv.Itoa(display))

	var result WebResponse
	if err := c.get(ctx, "/webkr.json", q, &result); err != nil {
		return nil, eris.Wrap(err, "naver: web search")
	}
	return &result, nil
}

func (c *httpClient) LocalSearch(ctx context.Context, query string, display, start int) (*LocalResponse, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("display", strconv.Itoa(display))
	q.Set("start", strconv.Itoa(start))
	q.Set("sort", "random")

	var result LocalResponse
	if err := c.get(ctx, "/local.json", q, &result); err != nil {
		return nil, eris.Wrap(err, "naver: local search")
	}
	return &result, nil
}

func (c *httpClient) get(ctx context.Context, path string, q url.Values, out any) error {
	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
		if err != nil {
			return nil, eris.Wrap(err, "naver: create request")
		}
		req.Header.Set("X-Naver-Client-Id", c.clientID)
		req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "naver: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "naver: read response")
		}
		if resp.StatusCode != http.StatusOK {
			return nil, resilience.CheckStatus("naver", resp.StatusCode, string(respBody))
		}
		return respBody, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "naver: unmarshal response")
	}
	return nil
}
