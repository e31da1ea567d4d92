// Package kakao provides a client for the Kakao Local keyword search API.
package kakao

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/poolfinder/pool-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://dapi.kakao.com/v2/local"
	// MaxPage is the last page the keyword search will serve.
	MaxPage = 45
	// MaxSize is the largest page size the keyword search accepts.
	MaxSize = 15
)

// Client performs Kakao Local operations.
type Client interface {
	KeywordSearch(ctx context.Context, query string, page, size int) (*KeywordResponse, error)
}

// KeywordResponse is one page of keyword search results.
type KeywordResponse struct {
	Meta      Meta       `json:"meta"`
	Documents []Document `json:"documents"`
}

// Meta carries paging state.
type Meta struct {
	TotalCount    int  `json:"total_count"`
	PageableCount int  `json:"pageable_count"`
	IsEnd         bool `json:"is_end"`
}

// Document is one place. X is longitude and Y latitude, both as strings.
type Document struct {
	ID                string `json:"id"`
	PlaceName         string `json:"place_name"`
	CategoryName      string `json:"category_name"`
	CategoryGroupCode string `json:"category_group_code"`
	Phone             string `json:"phone"`
	AddressName       string `json:"address_name"`
	RoadAddressName   string `json:"road_address_name"`
	X                 string `json:"x"`
	Y                 string `json:"y"`
	PlaceURL          string `json:"place_url"`
}

// Address prefers the road address.
func (d Document) Address() string {
	if d.RoadAddressName != "" {
		return d.RoadAddressName
	}
	return d.AddressName
}

// Coordinates parses the document position. ok is false when either
// coordinate is missing or zero.
func (d Document) Coordinates() (lat, lng float64, ok bool) {
	lng, errX := strconv.ParseFloat(d.X, 64)
	lat, errY := strconv.ParseFloat(d.Y, 64)
	if errX != nil || errY != nil || lat == 0 || lng == 0 {
		return 0, 0, false
	}
	return lat, lng, true
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
	restKey string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a Kakao Local client from a REST API key.
func NewClient(restKey string, opts ...Option) Client {
	c := &httpClient{
		restKey: restKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	c.retry.OnRetry = resilience.RetryLogger("kakao", "keyword_search")
	return c
}

func (c *httpClient) KeywordSearch(ctx context.Context, query string, page, size int) (*KeywordResponse, error) {
	if page < 1 || page > MaxPage {
		return nil, eris.Errorf("kakao: page %d out of range 1-%d", page, MaxPage)
	}
	if size < 1 || size > MaxSize {
		size = MaxSize
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("sort", "accuracy")

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/keyword.json?"+q.Encode(), nil)
		if err != nil {
			return nil, eris.Wrap(err, "kakao: create request")
		}
		req.Header.Set("Authorization", "KakaoAK "+c.restKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "kakao: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "kakao: read response")
		}
		if err := resilience.CheckStatus("kakao", resp.StatusCode, string(respBody)); err != nil {
			return nil, err
		}
		return respBody, nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "kakao: keyword search")
	}

	var result KeywordResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "kakao: unmarshal response")
	}
	return &result, nil
}
