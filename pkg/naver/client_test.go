package naver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolfinder/pool-cli/internal/resilience"
)

func fastRetry() Option {
	return WithRetry(resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
}

func TestWebSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webkr.json", r.URL.Path)
		assert.Equal(t, "id", r.Header.Get("X-Naver-Client-Id"))
		assert.Equal(t, "secret", r.Header.Get("X-Naver-Client-Secret"))
		assert.Equal(t, "잠실 자유수영 가격 시간표", r.URL.Query().Get("query"))
		assert.Equal(t, "3", r.URL.Query().Get("display"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"total": 1,
			"items": []map[string]any{
				{"title": "<b>잠실</b> 수영장", "link": "https://example.com/pool", "description": "자유수영 <b>가격</b>"},
			},
		})
	}))
	defer ts.Close()

	c := NewClient("id", "secret", WithBaseURL(ts.URL))
	resp, err := c.WebSearch(context.Background(), "잠실 자유수영 가격 시간표", 3)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "잠실 수영장", StripMarkup(resp.Items[0].Title))
	assert.Equal(t, "https://example.com/pool", resp.Items[0].Link)
}

func TestLocalSearch_Coordinates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/local.json", r.URL.Path)
		assert.Equal(t, "6", r.URL.Query().Get("start"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total":1,"start":6,"display":5,"items":[{"title":"구민<b>수영장</b>","category":"스포츠시설>수영장","roadAddress":"서울 마포구 1","mapx":"1269080000","mapy":"375630000"}]}`)) //nolint:errcheck
	}))
	defer ts.Close()

	resp, err := NewClient("id", "secret", WithBaseURL(ts.URL)).LocalSearch(context.Background(), "마포 수영장", 5, 6)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	lat, lng, ok := resp.Items[0].Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 37.563, lat, 1e-9)
	assert.InDelta(t, 126.908, lng, 1e-9)

	_, _, ok = LocalItem{MapX: "", MapY: "1"}.Coordinates()
	assert.False(t, ok)
}

func TestSearch_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"items":[]}`)) //nolint:errcheck
	}))
	defer ts.Close()

	resp, err := NewClient("id", "secret", WithBaseURL(ts.URL), fastRetry()).WebSearch(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_PermanentError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errorMessage":"Authentication failed"}`)) //nolint:errcheck
	}))
	defer ts.Close()

	_, err := NewClient("id", "bad", WithBaseURL(ts.URL), fastRetry()).WebSearch(context.Background(), "q", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, int32(1), calls.Load())
}
