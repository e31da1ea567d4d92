package source

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolfinder/pool-cli/internal/fetcher"
)

const publicDataPage1 = `{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL_SERVICE"},
"body":{"items":[
 {"fcltyNm":"OO시민수영장","rdnmadr":"경기도 수원시 장안구 1","lnmadr":"경기도 수원시 조원동 1",
  "latitude":"37.30","longitude":"127.01","phoneNumber":"031-000-0000","homepageUrl":"https://swim.example.kr","parkingLotCnt":"50"},
 {"fcltyNm":"OO테니스장","rdnmadr":"경기도 수원시 2"},
 {"faciNm":"Aqua Pool","fcltyNm":"Public POOL","lnmadr":"부산 해운대구 3","telno":"051-1","parkingLotCnt":"0"}
]}}}`

const publicDataEmpty = `{"response":{"header":{"resultCode":"00"},"body":{"items":[]}}}`

func TestPublicData_FiltersAndMaps(t *testing.T) {
	f := &funcFetcher{fn: func(u string) (*fetcher.Response, error) {
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, err
		}
		if parsed.Query().Get("pageNo") == "1" {
			return okBody(publicDataPage1), nil
		}
		return okBody(publicDataEmpty), nil
	}}
	src := NewPublicData(f, "SERVICEKEY", WithPublicDataURL("http://data.test/api"), WithPublicDataPacing(0))

	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Len(t, f.urls, 2)

	q, err := url.Parse(f.urls[0])
	require.NoError(t, err)
	assert.Equal(t, "SERVICEKEY", q.Query().Get("serviceKey"))
	assert.Equal(t, "100", q.Query().Get("numOfRows"))
	assert.Equal(t, "json", q.Query().Get("type"))

	first := got[0]
	assert.Equal(t, "OO시민수영장", first.Name)
	assert.Equal(t, "경기도 수원시 장안구 1", first.Address)
	assert.Equal(t, "031-000-0000", first.Phone)
	assert.Equal(t, []string{"주차장"}, first.Facilities)
	require.NotNil(t, first.Parking)
	assert.True(t, *first.Parking)
	require.NotNil(t, first.Location)
	assert.InDelta(t, 37.30, first.Location.Lat, 1e-9)
	assert.Equal(t, "publicdata", first.Source)

	second := got[1]
	assert.Equal(t, "Aqua Pool", second.Name)
	assert.Equal(t, "부산 해운대구 3", second.Address)
	assert.Equal(t, "051-1", second.Phone)
	assert.Nil(t, second.Parking)
	assert.Empty(t, second.Facilities)
}

func TestPublicData_NoDataStops(t *testing.T) {
	f := &funcFetcher{fn: func(string) (*fetcher.Response, error) {
		return okBody(`{"response":{"header":{"resultCode":"03","resultMsg":"NODATA_ERROR"}}}`), nil
	}}
	got, err := NewPublicData(f, "k", WithPublicDataPacing(0)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPublicData_APIError(t *testing.T) {
	f := &funcFetcher{fn: func(string) (*fetcher.Response, error) {
		return okBody(`{"response":{"header":{"resultCode":"30","resultMsg":"SERVICE_KEY_IS_NOT_REGISTERED_ERROR"}}}`), nil
	}}
	_, err := NewPublicData(f, "k", WithPublicDataPacing(0)).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVICE_KEY_IS_NOT_REGISTERED_ERROR")
}
