package source

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolfinder/pool-cli/internal/fetcher"
)

const seoulPage = `<?xml version="1.0" encoding="UTF-8"?>
<ListPublicReservationSport>
<list_total_count>3</list_total_count>
<RESULT><CODE>INFO-000</CODE><MESSAGE>정상 처리되었습니다</MESSAGE></RESULT>
<row>
  <SVCNM>[자유수영] 잠실수영장 일일입장</SVCNM>
  <PLACENM>잠실종합운동장 실내수영장</PLACENM>
  <PAYATNM>유료(3,500원)</PAYATNM>
  <SVCURL>https://yeyak.seoul.go.kr/1</SVCURL>
  <X>127.0736</X>
  <Y>37.5146</Y>
  <TELNO>02-2240-8800</TELNO>
  <MINCLASSNM>수영장</MINCLASSNM>
  <AREANM>송파구</AREANM>
</row>
<row>
  <SVCNM>풋살장 대관</SVCNM>
  <PLACENM>잠실 풋살장</PLACENM>
</row>
<row>
  <SVCNM>수영 강습</SVCNM>
  <PLACENM>노원구민체육센터</PLACENM>
  <PAYATNM>무료</PAYATNM>
  <X></X>
  <Y></Y>
</row>
</ListPublicReservationSport>`

func TestSeoul_FiltersSwimmingRows(t *testing.T) {
	f := &funcFetcher{fn: func(string) (*fetcher.Response, error) { return okBody(seoulPage), nil }}
	src := NewSeoul(f, "KEY", WithSeoulBaseURL("http://seoul.test/"))

	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Len(t, f.urls, 1)
	assert.Equal(t, "http://seoul.test/KEY/xml/ListPublicReservationSport/1/1000/", f.urls[0])

	first := got[0]
	assert.Equal(t, "[자유수영] 잠실수영장 일일입장", first.Name)
	assert.Equal(t, "잠실종합운동장 실내수영장", first.Address)
	assert.Equal(t, "seoul_opendata", first.Source)
	require.NotNil(t, first.Location)
	assert.InDelta(t, 37.5146, first.Location.Lat, 1e-9)
	amount, ok := first.FreeSwimPrice.Amount()
	require.True(t, ok)
	assert.Equal(t, 3500, amount)

	assert.Nil(t, got[1].Location)
	assert.False(t, got[1].FreeSwimPrice.IsKnown())
}

func TestSeoul_NoData(t *testing.T) {
	body := `<RESULT><CODE>INFO-200</CODE><MESSAGE>해당하는 데이터가 없습니다.</MESSAGE></RESULT>`
	f := &funcFetcher{fn: func(string) (*fetcher.Response, error) { return okBody(body), nil }}

	got, err := NewSeoul(f, "KEY").Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSeoul_APIError(t *testing.T) {
	body := `<RESULT><CODE>INFO-100</CODE><MESSAGE>인증키가 유효하지 않습니다.</MESSAGE></RESULT>`
	f := &funcFetcher{fn: func(string) (*fetcher.Response, error) { return okBody(body), nil }}

	_, err := NewSeoul(f, "BAD").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INFO-100")
}

func TestSeoul_PagesFullResults(t *testing.T) {
	var full strings.Builder
	full.WriteString(`<ListPublicReservationSport><RESULT><CODE>INFO-000</CODE></RESULT>`)
	for i := 0; i < seoulPageSize; i++ {
		full.WriteString(`<row><SVCNM>수영</SVCNM><PLACENM>x</PLACENM></row>`)
	}
	full.WriteString(`</ListPublicReservationSport>`)

	f := &funcFetcher{fn: func(u string) (*fetcher.Response, error) {
		if strings.HasSuffix(u, "/1/1000/") {
			return okBody(full.String()), nil
		}
		return okBody(seoulPage), nil
	}}

	got, err := NewSeoul(f, "KEY").Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, seoulPageSize+2)
	require.Len(t, f.urls, 2)
	assert.True(t, strings.HasSuffix(f.urls[1], "/1001/2000/"))
}

func TestPayInfoPrice(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"유료(3,500원)", 3500, true},
		{"성인 4000 원", 4000, true},
		{"1만원", 10000, true},
		{"무료", 0, false},
		{"월 회원 80,000원", 0, false},
		{"500원", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := PayInfoPrice(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
