package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const curated = `pools:
  - name: 잠실수영장
    address: 서울 송파구 올림픽로 25
    location: {lat: 37.5146, lng: 127.0736}
    phone: 02-2240-8800
    lanes: 8
    pool_size: 50m
    facilities: [샤워실, 주차장]
    free_swim_price: "3,500원"
    monthly_lesson_price: 가격 다양
  - name: 올림픽수영장
    address: 서울 송파구 방이동 88
    source: manual
`

func TestStatic_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(curated), 0o600))

	got, err := NewStatic(path).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "잠실수영장", first.Name)
	require.NotNil(t, first.Location)
	assert.InDelta(t, 127.0736, first.Location.Lng, 1e-9)
	require.NotNil(t, first.Lanes)
	assert.Equal(t, 8, *first.Lanes)
	assert.Equal(t, "50m", first.PoolSize)
	assert.Equal(t, []string{"샤워실", "주차장"}, first.Facilities)
	assert.Equal(t, "static", first.Source)
	amount, ok := first.FreeSwimPrice.Amount()
	require.True(t, ok)
	assert.Equal(t, 3500, amount)
	text, ok := first.MonthlyLessonPrice.Text()
	require.True(t, ok)
	assert.Equal(t, "가격 다양", text)
	assert.False(t, first.DailyPrice.IsKnown())

	assert.Equal(t, "manual", got[1].Source)
}

func TestStatic_MissingFile(t *testing.T) {
	_, err := NewStatic(filepath.Join(t.TempDir(), "none.yaml")).Fetch(context.Background())
	require.Error(t, err)
}

func TestParseStatic_RejectsNameless(t *testing.T) {
	_, err := ParseStatic([]byte("pools:\n  - address: 어딘가\n"), "static", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 0 has no name")
}

func TestParseStatic_BadYAML(t *testing.T) {
	_, err := ParseStatic([]byte("pools: [unterminated"), "static", time.Now())
	require.Error(t, err)
}
