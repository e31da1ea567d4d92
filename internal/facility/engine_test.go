package facility

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "pools.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	e := NewEngine(st)
	clock := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return clock }
	return e, st
}

func intPtr(n int) *int { return &n }

func TestIngest_CreatesThenMerges(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	obs := model.Observation{
		Name:     "마포구민체육센터 수영장",
		Address:  "서울 마포구 월드컵로 235",
		Location: &model.Coordinates{Lat: 37.563, Lng: 126.908},
		Phone:    "02-300-1234",
		Source:   "kakao",
	}
	rec, isNew, err := e.Ingest(ctx, obs)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, model.EnrichmentPending, rec.EnrichmentStatus)
	assert.True(t, rec.IsActive)

	require.NoError(t, st.MarkEnrichment(ctx, rec.ID, model.EnrichmentSuccess, time.Now()))

	again := model.Observation{
		Name:    "마포구민체육센터  수영장",
		Address: "서울 마포구 월드컵로 235",
		Lanes:   intPtr(8),
		Source:  "naver",
	}
	merged, isNew, err := e.Ingest(ctx, again)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, rec.ID, merged.ID)
	assert.Equal(t, "02-300-1234", merged.Phone, "absent fields keep stored values")
	require.NotNil(t, merged.Lanes)
	assert.Equal(t, 8, *merged.Lanes)
	assert.Equal(t, "naver", merged.Source)
	assert.Equal(t, model.EnrichmentSuccess, merged.EnrichmentStatus, "status untouched on match")

	all, err := st.List(ctx, store.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIngest_DifferentAddressIsNewRecord(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, isNew, err := e.Ingest(ctx, model.Observation{Name: "구민 수영장", Address: "서울 강서구 1"})
	require.NoError(t, err)
	assert.True(t, isNew)
	_, isNew, err = e.Ingest(ctx, model.Observation{Name: "구민 수영장", Address: "서울 강동구 2"})
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestIngest_RejectsBlankName(t *testing.T) {
	e, _ := newTestEngine(t)
	_, _, err := e.Ingest(context.Background(), model.Observation{Name: "  "})
	assert.Error(t, err)
}

func TestIngest_PlaceholderNeverReplacesValue(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_, _, err := e.Ingest(ctx, model.Observation{Name: "A", Address: "B", FreeSwimPrice: model.Fixed(4500)})
	require.NoError(t, err)

	rec, _, err := e.Ingest(ctx, model.Observation{
		Name: "A", Address: "B",
		FreeSwimPrice:  model.ParsePrice("8,000원"),
		OperatingHours: DefaultHours(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.Fixed(4500), rec.FreeSwimPrice)
	assert.True(t, rec.OperatingHours.IsEmpty())
}

func TestApplyEnrichment(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	rec, _, err := e.Ingest(ctx, model.Observation{Name: "A", Address: "B", Phone: "02-111-2222"})
	require.NoError(t, err)

	pricing := model.Pricing{}
	pricing.Set(model.CategoryFreeSwim, model.AudienceAdult, model.DayTypeWeekday, 3000)
	var swim model.Schedule
	swim.Add(model.Saturday, "10:00-12:00")
	bundle := model.FactBundle{Pricing: pricing, FreeSwim: &swim, Lanes: intPtr(6)}

	updated, fields, err := e.ApplyEnrichment(ctx, rec.ID, bundle)
	require.NoError(t, err)
	assert.Equal(t, []string{"pricing", "free_swim_price", "free_swim", "lanes"}, fields)
	assert.Equal(t, model.EnrichmentSuccess, updated.EnrichmentStatus)
	require.NotNil(t, updated.LastEnriched)

	stored, err := st.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "02-111-2222", stored.Phone)
	assert.Equal(t, model.Fixed(3000), stored.FreeSwimPrice)
	assert.Equal(t, []string{"10:00-12:00"}, stored.FreeSwim.Ranges(model.Saturday))
}

func TestMarkFailed(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	rec, _, err := e.Ingest(ctx, model.Observation{Name: "A", Address: "B"})
	require.NoError(t, err)
	require.NoError(t, e.MarkFailed(ctx, rec.ID))

	stored, err := st.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrichmentFailed, stored.EnrichmentStatus)
	assert.ErrorIs(t, e.MarkFailed(ctx, 999), store.ErrNotFound)
}

func TestClean(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	rec := &model.FacilityRecord{
		Name: "A", Address: "B", IsActive: true,
		FreeSwimPrice:    model.Fixed(8000),
		OperatingHours:   DefaultHours(),
		EnrichmentStatus: model.EnrichmentSuccess,
	}
	require.NoError(t, st.Create(ctx, rec))
	clean := &model.FacilityRecord{Name: "C", Address: "D", FreeSwimPrice: model.Fixed(5000)}
	require.NoError(t, st.Create(ctx, clean))

	n, err := e.Clean(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	stored, err := st.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Fixed(8000), stored.FreeSwimPrice, "dry run writes nothing")

	n, err = e.Clean(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	stored, err = st.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, stored.FreeSwimPrice.IsKnown())
	assert.True(t, stored.OperatingHours.IsEmpty())
	assert.Equal(t, model.EnrichmentPending, stored.EnrichmentStatus)
}
