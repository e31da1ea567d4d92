package facility

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/store"
)

func TestMergeObservation_OverwritesPresentFields(t *testing.T) {
	rec := &model.FacilityRecord{Name: "Pool", Address: "Addr", Phone: "02-000-0000", Description: "old"}
	changed := MergeObservation(rec, model.Observation{
		Name:        "Pool",
		Address:     "Addr",
		Phone:       "02-999-9999",
		Location:    &model.Coordinates{Lat: 37.5, Lng: 127},
		DailyPrice:  model.Fixed(5000),
		Facilities:  []string{"sauna"},
		ReviewCount: 3,
	})
	assert.Equal(t, []string{"location", "phone", "facilities", "daily_price", "review_count"}, changed)
	assert.Equal(t, "02-999-9999", rec.Phone)
	assert.Equal(t, "old", rec.Description)
}

func TestMergeObservation_NoChanges(t *testing.T) {
	rec := &model.FacilityRecord{Name: "Pool", Address: "Addr"}
	assert.Empty(t, MergeObservation(rec, model.Observation{Name: "Pool", Address: "Addr"}))
}

func TestApplyFacts_OverlaysPricing(t *testing.T) {
	rec := &model.FacilityRecord{Pricing: model.Pricing{}}
	rec.Pricing.Set(model.CategoryFreeSwim, model.AudienceChild, model.DayTypeWeekday, 2000)
	rec.Pricing.Set(model.CategoryFreeSwim, model.AudienceAdult, model.DayTypeWeekday, 3000)

	update := model.Pricing{}
	update.Set(model.CategoryFreeSwim, model.AudienceAdult, model.DayTypeWeekday, 3500)
	update.Set(model.CategoryMonthlyLesson, model.AudienceAdult, model.DayTypeAny, 70000)

	changed := ApplyFacts(rec, model.FactBundle{Pricing: update})
	assert.Equal(t, []string{"pricing", "free_swim_price", "monthly_lesson_price"}, changed)

	child, ok := rec.Pricing.Get(model.CategoryFreeSwim, model.AudienceChild, model.DayTypeWeekday)
	require.True(t, ok)
	assert.Equal(t, 2000, child, "leaves absent from the bundle are kept")
	assert.Equal(t, model.Fixed(3500), rec.FreeSwimPrice)
	assert.Equal(t, model.Fixed(70000), rec.MonthlyLessonPrice)
}

func TestApplyFacts_EmptyBundleChangesNothing(t *testing.T) {
	lanes := 5
	rec := &model.FacilityRecord{Phone: "02-123-4567", Lanes: &lanes}
	assert.Empty(t, ApplyFacts(rec, model.FactBundle{}))
	assert.Equal(t, "02-123-4567", rec.Phone)
}

func TestPlaceholders(t *testing.T) {
	for _, raw := range []string{"8000", "8,000", "8000.0", "8000원"} {
		assert.True(t, IsPlaceholderPrice(model.CategoryFreeSwim, model.ParsePrice(raw)), raw)
	}
	assert.False(t, IsPlaceholderPrice(model.CategoryDailyPass, model.Fixed(8000)))
	assert.True(t, IsPlaceholderPrice(model.CategoryMonthlyLesson, model.ParsePrice("10,000원")))
	assert.False(t, IsPlaceholderPrice(model.CategoryFreeSwim, model.Described("8000원 내외")))

	assert.True(t, IsPlaceholderHours(DefaultHours()))
	h := DefaultHours()
	h.Add(model.Monday, "23:00-23:30")
	assert.False(t, IsPlaceholderHours(h))
	assert.False(t, IsPlaceholderHours(model.Schedule{}))

	var swim model.Schedule
	swim.Add(model.Tuesday, "06:00-08:00")
	swim.Add(model.Tuesday, "13:00-15:00")
	assert.True(t, IsPlaceholderFreeSwim(swim))
	swim = model.Schedule{}
	swim.Add(model.Tuesday, "06:00-08:00")
	assert.False(t, IsPlaceholderFreeSwim(swim))
}

func TestNearby(t *testing.T) {
	_, st := newTestEngine(t)
	ctx := context.Background()

	var swim model.Schedule
	swim.Add(model.Monday, "09:00-11:00")
	fixtures := []*model.FacilityRecord{
		{Name: "near", Address: "1", Location: &model.Coordinates{Lat: 37.5010, Lng: 127.0}, DailyPrice: model.Fixed(4000), FreeSwim: swim, IsActive: true},
		{Name: "mid", Address: "2", Location: &model.Coordinates{Lat: 37.5200, Lng: 127.0}, FreeSwimPrice: model.Fixed(6000), IsActive: true},
		{Name: "far", Address: "3", Location: &model.Coordinates{Lat: 37.6000, Lng: 127.0}, DailyPrice: model.Fixed(3000), IsActive: true},
		{Name: "closed", Address: "4", Location: &model.Coordinates{Lat: 37.5001, Lng: 127.0}, IsActive: false},
		{Name: "nowhere", Address: "5", IsActive: true},
	}
	for _, r := range fixtures {
		require.NoError(t, st.Create(ctx, r))
	}
	s := NewSearch(st)

	got, err := s.Nearby(ctx, NearbyQuery{Lat: 37.5, Lng: 127.0, RadiusKM: 5})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "near", got[0].Name)
	assert.Equal(t, "mid", got[1].Name)
	assert.InDelta(t, 0.111, got[0].DistanceKM, 0.01)

	maxPrice := 5000
	got, err = s.Nearby(ctx, NearbyQuery{Lat: 37.5, Lng: 127.0, RadiusKM: 5, MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "near", got[0].Name)

	yes := true
	got, err = s.Nearby(ctx, NearbyQuery{Lat: 37.5, Lng: 127.0, HasFreeSwim: &yes})
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.Nearby(ctx, NearbyQuery{Lat: 37.5, Lng: 127.0, RadiusKM: 20})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = s.Nearby(ctx, NearbyQuery{Lat: 137.5, Lng: 127.0})
	assert.Error(t, err)
}

var _ store.Store = (*store.SQLiteStore)(nil)
