package facility

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/poolfinder/pool-cli/internal/geo"
	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/store"
)

// DefaultRadiusKM is used when a query leaves the radius unset.
const DefaultRadiusKM = 5.0

// ErrInvalidPoint is returned for a query point outside WGS84 bounds.
var ErrInvalidPoint = eris.New("facility: invalid point")

// NearbyQuery selects active facilities around a point.
type NearbyQuery struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	RadiusKM    float64 `json:"radius_km"`
	MinPrice    *int    `json:"min_price,omitempty"`
	MaxPrice    *int    `json:"max_price,omitempty"`
	HasFreeSwim *bool   `json:"has_free_swim,omitempty"`
	Limit       int     `json:"limit,omitempty"`
}

// NearbyResult is a facility with its distance from the query point.
type NearbyResult struct {
	model.FacilityRecord
	DistanceKM float64 `json:"distance_km"`
}

// Search answers geo queries over the store.
type Search struct {
	store store.Store
}

// NewSearch creates a Search over st.
func NewSearch(st store.Store) *Search {
	return &Search{store: st}
}

// EntryPrice is the single-visit price used for price filters: the daily
// pass when fixed, otherwise the free-swim price.
func EntryPrice(rec *model.FacilityRecord) (int, bool) {
	if n, ok := rec.DailyPrice.Amount(); ok {
		return n, true
	}
	return rec.FreeSwimPrice.Amount()
}

// Nearby pre-filters with a bounding box in the store, then keeps records
// whose haversine distance is within the radius, sorted nearest first.
func (s *Search) Nearby(ctx context.Context, q NearbyQuery) ([]NearbyResult, error) {
	if q.Lat < -90 || q.Lat > 90 || q.Lng < -180 || q.Lng > 180 {
		return nil, eris.Wrapf(ErrInvalidPoint, "%f,%f", q.Lat, q.Lng)
	}
	if q.RadiusKM <= 0 {
		q.RadiusKM = DefaultRadiusKM
	}

	b := geo.BoundingBox(q.Lat, q.Lng, q.RadiusKM)
	candidates, err := s.store.ListInBounds(ctx, store.BoundsFilter{
		MinLat:     b.Min(1),
		MaxLat:     b.Max(1),
		MinLng:     b.Min(0),
		MaxLng:     b.Max(0),
		ActiveOnly: true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "facility: nearby candidates")
	}

	var out []NearbyResult
	for i := range candidates {
		rec := &candidates[i]
		if rec.Location == nil || !matchesFilters(rec, q) {
			continue
		}
		d := geo.DistanceKM(q.Lat, q.Lng, rec.Location.Lat, rec.Location.Lng)
		if d > q.RadiusKM {
			continue
		}
		out = append(out, NearbyResult{FacilityRecord: *rec, DistanceKM: d})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKM < out[j].DistanceKM })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func matchesFilters(rec *model.FacilityRecord, q NearbyQuery) bool {
	if q.MinPrice != nil || q.MaxPrice != nil {
		price, ok := EntryPrice(rec)
		if !ok {
			return false
		}
		if q.MinPrice != nil && price < *q.MinPrice {
			return false
		}
		if q.MaxPrice != nil && price > *q.MaxPrice {
			return false
		}
	}
	if q.HasFreeSwim != nil && *q.HasFreeSwim != !rec.FreeSwim.IsEmpty() {
		return false
	}
	return true
}
