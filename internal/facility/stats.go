package facility

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/poolfinder/pool-cli/internal/geo"
	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/store"
)

// DistrictCount is the number of active facilities in one gu.
type DistrictCount struct {
	District string `json:"district"`
	Count    int    `json:"count"`
}

// Stats summarizes the facility table.
type Stats struct {
	Total          int                            `json:"total"`
	Active         int                            `json:"active"`
	WithLocation   int                            `json:"with_location"`
	WithFreeSwim   int                            `json:"with_free_swim"`
	WithEntryPrice int                            `json:"with_entry_price"`
	AvgEntryPrice  int                            `json:"avg_entry_price"`
	ByStatus       map[model.EnrichmentStatus]int `json:"by_status"`
	// ByDistrict is sorted by count, largest first. Addresses without a gu
	// are counted under "기타".
	ByDistrict []DistrictCount `json:"by_district"`
}

const (
	statsPageSize   = 500
	unknownDistrict = "기타"
)

// Stats scans every record and aggregates counts. Price and district
// figures cover active records only.
func (s *Search) Stats(ctx context.Context) (*Stats, error) {
	byStatus, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "facility: count by status")
	}
	out := &Stats{ByStatus: byStatus}

	districts := make(map[string]int)
	priceSum := 0
	for offset := 0; ; offset += statsPageSize {
		recs, err := s.store.List(ctx, store.ListFilter{Offset: offset, Limit: statsPageSize})
		if err != nil {
			return nil, eris.Wrap(err, "facility: stats scan")
		}
		for i := range recs {
			rec := &recs[i]
			out.Total++
			if !rec.IsActive {
				continue
			}
			out.Active++
			if rec.HasLocation() {
				out.WithLocation++
			}
			if !rec.FreeSwim.IsEmpty() {
				out.WithFreeSwim++
			}
			if price, ok := EntryPrice(rec); ok {
				out.WithEntryPrice++
				priceSum += price
			}
			d := geo.District(rec.Address)
			if d == "" {
				d = unknownDistrict
			}
			districts[d]++
		}
		if len(recs) < statsPageSize {
			break
		}
	}

	if out.WithEntryPrice > 0 {
		out.AvgEntryPrice = priceSum / out.WithEntryPrice
	}
	for d, n := range districts {
		out.ByDistrict = append(out.ByDistrict, DistrictCount{District: d, Count: n})
	}
	sort.Slice(out.ByDistrict, func(i, j int) bool {
		a, b := out.ByDistrict[i], out.ByDistrict[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.District < b.District
	})
	return out, nil
}
