// Package store persists canonical facility records and enrichment runs.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/poolfinder/pool-cli/internal/model"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = eris.New("store: not found")

// ListFilter pages through records ordered by id.
type ListFilter struct {
	Offset     int  `json:"offset,omitempty"`
	Limit      int  `json:"limit,omitempty"`
	ActiveOnly bool `json:"active_only,omitempty"`
}

// BoundsFilter selects records with coordinates inside a lat/lng box.
type BoundsFilter struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
	ActiveOnly     bool
}

// EnrichmentFilter selects records for the enrichment orchestrator. When
// Status is set only that status matches; otherwise ExcludeStatus, if set,
// is filtered out. Results are ordered by id.
type EnrichmentFilter struct {
	Status        model.EnrichmentStatus
	ExcludeStatus model.EnrichmentStatus
	Limit         int
}

// Store defines the persistence interface for facilities.
type Store interface {
	// Facilities
	Create(ctx context.Context, rec *model.FacilityRecord) error
	Update(ctx context.Context, rec *model.FacilityRecord) error
	Get(ctx context.Context, id int64) (*model.FacilityRecord, error)
	FindByKey(ctx context.Context, key model.Key) (*model.FacilityRecord, error)
	List(ctx context.Context, filter ListFilter) ([]model.FacilityRecord, error)
	ListInBounds(ctx context.Context, filter BoundsFilter) ([]model.FacilityRecord, error)

	// Enrichment
	ListForEnrichment(ctx context.Context, filter EnrichmentFilter) ([]model.FacilityRecord, error)
	MarkEnrichment(ctx context.Context, id int64, status model.EnrichmentStatus, at time.Time) error
	CountByStatus(ctx context.Context) (map[model.EnrichmentStatus]int, error)

	// Runs
	SaveRun(ctx context.Context, run *model.EnrichmentRun) error
	ListRuns(ctx context.Context, limit int) ([]model.EnrichmentRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
