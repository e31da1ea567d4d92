// Package facility merges source observations and validated facts into
// canonical facility records.
package facility

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/store"
)

// Engine is the single writer for facility records. Ingest and the
// enrichment writes are serialized so a read-merge-write never races.
type Engine struct {
	store store.Store
	mu    sync.Mutex
	now   func() time.Time
}

// NewEngine creates a merge engine over st.
func NewEngine(st store.Store) *Engine {
	return &Engine{store: st, now: time.Now}
}

// Ingest upserts obs by its natural key. On a match every field the
// observation carries replaces the stored value and the enrichment status
// is left alone. Otherwise a new pending, active record is created. The
// returned bool reports whether the record is new.
func (e *Engine) Ingest(ctx context.Context, obs model.Observation) (*model.FacilityRecord, bool, error) {
	if strings.TrimSpace(obs.Name) == "" {
		return nil, false, eris.New("facility: observation has no name")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().UTC()
	existing, err := e.store.FindByKey(ctx, obs.Key())
	if err != nil {
		return nil, false, eris.Wrap(err, "facility: lookup by key")
	}

	if existing != nil {
		changed := MergeObservation(existing, obs)
		existing.LastUpdated = now
		if err := e.store.Update(ctx, existing); err != nil {
			return nil, false, eris.Wrapf(err, "facility: update %d", existing.ID)
		}
		zap.L().Debug("facility: merged observation",
			zap.Int64("id", existing.ID),
			zap.String("source", obs.Source),
			zap.Strings("fields", changed),
		)
		return existing, false, nil
	}

	rec := &model.FacilityRecord{
		IsActive:         true,
		EnrichmentStatus: model.EnrichmentPending,
		CreatedAt:        now,
		LastUpdated:      now,
	}
	MergeObservation(rec, obs)
	if err := e.store.Create(ctx, rec); err != nil {
		return nil, false, eris.Wrap(err, "facility: create")
	}
	zap.L().Debug("facility: created record",
		zap.Int64("id", rec.ID),
		zap.String("name", rec.Name),
		zap.String("source", obs.Source),
	)
	return rec, true, nil
}

// ApplyEnrichment applies a validated bundle to record id, marks it
// success and persists it. It returns the updated record and the names of
// the fields that changed.
func (e *Engine) ApplyEnrichment(ctx context.Context, id int64, bundle model.FactBundle) (*model.FacilityRecord, []string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "facility: get %d", id)
	}
	changed := ApplyFacts(rec, bundle)

	now := e.now().UTC()
	rec.EnrichmentStatus = model.EnrichmentSuccess
	rec.LastEnriched = &now
	rec.LastUpdated = now
	if err := e.store.Update(ctx, rec); err != nil {
		return nil, nil, eris.Wrapf(err, "facility: update %d", id)
	}
	return rec, changed, nil
}

// MarkFailed records a failed enrichment attempt without touching facts.
func (e *Engine) MarkFailed(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return eris.Wrapf(e.store.MarkEnrichment(ctx, id, model.EnrichmentFailed, e.now().UTC()),
		"facility: mark failed %d", id)
}

// Clean clears placeholder values from every record and persists the ones
// that changed. dryRun reports without writing. It returns the number of
// records cleaned.
func (e *Engine) Clean(ctx context.Context, dryRun bool) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cleaned := 0
	for offset := 0; ; {
		page, err := e.store.List(ctx, store.ListFilter{Offset: offset, Limit: 500})
		if err != nil {
			return cleaned, eris.Wrap(err, "facility: list for clean")
		}
		for i := range page {
			rec := &page[i]
			fields := CleanPlaceholders(rec)
			if len(fields) == 0 {
				continue
			}
			cleaned++
			zap.L().Info("facility: cleared placeholders",
				zap.Int64("id", rec.ID),
				zap.String("name", rec.Name),
				zap.Strings("fields", fields),
				zap.Bool("dry_run", dryRun),
			)
			if dryRun {
				continue
			}
			rec.LastUpdated = e.now().UTC()
			if err := e.store.Update(ctx, rec); err != nil {
				return cleaned, eris.Wrapf(err, "facility: update %d", rec.ID)
			}
		}
		if len(page) < 500 {
			return cleaned, nil
		}
		offset += len(page)
	}
}
