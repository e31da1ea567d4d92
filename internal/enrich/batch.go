package enrich

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/store"
)

// Mode selects which records a batch run processes.
type Mode string

const (
	// ModePending selects every record whose status is not success.
	ModePending Mode = "pending"
	// ModeRetry selects failed records only.
	ModeRetry Mode = "retry"
	// ModeID selects one record.
	ModeID Mode = "id"
)

// Selector describes a batch run.
type Selector struct {
	Mode   Mode
	ID     int64
	Limit  int
	DryRun bool
}

// Summary is the aggregate result of a batch run.
type Summary struct {
	model.EnrichmentRun
	Outcomes []model.EnrichmentOutcome `json:"outcomes,omitempty"`
}

func (o *Orchestrator) selectRecords(ctx context.Context, sel Selector) ([]model.FacilityRecord, error) {
	switch sel.Mode {
	case ModeID:
		rec, err := o.deps.Store.Get(ctx, sel.ID)
		if err != nil {
			return nil, eris.Wrapf(err, "enrich: get %d", sel.ID)
		}
		return []model.FacilityRecord{*rec}, nil
	case ModeRetry:
		return o.deps.Store.ListForEnrichment(ctx, store.EnrichmentFilter{
			Status: model.EnrichmentFailed,
			Limit:  sel.Limit,
		})
	case ModePending, "":
		return o.deps.Store.ListForEnrichment(ctx, store.EnrichmentFilter{
			ExcludeStatus: model.EnrichmentSuccess,
			Limit:         sel.Limit,
		})
	default:
		return nil, eris.Errorf("enrich: unknown mode %q", sel.Mode)
	}
}

// EnrichBatch processes every selected record. One record failing never
// stops the others. Records not reached before ctx ends are counted as
// skipped. The run summary is persisted unless DryRun is set.
func (o *Orchestrator) EnrichBatch(ctx context.Context, sel Selector) (Summary, error) {
	if sel.Mode == "" {
		sel.Mode = ModePending
	}
	sum := Summary{EnrichmentRun: model.EnrichmentRun{
		ID:        uuid.NewString(),
		Mode:      string(sel.Mode),
		DryRun:    sel.DryRun,
		StartedAt: o.now().UTC(),
	}}

	recs, err := o.selectRecords(ctx, sel)
	if err != nil {
		return sum, eris.Wrap(err, "enrich: select records")
	}
	sum.Total = len(recs)
	log := zap.L().With(zap.String("run_id", sum.ID), zap.String("mode", sum.Mode))
	log.Info("enrich: batch starting", zap.Int("total", sum.Total), zap.Bool("dry_run", sel.DryRun))

	var limiter *rate.Limiter
	if o.cfg.Pacing > 0 {
		limiter = rate.NewLimiter(rate.Every(o.cfg.Pacing), 1)
	}

	var mu sync.Mutex
	processed := 0
	record := func(out model.EnrichmentOutcome) {
		mu.Lock()
		defer mu.Unlock()
		processed++
		switch out.Status {
		case model.EnrichmentSuccess:
			sum.Success++
		default:
			sum.Failed++
		}
		sum.Outcomes = append(sum.Outcomes, out)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)
	for i := range recs {
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				break
			}
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rec := &recs[i]
			out, err := o.process(gctx, rec, sel.DryRun)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				log.Warn("enrich: record errored", zap.Int64("id", rec.ID), zap.Error(err))
				out.Status = model.EnrichmentFailed
				if out.Reason == "" {
					out.Reason = model.ReasonExtractor
				}
			}
			record(out)
			return nil
		})
	}
	_ = g.Wait()

	sum.Skipped = sum.Total - processed
	sum.FinishedAt = o.now().UTC()
	log.Info("enrich: batch complete",
		zap.Int("total", sum.Total),
		zap.Int("success", sum.Success),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped", sum.Skipped),
		zap.Duration("elapsed", sum.FinishedAt.Sub(sum.StartedAt)),
	)

	if !sel.DryRun {
		// Persist even when interrupted so the history shows partial runs.
		if err := o.deps.Store.SaveRun(context.WithoutCancel(ctx), &sum.EnrichmentRun); err != nil {
			return sum, eris.Wrap(err, "enrich: save run")
		}
	}
	if err := ctx.Err(); err != nil {
		return sum, eris.Wrap(err, "enrich: batch interrupted")
	}
	return sum, nil
}
