package source

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/poolfinder/pool-cli/internal/dedup"
	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/store"
)

// Ingester upserts one observation. Satisfied by *facility.Engine.
type Ingester interface {
	Ingest(ctx context.Context, obs model.Observation) (*model.FacilityRecord, bool, error)
}

// Summary counts what one collection pass did.
type Summary struct {
	Sources       int
	FailedSources []string
	Fetched       int
	Filtered      int
	Duplicates    int
	Created       int
	Merged        int
	Errors        int
}

// CollectorOptions configures a Collector.
type CollectorOptions struct {
	// Concurrency bounds parallel source fetches. Default 5.
	Concurrency int
	// ThresholdMeters is the duplicate proximity threshold.
	ThresholdMeters float64
	// SeedFromStore loads active records into the duplicate detector
	// before ingesting, so near-duplicates of stored facilities from a
	// different source are dropped. Exact natural-key matches still merge.
	SeedFromStore bool
	// Relevance filters map search hits. Nil keeps everything.
	Relevance *Relevance
	// FetchTimeout bounds each source fetch. Zero means no bound.
	FetchTimeout time.Duration
}

// Collector fetches sources in parallel, then runs every observation
// through the relevance filter and duplicate detector before upserting.
type Collector struct {
	ingester Ingester
	store    store.Store
	opts     CollectorOptions
}

// NewCollector creates a Collector. st is only read when SeedFromStore is
// set.
func NewCollector(ing Ingester, st store.Store, opts CollectorOptions) *Collector {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 5
	}
	return &Collector{ingester: ing, store: st, opts: opts}
}

// Collect runs one pass over sources. A failing source is logged and
// recorded in the summary without aborting the others. Ingestion is
// sequential in source order so merge results are deterministic.
func (c *Collector) Collect(ctx context.Context, sources []Source) (*Summary, error) {
	log := zap.L().With(zap.String("component", "source.collector"))
	summary := &Summary{Sources: len(sources)}
	if len(sources) == 0 {
		log.Info("source: no sources selected")
		return summary, nil
	}

	batches := make([][]model.Observation, len(sources))
	failed := make([]bool, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, s := range sources {
		g.Go(func() error {
			sLog := log.With(zap.String("source", s.Name()))
			fetchCtx := gctx
			if c.opts.FetchTimeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(gctx, c.opts.FetchTimeout)
				defer cancel()
			}

			start := time.Now()
			obs, err := s.Fetch(fetchCtx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Partial results are still ingested.
				sLog.Error("source: fetch failed", zap.Error(err), zap.Int("partial", len(obs)))
				failed[i] = true
			}
			sLog.Info("source: fetched", zap.Int("observations", len(obs)), zap.Duration("elapsed", time.Since(start)))
			batches[i] = obs
			return nil // don't abort other sources on individual failure
		})
	}
	if err := g.Wait(); err != nil {
		return summary, eris.Wrap(err, "source: fetch")
	}

	detector := dedup.NewDetector(dedup.WithThresholdMeters(c.opts.ThresholdMeters))
	storedKeys, err := c.seed(ctx, detector)
	if err != nil {
		return summary, err
	}

	for i, s := range sources {
		if failed[i] {
			summary.FailedSources = append(summary.FailedSources, s.Name())
		}
		for _, obs := range batches[i] {
			if err := ctx.Err(); err != nil {
				return summary, eris.Wrap(err, "source: ingest interrupted")
			}
			c.ingestOne(ctx, log, summary, detector, storedKeys, s.Name(), obs)
		}
	}

	log.Info("source: collection complete",
		zap.Int("fetched", summary.Fetched),
		zap.Int("filtered", summary.Filtered),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("created", summary.Created),
		zap.Int("merged", summary.Merged),
		zap.Int("errors", summary.Errors),
		zap.Strings("failed_sources", summary.FailedSources),
	)
	return summary, nil
}

func (c *Collector) ingestOne(ctx context.Context, log *zap.Logger, summary *Summary, detector *dedup.Detector,
	storedKeys map[model.Key]struct{}, sourceName string, obs model.Observation,
) {
	summary.Fetched++
	if obs.Source == "" {
		obs.Source = sourceName
	}
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}
	if c.opts.Relevance != nil && !c.opts.Relevance.Relevant(obs) {
		summary.Filtered++
		return
	}

	_, stored := storedKeys[obs.Key()]
	if !detector.Observe(obs) && !stored {
		summary.Duplicates++
		return
	}

	_, isNew, err := c.ingester.Ingest(ctx, obs)
	if err != nil {
		log.Warn("source: ingest failed", zap.String("name", obs.Name), zap.String("source", obs.Source), zap.Error(err))
		summary.Errors++
		return
	}
	if isNew {
		summary.Created++
	} else {
		summary.Merged++
	}
	// Later exact re-reports in this pass are duplicates.
	delete(storedKeys, obs.Key())
}

// seed loads active records into detector when SeedFromStore is set and
// returns their natural keys.
func (c *Collector) seed(ctx context.Context, detector *dedup.Detector) (map[model.Key]struct{}, error) {
	keys := make(map[model.Key]struct{})
	if !c.opts.SeedFromStore || c.store == nil {
		return keys, nil
	}
	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		recs, err := c.store.List(ctx, store.ListFilter{Offset: offset, Limit: pageSize, ActiveOnly: true})
		if err != nil {
			return nil, eris.Wrap(err, "source: seed detector")
		}
		for _, rec := range recs {
			keys[rec.Key()] = struct{}{}
			detector.Seed(dedup.SeenEntity{Name: rec.Name, Location: rec.Location})
		}
		if len(recs) < pageSize {
			break
		}
	}
	return keys, nil
}
