// Package enrich drives the per-facility enrichment pipeline: acquire text,
// extract facts, validate them and merge the survivors into the record.
package enrich

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/poolfinder/pool-cli/internal/extract"
	"github.com/poolfinder/pool-cli/internal/facility"
	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/scrape"
	"github.com/poolfinder/pool-cli/internal/store"
	"github.com/poolfinder/pool-cli/internal/validate"
)

// DefaultSearchSuffix is appended to the facility name for the fallback
// web search.
const DefaultSearchSuffix = "자유수영 가격 시간표"

// Config tunes the orchestrator. Zero values take the defaults.
type Config struct {
	// Pacing is the minimum interval between entity starts. Default 1s;
	// negative disables pacing.
	Pacing time.Duration
	// FetchTimeout bounds every page fetch and search call. Default 15s.
	FetchTimeout time.Duration
	// ExtractTimeout bounds one extractor call. Default 60s.
	ExtractTimeout time.Duration
	// Concurrency is the number of entities processed at once. Default 1.
	Concurrency int
	// MaxTextChars caps the text handed to the extractor. Default 8000.
	MaxTextChars int
	// SearchPageChars caps the page text appended from a search hit.
	// Default 3000.
	SearchPageChars int
	// SearchResults is how many search hits are requested. Default 3.
	SearchResults int
	SearchSuffix  string
}

func (c Config) withDefaults() Config {
	if c.Pacing == 0 {
		c.Pacing = time.Second
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.ExtractTimeout <= 0 {
		c.ExtractTimeout = 60 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.MaxTextChars <= 0 {
		c.MaxTextChars = 8000
	}
	if c.SearchPageChars <= 0 {
		c.SearchPageChars = 3000
	}
	if c.SearchResults <= 0 {
		c.SearchResults = 3
	}
	if c.SearchSuffix == "" {
		c.SearchSuffix = DefaultSearchSuffix
	}
	return c
}

// Deps are the collaborators the orchestrator needs. Searcher and Exclude
// are optional.
type Deps struct {
	Store     store.Store
	Engine    *facility.Engine
	Scraper   scrape.Scraper
	Searcher  scrape.Searcher
	Extractor extract.Extractor
	// Exclude filters search hits before their page is fetched. Defaults
	// to the blog/cafe/post/news matcher.
	Exclude *scrape.PathMatcher
}

// Orchestrator enriches facility records.
type Orchestrator struct {
	cfg  Config
	deps Deps
	now  func() time.Time
}

// New validates deps and returns an orchestrator. Missing collaborators are
// reported here, before any record is touched.
func New(cfg Config, deps Deps) (*Orchestrator, error) {
	switch {
	case deps.Store == nil:
		return nil, eris.New("enrich: store is required")
	case deps.Engine == nil:
		return nil, eris.New("enrich: merge engine is required")
	case deps.Scraper == nil:
		return nil, eris.New("enrich: page fetcher is required")
	case deps.Extractor == nil:
		return nil, eris.New("enrich: extractor is required")
	}
	if deps.Exclude == nil {
		deps.Exclude = scrape.NewPathMatcher(nil)
	}
	return &Orchestrator{cfg: cfg.withDefaults(), deps: deps, now: time.Now}, nil
}

// EnrichOne runs the pipeline for a single record and persists the result.
// Per-record failures are reported in the outcome; the error is only set
// when the record cannot be loaded or the context ends.
func (o *Orchestrator) EnrichOne(ctx context.Context, id int64) (model.EnrichmentOutcome, error) {
	rec, err := o.deps.Store.Get(ctx, id)
	if err != nil {
		return model.EnrichmentOutcome{ID: id}, eris.Wrapf(err, "enrich: get %d", id)
	}
	return o.process(ctx, rec, false)
}

func (o *Orchestrator) process(ctx context.Context, rec *model.FacilityRecord, dryRun bool) (model.EnrichmentOutcome, error) {
	log := zap.L().With(zap.Int64("id", rec.ID), zap.String("name", rec.Name))
	out := model.EnrichmentOutcome{ID: rec.ID, Name: rec.Name, DryRun: dryRun}

	text, source := o.acquireText(ctx, rec)
	if err := ctx.Err(); err != nil {
		return out, eris.Wrap(err, "enrich: acquire text")
	}
	out.TextSource = source
	if text == "" {
		return o.fail(ctx, out, model.ReasonNoText, log)
	}

	ectx, cancel := context.WithTimeout(ctx, o.cfg.ExtractTimeout)
	raw, err := o.deps.Extractor.Extract(ectx, text, rec.Name)
	cancel()
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		if ctx.Err() != nil {
			return out, eris.Wrap(err, "enrich: extract")
		}
		log.Warn("enrich: extractor timed out", zap.Error(err))
		return o.fail(ctx, out, model.ReasonExtractor, log)
	case errors.Is(err, extract.ErrTextTooShort):
		return o.fail(ctx, out, model.ReasonNoText, log)
	case errors.Is(err, extract.ErrNoFacts):
		return o.fail(ctx, out, model.ReasonNoFacts, log)
	default:
		log.Warn("enrich: extractor failed", zap.String("extractor", o.deps.Extractor.Name()), zap.Error(err))
		return o.fail(ctx, out, model.ReasonExtractor, log)
	}

	facts := validate.Validate(raw)
	if facts.IsEmpty() {
		return o.fail(ctx, out, model.ReasonNoValid, log)
	}

	out.Status = model.EnrichmentSuccess
	if dryRun {
		out.Fields = facts.FieldNames()
		log.Info("enrich: dry run extracted facts", zap.Strings("fields", out.Fields), zap.String("text_source", source))
		return out, nil
	}

	_, changed, err := o.deps.Engine.ApplyEnrichment(ctx, rec.ID, facts)
	if err != nil {
		applyErr := eris.Wrapf(err, "enrich: apply facts to %d", rec.ID)
		log.Warn("enrich: apply failed", zap.Error(err))
		out.Status = model.EnrichmentFailed
		out.Reason = model.ReasonStore
		if markErr := o.deps.Engine.MarkFailed(ctx, rec.ID); markErr != nil {
			log.Warn("enrich: mark failed", zap.Error(markErr))
		}
		return out, applyErr
	}
	out.Fields = changed
	log.Info("enrich: record enriched",
		zap.String("text_source", source),
		zap.Int("fields", facts.FieldCount()),
		zap.Strings("changed", changed),
	)
	return out, nil
}

// fail marks the record failed unless this is a dry run.
func (o *Orchestrator) fail(ctx context.Context, out model.EnrichmentOutcome, reason string, log *zap.Logger) (model.EnrichmentOutcome, error) {
	out.Status = model.EnrichmentFailed
	out.Reason = reason
	log.Info("enrich: record failed", zap.String("reason", reason), zap.Bool("dry_run", out.DryRun))
	if out.DryRun {
		return out, nil
	}
	if err := o.deps.Engine.MarkFailed(ctx, out.ID); err != nil {
		return out, err
	}
	return out, nil
}
