package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/internal/scrape"
)

func TestEnrichBatch_PendingThenRetry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	good := h.ingest(t, model.Observation{Name: "A 수영장", Address: "a", URL: "https://a.example.kr"})
	bad := h.ingest(t, model.Observation{Name: "B 수영장", Address: "b", URL: "https://b.example.kr"})
	done := h.ingest(t, model.Observation{Name: "C 수영장", Address: "c"})
	require.NoError(t, h.st.MarkEnrichment(ctx, done.ID, model.EnrichmentSuccess, time.Now()))
	h.scraper.pages[good.URL] = gangnamPage

	o := h.orchestrator(t, Config{})
	sum, err := o.EnrichBatch(ctx, Selector{Mode: ModePending})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.Success)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 0, sum.Skipped)
	assert.NotEmpty(t, sum.ID)

	got, err := h.st.Get(ctx, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrichmentFailed, got.EnrichmentStatus)

	// New input appears for the failed record; retry picks up only it.
	h.scraper.pages[bad.URL] = gangnamPage
	h.scraper.calls = nil
	sum, err = o.EnrichBatch(ctx, Selector{Mode: ModeRetry})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.Success)
	assert.Equal(t, []string{bad.URL}, h.scraper.calls)

	got, err = h.st.Get(ctx, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrichmentSuccess, got.EnrichmentStatus)

	runs, err := h.st.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	modes := []string{runs[0].Mode, runs[1].Mode}
	assert.ElementsMatch(t, []string{"pending", "retry"}, modes)
}

func TestEnrichBatch_SingleID(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rec := h.ingest(t, model.Observation{Name: "A 수영장", Address: "a", URL: "https://a.example.kr"})
	h.ingest(t, model.Observation{Name: "B 수영장", Address: "b"})
	require.NoError(t, h.st.MarkEnrichment(ctx, rec.ID, model.EnrichmentSuccess, time.Now()))
	h.scraper.pages[rec.URL] = gangnamPage

	sum, err := h.orchestrator(t, Config{}).EnrichBatch(ctx, Selector{Mode: ModeID, ID: rec.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.Success)
	require.Len(t, sum.Outcomes, 1)
	assert.Equal(t, rec.ID, sum.Outcomes[0].ID)
}

func TestEnrichBatch_DryRunWritesNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.ingest(t, model.Observation{Name: "A 수영장", Address: "a", URL: "https://a.example.kr"})
	b := h.ingest(t, model.Observation{Name: "B 수영장", Address: "b"})
	h.scraper.pages[a.URL] = gangnamPage

	sum, err := h.orchestrator(t, Config{}).EnrichBatch(ctx, Selector{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Success)
	assert.Equal(t, 1, sum.Failed)
	assert.True(t, sum.DryRun)
	for _, out := range sum.Outcomes {
		assert.True(t, out.DryRun)
		if out.ID == a.ID {
			assert.Contains(t, out.Fields, "pricing")
		}
	}

	for _, id := range []int64{a.ID, b.ID} {
		got, err := h.st.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.EnrichmentPending, got.EnrichmentStatus)
		assert.Nil(t, got.LastEnriched)
	}
	runs, err := h.st.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestEnrichBatch_Limit(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"A", "B", "C"} {
		h.ingest(t, model.Observation{Name: name + " 수영장", Address: name})
	}
	sum, err := h.orchestrator(t, Config{Concurrency: 2}).EnrichBatch(context.Background(), Selector{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 2, sum.Failed)
}

// cancelScraper ends the run on its first fetch.
type cancelScraper struct{ cancel context.CancelFunc }

func (c cancelScraper) Name() string           { return "cancel" }
func (c cancelScraper) Supports(_ string) bool { return true }
func (c cancelScraper) Scrape(ctx context.Context, _ string) (*scrape.Result, error) {
	c.cancel()
	return nil, ctx.Err()
}

func TestEnrichBatch_CanceledCountsSkipped(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"A", "B", "C"} {
		h.ingest(t, model.Observation{Name: name + " 수영장", Address: name, URL: "https://" + name + ".example.kr"})
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o, err := New(Config{Pacing: -1}, Deps{Store: h.st, Engine: h.engine, Scraper: cancelScraper{cancel}, Extractor: h.extr})
	require.NoError(t, err)
	sum, err := o.EnrichBatch(ctx, Selector{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 3, sum.Skipped)

	runs, err := h.st.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1, "interrupted runs are still recorded")
	assert.Equal(t, 3, runs[0].Skipped)
}

func TestEnrichBatch_UnknownMode(t *testing.T) {
	h := newHarness(t)
	_, err := h.orchestrator(t, Config{}).EnrichBatch(context.Background(), Selector{Mode: "weekly"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
