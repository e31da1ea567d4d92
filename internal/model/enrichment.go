package model

import "time"

// EnrichmentOutcome reports what happened to one record.
type EnrichmentOutcome struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Status     EnrichmentStatus `json:"status"`
	Reason     string           `json:"reason,omitempty"`
	TextSource string           `json:"text_source,omitempty"`
	Fields     []string         `json:"fields,omitempty"`
	DryRun     bool             `json:"dry_run,omitempty"`
}

// Enrichment failure reasons.
const (
	ReasonNoText    = "no_text"
	ReasonNoFacts   = "no_facts"
	ReasonNoValid   = "no_valid_facts"
	ReasonExtractor = "extractor_error"
	ReasonStore     = "store_error"
)

// EnrichmentRun summarizes one batch invocation.
type EnrichmentRun struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Total      int       `json:"total"`
	Success    int       `json:"success"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
