// Package model defines the facility domain types shared across the
// ingestion, enrichment and serving layers.
package model

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// EnrichmentStatus tracks where a record is in the enrichment lifecycle.
type EnrichmentStatus string

const (
	EnrichmentPending EnrichmentStatus = "pending"
	EnrichmentSuccess EnrichmentStatus = "success"
	EnrichmentFailed  EnrichmentStatus = "failed"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FacilityRecord is the canonical, merged facility.
type FacilityRecord struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Address  string       `json:"address"`
	Location *Coordinates `json:"location,omitempty"`

	Phone      string   `json:"phone,omitempty"`
	Lanes      *int     `json:"lanes,omitempty"`
	PoolSize   string   `json:"pool_size,omitempty"`
	WaterTemp  string   `json:"water_temp,omitempty"`
	Facilities []string `json:"facilities,omitempty"`
	Parking    *bool    `json:"parking,omitempty"`

	Pricing        Pricing  `json:"pricing,omitempty"`
	FreeSwim       Schedule `json:"free_swim"`
	OperatingHours Schedule `json:"operating_hours"`

	DailyPrice         Price `json:"daily_price"`
	FreeSwimPrice      Price `json:"free_swim_price"`
	MonthlyLessonPrice Price `json:"monthly_lesson_price"`

	Notes       string   `json:"notes,omitempty"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count"`

	Source   string `json:"source"`
	URL      string `json:"url,omitempty"`
	IsActive bool   `json:"is_active"`

	EnrichmentStatus EnrichmentStatus `json:"enrichment_status"`
	LastEnriched     *time.Time       `json:"last_enriched,omitempty"`
	LastUpdated      time.Time        `json:"last_updated"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Key returns the record's normalized natural key.
func (r *FacilityRecord) Key() Key {
	return NaturalKey(r.Name, r.Address)
}

// HasLocation reports whether the record can take part in proximity checks.
func (r *FacilityRecord) HasLocation() bool {
	return r.Location != nil
}

// Observation is one source's report of one facility at one point in time.
// Zero-valued fields mean the source did not report them.
type Observation struct {
	Name     string       `json:"name" yaml:"name"`
	Address  string       `json:"address" yaml:"address"`
	Location *Coordinates `json:"location,omitempty" yaml:"location,omitempty"`
	Phone    string       `json:"phone,omitempty" yaml:"phone,omitempty"`
	URL      string       `json:"url,omitempty" yaml:"url,omitempty"`
	Source   string       `json:"source" yaml:"source"`
	Category string       `json:"category,omitempty" yaml:"category,omitempty"`

	Lanes      *int     `json:"lanes,omitempty" yaml:"lanes,omitempty"`
	PoolSize   string   `json:"pool_size,omitempty" yaml:"pool_size,omitempty"`
	WaterTemp  string   `json:"water_temp,omitempty" yaml:"water_temp,omitempty"`
	Facilities []string `json:"facilities,omitempty" yaml:"facilities,omitempty"`
	Parking    *bool    `json:"parking,omitempty" yaml:"parking,omitempty"`

	DailyPrice         Price `json:"daily_price" yaml:"-"`
	FreeSwimPrice      Price `json:"free_swim_price" yaml:"-"`
	MonthlyLessonPrice Price `json:"monthly_lesson_price" yaml:"-"`

	OperatingHours Schedule `json:"operating_hours" yaml:"-"`
	FreeSwim       Schedule `json:"free_swim" yaml:"-"`

	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Rating      *float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
	ReviewCount int      `json:"review_count,omitempty" yaml:"review_count,omitempty"`

	ObservedAt time.Time `json:"observed_at" yaml:"-"`
}

// Key returns the observation's normalized natural key.
func (o Observation) Key() Key {
	return NaturalKey(o.Name, o.Address)
}

// Key is the normalized (name, address) pair used for exact-match merging.
type Key struct {
	Name    string
	Address string
}

func (k Key) String() string {
	return k.Name + "|" + k.Address
}

// NaturalKey normalizes a name/address pair: NFKC (which also folds
// full-width forms), case folding, trimmed and with whitespace runs
// collapsed to a single space.
func NaturalKey(name, address string) Key {
	return Key{Name: NormalizeText(name), Address: NormalizeText(address)}
}

// NormalizeText applies the natural-key normalization to a single string.
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}
