// Package dedup decides whether a newly observed facility is the same place
// as one already seen during a collection pass.
package dedup

import (
	"strings"
	"sync"

	"github.com/poolfinder/pool-cli/internal/geo"
	"github.com/poolfinder/pool-cli/internal/model"
)

// DefaultThresholdMeters is the proximity below which two similarly named
// facilities are treated as one.
const DefaultThresholdMeters = 100.0

// SeenEntity is the part of a known facility the detector compares against.
type SeenEntity struct {
	Name     string
	Location *model.Coordinates
}

// IsDuplicate reports whether candidate matches any known entity: both have
// coordinates, they are closer than thresholdMeters, and one normalized name
// contains the other. Missing coordinates on either side never match.
func IsDuplicate(candidate model.Observation, known []SeenEntity, thresholdMeters float64) bool {
	if candidate.Location == nil {
		return false
	}
	name := normalizeName(candidate.Name)
	if name == "" {
		return false
	}
	for _, k := range known {
		if k.Location == nil {
			continue
		}
		d := geo.DistanceMeters(candidate.Location.Lat, candidate.Location.Lng, k.Location.Lat, k.Location.Lng)
		if d >= thresholdMeters {
			continue
		}
		other := normalizeName(k.Name)
		if other == "" {
			continue
		}
		if strings.Contains(name, other) || strings.Contains(other, name) {
			return true
		}
	}
	return false
}

// normalizeName folds a name for substring comparison: NFKC, case-folded,
// with all whitespace removed so "City Pool" and "CityPool" compare equal.
func normalizeName(s string) string {
	return strings.ReplaceAll(model.NormalizeText(s), " ", "")
}

// Option configures a Detector.
type Option func(*Detector)

// WithThresholdMeters overrides the proximity threshold.
func WithThresholdMeters(m float64) Option {
	return func(d *Detector) {
		if m > 0 {
			d.threshold = m
		}
	}
}

// Detector is the stateful form of IsDuplicate for one collection pass.
// Accepted observations join the known set immediately. It also keeps an
// exact natural-key set so verbatim re-reports are caught without
// coordinates.
type Detector struct {
	mu        sync.Mutex
	threshold float64
	known     []SeenEntity
	keys      map[model.Key]struct{}
}

// NewDetector creates an empty Detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		threshold: DefaultThresholdMeters,
		keys:      make(map[model.Key]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Seed adds already-known entities, e.g. records loaded from the store.
func (d *Detector) Seed(entities ...SeenEntity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.known = append(d.known, entities...)
}

// IsDuplicate checks obs against the known set without recording it.
func (d *Detector) IsDuplicate(obs model.Observation) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isDuplicateLocked(obs)
}

func (d *Detector) isDuplicateLocked(obs model.Observation) bool {
	if _, ok := d.keys[obs.Key()]; ok {
		return true
	}
	return IsDuplicate(obs, d.known, d.threshold)
}

// Observe returns true when obs is new, recording it in the known set.
// Duplicates are not recorded.
func (d *Detector) Observe(obs model.Observation) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isDuplicateLocked(obs) {
		return false
	}
	d.keys[obs.Key()] = struct{}{}
	d.known = append(d.known, SeenEntity{Name: obs.Name, Location: obs.Location})
	return true
}

// Len returns the number of known entities.
func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.known)
}

// Reset clears all state.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.known = nil
	d.keys = make(map[model.Key]struct{})
}
