// Package source collects facility observations from map search APIs,
// public open-data feeds and curated lists.
package source

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/poolfinder/pool-cli/internal/model"
)

// Source fetches every observation one upstream currently reports.
type Source interface {
	// Name returns the unique identifier (e.g., "kakao", "seoul_opendata").
	Name() string

	// Fetch returns the observations found. Implementations stamp Source on
	// every observation they return.
	Fetch(ctx context.Context) ([]model.Observation, error)
}

// Registry maps source names to their implementations.
type Registry struct {
	sources map[string]Source
	order   []string // insertion order for deterministic iteration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source. Registering a name twice replaces the earlier
// source but keeps its position.
func (r *Registry) Register(s Source) {
	name := s.Name()
	if _, ok := r.sources[name]; !ok {
		r.order = append(r.order, name)
	}
	r.sources[name] = s
}

// Get returns a source by name.
func (r *Registry) Get(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, eris.Errorf("source: unknown source %q (available: %v)", name, r.sortedNames())
	}
	return s, nil
}

// Select returns the named sources in the order given, or every source
// when names is empty.
func (r *Registry) Select(names []string) ([]Source, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	out := make([]Source, 0, len(names))
	for _, name := range names {
		s, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// All returns all sources in registration order.
func (r *Registry) All() []Source {
	out := make([]Source, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.sources[name])
	}
	return out
}

// AllNames returns all registered names in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) sortedNames() []string {
	out := r.AllNames()
	sort.Strings(out)
	return out
}
