package source

import (
	"strings"

	"github.com/poolfinder/pool-cli/internal/model"
)

// Default keyword lists for map search results. A keyword search for 수영장
// also returns swimwear shops, pet pools and kids cafes.
var (
	DefaultBadKeywords = []string{
		"수영복", "수영용품", "용품", "애견", "반려견", "강아지", "키즈카페",
		"워터파크", "펜션", "글램핑", "모텔",
	}
	DefaultRescueKeywords = []string{
		"실내수영장", "체육센터", "스포츠센터", "체육관", "국민체육", "문화체육",
	}
)

// Relevance drops map search hits that are not public swimming facilities.
// A hit is dropped when its name or category contains a bad keyword, unless
// its name also contains a rescue keyword.
type Relevance struct {
	bad    []string
	rescue []string
}

// NewRelevance builds a filter from keyword lists. Nil lists fall back to
// the defaults; empty lists disable that side.
func NewRelevance(bad, rescue []string) *Relevance {
	if bad == nil {
		bad = DefaultBadKeywords
	}
	if rescue == nil {
		rescue = DefaultRescueKeywords
	}
	return &Relevance{bad: lowerAll(bad), rescue: lowerAll(rescue)}
}

// Relevant reports whether obs should be kept.
func (r *Relevance) Relevant(obs model.Observation) bool {
	name := strings.ToLower(obs.Name)
	haystack := name + " " + strings.ToLower(obs.Category)
	if !containsAny(haystack, r.bad) {
		return true
	}
	return containsAny(name, r.rescue)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
