// Package extract turns unstructured facility text into raw candidate facts.
// Output is untrusted and must pass through validate.Validate.
package extract

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/poolfinder/pool-cli/internal/model"
)

// MinTextLength is the shortest input, in runes, worth extracting from.
const MinTextLength = 50

var (
	// ErrTextTooShort is returned for inputs under MinTextLength.
	ErrTextTooShort = eris.New("extract: text too short")
	// ErrNoFacts is returned when extraction ran but found nothing usable.
	ErrNoFacts = eris.New("extract: no facts found")
)

// Extractor produces raw facts for one facility from text.
type Extractor interface {
	Extract(ctx context.Context, text, name string) (*model.RawFactBundle, error)
	Name() string
}

func checkText(text string) error {
	if utf8.RuneCountInString(text) < MinTextLength {
		return ErrTextTooShort
	}
	return nil
}

// Fallback tries each extractor in order and returns the first bundle.
// ErrNoFacts and transport errors from one strategy move on to the next.
type Fallback struct {
	extractors []Extractor
}

// NewFallback composes extractors in priority order.
func NewFallback(extractors ...Extractor) *Fallback {
	return &Fallback{extractors: extractors}
}

// Name implements Extractor.
func (f *Fallback) Name() string { return "fallback" }

// Extract implements Extractor.
func (f *Fallback) Extract(ctx context.Context, text, name string) (*model.RawFactBundle, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}
	var lastErr error = ErrNoFacts
	for _, ex := range f.extractors {
		raw, err := ex.Extract(ctx, text, name)
		if err == nil {
			return raw, nil
		}
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "extract: fallback")
		}
		if !errors.Is(err, ErrNoFacts) {
			zap.L().Debug("extract: strategy failed, trying next",
				zap.String("strategy", ex.Name()),
				zap.String("facility", name),
				zap.Error(err),
			)
		}
		lastErr = err
	}
	return nil, lastErr
}
