package source

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/poolfinder/pool-cli/internal/model"
)

// staticFile is the curated list layout:
//
//	pools:
//	  - name: 잠실수영장
//	    address: 서울 송파구 올림픽로 25
//	    location: {lat: 37.5146, lng: 127.0736}
//	    free_swim_price: "3,000원"
type staticFile struct {
	Pools []staticEntry `yaml:"pools"`
}

type staticEntry struct {
	model.Observation `yaml:",inline"`

	DailyPrice         string `yaml:"daily_price"`
	FreeSwimPrice      string `yaml:"free_swim_price"`
	MonthlyLessonPrice string `yaml:"monthly_lesson_price"`
}

// Static serves a hand-curated YAML list of facilities.
type Static struct {
	path string
	now  func() time.Time
}

// NewStatic creates a source over the YAML file at path.
func NewStatic(path string) *Static {
	return &Static{path: path, now: time.Now}
}

func (s *Static) Name() string { return "static" }

func (s *Static) Fetch(ctx context.Context) ([]model.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, eris.Wrapf(err, "static: read %s", s.path)
	}
	return ParseStatic(data, s.Name(), s.now().UTC())
}

// ParseStatic decodes a curated list. Entries without a name are rejected;
// entries without a source are stamped with source.
func ParseStatic(data []byte, source string, observedAt time.Time) ([]model.Observation, error) {
	var file staticFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "static: parse yaml")
	}
	out := make([]model.Observation, 0, len(file.Pools))
	for i, entry := range file.Pools {
		obs := entry.Observation
		if strings.TrimSpace(obs.Name) == "" {
			return nil, eris.Errorf("static: entry %d has no name", i)
		}
		if obs.Source == "" {
			obs.Source = source
		}
		obs.DailyPrice = model.ParsePrice(entry.DailyPrice)
		obs.FreeSwimPrice = model.ParsePrice(entry.FreeSwimPrice)
		obs.MonthlyLessonPrice = model.ParsePrice(entry.MonthlyLessonPrice)
		obs.ObservedAt = observedAt
		out = append(out, obs)
	}
	return out, nil
}
