package source

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/pkg/naver"
)

// DefaultNaverQueries are the local searches run against Naver.
var DefaultNaverQueries = []string{"수영장", "실내수영장", "스포츠센터 수영장", "헬스장 수영장", "아쿠아로빅"}

const (
	naverDisplay  = 100
	naverMaxStart = 1000
)

// NaverLocal collects places from Naver local search.
type NaverLocal struct {
	client  naver.Client
	queries []string
	limiter *rate.Limiter
	now     func() time.Time
}

// NewNaverLocal creates a Naver local source.
func NewNaverLocal(client naver.Client, queries []string, pacing time.Duration) *NaverLocal {
	if len(queries) == 0 {
		queries = DefaultNaverQueries
	}
	return &NaverLocal{client: client, queries: queries, limiter: pacer(pacing), now: time.Now}
}

func (n *NaverLocal) Name() string { return "naver_local" }

func (n *NaverLocal) Fetch(ctx context.Context) ([]model.Observation, error) {
	log := zap.L().With(zap.String("source", n.Name()))
	seen := make(map[string]struct{})
	var out []model.Observation

	for _, q := range n.queries {
		for start := 1; start <= naverMaxStart; start += naverDisplay {
			if err := n.limiter.Wait(ctx); err != nil {
				return out, eris.Wrap(err, "naver: wait")
			}
			resp, err := n.client.LocalSearch(ctx, q, naverDisplay, start)
			if err != nil {
				return out, eris.Wrapf(err, "naver: local search %q start %d", q, start)
			}
			for _, item := range resp.Items {
				obs := n.observation(item)
				key := obs.Name + "_" + obs.Address
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, obs)
			}
			// The API may return fewer items than requested; a short page is
			// the last one.
			if len(resp.Items) < naverDisplay || start+naverDisplay > resp.Total {
				break
			}
		}
		log.Debug("naver: query done", zap.String("query", q), zap.Int("total", len(out)))
	}
	return out, nil
}

func (n *NaverLocal) observation(item naver.LocalItem) model.Observation {
	addr := item.RoadAddress
	if addr == "" {
		addr = item.Address
	}
	obs := model.Observation{
		Name:        strings.TrimSpace(naver.StripMarkup(item.Title)),
		Address:     addr,
		Phone:       item.Telephone,
		URL:         item.Link,
		Category:    item.Category,
		Description: naver.StripMarkup(item.Description),
		Source:      n.Name(),
		ObservedAt:  n.now().UTC(),
	}
	if lat, lng, ok := item.Coordinates(); ok {
		obs.Location = &model.Coordinates{Lat: lat, Lng: lng}
	}
	return obs
}
