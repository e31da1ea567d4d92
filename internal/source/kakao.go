package source

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/pkg/kakao"
)

// DefaultKakaoQueries are the keyword searches run against Kakao Local.
var DefaultKakaoQueries = []string{"수영장", "실내수영장", "스포츠센터", "수영 레슨"}

// Kakao collects places from Kakao Local keyword search, paging each query
// until meta.is_end or the API's page cap.
type Kakao struct {
	client  kakao.Client
	queries []string
	limiter *rate.Limiter
	now     func() time.Time
}

// NewKakao creates a Kakao source. pacing is the minimum gap between page
// requests; zero disables it.
func NewKakao(client kakao.Client, queries []string, pacing time.Duration) *Kakao {
	if len(queries) == 0 {
		queries = DefaultKakaoQueries
	}
	return &Kakao{client: client, queries: queries, limiter: pacer(pacing), now: time.Now}
}

func (k *Kakao) Name() string { return "kakao" }

func (k *Kakao) Fetch(ctx context.Context) ([]model.Observation, error) {
	log := zap.L().With(zap.String("source", k.Name()))
	seen := make(map[string]struct{})
	var out []model.Observation

	for _, q := range k.queries {
		for page := 1; page <= kakao.MaxPage; page++ {
			if err := k.limiter.Wait(ctx); err != nil {
				return out, eris.Wrap(err, "kakao: wait")
			}
			resp, err := k.client.KeywordSearch(ctx, q, page, kakao.MaxSize)
			if err != nil {
				return out, eris.Wrapf(err, "kakao: search %q page %d", q, page)
			}
			for _, doc := range resp.Documents {
				id := doc.ID
				if id == "" {
					id = doc.PlaceName + "|" + doc.Address()
				}
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				out = append(out, k.observation(doc))
			}
			if resp.Meta.IsEnd || len(resp.Documents) == 0 {
				break
			}
		}
		log.Debug("kakao: query done", zap.String("query", q), zap.Int("total", len(out)))
	}
	return out, nil
}

func (k *Kakao) observation(doc kakao.Document) model.Observation {
	obs := model.Observation{
		Name:       doc.PlaceName,
		Address:    doc.Address(),
		Phone:      doc.Phone,
		URL:        doc.PlaceURL,
		Category:   doc.CategoryName,
		Source:     k.Name(),
		ObservedAt: k.now().UTC(),
	}
	if lat, lng, ok := doc.Coordinates(); ok {
		obs.Location = &model.Coordinates{Lat: lat, Lng: lng}
	}
	return obs
}

// pacer returns a limiter allowing one event per interval, or an unlimited
// limiter when interval is not positive.
func pacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
