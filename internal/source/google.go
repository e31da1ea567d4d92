package source

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/poolfinder/pool-cli/internal/model"
	"github.com/poolfinder/pool-cli/pkg/google"
)

// DefaultGoogleQueries are the Places text searches.
var DefaultGoogleQueries = []string{"서울 수영장", "실내수영장", "swimming pool Seoul"}

// googleMaxPages caps NextPageToken follow-ups per query. Text Search
// returns at most 60 results.
const googleMaxPages = 3

// GooglePlaces collects places from Google Places Text Search.
type GooglePlaces struct {
	client  google.Client
	queries []string
	limiter *rate.Limiter
	now     func() time.Time
}

// NewGooglePlaces creates a Google Places source.
func NewGooglePlaces(client google.Client, queries []string, pacing time.Duration) *GooglePlaces {
	if len(queries) == 0 {
		queries = DefaultGoogleQueries
	}
	return &GooglePlaces{client: client, queries: queries, limiter: pacer(pacing), now: time.Now}
}

func (g *GooglePlaces) Name() string { return "google_places" }

func (g *GooglePlaces) Fetch(ctx context.Context) ([]model.Observation, error) {
	seen := make(map[string]struct{})
	var out []model.Observation

	for _, q := range g.queries {
		token := ""
		for page := 0; page < googleMaxPages; page++ {
			if err := g.limiter.Wait(ctx); err != nil {
				return out, eris.Wrap(err, "google: wait")
			}
			resp, err := g.client.TextSearch(ctx, google.TextSearchRequest{
				TextQuery:    q,
				LanguageCode: "ko",
				RegionCode:   "KR",
				PageSize:     20,
				PageToken:    token,
			})
			if err != nil {
				return out, eris.Wrapf(err, "google: text search %q", q)
			}
			for _, p := range resp.Places {
				if _, dup := seen[p.ID]; dup && p.ID != "" {
					continue
				}
				seen[p.ID] = struct{}{}
				out = append(out, g.observation(p))
			}
			if resp.NextPageToken == "" {
				break
			}
			token = resp.NextPageToken
		}
	}
	return out, nil
}

func (g *GooglePlaces) observation(p google.Place) model.Observation {
	obs := model.Observation{
		Name:        p.DisplayName.Text,
		Address:     p.FormattedAddress,
		Phone:       p.NationalPhoneNumber,
		URL:         p.WebsiteURI,
		ReviewCount: p.UserRatingCount,
		Source:      g.Name(),
		ObservedAt:  g.now().UTC(),
	}
	if len(p.Types) > 0 {
		obs.Category = p.Types[0]
	}
	if p.Location != nil && p.Location.Latitude != 0 && p.Location.Longitude != 0 {
		obs.Location = &model.Coordinates{Lat: p.Location.Latitude, Lng: p.Location.Longitude}
	}
	if p.Rating > 0 {
		r := p.Rating
		obs.Rating = &r
	}
	return obs
}
