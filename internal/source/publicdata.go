package source

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/poolfinder/pool-cli/internal/fetcher"
	"github.com/poolfinder/pool-cli/internal/model"
)

const (
	publicDataURL     = "https://api.data.go.kr/openapi/tn_pubr_public_sport_faclt_api"
	publicDataRows    = 100
	publicDataMaxPage = 100
)

type publicDataResponse struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items []publicDataItem `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

type publicDataItem struct {
	FacilityName  string `json:"faciNm"`
	FcltyName     string `json:"fcltyNm"`
	RoadAddress   string `json:"rdnmadr"`
	LotAddress    string `json:"lnmadr"`
	Latitude      string `json:"latitude"`
	Longitude     string `json:"longitude"`
	PhoneNumber   string `json:"phoneNumber"`
	Telno         string `json:"telno"`
	HomepageURL   string `json:"homepageUrl"`
	ParkingLotCnt string `json:"parkingLotCnt"`
}

// PublicData collects swimming facilities from the national public sport
// facility standard dataset on data.go.kr.
type PublicData struct {
	fetcher fetcher.Fetcher
	apiKey  string
	baseURL string
	limiter *rate.Limiter
	now     func() time.Time
}

// PublicDataOption configures the data.go.kr source.
type PublicDataOption func(*PublicData)

// WithPublicDataURL overrides the dataset endpoint (for testing).
func WithPublicDataURL(u string) PublicDataOption {
	return func(p *PublicData) { p.baseURL = u }
}

// WithPublicDataPacing sets the minimum gap between page requests.
func WithPublicDataPacing(d time.Duration) PublicDataOption {
	return func(p *PublicData) { p.limiter = pacer(d) }
}

// NewPublicData creates a data.go.kr source.
func NewPublicData(f fetcher.Fetcher, apiKey string, opts ...PublicDataOption) *PublicData {
	p := &PublicData{
		fetcher: f,
		apiKey:  apiKey,
		baseURL: publicDataURL,
		limiter: pacer(500 * time.Millisecond),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PublicData) Name() string { return "publicdata" }

func (p *PublicData) Fetch(ctx context.Context) ([]model.Observation, error) {
	var out []model.Observation
	for page := 1; page <= publicDataMaxPage; page++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return out, eris.Wrap(err, "publicdata: wait")
		}
		q := url.Values{}
		q.Set("serviceKey", p.apiKey)
		q.Set("pageNo", strconv.Itoa(page))
		q.Set("numOfRows", strconv.Itoa(publicDataRows))
		q.Set("type", "json")

		resp, err := fetcher.GetJSON[publicDataResponse](ctx, p.fetcher, p.baseURL+"?"+q.Encode(), nil)
		if err != nil {
			return out, eris.Wrapf(err, "publicdata: fetch page %d", page)
		}
		header := resp.Response.Header
		if header.ResultCode != "" && header.ResultCode != "00" {
			// 03 is NODATA_ERROR, returned past the last page.
			if header.ResultCode == "03" {
				break
			}
			return out, eris.Errorf("publicdata: api error %s: %s", header.ResultCode, header.ResultMsg)
		}
		items := resp.Response.Body.Items
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			if !isPoolFacility(item) {
				continue
			}
			out = append(out, p.observation(item))
		}
	}
	zap.L().Debug("publicdata: fetched facilities", zap.Int("pools", len(out)))
	return out, nil
}

func isPoolFacility(item publicDataItem) bool {
	for _, name := range []string{item.FcltyName, item.FacilityName} {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "수영") || strings.Contains(lower, "pool") {
			return true
		}
	}
	return false
}

func (p *PublicData) observation(item publicDataItem) model.Observation {
	obs := model.Observation{
		Name:       firstNonEmpty(item.FacilityName, item.FcltyName),
		Address:    firstNonEmpty(item.RoadAddress, item.LotAddress),
		Phone:      firstNonEmpty(item.PhoneNumber, item.Telno),
		URL:        strings.TrimSpace(item.HomepageURL),
		Source:     p.Name(),
		ObservedAt: p.now().UTC(),
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(item.Latitude), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(item.Longitude), 64)
	if errLat == nil && errLng == nil && lat != 0 && lng != 0 {
		obs.Location = &model.Coordinates{Lat: lat, Lng: lng}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(item.ParkingLotCnt)); err == nil && n > 0 {
		obs.Facilities = []string{"주차장"}
		parking := true
		obs.Parking = &parking
	}
	return obs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
