package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/poolfinder/pool-cli/internal/fetcher"
	"github.com/poolfinder/pool-cli/internal/model"
)

const (
	seoulBaseURL  = "http://openapi.seoul.go.kr:8088"
	seoulService  = "ListPublicReservationSport"
	seoulPageSize = 1000
	// seoulMaxRows bounds paging in case list_total_count is missing.
	seoulMaxRows = 10000
)

// Seoul open-data result codes.
const (
	seoulOK     = "INFO-000"
	seoulNoData = "INFO-200"
)

// seoulRow is one <row> of the public reservation service list.
type seoulRow struct {
	ServiceName string `xml:"SVCNM"`
	Place       string `xml:"PLACENM"`
	PayInfo     string `xml:"PAYATNM"`
	URL         string `xml:"SVCURL"`
	X           string `xml:"X"`
	Y           string `xml:"Y"`
	Phone       string `xml:"TELNO"`
	Category    string `xml:"MINCLASSNM"`
	District    string `xml:"AREANM"`
}

type seoulResult struct {
	Code    string `xml:"CODE"`
	Message string `xml:"MESSAGE"`
}

// Seoul collects swimming services from the Seoul public reservation
// open-data list. Only services whose name mentions 수영 are kept.
type Seoul struct {
	fetcher fetcher.Fetcher
	apiKey  string
	baseURL string
	now     func() time.Time
}

// SeoulOption configures the Seoul source.
type SeoulOption func(*Seoul)

// WithSeoulBaseURL overrides the open-data host (for testing).
func WithSeoulBaseURL(u string) SeoulOption {
	return func(s *Seoul) { s.baseURL = strings.TrimRight(u, "/") }
}

// NewSeoul creates a Seoul open-data source.
func NewSeoul(f fetcher.Fetcher, apiKey string, opts ...SeoulOption) *Seoul {
	s := &Seoul{fetcher: f, apiKey: apiKey, baseURL: seoulBaseURL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Seoul) Name() string { return "seoul_opendata" }

func (s *Seoul) Fetch(ctx context.Context) ([]model.Observation, error) {
	var out []model.Observation
	for start := 1; start <= seoulMaxRows; start += seoulPageSize {
		end := start + seoulPageSize - 1
		rows, err := s.page(ctx, start, end)
		if err != nil {
			return out, err
		}
		for _, row := range rows {
			if !strings.Contains(row.ServiceName, "수영") {
				continue
			}
			out = append(out, s.observation(row))
		}
		if len(rows) < seoulPageSize {
			break
		}
	}
	zap.L().Debug("seoul: fetched services", zap.Int("pools", len(out)))
	return out, nil
}

func (s *Seoul) page(ctx context.Context, start, end int) ([]seoulRow, error) {
	reqURL := fmt.Sprintf("%s/%s/xml/%s/%d/%d/", s.baseURL, url.PathEscape(s.apiKey), seoulService, start, end)
	resp, err := s.fetcher.Get(ctx, reqURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "seoul: fetch rows %d-%d", start, end)
	}

	results, err := fetcher.CollectXML[seoulResult](ctx, bytes.NewReader(resp.Body), "RESULT")
	if err != nil {
		return nil, eris.Wrap(err, "seoul: parse result")
	}
	if len(results) > 0 {
		switch code := results[0].Code; code {
		case seoulOK:
		case seoulNoData:
			return nil, nil
		default:
			return nil, eris.Errorf("seoul: api error %s: %s", code, results[0].Message)
		}
	}

	rows, err := fetcher.CollectXML[seoulRow](ctx, bytes.NewReader(resp.Body), "row")
	if err != nil {
		return nil, eris.Wrap(err, "seoul: parse rows")
	}
	return rows, nil
}

func (s *Seoul) observation(row seoulRow) model.Observation {
	obs := model.Observation{
		Name:       strings.TrimSpace(row.ServiceName),
		Address:    strings.TrimSpace(row.Place),
		Phone:      strings.TrimSpace(row.Phone),
		URL:        strings.TrimSpace(row.URL),
		Category:   row.Category,
		Source:     s.Name(),
		ObservedAt: s.now().UTC(),
	}
	lng, errX := strconv.ParseFloat(strings.TrimSpace(row.X), 64)
	lat, errY := strconv.ParseFloat(strings.TrimSpace(row.Y), 64)
	if errX == nil && errY == nil && lat != 0 && lng != 0 {
		obs.Location = &model.Coordinates{Lat: lat, Lng: lng}
	}
	if amount, ok := PayInfoPrice(row.PayInfo); ok {
		obs.FreeSwimPrice = model.Fixed(amount)
	}
	return obs
}

var (
	wonRe    = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+|\d+)\s*원`)
	manWonRe = regexp.MustCompile(`(\d+)\s*만\s*원`)
)

const (
	minPayWon = 1000
	maxPayWon = 30000
)

// PayInfoPrice pulls a per-visit amount out of a fee description such as
// "유료(3,500원)" or "1만원". Amounts outside the plausible single-visit
// range are ignored.
func PayInfoPrice(info string) (int, bool) {
	var amount int
	if m := manWonRe.FindStringSubmatch(info); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		amount = n * 10000
	} else if m := wonRe.FindStringSubmatch(info); m != nil {
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			return 0, false
		}
		amount = n
	} else {
		return 0, false
	}
	if amount < minPayWon || amount > maxPayWon {
		return 0, false
	}
	return amount, true
}
