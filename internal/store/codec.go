package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/poolfinder/pool-cli/internal/model"
)

// writeColumns is the column order used by insert and update statements.
var writeColumns = []string{
	"name", "address", "name_key", "address_key", "lat", "lng",
	"phone", "lanes", "pool_size", "water_temp", "facilities", "parking",
	"pricing", "free_swim", "operating_hours",
	"daily_price", "free_swim_price", "monthly_lesson_price",
	"notes", "description", "image_url", "rating", "review_count",
	"source", "url", "is_active", "enrichment_status", "last_enriched",
	"last_updated", "created_at",
}

// selectColumns is the column order read by scanFacility.
const selectColumns = `id, name, address, lat, lng, phone, lanes, pool_size, water_temp,
	facilities, parking, pricing, free_swim, operating_hours,
	daily_price, free_swim_price, monthly_lesson_price,
	notes, description, image_url, rating, review_count,
	source, url, is_active, enrichment_status, last_enriched, last_updated, created_at`

// placeholderFunc renders the i-th (1-based) bind parameter.
type placeholderFunc func(i int) string

func sqlitePlaceholder(int) string    { return "?" }
func postgresPlaceholder(i int) string { return fmt.Sprintf("$%d", i) }

func insertSQL(ph placeholderFunc) string {
	marks := make([]string, len(writeColumns))
	for i := range writeColumns {
		marks[i] = ph(i + 1)
	}
	return fmt.Sprintf("INSERT INTO facilities (%s) VALUES (%s)",
		strings.Join(writeColumns, ", "), strings.Join(marks, ", "))
}

func updateSQL(ph placeholderFunc) string {
	sets := make([]string, len(writeColumns))
	for i, c := range writeColumns {
		sets[i] = c + " = " + ph(i+1)
	}
	return fmt.Sprintf("UPDATE facilities SET %s WHERE id = %s",
		strings.Join(sets, ", "), ph(len(writeColumns)+1))
}

// jsonArg adapts encoded JSON to the driver's preferred parameter type.
type jsonArg func([]byte) any

func jsonAsString(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func jsonAsBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

// facilityArgs encodes rec in writeColumns order.
func facilityArgs(rec *model.FacilityRecord, asJSON jsonArg) ([]any, error) {
	key := rec.Key()

	var lat, lng *float64
	if rec.Location != nil {
		lat, lng = &rec.Location.Lat, &rec.Location.Lng
	}

	var facilities, pricing []byte
	var err error
	if len(rec.Facilities) > 0 {
		if facilities, err = json.Marshal(rec.Facilities); err != nil {
			return nil, eris.Wrap(err, "store: marshal facilities")
		}
	}
	if !rec.Pricing.IsEmpty() {
		if pricing, err = json.Marshal(rec.Pricing); err != nil {
			return nil, eris.Wrap(err, "store: marshal pricing")
		}
	}
	freeSwim, err := marshalSchedule(rec.FreeSwim)
	if err != nil {
		return nil, err
	}
	hours, err := marshalSchedule(rec.OperatingHours)
	if err != nil {
		return nil, err
	}
	daily, err := marshalPrice(rec.DailyPrice)
	if err != nil {
		return nil, err
	}
	freeSwimPrice, err := marshalPrice(rec.FreeSwimPrice)
	if err != nil {
		return nil, err
	}
	lesson, err := marshalPrice(rec.MonthlyLessonPrice)
	if err != nil {
		return nil, err
	}

	status := rec.EnrichmentStatus
	if status == "" {
		status = model.EnrichmentPending
	}

	var lanes any
	if rec.Lanes != nil {
		lanes = int64(*rec.Lanes)
	}
	var lastEnriched any
	if rec.LastEnriched != nil {
		lastEnriched = rec.LastEnriched.UTC()
	}

	return []any{
		rec.Name, rec.Address, key.Name, key.Address, deref(lat), deref(lng),
		rec.Phone, lanes, rec.PoolSize, rec.WaterTemp, asJSON(facilities), deref(rec.Parking),
		asJSON(pricing), asJSON(freeSwim), asJSON(hours),
		asJSON(daily), asJSON(freeSwimPrice), asJSON(lesson),
		rec.Notes, rec.Description, rec.ImageURL, deref(rec.Rating), int64(rec.ReviewCount),
		rec.Source, rec.URL, rec.IsActive, string(status), lastEnriched,
		rec.LastUpdated.UTC(), rec.CreatedAt.UTC(),
	}, nil
}

// deref turns a nil pointer into a NULL parameter.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func marshalSchedule(s model.Schedule) ([]byte, error) {
	if s.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(s)
	return b, eris.Wrap(err, "store: marshal schedule")
}

func marshalPrice(p model.Price) ([]byte, error) {
	if !p.IsKnown() {
		return nil, nil
	}
	b, err := json.Marshal(p)
	return b, eris.Wrap(err, "store: marshal price")
}

type scannable interface {
	Scan(dest ...any) error
}

// facilityRow mirrors selectColumns with driver-neutral destination types.
type facilityRow struct {
	id                 int64
	name, address      string
	lat, lng           *float64
	phone              string
	lanes              *int
	poolSize           string
	waterTemp          string
	facilities         []byte
	parking            *bool
	pricing            []byte
	freeSwim           []byte
	hours              []byte
	dailyPrice         []byte
	freeSwimPrice      []byte
	lessonPrice        []byte
	notes, description string
	imageURL           string
	rating             *float64
	reviewCount        int
	source, url        string
	isActive           bool
	status             string
	lastEnriched       *time.Time
	lastUpdated        time.Time
	createdAt          time.Time
}

func (r *facilityRow) dest() []any {
	return []any{
		&r.id, &r.name, &r.address, &r.lat, &r.lng, &r.phone, &r.lanes, &r.poolSize, &r.waterTemp,
		&r.facilities, &r.parking, &r.pricing, &r.freeSwim, &r.hours,
		&r.dailyPrice, &r.freeSwimPrice, &r.lessonPrice,
		&r.notes, &r.description, &r.imageURL, &r.rating, &r.reviewCount,
		&r.source, &r.url, &r.isActive, &r.status, &r.lastEnriched, &r.lastUpdated, &r.createdAt,
	}
}

func (r *facilityRow) record() (*model.FacilityRecord, error) {
	rec := &model.FacilityRecord{
		ID:               r.id,
		Name:             r.name,
		Address:          r.address,
		Phone:            r.phone,
		Lanes:            r.lanes,
		PoolSize:         r.poolSize,
		WaterTemp:        r.waterTemp,
		Parking:          r.parking,
		Notes:            r.notes,
		Description:      r.description,
		ImageURL:         r.imageURL,
		Rating:           r.rating,
		ReviewCount:      r.reviewCount,
		Source:           r.source,
		URL:              r.url,
		IsActive:         r.isActive,
		EnrichmentStatus: model.EnrichmentStatus(r.status),
		LastEnriched:     r.lastEnriched,
		LastUpdated:      r.lastUpdated,
		CreatedAt:        r.createdAt,
	}
	if r.lat != nil && r.lng != nil {
		rec.Location = &model.Coordinates{Lat: *r.lat, Lng: *r.lng}
	}

	decode := []struct {
		raw  []byte
		into any
		name string
	}{
		{r.facilities, &rec.Facilities, "facilities"},
		{r.pricing, &rec.Pricing, "pricing"},
		{r.freeSwim, &rec.FreeSwim, "free_swim"},
		{r.hours, &rec.OperatingHours, "operating_hours"},
		{r.dailyPrice, &rec.DailyPrice, "daily_price"},
		{r.freeSwimPrice, &rec.FreeSwimPrice, "free_swim_price"},
		{r.lessonPrice, &rec.MonthlyLessonPrice, "monthly_lesson_price"},
	}
	for _, d := range decode {
		if len(d.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(d.raw, d.into); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal %s for facility %d", d.name, r.id)
		}
	}
	return rec, nil
}

func scanFacility(row scannable) (*model.FacilityRecord, error) {
	var r facilityRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.record()
}
