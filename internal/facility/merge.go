package facility

import (
	"slices"

	"github.com/poolfinder/pool-cli/internal/model"
)

// MergeObservation copies every field obs reports onto rec and returns the
// names of the fields that changed. Placeholder prices and schedules on the
// observation are ignored.
func MergeObservation(rec *model.FacilityRecord, obs model.Observation) []string {
	var changed []string
	setString := func(field string, dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = append(changed, field)
		}
	}
	setPrice := func(field string, dst *model.Price, v model.Price, c model.Category) {
		if v.IsKnown() && !IsPlaceholderPrice(c, v) && *dst != v {
			*dst = v
			changed = append(changed, field)
		}
	}

	setString("name", &rec.Name, obs.Name)
	setString("address", &rec.Address, obs.Address)
	if obs.Location != nil && (rec.Location == nil || *rec.Location != *obs.Location) {
		loc := *obs.Location
		rec.Location = &loc
		changed = append(changed, "location")
	}
	setString("phone", &rec.Phone, obs.Phone)
	setString("url", &rec.URL, obs.URL)
	setString("source", &rec.Source, obs.Source)
	if obs.Lanes != nil && (rec.Lanes == nil || *rec.Lanes != *obs.Lanes) {
		n := *obs.Lanes
		rec.Lanes = &n
		changed = append(changed, "lanes")
	}
	setString("pool_size", &rec.PoolSize, obs.PoolSize)
	setString("water_temp", &rec.WaterTemp, obs.WaterTemp)
	if len(obs.Facilities) > 0 && !slices.Equal(rec.Facilities, obs.Facilities) {
		rec.Facilities = slices.Clone(obs.Facilities)
		changed = append(changed, "facilities")
	}
	if obs.Parking != nil && (rec.Parking == nil || *rec.Parking != *obs.Parking) {
		b := *obs.Parking
		rec.Parking = &b
		changed = append(changed, "parking")
	}

	setPrice("daily_price", &rec.DailyPrice, obs.DailyPrice, model.CategoryDailyPass)
	setPrice("free_swim_price", &rec.FreeSwimPrice, obs.FreeSwimPrice, model.CategoryFreeSwim)
	setPrice("monthly_lesson_price", &rec.MonthlyLessonPrice, obs.MonthlyLessonPrice, model.CategoryMonthlyLesson)

	if !obs.OperatingHours.IsEmpty() && !IsPlaceholderHours(obs.OperatingHours) && !rec.OperatingHours.Equal(obs.OperatingHours) {
		rec.OperatingHours = obs.OperatingHours
		changed = append(changed, "operating_hours")
	}
	if !obs.FreeSwim.IsEmpty() && !IsPlaceholderFreeSwim(obs.FreeSwim) && !rec.FreeSwim.Equal(obs.FreeSwim) {
		rec.FreeSwim = obs.FreeSwim
		changed = append(changed, "free_swim")
	}

	setString("description", &rec.Description, obs.Description)
	setString("image_url", &rec.ImageURL, obs.ImageURL)
	if obs.Rating != nil && (rec.Rating == nil || *rec.Rating != *obs.Rating) {
		r := *obs.Rating
		rec.Rating = &r
		changed = append(changed, "rating")
	}
	if obs.ReviewCount > 0 && rec.ReviewCount != obs.ReviewCount {
		rec.ReviewCount = obs.ReviewCount
		changed = append(changed, "review_count")
	}
	return changed
}

// ApplyFacts overwrites only the fields present in bundle. Pricing is
// overlaid leaf by leaf and the summary prices follow the adult leaves.
// It returns the names of the fields that changed.
func ApplyFacts(rec *model.FacilityRecord, bundle model.FactBundle) []string {
	var changed []string

	if !bundle.Pricing.IsEmpty() {
		merged := rec.Pricing.Overlay(bundle.Pricing)
		if !slices.Equal(merged.Leaves(), rec.Pricing.Leaves()) {
			rec.Pricing = merged
			changed = append(changed, "pricing")
		}
		summaries := []struct {
			field string
			cat   model.Category
			dst   *model.Price
		}{
			{"daily_price", model.CategoryDailyPass, &rec.DailyPrice},
			{"free_swim_price", model.CategoryFreeSwim, &rec.FreeSwimPrice},
			{"monthly_lesson_price", model.CategoryMonthlyLesson, &rec.MonthlyLessonPrice},
		}
		for _, s := range summaries {
			amount, ok := rec.Pricing.Representative(s.cat)
			if !ok {
				continue
			}
			if p := model.Fixed(amount); *s.dst != p {
				*s.dst = p
				changed = append(changed, s.field)
			}
		}
	}

	if bundle.FreeSwim != nil && !rec.FreeSwim.Equal(*bundle.FreeSwim) {
		rec.FreeSwim = *bundle.FreeSwim
		changed = append(changed, "free_swim")
	}
	if bundle.OperatingHours != nil && !rec.OperatingHours.Equal(*bundle.OperatingHours) {
		rec.OperatingHours = *bundle.OperatingHours
		changed = append(changed, "operating_hours")
	}
	if bundle.Phone != "" && rec.Phone != bundle.Phone {
		rec.Phone = bundle.Phone
		changed = append(changed, "phone")
	}
	if bundle.Lanes != nil && (rec.Lanes == nil || *rec.Lanes != *bundle.Lanes) {
		n := *bundle.Lanes
		rec.Lanes = &n
		changed = append(changed, "lanes")
	}
	if bundle.PoolSize != "" && rec.PoolSize != bundle.PoolSize {
		rec.PoolSize = bundle.PoolSize
		changed = append(changed, "pool_size")
	}
	if bundle.Parking != nil && (rec.Parking == nil || *rec.Parking != *bundle.Parking) {
		b := *bundle.Parking
		rec.Parking = &b
		changed = append(changed, "parking")
	}
	if bundle.Notes != "" && rec.Notes != bundle.Notes {
		rec.Notes = bundle.Notes
		changed = append(changed, "notes")
	}
	return changed
}
