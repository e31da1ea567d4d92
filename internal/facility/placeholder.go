package facility

import (
	"slices"

	"github.com/poolfinder/pool-cli/internal/model"
)

// Amounts that older collectors wrote when they had no real price.
const (
	placeholderFreeSwimPrice = 8000
	placeholderLessonPrice   = 10000
)

// DefaultHours is the operating-hours template older collectors wrote for
// every facility: weekdays 06-22, saturday 07-21, sunday 08-20.
func DefaultHours() model.Schedule {
	var s model.Schedule
	for _, d := range model.WorkWeek() {
		s.Add(d, "06:00-22:00")
	}
	s.Add(model.Saturday, "07:00-21:00")
	s.Add(model.Sunday, "08:00-20:00")
	return s
}

// IsPlaceholderPrice reports whether p is a collector default for the
// category. "8000", "8,000", "8000.0" and "8000원" all parse to Fixed(8000).
func IsPlaceholderPrice(c model.Category, p model.Price) bool {
	amount, ok := p.Amount()
	if !ok {
		return false
	}
	switch c {
	case model.CategoryFreeSwim:
		return amount == placeholderFreeSwimPrice
	case model.CategoryMonthlyLesson:
		return amount == placeholderLessonPrice
	}
	return false
}

// IsPlaceholderHours reports whether s is exactly the default template.
func IsPlaceholderHours(s model.Schedule) bool {
	return !s.IsEmpty() && s.Equal(DefaultHours())
}

// IsPlaceholderFreeSwim reports whether s carries the default free-swim
// pair 06:00-08:00 and 13:00-15:00 on any day.
func IsPlaceholderFreeSwim(s model.Schedule) bool {
	for _, ranges := range s.Days {
		if slices.Contains(ranges, "06:00-08:00") && slices.Contains(ranges, "13:00-15:00") {
			return true
		}
	}
	return false
}

// CleanPlaceholders clears placeholder values from rec and returns the
// names of the cleared fields. A cleaned record is reset to pending so the
// next enrichment pass picks it up.
func CleanPlaceholders(rec *model.FacilityRecord) []string {
	var cleared []string
	if IsPlaceholderPrice(model.CategoryFreeSwim, rec.FreeSwimPrice) {
		rec.FreeSwimPrice = model.UnknownPrice()
		cleared = append(cleared, "free_swim_price")
	}
	if IsPlaceholderPrice(model.CategoryMonthlyLesson, rec.MonthlyLessonPrice) {
		rec.MonthlyLessonPrice = model.UnknownPrice()
		cleared = append(cleared, "monthly_lesson_price")
	}
	if IsPlaceholderHours(rec.OperatingHours) {
		rec.OperatingHours = model.Schedule{}
		cleared = append(cleared, "operating_hours")
	}
	if IsPlaceholderFreeSwim(rec.FreeSwim) {
		rec.FreeSwim = model.Schedule{}
		cleared = append(cleared, "free_swim")
	}
	if len(cleared) > 0 && rec.EnrichmentStatus == model.EnrichmentSuccess {
		rec.EnrichmentStatus = model.EnrichmentPending
	}
	return cleared
}
