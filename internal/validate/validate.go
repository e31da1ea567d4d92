// Package validate turns raw extractor output into a typed FactBundle,
// dropping every value that fails a range or format check.
package validate

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/poolfinder/pool-cli/internal/model"
)

// Bounds applied to extracted facts.
const (
	MinPrice         = 500
	MaxPrice         = 500000
	MinLanes         = 1
	MaxLanes         = 50
	MaxPoolSize      = 50
	MaxNotes         = 500
	MaxClosure       = 200
	notesPlaceholder = "비고 사항"
	closedMarker     = "휴관"
)

// Example values shown to the model in the extraction template. A reply
// that repeats them states nothing about the facility.
const (
	TemplateNotes    = "closures, reservation method"
	TemplateClosure  = "irregular closure rule, e.g. 매월 첫째 일요일"
	TemplatePoolSize = "25m x 6레인"
	TemplateLanes    = 8
	TemplateParking  = true
)

var (
	timeRangeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d-([01]\d|2[0-3]):[0-5]\d$`)
	phoneRe     = regexp.MustCompile(`^0\d{1,2}-\d{3,4}-\d{4}$`)
)

var categoryAliases = map[string]model.Category{
	"daily_pass":     model.CategoryDailyPass,
	"일일권":            model.CategoryDailyPass,
	"일일입장":           model.CategoryDailyPass,
	"free_swim":      model.CategoryFreeSwim,
	"자유수영":           model.CategoryFreeSwim,
	"monthly_lesson": model.CategoryMonthlyLesson,
	"강습_월":           model.CategoryMonthlyLesson,
	"강습":             model.CategoryMonthlyLesson,
}

var audienceAliases = map[string]model.Audience{
	"adult":  model.AudienceAdult,
	"성인":     model.AudienceAdult,
	"teen":   model.AudienceTeen,
	"청소년":    model.AudienceTeen,
	"child":  model.AudienceChild,
	"어린이":    model.AudienceChild,
	"senior": model.AudienceSenior,
	"경로":     model.AudienceSenior,
}

var dayTypeAliases = map[string]model.DayType{
	"weekday": model.DayTypeWeekday,
	"평일":      model.DayTypeWeekday,
	"weekend": model.DayTypeWeekend,
	"주말":      model.DayTypeWeekend,
	"any":     model.DayTypeAny,
}

var weekdayAliases = map[string]model.Weekday{
	"monday":    model.Monday,
	"tuesday":   model.Tuesday,
	"wednesday": model.Wednesday,
	"thursday":  model.Thursday,
	"friday":    model.Friday,
	"saturday":  model.Saturday,
	"sunday":    model.Sunday,
	"월":         model.Monday,
	"화":         model.Tuesday,
	"수":         model.Wednesday,
	"목":         model.Thursday,
	"금":         model.Friday,
	"토":         model.Saturday,
	"일":         model.Sunday,
}

// Group keys fan out to every day they cover.
var weekdayGroups = map[string][]model.Weekday{
	"평일":      {model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday},
	"weekdays": {model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday},
	"주말":      {model.Saturday, model.Sunday},
	"weekend":  {model.Saturday, model.Sunday},
	"매일":      {model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday, model.Saturday, model.Sunday},
}

// scheduleDays resolves a schedule key to the days it names.
func scheduleDays(key string) []model.Weekday {
	if d, ok := weekdayAliases[key]; ok {
		return []model.Weekday{d}
	}
	return weekdayGroups[key]
}

// Validate checks every field of raw and keeps only the ones that pass.
// It never fails: invalid values are dropped and empty containers removed.
func Validate(raw *model.RawFactBundle) model.FactBundle {
	var out model.FactBundle
	if raw == nil {
		return out
	}
	out.Pricing = validatePricing(raw.Pricing)
	out.FreeSwim = validateSchedule(raw.FreeSwim)
	out.OperatingHours = validateSchedule(raw.OperatingHours)
	if p, ok := Phone(raw.Phone); ok {
		out.Phone = p
	}
	if n, ok := Lanes(raw.Lanes); ok {
		out.Lanes = &n
	}
	if s, ok := raw.PoolSize.(string); ok {
		s = strings.TrimSpace(s)
		if s != "" && utf8.RuneCountInString(s) <= MaxPoolSize {
			out.PoolSize = s
		}
	}
	if b, ok := Parking(raw.Parking); ok {
		out.Parking = &b
	}
	out.Notes = Notes(raw.Notes)
	if isTemplateShape(out) {
		out.Lanes, out.PoolSize, out.Parking = nil, "", nil
	}
	return out
}

// isTemplateShape reports whether lanes, pool size and parking all repeat
// the template example.
func isTemplateShape(b model.FactBundle) bool {
	return b.Lanes != nil && *b.Lanes == TemplateLanes &&
		b.PoolSize == TemplatePoolSize &&
		b.Parking != nil && *b.Parking == TemplateParking
}

func validatePricing(raw map[string]any) model.Pricing {
	out := model.Pricing{}
	for catKey, catVal := range raw {
		cat, ok := categoryAliases[strings.TrimSpace(catKey)]
		if !ok {
			continue
		}
		byAudience, ok := catVal.(map[string]any)
		if !ok {
			// A bare category price is taken as the adult price.
			if n, ok := Price(catVal); ok {
				out.Set(cat, model.AudienceAdult, model.DayTypeAny, n)
			}
			continue
		}
		for audKey, audVal := range byAudience {
			aud, ok := audienceAliases[strings.TrimSpace(audKey)]
			if !ok {
				continue
			}
			byDay, ok := audVal.(map[string]any)
			if !ok {
				if n, ok := Price(audVal); ok {
					out.Set(cat, aud, model.DayTypeAny, n)
				}
				continue
			}
			for dayKey, dayVal := range byDay {
				day, ok := dayTypeAliases[strings.TrimSpace(dayKey)]
				if !ok {
					continue
				}
				if n, ok := Price(dayVal); ok {
					out.Set(cat, aud, day, n)
				}
			}
		}
	}
	if out.IsEmpty() {
		return nil
	}
	return out
}

func validateSchedule(raw map[string]any) *model.Schedule {
	var s model.Schedule
	for key, val := range raw {
		key = strings.TrimSpace(key)
		switch key {
		case "closure", closedMarker:
			if text, ok := val.(string); ok {
				if text = strings.TrimSpace(text); text != TemplateClosure {
					s.Closure = truncate(text, MaxClosure)
				}
			}
			continue
		case "closed_days":
			for _, item := range asList(val) {
				if str, ok := item.(string); ok {
					if d, ok := weekdayAliases[strings.TrimSpace(str)]; ok {
						s.Close(d)
					}
				}
			}
			continue
		}

		days := scheduleDays(key)
		if len(days) == 0 {
			continue
		}
		for _, item := range asList(val) {
			str, ok := item.(string)
			if !ok {
				continue
			}
			str = strings.TrimSpace(str)
			for _, day := range days {
				if str == closedMarker {
					s.Close(day)
				} else if r, ok := TimeRange(str); ok {
					s.Add(day, r)
				}
			}
		}
	}
	if s.IsEmpty() {
		return nil
	}
	return &s
}

func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case nil:
		return nil
	default:
		return []any{t}
	}
}

// Price accepts an integer, an integral float, a json.Number or a numeric
// string ("3,000원") within [MinPrice, MaxPrice].
func Price(v any) (int, bool) {
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int64:
		n = int(t)
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		n = int(t)
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, false
		}
		n = int(i)
	case string:
		amount, ok := model.ParsePrice(t).Amount()
		if !ok {
			return 0, false
		}
		n = amount
	default:
		return 0, false
	}
	if n < MinPrice || n > MaxPrice {
		return 0, false
	}
	return n, true
}

// TimeRange reports whether s is exactly HH:MM-HH:MM in 24h time.
// Surrounding whitespace is ignored.
func TimeRange(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !timeRangeRe.MatchString(s) {
		return "", false
	}
	return s, true
}

// Phone accepts Korean landline and mobile formats such as 02-123-4567.
func Phone(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if !phoneRe.MatchString(s) {
		return "", false
	}
	return s, true
}

// Lanes accepts an integer lane count between MinLanes and MaxLanes.
func Lanes(v any) (int, bool) {
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		n = int(t)
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, false
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "레인")))
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}
	if n < MinLanes || n > MaxLanes {
		return 0, false
	}
	return n, true
}

// Parking accepts a bool or a yes/no word.
func Parking(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "있음", "가능", "yes", "true", "y", "무료":
			return true, true
		case "없음", "불가", "불가능", "no", "false", "n":
			return false, true
		}
	}
	return false, false
}

// Notes trims, drops the template placeholders and truncates to MaxNotes
// runes.
func Notes(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == notesPlaceholder || s == TemplateNotes {
		return ""
	}
	return truncate(s, MaxNotes)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
