package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Weekday is a canonical day name.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// AllWeekdays returns the seven days, monday first.
func AllWeekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// WorkWeek returns monday through friday.
func WorkWeek() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
}

// Weekend returns saturday and sunday.
func Weekend() []Weekday {
	return []Weekday{Saturday, Sunday}
}

// IsWeekday reports whether w is one of the seven canonical names.
func IsWeekday(w Weekday) bool {
	for _, d := range AllWeekdays() {
		if d == w {
			return true
		}
	}
	return false
}

const (
	scheduleClosedKey  = "closed_days"
	scheduleClosureKey = "closure"
)

// Schedule holds per-day time ranges ("HH:MM-HH:MM") in order, the days the
// facility is closed, and a free-text closure note for irregular rules such
// as "매월 첫째 일요일 휴관".
type Schedule struct {
	Days       map[Weekday][]string
	ClosedDays []Weekday
	Closure    string
}

// IsEmpty reports whether the schedule carries nothing.
func (s Schedule) IsEmpty() bool {
	return len(s.Days) == 0 && len(s.ClosedDays) == 0 && s.Closure == ""
}

// Ranges returns the ranges for a day.
func (s Schedule) Ranges(d Weekday) []string {
	return s.Days[d]
}

// Add appends a range to a day unless it is already present.
func (s *Schedule) Add(d Weekday, r string) {
	if s.Days == nil {
		s.Days = make(map[Weekday][]string)
	}
	for _, existing := range s.Days[d] {
		if existing == r {
			return
		}
	}
	s.Days[d] = append(s.Days[d], r)
}

// Close marks a day as closed.
func (s *Schedule) Close(d Weekday) {
	for _, existing := range s.ClosedDays {
		if existing == d {
			return
		}
	}
	s.ClosedDays = append(s.ClosedDays, d)
}

// Equal compares two schedules leaf by leaf.
func (s Schedule) Equal(o Schedule) bool {
	if s.Closure != o.Closure || len(s.ClosedDays) != len(o.ClosedDays) || len(s.Days) != len(o.Days) {
		return false
	}
	for i := range s.ClosedDays {
		if s.ClosedDays[i] != o.ClosedDays[i] {
			return false
		}
	}
	for d, ranges := range s.Days {
		other, ok := o.Days[d]
		if !ok || len(other) != len(ranges) {
			return false
		}
		for i := range ranges {
			if ranges[i] != other[i] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON writes a flat object keyed by day name.
func (s Schedule) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Days)+2)
	for d, ranges := range s.Days {
		if len(ranges) > 0 {
			out[string(d)] = ranges
		}
	}
	if len(s.ClosedDays) > 0 {
		out[scheduleClosedKey] = s.ClosedDays
	}
	if s.Closure != "" {
		out[scheduleClosureKey] = s.Closure
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat object written by MarshalJSON. Unknown keys
// are ignored.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "model: decode schedule")
	}
	*s = Schedule{}
	for key, msg := range raw {
		switch key {
		case scheduleClosureKey:
			if err := json.Unmarshal(msg, &s.Closure); err != nil {
				return eris.Wrap(err, "model: decode schedule closure")
			}
		case scheduleClosedKey:
			if err := json.Unmarshal(msg, &s.ClosedDays); err != nil {
				return eris.Wrap(err, "model: decode schedule closed days")
			}
		default:
			d := Weekday(key)
			if !IsWeekday(d) {
				continue
			}
			var ranges []string
			if err := json.Unmarshal(msg, &ranges); err != nil {
				return eris.Wrapf(err, "model: decode schedule day %s", key)
			}
			if len(ranges) > 0 {
				if s.Days == nil {
					s.Days = make(map[Weekday][]string)
				}
				s.Days[d] = ranges
			}
		}
	}
	return nil
}
