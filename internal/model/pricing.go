package model

import "sort"

// Category is a pricing category.
type Category string

const (
	CategoryDailyPass     Category = "daily_pass"
	CategoryFreeSwim      Category = "free_swim"
	CategoryMonthlyLesson Category = "monthly_lesson"
)

// Audience is the customer group a price applies to.
type Audience string

const (
	AudienceAdult  Audience = "adult"
	AudienceTeen   Audience = "teen"
	AudienceChild  Audience = "child"
	AudienceSenior Audience = "senior"
)

// DayType buckets prices by day. DayTypeAny is used when the source quotes a
// single price without a weekday/weekend split.
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeWeekend DayType = "weekend"
	DayTypeAny     DayType = "any"
)

// AllCategories returns the known categories in display order.
func AllCategories() []Category {
	return []Category{CategoryDailyPass, CategoryFreeSwim, CategoryMonthlyLesson}
}

// AllAudiences returns the known audiences in display order.
func AllAudiences() []Audience {
	return []Audience{AudienceAdult, AudienceTeen, AudienceChild, AudienceSenior}
}

// Pricing maps category -> audience -> day type -> price in won.
// A missing leaf means unknown.
type Pricing map[Category]map[Audience]map[DayType]int

// PriceLeaf is one flattened pricing entry.
type PriceLeaf struct {
	Category Category `json:"category"`
	Audience Audience `json:"audience"`
	DayType  DayType  `json:"day_type"`
	Amount   int      `json:"amount"`
}

// Get returns the leaf price, if present.
func (p Pricing) Get(c Category, a Audience, d DayType) (int, bool) {
	if p == nil {
		return 0, false
	}
	v, ok := p[c][a][d]
	return v, ok
}

// Set stores a leaf, creating intermediate maps as needed.
func (p Pricing) Set(c Category, a Audience, d DayType, amount int) {
	if p[c] == nil {
		p[c] = make(map[Audience]map[DayType]int)
	}
	if p[c][a] == nil {
		p[c][a] = make(map[DayType]int)
	}
	p[c][a][d] = amount
}

// IsEmpty reports whether no leaf is present.
func (p Pricing) IsEmpty() bool {
	return len(p.Leaves()) == 0
}

// Leaves returns every leaf in a stable order.
func (p Pricing) Leaves() []PriceLeaf {
	var out []PriceLeaf
	for c, byAudience := range p {
		for a, byDay := range byAudience {
			for d, amount := range byDay {
				out = append(out, PriceLeaf{Category: c, Audience: a, DayType: d, Amount: amount})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].Audience != out[j].Audience {
			return out[i].Audience < out[j].Audience
		}
		return out[i].DayType < out[j].DayType
	})
	return out
}

// Clone returns a deep copy.
func (p Pricing) Clone() Pricing {
	if p == nil {
		return nil
	}
	out := make(Pricing, len(p))
	for _, l := range p.Leaves() {
		out.Set(l.Category, l.Audience, l.DayType, l.Amount)
	}
	return out
}

// Overlay copies every leaf of other into a clone of p and returns it.
// Leaves absent from other are kept.
func (p Pricing) Overlay(other Pricing) Pricing {
	out := p.Clone()
	if out == nil {
		out = make(Pricing)
	}
	for _, l := range other.Leaves() {
		out.Set(l.Category, l.Audience, l.DayType, l.Amount)
	}
	return out
}

// Representative returns the price most useful as a one-number summary for
// a category: adult weekday, then adult any, then adult weekend.
func (p Pricing) Representative(c Category) (int, bool) {
	for _, d := range []DayType{DayTypeWeekday, DayTypeAny, DayTypeWeekend} {
		if v, ok := p.Get(c, AudienceAdult, d); ok {
			return v, true
		}
	}
	return 0, false
}
