package model

// RawFactBundle is unvalidated extractor output. Values keep the loose shape
// produced by json decoding (float64, string, bool, map[string]any, []any)
// and keys may be Korean or English.
type RawFactBundle struct {
	Pricing        map[string]any `json:"pricing,omitempty"`
	FreeSwim       map[string]any `json:"free_swim_schedule,omitempty"`
	OperatingHours map[string]any `json:"operating_hours,omitempty"`
	Phone          any            `json:"phone,omitempty"`
	Lanes          any            `json:"lanes,omitempty"`
	PoolSize       any            `json:"pool_size,omitempty"`
	Parking        any            `json:"parking,omitempty"`
	Notes          any            `json:"notes,omitempty"`
}

// IsEmpty reports whether the extractor produced nothing at all.
func (b *RawFactBundle) IsEmpty() bool {
	if b == nil {
		return true
	}
	return len(b.Pricing) == 0 &&
		len(b.FreeSwim) == 0 &&
		len(b.OperatingHours) == 0 &&
		isBlank(b.Phone) &&
		isBlank(b.Lanes) &&
		isBlank(b.PoolSize) &&
		isBlank(b.Parking) &&
		isBlank(b.Notes)
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// FactBundle is the typed result of validation. Every present field has
// passed range and format checks.
type FactBundle struct {
	Pricing        Pricing   `json:"pricing,omitempty"`
	FreeSwim       *Schedule `json:"free_swim,omitempty"`
	OperatingHours *Schedule `json:"operating_hours,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Lanes          *int      `json:"lanes,omitempty"`
	PoolSize       string    `json:"pool_size,omitempty"`
	Parking        *bool     `json:"parking,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

// FieldCount returns how many top-level fields are present.
func (b FactBundle) FieldCount() int {
	n := 0
	if !b.Pricing.IsEmpty() {
		n++
	}
	if b.FreeSwim != nil {
		n++
	}
	if b.OperatingHours != nil {
		n++
	}
	if b.Phone != "" {
		n++
	}
	if b.Lanes != nil {
		n++
	}
	if b.PoolSize != "" {
		n++
	}
	if b.Parking != nil {
		n++
	}
	if b.Notes != "" {
		n++
	}
	return n
}

// IsEmpty reports whether nothing survived validation.
func (b FactBundle) IsEmpty() bool {
	return b.FieldCount() == 0
}

// FieldNames lists the present top-level fields in a fixed order.
func (b FactBundle) FieldNames() []string {
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}
	add(!b.Pricing.IsEmpty(), "pricing")
	add(b.FreeSwim != nil, "free_swim")
	add(b.OperatingHours != nil, "operating_hours")
	add(b.Phone != "", "phone")
	add(b.Lanes != nil, "lanes")
	add(b.PoolSize != "", "pool_size")
	add(b.Parking != nil, "parking")
	add(b.Notes != "", "notes")
	return out
}
