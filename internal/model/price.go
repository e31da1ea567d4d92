package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// PriceKind discriminates the Price variants.
type PriceKind int

const (
	PriceUnknown PriceKind = iota
	PriceFixed
	PriceDescribed
)

func (k PriceKind) String() string {
	switch k {
	case PriceFixed:
		return "fixed"
	case PriceDescribed:
		return "described"
	default:
		return "unknown"
	}
}

// Price is a summary price for a facility. Not every facility quotes a
// single number, so a price is either a fixed amount in won, a free-text
// description (e.g. "가격 다양, 표 참조"), or unknown.
type Price struct {
	kind   PriceKind
	amount int
	text   string
}

// Fixed returns a Price holding an amount in won.
func Fixed(amount int) Price {
	return Price{kind: PriceFixed, amount: amount}
}

// Described returns a Price holding free text. Blank text yields Unknown.
func Described(text string) Price {
	text = strings.TrimSpace(text)
	if text == "" {
		return Price{}
	}
	return Price{kind: PriceDescribed, text: text}
}

// UnknownPrice returns the zero Price.
func UnknownPrice() Price {
	return Price{}
}

// ParsePrice interprets a collector-provided price string. Strings that hold
// only a number (commas, whitespace and a trailing 원 allowed) become Fixed.
func ParsePrice(s string) Price {
	if amount, ok := parseWon(s); ok {
		return Fixed(amount)
	}
	return Described(s)
}

// Kind returns the variant tag.
func (p Price) Kind() PriceKind { return p.kind }

// IsKnown reports whether the price carries any information.
func (p Price) IsKnown() bool { return p.kind != PriceUnknown }

// Amount returns the fixed amount, if the price is Fixed.
func (p Price) Amount() (int, bool) {
	if p.kind != PriceFixed {
		return 0, false
	}
	return p.amount, true
}

// Text returns the description, if the price is Described.
func (p Price) Text() (string, bool) {
	if p.kind != PriceDescribed {
		return "", false
	}
	return p.text, true
}

func (p Price) String() string {
	switch p.kind {
	case PriceFixed:
		return strconv.Itoa(p.amount)
	case PriceDescribed:
		return p.text
	default:
		return ""
	}
}

// MarshalJSON encodes Fixed as a number, Described as a string and Unknown as null.
func (p Price) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case PriceFixed:
		return []byte(strconv.Itoa(p.amount)), nil
	case PriceDescribed:
		return json.Marshal(p.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, a string or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "model: decode price text")
		}
		*p = ParsePrice(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return eris.Wrap(err, "model: decode price amount")
	}
	*p = Fixed(int(f))
	return nil
}

// parseWon parses "8,000", "8000원", "8000.0" into an integer amount.
func parseWon(s string) (int, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "원")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
