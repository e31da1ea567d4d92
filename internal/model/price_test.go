package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		kind   PriceKind
		amount int
		text   string
	}{
		{"plain number", "8000", PriceFixed, 8000, ""},
		{"comma and won", "8,000원", PriceFixed, 8000, ""},
		{"float suffix", "8000.0", PriceFixed, 8000, ""},
		{"described", "가격 다양, 표 참조", PriceDescribed, 0, "가격 다양, 표 참조"},
		{"blank", "   ", PriceUnknown, 0, ""},
		{"fractional is text", "8000.5", PriceDescribed, 0, "8000.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := ParsePrice(tt.in)
			assert.Equal(t, tt.kind, p.Kind())
			if tt.kind == PriceFixed {
				amount, ok := p.Amount()
				require.True(t, ok)
				assert.Equal(t, tt.amount, amount)
			}
			if tt.kind == PriceDescribed {
				text, ok := p.Text()
				require.True(t, ok)
				assert.Equal(t, tt.text, text)
			}
		})
	}
}

func TestPrice_JSON(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		A Price `json:"a"`
		B Price `json:"b"`
		C Price `json:"c"`
	}
	in := wrapper{A: Fixed(3400), B: Described("시간대별 상이"), C: UnknownPrice()}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3400,"b":"시간대별 상이","c":null}`, string(data))

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestPrice_UnmarshalNumericString(t *testing.T) {
	t.Parallel()

	var p Price
	require.NoError(t, json.Unmarshal([]byte(`"5,500원"`), &p))
	amount, ok := p.Amount()
	require.True(t, ok)
	assert.Equal(t, 5500, amount)
}

func TestPrice_Accessors(t *testing.T) {
	t.Parallel()

	_, ok := Described("text").Amount()
	assert.False(t, ok)
	_, ok = Fixed(1).Text()
	assert.False(t, ok)
	assert.False(t, UnknownPrice().IsKnown())
	assert.Equal(t, "1000", Fixed(1000).String())
	assert.Equal(t, "fixed", PriceFixed.String())
}
