package source

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poolfinder/pool-cli/internal/model"
)

func TestRelevance_Defaults(t *testing.T) {
	r := NewRelevance(nil, nil)

	tests := []struct {
		name     string
		category string
		want     bool
	}{
		{"잠실실내수영장", "스포츠,레저 > 수영,수상 > 수영장", true},
		{"아레나 수영복 강남점", "가정,생활 > 스포츠용품", false},
		{"멍멍 애견수영장", "반려동물 > 애견수영장", false},
		{"송파구민체육센터", "스포츠,레저 > 스포츠용품", true},
		{"OO호텔 피트니스", "", true},
		{"캐리비안 워터파크", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Relevant(model.Observation{Name: tt.name, Category: tt.category})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelevance_CustomLists(t *testing.T) {
	r := NewRelevance([]string{"Shop"}, []string{})

	assert.False(t, r.Relevant(model.Observation{Name: "Swim SHOP"}))
	assert.True(t, r.Relevant(model.Observation{Name: "City Pool"}))
}

func TestRelevance_EmptyBadKeepsAll(t *testing.T) {
	r := NewRelevance([]string{}, nil)
	assert.True(t, r.Relevant(model.Observation{Name: "수영복 매장"}))
}
