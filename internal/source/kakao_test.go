package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/poolfinder/pool-cli/pkg/kakao"
	kakaomocks "github.com/poolfinder/pool-cli/pkg/kakao/mocks"
)

func TestKakao_PagesUntilEnd(t *testing.T) {
	client := kakaomocks.NewMockClient(t)
	client.On("KeywordSearch", mock.Anything, "수영장", 1, kakao.MaxSize).Return(&kakao.KeywordResponse{
		Meta: kakao.Meta{IsEnd: false},
		Documents: []kakao.Document{{
			ID: "1", PlaceName: "잠실수영장", RoadAddressName: "서울 송파구 올림픽로 25",
			AddressName: "서울 송파구 잠실동 10", X: "127.0736", Y: "37.5146",
			Phone: "02-1234-5678", PlaceURL: "http://place.map.kakao.com/1",
			CategoryName: "스포츠,레저 > 수영,수상 > 수영장",
		}},
	}, nil).Once()
	client.On("KeywordSearch", mock.Anything, "수영장", 2, kakao.MaxSize).Return(&kakao.KeywordResponse{
		Meta: kakao.Meta{IsEnd: true},
		Documents: []kakao.Document{
			{ID: "1", PlaceName: "잠실수영장"},
			{ID: "2", PlaceName: "노원구민체육센터", AddressName: "서울 노원구 상계동 1"},
		},
	}, nil).Once()

	src := NewKakao(client, []string{"수영장"}, 0)
	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "잠실수영장", first.Name)
	assert.Equal(t, "서울 송파구 올림픽로 25", first.Address)
	require.NotNil(t, first.Location)
	assert.InDelta(t, 37.5146, first.Location.Lat, 1e-9)
	assert.InDelta(t, 127.0736, first.Location.Lng, 1e-9)
	assert.Equal(t, "kakao", first.Source)
	assert.Equal(t, "02-1234-5678", first.Phone)
	assert.False(t, first.ObservedAt.IsZero())

	assert.Equal(t, "서울 노원구 상계동 1", got[1].Address)
	assert.Nil(t, got[1].Location)
}

func TestKakao_EmptyPageStops(t *testing.T) {
	client := kakaomocks.NewMockClient(t)
	client.On("KeywordSearch", mock.Anything, "수영 레슨", 1, kakao.MaxSize).
		Return(&kakao.KeywordResponse{}, nil).Once()

	got, err := NewKakao(client, []string{"수영 레슨"}, 0).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestKakao_ErrorKeepsPartial(t *testing.T) {
	client := kakaomocks.NewMockClient(t)
	client.On("KeywordSearch", mock.Anything, "a", 1, kakao.MaxSize).Return(&kakao.KeywordResponse{
		Meta:      kakao.Meta{IsEnd: true},
		Documents: []kakao.Document{{ID: "1", PlaceName: "A 수영장"}},
	}, nil).Once()
	client.On("KeywordSearch", mock.Anything, "b", 1, kakao.MaxSize).Return(nil, assert.AnError).Once()

	got, err := NewKakao(client, []string{"a", "b"}, 0).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `kakao: search "b" page 1`)
	assert.Len(t, got, 1)
}

func TestKakao_DefaultQueries(t *testing.T) {
	src := NewKakao(kakaomocks.NewMockClient(t), nil, 0)
	assert.Equal(t, DefaultKakaoQueries, src.queries)
	assert.Equal(t, "kakao", src.Name())
}
