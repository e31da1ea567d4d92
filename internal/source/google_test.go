package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/poolfinder/pool-cli/pkg/google"
	googlemocks "github.com/poolfinder/pool-cli/pkg/google/mocks"
)

func TestGooglePlaces_FollowsPageToken(t *testing.T) {
	client := googlemocks.NewMockClient(t)
	client.On("TextSearch", mock.Anything, mock.MatchedBy(func(r google.TextSearchRequest) bool {
		return r.TextQuery == "수영장" && r.PageToken == "" && r.LanguageCode == "ko"
	})).Return(&google.TextSearchResponse{
		Places: []google.Place{{
			ID:                  "p1",
			DisplayName:         google.DisplayName{Text: "잠실수영장"},
			FormattedAddress:    "대한민국 서울특별시 송파구 올림픽로 25",
			Location:            &google.LatLng{Latitude: 37.5146, Longitude: 127.0736},
			NationalPhoneNumber: "02-1234-5678",
			WebsiteURI:          "https://pool.example.kr",
			Rating:              4.3,
			UserRatingCount:     120,
			Types:               []string{"swimming_pool", "point_of_interest"},
		}},
		NextPageToken: "next",
	}, nil).Once()
	client.On("TextSearch", mock.Anything, mock.MatchedBy(func(r google.TextSearchRequest) bool {
		return r.PageToken == "next"
	})).Return(&google.TextSearchResponse{
		Places: []google.Place{
			{ID: "p1", DisplayName: google.DisplayName{Text: "잠실수영장"}},
			{ID: "p2", DisplayName: google.DisplayName{Text: "올림픽수영장"}},
		},
	}, nil).Once()

	got, err := NewGooglePlaces(client, []string{"수영장"}, 0).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "잠실수영장", first.Name)
	assert.Equal(t, "swimming_pool", first.Category)
	require.NotNil(t, first.Rating)
	assert.InDelta(t, 4.3, *first.Rating, 1e-9)
	assert.Equal(t, 120, first.ReviewCount)
	require.NotNil(t, first.Location)
	assert.Equal(t, "google_places", first.Source)

	assert.Nil(t, got[1].Location)
	assert.Nil(t, got[1].Rating)
}

func TestGooglePlaces_Error(t *testing.T) {
	client := googlemocks.NewMockClient(t)
	client.On("TextSearch", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

	_, err := NewGooglePlaces(client, []string{"x"}, 0).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
