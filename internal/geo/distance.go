// Package geo provides great-circle distance and bounding-box helpers for
// proximity matching and radius search.
package geo

import (
	"math"

	"github.com/twpayne/go-geom"
)

// EarthRadiusKM is the mean Earth radius used by DistanceKM.
const EarthRadiusKM = 6371.0

// kmPerDegreeLat approximates the length of one degree of latitude.
const kmPerDegreeLat = 111.0

// DistanceKM returns the haversine distance between two points in kilometers.
func DistanceKM(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// Rounding can push a slightly above 1 for antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKM * c
}

// DistanceMeters is DistanceKM scaled to meters.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	return DistanceKM(lat1, lng1, lat2, lng2) * 1000
}

// BoundingBox returns an XY (lng, lat) box that contains every point within
// radiusKM of the center. It over-covers and is meant as a cheap pre-filter
// before an exact DistanceKM check.
func BoundingBox(lat, lng, radiusKM float64) *geom.Bounds {
	latSpan := radiusKM / kmPerDegreeLat
	cosLat := math.Cos(lat * math.Pi / 180)
	lngSpan := 180.0
	if cosLat > 1e-9 {
		lngSpan = math.Min(180, radiusKM/(kmPerDegreeLat*cosLat))
	}
	return geom.NewBounds(geom.XY).Set(lng-lngSpan, lat-latSpan, lng+lngSpan, lat+latSpan)
}

// InBounds reports whether the point lies inside or on the edge of b.
func InBounds(b *geom.Bounds, lat, lng float64) bool {
	return b.OverlapsPoint(geom.XY, geom.Coord{lng, lat})
}
