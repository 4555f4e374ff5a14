// Package geo computes distances between campaign search centers and
// discovered leads. Coordinates are WGS84 (SRID 4326) throughout.
package geo

import (
	"math"

	"github.com/twpayne/go-geom"
)

const (
	earthRadiusKM = 6371.0
	milesPerKM    = 0.621371
	radsPerDegree = math.Pi / 180.0
)

// Point returns a WGS84 point for the given coordinates.
func Point(lat, lon float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(4326)
}

// Lat returns the latitude of a WGS84 point.
func Lat(p *geom.Point) float64 { return p.Y() }

// Lon returns the longitude of a WGS84 point.
func Lon(p *geom.Point) float64 { return p.X() }

// DistanceKM returns the great-circle distance between two points in
// kilometers using the haversine formula.
func DistanceKM(a, b *geom.Point) float64 {
	lat1 := Lat(a) * radsPerDegree
	lat2 := Lat(b) * radsPerDegree
	dLat := (Lat(b) - Lat(a)) * radsPerDegree
	dLon := (Lon(b) - Lon(a)) * radsPerDegree

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

// DistanceMiles returns the great-circle distance between two points in miles.
func DistanceMiles(a, b *geom.Point) float64 {
	return DistanceKM(a, b) * milesPerKM
}

// WithinRadius reports whether b lies within radiusMiles of a.
func WithinRadius(a, b *geom.Point, radiusMiles float64) bool {
	return DistanceMiles(a, b) <= radiusMiles
}
