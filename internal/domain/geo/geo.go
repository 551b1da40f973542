// Package geo provides great-circle distance computation between
// coordinate pairs expressed in decimal degrees.
package geo

import (
	"fmt"
	"math"
)

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both coordinates are finite numbers.
func (p Point) Valid() bool {
	return isFinite(p.Lat) && isFinite(p.Lon)
}

// DistanceKm returns the Haversine great-circle distance in kilometers
// between two points. Non-finite coordinates are a programming error and
// cause a panic; callers validate profile inputs before reaching here.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	for _, v := range [...]float64{lat1, lon1, lat2, lon2} {
		if !isFinite(v) {
			panic(fmt.Sprintf("geo: non-finite coordinate %v", v))
		}
	}

	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Distance returns the great-circle distance in kilometers between two points.
func Distance(a, b Point) float64 {
	return DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
