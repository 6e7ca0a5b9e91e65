// Package geo holds great-circle helpers shared by the country services.
package geo

import (
	"math"

	"github.com/golang/geo/s1"
)

// kmPerDegree is nautical miles per degree of latitude, times statute miles
// per nautical mile, times kilometres per statute mile.
const kmPerDegree = 60 * 1.1515 * 1.609344

// DistanceKm returns the haversine distance between two points in kilometres
// on a spherical earth. Identical points yield exactly 0. NaN inputs propagate.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dLat := phi2 - phi1
	dLon := toRadians(lon2) - toRadians(lon1)

	a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLon/2), 2)
	c := s1.Angle(2 * math.Asin(math.Sqrt(a)))

	return c.Degrees() * kmPerDegree
}

func toRadians(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}
