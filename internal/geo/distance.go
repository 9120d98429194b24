package geo

import (
	"github.com/golang/geo/s2"
)

// earthRadiusInKm represents the mean radius of the Earth in kilometers.
//
// This value (6,371 km) is the Earth's volumetric mean radius, which is
// commonly used for general geospatial calculations and spherical
// approximations.
//
// Reference: NASA Planetary Fact Sheet – Earth
// https://nssdc.gsfc.nasa.gov/planetary/factsheet/earthfact.html
const earthRadiusInKm = 6371.0

// milesPerKm converts kilometers to statute miles.
const milesPerKm = 0.621371

// DistanceKm returns the great-circle distance in kilometers between two
// coordinates given in degrees. The s2 angle computation is numerically
// stable for identical points (returns exactly 0) and for antipodal pairs.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusInKm
}

// DistanceMiles returns the great-circle distance in miles between two
// coordinates given in degrees.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	return KmToMiles(DistanceKm(lat1, lon1, lat2, lon2))
}

// KmToMiles converts a distance in kilometers to statute miles.
func KmToMiles(km float64) float64 {
	return km * milesPerKm
}

// IsValidLatLon returns true if the given latitude and longitude values
// fall within the valid geographic coordinate bounds.
//
// Latitude must be between -90 and 90 degrees, and longitude must be
// between -180 and 180 degrees. (0,0) is a valid coordinate: city records
// and query origins on the equator/prime meridian are legitimate inputs.
func IsValidLatLon(lat, lon float64) bool {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	return true
}
