package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"atlas.citydata.org/internal/geo"
)

const (
	// DefaultRadiusMiles is applied to within-radius queries when the
	// radiusMiles parameter is absent.
	DefaultRadiusMiles = 25.0

	// DefaultEpsilon is the half-width of the distance-band acceptance
	// window when the epsilon parameter is absent.
	DefaultEpsilon = 1.0
)

// InvalidParameterError describes a missing or malformed query parameter.
// Handlers translate it into an HTTP 400 response with the message as the
// error body. It is the only error kind the query engine surfaces.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// NearParams holds the validated inputs of a within-radius query.
type NearParams struct {
	Lat         float64
	Lon         float64
	RadiusMiles float64
}

// BandParams holds the validated inputs of a distance-band query.
type BandParams struct {
	Lat         float64
	Lon         float64
	TargetMiles float64
	Epsilon     float64
}

// ParseNearParams validates the raw query parameters of a within-radius
// query. lat and lon are required; radiusMiles is optional and defaults to
// DefaultRadiusMiles. A radiusMiles value that is present but non-numeric
// or empty is rejected rather than silently replaced by the default,
// matching the strictness applied to lat and lon.
func ParseNearParams(values url.Values) (NearParams, error) {
	lat, lon, err := parseLatLon(values)
	if err != nil {
		return NearParams{}, err
	}

	radius, err := optionalFloat(values, "radiusMiles", DefaultRadiusMiles)
	if err != nil {
		return NearParams{}, err
	}

	return NearParams{Lat: lat, Lon: lon, RadiusMiles: radius}, nil
}

// ParseBandParams validates the raw query parameters of a distance-band
// query. lat, lon and miles are required; epsilon is optional and defaults
// to DefaultEpsilon.
func ParseBandParams(values url.Values) (BandParams, error) {
	lat, lon, err := parseLatLon(values)
	if err != nil {
		return BandParams{}, err
	}

	target, err := requiredFloat(values, "miles")
	if err != nil {
		return BandParams{}, err
	}

	epsilon, err := optionalFloat(values, "epsilon", DefaultEpsilon)
	if err != nil {
		return BandParams{}, err
	}

	return BandParams{Lat: lat, Lon: lon, TargetMiles: target, Epsilon: epsilon}, nil
}

func parseLatLon(values url.Values) (float64, float64, error) {
	lat, err := requiredFloat(values, "lat")
	if err != nil {
		return 0, 0, err
	}
	lon, err := requiredFloat(values, "lon")
	if err != nil {
		return 0, 0, err
	}
	if !geo.IsValidLatLon(lat, lon) {
		return 0, 0, &InvalidParameterError{
			Param:  "lat",
			Reason: fmt.Sprintf("coordinates (%v, %v) are out of range", lat, lon),
		}
	}
	return lat, lon, nil
}

func requiredFloat(values url.Values, name string) (float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return 0, &InvalidParameterError{Param: name, Reason: "required parameter is missing"}
	}
	return parseFiniteFloat(name, raw)
}

// optionalFloat falls back only when the parameter is genuinely absent.
// A parameter that is present but empty ("?radiusMiles=") is rejected
// like any other non-numeric value.
func optionalFloat(values url.Values, name string, fallback float64) (float64, error) {
	if !values.Has(name) {
		return fallback, nil
	}
	return parseFiniteFloat(name, values.Get(name))
}

func parseFiniteFloat(name, raw string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &InvalidParameterError{Param: name, Reason: fmt.Sprintf("%q is not a number", raw)}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &InvalidParameterError{Param: name, Reason: fmt.Sprintf("%q is not finite", raw)}
	}
	return value, nil
}
