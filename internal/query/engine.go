package query

import (
	"math"
	"sort"

	"atlas.citydata.org/internal/geo"
	"atlas.citydata.org/internal/models"
)

// BandResult wraps the matches of a distance-band query together with the
// target distance and tolerance that were actually applied, so callers can
// confirm the acceptance window.
type BandResult struct {
	TargetMiles float64               `json:"targetMiles"`
	Epsilon     float64               `json:"epsilon"`
	Results     []models.CityDistance `json:"results"`
}

// annotate computes the distance in miles from the origin to every city in
// the dataset. The returned slice preserves the original dataset order,
// which later stable sorts rely on for deterministic tie-breaking.
func annotate(cities []models.City, lat, lon float64) []models.CityDistance {
	annotated := make([]models.CityDistance, 0, len(cities))
	for _, city := range cities {
		annotated = append(annotated, models.CityDistance{
			City:          city,
			DistanceMiles: geo.DistanceMiles(lat, lon, city.Latitude, city.Longitude),
		})
	}
	return annotated
}

// Near returns every city within radiusMiles of the origin, ordered by
// ascending distance. The radius boundary is inclusive: a city exactly at
// radiusMiles is part of the result. Cities at equal distance keep their
// original dataset order. An empty dataset yields an empty result.
//
// The scan is a deliberate O(n) pass over the dataset; at the target scale
// (tens of thousands of records) a spatial index is not worth its weight.
func Near(cities []models.City, lat, lon, radiusMiles float64) []models.CityDistance {
	results := make([]models.CityDistance, 0)
	for _, candidate := range annotate(cities, lat, lon) {
		if candidate.DistanceMiles <= radiusMiles {
			results = append(results, candidate)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceMiles < results[j].DistanceMiles
	})
	return results
}

// Band returns every city whose distance from the origin falls inside the
// inclusive window [max(0, targetMiles-epsilon), targetMiles+epsilon],
// ordered by ascending |distance - targetMiles| (closest to the target
// first), with original dataset order breaking ties. The lower bound is
// clamped to zero since negative distances are impossible.
func Band(cities []models.City, lat, lon, targetMiles, epsilon float64) BandResult {
	minMiles := math.Max(0, targetMiles-epsilon)
	maxMiles := targetMiles + epsilon

	results := make([]models.CityDistance, 0)
	for _, candidate := range annotate(cities, lat, lon) {
		if candidate.DistanceMiles >= minMiles && candidate.DistanceMiles <= maxMiles {
			results = append(results, candidate)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return math.Abs(results[i].DistanceMiles-targetMiles) < math.Abs(results[j].DistanceMiles-targetMiles)
	})

	return BandResult{
		TargetMiles: targetMiles,
		Epsilon:     epsilon,
		Results:     results,
	}
}
