package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas.citydata.org/internal/geo"
	"atlas.citydata.org/internal/models"
)

// equatorCities is the minimal dataset used throughout: A sits at the
// origin and B one degree of longitude east, roughly 69.09 miles away.
var equatorCities = []models.City{
	{Name: "A", Latitude: 0, Longitude: 0},
	{Name: "B", Latitude: 0, Longitude: 1},
}

func TestNear(t *testing.T) {
	t.Run("orders by ascending distance", func(t *testing.T) {
		results := Near(equatorCities, 0, 0, 100)

		require.Len(t, results, 2)
		assert.Equal(t, "A", results[0].Name)
		assert.Equal(t, "B", results[1].Name)
		assert.Equal(t, 0.0, results[0].DistanceMiles)
		assert.InDelta(t, 69.09, results[1].DistanceMiles, 0.05)
	})

	t.Run("radius boundary is inclusive", func(t *testing.T) {
		exact := geo.DistanceMiles(0, 0, 0, 1)

		results := Near(equatorCities, 0, 0, exact)
		require.Len(t, results, 2)
		assert.Equal(t, "B", results[1].Name)

		results = Near(equatorCities, 0, 0, math.Nextafter(exact, 0))
		require.Len(t, results, 1)
		assert.Equal(t, "A", results[0].Name)
	})

	t.Run("excluded records are farther than the radius", func(t *testing.T) {
		results := Near(equatorCities, 0, 0, 50)

		require.Len(t, results, 1)
		for _, r := range results {
			assert.LessOrEqual(t, r.DistanceMiles, 50.0)
		}
		assert.Greater(t, geo.DistanceMiles(0, 0, 0, 1), 50.0)
	})

	t.Run("equal distances keep dataset order", func(t *testing.T) {
		cities := []models.City{
			{Name: "East", Latitude: 0, Longitude: 1},
			{Name: "West", Latitude: 0, Longitude: -1},
			{Name: "Center", Latitude: 0, Longitude: 0},
		}

		for i := 0; i < 5; i++ {
			results := Near(cities, 0, 0, 100)
			require.Len(t, results, 3)
			assert.Equal(t, "Center", results[0].Name)
			assert.Equal(t, "East", results[1].Name)
			assert.Equal(t, "West", results[2].Name)
		}
	})

	t.Run("results are non-decreasing", func(t *testing.T) {
		cities := []models.City{
			{Name: "Far", Latitude: 1, Longitude: 1},
			{Name: "Near", Latitude: 0, Longitude: 0.1},
			{Name: "Mid", Latitude: 0.5, Longitude: 0.5},
		}

		results := Near(cities, 0, 0, 1000)
		require.Len(t, results, 3)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i].DistanceMiles, results[i-1].DistanceMiles)
		}
	})

	t.Run("empty dataset", func(t *testing.T) {
		results := Near(nil, 0, 0, 100)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})
}

func TestBand(t *testing.T) {
	t.Run("window around one degree", func(t *testing.T) {
		result := Band(equatorCities, 0, 0, 69, 1)

		assert.Equal(t, 69.0, result.TargetMiles)
		assert.Equal(t, 1.0, result.Epsilon)
		require.Len(t, result.Results, 1)
		assert.Equal(t, "B", result.Results[0].Name)
		assert.InDelta(t, 69.09, result.Results[0].DistanceMiles, 0.05)
	})

	t.Run("window bounds are inclusive", func(t *testing.T) {
		exact := geo.DistanceMiles(0, 0, 0, 1)

		// exact distance sits on the upper bound
		result := Band(equatorCities, 0, 0, exact-1, 1)
		require.Len(t, result.Results, 1)
		assert.Equal(t, "B", result.Results[0].Name)

		// and on the lower bound
		result = Band(equatorCities, 0, 0, exact+1, 1)
		require.Len(t, result.Results, 1)
		assert.Equal(t, "B", result.Results[0].Name)
	})

	t.Run("lower bound clamps to zero", func(t *testing.T) {
		result := Band(equatorCities, 0, 0, 0.5, 2)

		require.Len(t, result.Results, 1)
		assert.Equal(t, "A", result.Results[0].Name)
		assert.Equal(t, 0.0, result.Results[0].DistanceMiles)
	})

	t.Run("orders by closeness to target", func(t *testing.T) {
		cities := []models.City{
			{Name: "A", Latitude: 0, Longitude: 0},
			{Name: "B", Latitude: 0, Longitude: 1},
			{Name: "C", Latitude: 0, Longitude: 0.5},
		}

		result := Band(cities, 0, 0, 35, 40)
		require.Len(t, result.Results, 3)
		// C is ~34.5 mi away, closest to the 35 mi target.
		assert.Equal(t, "C", result.Results[0].Name)

		for i := 1; i < len(result.Results); i++ {
			assert.GreaterOrEqual(t,
				math.Abs(result.Results[i].DistanceMiles-35),
				math.Abs(result.Results[i-1].DistanceMiles-35))
		}
	})

	t.Run("equal closeness keeps dataset order", func(t *testing.T) {
		cities := []models.City{
			{Name: "East", Latitude: 0, Longitude: 1},
			{Name: "West", Latitude: 0, Longitude: -1},
		}

		// Both are the same distance from the origin, so both deviate from
		// the target identically.
		result := Band(cities, 0, 0, 60, 20)
		require.Len(t, result.Results, 2)
		assert.Equal(t, "East", result.Results[0].Name)
		assert.Equal(t, "West", result.Results[1].Name)
	})

	t.Run("all returned distances inside the window", func(t *testing.T) {
		result := Band(equatorCities, 0, 0, 50, 25)
		for _, r := range result.Results {
			assert.GreaterOrEqual(t, r.DistanceMiles, 25.0)
			assert.LessOrEqual(t, r.DistanceMiles, 75.0)
		}
	})

	t.Run("empty dataset", func(t *testing.T) {
		result := Band(nil, 0, 0, 50, 1)
		assert.Equal(t, 50.0, result.TargetMiles)
		assert.Equal(t, 1.0, result.Epsilon)
		assert.NotNil(t, result.Results)
		assert.Empty(t, result.Results)
	})
}
