package app

import (
	"io"
	"log/slog"
	"testing"

	"atlas.citydata.org/internal/config"
	"atlas.citydata.org/internal/dataset"
	"atlas.citydata.org/internal/geo"
	"atlas.citydata.org/internal/models"
)

// newTestApplication returns an Application whose store is seeded with a
// small flat city list and one grouped dataset, without going through the
// loader.
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	citiesSource := models.NewDatasetSource("cities", "cities.json", "", false)
	rockSource := models.NewDatasetSource("rock", "rock.json", "", true)

	cfg := config.NewConfig(
		4000,
		"testing",
		[]models.DatasetSource{*citiesSource, *rockSource},
	)

	store := dataset.NewStore()
	store.SetCities([]models.City{
		{Name: "A", Latitude: 0, Longitude: 0, Country: "XA"},
		{Name: "B", Latitude: 0, Longitude: 1, Country: "XB"},
	})
	store.SetGrouped("rock", map[string][]models.City{
		"AR": {{Name: "Little Rock", Latitude: 34.7465, Longitude: -92.2896}},
		"CO": {{Name: "Castle Rock", Latitude: 39.3722, Longitude: -104.8561}},
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &Application{
		Config:    cfg,
		Store:     store,
		BboxStore: geo.NewBoundingBoxStore(),
		Logger:    logger,
		Version:   "test-version",
	}
}
