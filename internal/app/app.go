package app

import (
	"log/slog"
	"net/http"

	"atlas.citydata.org/internal/config"
	"atlas.citydata.org/internal/dataset"
	"atlas.citydata.org/internal/geo"
)

// Application represents the main application structure.
// It holds references to the configuration, the dataset store, the
// bounding box store, the logger, and the application version.
// This structure is used to wire all dependencies together and provide a
// clean API for the HTTP handlers.
type Application struct {
	Config    *config.Config
	Store     *dataset.Store
	BboxStore *geo.BoundingBoxStore
	Loader    *dataset.LoaderService
	Logger    *slog.Logger
	Version   string
}

// New creates and wires all dependencies for the Application.
// Accepts config, logger, client, and version as arguments. The returned
// application still has empty stores; the caller runs Loader.LoadAll
// before the server starts listening.
func New(cfg *config.Config, logger *slog.Logger, client *http.Client, version string) *Application {

	store := dataset.NewStore()
	bboxStore := geo.NewBoundingBoxStore()
	loader := dataset.NewLoaderService(store, bboxStore, logger, client)

	return &Application{
		Config:    cfg,
		Store:     store,
		BboxStore: bboxStore,
		Loader:    loader,
		Logger:    logger,
		Version:   version,
	}
}
