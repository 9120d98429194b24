package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"

	"atlas.citydata.org/internal/middleware"
)

// Routes sets up the HTTP routing configuration for the application and
// returns the final http.Handler.
//
// Registered routes:
//   - GET /v1/healthcheck: health and readiness snapshot.
//   - GET /v1/cities: the flat worldwide city list.
//   - GET /v1/cities/near: cities within a radius of an origin.
//   - GET /v1/cities/exact: cities inside a distance band around an origin.
//   - GET /v1/datasets: names of the loaded grouped datasets.
//   - GET /v1/datasets/:name: full group-key mapping of one dataset.
//   - GET /v1/datasets/:name/flat: flattened records with group keys attached.
//   - GET /v1/datasets/:name/groups: sorted group keys of one dataset.
//   - GET /v1/datasets/:name/groups/:key: records of a single group.
//   - GET /metrics: Prometheus exposition via a cached handler.
//
// The router is wrapped with the Sentry middleware for error capture, the
// security headers middleware, and the CORS allow-list middleware built
// from the configured origins.
func (app *Application) Routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)
	router.HandlerFunc(http.MethodGet, "/v1/cities", app.citiesHandler)
	router.HandlerFunc(http.MethodGet, "/v1/cities/near", app.nearCitiesHandler)
	router.HandlerFunc(http.MethodGet, "/v1/cities/exact", app.exactDistanceHandler)
	router.HandlerFunc(http.MethodGet, "/v1/datasets", app.listDatasetsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/datasets/:name", app.groupedDatasetHandler)
	router.HandlerFunc(http.MethodGet, "/v1/datasets/:name/flat", app.flattenedDatasetHandler)
	router.HandlerFunc(http.MethodGet, "/v1/datasets/:name/groups", app.groupKeysHandler)
	router.HandlerFunc(http.MethodGet, "/v1/datasets/:name/groups/:key", app.groupHandler)
	router.Handler(http.MethodGet, "/metrics", middleware.NewCachedPromHandler(ctx, prometheus.DefaultGatherer, 10*time.Second))

	handler := middleware.SentryMiddleware(router)
	handler = middleware.SecurityHeaders(handler)
	return middleware.CORS(app.Config.AllowedOrigins, handler)
}
