package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"atlas.citydata.org/internal/metrics"
	"atlas.citydata.org/internal/query"
)

// HealthStatus defines the structure of the JSON response returned by the
// application's health check endpoint (/v1/healthcheck).
//
// Fields:
//   - Status: a high-level indicator of service availability (e.g. "available").
//   - Environment: the environment the app runs in (development, staging, production).
//   - Version: the application version string, useful for deployment tracking.
//   - Cities: the number of records in the flat worldwide city list.
//   - Datasets: the number of grouped datasets currently loaded.
//   - Ready: whether the application holds any data at all. Every source
//     degrading to empty is survivable but worth failing readiness over.
type HealthStatus struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Cities      int    `json:"cities"`
	Datasets    int    `json:"datasets"`
	Ready       bool   `json:"ready"`
}

// healthcheckHandler responds with a JSON representation of the
// application's health status. It reports HTTP 500 when every dataset
// came up empty, and HTTP 200 otherwise.
func (app *Application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	numCities := len(app.Store.Cities())
	numDatasets := len(app.Store.GroupedNames())

	ready := numCities > 0 || numDatasets > 0

	status := HealthStatus{
		Status:      "available",
		Environment: app.Config.Env,
		Version:     app.Version,
		Cities:      numCities,
		Datasets:    numDatasets,
		Ready:       ready,
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusInternalServerError
	}
	app.writeJSON(w, code, status)
}

// citiesHandler returns the flat worldwide city list in load order.
func (app *Application) citiesHandler(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, http.StatusOK, app.Store.Cities())
}

// nearCitiesHandler serves the within-radius proximity query. Results are
// distance-annotated city records ordered by ascending distance; invalid
// parameters yield a 400 with a descriptive error body.
func (app *Application) nearCitiesHandler(w http.ResponseWriter, r *http.Request) {
	params, err := query.ParseNearParams(r.URL.Query())
	if err != nil {
		app.invalidParameterResponse(w, "near", err)
		return
	}

	start := time.Now()
	results := query.Near(app.Store.Cities(), params.Lat, params.Lon, params.RadiusMiles)

	metrics.ProximityQueries.WithLabelValues("near").Inc()
	metrics.ProximityQueryDuration.WithLabelValues("near").Observe(time.Since(start).Seconds())
	metrics.ProximityQueryResults.WithLabelValues("near").Observe(float64(len(results)))
	if app.outsideCoverage(params.Lat, params.Lon) {
		metrics.QueriesOutsideCoverage.WithLabelValues("near").Inc()
	}

	app.writeJSON(w, http.StatusOK, results)
}

// exactDistanceHandler serves the distance-band proximity query. The
// response wraps the ordered matches together with the target distance
// and epsilon that were actually applied.
func (app *Application) exactDistanceHandler(w http.ResponseWriter, r *http.Request) {
	params, err := query.ParseBandParams(r.URL.Query())
	if err != nil {
		app.invalidParameterResponse(w, "exact", err)
		return
	}

	start := time.Now()
	result := query.Band(app.Store.Cities(), params.Lat, params.Lon, params.TargetMiles, params.Epsilon)

	metrics.ProximityQueries.WithLabelValues("exact").Inc()
	metrics.ProximityQueryDuration.WithLabelValues("exact").Observe(time.Since(start).Seconds())
	metrics.ProximityQueryResults.WithLabelValues("exact").Observe(float64(len(result.Results)))
	if app.outsideCoverage(params.Lat, params.Lon) {
		metrics.QueriesOutsideCoverage.WithLabelValues("exact").Inc()
	}

	app.writeJSON(w, http.StatusOK, result)
}

// outsideCoverage reports whether the origin falls outside the bounding
// box of every flat dataset that produced one at load time. With no
// known bounding box at all there is nothing to compare against and the
// origin is not counted as outside.
func (app *Application) outsideCoverage(lat, lon float64) bool {
	known := false
	for _, source := range app.Config.FlatSources() {
		bbox, ok := app.BboxStore.Get(source.Name)
		if !ok {
			continue
		}
		known = true
		if bbox.Contains(lat, lon) {
			return false
		}
	}
	return known
}

// writeJSON writes data as a JSON response with the given status code.
func (app *Application) writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.Logger.Error("failed to encode response", "error", err)
	}
}

// errorResponse writes a JSON error body of the form {"error": message}.
func (app *Application) errorResponse(w http.ResponseWriter, code int, message string) {
	app.writeJSON(w, code, map[string]string{"error": message})
}

func (app *Application) invalidParameterResponse(w http.ResponseWriter, endpoint string, err error) {
	metrics.InvalidParameters.WithLabelValues(endpoint).Inc()

	var invalid *query.InvalidParameterError
	if errors.As(err, &invalid) {
		app.errorResponse(w, http.StatusBadRequest, invalid.Error())
		return
	}
	app.errorResponse(w, http.StatusBadRequest, err.Error())
}
