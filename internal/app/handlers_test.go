package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"atlas.citydata.org/internal/dataset"
	"atlas.citydata.org/internal/geo"
	"atlas.citydata.org/internal/metrics"
)

func TestHealthcheckHandler(t *testing.T) {
	app := newTestApplication(t)

	rr := httptest.NewRecorder()
	request, err := http.NewRequest(http.MethodGet, "/v1/healthcheck", nil)
	if err != nil {
		t.Fatal(err)
	}

	app.healthcheckHandler(rr, request)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v",
			status, http.StatusOK)
	}

	var resp HealthStatus
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "available" {
		t.Errorf("expected status 'available', got %q", resp.Status)
	}
	if resp.Environment != "testing" {
		t.Errorf("expected environment 'testing', got %q", resp.Environment)
	}
	if resp.Version != "test-version" {
		t.Errorf("expected version 'test-version', got %q", resp.Version)
	}
	if resp.Cities != 2 {
		t.Errorf("expected 2 cities, got %d", resp.Cities)
	}
	if resp.Datasets != 1 {
		t.Errorf("expected 1 grouped dataset, got %d", resp.Datasets)
	}
	if !resp.Ready {
		t.Errorf("expected ready true, got false")
	}
}

func TestHealthcheckHandlerNotReady(t *testing.T) {
	app := newTestApplication(t)
	app.Store = dataset.NewStore()

	rr := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/healthcheck", nil)

	app.healthcheckHandler(rr, request)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when every dataset is empty, got %d", rr.Code)
	}
}

func TestCitiesHandler(t *testing.T) {
	app := newTestApplication(t)

	rr := httptest.NewRecorder()
	app.citiesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/cities", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var cities []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&cities); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(cities) != 2 || cities[0].Name != "A" {
		t.Errorf("unexpected city list: %v", cities)
	}
}

func TestNearCitiesHandler(t *testing.T) {
	app := newTestApplication(t)

	t.Run("returns ordered distance-annotated records", func(t *testing.T) {
		rr := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/v1/cities/near?lat=0&lon=0&radiusMiles=100", nil)

		app.nearCitiesHandler(rr, request)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var results []struct {
			Name          string  `json:"name"`
			DistanceMiles float64 `json:"distanceMiles"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&results); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Name != "A" || results[0].DistanceMiles != 0 {
			t.Errorf("expected A at distance 0 first, got %+v", results[0])
		}
		if results[1].Name != "B" {
			t.Errorf("expected B second, got %+v", results[1])
		}
		if results[1].DistanceMiles < 69 || results[1].DistanceMiles > 70 {
			t.Errorf("expected B roughly 69 miles out, got %f", results[1].DistanceMiles)
		}
	})

	t.Run("default radius keeps only the origin city", func(t *testing.T) {
		rr := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/v1/cities/near?lat=0&lon=0", nil)

		app.nearCitiesHandler(rr, request)

		var results []json.RawMessage
		if err := json.NewDecoder(rr.Body).Decode(&results); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("expected 1 result inside the default 25 mile radius, got %d", len(results))
		}
	})

	t.Run("no matches yields an empty array", func(t *testing.T) {
		rr := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/v1/cities/near?lat=50&lon=50&radiusMiles=10", nil)

		app.nearCitiesHandler(rr, request)

		if body := rr.Body.String(); body != "[]\n" {
			t.Errorf("expected an empty JSON array, got %q", body)
		}
	})

	t.Run("missing lat yields 400", func(t *testing.T) {
		rr := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/v1/cities/near?lon=0", nil)

		app.nearCitiesHandler(rr, request)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		var resp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Error == "" {
			t.Error("expected a descriptive error message")
		}
	})

	t.Run("non-numeric lon yields 400", func(t *testing.T) {
		rr := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/v1/cities/near?lat=0&lon=abc", nil)

		app.nearCitiesHandler(rr, request)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}

func TestExactDistanceHandler(t *testing.T) {
	app := newTestApplication(t)

	t.Run("returns the band matches with echoed window", func(t *testing.T) {
		rr := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/v1/cities/exact?lat=0&lon=0&miles=69&epsilon=1", nil)

		app.exactDistanceHandler(rr, request)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp struct {
			TargetMiles float64 `json:"targetMiles"`
			Epsilon     float64 `json:"epsilon"`
			Results     []struct {
				Name          string  `json:"name"`
				DistanceMiles float64 `json:"distanceMiles"`
			} `json:"results"`
		}
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if resp.TargetMiles != 69 || resp.Epsilon != 1 {
			t.Errorf("expected the applied window to be echoed, got %+v", resp)
		}
		if len(resp.Results) != 1 || resp.Results[0].Name != "B" {
			t.Errorf("expected only B inside [68, 70], got %+v", resp.Results)
		}
	})

	t.Run("missing miles yields 400", func(t *testing.T) {
		rr := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/v1/cities/exact?lat=0&lon=0", nil)

		app.exactDistanceHandler(rr, request)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}

func counterReading(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func histogramSamples(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()

	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatal("observer does not expose its metric")
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("failed to read histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestOutsideCoverage(t *testing.T) {
	app := newTestApplication(t)

	if app.outsideCoverage(50, 50) {
		t.Error("with no bounding boxes known, no origin should count as outside")
	}

	app.BboxStore.Set("cities", geo.BoundingBox{MinLat: -1, MaxLat: 1, MinLon: -1, MaxLon: 2})

	if app.outsideCoverage(0, 1) {
		t.Error("expected an origin inside the bounding box to be covered")
	}
	if !app.outsideCoverage(50, 50) {
		t.Error("expected an origin far outside the bounding box to be flagged")
	}
}

func TestNearCitiesHandlerCoverageCounter(t *testing.T) {
	app := newTestApplication(t)
	app.BboxStore.Set("cities", geo.BoundingBox{MinLat: -1, MaxLat: 1, MinLon: -1, MaxLon: 2})

	counter := metrics.QueriesOutsideCoverage.WithLabelValues("near")

	before := counterReading(t, counter)
	rr := httptest.NewRecorder()
	app.nearCitiesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/cities/near?lat=50&lon=50", nil))
	if got := counterReading(t, counter); got != before+1 {
		t.Errorf("expected the out-of-coverage counter to increment, got %v after %v", got, before)
	}

	before = counterReading(t, counter)
	rr = httptest.NewRecorder()
	app.nearCitiesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/cities/near?lat=0&lon=0", nil))
	if got := counterReading(t, counter); got != before {
		t.Errorf("expected no increment for a covered origin, got %v after %v", got, before)
	}
}

func TestProximityQueryDurationObserved(t *testing.T) {
	app := newTestApplication(t)

	nearSamples := histogramSamples(t, metrics.ProximityQueryDuration.WithLabelValues("near"))
	rr := httptest.NewRecorder()
	app.nearCitiesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/cities/near?lat=0&lon=0", nil))
	if got := histogramSamples(t, metrics.ProximityQueryDuration.WithLabelValues("near")); got != nearSamples+1 {
		t.Errorf("expected one duration sample per near query, got %d after %d", got, nearSamples)
	}

	exactSamples := histogramSamples(t, metrics.ProximityQueryDuration.WithLabelValues("exact"))
	rr = httptest.NewRecorder()
	app.exactDistanceHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/cities/exact?lat=0&lon=0&miles=69", nil))
	if got := histogramSamples(t, metrics.ProximityQueryDuration.WithLabelValues("exact")); got != exactSamples+1 {
		t.Errorf("expected one duration sample per exact query, got %d after %d", got, exactSamples)
	}
}

func TestRoutes(t *testing.T) {
	app := newTestApplication(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := httptest.NewServer(app.Routes(ctx))
	defer server.Close()

	paths := []struct {
		path string
		code int
	}{
		{"/v1/healthcheck", http.StatusOK},
		{"/v1/cities", http.StatusOK},
		{"/v1/cities/near?lat=0&lon=0", http.StatusOK},
		{"/v1/cities/exact?lat=0&lon=0&miles=69", http.StatusOK},
		{"/v1/datasets", http.StatusOK},
		{"/v1/datasets/rock", http.StatusOK},
		{"/v1/datasets/rock/flat", http.StatusOK},
		{"/v1/datasets/rock/groups", http.StatusOK},
		{"/v1/datasets/rock/groups/AR", http.StatusOK},
		{"/v1/datasets/missing", http.StatusNotFound},
		{"/metrics", http.StatusOK},
	}

	for _, tt := range paths {
		resp, err := http.Get(server.URL + tt.path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.code {
			t.Errorf("GET %s: expected %d, got %d", tt.path, tt.code, resp.StatusCode)
		}
	}
}
