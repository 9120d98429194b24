package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/getsentry/sentry-go"

	"atlas.citydata.org/internal/config"
	"atlas.citydata.org/internal/geo"
	"atlas.citydata.org/internal/metrics"
	"atlas.citydata.org/internal/models"
	"atlas.citydata.org/internal/report"
	"atlas.citydata.org/internal/utils"
)

// LoaderService populates a Store from the configured dataset sources.
// Loading happens exactly once, before the server starts serving queries.
//
// Loading is fail-soft: a source that is missing, unreachable or corrupt
// degrades to an empty dataset. The failure is logged and reported, but it
// never aborts startup and never blocks the other sources from loading.
type LoaderService struct {
	Store     *Store
	BboxStore *geo.BoundingBoxStore
	Logger    *slog.Logger
	Client    *http.Client
}

// NewLoaderService creates a new LoaderService with the provided stores,
// logger and HTTP client.
func NewLoaderService(store *Store, bboxStore *geo.BoundingBoxStore, logger *slog.Logger, client *http.Client) *LoaderService {
	return &LoaderService{
		Store:     store,
		BboxStore: bboxStore,
		Logger:    logger,
		Client:    client,
	}
}

// LoadAll loads every configured source into the store. Flat sources
// populate the worldwide city list; grouped sources each become a named
// group-key mapping.
func (ls *LoaderService) LoadAll(ctx context.Context, sources []models.DatasetSource, maxRetries int) {
	for _, source := range sources {
		if source.Grouped {
			ls.loadGrouped(ctx, source, maxRetries)
		} else {
			ls.loadFlat(ctx, source, maxRetries)
		}
	}
}

func (ls *LoaderService) loadFlat(ctx context.Context, source models.DatasetSource, maxRetries int) {
	var cities []models.City
	if err := ls.decodeSource(ctx, source, maxRetries, &cities); err != nil {
		ls.reportLoadFailure(source, err)
		ls.Store.SetCities(nil)
		return
	}

	ls.Store.SetCities(cities)
	metrics.DatasetRecords.WithLabelValues(source.Name).Set(float64(len(cities)))
	ls.Logger.Info("loaded flat dataset", "dataset", source.Name, "records", len(cities))

	bbox, err := geo.ComputeBoundingBox(cities)
	if err != nil {
		ls.Logger.Warn("no bounding box for dataset", "dataset", source.Name, "error", err)
		return
	}
	ls.BboxStore.Set(source.Name, bbox)
}

func (ls *LoaderService) loadGrouped(ctx context.Context, source models.DatasetSource, maxRetries int) {
	var groups map[string][]models.City
	if err := ls.decodeSource(ctx, source, maxRetries, &groups); err != nil {
		ls.reportLoadFailure(source, err)
		ls.Store.SetGrouped(source.Name, nil)
		return
	}

	ls.Store.SetGrouped(source.Name, groups)

	records := 0
	for _, cities := range groups {
		records += len(cities)
	}
	metrics.DatasetRecords.WithLabelValues(source.Name).Set(float64(records))
	ls.Logger.Info("loaded grouped dataset", "dataset", source.Name, "groups", len(groups), "records", records)
}

// decodeSource reads the raw bytes of a source from disk or over HTTP and
// unmarshals them into dst.
func (ls *LoaderService) decodeSource(ctx context.Context, source models.DatasetSource, maxRetries int, dst interface{}) error {
	var (
		data []byte
		err  error
	)

	switch {
	case source.Path != "":
		data, err = os.ReadFile(source.Path)
		if err != nil {
			return fmt.Errorf("failed to read dataset file: %v", err)
		}
	case source.URL != "":
		data, err = ls.fetch(ctx, source.URL, maxRetries)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("dataset source %q has neither path nor url", source.Name)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %v", err)
	}
	return nil
}

func (ls *LoaderService) fetch(ctx context.Context, url string, maxRetries int) ([]byte, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := config.DoWithBackoff(ctx, ls.Client, req, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset source returned status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset body: %v", err)
	}
	return data, nil
}

func (ls *LoaderService) reportLoadFailure(source models.DatasetSource, err error) {
	metrics.DatasetLoadFailures.WithLabelValues(source.Name).Inc()
	ls.Logger.Error("failed to load dataset, serving it empty", "dataset", source.Name, "error", err)
	report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
		Tags: utils.MakeMap("dataset", source.Name),
		ExtraContext: map[string]interface{}{
			"path": source.Path,
			"url":  source.URL,
		},
		Level: sentry.LevelError,
	})
}
