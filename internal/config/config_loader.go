package config

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/getsentry/sentry-go"

	"atlas.citydata.org/internal/models"
	"atlas.citydata.org/internal/report"
	"atlas.citydata.org/internal/utils"
)

// ValidateConfigFlags ensures that exactly one manifest source is specified:
// either a manifest file "--config-file" or a remote manifest URL "--config-url".
//
// Returns an error if none or more than one input method is specified.
func ValidateConfigFlags(configFile, configURL *string) error {
	if *configFile == "" && *configURL == "" {
		return fmt.Errorf("no configuration provided, either --config-file or --config-url must be specified")
	}
	if (*configFile != "" && *configURL != "") || (*configFile != "" && len(flag.Args()) > 0) || (*configURL != "" && len(flag.Args()) > 0) {
		return fmt.Errorf("only one of --config-file or --config-url can be specified")
	}
	return nil
}

// LoadSourcesFromFile reads the dataset manifest from disk and unmarshals it
// into a list of dataset sources.
//
// On error, it reports the issue to Sentry and returns a descriptive error.
func LoadSourcesFromFile(filePath string) ([]models.DatasetSource, error) {
	sources, err := loadSourcesFromFile(filePath)
	if err != nil {
		err := fmt.Errorf("failed to load dataset manifest from file %s: %w", filePath, err)
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("file_path", filePath),
			Level: sentry.LevelError,
		})
		return nil, err
	}
	return sources, nil
}

// LoadSourcesFromURL fetches the dataset manifest from a remote HTTP(S)
// endpoint, using the provided client and optional basic authentication.
func LoadSourcesFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string, maxRetries int) ([]models.DatasetSource, error) {
	sources, err := loadSourcesFromURL(ctx, client, url, authUser, authPass, maxRetries)
	if err != nil {
		err := fmt.Errorf("failed to load dataset manifest from URL %s: %w", url, err)
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("config_url", url),
			Level: sentry.LevelError,
		})
		return nil, err
	}
	return sources, nil
}

func loadSourcesFromFile(filePath string) ([]models.DatasetSource, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %v", err)
	}

	var sources []models.DatasetSource
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %v", err)
	}

	return sources, nil
}

func loadSourcesFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string, maxRetries int) ([]models.DatasetSource, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	if authUser != "" && authPass != "" {
		req.SetBasicAuth(authUser, authPass)
	}

	resp, err := DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote manifest: %v", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote manifest returned status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote manifest: %v", err)
	}

	var sources []models.DatasetSource
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %v", err)
	}

	return sources, nil
}
