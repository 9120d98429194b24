package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"atlas.citydata.org/internal/app"
	"atlas.citydata.org/internal/config"
	"atlas.citydata.org/internal/models"
	"atlas.citydata.org/internal/report"
)

const version = "1.0.0"

// maxFetchRetries bounds retry attempts for remote manifest and dataset fetches.
const maxFetchRetries = 3

func main() {
	var (
		port int
		env  string
	)

	flag.IntVar(&port, "port", 4000, "API server port")
	flag.StringVar(&env, "env", "development", "Environment (development|staging|production)")

	var (
		configFile  = flag.String("config-file", "", "Path to a local JSON dataset manifest")
		configURL   = flag.String("config-url", "", "URL to a remote JSON dataset manifest")
		corsOrigins = flag.String("cors-origins", "", "Comma-separated list of allowed CORS origins (\"*\" allows any)")
	)

	flag.Parse()

	configAuthUser := os.Getenv("CONFIG_AUTH_USER")
	configAuthPass := os.Getenv("CONFIG_AUTH_PASS")

	if err := config.ValidateConfigFlags(configFile, configURL); err != nil {
		fmt.Println("Error:", err)
		flag.Usage()
		os.Exit(1)
	}

	report.SetupSentry()
	defer report.FlushSentry()
	report.ConfigureScope(env, version)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	client := app.NewPooledClient()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		sources []models.DatasetSource
		err     error
	)

	if *configFile != "" {
		sources, err = config.LoadSourcesFromFile(*configFile)
	} else {
		sources, err = config.LoadSourcesFromURL(ctx, client, *configURL, configAuthUser, configAuthPass, maxFetchRetries)
	}

	if err != nil {
		fmt.Printf("Error loading dataset manifest: %v\n", err)
		os.Exit(1)
	}

	if len(sources) == 0 {
		fmt.Println("Error: no dataset sources found in manifest.")
		os.Exit(1)
	}

	cfg := config.NewConfig(port, env, sources)
	if *corsOrigins != "" {
		cfg.AllowedOrigins = strings.Split(*corsOrigins, ",")
	}

	application := app.New(cfg, logger, client, version)

	logger.Info("dataset manifest loaded",
		"flat", len(cfg.FlatSources()),
		"grouped", len(cfg.GroupedSources()))

	// Every dataset loads exactly once, before the first request. Sources
	// that fail degrade to empty collections inside LoadAll.
	application.Loader.LoadAll(ctx, sources, maxFetchRetries)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      application.Routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
	err = srv.ListenAndServe()
	report.ReportError(err, sentry.LevelFatal)
	report.FlushSentry()
	logger.Error(err.Error())
	os.Exit(1)
}
