package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/adapter"
	"github.com/amishk599/jobscout/internal/cache"
	"github.com/amishk599/jobscout/internal/config"
	"github.com/amishk599/jobscout/internal/dates"
	"github.com/amishk599/jobscout/internal/metrics"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/normalize"
	"github.com/amishk599/jobscout/internal/ratelimit"
	"github.com/amishk599/jobscout/internal/retry"
	"github.com/amishk599/jobscout/internal/roles"
	"github.com/amishk599/jobscout/internal/search"
	"github.com/amishk599/jobscout/internal/sponsorship"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Fresh job postings, bucketed by age",
	Long:  "jobscout aggregates job postings for a role across job boards, scores them against your skills and groups them by how recently they were posted.",
	// Default to `serve` so that `jobscout` with no args runs the API.
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSCOUT_CONFIG env var or ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSCOUT_CONFIG env var > "./config.yaml" > built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	return config.Load(config.ResolvePath(path))
}

func setupLogger(w io.Writer, cfg *config.Config, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg != nil {
		logLevel = cfg.SlogLevel()
	}
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// app bundles the wired search service with what it needs to shut down.
type app struct {
	service *search.Service
	catalog *roles.Catalog
	metrics *metrics.Recorder
	close   func() error
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	c, closeCache, err := buildCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rec := metrics.NewRecorder()
	normalizer := normalize.NewNormalizer(
		dates.NewResolver(nil),
		sponsorship.NewClassifier(cfg.Sponsorship.Negative, cfg.Sponsorship.Positive),
	)

	svc := search.NewService(
		search.Settings{
			DefaultLocation: cfg.DefaultLocation,
			MaxResults:      cfg.MaxResults,
			HoursWindow:     cfg.HoursWindow,
			RequestTimeout:  cfg.RequestTimeout,
			Sites:           cfg.JobSites,
		},
		catalog,
		buildSource(cfg, logger),
		c,
		normalizer,
		rec,
		logger,
	)

	logger.Info("search service ready",
		"roles", len(catalog.All()),
		"source", cfg.Source.Type,
		"cache", cfg.Cache.Backend,
		"cache_ttl", cfg.Cache.TTL.String(),
		"request_timeout", cfg.RequestTimeout.String(),
	)

	return &app{service: svc, catalog: catalog, metrics: rec, close: closeCache}, nil
}

func loadCatalog(cfg *config.Config) (*roles.Catalog, error) {
	if cfg.RolesFile == "" {
		return roles.Default(), nil
	}
	return roles.LoadFile(cfg.RolesFile)
}

func buildCache(ctx context.Context, cfg *config.Config) (cache.Cache, func() error, error) {
	switch cfg.Cache.Backend {
	case "redis":
		rdb, err := cache.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedis(rdb, cfg.Cache.TTL, cfg.Cache.KeyPrefix), rdb.Close, nil
	default:
		mem := cache.NewMemory(
			cache.WithTTL(cfg.Cache.TTL),
			cache.WithMaxEntries(cfg.Cache.MaxEntries),
		)
		return mem, func() error { return nil }, nil
	}
}

// buildSource creates the configured job source and wraps it with rate
// limiting and retries. Retries sit outside the limiter so every attempt
// waits its turn.
func buildSource(cfg *config.Config, logger *slog.Logger) model.JobSource {
	var (
		src  model.JobSource
		name string
	)
	switch cfg.Source.Type {
	case "fixture":
		fs := adapter.NewFixtureSource(cfg.Source.FixturesPath)
		src, name = fs, fs.Name()
	default:
		httpClient := &http.Client{Timeout: cfg.RequestTimeout}
		js := adapter.NewJobSpySource(cfg.Source.BaseURL, cfg.Source.APIKey, httpClient)
		src, name = js, js.Name()
	}

	if cfg.Source.MinDelay > 0 {
		src = ratelimit.NewSource(src, ratelimit.NewLimiter(cfg.Source.MinDelay), name)
		logger.Info("rate limiter configured", "source", name, "min_delay", cfg.Source.MinDelay.String())
	}
	if cfg.Source.Retries > 0 {
		src = retry.NewSource(src, cfg.Source.Retries, cfg.Source.RetryDelay, logger)
	}
	return src
}
