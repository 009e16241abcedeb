package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobscout/internal/api"
	"github.com/amishk599/jobscout/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Serve /health, /roles, POST /jobs/search and /metrics; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		setupLogger(os.Stdout, nil, debug).Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := setupLogger(os.Stdout, cfg, debug)

	logger.Info("config loaded",
		"addr", cfg.Addr,
		"job_sites", cfg.JobSites,
		"default_location", cfg.DefaultLocation,
		"max_results", cfg.MaxResults,
		"hours_window", cfg.HoursWindow,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build search service", "error", err)
		os.Exit(1)
	}
	defer a.close()

	server, err := api.NewServer(a.service, a.metrics, logger, cfg.AllowedOrigins)
	if err != nil {
		logger.Error("failed to build http server", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx, cfg.Addr, shutdownTimeout)
	})

	if cfg.Warmer.Enabled {
		warmRoles := cfg.Warmer.Roles
		if len(warmRoles) == 0 {
			for _, r := range a.catalog.All() {
				warmRoles = append(warmRoles, r.Key)
			}
		}
		for _, key := range warmRoles {
			if _, ok := a.catalog.Lookup(key); !ok {
				logger.Error("warmer role not in catalog", "role", key)
				os.Exit(1)
			}
		}

		warmer, err := scheduler.NewWarmer(cfg.Warmer.Schedule, warmRoles, a.service, a.metrics, logger)
		if err != nil {
			logger.Error("failed to build cache warmer", "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			return warmer.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
