// Package scheduler keeps the search cache warm by prefetching configured
// roles on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/amishk599/jobscout/internal/metrics"
)

// Prefetcher refreshes the cached results for one role.
type Prefetcher interface {
	Prefetch(ctx context.Context, roleKey string) (int, error)
}

// Warmer runs a prefetch cycle over its roles on every cron tick.
type Warmer struct {
	cron    *cron.Cron
	spec    string
	roles   []string
	target  Prefetcher
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewWarmer creates a warmer for roles. spec is a standard five-field cron
// expression or a descriptor such as "@every 4m".
func NewWarmer(spec string, roles []string, target Prefetcher, rec *metrics.Recorder, logger *slog.Logger) (*Warmer, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse warmer schedule %q: %w", spec, err)
	}
	cl := cronLogger{logger: logger}
	return &Warmer{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:    spec,
		roles:   roles,
		target:  target,
		metrics: rec,
		logger:  logger,
	}, nil
}

// Run warms every role once, then again on each tick until ctx is cancelled.
// It waits for an in-flight cycle to finish before returning nil.
func (w *Warmer) Run(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.spec, func() { w.warmAll(ctx) }); err != nil {
		return fmt.Errorf("schedule warmer: %w", err)
	}

	w.logger.Info("starting cache warmer",
		"schedule", w.spec,
		"roles", len(w.roles),
	)
	w.cron.Start()

	w.warmAll(ctx)

	<-ctx.Done()
	<-w.cron.Stop().Done()
	w.logger.Info("shutting down cache warmer")
	return nil
}

// warmAll prefetches each role sequentially. A failing role is logged and
// does not stop the cycle.
func (w *Warmer) warmAll(ctx context.Context) {
	for _, role := range w.roles {
		if ctx.Err() != nil {
			return
		}

		n, err := w.target.Prefetch(ctx, role)
		w.metrics.Warm(role, err)
		if err != nil {
			w.logger.Error("warm failed",
				"role", role,
				"error", err,
			)
			continue
		}
		w.logger.Debug("warmed role", "role", role, "records", n)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
