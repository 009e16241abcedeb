// Package api serves the search pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/amishk599/jobscout/internal/metrics"
	"github.com/amishk599/jobscout/internal/model"
)

const maxRequestBytes = 1 << 20

// Searcher is the part of the search service the API needs.
type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error)
	Roles() []model.Role
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	search         Searcher
	metrics        *metrics.Recorder
	logger         *slog.Logger
	schema         *jsonschema.Schema
	allowedOrigins []string
}

// NewServer creates a Server. allowedOrigins configures CORS for the frontend.
func NewServer(search Searcher, rec *metrics.Recorder, logger *slog.Logger, allowedOrigins []string) (*Server, error) {
	schema, err := compileSearchSchema()
	if err != nil {
		return nil, fmt.Errorf("search request schema: %w", err)
	}
	return &Server{
		search:         search,
		metrics:        rec,
		logger:         logger,
		schema:         schema,
		allowedOrigins: allowedOrigins,
	}, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/roles", s.handleRoles)
	r.Post("/jobs/search", s.handleSearch)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// instrument logs each request and records its metrics under the matched
// route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			elapsed := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			s.metrics.HTTPRequest(r.Method, route, status, elapsed)
			s.logger.Debug("http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", elapsed,
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
