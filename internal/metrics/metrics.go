// Package metrics exposes Prometheus instrumentation for searches, the
// cache, the job source and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "jobscout"

// Option configures a Recorder.
type Option func(*Recorder)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		if namespace != "" {
			r.namespace = namespace
		}
	}
}

// WithRegistry registers metrics on registry instead of a fresh one. The
// registry is also what Handler serves.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(r *Recorder) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// Recorder owns every jobscout metric.
type Recorder struct {
	namespace string
	registry  *prometheus.Registry

	cacheLookups   *prometheus.CounterVec
	fetches        *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	jobsNormalized prometheus.Counter
	jobsDropped    prometheus.Counter
	jobsDuplicate  prometheus.Counter
	searches       *prometheus.CounterVec
	searchDuration prometheus.Histogram
	warmRuns       *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewRecorder creates a Recorder. Without WithRegistry it uses a private
// registry that also carries the Go runtime and process collectors.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = prometheus.NewRegistry()
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	r.init()
	return r
}

func (r *Recorder) init() {
	auto := promauto.With(r.registry)

	r.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Search cache lookups by result.",
	}, []string{"result"})

	r.fetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "source",
		Name:      "fetches_total",
		Help:      "Job source fetches by outcome.",
	}, []string{"outcome"})

	r.fetchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "source",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of a single search-term fetch.",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
	})

	r.jobsNormalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "pipeline",
		Name:      "jobs_normalized_total",
		Help:      "Raw records normalized into job summaries.",
	})

	r.jobsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "pipeline",
		Name:      "jobs_dropped_total",
		Help:      "Raw records dropped for lacking a link.",
	})

	r.jobsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "pipeline",
		Name:      "jobs_duplicate_total",
		Help:      "Job summaries removed as duplicate links.",
	})

	r.searches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "search",
		Name:      "requests_total",
		Help:      "Searches by outcome.",
	}, []string{"outcome"})

	r.searchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "search",
		Name:      "duration_seconds",
		Help:      "End-to-end search duration.",
		Buckets:   prometheus.DefBuckets,
	})

	r.warmRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "warmer",
		Name:      "runs_total",
		Help:      "Cache warm attempts per role by outcome.",
	}, []string{"role", "outcome"})

	r.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "code"})

	r.httpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
}

// Registry returns the registry metrics are registered on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// CacheLookup counts a cache hit or miss.
func (r *Recorder) CacheLookup(hit bool) {
	if hit {
		r.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	r.cacheLookups.WithLabelValues("miss").Inc()
}

// Fetch records one search-term fetch.
func (r *Recorder) Fetch(d time.Duration, err error) {
	r.fetchDuration.Observe(d.Seconds())
	r.fetches.WithLabelValues(outcome(err)).Inc()
}

// Pipeline records the result of normalizing and deduplicating one batch.
func (r *Recorder) Pipeline(normalized, dropped, duplicates int) {
	r.jobsNormalized.Add(float64(normalized))
	r.jobsDropped.Add(float64(dropped))
	r.jobsDuplicate.Add(float64(duplicates))
}

// Search records one completed search.
func (r *Recorder) Search(d time.Duration, err error) {
	r.searchDuration.Observe(d.Seconds())
	r.searches.WithLabelValues(outcome(err)).Inc()
}

// Warm records one cache warm attempt for role.
func (r *Recorder) Warm(role string, err error) {
	r.warmRuns.WithLabelValues(role, outcome(err)).Inc()
}

// HTTPRequest records one served HTTP request.
func (r *Recorder) HTTPRequest(method, route string, status int, d time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
