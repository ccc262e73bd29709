package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/jobs-observatory/internal/csvexport"
	"github.com/JakeFAU/jobs-observatory/internal/dataset"
	"github.com/JakeFAU/jobs-observatory/internal/metrics"
)

// Canonical routes.
const (
	RouteJobs      = "/api/jobs"
	RouteJob       = "/api/job/{id:[0-9]+}"
	RouteD3        = "/api/d3-data"
	RouteStatsCSV  = "/download/stats"
	RouteD3CSV     = "/download/d3"
	RouteHealthz   = "/healthz"
	RouteReadyz    = "/readyz"
	RouteMetrics   = "/metrics"
	defaultTimeout = 30 * time.Second
)

// Aliases maps historical endpoint names to the canonical route they serve.
// Existing dashboards still call every one of them, so entries are never removed.
var Aliases = map[string]string{
	"/api/jobs/light": RouteJobs,
	"/api/data":       RouteJobs,
	"/api/stats-data": RouteJobs,
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes server behavior.
type Options struct {
	RequestTimeout time.Duration
	ExposeErrors   bool
	HeaderMode     csvexport.HeaderMode
}

// Server wires HTTP handlers to the dataset service.
type Server struct {
	router chi.Router
	svc    *dataset.Service
	pinger Pinger
	opts   Options
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes. pinger may be nil,
// in which case /readyz reports the store as unavailable.
func NewServer(svc *dataset.Service, pinger Pinger, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultTimeout
	}
	if opts.HeaderMode == "" {
		opts.HeaderMode = csvexport.HeaderFirstRow
	}
	s := &Server{
		svc:    svc,
		pinger: pinger,
		opts:   opts,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(opts.RequestTimeout))

	r.Get(RouteHealthz, s.healthz)
	r.Get(RouteReadyz, s.readyz)
	r.Method(http.MethodGet, RouteMetrics, metrics.Handler())

	canonical := map[string]http.HandlerFunc{
		RouteJobs: s.listJobs,
	}
	for path, h := range canonical {
		r.Get(path, h)
	}
	mountAliases(r, canonical)

	r.Get(RouteJob, s.getJob)
	r.Get(RouteD3, s.listD3)
	r.Get(RouteStatsCSV, s.downloadStats)
	r.Get(RouteD3CSV, s.downloadD3)

	s.router = r
	return s
}

// mountAliases registers every alias on the exact handler of its canonical route.
func mountAliases(r chi.Router, canonical map[string]http.HandlerFunc) {
	paths := make([]string, 0, len(Aliases))
	for alias := range Aliases {
		paths = append(paths, alias)
	}
	sort.Strings(paths)
	for _, alias := range paths {
		h, ok := canonical[Aliases[alias]]
		if !ok {
			panic("api: alias " + alias + " targets unknown route " + Aliases[alias])
		}
		r.Get(alias, h)
	}
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}
