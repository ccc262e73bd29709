package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/jobs-observatory/internal/apperr"
	"github.com/JakeFAU/jobs-observatory/internal/csvexport"
	"github.com/JakeFAU/jobs-observatory/internal/dataset"
	"github.com/JakeFAU/jobs-observatory/internal/logging"
	"github.com/JakeFAU/jobs-observatory/internal/metrics"
)

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.pinger == nil {
		writeError(w, r, http.StatusServiceUnavailable, "database not configured")
		return
	}
	if err := s.pinger.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context(), s.logger).Warn("readiness check failed", zap.Error(err))
		writeError(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// listJobs handles GET /api/jobs and its aliases.
func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	s.serveCollection(w, r, s.svc.Catalog().Jobs)
}

// listD3 handles GET /api/d3-data.
func (s *Server) listD3(w http.ResponseWriter, r *http.Request) {
	s.serveCollection(w, r, s.svc.Catalog().D3)
}

func (s *Server) serveCollection(w http.ResponseWriter, r *http.Request, q dataset.Query) {
	rows, err := s.svc.Collection(r.Context(), q)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rows)
}

// getJob handles GET /api/job/{id}. It returns the stored row verbatim, or
// 404 {"error":"Not found"} when the id is unknown.
func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusNotFound, dataset.NotFoundMessage)
		return
	}
	row, err := s.svc.Entity(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, row)
}

// downloadStats handles GET /download/stats.
func (s *Server) downloadStats(w http.ResponseWriter, r *http.Request) {
	s.serveCSV(w, r, s.svc.Catalog().JobsCSV, csvexport.KindStats)
}

// downloadD3 handles GET /download/d3.
func (s *Server) downloadD3(w http.ResponseWriter, r *http.Request) {
	s.serveCSV(w, r, s.svc.Catalog().D3CSV, csvexport.KindD3)
}

// serveCSV answers with an attachment, or with a plain-text error: 404 when the
// export is empty, 500 otherwise.
func (s *Server) serveCSV(w http.ResponseWriter, r *http.Request, q dataset.Query, kind csvexport.Kind) {
	logger := logging.FromContext(r.Context(), s.logger)
	rows, err := s.svc.Export(r.Context(), q)
	if err != nil {
		logger.Error("export query failed", zap.String("dataset", q.Name), zap.Error(err))
		writeText(w, http.StatusInternalServerError, s.errorText(err))
		return
	}
	res, err := csvexport.ExportWith(rows, kind, s.opts.HeaderMode)
	if err != nil {
		if apperr.Is(err, apperr.KindNoData) {
			writeText(w, http.StatusNotFound, csvexport.NoDataMessage)
			return
		}
		logger.Error("export render failed", zap.String("dataset", q.Name), zap.Error(err))
		writeText(w, http.StatusInternalServerError, s.errorText(err))
		return
	}
	if len(res.Dropped) > 0 {
		logger.Warn("csv columns missing from first row were dropped",
			zap.String("dataset", q.Name),
			zap.Strings("columns", res.Dropped),
		)
		metrics.ColumnsDropped(q.Name, len(res.Dropped))
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+res.Filename)
	w.Header().Set("Content-Type", res.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Body); err != nil {
		logger.Warn("write csv failed", zap.Error(err))
	}
}

// writeFailure maps a service error onto the JSON error contract.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.Is(err, apperr.KindNotFound) {
		writeError(w, r, http.StatusNotFound, dataset.NotFoundMessage)
		return
	}
	logging.FromContext(r.Context(), s.logger).Error("request failed",
		zap.String("kind", string(apperr.KindOf(err))),
		zap.Error(err),
	)
	writeError(w, r, http.StatusInternalServerError, s.errorText(err))
}

func (s *Server) errorText(err error) string {
	if s.opts.ExposeErrors {
		return err.Error()
	}
	return "internal server error"
}
