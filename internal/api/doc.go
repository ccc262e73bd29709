// Package api hosts the HTTP server, middleware, and read-only handlers the
// dashboards call. Notable routes:
//   - GET /api/jobs (and its aliases, see Aliases) for the listing collection.
//   - GET /api/job/{id} for one listing with every stored column.
//   - GET /api/d3-data for scatter-plot points.
//   - GET /download/stats and /download/d3 for CSV exports.
//   - GET /healthz, /readyz and /metrics for operators.
package api
