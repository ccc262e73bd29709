// Package main hosts the jobsapi entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server serves GET /api/jobs (plus its historical aliases), /api/job/{id},
//     /api/d3-data, and the CSV downloads /download/stats and /download/d3. Health endpoints and /metrics
//     sit beside them.
//   - Data path: internal/dataset.Service runs fixed catalog queries through internal/storage/postgres,
//     normalizes list-valued columns for the listing collection, and enforces the row caps.
//   - Snapshots: `jobsapi export` renders the same CSVs through internal/snapshot and uploads them to a local
//     directory or a GCS bucket, optionally announcing each upload on Pub/Sub.
//   - Configuration & plumbing: Viper populates config from file and env (JOBSAPI_*, plus DATABASE_URL and
//     PORT); zap provides structured logging; Prometheus collectors cover HTTP, storage, and snapshots.
//
// Quick checklist:
//   - Configure DATABASE_URL (or JOBSAPI_DB_DSN). Startup fails when it is missing or unreachable.
//   - Run locally: go run ./cmd/jobsapi serve --config config.yaml
//   - Export: go run ./cmd/jobsapi export --dataset stats --dataset d3
package main
