// Package postgres provides the Postgres-backed row source for the data API.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/jobs-observatory/internal/apperr"
	"github.com/JakeFAU/jobs-observatory/internal/dataset"
	"github.com/JakeFAU/jobs-observatory/internal/record"
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// DefaultQueryTimeout bounds a single round-trip when Config.QueryTimeout is unset.
const DefaultQueryTimeout = 5 * time.Second

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	QueryTimeout    time.Duration
}

type pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// QueryObserver is told how long each query took and whether it failed.
type QueryObserver func(operation string, d time.Duration, err error)

// Store reads listing and visualization rows from Postgres.
type Store struct {
	pool    pool
	timeout time.Duration
	observe QueryObserver
}

// New parses cfg, opens a pool and verifies connectivity.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, apperr.Config("db.dsn is required", nil)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, apperr.Config("parse postgres dsn", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, apperr.Storage("connect postgres", err)
	}
	s, err := NewWithPool(p, cfg.QueryTimeout)
	if err != nil {
		p.Close()
		return nil, err
	}
	if err := s.Ping(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(p pool, timeout time.Duration) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Store{
		pool:    p,
		timeout: timeout,
		observe: func(string, time.Duration, error) {},
	}, nil
}

// SetObserver installs a per-query observer.
func (s *Store) SetObserver(o QueryObserver) {
	if o != nil {
		s.observe = o
	}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Ping checks that the database is reachable within the query timeout.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()
	err := s.pool.Ping(ctx)
	s.observe("ping", time.Since(start), err)
	if err != nil {
		return apperr.Storage("ping postgres", err)
	}
	return nil
}

// Fetch runs the allow-listed, ordered and limited select described by q.
func (s *Store) Fetch(ctx context.Context, q dataset.Query) ([]record.Row, error) {
	sql, err := buildCollectionSQL(q)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	rows, err := s.query(ctx, sql, q.Limit)
	s.observe(q.Name, time.Since(start), err)
	if err != nil {
		return nil, apperr.Storage("query "+q.Name, err)
	}
	return rows, nil
}

// FetchByID returns every column of the row of table whose id matches.
func (s *Store) FetchByID(ctx context.Context, table string, id int64) (record.Row, bool, error) {
	if !validIdentifier.MatchString(table) {
		return record.Row{}, false, apperr.Config(fmt.Sprintf("invalid table name %q", table), nil)
	}
	sql := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", pgx.Identifier{table}.Sanitize())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	rows, err := s.query(ctx, sql, id)
	s.observe("entity", time.Since(start), err)
	if err != nil {
		return record.Row{}, false, apperr.Storage("query "+table+" by id", err)
	}
	if len(rows) == 0 {
		return record.Row{}, false, nil
	}
	return rows[0], true, nil
}

func (s *Store) query(ctx context.Context, sql string, args ...any) ([]record.Row, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	var out []record.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		row := record.New(len(cols))
		for i, c := range cols {
			var v any
			if i < len(values) {
				v = values[i]
			}
			row.Set(c, v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func buildCollectionSQL(q dataset.Query) (string, error) {
	if !validIdentifier.MatchString(q.Table) {
		return "", apperr.Config(fmt.Sprintf("invalid table name %q", q.Table), nil)
	}
	if len(q.Columns) == 0 {
		return "", apperr.Config(fmt.Sprintf("dataset %s has no columns", q.Name), nil)
	}
	if q.Limit <= 0 {
		return "", apperr.Config(fmt.Sprintf("dataset %s has no row limit", q.Name), nil)
	}
	cols := make([]string, len(q.Columns))
	for i, c := range q.Columns {
		if !validIdentifier.MatchString(c) {
			return "", apperr.Config(fmt.Sprintf("invalid column name %q", c), nil)
		}
		cols[i] = pgx.Identifier{c}.Sanitize()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), pgx.Identifier{q.Table}.Sanitize())
	if q.OrderBy != "" {
		if !validIdentifier.MatchString(q.OrderBy) {
			return "", apperr.Config(fmt.Sprintf("invalid order column %q", q.OrderBy), nil)
		}
		fmt.Fprintf(&b, " ORDER BY %s DESC NULLS LAST", pgx.Identifier{q.OrderBy}.Sanitize())
	}
	b.WriteString(" LIMIT $1")
	return b.String(), nil
}
