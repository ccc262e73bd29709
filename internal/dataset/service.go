package dataset

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/jobs-observatory/internal/apperr"
	"github.com/JakeFAU/jobs-observatory/internal/record"
)

// Source reads rows from the relational store.
type Source interface {
	Fetch(ctx context.Context, q Query) ([]record.Row, error)
	FetchByID(ctx context.Context, table string, id int64) (record.Row, bool, error)
}

// Observer receives per-collection row counts. metrics.RowsServed satisfies it.
type Observer func(dataset string, rows int)

// Service runs catalog queries against a Source and assembles the results.
type Service struct {
	source  Source
	catalog Catalog
	observe Observer
	logger  *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithObserver installs a row-count observer.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observe = o
	}
}

// NewService wires a Source and catalog. A nil source is allowed; every read
// then fails with a configuration error.
func NewService(source Source, catalog Catalog, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		source:  source,
		catalog: catalog,
		observe: func(string, int) {},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the queries this service serves.
func (s *Service) Catalog() Catalog {
	return s.catalog
}

// Collection fetches and assembles the rows of q.
func (s *Service) Collection(ctx context.Context, q Query) ([]record.Row, error) {
	rows, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	out := Collection(rows, q.listFields(), q.Limit)
	s.observe(q.Name, len(out))
	return out, nil
}

// Export fetches the raw, limit-capped rows of q for CSV rendering. List
// fields keep their stored representation.
func (s *Service) Export(ctx context.Context, q Query) ([]record.Row, error) {
	rows, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	out := Collection(rows, nil, q.Limit)
	s.observe(q.Name, len(out))
	return out, nil
}

// Entity loads one listing with every stored column.
func (s *Service) Entity(ctx context.Context, id int64) (record.Row, error) {
	if s.source == nil {
		return record.Row{}, errNotConfigured()
	}
	row, found, err := s.source.FetchByID(ctx, s.catalog.EntityTab, id)
	if err != nil {
		return record.Row{}, fmt.Errorf("entity %d: %w", id, err)
	}
	return Entity(row, found)
}

func (s *Service) fetch(ctx context.Context, q Query) ([]record.Row, error) {
	if s.source == nil {
		return nil, errNotConfigured()
	}
	rows, err := s.source.Fetch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", q.Name, err)
	}
	s.logger.Debug("collection fetched", zap.String("dataset", q.Name), zap.Int("rows", len(rows)))
	return rows, nil
}

func errNotConfigured() error {
	return apperr.Config("database not configured", nil)
}
