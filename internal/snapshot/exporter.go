// Package snapshot materializes the CSV exports into a blob store and
// announces each upload on a message topic.
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/jobs-observatory/internal/apperr"
	"github.com/JakeFAU/jobs-observatory/internal/clock/system"
	"github.com/JakeFAU/jobs-observatory/internal/csvexport"
	"github.com/JakeFAU/jobs-observatory/internal/dataset"
	"github.com/JakeFAU/jobs-observatory/internal/hash/sha256"
	"github.com/JakeFAU/jobs-observatory/internal/id/uuid"
	"github.com/JakeFAU/jobs-observatory/internal/metrics"
)

// Snapshot outcomes reported to metrics.
const (
	StatusOK     = "ok"
	StatusEmpty  = "empty"
	StatusFailed = "failed"
)

// BlobStore persists rendered files.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}

// Publisher announces completed snapshots.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Clock stamps snapshots.
type Clock interface {
	Now() time.Time
}

// IDGenerator names snapshots.
type IDGenerator interface {
	NewID() (string, error)
}

// Hasher checksums rendered files.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Event is the notification published for each stored snapshot.
type Event struct {
	SnapshotID string    `json:"snapshot_id"`
	Dataset    string    `json:"dataset"`
	URI        string    `json:"uri"`
	Rows       int       `json:"rows"`
	Columns    []string  `json:"columns"`
	SHA256     string    `json:"sha256"`
	CreatedAt  time.Time `json:"created_at"`
}

// Attributes exposes routing keys for subscription filters.
func (e Event) Attributes() map[string]string {
	return map[string]string{
		"dataset":     e.Dataset,
		"snapshot_id": e.SnapshotID,
	}
}

// Config controls object naming and notification.
type Config struct {
	Prefix     string
	Topic      string
	HeaderMode csvexport.HeaderMode
}

// Exporter renders datasets and uploads them.
type Exporter struct {
	svc    *dataset.Service
	blobs  BlobStore
	pub    Publisher
	cfg    Config
	logger *zap.Logger
	clock  Clock
	ids    IDGenerator
	hasher Hasher
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithClock overrides the time source used for object paths and events.
func WithClock(c Clock) Option {
	return func(e *Exporter) {
		e.clock = c
	}
}

// WithIDGenerator overrides snapshot id generation.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Exporter) {
		e.ids = g
	}
}

// NewExporter wires the dataset service to a blob store. pub may be nil, in
// which case nothing is announced.
func NewExporter(svc *dataset.Service, blobs BlobStore, pub Publisher, cfg Config, logger *zap.Logger, opts ...Option) (*Exporter, error) {
	if svc == nil {
		return nil, apperr.Config("dataset service is required", nil)
	}
	if blobs == nil {
		return nil, apperr.Config("blob store is required", nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.HeaderMode == "" {
		cfg.HeaderMode = csvexport.HeaderFirstRow
	}
	e := &Exporter{
		svc:    svc,
		blobs:  blobs,
		pub:    pub,
		cfg:    cfg,
		logger: logger,
		clock:  system.New(),
		ids:    uuid.New(),
		hasher: sha256.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run snapshots each kind concurrently; no kinds means all of them. Empty
// datasets are skipped. The returned events follow the order of kinds.
func (e *Exporter) Run(ctx context.Context, kinds ...csvexport.Kind) ([]Event, error) {
	kinds = uniqueKinds(kinds)
	results := make([]*Event, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			ev, err := e.snapshot(gctx, kind)
			switch {
			case apperr.Is(err, apperr.KindNoData):
				e.logger.Info("dataset empty, snapshot skipped", zap.String("dataset", string(kind)))
				metrics.ObserveSnapshot(string(kind), StatusEmpty)
				return nil
			case err != nil:
				metrics.ObserveSnapshot(string(kind), StatusFailed)
				return fmt.Errorf("snapshot %s: %w", kind, err)
			}
			metrics.ObserveSnapshot(string(kind), StatusOK)
			results[i] = &ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(results))
	for _, ev := range results {
		if ev != nil {
			events = append(events, *ev)
		}
	}
	return events, nil
}

func (e *Exporter) snapshot(ctx context.Context, kind csvexport.Kind) (Event, error) {
	q, err := e.query(kind)
	if err != nil {
		return Event{}, err
	}
	rows, err := e.svc.Export(ctx, q)
	if err != nil {
		return Event{}, err
	}
	res, err := csvexport.ExportWith(rows, kind, e.cfg.HeaderMode)
	if err != nil {
		return Event{}, err
	}
	if len(res.Dropped) > 0 {
		e.logger.Warn("csv columns missing from first row were dropped",
			zap.String("dataset", q.Name),
			zap.Strings("columns", res.Dropped),
		)
		metrics.ColumnsDropped(q.Name, len(res.Dropped))
	}

	id, err := e.ids.NewID()
	if err != nil {
		return Event{}, apperr.Internal("snapshot id", err)
	}
	sum, err := e.hasher.Hash(res.Body)
	if err != nil {
		return Event{}, apperr.Internal("checksum", err)
	}
	created := e.clock.Now().UTC()
	objectPath := path.Join(e.cfg.Prefix, string(kind), created.Format(time.DateOnly), id+"-"+res.Filename)
	uri, err := e.blobs.PutObject(ctx, objectPath, res.ContentType, bytes.NewReader(res.Body))
	if err != nil {
		return Event{}, err
	}

	ev := Event{
		SnapshotID: id,
		Dataset:    string(kind),
		URI:        uri,
		Rows:       res.Rows,
		Columns:    res.Header,
		SHA256:     sum,
		CreatedAt:  created,
	}
	logger := e.logger.With(zap.String("dataset", ev.Dataset), zap.String("snapshot_id", id))
	logger.Info("snapshot stored", zap.String("uri", uri), zap.Int("rows", ev.Rows))

	if e.pub != nil && e.cfg.Topic != "" {
		msgID, err := e.pub.Publish(ctx, e.cfg.Topic, ev)
		if err != nil {
			return Event{}, fmt.Errorf("announce: %w", err)
		}
		logger.Debug("snapshot announced", zap.String("message_id", msgID))
	}
	return ev, nil
}

func (e *Exporter) query(kind csvexport.Kind) (dataset.Query, error) {
	cat := e.svc.Catalog()
	switch kind {
	case csvexport.KindStats:
		return cat.JobsCSV, nil
	case csvexport.KindD3:
		return cat.D3CSV, nil
	default:
		return dataset.Query{}, apperr.Config(fmt.Sprintf("unknown export kind %q", kind), nil)
	}
}

func uniqueKinds(kinds []csvexport.Kind) []csvexport.Kind {
	if len(kinds) == 0 {
		return []csvexport.Kind{csvexport.KindStats, csvexport.KindD3}
	}
	seen := make(map[csvexport.Kind]bool, len(kinds))
	out := make([]csvexport.Kind, 0, len(kinds))
	for _, k := range kinds {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
