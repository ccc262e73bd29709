// Package app initializes and holds long-lived application services, acting as
// a dependency injection container for the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/jobs-observatory/internal/apperr"
	"github.com/JakeFAU/jobs-observatory/internal/config"
	"github.com/JakeFAU/jobs-observatory/internal/dataset"
	"github.com/JakeFAU/jobs-observatory/internal/metrics"
	"github.com/JakeFAU/jobs-observatory/internal/publisher/pubsub"
	"github.com/JakeFAU/jobs-observatory/internal/snapshot"
	"github.com/JakeFAU/jobs-observatory/internal/storage/gcs"
	"github.com/JakeFAU/jobs-observatory/internal/storage/local"
	"github.com/JakeFAU/jobs-observatory/internal/storage/postgres"
)

// Pinger reports store reachability for readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds the shared services built from one Config.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	svc     *dataset.Service
	pinger  Pinger
	closers []func() error
}

// New connects to Postgres and builds the dataset service. It fails fast when
// the database cannot be reached.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("connecting to postgres")
	store, err := postgres.New(ctx, cfg.Postgres())
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	store.SetObserver(metrics.ObserveQuery)

	a := FromSource(cfg, logger, store)
	a.closers = append(a.closers, func() error {
		store.Close()
		return nil
	})
	logger.Info("application services initialized")
	return a, nil
}

// FromSource builds an App around an existing Source. When src also
// implements Pinger it backs the readiness probe.
func FromSource(cfg config.Config, logger *zap.Logger, src dataset.Source) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:    cfg,
		logger: logger,
		svc: dataset.NewService(src, dataset.NewCatalog(cfg.Limits()), logger.Named("dataset"),
			dataset.WithObserver(metrics.RowsServed)),
	}
	if p, ok := src.(Pinger); ok {
		a.pinger = p
	}
	return a
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Service returns the dataset service.
func (a *App) Service() *dataset.Service {
	return a.svc
}

// Pinger returns the readiness probe target, or nil when none is available.
func (a *App) Pinger() Pinger {
	return a.pinger
}

// BlobStore builds the snapshot sink selected by export.blob_backend.
func (a *App) BlobStore(ctx context.Context) (snapshot.BlobStore, error) {
	switch a.cfg.Export.BlobBackend {
	case "", "local":
		a.logger.Info("using local snapshot sink", zap.String("dir", a.cfg.Export.LocalDir))
		store, err := local.New(local.Config{BaseDir: a.cfg.Export.LocalDir})
		if err != nil {
			return nil, fmt.Errorf("init local sink: %w", err)
		}
		return store, nil
	case "gcs":
		a.logger.Info("using GCS snapshot sink", zap.String("bucket", a.cfg.Export.GCSBucket))
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, apperr.Config("create storage client", err)
		}
		a.closers = append(a.closers, client.Close)
		store, err := gcs.New(client, gcs.Config{Bucket: a.cfg.Export.GCSBucket})
		if err != nil {
			return nil, fmt.Errorf("init gcs sink: %w", err)
		}
		return store, nil
	default:
		return nil, apperr.Config(fmt.Sprintf("unknown blob backend %q", a.cfg.Export.BlobBackend), nil)
	}
}

// Publisher builds the snapshot notifier. It returns nil when no topic is set.
func (a *App) Publisher(ctx context.Context) (snapshot.Publisher, error) {
	if a.cfg.PubSub.Topic == "" {
		a.logger.Info("pubsub topic not set, snapshots will not be announced")
		return nil, nil
	}
	a.logger.Info("connecting to pubsub", zap.String("topic", a.cfg.PubSub.Topic))
	pub, err := pubsub.New(ctx, a.cfg.PubSub.ProjectID, a.cfg.PubSub.Topic)
	if err != nil {
		return nil, fmt.Errorf("init publisher: %w", err)
	}
	a.closers = append(a.closers, pub.Close)
	return pub, nil
}

// Close releases every service in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("error closing application services", zap.Error(err))
		return err
	}
	return nil
}
