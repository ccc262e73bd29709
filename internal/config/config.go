// Package config loads and validates data API configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/jobs-observatory/internal/apperr"
	"github.com/JakeFAU/jobs-observatory/internal/csvexport"
	"github.com/JakeFAU/jobs-observatory/internal/dataset"
	"github.com/JakeFAU/jobs-observatory/internal/storage/postgres"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"db"`
	Datasets DatasetsConfig `mapstructure:"datasets"`
	Export   ExportConfig   `mapstructure:"export"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	// ExposeErrors returns storage error text to clients. Internal dashboards
	// rely on it; public deployments should turn it off.
	ExposeErrors bool `mapstructure:"expose_errors"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
}

// DatasetsConfig sets the server-side row caps.
type DatasetsConfig struct {
	JobsLimit   int  `mapstructure:"jobs_limit"`
	D3Limit     int  `mapstructure:"d3_limit"`
	ExportLimit int  `mapstructure:"export_limit"`
	D3Normalize bool `mapstructure:"d3_normalize"`
}

// ExportConfig governs CSV rendering and snapshot sinks.
type ExportConfig struct {
	HeaderMode  string `mapstructure:"header_mode"`
	BlobBackend string `mapstructure:"blob_backend"`
	LocalDir    string `mapstructure:"local_dir"`
	GCSBucket   string `mapstructure:"gcs_bucket"`
	Prefix      string `mapstructure:"prefix"`
}

// PubSubConfig holds metadata for snapshot notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JOBSAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// DATABASE_URL is what the dashboards have always been deployed with.
	if err := v.BindEnv("db.dsn", "JOBSAPI_DB_DSN", "DATABASE_URL"); err != nil {
		return Config{}, fmt.Errorf("bind db.dsn: %w", err)
	}
	if err := v.BindEnv("server.port", "JOBSAPI_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind server.port: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.expose_errors", true)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("db.max_conn_lifetime", "30m")
	v.SetDefault("db.query_timeout", "5s")
	v.SetDefault("datasets.jobs_limit", dataset.DefaultCollectionLimit)
	v.SetDefault("datasets.d3_limit", dataset.DefaultCollectionLimit)
	v.SetDefault("datasets.export_limit", dataset.DefaultExportLimit)
	v.SetDefault("datasets.d3_normalize", false)
	v.SetDefault("export.header_mode", string(csvexport.HeaderFirstRow))
	v.SetDefault("export.blob_backend", "local")
	v.SetDefault("export.local_dir", "data/exports")
	v.SetDefault("export.prefix", "snapshots")
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits. A missing DSN is
// a configuration error reported at startup rather than on first request.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DB.DSN) == "" {
		return apperr.Config("db.dsn (or DATABASE_URL) is required", nil)
	}
	if c.Server.Port <= 0 {
		return apperr.Config("server.port must be > 0", nil)
	}
	if c.DB.QueryTimeout <= 0 {
		return apperr.Config("db.query_timeout must be > 0", nil)
	}
	if c.Server.RequestTimeout <= 0 {
		return apperr.Config("server.request_timeout must be > 0", nil)
	}
	if c.Datasets.JobsLimit <= 0 || c.Datasets.D3Limit <= 0 || c.Datasets.ExportLimit <= 0 {
		return apperr.Config("datasets limits must be > 0", nil)
	}
	if _, err := csvexport.ParseHeaderMode(c.Export.HeaderMode); err != nil {
		return apperr.Config("export.header_mode", err)
	}
	switch c.Export.BlobBackend {
	case "local", "":
	case "gcs":
		if c.Export.GCSBucket == "" {
			return apperr.Config("export.gcs_bucket must be set when export.blob_backend is gcs", nil)
		}
	default:
		return apperr.Config(fmt.Sprintf("export.blob_backend %q is not supported", c.Export.BlobBackend), nil)
	}
	if c.PubSub.Topic != "" && c.PubSub.ProjectID == "" {
		return apperr.Config("pubsub.project_id must be set when pubsub.topic is set", nil)
	}
	return nil
}

// Limits converts the dataset caps for the catalog.
func (c Config) Limits() dataset.Limits {
	return dataset.Limits{
		Jobs:        c.Datasets.JobsLimit,
		D3:          c.Datasets.D3Limit,
		Export:      c.Datasets.ExportLimit,
		D3Normalize: c.Datasets.D3Normalize,
	}
}

// Postgres converts the DB section for the store.
func (c Config) Postgres() postgres.Config {
	return postgres.Config{
		DSN:             c.DB.DSN,
		MaxConns:        c.DB.MaxConns,
		MinConns:        c.DB.MinConns,
		MaxConnLifetime: c.DB.MaxConnLifetime,
		QueryTimeout:    c.DB.QueryTimeout,
	}
}

// HeaderMode returns the validated CSV header mode.
func (c Config) HeaderMode() csvexport.HeaderMode {
	mode, err := csvexport.ParseHeaderMode(c.Export.HeaderMode)
	if err != nil {
		return csvexport.HeaderFirstRow
	}
	return mode
}
