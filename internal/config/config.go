// Package config holds the service configuration, loaded from YAML with
// environment overrides.
package config

import (
	"time"

	"github.com/robwestz/bacowr/internal/configloader"
	"github.com/robwestz/bacowr/internal/logger"
	"github.com/robwestz/bacowr/internal/qc"
	"github.com/robwestz/bacowr/internal/writer"
)

// Default configuration values.
const (
	defaultServiceName       = "bacowr"
	defaultServiceVersion    = "1.0.0"
	defaultMetricsPort       = 9090
	defaultConcurrency       = 4
	defaultCollaboratorRPS   = 10
	defaultPreflightURL      = "http://localhost:8081"
	defaultPreflightTimeout  = 30 * time.Second
	defaultWriterURL         = "http://localhost:8082"
	defaultWriterTimeout     = 120 * time.Second
	defaultWriterProvider    = "template"
	defaultHTTPProviderName  = "http"
)

// Config holds all configuration for the job processor.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Logging   logger.Config   `yaml:"logging"`
	Preflight PreflightConfig `yaml:"preflight"`
	Writer    WriterConfig    `yaml:"writer"`
	Quality   qc.Config       `yaml:"quality"`
	Batch     BatchConfig     `yaml:"batch"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	MetricsPort int    `env:"BACOWR_METRICS_PORT" yaml:"metrics_port"`
}

// PreflightConfig holds the preflight sidecar client configuration.
type PreflightConfig struct {
	URL     string        `env:"PREFLIGHT_URL" yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// WriterConfig holds the writer backend configuration. DefaultProvider is
// used for jobs that do not name one.
type WriterConfig struct {
	DefaultProvider string                 `env:"WRITER_PROVIDER" yaml:"default_provider"`
	HTTPName        string                 `yaml:"http_name"`
	HTTPURL         string                 `env:"WRITER_URL" yaml:"http_url"`
	HTTPTimeout     time.Duration          `yaml:"http_timeout"`
	Anthropic       writer.AnthropicConfig `yaml:"anthropic"`
}

// BatchConfig holds worker pool and admission gate configuration.
type BatchConfig struct {
	Concurrency     int `env:"BACOWR_CONCURRENCY" yaml:"concurrency"`
	CollaboratorRPS int `yaml:"collaborator_rps"`
	Burst           int `yaml:"collaborator_burst"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return configloader.LoadWithDefaults[Config](path, setDefaults)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	cfg.Logging.SetDefaults()
	setPreflightDefaults(&cfg.Preflight)
	setWriterDefaults(&cfg.Writer)
	cfg.Quality.SetDefaults()
	setBatchDefaults(&cfg.Batch)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.MetricsPort == 0 {
		s.MetricsPort = defaultMetricsPort
	}
}

func setPreflightDefaults(p *PreflightConfig) {
	if p.URL == "" {
		p.URL = defaultPreflightURL
	}
	if p.Timeout == 0 {
		p.Timeout = defaultPreflightTimeout
	}
}

func setWriterDefaults(w *WriterConfig) {
	if w.DefaultProvider == "" {
		w.DefaultProvider = defaultWriterProvider
	}
	if w.HTTPName == "" {
		w.HTTPName = defaultHTTPProviderName
	}
	if w.HTTPURL == "" {
		w.HTTPURL = defaultWriterURL
	}
	if w.HTTPTimeout == 0 {
		w.HTTPTimeout = defaultWriterTimeout
	}
}

func setBatchDefaults(b *BatchConfig) {
	if b.Concurrency == 0 {
		b.Concurrency = defaultConcurrency
	}
	if b.CollaboratorRPS == 0 {
		b.CollaboratorRPS = defaultCollaboratorRPS
	}
	if b.Burst == 0 {
		b.Burst = b.CollaboratorRPS
	}
}
