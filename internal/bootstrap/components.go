// Package bootstrap wires configuration into running components: logger,
// telemetry, collaborator clients, engine, and batch processor.
package bootstrap

import (
	"fmt"

	"github.com/robwestz/bacowr/internal/autofix"
	"github.com/robwestz/bacowr/internal/config"
	"github.com/robwestz/bacowr/internal/engine"
	"github.com/robwestz/bacowr/internal/logger"
	"github.com/robwestz/bacowr/internal/preflight"
	"github.com/robwestz/bacowr/internal/processor"
	"github.com/robwestz/bacowr/internal/qc"
	"github.com/robwestz/bacowr/internal/telemetry"
	"github.com/robwestz/bacowr/internal/writer"
)

// Components holds everything a processor run needs.
type Components struct {
	Config    *config.Config
	Log       logger.Logger
	Telemetry *telemetry.Provider
	Batch     *processor.BatchProcessor
}

// New loads configuration from path and builds the full component graph.
func New(path string) (*Components, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	tel := telemetry.NewProvider()

	factory := writer.NewFactory()
	factory.Register(writer.NewTemplateWriter())
	factory.Register(writer.NewHTTPWriter(cfg.Writer.HTTPName, cfg.Writer.HTTPURL, cfg.Writer.HTTPTimeout))
	if cfg.Writer.Anthropic.APIKey != "" {
		factory.Register(writer.NewAnthropicWriter(cfg.Writer.Anthropic))
	}

	orchestrator := engine.New(
		preflight.NewClient(cfg.Preflight.URL, cfg.Preflight.Timeout),
		factory,
		qc.NewController(cfg.Quality, log),
		autofix.New(cfg.Quality, log),
		engine.WithGate(processor.NewAdmissionGate(cfg.Batch.CollaboratorRPS, cfg.Batch.Burst, log)),
		engine.WithLogger(log),
		engine.WithTelemetry(tel),
	)

	log.Info("components ready",
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Strings("writers", factory.Providers()),
		logger.Int("concurrency", cfg.Batch.Concurrency))

	return &Components{
		Config:    cfg,
		Log:       log,
		Telemetry: tel,
		Batch:     processor.NewBatchProcessor(orchestrator, cfg.Batch.Concurrency, tel, log),
	}, nil
}
