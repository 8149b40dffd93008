// The processor command runs a batch of backlink article jobs from a YAML
// file to terminal results, emitting one JSON document with every job's
// final state, draft, quality report, and execution log.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robwestz/bacowr/internal/bootstrap"
	"github.com/robwestz/bacowr/internal/configloader"
	"github.com/robwestz/bacowr/internal/domain"
	"github.com/robwestz/bacowr/internal/logger"
	"github.com/robwestz/bacowr/internal/validator"
)

const metricsReadTimeout = 10 * time.Second

type jobsFile struct {
	Jobs []validator.RawInput `yaml:"jobs"`
}

type resultRow struct {
	Result *domain.JobResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func main() {
	configPath := flag.String("config", configloader.GetConfigPath("config.yml"), "path to config file")
	jobsPath := flag.String("jobs", "jobs.yml", "path to the jobs file")
	outPath := flag.String("out", "", "write results JSON to this file instead of stdout")
	flag.Parse()

	if err := run(*configPath, *jobsPath, *outPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, jobsPath, outPath string) error {
	components, err := bootstrap.New(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = components.Log.Sync() }()

	inputs, err := loadJobs(jobsPath, components.Config.Writer.DefaultProvider)
	if err != nil {
		return fmt.Errorf("load jobs: %w", err)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no jobs in %s", jobsPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startMetricsServer(components)

	results := components.Batch.Process(ctx, inputs)

	rows := make([]resultRow, len(results))
	for i, res := range results {
		rows[i].Result = res.Result
		if res.Err != nil {
			rows[i].Error = res.Err.Error()
		}
	}
	encoded, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	if outPath == "" {
		fmt.Println(string(encoded))
		return nil
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	components.Log.Info("results written", logger.String("path", outPath))
	return nil
}

// loadJobs reads the jobs file and fills in the configured default provider
// for jobs that do not name one.
func loadJobs(path, defaultProvider string) ([]validator.RawInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file jobsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range file.Jobs {
		if file.Jobs[i].Provider == "" {
			file.Jobs[i].Provider = defaultProvider
		}
	}
	return file.Jobs, nil
}

// startMetricsServer exposes Prometheus metrics for the duration of the run.
func startMetricsServer(components *bootstrap.Components) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", components.Telemetry.Handler())

	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", components.Config.Service.MetricsPort),
		Handler:     mux,
		ReadTimeout: metricsReadTimeout,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			components.Log.Warn("metrics server stopped", logger.Error(err))
		}
	}()
}
