// Package telemetry provides OpenTelemetry instrumentation for the job
// execution engine. It exports Prometheus metrics and provides tracing
// capabilities.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/robwestz/bacowr/internal/domain"
)

const serviceName = "bacowr"

// Metrics holds all engine Prometheus metrics
type Metrics struct {
	// Job outcome metrics
	JobsCompleted *prometheus.CounterVec
	JobsAborted   *prometheus.CounterVec
	JobDuration   *prometheus.HistogramVec
	PhaseDuration *prometheus.HistogramVec

	// Quality metrics
	QCStatusTotal  *prometheus.CounterVec
	QCOverallScore prometheus.Histogram
	CriticalFails  *prometheus.CounterVec

	// Rescue metrics
	RescueTotal   *prometheus.CounterVec
	LoopsDetected prometheus.Counter

	// Writer metrics
	WriterTokens *prometheus.CounterVec

	// Batch metrics
	BatchSize     prometheus.Histogram
	QueueDepth    prometheus.Gauge
	ActiveWorkers prometheus.Gauge
	GateWait      prometheus.Histogram
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initJobMetrics(m)
	initQualityMetrics(m)
	initRescueMetrics(m)
	initWriterMetrics(m)
	initBatchMetrics(m)
	return m
}

func initJobMetrics(m *Metrics) {
	m.JobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bacowr_jobs_completed_total",
		Help: "Total jobs reaching a terminal state, by final state",
	}, []string{"final_state"})

	m.JobsAborted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bacowr_jobs_aborted_total",
		Help: "Total aborted jobs by abort reason",
	}, []string{"reason"})

	m.JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bacowr_job_duration_seconds",
		Help:    "End-to-end time for a single job",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"final_state"})

	m.PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bacowr_phase_duration_seconds",
		Help:    "Time spent in one execution phase (preflight, write, qc, rescue)",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"phase"})
}

func initQualityMetrics(m *Metrics) {
	m.QCStatusTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bacowr_qc_status_total",
		Help: "Quality evaluations by status and pass (first or rescue)",
	}, []string{"status", "pass"})

	m.QCOverallScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bacowr_qc_overall_score",
		Help:    "Weighted overall quality score distribution",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	m.CriticalFails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bacowr_qc_critical_fails_total",
		Help: "Critical criterion failures by criterion",
	}, []string{"criterion"})
}

func initRescueMetrics(m *Metrics) {
	m.RescueTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bacowr_rescues_total",
		Help: "Rescue attempts by mode (autofix, regenerate)",
	}, []string{"mode"})

	m.LoopsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bacowr_loops_detected_total",
		Help: "Rescues that produced a byte-identical draft",
	})
}

func initWriterMetrics(m *Metrics) {
	m.WriterTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bacowr_writer_tokens_total",
		Help: "Writer token usage by provider and direction",
	}, []string{"provider", "direction"})
}

func initBatchMetrics(m *Metrics) {
	m.BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bacowr_batch_size",
		Help:    "Number of jobs per batch",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500},
	})

	m.QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bacowr_queue_depth",
		Help: "Current pending jobs in the batch queue",
	})

	m.ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bacowr_active_workers",
		Help: "Currently active worker goroutines",
	})

	m.GateWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bacowr_gate_wait_seconds",
		Help:    "Time spent waiting on the collaborator admission gate",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})
}

// RecordJob records the terminal outcome of one job
func (p *Provider) RecordJob(ctx context.Context, result *domain.JobResult, duration time.Duration) {
	state := string(result.FinalState)
	p.Metrics.JobsCompleted.WithLabelValues(state).Inc()
	p.Metrics.JobDuration.WithLabelValues(state).Observe(duration.Seconds())
	if result.AbortReason != "" {
		p.Metrics.JobsAborted.WithLabelValues(string(result.AbortReason)).Inc()
	}
}

// RecordPhase records the duration of one execution phase
func (p *Provider) RecordPhase(ctx context.Context, phase string, duration time.Duration) {
	p.Metrics.PhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordQC records one quality evaluation. pass is "first" or "rescue".
func (p *Provider) RecordQC(ctx context.Context, report *domain.QCReport, pass string) {
	p.Metrics.QCStatusTotal.WithLabelValues(string(report.Status), pass).Inc()
	p.Metrics.QCOverallScore.Observe(float64(report.OverallScore))
	for _, criterion := range report.CriticalFails {
		p.Metrics.CriticalFails.WithLabelValues(string(criterion)).Inc()
	}
}

// RecordRescue records a rescue attempt by mode
func (p *Provider) RecordRescue(ctx context.Context, mode string) {
	p.Metrics.RescueTotal.WithLabelValues(mode).Inc()
}

// RecordLoopDetected records a rescue that reproduced the original draft
func (p *Provider) RecordLoopDetected(ctx context.Context) {
	p.Metrics.LoopsDetected.Inc()
}

// RecordWriterUsage records token usage for one generation call
func (p *Provider) RecordWriterUsage(ctx context.Context, provider string, inputTokens, outputTokens int64) {
	p.Metrics.WriterTokens.WithLabelValues(provider, "input").Add(float64(inputTokens))
	p.Metrics.WriterTokens.WithLabelValues(provider, "output").Add(float64(outputTokens))
}

// RecordGateWait records time spent waiting for collaborator admission
func (p *Provider) RecordGateWait(duration time.Duration) {
	p.Metrics.GateWait.Observe(duration.Seconds())
}

// RecordBatchSize records the size of a submitted batch
func (p *Provider) RecordBatchSize(size int) {
	p.Metrics.BatchSize.Observe(float64(size))
}

// SetQueueDepth sets the current queue depth
func (p *Provider) SetQueueDepth(depth int) {
	p.Metrics.QueueDepth.Set(float64(depth))
}

// SetActiveWorkers sets the current active worker count
func (p *Provider) SetActiveWorkers(count int) {
	p.Metrics.ActiveWorkers.Set(float64(count))
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}
