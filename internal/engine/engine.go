// Package engine drives a job through its execution state machine:
// RECEIVE, PREFLIGHT, WRITE, QC, then DELIVER, RESCUE, or ABORT. Each job
// gets its own Orchestrator run; jobs share no mutable state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robwestz/bacowr/internal/autofix"
	"github.com/robwestz/bacowr/internal/domain"
	"github.com/robwestz/bacowr/internal/logger"
	"github.com/robwestz/bacowr/internal/preflight"
	"github.com/robwestz/bacowr/internal/qc"
	"github.com/robwestz/bacowr/internal/telemetry"
	"github.com/robwestz/bacowr/internal/validator"
	"github.com/robwestz/bacowr/internal/writer"
)

// Orchestrator executes one job at a time. It is safe to share across
// goroutines because all per-job state lives in the Run call.
type Orchestrator struct {
	preflight preflight.Collaborator
	writers   *writer.Factory
	qc        *qc.Controller
	fixer     *autofix.Engine
	gate      Gate
	tel       *telemetry.Provider
	log       logger.Logger
	now       func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithGate installs the batch layer's admission gate.
func WithGate(gate Gate) Option {
	return func(o *Orchestrator) { o.gate = gate }
}

// WithLogger installs a logger.
func WithLogger(log logger.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithTelemetry installs the telemetry provider.
func WithTelemetry(tel *telemetry.Provider) Option {
	return func(o *Orchestrator) { o.tel = tel }
}

// WithClock overrides the transition timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator over the given collaborators.
func New(pf preflight.Collaborator, writers *writer.Factory, controller *qc.Controller, fixer *autofix.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		preflight: pf,
		writers:   writers,
		qc:        controller,
		fixer:     fixer,
		gate:      NopGate(),
		log:       logger.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run validates raw input and executes the job. Validation failures are
// returned as an error before any state transition; the execution log of a
// rejected job is empty because the job never existed.
func (o *Orchestrator) Run(ctx context.Context, raw validator.RawInput) (*domain.JobResult, error) {
	job, err := validator.Validate(raw)
	if err != nil {
		return nil, err
	}
	return o.RunJob(ctx, job), nil
}

// RunJob executes a validated job to a terminal state. The returned result
// always carries the full execution log and a final state of DELIVERED or
// ABORTED.
func (o *Orchestrator) RunJob(ctx context.Context, job *domain.JobInput) *domain.JobResult {
	start := time.Now()
	execLog := newExecutionLog(o.now)
	res := &domain.JobResult{JobID: job.ID}
	log := o.log.With(logger.String("job_id", job.ID))

	log.Info("job received",
		logger.String("publisher", job.PublisherDomain),
		logger.String("provider", job.Provider))

	o.execute(ctx, job, execLog, res, log)

	res.FinalState = execLog.Current()
	res.ExecutionLog = execLog.Entries()
	if o.tel != nil {
		o.tel.RecordJob(ctx, res, time.Since(start))
	}

	log.Info("job finished",
		logger.String("final_state", string(res.FinalState)),
		logger.String("abort_reason", string(res.AbortReason)),
		logger.Duration("elapsed", time.Since(start)))
	return res
}

func (o *Orchestrator) execute(ctx context.Context, job *domain.JobInput, execLog *executionLog, res *domain.JobResult, log logger.Logger) {
	if ctx.Err() != nil {
		o.fail(execLog, res, domain.EventCancelled, domain.ReasonCancelled, ctx.Err())
		return
	}

	// Preflight.
	pf, err := o.preflightPhase(ctx, job)
	if err != nil {
		log.Warn("preflight failed", logger.Error(err))
		if ctx.Err() != nil {
			o.fail(execLog, res, domain.EventCancelled, domain.ReasonCancelled, err)
		} else {
			o.fail(execLog, res, domain.EventPreflightFailed, domain.ReasonPreflightFailed, err)
		}
		return
	}
	o.transition(execLog, res, domain.StatePreflightDone, domain.EventPreflightSucceeded,
		fmt.Sprintf("bridge=%s alignment=%s", pf.Bridge, pf.WorstAlignment()))

	if ctx.Err() != nil {
		o.fail(execLog, res, domain.EventCancelled, domain.ReasonCancelled, ctx.Err())
		return
	}

	// Write.
	backend, err := o.writers.For(job)
	if err != nil {
		o.fail(execLog, res, domain.EventWriterFailed, domain.ReasonWriterFailed, err)
		return
	}
	draft, err := o.writePhase(ctx, backend, job, pf, nil)
	if err != nil {
		log.Warn("writer failed", logger.Error(err))
		if ctx.Err() != nil {
			o.fail(execLog, res, domain.EventCancelled, domain.ReasonCancelled, err)
		} else {
			o.fail(execLog, res, domain.EventWriterFailed, domain.ReasonWriterFailed, err)
		}
		return
	}
	o.transition(execLog, res, domain.StateWritten, domain.EventDraftGenerated, draftSummary(draft))

	if ctx.Err() != nil {
		o.fail(execLog, res, domain.EventCancelled, domain.ReasonCancelled, ctx.Err())
		return
	}

	// First quality pass.
	report := o.qcPhase(ctx, job, pf, draft, "first")
	o.transition(execLog, res, domain.StateQCEvaluated, domain.EventQCEvaluated, reportSummary(report))

	if report.Status != domain.QCBlocked {
		res.Draft, res.QCReport = draft, report
		o.transition(execLog, res, domain.StateDelivered, domain.EventDelivered, "")
		return
	}

	// Rescue: one attempt, AutoFix preferred over regeneration.
	log.Info("first pass blocked, entering rescue",
		logger.Int("score", report.OverallScore),
		logger.Int("critical_fails", len(report.CriticalFails)))
	o.transition(execLog, res, domain.StateRescuing, domain.EventQCBlocked, reportSummary(report))

	rescued, rescueEvent := o.rescue(ctx, job, pf, backend, draft, report, execLog, res, log)
	if rescued == nil {
		// rescue already finalized the log
		res.Draft, res.QCReport = draft, report
		return
	}

	if rescued.ContentHash == draft.ContentHash {
		if o.tel != nil {
			o.tel.RecordLoopDetected(ctx)
		}
		log.Warn("loop detected, rescued draft identical",
			logger.String("content_hash", draft.ContentHash))
		res.Draft, res.QCReport = draft, report
		res.AbortReason = domain.ReasonLoopDetected
		res.AbortDetail = "rescued draft hash equals original draft hash"
		o.transition(execLog, res, domain.StateAborted, domain.EventLoopDetected, res.AbortDetail)
		return
	}

	o.transition(execLog, res, domain.StateWritten, rescueEvent, draftSummary(rescued))

	if ctx.Err() != nil {
		o.fail(execLog, res, domain.EventCancelled, domain.ReasonCancelled, ctx.Err())
		return
	}

	// Second quality pass.
	second := o.qcPhase(ctx, job, pf, rescued, "rescue")
	o.transition(execLog, res, domain.StateQCEvaluated, domain.EventQCEvaluated, reportSummary(second))
	res.Draft, res.QCReport = rescued, second

	if second.Status == domain.QCBlocked {
		res.AbortReason = domain.ReasonQCBlockedTwice
		res.AbortDetail = fmt.Sprintf("rescued draft blocked with score %d", second.OverallScore)
		o.transition(execLog, res, domain.StateAborted, domain.EventQCBlocked, res.AbortDetail)
		return
	}
	o.transition(execLog, res, domain.StateDelivered, domain.EventDelivered, "")
}

// rescue produces the second draft, via AutoFix when any issue is eligible,
// otherwise via one guided regeneration. A nil draft means the rescue itself
// failed and the log is already terminal.
func (o *Orchestrator) rescue(ctx context.Context, job *domain.JobInput, pf *domain.PreflightResult, backend writer.Collaborator, draft *domain.Draft, report *domain.QCReport, execLog *executionLog, res *domain.JobResult, log logger.Logger) (*domain.Draft, domain.Event) {
	start := time.Now()
	ctx, end := o.startSpan(ctx, "rescue")
	defer end()
	defer o.observePhase(ctx, "rescue", start)

	if report.HasAutoFixable() {
		fixed, fixLog, err := o.fixer.Apply(job, pf, draft, report)
		res.AutoFixLog = fixLog
		if err == nil {
			if o.tel != nil {
				o.tel.RecordRescue(ctx, "autofix")
			}
			return fixed, domain.EventAutoFixApplied
		}
		if !errors.Is(err, autofix.ErrNoFix) {
			log.Warn("autofix failed, falling back to regeneration", logger.Error(err))
		}
	}

	rescued, err := o.writePhase(ctx, backend, job, pf, writer.GuidanceFromReport(report))
	if err != nil {
		log.Warn("regeneration failed", logger.Error(err))
		if ctx.Err() != nil {
			o.fail(execLog, res, domain.EventCancelled, domain.ReasonCancelled, err)
		} else {
			o.fail(execLog, res, domain.EventWriterFailed, domain.ReasonWriterFailed, err)
		}
		return nil, ""
	}
	if o.tel != nil {
		o.tel.RecordRescue(ctx, "regenerate")
	}
	return rescued, domain.EventRegenerated
}

func (o *Orchestrator) preflightPhase(ctx context.Context, job *domain.JobInput) (*domain.PreflightResult, error) {
	start := time.Now()
	ctx, end := o.startSpan(ctx, "preflight")
	defer end()
	defer o.observePhase(ctx, "preflight", start)

	if err := o.admit(ctx); err != nil {
		return nil, domain.NewCollaboratorError("preflight", err)
	}
	pf, err := o.preflight.Profile(ctx, job)
	if err != nil {
		return nil, domain.NewCollaboratorError("preflight", err)
	}
	return pf, nil
}

func (o *Orchestrator) writePhase(ctx context.Context, backend writer.Collaborator, job *domain.JobInput, pf *domain.PreflightResult, guidance *writer.Guidance) (*domain.Draft, error) {
	start := time.Now()
	ctx, end := o.startSpan(ctx, "write")
	defer end()
	defer o.observePhase(ctx, "write", start)

	if err := o.admit(ctx); err != nil {
		return nil, domain.NewCollaboratorError("writer", err)
	}
	draft, err := backend.Generate(ctx, job, pf, guidance)
	if err != nil {
		return nil, domain.NewCollaboratorError("writer", err)
	}
	if o.tel != nil {
		o.tel.RecordWriterUsage(ctx, backend.Name(), draft.InputTokens, draft.OutputTokens)
	}
	return draft, nil
}

func (o *Orchestrator) qcPhase(ctx context.Context, job *domain.JobInput, pf *domain.PreflightResult, draft *domain.Draft, pass string) *domain.QCReport {
	start := time.Now()
	ctx, end := o.startSpan(ctx, "qc")
	defer end()
	defer o.observePhase(ctx, "qc", start)

	report := o.qc.Evaluate(job, pf, draft)
	if o.tel != nil {
		o.tel.RecordQC(ctx, report, pass)
	}
	return report
}

func (o *Orchestrator) admit(ctx context.Context) error {
	start := time.Now()
	err := o.gate.Admit(ctx)
	if o.tel != nil {
		o.tel.RecordGateWait(time.Since(start))
	}
	return err
}

// fail records the failing event and the abort transition, and stamps the
// structured reason on the result.
func (o *Orchestrator) fail(execLog *executionLog, res *domain.JobResult, event domain.Event, reason domain.AbortReason, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	res.AbortReason = reason
	res.AbortDetail = detail
	if recErr := execLog.Record(event, detail); recErr != nil {
		o.invariant(execLog, res, recErr)
		return
	}
	o.transition(execLog, res, domain.StateAborted, event, string(reason))
}

// transition applies a state change, escalating refusal to an invariant
// violation.
func (o *Orchestrator) transition(execLog *executionLog, res *domain.JobResult, to domain.JobState, event domain.Event, summary string) {
	if err := execLog.Transition(to, event, summary); err != nil {
		o.invariant(execLog, res, err)
	}
}

// invariant handles a should-never-happen condition: a transition attempted
// from a terminal state. It is logged with full state context and surfaces on
// the result as an abort reason when the job has not already delivered.
func (o *Orchestrator) invariant(execLog *executionLog, res *domain.JobResult, err error) {
	o.log.Error("state machine invariant violated",
		logger.String("job_id", res.JobID),
		logger.String("state", string(execLog.Current())),
		logger.Error(err))
	if execLog.Current() != domain.StateDelivered {
		res.AbortReason = domain.ReasonInvariantViolation
		res.AbortDetail = err.Error()
	}
}

// startSpan opens a trace span for a phase. The returned context carries the
// span; end is a no-op when telemetry is absent.
func (o *Orchestrator) startSpan(ctx context.Context, name string) (context.Context, func()) {
	if o.tel == nil {
		return ctx, func() {}
	}
	spanCtx, span := o.tel.StartSpan(ctx, name)
	return spanCtx, func() { span.End() }
}

func (o *Orchestrator) observePhase(ctx context.Context, phase string, start time.Time) {
	if o.tel != nil {
		o.tel.RecordPhase(ctx, phase, time.Since(start))
	}
}

func draftSummary(d *domain.Draft) string {
	return fmt.Sprintf("provider=%s hash=%.12s tokens=%d/%d", d.Provider, d.ContentHash, d.InputTokens, d.OutputTokens)
}

func reportSummary(r *domain.QCReport) string {
	return fmt.Sprintf("status=%s score=%d critical_fails=%d", r.Status, r.OverallScore, len(r.CriticalFails))
}
