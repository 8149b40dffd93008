// Package processor runs batches of jobs through the engine with a worker
// pool. Each job gets an independent orchestrator run; the only shared
// resource is the admission gate.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/robwestz/bacowr/internal/domain"
	"github.com/robwestz/bacowr/internal/engine"
	"github.com/robwestz/bacowr/internal/logger"
	"github.com/robwestz/bacowr/internal/telemetry"
	"github.com/robwestz/bacowr/internal/validator"
)

// BatchResult pairs one input with its terminal result. Err is set only for
// inputs rejected by validation; those never entered the state machine and
// carry no Result.
type BatchResult struct {
	Input  validator.RawInput
	Result *domain.JobResult
	Err    error
}

// BatchProcessor fans a batch out over a fixed worker pool.
type BatchProcessor struct {
	orchestrator *engine.Orchestrator
	concurrency  int
	tel          *telemetry.Provider
	log          logger.Logger
}

// NewBatchProcessor creates a batch processor over the given orchestrator.
// tel may be nil.
func NewBatchProcessor(orchestrator *engine.Orchestrator, concurrency int, tel *telemetry.Provider, log logger.Logger) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 4
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &BatchProcessor{
		orchestrator: orchestrator,
		concurrency:  concurrency,
		tel:          tel,
		log:          log,
	}
}

type indexedInput struct {
	idx int
	raw validator.RawInput
}

// Process runs every input to a terminal outcome and returns results in
// input order. Workers stop picking up new jobs once ctx is done; jobs
// already running finalize as cancelled through the engine.
func (b *BatchProcessor) Process(ctx context.Context, inputs []validator.RawInput) []*BatchResult {
	if len(inputs) == 0 {
		return nil
	}

	b.log.Info("starting batch",
		logger.Int("batch_size", len(inputs)),
		logger.Int("concurrency", b.concurrency))
	if b.tel != nil {
		b.tel.RecordBatchSize(len(inputs))
		b.tel.SetQueueDepth(len(inputs))
		b.tel.SetActiveWorkers(b.concurrency)
		defer b.tel.SetActiveWorkers(0)
		defer b.tel.SetQueueDepth(0)
	}

	start := time.Now()
	jobs := make(chan indexedInput, len(inputs))
	results := make([]*BatchResult, len(inputs))

	var wg sync.WaitGroup
	for i := 0; i < b.concurrency; i++ {
		wg.Add(1)
		go b.worker(ctx, i, jobs, results, &wg)
	}

	for i, raw := range inputs {
		jobs <- indexedInput{idx: i, raw: raw}
	}
	close(jobs)
	wg.Wait()

	delivered, aborted, rejected := 0, 0, 0
	for i := range results {
		if results[i] == nil {
			// worker drained early on cancellation
			results[i] = &BatchResult{Input: inputs[i], Err: ctx.Err()}
		}
		switch {
		case results[i].Err != nil:
			rejected++
		case results[i].Result.FinalState == domain.StateDelivered:
			delivered++
		default:
			aborted++
		}
	}

	b.log.Info("batch complete",
		logger.Int("total", len(inputs)),
		logger.Int("delivered", delivered),
		logger.Int("aborted", aborted),
		logger.Int("rejected", rejected),
		logger.Duration("elapsed", time.Since(start)))
	return results
}

// worker runs jobs until the channel drains or the context is done. Each
// slot in results is written by exactly one worker.
func (b *BatchProcessor) worker(ctx context.Context, id int, jobs <-chan indexedInput, results []*BatchResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			b.log.Warn("worker stopping, context done",
				logger.Int("worker_id", id))
			return
		default:
		}

		result, err := b.orchestrator.Run(ctx, job.raw)
		if err != nil {
			b.log.Warn("job rejected",
				logger.Int("worker_id", id),
				logger.String("publisher", job.raw.PublisherDomain),
				logger.Error(err))
		}
		results[job.idx] = &BatchResult{Input: job.raw, Result: result, Err: err}

		if b.tel != nil {
			b.tel.SetQueueDepth(len(jobs))
		}
	}
}
