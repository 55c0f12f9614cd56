// Package dispatcher owns the pipeline run: it pre-loads the shared queue,
// fans out a fixed pool of workers, waits for the queue to drain, then
// cancels the workers at their dequeue boundary.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tabrun/tabfetch/internal/metrics"
	"github.com/tabrun/tabfetch/internal/pipeline"
	"github.com/tabrun/tabfetch/internal/processor"
	"github.com/tabrun/tabfetch/internal/progress"
	"github.com/tabrun/tabfetch/internal/queue/memory"
	"github.com/tabrun/tabfetch/internal/timing"
	"github.com/tabrun/tabfetch/internal/worker"
)

// Config controls a pipeline run.
type Config struct {
	// Workers is the pool size; 1 yields the sequential variant. Zero
	// defaults to 5.
	Workers int
	// Processor is forwarded to every worker's processor.
	Processor processor.Config
}

// Dispatcher builds and runs one bounded-concurrency fetch-and-parse run.
type Dispatcher struct {
	fetcher pipeline.Fetcher
	parser  pipeline.Parser
	clock   pipeline.Clock
	emitter progress.Emitter
	cfg     Config
	logger  *zap.Logger
}

// New creates a Dispatcher.
func New(
	fetcher pipeline.Fetcher,
	parser pipeline.Parser,
	clock pipeline.Clock,
	emitter progress.Emitter,
	cfg Config,
	logger *zap.Logger,
) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		fetcher: fetcher,
		parser:  parser,
		clock:   clock,
		emitter: emitter,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run processes every locator through the worker pool and returns once all
// items are marked done and every worker has observed cancellation. The
// whole-run elapsed time is logged as a single summary line. Only setup
// failures and external cancellation produce an error; per-item failures
// are logged and swallowed downstream.
func (d *Dispatcher) Run(ctx context.Context, locators []pipeline.Locator) error {
	runID := uuid.New()
	start := d.clock.Now()
	timer := timing.New(d.logger, d.clock)
	stop := timer.Track("Entire Run", zap.String("run_id", runID.String()))

	q := memory.NewQueue()
	for _, loc := range locators {
		if err := q.Enqueue(ctx, loc); err != nil {
			return fmt.Errorf("preload queue: %w", err)
		}
	}
	metrics.SetOutstanding(q.Outstanding())
	d.logger.Info("queue preloaded",
		zap.String("run_id", runID.String()),
		zap.Int("locators", len(locators)),
		zap.Int("workers", d.cfg.Workers),
	)
	d.emit(progress.Event{RunID: progress.UUIDToBytes(runID), Stage: progress.StageRunStart, WorkerID: -1})

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		proc := processor.New(
			d.fetcher,
			d.parser,
			d.clock,
			timer,
			d.emitter,
			progress.UUIDToBytes(runID),
			d.cfg.Processor,
			d.logger,
		)
		wk := worker.New(i, q, proc, d.logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			wk.Run(workerCtx)
		}()
	}

	joinErr := q.Join(ctx)

	// Workers only observe cancellation while blocked in Dequeue, never
	// mid-item, so in-flight work is never abandoned.
	cancelWorkers()
	wg.Wait()
	metrics.SetOutstanding(q.Outstanding())

	elapsed := stop()
	metrics.ObserveRun(elapsed)
	d.emit(progress.Event{
		RunID:    progress.UUIDToBytes(runID),
		Stage:    progress.StageRunDone,
		WorkerID: -1,
		Dur:      elapsed,
	})
	d.logger.Info("run finished",
		zap.String("run_id", runID.String()),
		zap.Int("locators", len(locators)),
		zap.Duration("elapsed", d.clock.Now().Sub(start)),
	)

	if joinErr != nil {
		return fmt.Errorf("wait for drain: %w", joinErr)
	}
	return nil
}

func (d *Dispatcher) emit(evt progress.Event) {
	if d.emitter == nil {
		return
	}
	evt.TS = d.clock.Now()
	d.emitter.Emit(evt)
}
