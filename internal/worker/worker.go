// Package worker implements the pipeline execution loop.
package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/tabrun/tabfetch/internal/metrics"
	"github.com/tabrun/tabfetch/internal/pipeline"
	"github.com/tabrun/tabfetch/internal/processor"
)

// Worker consumes queue items and executes the fetch/parse pipeline.
// Its identity is assigned at construction and never changes.
type Worker struct {
	id     int
	queue  pipeline.Queue
	proc   *processor.Processor
	logger *zap.Logger
}

// New constructs a Worker.
func New(id int, queue pipeline.Queue, proc *processor.Processor, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		id:     id,
		queue:  queue,
		proc:   proc,
		logger: logger,
	}
}

// ID returns the worker's identity.
func (w *Worker) ID() int {
	return w.id
}

// Run blocks, consuming queue items until the context finishes. Cancellation
// is observed only while blocked in Dequeue: the processor swallows all
// per-item failures, so an item once dequeued is always carried through and
// marked done before the loop can exit.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Debug("worker canceled", zap.Int("worker_id", w.id))
				return
			}
			w.logger.Error("queue dequeue failed", zap.Int("worker_id", w.id), zap.Error(err))
			continue
		}

		metrics.WorkerActive(1)
		w.proc.Process(ctx, item, w.id)
		metrics.WorkerActive(-1)
		w.queue.MarkDone()
	}
}
