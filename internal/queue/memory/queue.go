// Package memory provides the in-memory shared queue drained by the
// worker pool. The pipeline's lifetime is a single run, so nothing here
// persists.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tabrun/tabfetch/internal/pipeline"
)

// Queue is an unbounded FIFO of locators with join/drain semantics.
//
// Outstanding counts items enqueued but not yet marked done, so Join
// observes in-flight work, not just buffer depth. Safe for concurrent
// producers and N concurrent consumers.
type Queue struct {
	mu          sync.Mutex
	items       []pipeline.Locator
	outstanding int

	// notEmpty carries a wake-up per transition to a non-empty buffer.
	notEmpty chan struct{}
	// idle is closed while outstanding == 0 and replaced when work arrives.
	idle chan struct{}
}

// NewQueue constructs an empty, drained queue.
func NewQueue() *Queue {
	idle := make(chan struct{})
	close(idle)
	return &Queue{
		notEmpty: make(chan struct{}, 1),
		idle:     idle,
	}
}

// Enqueue appends one locator and increments the outstanding count.
func (q *Queue) Enqueue(ctx context.Context, item pipeline.Locator) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("enqueue canceled: %w", err)
	}
	q.mu.Lock()
	q.items = append(q.items, item)
	if q.outstanding == 0 {
		q.idle = make(chan struct{})
	}
	q.outstanding++
	q.mu.Unlock()

	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue removes and returns the oldest locator, blocking until one is
// available or the context ends. Each locator is delivered to exactly one
// caller.
func (q *Queue) Dequeue(ctx context.Context) (pipeline.Locator, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items = q.items[1:]
			remaining := len(q.items)
			q.mu.Unlock()
			if remaining > 0 {
				// Pass the wake-up along so sibling consumers are not
				// stranded behind a consumed signal.
				select {
				case q.notEmpty <- struct{}{}:
				default:
				}
			}
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("dequeue canceled: %w", ctx.Err())
		case <-q.notEmpty:
		}
	}
}

// MarkDone records completion of one dequeued item. Calling it more times
// than items were enqueued panics, matching misuse of sync.WaitGroup.
func (q *Queue) MarkDone() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.outstanding == 0 {
		panic("memory: MarkDone called with no outstanding items")
	}
	q.outstanding--
	if q.outstanding == 0 {
		close(q.idle)
	}
}

// Join blocks until every enqueued locator has been dequeued and marked
// done, or the context ends.
func (q *Queue) Join(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("join canceled: %w", ctx.Err())
	case <-idle:
		return nil
	}
}

// Outstanding reports the number of items not yet fully processed.
func (q *Queue) Outstanding() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.outstanding
}

// Depth reports the number of buffered (not yet dequeued) items.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
