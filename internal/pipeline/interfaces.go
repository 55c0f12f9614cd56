package pipeline

import (
	"context"
	"time"
)

// Fetcher retrieves one locator and returns the raw payload plus metadata.
// Implementations enforce their own hard per-fetch timeout.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Parser converts a raw payload into a RecordSet. Implementations must be
// deterministic for a given payload+options pair and must report malformed
// input as an error rather than corrupting shared state.
type Parser interface {
	Parse(raw []byte, opts ParseOptions) (*RecordSet, error)
}

// Queue provides the shared work buffer drained by the worker pool.
//
// Dequeue blocks until an item is available or the context ends; every
// enqueued locator is delivered to exactly one caller. MarkDone must be
// called once per dequeued-and-processed item. Join blocks until the
// outstanding count (enqueued minus marked done) reaches zero. Join waits
// on MarkDone, not on Dequeue, so items still in flight hold it open.
type Queue interface {
	Enqueue(ctx context.Context, item Locator) error
	Dequeue(ctx context.Context) (Locator, error)
	MarkDone()
	Join(ctx context.Context) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
