package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tabrun/tabfetch/internal/metrics"
	"github.com/tabrun/tabfetch/internal/pipeline"
	"github.com/tabrun/tabfetch/internal/processor"
	"github.com/tabrun/tabfetch/internal/queue/memory"
	"github.com/tabrun/tabfetch/internal/timing"
)

type stubFetcher struct {
	mu    sync.Mutex
	calls []pipeline.Locator
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, req pipeline.FetchRequest) (pipeline.FetchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.URL)
	f.mu.Unlock()
	if f.err != nil {
		return pipeline.FetchResponse{}, f.err
	}
	return pipeline.FetchResponse{Body: []byte("x,y\n1,2"), StatusCode: 200}, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type stubParser struct{}

func (stubParser) Parse([]byte, pipeline.ParseOptions) (*pipeline.RecordSet, error) {
	return &pipeline.RecordSet{Header: []string{"x", "y"}, Rows: [][]string{{"1", "2"}}}, nil
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func newTestWorker(id int, q pipeline.Queue, fetcher pipeline.Fetcher) *Worker {
	metrics.Init()
	proc := processor.New(
		fetcher,
		stubParser{},
		systemClock{},
		timing.New(zap.NewNop(), nil),
		nil,
		[16]byte{1},
		processor.Config{PreviewFields: 5},
		zap.NewNop(),
	)
	return New(id, q, proc, zap.NewNop())
}

func TestWorkerProcessesAndMarksDone(t *testing.T) {
	t.Parallel()

	q := memory.NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Enqueue(ctx, "https://example.com/a.csv"))
	require.NoError(t, q.Enqueue(ctx, "https://example.com/b.csv"))

	fetcher := &stubFetcher{}
	w := newTestWorker(0, q, fetcher)

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.NoError(t, q.Join(context.Background()))
	require.Equal(t, 2, fetcher.callCount())
	require.Equal(t, 0, q.Outstanding())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not observe cancellation at the dequeue boundary")
	}
}

func TestWorkerMarksDoneOnProcessingFailure(t *testing.T) {
	t.Parallel()

	q := memory.NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Enqueue(ctx, "https://example.com/broken.csv"))

	fetcher := &stubFetcher{err: &pipeline.FetchError{Kind: pipeline.FetchTransport, URL: "u"}}
	w := newTestWorker(1, q, fetcher)

	go w.Run(ctx)

	joinCtx, joinCancel := context.WithTimeout(context.Background(), time.Second)
	defer joinCancel()
	require.NoError(t, q.Join(joinCtx), "queue must drain even when every item fails")
}

func TestWorkerExitsWhenIdleAndCanceled(t *testing.T) {
	t.Parallel()

	q := memory.NewQueue()
	ctx, cancel := context.WithCancel(context.Background())

	w := newTestWorker(2, q, &stubFetcher{})

	var exited atomic.Bool
	go func() {
		w.Run(ctx)
		exited.Store(true)
	}()

	time.Sleep(20 * time.Millisecond)
	require.False(t, exited.Load(), "worker should block in dequeue while queue is empty")

	cancel()
	require.Eventually(t, exited.Load, time.Second, 10*time.Millisecond)
}

func TestWorkerID(t *testing.T) {
	t.Parallel()

	w := newTestWorker(7, memory.NewQueue(), &stubFetcher{})
	require.Equal(t, 7, w.ID())
}
