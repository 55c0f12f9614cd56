package dispatcher

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tabrun/tabfetch/internal/metrics"
	"github.com/tabrun/tabfetch/internal/parser/csvparse"
	"github.com/tabrun/tabfetch/internal/pipeline"
	"github.com/tabrun/tabfetch/internal/progress"
)

type recordingFetcher struct {
	mu    sync.Mutex
	calls []pipeline.Locator
	body  []byte
	err   error
	delay time.Duration
}

func (f *recordingFetcher) Fetch(_ context.Context, req pipeline.FetchRequest) (pipeline.FetchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.URL)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return pipeline.FetchResponse{}, f.err
	}
	return pipeline.FetchResponse{URL: req.URL, StatusCode: 200, Body: f.body, Duration: time.Millisecond}, nil
}

func (f *recordingFetcher) recorded() []pipeline.Locator {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pipeline.Locator(nil), f.calls...)
}

type captureEmitter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (e *captureEmitter) Emit(evt progress.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, evt)
}

func (e *captureEmitter) count(stage progress.Stage) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, evt := range e.events {
		if evt.Stage == stage {
			n++
		}
	}
	return n
}

type testClock struct{}

func (testClock) Now() time.Time { return time.Now() }

func TestRunDrainsAllLocatorsWithTwoWorkers(t *testing.T) {
	t.Parallel()
	metrics.Init()

	core, logs := observer.New(zap.InfoLevel)
	fetcher := &recordingFetcher{body: []byte("x,y\n1,2")}
	emitter := &captureEmitter{}

	d := New(fetcher, csvparse.New(), testClock{}, emitter, Config{Workers: 2}, zap.New(core))
	err := d.Run(context.Background(), []pipeline.Locator{"A", "B", "C"})
	require.NoError(t, err)

	require.Len(t, fetcher.recorded(), 3)
	require.Equal(t, 3, emitter.count(progress.StageParseDone))
	require.Equal(t, 1, emitter.count(progress.StageRunStart))
	require.Equal(t, 1, emitter.count(progress.StageRunDone))

	var previews, summaries int
	for _, entry := range logs.All() {
		if entry.Message == "first row preview" {
			previews++
		}
		if strings.HasPrefix(entry.Message, "Entire Run -> took:") {
			summaries++
		}
	}
	require.Equal(t, 3, previews, "expected one preview line per locator")
	require.Equal(t, 1, summaries, "expected exactly one run summary timing line")
}

func TestRunSequentialPreservesEnqueueOrder(t *testing.T) {
	t.Parallel()
	metrics.Init()

	fetcher := &recordingFetcher{body: []byte("a\n1")}
	d := New(fetcher, csvparse.New(), testClock{}, nil, Config{Workers: 1}, zap.NewNop())

	locators := []pipeline.Locator{"one", "two", "three", "four"}
	require.NoError(t, d.Run(context.Background(), locators))
	require.Equal(t, locators, fetcher.recorded())
}

func TestRunCompletesWhenEveryFetchTimesOut(t *testing.T) {
	t.Parallel()
	metrics.Init()

	emitter := &captureEmitter{}
	fetcher := &recordingFetcher{err: &pipeline.FetchError{
		Kind: pipeline.FetchTimeout,
		URL:  "A",
		Err:  context.DeadlineExceeded,
	}}

	d := New(fetcher, csvparse.New(), testClock{}, emitter, Config{Workers: 2}, zap.NewNop())
	err := d.Run(context.Background(), []pipeline.Locator{"A"})
	require.NoError(t, err, "a timed-out item must not fail the run")
	require.Equal(t, 1, emitter.count(progress.StageItemError))
	require.Equal(t, 0, emitter.count(progress.StageParseDone))
}

func TestRunCompletesWhenParseFails(t *testing.T) {
	t.Parallel()
	metrics.Init()

	emitter := &captureEmitter{}
	fetcher := &recordingFetcher{body: []byte("a,b\n\"broken\n")}

	d := New(fetcher, csvparse.New(), testClock{}, emitter, Config{Workers: 2}, zap.NewNop())
	err := d.Run(context.Background(), []pipeline.Locator{"A", "B"})
	require.NoError(t, err)
	require.Equal(t, 2, emitter.count(progress.StageItemError))
}

func TestRunSlowItemDoesNotBlockDrain(t *testing.T) {
	t.Parallel()
	metrics.Init()

	fetcher := &recordingFetcher{body: []byte("a\n1"), delay: 50 * time.Millisecond}
	d := New(fetcher, csvparse.New(), testClock{}, nil, Config{Workers: 4}, zap.NewNop())

	start := time.Now()
	require.NoError(t, d.Run(context.Background(), []pipeline.Locator{"A", "B", "C", "D"}))
	// Four items at 50ms each across four workers should overlap.
	require.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestRunEmptyLocatorList(t *testing.T) {
	t.Parallel()
	metrics.Init()

	fetcher := &recordingFetcher{body: []byte("a\n1")}
	d := New(fetcher, csvparse.New(), testClock{}, nil, Config{Workers: 3}, zap.NewNop())
	require.NoError(t, d.Run(context.Background(), nil))
	require.Empty(t, fetcher.recorded())
}

func TestRunCanceledContextReturnsError(t *testing.T) {
	t.Parallel()
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The queue keeps its item; Join observes the canceled context.
	fetcher := &recordingFetcher{body: []byte("a\n1"), delay: 100 * time.Millisecond}
	d := New(fetcher, csvparse.New(), testClock{}, nil, Config{Workers: 1}, zap.NewNop())
	err := d.Run(ctx, []pipeline.Locator{"A"})
	require.Error(t, err)
}

func TestRunDefaultWorkerCount(t *testing.T) {
	t.Parallel()

	d := New(&recordingFetcher{}, csvparse.New(), testClock{}, nil, Config{}, nil)
	require.Equal(t, 5, d.cfg.Workers)
}
