// Package processor implements the per-item fetch/parse/report cycle.
package processor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tabrun/tabfetch/internal/metrics"
	"github.com/tabrun/tabfetch/internal/pipeline"
	"github.com/tabrun/tabfetch/internal/progress"
	"github.com/tabrun/tabfetch/internal/timing"
)

// Config controls Processor behavior.
type Config struct {
	// ParseDelay is the fixed post-parse pause standing in for CPU-bound
	// work; zero disables it so tests run at full speed.
	ParseDelay time.Duration
	// PreviewFields is how many leading fields of the first row to log.
	PreviewFields int
	// Options is the bag forwarded verbatim to the parser.
	Options pipeline.ParseOptions
}

// Processor runs one work item end to end: timed fetch, parse, simulated
// processing, preview and timing logs. Every failure inside Process is
// caught, logged with the locator and worker identity, and swallowed; a
// bad resource must never stop the run.
type Processor struct {
	fetcher pipeline.Fetcher
	parser  pipeline.Parser
	clock   pipeline.Clock
	timer   *timing.Timer
	emitter progress.Emitter
	runID   [16]byte
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Processor.
func New(
	fetcher pipeline.Fetcher,
	parser pipeline.Parser,
	clock pipeline.Clock,
	timer *timing.Timer,
	emitter progress.Emitter,
	runID [16]byte,
	cfg Config,
	logger *zap.Logger,
) *Processor {
	if cfg.PreviewFields <= 0 {
		cfg.PreviewFields = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		fetcher: fetcher,
		parser:  parser,
		clock:   clock,
		timer:   timer,
		emitter: emitter,
		runID:   runID,
		cfg:     cfg,
		logger:  logger,
	}
}

// Process executes one work item. It never returns an error and never
// panics; the caller only has to mark the item done afterwards.
func (p *Processor) Process(ctx context.Context, url pipeline.Locator, workerID int) (result pipeline.Result) {
	result = pipeline.Result{URL: url, WorkerID: workerID}
	site := metrics.SanitizeSite(string(url))

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("panic while processing: %v", r)
			p.reportFailure(url, workerID, site, result.Err)
		}
	}()

	stop := p.timer.Track(
		fmt.Sprintf("worker_id=%d url=%s transformation", workerID, url),
		zap.Int("worker_id", workerID),
		zap.String("url", string(url)),
	)
	defer func() {
		result.Elapsed = stop()
	}()

	p.emit(progress.Event{
		Stage:    progress.StageItemStart,
		WorkerID: workerID,
		Site:     site,
		URL:      string(url),
	})
	p.logger.Info("getting url",
		zap.Int("worker_id", workerID),
		zap.String("url", string(url)),
	)

	resp, err := p.fetcher.Fetch(ctx, pipeline.FetchRequest{URL: url, WorkerID: workerID})
	if err != nil {
		result.Err = err
		metrics.ObserveItem(string(url), metrics.StatusFetchError, 0)
		p.reportFailure(url, workerID, site, err)
		return result
	}
	result.Bytes = len(resp.Body)
	metrics.ObserveFetch(string(url), resp.Duration)
	p.emit(progress.Event{
		Stage:    progress.StageFetchDone,
		WorkerID: workerID,
		Site:     site,
		URL:      string(url),
		Bytes:    int64(len(resp.Body)),
		Dur:      resp.Duration,
	})

	p.logger.Info("started to parse payload",
		zap.Int("worker_id", workerID),
		zap.String("url", string(url)),
	)
	parseStart := p.clock.Now()
	records, err := p.parser.Parse(resp.Body, p.cfg.Options)
	if err != nil {
		result.Err = err
		metrics.ObserveItem(string(url), metrics.StatusParseError, len(resp.Body))
		p.reportFailure(url, workerID, site, err)
		return result
	}

	// Stand-in for CPU-bound post-processing; runs on the worker's own
	// goroutine so sibling workers are unaffected.
	if p.cfg.ParseDelay > 0 {
		time.Sleep(p.cfg.ParseDelay)
	}
	parseDur := p.clock.Now().Sub(parseStart)
	metrics.ObserveParse(parseDur)

	result.Rows = records.Len()
	p.emit(progress.Event{
		Stage:    progress.StageParseDone,
		WorkerID: workerID,
		Site:     site,
		URL:      string(url),
		Rows:     int64(records.Len()),
		Dur:      parseDur,
	})
	p.logger.Info("finished parsing payload",
		zap.Int("worker_id", workerID),
		zap.String("url", string(url)),
		zap.Int("rows", records.Len()),
	)
	p.logger.Info("first row preview",
		zap.Int("worker_id", workerID),
		zap.String("url", string(url)),
		zap.String("preview", records.FirstRowPreview(p.cfg.PreviewFields)),
	)

	metrics.ObserveItem(string(url), metrics.StatusSucceeded, len(resp.Body))
	return result
}

func (p *Processor) reportFailure(url pipeline.Locator, workerID int, site string, err error) {
	p.logger.Error("error processing url",
		zap.Int("worker_id", workerID),
		zap.String("url", string(url)),
		zap.Error(err),
	)
	p.emit(progress.Event{
		Stage:    progress.StageItemError,
		WorkerID: workerID,
		Site:     site,
		URL:      string(url),
		Note:     err.Error(),
	})
}

func (p *Processor) emit(evt progress.Event) {
	if p.emitter == nil {
		return
	}
	evt.RunID = p.runID
	evt.TS = p.clock.Now()
	p.emitter.Emit(evt)
}
