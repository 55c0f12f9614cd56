package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tabrun/tabfetch/internal/progress"
)

// PrometheusSink exports pipeline progress metrics via Prometheus. It owns
// collectors for run lifecycle and per-site item counters, independent of
// the package-level collectors in internal/metrics.
type PrometheusSink struct {
	runsStarted prometheus.Counter
	runsDone    prometheus.Counter
	runDuration prometheus.Histogram

	itemsStarted *prometheus.CounterVec
	itemErrors   *prometheus.CounterVec
	fetchBytes   *prometheus.CounterVec
	parseRows    prometheus.Counter
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_runs_started_total",
			Help: "Total pipeline runs that have started.",
		}),
		runsDone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_runs_completed_total",
			Help: "Total pipeline runs that drained and shut down.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_progress_run_seconds",
			Help:    "Wall time per completed run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		itemsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_progress_items_started_total",
			Help: "Work items dequeued, partitioned by site.",
		}, []string{"site"}),
		itemErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_progress_item_errors_total",
			Help: "Work items that failed, partitioned by site.",
		}, []string{"site"}),
		fetchBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_progress_fetch_bytes_total",
			Help: "Bytes downloaded per site.",
		}, []string{"site"}),
		parseRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_progress_parsed_rows_total",
			Help: "Total rows parsed across all record sets.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsDone,
		s.runDuration,
		s.itemsStarted,
		s.itemErrors,
		s.fetchBytes,
		s.parseRows,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors from the provided batch. It is
// safe for concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
	case progress.StageRunDone:
		s.runsDone.Inc()
		if evt.Dur > 0 {
			s.runDuration.Observe(evt.Dur.Seconds())
		}
	case progress.StageItemStart:
		s.itemsStarted.WithLabelValues(siteLabel(evt)).Inc()
	case progress.StageFetchDone:
		if evt.Bytes > 0 {
			s.fetchBytes.WithLabelValues(siteLabel(evt)).Add(float64(evt.Bytes))
		}
	case progress.StageParseDone:
		if evt.Rows > 0 {
			s.parseRows.Add(float64(evt.Rows))
		}
	case progress.StageItemError:
		s.itemErrors.WithLabelValues(siteLabel(evt)).Inc()
	}
}

func siteLabel(evt progress.Event) string {
	if evt.Site == "" {
		return "unknown"
	}
	return evt.Site
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
