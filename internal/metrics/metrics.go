// Package metrics exposes Prometheus collectors for the fetch pipeline.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pipelineItemsTotal         *prometheus.CounterVec
	pipelineBytesTotal         *prometheus.CounterVec
	pipelineFetchDurationSecs  *prometheus.HistogramVec
	pipelineParseDurationSecs  prometheus.Histogram
	pipelineActiveWorkers      prometheus.Gauge
	pipelineQueueOutstanding   prometheus.Gauge
	pipelineRunDurationSeconds prometheus.Histogram

	once sync.Once
)

// Item outcome labels recorded on pipeline_items_total.
const (
	StatusSucceeded  = "succeeded"
	StatusFetchError = "fetch_error"
	StatusParseError = "parse_error"
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pipelineItemsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_items_total",
				Help: "Total work items processed, labeled by site and outcome.",
			},
			[]string{"site", "status"},
		)

		pipelineBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_bytes_total",
				Help: "Total payload bytes fetched, labeled by site.",
			},
			[]string{"site"},
		)

		pipelineFetchDurationSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_fetch_duration_seconds",
				Help:    "Histogram of fetch latencies, labeled by site.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"site"},
		)

		pipelineParseDurationSecs = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipeline_parse_duration_seconds",
				Help:    "Histogram of parse latencies including the post-parse delay.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
		)

		pipelineActiveWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeline_active_workers",
				Help: "Number of workers currently processing an item.",
			},
		)

		pipelineQueueOutstanding = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeline_queue_outstanding",
				Help: "Items enqueued but not yet marked done.",
			},
		)

		pipelineRunDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipeline_run_duration_seconds",
				Help:    "Histogram of whole-run durations.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveItem records one finished work item.
func ObserveItem(site, status string, bytesFetched int) {
	if pipelineItemsTotal == nil {
		return
	}
	s := SanitizeSite(site)
	pipelineItemsTotal.WithLabelValues(s, status).Inc()
	if bytesFetched > 0 {
		pipelineBytesTotal.WithLabelValues(s).Add(float64(bytesFetched))
	}
}

// ObserveFetch records the latency of one fetch.
func ObserveFetch(site string, d time.Duration) {
	if pipelineFetchDurationSecs == nil {
		return
	}
	pipelineFetchDurationSecs.WithLabelValues(SanitizeSite(site)).Observe(d.Seconds())
}

// ObserveParse records the latency of one parse span.
func ObserveParse(d time.Duration) {
	if pipelineParseDurationSecs == nil {
		return
	}
	pipelineParseDurationSecs.Observe(d.Seconds())
}

// WorkerActive adjusts the active-worker gauge by delta.
func WorkerActive(delta float64) {
	if pipelineActiveWorkers == nil {
		return
	}
	pipelineActiveWorkers.Add(delta)
}

// SetOutstanding publishes the queue's outstanding count.
func SetOutstanding(n int) {
	if pipelineQueueOutstanding == nil {
		return
	}
	pipelineQueueOutstanding.Set(float64(n))
}

// ObserveRun records the duration of a whole pipeline run.
func ObserveRun(d time.Duration) {
	if pipelineRunDurationSeconds == nil {
		return
	}
	pipelineRunDurationSeconds.Observe(d.Seconds())
}
