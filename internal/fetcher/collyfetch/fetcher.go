// Package collyfetch implements pipeline.Fetcher using gocolly.
package collyfetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/tabrun/tabfetch/internal/pipeline"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	// Timeout is the hard per-fetch budget; zero means 5s.
	Timeout time.Duration
}

const defaultTimeout = 5 * time.Second

// Fetcher retrieves raw payloads through a shared Colly collector. The
// underlying pooled transport is the shared network context for the whole
// worker pool; its connection pool is internally thread-safe, so one
// Fetcher serves all workers concurrently.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// New builds a Fetcher over one pooled transport.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true

	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// Close releases idle pooled connections. Call after all workers stop.
func (f *Fetcher) Close() {
	if t, ok := f.transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

// Fetch executes a single HTTP GET, enforcing the configured timeout.
// Failures come back as *pipeline.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, request pipeline.FetchRequest) (pipeline.FetchResponse, error) {
	var (
		result   pipeline.FetchResponse
		fetchErr error
	)
	start := time.Now()

	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(f.cfg.Timeout)
	collector.WithTransport(f.transport)

	collector.OnResponse(func(r *colly.Response) {
		result = pipeline.FetchResponse{
			URL:        request.URL,
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			fetchErr = fmt.Errorf("unexpected status %d: %w", r.StatusCode, err)
			return
		}
		fetchErr = err
	})

	if err := f.runCollector(ctx, collector, request.URL); err != nil {
		return pipeline.FetchResponse{}, pipeline.ClassifyFetchError(request.URL, err)
	}
	if fetchErr != nil {
		return pipeline.FetchResponse{}, pipeline.ClassifyFetchError(request.URL, fetchErr)
	}
	if result.StatusCode < 200 || result.StatusCode >= 300 {
		return pipeline.FetchResponse{}, &pipeline.FetchError{
			Kind: pipeline.FetchTransport,
			URL:  request.URL,
			Err:  fmt.Errorf("unexpected status %d", result.StatusCode),
		}
	}
	return result, nil
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url pipeline.Locator) error {
	deadline, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(string(url))
	}()

	select {
	case <-deadline.Done():
		return fmt.Errorf("fetch canceled: %w", deadline.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit failed: %w", err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
