package collyfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tabrun/tabfetch/internal/pipeline"
)

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("x,y\n1,2\n"))
	}))
	defer srv.Close()

	f := New(Config{Timeout: 2 * time.Second})
	defer f.Close()

	resp, err := f.Fetch(context.Background(), pipeline.FetchRequest{URL: pipeline.Locator(srv.URL)})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []byte("x,y\n1,2\n"), resp.Body)
	require.Greater(t, resp.Duration, time.Duration(0))
}

func TestFetchNotFoundIsTransport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	f := New(Config{Timeout: 2 * time.Second})
	defer f.Close()

	_, err := f.Fetch(context.Background(), pipeline.FetchRequest{URL: pipeline.Locator(srv.URL + "/missing.csv")})
	var fe *pipeline.FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, pipeline.FetchTransport, fe.Kind)
}

func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte("too late"))
	}))
	defer srv.Close()
	defer close(release)

	f := New(Config{Timeout: 100 * time.Millisecond})
	defer f.Close()

	start := time.Now()
	_, err := f.Fetch(context.Background(), pipeline.FetchRequest{URL: pipeline.Locator(srv.URL)})
	require.Error(t, err)
	require.True(t, pipeline.IsTimeout(err), "expected timeout classification, got %v", err)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestFetchConnectionRefusedIsTransport(t *testing.T) {
	t.Parallel()

	f := New(Config{Timeout: time.Second})
	defer f.Close()

	// Port 1 on localhost is essentially never listening.
	_, err := f.Fetch(context.Background(), pipeline.FetchRequest{URL: "http://127.0.0.1:1/a.csv"})
	var fe *pipeline.FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, pipeline.FetchTransport, fe.Kind)
}

func TestFetchDefaultTimeoutApplied(t *testing.T) {
	t.Parallel()

	f := New(Config{})
	require.Equal(t, defaultTimeout, f.cfg.Timeout)
}
