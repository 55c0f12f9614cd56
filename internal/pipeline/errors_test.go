package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutNetErr struct{}

func (timeoutNetErr) Error() string   { return "i/o timeout" }
func (timeoutNetErr) Timeout() bool   { return true }
func (timeoutNetErr) Temporary() bool { return true }

func TestClassifyFetchError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want FetchErrorKind
	}{
		{"deadline exceeded", context.DeadlineExceeded, FetchTimeout},
		{"wrapped deadline", fmt.Errorf("fetch canceled: %w", context.DeadlineExceeded), FetchTimeout},
		{"net timeout", timeoutNetErr{}, FetchTimeout},
		{"refused", errors.New("connection refused"), FetchTransport},
		{"canceled", context.Canceled, FetchTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ClassifyFetchError("https://example.com/a.csv", tt.err)
			if got.Kind != tt.want {
				t.Fatalf("ClassifyFetchError(%v).Kind = %v, want %v", tt.err, got.Kind, tt.want)
			}
			if got.URL != "https://example.com/a.csv" {
				t.Fatalf("expected locator carried through, got %q", got.URL)
			}
			if !errors.Is(got, tt.err) {
				t.Fatalf("expected %v to unwrap to %v", got, tt.err)
			}
		})
	}
}

func TestIsTimeout(t *testing.T) {
	t.Parallel()

	timeout := &FetchError{Kind: FetchTimeout, URL: "u"}
	transport := &FetchError{Kind: FetchTransport, URL: "u"}

	if !IsTimeout(timeout) {
		t.Fatal("expected timeout error to be recognized")
	}
	if !IsTimeout(fmt.Errorf("processing: %w", timeout)) {
		t.Fatal("expected wrapped timeout error to be recognized")
	}
	if IsTimeout(transport) {
		t.Fatal("transport error misclassified as timeout")
	}
	if IsTimeout(errors.New("other")) {
		t.Fatal("plain error misclassified as timeout")
	}
}

func TestFetchErrorMessage(t *testing.T) {
	t.Parallel()

	err := &FetchError{Kind: FetchTimeout, URL: "https://example.com", Err: context.DeadlineExceeded}
	want := "fetch timeout error for https://example.com: context deadline exceeded"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestParseErrorMessage(t *testing.T) {
	t.Parallel()

	err := &ParseError{Kind: ParseUnsupportedOptions, Err: errors.New(`unsupported encoding "koi8-r"`)}
	want := `parse unsupported_options error: unsupported encoding "koi8-r"`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
	var pe *ParseError
	if !errors.As(fmt.Errorf("wrap: %w", err), &pe) {
		t.Fatal("expected errors.As to find ParseError")
	}
}
