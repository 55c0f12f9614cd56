// Package pipeline defines core types shared across subsystems.
package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// Locator identifies one fetchable resource (a URL). Locators are created
// once at startup and consumed exactly once by exactly one worker.
type Locator string

// ParseOptions is the configuration bag handed to the record parser.
type ParseOptions struct {
	// Encoding names the text encoding of the payload ("utf-8" default).
	Encoding string `json:"encoding" mapstructure:"encoding"`
	// Comma is the field delimiter; zero means ','.
	Comma rune `json:"comma,omitempty" mapstructure:"comma"`
	// LazyQuotes relaxes quote handling for sloppy real-world files.
	LazyQuotes bool `json:"lazy_quotes" mapstructure:"lazy_quotes"`
	// TrimHeader strips whitespace and stray quotes from header cells.
	TrimHeader bool `json:"trim_header" mapstructure:"trim_header"`
}

// RecordSet is the tabular result of parsing one payload.
type RecordSet struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// FirstRowPreview renders the first row's first n fields keyed by header,
// in header order. An empty record set previews as "{}".
func (rs *RecordSet) FirstRowPreview(n int) string {
	if rs.Len() == 0 || n <= 0 {
		return "{}"
	}
	row := rs.Rows[0]
	if n > len(row) {
		n = len(row)
	}
	pairs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("col%d", i)
		if i < len(rs.Header) {
			key = rs.Header[i]
		}
		pairs = append(pairs, fmt.Sprintf("%s: %s", key, row[i]))
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// FetchRequest captures everything needed to fetch a locator.
type FetchRequest struct {
	URL      Locator
	WorkerID int
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        Locator
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Result is the per-locator outcome reported by the processor. It is
// ephemeral: created, logged, and dropped.
type Result struct {
	URL      Locator
	WorkerID int
	Rows     int
	Bytes    int
	Elapsed  time.Duration
	Err      error
}
