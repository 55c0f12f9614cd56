// Package timing provides span timers that report elapsed wall time in
// the pipeline's "took: <seconds>" log format.
package timing

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tabrun/tabfetch/internal/pipeline"
)

// Timer measures labeled spans and logs them with four-decimal seconds.
type Timer struct {
	logger *zap.Logger
	clock  pipeline.Clock
}

// New constructs a Timer. A nil logger logs nowhere; a nil clock falls
// back to a monotonic wall clock.
func New(logger *zap.Logger, clock pipeline.Clock) *Timer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = wallClock{}
	}
	return &Timer{logger: logger, clock: clock}
}

// Track starts a span and returns a stop function that logs
// "<label> -> took: <seconds, 4 decimals>" and reports the elapsed time.
func (t *Timer) Track(label string, fields ...zap.Field) func() time.Duration {
	start := t.clock.Now()
	return func() time.Duration {
		elapsed := t.clock.Now().Sub(start)
		msg := fmt.Sprintf("%s -> took: %.4f", label, elapsed.Seconds())
		t.logger.Info(msg, fields...)
		return elapsed
	}
}

type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now()
}
