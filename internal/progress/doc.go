// Package progress provides the event primitives, non-blocking hub, and
// emitter interfaces that workers use to report pipeline progress. Events
// are batched on a background goroutine and fanned out to pluggable sinks
// such as structured logs or Prometheus metrics.
package progress
