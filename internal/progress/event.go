package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart  Stage = "RUN_START"
	StageRunDone   Stage = "RUN_DONE"
	StageItemStart Stage = "ITEM_START"
	StageFetchDone Stage = "FETCH_DONE"
	StageParseDone Stage = "PARSE_DONE"
	StageItemError Stage = "ITEM_ERROR"
)

// Event captures a single milestone of pipeline progress.
type Event struct {
	// RunID uniquely identifies a pipeline run using the 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which lifecycle or item milestone occurred.
	Stage Stage
	// WorkerID names the worker that emitted the event; -1 for run-level events.
	WorkerID int
	// Site optionally scopes item events to a host label.
	Site string
	// URL is the locator being processed, empty for run-level events.
	URL string
	// Bytes carries the payload size for fetch completions.
	Bytes int64
	// Rows carries the parsed row count for parse completions.
	Rows int64
	// Dur captures execution latency for item spans and run completion.
	Dur time.Duration
	// Note lets emitters attach low-volume debug context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone:
	case StageItemStart, StageParseDone:
		if e.URL == "" {
			return fmt.Errorf("%s requires url", e.Stage)
		}
	case StageFetchDone:
		if e.URL == "" {
			return errors.New("fetch done requires url")
		}
		if e.Site == "" {
			return errors.New("fetch done requires site")
		}
	case StageItemError:
		if e.URL == "" {
			return errors.New("item error requires url")
		}
		if e.Note == "" {
			return errors.New("item error requires note")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID for reporting.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
