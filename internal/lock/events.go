package lock

import (
	"fmt"
	"time"

	"github.com/banshee-data/gesturelock/internal/gesture"
)

// EventKind identifies what happened.
type EventKind int

const (
	EventRecordingStarted EventKind = iota
	EventSampleProgress
	EventRecordingComplete
	EventCheckingStarted
	EventCheckResult
	EventLocked
	EventUnlocked
	EventRejectedAlreadyLocked
	EventAttemptFailed
	EventLockoutEntered
	EventLockoutTick
	EventLockoutExpired
	EventOverrideApplied
)

var eventKindNames = map[EventKind]string{
	EventRecordingStarted:      "recording_started",
	EventSampleProgress:        "sample_progress",
	EventRecordingComplete:     "recording_complete",
	EventCheckingStarted:       "checking_started",
	EventCheckResult:           "check_result",
	EventLocked:                "locked",
	EventUnlocked:              "unlocked",
	EventRejectedAlreadyLocked: "rejected_already_locked",
	EventAttemptFailed:         "attempt_failed",
	EventLockoutEntered:        "lockout_entered",
	EventLockoutTick:           "lockout_tick",
	EventLockoutExpired:        "lockout_expired",
	EventOverrideApplied:       "override_applied",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *EventKind) UnmarshalText(text []byte) error {
	for kind, name := range eventKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", text)
}

// Event is one piece of feedback from the controller. Which fields are set
// depends on Kind:
//
//   - EventSampleProgress: Index, Sample, Checking
//   - EventRecordingComplete: Length, Checking
//   - EventCheckingStarted: Attempt, MaxAttempts
//   - EventCheckResult: Similarity
//   - EventAttemptFailed: AttemptsRemaining
//   - EventLockoutEntered, EventLockoutTick: Remaining
type Event struct {
	Kind              EventKind      `json:"kind"`
	Time              time.Time      `json:"time"`
	Index             int            `json:"index,omitempty"`
	Sample            gesture.Sample `json:"sample"`
	Length            int            `json:"length,omitempty"`
	Checking          bool           `json:"checking,omitempty"`
	Attempt           int            `json:"attempt,omitempty"`
	MaxAttempts       int            `json:"max_attempts,omitempty"`
	Similarity        float64        `json:"similarity,omitempty"`
	AttemptsRemaining int            `json:"attempts_remaining,omitempty"`
	Remaining         time.Duration  `json:"remaining,omitempty"`
}

// Sink receives controller events. Emit is called synchronously from the
// polling goroutine, including during a capture, so it must not block for
// long.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit calls f.
func (f SinkFunc) Emit(e Event) { f(e) }

// MultiSink fans every event out to each of its sinks in order.
type MultiSink []Sink

// Emit forwards e to every sink.
func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// EventRecorder keeps every event it receives.
type EventRecorder struct {
	Events []Event
}

// Emit appends e.
func (r *EventRecorder) Emit(e Event) {
	r.Events = append(r.Events, e)
}

// Kinds returns the kinds of the recorded events, skipping sample progress
// and lockout ticks.
func (r *EventRecorder) Kinds() []EventKind {
	var out []EventKind
	for _, e := range r.Events {
		if e.Kind == EventSampleProgress || e.Kind == EventLockoutTick {
			continue
		}
		out = append(out, e.Kind)
	}
	return out
}

// Last returns the most recent event of kind k.
func (r *EventRecorder) Last(k EventKind) (Event, bool) {
	for i := len(r.Events) - 1; i >= 0; i-- {
		if r.Events[i].Kind == k {
			return r.Events[i], true
		}
	}
	return Event{}, false
}

// Reset forgets all recorded events.
func (r *EventRecorder) Reset() {
	r.Events = nil
}
