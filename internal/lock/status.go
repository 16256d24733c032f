package lock

import (
	"sync"
	"time"
)

// Status is a point-in-time view of a Controller, safe to hand to other
// goroutines.
type Status struct {
	State              State     `json:"state"`
	Phase              string    `json:"phase"`
	Busy               bool      `json:"busy"`
	Enrolled           bool      `json:"enrolled"`
	CredentialLength   int       `json:"credential_length"`
	FailedAttempts     int       `json:"failed_attempts"`
	MaxAttempts        int       `json:"max_attempts"`
	LockedOut          bool      `json:"locked_out"`
	LockoutRemainingMs int64     `json:"lockout_remaining_ms"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// StatusBoard holds the most recently published Status.
type StatusBoard struct {
	mu     sync.RWMutex
	status Status
}

// Publish replaces the current snapshot.
func (b *StatusBoard) Publish(s Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = s
}

// Snapshot returns the current snapshot.
func (b *StatusBoard) Snapshot() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// StatusSink republishes a Controller's status when a capture takes its
// first sample, so readers of Board see Busy while a Runner step is blocked
// in the capture. Controller may be set after the sink is handed to
// NewController.
type StatusSink struct {
	Board      *StatusBoard
	Controller *Controller
}

// Emit implements Sink.
func (s *StatusSink) Emit(e Event) {
	if s.Board == nil || s.Controller == nil {
		return
	}
	if e.Kind == EventSampleProgress && e.Index == 0 {
		s.Board.Publish(s.Controller.Status(e.Time))
	}
}
