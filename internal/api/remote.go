package api

import (
	"errors"
	"sync"
)

// ErrOverrideDisabled is returned when a remote override is requested but
// the daemon was not started with remote overrides allowed.
var ErrOverrideDisabled = errors.New("remote override is disabled")

// RemoteInput is a lock.Input fed by HTTP requests. Each request latches
// until the next poll consumes it.
type RemoteInput struct {
	allowOverride bool

	mu       sync.Mutex
	enroll   bool
	unlock   bool
	override bool
}

func NewRemoteInput(allowOverride bool) *RemoteInput {
	return &RemoteInput{allowOverride: allowOverride}
}

func (r *RemoteInput) RequestEnroll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enroll = true
}

func (r *RemoteInput) RequestUnlock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unlock = true
}

// RequestOverride latches a single override pulse.
func (r *RemoteInput) RequestOverride() error {
	if !r.allowOverride {
		return ErrOverrideDisabled
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.override = true
	return nil
}

// OverrideAllowed reports whether RequestOverride can succeed.
func (r *RemoteInput) OverrideAllowed() bool { return r.allowOverride }

func (r *RemoteInput) EnrollRequested() bool { return r.take(&r.enroll) }
func (r *RemoteInput) UnlockRequested() bool { return r.take(&r.unlock) }
func (r *RemoteInput) OverrideEngaged() bool { return r.take(&r.override) }

func (r *RemoteInput) take(flag *bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	hit := *flag
	*flag = false
	return hit
}
