package lock

import "time"

// LockoutTimer tracks one timed suspension window. It is plain bookkeeping:
// callers pass the current time in.
type LockoutTimer struct {
	active   bool
	start    time.Time
	duration time.Duration
}

// NewLockoutTimer returns an inactive timer with a fixed window length.
func NewLockoutTimer(d time.Duration) LockoutTimer {
	return LockoutTimer{duration: d}
}

// Arm starts the window at now.
func (t *LockoutTimer) Arm(now time.Time) {
	t.active = true
	t.start = now
}

// Clear ends the window.
func (t *LockoutTimer) Clear() {
	t.active = false
	t.start = time.Time{}
}

// Active reports whether the window has been armed and not cleared. An
// active timer may already be expired; see IsExpired.
func (t *LockoutTimer) Active() bool { return t.active }

// Duration returns the configured window length.
func (t *LockoutTimer) Duration() time.Duration { return t.duration }

// Start returns when the window was armed.
func (t *LockoutTimer) Start() time.Time { return t.start }

// IsExpired reports whether at least the window length has passed since Arm.
func (t *LockoutTimer) IsExpired(now time.Time) bool {
	return now.Sub(t.start) >= t.duration
}

// Remaining returns the time left in the window, never less than zero.
func (t *LockoutTimer) Remaining(now time.Time) time.Duration {
	left := t.duration - now.Sub(t.start)
	if left < 0 {
		return 0
	}
	return left
}
