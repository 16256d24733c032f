package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/gesturelock/internal/gesture"
	"github.com/banshee-data/gesturelock/internal/monitoring"
	"github.com/banshee-data/gesturelock/internal/timeutil"
)

var logf = monitoring.Component("lock")

// State is the externally visible security state.
type State int

const (
	Unlocked State = iota
	Locked
)

func (s State) String() string {
	switch s {
	case Unlocked:
		return "unlocked"
	case Locked:
		return "locked"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// phase is set only while a capture is running.
type phase int

const (
	phaseIdle phase = iota
	phaseRecording
	phaseChecking
)

func (p phase) String() string {
	switch p {
	case phaseRecording:
		return "recording"
	case phaseChecking:
		return "checking"
	default:
		return "idle"
	}
}

// AttemptResult describes a completed unlock attempt.
type AttemptResult struct {
	Accepted          bool
	Similarity        float64
	SamplesCompared   int
	AttemptsRemaining int
	LockedOut         bool
}

// Controller is the lock state machine. It is not safe for concurrent use:
// a single polling goroutine owns it and other goroutines read Status
// snapshots published by the Runner.
type Controller struct {
	cfg        Config
	clock      timeutil.Clock
	source     gesture.MotionSource
	recorder   *gesture.Recorder
	comparator gesture.Comparator
	sink       Sink

	state      State
	phase      phase
	credential *gesture.Sequence
	attempts   int
	lockout    LockoutTimer
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for capture pacing and lockout timing.
func WithClock(clock timeutil.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithSink sets where events are delivered.
func WithSink(sink Sink) Option {
	return func(c *Controller) { c.sink = sink }
}

// NewController creates an unlocked controller with no enrolled gesture.
func NewController(cfg Config, source gesture.MotionSource, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lock config: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("motion source is required")
	}

	c := &Controller{
		cfg:        cfg,
		clock:      timeutil.RealClock{},
		source:     source,
		comparator: gesture.NewComparator(cfg.Tolerance),
		sink:       Discard,
		state:      Unlocked,
		lockout:    NewLockoutTimer(cfg.LockoutDuration),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = Discard
	}
	c.recorder = gesture.NewRecorder(c.clock)
	return c, nil
}

// Enroll records a new gesture and locks. It is only allowed while
// unlocked and idle. The previous gesture, if any, is replaced.
func (c *Controller) Enroll(ctx context.Context) error {
	if c.phase != phaseIdle {
		return ErrBusy
	}
	if c.state == Locked {
		c.emit(Event{Kind: EventRejectedAlreadyLocked})
		return ErrAlreadyLocked
	}
	if c.lockout.Active() {
		return &LockedOutError{Remaining: c.lockout.Remaining(c.clock.Now())}
	}

	c.emit(Event{Kind: EventRecordingStarted})
	seq, err := c.capture(ctx, phaseRecording, c.cfg.Capture)
	if err != nil {
		return fmt.Errorf("enroll: %w", err)
	}
	if seq.Len() == 0 {
		return ErrEmptyCapture
	}
	if seq.IsDegenerate() {
		if c.cfg.RejectDegenerateEnroll {
			return ErrDegenerateSequence
		}
		logf("enrolled gesture has no motion; any still attempt will match it")
	}

	c.credential = seq
	c.attempts = 0
	c.state = Locked
	c.emit(Event{Kind: EventLocked, Length: seq.Len()})
	return nil
}

// AttemptUnlock captures a candidate gesture and unlocks if it matches the
// enrolled one. A mismatch is not an error: it is reported in the result
// and counted towards the lockout.
func (c *Controller) AttemptUnlock(ctx context.Context) (AttemptResult, error) {
	if c.phase != phaseIdle {
		return AttemptResult{}, ErrBusy
	}
	if c.state != Locked {
		return AttemptResult{}, ErrNotLocked
	}
	if c.credential.Len() == 0 {
		return AttemptResult{}, ErrNoCredential
	}
	if c.lockout.Active() {
		now := c.clock.Now()
		if !c.lockout.IsExpired(now) {
			remaining := c.lockout.Remaining(now)
			c.emit(Event{Kind: EventLockoutTick, Remaining: remaining})
			return AttemptResult{LockedOut: true}, &LockedOutError{Remaining: remaining}
		}
		c.expireLockout()
	}

	c.emit(Event{Kind: EventCheckingStarted, Attempt: c.attempts + 1, MaxAttempts: c.cfg.MaxAttempts})
	// The candidate is never longer than what it is compared against.
	candidate, err := c.capture(ctx, phaseChecking, c.cfg.Capture.WithCapacity(c.credential.Len()))
	if err != nil {
		return AttemptResult{}, fmt.Errorf("unlock attempt: %w", err)
	}
	if candidate.IsDegenerate() {
		logf("unlock candidate has no motion (%d samples)", candidate.Len())
	}

	similarity := c.comparator.Similarity(candidate, c.credential)
	c.emit(Event{Kind: EventCheckResult, Similarity: similarity})

	res := AttemptResult{
		Similarity:      similarity,
		SamplesCompared: min(candidate.Len(), c.credential.Len()),
	}
	if similarity >= c.cfg.AcceptThreshold {
		c.state = Unlocked
		c.attempts = 0
		c.lockout.Clear()
		res.Accepted = true
		c.emit(Event{Kind: EventUnlocked})
		return res, nil
	}

	c.attempts++
	res.AttemptsRemaining = max(0, c.cfg.MaxAttempts-c.attempts)
	c.emit(Event{Kind: EventAttemptFailed, AttemptsRemaining: res.AttemptsRemaining})

	if c.attempts >= c.cfg.MaxAttempts {
		c.lockout.Arm(c.clock.Now())
		res.LockedOut = true
		c.emit(Event{Kind: EventLockoutEntered, Remaining: c.lockout.Duration()})
	}
	return res, nil
}

// Tick is called once per poll cycle. When a lockout has run its course it
// is cleared and the attempt counter reset; the lock stays locked.
func (c *Controller) Tick(now time.Time) {
	if !c.lockout.Active() {
		return
	}
	if c.lockout.IsExpired(now) {
		c.expireLockout()
		return
	}
	c.emit(Event{Kind: EventLockoutTick, Remaining: c.lockout.Remaining(now)})
}

// ForceUnlock unconditionally unlocks, clears any lockout and resets the
// attempt counter. The enrolled gesture is kept. It reports whether anything
// changed; an override event is only emitted when it did.
func (c *Controller) ForceUnlock() bool {
	changed := c.state != Unlocked || c.lockout.Active() || c.attempts != 0
	c.state = Unlocked
	c.lockout.Clear()
	c.attempts = 0
	if changed {
		c.emit(Event{Kind: EventOverrideApplied})
	}
	return changed
}

// State returns the current lock state.
func (c *Controller) State() State { return c.state }

// Busy reports whether a capture is running.
func (c *Controller) Busy() bool { return c.phase != phaseIdle }

// LockedOut reports whether unlock attempts are currently suspended.
func (c *Controller) LockedOut() bool { return c.lockout.Active() }

// Attempts returns the number of consecutive failed unlock attempts.
func (c *Controller) Attempts() int { return c.attempts }

// Enrolled reports whether a non-empty gesture is stored.
func (c *Controller) Enrolled() bool { return c.credential.Len() > 0 }

// Config returns the controller's configuration.
func (c *Controller) Config() Config { return c.cfg }

// Status returns a snapshot of the controller as of now.
func (c *Controller) Status(now time.Time) Status {
	st := Status{
		State:            c.state,
		Phase:            c.phase.String(),
		Busy:             c.Busy(),
		Enrolled:         c.Enrolled(),
		CredentialLength: c.credential.Len(),
		FailedAttempts:   c.attempts,
		MaxAttempts:      c.cfg.MaxAttempts,
		LockedOut:        c.lockout.Active(),
		UpdatedAt:        now,
	}
	if st.LockedOut {
		st.LockoutRemainingMs = c.lockout.Remaining(now).Milliseconds()
	}
	return st
}

func (c *Controller) capture(ctx context.Context, p phase, params gesture.CaptureParams) (*gesture.Sequence, error) {
	c.phase = p
	defer func() { c.phase = phaseIdle }()

	checking := p == phaseChecking
	seq, err := c.recorder.Capture(ctx, c.source, params, func(i int, s gesture.Sample) {
		c.emit(Event{Kind: EventSampleProgress, Index: i, Sample: s, Checking: checking})
	})
	if err != nil {
		return nil, err
	}
	c.emit(Event{Kind: EventRecordingComplete, Length: seq.Len(), Checking: checking})
	return seq, nil
}

func (c *Controller) expireLockout() {
	c.lockout.Clear()
	c.attempts = 0
	c.emit(Event{Kind: EventLockoutExpired})
}

func (c *Controller) emit(e Event) {
	e.Time = c.clock.Now()
	c.sink.Emit(e)
}
