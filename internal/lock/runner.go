package lock

import (
	"context"
	"errors"
	"time"

	"github.com/banshee-data/gesturelock/internal/timeutil"
)

// DefaultPollInterval is how often the Runner polls its input.
const DefaultPollInterval = 10 * time.Millisecond

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// PollInterval is the time between loop iterations.
	PollInterval time.Duration
	// EdgeTriggered fires enroll and unlock on the press, not for as long as
	// the button is held. Override is always level-triggered.
	EdgeTriggered bool
	// Clock drives the poll ticker and Tick. Nil means the real clock.
	Clock timeutil.Clock
	// Board, if set, receives a Status after every iteration.
	Board *StatusBoard
}

// Runner is the outer polling loop. It is the only caller of the
// Controller's mutating methods.
type Runner struct {
	ctrl  *Controller
	input Input
	opts  RunnerOptions

	enrollEdge edge
	unlockEdge edge
}

// NewRunner returns a Runner that drives ctrl from input.
func NewRunner(ctrl *Controller, input Input, opts RunnerOptions) *Runner {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	return &Runner{ctrl: ctrl, input: input, opts: opts}
}

// Step runs one poll iteration: lockout bookkeeping, then the enroll
// request, then the unlock request, then the override. A capture started by
// this step blocks until it completes. Only a cancelled ctx is returned as
// an error; rejections and capture failures are logged.
func (r *Runner) Step(ctx context.Context) error {
	r.ctrl.Tick(r.opts.Clock.Now())

	if r.pressed(&r.enrollEdge, r.input.EnrollRequested()) {
		if err := r.ctrl.Enroll(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logf("enroll request: %v", err)
		}
	}

	if r.pressed(&r.unlockEdge, r.input.UnlockRequested()) {
		if _, err := r.ctrl.AttemptUnlock(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !errors.Is(err, ErrNotLocked) {
				logf("unlock request: %v", err)
			}
		}
	}

	if r.input.OverrideEngaged() {
		r.ctrl.ForceUnlock()
	}

	r.publish()
	return ctx.Err()
}

// Run steps on every poll tick until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.opts.Clock.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	r.publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			if err := r.Step(ctx); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) pressed(e *edge, level bool) bool {
	if r.opts.EdgeTriggered {
		return e.rise(level)
	}
	return level
}

func (r *Runner) publish() {
	if r.opts.Board != nil {
		r.opts.Board.Publish(r.ctrl.Status(r.opts.Clock.Now()))
	}
}
