package gesture

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/gesturelock/internal/timeutil"
)

// CaptureParams bounds a single capture.
type CaptureParams struct {
	// Capacity is the maximum number of samples to collect.
	Capacity int
	// SampleInterval is the pause between consecutive readings.
	SampleInterval time.Duration
	// MaxDuration is the wall-clock budget for the whole capture.
	MaxDuration time.Duration
}

// DefaultCaptureParams returns 50 samples, 20ms apart, within 5 seconds.
func DefaultCaptureParams() CaptureParams {
	return CaptureParams{
		Capacity:       DefaultCapacity,
		SampleInterval: 20 * time.Millisecond,
		MaxDuration:    5 * time.Second,
	}
}

// WithCapacity returns a copy of p with a different capacity.
func (p CaptureParams) WithCapacity(n int) CaptureParams {
	p.Capacity = n
	return p
}

// ProgressFunc is called after each sample is stored.
type ProgressFunc func(index int, sample Sample)

// Recorder samples a MotionSource on a fixed interval.
type Recorder struct {
	clock timeutil.Clock
}

// NewRecorder returns a Recorder that paces itself with clock. A nil clock
// means the real clock.
func NewRecorder(clock timeutil.Clock) *Recorder {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Recorder{clock: clock}
}

// Capture reads src once per SampleInterval until Capacity samples are
// stored or MaxDuration has elapsed, whichever comes first. It blocks the
// caller for the whole capture.
//
// ctx is checked between samples; when it is done Capture stops and returns
// the samples gathered so far together with ctx.Err(). A read error also
// stops the capture and is returned wrapped alongside the partial sequence.
func (r *Recorder) Capture(ctx context.Context, src MotionSource, p CaptureParams, progress ProgressFunc) (*Sequence, error) {
	seq := NewSequence(p.Capacity)
	start := r.clock.Now()

	for r.clock.Since(start) < p.MaxDuration && !seq.Full() {
		if err := ctx.Err(); err != nil {
			return seq, err
		}

		sample, err := src.ReadAxes()
		if err != nil {
			return seq, fmt.Errorf("read motion sample %d: %w", seq.Len(), err)
		}
		seq.Append(sample)
		if progress != nil {
			progress(seq.Len()-1, sample)
		}

		if seq.Full() {
			break
		}
		if p.SampleInterval > 0 {
			r.clock.Sleep(p.SampleInterval)
		}
	}

	return seq, nil
}
