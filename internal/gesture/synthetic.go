package gesture

import (
	"math"
	"sync"
	"time"

	"github.com/banshee-data/gesturelock/internal/timeutil"
)

// SyntheticSource generates a smooth, repeatable motion for running the lock
// without hardware. The trace is a function of time since the source was
// created, so two captures started at the same phase produce the same
// gesture.
type SyntheticSource struct {
	mu    sync.Mutex
	clock timeutil.Clock
	start time.Time
	// Period is the length of one full gesture cycle.
	Period time.Duration
}

// NewSyntheticSource creates a SyntheticSource with a two second cycle.
func NewSyntheticSource(clock timeutil.Clock) *SyntheticSource {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &SyntheticSource{clock: clock, start: clock.Now(), Period: 2 * time.Second}
}

// Rewind restarts the cycle so the next reading is at phase zero.
func (s *SyntheticSource) Rewind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = s.clock.Now()
}

// ReadAxes returns the reading for the current phase of the cycle.
func (s *SyntheticSource) ReadAxes() (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	period := s.Period
	if period <= 0 {
		period = 2 * time.Second
	}
	phase := 2 * math.Pi * float64(s.clock.Since(s.start)%period) / float64(period)

	return Sample{
		AX: 4 * math.Sin(phase),
		AY: 2 * math.Cos(phase*0.5),
		AZ: 9.8 + math.Sin(phase*2),
	}, nil
}
