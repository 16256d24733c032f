package gesture

import (
	"errors"
	"sync"
)

// ErrSourceExhausted is returned by a ScriptedSource that has no samples
// left and is not set to hold its last value.
var ErrSourceExhausted = errors.New("gesture: motion source exhausted")

// MotionSource provides one accelerometer reading per call.
type MotionSource interface {
	ReadAxes() (Sample, error)
}

// SourceFunc adapts a plain function to MotionSource.
type SourceFunc func() (Sample, error)

// ReadAxes calls f.
func (f SourceFunc) ReadAxes() (Sample, error) { return f() }

// ScriptedSource replays a fixed list of samples in order. Once the script
// runs out it keeps returning the final sample when Hold is set, otherwise
// ErrSourceExhausted.
type ScriptedSource struct {
	mu      sync.Mutex
	samples []Sample
	next    int
	Hold    bool
}

// NewScriptedSource returns a source that replays samples.
func NewScriptedSource(samples ...Sample) *ScriptedSource {
	return &ScriptedSource{samples: samples}
}

// ReadAxes returns the next scripted sample.
func (s *ScriptedSource) ReadAxes() (Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next < len(s.samples) {
		v := s.samples[s.next]
		s.next++
		return v, nil
	}
	if s.Hold && len(s.samples) > 0 {
		return s.samples[len(s.samples)-1], nil
	}
	return Sample{}, ErrSourceExhausted
}

// Load replaces the script and rewinds to its first sample.
func (s *ScriptedSource) Load(samples ...Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = samples
	s.next = 0
}

// Reads returns how many scripted samples have been consumed.
func (s *ScriptedSource) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
