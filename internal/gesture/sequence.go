package gesture

import "fmt"

// DefaultCapacity is the number of samples a gesture holds when no other
// capacity is configured.
const DefaultCapacity = 50

// Sample is one accelerometer reading. Values are signed accelerations in
// whatever unit the source reports; only their relative magnitudes matter.
type Sample struct {
	AX float64 `json:"ax"`
	AY float64 `json:"ay"`
	AZ float64 `json:"az"`
}

func (s Sample) String() string {
	return fmt.Sprintf("X=%.2f Y=%.2f Z=%.2f", s.AX, s.AY, s.AZ)
}

// IsZero reports whether all three axes read exactly zero.
func (s Sample) IsZero() bool {
	return s.AX == 0 && s.AY == 0 && s.AZ == 0
}

// Sequence is an ordered, fixed-capacity buffer of samples in capture order.
// Only the first Len() entries exist; there is no way to read past them.
type Sequence struct {
	samples []Sample
}

// NewSequence returns an empty sequence that accepts up to capacity samples.
// A capacity below zero is treated as zero.
func NewSequence(capacity int) *Sequence {
	if capacity < 0 {
		capacity = 0
	}
	return &Sequence{samples: make([]Sample, 0, capacity)}
}

// SequenceOf builds a full sequence from the given samples. It is mostly
// useful in tests and replays.
func SequenceOf(samples ...Sample) *Sequence {
	s := NewSequence(len(samples))
	for _, v := range samples {
		s.Append(v)
	}
	return s
}

// Repeat returns a sequence holding n copies of sample.
func Repeat(sample Sample, n int) *Sequence {
	s := NewSequence(n)
	for i := 0; i < n; i++ {
		s.Append(sample)
	}
	return s
}

// Len returns the number of valid samples.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.samples)
}

// Cap returns the maximum number of samples the sequence can hold.
func (s *Sequence) Cap() int {
	if s == nil {
		return 0
	}
	return cap(s.samples)
}

// Full reports whether the sequence has reached its capacity.
func (s *Sequence) Full() bool {
	return s.Len() >= s.Cap()
}

// Append adds a sample at the end. It returns false and leaves the sequence
// unchanged when the sequence is already full.
func (s *Sequence) Append(sample Sample) bool {
	if s.Full() {
		return false
	}
	s.samples = append(s.samples, sample)
	return true
}

// At returns the i-th sample. It panics if i is outside [0, Len()).
func (s *Sequence) At(i int) Sample {
	if i < 0 || i >= s.Len() {
		panic(fmt.Sprintf("gesture: sample index %d out of range [0,%d)", i, s.Len()))
	}
	return s.samples[i]
}

// Samples returns a copy of the valid samples.
func (s *Sequence) Samples() []Sample {
	out := make([]Sample, s.Len())
	if s != nil {
		copy(out, s.samples)
	}
	return out
}

// Clone returns an independent copy with the same capacity.
func (s *Sequence) Clone() *Sequence {
	c := NewSequence(s.Cap())
	if s != nil {
		c.samples = append(c.samples, s.samples...)
	}
	return c
}

// Flatten returns the valid samples as a scalar slice laid out
// ax0, ay0, az0, ax1, ... so that len == 3*Len().
func (s *Sequence) Flatten() []float64 {
	out := make([]float64, 0, 3*s.Len())
	for _, v := range s.Samples() {
		out = append(out, v.AX, v.AY, v.AZ)
	}
	return out
}

// IsDegenerate reports whether every valid sample is zero on all axes. An
// empty sequence is degenerate.
func (s *Sequence) IsDegenerate() bool {
	for _, v := range s.Samples() {
		if !v.IsZero() {
			return false
		}
	}
	return true
}
