package gesture

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultTolerance is the largest normalised difference for two axis values
// to count as a match.
const DefaultTolerance = 0.3

// Comparator scores how alike two gestures are.
type Comparator struct {
	Tolerance float64
}

// NewComparator returns a Comparator with the given tolerance.
func NewComparator(tolerance float64) Comparator {
	return Comparator{Tolerance: tolerance}
}

// Similarity returns the fraction, in [0, 1], of scalar axis values in the
// overlapping prefix of a and b that agree within the tolerance after each
// sequence is scaled by its own peak absolute value.
//
// Only min(a.Len(), b.Len()) samples are compared. An all-zero sequence
// normalises to all zeros. If either sequence is empty there is nothing to
// compare and the result is 0. That includes an empty sequence compared with
// itself, the one case where Similarity(s, s) is not 1.
func (c Comparator) Similarity(a, b *Sequence) float64 {
	n := min(a.Len(), b.Len()) * 3
	if n == 0 {
		return 0
	}

	na := normalise(a.Flatten())
	nb := normalise(b.Flatten())

	matches := 0
	for i := 0; i < n; i++ {
		if math.Abs(na[i]-nb[i]) < c.Tolerance {
			matches++
		}
	}
	return float64(matches) / float64(n)
}

// normalise scales v in place by its infinity norm. A zero vector is left as
// is rather than divided by zero.
func normalise(v []float64) []float64 {
	peak := floats.Norm(v, math.Inf(1))
	if peak == 0 || math.IsNaN(peak) || math.IsInf(peak, 0) {
		return v
	}
	floats.Scale(1/peak, v)
	return v
}
