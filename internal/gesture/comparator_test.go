package gesture

import (
	"math"
	"math/rand"
	"testing"
)

func randomSequence(r *rand.Rand, n int) *Sequence {
	s := NewSequence(n)
	for i := 0; i < n; i++ {
		s.Append(Sample{
			AX: r.NormFloat64() * 3,
			AY: r.NormFloat64() * 3,
			AZ: 9.8 + r.NormFloat64(),
		})
	}
	return s
}

func TestSimilarity_IdenticalIsOne(t *testing.T) {
	c := NewComparator(DefaultTolerance)
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		s := randomSequence(r, 1+r.Intn(DefaultCapacity))
		if got := c.Similarity(s, s.Clone()); got != 1 {
			t.Fatalf("Similarity(s, s) = %v, want 1", got)
		}
	}
}

func TestSimilarity_BoundedAndSymmetric(t *testing.T) {
	c := NewComparator(DefaultTolerance)
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		a := randomSequence(r, r.Intn(DefaultCapacity+1))
		b := randomSequence(r, r.Intn(DefaultCapacity+1))

		ab := c.Similarity(a, b)
		ba := c.Similarity(b, a)
		if ab < 0 || ab > 1 {
			t.Fatalf("Similarity = %v, outside [0,1]", ab)
		}
		if ab != ba {
			t.Fatalf("Similarity(a,b) = %v but Similarity(b,a) = %v", ab, ba)
		}
	}
}

func TestSimilarity_OppositeXAxis(t *testing.T) {
	c := NewComparator(DefaultTolerance)
	a := Repeat(Sample{AX: 1}, 50)
	b := Repeat(Sample{AX: -1}, 50)

	// x differs by 2 on every sample, y and z agree.
	got := c.Similarity(a, b)
	if want := 2.0 / 3.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("Similarity = %v, want %v", got, want)
	}
	if got >= 0.85 {
		t.Errorf("Similarity = %v would be accepted", got)
	}
}

func TestSimilarity_ScaleInvariant(t *testing.T) {
	c := NewComparator(DefaultTolerance)
	a := SequenceOf(Sample{1, 2, 3}, Sample{-2, 0.5, 1})
	b := SequenceOf(Sample{10, 20, 30}, Sample{-20, 5, 10})

	if got := c.Similarity(a, b); got != 1 {
		t.Errorf("Similarity of scaled copy = %v, want 1", got)
	}
}

func TestSimilarity_DegenerateSequences(t *testing.T) {
	c := NewComparator(DefaultTolerance)
	zero := Repeat(Sample{}, 10)
	moving := Repeat(Sample{AX: 1, AY: 0.1}, 10)

	if got := c.Similarity(zero, zero); got != 1 {
		t.Errorf("Similarity(zero, zero) = %v, want 1", got)
	}
	got := c.Similarity(zero, moving)
	if math.IsNaN(got) {
		t.Fatal("Similarity against an all-zero sequence is NaN")
	}
	// AY normalises to 0.1 and AZ to 0: both within tolerance of zero.
	if want := 2.0 / 3.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("Similarity(zero, moving) = %v, want %v", got, want)
	}
}

func TestSimilarity_ComparesOverlappingPrefix(t *testing.T) {
	c := NewComparator(DefaultTolerance)
	short := Repeat(Sample{AX: 1}, 10)
	extended := NewSequence(20)
	for i := 0; i < 10; i++ {
		extended.Append(Sample{AX: 1})
	}
	for i := 0; i < 10; i++ {
		extended.Append(Sample{AX: -5})
	}

	// The tail is outside the overlap but still sets the peak used for
	// normalising the longer trace: 1/5 = 0.2 vs 1.0 fails on x.
	got := c.Similarity(short, extended)
	if want := 2.0 / 3.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("Similarity = %v, want %v", got, want)
	}
}

func TestSimilarity_EmptyIsZero(t *testing.T) {
	c := NewComparator(DefaultTolerance)
	if got := c.Similarity(NewSequence(50), Repeat(Sample{AX: 1}, 5)); got != 0 {
		t.Errorf("Similarity with empty sequence = %v, want 0", got)
	}
	if got := c.Similarity(nil, nil); got != 0 {
		t.Errorf("Similarity(nil, nil) = %v, want 0", got)
	}
	empty := NewSequence(10)
	if got := c.Similarity(empty, empty); got != 0 {
		t.Errorf("Similarity(empty, empty) = %v, want 0", got)
	}
}
