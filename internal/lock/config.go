package lock

import (
	"fmt"
	"time"

	"github.com/banshee-data/gesturelock/internal/gesture"
)

// Config holds every tunable constant of the lock.
type Config struct {
	// Capture bounds enrollment and unlock captures.
	Capture gesture.CaptureParams
	// Tolerance is the per-axis match tolerance used by the comparator.
	Tolerance float64
	// AcceptThreshold is the minimum similarity that unlocks.
	AcceptThreshold float64
	// MaxAttempts is the number of consecutive failures that arms a lockout.
	MaxAttempts int
	// LockoutDuration is how long unlock attempts are refused after
	// MaxAttempts failures.
	LockoutDuration time.Duration
	// RejectDegenerateEnroll refuses to enroll an all-zero trace.
	RejectDegenerateEnroll bool
}

// DefaultConfig returns the stock board settings.
func DefaultConfig() Config {
	return Config{
		Capture:         gesture.DefaultCaptureParams(),
		Tolerance:       gesture.DefaultTolerance,
		AcceptThreshold: 0.85,
		MaxAttempts:     3,
		LockoutDuration: 5 * time.Minute,
	}
}

// Validate checks that the configuration values are usable.
func (c Config) Validate() error {
	if c.Capture.Capacity < 1 {
		return fmt.Errorf("capture capacity must be at least 1, got %d", c.Capture.Capacity)
	}
	if c.Capture.SampleInterval <= 0 {
		return fmt.Errorf("sample interval must be positive, got %v", c.Capture.SampleInterval)
	}
	if c.Capture.MaxDuration < 0 {
		return fmt.Errorf("capture duration must be non-negative, got %v", c.Capture.MaxDuration)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %f", c.Tolerance)
	}
	if c.AcceptThreshold <= 0 || c.AcceptThreshold > 1 {
		return fmt.Errorf("accept threshold must be in (0, 1], got %f", c.AcceptThreshold)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.LockoutDuration < 0 {
		return fmt.Errorf("lockout duration must be non-negative, got %v", c.LockoutDuration)
	}
	return nil
}
