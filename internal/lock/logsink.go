package lock

import (
	"time"

	"github.com/banshee-data/gesturelock/internal/monitoring"
)

// LogSink writes events as the human-readable lines the board used to print
// on its serial console.
type LogSink struct {
	// Logf receives each line. Nil means the package diagnostic logger.
	Logf func(format string, v ...interface{})
	// Verbose also logs every captured sample.
	Verbose bool
	// TickEvery throttles lockout countdown lines; zero means every 30s.
	TickEvery time.Duration

	lastTick time.Duration
}

// Emit logs e.
func (s *LogSink) Emit(e Event) {
	logf := s.Logf
	if logf == nil {
		logf = monitoring.Logf
	}

	switch e.Kind {
	case EventRecordingStarted:
		logf("Recording started - perform the gesture")
	case EventSampleProgress:
		if !s.Verbose {
			return
		}
		prefix := "Sample"
		if e.Checking {
			prefix = "Check Sample"
		}
		logf("%s %d: %s", prefix, e.Index, e.Sample)
	case EventRecordingComplete:
		logf("Recording complete. Collected %d samples", e.Length)
	case EventCheckingStarted:
		logf("Checking gesture - perform the same motion (attempt %d of %d)", e.Attempt, e.MaxAttempts)
	case EventCheckResult:
		logf("Gesture match: %.1f%%", e.Similarity*100)
	case EventLocked:
		logf("System locked with new gesture")
	case EventUnlocked:
		logf("Gesture matched! System unlocked")
	case EventRejectedAlreadyLocked:
		logf("System already locked - cannot record new gesture")
	case EventAttemptFailed:
		logf("Gesture did not match - %d attempts remaining", e.AttemptsRemaining)
	case EventLockoutEntered:
		s.lastTick = e.Remaining
		logf("Too many failed attempts. System locked out for %v", e.Remaining)
	case EventLockoutTick:
		every := s.TickEvery
		if every <= 0 {
			every = 30 * time.Second
		}
		if s.lastTick != 0 && s.lastTick-e.Remaining < every {
			return
		}
		s.lastTick = e.Remaining
		logf("System is locked out for %d more seconds", int(e.Remaining.Seconds()))
	case EventLockoutExpired:
		s.lastTick = 0
		logf("Lockout period ended. System ready for new attempts")
	case EventOverrideApplied:
		s.lastTick = 0
		logf("Override engaged - system unlocked")
	}
}
