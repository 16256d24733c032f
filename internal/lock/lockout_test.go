package lock

import (
	"testing"
	"time"
)

func TestLockoutTimer(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	timer := NewLockoutTimer(5 * time.Minute)

	if timer.Active() {
		t.Fatal("new timer is active")
	}

	timer.Arm(start)
	if !timer.Active() {
		t.Fatal("armed timer is not active")
	}

	tests := []struct {
		elapsed   time.Duration
		expired   bool
		remaining time.Duration
	}{
		{0, false, 5 * time.Minute},
		{time.Minute, false, 4 * time.Minute},
		{5*time.Minute - time.Millisecond, false, time.Millisecond},
		{5 * time.Minute, true, 0},
		{time.Hour, true, 0},
	}
	for _, tt := range tests {
		now := start.Add(tt.elapsed)
		if got := timer.IsExpired(now); got != tt.expired {
			t.Errorf("IsExpired(+%v) = %v, want %v", tt.elapsed, got, tt.expired)
		}
		if got := timer.Remaining(now); got != tt.remaining {
			t.Errorf("Remaining(+%v) = %v, want %v", tt.elapsed, got, tt.remaining)
		}
	}

	timer.Clear()
	if timer.Active() {
		t.Error("cleared timer is still active")
	}
	if timer.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %v after Clear, want 5m", timer.Duration())
	}
}
