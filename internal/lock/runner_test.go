package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/banshee-data/gesturelock/internal/gesture"
	"github.com/banshee-data/gesturelock/internal/timeutil"
)

func newTestRunner(t *testing.T, input Input, edgeTriggered bool) (*Runner, *harness, *StatusBoard) {
	t.Helper()
	h := newHarness(t)
	h.src.Load(rightTilt)
	h.src.Hold = true
	board := &StatusBoard{}
	r := NewRunner(h.ctrl, input, RunnerOptions{
		EdgeTriggered: edgeTriggered,
		Clock:         h.clock,
		Board:         board,
	})
	return r, h, board
}

func countKind(events []Event, k EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

func TestRunner_EnrollThenUnlock(t *testing.T) {
	in := &StaticInput{}
	r, _, board := newTestRunner(t, in, true)
	ctx := context.Background()

	in.Enroll = true
	if err := r.Step(ctx); err != nil {
		t.Fatalf("Step: %v", err)
	}
	in.Enroll = false

	want := Status{
		State:            Locked,
		Phase:            "idle",
		Enrolled:         true,
		CredentialLength: gesture.DefaultCapacity,
		MaxAttempts:      3,
	}
	if diff := cmp.Diff(want, board.Snapshot(), cmpopts.IgnoreFields(Status{}, "UpdatedAt")); diff != "" {
		t.Errorf("status after enroll (-want +got):\n%s", diff)
	}

	in.Unlock = true
	if err := r.Step(ctx); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := board.Snapshot().State; got != Unlocked {
		t.Errorf("state after matching unlock = %v, want unlocked", got)
	}
}

func TestRunner_EdgeTriggeredIgnoresHeldButton(t *testing.T) {
	in := &StaticInput{Enroll: true}
	r, h, _ := newTestRunner(t, in, true)

	for i := 0; i < 3; i++ {
		if err := r.Step(context.Background()); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if n := countKind(h.events.Events, EventRejectedAlreadyLocked); n != 0 {
		t.Errorf("held button produced %d already-locked rejections, want 0", n)
	}
}

func TestRunner_LevelTriggeredRepeats(t *testing.T) {
	in := &StaticInput{Enroll: true}
	r, h, _ := newTestRunner(t, in, false)

	for i := 0; i < 3; i++ {
		if err := r.Step(context.Background()); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if n := countKind(h.events.Events, EventRejectedAlreadyLocked); n != 2 {
		t.Errorf("got %d already-locked rejections, want 2", n)
	}
}

func TestRunner_OverrideIsLevelTriggered(t *testing.T) {
	in := &StaticInput{Enroll: true, Override: true}
	r, h, board := newTestRunner(t, in, true)

	// Enroll then override in the same iteration, as on the board.
	if err := r.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := board.Snapshot().State; got != Unlocked {
		t.Fatalf("state = %v, want unlocked while override engaged", got)
	}
	if n := countKind(h.events.Events, EventOverrideApplied); n != 1 {
		t.Errorf("override events = %d, want 1", n)
	}

	// Holding the switch does not emit again once unlocked.
	if err := r.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if n := countKind(h.events.Events, EventOverrideApplied); n != 1 {
		t.Errorf("override events = %d after holding, want 1", n)
	}
}

func TestRunner_TicksLockout(t *testing.T) {
	in := &StaticInput{}
	r, h, board := newTestRunner(t, in, true)
	h.enroll(t, rightTilt)
	h.fail(t)
	h.fail(t)
	h.fail(t)

	if err := r.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !board.Snapshot().LockedOut || board.Snapshot().LockoutRemainingMs <= 0 {
		t.Fatalf("status = %+v, want locked out with time remaining", board.Snapshot())
	}

	h.clock.Advance(5 * time.Minute)
	if err := r.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	st := board.Snapshot()
	if st.LockedOut || st.FailedAttempts != 0 || st.State != Locked {
		t.Errorf("status after expiry = %+v, want locked, not locked out, 0 attempts", st)
	}
}

func TestRunner_StepReturnsCancellation(t *testing.T) {
	in := &StaticInput{Enroll: true}
	r, h, _ := newTestRunner(t, in, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Step(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Step err = %v, want context.Canceled", err)
	}
	if h.ctrl.State() != Unlocked {
		t.Error("cancelled enroll locked the controller")
	}
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	in := &StaticInput{}
	h := newHarness(t)
	board := &StatusBoard{}
	r := NewRunner(h.ctrl, in, RunnerOptions{Clock: timeutil.RealClock{}, PollInterval: time.Millisecond, Board: board})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMultiInput(t *testing.T) {
	a := &StaticInput{Unlock: true}
	b := &StaticInput{Override: true}
	m := MultiInput{a, b}

	if m.EnrollRequested() {
		t.Error("EnrollRequested() = true, want false")
	}
	if !m.UnlockRequested() || !m.OverrideEngaged() {
		t.Error("MultiInput did not OR its inputs")
	}
}

func TestStatusSink_PublishesBusyDuringCapture(t *testing.T) {
	board := &StatusBoard{}
	sink := &StatusSink{Board: board}
	clock := timeutil.NewMockClock(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC))
	src := gesture.NewScriptedSource(rightTilt)
	src.Hold = true

	ctrl, err := NewController(DefaultConfig(), src, WithClock(clock), WithSink(sink))
	if err != nil {
		t.Fatal(err)
	}
	sink.Controller = ctrl

	if err := ctrl.Enroll(context.Background()); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	got := board.Snapshot()
	if !got.Busy || got.Phase != "recording" {
		t.Errorf("snapshot during capture = %+v, want busy recording", got)
	}
}
