package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gesturelock/internal/config"
	"github.com/banshee-data/gesturelock/internal/lock"
	"github.com/banshee-data/gesturelock/internal/timeutil"
)

func TestSelectMode(t *testing.T) {
	assert.Equal(t, modeSerial, selectMode(false, false))
	assert.Equal(t, modeDev, selectMode(true, false))
	assert.Equal(t, modeDisabled, selectMode(true, true))
	assert.Equal(t, modeDisabled, selectMode(false, true))
}

func TestFlagDefaults(t *testing.T) {
	assert.Equal(t, ":8080", *listen)
	assert.Equal(t, ":memory:", *dbPath)
	assert.False(t, *allowRemoteOverride, "remote override must be opt-in")
	assert.Equal(t, "", *configPath)
}

var testStart = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func newTestDaemon(t *testing.T, allowOverride bool) (*daemon, *timeutil.MockClock) {
	t.Helper()
	clock := timeutil.NewMockClock(testStart)
	d, err := newDaemon(daemonOptions{
		LockConfig:          config.MustLoadDefaultConfig(),
		Mode:                modeDisabled,
		DBPath:              ":memory:",
		AllowRemoteOverride: allowOverride,
		Clock:               clock,
	})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d, clock
}

func post(t *testing.T, h http.Handler, path string) int {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w.Code
}

func TestDaemon_RemoteEnrollUnlockAndOverride(t *testing.T) {
	d, clock := newTestDaemon(t, true)
	mux, err := d.ServeMux()
	require.NoError(t, err)
	ctx := context.Background()

	require.Equal(t, http.StatusAccepted, post(t, mux, "/api/enroll"))
	require.NoError(t, d.runner.Step(ctx))
	assert.Equal(t, lock.Locked, d.board.Snapshot().State)

	// off the two second cycle; the capture rewinds the synthetic gesture
	clock.Set(testStart.Add(6*time.Second + 730*time.Millisecond))
	require.Equal(t, http.StatusAccepted, post(t, mux, "/api/unlock"))
	require.NoError(t, d.runner.Step(ctx))
	assert.Equal(t, lock.Unlocked, d.board.Snapshot().State)

	stats, err := d.journal.AttemptStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Enrollments)
	assert.Equal(t, int64(1), stats.Accepted)

	_, ok := d.trace.Last()
	assert.True(t, ok, "unlock attempt should be charted")

	// lock again and force it open remotely
	require.Equal(t, http.StatusAccepted, post(t, mux, "/api/enroll"))
	require.NoError(t, d.runner.Step(ctx))
	require.Equal(t, http.StatusAccepted, post(t, mux, "/api/override"))
	require.NoError(t, d.runner.Step(ctx))
	assert.Equal(t, lock.Unlocked, d.board.Snapshot().State)
}

type countingRewinder struct {
	n int
}

func (c *countingRewinder) Rewind() { c.n++ }

func TestRewindOnCapture(t *testing.T) {
	src := &countingRewinder{}
	sink := rewindOnCapture{src}

	for _, k := range []lock.EventKind{
		lock.EventRecordingStarted,
		lock.EventSampleProgress,
		lock.EventRecordingComplete,
		lock.EventCheckingStarted,
		lock.EventCheckResult,
		lock.EventLockoutTick,
	} {
		sink.Emit(lock.Event{Kind: k})
	}
	assert.Equal(t, 2, src.n, "only capture starts rewind")
}

func TestDaemon_StatusRoute(t *testing.T) {
	d, _ := newTestDaemon(t, false)
	mux, err := d.ServeMux()
	require.NoError(t, err)
	require.NoError(t, d.runner.Step(context.Background()))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "unlocked", got["state"])
	assert.Equal(t, float64(3), got["max_attempts"])

	assert.Equal(t, http.StatusForbidden, post(t, mux, "/api/override"))
}

func TestDaemon_DevModeStreamsSyntheticBoard(t *testing.T) {
	d, err := newDaemon(daemonOptions{Mode: modeDev, DBPath: ":memory:"})
	require.NoError(t, err)
	defer d.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go d.mux.Monitor(ctx)
	go d.device.Listen(ctx, d.mux)

	for d.device.Motion.Received() == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("dev mode produced no motion samples")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestNewDaemon_InvalidSettings(t *testing.T) {
	zero := 0
	_, err := newDaemon(daemonOptions{
		LockConfig: &config.LockConfig{MaxAttempts: &zero},
		Mode:       modeDisabled,
	})
	assert.Error(t, err)
}

func TestStartupBanner(t *testing.T) {
	got := startupBanner(lock.DefaultConfig())
	assert.Equal(t, "capture=50 samples/5s every 20ms threshold=0.85 tolerance=0.30 attempts=3 lockout=5m0s", got)
}
