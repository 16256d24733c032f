package db

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gesturelock/internal/lock"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNewDB_AppliesPragmasAndMigrations(t *testing.T) {
	db := newTestDB(t)

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 5000, busyTimeout)

	version, dirty, err := db.MigrateVersion(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestNewDB_InMemory(t *testing.T) {
	db, err := NewDB("")
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, MemoryPath, db.Path())
	_, err = db.RecordEvent(lock.Event{Kind: lock.EventLocked, Time: t0, Length: 50}, "")
	require.NoError(t, err)

	events, err := db.RecentEvents(10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestMigrateDownAndUp(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.MigrateDown(migrationsFS))
	version, _, err := db.MigrateVersion(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	require.NoError(t, db.MigrateUp(migrationsFS))
	require.NoError(t, db.MigrateUp(migrationsFS), "second MigrateUp is a no-op")
}

func TestRecordEvent_SkipsProgressAndTicks(t *testing.T) {
	db := newTestDB(t)

	id, err := db.RecordEvent(lock.Event{Kind: lock.EventSampleProgress, Time: t0}, "")
	require.NoError(t, err)
	assert.Empty(t, id)
	id, err = db.RecordEvent(lock.Event{Kind: lock.EventLockoutTick, Time: t0, Remaining: time.Minute}, "")
	require.NoError(t, err)
	assert.Empty(t, id)

	events, err := db.RecentEvents(10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecentEvents_NewestFirst(t *testing.T) {
	db := newTestDB(t)

	in := []lock.Event{
		{Kind: lock.EventCheckingStarted, Time: t0, Attempt: 1, MaxAttempts: 3},
		{Kind: lock.EventCheckResult, Time: t0.Add(time.Second), Similarity: 0.5},
		{Kind: lock.EventAttemptFailed, Time: t0.Add(time.Second), AttemptsRemaining: 2},
		{Kind: lock.EventLockoutEntered, Time: t0.Add(2 * time.Second), Remaining: 5 * time.Minute},
	}
	for _, ev := range in {
		_, err := db.RecordEvent(ev, "cap-1")
		require.NoError(t, err)
	}

	got, err := db.RecentEvents(3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, lock.EventLockoutEntered, got[0].Kind)
	assert.Equal(t, int64(300000), got[0].RemainingMs)
	assert.Equal(t, lock.EventAttemptFailed, got[1].Kind, "same timestamp orders by insertion")
	assert.Equal(t, 2, got[1].AttemptsRemaining)
	assert.Equal(t, lock.EventCheckResult, got[2].Kind)
	require.NotNil(t, got[2].Similarity)
	assert.InDelta(t, 0.5, *got[2].Similarity, 1e-9)
	assert.Equal(t, "cap-1", got[2].CaptureID)
	assert.True(t, got[2].Time.Equal(t0.Add(time.Second)))
	assert.Nil(t, got[0].Similarity)
}

func TestAttemptStats(t *testing.T) {
	db := newTestDB(t)

	stats, err := db.AttemptStats()
	require.NoError(t, err)
	assert.Equal(t, AttemptStats{}, stats, "empty journal")

	for _, ev := range []lock.Event{
		{Kind: lock.EventLocked, Time: t0, Length: 50},
		{Kind: lock.EventCheckingStarted, Time: t0, Attempt: 1},
		{Kind: lock.EventCheckResult, Time: t0, Similarity: 0.4},
		{Kind: lock.EventAttemptFailed, Time: t0, AttemptsRemaining: 2},
		{Kind: lock.EventCheckingStarted, Time: t0, Attempt: 2},
		{Kind: lock.EventCheckResult, Time: t0, Similarity: 1.0},
		{Kind: lock.EventUnlocked, Time: t0},
		{Kind: lock.EventOverrideApplied, Time: t0},
	} {
		_, err := db.RecordEvent(ev, "")
		require.NoError(t, err)
	}

	stats, err = db.AttemptStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Enrollments)
	assert.Equal(t, int64(2), stats.Attempts)
	assert.Equal(t, int64(1), stats.Accepted)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(0), stats.Lockouts)
	assert.Equal(t, int64(1), stats.Overrides)
	assert.InDelta(t, 1.0, stats.BestSimilarity, 1e-9)
	assert.InDelta(t, 0.7, stats.MeanSimilarity, 1e-9)
}

func TestJournal_GroupsEventsByCapture(t *testing.T) {
	db := newTestDB(t)
	j := NewJournal(db)

	for _, ev := range []lock.Event{
		{Kind: lock.EventRecordingStarted, Time: t0},
		{Kind: lock.EventSampleProgress, Time: t0},
		{Kind: lock.EventRecordingComplete, Time: t0, Length: 50},
		{Kind: lock.EventLocked, Time: t0, Length: 50},
		{Kind: lock.EventCheckingStarted, Time: t0.Add(time.Minute), Attempt: 1, MaxAttempts: 3},
		{Kind: lock.EventRecordingComplete, Time: t0.Add(time.Minute), Length: 50, Checking: true},
		{Kind: lock.EventCheckResult, Time: t0.Add(time.Minute), Similarity: 0.97},
		{Kind: lock.EventUnlocked, Time: t0.Add(time.Minute)},
		{Kind: lock.EventOverrideApplied, Time: t0.Add(2 * time.Minute)},
	} {
		j.Emit(ev)
	}

	got, err := db.RecentEvents(0)
	require.NoError(t, err)
	require.Len(t, got, 8)

	override, unlock, enroll := got[0], got[1:5], got[5:]
	assert.Empty(t, override.CaptureID)
	for _, r := range unlock {
		assert.Equal(t, unlock[0].CaptureID, r.CaptureID)
	}
	for _, r := range enroll {
		assert.Equal(t, enroll[0].CaptureID, r.CaptureID)
	}
	assert.NotEmpty(t, unlock[0].CaptureID)
	assert.NotEqual(t, unlock[0].CaptureID, enroll[0].CaptureID)
}

func TestJournal_LogsWriteFailures(t *testing.T) {
	db := newTestDB(t)
	j := NewJournal(db)
	db.Close()

	// must not panic or block the controller
	j.Emit(lock.Event{Kind: lock.EventLocked, Time: t0})
	assert.Same(t, db, j.DB())
}

func TestAttachAdminRoutes(t *testing.T) {
	db := newTestDB(t)
	mux := http.NewServeMux()
	require.NoError(t, db.AttachAdminRoutes(mux))

	req := httptest.NewRequest(http.MethodGet, "/debug/tailsql/", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.NotEqual(t, http.StatusNotFound, w.Code)
}
