package db

import (
	"sync"

	"github.com/google/uuid"

	"github.com/banshee-data/gesturelock/internal/lock"
	"github.com/banshee-data/gesturelock/internal/monitoring"
)

var logf = monitoring.Component("journal")

// Journal is a lock.Sink that writes events to the DB. Events from one
// capture share a capture ID, assigned when recording or checking starts.
type Journal struct {
	db *DB

	mu        sync.Mutex
	captureID string
}

func NewJournal(db *DB) *Journal {
	return &Journal{db: db}
}

// Emit implements lock.Sink. Write failures are logged, never returned to
// the controller.
func (j *Journal) Emit(ev lock.Event) {
	if !Journaled(ev.Kind) {
		return
	}

	j.mu.Lock()
	switch ev.Kind {
	case lock.EventRecordingStarted, lock.EventCheckingStarted:
		j.captureID = uuid.NewString()
	case lock.EventRejectedAlreadyLocked, lock.EventLockoutExpired, lock.EventOverrideApplied:
		j.captureID = ""
	}
	captureID := j.captureID
	j.mu.Unlock()

	if _, err := j.db.RecordEvent(ev, captureID); err != nil {
		logf("%v", err)
	}
}

// DB returns the underlying journal.
func (j *Journal) DB() *DB { return j.db }
