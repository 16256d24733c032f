package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/gesturelock/internal/lock"
)

// EventRecord is one journal row.
type EventRecord struct {
	ID                string         `json:"id"`
	CaptureID         string         `json:"capture_id,omitempty"`
	Kind              lock.EventKind `json:"kind"`
	Time              time.Time      `json:"time"`
	Length            int            `json:"length,omitempty"`
	Attempt           int            `json:"attempt,omitempty"`
	MaxAttempts       int            `json:"max_attempts,omitempty"`
	Similarity        *float64       `json:"similarity,omitempty"`
	AttemptsRemaining int            `json:"attempts_remaining,omitempty"`
	RemainingMs       int64          `json:"remaining_ms,omitempty"`
}

// Journaled reports whether events of kind k are written to the journal.
// Per-sample progress and lockout countdown ticks are not.
func Journaled(k lock.EventKind) bool {
	return k != lock.EventSampleProgress && k != lock.EventLockoutTick
}

// RecordEvent writes ev under captureID and returns the new row ID. Events
// that are not Journaled are skipped and return an empty ID.
func (db *DB) RecordEvent(ev lock.Event, captureID string) (string, error) {
	if !Journaled(ev.Kind) {
		return "", nil
	}
	id := uuid.NewString()

	var similarity sql.NullFloat64
	if ev.Kind == lock.EventCheckResult {
		similarity = sql.NullFloat64{Float64: ev.Similarity, Valid: true}
	}
	var capture sql.NullString
	if captureID != "" {
		capture = sql.NullString{String: captureID, Valid: true}
	}

	_, err := db.Exec(
		`INSERT INTO lock_events (
			event_id, capture_id, kind, occurred_at, length, attempt, max_attempts,
			similarity, attempts_remaining, remaining_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, capture, ev.Kind.String(), ev.Time.UnixNano(), ev.Length, ev.Attempt, ev.MaxAttempts,
		similarity, ev.AttemptsRemaining, ev.Remaining.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record %s event: %w", ev.Kind, err)
	}
	return id, nil
}

var kindsByName = func() map[string]lock.EventKind {
	m := make(map[string]lock.EventKind)
	for k := lock.EventRecordingStarted; k <= lock.EventOverrideApplied; k++ {
		m[k.String()] = k
	}
	return m
}()

// RecentEvents returns up to limit journal rows, newest first.
func (db *DB) RecentEvents(limit int) ([]EventRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(
		`SELECT event_id, COALESCE(capture_id, ''), kind, occurred_at, length, attempt,
			max_attempts, similarity, attempts_remaining, remaining_ms
		FROM lock_events
		ORDER BY occurred_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var (
			r          EventRecord
			kind       string
			occurredAt int64
			similarity sql.NullFloat64
		)
		if err := rows.Scan(
			&r.ID, &r.CaptureID, &kind, &occurredAt, &r.Length, &r.Attempt,
			&r.MaxAttempts, &similarity, &r.AttemptsRemaining, &r.RemainingMs,
		); err != nil {
			return nil, err
		}
		k, ok := kindsByName[kind]
		if !ok {
			return nil, fmt.Errorf("unknown event kind %q in journal", kind)
		}
		r.Kind = k
		r.Time = time.Unix(0, occurredAt).UTC()
		if similarity.Valid {
			v := similarity.Float64
			r.Similarity = &v
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// AttemptStats summarises the journal.
type AttemptStats struct {
	Enrollments    int64   `json:"enrollments"`
	Attempts       int64   `json:"attempts"`
	Accepted       int64   `json:"accepted"`
	Failed         int64   `json:"failed"`
	Lockouts       int64   `json:"lockouts"`
	Overrides      int64   `json:"overrides"`
	BestSimilarity float64 `json:"best_similarity"`
	MeanSimilarity float64 `json:"mean_similarity"`
}

// AttemptStats rolls the journal up into counts per outcome.
func (db *DB) AttemptStats() (AttemptStats, error) {
	var s AttemptStats
	err := db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'locked' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'checking_started' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'unlocked' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'attempt_failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'lockout_entered' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'override_applied' THEN 1 ELSE 0 END), 0),
			COALESCE(MAX(similarity), 0),
			COALESCE(AVG(similarity), 0)
		FROM lock_events`).Scan(
		&s.Enrollments, &s.Attempts, &s.Accepted, &s.Failed,
		&s.Lockouts, &s.Overrides, &s.BestSimilarity, &s.MeanSimilarity,
	)
	if err != nil {
		return AttemptStats{}, fmt.Errorf("failed to compute attempt stats: %w", err)
	}
	return s, nil
}
