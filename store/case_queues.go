package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type QueueEntry struct {
	UserID         string    `json:"user_id"`
	OrderID        string    `json:"order_id"`
	PickupLocation string    `json:"pickup_location"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
}

// CaseQueue is the FIFO waiting list for one case. Entries is keyed by
// 1-based position and always holds exactly positions 1..QueueCount.
type CaseQueue struct {
	CaseID     string             `json:"case_id"`
	Entries    map[int]QueueEntry `json:"entries"`
	QueueCount int                `json:"queue_count"`
	Version    int64              `json:"version"`
}

func NewCaseQueue(caseID string) *CaseQueue {
	return &CaseQueue{CaseID: caseID, Entries: make(map[int]QueueEntry)}
}

// Head returns the entry at position 1.
func (q *CaseQueue) Head() (QueueEntry, bool) {
	e, ok := q.Entries[1]
	return e, ok
}

// Ordered returns the entries from head to tail.
func (q *CaseQueue) Ordered() []QueueEntry {
	out := make([]QueueEntry, 0, q.QueueCount)
	for pos := 1; pos <= q.QueueCount; pos++ {
		if e, ok := q.Entries[pos]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Position returns the 1-based position of orderID, or 0.
func (q *CaseQueue) Position(orderID string) int {
	for pos := 1; pos <= q.QueueCount; pos++ {
		if q.Entries[pos].OrderID == orderID {
			return pos
		}
	}
	return 0
}

// GetCaseQueue reads the queue record for a case. A case nobody has queued
// for yet yields an empty record at version 0.
func (db *DB) GetCaseQueue(ctx context.Context, caseID string) (*CaseQueue, error) {
	var raw string
	q := NewCaseQueue(caseID)
	err := db.QueryRowContext(ctx, db.Q(`SELECT entries, queue_count, version FROM case_queues WHERE case_id=?`), caseID).
		Scan(&raw, &q.QueueCount, &q.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return q, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get case queue %s: %w", caseID, err)
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &q.Entries); err != nil {
			return nil, fmt.Errorf("decode case queue %s: %w", caseID, err)
		}
	}
	return q, nil
}

// SwapCaseQueue writes q only if the stored version still equals expected,
// returning ErrConflict otherwise. On success q.Version is the new version.
func (db *DB) SwapCaseQueue(ctx context.Context, q *CaseQueue, expected int64) error {
	data, err := json.Marshal(q.Entries)
	if err != nil {
		return fmt.Errorf("encode case queue %s: %w", q.CaseID, err)
	}

	if expected == 0 {
		_, err := db.ExecContext(ctx, db.Q(`INSERT INTO case_queues (case_id, entries, queue_count, version) VALUES (?, ?, ?, 1)`),
			q.CaseID, string(data), q.QueueCount)
		if err == nil {
			q.Version = 1
			return nil
		}
		// A failed insert on an existing key means someone else created it first.
		ok, lookupErr := db.exists(ctx, `SELECT COUNT(*) FROM case_queues WHERE case_id=?`, q.CaseID)
		if lookupErr == nil && ok {
			return ErrConflict
		}
		return fmt.Errorf("insert case queue %s: %w", q.CaseID, err)
	}

	res, err := db.ExecContext(ctx, db.Q(`UPDATE case_queues SET entries=?, queue_count=?, version=version+1, updated_at=datetime('now','localtime') WHERE case_id=? AND version=?`),
		string(data), q.QueueCount, q.CaseID, expected)
	if err != nil {
		return fmt.Errorf("update case queue %s: %w", q.CaseID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	q.Version = expected + 1
	return nil
}
