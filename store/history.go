package store

import (
	"context"
	"database/sql"
	"time"
)

type HistoryEntry struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	OrderID       string    `json:"order_id"`
	CaseID        string    `json:"case_id"`
	EventType     string    `json:"event_type"`
	Info          string    `json:"info"`
	QueuePosition *int      `json:"queue_position,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (db *DB) AppendHistory(ctx context.Context, h *HistoryEntry) error {
	var pos any
	if h.QueuePosition != nil {
		pos = *h.QueuePosition
	}
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO user_history (user_id, order_id, case_id, event_type, info, queue_position) VALUES (?, ?, ?, ?, ?, ?)`),
		h.UserID, h.OrderID, h.CaseID, h.EventType, h.Info, pos)
	return err
}

// ListHistory returns a user's history, newest first.
func (db *DB) ListHistory(ctx context.Context, userID string, limit int) ([]*HistoryEntry, error) {
	rows, err := db.QueryContext(ctx, db.Q(`SELECT id, user_id, order_id, case_id, event_type, info, queue_position, created_at FROM user_history WHERE user_id=? ORDER BY id DESC LIMIT ?`), userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		var pos sql.NullInt64
		var createdAt any
		if err := rows.Scan(&h.ID, &h.UserID, &h.OrderID, &h.CaseID, &h.EventType, &h.Info, &pos, &createdAt); err != nil {
			return nil, err
		}
		if pos.Valid {
			p := int(pos.Int64)
			h.QueuePosition = &p
		}
		h.CreatedAt = parseTime(createdAt)
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}
