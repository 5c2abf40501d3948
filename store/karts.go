package store

import (
	"context"
	"fmt"
	"time"
)

type Kart struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	CurrentLocation string    `json:"current_location"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// KartJob is one fulfilled order waiting on a kart.
type KartJob struct {
	KartID         string    `json:"kart_id"`
	OrderID        string    `json:"order_id"`
	UserID         string    `json:"user_id"`
	CaseID         string    `json:"case_id"`
	PickupLocation string    `json:"pickup_location"`
	CreatedAt      time.Time `json:"created_at"`
}

func scanKart(row interface{ Scan(...any) error }) (*Kart, error) {
	var k Kart
	var createdAt, updatedAt any
	if err := row.Scan(&k.ID, &k.Name, &k.CurrentLocation, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	k.CreatedAt = parseTime(createdAt)
	k.UpdatedAt = parseTime(updatedAt)
	return &k, nil
}

func (db *DB) CreateKart(ctx context.Context, k *Kart) error {
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO karts (id, name, current_location) VALUES (?, ?, ?)`),
		k.ID, k.Name, k.CurrentLocation)
	if err != nil {
		return fmt.Errorf("create kart: %w", err)
	}
	return nil
}

func (db *DB) GetKart(ctx context.Context, id string) (*Kart, error) {
	row := db.QueryRowContext(ctx, db.Q(`SELECT id, name, current_location, created_at, updated_at FROM karts WHERE id=?`), id)
	k, err := scanKart(row)
	if err != nil {
		return nil, notFound(err, "kart "+id)
	}
	return k, nil
}

// ListKarts returns every kart ordered by id.
func (db *DB) ListKarts(ctx context.Context) ([]*Kart, error) {
	rows, err := db.QueryContext(ctx, db.Q(`SELECT id, name, current_location, created_at, updated_at FROM karts ORDER BY id`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var karts []*Kart
	for rows.Next() {
		k, err := scanKart(rows)
		if err != nil {
			return nil, err
		}
		karts = append(karts, k)
	}
	return karts, rows.Err()
}

func (db *DB) UpdateKartLocation(ctx context.Context, id, location string) error {
	res, err := db.ExecContext(ctx, db.Q(`UPDATE karts SET current_location=?, updated_at=datetime('now','localtime') WHERE id=?`), location, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL counts changed rows, not matched ones.
		ok, err := db.exists(ctx, `SELECT COUNT(*) FROM karts WHERE id=?`, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("kart %s: %w", id, ErrNotFound)
		}
	}
	return nil
}

func (db *DB) DeleteKart(ctx context.Context, id string) error {
	_, err := db.ExecContext(ctx, db.Q(`DELETE FROM karts WHERE id=?`), id)
	return err
}

// AppendKartJob adds an order to a kart's work list. Each job is its own row,
// so concurrent appends to one kart never overwrite each other, and appending
// the same order twice is a no-op.
func (db *DB) AppendKartJob(ctx context.Context, j *KartJob) error {
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO kart_queue (kart_id, order_id, user_id, case_id, pickup_location) VALUES (?, ?, ?, ?, ?)`),
		j.KartID, j.OrderID, j.UserID, j.CaseID, j.PickupLocation)
	if err == nil {
		return nil
	}
	ok, lookupErr := db.exists(ctx, `SELECT COUNT(*) FROM kart_queue WHERE kart_id=? AND order_id=?`, j.KartID, j.OrderID)
	if lookupErr == nil && ok {
		return nil
	}
	return fmt.Errorf("append kart job: %w", err)
}

func (db *DB) ListKartJobs(ctx context.Context, kartID string) ([]*KartJob, error) {
	rows, err := db.QueryContext(ctx, db.Q(`SELECT kart_id, order_id, user_id, case_id, pickup_location, created_at FROM kart_queue WHERE kart_id=? ORDER BY created_at, order_id`), kartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var jobs []*KartJob
	for rows.Next() {
		var j KartJob
		var createdAt any
		if err := rows.Scan(&j.KartID, &j.OrderID, &j.UserID, &j.CaseID, &j.PickupLocation, &createdAt); err != nil {
			return nil, err
		}
		j.CreatedAt = parseTime(createdAt)
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

func (db *DB) CountKartJobs(ctx context.Context, kartID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, db.Q(`SELECT COUNT(*) FROM kart_queue WHERE kart_id=?`), kartID).Scan(&n)
	return n, err
}

// RemoveKartJob drops an order from a kart's list once the kart is done with it.
func (db *DB) RemoveKartJob(ctx context.Context, kartID, orderID string) error {
	_, err := db.ExecContext(ctx, db.Q(`DELETE FROM kart_queue WHERE kart_id=? AND order_id=?`), kartID, orderID)
	return err
}
