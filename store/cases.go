package store

import (
	"context"
	"fmt"
	"time"
)

type Case struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url"`
	IsAvailable  bool      `json:"is_available"`
	LastLocation string    `json:"last_location"`
	ReservedFor  string    `json:"reserved_for,omitempty"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const caseSelectCols = `id, name, description, image_url, is_available, last_location, reserved_for, version, created_at, updated_at`

func scanCase(row interface{ Scan(...any) error }) (*Case, error) {
	var c Case
	var createdAt, updatedAt any
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.IsAvailable,
		&c.LastLocation, &c.ReservedFor, &c.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func (db *DB) CreateCase(ctx context.Context, c *Case) error {
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO cases (id, name, description, image_url, is_available, last_location) VALUES (?, ?, ?, ?, ?, ?)`),
		c.ID, c.Name, c.Description, c.ImageURL, c.IsAvailable, c.LastLocation)
	if err != nil {
		return fmt.Errorf("create case: %w", err)
	}
	return nil
}

func (db *DB) GetCase(ctx context.Context, id string) (*Case, error) {
	row := db.QueryRowContext(ctx, db.Q(`SELECT `+caseSelectCols+` FROM cases WHERE id=?`), id)
	c, err := scanCase(row)
	if err != nil {
		return nil, notFound(err, "case "+id)
	}
	return c, nil
}

func (db *DB) ListCases(ctx context.Context) ([]*Case, error) {
	return db.queryCases(ctx, `SELECT `+caseSelectCols+` FROM cases ORDER BY id`)
}

// ListReservedCases returns unavailable cases that still name the order they
// were committed to.
func (db *DB) ListReservedCases(ctx context.Context) ([]*Case, error) {
	return db.queryCases(ctx, `SELECT `+caseSelectCols+` FROM cases WHERE is_available=? AND reserved_for <> '' ORDER BY id`, false)
}

func (db *DB) queryCases(ctx context.Context, query string, args ...any) ([]*Case, error) {
	rows, err := db.QueryContext(ctx, db.Q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cases []*Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// ReserveCase flips an available case to unavailable on behalf of orderID.
// The write only lands while the case still carries version, the one the
// caller read alongside the queue head. It reports false when the case was
// taken or changed in between.
func (db *DB) ReserveCase(ctx context.Context, caseID, orderID string, version int64) (bool, error) {
	res, err := db.ExecContext(ctx, db.Q(`UPDATE cases SET is_available=?, reserved_for=?, version=version+1, updated_at=datetime('now','localtime') WHERE id=? AND is_available=? AND version=?`),
		false, orderID, caseID, true, version)
	if err != nil {
		return false, fmt.Errorf("reserve case %s: %w", caseID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseCase marks a case available again at location (kept as is when empty).
// It reports whether the availability actually changed.
func (db *DB) ReleaseCase(ctx context.Context, caseID, location string) (bool, error) {
	query := `UPDATE cases SET is_available=?, reserved_for='', last_location=?, version=version+1, updated_at=datetime('now','localtime') WHERE id=? AND is_available=?`
	args := []any{true, location, caseID, false}
	if location == "" {
		query = `UPDATE cases SET is_available=?, reserved_for='', version=version+1, updated_at=datetime('now','localtime') WHERE id=? AND is_available=?`
		args = []any{true, caseID, false}
	}
	res, err := db.ExecContext(ctx, db.Q(query), args...)
	if err != nil {
		return false, fmt.Errorf("release case %s: %w", caseID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	ok, err := db.exists(ctx, `SELECT COUNT(*) FROM cases WHERE id=?`, caseID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}
	return false, nil
}

func (db *DB) SetCaseLocation(ctx context.Context, caseID, location string) error {
	_, err := db.ExecContext(ctx, db.Q(`UPDATE cases SET last_location=?, version=version+1, updated_at=datetime('now','localtime') WHERE id=?`), location, caseID)
	return err
}
