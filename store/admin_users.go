package store

import (
	"context"
	"time"
)

type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

func (db *DB) CreateAdminUser(ctx context.Context, username, passwordHash string) error {
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO admin_users (username, password_hash) VALUES (?, ?)`), username, passwordHash)
	return err
}

func (db *DB) GetAdminUser(ctx context.Context, username string) (*AdminUser, error) {
	var u AdminUser
	var createdAt any
	err := db.QueryRowContext(ctx, db.Q(`SELECT id, username, password_hash, created_at FROM admin_users WHERE username=?`), username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if err != nil {
		return nil, notFound(err, "admin user "+username)
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

func (db *DB) AdminUserExists(ctx context.Context) (bool, error) {
	return db.exists(ctx, `SELECT COUNT(*) FROM admin_users`)
}
