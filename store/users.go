package store

import (
	"context"
	"fmt"
	"time"
)

type User struct {
	ID             string    `json:"id"`
	DisplayName    string    `json:"display_name"`
	DeviceToken    string    `json:"-"`
	PickupLocation string    `json:"pickup_location"`
	TokenHash      string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

type CartItem struct {
	UserID  string    `json:"user_id"`
	CaseID  string    `json:"case_id"`
	AddedAt time.Time `json:"added_at"`
}

func (db *DB) CreateUser(ctx context.Context, u *User) error {
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO users (id, display_name, device_token, pickup_location, token_hash) VALUES (?, ?, ?, ?, ?)`),
		u.ID, u.DisplayName, u.DeviceToken, u.PickupLocation, u.TokenHash)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (db *DB) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	var createdAt any
	err := db.QueryRowContext(ctx, db.Q(`SELECT id, display_name, device_token, pickup_location, token_hash, created_at FROM users WHERE id=?`), id).
		Scan(&u.ID, &u.DisplayName, &u.DeviceToken, &u.PickupLocation, &u.TokenHash, &createdAt)
	if err != nil {
		return nil, notFound(err, "user "+id)
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

// GetDeviceToken returns the push token for a user, empty when none is registered.
func (db *DB) GetDeviceToken(ctx context.Context, userID string) (string, error) {
	var token string
	err := db.QueryRowContext(ctx, db.Q(`SELECT device_token FROM users WHERE id=?`), userID).Scan(&token)
	if err != nil {
		return "", notFound(err, "user "+userID)
	}
	return token, nil
}

func (db *DB) SetDeviceToken(ctx context.Context, userID, token string) error {
	_, err := db.ExecContext(ctx, db.Q(`UPDATE users SET device_token=? WHERE id=?`), token, userID)
	return err
}

func (db *DB) SetPickupLocation(ctx context.Context, userID, location string) error {
	_, err := db.ExecContext(ctx, db.Q(`UPDATE users SET pickup_location=? WHERE id=?`), location, userID)
	return err
}

func (db *DB) SetUserTokenHash(ctx context.Context, userID, hash string) error {
	_, err := db.ExecContext(ctx, db.Q(`UPDATE users SET token_hash=? WHERE id=?`), hash, userID)
	return err
}

// AddCartItem puts a case in the user's cart. Adding it twice is a no-op.
func (db *DB) AddCartItem(ctx context.Context, userID, caseID string) error {
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO user_carts (user_id, case_id) VALUES (?, ?)`), userID, caseID)
	if err == nil {
		return nil
	}
	ok, lookupErr := db.exists(ctx, `SELECT COUNT(*) FROM user_carts WHERE user_id=? AND case_id=?`, userID, caseID)
	if lookupErr == nil && ok {
		return nil
	}
	return fmt.Errorf("add cart item: %w", err)
}

func (db *DB) RemoveCartItem(ctx context.Context, userID, caseID string) error {
	_, err := db.ExecContext(ctx, db.Q(`DELETE FROM user_carts WHERE user_id=? AND case_id=?`), userID, caseID)
	return err
}

func (db *DB) ListCart(ctx context.Context, userID string) ([]*CartItem, error) {
	rows, err := db.QueryContext(ctx, db.Q(`SELECT user_id, case_id, added_at FROM user_carts WHERE user_id=? ORDER BY added_at, case_id`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CartItem
	for rows.Next() {
		var c CartItem
		var addedAt any
		if err := rows.Scan(&c.UserID, &c.CaseID, &addedAt); err != nil {
			return nil, err
		}
		c.AddedAt = parseTime(addedAt)
		items = append(items, &c)
	}
	return items, rows.Err()
}
