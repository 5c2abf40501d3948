package store

import (
	"context"
	"fmt"
	"time"
)

// Order is a user's claim on one case, from admission through pickup.
type Order struct {
	OrderID         string     `json:"order_id"`
	UserID          string     `json:"user_id"`
	CaseID          string     `json:"case_id"`
	State           string     `json:"state"`
	PickupLocation  string     `json:"pickup_location"`
	QueuePosition   int        `json:"queue_position"`
	KartID          string     `json:"kart_id,omitempty"`
	KartReceived    bool       `json:"kart_received"`
	CompletedByKart bool       `json:"completed_by_kart"`
	ScannedByUser   bool       `json:"scanned_by_user"`
	EnqueuedAt      time.Time  `json:"enqueued_at"`
	FulfilledAt     *time.Time `json:"fulfilled_at,omitempty"`
	DispatchedAt    *time.Time `json:"dispatched_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	ScannedAt       *time.Time `json:"scanned_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

const orderSelectCols = `order_id, user_id, case_id, state, pickup_location, queue_position, kart_id, kart_received, completed_by_kart, scanned_by_user, enqueued_at, fulfilled_at, dispatched_at, completed_at, scanned_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	var enqueuedAt, fulfilledAt, dispatchedAt, completedAt, scannedAt, updatedAt any
	err := row.Scan(&o.OrderID, &o.UserID, &o.CaseID, &o.State, &o.PickupLocation, &o.QueuePosition,
		&o.KartID, &o.KartReceived, &o.CompletedByKart, &o.ScannedByUser,
		&enqueuedAt, &fulfilledAt, &dispatchedAt, &completedAt, &scannedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	o.EnqueuedAt = parseTime(enqueuedAt)
	o.FulfilledAt = parseTimePtr(fulfilledAt)
	o.DispatchedAt = parseTimePtr(dispatchedAt)
	o.CompletedAt = parseTimePtr(completedAt)
	o.ScannedAt = parseTimePtr(scannedAt)
	o.UpdatedAt = parseTime(updatedAt)
	return &o, nil
}

func (db *DB) queryOrders(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := db.QueryContext(ctx, db.Q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CreateOrder records a newly queued order.
func (db *DB) CreateOrder(ctx context.Context, o *Order) error {
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO orders (order_id, user_id, case_id, state, pickup_location, queue_position) VALUES (?, ?, ?, 'queued', ?, ?)`),
		o.OrderID, o.UserID, o.CaseID, o.PickupLocation, o.QueuePosition)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	o.State = "queued"
	return nil
}

func (db *DB) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	row := db.QueryRowContext(ctx, db.Q(`SELECT `+orderSelectCols+` FROM orders WHERE order_id=?`), orderID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, notFound(err, "order "+orderID)
	}
	return o, nil
}

func (db *DB) ListOrdersByUser(ctx context.Context, userID string) ([]*Order, error) {
	return db.queryOrders(ctx, `SELECT `+orderSelectCols+` FROM orders WHERE user_id=? ORDER BY enqueued_at DESC, order_id`, userID)
}

func (db *DB) ListOrdersByState(ctx context.Context, state string) ([]*Order, error) {
	return db.queryOrders(ctx, `SELECT `+orderSelectCols+` FROM orders WHERE state=? ORDER BY enqueued_at, order_id`, state)
}

func (db *DB) ListOrdersByKart(ctx context.Context, kartID string) ([]*Order, error) {
	return db.queryOrders(ctx, `SELECT `+orderSelectCols+` FROM orders WHERE kart_id=? ORDER BY updated_at, order_id`, kartID)
}

// FulfillOrder moves an order from queued to fulfilled and resets the pickup
// flags. If the queued record was never written it is created directly in
// the fulfilled state. Reports whether this call made the transition.
func (db *DB) FulfillOrder(ctx context.Context, o *Order) (bool, error) {
	ok, err := db.conditionalUpdate(ctx, `UPDATE orders SET state='fulfilled', kart_received=?, completed_by_kart=?, scanned_by_user=?, fulfilled_at=datetime('now','localtime'), updated_at=datetime('now','localtime') WHERE order_id=? AND state='queued'`,
		false, false, false, o.OrderID)
	if err != nil || ok {
		return ok, err
	}
	present, err := db.exists(ctx, `SELECT COUNT(*) FROM orders WHERE order_id=?`, o.OrderID)
	if err != nil {
		return false, err
	}
	if present {
		return false, nil
	}
	_, err = db.ExecContext(ctx, db.Q(`INSERT INTO orders (order_id, user_id, case_id, state, pickup_location, queue_position, fulfilled_at) VALUES (?, ?, ?, 'fulfilled', ?, ?, datetime('now','localtime'))`),
		o.OrderID, o.UserID, o.CaseID, o.PickupLocation, o.QueuePosition)
	if err != nil {
		if present, lookupErr := db.exists(ctx, `SELECT COUNT(*) FROM orders WHERE order_id=?`, o.OrderID); lookupErr == nil && present {
			return false, nil
		}
		return false, fmt.Errorf("insert fulfilled order: %w", err)
	}
	return true, nil
}

// ClaimOrderKart records kartID as the kart for a fulfilled order that has
// none yet. Only one claim per order succeeds.
func (db *DB) ClaimOrderKart(ctx context.Context, orderID, kartID string) (bool, error) {
	return db.conditionalUpdate(ctx, `UPDATE orders SET kart_id=?, updated_at=datetime('now','localtime') WHERE order_id=? AND state='fulfilled' AND kart_id=''`,
		kartID, orderID)
}

// UnclaimOrderKart drops kartID's claim on a fulfilled order so a later
// dispatch can pick again.
func (db *DB) UnclaimOrderKart(ctx context.Context, orderID, kartID string) (bool, error) {
	return db.conditionalUpdate(ctx, `UPDATE orders SET kart_id='', updated_at=datetime('now','localtime') WHERE order_id=? AND state='fulfilled' AND kart_id=?`,
		orderID, kartID)
}

// MarkOrderDispatched moves a fulfilled order claimed by kartID to dispatched.
func (db *DB) MarkOrderDispatched(ctx context.Context, orderID, kartID string) (bool, error) {
	return db.conditionalUpdate(ctx, `UPDATE orders SET state='dispatched', dispatched_at=datetime('now','localtime'), updated_at=datetime('now','localtime') WHERE order_id=? AND state='fulfilled' AND kart_id=?`,
		orderID, kartID)
}

// MarkKartReceived flags that the assigned kart picked the case up.
func (db *DB) MarkKartReceived(ctx context.Context, orderID string) (bool, error) {
	return db.conditionalUpdate(ctx, `UPDATE orders SET kart_received=?, updated_at=datetime('now','localtime') WHERE order_id=? AND state='dispatched' AND kart_received=?`,
		true, orderID, false)
}

func (db *DB) CompleteOrder(ctx context.Context, orderID string) (bool, error) {
	return db.conditionalUpdate(ctx, `UPDATE orders SET state='completed', completed_by_kart=?, completed_at=datetime('now','localtime'), updated_at=datetime('now','localtime') WHERE order_id=? AND state='dispatched'`,
		true, orderID)
}

func (db *DB) ScanOrder(ctx context.Context, orderID string) (bool, error) {
	return db.conditionalUpdate(ctx, `UPDATE orders SET state='scanned', scanned_by_user=?, scanned_at=datetime('now','localtime'), updated_at=datetime('now','localtime') WHERE order_id=? AND state='completed'`,
		true, orderID)
}

func (db *DB) conditionalUpdate(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := db.ExecContext(ctx, db.Q(query), args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
