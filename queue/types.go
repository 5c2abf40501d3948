package queue

import (
	"context"
	"errors"
	"fmt"

	"kartcore/store"
)

// ErrQueueContention is returned when the retry budget runs out before a
// queue write commits. Nothing was written; the caller may retry.
var ErrQueueContention = errors.New("queue: too much contention, try again")

// Store is the versioned compare-and-swap contract a queue backend offers.
// SwapCaseQueue must return store.ErrConflict when the stored version no
// longer equals expected.
type Store interface {
	GetCaseQueue(ctx context.Context, caseID string) (*store.CaseQueue, error)
	SwapCaseQueue(ctx context.Context, q *store.CaseQueue, expected int64) error
}

// Emitter is the interface the queue manager uses to emit events.
type Emitter interface {
	EmitOrderQueued(orderID, userID, caseID string, position int)
	EmitQueueChanged(caseID string, queueCount int)
}

// Notifier receives the best-effort user notification at admission.
type Notifier interface {
	OrderQueued(ctx context.Context, userID, caseID string, position int)
}

// Admission is the result of one successful enqueue.
type Admission struct {
	OrderID  string `json:"order_id"`
	CaseID   string `json:"case_id"`
	UserID   string `json:"user_id"`
	Position int    `json:"queue_position"`
}

// HistoryQueued is the history event type written on admission.
const HistoryQueued = "queued"

// admissionMessage is the history text shown for a committed position.
func admissionMessage(position int) string {
	if position == 1 {
		return "Order Created! Your order has been processed."
	}
	return fmt.Sprintf("Order Created! You are #%d in the queue", position)
}
