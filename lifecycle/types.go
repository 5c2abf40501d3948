package lifecycle

import (
	"context"
	"errors"

	"kartcore/dispatch"
	"kartcore/store"
)

// Order states
const (
	StateQueued     = "queued"
	StateFulfilled  = "fulfilled"
	StateDispatched = "dispatched"
	StateCompleted  = "completed"
	StateScanned    = "scanned"
)

// validTransitions defines which state transitions are allowed. Nothing goes backwards.
var validTransitions = map[string][]string{
	StateQueued:     {StateFulfilled},
	StateFulfilled:  {StateDispatched},
	StateDispatched: {StateCompleted},
	StateCompleted:  {StateScanned},
}

// IsValidTransition checks if a state transition is allowed.
func IsValidTransition(from, to string) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the state is a terminal state.
func IsTerminal(state string) bool {
	return state == StateScanned
}

// ErrInvalidTransition is returned when an order is asked to move to a state
// its current state cannot reach.
var ErrInvalidTransition = errors.New("lifecycle: invalid transition")

// Outcome reports what one Advance call did.
type Outcome int

const (
	// OutcomeIdle: the queue was empty.
	OutcomeIdle Outcome = iota
	// OutcomeSkipped: another handler owns the head, or the case is held.
	OutcomeSkipped
	// OutcomeFulfilled: the head was fulfilled and popped but not handed to a kart.
	OutcomeFulfilled
	// OutcomeDispatched: the head was fulfilled, popped and assigned to a kart.
	OutcomeDispatched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFulfilled:
		return "fulfilled"
	case OutcomeDispatched:
		return "dispatched"
	}
	return "unknown"
}

// History event types and texts written to the user's log.
const (
	HistoryFulfilled  = "fulfilled"
	HistoryDispatched = "dispatched"
	HistoryCompleted  = "completed"
	HistoryScanned    = "scanned"

	msgFulfilled  = "Your order has been completed!"
	msgDispatched = "Your order has been sent to a kart for processing"
	msgCompleted  = "Your kart has dropped off your order"
	msgScanned    = "Order picked up. Enjoy!"
)

// Queue is the part of the queue manager the machine drives.
type Queue interface {
	Peek(ctx context.Context, caseID string) (*store.QueueEntry, error)
	PopIfHead(ctx context.Context, caseID, orderID string) (*store.QueueEntry, error)
	Snapshot(ctx context.Context, caseID string) (*store.CaseQueue, error)
}

// Dispatcher picks a kart for a fulfilled order and hands the order to it.
type Dispatcher interface {
	Choose(ctx context.Context, a dispatch.Assignment, caseLocation string) (*dispatch.Result, error)
	Assign(ctx context.Context, a dispatch.Assignment, kartID, caseLocation string) error
}

// KartJobs removes finished work from a kart's list.
type KartJobs interface {
	FinishJob(ctx context.Context, kartID, orderID string) error
}

// Notifier sends the best-effort user notifications for lifecycle steps.
type Notifier interface {
	OrderFulfilled(ctx context.Context, userID, caseID string)
	OrderDispatched(ctx context.Context, userID, caseID, kartID string)
}
