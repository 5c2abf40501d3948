package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kartcore/store"

	"github.com/google/uuid"
)

// Manager owns the per-case FIFO queues. Every mutation is a read, a local
// change and a versioned write, retried from scratch when another writer
// got there first.
type Manager struct {
	queues     Store
	db         *store.DB
	emitter    Emitter
	notifier   Notifier
	maxRetries int
}

// NewManager creates a queue manager. queues may be db itself or a Redis
// backed store; db carries orders, carts and history either way.
func NewManager(queues Store, db *store.DB, emitter Emitter, maxRetries int) *Manager {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Manager{
		queues:     queues,
		db:         db,
		emitter:    emitter,
		maxRetries: maxRetries,
	}
}

func (m *Manager) SetNotifier(n Notifier) { m.notifier = n }

// Enqueue appends a new order for userID to the tail of caseID's queue and
// returns it with its committed 1-based position.
func (m *Manager) Enqueue(ctx context.Context, caseID, userID, pickupLocation string) (*Admission, error) {
	entry := store.QueueEntry{
		UserID:         userID,
		OrderID:        uuid.New().String(),
		PickupLocation: pickupLocation,
		EnqueuedAt:     time.Now().UTC(),
	}

	var position, count int
	err := m.update(ctx, caseID, func(q *store.CaseQueue) bool {
		position = appendEntry(q, entry)
		count = q.QueueCount
		return true
	})
	if err != nil {
		return nil, err
	}

	a := &Admission{OrderID: entry.OrderID, CaseID: caseID, UserID: userID, Position: position}
	m.afterAdmit(ctx, a, pickupLocation, count)
	return a, nil
}

// afterAdmit runs the side effects of a committed admission; queueCount is
// the queue length the admission committed. The queue write is already
// durable, so failures here are logged and not returned.
func (m *Manager) afterAdmit(ctx context.Context, a *Admission, pickupLocation string, queueCount int) {
	err := m.db.CreateOrder(ctx, &store.Order{
		OrderID:        a.OrderID,
		UserID:         a.UserID,
		CaseID:         a.CaseID,
		PickupLocation: pickupLocation,
		QueuePosition:  a.Position,
	})
	if err != nil {
		log.Printf("queue: record order %s: %v", a.OrderID, err)
	}

	pos := a.Position
	err = m.db.AppendHistory(ctx, &store.HistoryEntry{
		UserID:        a.UserID,
		OrderID:       a.OrderID,
		CaseID:        a.CaseID,
		EventType:     HistoryQueued,
		Info:          admissionMessage(a.Position),
		QueuePosition: &pos,
	})
	if err != nil {
		log.Printf("queue: history for order %s: %v", a.OrderID, err)
	}

	if err := m.db.RemoveCartItem(ctx, a.UserID, a.CaseID); err != nil {
		log.Printf("queue: clear cart %s/%s: %v", a.UserID, a.CaseID, err)
	}

	if m.notifier != nil {
		m.notifier.OrderQueued(ctx, a.UserID, a.CaseID, a.Position)
	}
	if m.emitter != nil {
		m.emitter.EmitOrderQueued(a.OrderID, a.UserID, a.CaseID, a.Position)
		m.emitter.EmitQueueChanged(a.CaseID, queueCount)
	}
}

// PlaceOrder enqueues every case in the user's cart at the user's pickup
// location. Items are independent: one failing does not undo the others.
// An empty cart admits nothing and is not an error.
func (m *Manager) PlaceOrder(ctx context.Context, userID string) ([]*Admission, error) {
	user, err := m.db.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	items, err := m.db.ListCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("place order: read cart: %w", err)
	}

	var admissions []*Admission
	var firstErr error
	for _, item := range items {
		if _, err := m.db.GetCase(ctx, item.CaseID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Printf("queue: user %s cart holds unknown case %s, dropping it", userID, item.CaseID)
				m.db.RemoveCartItem(ctx, userID, item.CaseID)
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		a, err := m.Enqueue(ctx, item.CaseID, userID, user.PickupLocation)
		if err != nil {
			log.Printf("queue: enqueue %s for user %s: %v", item.CaseID, userID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		admissions = append(admissions, a)
	}
	return admissions, firstErr
}

// PopAndShift removes and returns the head of caseID's queue, moving every
// other entry up one position. An empty or absent queue yields nil.
func (m *Manager) PopAndShift(ctx context.Context, caseID string) (*store.QueueEntry, error) {
	return m.pop(ctx, caseID, "")
}

// PopIfHead pops the head only while it is still orderID. It yields nil when
// the head is some other order or the queue is empty, which makes a repeated
// pop for the same order harmless.
func (m *Manager) PopIfHead(ctx context.Context, caseID, orderID string) (*store.QueueEntry, error) {
	return m.pop(ctx, caseID, orderID)
}

func (m *Manager) pop(ctx context.Context, caseID, expectHead string) (*store.QueueEntry, error) {
	var popped *store.QueueEntry
	var remaining int
	err := m.update(ctx, caseID, func(q *store.CaseQueue) bool {
		popped = nil
		head, ok := q.Head()
		if !ok {
			return false
		}
		if expectHead != "" && head.OrderID != expectHead {
			return false
		}
		shiftHead(q)
		popped = &head
		remaining = q.QueueCount
		return true
	})
	if err != nil {
		return nil, err
	}
	if popped != nil && m.emitter != nil {
		m.emitter.EmitQueueChanged(caseID, remaining)
	}
	return popped, nil
}

// Peek returns the head of caseID's queue without changing it.
func (m *Manager) Peek(ctx context.Context, caseID string) (*store.QueueEntry, error) {
	q, err := m.queues.GetCaseQueue(ctx, caseID)
	if err != nil {
		return nil, err
	}
	head, ok := q.Head()
	if !ok {
		return nil, nil
	}
	return &head, nil
}

// Snapshot returns the current queue record for caseID.
func (m *Manager) Snapshot(ctx context.Context, caseID string) (*store.CaseQueue, error) {
	return m.queues.GetCaseQueue(ctx, caseID)
}

// update runs the optimistic read-modify-write loop. mutate reports whether
// there is anything to write; returning false ends the loop without a write.
func (m *Manager) update(ctx context.Context, caseID string, mutate func(q *store.CaseQueue) bool) error {
	for attempt := 1; attempt <= m.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		q, err := m.queues.GetCaseQueue(ctx, caseID)
		if err != nil {
			return fmt.Errorf("read queue %s: %w", caseID, err)
		}
		if q.Entries == nil {
			q.Entries = make(map[int]store.QueueEntry)
		}
		expected := q.Version
		if !mutate(q) {
			return nil
		}
		err = m.queues.SwapCaseQueue(ctx, q, expected)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("write queue %s: %w", caseID, err)
		}
		log.Printf("queue: case %s changed under us (attempt %d/%d)", caseID, attempt, m.maxRetries)
	}
	return fmt.Errorf("%w: case %s after %d attempts", ErrQueueContention, caseID, m.maxRetries)
}

func appendEntry(q *store.CaseQueue, e store.QueueEntry) int {
	pos := q.QueueCount + 1
	q.Entries[pos] = e
	q.QueueCount = pos
	return pos
}

func shiftHead(q *store.CaseQueue) {
	for pos := 2; pos <= q.QueueCount; pos++ {
		q.Entries[pos-1] = q.Entries[pos]
	}
	delete(q.Entries, q.QueueCount)
	q.QueueCount--
}
