package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"

	"kartcore/store"
)

// Stalled is the work a reconcile pass found left behind by handlers that
// stopped part way.
type Stalled struct {
	// Cases whose head can be advanced: available with a waiting queue, or
	// reserved for the head but never popped.
	Cases []string
	// Orders fulfilled and popped that never reached a kart, including ones
	// claimed for a kart that was never told.
	Orders []*store.Order
	// Orphaned cases are held for an order that will never fulfill: it does
	// not exist, or it is still queued but gone from the case's queue.
	// Releasing them is the only way the case's queue moves again.
	Orphaned []string
}

// FindStalled scans cases and fulfilled orders for interrupted work.
func (m *Machine) FindStalled(ctx context.Context) (*Stalled, error) {
	cases, err := m.db.ListCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile: list cases: %w", err)
	}
	s := &Stalled{}
	for _, c := range cases {
		q, err := m.queue.Snapshot(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("reconcile: read queue %s: %w", c.ID, err)
		}
		if !c.IsAvailable && c.ReservedFor != "" && q.Position(c.ReservedFor) == 0 {
			orphaned, err := m.orphaned(ctx, c.ReservedFor)
			if err != nil {
				return nil, err
			}
			if orphaned {
				s.Orphaned = append(s.Orphaned, c.ID)
				continue
			}
		}
		head, ok := q.Head()
		if !ok {
			continue
		}
		if c.IsAvailable || c.ReservedFor == head.OrderID {
			s.Cases = append(s.Cases, c.ID)
		}
	}

	orders, err := m.db.ListOrdersByState(ctx, StateFulfilled)
	if err != nil {
		return nil, fmt.Errorf("reconcile: list fulfilled orders: %w", err)
	}
	for _, o := range orders {
		q, err := m.queue.Snapshot(ctx, o.CaseID)
		if err != nil {
			return nil, fmt.Errorf("reconcile: read queue %s: %w", o.CaseID, err)
		}
		if q.Position(o.OrderID) == 0 {
			s.Orders = append(s.Orders, o)
		}
	}
	return s, nil
}

func (m *Machine) orphaned(ctx context.Context, orderID string) (bool, error) {
	o, err := m.db.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reconcile: order %s: %w", orderID, err)
	}
	return o.State == StateQueued, nil
}

// Reconcile finds stalled work and finishes it in place. Failures are logged
// and the pass moves on; the returned count is how many items made progress.
func (m *Machine) Reconcile(ctx context.Context) (int, error) {
	s, err := m.FindStalled(ctx)
	if err != nil {
		return 0, err
	}
	progressed := 0
	for _, caseID := range s.Orphaned {
		released, err := m.db.ReleaseCase(ctx, caseID, "")
		if err != nil {
			log.Printf("lifecycle: reconcile release %s: %v", caseID, err)
			continue
		}
		if released {
			log.Printf("lifecycle: released case %s from an order that will never fulfill", caseID)
			progressed++
			s.Cases = append(s.Cases, caseID)
		}
	}
	for _, caseID := range s.Cases {
		out, err := m.Advance(ctx, caseID)
		if err != nil {
			log.Printf("lifecycle: reconcile case %s: %v", caseID, err)
		}
		if out == OutcomeDispatched || out == OutcomeFulfilled {
			progressed++
		}
	}
	for _, o := range s.Orders {
		if err := m.Redispatch(ctx, o.OrderID); err != nil {
			log.Printf("lifecycle: reconcile order %s: %v", o.OrderID, err)
			continue
		}
		progressed++
	}
	return progressed, nil
}
