package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"

	"kartcore/dispatch"
	"kartcore/store"
)

// Machine advances orders from queued through scanned. It holds no locks of
// its own: every step is a conditional write on the case, the queue record
// or the order, so any number of handlers may run Advance for the same case
// and at most one of them fulfills a given order.
type Machine struct {
	db         *store.DB
	queue      Queue
	dispatcher Dispatcher
	karts      KartJobs
	notifier   Notifier
	emitter    EventEmitter
}

// NewMachine creates an order lifecycle machine.
func NewMachine(db *store.DB, queue Queue, dispatcher Dispatcher, karts KartJobs, emitter EventEmitter) *Machine {
	return &Machine{
		db:         db,
		queue:      queue,
		dispatcher: dispatcher,
		karts:      karts,
		emitter:    emitter,
	}
}

func (m *Machine) SetNotifier(n Notifier) { m.notifier = n }

// HandleAvailabilityChanged reacts to a case's availability flag changing.
// Only a change to available can start a fulfillment.
func (m *Machine) HandleAvailabilityChanged(ctx context.Context, caseID string, available bool) (Outcome, error) {
	if !available {
		return OutcomeIdle, nil
	}
	return m.Advance(ctx, caseID)
}

// HandleQueueChanged reacts to a write on a case's queue record.
func (m *Machine) HandleQueueChanged(ctx context.Context, caseID string) (Outcome, error) {
	return m.Advance(ctx, caseID)
}

// Advance fulfills the head of caseID's queue if the case can be taken,
// pops it and dispatches it to a kart.
//
// The case is reserved for the head order before the queue is popped. The
// reservation is conditional on the case version read before the head, so a
// head that went stale while another handler served and released the case
// can never take the case. A case that is already unavailable but reserved
// for the current head means an earlier attempt stopped between those two
// writes, and the attempt resumes. Any other unavailable case is held by
// someone else and the call is a no-op, which is what makes re-delivered
// triggers harmless.
func (m *Machine) Advance(ctx context.Context, caseID string) (Outcome, error) {
	c, err := m.db.GetCase(ctx, caseID)
	if err != nil {
		return OutcomeIdle, fmt.Errorf("advance %s: %w", caseID, err)
	}
	head, err := m.queue.Peek(ctx, caseID)
	if err != nil {
		return OutcomeIdle, fmt.Errorf("advance %s: read queue: %w", caseID, err)
	}
	if head == nil {
		return OutcomeIdle, nil
	}

	switch {
	case c.IsAvailable:
		ok, err := m.db.ReserveCase(ctx, caseID, head.OrderID, c.Version)
		if err != nil {
			return OutcomeIdle, fmt.Errorf("advance %s: %w", caseID, err)
		}
		if !ok {
			return OutcomeSkipped, nil
		}
	case c.ReservedFor == head.OrderID:
		log.Printf("lifecycle: resuming order %s on case %s", head.OrderID, caseID)
	default:
		return OutcomeSkipped, nil
	}

	order := &store.Order{
		OrderID:        head.OrderID,
		UserID:         head.UserID,
		CaseID:         caseID,
		PickupLocation: head.PickupLocation,
		QueuePosition:  1,
	}
	fulfilled, err := m.db.FulfillOrder(ctx, order)
	if err != nil {
		return OutcomeIdle, fmt.Errorf("fulfill order %s: %w", order.OrderID, err)
	}
	if fulfilled {
		log.Printf("lifecycle: order %s fulfilled case %s for %s", order.OrderID, caseID, order.UserID)
		m.history(ctx, order, HistoryFulfilled, msgFulfilled)
		if m.notifier != nil {
			m.notifier.OrderFulfilled(ctx, order.UserID, caseID)
		}
		if m.emitter != nil {
			m.emitter.EmitOrderFulfilled(order.OrderID, order.UserID, caseID)
		}
	}

	popped, err := m.queue.PopIfHead(ctx, caseID, order.OrderID)
	if err != nil {
		return OutcomeFulfilled, fmt.Errorf("pop order %s: %w", order.OrderID, err)
	}
	if popped == nil {
		return OutcomeSkipped, nil
	}

	return m.dispatch(ctx, order, c.LastLocation)
}

// dispatch hands a fulfilled order to a kart. The order is claimed for the
// chosen kart before the kart hears about it, so two dispatchers racing on
// one order leave it on exactly one kart. An order that already carries a
// claim is resumed on that kart.
func (m *Machine) dispatch(ctx context.Context, o *store.Order, caseLocation string) (Outcome, error) {
	a := dispatch.Assignment{
		OrderID:        o.OrderID,
		UserID:         o.UserID,
		CaseID:         o.CaseID,
		PickupLocation: o.PickupLocation,
	}

	kartID := o.KartID
	if kartID == "" {
		res, err := m.dispatcher.Choose(ctx, a, caseLocation)
		if err != nil {
			if errors.Is(err, dispatch.ErrNoKartAvailable) {
				log.Printf("lifecycle: order %s fulfilled but no kart is available", o.OrderID)
			}
			return OutcomeFulfilled, fmt.Errorf("dispatch order %s: %w", o.OrderID, err)
		}
		claimed, err := m.db.ClaimOrderKart(ctx, o.OrderID, res.KartID)
		if err != nil {
			return OutcomeFulfilled, fmt.Errorf("claim order %s for kart %s: %w", o.OrderID, res.KartID, err)
		}
		if !claimed {
			log.Printf("lifecycle: order %s was claimed elsewhere before kart %s", o.OrderID, res.KartID)
			return OutcomeSkipped, nil
		}
		kartID = res.KartID
	} else {
		log.Printf("lifecycle: resuming hand-off of order %s to kart %s", o.OrderID, kartID)
	}

	if err := m.dispatcher.Assign(ctx, a, kartID, caseLocation); err != nil {
		m.unclaim(ctx, o.OrderID, kartID)
		return OutcomeFulfilled, fmt.Errorf("dispatch order %s: %w", o.OrderID, err)
	}

	ok, err := m.db.MarkOrderDispatched(ctx, o.OrderID, kartID)
	if err != nil {
		return OutcomeFulfilled, fmt.Errorf("mark order %s dispatched: %w", o.OrderID, err)
	}
	if !ok {
		// A concurrent resume of the same claim got there first.
		return OutcomeSkipped, nil
	}

	m.history(ctx, o, HistoryDispatched, msgDispatched)
	if m.notifier != nil {
		m.notifier.OrderDispatched(ctx, o.UserID, o.CaseID, kartID)
	}
	return OutcomeDispatched, nil
}

// unclaim takes an order back from a kart whose assignment failed, so the
// next dispatch chooses again.
func (m *Machine) unclaim(ctx context.Context, orderID, kartID string) {
	if m.karts != nil {
		if err := m.karts.FinishJob(ctx, kartID, orderID); err != nil {
			log.Printf("lifecycle: drop job %s from kart %s: %v", orderID, kartID, err)
		}
	}
	if _, err := m.db.UnclaimOrderKart(ctx, orderID, kartID); err != nil {
		log.Printf("lifecycle: unclaim order %s from kart %s: %v", orderID, kartID, err)
	}
}

// Redispatch retries the kart hand-off for a fulfilled order that has left
// its case's queue but never reached a kart.
func (m *Machine) Redispatch(ctx context.Context, orderID string) error {
	o, err := m.CheckRedispatch(ctx, orderID)
	if err != nil {
		return err
	}
	c, err := m.db.GetCase(ctx, o.CaseID)
	if err != nil {
		return fmt.Errorf("redispatch %s: %w", orderID, err)
	}
	_, err = m.dispatch(ctx, o, c.LastLocation)
	return err
}

// CheckRedispatch returns the order if it is fulfilled and out of its queue,
// which is when Redispatch may act on it.
func (m *Machine) CheckRedispatch(ctx context.Context, orderID string) (*store.Order, error) {
	o, err := m.db.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.State != StateFulfilled {
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidTransition, orderID, o.State)
	}
	q, err := m.queue.Snapshot(ctx, o.CaseID)
	if err != nil {
		return nil, fmt.Errorf("redispatch %s: read queue: %w", orderID, err)
	}
	if q.Position(orderID) > 0 {
		return nil, fmt.Errorf("%w: order %s is still queued on case %s", ErrInvalidTransition, orderID, o.CaseID)
	}
	return o, nil
}

// MarkKartReceived records that the assigned kart has the case on board.
func (m *Machine) MarkKartReceived(ctx context.Context, orderID string) error {
	ok, err := m.db.MarkKartReceived(ctx, orderID)
	if err != nil {
		return fmt.Errorf("mark kart received %s: %w", orderID, err)
	}
	o, err := m.db.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !ok {
		if o.State == StateDispatched && o.KartReceived {
			return nil
		}
		return fmt.Errorf("%w: order %s is %s", ErrInvalidTransition, orderID, o.State)
	}
	if m.emitter != nil {
		m.emitter.EmitKartReceived(orderID, o.KartID)
	}
	return nil
}

// CompleteByKart moves a dispatched order to completed and takes it off the
// kart's work list.
func (m *Machine) CompleteByKart(ctx context.Context, orderID string) error {
	return m.transition(ctx, orderID, StateCompleted, m.db.CompleteOrder, func(o *store.Order) {
		if m.karts != nil && o.KartID != "" {
			if err := m.karts.FinishJob(ctx, o.KartID, orderID); err != nil {
				log.Printf("lifecycle: finish job %s on kart %s: %v", orderID, o.KartID, err)
			}
		}
		m.history(ctx, o, HistoryCompleted, msgCompleted)
		if m.emitter != nil {
			m.emitter.EmitOrderCompleted(orderID, o.UserID, o.KartID)
		}
	})
}

// ConfirmScan moves a completed order to scanned once the user picks it up.
func (m *Machine) ConfirmScan(ctx context.Context, orderID string) error {
	return m.transition(ctx, orderID, StateScanned, m.db.ScanOrder, func(o *store.Order) {
		m.history(ctx, o, HistoryScanned, msgScanned)
		if m.emitter != nil {
			m.emitter.EmitOrderScanned(orderID, o.UserID)
		}
	})
}

// transition applies a conditional state write. Repeating a transition that
// already happened is not an error; skipping a state is.
func (m *Machine) transition(ctx context.Context, orderID, to string,
	write func(context.Context, string) (bool, error), after func(*store.Order)) error {

	o, err := m.db.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if o.State == to {
		return nil
	}
	if !IsValidTransition(o.State, to) {
		return fmt.Errorf("%w: order %s is %s, cannot become %s", ErrInvalidTransition, orderID, o.State, to)
	}
	ok, err := write(ctx, orderID)
	if err != nil {
		return fmt.Errorf("order %s -> %s: %w", orderID, to, err)
	}
	if !ok {
		// Lost to a concurrent writer; it ran the side effects.
		return nil
	}
	o.State = to
	after(o)
	return nil
}

func (m *Machine) history(ctx context.Context, o *store.Order, eventType, info string) {
	err := m.db.AppendHistory(ctx, &store.HistoryEntry{
		UserID:    o.UserID,
		OrderID:   o.OrderID,
		CaseID:    o.CaseID,
		EventType: eventType,
		Info:      info,
	})
	if err != nil {
		log.Printf("lifecycle: history for order %s: %v", o.OrderID, err)
	}
}
