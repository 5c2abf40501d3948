package engine

import (
	"context"

	"kartcore/lifecycle"
)

func (e *Engine) wireEventHandlers() {
	// Every write to a case's queue may have made its head serviceable
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(QueueChangedEvent)
		e.router.Submit(Trigger{Kind: TriggerQueueChanged, CaseID: ev.CaseID})
	}, EventQueueChanged)

	// A released case can go to the next order in line
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(CaseAvailabilityChangedEvent)
		e.router.Submit(Trigger{Kind: TriggerAvailabilityChanged, CaseID: ev.CaseID, Available: ev.Available})
	}, EventCaseAvailabilityChanged)

	// A kart showing up may unblock orders that found none
	e.Events.SubscribeTypes(func(evt Event) {
		e.redispatchStranded()
	}, EventKartMoved)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(OrderQueuedEvent)
		e.logFn("engine: order %s queued on case %s at #%d for %s", ev.OrderID, ev.CaseID, ev.Position, ev.UserID)
	}, EventOrderQueued)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(OrderDispatchedEvent)
		e.logFn("engine: order %s dispatched to kart %s", ev.OrderID, ev.KartID)
	}, EventOrderDispatched)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(DispatchFailedEvent)
		e.logFn("engine: order %s on case %s is fulfilled but undispatched: %s", ev.OrderID, ev.CaseID, ev.Reason)
	}, EventDispatchFailed)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(OrderCompletedEvent)
		e.logFn("engine: order %s completed by kart %s", ev.OrderID, ev.KartID)
	}, EventOrderCompleted)
}

// redispatchStranded submits a redispatch for every fulfilled order that
// never reached a kart. Redispatch itself skips orders still in a queue.
func (e *Engine) redispatchStranded() {
	orders, err := e.db.ListOrdersByState(context.Background(), lifecycle.StateFulfilled)
	if err != nil {
		e.logFn("engine: list fulfilled orders: %v", err)
		return
	}
	for _, o := range orders {
		if o.KartID != "" {
			continue
		}
		e.router.Submit(Trigger{Kind: TriggerRedispatch, CaseID: o.CaseID, OrderID: o.OrderID})
	}
}
