package engine

// queueEmitter bridges the queue package's emitter interface to the EventBus.
type queueEmitter struct {
	bus *EventBus
}

func (e *queueEmitter) EmitOrderQueued(orderID, userID, caseID string, position int) {
	e.bus.Emit(Event{Type: EventOrderQueued, Payload: OrderQueuedEvent{
		OrderID:  orderID,
		UserID:   userID,
		CaseID:   caseID,
		Position: position,
	}})
}

func (e *queueEmitter) EmitQueueChanged(caseID string, queueCount int) {
	e.bus.Emit(Event{Type: EventQueueChanged, Payload: QueueChangedEvent{
		CaseID:     caseID,
		QueueCount: queueCount,
	}})
}

// dispatchEmitter bridges the dispatch package's emitter interface to the EventBus.
type dispatchEmitter struct {
	bus *EventBus
}

func (e *dispatchEmitter) EmitOrderDispatched(orderID, userID, caseID, kartID string) {
	e.bus.Emit(Event{Type: EventOrderDispatched, Payload: OrderDispatchedEvent{
		OrderID: orderID,
		UserID:  userID,
		CaseID:  caseID,
		KartID:  kartID,
	}})
}

func (e *dispatchEmitter) EmitDispatchFailed(orderID, caseID, reason string) {
	e.bus.Emit(Event{Type: EventDispatchFailed, Payload: DispatchFailedEvent{
		OrderID: orderID,
		CaseID:  caseID,
		Reason:  reason,
	}})
}

// lifecycleEmitter bridges the order state machine's transitions to the EventBus.
type lifecycleEmitter struct {
	bus *EventBus
}

func (e *lifecycleEmitter) EmitOrderFulfilled(orderID, userID, caseID string) {
	e.bus.Emit(Event{Type: EventOrderFulfilled, Payload: OrderFulfilledEvent{
		OrderID: orderID,
		UserID:  userID,
		CaseID:  caseID,
	}})
}

func (e *lifecycleEmitter) EmitKartReceived(orderID, kartID string) {
	e.bus.Emit(Event{Type: EventKartReceived, Payload: KartReceivedEvent{
		OrderID: orderID,
		KartID:  kartID,
	}})
}

func (e *lifecycleEmitter) EmitOrderCompleted(orderID, userID, kartID string) {
	e.bus.Emit(Event{Type: EventOrderCompleted, Payload: OrderCompletedEvent{
		OrderID: orderID,
		UserID:  userID,
		KartID:  kartID,
	}})
}

func (e *lifecycleEmitter) EmitOrderScanned(orderID, userID string) {
	e.bus.Emit(Event{Type: EventOrderScanned, Payload: OrderScannedEvent{
		OrderID: orderID,
		UserID:  userID,
	}})
}
