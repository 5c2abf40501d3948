package dispatch

// Emitter is the interface adapters must satisfy to bridge dispatch events to the engine.
type Emitter interface {
	EmitOrderDispatched(orderID, userID, caseID, kartID string)
	EmitDispatchFailed(orderID, caseID, reason string)
}
