package lifecycle

// EventEmitter is the interface the lifecycle package uses to emit events.
type EventEmitter interface {
	EmitOrderFulfilled(orderID, userID, caseID string)
	EmitKartReceived(orderID, kartID string)
	EmitOrderCompleted(orderID, userID, kartID string)
	EmitOrderScanned(orderID, userID string)
}
