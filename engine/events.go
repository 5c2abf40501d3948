package engine

const (
	EventCaseAvailabilityChanged EventType = iota + 1
	EventQueueChanged
	EventOrderQueued
	EventOrderFulfilled
	EventOrderDispatched
	EventDispatchFailed
	EventKartReceived
	EventOrderCompleted
	EventOrderScanned
	EventKartMoved
	EventMessagingConnected
	EventMessagingDisconnected
)

var eventNames = map[EventType]string{
	EventCaseAvailabilityChanged: "case-availability",
	EventQueueChanged:            "queue-changed",
	EventOrderQueued:             "order-queued",
	EventOrderFulfilled:          "order-fulfilled",
	EventOrderDispatched:         "order-dispatched",
	EventDispatchFailed:          "dispatch-failed",
	EventKartReceived:            "kart-received",
	EventOrderCompleted:          "order-completed",
	EventOrderScanned:            "order-scanned",
	EventKartMoved:               "kart-moved",
	EventMessagingConnected:      "messaging-connected",
	EventMessagingDisconnected:   "messaging-disconnected",
}

// String is the SSE event name.
func (t EventType) String() string {
	if s, ok := eventNames[t]; ok {
		return s
	}
	return "unknown"
}

// --- Event payloads ---

type CaseAvailabilityChangedEvent struct {
	CaseID    string `json:"case_id"`
	Available bool   `json:"available"`
	Location  string `json:"location,omitempty"`
}

type QueueChangedEvent struct {
	CaseID     string `json:"case_id"`
	QueueCount int    `json:"queue_count"`
}

type OrderQueuedEvent struct {
	OrderID  string `json:"order_id"`
	UserID   string `json:"user_id"`
	CaseID   string `json:"case_id"`
	Position int    `json:"queue_position"`
}

type OrderFulfilledEvent struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	CaseID  string `json:"case_id"`
}

type OrderDispatchedEvent struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	CaseID  string `json:"case_id"`
	KartID  string `json:"kart_id"`
}

type DispatchFailedEvent struct {
	OrderID string `json:"order_id"`
	CaseID  string `json:"case_id"`
	Reason  string `json:"reason"`
}

type KartReceivedEvent struct {
	OrderID string `json:"order_id"`
	KartID  string `json:"kart_id"`
}

type OrderCompletedEvent struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	KartID  string `json:"kart_id"`
}

type OrderScannedEvent struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

type KartMovedEvent struct {
	KartID   string `json:"kart_id"`
	Location string `json:"location"`
}

type ConnectionEvent struct {
	Detail string `json:"detail"`
}
