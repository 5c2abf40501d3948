package protocol

// --- Floor -> Core payloads ---

// CaseScanned reports a case put back on a shelf cell, which makes it available.
type CaseScanned struct {
	CaseID    string `json:"case_id"`
	Location  string `json:"location"`
	ScannerID string `json:"scanner_id,omitempty"`
}

// KartLocation is a kart's periodic position report.
type KartLocation struct {
	KartID   string `json:"kart_id"`
	Location string `json:"location"`
}

// KartReceived is sent when a kart has picked up the case for an order.
type KartReceived struct {
	KartID  string `json:"kart_id"`
	OrderID string `json:"order_id"`
}

// KartCompleted is sent when a kart has dropped the case at the pickup cell.
type KartCompleted struct {
	KartID  string `json:"kart_id"`
	OrderID string `json:"order_id"`
}

// OrderScanned is sent when the user scans the delivered case.
type OrderScanned struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

// --- Core -> Floor payloads ---

// KartAssignment tells a kart to fetch a case and bring it to a user.
type KartAssignment struct {
	KartID         string `json:"kart_id"`
	OrderID        string `json:"order_id"`
	UserID         string `json:"user_id"`
	CaseID         string `json:"case_id"`
	CaseLocation   string `json:"case_location"`
	PickupLocation string `json:"pickup_location"`
}

// PushNotification is handed to the push relay for delivery to a device.
type PushNotification struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Icon   string `json:"icon,omitempty"`
}
