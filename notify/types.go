package notify

import "context"

// Payload is a user-facing push message.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
}

// Pusher hands a payload to the push delivery service for one device.
type Pusher interface {
	Push(ctx context.Context, token, userID string, p Payload) error
}

// DefaultIcon is attached to every payload unless the notifier is given another.
const DefaultIcon = "/icons/kart.png"
