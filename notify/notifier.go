package notify

import (
	"context"
	"fmt"
	"log"

	"kartcore/store"
)

// Notifier composes status messages for users and hands them to a Pusher.
// Every method is best effort: a missing device token is a silent no-op and
// delivery failures are logged, never returned.
type Notifier struct {
	db     *store.DB
	pusher Pusher
	icon   string
}

func NewNotifier(db *store.DB, pusher Pusher) *Notifier {
	return &Notifier{db: db, pusher: pusher, icon: DefaultIcon}
}

func (n *Notifier) SetIcon(icon string) { n.icon = icon }

// OrderQueued tells the user where their new order landed in the case's queue.
func (n *Notifier) OrderQueued(ctx context.Context, userID, caseID string, position int) {
	name := n.caseName(ctx, caseID)
	body := fmt.Sprintf("You are #%d in line for %s.", position, name)
	if position == 1 {
		body = fmt.Sprintf("You are next in line for %s.", name)
	}
	n.send(ctx, userID, Payload{Title: "Order queued", Body: body})
}

// OrderFulfilled tells the user the case has been committed to them.
func (n *Notifier) OrderFulfilled(ctx context.Context, userID, caseID string) {
	n.send(ctx, userID, Payload{
		Title: "Order fulfilled",
		Body:  fmt.Sprintf("%s is now reserved for you.", n.caseName(ctx, caseID)),
	})
}

// OrderDispatched tells the user which kart is bringing the case.
func (n *Notifier) OrderDispatched(ctx context.Context, userID, caseID, kartID string) {
	n.send(ctx, userID, Payload{
		Title: "Order on its way",
		Body:  fmt.Sprintf("%s is being delivered by %s.", n.caseName(ctx, caseID), n.kartName(ctx, kartID)),
	})
}

func (n *Notifier) send(ctx context.Context, userID string, p Payload) {
	if n.pusher == nil {
		return
	}
	token, err := n.db.GetDeviceToken(ctx, userID)
	if err != nil {
		log.Printf("notify: device token for %s: %v", userID, err)
		return
	}
	if token == "" {
		return
	}
	if p.Icon == "" {
		p.Icon = n.icon
	}
	if err := n.pusher.Push(ctx, token, userID, p); err != nil {
		log.Printf("notify: push to %s: %v", userID, err)
	}
}

func (n *Notifier) caseName(ctx context.Context, caseID string) string {
	c, err := n.db.GetCase(ctx, caseID)
	if err != nil || c.Name == "" {
		return "case " + caseID
	}
	return c.Name
}

func (n *Notifier) kartName(ctx context.Context, kartID string) string {
	k, err := n.db.GetKart(ctx, kartID)
	if err != nil || k.Name == "" {
		return "kart " + kartID
	}
	return k.Name
}
