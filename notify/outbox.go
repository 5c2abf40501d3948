package notify

import (
	"context"
	"fmt"

	"kartcore/protocol"
	"kartcore/store"
)

// OutboxPusher writes push.notification envelopes to the outbox. The
// messaging drainer publishes them to the push gateway's topic.
type OutboxPusher struct {
	db        *store.DB
	topic     string
	stationID string
}

func NewOutboxPusher(db *store.DB, topic, stationID string) *OutboxPusher {
	return &OutboxPusher{db: db, topic: topic, stationID: stationID}
}

func (p *OutboxPusher) Push(ctx context.Context, token, userID string, pl Payload) error {
	env, err := protocol.NewEnvelope(protocol.TypePushNotification,
		protocol.Address{Role: protocol.RoleCore, Node: p.stationID},
		protocol.Address{Role: protocol.RolePush},
		&protocol.PushNotification{
			Token:  token,
			UserID: userID,
			Title:  pl.Title,
			Body:   pl.Body,
			Icon:   pl.Icon,
		})
	if err != nil {
		return fmt.Errorf("build push: %w", err)
	}
	data, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode push: %w", err)
	}
	return p.db.EnqueueOutbox(ctx, p.topic, data, protocol.TypePushNotification, userID)
}
