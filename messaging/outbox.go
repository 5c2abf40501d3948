package messaging

import (
	"context"
	"log"
	"sync"
	"time"

	"kartcore/store"
)

// Publisher is the part of Client the drainer needs.
type Publisher interface {
	Publish(topic string, payload []byte) error
	IsConnected() bool
}

// OutboxDrainer periodically publishes pending outbox messages to their topics.
type OutboxDrainer struct {
	db        *store.DB
	pub       Publisher
	interval  time.Duration
	batchSize int
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

func NewOutboxDrainer(db *store.DB, pub Publisher, interval time.Duration) *OutboxDrainer {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OutboxDrainer{
		db:        db,
		pub:       pub,
		interval:  interval,
		batchSize: 50,
		stopChan:  make(chan struct{}),
	}
}

func (d *OutboxDrainer) Start() {
	d.wg.Add(1)
	go d.run()
}

func (d *OutboxDrainer) Stop() {
	select {
	case <-d.stopChan:
	default:
		close(d.stopChan)
	}
	d.wg.Wait()
}

func (d *OutboxDrainer) run() {
	defer d.wg.Done()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopChan:
			return
		case <-ticker.C:
			d.Drain(context.Background())
		}
	}
}

// Drain publishes one batch of pending messages and returns how many were
// sent. A failed publish leaves the message pending with its retry count bumped.
func (d *OutboxDrainer) Drain(ctx context.Context) int {
	if !d.pub.IsConnected() {
		return 0
	}
	msgs, err := d.db.ListPendingOutbox(ctx, d.batchSize)
	if err != nil {
		log.Printf("outbox: list pending: %v", err)
		return 0
	}
	sent := 0
	for _, msg := range msgs {
		if err := d.pub.Publish(msg.Topic, msg.Payload); err != nil {
			log.Printf("outbox: publish %s to %s failed: %v", msg.MsgType, msg.Topic, err)
			d.db.IncrementOutboxRetries(ctx, msg.ID)
			continue
		}
		if err := d.db.AckOutbox(ctx, msg.ID); err != nil {
			log.Printf("outbox: ack msg %d: %v", msg.ID, err)
			continue
		}
		sent++
	}
	return sent
}
