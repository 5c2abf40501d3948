package messaging

import (
	"context"
	"log"
	"time"

	"kartcore/protocol"
)

// Actions is what inbound floor messages can ask the core to do.
type Actions interface {
	ReleaseCase(ctx context.Context, caseID, location string) error
	MoveKart(ctx context.Context, kartID, location string) error
	MarkKartReceived(ctx context.Context, orderID, kartID string) error
	CompleteByKart(ctx context.Context, orderID, kartID string) error
	ConfirmScan(ctx context.Context, orderID, userID string) error
}

// CoreHandler handles inbound protocol messages on the events topic from
// shelf scanners, karts and user devices.
type CoreHandler struct {
	protocol.NoOpHandler

	actions Actions
	timeout time.Duration
}

func NewCoreHandler(actions Actions) *CoreHandler {
	return &CoreHandler{actions: actions, timeout: 30 * time.Second}
}

func (h *CoreHandler) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.timeout)
}

func (h *CoreHandler) HandleCaseScanned(env *protocol.Envelope, p *protocol.CaseScanned) {
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.actions.ReleaseCase(ctx, p.CaseID, p.Location); err != nil {
		log.Printf("core_handler: case %s scanned at %s by %s: %v", p.CaseID, p.Location, env.Src.Node, err)
	}
}

func (h *CoreHandler) HandleKartLocation(env *protocol.Envelope, p *protocol.KartLocation) {
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.actions.MoveKart(ctx, p.KartID, p.Location); err != nil {
		log.Printf("core_handler: kart %s location %s: %v", p.KartID, p.Location, err)
	}
}

func (h *CoreHandler) HandleKartReceived(env *protocol.Envelope, p *protocol.KartReceived) {
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.actions.MarkKartReceived(ctx, p.OrderID, p.KartID); err != nil {
		log.Printf("core_handler: kart %s received %s: %v", p.KartID, p.OrderID, err)
	}
}

func (h *CoreHandler) HandleKartCompleted(env *protocol.Envelope, p *protocol.KartCompleted) {
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.actions.CompleteByKart(ctx, p.OrderID, p.KartID); err != nil {
		log.Printf("core_handler: kart %s completed %s: %v", p.KartID, p.OrderID, err)
	}
}

func (h *CoreHandler) HandleOrderScanned(env *protocol.Envelope, p *protocol.OrderScanned) {
	ctx, cancel := h.ctx()
	defer cancel()
	if err := h.actions.ConfirmScan(ctx, p.OrderID, p.UserID); err != nil {
		log.Printf("core_handler: order %s scanned by %s: %v", p.OrderID, p.UserID, err)
	}
}

// Listen subscribes the handler to the inbound topic. Only messages addressed
// to the core role are processed.
func Listen(client *Client, topic string, h *CoreHandler) error {
	ing := protocol.NewIngestor(h, func(hdr *protocol.RawHeader) bool {
		return hdr.Dst.Role == protocol.RoleCore
	})
	return client.Subscribe(topic, ing.HandleRaw)
}
