package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"

	"kartcore/grid"
	"kartcore/kartstate"
	"kartcore/protocol"
	"kartcore/store"

	"github.com/shopspring/decimal"
)

type Dispatcher struct {
	db        *store.DB
	pool      KartPool
	grid      *grid.Grid
	emitter   Emitter
	stationID string
	kartTopic string
}

func NewDispatcher(db *store.DB, pool KartPool, g *grid.Grid, emitter Emitter, stationID, kartTopic string) *Dispatcher {
	return &Dispatcher{
		db:        db,
		pool:      pool,
		grid:      g,
		emitter:   emitter,
		stationID: stationID,
		kartTopic: kartTopic,
	}
}

// Choose picks the kart nearest to caseLocation for a fulfilled order. It
// does not touch the kart; the caller claims the order for the kart first and
// then calls Assign.
func (d *Dispatcher) Choose(ctx context.Context, a Assignment, caseLocation string) (*Result, error) {
	karts, err := d.pool.ListKarts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list karts: %w", err)
	}

	kart, dist, err := Nearest(d.grid, karts, caseLocation)
	if err != nil {
		if errors.Is(err, ErrNoKartAvailable) && d.emitter != nil {
			d.emitter.EmitDispatchFailed(a.OrderID, a.CaseID, err.Error())
		}
		return nil, err
	}
	log.Printf("dispatch: order %s chose kart %s at %s (distance %s from %s)",
		a.OrderID, kart.KartID, kart.Location, dist.String(), caseLocation)
	return &Result{KartID: kart.KartID, KartName: kart.Name, Distance: dist}, nil
}

// Assign appends the order to kartID's work list and queues the kart
// message. Assigning the same order to the same kart again is harmless.
func (d *Dispatcher) Assign(ctx context.Context, a Assignment, kartID, caseLocation string) error {
	job := &store.KartJob{
		KartID:         kartID,
		OrderID:        a.OrderID,
		UserID:         a.UserID,
		CaseID:         a.CaseID,
		PickupLocation: a.PickupLocation,
	}
	if err := d.pool.AssignJob(ctx, job); err != nil {
		return fmt.Errorf("assign order %s to kart %s: %w", a.OrderID, kartID, err)
	}

	d.notifyKart(ctx, a, kartID, caseLocation)

	if d.emitter != nil {
		d.emitter.EmitOrderDispatched(a.OrderID, a.UserID, a.CaseID, kartID)
	}
	return nil
}

// notifyKart queues a kart.assignment message for the outbox drainer.
func (d *Dispatcher) notifyKart(ctx context.Context, a Assignment, kartID, caseLocation string) {
	if d.db == nil || d.kartTopic == "" {
		return
	}
	env, err := protocol.NewEnvelope(protocol.TypeKartAssignment,
		protocol.Address{Role: protocol.RoleCore, Node: d.stationID},
		protocol.Address{Role: protocol.RoleKart, Node: kartID},
		&protocol.KartAssignment{
			KartID:         kartID,
			OrderID:        a.OrderID,
			UserID:         a.UserID,
			CaseID:         a.CaseID,
			CaseLocation:   caseLocation,
			PickupLocation: a.PickupLocation,
		})
	if err != nil {
		log.Printf("dispatch: build assignment for kart %s: %v", kartID, err)
		return
	}
	data, err := env.Encode()
	if err != nil {
		log.Printf("dispatch: encode assignment for kart %s: %v", kartID, err)
		return
	}
	if err := d.db.EnqueueOutbox(ctx, d.kartTopic, data, protocol.TypeKartAssignment, kartID); err != nil {
		log.Printf("dispatch: enqueue assignment for kart %s: %v", kartID, err)
	}
}

// Nearest chooses a kart for a case at cell. A kart standing on the case's
// cell wins outright (the first one listed); otherwise the kart with the
// strictly smallest rounded distance wins, ties going to the earlier kart.
// Karts on cells the grid does not know are skipped.
func Nearest(g *grid.Grid, karts []*kartstate.KartState, cell string) (*kartstate.KartState, decimal.Decimal, error) {
	if len(karts) == 0 {
		return nil, decimal.Zero, ErrNoKartAvailable
	}
	if !g.Contains(cell) {
		return nil, decimal.Zero, fmt.Errorf("case location: %w: %q", grid.ErrUnknownCell, cell)
	}

	for _, k := range karts {
		if k.Location == cell {
			return k, decimal.Zero, nil
		}
	}

	var best *kartstate.KartState
	var bestDist decimal.Decimal
	for _, k := range karts {
		dist, err := g.Distance(cell, k.Location)
		if err != nil {
			log.Printf("dispatch: skipping kart %s: %v", k.KartID, err)
			continue
		}
		if best == nil || dist.LessThan(bestDist) {
			best = k
			bestDist = dist
		}
	}
	if best == nil {
		return nil, decimal.Zero, ErrNoKartAvailable
	}
	return best, bestDist, nil
}
