package dispatch

import (
	"context"
	"errors"

	"kartcore/kartstate"
	"kartcore/store"

	"github.com/shopspring/decimal"
)

// ErrNoKartAvailable means there was no kart to hand the order to. The order
// stays fulfilled and needs a later redispatch.
var ErrNoKartAvailable = errors.New("dispatch: no kart available")

// KartPool is where the dispatcher finds karts and records their work.
type KartPool interface {
	ListKarts(ctx context.Context) ([]*kartstate.KartState, error)
	AssignJob(ctx context.Context, job *store.KartJob) error
}

// Assignment is the fulfilled order being routed.
type Assignment struct {
	OrderID        string
	UserID         string
	CaseID         string
	PickupLocation string
}

// Result names the kart chosen for an assignment.
type Result struct {
	KartID   string          `json:"kart_id"`
	KartName string          `json:"kart_name"`
	Distance decimal.Decimal `json:"distance"`
}
