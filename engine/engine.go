package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"kartcore/config"
	"kartcore/dispatch"
	"kartcore/grid"
	"kartcore/kartstate"
	"kartcore/lifecycle"
	"kartcore/messaging"
	"kartcore/notify"
	"kartcore/queue"
	"kartcore/store"
)

// ErrWrongParty means a kart or user reported on an order that is not theirs.
var ErrWrongParty = errors.New("engine: order belongs to someone else")

type LogFunc func(format string, args ...any)

type Config struct {
	AppConfig *config.Config
	DB        *store.DB
	Queues    queue.Store // nil means the SQL store
	KartState *kartstate.Manager
	MsgClient *messaging.Client
	Pusher    notify.Pusher // nil means the outbox
	LogFunc   LogFunc
}

type Engine struct {
	cfg        *config.Config
	db         *store.DB
	queues     queue.Store
	karts      *kartstate.Manager
	msgClient  *messaging.Client
	pusher     notify.Pusher
	grid       *grid.Grid
	queue      *queue.Manager
	dispatcher *dispatch.Dispatcher
	notifier   *notify.Notifier
	machine    *lifecycle.Machine
	router     *Router
	Events     *EventBus
	logFn      LogFunc

	stopOnce     sync.Once
	stopChan     chan struct{}
	loops        sync.WaitGroup
	msgConnected bool
}

func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	queues := c.Queues
	if queues == nil {
		queues = c.DB
	}
	karts := c.KartState
	if karts == nil {
		karts = kartstate.NewManager(c.DB, nil)
	}
	return &Engine{
		cfg:       c.AppConfig,
		db:        c.DB,
		queues:    queues,
		karts:     karts,
		msgClient: c.MsgClient,
		pusher:    c.Pusher,
		Events:    NewEventBus(),
		logFn:     logFn,
		stopChan:  make(chan struct{}),
	}
}

func (e *Engine) Start() {
	e.grid = gridFromConfig(&e.cfg.Grid)

	// Create emitter adapters
	qe := &queueEmitter{bus: e.Events}
	de := &dispatchEmitter{bus: e.Events}
	le := &lifecycleEmitter{bus: e.Events}

	pusher := e.pusher
	if pusher == nil {
		pusher = notify.NewOutboxPusher(e.db, e.cfg.Messaging.PushTopic, e.cfg.Messaging.StationID)
	}
	e.notifier = notify.NewNotifier(e.db, pusher)

	e.queue = queue.NewManager(e.queues, e.db, qe, e.cfg.Queue.MaxRetries)
	e.queue.SetNotifier(e.notifier)

	e.dispatcher = dispatch.NewDispatcher(
		e.db,
		e.karts,
		e.grid,
		de,
		e.cfg.Messaging.StationID,
		e.cfg.Messaging.KartTopic,
	)

	e.machine = lifecycle.NewMachine(e.db, e.queue, e.dispatcher, e.karts, le)
	e.machine.SetNotifier(e.notifier)

	tc := e.cfg.Trigger
	e.router = NewRouter(e.handleTrigger, tc.Workers, tc.MaxDeliveries, tc.RetryDelay, e.logFn)
	e.router.SetPermanent(isPermanent)
	e.router.Start()

	e.wireEventHandlers()

	// Pick up whatever a previous run left half done.
	e.Reconcile(context.Background())

	if tc.ReconcileInterval > 0 {
		e.loops.Add(1)
		go e.reconcileLoop(tc.ReconcileInterval)
	}
	if e.msgClient != nil {
		e.checkConnectionStatus()
		e.loops.Add(1)
		go e.connectionHealthLoop()
	}

	e.logFn("engine: started (%d trigger workers, queue backend %s)", tc.Workers, e.cfg.Queue.Backend)
}

func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopChan)
		e.loops.Wait()
		if e.router != nil {
			e.router.Stop()
		}
		e.logFn("engine: stopped")
	})
}

// Accessors
func (e *Engine) DB() *store.DB                     { return e.db }
func (e *Engine) AppConfig() *config.Config         { return e.cfg }
func (e *Engine) Grid() *grid.Grid                  { return e.grid }
func (e *Engine) Queue() *queue.Manager             { return e.queue }
func (e *Engine) Dispatcher() *dispatch.Dispatcher  { return e.dispatcher }
func (e *Engine) Machine() *lifecycle.Machine       { return e.machine }
func (e *Engine) KartState() *kartstate.Manager     { return e.karts }
func (e *Engine) Router() *Router                   { return e.router }
func (e *Engine) MsgClient() *messaging.Client      { return e.msgClient }

func gridFromConfig(gc *config.GridConfig) *grid.Grid {
	if len(gc.Cells) == 0 {
		return grid.Default()
	}
	cells := make(map[string]grid.Point, len(gc.Cells))
	for name, p := range gc.Cells {
		cells[name] = grid.Point{X: p.X, Y: p.Y}
	}
	return grid.New(cells)
}

// isPermanent reports errors a redelivery cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, dispatch.ErrNoKartAvailable) ||
		errors.Is(err, grid.ErrUnknownCell) ||
		errors.Is(err, lifecycle.ErrInvalidTransition) ||
		errors.Is(err, store.ErrNotFound)
}

func (e *Engine) handleTrigger(ctx context.Context, t Trigger) error {
	var out lifecycle.Outcome
	var err error
	switch t.Kind {
	case TriggerQueueChanged:
		out, err = e.machine.HandleQueueChanged(ctx, t.CaseID)
	case TriggerAvailabilityChanged:
		out, err = e.machine.HandleAvailabilityChanged(ctx, t.CaseID, t.Available)
	case TriggerRedispatch:
		return e.machine.Redispatch(ctx, t.OrderID)
	default:
		return fmt.Errorf("unknown trigger kind %d", t.Kind)
	}
	if err == nil && out == lifecycle.OutcomeDispatched {
		e.logFn("engine: case %s advanced (%s)", t.CaseID, t.Kind)
	}
	return err
}

// --- Operations ---

// PlaceOrder turns the user's cart into queue admissions.
func (e *Engine) PlaceOrder(ctx context.Context, userID string) ([]*queue.Admission, error) {
	return e.queue.PlaceOrder(ctx, userID)
}

// AddToCart puts a known case in the user's cart.
func (e *Engine) AddToCart(ctx context.Context, userID, caseID string) error {
	if _, err := e.db.GetCase(ctx, caseID); err != nil {
		return err
	}
	return e.db.AddCartItem(ctx, userID, caseID)
}

// ReleaseCase makes a case available again, optionally at a new cell, and
// fires the availability trigger when the flag actually flipped.
func (e *Engine) ReleaseCase(ctx context.Context, caseID, location string) error {
	if location != "" && !e.grid.Contains(location) {
		return fmt.Errorf("release %s: %w: %q", caseID, grid.ErrUnknownCell, location)
	}
	changed, err := e.db.ReleaseCase(ctx, caseID, location)
	if err != nil {
		return err
	}
	if !changed {
		if location != "" {
			if err := e.db.SetCaseLocation(ctx, caseID, location); err != nil {
				return fmt.Errorf("release %s: %w", caseID, err)
			}
		}
		return nil
	}
	e.logFn("engine: case %s released at %q", caseID, location)
	e.Events.Emit(Event{Type: EventCaseAvailabilityChanged, Payload: CaseAvailabilityChangedEvent{
		CaseID:    caseID,
		Available: true,
		Location:  location,
	}})
	return nil
}

// RegisterKart adds a kart to the pool.
func (e *Engine) RegisterKart(ctx context.Context, k *store.Kart) error {
	if !e.grid.Contains(k.CurrentLocation) {
		return fmt.Errorf("register kart %s: %w: %q", k.ID, grid.ErrUnknownCell, k.CurrentLocation)
	}
	if err := e.karts.RegisterKart(ctx, k); err != nil {
		return err
	}
	e.Events.Emit(Event{Type: EventKartMoved, Payload: KartMovedEvent{KartID: k.ID, Location: k.CurrentLocation}})
	return nil
}

// MoveKart records a kart's reported position.
func (e *Engine) MoveKart(ctx context.Context, kartID, location string) error {
	if !e.grid.Contains(location) {
		return fmt.Errorf("move kart %s: %w: %q", kartID, grid.ErrUnknownCell, location)
	}
	if err := e.karts.MoveKart(ctx, kartID, location); err != nil {
		return err
	}
	e.Events.Emit(Event{Type: EventKartMoved, Payload: KartMovedEvent{KartID: kartID, Location: location}})
	return nil
}

// MarkKartReceived records pickup by the kart. kartID, when set, must be
// the kart the order was dispatched to.
func (e *Engine) MarkKartReceived(ctx context.Context, orderID, kartID string) error {
	if err := e.checkKart(ctx, orderID, kartID); err != nil {
		return err
	}
	return e.machine.MarkKartReceived(ctx, orderID)
}

// CompleteByKart records drop-off by the kart.
func (e *Engine) CompleteByKart(ctx context.Context, orderID, kartID string) error {
	if err := e.checkKart(ctx, orderID, kartID); err != nil {
		return err
	}
	return e.machine.CompleteByKart(ctx, orderID)
}

// ConfirmScan records the user collecting the order. userID, when set, must
// own the order.
func (e *Engine) ConfirmScan(ctx context.Context, orderID, userID string) error {
	if userID != "" {
		o, err := e.db.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return fmt.Errorf("%w: order %s", ErrWrongParty, orderID)
		}
	}
	return e.machine.ConfirmScan(ctx, orderID)
}

func (e *Engine) checkKart(ctx context.Context, orderID, kartID string) error {
	if kartID == "" {
		return nil
	}
	o, err := e.db.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if o.KartID != kartID {
		return fmt.Errorf("%w: order %s is assigned to kart %q", ErrWrongParty, orderID, o.KartID)
	}
	return nil
}

// Redispatch checks that orderID is a stranded fulfilled order and queues a
// retry of its kart hand-off on the case's shard, so it never runs alongside
// an advance of the same case.
func (e *Engine) Redispatch(ctx context.Context, orderID string) error {
	o, err := e.machine.CheckRedispatch(ctx, orderID)
	if err != nil {
		return err
	}
	e.router.Submit(Trigger{Kind: TriggerRedispatch, CaseID: o.CaseID, OrderID: o.OrderID})
	return nil
}

// Reconcile submits triggers for every piece of stalled work and returns how
// many it submitted.
func (e *Engine) Reconcile(ctx context.Context) int {
	s, err := e.machine.FindStalled(ctx)
	if err != nil {
		e.logFn("engine: reconcile: %v", err)
		return 0
	}
	for _, caseID := range s.Orphaned {
		// The release emits the availability change that advances the queue.
		if err := e.ReleaseCase(ctx, caseID, ""); err != nil {
			e.logFn("engine: reconcile release %s: %v", caseID, err)
		}
	}
	for _, caseID := range s.Cases {
		e.router.Submit(Trigger{Kind: TriggerQueueChanged, CaseID: caseID})
	}
	for _, o := range s.Orders {
		e.router.Submit(Trigger{Kind: TriggerRedispatch, CaseID: o.CaseID, OrderID: o.OrderID})
	}
	n := len(s.Orphaned) + len(s.Cases) + len(s.Orders)
	if n > 0 {
		e.logFn("engine: reconcile released %d cases, submitted %d cases and %d orders",
			len(s.Orphaned), len(s.Cases), len(s.Orders))
	}
	return n
}

func (e *Engine) reconcileLoop(interval time.Duration) {
	defer e.loops.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.Reconcile(context.Background())
		}
	}
}

func (e *Engine) checkConnectionStatus() {
	if e.msgClient.IsConnected() {
		if !e.msgConnected {
			e.msgConnected = true
			e.Events.Emit(Event{Type: EventMessagingConnected, Payload: ConnectionEvent{Detail: "messaging connected"}})
		}
	} else if e.msgConnected {
		e.msgConnected = false
		e.Events.Emit(Event{Type: EventMessagingDisconnected, Payload: ConnectionEvent{Detail: "messaging disconnected"}})
	}
}

func (e *Engine) connectionHealthLoop() {
	defer e.loops.Done()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		}
	}
}
