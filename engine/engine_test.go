package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"kartcore/config"
	"kartcore/lifecycle"
	"kartcore/messaging"
	"kartcore/notify"
	"kartcore/protocol"
	"kartcore/store"

	"github.com/stretchr/testify/suite"
)

var _ messaging.Actions = (*Engine)(nil)

type recordingPusher struct {
	mu     sync.Mutex
	titles map[string][]string
}

func (p *recordingPusher) Push(_ context.Context, _, userID string, pl notify.Payload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.titles == nil {
		p.titles = make(map[string][]string)
	}
	p.titles[userID] = append(p.titles[userID], pl.Title)
	return nil
}

type ReservationFlowSuite struct {
	suite.Suite
	db     *store.DB
	eng    *Engine
	pusher *recordingPusher
	ctx    context.Context
}

func TestReservationFlowSuite(t *testing.T) {
	suite.Run(t, new(ReservationFlowSuite))
}

func (s *ReservationFlowSuite) SetupTest() {
	db, err := store.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(s.T().TempDir(), "test.db")},
	})
	s.Require().NoError(err)
	s.db = db
	s.ctx = context.Background()

	cfg := config.Defaults()
	cfg.Trigger.ReconcileInterval = 0
	cfg.Trigger.RetryDelay = 5 * time.Millisecond
	cfg.Queue.MaxRetries = 1000

	s.pusher = &recordingPusher{}
	s.eng = New(Config{
		AppConfig: cfg,
		DB:        db,
		Pusher:    s.pusher,
		LogFunc:   func(string, ...any) {},
	})
	s.eng.Start()

	s.Require().NoError(db.CreateCase(s.ctx, &store.Case{ID: "c1", Name: "Torque Wrench", IsAvailable: true, LastLocation: "A1"}))
}

func (s *ReservationFlowSuite) TearDownTest() {
	s.eng.Stop()
	s.db.Close()
}

func (s *ReservationFlowSuite) addUser(id, pickup string, cases ...string) {
	s.Require().NoError(s.db.CreateUser(s.ctx, &store.User{ID: id, DisplayName: id, DeviceToken: "tok-" + id, PickupLocation: pickup}))
	for _, c := range cases {
		s.Require().NoError(s.eng.AddToCart(s.ctx, id, c))
	}
}

func (s *ReservationFlowSuite) order(id string) *store.Order {
	o, err := s.db.GetOrder(s.ctx, id)
	s.Require().NoError(err)
	return o
}

func (s *ReservationFlowSuite) TestPlaceOrderDispatchesAndQueuesNext() {
	s.Require().NoError(s.eng.RegisterKart(s.ctx, &store.Kart{ID: "k-far", Name: "Far", CurrentLocation: "C3"}))
	s.Require().NoError(s.eng.RegisterKart(s.ctx, &store.Kart{ID: "k-near", Name: "Near", CurrentLocation: "A2"}))
	s.addUser("alice", "C1", "c1")
	s.addUser("bob", "B1", "c1")

	first, err := s.eng.PlaceOrder(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(first, 1)
	s.Equal(1, first[0].Position)
	s.eng.Router().Drain()

	o := s.order(first[0].OrderID)
	s.Equal(lifecycle.StateDispatched, o.State)
	s.Equal("k-near", o.KartID)

	cart, err := s.db.ListCart(s.ctx, "alice")
	s.Require().NoError(err)
	s.Empty(cart)

	second, err := s.eng.PlaceOrder(s.ctx, "bob")
	s.Require().NoError(err)
	s.Require().Len(second, 1)
	s.eng.Router().Drain()
	s.Equal(lifecycle.StateQueued, s.order(second[0].OrderID).State, "case is still out with alice")

	// The case comes back on a different shelf.
	s.Require().NoError(s.eng.ReleaseCase(s.ctx, "c1", "C3"))
	s.eng.Router().Drain()

	o = s.order(second[0].OrderID)
	s.Equal(lifecycle.StateDispatched, o.State)
	s.Equal("k-far", o.KartID)

	s.pusher.mu.Lock()
	s.Equal([]string{"Order queued", "Order fulfilled", "Order on its way"}, s.pusher.titles["alice"])
	s.pusher.mu.Unlock()

	msgs, err := s.db.ListPendingOutbox(s.ctx, 50)
	s.Require().NoError(err)
	assignments := 0
	for _, m := range msgs {
		if m.MsgType == protocol.TypeKartAssignment {
			assignments++
		}
	}
	s.Equal(2, assignments)
}

func (s *ReservationFlowSuite) TestKartAndUserMessagesFinishTheOrder() {
	s.Require().NoError(s.eng.RegisterKart(s.ctx, &store.Kart{ID: "k1", Name: "One", CurrentLocation: "B2"}))
	s.addUser("alice", "C1", "c1")
	adm, err := s.eng.PlaceOrder(s.ctx, "alice")
	s.Require().NoError(err)
	s.eng.Router().Drain()
	orderID := adm[0].OrderID

	h := messaging.NewCoreHandler(s.eng)
	env := &protocol.Envelope{}

	s.ErrorIs(s.eng.MarkKartReceived(s.ctx, orderID, "k-other"), ErrWrongParty)

	h.HandleKartReceived(env, &protocol.KartReceived{KartID: "k1", OrderID: orderID})
	s.True(s.order(orderID).KartReceived)

	h.HandleKartCompleted(env, &protocol.KartCompleted{KartID: "k1", OrderID: orderID})
	s.Equal(lifecycle.StateCompleted, s.order(orderID).State)
	n, _ := s.db.CountKartJobs(s.ctx, "k1")
	s.Zero(n)

	s.ErrorIs(s.eng.ConfirmScan(s.ctx, orderID, "mallory"), ErrWrongParty)
	h.HandleOrderScanned(env, &protocol.OrderScanned{OrderID: orderID, UserID: "alice"})
	s.Equal(lifecycle.StateScanned, s.order(orderID).State)

	hist, err := s.db.ListHistory(s.ctx, "alice", 10)
	s.Require().NoError(err)
	s.Len(hist, 5)
	s.Equal(lifecycle.HistoryScanned, hist[0].EventType)
}

func (s *ReservationFlowSuite) TestNoKartThenKartArrives() {
	s.addUser("alice", "C1", "c1")
	adm, err := s.eng.PlaceOrder(s.ctx, "alice")
	s.Require().NoError(err)
	s.eng.Router().Drain()

	o := s.order(adm[0].OrderID)
	s.Equal(lifecycle.StateFulfilled, o.State)
	s.Empty(o.KartID)

	s.Require().NoError(s.eng.RegisterKart(s.ctx, &store.Kart{ID: "k1", Name: "Late", CurrentLocation: "C2"}))
	s.eng.Router().Drain()

	o = s.order(adm[0].OrderID)
	s.Equal(lifecycle.StateDispatched, o.State)
	s.Equal("k1", o.KartID)
}

func (s *ReservationFlowSuite) TestConcurrentOrdersOneWinner() {
	s.Require().NoError(s.eng.RegisterKart(s.ctx, &store.Kart{ID: "k1", Name: "One", CurrentLocation: "A1"}))
	const n = 10
	for i := 0; i < n; i++ {
		s.addUser(fmt.Sprintf("user-%d", i), "C1", "c1")
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.eng.PlaceOrder(s.ctx, fmt.Sprintf("user-%d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}
	s.eng.Router().Drain()

	dispatched, err := s.db.ListOrdersByState(s.ctx, lifecycle.StateDispatched)
	s.Require().NoError(err)
	s.Len(dispatched, 1)
	queued, err := s.db.ListOrdersByState(s.ctx, lifecycle.StateQueued)
	s.Require().NoError(err)
	s.Len(queued, n-1)

	q, err := s.eng.Queue().Snapshot(s.ctx, "c1")
	s.Require().NoError(err)
	s.Equal(n-1, q.QueueCount)
	for pos := 1; pos <= q.QueueCount; pos++ {
		_, ok := q.Entries[pos]
		s.True(ok, "missing position %d", pos)
	}
}

func (s *ReservationFlowSuite) TestReleaseRejectsUnknownCell() {
	s.Error(s.eng.ReleaseCase(s.ctx, "c1", "Z9"))
	s.Error(s.eng.MoveKart(s.ctx, "k1", "Z9"))
}

func (s *ReservationFlowSuite) TestReconcileResumesInterruptedFulfillment() {
	s.Require().NoError(s.eng.RegisterKart(s.ctx, &store.Kart{ID: "k1", Name: "One", CurrentLocation: "A1"}))

	// Admit straight into the queue store, bypassing the queue-changed trigger.
	a := &store.QueueEntry{UserID: "alice", OrderID: "o-1", PickupLocation: "C1", EnqueuedAt: time.Now().UTC()}
	q := store.NewCaseQueue("c1")
	q.Entries[1] = *a
	q.QueueCount = 1
	s.Require().NoError(s.db.SwapCaseQueue(s.ctx, q, 0))
	c, err := s.db.GetCase(s.ctx, "c1")
	s.Require().NoError(err)
	ok, err := s.db.ReserveCase(s.ctx, "c1", "o-1", c.Version)
	s.Require().NoError(err)
	s.Require().True(ok)

	s.Equal(1, s.eng.Reconcile(s.ctx))
	s.eng.Router().Drain()

	o := s.order("o-1")
	s.Equal(lifecycle.StateDispatched, o.State)
	s.Equal("k1", o.KartID)
}

func (s *ReservationFlowSuite) TestReconcileReleasesOrphanedReservation() {
	s.Require().NoError(s.eng.RegisterKart(s.ctx, &store.Kart{ID: "k1", Name: "One", CurrentLocation: "A1"}))
	c, err := s.db.GetCase(s.ctx, "c1")
	s.Require().NoError(err)
	ok, err := s.db.ReserveCase(s.ctx, "c1", "o-vanished", c.Version)
	s.Require().NoError(err)
	s.Require().True(ok)

	s.addUser("alice", "C1", "c1")
	adm, err := s.eng.PlaceOrder(s.ctx, "alice")
	s.Require().NoError(err)
	s.eng.Router().Drain()
	s.Equal(lifecycle.StateQueued, s.order(adm[0].OrderID).State, "case is held for an order that no longer exists")

	s.Equal(1, s.eng.Reconcile(s.ctx))
	s.eng.Router().Drain()

	o := s.order(adm[0].OrderID)
	s.Equal(lifecycle.StateDispatched, o.State)
	s.Equal("k1", o.KartID)
}

func (s *ReservationFlowSuite) TestRedispatchRunsThroughRouter() {
	s.addUser("alice", "C1", "c1")
	adm, err := s.eng.PlaceOrder(s.ctx, "alice")
	s.Require().NoError(err)
	s.eng.Router().Drain()
	orderID := adm[0].OrderID
	s.Equal(lifecycle.StateFulfilled, s.order(orderID).State)

	// Straight into the store so no kart-moved event retries on its own.
	s.Require().NoError(s.db.CreateKart(s.ctx, &store.Kart{ID: "k1", Name: "One", CurrentLocation: "B1"}))

	s.Require().NoError(s.eng.Redispatch(s.ctx, orderID))
	s.eng.Router().Drain()

	o := s.order(orderID)
	s.Equal(lifecycle.StateDispatched, o.State)
	s.Equal("k1", o.KartID)

	s.ErrorIs(s.eng.Redispatch(s.ctx, orderID), lifecycle.ErrInvalidTransition)
	n, err := s.db.CountKartJobs(s.ctx, "k1")
	s.Require().NoError(err)
	s.Equal(1, n)
}
