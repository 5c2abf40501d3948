package lifecycle

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"kartcore/config"
	"kartcore/dispatch"
	"kartcore/grid"
	"kartcore/kartstate"
	"kartcore/queue"
	"kartcore/store"
)

// --- Mocks ---

type mockEmitter struct {
	mu        sync.Mutex
	fulfilled []string
	received  []string
	completed []string
	scanned   []string
}

func (m *mockEmitter) EmitOrderFulfilled(orderID, _, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fulfilled = append(m.fulfilled, orderID)
}
func (m *mockEmitter) EmitKartReceived(orderID, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, orderID)
}
func (m *mockEmitter) EmitOrderCompleted(orderID, _, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, orderID)
}
func (m *mockEmitter) EmitOrderScanned(orderID, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanned = append(m.scanned, orderID)
}

type mockNotifier struct {
	mu         sync.Mutex
	fulfilled  []string
	dispatched []string
}

func (m *mockNotifier) OrderFulfilled(_ context.Context, userID, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fulfilled = append(m.fulfilled, userID)
}
func (m *mockNotifier) OrderDispatched(_ context.Context, userID, _, kartID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched = append(m.dispatched, userID+"@"+kartID)
}

// hookedQueue runs after once, right after the first Peek reads the head.
type hookedQueue struct {
	Queue
	once  sync.Once
	after func()
}

func (q *hookedQueue) Peek(ctx context.Context, caseID string) (*store.QueueEntry, error) {
	head, err := q.Queue.Peek(ctx, caseID)
	q.once.Do(q.after)
	return head, err
}

// hookedDispatcher runs afterChoose once, right after the first kart choice.
type hookedDispatcher struct {
	Dispatcher
	once        sync.Once
	afterChoose func()
}

func (d *hookedDispatcher) Choose(ctx context.Context, a dispatch.Assignment, caseLocation string) (*dispatch.Result, error) {
	res, err := d.Dispatcher.Choose(ctx, a, caseLocation)
	d.once.Do(d.afterChoose)
	return res, err
}

type failingAssign struct {
	Dispatcher
}

func (failingAssign) Assign(context.Context, dispatch.Assignment, string, string) error {
	return errors.New("kart unreachable")
}

// --- Test helpers ---

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type harness struct {
	db    *store.DB
	queue *queue.Manager
	karts *kartstate.Manager
	d     *dispatch.Dispatcher
	m     *Machine
	em    *mockEmitter
	notes *mockNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testDB(t)
	h := &harness{
		db:    db,
		queue: queue.NewManager(db, db, nil, 10),
		karts: kartstate.NewManager(db, nil),
		em:    &mockEmitter{},
		notes: &mockNotifier{},
	}
	h.d = dispatch.NewDispatcher(db, h.karts, grid.Default(), nil, "kartcore", "")
	h.m = NewMachine(db, h.queue, h.d, h.karts, h.em)
	h.m.SetNotifier(h.notes)
	return h
}

func (h *harness) addCase(t *testing.T, id, location string, available bool) {
	t.Helper()
	err := h.db.CreateCase(context.Background(), &store.Case{ID: id, Name: "Case " + id, IsAvailable: available, LastLocation: location})
	if err != nil {
		t.Fatal(err)
	}
}

func (h *harness) addKart(t *testing.T, id, location string) {
	t.Helper()
	if err := h.karts.RegisterKart(context.Background(), &store.Kart{ID: id, Name: "Kart " + id, CurrentLocation: location}); err != nil {
		t.Fatal(err)
	}
}

func (h *harness) reserve(t *testing.T, caseID, orderID string) bool {
	t.Helper()
	c, err := h.db.GetCase(context.Background(), caseID)
	if err != nil {
		t.Fatal(err)
	}
	ok, err := h.db.ReserveCase(context.Background(), caseID, orderID, c.Version)
	if err != nil {
		t.Fatal(err)
	}
	return ok
}

func (h *harness) enqueue(t *testing.T, caseID, userID string) string {
	t.Helper()
	a, err := h.queue.Enqueue(context.Background(), caseID, userID, "C1")
	if err != nil {
		t.Fatal(err)
	}
	return a.OrderID
}

func (h *harness) order(t *testing.T, orderID string) *store.Order {
	t.Helper()
	o, err := h.db.GetOrder(context.Background(), orderID)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

// --- Transition table ---

func TestTransitions(t *testing.T) {
	valid := [][2]string{
		{StateQueued, StateFulfilled},
		{StateFulfilled, StateDispatched},
		{StateDispatched, StateCompleted},
		{StateCompleted, StateScanned},
	}
	for _, tr := range valid {
		if !IsValidTransition(tr[0], tr[1]) {
			t.Errorf("%s -> %s should be valid", tr[0], tr[1])
		}
	}
	invalid := [][2]string{
		{StateFulfilled, StateQueued},
		{StateQueued, StateDispatched},
		{StateScanned, StateQueued},
		{StateDispatched, StateScanned},
	}
	for _, tr := range invalid {
		if IsValidTransition(tr[0], tr[1]) {
			t.Errorf("%s -> %s should be invalid", tr[0], tr[1])
		}
	}
	if !IsTerminal(StateScanned) || IsTerminal(StateCompleted) {
		t.Error("only scanned is terminal")
	}
}

// --- Advance ---

func TestAdvanceDispatchesHead(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCase(t, "c1", "A1", true)
	h.addKart(t, "far", "C3")
	h.addKart(t, "near", "A2")
	first := h.enqueue(t, "c1", "alice")
	second := h.enqueue(t, "c1", "bob")

	out, err := h.m.Advance(ctx, "c1")
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if out != OutcomeDispatched {
		t.Fatalf("outcome = %s, want dispatched", out)
	}

	o := h.order(t, first)
	if o.State != StateDispatched || o.KartID != "near" {
		t.Errorf("order = %s kart %q, want dispatched to near", o.State, o.KartID)
	}
	if o.FulfilledAt == nil || o.DispatchedAt == nil {
		t.Error("fulfilled_at and dispatched_at should be stamped")
	}
	if h.order(t, second).State != StateQueued {
		t.Error("second order should still be queued")
	}

	c, _ := h.db.GetCase(ctx, "c1")
	if c.IsAvailable || c.ReservedFor != first {
		t.Errorf("case = available %v reserved %q", c.IsAvailable, c.ReservedFor)
	}
	q, _ := h.queue.Snapshot(ctx, "c1")
	if q.QueueCount != 1 || q.Entries[1].OrderID != second {
		t.Errorf("queue = %+v, want only second", q.Entries)
	}

	jobs, _ := h.db.ListKartJobs(ctx, "near")
	if len(jobs) != 1 || jobs[0].OrderID != first {
		t.Errorf("kart jobs = %+v", jobs)
	}

	hist, _ := h.db.ListHistory(ctx, "alice", 10)
	if len(hist) != 3 {
		t.Fatalf("history = %d entries, want 3", len(hist))
	}
	if hist[0].Info != msgDispatched || hist[1].Info != msgFulfilled {
		t.Errorf("history = %q, %q", hist[0].Info, hist[1].Info)
	}
	if len(h.notes.fulfilled) != 1 || len(h.notes.dispatched) != 1 || h.notes.dispatched[0] != "alice@near" {
		t.Errorf("notifications = %+v", h.notes)
	}
	if len(h.em.fulfilled) != 1 || h.em.fulfilled[0] != first {
		t.Errorf("fulfilled events = %v", h.em.fulfilled)
	}
}

func TestAdvanceRetriggerIsNoOp(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCase(t, "c1", "B2", true)
	h.addKart(t, "k1", "B2")
	h.enqueue(t, "c1", "alice")
	second := h.enqueue(t, "c1", "bob")

	if _, err := h.m.Advance(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		out, err := h.m.HandleQueueChanged(ctx, "c1")
		if err != nil {
			t.Fatal(err)
		}
		if out != OutcomeSkipped {
			t.Errorf("retrigger %d outcome = %s, want skipped", i, out)
		}
	}
	if h.order(t, second).State != StateQueued {
		t.Error("held case must not fulfill the next order")
	}
	if len(h.em.fulfilled) != 1 {
		t.Errorf("fulfillments = %d, want 1", len(h.em.fulfilled))
	}

	// Releasing the case serves the next in line.
	if _, err := h.db.ReleaseCase(ctx, "c1", "B2"); err != nil {
		t.Fatal(err)
	}
	out, err := h.m.HandleAvailabilityChanged(ctx, "c1", true)
	if err != nil || out != OutcomeDispatched {
		t.Fatalf("after release: %s, %v", out, err)
	}
	if h.order(t, second).State != StateDispatched {
		t.Error("second order should be dispatched after release")
	}
}

func TestAdvanceEmptyQueue(t *testing.T) {
	h := newHarness(t)
	h.addCase(t, "c1", "A1", true)

	out, err := h.m.Advance(context.Background(), "c1")
	if err != nil || out != OutcomeIdle {
		t.Errorf("outcome = %s, %v; want idle", out, err)
	}
	c, _ := h.db.GetCase(context.Background(), "c1")
	if !c.IsAvailable {
		t.Error("idle advance must not reserve the case")
	}
}

func TestAvailabilityChangedToUnavailableIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.addCase(t, "c1", "A1", true)
	h.enqueue(t, "c1", "alice")

	out, err := h.m.HandleAvailabilityChanged(context.Background(), "c1", false)
	if err != nil || out != OutcomeIdle {
		t.Errorf("outcome = %s, %v; want idle", out, err)
	}
	if len(h.em.fulfilled) != 0 {
		t.Error("nothing should be fulfilled")
	}
}

func TestAdvanceCaseHeldByOtherOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCase(t, "c1", "A1", true)
	h.addKart(t, "k1", "A1")
	h.reserve(t, "c1", "someone-else")
	orderID := h.enqueue(t, "c1", "alice")

	out, err := h.m.Advance(ctx, "c1")
	if err != nil || out != OutcomeSkipped {
		t.Fatalf("outcome = %s, %v; want skipped", out, err)
	}
	if h.order(t, orderID).State != StateQueued {
		t.Error("order should stay queued")
	}
}

func TestAdvanceResumesReservedHead(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCase(t, "c1", "A1", true)
	h.addKart(t, "k1", "B1")
	orderID := h.enqueue(t, "c1", "alice")

	// An earlier attempt reserved the case and stopped before popping.
	if !h.reserve(t, "c1", orderID) {
		t.Fatal("reserve failed")
	}

	s, err := h.m.FindStalled(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Cases) != 1 || s.Cases[0] != "c1" {
		t.Errorf("stalled cases = %v, want [c1]", s.Cases)
	}

	out, err := h.m.Advance(ctx, "c1")
	if err != nil || out != OutcomeDispatched {
		t.Fatalf("outcome = %s, %v; want dispatched", out, err)
	}
	if h.order(t, orderID).KartID != "k1" {
		t.Error("resumed order should reach k1")
	}
}

func TestAdvanceNoKartLeavesOrderFulfilled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCase(t, "c1", "C2", true)
	orderID := h.enqueue(t, "c1", "alice")

	out, err := h.m.Advance(ctx, "c1")
	if !errors.Is(err, dispatch.ErrNoKartAvailable) {
		t.Fatalf("err = %v, want ErrNoKartAvailable", err)
	}
	if out != OutcomeFulfilled {
		t.Errorf("outcome = %s, want fulfilled", out)
	}
	o := h.order(t, orderID)
	if o.State != StateFulfilled || o.KartID != "" {
		t.Errorf("order = %s kart %q", o.State, o.KartID)
	}
	q, _ := h.queue.Snapshot(ctx, "c1")
	if q.QueueCount != 0 {
		t.Errorf("queue count = %d, want 0", q.QueueCount)
	}

	// A retry of the same trigger must not fulfill anything else.
	if out, _ := h.m.Advance(ctx, "c1"); out != OutcomeIdle {
		t.Errorf("retry outcome = %s, want idle", out)
	}

	h.addKart(t, "k1", "C3")
	n, err := h.m.Reconcile(ctx)
	if err != nil || n != 1 {
		t.Fatalf("reconcile = %d, %v; want 1", n, err)
	}
	o = h.order(t, orderID)
	if o.State != StateDispatched || o.KartID != "k1" {
		t.Errorf("after reconcile order = %s kart %q", o.State, o.KartID)
	}
}

func TestRedispatchRefusesQueuedOrders(t *testing.T) {
	h := newHarness(t)
	h.addCase(t, "c1", "A1", false)
	orderID := h.enqueue(t, "c1", "alice")

	err := h.m.Redispatch(context.Background(), orderID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestConcurrentAdvanceFulfillsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCase(t, "c1", "B2", true)
	h.addKart(t, "k1", "B2")
	first := h.enqueue(t, "c1", "alice")
	h.enqueue(t, "c1", "bob")
	h.enqueue(t, "c1", "carol")

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.m.Advance(ctx, "c1")
		}()
	}
	wg.Wait()

	if len(h.em.fulfilled) != 1 || h.em.fulfilled[0] != first {
		t.Fatalf("fulfilled = %v, want only %s", h.em.fulfilled, first)
	}
	jobs, _ := h.db.ListKartJobs(ctx, "k1")
	if len(jobs) != 1 {
		t.Errorf("kart jobs = %d, want 1", len(jobs))
	}
	q, _ := h.queue.Snapshot(ctx, "c1")
	if q.QueueCount != 2 {
		t.Errorf("queue count = %d, want 2", q.QueueCount)
	}
}

// --- Interleavings ---

func TestStaleHeadCannotReserveReleasedCase(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCase(t, "c1", "A1", true)
	h.addKart(t, "k1", "A2")
	first := h.enqueue(t, "c1", "alice")
	second := h.enqueue(t, "c1", "bob")

	// After the slow handler reads alice as head, a faster one serves her
	// and the case comes back.
	hq := &hookedQueue{Queue: h.queue}
	hq.after = func() {
		if out, err := h.m.Advance(ctx, "c1"); err != nil || out != OutcomeDispatched {
			t.Errorf("fast advance = %s, %v; want dispatched", out, err)
		}
		if ok, err := h.db.ReleaseCase(ctx, "c1", "A1"); err != nil || !ok {
			t.Errorf("release = %v, %v", ok, err)
		}
	}
	slow := NewMachine(h.db, hq, h.d, h.karts, h.em)

	out, err := slow.Advance(ctx, "c1")
	if err != nil || out != OutcomeSkipped {
		t.Fatalf("slow advance = %s, %v; want skipped", out, err)
	}
	c, _ := h.db.GetCase(ctx, "c1")
	if !c.IsAvailable || c.ReservedFor != "" {
		t.Fatalf("case = available %v reserved %q, want released", c.IsAvailable, c.ReservedFor)
	}

	out, err = h.m.Advance(ctx, "c1")
	if err != nil || out != OutcomeDispatched {
		t.Fatalf("next advance = %s, %v; want dispatched", out, err)
	}
	if o := h.order(t, second); o.State != StateDispatched {
		t.Errorf("bob's order = %s, want dispatched", o.State)
	}
	c, _ = h.db.GetCase(ctx, "c1")
	if c.ReservedFor != second {
		t.Errorf("case reserved for %q, want %s", c.ReservedFor, second)
	}
	if len(h.em.fulfilled) != 2 || h.em.fulfilled[0] != first {
		t.Errorf("fulfilled = %v", h.em.fulfilled)
	}
}

func TestRedispatchDuringDispatchLeavesOneKart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCase(t, "c1", "B2", true)
	h.addKart(t, "k1", "B1")
	orderID := h.enqueue(t, "c1", "alice")

	// k1 has been chosen when it drives off, k2 parks next to the case and
	// an operator retries the order.
	hd := &hookedDispatcher{Dispatcher: h.d}
	hd.afterChoose = func() {
		if err := h.karts.MoveKart(ctx, "k1", "C3"); err != nil {
			t.Error(err)
		}
		h.addKart(t, "k2", "B2")
		if err := h.m.Redispatch(ctx, orderID); err != nil {
			t.Errorf("redispatch: %v", err)
		}
	}
	m := NewMachine(h.db, h.queue, hd, h.karts, h.em)
	m.SetNotifier(h.notes)

	out, err := m.Advance(ctx, "c1")
	if err != nil || out != OutcomeSkipped {
		t.Fatalf("advance = %s, %v; want skipped", out, err)
	}

	o := h.order(t, orderID)
	if o.State != StateDispatched || o.KartID != "k2" {
		t.Errorf("order = %s kart %q, want dispatched to k2", o.State, o.KartID)
	}
	if n, _ := h.db.CountKartJobs(ctx, "k1"); n != 0 {
		t.Errorf("k1 jobs = %d, want 0", n)
	}
	if n, _ := h.db.CountKartJobs(ctx, "k2"); n != 1 {
		t.Errorf("k2 jobs = %d, want 1", n)
	}
	if len(h.notes.dispatched) != 1 || h.notes.dispatched[0] != "alice@k2" {
		t.Errorf("dispatch notifications = %v", h.notes.dispatched)
	}
}

func TestFailedAssignDropsClaim(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCase(t, "c1", "A1", true)
	h.addKart(t, "k1", "A1")
	orderID := h.enqueue(t, "c1", "alice")

	m := NewMachine(h.db, h.queue, failingAssign{h.d}, h.karts, h.em)
	out, err := m.Advance(ctx, "c1")
	if err == nil || out != OutcomeFulfilled {
		t.Fatalf("advance = %s, %v; want fulfilled with error", out, err)
	}
	o := h.order(t, orderID)
	if o.State != StateFulfilled || o.KartID != "" {
		t.Fatalf("order = %s kart %q, want unclaimed", o.State, o.KartID)
	}

	if err := h.m.Redispatch(ctx, orderID); err != nil {
		t.Fatalf("redispatch: %v", err)
	}
	if o := h.order(t, orderID); o.State != StateDispatched || o.KartID != "k1" {
		t.Errorf("order = %s kart %q, want dispatched to k1", o.State, o.KartID)
	}
}

func TestReconcileResumesClaimedOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCase(t, "c1", "A1", true)
	h.addKart(t, "k1", "C3")
	h.addKart(t, "k2", "A1")
	orderID := h.enqueue(t, "c1", "alice")

	// Fulfilled, popped and claimed for k1, then the handler died.
	if !h.reserve(t, "c1", orderID) {
		t.Fatal("reserve failed")
	}
	h.db.FulfillOrder(ctx, &store.Order{OrderID: orderID, UserID: "alice", CaseID: "c1", PickupLocation: "C1"})
	if _, err := h.queue.PopIfHead(ctx, "c1", orderID); err != nil {
		t.Fatal(err)
	}
	if ok, _ := h.db.ClaimOrderKart(ctx, orderID, "k1"); !ok {
		t.Fatal("claim failed")
	}

	n, err := h.m.Reconcile(ctx)
	if err != nil || n != 1 {
		t.Fatalf("reconcile = %d, %v; want 1", n, err)
	}
	o := h.order(t, orderID)
	if o.State != StateDispatched || o.KartID != "k1" {
		t.Errorf("order = %s kart %q, want dispatched to the claimed k1", o.State, o.KartID)
	}
	if n, _ := h.db.CountKartJobs(ctx, "k2"); n != 0 {
		t.Errorf("k2 jobs = %d, want 0", n)
	}
}

func TestReconcileReleasesOrphanedReservation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCase(t, "c1", "A1", true)
	h.addKart(t, "k1", "A1")
	if !h.reserve(t, "c1", "gone") {
		t.Fatal("reserve failed")
	}
	orderID := h.enqueue(t, "c1", "alice")

	s, err := h.m.FindStalled(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Orphaned) != 1 || s.Orphaned[0] != "c1" || len(s.Cases) != 0 {
		t.Fatalf("stalled = %+v, want c1 orphaned", s)
	}

	if _, err := h.m.Reconcile(ctx); err != nil {
		t.Fatal(err)
	}
	if o := h.order(t, orderID); o.State != StateDispatched {
		t.Fatalf("order = %s, want dispatched", o.State)
	}

	// A case out with a dispatched order is held, not orphaned.
	h.enqueue(t, "c1", "bob")
	s, err = h.m.FindStalled(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Orphaned) != 0 || len(s.Cases) != 0 {
		t.Errorf("stalled = %+v, want nothing", s)
	}
}

// --- Kart and user transitions ---

func TestKartAndScanTransitions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addCase(t, "c1", "A1", true)
	h.addKart(t, "k1", "A1")
	orderID := h.enqueue(t, "c1", "alice")
	if _, err := h.m.Advance(ctx, "c1"); err != nil {
		t.Fatal(err)
	}

	if err := h.m.ConfirmScan(ctx, orderID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("scan before completion: %v, want ErrInvalidTransition", err)
	}

	if err := h.m.MarkKartReceived(ctx, orderID); err != nil {
		t.Fatalf("received: %v", err)
	}
	if err := h.m.MarkKartReceived(ctx, orderID); err != nil {
		t.Errorf("repeat received: %v", err)
	}
	if !h.order(t, orderID).KartReceived {
		t.Error("kart_received should be set")
	}

	if err := h.m.CompleteByKart(ctx, orderID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := h.m.CompleteByKart(ctx, orderID); err != nil {
		t.Errorf("repeat complete: %v", err)
	}
	if n, _ := h.db.CountKartJobs(ctx, "k1"); n != 0 {
		t.Errorf("kart jobs after completion = %d, want 0", n)
	}

	if err := h.m.ConfirmScan(ctx, orderID); err != nil {
		t.Fatalf("scan: %v", err)
	}
	o := h.order(t, orderID)
	if o.State != StateScanned || !o.CompletedByKart || !o.ScannedByUser {
		t.Errorf("order = %+v", o)
	}
	if err := h.m.MarkKartReceived(ctx, orderID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("received after scan: %v, want ErrInvalidTransition", err)
	}

	if len(h.em.received) != 1 || len(h.em.completed) != 1 || len(h.em.scanned) != 1 {
		t.Errorf("events received=%d completed=%d scanned=%d",
			len(h.em.received), len(h.em.completed), len(h.em.scanned))
	}
}

func TestTransitionUnknownOrder(t *testing.T) {
	h := newHarness(t)
	err := h.m.CompleteByKart(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
