package engine

import (
	"context"
	"hash/fnv"
	"log"
	"sync"
	"time"
)

type TriggerKind int

const (
	TriggerQueueChanged TriggerKind = iota + 1
	TriggerAvailabilityChanged
	TriggerRedispatch
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerQueueChanged:
		return "queue-changed"
	case TriggerAvailabilityChanged:
		return "availability-changed"
	case TriggerRedispatch:
		return "redispatch"
	}
	return "unknown"
}

// Trigger is one change notification for a case. OrderID is set for
// redispatch triggers only.
type Trigger struct {
	Kind      TriggerKind
	CaseID    string
	OrderID   string
	Available bool

	delivery int
}

// Delivery is the 1-based attempt number of this trigger.
func (t Trigger) Delivery() int { return t.delivery }

type TriggerHandler func(ctx context.Context, t Trigger) error

// Router runs trigger handlers with at-least-once delivery. Triggers for one
// case always land on the same worker, so a case is never handled by two
// goroutines of this process at once. A handler error redelivers the trigger
// after the retry delay until the delivery budget runs out, unless the error
// is permanent.
type Router struct {
	handler       TriggerHandler
	shards        []*shard
	maxDeliveries int
	retryDelay    time.Duration
	permanent     func(error) bool
	logFn         LogFunc

	ctx      context.Context
	cancel   context.CancelFunc
	workers  sync.WaitGroup
	inflight sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

type shard struct {
	mu      sync.Mutex
	pending []Trigger
	wake    chan struct{}
}

func NewRouter(handler TriggerHandler, workers, maxDeliveries int, retryDelay time.Duration, logFn LogFunc) *Router {
	if workers < 1 {
		workers = 1
	}
	if maxDeliveries < 1 {
		maxDeliveries = 1
	}
	if logFn == nil {
		logFn = log.Printf
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		handler:       handler,
		shards:        make([]*shard, workers),
		maxDeliveries: maxDeliveries,
		retryDelay:    retryDelay,
		permanent:     func(error) bool { return false },
		logFn:         logFn,
		ctx:           ctx,
		cancel:        cancel,
	}
	for i := range r.shards {
		r.shards[i] = &shard{wake: make(chan struct{}, 1)}
	}
	return r
}

// SetPermanent sets the predicate for errors that are never redelivered.
func (r *Router) SetPermanent(fn func(error) bool) { r.permanent = fn }

func (r *Router) Start() {
	for _, s := range r.shards {
		r.workers.Add(1)
		go r.work(s)
	}
}

// Stop cancels running handlers and waits for the workers to exit.
// Pending triggers are dropped.
func (r *Router) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	r.workers.Wait()
	for _, s := range r.shards {
		s.mu.Lock()
		n := len(s.pending)
		s.pending = nil
		s.mu.Unlock()
		for i := 0; i < n; i++ {
			r.inflight.Done()
		}
	}
}

// Submit queues a trigger. It never blocks, so handlers may submit.
func (r *Router) Submit(t Trigger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.inflight.Add(1)
	t.delivery = 0
	r.enqueue(t)
}

// Drain blocks until every submitted trigger, including redeliveries and
// triggers submitted by handlers, has finished.
func (r *Router) Drain() {
	r.inflight.Wait()
}

func (r *Router) shardFor(caseID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(caseID))
	return r.shards[h.Sum32()%uint32(len(r.shards))]
}

func (r *Router) enqueue(t Trigger) {
	s := r.shardFor(t.CaseID)
	s.mu.Lock()
	s.pending = append(s.pending, t)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (r *Router) work(s *shard) {
	defer r.workers.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if len(s.pending) == 0 {
				s.mu.Unlock()
				break
			}
			t := s.pending[0]
			s.pending = s.pending[1:]
			s.mu.Unlock()

			r.deliver(t)
			if r.ctx.Err() != nil {
				return
			}
		}
	}
}

func (r *Router) deliver(t Trigger) {
	t.delivery++
	err := r.handler(r.ctx, t)
	if err == nil {
		r.inflight.Done()
		return
	}
	if r.permanent(err) || t.delivery >= r.maxDeliveries || r.ctx.Err() != nil {
		r.logFn("engine: %s trigger for case %s failed after %d deliveries: %v", t.Kind, t.CaseID, t.delivery, err)
		r.inflight.Done()
		return
	}
	r.logFn("engine: %s trigger for case %s failed (delivery %d/%d), retrying: %v", t.Kind, t.CaseID, t.delivery, r.maxDeliveries, err)
	time.AfterFunc(r.retryDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.stopped {
			r.inflight.Done()
			return
		}
		r.enqueue(t)
	})
}
