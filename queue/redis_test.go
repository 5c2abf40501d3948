package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"kartcore/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func setupRedis(t *testing.T) *RedisStore {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client)
}

func TestRedisSwapDetectsConflict(t *testing.T) {
	rs := setupRedis(t)
	ctx := context.Background()
	caseID := "test-" + uuid.New().String()
	t.Cleanup(func() { rs.Delete(ctx, caseID) })

	q, err := rs.GetCaseQueue(ctx, caseID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if q.Version != 0 {
		t.Fatalf("Version = %d, want 0", q.Version)
	}
	q.Entries[1] = store.QueueEntry{OrderID: "o1"}
	q.QueueCount = 1
	if err := rs.SwapCaseQueue(ctx, q, 0); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if err := rs.SwapCaseQueue(ctx, q, 0); !errors.Is(err, store.ErrConflict) {
		t.Errorf("stale swap err = %v, want ErrConflict", err)
	}
	got, _ := rs.GetCaseQueue(ctx, caseID)
	if got.Version != 1 || got.Entries[1].OrderID != "o1" {
		t.Errorf("queue = %+v", got)
	}
}

func TestRedisConcurrentEnqueue(t *testing.T) {
	rs := setupRedis(t)
	db := testDB(t)
	ctx := context.Background()
	caseID := "test-" + uuid.New().String()
	t.Cleanup(func() { rs.Delete(ctx, caseID) })

	m := NewManager(rs, db, &mockEmitter{}, 1000)

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := m.Enqueue(ctx, caseID, fmt.Sprintf("user-%d", i), "A1"); err != nil {
				t.Errorf("enqueue: %v", err)
			}
		}(i)
	}
	wg.Wait()

	q, err := m.Snapshot(ctx, caseID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if q.QueueCount != n {
		t.Fatalf("QueueCount = %d, want %d", q.QueueCount, n)
	}
	assertContiguous(t, q)

	head, _ := m.PopAndShift(ctx, caseID)
	if head == nil {
		t.Fatal("expected a head")
	}
	q, _ = m.Snapshot(ctx, caseID)
	if q.QueueCount != n-1 {
		t.Errorf("QueueCount after pop = %d, want %d", q.QueueCount, n-1)
	}
	assertContiguous(t, q)
}
