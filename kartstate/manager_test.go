package kartstate

import (
	"context"
	"path/filepath"
	"testing"

	"kartcore/config"
	"kartcore/store"

	"github.com/redis/go-redis/v9"
)

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

func TestManagerSQLOnly(t *testing.T) {
	db := testDB(t)
	m := NewManager(db, nil)
	ctx := context.Background()

	m.RegisterKart(ctx, &store.Kart{ID: "k2", Name: "Kart 2", CurrentLocation: "C3"})
	if err := m.RegisterKart(ctx, &store.Kart{ID: "k1", Name: "Kart 1", CurrentLocation: "A1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.MoveKart(ctx, "k1", "B2"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := m.AssignJob(ctx, &store.KartJob{KartID: "k1", OrderID: "o1"}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	states, err := m.ListKarts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("states = %d, want 2", len(states))
	}
	if states[0].KartID != "k1" || states[0].Location != "B2" || states[0].QueueLength != 1 {
		t.Errorf("k1 = %+v", states[0])
	}

	m.FinishJob(ctx, "k1", "o1")
	st, err := m.GetKartState(ctx, "k1")
	if err != nil || st.QueueLength != 0 {
		t.Errorf("after finish = %+v, %v", st, err)
	}

	if err := m.SyncRedisFromSQL(ctx); err != nil {
		t.Errorf("sync without redis: %v", err)
	}
}

func TestManagerRedisWriteThrough(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	rs := NewRedisStore(client)
	rs.FlushAll(ctx)
	t.Cleanup(func() { rs.FlushAll(ctx) })

	db := testDB(t)
	m := NewManager(db, rs)
	m.RegisterKart(ctx, &store.Kart{ID: "k1", Name: "Kart 1", CurrentLocation: "A1"})
	m.MoveKart(ctx, "k1", "C2")
	m.AssignJob(ctx, &store.KartJob{KartID: "k1", OrderID: "o1"})

	meta, err := rs.GetKartMeta(ctx, "k1")
	if err != nil || meta == nil {
		t.Fatalf("meta = %+v, %v", meta, err)
	}
	if meta.Location != "C2" {
		t.Errorf("cached location = %q, want C2", meta.Location)
	}
	count, _ := rs.GetCount(ctx, "k1")
	if count != 1 {
		t.Errorf("cached count = %d, want 1", count)
	}

	states, err := m.ListKarts(ctx)
	if err != nil || len(states) != 1 || states[0].Location != "C2" {
		t.Errorf("states = %+v, %v", states, err)
	}
}
