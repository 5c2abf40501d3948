package notify

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"kartcore/config"
	"kartcore/protocol"
	"kartcore/store"
)

type pushed struct {
	token  string
	userID string
	p      Payload
}

type mockPusher struct {
	calls []pushed
	err   error
}

func (m *mockPusher) Push(_ context.Context, token, userID string, p Payload) error {
	m.calls = append(m.calls, pushed{token, userID, p})
	return m.err
}

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

func seed(t *testing.T, db *store.DB) {
	t.Helper()
	ctx := context.Background()
	if err := db.CreateCase(ctx, &store.Case{ID: "c1", Name: "Socket Set", LastLocation: "A1"}); err != nil {
		t.Fatal(err)
	}
	if err := db.CreateKart(ctx, &store.Kart{ID: "k1", Name: "Kart One", CurrentLocation: "B2"}); err != nil {
		t.Fatal(err)
	}
	db.CreateUser(ctx, &store.User{ID: "alice", DeviceToken: "tok-a"})
	db.CreateUser(ctx, &store.User{ID: "bob"})
}

func TestNotifierMessages(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	p := &mockPusher{}
	n := NewNotifier(db, p)
	ctx := context.Background()

	n.OrderQueued(ctx, "alice", "c1", 3)
	n.OrderFulfilled(ctx, "alice", "c1")
	n.OrderDispatched(ctx, "alice", "c1", "k1")

	if len(p.calls) != 3 {
		t.Fatalf("pushes = %d, want 3", len(p.calls))
	}
	if p.calls[0].token != "tok-a" || !strings.Contains(p.calls[0].p.Body, "#3") {
		t.Errorf("queued push = %+v", p.calls[0])
	}
	if !strings.Contains(p.calls[1].p.Body, "Socket Set") {
		t.Errorf("fulfilled body = %q", p.calls[1].p.Body)
	}
	if !strings.Contains(p.calls[2].p.Body, "Kart One") || !strings.Contains(p.calls[2].p.Body, "Socket Set") {
		t.Errorf("dispatched body = %q", p.calls[2].p.Body)
	}
	if p.calls[2].p.Icon != DefaultIcon {
		t.Errorf("icon = %q", p.calls[2].p.Icon)
	}
}

func TestNotifierNoTokenIsSilent(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	p := &mockPusher{}
	n := NewNotifier(db, p)

	n.OrderFulfilled(context.Background(), "bob", "c1")
	n.OrderFulfilled(context.Background(), "nobody", "c1")
	if len(p.calls) != 0 {
		t.Errorf("pushes = %d, want 0", len(p.calls))
	}
}

func TestNotifierSwallowsPushErrors(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	p := &mockPusher{err: errors.New("gateway down")}
	n := NewNotifier(db, p)

	// Must not panic or block.
	n.OrderDispatched(context.Background(), "alice", "c1", "k1")
	if len(p.calls) != 1 {
		t.Errorf("pushes = %d, want 1", len(p.calls))
	}
}

func TestOutboxPusher(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	n := NewNotifier(db, NewOutboxPusher(db, "kartcore/push", "kartcore"))
	ctx := context.Background()

	n.OrderFulfilled(ctx, "alice", "c1")

	msgs, err := db.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("outbox = %d, want 1", len(msgs))
	}
	if msgs[0].Topic != "kartcore/push" || msgs[0].MsgType != protocol.TypePushNotification {
		t.Errorf("msg = %+v", msgs[0])
	}
	var env protocol.Envelope
	if err := json.Unmarshal(msgs[0].Payload, &env); err != nil {
		t.Fatal(err)
	}
	var pn protocol.PushNotification
	if err := env.DecodePayload(&pn); err != nil {
		t.Fatal(err)
	}
	if pn.Token != "tok-a" || pn.UserID != "alice" || pn.Title != "Order fulfilled" {
		t.Errorf("push = %+v", pn)
	}
}
