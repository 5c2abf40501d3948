package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"kartcore/config"
	"kartcore/store"
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

func testTokens(t *testing.T) (*Tokens, *store.DB) {
	t.Helper()
	db := testDB(t)
	if err := db.CreateUser(context.Background(), &store.User{ID: "alice", DisplayName: "Alice"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	tok := NewTokens(db)
	tok.SetCost(bcrypt.MinCost)
	return tok, db
}

func TestIssueAndVerify(t *testing.T) {
	tok, db := testTokens(t)
	ctx := context.Background()

	token, err := tok.Issue(ctx, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !strings.HasPrefix(token, "alice.") {
		t.Errorf("token = %q, want alice.<secret>", token)
	}
	u, _ := db.GetUser(ctx, "alice")
	if u.TokenHash == "" || strings.Contains(token, u.TokenHash) {
		t.Error("stored hash should be set and differ from the secret")
	}

	userID, err := tok.Verify(ctx, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "alice" {
		t.Errorf("user = %q, want alice", userID)
	}
}

func TestVerifyUserIDWithDots(t *testing.T) {
	tok, db := testTokens(t)
	ctx := context.Background()
	if err := db.CreateUser(ctx, &store.User{ID: "john.doe", DisplayName: "John"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	token, err := tok.Issue(ctx, "john.doe")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userID, err := tok.Verify(ctx, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "john.doe" {
		t.Errorf("user = %q, want john.doe", userID)
	}

	if _, err := tok.Verify(ctx, "john."+token[strings.LastIndex(token, ".")+1:]); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("truncated user id: err = %v, want ErrUnauthenticated", err)
	}
}

func TestReissueRevokesOldToken(t *testing.T) {
	tok, _ := testTokens(t)
	ctx := context.Background()

	old, _ := tok.Issue(ctx, "alice")
	fresh, _ := tok.Issue(ctx, "alice")

	if _, err := tok.Verify(ctx, old); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("old token: err = %v, want ErrUnauthenticated", err)
	}
	if _, err := tok.Verify(ctx, fresh); err != nil {
		t.Errorf("fresh token: %v", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	tok, db := testTokens(t)
	ctx := context.Background()
	token, _ := tok.Issue(ctx, "alice")
	db.CreateUser(ctx, &store.User{ID: "bob", DisplayName: "Bob"})
	_, secret, _ := strings.Cut(token, ".")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "alice"},
		{"no secret", "alice."},
		{"no user", "." + secret},
		{"wrong secret", "alice.nope"},
		{"unknown user", "mallory." + secret},
		{"user without token", "bob." + secret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tok.Verify(ctx, tt.token); !errors.Is(err, ErrUnauthenticated) {
				t.Errorf("err = %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestIssueUnknownUser(t *testing.T) {
	tok, _ := testTokens(t)
	if _, err := tok.Issue(context.Background(), "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"bearer abc.def", "abc.def", true},
		{"Bearer   abc.def ", "abc.def", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestVerifyHeader(t *testing.T) {
	tok, _ := testTokens(t)
	ctx := context.Background()
	token, _ := tok.Issue(ctx, "alice")

	if id, err := tok.VerifyHeader(ctx, "Bearer "+token); err != nil || id != "alice" {
		t.Errorf("VerifyHeader = %q, %v", id, err)
	}
	if _, err := tok.VerifyHeader(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("missing scheme: err = %v", err)
	}
}
