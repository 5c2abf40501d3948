package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"kartcore/store"
)

// ErrUnauthenticated covers every way a bearer token can be wrong. Callers
// never learn which part failed.
var ErrUnauthenticated = errors.New("auth: unauthenticated")

// Users is the slice of the store the token check needs.
type Users interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
	SetUserTokenHash(ctx context.Context, userID, hash string) error
}

// Tokens issues and verifies user API tokens of the form "<userID>.<secret>".
// Only a bcrypt hash of the secret is stored; issuing a new token revokes the
// previous one.
type Tokens struct {
	users Users
	cost  int
}

func NewTokens(users Users) *Tokens {
	return &Tokens{users: users, cost: bcrypt.DefaultCost}
}

// SetCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (t *Tokens) SetCost(cost int) { t.cost = cost }

// Issue creates a fresh token for userID and stores its hash.
func (t *Tokens) Issue(ctx context.Context, userID string) (string, error) {
	if _, err := t.users.GetUser(ctx, userID); err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	secret := strings.ReplaceAll(uuid.New().String(), "-", "")
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), t.cost)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	if err := t.users.SetUserTokenHash(ctx, userID, string(hash)); err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return userID + "." + secret, nil
}

// Verify returns the user a token belongs to.
func (t *Tokens) Verify(ctx context.Context, token string) (string, error) {
	// The secret never contains a dot, the user id may.
	i := strings.LastIndex(token, ".")
	if i < 0 {
		return "", ErrUnauthenticated
	}
	userID, secret := token[:i], token[i+1:]
	if userID == "" || secret == "" {
		return "", ErrUnauthenticated
	}
	u, err := t.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", err
	}
	if u.TokenHash == "" {
		return "", ErrUnauthenticated
	}
	if bcrypt.CompareHashAndPassword([]byte(u.TokenHash), []byte(secret)) != nil {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// VerifyHeader checks an Authorization header value of the form
// "Bearer <token>".
func (t *Tokens) VerifyHeader(ctx context.Context, header string) (string, error) {
	token, ok := BearerToken(header)
	if !ok {
		return "", ErrUnauthenticated
	}
	return t.Verify(ctx, token)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
