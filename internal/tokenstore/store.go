// Package tokenstore persists the session token used to authenticate calls
// to the rental backend.
package tokenstore

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
)

// Store holds at most one session token. Get returns an empty string when
// no token is stored.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the token for the lifetime of the process
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	return s.Set(ctx, "")
}

// ExpiresAt reads the exp claim of a JWT without verifying its signature.
// ok is false when the token is not a JWT or carries no expiry.
func ExpiresAt(token string) (exp time.Time, ok bool) {
	claims := &jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}, false
	}
	return time.Unix(claims.ExpiresAt, 0), true
}

// Expiring wraps a Store and treats an expired JWT as absent, clearing it
// from the underlying store on read
type Expiring struct {
	Store
	now func() time.Time
}

func NewExpiring(store Store) *Expiring {
	return &Expiring{Store: store, now: time.Now}
}

func (e *Expiring) Get(ctx context.Context) (string, error) {
	token, err := e.Store.Get(ctx)
	if err != nil || token == "" {
		return token, err
	}

	if exp, ok := ExpiresAt(token); ok && !e.now().Before(exp) {
		if err := e.Store.Clear(ctx); err != nil {
			return "", err
		}
		return "", nil
	}

	return token, nil
}
