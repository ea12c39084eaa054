// Package session manages the authentication token lifecycle: a two-state
// machine (anonymous / authenticated) whose authenticated state is persisted
// durably so it survives a process restart. Teardown is centralized here;
// logout and the backend's unauthorized signal both land in Invalidate.
package session

import (
	"context"
	"errors"
	"sync"

	"modiesel/internal/domain"
)

// ErrNoSession indicates the store holds no persisted session.
var ErrNoSession = errors.New("no session")

type Session struct {
	Token string
	User  domain.User
}

// Store persists at most one session.
type Store interface {
	Load(ctx context.Context) (Session, error) // ErrNoSession when empty
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

type Gate struct {
	mu    sync.RWMutex
	cur   *Session
	store Store
}

// NewGate restores any persisted session so an authenticated operator stays
// authenticated across restarts.
func NewGate(ctx context.Context, store Store) (*Gate, error) {
	g := &Gate{store: store}
	s, err := store.Load(ctx)
	switch {
	case err == nil:
		g.cur = &s
	case errors.Is(err, ErrNoSession):
	default:
		return nil, err
	}
	return g, nil
}

// Establish transitions to authenticated, persisting the session first so a
// crash between persist and use cannot leave a token only in memory.
func (g *Gate) Establish(ctx context.Context, s Session) error {
	if err := g.store.Save(ctx, s); err != nil {
		return err
	}
	g.mu.Lock()
	g.cur = &s
	g.mu.Unlock()
	return nil
}

// Invalidate clears all session state unconditionally. Safe to call when
// already anonymous, and safe to call twice: both logout and the
// unauthorized signal funnel through here.
func (g *Gate) Invalidate(ctx context.Context) {
	g.mu.Lock()
	g.cur = nil
	g.mu.Unlock()
	_ = g.store.Clear(ctx)
}

// Current returns the active session, if any.
func (g *Gate) Current() (Session, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.cur == nil {
		return Session{}, false
	}
	return *g.cur, true
}

// Token returns the bearer token, or "" when anonymous. Shaped for the API
// client's token func.
func (g *Gate) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.cur == nil {
		return ""
	}
	return g.cur.Token
}

func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cur != nil
}
