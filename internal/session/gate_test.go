package session_test

import (
	"context"
	"errors"
	"testing"

	"modiesel/internal/domain"
	"modiesel/internal/session"
)

func openStore(t *testing.T) *session.DBStore {
	t.Helper()
	store, err := session.OpenStore(":memory:")
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGateStartsAnonymous(t *testing.T) {
	gate, err := session.NewGate(context.Background(), openStore(t))
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if gate.Authenticated() {
		t.Fatal("fresh gate must be anonymous")
	}
	if gate.Token() != "" {
		t.Fatalf("Token = %q, want empty", gate.Token())
	}
	if _, ok := gate.Current(); ok {
		t.Fatal("Current must report no session")
	}
}

func TestEstablishPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	gate, err := session.NewGate(ctx, store)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	sess := session.Session{
		Token: "tok-abc",
		User:  domain.User{ID: 4, Name: "Ana", Email: "ana@modiesel.pe", Role: "EMPLEADO"},
	}
	if err := gate.Establish(ctx, sess); err != nil {
		t.Fatalf("Establish: %v", err)
	}
	if gate.Token() != "tok-abc" {
		t.Fatalf("Token = %q", gate.Token())
	}

	// A second gate over the same store models a process restart.
	restarted, err := session.NewGate(ctx, store)
	if err != nil {
		t.Fatalf("NewGate after restart: %v", err)
	}
	cur, ok := restarted.Current()
	if !ok {
		t.Fatal("restarted gate must restore the session")
	}
	if cur.Token != "tok-abc" || cur.User.Name != "Ana" || cur.User.Role != "EMPLEADO" {
		t.Fatalf("restored session = %+v", cur)
	}
}

func TestInvalidateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	gate, err := session.NewGate(ctx, store)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if err := gate.Establish(ctx, session.Session{Token: "tok", User: domain.User{ID: 1}}); err != nil {
		t.Fatalf("Establish: %v", err)
	}

	gate.Invalidate(ctx)
	gate.Invalidate(ctx) // second teardown must be a no-op

	if gate.Authenticated() {
		t.Fatal("gate still authenticated after Invalidate")
	}
	if _, err := store.Load(ctx); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("store.Load = %v, want ErrNoSession", err)
	}

	// Invalidating an already-anonymous gate is equally safe.
	fresh, err := session.NewGate(ctx, store)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	fresh.Invalidate(ctx)
	if fresh.Authenticated() {
		t.Fatal("anonymous gate became authenticated")
	}
}

func TestEstablishReplacesPreviousSession(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	gate, err := session.NewGate(ctx, store)
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if err := gate.Establish(ctx, session.Session{Token: "first", User: domain.User{ID: 1}}); err != nil {
		t.Fatalf("Establish: %v", err)
	}
	if err := gate.Establish(ctx, session.Session{Token: "second", User: domain.User{ID: 2}}); err != nil {
		t.Fatalf("Establish: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Token != "second" || loaded.User.ID != 2 {
		t.Fatalf("persisted session = %+v, want the replacement", loaded)
	}
}
