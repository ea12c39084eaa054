package sale

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry tracks open compose flows by id so the HTTP layer can route
// add/remove/submit calls back to the right Composer. Each flow is owned by
// exactly one dashboard tab; flows are dropped on cancel or success.
type Registry struct {
	mu    sync.Mutex
	flows map[string]*Composer
}

func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]*Composer)}
}

// Open starts a compose flow and returns its id.
func (r *Registry) Open(ctx context.Context, src CatalogSource, send SaleSender, actorID int) (string, *Composer, error) {
	c, err := Open(ctx, src, send, actorID)
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()
	r.mu.Lock()
	r.flows[id] = c
	r.mu.Unlock()
	return id, c, nil
}

func (r *Registry) Get(id string) (*Composer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.flows[id]
	return c, ok
}

// Drop closes the flow and forgets it.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	c, ok := r.flows[id]
	delete(r.flows, id)
	r.mu.Unlock()
	if ok {
		c.Close()
	}
}

// DropAll closes every open flow, used on logout and unauthorized teardown.
func (r *Registry) DropAll() {
	r.mu.Lock()
	flows := r.flows
	r.flows = make(map[string]*Composer)
	r.mu.Unlock()
	for _, c := range flows {
		c.Close()
	}
}
