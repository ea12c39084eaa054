// Package sale implements the sale composition core: the catalog snapshot a
// compose flow works against, the draft order with its line-merge and stock
// ceiling rules, and the composer that validates and submits the finished
// order to the backend.
package sale

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"modiesel/internal/domain"
)

// CatalogSource supplies the two lists a compose flow needs. Satisfied by
// *api.Client.
type CatalogSource interface {
	Clients(ctx context.Context) ([]domain.Client, error)
	Products(ctx context.Context) ([]domain.Product, error)
}

// Catalog is the immutable snapshot of clients and products fetched once per
// compose-flow open. Staleness over a long-lived flow is accepted; the
// backend re-validates stock at commit time.
type Catalog struct {
	Clients  []domain.Client
	Products []domain.Product

	products map[int]domain.Product
	clients  map[int]domain.Client
}

// LoadCatalog fetches both lists concurrently. If either fetch fails the
// whole load fails; no partial catalog is ever returned.
func LoadCatalog(ctx context.Context, src CatalogSource) (*Catalog, error) {
	var (
		clients  []domain.Client
		products []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = src.Clients(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = src.Products(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	c := &Catalog{
		Clients:  clients,
		Products: products,
		products: make(map[int]domain.Product, len(products)),
		clients:  make(map[int]domain.Client, len(clients)),
	}
	for _, p := range products {
		c.products[p.ID] = p
	}
	for _, cl := range clients {
		c.clients[cl.ID] = cl
	}
	return c, nil
}

func (c *Catalog) Product(id int) (domain.Product, bool) {
	p, ok := c.products[id]
	return p, ok
}

func (c *Catalog) Client(id int) (domain.Client, bool) {
	cl, ok := c.clients[id]
	return cl, ok
}
