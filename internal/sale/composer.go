package sale

import (
	"context"
	"errors"
	"sync"
	"time"

	"modiesel/internal/api"
	"modiesel/internal/domain"
)

// SaleSender issues the create-order call. Satisfied by *api.Client.
type SaleSender interface {
	CreateSale(ctx context.Context, sale domain.Sale) (domain.Sale, error)
}

// Confirmation is returned once the backend has accepted the order.
type Confirmation struct {
	SaleID  int     `json:"id"`
	Invoice string  `json:"factura"`
	Total   float64 `json:"total"`
}

// View is a read snapshot of a compose flow for rendering.
type View struct {
	ClientID int     `json:"clienteId"`
	Lines    []Line  `json:"detalles"`
	Total    float64 `json:"total"`
}

// Composer owns one compose flow: a catalog snapshot plus the draft being
// built against it. Line mutation and submission are mutually exclusive, and
// a submission that resolves after the flow was closed is discarded instead
// of resurrecting the draft.
type Composer struct {
	mu         sync.Mutex
	catalog    *Catalog
	draft      *Draft
	actorID    int
	send       SaleSender
	now        func() time.Time
	submitting bool
	closed     bool
}

// Open loads the catalog for a new compose flow. On catalog failure no
// Composer is returned; the flow never starts half-usable.
func Open(ctx context.Context, src CatalogSource, send SaleSender, actorID int) (*Composer, error) {
	catalog, err := LoadCatalog(ctx, src)
	if err != nil {
		return nil, err
	}
	return &Composer{
		catalog: catalog,
		draft:   NewDraft(catalog),
		actorID: actorID,
		send:    send,
		now:     time.Now,
	}, nil
}

func (c *Composer) Catalog() *Catalog { return c.catalog }

func (c *Composer) SetClient(clientID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mutable(); err != nil {
		return err
	}
	c.draft.ClientID = clientID
	return nil
}

func (c *Composer) AddLine(productID, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mutable(); err != nil {
		return err
	}
	return c.draft.AddLine(productID, qty)
}

func (c *Composer) RemoveLine(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.mutable(); err != nil {
		return err
	}
	return c.draft.RemoveLine(index)
}

func (c *Composer) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{ClientID: c.draft.ClientID, Lines: c.draft.Lines(), Total: c.draft.Total()}
}

// Submit validates the draft (client set, then non-empty, short-circuiting)
// and issues exactly one create-order call. The draft is preserved on any
// failure so the operator can edit and retry; it is cleared only after the
// backend confirms. A success that lands after Close is ignored.
func (c *Composer) Submit(ctx context.Context) (Confirmation, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Confirmation{}, ErrFlowClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return Confirmation{}, ErrSubmitInFlight
	}
	if c.draft.ClientID == 0 {
		c.mu.Unlock()
		return Confirmation{}, ErrMissingClient
	}
	if c.draft.Empty() {
		c.mu.Unlock()
		return Confirmation{}, ErrEmptyOrder
	}

	lines := c.draft.Lines()
	payload := domain.Sale{
		Date:       c.now().UTC().Format(time.RFC3339),
		Total:      c.draft.Total(),
		ClientID:   c.draft.ClientID,
		EmployeeID: c.actorID,
		Lines:      make([]domain.SaleLine, len(lines)),
	}
	for i, l := range lines {
		payload.Lines[i] = domain.SaleLine{ProductID: l.ProductID, Quantity: l.Quantity, Subtotal: l.Subtotal}
	}
	c.submitting = true
	c.mu.Unlock()

	created, err := c.send.CreateSale(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		// Unauthorized already tore the session down via the client hook;
		// everything is surfaced as a submission failure with the backend's
		// own message when it gave one.
		reason := err.Error()
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			reason = apiErr.Message
		}
		return Confirmation{}, &SubmissionError{Reason: reason, Err: err}
	}
	if c.closed {
		// The flow was cancelled while the call was in flight; do not
		// reopen the discarded draft or report success to anyone.
		return Confirmation{}, ErrFlowClosed
	}
	c.draft.Clear()
	invoice := ""
	if created.Invoice != nil {
		invoice = created.Invoice.Number
	}
	return Confirmation{SaleID: created.ID, Invoice: invoice, Total: created.Total}, nil
}

// Close discards the draft. Idempotent; an in-flight submission resolving
// afterwards is dropped.
func (c *Composer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.draft.Clear()
}

func (c *Composer) mutable() error {
	if c.closed {
		return ErrFlowClosed
	}
	if c.submitting {
		return ErrSubmitInFlight
	}
	return nil
}
