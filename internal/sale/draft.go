package sale

import "fmt"

// Line is one (product, quantity, subtotal) entry in a draft order. Name and
// UnitPrice are copied from the catalog snapshot at add time so the view and
// the submitted payload agree even if the catalog later changes.
type Line struct {
	ProductID int     `json:"productoId"`
	Name      string  `json:"nombre"`
	UnitPrice float64 `json:"precioUnitario"`
	Quantity  int     `json:"cantidad"`
	Subtotal  float64 `json:"subtotal"`
}

// Draft is an in-progress, unsaved sale. Lines for the same product merge
// into one entry; quantities are capped by the catalog's stock snapshot.
type Draft struct {
	ClientID int
	catalog  *Catalog
	lines    []Line
}

func NewDraft(catalog *Catalog) *Draft {
	return &Draft{catalog: catalog}
}

// AddLine inserts a line, or merges into the existing line for the same
// product. The merged quantity is re-validated against the cached stock; on
// any failure the existing line is left untouched.
func (d *Draft) AddLine(productID, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	p, ok := d.catalog.Product(productID)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownProduct, productID)
	}

	idx := -1
	for i := range d.lines {
		if d.lines[i].ProductID == productID {
			idx = i
			break
		}
	}

	effective := qty
	if idx >= 0 {
		effective += d.lines[idx].Quantity
	}
	if effective > p.Stock {
		return fmt.Errorf("%w: %s has %d units available", ErrInsufficientStock, p.Name, p.Stock)
	}

	if idx >= 0 {
		d.lines[idx].Quantity = effective
		d.lines[idx].Subtotal = float64(effective) * p.UnitPrice
		return nil
	}
	d.lines = append(d.lines, Line{
		ProductID: productID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  qty,
		Subtotal:  float64(qty) * p.UnitPrice,
	})
	return nil
}

// RemoveLine drops the line at index. No stock bookkeeping: stock was never
// decremented locally.
func (d *Draft) RemoveLine(index int) error {
	if index < 0 || index >= len(d.lines) {
		return fmt.Errorf("%w: index %d", ErrNoSuchLine, index)
	}
	d.lines = append(d.lines[:index], d.lines[index+1:]...)
	return nil
}

// Total is always a full recomputation over the current lines, never an
// incrementally patched value. An empty draft totals 0.
func (d *Draft) Total() float64 {
	var total float64
	for _, l := range d.lines {
		total += l.Subtotal
	}
	return total
}

// Lines returns a copy of the current line sequence.
func (d *Draft) Lines() []Line {
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

func (d *Draft) Empty() bool { return len(d.lines) == 0 }

func (d *Draft) Clear() {
	d.lines = nil
	d.ClientID = 0
}
