package sale_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"modiesel/internal/domain"
	"modiesel/internal/sale"
)

type fakeSource struct {
	clients     []domain.Client
	products    []domain.Product
	clientsErr  error
	productsErr error
}

func (f *fakeSource) Clients(ctx context.Context) ([]domain.Client, error) {
	return f.clients, f.clientsErr
}

func (f *fakeSource) Products(ctx context.Context) ([]domain.Product, error) {
	return f.products, f.productsErr
}

func testCatalog(t *testing.T) *sale.Catalog {
	t.Helper()
	src := &fakeSource{
		clients: []domain.Client{{ID: 1, BusinessName: "Transportes Andinos"}},
		products: []domain.Product{
			{ID: 1, Name: "Filtro de aceite", UnitPrice: 10, Stock: 5},
			{ID: 2, Name: "Bujía", UnitPrice: 5, Stock: 20},
		},
	}
	cat, err := sale.LoadCatalog(context.Background(), src)
	require.NoError(t, err)
	return cat
}

func TestAddLineMergesSameProduct(t *testing.T) {
	d := sale.NewDraft(testCatalog(t))

	require.NoError(t, d.AddLine(1, 2))
	require.NoError(t, d.AddLine(1, 3))

	lines := d.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, 5, lines[0].Quantity)
	require.Equal(t, 50.0, lines[0].Subtotal)
	require.Equal(t, 50.0, d.Total())
}

func TestAddLineInsufficientStockLeavesLineUntouched(t *testing.T) {
	d := sale.NewDraft(testCatalog(t))

	require.NoError(t, d.AddLine(1, 3))
	err := d.AddLine(1, 3) // merged quantity 6 exceeds stock 5
	require.ErrorIs(t, err, sale.ErrInsufficientStock)

	lines := d.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, 3, lines[0].Quantity)
	require.Equal(t, 30.0, lines[0].Subtotal)
}

func TestAddLineRejectsBadInput(t *testing.T) {
	d := sale.NewDraft(testCatalog(t))

	require.ErrorIs(t, d.AddLine(1, 0), sale.ErrInvalidQuantity)
	require.ErrorIs(t, d.AddLine(1, -4), sale.ErrInvalidQuantity)
	require.ErrorIs(t, d.AddLine(99, 1), sale.ErrUnknownProduct)
	require.True(t, d.Empty())
}

func TestRemoveLineOutOfRangeChangesNothing(t *testing.T) {
	d := sale.NewDraft(testCatalog(t))
	require.NoError(t, d.AddLine(1, 2))
	require.NoError(t, d.AddLine(2, 1))

	require.ErrorIs(t, d.RemoveLine(-1), sale.ErrNoSuchLine)
	require.ErrorIs(t, d.RemoveLine(2), sale.ErrNoSuchLine)
	require.Len(t, d.Lines(), 2)
	require.Equal(t, 25.0, d.Total())
}

func TestRemoveLineShiftsRemaining(t *testing.T) {
	d := sale.NewDraft(testCatalog(t))
	require.NoError(t, d.AddLine(1, 2))
	require.NoError(t, d.AddLine(2, 4))

	require.NoError(t, d.RemoveLine(0))

	lines := d.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, 2, lines[0].ProductID)
	require.Equal(t, 20.0, d.Total())
}

func TestTotalIsFullRecompute(t *testing.T) {
	d := sale.NewDraft(testCatalog(t))
	require.Equal(t, 0.0, d.Total())

	require.NoError(t, d.AddLine(1, 2))
	require.NoError(t, d.AddLine(2, 3))
	require.Equal(t, 35.0, d.Total())

	require.NoError(t, d.RemoveLine(1))
	require.Equal(t, 20.0, d.Total())

	d.Clear()
	require.Equal(t, 0.0, d.Total())
	require.True(t, d.Empty())
}

func TestLoadCatalogFailsOnAnyFetchError(t *testing.T) {
	src := &fakeSource{productsErr: context.DeadlineExceeded}
	_, err := sale.LoadCatalog(context.Background(), src)
	require.ErrorIs(t, err, sale.ErrCatalogUnavailable)
}
