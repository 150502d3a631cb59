package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/ledger"
	"storefront/internal/models"
	"storefront/internal/promo"
)

// fakeStore records saves and can simulate persistence failure.
type fakeStore struct {
	catalogSaves int
	reviewSaves  int
	failSaves    bool
	lastSnapshot []models.Product
}

func (f *fakeStore) LoadCatalog(ctx context.Context) ([]models.Product, error)      { return nil, nil }
func (f *fakeStore) LoadPromotions(ctx context.Context) ([]models.Promotion, error) { return nil, nil }
func (f *fakeStore) SaveCatalog(ctx context.Context, products []models.Product) error {
	if f.failSaves {
		return errors.New("disk full")
	}
	f.catalogSaves++
	f.lastSnapshot = products
	return nil
}
func (f *fakeStore) SaveReviews(ctx context.Context, products []models.Product) error {
	if f.failSaves {
		return errors.New("disk full")
	}
	f.reviewSaves++
	return nil
}
func (f *fakeStore) Close() error { return nil }

type fixture struct {
	catalog  *catalog.Catalog
	ledger   *ledger.OrderLedger
	store    *fakeStore
	checkout *CheckoutService
}

func newFixture(t *testing.T, promotions []models.Promotion) *fixture {
	t.Helper()
	cat, err := catalog.NewCatalog([]models.Product{
		{ID: 1, Name: "Pen", Price: 10.0, Stock: 5},
		{ID: 2, Name: "Notebook", Price: 20.0, Stock: 2},
	})
	require.NoError(t, err)

	st := &fakeStore{}
	orderLedger := ledger.NewOrderLedger()
	return &fixture{
		catalog:  cat,
		ledger:   orderLedger,
		store:    st,
		checkout: NewCheckoutService(cat, promo.NewSet(promotions), orderLedger, st),
	}
}

func stockOf(t *testing.T, cat *catalog.Catalog, id int) int {
	t.Helper()
	p, err := cat.FindByID(id)
	require.NoError(t, err)
	return p.Stock
}

func TestCheckoutEndToEnd(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	c := cart.New("alice")
	p, err := f.catalog.FindByID(1)
	require.NoError(t, err)
	require.NoError(t, c.AddLine(p, 3))

	assert.Equal(t, 30.0, c.Total(promo.NewSet(nil)))

	order, err := f.checkout.Checkout(ctx, c, true)
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, "alice", order.CustomerUsername)
	assert.Equal(t, 30.0, order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Pen", order.Items[0].Name)
	assert.Equal(t, 3, order.Items[0].Quantity)

	assert.Equal(t, 2, stockOf(t, f.catalog, 1))
	assert.Equal(t, 1, f.ledger.Len())
	assert.Equal(t, 0, c.Len(), "cart must be cleared after checkout")
	assert.Equal(t, 1, f.store.catalogSaves)
	assert.Equal(t, 1, f.store.reviewSaves)

	// A second attempt on the now-empty cart does nothing.
	_, err = f.checkout.Checkout(ctx, c, true)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 2, stockOf(t, f.catalog, 1))
	assert.Equal(t, 1, f.ledger.Len())
}

func TestCheckoutAbortsOnInsufficientStock(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	c := cart.New("alice")
	pen, _ := f.catalog.FindByID(1)
	notebook, _ := f.catalog.FindByID(2)
	require.NoError(t, c.AddLine(pen, 2))
	require.NoError(t, c.AddLine(notebook, 3)) // only 2 in stock

	_, err := f.checkout.Checkout(ctx, c, true)
	require.ErrorIs(t, err, catalog.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Notebook", "error must name the failing product")

	// Whole checkout aborted: no stock change, no order, cart intact.
	assert.Equal(t, 5, stockOf(t, f.catalog, 1))
	assert.Equal(t, 2, stockOf(t, f.catalog, 2))
	assert.Equal(t, 0, f.ledger.Len())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 0, f.store.catalogSaves)
}

func TestCheckoutAbortsOnMissingProduct(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	c := cart.New("alice")
	pen, _ := f.catalog.FindByID(1)
	require.NoError(t, c.AddLine(pen, 1))

	// Product deleted by an admin while it sat in the cart.
	require.NoError(t, f.catalog.Remove(1))

	_, err := f.checkout.Checkout(ctx, c, true)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, 0, f.ledger.Len())
	assert.Equal(t, 1, c.Len())
}

func TestCheckoutDeclinedLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	c := cart.New("alice")
	pen, _ := f.catalog.FindByID(1)
	require.NoError(t, c.AddLine(pen, 2))

	_, err := f.checkout.Checkout(ctx, c, false)
	assert.ErrorIs(t, err, ErrNotConfirmed)

	assert.Equal(t, 5, stockOf(t, f.catalog, 1))
	assert.Equal(t, 0, f.ledger.Len())
	assert.Equal(t, 1, c.Len(), "declined checkout must keep the cart")
	assert.Equal(t, 0, f.store.catalogSaves)
}

func TestCheckoutAppliesPromotionPricing(t *testing.T) {
	f := newFixture(t, []models.Promotion{
		{ID: 1, Description: "Pen sale", DiscountPercentage: 10, ProductIDs: []int{1}},
		{ID: 2, Description: "Bigger pen sale", DiscountPercentage: 50, ProductIDs: []int{1}},
	})
	ctx := context.Background()

	c := cart.New("alice")
	pen, _ := f.catalog.FindByID(1)
	require.NoError(t, c.AddLine(pen, 2))

	order, err := f.checkout.Checkout(ctx, c, true)
	require.NoError(t, err)

	// First-match promotion: 10%, not 50%.
	assert.InDelta(t, 18.0, order.TotalAmount, 1e-9)
}

func TestOrderImmutableAfterCatalogEdit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	c := cart.New("alice")
	pen, _ := f.catalog.FindByID(1)
	require.NoError(t, c.AddLine(pen, 1))

	order, err := f.checkout.Checkout(ctx, c, true)
	require.NoError(t, err)

	require.NoError(t, f.catalog.Edit(1, "Platinum Pen", 500.0, 99))

	stored := f.ledger.OrdersFor("alice")
	require.Len(t, stored, 1)
	assert.Equal(t, "Pen", stored[0].Items[0].Name)
	assert.Equal(t, 10.0, stored[0].Items[0].UnitPrice)
	assert.Equal(t, 10.0, order.TotalAmount)
}

func TestCheckoutLinePriceUsesSnapshotNotCatalog(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	c := cart.New("alice")
	pen, _ := f.catalog.FindByID(1)
	require.NoError(t, c.AddLine(pen, 2))

	// Reprice after the add: the line keeps its snapshot price.
	require.NoError(t, f.catalog.Edit(1, "Pen", 100.0, 5))

	order, err := f.checkout.Checkout(ctx, c, true)
	require.NoError(t, err)
	assert.Equal(t, 20.0, order.TotalAmount)
}

func TestPersistenceFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(t, nil)
	f.store.failSaves = true
	ctx := context.Background()

	c := cart.New("alice")
	pen, _ := f.catalog.FindByID(1)
	require.NoError(t, c.AddLine(pen, 3))

	order, err := f.checkout.Checkout(ctx, c, true)
	require.NoError(t, err, "save failure is best-effort, not a checkout error")
	require.NotNil(t, order)

	assert.Equal(t, 2, stockOf(t, f.catalog, 1))
	assert.Equal(t, 1, f.ledger.Len())
	assert.Equal(t, 0, c.Len())
}

func TestSuccessfulCheckoutPersistsSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	c := cart.New("alice")
	pen, _ := f.catalog.FindByID(1)
	require.NoError(t, c.AddLine(pen, 1))

	_, err := f.checkout.Checkout(ctx, c, true)
	require.NoError(t, err)

	require.Len(t, f.store.lastSnapshot, 2)
	assert.Equal(t, 4, f.store.lastSnapshot[0].Stock, "persisted snapshot must reflect the deduction")
}
