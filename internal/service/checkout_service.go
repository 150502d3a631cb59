package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/ledger"
	"storefront/internal/models"
	"storefront/internal/promo"
	"storefront/internal/store"
	"storefront/internal/util"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrNotConfirmed = errors.New("checkout not confirmed")
)

// CheckoutService converts a cart into stock deductions plus one ledger
// order. Validation and commit run as a single critical section so two
// checkouts can never both pass validation against the same stock.
type CheckoutService struct {
	mu         sync.Mutex
	catalog    *catalog.Catalog
	promotions *promo.Set
	ledger     *ledger.OrderLedger
	store      store.Store
	logger     *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	cat *catalog.Catalog,
	promotions *promo.Set,
	orderLedger *ledger.OrderLedger,
	st store.Store,
) *CheckoutService {
	return &CheckoutService{
		catalog:    cat,
		promotions: promotions,
		ledger:     orderLedger,
		store:      st,
		logger:     util.GetLogger(),
	}
}

// Checkout runs one checkout attempt for the cart's session.
//
// Every line is validated against current catalog stock first; any
// failure aborts the whole attempt with no state change, naming the
// first failing product. The confirm flag models the caller's explicit
// confirmation: without it the attempt aborts after pricing, again with
// no state change. On commit, stock is deducted, the order is appended
// to the ledger, the cart is cleared and the updated catalog is
// persisted best-effort: a failed save is logged but never rolls back
// the in-memory commit.
func (s *CheckoutService) Checkout(ctx context.Context, c *cart.Cart, confirm bool) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := c.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	demands := make([]catalog.StockDemand, 0, len(lines))
	for _, line := range lines {
		p, err := s.catalog.FindByID(line.Product.ID)
		if err != nil {
			util.CheckoutsFailedTotal.WithLabelValues("not_found").Inc()
			return nil, fmt.Errorf("checkout validation failed: %w", err)
		}
		if p.Stock < line.Quantity {
			util.CheckoutsFailedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, fmt.Errorf("checkout validation failed: %w: product %q has %d, requested %d",
				catalog.ErrInsufficientStock, p.Name, p.Stock, line.Quantity)
		}
		demands = append(demands, catalog.StockDemand{ProductID: line.Product.ID, Quantity: line.Quantity})
	}

	total := c.Total(s.promotions)

	if !confirm {
		util.CheckoutsDeclinedTotal.Inc()
		s.logger.Info("Checkout declined",
			zap.String("username", c.Username()),
			zap.Float64("total", total))
		return nil, ErrNotConfirmed
	}

	if err := s.catalog.DeductStock(demands); err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("deduct_failed").Inc()
		return nil, fmt.Errorf("checkout commit failed: %w", err)
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			UnitPrice: line.Product.Price,
			Quantity:  line.Quantity,
		})
	}

	order := s.ledger.Append(c.Username(), items, total)
	c.Clear()

	util.OrdersCreatedTotal.Inc()
	util.CheckoutAmount.Observe(total)
	s.logger.Info("Checkout completed",
		zap.Int64("order_id", order.ID),
		zap.String("username", order.CustomerUsername),
		zap.Float64("total", order.TotalAmount),
		zap.Int("items", len(order.Items)))

	s.persist(ctx)

	return &order, nil
}

// persist saves the updated catalog and reviews. Failures are logged
// and counted; the completed checkout stands regardless.
func (s *CheckoutService) persist(ctx context.Context) {
	snapshot := s.catalog.Products()

	if err := s.store.SaveCatalog(ctx, snapshot); err != nil {
		util.CatalogSaveFailuresTotal.WithLabelValues("catalog").Inc()
		s.logger.Error("Failed to persist catalog", zap.Error(err))
	}
	if err := s.store.SaveReviews(ctx, snapshot); err != nil {
		util.CatalogSaveFailuresTotal.WithLabelValues("reviews").Inc()
		s.logger.Error("Failed to persist reviews", zap.Error(err))
	}
}
