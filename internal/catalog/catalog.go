package catalog

import (
	"errors"
	"fmt"
	"sync"

	"storefront/internal/models"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrDuplicateID       = errors.New("duplicate product id")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidRating     = errors.New("rating out of range")
	ErrInvalidPrice      = errors.New("price must be non-negative")
	ErrInvalidStock      = errors.New("stock must be non-negative")
)

// Catalog owns the authoritative set of products, keyed by id.
// All methods are safe for concurrent use; checkout-level atomicity
// across several products is the checkout service's responsibility.
type Catalog struct {
	mu       sync.RWMutex
	byID     map[int]*models.Product
	ordering []int
}

// NewCatalog creates a catalog populated from the given products,
// typically the result of Store.LoadCatalog at startup.
func NewCatalog(products []models.Product) (*Catalog, error) {
	c := &Catalog{byID: make(map[int]*models.Product)}
	for _, p := range products {
		if err := c.Add(p); err != nil {
			return nil, fmt.Errorf("failed to populate catalog: %w", err)
		}
	}
	return c, nil
}

// FindByID returns a copy of the product with the given id.
func (c *Catalog) FindByID(id int) (models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.byID[id]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return p.Clone(), nil
}

// Add inserts a new product. The id must not already be present.
func (c *Catalog) Add(p models.Product) error {
	if p.Price < 0 {
		return fmt.Errorf("%w: %.2f", ErrInvalidPrice, p.Price)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidStock, p.Stock)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[p.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
	}
	cp := p.Clone()
	c.byID[p.ID] = &cp
	c.ordering = append(c.ordering, p.ID)
	return nil
}

// Edit replaces the mutable fields of an existing product in one step.
// Reviews are kept; they belong to the product, not to the edit.
func (c *Catalog) Edit(id int, name string, price float64, stock int) error {
	if price < 0 {
		return fmt.Errorf("%w: %.2f", ErrInvalidPrice, price)
	}
	if stock < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidStock, stock)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	p.Name = name
	p.Price = price
	p.Stock = stock
	return nil
}

// Remove deletes the product with the given id.
func (c *Catalog) Remove(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[id]; !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	delete(c.byID, id)
	for i, pid := range c.ordering {
		if pid == id {
			c.ordering = append(c.ordering[:i], c.ordering[i+1:]...)
			break
		}
	}
	return nil
}

// AdjustStock applies a stock delta. A delta that would drive stock
// negative fails with ErrInsufficientStock and leaves stock unchanged.
func (c *Catalog) AdjustStock(id int, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.adjustStockLocked(id, delta)
}

func (c *Catalog) adjustStockLocked(id int, delta int) error {
	p, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if p.Stock+delta < 0 {
		return fmt.Errorf("%w: product %q has %d, requested %d", ErrInsufficientStock, p.Name, p.Stock, -delta)
	}
	p.Stock += delta
	return nil
}

// StockDemand names a quantity to deduct from one product.
type StockDemand struct {
	ProductID int
	Quantity  int
}

// DeductStock validates and deducts stock for all demands as a single
// critical section. If any demand cannot be met, no stock changes and
// the error names the first failing product.
func (c *Catalog) DeductStock(demands []StockDemand) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range demands {
		p, ok := c.byID[d.ProductID]
		if !ok {
			return fmt.Errorf("%w: %d", ErrNotFound, d.ProductID)
		}
		if p.Stock < d.Quantity {
			return fmt.Errorf("%w: product %q has %d, requested %d", ErrInsufficientStock, p.Name, p.Stock, d.Quantity)
		}
	}
	for _, d := range demands {
		c.byID[d.ProductID].Stock -= d.Quantity
	}
	return nil
}

// AttachReview appends a review to a product. Rating must be within
// [MinRating, MaxRating].
func (c *Catalog) AttachReview(id int, reviewer string, rating int) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return fmt.Errorf("%w: %d", ErrInvalidRating, rating)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	p.Reviews = append(p.Reviews, models.Review{ProductID: id, Reviewer: reviewer, Rating: rating})
	return nil
}

// Reviews returns a copy of the reviews attached to a product.
func (c *Catalog) Reviews(id int) ([]models.Review, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	out := make([]models.Review, len(p.Reviews))
	copy(out, p.Reviews)
	return out, nil
}

// Products returns a snapshot of all products in insertion order.
// The snapshot is a deep copy and safe to hand to a persistence layer.
func (c *Catalog) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Product, 0, len(c.ordering))
	for _, id := range c.ordering {
		out = append(out, c.byID[id].Clone())
	}
	return out
}

// Len returns the number of products in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
