// Package cart holds a customer session's pending purchase lines.
package cart

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/models"
	"storefront/internal/promo"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Line is one cart entry: a value snapshot of the product taken at
// add-time plus the accumulated quantity. The snapshot is deliberate:
// an admin price edit after the add does not reprice the line.
type Line struct {
	Product  models.Product
	Quantity int
}

// Cart accumulates purchase lines for one customer session. It is not
// safe for concurrent use; each session owns exactly one cart.
type Cart struct {
	id       string
	username string
	lines    map[int]*Line
	ordering []int
}

// New creates an empty cart for a customer session.
func New(username string) *Cart {
	return &Cart{
		id:       uuid.New().String(),
		username: username,
		lines:    make(map[int]*Line),
	}
}

// ID returns the cart's session id.
func (c *Cart) ID() string { return c.id }

// Username returns the session's customer username.
func (c *Cart) Username() string { return c.username }

// AddLine adds quantity units of the product. If a line for the product
// already exists its quantity is incremented; otherwise a new line is
// inserted carrying a snapshot of the product's current name and price.
func (c *Cart) AddLine(product models.Product, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if line, ok := c.lines[product.ID]; ok {
		line.Quantity += quantity
		return nil
	}
	c.lines[product.ID] = &Line{Product: product.Clone(), Quantity: quantity}
	c.ordering = append(c.ordering, product.ID)
	return nil
}

// RemoveLine deletes the line for the product id. Removing an absent
// line is a no-op.
func (c *Cart) RemoveLine(productID int) {
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	for i, id := range c.ordering {
		if id == productID {
			c.ordering = append(c.ordering[:i], c.ordering[i+1:]...)
			break
		}
	}
}

// Lines returns the cart lines in insertion order. The returned slice
// holds copies; callers cannot mutate the cart through it.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.ordering))
	for _, id := range c.ordering {
		line := c.lines[id]
		out = append(out, Line{Product: line.Product.Clone(), Quantity: line.Quantity})
	}
	return out
}

// Total prices the cart against the promotion set. Each line contributes
// its snapshot price times quantity, reduced by the discount resolved
// for its product id.
func (c *Cart) Total(promotions *promo.Set) float64 {
	total := 0.0
	for _, id := range c.ordering {
		line := c.lines[id]
		discount := promotions.ResolveDiscount(line.Product.ID)
		total += line.Product.Price * float64(line.Quantity) * (1 - discount/100)
	}
	return total
}

// Len returns the number of lines in the cart.
func (c *Cart) Len() int { return len(c.lines) }

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = make(map[int]*Line)
	c.ordering = nil
}
