package models

import "time"

// Product represents a product in the catalog
type Product struct {
	ID      int      `db:"id" json:"id"`
	Name    string   `db:"name" json:"name"`
	Price   float64  `db:"price" json:"price"`
	Stock   int      `db:"stock" json:"stock"`
	Reviews []Review `db:"-" json:"reviews,omitempty"`
}

// Clone returns a deep copy of the product, including its reviews.
func (p Product) Clone() Product {
	cp := p
	if len(p.Reviews) > 0 {
		cp.Reviews = make([]Review, len(p.Reviews))
		copy(cp.Reviews, p.Reviews)
	} else {
		cp.Reviews = nil
	}
	return cp
}

// Review is a single customer rating attached to a product
type Review struct {
	ProductID int    `db:"product_id" json:"product_id"`
	Reviewer  string `db:"reviewer" json:"reviewer"`
	Rating    int    `db:"rating" json:"rating"`
}

// Rating bounds for reviews
const (
	MinRating = 1
	MaxRating = 5
)

// Promotion is a discount rule applicable to a set of product ids.
// Promotions are treated as immutable once handed to a promo.Set.
type Promotion struct {
	ID                 int     `db:"id" json:"id"`
	Description        string  `db:"description" json:"description"`
	DiscountPercentage float64 `db:"discount_percentage" json:"discount_percentage"`
	ProductIDs         []int   `db:"-" json:"product_ids"`
}

// Order represents a completed checkout. Orders are immutable snapshots:
// items carry the name and unit price as they were at checkout time.
type Order struct {
	ID               int64       `db:"id" json:"id"`
	CustomerUsername string      `db:"customer_username" json:"customer_username"`
	Items            []OrderItem `db:"-" json:"items"`
	TotalAmount      float64     `db:"total_amount" json:"total_amount"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
}

// OrderItem represents one line of an order
type OrderItem struct {
	ProductID int     `db:"product_id" json:"product_id"`
	Name      string  `db:"name" json:"name"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
	Quantity  int     `db:"quantity" json:"quantity"`
}
