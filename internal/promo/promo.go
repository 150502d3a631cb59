// Package promo resolves promotion-based discounts for catalog products.
package promo

import (
	"storefront/internal/models"
)

// Set is an immutable list of promotions. Resolution is a linear scan in
// insertion order: the first promotion whose product set contains the id
// wins, even when a later promotion carries a larger discount. This
// first-match policy is load-bearing for pricing compatibility and must
// not be reordered by discount magnitude.
type Set struct {
	promotions []promotion
}

type promotion struct {
	id          int
	description string
	discount    float64
	products    map[int]struct{}
}

// NewSet builds a promotion set. Discount percentages are clamped into
// [0, 100] here so that pricing never has to re-validate them.
func NewSet(promotions []models.Promotion) *Set {
	s := &Set{promotions: make([]promotion, 0, len(promotions))}
	for _, p := range promotions {
		discount := p.DiscountPercentage
		if discount < 0 {
			discount = 0
		}
		if discount > 100 {
			discount = 100
		}
		products := make(map[int]struct{}, len(p.ProductIDs))
		for _, id := range p.ProductIDs {
			products[id] = struct{}{}
		}
		s.promotions = append(s.promotions, promotion{
			id:          p.ID,
			description: p.Description,
			discount:    discount,
			products:    products,
		})
	}
	return s
}

// ResolveDiscount returns the discount percentage of the first promotion
// applicable to the product, or 0 when none matches.
func (s *Set) ResolveDiscount(productID int) float64 {
	for _, p := range s.promotions {
		if _, ok := p.products[productID]; ok {
			return p.discount
		}
	}
	return 0
}

// Describe returns the description of the first promotion applicable to
// the product, or "" when none matches.
func (s *Set) Describe(productID int) string {
	for _, p := range s.promotions {
		if _, ok := p.products[productID]; ok {
			return p.description
		}
	}
	return ""
}

// Len returns the number of promotions in the set.
func (s *Set) Len() int {
	return len(s.promotions)
}
