// Package store persists catalog, review and promotion data. The core
// engine only ever sees the Store interface; which backend sits behind
// it is a deployment decision.
package store

import (
	"context"

	"storefront/internal/models"
)

// Store is the persistence collaborator of the engine. Loads happen
// once at startup; saves are best-effort and never roll back in-memory
// state when they fail.
type Store interface {
	LoadCatalog(ctx context.Context) ([]models.Product, error)
	LoadPromotions(ctx context.Context) ([]models.Promotion, error)
	SaveCatalog(ctx context.Context, products []models.Product) error
	SaveReviews(ctx context.Context, products []models.Product) error
	Close() error
}
