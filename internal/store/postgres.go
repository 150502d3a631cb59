package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"storefront/internal/models"
	"storefront/internal/util"
)

// PostgresStore persists catalog data in Postgres. Saves replace the
// whole snapshot inside a transaction; the engine treats them as
// best-effort either way.
type PostgresStore struct {
	db *sqlx.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to the database behind the given URL.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// LoadCatalog retrieves all products with their reviews attached.
func (s *PostgresStore) LoadCatalog(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "PostgresStore.LoadCatalog")
	defer span.End()

	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT id, name, price, stock FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	var reviews []models.Review
	err = s.db.SelectContext(ctx, &reviews,
		"SELECT product_id, reviewer, rating FROM reviews ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	byProduct := make(map[int][]models.Review)
	for _, r := range reviews {
		byProduct[r.ProductID] = append(byProduct[r.ProductID], r)
	}
	for i := range products {
		products[i].Reviews = byProduct[products[i].ID]
	}
	return products, nil
}

// LoadPromotions retrieves all promotions with their product id sets.
func (s *PostgresStore) LoadPromotions(ctx context.Context) ([]models.Promotion, error) {
	ctx, span := util.StartSpan(ctx, "PostgresStore.LoadPromotions")
	defer span.End()

	var promotions []models.Promotion
	err := s.db.SelectContext(ctx, &promotions,
		"SELECT id, description, discount_percentage FROM promotions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to load promotions: %w", err)
	}

	type link struct {
		PromotionID int `db:"promotion_id"`
		ProductID   int `db:"product_id"`
	}
	var links []link
	err = s.db.SelectContext(ctx, &links,
		"SELECT promotion_id, product_id FROM promotion_products ORDER BY promotion_id, product_id")
	if err != nil {
		return nil, fmt.Errorf("failed to load promotion products: %w", err)
	}

	byPromotion := make(map[int][]int)
	for _, l := range links {
		byPromotion[l.PromotionID] = append(byPromotion[l.PromotionID], l.ProductID)
	}
	for i := range promotions {
		promotions[i].ProductIDs = byPromotion[promotions[i].ID]
	}
	return promotions, nil
}

// SaveCatalog replaces the stored product snapshot.
func (s *PostgresStore) SaveCatalog(ctx context.Context, products []models.Product) error {
	ctx, span := util.StartSpan(ctx, "PostgresStore.SaveCatalog")
	defer span.End()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	for _, p := range products {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO products (id, name, price, stock) VALUES ($1, $2, $3, $4)",
			p.ID, p.Name, p.Price, p.Stock)
		if err != nil {
			return fmt.Errorf("failed to insert product %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// SaveReviews replaces the stored review snapshot.
func (s *PostgresStore) SaveReviews(ctx context.Context, products []models.Product) error {
	ctx, span := util.StartSpan(ctx, "PostgresStore.SaveReviews")
	defer span.End()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews"); err != nil {
		return fmt.Errorf("failed to clear reviews: %w", err)
	}
	for _, p := range products {
		for _, r := range p.Reviews {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO reviews (product_id, reviewer, rating) VALUES ($1, $2, $3)",
				p.ID, r.Reviewer, r.Rating)
			if err != nil {
				return fmt.Errorf("failed to insert review for product %d: %w", p.ID, err)
			}
		}
	}
	return tx.Commit()
}
