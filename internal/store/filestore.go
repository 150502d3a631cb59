package store

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/util"
)

// FileStore persists data as comma-separated flat files:
//
//	products:   id,name,price,stock
//	reviews:    productId,reviewer,rating
//	promotions: id,description,discount,id1;id2;...
//
// Missing files are treated as empty data sets so a fresh install
// starts with nothing rather than an error. Product names must not
// contain commas; the format has no quoting.
type FileStore struct {
	productsPath   string
	reviewsPath    string
	promotionsPath string
	logger         *zap.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a flat-file store over the given paths.
func NewFileStore(productsPath, reviewsPath, promotionsPath string) *FileStore {
	return &FileStore{
		productsPath:   productsPath,
		reviewsPath:    reviewsPath,
		promotionsPath: promotionsPath,
		logger:         util.GetLogger(),
	}
}

// LoadCatalog reads the product file and attaches any persisted reviews.
func (fs *FileStore) LoadCatalog(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := fs.readLines(fs.productsPath, func(line string) error {
		fields := strings.Split(line, ",")
		if len(fields) != 4 {
			return fmt.Errorf("malformed product line %q", line)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("bad product id in line %q: %w", line, err)
		}
		price, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("bad price in line %q: %w", line, err)
		}
		stock, err := strconv.Atoi(fields[3])
		if err != nil {
			return fmt.Errorf("bad stock in line %q: %w", line, err)
		}
		products = append(products, models.Product{ID: id, Name: fields[1], Price: price, Stock: stock})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load products from %s: %w", fs.productsPath, err)
	}

	reviews, err := fs.loadReviews()
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Reviews = reviews[products[i].ID]
	}
	return products, nil
}

func (fs *FileStore) loadReviews() (map[int][]models.Review, error) {
	reviews := make(map[int][]models.Review)
	err := fs.readLines(fs.reviewsPath, func(line string) error {
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return fmt.Errorf("malformed review line %q", line)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("bad product id in review line %q: %w", line, err)
		}
		rating, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("bad rating in review line %q: %w", line, err)
		}
		reviews[id] = append(reviews[id], models.Review{ProductID: id, Reviewer: fields[1], Rating: rating})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews from %s: %w", fs.reviewsPath, err)
	}
	return reviews, nil
}

// LoadPromotions reads the promotion file.
func (fs *FileStore) LoadPromotions(ctx context.Context) ([]models.Promotion, error) {
	var promotions []models.Promotion
	err := fs.readLines(fs.promotionsPath, func(line string) error {
		fields := strings.Split(line, ",")
		if len(fields) != 4 {
			return fmt.Errorf("malformed promotion line %q", line)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("bad promotion id in line %q: %w", line, err)
		}
		discount, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("bad discount in line %q: %w", line, err)
		}
		var productIDs []int
		for _, raw := range strings.Split(fields[3], ";") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			pid, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("bad product id %q in promotion line %q: %w", raw, line, err)
			}
			productIDs = append(productIDs, pid)
		}
		promotions = append(promotions, models.Promotion{
			ID:                 id,
			Description:        fields[1],
			DiscountPercentage: discount,
			ProductIDs:         productIDs,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load promotions from %s: %w", fs.promotionsPath, err)
	}
	return promotions, nil
}

// SaveCatalog writes the product file, one line per product.
func (fs *FileStore) SaveCatalog(ctx context.Context, products []models.Product) error {
	f, err := os.Create(fs.productsPath)
	if err != nil {
		return fmt.Errorf("failed to write products to %s: %w", fs.productsPath, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, p := range products {
		fmt.Fprintf(w, "%d,%s,%g,%d\n", p.ID, p.Name, p.Price, p.Stock)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write products to %s: %w", fs.productsPath, err)
	}
	fs.logger.Debug("Saved product file",
		zap.String("path", fs.productsPath),
		zap.Int("products", len(products)))
	return nil
}

// SaveReviews writes the review file, one line per review.
func (fs *FileStore) SaveReviews(ctx context.Context, products []models.Product) error {
	f, err := os.Create(fs.reviewsPath)
	if err != nil {
		return fmt.Errorf("failed to write reviews to %s: %w", fs.reviewsPath, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, p := range products {
		for _, r := range p.Reviews {
			fmt.Fprintf(w, "%d,%s,%d\n", p.ID, r.Reviewer, r.Rating)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write reviews to %s: %w", fs.reviewsPath, err)
	}
	return nil
}

// Close is a no-op; the file store holds no open handles between calls.
func (fs *FileStore) Close() error { return nil }

func (fs *FileStore) readLines(path string, fn func(line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
