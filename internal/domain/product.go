package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/query"
)

// Product is the aggregate root of the catalog. TotalStock is derived:
// after every completed mutation it equals the sum of the variant stocks.
type Product struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Category      string     `json:"category" db:"category"`
	SubCategory   string     `json:"subCategory" db:"sub_category"`
	Gender        *string    `json:"gender,omitempty" db:"gender"`
	Brand         string     `json:"brand" db:"brand"`
	ImageURL      string     `json:"imageUrl" db:"image_url"`
	Description   string     `json:"description" db:"description"`
	Price         float64    `json:"price" db:"price"`
	TotalStock    int        `json:"totalStock" db:"total_stock"`
	AverageRating float64    `json:"averageRating" db:"average_rating"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
	Variants      []*Variant `json:"variants" db:"-"`
}

// Variant is a sellable size/color combination owned by exactly one product.
// A variant never outlives its product and is never shared between products.
type Variant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Size      string    `json:"size" db:"size"`
	Color     string    `json:"color" db:"color"`
	Stock     int       `json:"stock" db:"stock"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ListFilter is the simple field filter used by the plain product list,
// as opposed to the full facet engine behind Search.
type ListFilter struct {
	Category string
	Brand    string
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves a product by ID (variants not resolved)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// List retrieves a page of products matching the simple list filter,
	// newest first
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Product, error)

	// CountList returns the number of products matching the simple list filter
	CountList(ctx context.Context, filter ListFilter) (int, error)

	// Update persists the product's scalar fields
	Update(ctx context.Context, product *Product) error

	// UpdateTotalStock sets the derived total stock
	UpdateTotalStock(ctx context.Context, id uuid.UUID, totalStock int) error

	// AdjustTotalStock applies a signed delta to the derived total stock
	AdjustTotalStock(ctx context.Context, id uuid.UUID, delta int) error

	// Delete removes a product row
	Delete(ctx context.Context, id uuid.UUID) error

	// Search retrieves a page of products matching the predicate
	Search(ctx context.Context, pred query.Predicate, sort string, limit, offset int) ([]*Product, error)

	// Count returns the number of products matching the predicate
	Count(ctx context.Context, pred query.Predicate) (int, error)

	// DistinctValues returns the distinct non-empty values of a product
	// field among products matching the predicate
	DistinctValues(ctx context.Context, field query.Field, pred query.Predicate) ([]string, error)

	// PriceBounds returns min price, max price and the number of matching
	// products
	PriceBounds(ctx context.Context, pred query.Predicate) (min, max float64, count int, err error)
}

// VariantRepository defines the interface for variant data access
type VariantRepository interface {
	// Create inserts a new variant
	Create(ctx context.Context, variant *Variant) error

	// ListByProduct retrieves all variants of a product
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*Variant, error)

	// ListByProducts retrieves variants for a set of products in one query
	ListByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]*Variant, error)

	// UpdateStock sets a variant's stock
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error

	// Delete removes a single variant
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByProduct removes all variants owned by a product
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error

	// AdjustStock applies a signed delta to the variant identified by
	// (productID, size, color). The update is guarded: it only applies if
	// the resulting stock stays non-negative. Returns ErrNotFound when no
	// variant matches or the guard rejects the delta.
	AdjustStock(ctx context.Context, productID uuid.UUID, size, color string, delta int) (*Variant, error)

	// DistinctColors returns the distinct colors among variants whose
	// owning product matches the predicate
	DistinctColors(ctx context.Context, pred query.Predicate) ([]string, error)
}
