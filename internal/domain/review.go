package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Review is customer feedback attached to a product by a weak reference.
// The review aggregate feeds the product's average rating, which the
// rating worker recomputes asynchronously.
type Review struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ProductID  uuid.UUID `json:"product_id" db:"product_id" validate:"required"`
	FirstName  string    `json:"first_name" db:"first_name" validate:"required,min=1,max=100"`
	LastName   string    `json:"last_name" db:"last_name" validate:"required,min=1,max=100"`
	ReviewText string    `json:"review_text" db:"review_text" validate:"required,min=1,max=5000"`
	Rating     int       `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	// Create inserts a new review
	Create(ctx context.Context, review *Review) error

	// GetByID retrieves a review by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)

	// GetByProductID retrieves reviews for a product with pagination
	GetByProductID(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*Review, error)

	// Update updates an existing review
	Update(ctx context.Context, review *Review) error

	// Delete removes a review
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByProductID removes all reviews for a product (cascade delete)
	DeleteByProductID(ctx context.Context, productID uuid.UUID) error

	// CountByProductID returns the total number of reviews for a product
	CountByProductID(ctx context.Context, productID uuid.UUID) (int, error)
}
