package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/product_catalog/internal/domain"
)

// ReviewRepository implements domain.ReviewRepository for PostgreSQL
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new PostgreSQL review repository
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	q := `
		INSERT INTO reviews (product_id, first_name, last_name, review_text, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	return r.db.QueryRowxContext(
		ctx,
		q,
		review.ProductID,
		review.FirstName,
		review.LastName,
		review.ReviewText,
		review.Rating,
		review.CreatedAt,
		review.UpdatedAt,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	q := `
		SELECT id, product_id, first_name, last_name, review_text, rating, created_at, updated_at
		FROM reviews
		WHERE id = $1
	`

	var review domain.Review
	err := r.db.GetContext(ctx, &review, q, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &review, nil
}

// GetByProductID retrieves reviews for a product with pagination
func (r *ReviewRepository) GetByProductID(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	q := `
		SELECT id, product_id, first_name, last_name, review_text, rating, created_at, updated_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	reviews := []*domain.Review{}
	if err := r.db.SelectContext(ctx, &reviews, q, productID, limit, offset); err != nil {
		return nil, err
	}

	return reviews, nil
}

// Update updates an existing review
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	q := `
		UPDATE reviews
		SET first_name = $1, last_name = $2, review_text = $3, rating = $4, updated_at = $5
		WHERE id = $6
	`

	review.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(
		ctx,
		q,
		review.FirstName,
		review.LastName,
		review.ReviewText,
		review.Rating,
		review.UpdatedAt,
		review.ID,
	)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// Delete removes a review
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// DeleteByProductID removes all reviews for a product. Deleting an empty
// set is not an error.
func (r *ReviewRepository) DeleteByProductID(ctx context.Context, productID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE product_id = $1`, productID)
	return err
}

// CountByProductID returns the total number of reviews for a product
func (r *ReviewRepository) CountByProductID(ctx context.Context, productID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reviews WHERE product_id = $1`, productID)
	if err != nil {
		return 0, err
	}

	return count, nil
}
