package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/query"
)

const variantColumnsSQL = `id, product_id, size, color, stock, created_at, updated_at`

// VariantRepository implements domain.VariantRepository for PostgreSQL
type VariantRepository struct {
	db *sqlx.DB
}

// NewVariantRepository creates a new PostgreSQL variant repository
func NewVariantRepository(db *sqlx.DB) *VariantRepository {
	return &VariantRepository{db: db}
}

// Create inserts a new variant
func (r *VariantRepository) Create(ctx context.Context, variant *domain.Variant) error {
	q := `
		INSERT INTO variants (product_id, size, color, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	now := time.Now()
	variant.CreatedAt = now
	variant.UpdatedAt = now

	return r.db.QueryRowxContext(
		ctx,
		q,
		variant.ProductID,
		variant.Size,
		variant.Color,
		variant.Stock,
		variant.CreatedAt,
		variant.UpdatedAt,
	).Scan(&variant.ID, &variant.CreatedAt, &variant.UpdatedAt)
}

// ListByProduct retrieves all variants of a product
func (r *VariantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Variant, error) {
	q := fmt.Sprintf(`SELECT %s FROM variants WHERE product_id = $1 ORDER BY created_at ASC`, variantColumnsSQL)

	variants := []*domain.Variant{}
	if err := r.db.SelectContext(ctx, &variants, q, productID); err != nil {
		return nil, err
	}

	return variants, nil
}

// ListByProducts retrieves variants for a set of products in one query
func (r *VariantRepository) ListByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]*domain.Variant, error) {
	byProduct := make(map[uuid.UUID][]*domain.Variant, len(productIDs))
	if len(productIDs) == 0 {
		return byProduct, nil
	}

	ids := make([]string, len(productIDs))
	for i, id := range productIDs {
		ids[i] = id.String()
	}

	q := fmt.Sprintf(`SELECT %s FROM variants WHERE product_id = ANY($1) ORDER BY created_at ASC`, variantColumnsSQL)

	variants := []*domain.Variant{}
	if err := r.db.SelectContext(ctx, &variants, q, pq.Array(ids)); err != nil {
		return nil, err
	}

	for _, v := range variants {
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}

	return byProduct, nil
}

// UpdateStock sets a variant's stock
func (r *VariantRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	q := `UPDATE variants SET stock = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, q, stock, time.Now(), id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// Delete removes a single variant
func (r *VariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM variants WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// DeleteByProduct removes all variants owned by a product. Deleting an
// empty set is not an error.
func (r *VariantRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM variants WHERE product_id = $1`, productID)
	return err
}

// AdjustStock applies a signed delta to the variant identified by
// (productID, size, color). The non-negative stock check is part of the
// UPDATE itself, so a concurrent decrement cannot slip below zero
// between a read and a write.
func (r *VariantRepository) AdjustStock(ctx context.Context, productID uuid.UUID, size, color string, delta int) (*domain.Variant, error) {
	q := fmt.Sprintf(`
		UPDATE variants
		SET stock = stock + $4, updated_at = $5
		WHERE product_id = $1 AND size = $2 AND color = $3 AND stock + $4 >= 0
		RETURNING %s
	`, variantColumnsSQL)

	var variant domain.Variant
	err := r.db.QueryRowxContext(ctx, q, productID, size, color, delta, time.Now()).StructScan(&variant)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &variant, nil
}

// DistinctColors returns the distinct colors among variants whose owning
// product matches the predicate
func (r *VariantRepository) DistinctColors(ctx context.Context, pred query.Predicate) ([]string, error) {
	where, args, err := buildWhere(pred)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		SELECT DISTINCT v.color
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE %s
		ORDER BY 1
	`, where)

	colors := []string{}
	if err := r.db.SelectContext(ctx, &colors, q, args...); err != nil {
		return nil, err
	}

	return colors, nil
}
