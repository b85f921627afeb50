package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/query"
)

const productColumnsSQL = `p.id, p.name, p.category, p.sub_category, p.gender, p.brand, p.image_url, p.description, p.price, p.total_stock, p.average_rating, p.created_at, p.updated_at`

// ProductRepository implements domain.ProductRepository for PostgreSQL
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, category, sub_category, gender, brand, image_url, description, price, total_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, average_rating, created_at, updated_at
	`

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Category,
		product.SubCategory,
		product.Gender,
		product.Brand,
		product.ImageURL,
		product.Description,
		product.Price,
		product.TotalStock,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(
		&product.ID,
		&product.AverageRating,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	return err
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE p.id = $1`, productColumnsSQL)

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &product, nil
}

// List retrieves a page of products matching the simple list filter,
// newest first. Empty filter fields match everything.
func (r *ProductRepository) List(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		WHERE ($1 = '' OR p.category ILIKE $1)
		  AND ($2 = '' OR p.brand ILIKE $2)
		ORDER BY p.created_at DESC
		LIMIT $3 OFFSET $4
	`, productColumnsSQL)

	products := []*domain.Product{}
	err := r.db.SelectContext(ctx, &products, query, listPattern(filter.Category), listPattern(filter.Brand), limit, offset)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// CountList returns the number of products matching the simple list filter
func (r *ProductRepository) CountList(ctx context.Context, filter domain.ListFilter) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM products p
		WHERE ($1 = '' OR p.category ILIKE $1)
		  AND ($2 = '' OR p.brand ILIKE $2)
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, listPattern(filter.Category), listPattern(filter.Brand))
	if err != nil {
		return 0, err
	}

	return count, nil
}

func listPattern(value string) string {
	if value == "" {
		return ""
	}
	return likeContains(value)
}

// Update persists the product's scalar fields
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, category = $2, sub_category = $3, gender = $4, brand = $5,
		    image_url = $6, description = $7, price = $8, updated_at = $9
		WHERE id = $10
	`

	product.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.Name,
		product.Category,
		product.SubCategory,
		product.Gender,
		product.Brand,
		product.ImageURL,
		product.Description,
		product.Price,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// UpdateTotalStock sets the derived total stock
func (r *ProductRepository) UpdateTotalStock(ctx context.Context, id uuid.UUID, totalStock int) error {
	query := `UPDATE products SET total_stock = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, totalStock, time.Now(), id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// AdjustTotalStock applies a signed delta to the derived total stock
func (r *ProductRepository) AdjustTotalStock(ctx context.Context, id uuid.UUID, delta int) error {
	query := `UPDATE products SET total_stock = total_stock + $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, delta, time.Now(), id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// Delete removes a product row
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// Search retrieves a page of products matching the predicate
func (r *ProductRepository) Search(ctx context.Context, pred query.Predicate, sort string, limit, offset int) ([]*domain.Product, error) {
	where, args, err := buildWhere(pred)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(
		`SELECT %s FROM products p WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumnsSQL, where, orderBy(sort), len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	products := []*domain.Product{}
	if err := r.db.SelectContext(ctx, &products, q, args...); err != nil {
		return nil, err
	}

	return products, nil
}

// Count returns the number of products matching the predicate
func (r *ProductRepository) Count(ctx context.Context, pred query.Predicate) (int, error) {
	where, args, err := buildWhere(pred)
	if err != nil {
		return 0, err
	}

	q := fmt.Sprintf(`SELECT COUNT(*) FROM products p WHERE %s`, where)

	var count int
	if err := r.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, err
	}

	return count, nil
}

// DistinctValues returns the distinct non-empty values of a product field
// among products matching the predicate
func (r *ProductRepository) DistinctValues(ctx context.Context, field query.Field, pred query.Predicate) ([]string, error) {
	col, ok := productColumns[field]
	if !ok {
		return nil, fmt.Errorf("unknown query field: %q", field)
	}

	where, args, err := buildWhere(pred)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(
		`SELECT DISTINCT %s FROM products p WHERE %s AND %s IS NOT NULL AND %s <> '' ORDER BY 1`,
		col, where, col, col,
	)

	values := []string{}
	if err := r.db.SelectContext(ctx, &values, q, args...); err != nil {
		return nil, err
	}

	return values, nil
}

// PriceBounds returns min price, max price and the number of matching
// products
func (r *ProductRepository) PriceBounds(ctx context.Context, pred query.Predicate) (float64, float64, int, error) {
	where, args, err := buildWhere(pred)
	if err != nil {
		return 0, 0, 0, err
	}

	q := fmt.Sprintf(
		`SELECT COALESCE(MIN(p.price), 0), COALESCE(MAX(p.price), 0), COUNT(*) FROM products p WHERE %s`,
		where,
	)

	var min, max float64
	var count int
	if err := r.db.QueryRowxContext(ctx, q, args...).Scan(&min, &max, &count); err != nil {
		return 0, 0, 0, err
	}

	return min, max, count, nil
}

// requireRow converts a zero-row update/delete into ErrNotFound.
func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
