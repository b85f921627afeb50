package product

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/query"
)

// similarLimit caps the similar-products list on the detail page.
const similarLimit = 4

// ProductCache defines the cache operations the aggregate manager needs
type ProductCache interface {
	GetProductView(ctx context.Context, productID uuid.UUID) (*domain.Product, error)
	SetProductView(ctx context.Context, product *domain.Product) error
	InvalidateProductView(ctx context.Context, productID uuid.UUID) error
}

// VariantInput is one incoming size/color/stock combination.
type VariantInput struct {
	Size  string `json:"size" validate:"required"`
	Color string `json:"color" validate:"required"`
	Stock int    `json:"stock" validate:"gte=0"`
}

// CreateInput carries a new product with its initial variant set.
type CreateInput struct {
	Name        string         `validate:"required,min=1,max=255"`
	Category    string         `validate:"required"`
	SubCategory string
	Gender      string
	Brand       string         `validate:"required"`
	ImageURL    string         `validate:"required"`
	Description string         `validate:"required"`
	Price       float64        `validate:"gte=0"`
	Variants    []VariantInput `validate:"dive"`
}

// UpdateInput is a partial update. Nil pointers mean "leave unchanged",
// so an explicitly cleared value is distinguishable from an omitted one.
// A non-empty Variants list reconciles the whole variant set; nil or
// empty leaves it alone.
type UpdateInput struct {
	ID          uuid.UUID `validate:"required"`
	Name        *string   `validate:"omitempty,min=1,max=255"`
	Category    *string   `validate:"omitempty,min=1"`
	SubCategory *string
	Gender      *string
	Brand       *string `validate:"omitempty,min=1"`
	ImageURL    *string
	Description *string
	Price       *float64       `validate:"omitempty,gte=0"`
	Variants    []VariantInput `validate:"dive"`
}

// Service manages the product/variant aggregate: create, partial update,
// delete, with the derived total-stock invariant maintained across every
// mutation.
type Service struct {
	products domain.ProductRepository
	variants domain.VariantRepository
	reviews  domain.ReviewRepository
	cache    ProductCache
	validate *validator.Validate
	logger   *logger.Logger
}

// NewService creates a new product aggregate service
func NewService(
	products domain.ProductRepository,
	variants domain.VariantRepository,
	reviews domain.ReviewRepository,
	cache ProductCache,
	log *logger.Logger,
) *Service {
	return &Service{
		products: products,
		variants: variants,
		reviews:  reviews,
		cache:    cache,
		validate: validator.New(),
		logger:   log,
	}
}

// Create persists a product and its variants. The product goes first so
// the variants can reference its id; totalStock is the sum of the
// incoming variant stocks.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	if err := s.validate.Struct(in); err != nil {
		s.logger.Error("Product validation failed", err)
		return nil, domain.ErrInvalidInput
	}

	subCategory := in.SubCategory
	if subCategory == "" {
		subCategory = in.Category
	}

	total := 0
	for _, v := range in.Variants {
		total += v.Stock
	}

	product := &domain.Product{
		Name:        in.Name,
		Category:    in.Category,
		SubCategory: subCategory,
		Gender:      optionalString(in.Gender),
		Brand:       in.Brand,
		ImageURL:    in.ImageURL,
		Description: in.Description,
		Price:       in.Price,
		TotalStock:  total,
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", err)
		return nil, err
	}

	product.Variants = make([]*domain.Variant, 0, len(in.Variants))
	for _, v := range in.Variants {
		variant := &domain.Variant{
			ProductID: product.ID,
			Size:      v.Size,
			Color:     v.Color,
			Stock:     v.Stock,
		}
		if err := s.variants.Create(ctx, variant); err != nil {
			s.logger.Error("Failed to create variant", err)
			return nil, err
		}
		product.Variants = append(product.Variants, variant)
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id":  product.ID,
		"name":        product.Name,
		"total_stock": product.TotalStock,
	}).Info("Product created successfully")

	return product, nil
}

// Get retrieves a product with its variant collection resolved, reading
// through the view cache.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if cached, err := s.cache.GetProductView(ctx, id); err == nil {
		s.logger.Debugf("Cache hit for product view %s", id)
		return cached, nil
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrNotFound {
			s.logger.Debugf("Product not found: %s", id)
		} else {
			s.logger.Error("Failed to get product", err)
		}
		return nil, err
	}

	variants, err := s.variants.ListByProduct(ctx, id)
	if err != nil {
		s.logger.Error("Failed to list variants", err)
		return nil, err
	}
	product.Variants = variants

	if err := s.cache.SetProductView(ctx, product); err != nil {
		s.logger.Warnf("Failed to cache product view %s: %v", id, err)
	}

	return product, nil
}

// Similar returns up to similarLimit products sharing the given
// product's category and sub-category, newest first. The product itself
// is never part of its own similar list.
func (s *Service) Similar(ctx context.Context, id uuid.UUID) ([]*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if err != domain.ErrNotFound {
			s.logger.Error("Failed to get product for similar lookup", err)
		}
		return nil, err
	}

	pred := query.AllOf(
		query.Equals{Field: query.FieldCategory, Value: product.Category},
		query.Equals{Field: query.FieldSubCategory, Value: product.SubCategory},
	)

	// One extra row absorbs the product itself when it lands in the page.
	candidates, err := s.products.Search(ctx, pred, domain.SortNewest, similarLimit+1, 0)
	if err != nil {
		s.logger.Error("Failed to search similar products", err)
		return nil, err
	}

	similar := make([]*domain.Product, 0, similarLimit)
	for _, c := range candidates {
		if c.ID == id {
			continue
		}
		if len(similar) == similarLimit {
			break
		}
		similar = append(similar, c)
	}

	if len(similar) > 0 {
		ids := make([]uuid.UUID, len(similar))
		for i, p := range similar {
			ids[i] = p.ID
		}
		byProduct, err := s.variants.ListByProducts(ctx, ids)
		if err != nil {
			s.logger.Error("Failed to resolve variants for similar products", err)
			return nil, err
		}
		for _, p := range similar {
			if variants, ok := byProduct[p.ID]; ok {
				p.Variants = variants
			} else {
				p.Variants = []*domain.Variant{}
			}
		}
	}

	return similar, nil
}

// List retrieves a page of products matching the simple list filter,
// with variants resolved.
func (s *Service) List(ctx context.Context, filter domain.ListFilter, page, pageSize int) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	products, err := s.products.List(ctx, filter, pageSize, offset)
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, 0, err
	}

	if len(products) > 0 {
		ids := make([]uuid.UUID, len(products))
		for i, p := range products {
			ids[i] = p.ID
		}
		byProduct, err := s.variants.ListByProducts(ctx, ids)
		if err != nil {
			s.logger.Error("Failed to list variants", err)
			return nil, 0, err
		}
		for _, p := range products {
			if vs, ok := byProduct[p.ID]; ok {
				p.Variants = vs
			} else {
				p.Variants = []*domain.Variant{}
			}
		}
	}

	total, err := s.products.CountList(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count products", err)
		return nil, 0, err
	}

	return products, total, nil
}

// Update applies the provided fields to an existing product and, when a
// non-empty variant list is supplied, reconciles the variant set against
// it and recomputes totalStock.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*domain.Product, error) {
	if err := s.validate.Struct(in); err != nil {
		s.logger.Error("Product update validation failed", err)
		return nil, domain.ErrInvalidInput
	}

	product, err := s.products.GetByID(ctx, in.ID)
	if err != nil {
		if err == domain.ErrNotFound {
			s.logger.Debugf("Product not found: %s", in.ID)
		} else {
			s.logger.Error("Failed to get product for update", err)
		}
		return nil, err
	}

	applyUpdate(product, in)

	if err := s.products.Update(ctx, product); err != nil {
		s.logger.Error("Failed to update product", err)
		return nil, err
	}

	if len(in.Variants) > 0 {
		total, err := s.reconcileVariants(ctx, product.ID, in.Variants)
		if err != nil {
			s.logger.Error("Failed to reconcile variants", err)
			return nil, err
		}
		if err := s.products.UpdateTotalStock(ctx, product.ID, total); err != nil {
			s.logger.Error("Failed to update total stock", err)
			return nil, err
		}
		product.TotalStock = total
	}

	variants, err := s.variants.ListByProduct(ctx, product.ID)
	if err != nil {
		s.logger.Error("Failed to list variants", err)
		return nil, err
	}
	product.Variants = variants

	if err := s.cache.InvalidateProductView(ctx, product.ID); err != nil {
		s.logger.Warnf("Failed to invalidate product view %s: %v", product.ID, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id":  product.ID,
		"total_stock": product.TotalStock,
	}).Info("Product updated successfully")

	return product, nil
}

// Delete removes a product and everything it owns. Variants go first so
// a failure between the steps cannot leave a product pointing at deleted
// variants; an orphaned variant is the lesser inconsistency.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.GetByID(ctx, id); err != nil {
		if err == domain.ErrNotFound {
			s.logger.Debugf("Product not found: %s", id)
		} else {
			s.logger.Error("Failed to get product for delete", err)
		}
		return err
	}

	if err := s.variants.DeleteByProduct(ctx, id); err != nil {
		s.logger.Error("Failed to delete variants", err)
		return err
	}

	if err := s.reviews.DeleteByProductID(ctx, id); err != nil {
		s.logger.Error("Failed to delete reviews", err)
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete product", err)
		return err
	}

	if err := s.cache.InvalidateProductView(ctx, id); err != nil {
		s.logger.Warnf("Failed to invalidate product view %s: %v", id, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
	}).Info("Product deleted successfully")

	return nil
}

// reconcileVariants diffs the incoming set against the existing one,
// keyed by (size, color): matches update stock in place, new
// combinations are created, vanished combinations are deleted. Variant
// identity survives a stock change, unlike a wholesale replacement.
// Returns the new total stock.
func (s *Service) reconcileVariants(ctx context.Context, productID uuid.UUID, incoming []VariantInput) (int, error) {
	existing, err := s.variants.ListByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}

	type variantKey struct {
		size  string
		color string
	}

	existingByKey := make(map[variantKey]*domain.Variant, len(existing))
	for _, v := range existing {
		existingByKey[variantKey{v.Size, v.Color}] = v
	}

	total := 0
	seen := make(map[variantKey]bool, len(incoming))
	for _, in := range incoming {
		key := variantKey{in.Size, in.Color}
		// Duplicate keys collapse to the first occurrence.
		if seen[key] {
			continue
		}
		seen[key] = true
		total += in.Stock

		if current, ok := existingByKey[key]; ok {
			if current.Stock != in.Stock {
				if err := s.variants.UpdateStock(ctx, current.ID, in.Stock); err != nil {
					return 0, err
				}
			}
			continue
		}

		variant := &domain.Variant{
			ProductID: productID,
			Size:      in.Size,
			Color:     in.Color,
			Stock:     in.Stock,
		}
		if err := s.variants.Create(ctx, variant); err != nil {
			return 0, err
		}
	}

	for _, v := range existing {
		if !seen[variantKey{v.Size, v.Color}] {
			if err := s.variants.Delete(ctx, v.ID); err != nil {
				return 0, err
			}
		}
	}

	return total, nil
}

func applyUpdate(product *domain.Product, in UpdateInput) {
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.SubCategory != nil {
		product.SubCategory = *in.SubCategory
	}
	if in.Gender != nil {
		product.Gender = optionalString(*in.Gender)
	}
	if in.Brand != nil {
		product.Brand = *in.Brand
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
