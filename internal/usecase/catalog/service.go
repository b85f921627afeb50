package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/query"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Service runs filtered and fuzzy catalog searches and recomputes the
// facet sidebar for each request.
type Service struct {
	products domain.ProductRepository
	variants domain.VariantRepository
	logger   *logger.Logger
}

// NewService creates a new catalog search service
func NewService(products domain.ProductRepository, variants domain.VariantRepository, log *logger.Logger) *Service {
	return &Service{
		products: products,
		variants: variants,
		logger:   log,
	}
}

// Filter answers a search request: a paginated product page under the
// full criteria plus a sidebar of remaining narrowing options per facet
// dimension.
func (s *Service) Filter(ctx context.Context, q domain.FilterQuery) (*domain.FilterResult, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	skip := (page - 1) * pageSize

	full := buildCriteria(q, "")

	products, err := s.products.Search(ctx, full, normalizeSort(q.Sort), pageSize, skip)
	if err != nil {
		s.logger.Error("Failed to search products", err)
		return nil, err
	}

	if err := s.attachVariants(ctx, products); err != nil {
		s.logger.Error("Failed to resolve variants for search results", err)
		return nil, err
	}

	// Without any facet the total reflects the free-text match set, so the
	// UI can show how many results exist before narrowing. With facets it
	// reflects the narrowed set.
	countPred := full
	if !q.HasFacet() {
		countPred = textPredicate(q.SearchTerm)
	}
	total, err := s.products.Count(ctx, countPred)
	if err != nil {
		s.logger.Error("Failed to count search results", err)
		return nil, err
	}

	sidebar, err := s.buildSidebar(ctx, q)
	if err != nil {
		s.logger.Error("Failed to build facet sidebar", err)
		return nil, err
	}

	return &domain.FilterResult{
		Products:      products,
		TotalProducts: total,
		Skip:          skip,
		Limit:         pageSize,
		Sidebar:       sidebar,
	}, nil
}

func (s *Service) attachVariants(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	byProduct, err := s.variants.ListByProducts(ctx, ids)
	if err != nil {
		return err
	}

	for _, p := range products {
		if variants, ok := byProduct[p.ID]; ok {
			p.Variants = variants
		} else {
			p.Variants = []*domain.Variant{}
		}
	}

	return nil
}

// buildSidebar recomputes every facet dimension under the current
// context with that dimension's own selection excluded. Dimensions whose
// value set has a single member carry no narrowing information and are
// left empty.
func (s *Service) buildSidebar(ctx context.Context, q domain.FilterQuery) (domain.Sidebar, error) {
	sidebar := domain.Sidebar{
		Brands:        []string{},
		Categories:    []string{},
		SubCategories: []string{},
		Genders:       []string{},
		Colors:        []string{},
	}

	productDims := []struct {
		dim    string
		field  query.Field
		target *[]string
	}{
		{dimBrand, query.FieldBrand, &sidebar.Brands},
		{dimCategory, query.FieldCategory, &sidebar.Categories},
		{dimSubCategory, query.FieldSubCategory, &sidebar.SubCategories},
		{dimGender, query.FieldGender, &sidebar.Genders},
	}

	for _, d := range productDims {
		values, err := s.products.DistinctValues(ctx, d.field, buildCriteria(q, d.dim))
		if err != nil {
			return sidebar, err
		}
		if len(values) > 1 {
			*d.target = values
		}
	}

	colors, err := s.variants.DistinctColors(ctx, buildCriteria(q, dimColor))
	if err != nil {
		return sidebar, err
	}
	if len(colors) > 1 {
		sidebar.Colors = colors
	}

	min, max, count, err := s.products.PriceBounds(ctx, buildCriteria(q, dimPrice))
	if err != nil {
		return sidebar, err
	}
	// 0/0 is the "no range" sentinel: nothing matched, or every match
	// shares one price point.
	if count > 0 && min != max {
		sidebar.LowestPrice = min
		sidebar.HighestPrice = max
	}

	return sidebar, nil
}
