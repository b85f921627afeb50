package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/query"
)

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter domain.ListFilter, limit, offset int) ([]*domain.Product, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) CountList(ctx context.Context, filter domain.ListFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateTotalStock(ctx context.Context, id uuid.UUID, totalStock int) error {
	args := m.Called(ctx, id, totalStock)
	return args.Error(0)
}

func (m *MockProductRepository) AdjustTotalStock(ctx context.Context, id uuid.UUID, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Search(ctx context.Context, pred query.Predicate, sort string, limit, offset int) ([]*domain.Product, error) {
	args := m.Called(ctx, pred, sort, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, pred query.Predicate) (int, error) {
	args := m.Called(ctx, pred)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) DistinctValues(ctx context.Context, field query.Field, pred query.Predicate) ([]string, error) {
	args := m.Called(ctx, field, pred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) PriceBounds(ctx context.Context, pred query.Predicate) (float64, float64, int, error) {
	args := m.Called(ctx, pred)
	return args.Get(0).(float64), args.Get(1).(float64), args.Int(2), args.Error(3)
}

// MockVariantRepository is a mock implementation of domain.VariantRepository
type MockVariantRepository struct {
	mock.Mock
}

func (m *MockVariantRepository) Create(ctx context.Context, variant *domain.Variant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockVariantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Variant, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Variant), args.Error(1)
}

func (m *MockVariantRepository) ListByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]*domain.Variant, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]*domain.Variant), args.Error(1)
}

func (m *MockVariantRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	args := m.Called(ctx, id, stock)
	return args.Error(0)
}

func (m *MockVariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVariantRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockVariantRepository) AdjustStock(ctx context.Context, productID uuid.UUID, size, color string, delta int) (*domain.Variant, error) {
	args := m.Called(ctx, productID, size, color, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Variant), args.Error(1)
}

func (m *MockVariantRepository) DistinctColors(ctx context.Context, pred query.Predicate) ([]string, error) {
	args := m.Called(ctx, pred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newCatalogService() (*Service, *MockProductRepository, *MockVariantRepository) {
	mockProducts := new(MockProductRepository)
	mockVariants := new(MockVariantRepository)
	log := logger.New("test")
	return NewService(mockProducts, mockVariants, log), mockProducts, mockVariants
}

// expectSidebar wires the facet recomputation calls for a query, each
// with its own dimension excluded from the criteria.
func expectSidebar(
	mockProducts *MockProductRepository,
	mockVariants *MockVariantRepository,
	q domain.FilterQuery,
	brands, categories, subCategories, genders, colors []string,
	min, max float64, count int,
) {
	mockProducts.On("DistinctValues", mock.Anything, query.FieldBrand, buildCriteria(q, dimBrand)).Return(brands, nil)
	mockProducts.On("DistinctValues", mock.Anything, query.FieldCategory, buildCriteria(q, dimCategory)).Return(categories, nil)
	mockProducts.On("DistinctValues", mock.Anything, query.FieldSubCategory, buildCriteria(q, dimSubCategory)).Return(subCategories, nil)
	mockProducts.On("DistinctValues", mock.Anything, query.FieldGender, buildCriteria(q, dimGender)).Return(genders, nil)
	mockVariants.On("DistinctColors", mock.Anything, buildCriteria(q, dimColor)).Return(colors, nil)
	mockProducts.On("PriceBounds", mock.Anything, buildCriteria(q, dimPrice)).Return(min, max, count, nil)
}

func TestFilter_NoFacet_CountsFreeTextSet(t *testing.T) {
	service, mockProducts, mockVariants := newCatalogService()

	q := domain.FilterQuery{SearchTerm: "shirt"}
	productID := uuid.New()
	page := []*domain.Product{{ID: productID, Name: "Shirt"}}

	mockProducts.On("Search", mock.Anything, buildCriteria(q, ""), domain.SortNewest, 10, 0).Return(page, nil)
	mockVariants.On("ListByProducts", mock.Anything, []uuid.UUID{productID}).
		Return(map[uuid.UUID][]*domain.Variant{productID: {{ID: uuid.New(), ProductID: productID, Size: "M", Color: "Red", Stock: 3}}}, nil)

	// No facet selected: the total reflects the free-text match set.
	mockProducts.On("Count", mock.Anything, textPredicate("shirt")).Return(42, nil)

	expectSidebar(mockProducts, mockVariants, q,
		[]string{"Nike", "Puma"}, []string{"clothing", "sport"}, []string{"shirts", "polos"},
		[]string{"men", "women"}, []string{"Red", "Blue"}, 10, 80, 42)

	result, err := service.Filter(context.Background(), q)

	require.NoError(t, err)
	assert.Equal(t, 42, result.TotalProducts)
	assert.Equal(t, 0, result.Skip)
	assert.Equal(t, 10, result.Limit)
	require.Len(t, result.Products, 1)
	assert.Len(t, result.Products[0].Variants, 1)
	assert.Equal(t, []string{"Nike", "Puma"}, result.Sidebar.Brands)
	assert.Equal(t, 10.0, result.Sidebar.LowestPrice)
	assert.Equal(t, 80.0, result.Sidebar.HighestPrice)
	mockProducts.AssertExpectations(t)
	mockVariants.AssertExpectations(t)
}

func TestFilter_WithFacet_CountsFilteredSet(t *testing.T) {
	service, mockProducts, mockVariants := newCatalogService()

	q := domain.FilterQuery{SearchTerm: "shirt", Brands: []string{"Nike"}, Page: 2, PageSize: 5}

	mockProducts.On("Search", mock.Anything, buildCriteria(q, ""), domain.SortNewest, 5, 5).
		Return([]*domain.Product{}, nil)

	// A facet is selected: the total reflects the fully filtered set.
	mockProducts.On("Count", mock.Anything, buildCriteria(q, "")).Return(7, nil)

	expectSidebar(mockProducts, mockVariants, q,
		[]string{"Nike", "Puma"}, []string{}, []string{}, []string{}, []string{}, 0, 0, 0)

	result, err := service.Filter(context.Background(), q)

	require.NoError(t, err)
	assert.Equal(t, 7, result.TotalProducts)
	assert.Equal(t, 5, result.Skip)
	assert.Equal(t, 5, result.Limit)
	mockProducts.AssertExpectations(t)
}

func TestFilter_SingleValuedDimensionOmitted(t *testing.T) {
	service, mockProducts, mockVariants := newCatalogService()

	q := domain.FilterQuery{SearchTerm: "shirt"}

	mockProducts.On("Search", mock.Anything, mock.Anything, domain.SortNewest, 10, 0).
		Return([]*domain.Product{}, nil)
	mockProducts.On("Count", mock.Anything, mock.Anything).Return(1, nil)

	// One brand, one category: neither offers a narrowing choice.
	expectSidebar(mockProducts, mockVariants, q,
		[]string{"Nike"}, []string{"clothing"}, []string{"shirts", "polos"},
		[]string{}, []string{"Red"}, 0, 0, 1)

	result, err := service.Filter(context.Background(), q)

	require.NoError(t, err)
	assert.Empty(t, result.Sidebar.Brands)
	assert.Empty(t, result.Sidebar.Categories)
	assert.Empty(t, result.Sidebar.Genders)
	assert.Empty(t, result.Sidebar.Colors)
	assert.Equal(t, []string{"shirts", "polos"}, result.Sidebar.SubCategories)
}

func TestFilter_PriceSentinelWhenSinglePricePoint(t *testing.T) {
	service, mockProducts, mockVariants := newCatalogService()

	q := domain.FilterQuery{SearchTerm: "shirt"}

	mockProducts.On("Search", mock.Anything, mock.Anything, domain.SortNewest, 10, 0).
		Return([]*domain.Product{}, nil)
	mockProducts.On("Count", mock.Anything, mock.Anything).Return(3, nil)

	// Every match shares one price point: the range carries no information.
	expectSidebar(mockProducts, mockVariants, q,
		[]string{}, []string{}, []string{}, []string{}, []string{}, 25, 25, 3)

	result, err := service.Filter(context.Background(), q)

	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Sidebar.LowestPrice)
	assert.Equal(t, 0.0, result.Sidebar.HighestPrice)
}

func TestFilter_UnparseablePriceRangeIgnored(t *testing.T) {
	service, mockProducts, mockVariants := newCatalogService()

	q := domain.FilterQuery{SearchTerm: "shirt", PriceRange: "abc"}

	// The malformed price range contributes no predicate: the search
	// criteria equal the free-text criteria.
	assert.Equal(t, textPredicate("shirt"), buildCriteria(q, ""))

	mockProducts.On("Search", mock.Anything, textPredicate("shirt"), domain.SortNewest, 10, 0).
		Return([]*domain.Product{}, nil)
	// PriceRange is set, so it still counts as a selected facet.
	mockProducts.On("Count", mock.Anything, buildCriteria(q, "")).Return(0, nil)

	expectSidebar(mockProducts, mockVariants, q,
		[]string{}, []string{}, []string{}, []string{}, []string{}, 0, 0, 0)

	_, err := service.Filter(context.Background(), q)
	require.NoError(t, err)
}
