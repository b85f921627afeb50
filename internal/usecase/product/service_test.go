package product

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

// MockReviewRepository is a mock implementation of domain.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByProductID(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	args := m.Called(ctx, productID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) DeleteByProductID(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockReviewRepository) CountByProductID(ctx context.Context, productID uuid.UUID) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

// MockProductCache is a mock implementation of ProductCache
type MockProductCache struct {
	mock.Mock
}

func (m *MockProductCache) GetProductView(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductCache) SetProductView(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductCache) InvalidateProductView(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func newProductService() (*Service, *MockProductRepository, *MockVariantRepository, *MockReviewRepository, *MockProductCache) {
	mockProducts := new(MockProductRepository)
	mockVariants := new(MockVariantRepository)
	mockReviews := new(MockReviewRepository)
	mockCache := new(MockProductCache)
	log := logger.New("test")
	service := NewService(mockProducts, mockVariants, mockReviews, mockCache, log)
	return service, mockProducts, mockVariants, mockReviews, mockCache
}

func TestCreate_SumsVariantStockAndDefaultsSubCategory(t *testing.T) {
	service, mockProducts, mockVariants, _, _ := newProductService()

	productID := uuid.New()

	mockProducts.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.TotalStock == 8 && p.SubCategory == "clothing"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Product).ID = productID
	}).Return(nil)

	mockVariants.On("Create", mock.Anything, mock.MatchedBy(func(v *domain.Variant) bool {
		return v.ProductID == productID
	})).Return(nil).Twice()

	product, err := service.Create(context.Background(), CreateInput{
		Name:        "Basic Tee",
		Category:    "clothing",
		Brand:       "Nike",
		ImageURL:    "http://example.com/tee.jpg",
		Description: "A basic tee",
		Price:       19.99,
		Variants: []VariantInput{
			{Size: "S", Color: "Red", Stock: 5},
			{Size: "M", Color: "Red", Stock: 3},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 8, product.TotalStock)
	assert.Equal(t, "clothing", product.SubCategory)
	assert.Len(t, product.Variants, 2)
	mockProducts.AssertExpectations(t)
	mockVariants.AssertExpectations(t)
}

func TestCreate_InvalidInput(t *testing.T) {
	service, mockProducts, _, _, _ := newProductService()

	_, err := service.Create(context.Background(), CreateInput{
		Name: "", // invalid: empty name
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mockProducts.AssertNotCalled(t, "Create")
}

func TestUpdate_NotFound(t *testing.T) {
	service, mockProducts, _, _, _ := newProductService()

	id := uuid.New()
	mockProducts.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	name := "Renamed"
	_, err := service.Update(context.Background(), UpdateInput{ID: id, Name: &name})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_ReconcilesVariantSetByKey(t *testing.T) {
	service, mockProducts, mockVariants, _, mockCache := newProductService()

	productID := uuid.New()
	sRed := &domain.Variant{ID: uuid.New(), ProductID: productID, Size: "S", Color: "Red", Stock: 5}
	mRed := &domain.Variant{ID: uuid.New(), ProductID: productID, Size: "M", Color: "Red", Stock: 3}
	existing := []*domain.Variant{sRed, mRed}

	mockProducts.On("GetByID", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Name: "Tee", TotalStock: 8}, nil)
	mockProducts.On("Update", mock.Anything, mock.Anything).Return(nil)

	// Reconciliation reads the current set once, then the final reload
	// sees the new set.
	lBlue := &domain.Variant{ID: uuid.New(), ProductID: productID, Size: "L", Color: "Blue", Stock: 7}
	mockVariants.On("ListByProduct", mock.Anything, productID).Return(existing, nil).Once()
	mockVariants.On("Create", mock.Anything, mock.MatchedBy(func(v *domain.Variant) bool {
		return v.Size == "L" && v.Color == "Blue" && v.Stock == 7
	})).Return(nil)
	mockVariants.On("Delete", mock.Anything, sRed.ID).Return(nil)
	mockVariants.On("Delete", mock.Anything, mRed.ID).Return(nil)
	mockProducts.On("UpdateTotalStock", mock.Anything, productID, 7).Return(nil)
	mockVariants.On("ListByProduct", mock.Anything, productID).Return([]*domain.Variant{lBlue}, nil).Once()

	mockCache.On("InvalidateProductView", mock.Anything, productID).Return(nil)

	product, err := service.Update(context.Background(), UpdateInput{
		ID:       productID,
		Variants: []VariantInput{{Size: "L", Color: "Blue", Stock: 7}},
	})

	require.NoError(t, err)
	assert.Equal(t, 7, product.TotalStock)
	require.Len(t, product.Variants, 1)
	assert.Equal(t, "L", product.Variants[0].Size)
	mockProducts.AssertExpectations(t)
	mockVariants.AssertExpectations(t)
}

func TestUpdate_MatchingVariantKeepsIdentity(t *testing.T) {
	service, mockProducts, mockVariants, _, mockCache := newProductService()

	productID := uuid.New()
	sRed := &domain.Variant{ID: uuid.New(), ProductID: productID, Size: "S", Color: "Red", Stock: 5}

	mockProducts.On("GetByID", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Name: "Tee", TotalStock: 5}, nil)
	mockProducts.On("Update", mock.Anything, mock.Anything).Return(nil)

	mockVariants.On("ListByProduct", mock.Anything, productID).
		Return([]*domain.Variant{sRed}, nil)
	// Same (size, color): stock updated in place, no delete, no create.
	mockVariants.On("UpdateStock", mock.Anything, sRed.ID, 9).Return(nil)
	mockProducts.On("UpdateTotalStock", mock.Anything, productID, 9).Return(nil)
	mockCache.On("InvalidateProductView", mock.Anything, productID).Return(nil)

	_, err := service.Update(context.Background(), UpdateInput{
		ID:       productID,
		Variants: []VariantInput{{Size: "S", Color: "Red", Stock: 9}},
	})

	require.NoError(t, err)
	mockVariants.AssertNotCalled(t, "Create")
	mockVariants.AssertNotCalled(t, "Delete")
	mockVariants.AssertExpectations(t)
}

func TestUpdate_NilFieldsLeaveProductUnchanged(t *testing.T) {
	service, mockProducts, mockVariants, _, mockCache := newProductService()

	productID := uuid.New()
	mockProducts.On("GetByID", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Name: "Tee", Brand: "Nike", Price: 19.99}, nil)

	name := "Premium Tee"
	mockProducts.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Premium Tee" && p.Brand == "Nike" && p.Price == 19.99
	})).Return(nil)
	mockVariants.On("ListByProduct", mock.Anything, productID).Return([]*domain.Variant{}, nil)
	mockCache.On("InvalidateProductView", mock.Anything, productID).Return(nil)

	_, err := service.Update(context.Background(), UpdateInput{ID: productID, Name: &name})

	require.NoError(t, err)
	// No variant list supplied: the variant set and totalStock are untouched.
	mockVariants.AssertNotCalled(t, "Create")
	mockVariants.AssertNotCalled(t, "Delete")
	mockProducts.AssertNotCalled(t, "UpdateTotalStock")
	mockProducts.AssertExpectations(t)
}

func TestDelete_VariantsGoBeforeProduct(t *testing.T) {
	service, mockProducts, mockVariants, mockReviews, mockCache := newProductService()

	productID := uuid.New()
	variantsDeleted := false

	mockProducts.On("GetByID", mock.Anything, productID).
		Return(&domain.Product{ID: productID}, nil)
	mockVariants.On("DeleteByProduct", mock.Anything, productID).
		Run(func(mock.Arguments) { variantsDeleted = true }).Return(nil)
	mockReviews.On("DeleteByProductID", mock.Anything, productID).Return(nil)
	mockProducts.On("Delete", mock.Anything, productID).
		Run(func(mock.Arguments) {
			assert.True(t, variantsDeleted, "variants must be deleted before the product")
		}).Return(nil)
	mockCache.On("InvalidateProductView", mock.Anything, productID).Return(nil)

	err := service.Delete(context.Background(), productID)

	require.NoError(t, err)
	mockProducts.AssertExpectations(t)
	mockVariants.AssertExpectations(t)
	mockReviews.AssertExpectations(t)
}

func TestDelete_NotFound(t *testing.T) {
	service, mockProducts, mockVariants, _, _ := newProductService()

	id := uuid.New()
	mockProducts.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	err := service.Delete(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockVariants.AssertNotCalled(t, "DeleteByProduct")
	mockProducts.AssertNotCalled(t, "Delete")
}

func TestGet_CacheMissResolvesVariantsAndCaches(t *testing.T) {
	service, mockProducts, mockVariants, _, mockCache := newProductService()

	productID := uuid.New()
	variants := []*domain.Variant{{ID: uuid.New(), ProductID: productID, Size: "S", Color: "Red", Stock: 5}}

	mockCache.On("GetProductView", mock.Anything, productID).Return(nil, domain.ErrNotFound)
	mockProducts.On("GetByID", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Name: "Tee"}, nil)
	mockVariants.On("ListByProduct", mock.Anything, productID).Return(variants, nil)
	mockCache.On("SetProductView", mock.Anything, mock.Anything).Return(nil)

	product, err := service.Get(context.Background(), productID)

	require.NoError(t, err)
	assert.Equal(t, variants, product.Variants)
	mockCache.AssertExpectations(t)
}

func TestGet_CacheHitSkipsRepository(t *testing.T) {
	service, mockProducts, _, _, mockCache := newProductService()

	productID := uuid.New()
	cached := &domain.Product{ID: productID, Name: "Tee"}

	mockCache.On("GetProductView", mock.Anything, productID).Return(cached, nil)

	product, err := service.Get(context.Background(), productID)

	require.NoError(t, err)
	assert.Equal(t, cached, product)
	mockProducts.AssertNotCalled(t, "GetByID")
}

func TestUpdate_DuplicateVariantKeyFirstOccurrenceWins(t *testing.T) {
	service, mockProducts, mockVariants, _, mockCache := newProductService()

	productID := uuid.New()
	sRed := &domain.Variant{ID: uuid.New(), ProductID: productID, Size: "S", Color: "Red", Stock: 5}

	mockProducts.On("GetByID", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Name: "Tee", TotalStock: 5}, nil)
	mockProducts.On("Update", mock.Anything, mock.Anything).Return(nil)

	mockVariants.On("ListByProduct", mock.Anything, productID).
		Return([]*domain.Variant{sRed}, nil).Once()
	mockVariants.On("UpdateStock", mock.Anything, sRed.ID, 9).Return(nil).Once()
	mockProducts.On("UpdateTotalStock", mock.Anything, productID, 9).Return(nil)

	reloaded := &domain.Variant{ID: sRed.ID, ProductID: productID, Size: "S", Color: "Red", Stock: 9}
	mockVariants.On("ListByProduct", mock.Anything, productID).
		Return([]*domain.Variant{reloaded}, nil).Once()

	mockCache.On("InvalidateProductView", mock.Anything, productID).Return(nil)

	product, err := service.Update(context.Background(), UpdateInput{
		ID: productID,
		Variants: []VariantInput{
			{Size: "S", Color: "Red", Stock: 9},
			{Size: "S", Color: "Red", Stock: 2},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 9, product.TotalStock, "Second occurrence of the same key must be ignored")
	mockVariants.AssertNotCalled(t, "Create")
	mockProducts.AssertExpectations(t)
	mockVariants.AssertExpectations(t)
}

func TestSimilar_ExcludesSelfAndCaps(t *testing.T) {
	service, mockProducts, mockVariants, _, _ := newProductService()

	productID := uuid.New()
	mockProducts.On("GetByID", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Category: "clothing", SubCategory: "tees"}, nil)

	// Candidates come back newest first with one extra row, so the
	// product itself can be dropped without shorting the list.
	candidates := []*domain.Product{
		{ID: uuid.New(), Category: "clothing", SubCategory: "tees"},
		{ID: productID, Category: "clothing", SubCategory: "tees"},
		{ID: uuid.New(), Category: "clothing", SubCategory: "tees"},
		{ID: uuid.New(), Category: "clothing", SubCategory: "tees"},
		{ID: uuid.New(), Category: "clothing", SubCategory: "tees"},
	}
	expectedPred := query.And{Preds: []query.Predicate{
		query.Equals{Field: query.FieldCategory, Value: "clothing"},
		query.Equals{Field: query.FieldSubCategory, Value: "tees"},
	}}
	mockProducts.On("Search", mock.Anything, expectedPred, domain.SortNewest, 5, 0).
		Return(candidates, nil)

	mockVariants.On("ListByProducts", mock.Anything, mock.MatchedBy(func(ids []uuid.UUID) bool {
		return len(ids) == 4
	})).Return(map[uuid.UUID][]*domain.Variant{}, nil)

	similar, err := service.Similar(context.Background(), productID)

	require.NoError(t, err)
	require.Len(t, similar, 4)
	for _, p := range similar {
		assert.NotEqual(t, productID, p.ID, "A product is never similar to itself")
		assert.NotNil(t, p.Variants)
	}
	mockProducts.AssertExpectations(t)
	mockVariants.AssertExpectations(t)
}

func TestSimilar_NotFound(t *testing.T) {
	service, mockProducts, _, _, _ := newProductService()

	id := uuid.New()
	mockProducts.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	_, err := service.Similar(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	mockProducts.AssertNotCalled(t, "Search")
}
