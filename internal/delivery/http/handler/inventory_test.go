package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/usecase/inventory"
)

func newInventoryHandler() (*InventoryHandler, *MockProductRepository, *MockVariantRepository, *MockProductCache, *MockEventPublisher) {
	mockProducts := new(MockProductRepository)
	mockVariants := new(MockVariantRepository)
	mockCache := new(MockProductCache)
	mockPublisher := new(MockEventPublisher)
	log := logger.New("test")
	service := inventory.NewService(mockProducts, mockVariants, mockCache, mockPublisher, log)
	return NewInventoryHandler(service, log), mockProducts, mockVariants, mockCache, mockPublisher
}

func TestInventoryHandler_Reconcile_MixedOutcome(t *testing.T) {
	handler, mockProducts, mockVariants, mockCache, mockPublisher := newInventoryHandler()

	okProduct := uuid.New()
	missingProduct := uuid.New()

	changes := []domain.InventoryChange{
		{ProductID: okProduct, Size: "S", Color: "Red", Quantity: 5, Increase: true},
		{ProductID: missingProduct, Size: "L", Color: "Green", Quantity: 1, Increase: false},
	}
	bodyBytes, _ := json.Marshal(changes)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/reconcile", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	mockVariants.On("AdjustStock", mock.Anything, okProduct, "S", "Red", 5).
		Return(&domain.Variant{ID: uuid.New(), ProductID: okProduct, Size: "S", Color: "Red", Stock: 12}, nil)
	mockVariants.On("AdjustStock", mock.Anything, missingProduct, "L", "Green", -1).
		Return(nil, domain.ErrNotFound)
	mockProducts.On("AdjustTotalStock", mock.Anything, okProduct, 5).Return(nil)
	mockCache.On("InvalidateProductView", mock.Anything, okProduct).Return(nil)
	mockPublisher.On("Publish", mock.Anything, inventory.StockSubject, mock.Anything).Return(nil).Maybe()

	handler.Reconcile(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockVariants.AssertExpectations(t)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]any)
	assert.Equal(t, []any{okProduct.String()}, data["updated"])
	assert.Equal(t, []any{missingProduct.String()}, data["failed"])
}

func TestInventoryHandler_Reconcile_InvalidJSON(t *testing.T) {
	handler, _, mockVariants, _, _ := newInventoryHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/reconcile", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Reconcile(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockVariants.AssertNotCalled(t, "AdjustStock")
}
