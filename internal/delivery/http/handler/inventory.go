package handler

import (
	"net/http"

	"github.com/Pesokrava/product_catalog/internal/delivery/http/request"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/usecase/inventory"
)

// InventoryHandler handles HTTP requests for inventory reconciliation
type InventoryHandler struct {
	service *inventory.Service
	logger  *logger.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service *inventory.Service, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		logger:  log,
	}
}

// Reconcile handles POST /api/v1/inventory/reconcile
// @Summary Apply a batch of stock changes
// @Description Apply stock increments and decrements per (product, size, color). Items are processed independently; a rejected item lands in the failed list without aborting the batch.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param changes body []domain.InventoryChange true "Stock changes"
// @Success 200 {object} map[string]interface{} "Per-item reconciliation outcome"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /inventory/reconcile [post]
func (h *InventoryHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var changes []domain.InventoryChange
	if err := request.DecodeJSON(r, &changes); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Reconcile(r.Context(), changes)
	if err != nil {
		h.logger.Error("Internal error in inventory handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.Success(w, result)
}
