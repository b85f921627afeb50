package handler

import (
	"errors"
	"net/http"

	"github.com/Pesokrava/product_catalog/internal/delivery/http/request"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/usecase/product"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *product.Service
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *product.Service, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

// VariantRequest is one size/color/stock combination in a product payload
type VariantRequest struct {
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock"`
}

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	SubCategory string           `json:"subCategory"`
	Gender      string           `json:"gender"`
	Brand       string           `json:"brand"`
	ImageURL    string           `json:"imageUrl"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	Variants    []VariantRequest `json:"variants"`
}

// UpdateProductRequest represents the request body for updating a product.
// Absent fields stay untouched; a non-empty variants list replaces the
// variant set by (size, color) key.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	SubCategory *string          `json:"subCategory,omitempty"`
	Gender      *string          `json:"gender,omitempty"`
	Brand       *string          `json:"brand,omitempty"`
	ImageURL    *string          `json:"imageUrl,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *float64         `json:"price,omitempty"`
	Variants    []VariantRequest `json:"variants,omitempty"`
}

func variantInputs(variants []VariantRequest) []product.VariantInput {
	if len(variants) == 0 {
		return nil
	}
	inputs := make([]product.VariantInput, len(variants))
	for i, v := range variants {
		inputs[i] = product.VariantInput{
			Size:  v.Size,
			Color: v.Color,
			Stock: v.Stock,
		}
	}
	return inputs
}

// Create handles POST /api/v1/products
// @Summary Create a new product
// @Description Create a new product with its size/color variants. Total stock is derived from the variants.
// @Tags Products
// @Accept json
// @Produce json
// @Param product body CreateProductRequest true "Product details"
// @Success 201 {object} map[string]interface{} "Product created successfully"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Create(r.Context(), product.CreateInput{
		Name:        req.Name,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Gender:      req.Gender,
		Brand:       req.Brand,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Price:       req.Price,
		Variants:    variantInputs(req.Variants),
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, created)
}

// GetByID handles GET /api/v1/products/:id
// @Summary Get a product by ID
// @Description Get a product with its variant collection and average rating
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} map[string]interface{} "Product details"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	found, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, found)
}

// Similar handles GET /api/v1/products/:id/similar
// @Summary Get similar products
// @Description Get products from the same category and sub-category as the given product, newest first
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} map[string]interface{} "Similar products"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/similar [get]
func (h *ProductHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	similar, err := h.service.Similar(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, similar)
}

// List handles GET /api/v1/products
// @Summary List products
// @Description Get a paginated list of products, optionally narrowed by category or brand
// @Tags Products
// @Accept json
// @Produce json
// @Param category query string false "Filter by category"
// @Param brand query string false "Filter by brand"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(10)
// @Success 200 {object} map[string]interface{} "Paginated list of products"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := request.GetPageParams(r)
	filter := domain.ListFilter{
		Category: r.URL.Query().Get("category"),
		Brand:    r.URL.Query().Get("brand"),
	}

	products, total, err := h.service.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Paginated(w, products, total, pageSize, (page-1)*pageSize)
}

// Update handles PUT /api/v1/products/:id
// @Summary Update a product
// @Description Partially update a product. Omitted fields are left unchanged; a variants list reconciles the variant set.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param product body UpdateProductRequest true "Fields to update"
// @Success 200 {object} map[string]interface{} "Product updated successfully"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), product.UpdateInput{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Gender:      req.Gender,
		Brand:       req.Brand,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Price:       req.Price,
		Variants:    variantInputs(req.Variants),
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, updated)
}

// Delete handles DELETE /api/v1/products/:id
// @Summary Delete a product
// @Description Delete a product with its variants and reviews
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 204 "Product deleted successfully"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	response.NoContent(w)
}

// handleError handles service layer errors and returns appropriate HTTP responses
func (h *ProductHandler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, "Invalid input")
	default:
		h.logger.Error("Internal error in product handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
