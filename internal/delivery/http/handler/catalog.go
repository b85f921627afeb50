package handler

import (
	"net/http"

	"github.com/Pesokrava/product_catalog/internal/delivery/http/request"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/usecase/catalog"
)

// CatalogHandler handles HTTP requests for catalog search
type CatalogHandler struct {
	service *catalog.Service
	logger  *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *catalog.Service, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  log,
	}
}

// Filter handles GET /api/v1/products/filter
// @Summary Search and filter products
// @Description Run a fuzzy text search combined with facet filters. Returns a result page plus the remaining narrowing options per facet dimension.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param search query string false "Free text search term; 'all' matches everything"
// @Param category query string false "Category filter"
// @Param subCategory query string false "Comma-separated sub-category filter"
// @Param brand query string false "Comma-separated brand filter"
// @Param color query string false "Variant color filter"
// @Param gender query string false "Gender filter"
// @Param price query string false "Price range as 'min,max'"
// @Param sort query string false "Sort order: new, rating, price_asc, price_desc" default(new)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(10)
// @Success 200 {object} map[string]interface{} "Search results with facet sidebar"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/filter [get]
func (h *CatalogHandler) Filter(w http.ResponseWriter, r *http.Request) {
	page, pageSize := request.GetPageParams(r)
	params := r.URL.Query()

	q := domain.FilterQuery{
		SearchTerm:    params.Get("search"),
		Category:      params.Get("category"),
		SubCategories: request.GetStringsQuery(r, "subCategory"),
		Brands:        request.GetStringsQuery(r, "brand"),
		Color:         params.Get("color"),
		Gender:        params.Get("gender"),
		PriceRange:    params.Get("price"),
		Sort:          params.Get("sort"),
		Page:          page,
		PageSize:      pageSize,
	}

	result, err := h.service.Filter(r.Context(), q)
	if err != nil {
		h.logger.Error("Internal error in catalog handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.Success(w, result)
}
