package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/repository"
	"github.com/damkaswim/storefront/internal/service"
	"github.com/damkaswim/storefront/pkg/httputil"
	"github.com/damkaswim/storefront/pkg/pagination"
	"github.com/damkaswim/storefront/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints, both the public
// storefront reads and the admin editor.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ColorVariantRequest is a color option: a display name plus an optional
// hex swatch code.
type ColorVariantRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Code string `json:"code" validate:"omitempty,hexcolor"`
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Title       string                `json:"title" validate:"required,min=1,max=500"`
	Description string                `json:"description"`
	Category    string                `json:"category" validate:"required,oneof=one-piece bikini beachwear accessories"`
	Collections []string              `json:"collections"`
	Price       int64                 `json:"price" validate:"required,gt=0"`
	SalePrice   *int64                `json:"sale_price" validate:"omitempty,gt=0"`
	Images      []string              `json:"images"`
	Sizes       []string              `json:"sizes"`
	Colors      []ColorVariantRequest `json:"colors" validate:"omitempty,dive"`
	Tags        []string              `json:"tags"`
	InStock     bool                  `json:"in_stock"`
	Active      bool                  `json:"active"`
	Featured    bool                  `json:"featured"`
}

// UpdateProductRequest is the JSON request body for updating a product.
// All fields are optional.
type UpdateProductRequest struct {
	Title       *string               `json:"title" validate:"omitempty,min=1,max=500"`
	Description *string               `json:"description"`
	Category    *string               `json:"category" validate:"omitempty,oneof=one-piece bikini beachwear accessories"`
	Collections []string              `json:"collections"`
	Price       *int64                `json:"price" validate:"omitempty,gt=0"`
	SalePrice   *int64                `json:"sale_price" validate:"omitempty,gte=0"`
	ClearSale   bool                  `json:"clear_sale"`
	Images      []string              `json:"images"`
	Sizes       []string              `json:"sizes"`
	Colors      []ColorVariantRequest `json:"colors" validate:"omitempty,dive"`
	Tags        []string              `json:"tags"`
	InStock     *bool                 `json:"in_stock"`
	Active      *bool                 `json:"active"`
	Featured    *bool                 `json:"featured"`
}

// colorVariants maps request colors onto the domain type. A nil slice stays
// nil so partial updates can tell "unchanged" from "cleared".
func colorVariants(reqs []ColorVariantRequest) []domain.ColorVariant {
	if reqs == nil {
		return nil
	}
	variants := make([]domain.ColorVariant, len(reqs))
	for i, c := range reqs {
		variants[i] = domain.ColorVariant{Name: c.Name, Code: c.Code}
	}
	return variants
}

// --- Public handlers ---

// GetProduct handles GET /api/v1/products/{id}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// FeaturedProducts handles GET /api/v1/products/featured.
func (h *ProductHandler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.FeaturedProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// RelatedProducts handles GET /api/v1/products/{id}/related.
func (h *ProductHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	products, err := h.service.RelatedProducts(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// --- Admin handlers ---

// ListProducts handles GET /api/v1/admin/products.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if v := q.Get("active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.Active = &b
		}
	}

	params := pagination.FromRequest(r)
	filter.Limit = params.PerPage
	filter.Offset = params.Offset

	products, total, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(products, total, params.Page, params.PerPage))
}

// CreateProduct handles POST /api/v1/admin/products.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &service.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Collections: req.Collections,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Images:      req.Images,
		Sizes:       req.Sizes,
		Colors:      colorVariants(req.Colors),
		Tags:        req.Tags,
		InStock:     req.InStock,
		Active:      req.Active,
		Featured:    req.Featured,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/v1/admin/products/{id}.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, &service.UpdateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Collections: req.Collections,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		ClearSale:   req.ClearSale,
		Images:      req.Images,
		Sizes:       req.Sizes,
		Colors:      colorVariants(req.Colors),
		Tags:        req.Tags,
		InStock:     req.InStock,
		Active:      req.Active,
		Featured:    req.Featured,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/v1/admin/products/{id}.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
