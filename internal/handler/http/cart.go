package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/service"
	"github.com/damkaswim/storefront/pkg/httputil"
	"github.com/damkaswim/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for the session cart and wishlist.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddLineRequest is the JSON request body for adding a cart line.
type AddLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// UpdateLineRequest is the JSON request body for changing a line quantity.
type UpdateLineRequest struct {
	Quantity int `json:"quantity"`
}

// WishlistResponse pairs the saved product IDs with the resolved products.
type WishlistResponse struct {
	Wishlist *domain.Wishlist `json:"wishlist"`
	Products []domain.Product `json:"products"`
}

// ToggleResponse reports the wishlist after a toggle and whether the product
// was added or removed.
type ToggleResponse struct {
	Wishlist *domain.Wishlist `json:"wishlist"`
	Added    bool             `json:"added"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// AddLine handles POST /api/v1/cart/lines.
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AddLineRequest
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

	cart, err := h.service.AddLine(r.Context(), sessionID(r), &service.AddLineInput{
		ProductID: req.ProductID,
		Color:     req.Color,
		Size:      req.Size,
		Quantity:  req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// UpdateLine handles PUT /api/v1/cart/lines/{index}.
func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "line index must be an integer"},
		})
		return
	}

	var req UpdateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	cart, err := h.service.UpdateLineQuantity(r.Context(), sessionID(r), index, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// RemoveLine handles DELETE /api/v1/cart/lines/{index}.
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "line index must be an integer"},
		})
		return
	}

	cart, err := h.service.RemoveLine(r.Context(), sessionID(r), index)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// ClearCart handles DELETE /api/v1/cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCart(r.Context(), sessionID(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetWishlist handles GET /api/v1/wishlist.
func (h *CartHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	wishlist, products, err := h.service.GetWishlist(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: WishlistResponse{
		Wishlist: wishlist,
		Products: products,
	}})
}

// ToggleWishlist handles POST /api/v1/wishlist/{productId}/toggle.
func (h *CartHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	wishlist, added, err := h.service.ToggleWishlist(r.Context(), sessionID(r), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ToggleResponse{
		Wishlist: wishlist,
		Added:    added,
	}})
}
