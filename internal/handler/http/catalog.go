package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/damkaswim/storefront/internal/catalog"
	"github.com/damkaswim/storefront/pkg/httputil"
)

// CatalogHandler exposes the per-session catalog browsing state machine.
type CatalogHandler struct {
	registry *catalog.Registry
	logger   *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(registry *catalog.Registry, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		registry: registry,
		logger:   logger,
	}
}

// FilterPatchRequest is the JSON request body for a partial filter update.
type FilterPatchRequest struct {
	Category   *string `json:"category"`
	Collection *string `json:"collection"`
	MinPrice   *int64  `json:"min_price"`
	MaxPrice   *int64  `json:"max_price"`
	InStock    *bool   `json:"in_stock"`
	Search     *string `json:"search"`
	Sort       *string `json:"sort"`
}

// SearchRequest is the JSON request body for a catalog search.
type SearchRequest struct {
	Query string `json:"query"`
}

// Browse handles GET /api/v1/catalog/products.
// With query parameters it is a deep link: the session's criteria are replaced
// wholesale and the first page is returned. Without parameters it returns the
// session's current view unchanged.
func (h *CatalogHandler) Browse(w http.ResponseWriter, r *http.Request) {
	ctrl := h.registry.Get(sessionID(r))

	var (
		view catalog.View
		err  error
	)
	if len(r.URL.Query()) > 0 {
		view, err = ctrl.Replace(r.Context(), catalog.FromQuery(r.URL.Query()))
	} else {
		view, err = ctrl.Current(r.Context())
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// UpdateFilters handles PUT /api/v1/catalog/filters. Only the fields present
// in the body change; everything else is kept. Any criteria change resets the
// visible window to the first page.
func (h *CatalogHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req FilterPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	ctrl := h.registry.Get(sessionID(r))
	view, err := ctrl.SetFilter(r.Context(), catalog.Patch{
		Category:   req.Category,
		Collection: req.Collection,
		MinPrice:   req.MinPrice,
		MaxPrice:   req.MaxPrice,
		InStock:    req.InStock,
		Search:     req.Search,
		Sort:       req.Sort,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// ResetFilters handles DELETE /api/v1/catalog/filters, restoring the default
// criteria and the first page.
func (h *CatalogHandler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	view, err := h.registry.Get(sessionID(r)).Reset(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Search handles POST /api/v1/catalog/search. A search replaces all other
// filters; an empty query just clears them.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	view, err := h.registry.Get(sessionID(r)).Search(r.Context(), req.Query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// LoadMore handles POST /api/v1/catalog/products/more, growing the visible
// window by one page. At the end of the result set it is a no-op.
func (h *CatalogHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	view, err := h.registry.Get(sessionID(r)).LoadMore(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}
