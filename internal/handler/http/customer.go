package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/damkaswim/storefront/internal/service"
	"github.com/damkaswim/storefront/pkg/httputil"
	"github.com/damkaswim/storefront/pkg/pagination"
	"github.com/damkaswim/storefront/pkg/validator"
)

// CustomerHandler handles HTTP requests for customer account administration.
type CustomerHandler struct {
	service *service.CustomerService
	logger  *slog.Logger
}

// NewCustomerHandler creates a new customer HTTP handler.
func NewCustomerHandler(svc *service.CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: svc,
		logger:  logger,
	}
}

// UpdateCustomerRequest is the JSON request body for a customer profile
// update. All fields are optional.
type UpdateCustomerRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	City    *string `json:"city" validate:"omitempty,max=100"`
}

// ListCustomers handles GET /api/v1/admin/customers.
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	customers, total, err := h.service.ListCustomers(r.Context(), params.PerPage, params.Offset)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(customers, total, params.Page, params.PerPage))
}

// GetCustomer handles GET /api/v1/admin/customers/{id}.
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	customer, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: customer})
}

// UpdateCustomer handles PUT /api/v1/admin/customers/{id}.
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateCustomerRequest
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

	customer, err := h.service.UpdateCustomer(r.Context(), id, &service.UpdateCustomerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: customer})
}

// DeleteCustomer handles DELETE /api/v1/admin/customers/{id}.
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteCustomer(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
