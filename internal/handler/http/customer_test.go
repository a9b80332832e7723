package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/service"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

func setupCustomerRouter(customers *mockCustomerRepository) *chi.Mux {
	logger := testLogger()
	handler := NewCustomerHandler(service.NewCustomerService(customers, logger), logger)

	r := chi.NewRouter()
	r.Route("/api/v1/admin/customers", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", handler.ListCustomers)
		r.Get("/{id}", handler.GetCustomer)
		r.Put("/{id}", handler.UpdateCustomer)
		r.Delete("/{id}", handler.DeleteCustomer)
	})
	return r
}

func sampleCustomer() *domain.Customer {
	now := time.Now().UTC()
	return &domain.Customer{
		ID:        "cust-001",
		Email:     "dana@example.com",
		Name:      "Dana Levi",
		Phone:     "050-1234567",
		City:      "Tel Aviv",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestListCustomers_Paginated(t *testing.T) {
	customers := new(mockCustomerRepository)
	router := setupCustomerRouter(customers)

	customers.On("List", mock.Anything, 10, 10).
		Return([]domain.Customer{*sampleCustomer()}, 11, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/customers?page=2&per_page=10", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	customers.AssertExpectations(t)
}

func TestGetCustomer_Success(t *testing.T) {
	customers := new(mockCustomerRepository)
	router := setupCustomerRouter(customers)

	customers.On("GetByID", mock.Anything, "cust-001").Return(sampleCustomer(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/customers/cust-001", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var customer domain.Customer
	raw, _ := json.Marshal(decodeResponse(t, rec).Data)
	require.NoError(t, json.Unmarshal(raw, &customer))
	assert.Equal(t, "dana@example.com", customer.Email)
}

func TestGetCustomer_NotFound(t *testing.T) {
	customers := new(mockCustomerRepository)
	router := setupCustomerRouter(customers)

	customers.On("GetByID", mock.Anything, "ghost").Return(nil, apperrors.NotFound("customer", "ghost"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/customers/ghost", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCustomer_PartialUpdate(t *testing.T) {
	customers := new(mockCustomerRepository)
	router := setupCustomerRouter(customers)

	customers.On("GetByID", mock.Anything, "cust-001").Return(sampleCustomer(), nil)
	customers.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.City == "Haifa" && c.Name == "Dana Levi"
	})).Return(nil)

	b, _ := json.Marshal(map[string]any{"city": "Haifa"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/customers/cust-001", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	customers.AssertExpectations(t)
}

func TestUpdateCustomer_EmptyName_Returns400(t *testing.T) {
	customers := new(mockCustomerRepository)
	router := setupCustomerRouter(customers)

	b, _ := json.Marshal(map[string]any{"name": ""})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/customers/cust-001", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	customers.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteCustomer_Returns204(t *testing.T) {
	customers := new(mockCustomerRepository)
	router := setupCustomerRouter(customers)

	customers.On("Delete", mock.Anything, "cust-001").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/customers/cust-001", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	customers.AssertExpectations(t)
}
