package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damkaswim/storefront/internal/auth"
	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/service"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
	"github.com/damkaswim/storefront/pkg/middleware"
)

// ============================================================================
// Mocks
// ============================================================================

type mockAdminRepository struct {
	mock.Mock
}

func (m *mockAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) List(ctx context.Context, limit, offset int) ([]domain.Customer, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Customer), args.Int(1), args.Error(2)
}

func (m *mockCustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCustomerRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ============================================================================
// Test helpers
// ============================================================================

func testAuthService(admins *mockAdminRepository, customers *mockCustomerRepository) *service.AuthService {
	tokens := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	return service.NewAuthService(admins, customers, tokens, testLogger())
}

func setupAuthRouter(svc *service.AuthService) *chi.Mux {
	handler := NewAuthHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/auth/register", handler.Register)
		r.Post("/auth/login", handler.Login)
		r.Post("/auth/refresh", handler.Refresh)
		r.Post("/admin/auth/login", handler.AdminLogin)
	})
	return r
}

func hashedPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return hash
}

// ============================================================================
// Registration and sign-in
// ============================================================================

func TestRegister_Success(t *testing.T) {
	customers := new(mockCustomerRepository)
	router := setupAuthRouter(testAuthService(new(mockAdminRepository), customers))

	customers.On("Create", mock.Anything, mock.AnythingOfType("*domain.Customer")).Return(nil)

	b, _ := json.Marshal(RegisterRequest{
		Email:    "dana@example.com",
		Password: "long-enough-pw",
		Name:     "Dana Levi",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var signIn SignInResponse
	raw, _ := json.Marshal(decodeResponse(t, rec).Data)
	require.NoError(t, json.Unmarshal(raw, &signIn))
	assert.NotEmpty(t, signIn.Customer.ID)
	assert.NotEmpty(t, signIn.Tokens.AccessToken)
	customers.AssertExpectations(t)
}

func TestRegister_ShortPassword_ValidationError(t *testing.T) {
	customers := new(mockCustomerRepository)
	router := setupAuthRouter(testAuthService(new(mockAdminRepository), customers))

	b, _ := json.Marshal(RegisterRequest{
		Email:    "dana@example.com",
		Password: "short",
		Name:     "Dana Levi",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	customers := new(mockCustomerRepository)
	router := setupAuthRouter(testAuthService(new(mockAdminRepository), customers))

	customers.On("GetByEmail", mock.Anything, "dana@example.com").Return(&domain.Customer{
		ID:           "cust-001",
		Email:        "dana@example.com",
		PasswordHash: hashedPassword(t, "long-enough-pw"),
	}, nil)

	b, _ := json.Marshal(LoginRequest{Email: "dana@example.com", Password: "long-enough-pw"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var signIn SignInResponse
	raw, _ := json.Marshal(decodeResponse(t, rec).Data)
	require.NoError(t, json.Unmarshal(raw, &signIn))
	assert.Equal(t, "cust-001", signIn.Customer.ID)
	assert.NotEmpty(t, signIn.Tokens.RefreshToken)
}

func TestLogin_WrongPassword_Returns401(t *testing.T) {
	customers := new(mockCustomerRepository)
	router := setupAuthRouter(testAuthService(new(mockAdminRepository), customers))

	customers.On("GetByEmail", mock.Anything, "dana@example.com").Return(&domain.Customer{
		ID:           "cust-001",
		Email:        "dana@example.com",
		PasswordHash: hashedPassword(t, "long-enough-pw"),
	}, nil)

	b, _ := json.Marshal(LoginRequest{Email: "dana@example.com", Password: "wrong-password"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_UnknownEmail_SameErrorAsWrongPassword(t *testing.T) {
	customers := new(mockCustomerRepository)
	router := setupAuthRouter(testAuthService(new(mockAdminRepository), customers))

	customers.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, apperrors.NotFound("customer", "ghost@example.com"))

	b, _ := json.Marshal(LoginRequest{Email: "ghost@example.com", Password: "whatever-pw"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	// Unknown accounts must not be distinguishable from bad passwords.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

// ============================================================================
// Admin sign-in and token refresh
// ============================================================================

func TestAdminLogin_Success(t *testing.T) {
	admins := new(mockAdminRepository)
	svc := testAuthService(admins, new(mockCustomerRepository))
	router := setupAuthRouter(svc)

	admins.On("GetByEmail", mock.Anything, "admin@damka.example").Return(&domain.Admin{
		ID:           "admin-001",
		Email:        "admin@damka.example",
		PasswordHash: hashedPassword(t, "correct-horse"),
	}, nil)

	b, _ := json.Marshal(LoginRequest{Email: "admin@damka.example", Password: "correct-horse"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var pair service.TokenPair
	raw, _ := json.Marshal(decodeResponse(t, rec).Data)
	require.NoError(t, json.Unmarshal(raw, &pair))

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestRefresh_GarbageToken_Returns401(t *testing.T) {
	router := setupAuthRouter(testAuthService(new(mockAdminRepository), new(mockCustomerRepository)))

	b, _ := json.Marshal(RefreshRequest{RefreshToken: "not-a-jwt"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// Admin route protection
// ============================================================================

// TestAdminRoutes_RequireAdminToken wires the Auth and RequireRole middleware
// the way the production router does and checks that customer tokens cannot
// reach admin routes.
func TestAdminRoutes_RequireAdminToken(t *testing.T) {
	svc := testAuthService(new(mockAdminRepository), new(mockCustomerRepository))

	validate := func(token string) (*middleware.Claims, error) {
		claims, err := svc.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
	}

	r := chi.NewRouter()
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(validate))
		r.Use(middleware.RequireRole("admin"))
		r.Get("/orders", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	tokens := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	adminToken, err := tokens.GenerateAccessToken("admin-001", "admin@damka.example", domain.RoleAdmin)
	require.NoError(t, err)
	customerToken, err := tokens.GenerateAccessToken("cust-001", "dana@example.com", domain.RoleCustomer)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"customer token", "Bearer " + customerToken, http.StatusForbidden},
		{"admin token", "Bearer " + adminToken, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
