package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/damkaswim/storefront/internal/auth"
	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/repository"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

// AuthService implements credential checks and token issuance for admins and
// customers. Sign-in failures never reveal whether the email exists.
type AuthService struct {
	admins    repository.AdminRepository
	customers repository.CustomerRepository
	tokens    *auth.JWTManager
	logger    *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	admins repository.AdminRepository,
	customers repository.CustomerRepository,
	tokens *auth.JWTManager,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		admins:    admins,
		customers: customers,
		tokens:    tokens,
		logger:    logger,
	}
}

// TokenPair holds an access token and its refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

var errBadCredentials = apperrors.Unauthorized("invalid email or password")

// AdminSignIn verifies admin credentials and issues a token pair.
func (s *AuthService) AdminSignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}

	if !auth.CheckPassword(admin.PasswordHash, password) {
		s.logger.WarnContext(ctx, "admin sign-in rejected", slog.String("email", admin.Email))
		return nil, errBadCredentials
	}

	pair, err := s.issueTokens(admin.ID, admin.Email, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "admin signed in", slog.String("admin_id", admin.ID))
	return pair, nil
}

// RegisterInput holds the parameters for creating a customer account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Address  string
	City     string
}

// Register creates a customer account and issues a token pair.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*domain.Customer, *TokenPair, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if len(input.Password) < 8 {
		return nil, nil, apperrors.InvalidInput("password must be at least 8 characters")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, nil, apperrors.InvalidInput("name is required")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Phone:        input.Phone,
		Address:      input.Address,
		City:         input.City,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, nil, fmt.Errorf("create customer: %w", err)
	}

	pair, err := s.issueTokens(customer.ID, customer.Email, domain.RoleCustomer)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "customer registered", slog.String("customer_id", customer.ID))
	return customer, pair, nil
}

// CustomerSignIn verifies customer credentials and issues a token pair.
func (s *AuthService) CustomerSignIn(ctx context.Context, email, password string) (*domain.Customer, *TokenPair, error) {
	customer, err := s.customers.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, errBadCredentials
		}
		return nil, nil, fmt.Errorf("get customer by email: %w", err)
	}

	if !auth.CheckPassword(customer.PasswordHash, password) {
		s.logger.WarnContext(ctx, "customer sign-in rejected", slog.String("email", customer.Email))
		return nil, nil, errBadCredentials
	}

	pair, err := s.issueTokens(customer.ID, customer.Email, domain.RoleCustomer)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "customer signed in", slog.String("customer_id", customer.ID))
	return customer, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The account
// must still exist.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	customer, err := s.customers.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("account no longer exists")
		}
		return nil, fmt.Errorf("get customer by id: %w", err)
	}

	return s.issueTokens(customer.ID, customer.Email, domain.RoleCustomer)
}

// ValidateAccessToken exposes token validation for the HTTP middleware.
func (s *AuthService) ValidateAccessToken(token string) (*auth.Claims, error) {
	return s.tokens.ValidateAccessToken(token)
}

func (s *AuthService) issueTokens(userID, email, role string) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(userID, email, role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
