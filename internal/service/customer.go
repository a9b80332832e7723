package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/repository"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

// CustomerService implements customer account administration.
type CustomerService struct {
	customers repository.CustomerRepository
	logger    *slog.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customers repository.CustomerRepository, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		customers: customers,
		logger:    logger,
	}
}

// GetCustomer retrieves a customer by its ID.
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer by id: %w", err)
	}
	return customer, nil
}

// ListCustomers returns customers plus the total count.
func (s *CustomerService) ListCustomers(ctx context.Context, limit, offset int) ([]domain.Customer, int, error) {
	customers, total, err := s.customers.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	return customers, total, nil
}

// UpdateCustomerInput holds the editable customer profile fields. Nil fields
// keep their current value.
type UpdateCustomerInput struct {
	Name    *string
	Phone   *string
	Address *string
	City    *string
}

// UpdateCustomer applies a partial update to a customer profile.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id string, input *UpdateCustomerInput) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer by id: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		customer.Name = name
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.City != nil {
		customer.City = *input.City
	}

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}

	s.logger.InfoContext(ctx, "customer updated", slog.String("customer_id", id))
	return customer, nil
}

// DeleteCustomer removes a customer account.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	s.logger.InfoContext(ctx, "customer deleted", slog.String("customer_id", id))
	return nil
}
