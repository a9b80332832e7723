package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/event"
	"github.com/damkaswim/storefront/internal/repository"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo     repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Title       string
	Description string
	Category    string
	Collections []string
	Price       int64
	SalePrice   *int64
	Images      []string
	Sizes       []string
	Colors      []domain.ColorVariant
	Tags        []string
	InStock     bool
	Active      bool
	Featured    bool
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// keep their current value.
type UpdateProductInput struct {
	Title       *string
	Description *string
	Category    *string
	Collections []string
	Price       *int64
	SalePrice   *int64
	ClearSale   bool
	Images      []string
	Sizes       []string
	Colors      []domain.ColorVariant
	Tags        []string
	InStock     *bool
	Active      *bool
	Featured    *bool
}

func validateProduct(p *domain.Product) error {
	if strings.TrimSpace(p.Title) == "" {
		return apperrors.InvalidInput("product title is required")
	}
	if !domain.IsValidCategory(p.Category) {
		return apperrors.InvalidInput(fmt.Sprintf("unknown category %q", p.Category))
	}
	if p.Price <= 0 {
		return apperrors.InvalidInput("price must be positive")
	}
	if p.SalePrice != nil && *p.SalePrice > 0 && *p.SalePrice >= p.Price {
		return apperrors.InvalidInput("sale price must be lower than the list price")
	}
	if p.Active && len(p.Images) == 0 {
		return apperrors.InvalidInput("an active product needs at least one image")
	}
	return nil
}

// CreateProduct creates a new catalog product.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    input.Category,
		Collections: input.Collections,
		Price:       input.Price,
		SalePrice:   input.SalePrice,
		Currency:    domain.DefaultCurrency,
		Images:      input.Images,
		Sizes:       input.Sizes,
		Colors:      input.Colors,
		Tags:        input.Tags,
		InStock:     input.InStock,
		Active:      input.Active,
		Featured:    input.Featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("category", product.Category),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// ListProducts returns products matching the filter plus the total count.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// FeaturedProducts returns the active featured shelf.
func (s *ProductService) FeaturedProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.Featured(ctx, domain.FeaturedLimit)
	if err != nil {
		return nil, fmt.Errorf("featured products: %w", err)
	}
	return products, nil
}

// RelatedProducts returns active products from the same category, excluding
// the product itself. The product must exist.
func (s *ProductService) RelatedProducts(ctx context.Context, productID string) ([]domain.Product, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	related, err := s.repo.RelatedByCategory(ctx, product.Category, product.ID, domain.RelatedLimit)
	if err != nil {
		return nil, fmt.Errorf("related products: %w", err)
	}
	return related, nil
}

// UpdateProduct applies a partial update to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Collections != nil {
		product.Collections = input.Collections
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.ClearSale {
		product.SalePrice = nil
	} else if input.SalePrice != nil {
		product.SalePrice = input.SalePrice
	}
	if input.Images != nil {
		product.Images = input.Images
	}
	if input.Sizes != nil {
		product.Sizes = input.Sizes
	}
	if input.Colors != nil {
		product.Colors = input.Colors
	}
	if input.Tags != nil {
		product.Tags = input.Tags
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}
	if input.Active != nil {
		product.Active = *input.Active
	}
	if input.Featured != nil {
		product.Featured = *input.Featured
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", product.ID))

	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}
