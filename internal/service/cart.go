package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/damkaswim/storefront/internal/domain"
	"github.com/damkaswim/storefront/internal/event"
	"github.com/damkaswim/storefront/internal/repository"
	apperrors "github.com/damkaswim/storefront/pkg/errors"
)

// CartService implements the business logic for the session cart and
// wishlist. Every mutation is persisted before it returns, so a browser
// refresh or a second tab always sees the latest state.
type CartService struct {
	carts     repository.CartStore
	wishlists repository.WishlistStore
	products  repository.ProductRepository
	producer  *event.Producer
	logger    *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	carts repository.CartStore,
	wishlists repository.WishlistStore,
	products repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		carts:     carts,
		wishlists: wishlists,
		products:  products,
		producer:  producer,
		logger:    logger,
	}
}

// AddLineInput holds the parameters for adding a cart line.
type AddLineInput struct {
	ProductID string
	Color     string
	Size      string
	Quantity  int
}

// GetCart returns the session's cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

// AddLine adds a product variant to the cart. Adding a variant that is
// already in the cart merges the quantities into the existing line. The line
// snapshots the product's title, image, effective price and list price at
// add time.
func (s *CartService) AddLine(ctx context.Context, sessionID string, input *AddLineInput) (*domain.Cart, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	if !product.Active {
		return nil, apperrors.InvalidInput("product is not available")
	}

	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if i := cart.FindLine(input.ProductID, input.Color, input.Size); i >= 0 {
		qty := cart.Lines[i].Quantity + input.Quantity
		if qty > domain.MaxQuantityPerLine {
			qty = domain.MaxQuantityPerLine
		}
		cart.Lines[i].Quantity = qty
	} else {
		if len(cart.Lines) >= domain.MaxLinesPerCart {
			return nil, apperrors.InvalidInput("cart is full")
		}
		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		qty := input.Quantity
		if qty > domain.MaxQuantityPerLine {
			qty = domain.MaxQuantityPerLine
		}
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID:     product.ID,
			Title:         product.Title,
			Image:         image,
			Color:         input.Color,
			Size:          input.Size,
			UnitPrice:     product.EffectivePrice(),
			OriginalPrice: product.Price,
			Quantity:      qty,
		})
	}

	return s.saveCart(ctx, cart)
}

// UpdateLineQuantity sets the quantity of the line at the given index. A
// quantity of zero or less removes the line. An out-of-range index leaves the
// cart unchanged.
func (s *CartService) UpdateLineQuantity(ctx context.Context, sessionID string, index, quantity int) (*domain.Cart, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if index < 0 || index >= len(cart.Lines) {
		return cart, nil
	}

	if quantity <= 0 {
		cart.Lines = append(cart.Lines[:index], cart.Lines[index+1:]...)
	} else {
		if quantity > domain.MaxQuantityPerLine {
			quantity = domain.MaxQuantityPerLine
		}
		cart.Lines[index].Quantity = quantity
	}

	return s.saveCart(ctx, cart)
}

// RemoveLine deletes the line at the given index. An out-of-range index
// leaves the cart unchanged.
func (s *CartService) RemoveLine(ctx context.Context, sessionID string, index int) (*domain.Cart, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if index < 0 || index >= len(cart.Lines) {
		return cart, nil
	}

	cart.Lines = append(cart.Lines[:index], cart.Lines[index+1:]...)
	return s.saveCart(ctx, cart)
}

// ClearCart empties the session's cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.logger.InfoContext(ctx, "cart cleared", slog.String("session_id", sessionID))
	return nil
}

func (s *CartService) saveCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", cart.SessionID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	return cart, nil
}

// ToggleWishlist adds the product to the wishlist when absent and removes it
// when present. It returns the wishlist and whether the product was added.
func (s *CartService) ToggleWishlist(ctx context.Context, sessionID, productID string) (*domain.Wishlist, bool, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, false, fmt.Errorf("get product by id: %w", err)
	}

	wishlist, err := s.wishlists.Load(ctx, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("load wishlist: %w", err)
	}

	added := wishlist.Toggle(productID)
	wishlist.UpdatedAt = time.Now().UTC()

	if err := s.wishlists.Save(ctx, wishlist); err != nil {
		return nil, false, fmt.Errorf("save wishlist: %w", err)
	}

	return wishlist, added, nil
}

// GetWishlist returns the session's saved products. Ids that no longer
// resolve to a product are skipped.
func (s *CartService) GetWishlist(ctx context.Context, sessionID string) (*domain.Wishlist, []domain.Product, error) {
	wishlist, err := s.wishlists.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("load wishlist: %w", err)
	}

	products, err := s.products.GetByIDs(ctx, wishlist.ProductIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("get wishlist products: %w", err)
	}

	return wishlist, products, nil
}
