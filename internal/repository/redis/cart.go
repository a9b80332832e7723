package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/damkaswim/storefront/internal/domain"
)

const cartKeyPrefix = "cart:"

// CartStore implements repository.CartStore using Redis.
//
// Load never fails on a missing or corrupt payload: the session simply starts
// over with an empty cart. Redis connectivity errors still surface.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCartStore creates a new Redis-backed cart store.
func NewCartStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CartStore {
	return &CartStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Load retrieves the cart for a session. A missing key or an unreadable
// payload yields a fresh empty cart.
func (s *CartStore) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	key := cartKeyPrefix + sessionID

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.NewCart(sessionID), nil
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		s.logger.Warn("discarding malformed cart payload",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return domain.NewCart(sessionID), nil
	}
	cart.SessionID = sessionID

	return &cart, nil
}

// Save persists a cart with the configured TTL.
func (s *CartStore) Save(ctx context.Context, cart *domain.Cart) error {
	key := cartKeyPrefix + cart.SessionID

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Delete removes the cart for a session.
func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	key := cartKeyPrefix + sessionID

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}

	return nil
}
