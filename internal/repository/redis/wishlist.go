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

const wishlistKeyPrefix = "wishlist:"

// WishlistStore implements repository.WishlistStore using Redis, with the
// same load contract as CartStore.
type WishlistStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewWishlistStore creates a new Redis-backed wishlist store.
func NewWishlistStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *WishlistStore {
	return &WishlistStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Load retrieves the wishlist for a session. A missing key or an unreadable
// payload yields a fresh empty wishlist.
func (s *WishlistStore) Load(ctx context.Context, sessionID string) (*domain.Wishlist, error) {
	key := wishlistKeyPrefix + sessionID

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.NewWishlist(sessionID), nil
		}
		return nil, fmt.Errorf("redis get wishlist: %w", err)
	}

	var wishlist domain.Wishlist
	if err := json.Unmarshal(data, &wishlist); err != nil {
		s.logger.Warn("discarding malformed wishlist payload",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return domain.NewWishlist(sessionID), nil
	}
	wishlist.SessionID = sessionID

	return &wishlist, nil
}

// Save persists a wishlist with the configured TTL.
func (s *WishlistStore) Save(ctx context.Context, wishlist *domain.Wishlist) error {
	key := wishlistKeyPrefix + wishlist.SessionID

	data, err := json.Marshal(wishlist)
	if err != nil {
		return fmt.Errorf("marshal wishlist: %w", err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set wishlist: %w", err)
	}

	return nil
}

// Delete removes the wishlist for a session.
func (s *WishlistStore) Delete(ctx context.Context, sessionID string) error {
	key := wishlistKeyPrefix + sessionID

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del wishlist: %w", err)
	}

	return nil
}
