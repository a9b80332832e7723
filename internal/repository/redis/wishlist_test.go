package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damkaswim/storefront/internal/domain"
)

func setupWishlistStore(t *testing.T) (*WishlistStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewWishlistStore(client, 30*24*time.Hour, newStoreLogger())
	return store, mr
}

func TestWishlistStore_Load_MissingKeyReturnsEmpty(t *testing.T) {
	store, _ := setupWishlistStore(t)

	got, err := store.Load(context.Background(), "fresh-session")
	require.NoError(t, err)
	assert.Equal(t, "fresh-session", got.SessionID)
	assert.Empty(t, got.ProductIDs)
}

func TestWishlistStore_Load_MalformedPayloadReturnsEmpty(t *testing.T) {
	store, mr := setupWishlistStore(t)

	require.NoError(t, mr.Set("wishlist:sess-001", "not json at all"))

	got, err := store.Load(context.Background(), "sess-001")
	require.NoError(t, err)
	assert.Empty(t, got.ProductIDs)
}

func TestWishlistStore_SaveThenLoad_RoundTrip(t *testing.T) {
	store, _ := setupWishlistStore(t)

	w := domain.NewWishlist("sess-001")
	w.Toggle("prod-001")
	w.Toggle("prod-002")
	require.NoError(t, store.Save(context.Background(), w))

	got, err := store.Load(context.Background(), "sess-001")
	require.NoError(t, err)
	assert.Equal(t, []string{"prod-001", "prod-002"}, got.ProductIDs)
	assert.True(t, got.Contains("prod-001"))
}

func TestWishlistStore_Delete_RemovesKey(t *testing.T) {
	store, mr := setupWishlistStore(t)

	w := domain.NewWishlist("sess-001")
	w.Toggle("prod-001")
	require.NoError(t, store.Save(context.Background(), w))
	require.NoError(t, store.Delete(context.Background(), "sess-001"))

	assert.False(t, mr.Exists("wishlist:sess-001"))
}
