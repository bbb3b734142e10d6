package cache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stash/internal/domain"
)

// setupTestRedis creates a miniredis server and a RedisCache on top of it
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestGet_Hit(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	items := []domain.EnrichedItem{
		{ID: "mech-kb-01", Name: "Tactile Mechanical Keyboard", Price: 149, Quantity: 2},
		{ID: "desk-mat-xl", Name: "XL Desk Mat", Price: 24.99, Quantity: 1},
	}
	raw, _ := json.Marshal(items)
	mr.Set("view:cart:user123", string(raw))

	got, err := c.Get(ctx, "user123", domain.KindCart)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestGet_Miss(t *testing.T) {
	c, _ := setupTestRedis(t)

	_, err := c.Get(context.Background(), "user123", domain.KindCart)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSetThenGetRoundTrip(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	items := []domain.EnrichedItem{{ID: "trackball-7", Name: "Wireless Trackball Mouse", Price: 89.5}}
	require.NoError(t, c.Set(ctx, "user123", domain.KindWishlist, items))
	require.True(t, mr.Exists("view:wishlist:user123"))

	got, err := c.Get(ctx, "user123", domain.KindWishlist)
	require.NoError(t, err)
	assert.Equal(t, items, got)

	// Entries expire; TTL must be set (base plus jitter).
	ttl := mr.TTL("view:wishlist:user123")
	assert.Greater(t, ttl.Seconds(), 0.0)
}

func TestDelete(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "user123", domain.KindCart, []domain.EnrichedItem{{ID: "mech-kb-01"}}))
	require.NoError(t, c.Delete(ctx, "user123", domain.KindCart))
	assert.False(t, mr.Exists("view:cart:user123"))

	// Deleting an absent key is fine.
	assert.NoError(t, c.Delete(ctx, "user123", domain.KindCart))
}

func TestKindsUseSeparateKeys(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "user123", domain.KindCart, []domain.EnrichedItem{{ID: "a"}}))
	_, err := c.Get(ctx, "user123", domain.KindWishlist)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
