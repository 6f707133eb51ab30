package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipes/internal/cache"
)

func TestTokenStore_RevokeFailsWhenRedisUnreachable(t *testing.T) {
	c := cache.New("127.0.0.1:1", "", 0)
	defer c.Close()
	store := NewTokenStore(c)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := store.RevokeToken(ctx, "jti-1", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoke token jti-1")

	revoked, err := store.IsRevoked(ctx, "jti-1")
	assert.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenStore_ExpiredTokenNeedsNoEntry(t *testing.T) {
	store := NewTokenStore(nil)
	assert.NoError(t, store.RevokeToken(context.Background(), "jti-2", 0))
}
