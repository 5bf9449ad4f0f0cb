package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCache(client, zap.NewNop(), "trial-catalog"), mr
}

func TestCache_SetGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	err := cache.Set(ctx, "search:abc", []byte(`{"total":2}`), time.Minute)
	require.NoError(t, err)

	data, err := cache.Get(ctx, "search:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"total":2}`), data)
}

func TestCache_Get_Miss(t *testing.T) {
	cache, _ := setupTestCache(t)

	data, err := cache.Get(context.Background(), "search:missing")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestCache_Delete(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "search:abc", []byte("x"), time.Minute))
	require.NoError(t, cache.Delete(ctx, "search:abc"))

	data, err := cache.Get(ctx, "search:abc")
	require.NoError(t, err)
	assert.Nil(t, data)

	// Deleting a missing key is a no-op
	assert.NoError(t, cache.Delete(ctx, "search:abc"))
}

func TestCache_DeletePrefix(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "search:aa11:page1", []byte("x"), time.Minute))
	require.NoError(t, cache.Set(ctx, "search:aa11:page2", []byte("y"), time.Minute))
	require.NoError(t, cache.Set(ctx, "search:bb22:page1", []byte("z"), time.Minute))

	require.NoError(t, cache.DeletePrefix(ctx, "search:aa11:"))

	data, err := cache.Get(ctx, "search:aa11:page1")
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = cache.Get(ctx, "search:aa11:page2")
	require.NoError(t, err)
	assert.Nil(t, data)

	// Entries under a different prefix survive
	data, err = cache.Get(ctx, "search:bb22:page1")
	require.NoError(t, err)
	assert.Equal(t, []byte("z"), data)

	// Invalidating an empty prefix is a no-op
	assert.NoError(t, cache.DeletePrefix(ctx, "search:cc33:"))
	assert.True(t, mr.Exists("trial-catalog:search:bb22:page1"))
}

func TestCache_Clear_OnlyOwnPrefix(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "search:abc", []byte("x"), time.Minute))
	require.NoError(t, mr.Set("other-app:key", "y"))

	require.NoError(t, cache.Clear(ctx))

	data, err := cache.Get(ctx, "search:abc")
	require.NoError(t, err)
	assert.Nil(t, data)

	// Keys outside the prefix survive
	assert.True(t, mr.Exists("other-app:key"))
}
