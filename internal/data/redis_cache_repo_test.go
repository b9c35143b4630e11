package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/quizreport/internal/testutil"
)

func TestRedisCacheRepo_SetGetDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)

	repo := NewRedisCacheRepo(client, "")
	ctx := context.Background()

	t.Run("set and get with prefix", func(t *testing.T) {
		value := []byte(`{"slug":"focus"}`)
		ttl := time.Minute
		require.NoError(t, repo.Set(ctx, "tenant_catalog:tenant-a:0", value, ttl))

		got, err := repo.Get(ctx, "tenant_catalog:tenant-a:0")
		require.NoError(t, err)
		assert.Equal(t, value, got)

		raw := client.Get(ctx, DefaultCacheKeyPrefix+"tenant_catalog:tenant-a:0").Val()
		assert.Equal(t, string(value), raw)

		actualTTL := client.TTL(ctx, DefaultCacheKeyPrefix+"tenant_catalog:tenant-a:0").Val()
		assert.True(t, actualTTL > 0 && actualTTL <= ttl)
	})

	t.Run("zero ttl persists", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "content_gen:tenant-a", []byte("g1"), 0))
		assert.Equal(t, time.Duration(-1), client.TTL(ctx, DefaultCacheKeyPrefix+"content_gen:tenant-a").Val())
	})

	t.Run("get missing key", func(t *testing.T) {
		got, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "doomed", []byte("x"), time.Minute))

		deleted, err := repo.Delete(ctx, "doomed")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "doomed")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("set if not exists", func(t *testing.T) {
		wasSet, err := repo.SetIfNotExists(ctx, "lock", []byte("first"), time.Minute)
		require.NoError(t, err)
		assert.True(t, wasSet)

		wasSet, err = repo.SetIfNotExists(ctx, "lock", []byte("second"), time.Minute)
		require.NoError(t, err)
		assert.False(t, wasSet)

		got, err := repo.Get(ctx, "lock")
		require.NoError(t, err)
		assert.Equal(t, []byte("first"), got)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})
}

func TestRedisCacheRepo_EmptyKey(t *testing.T) {
	// Validation fails before any command is sent, so a nil client is fine.
	repo := NewRedisCacheRepo(nil, "custom:")
	ctx := context.Background()

	require.ErrorIs(t, repo.Set(ctx, "", []byte("v"), time.Minute), errEmptyCacheKey)

	_, err := repo.Get(ctx, "")
	require.ErrorIs(t, err, errEmptyCacheKey)

	_, err = repo.Delete(ctx, "")
	require.ErrorIs(t, err, errEmptyCacheKey)

	_, err = repo.SetIfNotExists(ctx, "", []byte("v"), time.Minute)
	require.ErrorIs(t, err, errEmptyCacheKey)
}
