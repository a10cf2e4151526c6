package flags

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // separate DB for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	require.NoError(t, client.FlushDB(ctx).Err())

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.FlushDB(ctx).Err()
		_ = client.Close()
	})

	return client
}

func TestStore_UpsertAndGet(t *testing.T) {
	client := setupTestRedis(t)
	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	flag, err := store.Upsert(ctx, KeySwapsEnabled, true)
	require.NoError(t, err)
	assert.Equal(t, KeySwapsEnabled, flag.Key)
	assert.True(t, flag.Value)
	assert.NotZero(t, flag.UpdatedAt)

	got, err := store.Get(ctx, KeySwapsEnabled)
	require.NoError(t, err)
	assert.Equal(t, flag.Value, got.Value)

	time.Sleep(time.Millisecond)
	flag2, err := store.Upsert(ctx, KeySwapsEnabled, false)
	require.NoError(t, err)
	assert.True(t, flag2.UpdatedAt.After(flag.UpdatedAt))

	got, err = store.Get(ctx, KeySwapsEnabled)
	require.NoError(t, err)
	assert.False(t, got.Value)
}

func TestStore_GetMissing(t *testing.T) {
	client := setupTestRedis(t)
	store, err := NewStore(client)
	require.NoError(t, err)

	flag, err := store.Get(context.Background(), "no.such.flag")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, flag)
}

func TestStore_Enabled_FallsBack(t *testing.T) {
	client := setupTestRedis(t)
	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	// Absent flag takes the fallback.
	assert.True(t, store.Enabled(ctx, KeySwapsEnabled, true))
	assert.False(t, store.Enabled(ctx, KeySwapsEnabled, false))

	_, err = store.Upsert(ctx, KeySwapsEnabled, false)
	require.NoError(t, err)
	assert.False(t, store.Enabled(ctx, KeySwapsEnabled, true))
}

func TestStore_ListAndDelete(t *testing.T) {
	client := setupTestRedis(t)
	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = store.Upsert(ctx, KeySwapsEnabled, true)
	require.NoError(t, err)
	_, err = store.Upsert(ctx, KeyInitEnabled, false)
	require.NoError(t, err)

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	require.NoError(t, store.Delete(ctx, KeyInitEnabled))

	items, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, KeySwapsEnabled, items[0].Key)
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("swaps.enabled"))
	assert.NoError(t, ValidateKey("a_b-c.1"))
	assert.Error(t, ValidateKey(""))
	assert.Error(t, ValidateKey("bad key"))
	assert.Error(t, ValidateKey("bad/key"))
}
