package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peoplenet/application/ports"
)

func setupStore(t *testing.T) (*CityStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCityStore(client), mr
}

var lisbon = []ports.CityResult{{ID: "7", Name: "Lisbon", Country: "Portugal", CountryCode: "PT", Latitude: 38.72, Longitude: -9.14}}

func TestCityStore_SetGet(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "lisbon", lisbon, time.Hour))
	results, ok, err := store.Get(ctx, "lisbon")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, lisbon, results)
	assert.True(t, mr.Exists(defaultKeyPrefix+"lisbon"))
}

func TestCityStore_Miss(t *testing.T) {
	store, _ := setupStore(t)

	results, ok, err := store.Get(context.Background(), "nowhere")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, results)
}

func TestCityStore_EmptyResultsAreCached(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "zzz", nil, time.Hour))
	results, ok, err := store.Get(ctx, "zzz")

	require.NoError(t, err)
	assert.True(t, ok, "a query with no matches is still a cache hit")
	assert.Empty(t, results)
}

func TestCityStore_Expires(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "lisbon", lisbon, time.Minute))

	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Get(ctx, "lisbon")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCityStore_CorruptEntryIsMiss(t *testing.T) {
	store, mr := setupStore(t)
	require.NoError(t, mr.Set(defaultKeyPrefix+"bad", "{not json"))

	_, ok, err := store.Get(context.Background(), "bad")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCityStore_ClearOnlyTouchesPrefix(t *testing.T) {
	// Arrange
	store, mr := setupStore(t)
	ctx := context.Background()
	for i := 0; i < 150; i++ {
		require.NoError(t, store.Set(ctx, fmt.Sprintf("q%d", i), lisbon, time.Hour))
	}
	require.NoError(t, mr.Set("other:key", "keep"))

	// Act
	err := store.Clear(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"other:key"}, mr.Keys())
}

func TestCityStore_ErrorsWhenUnavailable(t *testing.T) {
	store, mr := setupStore(t)
	mr.Close()

	_, _, err := store.Get(context.Background(), "lisbon")

	assert.Error(t, err)
	assert.Error(t, store.Ping(context.Background()))
}
