package sheetorm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetorm/sheetorm"
)

func cachedFixture(t *testing.T, cfg *sheetorm.Config) (*fakeStore, *sheetorm.CachedStore) {
	t.Helper()
	store := newFakeStore()
	store.seed("Users", []string{"id", "name"}, [][]string{{"1", "Alice"}, {"2", "Bob"}})
	store.seed("Posts", []string{"id", "title"}, [][]string{{"1", "hello"}})
	return store, sheetorm.NewCachedStore(store, cfg)
}

func TestCachedStore_HitWithinTTL(t *testing.T) {
	ctx := context.Background()
	store, cached := cachedFixture(t, &sheetorm.Config{CacheTTL: time.Minute, MaxCacheSize: 8})

	rng := sheetorm.DataRange("Users")
	first, err := cached.ReadRange(ctx, rng)
	require.NoError(t, err)
	second, err := cached.ReadRange(ctx, rng)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.reads[rng], "second read within TTL must not hit the backend")
}

func TestCachedStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store, cached := cachedFixture(t, &sheetorm.Config{CacheTTL: 30 * time.Millisecond, MaxCacheSize: 8})

	rng := sheetorm.DataRange("Users")
	_, err := cached.ReadRange(ctx, rng)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	_, err = cached.ReadRange(ctx, rng)
	require.NoError(t, err)
	assert.Equal(t, 2, store.reads[rng])
}

func TestCachedStore_DisabledWhenZeroTTL(t *testing.T) {
	ctx := context.Background()
	store, cached := cachedFixture(t, &sheetorm.Config{CacheTTL: 0})

	rng := sheetorm.DataRange("Users")
	_, err := cached.ReadRange(ctx, rng)
	require.NoError(t, err)
	_, err = cached.ReadRange(ctx, rng)
	require.NoError(t, err)
	assert.Equal(t, 2, store.reads[rng])
}

func TestCachedStore_WriteInvalidatesTable(t *testing.T) {
	ctx := context.Background()
	store, cached := cachedFixture(t, &sheetorm.Config{CacheTTL: time.Minute, MaxCacheSize: 8})

	users := sheetorm.DataRange("Users")
	usersHeader := sheetorm.HeaderRange("Users")
	posts := sheetorm.DataRange("Posts")

	for _, rng := range []string{users, usersHeader, posts} {
		_, err := cached.ReadRange(ctx, rng)
		require.NoError(t, err)
	}

	// A write to any sub-range of Users drops every cached Users range.
	require.NoError(t, cached.AppendRows(ctx, users, [][]string{{"3", "Carol"}}))

	_, err := cached.ReadRange(ctx, users)
	require.NoError(t, err)
	_, err = cached.ReadRange(ctx, usersHeader)
	require.NoError(t, err)
	_, err = cached.ReadRange(ctx, posts)
	require.NoError(t, err)

	assert.Equal(t, 2, store.reads[users])
	assert.Equal(t, 2, store.reads[usersHeader])
	assert.Equal(t, 1, store.reads[posts], "writes to Users must leave Posts cached")
}

func TestCachedStore_EvictsOldestInserted(t *testing.T) {
	ctx := context.Background()
	store, cached := cachedFixture(t, &sheetorm.Config{CacheTTL: time.Minute, MaxCacheSize: 2})

	users := sheetorm.DataRange("Users")
	usersHeader := sheetorm.HeaderRange("Users")
	posts := sheetorm.DataRange("Posts")

	_, err := cached.ReadRange(ctx, users)
	require.NoError(t, err)
	_, err = cached.ReadRange(ctx, usersHeader)
	require.NoError(t, err)

	// Touch the oldest entry; insertion-order eviction must ignore access.
	_, err = cached.ReadRange(ctx, users)
	require.NoError(t, err)
	assert.Equal(t, 1, store.reads[users])

	// Third distinct range exceeds the bound and evicts the Users data
	// range, the oldest inserted.
	_, err = cached.ReadRange(ctx, posts)
	require.NoError(t, err)
	assert.Equal(t, 2, cached.Size())

	_, err = cached.ReadRange(ctx, users)
	require.NoError(t, err)
	assert.Equal(t, 2, store.reads[users], "evicted range must hit the backend again")

	_, err = cached.ReadRange(ctx, posts)
	require.NoError(t, err)
	assert.Equal(t, 1, store.reads[posts], "younger entry must survive eviction")
}
