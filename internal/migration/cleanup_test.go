package migration_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/tradervolt-migrate/internal/migration"
	"github.com/ksred/tradervolt-migrate/internal/mockapi"
	"github.com/ksred/tradervolt-migrate/internal/types"
)

func seedTestData(t *testing.T, store *mockapi.Store) {
	t.Helper()
	seed := []struct {
		entityType types.EntityType
		payload    map[string]any
	}{
		{types.EntityTypeSymbolsGroups, map[string]any{"name": "MIG_TEST_Forex"}},
		{types.EntityTypeSymbolsGroups, map[string]any{"name": "Production Forex"}},
		{types.EntityTypeSymbols, map[string]any{"name": "MIG_TEST_EURUSD"}},
		{types.EntityTypeTraders, map[string]any{"firstName": "MIG_TEST_Alice", "login": int64(1000012)}},
		{types.EntityTypeTraders, map[string]any{"firstName": "Bob", "login": int64(1000013)}},
		{types.EntityTypeOrders, map[string]any{"comment": "MIG_TEST_", "transactionId": int64(500001)}},
		{types.EntityTypePositions, map[string]any{"comment": "live position", "transactionId": int64(600001)}},
	}
	for _, item := range seed {
		_, ok := store.Insert(item.entityType, item.payload)
		require.True(t, ok)
	}
}

func TestCleanupDryRun(t *testing.T) {
	client, store := newPlatform(t)
	seedTestData(t, store)

	cleaner := migration.NewCleaner(migration.CleanerConfig{
		Gateway: client.Gateway,
		DryRun:  true,
		Logger:  zerolog.Nop(),
	})

	result, err := cleaner.Run(context.Background(), "MIG_TEST_")
	require.NoError(t, err)

	assert.Equal(t, 4, result.Found)
	assert.Equal(t, 0, result.Deleted)
	assert.Equal(t, 0, result.Failed)
	assert.Len(t, result.Candidates, 4)

	// Nothing actually left the platform
	assert.Len(t, store.List(types.EntityTypeSymbolsGroups), 2)
	assert.Len(t, store.List(types.EntityTypeOrders), 1)
}

func TestCleanupDeletesOnlyMarkedEntities(t *testing.T) {
	client, store := newPlatform(t)
	seedTestData(t, store)

	cleaner := migration.NewCleaner(migration.CleanerConfig{
		Gateway: client.Gateway,
		Logger:  zerolog.Nop(),
	})

	result, err := cleaner.Run(context.Background(), "MIG_TEST_")
	require.NoError(t, err)

	assert.Equal(t, 4, result.Found)
	assert.Equal(t, 4, result.Deleted)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Skipped)

	// Unmarked entities survive
	groups := store.List(types.EntityTypeSymbolsGroups)
	require.Len(t, groups, 1)
	assert.Equal(t, "Production Forex", groups[0]["name"])

	traders := store.List(types.EntityTypeTraders)
	require.Len(t, traders, 1)
	assert.Equal(t, "Bob", traders[0]["firstName"])

	assert.Empty(t, store.List(types.EntityTypeSymbols))
	assert.Empty(t, store.List(types.EntityTypeOrders))
	assert.Len(t, store.List(types.EntityTypePositions), 1)
}

func TestCleanupRejectsEmptyPrefix(t *testing.T) {
	client, store := newPlatform(t)
	seedTestData(t, store)

	cleaner := migration.NewCleaner(migration.CleanerConfig{
		Gateway: client.Gateway,
		Logger:  zerolog.Nop(),
	})

	_, err := cleaner.Run(context.Background(), "")
	require.ErrorIs(t, err, migration.ErrEmptyPrefix)
	// Nothing was touched
	assert.Len(t, store.List(types.EntityTypeSymbolsGroups), 2)
}

func TestCleanupEmptyPlatform(t *testing.T) {
	client, _ := newPlatform(t)

	cleaner := migration.NewCleaner(migration.CleanerConfig{
		Gateway: client.Gateway,
		Logger:  zerolog.Nop(),
	})

	result, err := cleaner.Run(context.Background(), "MIG_TEST_")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Found)
	assert.Equal(t, 0, result.Deleted)
}
