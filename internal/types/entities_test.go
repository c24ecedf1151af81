package types_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/tradervolt-migrate/internal/types"
)

func TestNaturalKeys(t *testing.T) {
	assert.Equal(t, "Forex Majors", (&types.SymbolsGroup{Name: "Forex Majors"}).NaturalKey())
	assert.Equal(t, "EURUSD", (&types.Symbol{Name: "EURUSD"}).NaturalKey())
	assert.Equal(t, "1000012", (&types.Trader{Login: 1000012}).NaturalKey())
	assert.Equal(t, "500001", (&types.Order{TransactionID: 500001}).NaturalKey())
	assert.Equal(t, "600001", (&types.Position{TransactionID: 600001}).NaturalKey())
	assert.Equal(t, "700001", (&types.Deal{TransactionID: 700001}).NaturalKey())
}

func TestSymbolPayloadOmitsUnresolvedGroup(t *testing.T) {
	symbol := &types.Symbol{Name: "EURUSD"}
	_, ok := symbol.Payload()["symbolsGroupId"]
	assert.False(t, ok)

	symbol.SymbolsGroupID = "group-1"
	assert.Equal(t, "group-1", symbol.Payload()["symbolsGroupId"])
}

func TestTraderPayloadNameFallbacks(t *testing.T) {
	trader := &types.Trader{Login: 1000012, Name: "Alice Example"}
	payload := trader.Payload()

	// firstName falls back to the display name, lastName to the login
	assert.Equal(t, "Alice Example", payload["firstName"])
	assert.Equal(t, "1000012", payload["lastName"])
	assert.Equal(t, int64(1000012), payload["login"])
	assert.Equal(t, int64(1000012), payload["mt5_login"])

	// Credentials appear only when set
	_, ok := payload["password"]
	assert.False(t, ok)
}

func TestApplyPrefix(t *testing.T) {
	group := &types.SymbolsGroup{Name: "Forex"}
	group.ApplyPrefix("MIG_TEST_")
	assert.Equal(t, "MIG_TEST_Forex", group.Name)

	trader := &types.Trader{Login: 1000012, Name: "Alice", FirstName: "Alice"}
	trader.ApplyPrefix("MIG_TEST_")
	assert.Equal(t, "MIG_TEST_Alice", trader.Name)
	assert.Equal(t, "MIG_TEST_Alice", trader.FirstName)
	// The login is the natural key and must never change
	assert.Equal(t, int64(1000012), trader.Login)

	order := &types.Order{TransactionID: 500001, Comment: "imported"}
	order.ApplyPrefix("MIG_TEST_")
	assert.Equal(t, "MIG_TEST_imported", order.Comment)
	assert.Equal(t, int64(500001), order.TransactionID)
}

func TestCreationAndDeletionOrders(t *testing.T) {
	// Deletion is the exact reverse of creation, with deals first
	require.Len(t, types.DeletionOrder, len(types.CreationOrder)+1)
	assert.Equal(t, types.EntityTypeDeals, types.DeletionOrder[0])
	for i, entityType := range types.CreationOrder {
		assert.Equal(t, entityType, types.DeletionOrder[len(types.DeletionOrder)-1-i])
	}
}

func TestPlanRecordsAndSummary(t *testing.T) {
	plan := &types.MigrationPlan{
		Symbols: []*types.Symbol{{Name: "EURUSD"}, {Name: "GBPUSD"}},
		Traders: []*types.Trader{{Login: 1}},
	}

	records := plan.Records(types.EntityTypeSymbols)
	require.Len(t, records, 2)
	assert.Equal(t, "EURUSD", records[0].DisplayName())

	assert.Nil(t, plan.Records(types.EntityTypeOrders))
	assert.Equal(t, 3, plan.Total())
	assert.Equal(t, 2, plan.Summary()[types.EntityTypeSymbols])
}

func TestLoadPlan(t *testing.T) {
	plan := &types.MigrationPlan{
		TestMode: true,
		Symbols:  []*types.Symbol{{Name: "EURUSD", Digits: 5}},
		Orders:   []*types.Order{{TransactionID: 500001, Login: 1000012}},
	}
	data, err := json.Marshal(plan)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := types.LoadPlan(path)
	require.NoError(t, err)
	assert.True(t, loaded.TestMode)
	require.Len(t, loaded.Symbols, 1)
	assert.Equal(t, 5, loaded.Symbols[0].Digits)
	require.Len(t, loaded.Orders, 1)
	assert.Equal(t, int64(1000012), loaded.Orders[0].Login)

	_, err = types.LoadPlan(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
