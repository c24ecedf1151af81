package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/tradervolt-migrate/internal/migration"
	"github.com/ksred/tradervolt-migrate/internal/types"
)

func TestValidatePlanAcceptsGoodPlan(t *testing.T) {
	report := migration.ValidatePlan(testPlan())
	assert.True(t, report.OK())
	assert.Empty(t, report.Warnings)
}

func TestValidatePlanMissingKeys(t *testing.T) {
	plan := &types.MigrationPlan{
		SymbolsGroups: []*types.SymbolsGroup{{Name: ""}},
		Symbols:       []*types.Symbol{{Name: ""}},
		Traders:       []*types.Trader{{Login: 0}},
		Orders:        []*types.Order{{TransactionID: 0}},
	}

	report := migration.ValidatePlan(plan)
	require.False(t, report.OK())
	assert.Len(t, report.Errors, 4)
}

func TestValidatePlanDuplicateNaturalKeys(t *testing.T) {
	plan := &types.MigrationPlan{
		Symbols: []*types.Symbol{
			{Name: "EURUSD", BaseCurrency: "EUR", QuoteCurrency: "USD"},
			{Name: "EURUSD", BaseCurrency: "EUR", QuoteCurrency: "USD"},
		},
	}

	report := migration.ValidatePlan(plan)
	require.False(t, report.OK())
	assert.Contains(t, report.Errors[0], "duplicate natural key")
}

func TestValidatePlanMissingCurrenciesWarn(t *testing.T) {
	plan := &types.MigrationPlan{
		Symbols: []*types.Symbol{{Name: "EURUSD"}},
	}

	report := migration.ValidatePlan(plan)
	assert.True(t, report.OK())
	assert.Len(t, report.Warnings, 2)
}

func TestValidatePlanDanglingReferencesWarn(t *testing.T) {
	plan := &types.MigrationPlan{
		Traders: []*types.Trader{{Login: 1000012, Group: "nonexistent"}},
		Orders: []*types.Order{{
			TransactionID: 500001,
			Login:         999999,
			Symbol:        "UNKNOWN",
		}},
	}

	report := migration.ValidatePlan(plan)
	// Dangling references are submitted anyway; the server decides
	assert.True(t, report.OK())
	assert.Len(t, report.Warnings, 3)
}

func TestValidatePlanDeclaredCounts(t *testing.T) {
	plan := testPlan()
	plan.DeclaredCounts = map[string]int{
		string(types.EntityTypeSymbols): 1,
		string(types.EntityTypeTraders): 1,
	}
	report := migration.ValidatePlan(plan)
	assert.True(t, report.OK())

	// A truncated plan file no longer matches what the builder declared
	plan.DeclaredCounts[string(types.EntityTypeTraders)] = 3
	report = migration.ValidatePlan(plan)
	require.False(t, report.OK())
	assert.Contains(t, report.Errors[0], "summary declares 3")

	plan = testPlan()
	plan.DeclaredCounts = map[string]int{"bogus-collection": 1}
	report = migration.ValidatePlan(plan)
	assert.True(t, report.OK())
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "unknown collection")
}

func TestValidatePlanNil(t *testing.T) {
	report := migration.ValidatePlan(nil)
	assert.False(t, report.OK())
}
