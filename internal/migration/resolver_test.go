package migration_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/ksred/tradervolt-migrate/internal/migration"
	"github.com/ksred/tradervolt-migrate/internal/types"
)

func newResolver() (*migration.MappingTable, *migration.Resolver) {
	table := migration.NewMappingTable()
	return table, migration.NewResolver(table, zerolog.Nop())
}

func TestResolverSymbolGroup(t *testing.T) {
	table, resolver := newResolver()
	table.Put(types.EntityTypeSymbolsGroups, "Forex Majors", "group-1")

	symbol := &types.Symbol{Name: "EURUSD", SymbolsGroup: "Forex Majors"}
	resolver.Resolve(symbol)
	assert.Equal(t, "group-1", symbol.SymbolsGroupID)
}

func TestResolverTraderGroup(t *testing.T) {
	table, resolver := newResolver()
	table.Put(types.EntityTypeTradersGroups, "demo\\standard", "tg-1")

	trader := &types.Trader{Login: 1000012, Group: "demo\\standard"}
	resolver.Resolve(trader)
	assert.Equal(t, "tg-1", trader.TradersGroupID)
}

func TestResolverTransactionReferences(t *testing.T) {
	table, resolver := newResolver()
	table.Put(types.EntityTypeTraders, "1000012", "trader-1")
	table.Put(types.EntityTypeSymbols, "EURUSD", "symbol-1")

	order := &types.Order{TransactionID: 500001, Login: 1000012, Symbol: "EURUSD"}
	resolver.Resolve(order)
	assert.Equal(t, "trader-1", order.TraderID)
	assert.Equal(t, "symbol-1", order.SymbolID)

	position := &types.Position{TransactionID: 600001, Login: 1000012, Symbol: "EURUSD"}
	resolver.Resolve(position)
	assert.Equal(t, "trader-1", position.TraderID)
	assert.Equal(t, "symbol-1", position.SymbolID)

	deal := &types.Deal{TransactionID: 700001, Login: 1000012, Symbol: "EURUSD"}
	resolver.Resolve(deal)
	assert.Equal(t, "trader-1", deal.TraderID)
	assert.Equal(t, "symbol-1", deal.SymbolID)
}

func TestResolverLeavesUnresolvedReferencesEmpty(t *testing.T) {
	_, resolver := newResolver()

	order := &types.Order{TransactionID: 500001, Login: 999, Symbol: "UNKNOWN"}
	resolver.Resolve(order)
	assert.Empty(t, order.TraderID)
	assert.Empty(t, order.SymbolID)

	// The payload omits what was not resolved
	payload := order.Payload()
	_, hasTrader := payload["traderId"]
	_, hasSymbol := payload["symbolId"]
	assert.False(t, hasTrader)
	assert.False(t, hasSymbol)
}

func TestResolverKeepsExistingIDs(t *testing.T) {
	table, resolver := newResolver()
	table.Put(types.EntityTypeTraders, "1000012", "trader-1")

	order := &types.Order{TransactionID: 500001, Login: 1000012, TraderID: "already-set"}
	resolver.Resolve(order)
	assert.Equal(t, "already-set", order.TraderID)
}
