package migration

import (
	"github.com/rs/zerolog"

	"github.com/ksred/tradervolt-migrate/internal/types"
)

// Resolver replaces source-domain identifiers with server IDs created
// earlier in the run. A reference that cannot be resolved is left empty
// rather than aborting the record: the remote API's own validation is the
// final authority on whether that is acceptable.
type Resolver struct {
	mappings *MappingTable
	log      zerolog.Logger
}

// NewResolver creates a resolver over the run's mapping table
func NewResolver(mappings *MappingTable, logger zerolog.Logger) *Resolver {
	return &Resolver{
		mappings: mappings,
		log:      logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve fills in the record's foreign keys from the mapping table
func (r *Resolver) Resolve(record types.Record) {
	switch rec := record.(type) {
	case *types.Symbol:
		if rec.SymbolsGroupID == "" && rec.SymbolsGroup != "" {
			rec.SymbolsGroupID = r.lookup(types.EntityTypeSymbolsGroups, rec.SymbolsGroup, record)
		}
	case *types.Trader:
		if rec.TradersGroupID == "" && rec.Group != "" {
			rec.TradersGroupID = r.lookup(types.EntityTypeTradersGroups, rec.Group, record)
		}
	case *types.Order:
		r.resolveTransaction(record, &rec.TraderID, rec.Login, &rec.SymbolID, rec.Symbol)
	case *types.Position:
		r.resolveTransaction(record, &rec.TraderID, rec.Login, &rec.SymbolID, rec.Symbol)
	case *types.Deal:
		r.resolveTransaction(record, &rec.TraderID, rec.Login, &rec.SymbolID, rec.Symbol)
	}
}

// resolveTransaction handles the trader and symbol references shared by
// orders, positions and deals.
func (r *Resolver) resolveTransaction(record types.Record, traderID *string, login int64, symbolID *string, symbol string) {
	if *traderID == "" && login != 0 {
		*traderID = r.lookup(types.EntityTypeTraders, (&types.Trader{Login: login}).NaturalKey(), record)
	}
	if *symbolID == "" && symbol != "" {
		*symbolID = r.lookup(types.EntityTypeSymbols, symbol, record)
	}
}

func (r *Resolver) lookup(entityType types.EntityType, naturalKey string, record types.Record) string {
	id, ok := r.mappings.Get(entityType, naturalKey)
	if !ok {
		r.log.Debug().
			Str("entity", record.DisplayName()).
			Str("reference_type", string(entityType)).
			Str("reference_key", naturalKey).
			Msg("reference unresolved, submitting without it")
		return ""
	}
	return id
}
