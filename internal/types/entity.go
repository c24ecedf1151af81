package types

import "errors"

// EntityType identifies one of the TraderVolt entity collections.
// The string value doubles as the API collection name.
type EntityType string

const (
	EntityTypeSymbolsGroups EntityType = "symbols-groups"
	EntityTypeSymbols       EntityType = "symbols"
	EntityTypeTradersGroups EntityType = "traders-groups"
	EntityTypeTraders       EntityType = "traders"
	EntityTypeOrders        EntityType = "orders"
	EntityTypePositions     EntityType = "positions"
	EntityTypeDeals         EntityType = "deals"
)

var ErrUnknownEntityType = errors.New("unknown entity type")

// CreationOrder is the fixed dependency order for imports. Later types
// reference server IDs assigned to earlier ones, so it must not change.
// Deals are appended by callers that opt in via IncludeDeals.
var CreationOrder = []EntityType{
	EntityTypeSymbolsGroups,
	EntityTypeSymbols,
	EntityTypeTradersGroups,
	EntityTypeTraders,
	EntityTypeOrders,
	EntityTypePositions,
}

// DeletionOrder is the exact reverse of the creation order, deals first,
// so dependent entities are removed before their parents.
var DeletionOrder = []EntityType{
	EntityTypeDeals,
	EntityTypePositions,
	EntityTypeOrders,
	EntityTypeTraders,
	EntityTypeTradersGroups,
	EntityTypeSymbols,
	EntityTypeSymbolsGroups,
}

// DisplayName returns a human-readable name for the entity type
func (t EntityType) DisplayName() string {
	switch t {
	case EntityTypeSymbolsGroups:
		return "Symbol Groups"
	case EntityTypeSymbols:
		return "Symbols"
	case EntityTypeTradersGroups:
		return "Trader Groups"
	case EntityTypeTraders:
		return "Traders"
	case EntityTypeOrders:
		return "Orders"
	case EntityTypePositions:
		return "Positions"
	case EntityTypeDeals:
		return "Deals"
	}
	return string(t)
}

// Valid reports whether t is one of the known collections
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeSymbolsGroups, EntityTypeSymbols, EntityTypeTradersGroups,
		EntityTypeTraders, EntityTypeOrders, EntityTypePositions, EntityTypeDeals:
		return true
	}
	return false
}

// Record is implemented by every entity variant in a migration plan.
// A record carries a natural key (name, login or transaction ID) used for
// idempotent lookup before a server ID exists, and is annotated in place
// with the server-assigned ID after a successful create.
type Record interface {
	// Type returns the collection this record belongs to
	Type() EntityType

	// NaturalKey returns the source-domain identifier used for mapping
	NaturalKey() string

	// DisplayName returns a human-readable identity for logging. It must
	// never expose the full payload.
	DisplayName() string

	// Payload projects the record into its wire representation. Optional
	// fields are emitted only when set.
	Payload() map[string]any

	// VerifyFields returns the key fields checked on the post-create
	// read-back.
	VerifyFields() map[string]any

	// ServerID returns the server-assigned ID, empty until created
	ServerID() string

	// SetServerID attaches the server-assigned ID after creation
	SetServerID(id string)

	// ApplyPrefix prepends the test-mode marker to the record's prefixable
	// identity fields so test data can be found and removed later.
	ApplyPrefix(prefix string)
}
