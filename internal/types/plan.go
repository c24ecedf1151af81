package types

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// MigrationPlan is the ordered collection of entity records to import.
// Plans are produced by an external plan builder; the executor treats the
// plan as read-only apart from attaching server IDs and resolved foreign
// keys to individual records. Entity sequences are expected to already be
// in dependency order within each type.
type MigrationPlan struct {
	Timestamp  time.Time `json:"timestamp"`
	TestMode   bool      `json:"test_mode"`
	TestPrefix string    `json:"test_prefix,omitempty"`

	// DeclaredCounts is the per-collection record count the plan builder
	// wrote alongside the data, keyed by collection name. Validation checks
	// it against the records actually present, catching truncated files.
	DeclaredCounts map[string]int `json:"summary,omitempty"`

	SymbolsGroups []*SymbolsGroup `json:"symbols_groups,omitempty"`
	Symbols       []*Symbol       `json:"symbols,omitempty"`
	TradersGroups []*TradersGroup `json:"traders_groups,omitempty"`
	Traders       []*Trader       `json:"traders,omitempty"`
	Orders        []*Order        `json:"orders,omitempty"`
	Positions     []*Position     `json:"positions,omitempty"`
	Deals         []*Deal         `json:"deals,omitempty"`
}

// Records returns the plan's records for one entity type, in plan order
func (p *MigrationPlan) Records(t EntityType) []Record {
	switch t {
	case EntityTypeSymbolsGroups:
		return toRecords(p.SymbolsGroups)
	case EntityTypeSymbols:
		return toRecords(p.Symbols)
	case EntityTypeTradersGroups:
		return toRecords(p.TradersGroups)
	case EntityTypeTraders:
		return toRecords(p.Traders)
	case EntityTypeOrders:
		return toRecords(p.Orders)
	case EntityTypePositions:
		return toRecords(p.Positions)
	case EntityTypeDeals:
		return toRecords(p.Deals)
	}
	return nil
}

func toRecords[T Record](records []T) []Record {
	if len(records) == 0 {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

// Summary returns per-type record counts
func (p *MigrationPlan) Summary() map[EntityType]int {
	return map[EntityType]int{
		EntityTypeSymbolsGroups: len(p.SymbolsGroups),
		EntityTypeSymbols:       len(p.Symbols),
		EntityTypeTradersGroups: len(p.TradersGroups),
		EntityTypeTraders:       len(p.Traders),
		EntityTypeOrders:        len(p.Orders),
		EntityTypePositions:     len(p.Positions),
		EntityTypeDeals:         len(p.Deals),
	}
}

// Total returns the total number of records across all entity types
func (p *MigrationPlan) Total() int {
	total := 0
	for _, count := range p.Summary() {
		total += count
	}
	return total
}

// LoadPlan reads a migration plan from a JSON file written by the plan
// builder.
func LoadPlan(path string) (*MigrationPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration plan: %w", err)
	}

	var plan MigrationPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse migration plan: %w", err)
	}
	return &plan, nil
}
