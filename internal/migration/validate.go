package migration

import (
	"fmt"

	"github.com/ksred/tradervolt-migrate/internal/types"
)

// ValidationReport collects plan problems. Errors should block an apply;
// warnings are informational.
type ValidationReport struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// OK reports whether the plan passed validation
func (r *ValidationReport) OK() bool {
	return len(r.Errors) == 0
}

func (r *ValidationReport) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ValidatePlan checks a migration plan without touching the network:
// required natural keys, duplicate keys within a type, and local references
// that nothing in the plan satisfies. Dangling references are warnings, not
// errors: the records are still submitted and the server has the final say.
func ValidatePlan(plan *types.MigrationPlan) *ValidationReport {
	report := &ValidationReport{}
	if plan == nil {
		report.errorf("no plan loaded")
		return report
	}

	for i, group := range plan.SymbolsGroups {
		if group.Name == "" {
			report.errorf("symbols_groups[%d]: missing name", i)
		}
	}
	for i, symbol := range plan.Symbols {
		if symbol.Name == "" {
			report.errorf("symbols[%d]: missing name", i)
		}
		if symbol.BaseCurrency == "" {
			report.warnf("symbols[%d] (%s): missing baseCurrency", i, symbol.Name)
		}
		if symbol.QuoteCurrency == "" {
			report.warnf("symbols[%d] (%s): missing quoteCurrency", i, symbol.Name)
		}
	}
	for i, group := range plan.TradersGroups {
		if group.Name == "" {
			report.errorf("traders_groups[%d]: missing name", i)
		}
	}
	for i, trader := range plan.Traders {
		if trader.Login <= 0 {
			report.errorf("traders[%d]: missing login", i)
		}
	}
	for i, order := range plan.Orders {
		if order.TransactionID <= 0 {
			report.errorf("orders[%d]: missing transactionId", i)
		}
	}
	for i, position := range plan.Positions {
		if position.TransactionID <= 0 {
			report.errorf("positions[%d]: missing transactionId", i)
		}
	}
	for i, deal := range plan.Deals {
		if deal.TransactionID <= 0 {
			report.errorf("deals[%d]: missing transactionId", i)
		}
	}

	checkCounts(plan, report)
	checkDuplicates(plan, report)
	checkReferences(plan, report)

	return report
}

// checkCounts compares the plan builder's declared per-collection counts
// against the records actually present. A mismatch usually means a
// truncated or hand-edited plan file.
func checkCounts(plan *types.MigrationPlan, report *ValidationReport) {
	if len(plan.DeclaredCounts) == 0 {
		return
	}
	actual := plan.Summary()
	for key, declared := range plan.DeclaredCounts {
		entityType := types.EntityType(key)
		if !entityType.Valid() {
			report.warnf("summary: unknown collection %q", key)
			continue
		}
		if actual[entityType] != declared {
			report.errorf("%s: summary declares %d record(s), plan carries %d", key, declared, actual[entityType])
		}
	}
}

// checkDuplicates flags natural keys appearing more than once within an
// entity type; the second create would collide on the remote side.
func checkDuplicates(plan *types.MigrationPlan, report *ValidationReport) {
	for _, entityType := range append(append([]types.EntityType{}, types.CreationOrder...), types.EntityTypeDeals) {
		seen := make(map[string]bool)
		for _, record := range plan.Records(entityType) {
			key := record.NaturalKey()
			if key == "" {
				continue
			}
			if seen[key] {
				report.errorf("%s: duplicate natural key %q", entityType, key)
			}
			seen[key] = true
		}
	}
}

// checkReferences warns about foreign keys that no plan record satisfies
func checkReferences(plan *types.MigrationPlan, report *ValidationReport) {
	logins := make(map[int64]bool, len(plan.Traders))
	for _, trader := range plan.Traders {
		logins[trader.Login] = true
	}
	symbols := make(map[string]bool, len(plan.Symbols))
	for _, symbol := range plan.Symbols {
		symbols[symbol.Name] = true
	}
	groups := make(map[string]bool, len(plan.TradersGroups))
	for _, group := range plan.TradersGroups {
		groups[group.Name] = true
	}

	for i, trader := range plan.Traders {
		if trader.Group != "" && !groups[trader.Group] {
			report.warnf("traders[%d] (login %d): group %q not in plan", i, trader.Login, trader.Group)
		}
	}
	for i, order := range plan.Orders {
		if order.Login != 0 && !logins[order.Login] {
			report.warnf("orders[%d] (txId %d): login %d not in plan", i, order.TransactionID, order.Login)
		}
		if order.Symbol != "" && !symbols[order.Symbol] {
			report.warnf("orders[%d] (txId %d): symbol %q not in plan", i, order.TransactionID, order.Symbol)
		}
	}
	for i, position := range plan.Positions {
		if position.Login != 0 && !logins[position.Login] {
			report.warnf("positions[%d] (txId %d): login %d not in plan", i, position.TransactionID, position.Login)
		}
		if position.Symbol != "" && !symbols[position.Symbol] {
			report.warnf("positions[%d] (txId %d): symbol %q not in plan", i, position.TransactionID, position.Symbol)
		}
	}
}
