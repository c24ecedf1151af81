package migration

import "github.com/ksred/tradervolt-migrate/internal/types"

// Stats are the monotonically incremented counters for one run
type Stats struct {
	Created  int `json:"created"`
	Verified int `json:"verified"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// CreatedEntity is one entry in the created-entity log, kept for audit and
// for cleanup cross-checks.
type CreatedEntity struct {
	EntityType types.EntityType `json:"entity_type"`
	ServerID   string           `json:"server_id"`
	NaturalKey string           `json:"natural_key"`
	Name       string           `json:"name"`
}

// FailedRecord captures a per-record creation failure for the final summary
type FailedRecord struct {
	EntityType types.EntityType `json:"entity_type"`
	Name       string           `json:"name"`
	Status     int              `json:"status"`
	Message    string           `json:"message"`
}
