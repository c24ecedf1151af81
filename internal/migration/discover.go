package migration

import (
	"context"
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ksred/tradervolt-migrate/internal/api"
	"github.com/ksred/tradervolt-migrate/internal/types"
)

// EndpointReport is the survey result for one collection
type EndpointReport struct {
	EntityType types.EntityType `json:"entity_type"`
	Status     int              `json:"status"`
	Count      int              `json:"count"`
	SampleKeys []string         `json:"sample_keys,omitempty"`
}

// Discoverer surveys every collection endpoint: connectivity, entity
// counts, and the field names present on existing records. Useful before a
// migration to spot conflicting data already on the platform.
type Discoverer struct {
	gateway *api.Gateway
	log     zerolog.Logger
}

// NewDiscoverer creates a Discoverer over the gateway
func NewDiscoverer(gateway *api.Gateway, logger zerolog.Logger) *Discoverer {
	return &Discoverer{
		gateway: gateway,
		log:     logger.With().Str("component", "discover").Logger(),
	}
}

// Run fetches each collection in creation order, deals included
func (d *Discoverer) Run(ctx context.Context) ([]EndpointReport, error) {
	order := append(append([]types.EntityType{}, types.CreationOrder...), types.EntityTypeDeals)

	reports := make([]EndpointReport, 0, len(order))
	for _, entityType := range order {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		status, items, err := d.gateway.List(ctx, entityType)
		if err != nil {
			return reports, err
		}

		report := EndpointReport{
			EntityType: entityType,
			Status:     status,
			Count:      len(items),
		}
		if len(items) > 0 {
			report.SampleKeys = sortedKeys(items[0])
		}

		switch status {
		case http.StatusOK:
			d.log.Info().Str("entity_type", string(entityType)).Int("count", len(items)).Msg("endpoint discovered")
		case http.StatusNoContent:
			d.log.Info().Str("entity_type", string(entityType)).Msg("endpoint empty")
		default:
			d.log.Warn().Str("entity_type", string(entityType)).Int("status", status).Msg("unexpected status")
		}

		reports = append(reports, report)
	}

	return reports, nil
}

func sortedKeys(item map[string]any) []string {
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
