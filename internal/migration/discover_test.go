package migration_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/tradervolt-migrate/internal/migration"
	"github.com/ksred/tradervolt-migrate/internal/types"
)

func TestDiscovererSurveysAllCollections(t *testing.T) {
	client, store := newPlatform(t)
	_, ok := store.Insert(types.EntityTypeSymbols, map[string]any{
		"name":          "EURUSD",
		"baseCurrency":  "EUR",
		"quoteCurrency": "USD",
	})
	require.True(t, ok)

	discoverer := migration.NewDiscoverer(client.Gateway, zerolog.Nop())
	reports, err := discoverer.Run(context.Background())
	require.NoError(t, err)

	// Every collection gets surveyed, deals included
	require.Len(t, reports, 7)

	byType := make(map[types.EntityType]migration.EndpointReport)
	for _, report := range reports {
		byType[report.EntityType] = report
	}

	symbols := byType[types.EntityTypeSymbols]
	assert.Equal(t, http.StatusOK, symbols.Status)
	assert.Equal(t, 1, symbols.Count)
	assert.Contains(t, symbols.SampleKeys, "name")
	assert.Contains(t, symbols.SampleKeys, "baseCurrency")

	orders := byType[types.EntityTypeOrders]
	assert.Equal(t, http.StatusNoContent, orders.Status)
	assert.Equal(t, 0, orders.Count)
}
