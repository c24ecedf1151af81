package migration

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ksred/tradervolt-migrate/internal/api"
	"github.com/ksred/tradervolt-migrate/internal/types"
)

// ErrEmptyPrefix rejects a cleanup with no marker prefix, which would
// match every entity on the platform.
var ErrEmptyPrefix = errors.New("empty cleanup prefix")

// CleanupResult summarizes one cleanup pass
type CleanupResult struct {
	Found   int `json:"found"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`

	// Candidates lists what matched, mainly for dry-run inspection
	Candidates []CleanupCandidate `json:"candidates,omitempty"`
}

// CleanupCandidate is one remote entity matched by the marker prefix
type CleanupCandidate struct {
	EntityType types.EntityType `json:"entity_type"`
	ServerID   string           `json:"server_id"`
	Name       string           `json:"name"`
}

// CleanerConfig configures a Cleaner
type CleanerConfig struct {
	Gateway *api.Gateway
	DryRun  bool
	Logger  zerolog.Logger
}

// Cleaner deletes remote entities whose marker field starts with a given
// prefix, in the exact reverse of the creation order so dependents go
// before their parents. Deletion failures are counted but never stop the
// pass.
type Cleaner struct {
	gateway *api.Gateway
	dryRun  bool
	log     zerolog.Logger
}

// NewCleaner creates a Cleaner with the given configuration
func NewCleaner(cfg CleanerConfig) *Cleaner {
	return &Cleaner{
		gateway: cfg.Gateway,
		dryRun:  cfg.DryRun,
		log:     cfg.Logger.With().Str("component", "cleanup").Logger(),
	}
}

// Run scans every collection in deletion order and removes prefix-matched
// entities. In dry-run mode it lists and filters but issues no deletes.
func (c *Cleaner) Run(ctx context.Context, prefix string) (*CleanupResult, error) {
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}

	result := &CleanupResult{}

	for _, entityType := range types.DeletionOrder {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		logger := c.log.With().Str("entity_type", string(entityType)).Logger()

		status, items, err := c.gateway.List(ctx, entityType)
		if err != nil {
			return result, err
		}
		if status != http.StatusOK || len(items) == 0 {
			logger.Debug().Int("status", status).Msg("nothing to clean")
			continue
		}

		for _, item := range items {
			name := markerValue(item)
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			result.Found++

			id := extractServerID(item)
			if id == "" {
				result.Skipped++
				logger.Warn().Str("name", name).Msg("skipping entity without usable id")
				continue
			}

			result.Candidates = append(result.Candidates, CleanupCandidate{
				EntityType: entityType,
				ServerID:   id,
				Name:       name,
			})

			if c.dryRun {
				logger.Info().Str("name", name).Str("id", id).Msg("would delete")
				continue
			}

			deleteStatus, errMsg, err := c.gateway.Delete(ctx, entityType, id)
			if err != nil {
				result.Failed++
				logger.Error().Err(err).Str("name", name).Msg("delete failed")
				continue
			}
			if deleteStatus == http.StatusOK || deleteStatus == http.StatusNoContent {
				result.Deleted++
				logger.Info().Str("name", name).Str("id", id).Msg("deleted")
			} else {
				result.Failed++
				logger.Error().
					Str("name", name).
					Int("status", deleteStatus).
					Str("error", errMsg).
					Msg("delete rejected")
			}
		}
	}

	return result, nil
}

// markerValue returns the field the test-mode prefix was applied to: the
// name for groups, symbols and traders, the comment for transaction
// records that have no name.
func markerValue(item map[string]any) string {
	for _, key := range []string{"name", "firstName", "comment"} {
		if v, ok := item[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
