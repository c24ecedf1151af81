package migration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ksred/tradervolt-migrate/internal/api"
	"github.com/ksred/tradervolt-migrate/internal/types"
)

var ErrNoPlan = errors.New("no migration plan provided")

// ContinuationPolicy decides whether to continue into the next entity type
// after some records of the finished type failed. It replaces an
// interactive prompt so the engine runs unattended and under test.
type ContinuationPolicy func(entityType types.EntityType, failed int) bool

// ContinueAlways proceeds regardless of failures
func ContinueAlways(types.EntityType, int) bool { return true }

// AbortOnFailure stops the run after the first entity type with failures
func AbortOnFailure(types.EntityType, int) bool { return false }

// ExecutorConfig configures an Executor
type ExecutorConfig struct {
	Gateway    *api.Gateway
	Audit      Auditor
	RunID      string
	OnFailure  ContinuationPolicy
	TestMode   bool
	TestPrefix string
	Limit      int // per-type record cap, 0 means no limit

	// IncludeDeals appends deals to the import order. Off by default,
	// matching the platform rollout; cleanup always handles deals.
	IncludeDeals bool

	Logger zerolog.Logger
}

// Auditor receives created entities and mappings for durable audit. The
// executor tolerates a nil auditor.
type Auditor interface {
	RecordCreated(runID string, entity CreatedEntity) error
	RecordMapping(runID string, entityType types.EntityType, naturalKey, serverID string) error
}

// Result is what one migration run produced
type Result struct {
	Stats    Stats
	Created  []CreatedEntity
	Failures []FailedRecord
	Mappings map[types.EntityType]map[string]string
	Aborted  bool
}

// Executor drives the ordered import: for each entity type in dependency
// order it resolves references, creates, verifies, records mappings and
// statistics, and decides whether to continue after failures. Creates are
// strictly sequential because later records depend on IDs produced by
// earlier ones.
type Executor struct {
	gateway  *api.Gateway
	mappings *MappingTable
	resolver *Resolver
	audit    Auditor
	runID    string
	policy   ContinuationPolicy

	testMode     bool
	testPrefix   string
	limit        int
	includeDeals bool

	stats    Stats
	created  []CreatedEntity
	failures []FailedRecord

	log zerolog.Logger
}

// NewExecutor creates an Executor with the given configuration
func NewExecutor(cfg ExecutorConfig) *Executor {
	policy := cfg.OnFailure
	if policy == nil {
		policy = ContinueAlways
	}
	mappings := NewMappingTable()
	logger := cfg.Logger.With().Str("component", "executor").Logger()

	return &Executor{
		gateway:      cfg.Gateway,
		mappings:     mappings,
		resolver:     NewResolver(mappings, cfg.Logger),
		audit:        cfg.Audit,
		runID:        cfg.RunID,
		policy:       policy,
		testMode:     cfg.TestMode,
		testPrefix:   cfg.TestPrefix,
		limit:        cfg.Limit,
		includeDeals: cfg.IncludeDeals,
		log:          logger,
	}
}

// Mappings exposes the run's mapping table
func (e *Executor) Mappings() *MappingTable {
	return e.mappings
}

// Execute runs the migration plan. Per-record failures never abort the
// run; only configuration and authentication problems return an error.
// Cancellation takes effect between records, never mid-record.
func (e *Executor) Execute(ctx context.Context, plan *types.MigrationPlan) (*Result, error) {
	if plan == nil {
		return nil, ErrNoPlan
	}

	order := types.CreationOrder
	if e.includeDeals {
		order = append(append([]types.EntityType{}, order...), types.EntityTypeDeals)
	}

	for _, entityType := range order {
		records := plan.Records(entityType)
		if len(records) == 0 {
			e.log.Info().Str("entity_type", string(entityType)).Msg("no entities to migrate")
			continue
		}
		if e.limit > 0 && len(records) > e.limit {
			e.stats.Skipped += len(records) - e.limit
			records = records[:e.limit]
		}

		failed, err := e.migrateType(ctx, entityType, records)
		if err != nil {
			return e.result(false), err
		}

		if failed > 0 && !e.policy(entityType, failed) {
			e.log.Warn().
				Str("entity_type", string(entityType)).
				Int("failed", failed).
				Msg("aborting run after failures")
			return e.result(true), nil
		}
	}

	return e.result(false), nil
}

// migrateType imports all records of one entity type in plan order and
// returns how many failed.
func (e *Executor) migrateType(ctx context.Context, entityType types.EntityType, records []types.Record) (int, error) {
	logger := e.log.With().Str("entity_type", string(entityType)).Logger()
	logger.Info().Int("count", len(records)).Msg("migrating entity type")

	failed := 0
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return failed, err
		}

		if err := e.migrateRecord(ctx, entityType, record); err != nil {
			if errors.Is(err, api.ErrNoCredentials) || errors.Is(err, api.ErrAuthenticationFailed) {
				return failed, err
			}
			failed++
			continue
		}

		logger.Debug().Int("index", i+1).Int("total", len(records)).Msg("record done")
	}

	logger.Info().
		Int("created", len(records)-failed).
		Int("failed", failed).
		Msg("entity type finished")
	return failed, nil
}

// migrateRecord performs the resolve-create-map-verify sequence for one
// record. A returned error means the record failed; the caller decides
// whether it is run-fatal.
func (e *Executor) migrateRecord(ctx context.Context, entityType types.EntityType, record types.Record) error {
	if e.testMode && e.testPrefix != "" && record.ServerID() == "" {
		record.ApplyPrefix(e.testPrefix)
	}
	e.resolver.Resolve(record)

	status, created, errMsg, err := e.gateway.Create(ctx, entityType, record.Payload())
	if err != nil {
		e.recordFailure(entityType, record, 0, err.Error())
		return err
	}

	if status != http.StatusCreated || created == nil {
		e.recordFailure(entityType, record, status, errMsg)
		return fmt.Errorf("create returned %d: %s", status, errMsg)
	}

	e.stats.Created++

	serverID := extractServerID(created)
	if serverID == "" {
		e.log.Warn().
			Str("entity", record.DisplayName()).
			Msg("created but no server id returned")
		e.created = append(e.created, CreatedEntity{
			EntityType: entityType,
			NaturalKey: record.NaturalKey(),
			Name:       record.DisplayName(),
		})
		return nil
	}

	record.SetServerID(serverID)
	e.mappings.Put(entityType, record.NaturalKey(), serverID)

	entry := CreatedEntity{
		EntityType: entityType,
		ServerID:   serverID,
		NaturalKey: record.NaturalKey(),
		Name:       record.DisplayName(),
	}
	e.created = append(e.created, entry)
	e.recordAudit(entityType, record, entry)

	// Read-back check. A mismatch is a warning, not a failure: the create
	// already happened and counts as created.
	ok, msg, _, verr := e.gateway.Verify(ctx, entityType, serverID, record.VerifyFields())
	switch {
	case verr != nil:
		e.log.Warn().Err(verr).Str("entity", record.DisplayName()).Msg("verification read-back failed")
	case !ok:
		e.log.Warn().Str("entity", record.DisplayName()).Str("reason", msg).Msg("created but verification failed")
	default:
		e.stats.Verified++
		e.log.Info().Str("entity", record.DisplayName()).Str("id", serverID).Msg("created and verified")
	}

	return nil
}

func (e *Executor) recordFailure(entityType types.EntityType, record types.Record, status int, message string) {
	e.stats.Failed++
	e.failures = append(e.failures, FailedRecord{
		EntityType: entityType,
		Name:       record.DisplayName(),
		Status:     status,
		Message:    message,
	})
	e.log.Error().
		Str("entity", record.DisplayName()).
		Int("status", status).
		Str("error", message).
		Msg("failed to create entity")
}

func (e *Executor) recordAudit(entityType types.EntityType, record types.Record, entry CreatedEntity) {
	if e.audit == nil {
		return
	}
	if err := e.audit.RecordCreated(e.runID, entry); err != nil {
		e.log.Warn().Err(err).Msg("failed to write audit entry")
	}
	if err := e.audit.RecordMapping(e.runID, entityType, record.NaturalKey(), record.ServerID()); err != nil {
		e.log.Warn().Err(err).Msg("failed to write mapping audit entry")
	}
}

func (e *Executor) result(aborted bool) *Result {
	return &Result{
		Stats:    e.stats,
		Created:  e.created,
		Failures: e.failures,
		Mappings: e.mappings.Snapshot(),
		Aborted:  aborted,
	}
}

// extractServerID pulls the server-assigned ID out of a create response.
// Transaction-keyed collections sometimes echo only the transaction ID.
func extractServerID(created map[string]any) string {
	for _, key := range []string{"id", "transactionId"} {
		switch v := created[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}
