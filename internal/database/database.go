// Package database persists the audit trail of migration runs: which
// entities were created remotely, under which server IDs, and how each run
// ended. The executor works without it; the CLI wires it in so test data
// can be traced and cleaned up long after the process exits.
package database

import (
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ksred/tradervolt-migrate/internal/migration"
	"github.com/ksred/tradervolt-migrate/internal/types"
)

// AuditStore wraps the GORM connection for audit records
type AuditStore struct {
	db *gorm.DB
}

// NewAuditStore opens (or creates) the audit database and migrates its
// schema.
func NewAuditStore(path string) (*AuditStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&MigrationRun{},
		&CreatedEntityRecord{},
		&MappingRecord{},
	); err != nil {
		return nil, err
	}

	return &AuditStore{db: db}, nil
}

// StartRun records the beginning of a migration run
func (s *AuditStore) StartRun(runID string, testMode bool, prefix string) error {
	run := MigrationRun{
		RunID:     runID,
		TestMode:  testMode,
		Prefix:    prefix,
		StartedAt: time.Now(),
	}
	return s.db.Create(&run).Error
}

// FinishRun stores the final statistics for a run
func (s *AuditStore) FinishRun(runID string, stats migration.Stats, aborted bool) error {
	return s.db.Model(&MigrationRun{}).
		Where("run_id = ?", runID).
		Updates(map[string]any{
			"created":     stats.Created,
			"verified":    stats.Verified,
			"skipped":     stats.Skipped,
			"failed":      stats.Failed,
			"aborted":     aborted,
			"finished_at": time.Now(),
		}).Error
}

// RecordCreated stores one created entity for audit
func (s *AuditStore) RecordCreated(runID string, entity migration.CreatedEntity) error {
	record := CreatedEntityRecord{
		RunID:      runID,
		EntityType: string(entity.EntityType),
		ServerID:   entity.ServerID,
		NaturalKey: entity.NaturalKey,
		Name:       entity.Name,
	}
	return s.db.Create(&record).Error
}

// RecordMapping stores one natural key → server ID association
func (s *AuditStore) RecordMapping(runID string, entityType types.EntityType, naturalKey, serverID string) error {
	record := MappingRecord{
		RunID:      runID,
		EntityType: string(entityType),
		NaturalKey: naturalKey,
		ServerID:   serverID,
	}
	return s.db.Create(&record).Error
}

// GetRun fetches a run by its ID, or nil when unknown
func (s *AuditStore) GetRun(runID string) (*MigrationRun, error) {
	var run MigrationRun
	if err := s.db.Where("run_id = ?", runID).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// CreatedEntities lists everything a run created, in creation order
func (s *AuditStore) CreatedEntities(runID string) ([]CreatedEntityRecord, error) {
	var records []CreatedEntityRecord
	if err := s.db.Where("run_id = ?", runID).Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Mappings lists all mappings a run produced
func (s *AuditStore) Mappings(runID string) ([]MappingRecord, error) {
	var records []MappingRecord
	if err := s.db.Where("run_id = ?", runID).Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
