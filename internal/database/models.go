package database

import (
	"time"

	"gorm.io/gorm"
)

// MigrationRun is one execution of the engine, test or production
type MigrationRun struct {
	gorm.Model `json:"-"`
	RunID      string    `gorm:"uniqueIndex" json:"run_id"`
	TestMode   bool      `json:"test_mode"`
	Prefix     string    `json:"prefix"`
	Created    int       `json:"created"`
	Verified   int       `json:"verified"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Aborted    bool      `json:"aborted"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// CreatedEntityRecord is one remote entity created during a run
type CreatedEntityRecord struct {
	gorm.Model `json:"-"`
	RunID      string `gorm:"index" json:"run_id"`
	EntityType string `json:"entity_type"`
	ServerID   string `json:"server_id"`
	NaturalKey string `json:"natural_key"`
	Name       string `json:"name"`
}

// MappingRecord is one natural key → server ID association from a run
type MappingRecord struct {
	gorm.Model `json:"-"`
	RunID      string `gorm:"index" json:"run_id"`
	EntityType string `json:"entity_type"`
	NaturalKey string `json:"natural_key"`
	ServerID   string `json:"server_id"`
}
