package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// SyncHistory is the durable audit record of one brand's sync run.
// Created at brand-sync start, finalized at end; single writer per run.
type SyncHistory struct {
	ID                    string     `gorm:"column:id;primaryKey;type:uuid"`
	RunID                 string     `gorm:"column:run_id;type:uuid;not null;index"`
	Brand                 string     `gorm:"column:brand;type:varchar(50);not null;index"`
	Status                string     `gorm:"column:status;type:varchar(20);not null"`
	ToursCreated          int        `gorm:"column:tours_created"`
	ToursUpdated          int        `gorm:"column:tours_updated"`
	ToursDeactivated      int        `gorm:"column:tours_deactivated"`
	DeparturesCreated     int        `gorm:"column:departures_created"`
	DeparturesUpdated     int        `gorm:"column:departures_updated"`
	DeparturesDeactivated int        `gorm:"column:departures_deactivated"`
	ErrorCount            int        `gorm:"column:error_count"`
	FirstError            string     `gorm:"column:first_error;type:text"`
	DryRun                bool       `gorm:"column:dry_run;default:false"`
	StartedAt             time.Time  `gorm:"column:started_at"`
	FinishedAt            *time.Time `gorm:"column:finished_at"`
	DurationMs            int64      `gorm:"column:duration_ms"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (SyncHistory) TableName() string {
	return "sync_histories"
}

func (s *SyncHistory) BeforeCreate(tx *gormlib.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
