package models

import (
	"time"

	"gorm.io/datatypes"
)

// MigrationRun speichert das Ergebnis eines Migrationslaufs für Operatoren.
type MigrationRun struct {
	ID         string     `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     string     `json:"status" gorm:"index"` // succeeded, failed, cancelled
	Error      string     `json:"error,omitempty" gorm:"type:text"`

	// Zähler pro Stufe als JSON
	Stats datatypes.JSON `json:"stats" gorm:"type:jsonb"`

	Issues []MigrationIssue `json:"issues,omitempty" gorm:"foreignKey:RunID"`
}

// TableName gibt explizit den Tabellennamen an.
func (MigrationRun) TableName() string {
	return "migration_runs"
}

// MigrationIssue ist ein übersprungener oder fehlgeschlagener Quelldatensatz.
type MigrationIssue struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	RunID    string `json:"run_id" gorm:"type:uuid;index"`
	Kind     string `json:"kind" gorm:"index"`
	SourceID string `json:"source_id" gorm:"index"`
	Outcome  string `json:"outcome"` // skipped, failed
	Reason   string `json:"reason" gorm:"type:text"`
}

// TableName gibt explizit den Tabellennamen an.
func (MigrationIssue) TableName() string {
	return "migration_issues"
}
