package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"art-seeder/models"
	"art-seeder/services"
)

// RunStore speichert Laufberichte in PostgreSQL.
type RunStore struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewRunStore(db *gorm.DB, logger *zap.Logger) *RunStore {
	return &RunStore{DB: db, Logger: logger}
}

// Migrate legt die Tabellen für Läufe und Issues an.
func (s *RunStore) Migrate() error {
	return s.DB.AutoMigrate(&models.MigrationRun{}, &models.MigrationIssue{})
}

// SaveReport speichert einen Lauf samt Issues.
func (s *RunStore) SaveReport(ctx context.Context, report *services.Report) error {
	run, err := runFromReport(report)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Create(&run).Error; err != nil {
		return fmt.Errorf("lauf %s speichern: %w", report.RunID, err)
	}
	s.Logger.Info("Lauf gespeichert", zap.String("run_id", run.ID), zap.Int("issues", len(run.Issues)))
	return nil
}

// List liefert die letzten Läufe ohne Issues, neueste zuerst.
func (s *RunStore) List(ctx context.Context, limit int) ([]models.MigrationRun, error) {
	var runs []models.MigrationRun
	q := s.DB.WithContext(ctx).Order("started_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Get liefert einen Lauf inklusive Issues. Unbekannte IDs ergeben gorm.ErrRecordNotFound.
func (s *RunStore) Get(ctx context.Context, id string) (*models.MigrationRun, error) {
	var run models.MigrationRun
	err := s.DB.WithContext(ctx).Preload("Issues").Where("id = ?", id).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func runFromReport(report *services.Report) (models.MigrationRun, error) {
	stats, err := json.Marshal(report.Stages)
	if err != nil {
		return models.MigrationRun{}, err
	}
	run := models.MigrationRun{
		ID:        report.RunID,
		StartedAt: report.StartedAt,
		Status:    report.Status,
		Error:     report.Error,
		Stats:     datatypes.JSON(stats),
	}
	if !report.FinishedAt.IsZero() {
		finished := report.FinishedAt
		run.FinishedAt = &finished
	}
	for _, is := range report.Issues {
		run.Issues = append(run.Issues, models.MigrationIssue{
			RunID:    report.RunID,
			Kind:     string(is.Kind),
			SourceID: is.SourceID,
			Outcome:  is.Outcome,
			Reason:   is.Reason,
		})
	}
	return run, nil
}
