package storage

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"art-seeder/config"
	"art-seeder/services"
)

// Sinks baut die konfigurierten Berichtsziele. Der RunStore ist nil, wenn keine Datenbank konfiguriert ist.
func Sinks(cfg *config.Config, log *zap.Logger) ([]services.ReportSink, *RunStore, error) {
	var sinks []services.ReportSink
	var runStore *RunStore

	if cfg.DatabaseEnabled() {
		db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("berichtsdatenbank verbinden: %w", err)
		}
		runStore = NewRunStore(db, log)
		log.Info("Running database auto-migration...")
		if err := runStore.Migrate(); err != nil {
			return nil, nil, fmt.Errorf("auto-migration: %w", err)
		}
		sinks = append(sinks, runStore)
	} else {
		log.Info("DB_HOST nicht gesetzt, Berichte werden nicht in der Datenbank gespeichert")
	}

	if cfg.ArchiveEnabled() {
		s3Client, err := NewS3Client(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("s3-client: %w", err)
		}
		sinks = append(sinks, NewReportArchive(s3Client, cfg, log))
	}
	return sinks, runStore, nil
}
