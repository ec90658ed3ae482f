package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulseflow-board-api/internal/domain"
)

// modelInfo holds information about a domain model and its table name
type modelInfo struct {
	model     interface{}
	tableName string
}

// migratedModels lists all domain models in dependency order so that
// foreign key constraints resolve during migration.
var migratedModels = []modelInfo{
	{&domain.User{}, "users"},
	{&domain.Board{}, "boards"},
	{&domain.Column{}, "columns"},
	{&domain.Task{}, "tasks"},
	{&domain.Subtask{}, "subtasks"},
	{&domain.Share{}, "shares"},
}

// AutoMigrate runs GORM auto-migration for all domain models.
// It creates tables, indexes, and foreign key constraints based on the
// struct definitions in the domain package.
func AutoMigrate(db *gorm.DB) error {
	models := make([]interface{}, 0, len(migratedModels))
	for _, m := range migratedModels {
		models = append(models, m.model)
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}

	return nil
}

// SafeAutoMigrate runs auto-migration model by model, checking table
// existence first. Handles both fresh installations and existing databases:
// new tables are created, existing ones only receive schema updates.
func SafeAutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	migrator := db.Migrator()

	logger.Info("Starting safe auto-migration",
		zap.Int("total_models", len(migratedModels)),
	)

	for _, m := range migratedModels {
		tableExists := migrator.HasTable(m.model)

		if err := db.AutoMigrate(m.model); err != nil {
			logger.Error("Failed to migrate table",
				zap.String("table", m.tableName),
				zap.Bool("table_existed", tableExists),
				zap.Error(err),
			)
			return fmt.Errorf("failed to migrate table %s: %w", m.tableName, err)
		}

		logger.Info("Successfully migrated table",
			zap.String("table", m.tableName),
			zap.Bool("was_existing", tableExists),
		)
	}

	logger.Info("Safe auto-migration completed successfully",
		zap.Int("tables_migrated", len(migratedModels)),
	)

	return nil
}

// SafeAutoMigrateWithRetry runs SafeAutoMigrate up to maxRetries times with
// linear backoff. Used at startup when the database may still be coming up.
func SafeAutoMigrateWithRetry(db *gorm.DB, logger *zap.Logger, maxRetries int) error {
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = SafeAutoMigrate(db, logger)
		if err == nil {
			return nil
		}

		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			logger.Warn("Migration attempt failed, retrying...",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			time.Sleep(backoff)
		}
	}

	logger.Error("Migration failed after all retry attempts",
		zap.Int("total_attempts", maxRetries),
		zap.Error(err),
	)
	return fmt.Errorf("migration failed after %d attempts: %w", maxRetries, err)
}
