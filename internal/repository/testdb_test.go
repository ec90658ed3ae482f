package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pulseflow-board-api/internal/domain"
)

// setupTestDB creates an in-memory SQLite database with the schema hand
// written for SQLite compatibility (the uuid default in the models is
// postgres-only).
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "failed to open database")

	statements := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE boards (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE columns (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME,
			board_id TEXT NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE tasks (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME,
			column_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE subtasks (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME,
			task_id TEXT NOT NULL,
			title TEXT NOT NULL,
			is_completed BOOLEAN NOT NULL DEFAULT 0,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE shares (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			deleted_at DATETIME,
			board_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			UNIQUE(board_id, user_id)
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Email:     email,
		Name:      "Test User",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
