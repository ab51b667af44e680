package actions_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/bookworks/librarydb/internal/actions"
	"github.com/bookworks/librarydb/internal/database"
	"github.com/bookworks/librarydb/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates a migrated in-memory SQLite database for testing.
// A single connection keeps the :memory: database shared across all uses.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// seedLibrary inserts a library through the action layer.
func seedLibrary(t *testing.T, db *gorm.DB, name, scope string) *models.Library {
	t.Helper()
	library, err := actions.NewLibraryActions(db).Insert(context.Background(), actions.LibraryData{
		Name:  name,
		Scope: scope,
	})
	if err != nil {
		t.Fatalf("Failed to seed library %q: %v", name, err)
	}
	return library
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }
