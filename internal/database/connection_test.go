package database_test

import (
	"testing"

	"github.com/bookworks/librarydb/internal/config"
	"github.com/bookworks/librarydb/internal/database"
	"github.com/bookworks/librarydb/internal/models"
)

func TestConnectUnsupportedType(t *testing.T) {
	_, err := database.Connect(&config.Config{DBType: "oracle", DBDatabase: "x"})
	if err == nil {
		t.Fatal("Expected an error for an unsupported database type")
	}
}

func TestConnectAndMigrateSQLitePure(t *testing.T) {
	cfg := &config.Config{
		DBType:            "sqlite-pure",
		DBDatabase:        ":memory:",
		DBConnectionLimit: 1,
	}
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer database.Close(db)

	if err := database.Ping(db); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	expected := []string{
		"libraries", "authors", "series", "stories", "volumes",
		"author_series", "author_stories", "author_volumes",
		"series_stories", "volume_stories",
		"users", "access_tokens", "refresh_tokens",
	}
	for _, table := range expected {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %q after migration", table)
		}
	}

	// Migration is idempotent.
	if err := database.Migrate(db); err != nil {
		t.Errorf("Second Migrate failed: %v", err)
	}
}

// A limit-1 pool must keep its single connection idle between statements;
// an in-memory database lives on that connection and would otherwise come
// back empty for the next query.
func TestPoolKeepsMemoryDatabaseAlive(t *testing.T) {
	db, err := database.Connect(&config.Config{
		DBType:            "sqlite-pure",
		DBDatabase:        ":memory:",
		DBConnectionLimit: 1,
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	library := models.Library{Name: "Main Library", Scope: "main", Active: true}
	if err := db.Create(&library).Error; err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	var n int64
	if err := db.Model(&models.Library{}).Count(&n).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected the row to survive into the next statement, found %d", n)
	}
}

// Join tables carry a composite primary key, so the storage layer itself
// refuses a duplicate link even without the advisory pre-check.
func TestJoinTableCompositeKey(t *testing.T) {
	db, err := database.Connect(&config.Config{
		DBType:            "sqlite-pure",
		DBDatabase:        ":memory:",
		DBConnectionLimit: 1,
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	library := models.Library{Name: "Main Library", Scope: "main", Active: true}
	if err := db.Create(&library).Error; err != nil {
		t.Fatalf("Library create failed: %v", err)
	}
	author := models.Author{LibraryID: library.ID, FirstName: "Ursula", LastName: "Le Guin", Active: true}
	if err := db.Create(&author).Error; err != nil {
		t.Fatalf("Author create failed: %v", err)
	}
	series := models.Series{LibraryID: library.ID, Name: "Earthsea", Active: true}
	if err := db.Create(&series).Error; err != nil {
		t.Fatalf("Series create failed: %v", err)
	}

	link := models.AuthorSeries{AuthorID: author.ID, SeriesID: series.ID, Principal: true}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("First link failed: %v", err)
	}
	dup := models.AuthorSeries{AuthorID: author.ID, SeriesID: series.ID}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("Expected the composite key to reject a duplicate link")
	}
}
