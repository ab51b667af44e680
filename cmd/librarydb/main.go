package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bookworks/librarydb/internal/config"
	"github.com/bookworks/librarydb/internal/database"
	"github.com/bookworks/librarydb/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "librarydb",
		Usage: "library catalog data service administration",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "run schema migrations against the configured database",
				Action: runMigrate,
			},
			{
				Name:   "check",
				Usage:  "verify the configured database is reachable",
				Action: runCheck,
			},
			{
				Name:   "schema",
				Usage:  "print the migrated schema (SQLite rendition)",
				Action: runSchema,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func runMigrate(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations complete", "dbtype", cfg.DBType, "database", cfg.DBDatabase)
	return nil
}

func runCheck(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	switch cfg.DBType {
	case "sqlite", "sqlite-pure":
		// File database; nothing listening to probe
	default:
		if err := utils.PingDatabase(cfg.DBHost, cfg.DBPort); err != nil {
			return err
		}
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Ping(db); err != nil {
		return err
	}
	log.Info("healthy", "dbtype", cfg.DBType, "database", cfg.DBDatabase)
	return nil
}

// runSchema migrates an in-memory SQLite database and dumps what the
// migration created, for schema inspection without touching a real server.
func runSchema(ctx context.Context, _ *cli.Command) error {
	cfg := &config.Config{
		DBType:            "sqlite-pure",
		DBDatabase:        ":memory:",
		DBConnectionLimit: 1,
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	var tables []string
	if err := db.Raw("SELECT name FROM sqlite_master WHERE type='table' ORDER BY name").Scan(&tables).Error; err != nil {
		return err
	}
	for _, table := range tables {
		var ddl string
		if err := db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&ddl).Error; err != nil {
			return err
		}
		fmt.Printf("\n=== Table: %s ===\n%s\n", table, ddl)
	}
	return nil
}
