package database

import (
	"fmt"

	"github.com/bookworks/librarydb/internal/config"
	"github.com/bookworks/librarydb/internal/models"
	"github.com/charmbracelet/log"
	glebarez "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a database connection based on the configured DB_TYPE.
// TranslateError is enabled so duplicate-key violations surface as
// gorm.ErrDuplicatedKey regardless of dialect.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DBType {
	case "mysql", "mariadb":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		dialector = mysql.Open(dsn)

	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBDatabase,
			cfg.DBPort,
		)
		dialector = postgres.Open(dsn)

	case "sqlite":
		// For SQLite, DBDatabase is the file path
		dialector = sqlite.Open(cfg.DBDatabase)

	case "sqlite-pure":
		// Pure-Go SQLite for CGO-less builds; also the test dialect
		dialector = glebarez.Open(cfg.DBDatabase)

	case "sqlserver", "mssql":
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBDatabase,
		)
		dialector = sqlserver.Open(dsn)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	logMode := logger.Warn
	if cfg.LogSQL {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := setupJoinTables(db); err != nil {
		return nil, fmt.Errorf("failed to register join tables: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	// Set connection pool settings. The idle pool must never drain to zero:
	// a :memory: SQLite database lives and dies with its connection.
	sqlDB.SetMaxOpenConns(cfg.DBConnectionLimit)
	sqlDB.SetMaxIdleConns(max(1, cfg.DBConnectionLimit/2))

	log.Info("connected", "dbtype", cfg.DBType, "database", cfg.DBDatabase)

	return db, nil
}

// setupJoinTables registers the explicit join-row models so association
// preloads and migrations ride the composite-key tables.
func setupJoinTables(db *gorm.DB) error {
	joins := []struct {
		model any
		field string
		join  any
	}{
		{&models.Author{}, "Series", &models.AuthorSeries{}},
		{&models.Series{}, "Authors", &models.AuthorSeries{}},
		{&models.Author{}, "Stories", &models.AuthorStory{}},
		{&models.Story{}, "Authors", &models.AuthorStory{}},
		{&models.Author{}, "Volumes", &models.AuthorVolume{}},
		{&models.Volume{}, "Authors", &models.AuthorVolume{}},
		{&models.Series{}, "Stories", &models.SeriesStory{}},
		{&models.Story{}, "Series", &models.SeriesStory{}},
		{&models.Volume{}, "Stories", &models.VolumeStory{}},
		{&models.Story{}, "Volumes", &models.VolumeStory{}},
	}
	for _, j := range joins {
		if err := db.SetupJoinTable(j.model, j.field, j.join); err != nil {
			return err
		}
	}
	return nil
}

// Migrate runs automatic migrations for all models
func Migrate(db *gorm.DB) error {
	if err := setupJoinTables(db); err != nil {
		return err
	}
	return db.AutoMigrate(
		&models.Library{},
		&models.Author{},
		&models.Series{},
		&models.Story{},
		&models.Volume{},
		&models.User{},
		&models.AccessToken{},
		&models.RefreshToken{},
	)
}

// Ping verifies the underlying connection is alive
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
