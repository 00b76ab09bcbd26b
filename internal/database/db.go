package database

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zaqqye/gazetrack_backend/internal/config"
	"github.com/zaqqye/gazetrack_backend/internal/logging"
	"github.com/zaqqye/gazetrack_backend/internal/models"
)

// Connect opens the configured database. Unique violations surface as
// gorm.ErrDuplicatedKey on both drivers.
func Connect(cfg *config.Config, root string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN(root))
	case "sqlite", "":
		if cfg.Database.Path != ":memory:" {
			path := cfg.Database.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("could not create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.DatabaseDSN(root))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := Open(dialector, logging.NewGormLogger(log, logger.Warn))
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established", zap.String("driver", db.Dialector.Name()))
	return db, nil
}

// Open wraps gorm.Open with the settings every connection needs.
func Open(dialector gorm.Dialector, l logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         l,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if db.Dialector.Name() == "sqlite" {
		// sqlite allows a single writer; one connection also keeps
		// in-memory databases alive across queries.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

var tables = []interface{}{
	&models.Study{},
	&models.Subject{},
	&models.Point{},
	&models.Measurement{},
	&models.TaskLog{},
	&models.User{},
}

// Migrate creates every table, column and foreign key.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(tables...)
}

// DropAll removes every table. Children go first so foreign keys never block.
func DropAll(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&models.TaskLog{},
		&models.Measurement{},
		&models.Point{},
		&models.Subject{},
		&models.Study{},
		&models.User{},
	)
}

// OpenInMemory returns a migrated private sqlite database with foreign keys
// enforced. Every call yields an independent database.
func OpenInMemory() (*gorm.DB, error) {
	db, err := Open(sqlite.Open("file::memory:?_foreign_keys=on"), logger.Discard)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
