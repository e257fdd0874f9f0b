package models

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BorisNikolic/timeline-app-sub001/internal/config"
)

// StampNow is the clock used for created_at/updated_at stamps. Stamps are
// truncated to millisecond precision so a stamp read back by a client compares
// equal to the stored one regardless of the driver's time resolution.
func StampNow() time.Time {
	return time.Now().Truncate(time.Millisecond)
}

// Open connects to the configured database and returns the handle. The handle
// is injected into services at construction; there is no package-level global.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: StampNow,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for all domain tables. Foreign key
// constraints carry ON DELETE CASCADE from timelines to their dependents.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Timeline{},
		&TimelineMember{},
		&Category{},
		&Event{},
		&Invitation{},
		&UserPreference{},
	)
}

// Close releases the underlying connection pool. Called once at shutdown.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
