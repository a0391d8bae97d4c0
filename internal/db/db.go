// Package db opens the database and applies migrations.
package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/psycare/psycare/internal/config"
	"github.com/psycare/psycare/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 5

// Open connects using the configured driver. Postgres is retried a few times
// so the app can start alongside its database container.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	switch cfg.Driver {
	case "sqlite":
		return gorm.Open(sqlite.Open(SQLiteDSN(cfg.SQLitePath)), gcfg)
	case "postgres":
		var (
			db  *gorm.DB
			err error
		)
		for i := 0; i < connectAttempts; i++ {
			db, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
			if err == nil {
				return db, nil
			}
			logrus.WithError(err).WithField("attempt", i+1).Warn("database connection failed, retrying")
			time.Sleep(2 * time.Second)
		}
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
}

// SQLiteDSN enables foreign keys on a sqlite path or URI.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// IsDuplicate reports whether err is a unique constraint violation. Drivers
// that do not translate errors are matched on their message.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
