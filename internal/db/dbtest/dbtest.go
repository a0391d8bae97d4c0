// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"strings"
	"testing"

	"github.com/psycare/psycare/internal/db"
	"github.com/psycare/psycare/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var nameReplacer = strings.NewReplacer("/", "_", " ", "_")

// New returns a migrated sqlite database private to t.
func New(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := db.SQLiteDSN("file:" + nameReplacer.Replace(t.Name()) + "?mode=memory&cache=shared")
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := d.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

// User inserts a user with a placeholder password hash.
func User(t *testing.T, d *gorm.DB, email, role string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", Role: role, DisplayName: strings.Split(email, "@")[0]}
	if err := d.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
