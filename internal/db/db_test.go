package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/psycare/psycare/internal/config"
	"github.com/psycare/psycare/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpenAndMigrate_SQLite(t *testing.T) {
	d, err := Open(config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file:db_open?mode=memory&cache=shared"})
	require.NoError(t, err)
	require.NoError(t, Migrate(d))

	for _, m := range models.All() {
		assert.True(t, d.Migrator().HasTable(m), "missing table for %T", m)
	}
	assert.True(t, d.Migrator().HasIndex(&models.Assignment{}, "idx_assignment_pair"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestDuplicateEmailIsTranslated(t *testing.T) {
	d, err := Open(config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file:db_dup?mode=memory&cache=shared"})
	require.NoError(t, err)
	require.NoError(t, Migrate(d))

	require.NoError(t, d.Create(&models.User{Email: "a@example.com", PasswordHash: "x", Role: models.RolePatient, DisplayName: "A"}).Error)
	err = d.Create(&models.User{Email: "a@example.com", PasswordHash: "x", Role: models.RolePatient, DisplayName: "B"}).Error
	assert.True(t, IsDuplicate(err), "got %v", err)
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, IsDuplicate(nil))
	assert.True(t, IsDuplicate(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsDuplicate(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, IsDuplicate(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.False(t, IsDuplicate(errors.New("connection refused")))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "psycare.db?_foreign_keys=on", SQLiteDSN("psycare.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", SQLiteDSN("file:x?mode=memory"))
}
