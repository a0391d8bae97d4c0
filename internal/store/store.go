// Package store holds the repository functions. Each function runs one named
// query and returns plain records; nothing is lazily loaded.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/psycare/psycare/internal/db"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate record")
)

// Store wraps a gorm handle. Inside Transaction the closure receives a Store
// bound to the transaction and must use only that one.
type Store struct {
	db *gorm.DB
}

func New(d *gorm.DB) *Store { return &Store{db: d} }

// DB exposes the underlying handle for migrations and health checks.
func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn in a transaction, rolling back when fn returns an error.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) q(ctx context.Context) *gorm.DB { return s.db.WithContext(ctx) }

// translate maps driver errors to the store sentinels.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case db.IsDuplicate(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func limited(q *gorm.DB, limit int) *gorm.DB {
	if limit > 0 {
		return q.Limit(limit)
	}
	return q
}
