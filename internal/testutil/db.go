// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/models"
)

// NewTestDB opens a private in-memory SQLite database with the full schema.
// The pool is pinned to one connection because every connection to
// ":memory:" would otherwise see its own empty database.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, database.RunMigrations(db))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser inserts a user with the given username.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateClub inserts a club reference row.
func CreateClub(t testing.TB, db *gorm.DB, name string) *models.Club {
	t.Helper()
	club := &models.Club{Name: name, Slug: name}
	require.NoError(t, db.Create(club).Error)
	return club
}

// CreateBrand inserts a brand reference row.
func CreateBrand(t testing.TB, db *gorm.DB, name string) *models.Brand {
	t.Helper()
	brand := &models.Brand{Name: name, Slug: name}
	require.NoError(t, db.Create(brand).Error)
	return brand
}

// UUIDPtr returns a pointer to id.
func UUIDPtr(id uuid.UUID) *uuid.UUID { return &id }
