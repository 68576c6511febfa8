// Package testutil provides shared helpers for package tests.
package testutil

import (
	"testing"

	"github.com/cris-tech/gestao-api/internal/database"
	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory sqlite database with the full schema
// migrated. Each call returns an isolated database; the connection pool
// is capped at one so concurrent background writes serialize instead of
// hitting sqlite lock errors.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")

	return db
}

// CreateTestClient inserts a client with sensible defaults
func CreateTestClient(t *testing.T, db *gorm.DB, name string) *domain.Client {
	t.Helper()

	client := &domain.Client{
		Name:     name,
		Type:     domain.ClientTypeIndividual,
		TaxID:    "123.456.789-00",
		Email:    "cliente@example.com",
		Mobile:   "11998887766",
		Street:   "Rua das Flores",
		Number:   "100",
		District: "Centro",
		City:     "São Paulo",
		State:    "SP",
	}
	require.NoError(t, db.Create(client).Error)
	return client
}
