// Package databasetest opens throwaway in-memory sqlite databases for tests.
package databasetest

import (
	"testing"

	"notesboard/internal/database"

	"github.com/google/uuid"
	"gorm.io/gorm/logger"
)

// NewManager returns a connected, migrated Manager backed by a private
// in-memory sqlite database that is closed when the test ends.
func NewManager(t *testing.T) *database.Manager {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	m := database.NewDatabaseManager(database.DriverSQLite, dsn, logger.Silent)
	if err := m.Connect(); err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	sqlDB, err := m.DB.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func NewStore(t *testing.T) *database.Store {
	t.Helper()
	return NewManager(t).Store()
}
