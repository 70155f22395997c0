// Package testutil provides the in-memory database used across the test
// suites.
package testutil

import (
	"testing"

	"github.com/bookscope/bookscope/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB opens a private in-memory database with the full schema
// migrated. Shared cache keeps the database reachable from every pooled
// connection, which matters because audit entries are written through
// their own sessions.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("database handle: %v", err)
	}
	// An in-memory database disappears with its last connection.
	sqlDB.SetMaxIdleConns(4)

	if err := db.AutoMigrate(&models.User{}, &models.Payment{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return db
}
