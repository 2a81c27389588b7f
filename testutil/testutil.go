// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory sqlite database, installs it as the
// shared connection and migrates the schema. Each call gets its own
// database, so tests stay isolated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", url.PathEscape(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// sqlite allows a single writer; serialize connections so concurrent
	// tests contend on the driver instead of failing with SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	config.SetDB(db)
	models.MigrateTable()

	t.Cleanup(func() {
		_ = sqlDB.Close()
		config.SetDB(nil)
	})

	return db
}

func testContext() context.Context {
	return context.Background()
}

// MustCreateItem inserts a catalog item or fails the test.
func MustCreateItem(t *testing.T, input *models.NewItem) *models.Item {
	t.Helper()
	item, err := models.CreateItem(testContext(), input)
	if err != nil {
		t.Fatalf("create item %q: %v", input.Title, err)
	}
	return item
}

// MustCreateWarehouse inserts a warehouse or fails the test.
func MustCreateWarehouse(t *testing.T, input *models.NewWarehouse) *models.Warehouse {
	t.Helper()
	warehouse, err := models.CreateWarehouse(testContext(), input)
	if err != nil {
		t.Fatalf("create warehouse %q: %v", input.Name, err)
	}
	return warehouse
}

// MustCreateStore inserts a store or fails the test.
func MustCreateStore(t *testing.T, input *models.NewStore) *models.Store {
	t.Helper()
	store, err := models.CreateStore(testContext(), input)
	if err != nil {
		t.Fatalf("create store %q: %v", input.Name, err)
	}
	return store
}
