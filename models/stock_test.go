package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/testutil"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/shopspring/decimal"
)

func TestGetOrCreateStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	warehouse := testutil.MustCreateWarehouse(t, &models.NewWarehouse{Name: "Central"})
	item := testutil.MustCreateItem(t, &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(2),
		RetailPrice:    decimal.NewFromInt(5),
	})

	if _, err := models.GetStock(ctx, db, models.LocationKindWarehouse, warehouse.ID, item.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected RecordNotFound before first contact, got %v", err)
	}

	row, err := models.GetOrCreateStock(ctx, db, models.LocationKindWarehouse, warehouse.ID, item.ID)
	if err != nil {
		t.Fatalf("GetOrCreateStock: %v", err)
	}
	if row.Quantity != 0 {
		t.Fatalf("fresh stock row quantity = %d, want 0", row.Quantity)
	}

	// Second call returns the existing row, it does not reset it.
	if _, err := models.ApplyDelta(ctx, db, models.LocationKindWarehouse, warehouse.ID, item.ID, 7); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	row, err = models.GetOrCreateStock(ctx, db, models.LocationKindWarehouse, warehouse.ID, item.ID)
	if err != nil {
		t.Fatalf("GetOrCreateStock second call: %v", err)
	}
	if row.Quantity != 7 {
		t.Fatalf("existing stock row quantity = %d, want 7", row.Quantity)
	}
}

func TestGetStockDistinguishesZeroFromAbsent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	store := testutil.MustCreateStore(t, &models.NewStore{Name: "Downtown"})
	item := testutil.MustCreateItem(t, &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(2),
		RetailPrice:    decimal.NewFromInt(5),
	})

	if _, err := models.GetOrCreateStock(ctx, db, models.LocationKindStore, store.ID, item.ID); err != nil {
		t.Fatalf("GetOrCreateStock: %v", err)
	}

	row, err := models.GetStock(ctx, db, models.LocationKindStore, store.ID, item.ID)
	if err != nil {
		t.Fatalf("zero-quantity row must be readable, got %v", err)
	}
	if row.Quantity != 0 {
		t.Fatalf("quantity = %d, want 0", row.Quantity)
	}
}

func TestApplyDelta(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	warehouse := testutil.MustCreateWarehouse(t, &models.NewWarehouse{Name: "Central"})
	item := testutil.MustCreateItem(t, &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(2),
		RetailPrice:    decimal.NewFromInt(5),
	})

	// Missing row: surfaced as RecordNotFound, not as insufficient stock.
	if _, err := models.ApplyDelta(ctx, db, models.LocationKindWarehouse, warehouse.ID, item.ID, -1); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected RecordNotFound on absent row, got %v", err)
	}

	if _, err := models.GetOrCreateStock(ctx, db, models.LocationKindWarehouse, warehouse.ID, item.ID); err != nil {
		t.Fatalf("GetOrCreateStock: %v", err)
	}

	qty, err := models.ApplyDelta(ctx, db, models.LocationKindWarehouse, warehouse.ID, item.ID, 10)
	if err != nil {
		t.Fatalf("ApplyDelta(+10): %v", err)
	}
	if qty != 10 {
		t.Fatalf("quantity = %d, want 10", qty)
	}

	// Decrement past zero is rejected and leaves the row untouched.
	if _, err := models.ApplyDelta(ctx, db, models.LocationKindWarehouse, warehouse.ID, item.ID, -11); !errors.Is(err, utils.ErrInsufficientStock) {
		t.Fatalf("expected InsufficientStock, got %v", err)
	}
	row, err := models.GetStock(ctx, db, models.LocationKindWarehouse, warehouse.ID, item.ID)
	if err != nil {
		t.Fatalf("GetStock: %v", err)
	}
	if row.Quantity != 10 {
		t.Fatalf("rejected decrement changed quantity to %d, want 10", row.Quantity)
	}

	// Decrement to exactly zero is allowed.
	qty, err = models.ApplyDelta(ctx, db, models.LocationKindWarehouse, warehouse.ID, item.ID, -10)
	if err != nil {
		t.Fatalf("ApplyDelta(-10): %v", err)
	}
	if qty != 0 {
		t.Fatalf("quantity = %d, want 0", qty)
	}
}

func TestApplyDeltaInvalidKind(t *testing.T) {
	db := testutil.SetupTestDB(t)

	if _, err := models.ApplyDelta(context.Background(), db, models.LocationKind("depot"), 1, 1, 1); err == nil {
		t.Fatal("expected error for unknown location kind")
	}
}
