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

func TestCreateItemUniqueTitle(t *testing.T) {
	testutil.SetupTestDB(t)
	ctx := context.Background()

	input := &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(2),
		RetailPrice:    decimal.NewFromInt(5),
	}
	if _, err := models.CreateItem(ctx, input); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if _, err := models.CreateItem(ctx, input); !errors.Is(err, utils.ErrDuplicate) {
		t.Fatalf("expected duplicate title error, got %v", err)
	}
}

func TestUpdateItemKeepsOwnTitle(t *testing.T) {
	testutil.SetupTestDB(t)
	ctx := context.Background()

	item := testutil.MustCreateItem(t, &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(2),
		RetailPrice:    decimal.NewFromInt(5),
	})

	// Re-submitting the item's own title is not a conflict.
	updated, err := models.UpdateItem(ctx, item.ID, &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(3),
		RetailPrice:    decimal.NewFromInt(6),
	})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if !updated.WholesalePrice.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("wholesale price = %s, want 3", updated.WholesalePrice)
	}
}

func TestCreateItemNegativePrice(t *testing.T) {
	testutil.SetupTestDB(t)

	_, err := models.CreateItem(context.Background(), &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(-1),
		RetailPrice:    decimal.NewFromInt(5),
	})
	if err == nil {
		t.Fatal("expected error for negative price")
	}
}

func TestDeleteItemGuards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	warehouse := testutil.MustCreateWarehouse(t, &models.NewWarehouse{Name: "Central"})
	item := testutil.MustCreateItem(t, &models.NewItem{
		Title:          "Widget",
		WholesalePrice: decimal.NewFromInt(2),
		RetailPrice:    decimal.NewFromInt(5),
	})

	if _, err := models.GetOrCreateStock(ctx, db, models.LocationKindWarehouse, warehouse.ID, item.ID); err != nil {
		t.Fatalf("GetOrCreateStock: %v", err)
	}
	if _, err := models.DeleteItem(ctx, item.ID); err == nil {
		t.Fatal("expected delete to be rejected while stock rows reference the item")
	}
}

func TestGetItemNotFound(t *testing.T) {
	testutil.SetupTestDB(t)

	if _, err := models.GetItem(context.Background(), 9999); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected RecordNotFound, got %v", err)
	}
}
