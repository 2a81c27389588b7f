// seed-demo fills an empty database with a small demo dataset: a catalog of
// items, two warehouses, two stores, and enough movement history that every
// report has something to show.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/workflow"
	"github.com/shopspring/decimal"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	items := seedItems(ctx)
	warehouses := []*models.Warehouse{
		mustCreateWarehouse(ctx, "Central Warehouse"),
		mustCreateWarehouse(ctx, "North Warehouse"),
	}
	stores := []*models.Store{
		mustCreateStore(ctx, "Downtown Store"),
		mustCreateStore(ctx, "Airport Store"),
	}

	// Stock both warehouses, move some of it into the stores, sell a bit.
	for i, item := range items {
		warehouse := warehouses[i%len(warehouses)]
		store := stores[i%len(stores)]

		if _, err := workflow.Receive(ctx, warehouse.ID, item.ID, int64(100*(i+1))); err != nil {
			fail("receive", err)
		}
		if _, err := workflow.Transfer(ctx, warehouse.ID, item.ID, store.ID, int64(20*(i+1))); err != nil {
			fail("transfer", err)
		}
		if _, err := workflow.Sell(ctx, store.ID, item.ID, int64(5*(i+1))); err != nil {
			fail("sell", err)
		}
	}

	fmt.Printf("seeded %d items, %d warehouses, %d stores\n", len(items), len(warehouses), len(stores))
}

func seedItems(ctx context.Context) []*models.Item {
	specs := []struct {
		title     string
		wholesale int64
		retail    int64
	}{
		{"USB-C Cable", 2, 8},
		{"Wireless Mouse", 9, 25},
		{"Mechanical Keyboard", 35, 89},
		{"27in Monitor", 120, 249},
		{"Laptop Stand", 11, 32},
	}

	items := make([]*models.Item, 0, len(specs))
	for _, s := range specs {
		item, err := models.CreateItem(ctx, &models.NewItem{
			Title:          s.title,
			WholesalePrice: decimal.NewFromInt(s.wholesale),
			RetailPrice:    decimal.NewFromInt(s.retail),
		})
		if err != nil {
			fail("create item "+s.title, err)
		}
		items = append(items, item)
	}
	return items
}

func mustCreateWarehouse(ctx context.Context, name string) *models.Warehouse {
	warehouse, err := models.CreateWarehouse(ctx, &models.NewWarehouse{Name: name})
	if err != nil {
		fail("create warehouse "+name, err)
	}
	return warehouse
}

func mustCreateStore(ctx context.Context, name string) *models.Store {
	store, err := models.CreateStore(ctx, &models.NewStore{Name: name})
	if err != nil {
		fail("create store "+name, err)
	}
	return store
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", step, err)
	os.Exit(1)
}
