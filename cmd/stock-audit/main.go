// stock-audit checks the stock tables and the purchase log for consistency:
// no negative quantities anywhere, and per-store revenue recomputed row by
// row in Go must match what the SQL aggregate reports. Read-only; exits
// non-zero when a discrepancy is found.
//
// Example:
//
//	go run ./cmd/stock-audit/ -store-id=3
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/models/reports"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	storeID := flag.Int("store-id", 0, "Optional: audit only one store's revenue (0 = all stores)")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	problems := 0
	problems += auditNonNegative(ctx, db, "warehouse_stocks", "warehouse_id")
	problems += auditNonNegative(ctx, db, "store_stocks", "store_id")
	problems += auditRevenue(ctx, db, *storeID)

	if problems > 0 {
		fmt.Fprintf(os.Stderr, "audit found %d problem(s)\n", problems)
		os.Exit(1)
	}
	fmt.Println("audit passed")
}

func auditNonNegative(ctx context.Context, db *gorm.DB, table string, locationColumn string) int {
	var rows []struct {
		LocationId int
		ItemId     int
		Quantity   int64
	}
	sql := fmt.Sprintf("SELECT %s AS location_id, item_id, quantity FROM %s WHERE quantity < 0", locationColumn, table)
	if err := db.WithContext(ctx).Raw(sql).Scan(&rows).Error; err != nil {
		fmt.Fprintf(os.Stderr, "scan %s: %v\n", table, err)
		return 1
	}
	for _, r := range rows {
		fmt.Fprintf(os.Stderr, "%s: negative quantity %d at (%s=%d, item_id=%d)\n", table, r.Quantity, locationColumn, r.LocationId, r.ItemId)
	}
	return len(rows)
}

// auditRevenue replays each store's purchase log against current item
// prices and compares the sum with the report query.
func auditRevenue(ctx context.Context, db *gorm.DB, onlyStoreID int) int {
	stores, err := models.ListStore(ctx, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list stores: %v\n", err)
		return 1
	}

	problems := 0
	for _, store := range stores {
		if onlyStoreID > 0 && store.ID != onlyStoreID {
			continue
		}

		purchases, err := models.ListPurchase(ctx, &store.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list purchases for store %d: %v\n", store.ID, err)
			problems++
			continue
		}

		wantRevenue := decimal.Zero
		wantCost := decimal.Zero
		for _, p := range purchases {
			item, err := models.GetItem(ctx, p.ItemId)
			if err != nil {
				fmt.Fprintf(os.Stderr, "purchase %d references missing item %d: %v\n", p.ID, p.ItemId, err)
				problems++
				continue
			}
			qty := decimal.NewFromInt(p.Quantity)
			wantRevenue = wantRevenue.Add(qty.Mul(item.RetailPrice))
			wantCost = wantCost.Add(qty.Mul(item.WholesalePrice))
		}

		report, err := reports.GetStoreRevenueReport(ctx, store.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "revenue report for store %d: %v\n", store.ID, err)
			problems++
			continue
		}

		if !report.TotalRevenue.Equal(wantRevenue) || !report.TotalCost.Equal(wantCost) {
			fmt.Fprintf(os.Stderr, "store %d (%s): report revenue=%s cost=%s, replay revenue=%s cost=%s\n",
				store.ID, store.Name, report.TotalRevenue, report.TotalCost, wantRevenue, wantCost)
			problems++
			continue
		}

		fmt.Printf("store %d (%s): %d purchases, revenue %s OK\n", store.ID, store.Name, len(purchases), report.TotalRevenue)
	}
	return problems
}
