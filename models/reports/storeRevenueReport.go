package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/shopspring/decimal"
)

type StoreRevenueResponse struct {
	StoreId      int             `json:"store_id"`
	StoreName    string          `json:"store_name"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
}

// GetStoreRevenueReport reduces the store's purchase history against the
// items' current retail/wholesale prices. A store with no purchases yields
// zero revenue, cost and profit, not an absent row.
func GetStoreRevenueReport(ctx context.Context, storeId int) (*StoreRevenueResponse, error) {
	start := time.Now()
	defer logSlowReport(ctx, "store_revenue_report", start, map[string]any{"store_id": storeId})

	store, err := models.GetStore(ctx, storeId)
	if err != nil {
		return nil, err
	}

	if reportCacheEnabled() {
		key := fmt.Sprintf("report:store_revenue:%d", storeId)
		var cached *StoreRevenueResponse
		if ok, err := cacheGet(key, &cached); err == nil && ok && cached != nil {
			return cached, nil
		}
		resp, err := getStoreRevenue(ctx, storeId, store.Name)
		if err != nil {
			return nil, err
		}
		_ = cacheSet(key, resp, reportCacheTTL())
		return resp, nil
	}

	return getStoreRevenue(ctx, storeId, store.Name)
}

// GetAllStoreRevenueReport returns the revenue breakdown for every store.
func GetAllStoreRevenueReport(ctx context.Context) ([]*StoreRevenueResponse, error) {
	start := time.Now()
	defer logSlowReport(ctx, "all_store_revenue_report", start, nil)

	stores, err := models.ListStore(ctx, nil)
	if err != nil {
		return nil, err
	}

	results := make([]*StoreRevenueResponse, 0, len(stores))
	for _, store := range stores {
		resp, err := getStoreRevenue(ctx, store.ID, store.Name)
		if err != nil {
			return nil, err
		}
		results = append(results, resp)
	}
	return results, nil
}

func getStoreRevenue(ctx context.Context, storeId int, storeName string) (*StoreRevenueResponse, error) {

	sql := `
SELECT
    COALESCE(SUM(purchases.quantity * items.retail_price), 0) AS total_revenue,
    COALESCE(SUM(purchases.quantity * items.wholesale_price), 0) AS total_cost
FROM
    purchases
    JOIN items ON items.id = purchases.item_id
WHERE
    purchases.store_id = ?
`

	var totals struct {
		TotalRevenue decimal.Decimal
		TotalCost    decimal.Decimal
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, storeId).Scan(&totals).Error; err != nil {
		return nil, err
	}

	return &StoreRevenueResponse{
		StoreId:      storeId,
		StoreName:    storeName,
		TotalRevenue: totals.TotalRevenue,
		TotalCost:    totals.TotalCost,
		TotalProfit:  totals.TotalRevenue.Sub(totals.TotalCost),
	}, nil
}
