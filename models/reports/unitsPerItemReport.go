package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
)

type UnitsPerItemResponse struct {
	ItemId     int    `json:"item_id"`
	Title      string `json:"title"`
	TotalUnits int64  `json:"total_units"`
}

// GetUnitsPerItemReport sums each item's units across every warehouse and
// store. Items that have at least one stock row are included even when the
// total is zero; items never stocked anywhere are excluded.
func GetUnitsPerItemReport(ctx context.Context) ([]*UnitsPerItemResponse, error) {
	start := time.Now()
	defer logSlowReport(ctx, "units_per_item_report", start, nil)

	if reportCacheEnabled() {
		key := "report:units_per_item"
		var cached []*UnitsPerItemResponse
		if ok, err := cacheGet(key, &cached); err == nil && ok && cached != nil {
			return cached, nil
		}
		rows, err := getUnitsPerItem(ctx)
		if err != nil {
			return nil, err
		}
		_ = cacheSet(key, rows, reportCacheTTL())
		return rows, nil
	}

	return getUnitsPerItem(ctx)
}

func getUnitsPerItem(ctx context.Context) ([]*UnitsPerItemResponse, error) {

	sql := `
SELECT
    items.id AS item_id,
    items.title,
    SUM(stocks.quantity) AS total_units
FROM
    (
        SELECT item_id, quantity FROM warehouse_stocks
        UNION ALL
        SELECT item_id, quantity FROM store_stocks
    ) AS stocks
    JOIN items ON items.id = stocks.item_id
GROUP BY
    items.id, items.title
ORDER BY
    items.id
`

	var records []*UnitsPerItemResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}
