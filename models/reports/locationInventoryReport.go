package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/shopspring/decimal"
)

type LocationInventoryItem struct {
	ItemId              int             `json:"item_id"`
	Title               string          `json:"title"`
	TotalUnits          int64           `json:"total_units"`
	TotalWholesaleValue decimal.Decimal `json:"total_wholesale_value"`
	TotalRetailValue    decimal.Decimal `json:"total_retail_value"`
}

type LocationInventoryResponse struct {
	Kind       models.LocationKind      `json:"kind"`
	LocationId int                      `json:"location_id"`
	Name       string                   `json:"name"`
	Items      []*LocationInventoryItem `json:"items"`
}

// GetLocationInventoryReport returns, for a single warehouse or store, one
// row per item present with unit totals and wholesale/retail value at the
// item's current price (no price snapshots in this design).
func GetLocationInventoryReport(ctx context.Context, kind models.LocationKind, locationId int) (*LocationInventoryResponse, error) {
	start := time.Now()
	defer logSlowReport(ctx, "location_inventory_report", start, map[string]any{"kind": kind, "location_id": locationId})

	name, err := locationName(ctx, kind, locationId)
	if err != nil {
		return nil, err
	}

	if reportCacheEnabled() {
		key := fmt.Sprintf("report:location_inventory:%s:%d", kind, locationId)
		var cached *LocationInventoryResponse
		if ok, err := cacheGet(key, &cached); err == nil && ok && cached != nil {
			return cached, nil
		}
		resp, err := getLocationInventory(ctx, kind, locationId, name)
		if err != nil {
			return nil, err
		}
		_ = cacheSet(key, resp, reportCacheTTL())
		return resp, nil
	}

	return getLocationInventory(ctx, kind, locationId, name)
}

// GetAllLocationInventoryReport returns the per-item breakdown for every
// warehouse or every store.
func GetAllLocationInventoryReport(ctx context.Context, kind models.LocationKind) ([]*LocationInventoryResponse, error) {
	start := time.Now()
	defer logSlowReport(ctx, "all_location_inventory_report", start, map[string]any{"kind": kind})

	locations, err := listLocations(ctx, kind)
	if err != nil {
		return nil, err
	}

	results := make([]*LocationInventoryResponse, 0, len(locations))
	for _, loc := range locations {
		resp, err := getLocationInventory(ctx, kind, loc.id, loc.name)
		if err != nil {
			return nil, err
		}
		results = append(results, resp)
	}
	return results, nil
}

func locationName(ctx context.Context, kind models.LocationKind, locationId int) (string, error) {
	switch kind {
	case models.LocationKindWarehouse:
		warehouse, err := models.GetWarehouse(ctx, locationId)
		if err != nil {
			return "", err
		}
		return warehouse.Name, nil
	case models.LocationKindStore:
		store, err := models.GetStore(ctx, locationId)
		if err != nil {
			return "", err
		}
		return store.Name, nil
	default:
		return "", fmt.Errorf("invalid location kind %q", kind)
	}
}

type locationRef struct {
	id   int
	name string
}

// listLocations keeps the name ordering of the location listings so the
// all-locations report is deterministic.
func listLocations(ctx context.Context, kind models.LocationKind) ([]locationRef, error) {
	var locations []locationRef
	switch kind {
	case models.LocationKindWarehouse:
		warehouses, err := models.ListWarehouse(ctx, nil)
		if err != nil {
			return nil, err
		}
		for _, w := range warehouses {
			locations = append(locations, locationRef{id: w.ID, name: w.Name})
		}
	case models.LocationKindStore:
		stores, err := models.ListStore(ctx, nil)
		if err != nil {
			return nil, err
		}
		for _, s := range stores {
			locations = append(locations, locationRef{id: s.ID, name: s.Name})
		}
	default:
		return nil, fmt.Errorf("invalid location kind %q", kind)
	}
	return locations, nil
}

func getLocationInventory(ctx context.Context, kind models.LocationKind, locationId int, name string) (*LocationInventoryResponse, error) {

	var table, locationColumn string
	switch kind {
	case models.LocationKindWarehouse:
		table, locationColumn = "warehouse_stocks", "warehouse_id"
	case models.LocationKindStore:
		table, locationColumn = "store_stocks", "store_id"
	default:
		return nil, fmt.Errorf("invalid location kind %q", kind)
	}

	sql := fmt.Sprintf(`
SELECT
    items.id AS item_id,
    items.title,
    SUM(stocks.quantity) AS total_units,
    SUM(stocks.quantity * items.wholesale_price) AS total_wholesale_value,
    SUM(stocks.quantity * items.retail_price) AS total_retail_value
FROM
    %s AS stocks
    JOIN items ON items.id = stocks.item_id
WHERE
    stocks.%s = ?
GROUP BY
    items.id, items.title
ORDER BY
    items.id
`, table, locationColumn)

	var items []*LocationInventoryItem
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, locationId).Scan(&items).Error; err != nil {
		return nil, err
	}

	return &LocationInventoryResponse{
		Kind:       kind,
		LocationId: locationId,
		Name:       name,
		Items:      items,
	}, nil
}
