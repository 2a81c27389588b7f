package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

// LocationKind selects which stock table a key addresses.
type LocationKind string

const (
	LocationKindWarehouse LocationKind = "warehouse"
	LocationKindStore     LocationKind = "store"
)

// WarehouseStock holds the on-hand units of an item in a warehouse.
// Rows are created lazily by the first receive touching the key and are
// zeroed, never deleted.
type WarehouseStock struct {
	WarehouseId int       `gorm:"primaryKey;autoIncrement:false" json:"warehouse_id"`
	ItemId      int       `gorm:"primaryKey;autoIncrement:false" json:"item_id"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StoreStock is the same shape for stores; rows are created lazily by the
// first transfer into the store.
type StoreStock struct {
	StoreId   int       `gorm:"primaryKey;autoIncrement:false" json:"store_id"`
	ItemId    int       `gorm:"primaryKey;autoIncrement:false" json:"item_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StockRow is the location-neutral view of a (location, item) quantity record.
type StockRow struct {
	Kind       LocationKind `json:"kind"`
	LocationId int          `json:"location_id"`
	ItemId     int          `json:"item_id"`
	Quantity   int64        `json:"quantity"`
}

const applyDeltaMaxAttempts = 3

func stockTable(kind LocationKind) (table string, locationColumn string, err error) {
	switch kind {
	case LocationKindWarehouse:
		return "warehouse_stocks", "warehouse_id", nil
	case LocationKindStore:
		return "store_stocks", "store_id", nil
	default:
		return "", "", fmt.Errorf("invalid location kind %q", kind)
	}
}

func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// lock wait timeout (1205) rolls back only the statement, so the statement
// can be re-issued inside the caller's transaction.
func isLockWaitTimeoutErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1205
	}
	return false
}

// deadlock (1213) rolls back the WHOLE transaction server-side. Re-issuing
// a statement after 1213 would run outside the caller's transaction scope
// and autocommit, detached from the statements that were rolled back. Never
// retry it in place; the enclosing transaction must abort.
func isDeadlockErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213
	}
	return false
}

// GetStock returns the stock row for the key, or RecordNotFound.
// Exact-zero quantity is a valid row, distinct from "row absent".
func GetStock(ctx context.Context, tx *gorm.DB, kind LocationKind, locationId int, itemId int) (*StockRow, error) {
	table, locationColumn, err := stockTable(kind)
	if err != nil {
		return nil, err
	}

	row := StockRow{Kind: kind, LocationId: locationId, ItemId: itemId}
	result := tx.WithContext(ctx).Table(table).
		Where(locationColumn+" = ? AND item_id = ?", locationId, itemId).
		Select("quantity").
		Take(&row.Quantity)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, result.Error
	}
	return &row, nil
}

// GetOrCreateStock returns the existing row or creates one with quantity 0.
// Safe under concurrent callers for the same key: the composite primary key
// guarantees at most one row, and a duplicate-key race falls back to a
// re-read of the winner's row.
func GetOrCreateStock(ctx context.Context, tx *gorm.DB, kind LocationKind, locationId int, itemId int) (*StockRow, error) {
	row, err := GetStock(ctx, tx, kind, locationId, itemId)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, err
	}

	switch kind {
	case LocationKindWarehouse:
		err = tx.WithContext(ctx).Create(&WarehouseStock{WarehouseId: locationId, ItemId: itemId}).Error
	case LocationKindStore:
		err = tx.WithContext(ctx).Create(&StoreStock{StoreId: locationId, ItemId: itemId}).Error
	}
	if err != nil && !isDuplicateKeyErr(err) {
		return nil, err
	}

	return GetStock(ctx, tx, kind, locationId, itemId)
}

// ApplyDelta atomically adds delta (may be negative) to a stock row's
// quantity. The guard `quantity + delta >= 0` rides on the row lock of the
// UPDATE itself, so concurrent writers on the same key cannot interleave
// their read-modify-write and the quantity can never go negative.
//
// Returns InsufficientStock when the result would be negative (row
// unchanged), RecordNotFound when the row does not exist, and
// StorageUnavailable on a deadlock or after bounded in-place retries of a
// lock wait timeout. A deadlock is never retried in place: the server has
// already rolled back the enclosing transaction, so the caller must abort
// and rerun the whole operation.
func ApplyDelta(ctx context.Context, tx *gorm.DB, kind LocationKind, locationId int, itemId int, delta int64) (int64, error) {
	table, locationColumn, err := stockTable(kind)
	if err != nil {
		return 0, err
	}

	var lastErr error
	for attempt := 1; attempt <= applyDeltaMaxAttempts; attempt++ {
		result := tx.WithContext(ctx).Table(table).
			Where(locationColumn+" = ? AND item_id = ? AND quantity + ? >= 0", locationId, itemId, delta).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + ?", delta),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			if isDeadlockErr(result.Error) {
				return 0, fmt.Errorf("%w: %v", utils.ErrStorageUnavailable, result.Error)
			}
			if isLockWaitTimeoutErr(result.Error) {
				// No sleep here: the caller's transaction may hold row locks.
				lastErr = result.Error
				continue
			}
			return 0, result.Error
		}

		if result.RowsAffected == 0 {
			// Either the row is absent or the guard rejected the decrement.
			if _, err := GetStock(ctx, tx, kind, locationId, itemId); err != nil {
				return 0, err
			}
			return 0, utils.ErrInsufficientStock
		}

		row, err := GetStock(ctx, tx, kind, locationId, itemId)
		if err != nil {
			return 0, err
		}
		return row.Quantity, nil
	}

	return 0, fmt.Errorf("%w: %v", utils.ErrStorageUnavailable, lastErr)
}

// ListWarehouseStock returns all stock rows of a warehouse.
func ListWarehouseStock(ctx context.Context, tx *gorm.DB, warehouseId int) ([]*WarehouseStock, error) {
	var rows []*WarehouseStock
	if err := tx.WithContext(ctx).Where("warehouse_id = ?", warehouseId).Order("item_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListStoreStock returns all stock rows of a store.
func ListStoreStock(ctx context.Context, tx *gorm.DB, storeId int) ([]*StoreStock, error) {
	var rows []*StoreStock
	if err := tx.WithContext(ctx).Where("store_id = ?", storeId).Order("item_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
