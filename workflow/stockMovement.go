package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/models/reports"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

// Stock movement engine. Each operation validates its inputs before any
// storage access, then runs as one transaction with commit-or-rollback on
// every exit path; no partial movement is ever observable.

type StockResult struct {
	WarehouseId int   `json:"warehouse_id"`
	ItemId      int   `json:"item_id"`
	Quantity    int64 `json:"quantity"`
}

type TransferResult struct {
	WarehouseId       int   `json:"warehouse_id"`
	StoreId           int   `json:"store_id"`
	ItemId            int   `json:"item_id"`
	WarehouseQuantity int64 `json:"warehouse_quantity"`
	StoreQuantity     int64 `json:"store_quantity"`
}

type SaleResult struct {
	StoreId       int   `json:"store_id"`
	ItemId        int   `json:"item_id"`
	StoreQuantity int64 `json:"store_quantity"`
	PurchaseId    int   `json:"purchase_id"`
}

func stockLockKey(kind models.LocationKind, locationId int, itemId int) string {
	return fmt.Sprintf("stock:%s:%d:%d", kind, locationId, itemId)
}

// obtainStockLocks is a best-effort optimization to reduce row-lock
// contention across instances. Reliability must not depend on Redis: the
// guarded UPDATE in models.ApplyDelta serializes writers on the same key.
func obtainStockLocks(ctx context.Context, keys ...string) func() {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}
	}

	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 20),
	}
	locks := make([]*redislock.Lock, 0, len(keys))
	for _, key := range keys {
		lock, err := locker.Obtain(ctx, key, 10*time.Second, opts)
		if err != nil {
			continue
		}
		locks = append(locks, lock)
	}
	return func() {
		for _, lock := range locks {
			_ = lock.Release(ctx)
		}
	}
}

// Receive books quantity units of an item into a warehouse, creating the
// stock row on first contact. There is no upper bound, so the operation
// cannot fail once the preconditions hold. Retried calls double-count;
// deduplication is the gateway's concern.
func Receive(ctx context.Context, warehouseId int, itemId int, quantity int64) (*StockResult, error) {
	logger := config.GetLogger()

	if quantity <= 0 {
		return nil, utils.ErrInvalidQuantity
	}
	if err := utils.ValidateResourceId[models.Warehouse](ctx, warehouseId); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[models.Item](ctx, itemId); err != nil {
		return nil, err
	}

	release := obtainStockLocks(ctx, stockLockKey(models.LocationKindWarehouse, warehouseId, itemId))
	defer release()

	var result StockResult
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := models.GetOrCreateStock(ctx, tx, models.LocationKindWarehouse, warehouseId, itemId); err != nil {
			return err
		}
		newQty, err := models.ApplyDelta(ctx, tx, models.LocationKindWarehouse, warehouseId, itemId, quantity)
		if err != nil {
			return err
		}
		result = StockResult{WarehouseId: warehouseId, ItemId: itemId, Quantity: newQty}
		return nil
	})
	if err != nil {
		config.LogError(logger, "stockMovement.go", "Receive", "Transaction", map[string]any{"warehouse_id": warehouseId, "item_id": itemId, "quantity": quantity}, err)
		return nil, err
	}

	reports.InvalidateStockCaches(warehouseId, 0)
	return &result, nil
}

// Transfer ships quantity units of an item from a warehouse to a store.
// The warehouse decrement and the store increment are one transaction: if
// the increment could not complete, the decrement rolls back, so the sum
// of (warehouse qty + store qty) for the item is invariant.
func Transfer(ctx context.Context, warehouseId int, itemId int, storeId int, quantity int64) (*TransferResult, error) {
	logger := config.GetLogger()

	if quantity <= 0 {
		return nil, utils.ErrInvalidQuantity
	}
	if err := utils.ValidateResourceId[models.Warehouse](ctx, warehouseId); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[models.Item](ctx, itemId); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[models.Store](ctx, storeId); err != nil {
		return nil, err
	}

	// Warehouse key first, store key second; every transfer locks in the
	// same order, so two transfers on the same pair cannot deadlock.
	release := obtainStockLocks(ctx,
		stockLockKey(models.LocationKindWarehouse, warehouseId, itemId),
		stockLockKey(models.LocationKindStore, storeId, itemId),
	)
	defer release()

	var result TransferResult
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Decrement first: RecordNotFound when the warehouse never stocked
		// the item, InsufficientStock when quantity exceeds on-hand. Both
		// abort with no effect.
		warehouseQty, err := models.ApplyDelta(ctx, tx, models.LocationKindWarehouse, warehouseId, itemId, -quantity)
		if err != nil {
			return err
		}

		if _, err := models.GetOrCreateStock(ctx, tx, models.LocationKindStore, storeId, itemId); err != nil {
			return err
		}
		storeQty, err := models.ApplyDelta(ctx, tx, models.LocationKindStore, storeId, itemId, quantity)
		if err != nil {
			return err
		}

		result = TransferResult{
			WarehouseId:       warehouseId,
			StoreId:           storeId,
			ItemId:            itemId,
			WarehouseQuantity: warehouseQty,
			StoreQuantity:     storeQty,
		}
		return nil
	})
	if err != nil {
		config.LogError(logger, "stockMovement.go", "Transfer", "Transaction", map[string]any{"warehouse_id": warehouseId, "item_id": itemId, "store_id": storeId, "quantity": quantity}, err)
		return nil, err
	}

	reports.InvalidateStockCaches(warehouseId, storeId)
	return &result, nil
}

// Sell decrements store stock and appends exactly one Purchase with the
// same quantity. The purchase record exists if and only if the decrement
// committed.
func Sell(ctx context.Context, storeId int, itemId int, quantity int64) (*SaleResult, error) {
	logger := config.GetLogger()

	if quantity <= 0 {
		return nil, utils.ErrInvalidQuantity
	}
	if err := utils.ValidateResourceId[models.Store](ctx, storeId); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[models.Item](ctx, itemId); err != nil {
		return nil, err
	}

	release := obtainStockLocks(ctx, stockLockKey(models.LocationKindStore, storeId, itemId))
	defer release()

	var result SaleResult
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		storeQty, err := models.ApplyDelta(ctx, tx, models.LocationKindStore, storeId, itemId, -quantity)
		if err != nil {
			return err
		}

		purchase, err := models.CreatePurchase(ctx, tx, storeId, itemId, quantity)
		if err != nil {
			return err
		}

		result = SaleResult{
			StoreId:       storeId,
			ItemId:        itemId,
			StoreQuantity: storeQty,
			PurchaseId:    purchase.ID,
		}
		return nil
	})
	if err != nil {
		config.LogError(logger, "stockMovement.go", "Sell", "Transaction", map[string]any{"store_id": storeId, "item_id": itemId, "quantity": quantity}, err)
		return nil, err
	}

	reports.InvalidateStockCaches(0, storeId)
	return &result, nil
}
