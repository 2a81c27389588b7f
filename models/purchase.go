package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

// Purchase records a customer buying units of an item from a store.
// It is the append-only audit trail behind revenue aggregation: there is
// no update or delete path anywhere in the codebase.
type Purchase struct {
	ID        int       `gorm:"primary_key" json:"id"`
	StoreId   int       `gorm:"index;not null" json:"store_id"`
	ItemId    int       `gorm:"index;not null" json:"item_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// CreatePurchase appends a sale record inside the caller's transaction.
// Callers (the movement engine) guarantee the paired stock decrement
// committed in the same transaction.
func CreatePurchase(ctx context.Context, tx *gorm.DB, storeId int, itemId int, quantity int64) (*Purchase, error) {
	if quantity <= 0 {
		return nil, utils.ErrInvalidQuantity
	}

	purchase := Purchase{
		StoreId:  storeId,
		ItemId:   itemId,
		Quantity: quantity,
	}
	if err := tx.WithContext(ctx).Create(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	return utils.FetchModel[Purchase](ctx, id)
}

// ListPurchase returns sale records, optionally narrowed to one store.
func ListPurchase(ctx context.Context, storeId *int) ([]*Purchase, error) {

	db := config.GetDB()
	var results []*Purchase

	dbCtx := db.WithContext(ctx)
	if storeId != nil && *storeId > 0 {
		dbCtx = dbCtx.Where("store_id = ?", *storeId)
	}
	// db query
	err := dbCtx.Order("id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
