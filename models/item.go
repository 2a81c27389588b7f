package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/shopspring/decimal"
)

// Item is a SKU carrying the current wholesale and retail price.
// Valuation and revenue always use the current prices, never a snapshot
// taken at stock or sale time.
type Item struct {
	ID             int             `gorm:"primary_key" json:"id"`
	Title          string          `gorm:"size:100;not null;uniqueIndex" json:"title" binding:"required"`
	WholesalePrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"wholesale_price"`
	RetailPrice    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"retail_price"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewItem struct {
	Title          string          `json:"title" binding:"required"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewItem) validate(ctx context.Context, id int) error {
	// title
	if err := utils.ValidateUnique[Item](ctx, "title", input.Title, id); err != nil {
		return err
	}
	if input.WholesalePrice.IsNegative() || input.RetailPrice.IsNegative() {
		return errors.New("price cannot be negative")
	}
	return nil
}

func CreateItem(ctx context.Context, input *NewItem) (*Item, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	item := Item{
		Title:          input.Title,
		WholesalePrice: input.WholesalePrice,
		RetailPrice:    input.RetailPrice,
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func UpdateItem(ctx context.Context, id int, input *NewItem) (*Item, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	item, err := utils.FetchModel[Item](ctx, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&item).Updates(map[string]interface{}{
		"Title":          input.Title,
		"WholesalePrice": input.WholesalePrice,
		"RetailPrice":    input.RetailPrice,
	}).Error
	if err != nil {
		return nil, err
	}

	return item, nil
}

func DeleteItem(ctx context.Context, id int) (*Item, error) {

	db := config.GetDB()
	result, err := utils.FetchModel[Item](ctx, id)
	if err != nil {
		return nil, err
	}

	// check if item is referenced by stock or sales history
	var count int64
	if err := db.WithContext(ctx).Model(&WarehouseStock{}).
		Where("item_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("item has warehouse stock")
	}
	if err := db.WithContext(ctx).Model(&StoreStock{}).
		Where("item_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("item has store stock")
	}
	if err := db.WithContext(ctx).Model(&Purchase{}).
		Where("item_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("item has purchase history")
	}

	// db action
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetItem(ctx context.Context, id int) (*Item, error) {
	return utils.FetchModel[Item](ctx, id)
}

func ListItem(ctx context.Context, title *string) ([]*Item, error) {

	db := config.GetDB()
	var results []*Item

	dbCtx := db.WithContext(ctx)
	if title != nil && len(*title) > 0 {
		dbCtx = dbCtx.Where("title LIKE ?", "%"+*title+"%")
	}
	// db query
	err := dbCtx.Order("title").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
