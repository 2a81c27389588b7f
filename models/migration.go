package models

import (
	"log"

	"github.com/mmdatafocus/inventory_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Item{},
		&Warehouse{}, &WarehouseStock{},
		&Store{}, &StoreStock{},
		&Purchase{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
