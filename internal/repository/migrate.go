package repository

import (
	"go-inventory-tracker/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the tables backing every repository.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Product{},
		&model.Transaction{},
		&model.TransactionItem{},
		&model.InventoryItem{},
	)
}
