package database

import (
	"gorm.io/gorm"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/models"
)

// AutoMigrate creates or updates the schema for every entity. Run in
// development only; production schemas change by hand.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Animal{},
		&models.Campaign{},
		&models.Pledge{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Comment{},
		&models.Notice{},
	)
}
