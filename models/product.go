package models

import "time"

const (
	ProductStatusActive   = 1
	ProductStatusInactive = 0
)

// Product stock only ever decreases and sales only ever increases; the two
// move together by the order quantity inside the settlement transaction.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:100;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Category    string    `gorm:"column:category;size:50;index" json:"category"`
	Price       float64   `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	Stock       int       `gorm:"column:stock;not null;default:0" json:"stock"`
	Sales       int       `gorm:"column:sales;not null;default:0" json:"sales"`
	ImageURL    string    `gorm:"column:image_url;size:255" json:"image_url"`
	Status      int       `gorm:"column:status;default:1;index" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
