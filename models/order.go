package models

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order total is frozen at creation from the product price at that instant;
// later price changes never touch existing orders.
type Order struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	OrderNo       string     `gorm:"column:order_no;type:varchar(32);not null;uniqueIndex" json:"order_no"`
	UserID        uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	TotalAmount   float64    `gorm:"column:total_amount;type:decimal(10,2);not null" json:"total_amount"`
	Status        string     `gorm:"column:status;type:varchar(16);default:'pending'" json:"status"`
	PaymentMethod string     `gorm:"column:payment_method;type:varchar(16);default:'wechat'" json:"payment_method"`
	PaymentTime   *time.Time `gorm:"column:payment_time" json:"payment_time,omitempty"`
	Remark        *string    `gorm:"column:remark;type:varchar(255)" json:"remark,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID  uint      `gorm:"column:product_id;not null;index" json:"product_id"`
	Quantity   int       `gorm:"column:quantity;not null" json:"quantity"`
	Price      float64   `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	TotalPrice float64   `gorm:"column:total_price;type:decimal(10,2);not null" json:"total_price"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
