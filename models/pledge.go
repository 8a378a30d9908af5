package models

import "time"

// Pledge state machine: pending -> completed (terminal) or
// pending -> failed (terminal). Nothing leaves completed; a pledge with no
// confirmation stays pending indefinitely. The failed state is only ever
// set by manual intervention, no request path writes it.
const (
	PledgeStatusPending   = "pending"
	PledgeStatusCompleted = "completed"
	PledgeStatusFailed    = "failed"
)

type Pledge struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CampaignID    uint      `gorm:"column:donation_id;not null;index" json:"donation_id"`
	UserID        uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Amount        float64   `gorm:"column:amount;type:decimal(10,2);not null" json:"amount"`
	PaymentMethod string    `gorm:"column:payment_method;type:varchar(16);default:'wechat'" json:"payment_method"`
	TransactionID *string   `gorm:"column:transaction_id;type:varchar(64)" json:"transaction_id,omitempty"`
	Status        string    `gorm:"column:status;type:varchar(16);default:'pending'" json:"status"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Pledge) TableName() string {
	return "donation_records"
}
