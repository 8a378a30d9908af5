package models

import "time"

// Campaign lifecycle. A campaign flips to completed exactly when its
// current amount reaches the target, and never flips back.
const (
	CampaignStatusActive    = "active"
	CampaignStatusCompleted = "completed"
	CampaignStatusCancelled = "cancelled"
)

type Campaign struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AnimalID      *uint     `gorm:"column:animal_id;index" json:"animal_id,omitempty"`
	Title         string    `gorm:"column:title;size:100;not null" json:"title"`
	Description   string    `gorm:"column:description;type:text" json:"description"`
	TargetAmount  float64   `gorm:"column:target_amount;type:decimal(10,2);not null" json:"target_amount"`
	CurrentAmount float64   `gorm:"column:current_amount;type:decimal(10,2);not null;default:0.00" json:"current_amount"`
	Status        string    `gorm:"column:status;type:varchar(16);default:'active';index" json:"status"`
	CreatedBy     *uint     `gorm:"column:created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Animal *Animal `gorm:"foreignKey:AnimalID" json:"animal,omitempty"`
}

func (Campaign) TableName() string {
	return "donations"
}
