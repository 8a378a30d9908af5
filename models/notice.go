package models

import "time"

type Notice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"column:title;size:100;not null" json:"title"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	Type      string    `gorm:"column:type;type:varchar(16);default:'normal'" json:"type"`
	Status    string    `gorm:"column:status;type:varchar(16);default:'active';index" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Notice) TableName() string {
	return "notices"
}
