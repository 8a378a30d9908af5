package models

import "time"

type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OpenID      string     `gorm:"column:openid;type:varchar(64);not null;uniqueIndex" json:"openid"`
	Nickname    string     `gorm:"column:nickname;size:100;not null" json:"nickname"`
	AvatarURL   string     `gorm:"column:avatar_url;size:255" json:"avatar_url"`
	Phone       *string    `gorm:"column:phone;type:varchar(20)" json:"phone,omitempty"`
	Gender      int        `gorm:"column:gender;default:0" json:"gender"` // 0 unknown, 1 male, 2 female
	Status      int        `gorm:"column:status;default:1" json:"status"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
