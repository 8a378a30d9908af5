package models

import "time"

type Animal struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:50;not null" json:"name"`
	Species     string    `gorm:"column:species;type:varchar(10);default:'cat'" json:"species"`
	Gender      int       `gorm:"column:gender;default:0" json:"gender"` // 0 unknown, 1 male, 2 female
	Description string    `gorm:"column:description;type:text" json:"description"`
	Location    string    `gorm:"column:location;size:100" json:"location"`
	ImageURL    string    `gorm:"column:image_url;size:255" json:"image_url"`
	Status      int       `gorm:"column:status;default:1;index" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Animal) TableName() string {
	return "animals"
}
