package models

import "time"

type MenuCategory struct {
	ID        uint      `gorm:"primaryKey" json:"category_id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"category_name"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}
