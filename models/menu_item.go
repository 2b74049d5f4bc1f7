package models

import "time"

type MenuItem struct {
	ID          uint         `gorm:"primaryKey" json:"item_id"`
	Name        string       `gorm:"type:varchar(255);not null" json:"item_name"`
	CategoryID  uint         `gorm:"not null;index" json:"category_id"`
	Category    MenuCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Price       float64      `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL    *string      `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	Description *string      `gorm:"type:text" json:"description,omitempty"`
	IsAvailable bool         `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time    `gorm:"not null" json:"-"`
	UpdatedAt   time.Time    `gorm:"not null" json:"-"`
}
