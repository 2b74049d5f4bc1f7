package models

import "time"

type Admin struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          *string   `gorm:"type:varchar(100)" json:"name,omitempty"`
	Username      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email         *string   `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	Password      string    `gorm:"type:varchar(255);not null" json:"-"`
	IsOrderAccept bool      `gorm:"not null" json:"is_order_accept"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"-"`
}
