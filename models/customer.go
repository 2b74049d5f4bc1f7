package models

import "time"

type Customer struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	Phone     string     `gorm:"type:varchar(10);uniqueIndex;not null" json:"phone"`
	DOB       *time.Time `gorm:"type:date" json:"dob,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"-"`
}
