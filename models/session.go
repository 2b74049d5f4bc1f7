package models

import "time"

// Session is an opaque server-side session row. Exactly one of CustomerID
// and AdminID is set; the token is 32 random bytes hex-encoded.
type Session struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Token        string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	CustomerID   *uint     `gorm:"index" json:"customer_id,omitempty"`
	Customer     *Customer `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	AdminID      *uint     `gorm:"index" json:"admin_id,omitempty"`
	Admin        *Admin    `gorm:"foreignKey:AdminID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	UserAgent    string    `gorm:"type:varchar(512)" json:"user_agent"`
	IPAddress    string    `gorm:"type:varchar(45)" json:"ip_address"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`
	LastActivity time.Time `gorm:"not null" json:"last_activity"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}
