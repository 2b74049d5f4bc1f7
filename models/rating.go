package models

import "time"

// Rating targets exactly one of a menu item or an order. The composite
// unique indexes back the one-rating-per-target-per-customer rule.
type Rating struct {
	ID         uint      `gorm:"primaryKey" json:"rating_id"`
	CustomerID uint      `gorm:"not null;index;uniqueIndex:idx_customer_item;uniqueIndex:idx_customer_order" json:"customer_id"`
	Customer   Customer  `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Value      int       `gorm:"not null" json:"rating_value"`
	ReviewText *string   `gorm:"type:text" json:"review_text,omitempty"`
	ItemID     *uint     `gorm:"uniqueIndex:idx_customer_item" json:"item_id,omitempty"`
	Item       *MenuItem `gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	OrderID    *uint     `gorm:"uniqueIndex:idx_customer_order" json:"order_id,omitempty"`
	Order      *Order    `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}
