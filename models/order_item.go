package models

import "time"

type OrderItem struct {
	ID      uint  `gorm:"primaryKey" json:"order_item_id"`
	OrderID uint  `gorm:"not null;index" json:"order_id"`
	Order   Order `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ItemID  uint  `gorm:"not null;index" json:"item_id"`
	// RESTRICT keeps menu items undeletable while order lines reference them.
	Item     MenuItem `gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Quantity int      `gorm:"not null" json:"quantity"`
	// Price is the unit price frozen at order time. It intentionally does
	// not track later menu price changes.
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
}
