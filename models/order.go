package models

import (
	"fmt"
	"time"
)

// OrderStatus is the closed set of order lifecycle states.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// ActiveStatuses are the non-terminal states that keep a table occupied.
func ActiveStatuses() []OrderStatus {
	return []OrderStatus{OrderPending, OrderPreparing, OrderReady}
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further mutation of the order is permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

type Order struct {
	ID          uint        `gorm:"primaryKey" json:"order_id"`
	CustomerID  uint        `gorm:"not null;index" json:"customer_id"`
	Customer    Customer    `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TableNumber string      `gorm:"type:varchar(50);not null;index" json:"table_number"`
	TotalAmount float64     `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	// ActiveTableKey is "<table>@<yyyy-mm-dd>" while the order is in a
	// non-terminal status and NULL afterwards. The unique index is the
	// storage-level backstop for the one-active-order-per-table-per-day
	// rule; the application-level check alone is a check-then-act race.
	ActiveTableKey *string     `gorm:"type:varchar(72);uniqueIndex" json:"-"`
	OrderItems     []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt      time.Time   `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null" json:"-"`
}

// TableKeyFor builds the occupancy key for a table on a given day.
func TableKeyFor(tableNumber string, day time.Time) string {
	return fmt.Sprintf("%s@%s", tableNumber, day.Format("2006-01-02"))
}
