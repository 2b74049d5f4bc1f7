package models

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentCompleted
}

type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodOnline
}

// Payment is one-to-one with its order. Payment status evolves independently
// of order status: marking a payment completed never transitions the order.
type Payment struct {
	ID               uint          `gorm:"primaryKey" json:"payment_id"`
	OrderID          uint          `gorm:"uniqueIndex;not null" json:"order_id"`
	Order            Order         `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Amount           float64       `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status           PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	Method           PaymentMethod `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	GatewayPaymentID *string       `gorm:"type:varchar(100)" json:"razorpay_payment_id,omitempty"`
	CreatedAt        time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null" json:"-"`
}
