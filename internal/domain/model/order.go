package model

import "time"

// OrderStatus describes payment lifecycle. The transition is one-way:
// a completed order never reverts to pending.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// Order describes a purchase tracked from checkout creation to payment confirmation.
type Order struct {
	Code        int64
	Status      OrderStatus
	Amount      int64
	Description string
	LicenseKey  *string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Completed reports whether payment for the order has been confirmed.
func (o *Order) Completed() bool {
	return o.Status == OrderStatusCompleted
}
