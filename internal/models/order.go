// internal/models/order.go
package models

import "time"

// OrderStatus is the coarse order status stored on the order row.
type OrderStatus string

const (
	OrderPlaced     OrderStatus = "placed"
	OrderUnclaimed  OrderStatus = "unclaimed"
	OrderClaimed    OrderStatus = "claimed"
	OrderPickedUp   OrderStatus = "picked_up"
	OrderInProgress OrderStatus = "in_progress"
	OrderWashed     OrderStatus = "washed"
	OrderFolded     OrderStatus = "folded"
	OrderCompleted  OrderStatus = "completed"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// InactiveOrderStatuses are the statuses that no longer block account deletion.
var InactiveOrderStatuses = []OrderStatus{OrderCompleted, OrderDelivered, OrderCancelled}

// IsActive reports whether an order in this status is still being worked on.
func (s OrderStatus) IsActive() bool {
	for _, st := range InactiveOrderStatuses {
		if s == st {
			return false
		}
	}
	return true
}

type Order struct {
	ID                  string      `json:"id" db:"id"`
	OrderNumber         string      `json:"orderNumber" db:"order_number"`
	CustomerID          string      `json:"customerId" db:"customer_id"`
	WasherID            *string     `json:"washerId,omitempty" db:"washer_id"`
	Status              OrderStatus `json:"status" db:"status"`
	StatusStep          *int        `json:"statusStep,omitempty" db:"status_step"`
	ServiceName         string      `json:"serviceName" db:"service_name"`
	ZipCode             string      `json:"zipCode" db:"zip_code"`
	TotalCents          int64       `json:"totalCents" db:"total_cents"`
	WasherEarningsCents int64       `json:"washerEarningsCents" db:"washer_earnings_cents"`
	IsExpress           bool        `json:"isExpress" db:"is_express"`
	CreatedAt           time.Time   `json:"createdAt" db:"created_at"`
	ClaimedAt           *time.Time  `json:"claimedAt,omitempty" db:"claimed_at"`
	CompletedAt         *time.Time  `json:"completedAt,omitempty" db:"completed_at"`
}
