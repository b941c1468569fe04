package updateorderstatus

import (
	"laundry-workers/internal/orders"
	sendordernotification "laundry-workers/internal/workers/notification/send-order-notification"
)

// Input moves an order to Status and/or StatusStep. Notify defaults to true and only applies
// when the status changes.
type Input struct {
	OrderID    string `json:"orderId"`
	Status     string `json:"status,omitempty"`
	StatusStep *int   `json:"statusStep,omitempty"`
	Notify     *bool  `json:"notify,omitempty"`
}

type Output struct {
	Success           bool                          `json:"success"`
	OrderID           string                        `json:"orderId"`
	PreviousStatus    string                        `json:"previousStatus"`
	Status            string                        `json:"status"`
	Progress          orders.Progress               `json:"progress"`
	Notification      *sendordernotification.Output `json:"notification,omitempty"`
	NotificationError string                        `json:"notificationError,omitempty"`
}
