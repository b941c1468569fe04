package notifyneworder

import "laundry-workers/internal/models"

type Input struct {
	OrderID string `json:"orderId"`
}

type RecipientResult struct {
	Success     bool           `json:"success"`
	Channel     models.Channel `json:"channel"`
	Recipient   string         `json:"recipient"`
	RecipientID string         `json:"recipientId"`
	Error       string         `json:"error,omitempty"`
}

// Output has one result per washer and channel attempted.
type Output struct {
	Success bool              `json:"success"`
	OrderID string            `json:"orderId"`
	Washers int               `json:"washers"`
	Sent    int               `json:"sent"`
	Failed  int               `json:"failed"`
	Results []RecipientResult `json:"results"`
}
