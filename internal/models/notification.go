// internal/models/notification.go
package models

import "time"

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelSMS
}

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// Notification types used outside the order-status ones (which reuse the status value).
const (
	TypeNewOrder       = "new_order"
	TypeBroadcast      = "broadcast"
	TypeWasherApproved = "washer_approved"
	TypeWasherRejected = "washer_rejected"
	TypeCampaign       = "campaign"
	TypeTest           = "test"
)

type NotificationTemplate struct {
	ID               string    `json:"id" db:"id"`
	NotificationType string    `json:"notificationType" db:"notification_type"`
	Channel          Channel   `json:"channel" db:"channel"`
	Subject          string    `json:"subject" db:"subject"`
	Message          string    `json:"message" db:"message"`
	IsActive         bool      `json:"isActive" db:"is_active"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// DeliveryLog is one row of the append-only delivery audit trail.
type DeliveryLog struct {
	ID                string         `json:"id" db:"id"`
	RecipientID       string         `json:"recipientId" db:"recipient_id"`
	Recipient         string         `json:"recipient" db:"recipient"`
	Channel           Channel        `json:"channel" db:"channel"`
	NotificationType  string         `json:"notificationType" db:"notification_type"`
	CampaignID        *string        `json:"campaignId,omitempty" db:"campaign_id"`
	OrderID           *string        `json:"orderId,omitempty" db:"order_id"`
	Subject           string         `json:"subject,omitempty" db:"subject"`
	Content           string         `json:"content" db:"content"`
	Status            DeliveryStatus `json:"status" db:"status"`
	ErrorMessage      string         `json:"errorMessage,omitempty" db:"error_message"`
	ProviderMessageID string         `json:"providerMessageId,omitempty" db:"provider_message_id"`
	CreatedAt         time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time      `json:"updatedAt" db:"updated_at"`
}
