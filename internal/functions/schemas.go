package functions

import "laundry-workers/internal/common/validation"

var (
	SendOrderNotificationSchema = validation.MustCompile("send-order-notification", `{
		"type": "object",
		"required": ["orderId", "status"],
		"properties": {
			"orderId": {"type": "string", "minLength": 1},
			"customerId": {"type": "string"},
			"status": {"type": "string", "minLength": 1},
			"email": {"type": "string"},
			"phone": {"type": "string"},
			"sendEmail": {"type": "boolean"},
			"sendSms": {"type": "boolean"}
		}
	}`)

	SendTestNotificationSchema = validation.MustCompile("send-test-notification", `{
		"type": "object",
		"required": ["notificationType", "channel", "to"],
		"properties": {
			"notificationType": {"type": "string", "minLength": 1},
			"channel": {"enum": ["email", "sms"]},
			"to": {"type": "string", "minLength": 1},
			"values": {"type": "object", "additionalProperties": {"type": "string"}}
		}
	}`)

	DispatchCampaignSchema = validation.MustCompile("dispatch-campaign", `{
		"type": "object",
		"required": ["campaignId"],
		"properties": {
			"campaignId": {"type": "string", "minLength": 1},
			"customerId": {"type": "string"}
		}
	}`)

	BehavioralTriggersSchema = validation.MustCompile("run-behavioral-triggers", `{
		"type": "object",
		"properties": {
			"triggerId": {"type": "string"},
			"dryRun": {"type": "boolean"}
		}
	}`)

	NotifyNewOrderSchema = validation.MustCompile("notify-new-order", `{
		"type": "object",
		"required": ["orderId"],
		"properties": {
			"orderId": {"type": "string", "minLength": 1}
		}
	}`)

	WasherApprovalSchema = validation.MustCompile("washer-approval", `{
		"type": "object",
		"required": ["washerId", "approved"],
		"properties": {
			"washerId": {"type": "string", "minLength": 1},
			"approved": {"type": "boolean"},
			"reason": {"type": "string"}
		}
	}`)

	RequestDeletionSchema = validation.MustCompile("request-account-deletion", `{
		"type": "object",
		"properties": {
			"reason": {"type": "string", "maxLength": 1000}
		}
	}`)

	UpdateOrderStatusSchema = validation.MustCompile("update-order-status", `{
		"type": "object",
		"required": ["orderId"],
		"anyOf": [{"required": ["status"]}, {"required": ["statusStep"]}],
		"properties": {
			"orderId": {"type": "string", "minLength": 1},
			"status": {"enum": ["placed", "unclaimed", "claimed", "picked_up", "in_progress", "washed", "folded", "completed", "delivered", "cancelled"]},
			"statusStep": {"type": "integer", "minimum": 1, "maximum": 13},
			"notify": {"type": "boolean"}
		}
	}`)
)
