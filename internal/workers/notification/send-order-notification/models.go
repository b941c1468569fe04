package sendordernotification

import "laundry-workers/internal/notify"

// Input is an order status change. Email and Phone override the profile's contact details;
// SendEmail and SendSMS override the profile's opt-in flags.
type Input struct {
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId"`
	Status     string `json:"status"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	SendEmail  *bool  `json:"sendEmail,omitempty"`
	SendSMS    *bool  `json:"sendSms,omitempty"`
}

// Output reports each channel attempted. Success is true when at least one channel succeeded.
type Output struct {
	Success   bool            `json:"success"`
	EmailSent bool            `json:"emailSent"`
	SMSSent   bool            `json:"smsSent"`
	Channels  []notify.Result `json:"channels"`
}
