// Package delivery holds the email and SMS provider adapters.
package delivery

import (
	"context"
	stderrors "errors"
	"fmt"
)

// ErrChannelDisabled is returned when a channel has no configured provider.
var ErrChannelDisabled = stderrors.New("channel disabled")

// Receipt is what a provider returns for an accepted message.
type Receipt struct {
	MessageID string
}

type EmailMessage struct {
	From    string
	To      string
	Subject string
	HTML    string
}

type SMSMessage struct {
	From string
	To   string
	Body string
}

type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) (Receipt, error)
}

type SMSSender interface {
	SendSMS(ctx context.Context, msg SMSMessage) (Receipt, error)
}

// ProviderError is a rejection reported by a provider, as opposed to a transport failure.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}
