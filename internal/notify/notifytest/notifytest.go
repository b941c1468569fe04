// Package notifytest provides in-memory providers and delivery logs for tests.
package notifytest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/models"
	"laundry-workers/internal/notify/delivery"
)

// EmailSender records messages and answers with SendEmailFunc, or a generated id when unset.
type EmailSender struct {
	SendEmailFunc func(ctx context.Context, msg delivery.EmailMessage) (delivery.Receipt, error)

	mu   sync.Mutex
	Sent []delivery.EmailMessage
}

func (m *EmailSender) SendEmail(ctx context.Context, msg delivery.EmailMessage) (delivery.Receipt, error) {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	n := len(m.Sent)
	m.mu.Unlock()

	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, msg)
	}
	return delivery.Receipt{MessageID: fmt.Sprintf("email-%d", n)}, nil
}

// Messages returns a copy of the recorded messages.
func (m *EmailSender) Messages() []delivery.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]delivery.EmailMessage(nil), m.Sent...)
}

// SMSSender records messages and answers with SendSMSFunc, or a generated id when unset.
type SMSSender struct {
	SendSMSFunc func(ctx context.Context, msg delivery.SMSMessage) (delivery.Receipt, error)

	mu   sync.Mutex
	Sent []delivery.SMSMessage
}

func (m *SMSSender) SendSMS(ctx context.Context, msg delivery.SMSMessage) (delivery.Receipt, error) {
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	n := len(m.Sent)
	m.mu.Unlock()

	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(ctx, msg)
	}
	return delivery.Receipt{MessageID: fmt.Sprintf("sms-%d", n)}, nil
}

func (m *SMSSender) Messages() []delivery.SMSMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]delivery.SMSMessage(nil), m.Sent...)
}

// Log is an in-memory delivery log. Err, when set, fails every write; MarkErr fails only the
// pending-row resolution.
type Log struct {
	Err     error
	MarkErr error

	mu   sync.Mutex
	rows []models.DeliveryLog
}

func (l *Log) InsertDeliveryLog(ctx context.Context, row models.DeliveryLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.rows = append(l.rows, row)
	return nil
}

func (l *Log) MarkDelivered(ctx context.Context, id string, status models.DeliveryStatus, providerMessageID, errMsg string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	if l.MarkErr != nil {
		return l.MarkErr
	}
	for i := range l.rows {
		if l.rows[i].ID != id {
			continue
		}
		if l.rows[i].Status != models.DeliveryPending {
			return errors.NewBusinessRuleError("Delivery log row is not pending", fmt.Sprintf("id: %s", id))
		}
		l.rows[i].Status = status
		l.rows[i].ProviderMessageID = providerMessageID
		l.rows[i].ErrorMessage = errMsg
		l.rows[i].UpdatedAt = at
		return nil
	}
	return errors.NewResourceNotFoundError("Delivery log row", fmt.Sprintf("id: %s", id))
}

func (l *Log) Rows() []models.DeliveryLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.DeliveryLog(nil), l.rows...)
}

// ByRecipient returns the rows written for recipientID.
func (l *Log) ByRecipient(recipientID string) []models.DeliveryLog {
	var out []models.DeliveryLog
	for _, r := range l.Rows() {
		if r.RecipientID == recipientID {
			out = append(out, r)
		}
	}
	return out
}

// Templates is a map-backed template source keyed by "type:channel".
type Templates map[string]models.NotificationTemplate

func (t Templates) Add(notificationType string, channel models.Channel, subject, message string) Templates {
	t[notificationType+":"+string(channel)] = models.NotificationTemplate{
		ID:               notificationType + "-" + string(channel),
		NotificationType: notificationType,
		Channel:          channel,
		Subject:          subject,
		Message:          message,
		IsActive:         true,
	}
	return t
}

func (t Templates) GetActiveTemplate(ctx context.Context, notificationType string, channel models.Channel) (*models.NotificationTemplate, error) {
	tpl, ok := t[notificationType+":"+string(channel)]
	if !ok || !tpl.IsActive {
		return nil, errors.NewTemplateNotFoundError(notificationType, string(channel))
	}
	return &tpl, nil
}
