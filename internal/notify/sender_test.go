package notify

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/models"
	"laundry-workers/internal/notify/delivery"
	"laundry-workers/internal/notify/notifytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryMirror struct {
	rows []models.DeliveryLog
}

func (m *memoryMirror) Mirror(ctx context.Context, row models.DeliveryLog) {
	m.rows = append(m.rows, row)
}

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestDeliver_EmailSuccess(t *testing.T) {
	var got delivery.EmailMessage
	providers := &delivery.Providers{
		FromEmail: "hello@laundry.example",
		Email: &notifytest.EmailSender{SendEmailFunc: func(ctx context.Context, msg delivery.EmailMessage) (delivery.Receipt, error) {
			got = msg
			return delivery.Receipt{MessageID: "em-1"}, nil
		}},
	}
	logs := &notifytest.Log{}
	mirror := &memoryMirror{}
	s := NewSender(providers, logs, logger.NewTestLogger(t), WithAudit(mirror), WithClock(func() time.Time { return fixedNow }))

	orderID := "order-1"
	res := s.Deliver(context.Background(), Attempt{
		Channel:          models.ChannelEmail,
		NotificationType: "picked_up",
		RecipientID:      "cust-1",
		To:               "ada@example.com",
		Subject:          "Picked up",
		Body:             "<p>On its way</p>",
		OrderID:          &orderID,
	})

	assert.True(t, res.Success)
	assert.Equal(t, "em-1", res.MessageID)
	assert.Equal(t, "hello@laundry.example", got.From)
	assert.Equal(t, "ada@example.com", got.To)

	require.Len(t, logs.Rows(), 1)
	row := logs.Rows()[0]
	assert.Equal(t, models.DeliverySent, row.Status)
	assert.Equal(t, "em-1", row.ProviderMessageID)
	assert.Equal(t, &orderID, row.OrderID)
	assert.Equal(t, fixedNow, row.CreatedAt)
	assert.Equal(t, res.LogID, row.ID)
	assert.Len(t, mirror.rows, 1)
}

func TestDeliver_ProviderFailureIsLogged(t *testing.T) {
	providers := &delivery.Providers{
		SMS: &notifytest.SMSSender{SendSMSFunc: func(ctx context.Context, msg delivery.SMSMessage) (delivery.Receipt, error) {
			return delivery.Receipt{}, &delivery.ProviderError{Provider: "sms-gateway", StatusCode: 400, Message: "invalid number"}
		}},
	}
	logs := &notifytest.Log{}
	s := NewSender(providers, logs, logger.NewTestLogger(t))

	res := s.Deliver(context.Background(), Attempt{Channel: models.ChannelSMS, NotificationType: "campaign", RecipientID: "cust-2", To: "+1", Body: "hi"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "invalid number")
	require.Len(t, logs.Rows(), 1)
	assert.Equal(t, models.DeliveryFailed, logs.Rows()[0].Status)
	assert.Contains(t, logs.Rows()[0].ErrorMessage, "invalid number")
}

func TestDeliver_PreflightFailures(t *testing.T) {
	tests := []struct {
		name      string
		providers *delivery.Providers
		attempt   Attempt
		wantErr   string
	}{
		{
			name:      "channel disabled",
			providers: &delivery.Providers{},
			attempt:   Attempt{Channel: models.ChannelSMS, To: "+15550001", Body: "x"},
			wantErr:   "channel disabled",
		},
		{
			name: "missing address",
			providers: &delivery.Providers{Email: &notifytest.EmailSender{SendEmailFunc: func(ctx context.Context, msg delivery.EmailMessage) (delivery.Receipt, error) {
				t.Fatal("provider must not be called")
				return delivery.Receipt{}, nil
			}}},
			attempt: Attempt{Channel: models.ChannelEmail, Body: "x"},
			wantErr: "no email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := &notifytest.Log{}
			s := NewSender(tt.providers, logs, logger.NewTestLogger(t))

			res := s.Deliver(context.Background(), tt.attempt)
			assert.False(t, res.Success)
			require.Len(t, logs.Rows(), 1)
			assert.Equal(t, models.DeliveryFailed, logs.Rows()[0].Status)
			assert.Contains(t, logs.Rows()[0].ErrorMessage, tt.wantErr)
		})
	}
}

func TestDeliver_LogWriteFailureKeepsSuccess(t *testing.T) {
	providers := &delivery.Providers{
		Email: &notifytest.EmailSender{SendEmailFunc: func(ctx context.Context, msg delivery.EmailMessage) (delivery.Receipt, error) {
			return delivery.Receipt{MessageID: "em-9"}, nil
		}},
	}
	mirror := &memoryMirror{}
	s := NewSender(providers, &notifytest.Log{Err: stderrors.New("db down")}, logger.NewTestLogger(t), WithAudit(mirror))

	res := s.Deliver(context.Background(), Attempt{Channel: models.ChannelEmail, To: "a@example.com", Body: "x"})

	assert.True(t, res.Success)
	assert.Equal(t, "db down", res.LogError)
	assert.Empty(t, mirror.rows)
}

func TestDeliver_PendingRowResolvedInPlace(t *testing.T) {
	var seen []models.DeliveryStatus
	logs := &notifytest.Log{}
	providers := &delivery.Providers{
		SMS: &notifytest.SMSSender{SendSMSFunc: func(ctx context.Context, msg delivery.SMSMessage) (delivery.Receipt, error) {
			for _, r := range logs.Rows() {
				seen = append(seen, r.Status)
			}
			return delivery.Receipt{MessageID: "sms-7"}, nil
		}},
	}
	s := NewSender(providers, logs, logger.NewTestLogger(t))

	res := s.Deliver(context.Background(), Attempt{Channel: models.ChannelSMS, NotificationType: "washed", RecipientID: "cust-1", To: "+15550001", Body: "hi"})

	require.True(t, res.Success)
	assert.Equal(t, []models.DeliveryStatus{models.DeliveryPending}, seen)
	require.Len(t, logs.Rows(), 1)
	assert.Equal(t, models.DeliverySent, logs.Rows()[0].Status)
	assert.Equal(t, "sms-7", logs.Rows()[0].ProviderMessageID)
}

func TestDeliver_ResolveFailureLeavesPendingRow(t *testing.T) {
	logs := &notifytest.Log{MarkErr: stderrors.New("connection reset")}
	mirror := &memoryMirror{}
	providers := &delivery.Providers{Email: &notifytest.EmailSender{}}
	s := NewSender(providers, logs, logger.NewTestLogger(t), WithAudit(mirror))

	res := s.Deliver(context.Background(), Attempt{Channel: models.ChannelEmail, To: "a@example.com", Body: "x"})

	assert.True(t, res.Success)
	assert.Equal(t, "connection reset", res.LogError)
	require.Len(t, logs.Rows(), 1)
	assert.Equal(t, models.DeliveryPending, logs.Rows()[0].Status)
	assert.Empty(t, mirror.rows)
}

func TestFail_WritesFailedRow(t *testing.T) {
	logs := &notifytest.Log{}
	s := NewSender(&delivery.Providers{}, logs, logger.NewTestLogger(t))

	res := s.Fail(context.Background(), Attempt{Channel: models.ChannelSMS, NotificationType: "washed", To: "+1"}, stderrors.New("template missing"))

	assert.False(t, res.Success)
	require.Len(t, logs.Rows(), 1)
	assert.Equal(t, "template missing", logs.Rows()[0].ErrorMessage)
}

func TestChannelEnabled(t *testing.T) {
	s := NewSender(&delivery.Providers{Email: &notifytest.EmailSender{}}, &notifytest.Log{}, logger.NewNoOpLogger())
	assert.True(t, s.ChannelEnabled(models.ChannelEmail))
	assert.False(t, s.ChannelEnabled(models.ChannelSMS))
	assert.False(t, s.ChannelEnabled(models.Channel("push")))
}
