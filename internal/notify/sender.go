// Package notify sends notifications through the configured providers and writes exactly one
// delivery-log row per attempt.
package notify

import (
	"context"
	"fmt"
	"time"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/common/metrics"
	"laundry-workers/internal/common/observability"
	"laundry-workers/internal/models"
	"laundry-workers/internal/notify/delivery"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// LogWriter persists delivery-log rows. A row is either inserted in its final state or inserted
// as pending and resolved once with MarkDelivered.
type LogWriter interface {
	InsertDeliveryLog(ctx context.Context, row models.DeliveryLog) error
	MarkDelivered(ctx context.Context, id string, status models.DeliveryStatus, providerMessageID, errMsg string, at time.Time) error
}

// AuditMirror receives a copy of every written row. It must not fail the attempt.
type AuditMirror interface {
	Mirror(ctx context.Context, row models.DeliveryLog)
}

// Attempt is one message to one recipient on one channel.
type Attempt struct {
	Channel          models.Channel
	NotificationType string
	RecipientID      string
	To               string
	Subject          string
	Body             string
	OrderID          *string
	CampaignID       *string
}

// Result is the outcome of an attempt. LogError is set when the attempt happened but its row
// could not be written.
type Result struct {
	Channel   models.Channel `json:"channel"`
	Success   bool           `json:"success"`
	MessageID string         `json:"messageId,omitempty"`
	Error     string         `json:"error,omitempty"`
	LogID     string         `json:"-"`
	LogError  string         `json:"-"`
}

type Sender struct {
	providers *delivery.Providers
	logs      LogWriter
	audit     AuditMirror
	obs       *observability.Observability
	logger    logger.Logger
	now       func() time.Time
}

type Option func(*Sender)

// WithAudit mirrors every row into the given sink.
func WithAudit(a AuditMirror) Option {
	return func(s *Sender) { s.audit = a }
}

func WithObservability(o *observability.Observability) Option {
	return func(s *Sender) { s.obs = o }
}

// WithClock overrides the row timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Sender) { s.now = now }
}

func NewSender(providers *delivery.Providers, logs LogWriter, log logger.Logger, opts ...Option) *Sender {
	s := &Sender{
		providers: providers,
		logs:      logs,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChannelEnabled reports whether a provider is configured for ch.
func (s *Sender) ChannelEnabled(ch models.Channel) bool {
	switch ch {
	case models.ChannelEmail:
		return s.providers != nil && s.providers.Email != nil
	case models.ChannelSMS:
		return s.providers != nil && s.providers.SMS != nil
	}
	return false
}

// Deliver sends the attempt and logs it. Provider failures are reported on the result, never
// returned, so one recipient's failure cannot abort another's. Attempts that reach a provider are
// logged as pending first, so a crash mid-send still leaves a row behind.
func (s *Sender) Deliver(ctx context.Context, a Attempt) Result {
	ctx, span := observability.Tracer("notify").Start(ctx, "notify.deliver")
	defer span.End()
	span.SetAttributes(
		attribute.String("channel", string(a.Channel)),
		attribute.String("notification_type", a.NotificationType),
	)

	row := s.newRow(a)
	if err := s.preflight(a); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return s.record(ctx, a, row, false, delivery.Receipt{}, err)
	}

	row.Status = models.DeliveryPending
	pending := true
	if err := s.logs.InsertDeliveryLog(ctx, row); err != nil {
		pending = false
		s.logger.Warn("pending delivery row not written", map[string]interface{}{
			"logId": row.ID,
			"error": err.Error(),
		})
	}

	receipt, err := s.send(ctx, a)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return s.record(ctx, a, row, pending, receipt, err)
}

// Fail logs an attempt that could not be made, for example because its template is missing.
func (s *Sender) Fail(ctx context.Context, a Attempt, cause error) Result {
	return s.record(ctx, a, s.newRow(a), false, delivery.Receipt{}, cause)
}

func (s *Sender) preflight(a Attempt) error {
	if a.To == "" {
		return errors.NewValidationError(fmt.Sprintf("no %s address for recipient", a.Channel))
	}
	if !s.ChannelEnabled(a.Channel) {
		return delivery.ErrChannelDisabled
	}
	return nil
}

func (s *Sender) send(ctx context.Context, a Attempt) (delivery.Receipt, error) {
	start := time.Now()
	defer func() {
		metrics.ProviderLatency.WithLabelValues(string(a.Channel)).Observe(time.Since(start).Seconds())
	}()

	if a.Channel == models.ChannelEmail {
		return s.providers.Email.SendEmail(ctx, delivery.EmailMessage{
			From:    s.providers.FromEmail,
			To:      a.To,
			Subject: a.Subject,
			HTML:    a.Body,
		})
	}
	return s.providers.SMS.SendSMS(ctx, delivery.SMSMessage{
		From: s.providers.FromPhone,
		To:   a.To,
		Body: a.Body,
	})
}

func (s *Sender) newRow(a Attempt) models.DeliveryLog {
	now := s.now()
	return models.DeliveryLog{
		ID:               uuid.NewString(),
		RecipientID:      a.RecipientID,
		Recipient:        a.To,
		Channel:          a.Channel,
		NotificationType: a.NotificationType,
		CampaignID:       a.CampaignID,
		OrderID:          a.OrderID,
		Subject:          a.Subject,
		Content:          a.Body,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// record resolves row to its final status and persists it: in place when a pending row was
// written, otherwise as a new row.
func (s *Sender) record(ctx context.Context, a Attempt, row models.DeliveryLog, pending bool, receipt delivery.Receipt, sendErr error) Result {
	row.Status = models.DeliverySent
	row.ProviderMessageID = receipt.MessageID
	row.UpdatedAt = s.now()

	res := Result{Channel: a.Channel, Success: true, MessageID: receipt.MessageID, LogID: row.ID}
	if sendErr != nil {
		row.Status = models.DeliveryFailed
		row.ErrorMessage = sendErr.Error()
		res.Success = false
		res.Error = sendErr.Error()
	}

	fields := map[string]interface{}{
		"channel":          string(a.Channel),
		"notificationType": a.NotificationType,
		"recipientId":      a.RecipientID,
		"status":           string(row.Status),
		"logId":            row.ID,
	}
	if sendErr != nil {
		fields["error"] = sendErr.Error()
		s.logger.Warn("notification failed", fields)
	} else {
		fields["messageId"] = receipt.MessageID
		s.logger.Info("notification sent", fields)
	}

	var err error
	if pending {
		err = s.logs.MarkDelivered(ctx, row.ID, row.Status, row.ProviderMessageID, row.ErrorMessage, row.UpdatedAt)
	} else {
		err = s.logs.InsertDeliveryLog(ctx, row)
	}

	// A failed write is surfaced on the result; the delivery outcome stands.
	if err != nil {
		metrics.DeliveryLogWriteFailures.Inc()
		res.LogError = err.Error()
		s.logger.Error("delivery log write failed", map[string]interface{}{
			"logId": row.ID,
			"error": err.Error(),
		})
	} else if s.audit != nil {
		s.audit.Mirror(ctx, row)
	}

	metrics.NotificationsDelivered.WithLabelValues(string(a.Channel), a.NotificationType, string(row.Status)).Inc()
	s.obs.RecordDelivery(ctx, string(a.Channel), string(row.Status))
	return res
}
