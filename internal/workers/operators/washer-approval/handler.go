package washerapproval

import (
	"context"
	"fmt"
	"time"

	"laundry-workers/internal/common/camunda"
	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/models"
	"laundry-workers/internal/notify"
	"laundry-workers/internal/notify/template"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "washer-approval"
)

type Store interface {
	GetWasher(ctx context.Context, id string) (*models.Washer, error)
	SetWasherStatus(ctx context.Context, id string, status models.WasherStatus, reason string, at time.Time) error
}

type Handler struct {
	config    *Config
	store     Store
	templates notify.Templates
	sender    *notify.Sender
	logger    logger.Logger
}

func NewHandler(config *Config, store Store, templates notify.Templates, sender *notify.Sender, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		store:     store,
		templates: templates,
		sender:    sender,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.HandleJob(client, job, h.config.Timeout, h.logger, h.Execute)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.WasherID == "" {
		return nil, errors.NewValidationError("washerId is required")
	}
	if !input.Approved && input.Reason == "" {
		return nil, errors.NewValidationError("reason is required when rejecting a washer")
	}

	washer, err := h.store.GetWasher(ctx, input.WasherID)
	if err != nil {
		return nil, err
	}

	status, notificationType := models.WasherApproved, models.TypeWasherApproved
	if !input.Approved {
		status, notificationType = models.WasherRejected, models.TypeWasherRejected
	}
	if washer.Status == status {
		return nil, errors.NewBusinessRuleError("Washer already has this status",
			fmt.Sprintf("washerId: %s, status: %s", washer.ID, status))
	}

	if err := h.store.SetWasherStatus(ctx, washer.ID, status, input.Reason, time.Now().UTC()); err != nil {
		return nil, err
	}

	h.logger.Info("washer reviewed", map[string]interface{}{
		"washerId":   washer.ID,
		"status":     string(status),
		"reviewedBy": input.ReviewedBy,
	})

	values := template.Values{
		template.TokenOperatorName: models.Profile{FullName: washer.FullName}.FirstName(),
		template.TokenMessage:      input.Reason,
	}

	out := &Output{WasherID: washer.ID, Status: status, Notifications: []notify.Result{}}
	if washer.Email != "" {
		out.Notifications = append(out.Notifications, h.send(ctx, models.ChannelEmail, notificationType, washer, washer.Email, values))
	}
	if washer.Phone != "" {
		out.Notifications = append(out.Notifications, h.send(ctx, models.ChannelSMS, notificationType, washer, washer.Phone, values))
	}

	// The decision is persisted; notification failures are reported, not returned.
	out.Success = true
	return out, nil
}

func (h *Handler) send(ctx context.Context, ch models.Channel, notificationType string, w *models.Washer, to string, values template.Values) notify.Result {
	attempt := notify.Attempt{
		Channel:          ch,
		NotificationType: notificationType,
		RecipientID:      w.UserID,
		To:               to,
	}
	subject, body, err := notify.Compose(ctx, h.templates, notificationType, ch, values)
	if err != nil {
		return h.sender.Fail(ctx, attempt, err)
	}
	attempt.Subject = subject
	attempt.Body = body
	return h.sender.Deliver(ctx, attempt)
}
