package sendtestnotification

import (
	"context"

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
	TaskType = "send-test-notification"
)

// SampleValues fill every token so an operator can see the whole template rendered.
var SampleValues = template.Values{
	template.TokenCustomerName: "Jordan",
	template.TokenOperatorName: "Sam",
	template.TokenServiceName:  "Wash & Fold",
	template.TokenZipCode:      "94107",
	template.TokenEarnings:     template.FormatCents(2450),
	template.TokenOrderID:      "00000000-0000-0000-0000-000000000000",
	template.TokenOrderNumber:  "LW-TEST",
	template.TokenExpressBadge: template.ExpressBadge(true),
	template.TokenExpressText:  template.ExpressText(true),
	template.TokenMessage:      "This is a test notification.",
	template.TokenStatus:       string(models.OrderPickedUp),
	template.TokenStatusLabel:  "Picked Up",
}

type Handler struct {
	config    *Config
	templates notify.Templates
	sender    *notify.Sender
	logger    logger.Logger
}

func NewHandler(config *Config, templates notify.Templates, sender *notify.Sender, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		templates: templates,
		sender:    sender,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.HandleJob(client, job, h.config.Timeout, h.logger, h.Execute)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ch := models.Channel(input.Channel)
	if !ch.Valid() {
		return nil, errors.NewValidationError("channel must be email or sms")
	}
	if input.NotificationType == "" || input.To == "" {
		return nil, errors.NewValidationError("notificationType and to are required")
	}

	values := make(template.Values, len(SampleValues)+len(input.Values))
	for k, v := range SampleValues {
		values[k] = v
	}
	for k, v := range input.Values {
		values[k] = v
	}

	attempt := notify.Attempt{
		Channel:          ch,
		NotificationType: models.TypeTest,
		RecipientID:      input.RequestedBy,
		To:               input.To,
	}

	subject, body, err := notify.Compose(ctx, h.templates, input.NotificationType, ch, values)
	if err != nil {
		h.sender.Fail(ctx, attempt, err)
		return nil, err
	}
	attempt.Subject = subject
	attempt.Body = body

	res := h.sender.Deliver(ctx, attempt)

	return &Output{
		Success:   res.Success,
		MessageID: res.MessageID,
		Error:     res.Error,
		Subject:   subject,
		Body:      body,
	}, nil
}
