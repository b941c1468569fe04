package sendordernotification

import (
	"context"
	"fmt"

	"laundry-workers/internal/common/camunda"
	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/models"
	"laundry-workers/internal/notify"
	"laundry-workers/internal/notify/template"
	"laundry-workers/internal/orders"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "send-order-notification"
)

// Store is the data the notifier reads.
type Store interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
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
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.OrderID == "" {
		return nil, errors.NewValidationError("orderId is required")
	}
	if input.Status == "" {
		return nil, errors.NewValidationError("status is required")
	}

	order, err := h.store.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	customerID := input.CustomerID
	if customerID == "" {
		customerID = order.CustomerID
	}

	profile, err := h.store.GetProfile(ctx, customerID)
	if err != nil {
		// Explicit contact details are enough to notify without a profile.
		if !errors.IsCode(err, errors.ErrCodeResourceNotFound) || (input.Email == "" && input.Phone == "") {
			return nil, err
		}
		profile = &models.Profile{ID: customerID}
	}

	values := tokenValues(order, profile, input.Status)
	out := &Output{Channels: []notify.Result{}}

	if email, ok := emailTarget(input, profile); ok {
		res := h.deliver(ctx, models.ChannelEmail, input, customerID, email, values)
		out.EmailSent = res.Success
		out.Channels = append(out.Channels, res)
	}
	if phone, ok := smsTarget(input, profile); ok {
		res := h.deliver(ctx, models.ChannelSMS, input, customerID, phone, values)
		out.SMSSent = res.Success
		out.Channels = append(out.Channels, res)
	}

	out.Success = out.EmailSent || out.SMSSent
	h.logger.Info("order notification processed", map[string]interface{}{
		"orderId":   input.OrderID,
		"status":    input.Status,
		"emailSent": out.EmailSent,
		"smsSent":   out.SMSSent,
		"channels":  len(out.Channels),
	})
	return out, nil
}

func (h *Handler) deliver(ctx context.Context, ch models.Channel, input *Input, recipientID, to string, values template.Values) notify.Result {
	orderID := input.OrderID
	attempt := notify.Attempt{
		Channel:          ch,
		NotificationType: input.Status,
		RecipientID:      recipientID,
		To:               to,
		OrderID:          &orderID,
	}

	subject, body, err := notify.Compose(ctx, h.templates, input.Status, ch, values)
	if err != nil {
		return h.sender.Fail(ctx, attempt, err)
	}
	attempt.Subject = subject
	attempt.Body = body
	return h.sender.Deliver(ctx, attempt)
}

func emailTarget(input *Input, p *models.Profile) (string, bool) {
	want := input.Email != "" || p.EmailOptIn
	if input.SendEmail != nil {
		want = *input.SendEmail
	}
	if !want {
		return "", false
	}
	if input.Email != "" {
		return input.Email, true
	}
	return p.Email, true
}

func smsTarget(input *Input, p *models.Profile) (string, bool) {
	want := input.Phone != "" || p.SMSOptIn
	if input.SendSMS != nil {
		want = *input.SendSMS
	}
	if !want {
		return "", false
	}
	if input.Phone != "" {
		return input.Phone, true
	}
	return p.Phone, true
}

func tokenValues(o *models.Order, p *models.Profile, status string) template.Values {
	number := o.OrderNumber
	if number == "" && len(o.ID) >= 8 {
		number = o.ID[:8]
	}
	return template.Values{
		template.TokenCustomerName: p.FirstName(),
		template.TokenOrderID:      o.ID,
		template.TokenOrderNumber:  number,
		template.TokenServiceName:  o.ServiceName,
		template.TokenZipCode:      o.ZipCode,
		template.TokenEarnings:     template.FormatCents(o.WasherEarningsCents),
		template.TokenExpressBadge: template.ExpressBadge(o.IsExpress),
		template.TokenExpressText:  template.ExpressText(o.IsExpress),
		template.TokenStatus:       status,
		template.TokenStatusLabel:  orders.StatusLabel(models.OrderStatus(status)),
		template.TokenMessage:      fmt.Sprintf("Your order is now %s.", orders.StatusLabel(models.OrderStatus(status))),
	}
}
