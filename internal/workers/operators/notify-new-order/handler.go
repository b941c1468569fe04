package notifyneworder

import (
	"context"
	"fmt"

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
	TaskType = "notify-new-order"
)

type Store interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ApprovedWashersForZip(ctx context.Context, zip string) ([]models.Washer, error)
}

type Handler struct {
	config    *Config
	store     Store
	templates notify.Templates
	sender    *notify.Sender
	fanout    *notify.FanOut
	logger    logger.Logger
}

func NewHandler(config *Config, store Store, templates notify.Templates, sender *notify.Sender, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		store:     store,
		templates: templates,
		sender:    sender,
		fanout:    notify.NewFanOut(config.MaxConcurrency, config.SendRate, config.SendBurst),
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.HandleJob(client, job, h.config.Timeout, h.logger, h.Execute)
}

type target struct {
	washer  models.Washer
	channel models.Channel
	to      string
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.OrderID == "" {
		return nil, errors.NewValidationError("orderId is required")
	}

	order, err := h.store.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPlaced && order.Status != models.OrderUnclaimed {
		return nil, errors.NewBusinessRuleError("Order is no longer open for claiming",
			fmt.Sprintf("orderId: %s, status: %s", order.ID, order.Status))
	}

	washers, err := h.store.ApprovedWashersForZip(ctx, order.ZipCode)
	if err != nil {
		return nil, err
	}

	// A channel without an active new_order template is not attempted.
	templates := map[models.Channel]*models.NotificationTemplate{}
	for _, ch := range []models.Channel{models.ChannelSMS, models.ChannelEmail} {
		tpl, err := h.templates.GetActiveTemplate(ctx, models.TypeNewOrder, ch)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeTemplateNotFound) {
				continue
			}
			return nil, err
		}
		templates[ch] = tpl
	}
	if len(templates) == 0 {
		return nil, errors.NewTemplateNotFoundError(models.TypeNewOrder, "any")
	}

	var targets []target
	for _, w := range washers {
		if _, ok := templates[models.ChannelSMS]; ok && w.Phone != "" {
			targets = append(targets, target{washer: w, channel: models.ChannelSMS, to: w.Phone})
		}
		if _, ok := templates[models.ChannelEmail]; ok && w.Email != "" {
			targets = append(targets, target{washer: w, channel: models.ChannelEmail, to: w.Email})
		}
	}

	results := make([]RecipientResult, len(targets))
	h.fanout.Run(ctx, len(targets), func(ctx context.Context, i int) {
		results[i] = h.sendOne(ctx, order, templates[targets[i].channel], targets[i])
	})

	out := &Output{OrderID: order.ID, Washers: len(washers), Results: results}
	for _, r := range results {
		if r.Success {
			out.Sent++
		} else {
			out.Failed++
		}
	}
	out.Success = out.Sent > 0 || len(results) == 0

	h.logger.Info("new order broadcast", map[string]interface{}{
		"orderId": order.ID,
		"zipCode": order.ZipCode,
		"washers": out.Washers,
		"sent":    out.Sent,
		"failed":  out.Failed,
	})
	return out, nil
}

func (h *Handler) sendOne(ctx context.Context, o *models.Order, tpl *models.NotificationTemplate, j target) RecipientResult {
	values := template.Values{
		template.TokenOperatorName: models.Profile{FullName: j.washer.FullName}.FirstName(),
		template.TokenServiceName:  o.ServiceName,
		template.TokenZipCode:      o.ZipCode,
		template.TokenEarnings:     template.FormatCents(o.WasherEarningsCents),
		template.TokenExpressBadge: template.ExpressBadge(o.IsExpress),
		template.TokenExpressText:  template.ExpressText(o.IsExpress),
		template.TokenOrderID:      o.ID,
		template.TokenOrderNumber:  o.OrderNumber,
	}

	orderID := o.ID
	res := h.sender.Deliver(ctx, notify.Attempt{
		Channel:          j.channel,
		NotificationType: models.TypeNewOrder,
		RecipientID:      j.washer.UserID,
		To:               j.to,
		Subject:          template.Render(tpl.Subject, values),
		Body:             template.Render(tpl.Message, values),
		OrderID:          &orderID,
	})
	return RecipientResult{
		Success:     res.Success,
		Channel:     j.channel,
		Recipient:   j.to,
		RecipientID: j.washer.UserID,
		Error:       res.Error,
	}
}
