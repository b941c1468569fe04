package updateorderstatus

import (
	"context"
	"time"

	"laundry-workers/internal/common/camunda"
	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/models"
	"laundry-workers/internal/orders"
	sendordernotification "laundry-workers/internal/workers/notification/send-order-notification"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "update-order-status"
)

type Store interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, expected, next models.OrderStatus, step *int, at time.Time) error
}

// Notifier sends the customer notification for a status change.
type Notifier interface {
	Execute(ctx context.Context, input *sendordernotification.Input) (*sendordernotification.Output, error)
}

type Handler struct {
	config   *Config
	store    Store
	notifier Notifier
	now      func() time.Time
	logger   logger.Logger
}

func NewHandler(config *Config, store Store, notifier Notifier, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.HandleJob(client, job, h.config.Timeout, h.logger, h.Execute)
}

// Execute validates and persists the change, then notifies the customer. A failed notification
// does not undo the update.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.OrderID == "" {
		return nil, errors.NewValidationError("orderId is required")
	}
	if input.Status == "" && input.StatusStep == nil {
		return nil, errors.NewValidationError("status or statusStep is required")
	}

	order, err := h.store.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	next := order.Status
	if input.Status != "" && models.OrderStatus(input.Status) != order.Status {
		next = models.OrderStatus(input.Status)
		if err := orders.CheckTransition(order.Status, next); err != nil {
			return nil, err
		}
	}
	if input.StatusStep != nil {
		if err := orders.CheckStep(order.StatusStep, *input.StatusStep); err != nil {
			return nil, err
		}
	}

	if err := h.store.UpdateOrderStatus(ctx, order.ID, order.Status, next, input.StatusStep, h.now()); err != nil {
		return nil, err
	}

	previous := order.Status
	order.Status = next
	if input.StatusStep != nil {
		order.StatusStep = input.StatusStep
	}

	out := &Output{
		Success:        true,
		OrderID:        order.ID,
		PreviousStatus: string(previous),
		Status:         string(next),
		Progress:       orders.OrderProgress(*order),
	}

	h.logger.Info("order status updated", map[string]interface{}{
		"orderId": order.ID,
		"from":    previous,
		"to":      next,
		"step":    out.Progress.Step,
	})

	if next == previous || (input.Notify != nil && !*input.Notify) || h.notifier == nil {
		return out, nil
	}

	res, err := h.notifier.Execute(ctx, &sendordernotification.Input{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Status:     string(next),
	})
	if err != nil {
		h.logger.Warn("status notification failed", map[string]interface{}{
			"orderId": order.ID,
			"error":   err.Error(),
		})
		out.NotificationError = err.Error()
		return out, nil
	}
	out.Notification = res
	return out, nil
}
