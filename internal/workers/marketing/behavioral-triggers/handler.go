package behavioraltriggers

import (
	"context"
	"time"

	"laundry-workers/internal/common/camunda"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/models"
	dispatchcampaign "laundry-workers/internal/workers/marketing/dispatch-campaign"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "run-behavioral-triggers"
)

// Store is the data the scanner evaluates conditions against.
type Store interface {
	ListActiveTriggers(ctx context.Context) ([]models.CampaignTrigger, error)
	InactiveCustomers(ctx context.Context, cutoff time.Time) ([]models.Profile, error)
	CompletedOrdersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)
	CustomersByCompletedCount(ctx context.Context, count int, atLeast bool) ([]models.CustomerOrderCount, error)
	RecipientsDeliveredSince(ctx context.Context, campaignID string, since time.Time) (map[string]bool, error)
}

// Dispatcher sends a campaign to a single customer.
type Dispatcher interface {
	Execute(ctx context.Context, input *dispatchcampaign.Input) (*dispatchcampaign.Output, error)
}

type Handler struct {
	config     *Config
	scanner    *Scanner
	dispatcher Dispatcher
	logger     logger.Logger
}

func NewHandler(config *Config, scanner *Scanner, dispatcher Dispatcher, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		scanner:    scanner,
		dispatcher: dispatcher,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.HandleJob(client, job, h.config.Timeout, h.logger, h.Execute)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	evaluations, err := h.scanner.Evaluate(ctx, input.TriggerID)
	if err != nil {
		return nil, err
	}

	out := &Output{Success: true, DryRun: input.DryRun, Triggers: make([]TriggerSummary, 0, len(evaluations))}
	for _, ev := range evaluations {
		summary := ev.Summary()
		if ev.Err == nil {
			if input.DryRun {
				summary.Matches = ev.Matches
			} else {
				h.dispatch(ctx, ev, &summary)
			}
		}
		out.Dispatched += summary.Dispatched
		out.Triggers = append(out.Triggers, summary)
	}

	h.logger.Info("behavioral trigger scan finished", map[string]interface{}{
		"triggers":   len(out.Triggers),
		"dispatched": out.Dispatched,
		"dryRun":     input.DryRun,
	})
	return out, nil
}

// dispatch sends the campaign to each unsuppressed match, one customer at a time. A failure for
// one customer is counted and the scan moves on.
func (h *Handler) dispatch(ctx context.Context, ev Evaluation, summary *TriggerSummary) {
	for _, m := range ev.Matches {
		if m.Suppressed {
			continue
		}
		res, err := h.dispatcher.Execute(ctx, &dispatchcampaign.Input{
			CampaignID: ev.Trigger.CampaignID,
			CustomerID: m.CustomerID,
		})
		switch {
		case err != nil:
			summary.Failed++
			h.logger.Warn("trigger dispatch failed", map[string]interface{}{
				"triggerId":  ev.Trigger.ID,
				"customerId": m.CustomerID,
				"error":      err.Error(),
			})
		case res.Sent > 0:
			summary.Dispatched++
		case res.Failed > 0:
			summary.Failed++
		}
	}
}
