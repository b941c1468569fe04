package dispatchcampaign

import (
	"context"
	"time"

	"laundry-workers/internal/common/camunda"
	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "dispatch-campaign"
)

// Store is the data the dispatcher reads and updates.
type Store interface {
	GetCampaign(ctx context.Context, id string) (*models.MarketingCampaign, error)
	GetSegment(ctx context.Context, id string) (*models.CustomerSegment, error)
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	ListCustomers(ctx context.Context) ([]models.Profile, error)
	RecordCampaignSent(ctx context.Context, id string, sent int, at time.Time) error
}

type Handler struct {
	config  *Config
	store   Store
	service *Service
	logger  logger.Logger
}

func NewHandler(config *Config, store Store, service *Service, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		store:   store,
		service: service,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.HandleJob(client, job, h.config.Timeout, h.logger, h.Execute)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CampaignID == "" {
		return nil, errors.NewValidationError("campaignId is required")
	}

	campaign, err := h.store.GetCampaign(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if !campaign.Channel.Valid() {
		return nil, errors.NewValidationError("campaign channel must be email or sms")
	}

	audience, err := h.resolveAudience(ctx, campaign, input.CustomerID)
	if err != nil {
		return nil, err
	}

	recipients := make([]models.Profile, 0, len(audience))
	for _, p := range audience {
		if optedIn(p, campaign.Channel) {
			recipients = append(recipients, p)
		}
	}

	results := h.service.Dispatch(ctx, campaign, recipients)

	out := &Output{
		Total:   len(results),
		Skipped: len(audience) - len(recipients),
		Results: results,
	}
	for _, r := range results {
		if r.Success {
			out.Sent++
		} else {
			out.Failed++
		}
	}
	out.Success = out.Sent > 0 || out.Total == 0

	if out.Sent > 0 {
		// Sends already happened; a counter failure is not a dispatch failure.
		if err := h.store.RecordCampaignSent(ctx, campaign.ID, out.Sent, time.Now().UTC()); err != nil {
			h.logger.Warn("failed to update campaign counters", map[string]interface{}{
				"campaignId": campaign.ID,
				"error":      err.Error(),
			})
		}
	}

	h.logger.Info("campaign dispatched", map[string]interface{}{
		"campaignId": campaign.ID,
		"total":      out.Total,
		"sent":       out.Sent,
		"failed":     out.Failed,
		"skipped":    out.Skipped,
	})
	return out, nil
}

func (h *Handler) resolveAudience(ctx context.Context, c *models.MarketingCampaign, customerID string) ([]models.Profile, error) {
	if customerID != "" {
		p, err := h.store.GetProfile(ctx, customerID)
		if err != nil {
			return nil, err
		}
		if p.IsDisabled {
			return nil, nil
		}
		return []models.Profile{*p}, nil
	}

	if c.SegmentID != nil {
		seg, err := h.store.GetSegment(ctx, *c.SegmentID)
		if err != nil {
			return nil, err
		}
		// Segment conditions are not evaluated yet; a segment targets every customer.
		h.logger.Debug("segment conditions not evaluated", map[string]interface{}{
			"segmentId": seg.ID,
			"segment":   seg.Name,
		})
	}
	return h.store.ListCustomers(ctx)
}

func optedIn(p models.Profile, ch models.Channel) bool {
	if ch == models.ChannelSMS {
		return p.SMSOptIn
	}
	return p.EmailOptIn
}
