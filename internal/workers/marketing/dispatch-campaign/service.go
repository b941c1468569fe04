package dispatchcampaign

import (
	"context"

	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/common/observability"
	"laundry-workers/internal/models"
	"laundry-workers/internal/notify"
	"laundry-workers/internal/notify/template"

	"go.opentelemetry.io/otel/attribute"
)

// Service fans a campaign out to its recipients.
type Service struct {
	sender *notify.Sender
	fanout *notify.FanOut
	obs    *observability.Observability
	logger logger.Logger
}

// NewService bounds a fan-out to config.MaxConcurrency in-flight sends paced at
// config.SendRate per second. obs may be nil.
func NewService(config *Config, sender *notify.Sender, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{
		sender: sender,
		fanout: notify.NewFanOut(config.MaxConcurrency, config.SendRate, config.SendBurst),
		obs:    obs,
		logger: log,
	}
}

// Dispatch sends the campaign to every recipient and waits for all of them. Results are in
// recipient order. A failed recipient never stops the others, and once started the sends are
// not cancelled by ctx.
func (s *Service) Dispatch(ctx context.Context, c *models.MarketingCampaign, recipients []models.Profile) []RecipientResult {
	ctx, span := observability.Tracer("dispatch-campaign").Start(ctx, "campaign.dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("campaign_id", c.ID),
		attribute.Int("recipients", len(recipients)),
	)
	s.obs.RecordFanout(ctx, TaskType, len(recipients))
	s.logger.Debug("dispatching campaign", map[string]interface{}{
		"campaignId": c.ID,
		"channel":    string(c.Channel),
		"recipients": len(recipients),
	})

	results := make([]RecipientResult, len(recipients))
	s.fanout.Run(ctx, len(recipients), func(ctx context.Context, i int) {
		results[i] = s.sendOne(ctx, c, recipients[i])
	})
	return results
}

func (s *Service) sendOne(ctx context.Context, c *models.MarketingCampaign, p models.Profile) RecipientResult {
	values := template.Values{
		template.TokenCustomerName: p.FirstName(),
		template.TokenMessage:      c.Message,
	}

	to := p.Email
	if c.Channel == models.ChannelSMS {
		to = p.Phone
	}

	campaignID := c.ID
	res := s.sender.Deliver(ctx, notify.Attempt{
		Channel:          c.Channel,
		NotificationType: models.TypeCampaign,
		RecipientID:      p.ID,
		To:               to,
		Subject:          template.Render(c.Subject, values),
		Body:             template.Render(c.Message, values),
		CampaignID:       &campaignID,
	})

	return RecipientResult{
		Success:     res.Success,
		Recipient:   to,
		RecipientID: p.ID,
		Error:       res.Error,
	}
}
