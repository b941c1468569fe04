package store

import (
	"context"
	"fmt"
	"time"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/models"
)

func (s *Store) GetCampaign(ctx context.Context, id string) (*models.MarketingCampaign, error) {
	var c models.MarketingCampaign
	err := s.db.GetContext(ctx, &c, `SELECT id, name, channel, COALESCE(subject, '') AS subject, message,
			segment_id, status, sent_count, last_sent_at
		FROM marketing_campaigns WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewResourceNotFoundError("Campaign", fmt.Sprintf("campaignId: %s", id))
		}
		return nil, errors.NewQueryExecutionFailedError("get_campaign", err)
	}
	return &c, nil
}

func (s *Store) GetSegment(ctx context.Context, id string) (*models.CustomerSegment, error) {
	var seg models.CustomerSegment
	err := s.db.GetContext(ctx, &seg, `SELECT id, name, conditions FROM customer_segments WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewResourceNotFoundError("Segment", fmt.Sprintf("segmentId: %s", id))
		}
		return nil, errors.NewQueryExecutionFailedError("get_segment", err)
	}
	return &seg, nil
}

// RecordCampaignSent adds sent to the campaign's counter and stamps last_sent_at.
func (s *Store) RecordCampaignSent(ctx context.Context, id string, sent int, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE marketing_campaigns
		SET sent_count = sent_count + $2, last_sent_at = $3 WHERE id = $1`, id, sent, at)
	if err != nil {
		return errors.NewQueryExecutionFailedError("record_campaign_sent", err)
	}
	return nil
}

func (s *Store) ListActiveTriggers(ctx context.Context) ([]models.CampaignTrigger, error) {
	var out []models.CampaignTrigger
	err := s.db.SelectContext(ctx, &out, `SELECT id, campaign_id, trigger_type, COALESCE(conditions, '{}') AS conditions,
			COALESCE(delay_hours, 0) AS delay_hours, cooldown_days, is_active
		FROM campaign_triggers WHERE is_active = true ORDER BY id`)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_active_triggers", err)
	}
	return out, nil
}
