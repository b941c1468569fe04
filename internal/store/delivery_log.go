package store

import (
	"context"
	"fmt"
	"time"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/models"
)

// InsertDeliveryLog appends one row to the delivery audit trail.
func (s *Store) InsertDeliveryLog(ctx context.Context, row models.DeliveryLog) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO notification_delivery_log
			(id, recipient_id, recipient, channel, notification_type, campaign_id, order_id,
			 subject, content, status, error_message, provider_message_id, created_at, updated_at)
		VALUES (:id, :recipient_id, :recipient, :channel, :notification_type, :campaign_id, :order_id,
			 :subject, :content, :status, :error_message, :provider_message_id, :created_at, :updated_at)`, row)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// MarkDelivered resolves a pending row to sent or failed. Rows that already left pending are
// never touched again.
func (s *Store) MarkDelivered(ctx context.Context, id string, status models.DeliveryStatus, providerMessageID, errMsg string, at time.Time) error {
	if status != models.DeliverySent && status != models.DeliveryFailed {
		return errors.NewValidationError(fmt.Sprintf("cannot mark delivery %s as %s", id, status))
	}
	res, err := s.db.ExecContext(ctx, `UPDATE notification_delivery_log
		SET status = $2, provider_message_id = $3, error_message = $4, updated_at = $5
		WHERE id = $1 AND status = 'pending'`, id, string(status), providerMessageID, errMsg, at)
	if err != nil {
		return errors.NewQueryExecutionFailedError("mark_delivered", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewBusinessRuleError("Delivery log row is not pending", fmt.Sprintf("id: %s", id))
	}
	return nil
}

// RecipientsDeliveredSince returns the recipients with a sent row for the campaign at or after since.
func (s *Store) RecipientsDeliveredSince(ctx context.Context, campaignID string, since time.Time) (map[string]bool, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `SELECT DISTINCT recipient_id FROM notification_delivery_log
		WHERE campaign_id = $1 AND status = 'sent' AND created_at >= $2`, campaignID, since)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("recipients_delivered_since", err)
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
