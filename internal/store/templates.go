package store

import (
	"context"
	"time"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/models"
)

// GetActiveTemplate returns the active template for (notificationType, channel). A missing or
// inactive template is a TEMPLATE_NOT_FOUND error.
func (s *Store) GetActiveTemplate(ctx context.Context, notificationType string, channel models.Channel) (*models.NotificationTemplate, error) {
	var t models.NotificationTemplate
	err := s.db.GetContext(ctx, &t, `SELECT id, notification_type, channel, COALESCE(subject, '') AS subject,
			message, is_active, updated_at
		FROM notification_templates
		WHERE notification_type = $1 AND channel = $2 AND is_active = true
		LIMIT 1`, notificationType, string(channel))
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewTemplateNotFoundError(notificationType, string(channel))
		}
		return nil, errors.NewQueryExecutionFailedError("get_active_template", err)
	}
	return &t, nil
}

// UpsertTemplate creates or replaces the template for its (type, channel) pair.
func (s *Store) UpsertTemplate(ctx context.Context, t models.NotificationTemplate) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO notification_templates
			(id, notification_type, channel, subject, message, is_active, updated_at)
		VALUES (:id, :notification_type, :channel, :subject, :message, :is_active, :updated_at)
		ON CONFLICT (notification_type, channel) DO UPDATE SET
			subject = EXCLUDED.subject,
			message = EXCLUDED.message,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`, t)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// SetTemplateActive flips is_active on an existing template. Callers that cache templates must
// invalidate the (type, channel) key afterwards.
func (s *Store) SetTemplateActive(ctx context.Context, notificationType string, channel models.Channel, active bool, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notification_templates
		SET is_active = $3, updated_at = $4
		WHERE notification_type = $1 AND channel = $2`,
		notificationType, string(channel), active, at)
	if err != nil {
		return errors.NewQueryExecutionFailedError("set_template_active", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewTemplateNotFoundError(notificationType, string(channel))
	}
	return nil
}
