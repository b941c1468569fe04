package notify

import (
	"context"

	"laundry-workers/internal/models"
	"laundry-workers/internal/notify/template"
)

// Templates loads the active template for a notification type and channel.
type Templates interface {
	GetActiveTemplate(ctx context.Context, notificationType string, channel models.Channel) (*models.NotificationTemplate, error)
}

// Compose loads the active template and renders its subject and body.
func Compose(ctx context.Context, templates Templates, notificationType string, channel models.Channel, values template.Values) (subject, body string, err error) {
	tpl, err := templates.GetActiveTemplate(ctx, notificationType, channel)
	if err != nil {
		return "", "", err
	}
	return template.Render(tpl.Subject, values), template.Render(tpl.Message, values), nil
}
