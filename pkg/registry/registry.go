// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/models"
	"laundry-workers/internal/notify/template"

	"github.com/google/uuid"
)

func LoadRegistry(path string) (*TemplateRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TemplateRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry back with LastUpdated set to now.
func Save(path string, reg *TemplateRegistry) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate checks every entry: known channel, a message body, a subject for email, no duplicate
// (type, channel) pairs and only whitelisted tokens. All problems are reported together.
func (r *TemplateRegistry) Validate() error {
	var problems []string
	seen := make(map[string]bool)

	for i, e := range r.Templates {
		key := e.NotificationType + "/" + string(e.Channel)
		switch {
		case e.NotificationType == "":
			problems = append(problems, fmt.Sprintf("templates[%d]: notificationType is required", i))
		case !e.Channel.Valid():
			problems = append(problems, fmt.Sprintf("%s: unknown channel", key))
		case seen[key]:
			problems = append(problems, fmt.Sprintf("%s: duplicate entry", key))
		}
		seen[key] = true

		if strings.TrimSpace(e.Message) == "" {
			problems = append(problems, fmt.Sprintf("%s: message is required", key))
		}
		if e.Channel == models.ChannelEmail && strings.TrimSpace(e.Subject) == "" {
			problems = append(problems, fmt.Sprintf("%s: email templates need a subject", key))
		}
		if unknown := template.Validate(e.Subject + "\n" + e.Message); len(unknown) > 0 {
			problems = append(problems, fmt.Sprintf("%s: unknown tokens %s", key, strings.Join(unknown, ", ")))
		}
	}

	if len(problems) > 0 {
		return errors.NewTemplateValidationError(strings.Join(problems, "; "))
	}
	return nil
}

// Find returns the entry for a type and channel.
func (r *TemplateRegistry) Find(notificationType string, channel models.Channel) (TemplateEntry, bool) {
	for _, e := range r.Templates {
		if e.NotificationType == notificationType && e.Channel == channel {
			return e, true
		}
	}
	return TemplateEntry{}, false
}

// Put adds the entry or replaces the one with the same type and channel.
func (r *TemplateRegistry) Put(e TemplateEntry) {
	for i := range r.Templates {
		if r.Templates[i].NotificationType == e.NotificationType && r.Templates[i].Channel == e.Channel {
			r.Templates[i] = e
			return
		}
	}
	r.Templates = append(r.Templates, e)
}

// Rows converts the entries to template rows stamped with at.
func (r *TemplateRegistry) Rows(at time.Time) []models.NotificationTemplate {
	rows := make([]models.NotificationTemplate, 0, len(r.Templates))
	for _, e := range r.Templates {
		rows = append(rows, models.NotificationTemplate{
			ID:               uuid.NewString(),
			NotificationType: e.NotificationType,
			Channel:          e.Channel,
			Subject:          e.Subject,
			Message:          e.Message,
			IsActive:         e.IsActive(),
			UpdatedAt:        at,
		})
	}
	return rows
}
