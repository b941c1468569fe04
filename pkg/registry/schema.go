// pkg/registry/schema.go
package registry

import "laundry-workers/internal/models"

// TemplateRegistry is the versioned set of notification templates kept in the repository and
// seeded into the database.
type TemplateRegistry struct {
	Version     string          `json:"version"`
	LastUpdated string          `json:"lastUpdated"`
	Templates   []TemplateEntry `json:"templates"`
}

type TemplateEntry struct {
	NotificationType string         `json:"notificationType"`
	Channel          models.Channel `json:"channel"`
	Description      string         `json:"description,omitempty"`
	Subject          string         `json:"subject,omitempty"`
	Message          string         `json:"message"`
	Active           *bool          `json:"active,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
}

// IsActive defaults to true when the entry does not say otherwise.
func (e TemplateEntry) IsActive() bool {
	return e.Active == nil || *e.Active
}
