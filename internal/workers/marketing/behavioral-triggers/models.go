package behavioraltriggers

import "laundry-workers/internal/models"

// Input runs every active trigger, or only TriggerID when set. DryRun evaluates without
// dispatching.
type Input struct {
	TriggerID string `json:"triggerId,omitempty"`
	DryRun    bool   `json:"dryRun,omitempty"`
}

type Output struct {
	Success    bool             `json:"success"`
	DryRun     bool             `json:"dryRun"`
	Dispatched int              `json:"dispatched"`
	Triggers   []TriggerSummary `json:"triggers"`
}

// TriggerSummary is the outcome of one trigger. Matches is only filled in dry runs.
type TriggerSummary struct {
	TriggerID  string             `json:"triggerId"`
	CampaignID string             `json:"campaignId"`
	Type       models.TriggerType `json:"type"`
	Matched    int                `json:"matched"`
	Dispatched int                `json:"dispatched"`
	Suppressed int                `json:"suppressed"`
	Failed     int                `json:"failed"`
	Error      string             `json:"error,omitempty"`
	Matches    []Match            `json:"matches,omitempty"`
}

// Match is a customer selected by a trigger condition.
type Match struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name,omitempty"`
	OrderID    string `json:"orderId,omitempty"`
	Suppressed bool   `json:"suppressed"`
}
