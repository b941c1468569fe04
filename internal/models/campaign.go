// internal/models/campaign.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type MarketingCampaign struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Channel    Channel    `json:"channel" db:"channel"`
	Subject    string     `json:"subject" db:"subject"`
	Message    string     `json:"message" db:"message"`
	SegmentID  *string    `json:"segmentId,omitempty" db:"segment_id"`
	Status     string     `json:"status" db:"status"`
	SentCount  int        `json:"sentCount" db:"sent_count"`
	LastSentAt *time.Time `json:"lastSentAt,omitempty" db:"last_sent_at"`
}

type CustomerSegment struct {
	ID         string          `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Conditions json.RawMessage `json:"conditions" db:"conditions"`
}

type TriggerType string

const (
	TriggerInactivity    TriggerType = "inactivity"
	TriggerPostOrder     TriggerType = "post_order"
	TriggerMilestone     TriggerType = "milestone"
	TriggerAbandonedCart TriggerType = "abandoned_cart"
)

// CampaignTrigger is the stored trigger row. Conditions stay raw until decoded with
// DecodeCondition against TriggerType.
type CampaignTrigger struct {
	ID           string          `json:"id" db:"id"`
	CampaignID   string          `json:"campaignId" db:"campaign_id"`
	TriggerType  TriggerType     `json:"triggerType" db:"trigger_type"`
	Conditions   json.RawMessage `json:"conditions" db:"conditions"`
	DelayHours   int             `json:"delayHours" db:"delay_hours"`
	CooldownDays *int            `json:"cooldownDays,omitempty" db:"cooldown_days"`
	IsActive     bool            `json:"isActive" db:"is_active"`
}

// Cooldown is the suppression window for the trigger: cooldown_days when set, else the
// condition's default.
func (t CampaignTrigger) Cooldown(cond TriggerCondition) time.Duration {
	if t.CooldownDays != nil && *t.CooldownDays > 0 {
		return time.Duration(*t.CooldownDays) * 24 * time.Hour
	}
	return cond.DefaultCooldown()
}

// TriggerCondition is the decoded, type-specific trigger condition. The set of
// implementations is closed; switch on the concrete type to evaluate.
type TriggerCondition interface {
	Kind() TriggerType
	Validate() error
	DefaultCooldown() time.Duration
	isTriggerCondition()
}

type InactivityCondition struct {
	Days int `json:"days"`
}

type PostOrderCondition struct {
	DelayHours  int `json:"delay_hours"`
	WindowHours int `json:"window_hours"`
}

type MilestoneMode string

const (
	MilestoneExact   MilestoneMode = "exact"
	MilestoneAtLeast MilestoneMode = "at_least"
)

type MilestoneCondition struct {
	Count int           `json:"count"`
	Mode  MilestoneMode `json:"mode,omitempty"`
}

type AbandonedCartCondition struct {
	Hours int `json:"hours,omitempty"`
}

const day = 24 * time.Hour

func (InactivityCondition) Kind() TriggerType    { return TriggerInactivity }
func (PostOrderCondition) Kind() TriggerType     { return TriggerPostOrder }
func (MilestoneCondition) Kind() TriggerType     { return TriggerMilestone }
func (AbandonedCartCondition) Kind() TriggerType { return TriggerAbandonedCart }

func (InactivityCondition) DefaultCooldown() time.Duration    { return 7 * day }
func (PostOrderCondition) DefaultCooldown() time.Duration     { return 1 * day }
func (MilestoneCondition) DefaultCooldown() time.Duration     { return 30 * day }
func (AbandonedCartCondition) DefaultCooldown() time.Duration { return 1 * day }

func (InactivityCondition) isTriggerCondition()    {}
func (PostOrderCondition) isTriggerCondition()     {}
func (MilestoneCondition) isTriggerCondition()     {}
func (AbandonedCartCondition) isTriggerCondition() {}

func (c InactivityCondition) Validate() error {
	if c.Days <= 0 {
		return fmt.Errorf("days must be positive, got %d", c.Days)
	}
	return nil
}

func (c PostOrderCondition) Validate() error {
	if c.DelayHours < 0 || c.WindowHours <= 0 {
		return fmt.Errorf("delay_hours must be >= 0 and window_hours > 0, got %d/%d", c.DelayHours, c.WindowHours)
	}
	return nil
}

func (c MilestoneCondition) Validate() error {
	if c.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", c.Count)
	}
	if c.Mode != MilestoneExact && c.Mode != MilestoneAtLeast {
		return fmt.Errorf("unknown milestone mode %q", c.Mode)
	}
	return nil
}

func (c AbandonedCartCondition) Validate() error {
	if c.Hours < 0 {
		return fmt.Errorf("hours must be >= 0, got %d", c.Hours)
	}
	return nil
}

// DecodeCondition parses a stored conditions blob for the given trigger type and applies
// defaults. An optional "kind" field in the blob must agree with the trigger type.
func DecodeCondition(t TriggerType, raw json.RawMessage) (TriggerCondition, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	var envelope struct {
		Kind TriggerType `json:"kind"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s conditions: %w", t, err)
	}
	if envelope.Kind != "" && envelope.Kind != t {
		return nil, fmt.Errorf("conditions kind %q does not match trigger type %q", envelope.Kind, t)
	}

	var cond TriggerCondition
	switch t {
	case TriggerInactivity:
		c := InactivityCondition{Days: 30}
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode %s conditions: %w", t, err)
		}
		cond = c
	case TriggerPostOrder:
		c := PostOrderCondition{DelayHours: 2, WindowHours: 1}
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode %s conditions: %w", t, err)
		}
		cond = c
	case TriggerMilestone:
		c := MilestoneCondition{Mode: MilestoneExact}
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode %s conditions: %w", t, err)
		}
		if c.Mode == "" {
			c.Mode = MilestoneExact
		}
		cond = c
	case TriggerAbandonedCart:
		c := AbandonedCartCondition{Hours: 24}
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode %s conditions: %w", t, err)
		}
		cond = c
	default:
		return nil, fmt.Errorf("unknown trigger type %q", t)
	}

	if err := cond.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s conditions: %w", t, err)
	}
	return cond, nil
}
