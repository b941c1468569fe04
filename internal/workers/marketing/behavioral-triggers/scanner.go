package behavioraltriggers

import (
	"context"
	"time"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/common/metrics"
	"laundry-workers/internal/models"
)

// Evaluation is one trigger's matches after cooldown suppression. Err is set when the trigger
// could not be evaluated; the rest of the scan is unaffected.
type Evaluation struct {
	Trigger models.CampaignTrigger
	Matches []Match
	Err     error
}

func (e Evaluation) Summary() TriggerSummary {
	s := TriggerSummary{
		TriggerID:  e.Trigger.ID,
		CampaignID: e.Trigger.CampaignID,
		Type:       e.Trigger.TriggerType,
		Matched:    len(e.Matches),
	}
	for _, m := range e.Matches {
		if m.Suppressed {
			s.Suppressed++
		}
	}
	if e.Err != nil {
		s.Error = e.Err.Error()
	}
	return s
}

// Scanner evaluates trigger conditions. The cooldown check reads the delivery log and is not
// atomic with the send that follows, so two overlapping scans can both dispatch to the same
// customer.
type Scanner struct {
	store  Store
	now    func() time.Time
	logger logger.Logger
}

func NewScanner(store Store, log logger.Logger) *Scanner {
	return &Scanner{store: store, now: func() time.Time { return time.Now().UTC() }, logger: log}
}

// WithClock sets the scan time, for previews and tests.
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

// Evaluate loads the active triggers (or only triggerID) and evaluates each.
func (s *Scanner) Evaluate(ctx context.Context, triggerID string) ([]Evaluation, error) {
	triggers, err := s.store.ListActiveTriggers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]Evaluation, 0, len(triggers))
	for _, t := range triggers {
		if triggerID != "" && t.ID != triggerID {
			continue
		}
		ev := s.evaluate(ctx, t, now)
		if ev.Err != nil {
			s.logger.Warn("trigger skipped", map[string]interface{}{
				"triggerId":   t.ID,
				"triggerType": string(t.TriggerType),
				"error":       ev.Err.Error(),
			})
			metrics.TriggerEvaluations.WithLabelValues(string(t.TriggerType), "error").Inc()
		}
		out = append(out, ev)
	}
	return out, nil
}

func (s *Scanner) evaluate(ctx context.Context, t models.CampaignTrigger, now time.Time) Evaluation {
	ev := Evaluation{Trigger: t}

	cond, err := models.DecodeCondition(t.TriggerType, t.Conditions)
	if err != nil {
		ev.Err = errors.NewInvalidTriggerError(string(t.TriggerType), err.Error())
		return ev
	}

	matches, err := s.match(ctx, t, cond, now)
	if err != nil {
		ev.Err = err
		return ev
	}

	if len(matches) > 0 {
		recent, err := s.store.RecipientsDeliveredSince(ctx, t.CampaignID, now.Add(-t.Cooldown(cond)))
		if err != nil {
			ev.Err = err
			return ev
		}
		for i := range matches {
			matches[i].Suppressed = recent[matches[i].CustomerID]
		}
	}

	for _, m := range matches {
		outcome := "matched"
		if m.Suppressed {
			outcome = "suppressed"
		}
		metrics.TriggerEvaluations.WithLabelValues(string(t.TriggerType), outcome).Inc()
	}

	ev.Matches = matches
	return ev
}

// match finds the customers a condition selects. The switch is exhaustive over the condition
// types DecodeCondition can return.
func (s *Scanner) match(ctx context.Context, t models.CampaignTrigger, cond models.TriggerCondition, now time.Time) ([]Match, error) {
	switch c := cond.(type) {
	case models.InactivityCondition:
		profiles, err := s.store.InactiveCustomers(ctx, now.AddDate(0, 0, -c.Days))
		if err != nil {
			return nil, err
		}
		out := make([]Match, 0, len(profiles))
		for _, p := range profiles {
			out = append(out, Match{CustomerID: p.ID, Name: p.FullName})
		}
		return out, nil

	case models.PostOrderCondition:
		delay := c.DelayHours
		if t.DelayHours > 0 {
			delay = t.DelayHours
		}
		to := now.Add(-time.Duration(delay) * time.Hour)
		from := to.Add(-time.Duration(c.WindowHours) * time.Hour)
		orders, err := s.store.CompletedOrdersBetween(ctx, from, to)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool, len(orders))
		out := make([]Match, 0, len(orders))
		for _, o := range orders {
			if seen[o.CustomerID] {
				continue
			}
			seen[o.CustomerID] = true
			out = append(out, Match{CustomerID: o.CustomerID, OrderID: o.ID})
		}
		return out, nil

	case models.MilestoneCondition:
		atLeast := c.Mode == models.MilestoneAtLeast
		rows, err := s.store.CustomersByCompletedCount(ctx, c.Count, atLeast)
		if err != nil {
			return nil, err
		}
		var notified map[string]bool
		if atLeast && len(rows) > 0 {
			// Crossing semantics: a milestone fires once per customer.
			notified, err = s.store.RecipientsDeliveredSince(ctx, t.CampaignID, time.Time{})
			if err != nil {
				return nil, err
			}
		}
		out := make([]Match, 0, len(rows))
		for _, r := range rows {
			if notified[r.ID] {
				continue
			}
			out = append(out, Match{CustomerID: r.ID, Name: r.FullName})
		}
		return out, nil

	case models.AbandonedCartCondition:
		return nil, nil
	}
	return nil, errors.NewInvalidTriggerError(string(t.TriggerType), "unsupported condition")
}
