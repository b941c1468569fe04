// Package orders models the order lifecycle: the 13 display steps, legacy status progress and
// the allowed status transitions.
package orders

import (
	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/models"
)

// Step is a fine-grained lifecycle step, 1 through 13.
type Step int

const (
	StepConfirmed Step = iota + 1
	StepWasherAssigned
	StepEnRouteToPickup
	StepPickedUp
	StepAtFacility
	StepSorting
	StepWashing
	StepDrying
	StepFolding
	StepQualityCheck
	StepPackaged
	StepOutForDelivery
	StepDelivered
)

const StepCount = 13

var stepLabels = [StepCount]string{
	"Order Confirmed",
	"Washer Assigned",
	"Washer En Route to Pickup",
	"Picked Up",
	"At Laundry Facility",
	"Sorting",
	"Washing",
	"Drying",
	"Folding",
	"Quality Check",
	"Packaged",
	"Out for Delivery",
	"Delivered",
}

func (s Step) Valid() bool {
	return s >= StepConfirmed && s <= StepDelivered
}

// Label returns the display label, or "" for an out-of-range step.
func (s Step) Label() string {
	if !s.Valid() {
		return ""
	}
	return stepLabels[s-1]
}

// Percent is the progress of a step: step/13, rounded to the nearest whole percent.
func (s Step) Percent() int {
	if !s.Valid() {
		return 0
	}
	return (int(s)*100 + StepCount/2) / StepCount
}

// Steps returns every step in order.
func Steps() []Step {
	out := make([]Step, StepCount)
	for i := range out {
		out[i] = Step(i + 1)
	}
	return out
}

var legacyPercent = map[models.OrderStatus]int{
	models.OrderPlaced:     10,
	models.OrderUnclaimed:  10,
	models.OrderClaimed:    25,
	models.OrderPickedUp:   40,
	models.OrderInProgress: 60,
	models.OrderWashed:     60,
	models.OrderFolded:     80,
	models.OrderCompleted:  100,
	models.OrderDelivered:  100,
	models.OrderCancelled:  0,
}

var statusLabels = map[models.OrderStatus]string{
	models.OrderPlaced:     "Order Placed",
	models.OrderUnclaimed:  "Looking for a Washer",
	models.OrderClaimed:    "Washer Assigned",
	models.OrderPickedUp:   "Picked Up",
	models.OrderInProgress: "In Progress",
	models.OrderWashed:     "Washed",
	models.OrderFolded:     "Folded",
	models.OrderCompleted:  "Completed",
	models.OrderDelivered:  "Delivered",
	models.OrderCancelled:  "Cancelled",
}

// LegacyPercent is the coarse progress for a status without a step.
func LegacyPercent(status models.OrderStatus) int {
	return legacyPercent[status]
}

// StatusLabel is the customer-facing name of a status. Unknown statuses are returned as is.
func StatusLabel(status models.OrderStatus) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return string(status)
}

// Progress describes how far along an order is.
type Progress struct {
	Step    Step   `json:"step,omitempty"`
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

// OrderProgress prefers the fine-grained step and falls back to the legacy status.
func OrderProgress(o models.Order) Progress {
	if o.StatusStep != nil {
		if s := Step(*o.StatusStep); s.Valid() {
			return Progress{Step: s, Label: s.Label(), Percent: s.Percent()}
		}
	}
	return Progress{Label: StatusLabel(o.Status), Percent: LegacyPercent(o.Status)}
}

var statusRank = map[models.OrderStatus]int{
	models.OrderPlaced:     0,
	models.OrderUnclaimed:  0,
	models.OrderClaimed:    1,
	models.OrderPickedUp:   2,
	models.OrderInProgress: 3,
	models.OrderWashed:     4,
	models.OrderFolded:     5,
	models.OrderCompleted:  6,
	models.OrderDelivered:  7,
}

// KnownStatus reports whether s is one of the order statuses.
func KnownStatus(s models.OrderStatus) bool {
	_, ok := legacyPercent[s]
	return ok
}

// CheckTransition enforces forward-only movement. Orders can be cancelled only before pickup,
// and delivered or cancelled orders are final.
func CheckTransition(from, to models.OrderStatus) error {
	if !KnownStatus(from) || !KnownStatus(to) {
		return errors.NewInvalidTransitionError(string(from), string(to))
	}
	if from == to || from == models.OrderDelivered || from == models.OrderCancelled {
		return errors.NewInvalidTransitionError(string(from), string(to))
	}
	if to == models.OrderCancelled {
		if statusRank[from] > statusRank[models.OrderClaimed] {
			return errors.NewInvalidTransitionError(string(from), string(to))
		}
		return nil
	}
	if statusRank[to] < statusRank[from] {
		return errors.NewInvalidTransitionError(string(from), string(to))
	}
	// placed and unclaimed share a rank; only placed -> unclaimed is meaningful.
	if statusRank[to] == statusRank[from] && !(from == models.OrderPlaced && to == models.OrderUnclaimed) {
		return errors.NewInvalidTransitionError(string(from), string(to))
	}
	return nil
}

// CheckStep rejects a step that moves backwards from the current one.
func CheckStep(current *int, next int) error {
	if !Step(next).Valid() {
		return errors.NewValidationError("statusStep must be between 1 and 13")
	}
	if current != nil && next < *current {
		return errors.NewInvalidTransitionError(Step(*current).Label(), Step(next).Label())
	}
	return nil
}
