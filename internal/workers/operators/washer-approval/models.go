package washerapproval

import (
	"laundry-workers/internal/models"
	"laundry-workers/internal/notify"
)

type Input struct {
	WasherID   string `json:"washerId"`
	Approved   bool   `json:"approved"`
	Reason     string `json:"reason,omitempty"`
	ReviewedBy string `json:"reviewedBy,omitempty"`
}

type Output struct {
	Success       bool                `json:"success"`
	WasherID      string              `json:"washerId"`
	Status        models.WasherStatus `json:"status"`
	Notifications []notify.Result     `json:"notifications"`
}
