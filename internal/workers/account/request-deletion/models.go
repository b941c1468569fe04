package requestdeletion

import "time"

// Input identifies the account to delete. Over HTTP, UserID is taken from the bearer token and
// never from the body.
type Input struct {
	UserID string `json:"userId"`
	Reason string `json:"reason,omitempty"`
}

type Output struct {
	Success             bool      `json:"success"`
	RequestID           string    `json:"requestId"`
	ScheduledDeletionAt time.Time `json:"scheduledDeletionAt"`
	AlreadyRequested    bool      `json:"alreadyRequested"`
}
