// internal/models/user.go
package models

import (
	"time"

	"github.com/lib/pq"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleWasher   Role = "washer"
	RoleAdmin    Role = "admin"
)

// Profile is the account row shared by customers, washers and admins. Nullable contact
// columns are read as empty strings.
type Profile struct {
	ID         string `json:"id" db:"id"`
	FullName   string `json:"fullName" db:"full_name"`
	Email      string `json:"email" db:"email"`
	Phone      string `json:"phone" db:"phone"`
	Role       Role   `json:"role" db:"role"`
	SMSOptIn   bool   `json:"smsOptIn" db:"sms_opt_in"`
	EmailOptIn bool   `json:"emailOptIn" db:"email_opt_in"`
	IsDisabled bool   `json:"isDisabled" db:"is_disabled"`
}

// FirstName returns the first word of the full name, or "there" when the name is empty.
func (p Profile) FirstName() string {
	for i, r := range p.FullName {
		if r == ' ' {
			return p.FullName[:i]
		}
	}
	if p.FullName == "" {
		return "there"
	}
	return p.FullName
}

type WasherStatus string

const (
	WasherPending  WasherStatus = "pending"
	WasherApproved WasherStatus = "approved"
	WasherRejected WasherStatus = "rejected"
)

type Washer struct {
	ID              string         `json:"id" db:"id"`
	UserID          string         `json:"userId" db:"user_id"`
	FullName        string         `json:"fullName" db:"full_name"`
	Email           string         `json:"email" db:"email"`
	Phone           string         `json:"phone" db:"phone"`
	Status          WasherStatus   `json:"status" db:"status"`
	ServiceZipCodes pq.StringArray `json:"serviceZipCodes" db:"service_zip_codes"`
	ApprovedAt      *time.Time     `json:"approvedAt,omitempty" db:"approved_at"`
	RejectionReason string         `json:"rejectionReason,omitempty" db:"rejection_reason"`
}

type DeletionStatus string

const (
	DeletionPending   DeletionStatus = "pending"
	DeletionCancelled DeletionStatus = "cancelled"
	DeletionCompleted DeletionStatus = "completed"
)

type AccountDeletionRequest struct {
	ID                  string         `json:"id" db:"id"`
	UserID              string         `json:"userId" db:"user_id"`
	Reason              string         `json:"reason,omitempty" db:"reason"`
	Status              DeletionStatus `json:"status" db:"status"`
	RequestedAt         time.Time      `json:"requestedAt" db:"requested_at"`
	ScheduledDeletionAt time.Time      `json:"scheduledDeletionAt" db:"scheduled_deletion_at"`
}

// CustomerOrderCount pairs a customer with their completed-order count.
type CustomerOrderCount struct {
	Profile
	CompletedOrders int `db:"completed_orders" json:"completedOrders"`
}
