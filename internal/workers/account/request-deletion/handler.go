package requestdeletion

import (
	"context"
	"time"

	"laundry-workers/internal/common/camunda"
	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "request-account-deletion"
)

type Store interface {
	CountActiveOrders(ctx context.Context, customerID string) (int, error)
	FindPendingDeletion(ctx context.Context, userID string) (*models.AccountDeletionRequest, error)
	CreateDeletionRequest(ctx context.Context, r models.AccountDeletionRequest) error
	DisableProfile(ctx context.Context, id string) error
}

// IdentityProvider disables the login for a user.
type IdentityProvider interface {
	DisableUser(ctx context.Context, userID string) error
}

type Handler struct {
	config   *Config
	store    Store
	identity IdentityProvider
	now      func() time.Time
	logger   logger.Logger
}

func NewHandler(config *Config, store Store, identity IdentityProvider, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		store:    store,
		identity: identity,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.HandleJob(client, job, h.config.Timeout, h.logger, h.Execute)
}

// Execute schedules the account for deletion. Active orders block the request, including
// when a pending request already exists.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, errors.NewValidationError("userId is required")
	}

	active, err := h.store.CountActiveOrders(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		h.logger.Info("deletion blocked by active orders", map[string]interface{}{
			"userId":       input.UserID,
			"activeOrders": active,
		})
		return nil, errors.NewActiveOrdersError(active)
	}

	existing, err := h.store.FindPendingDeletion(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := h.disable(ctx, input.UserID); err != nil {
			return nil, err
		}
		return &Output{
			Success:             true,
			RequestID:           existing.ID,
			ScheduledDeletionAt: existing.ScheduledDeletionAt,
			AlreadyRequested:    true,
		}, nil
	}

	now := h.now()
	req := models.AccountDeletionRequest{
		ID:                  uuid.NewString(),
		UserID:              input.UserID,
		Reason:              input.Reason,
		Status:              models.DeletionPending,
		RequestedAt:         now,
		ScheduledDeletionAt: now.Add(h.config.GracePeriod),
	}
	if err := h.store.CreateDeletionRequest(ctx, req); err != nil {
		return nil, err
	}
	if err := h.disable(ctx, input.UserID); err != nil {
		return nil, err
	}

	h.logger.Info("account deletion scheduled", map[string]interface{}{
		"userId":              input.UserID,
		"requestId":           req.ID,
		"scheduledDeletionAt": req.ScheduledDeletionAt,
	})
	return &Output{Success: true, RequestID: req.ID, ScheduledDeletionAt: req.ScheduledDeletionAt}, nil
}

// disable turns off the profile and the identity-provider login. A user unknown to the
// identity provider has no login to disable.
func (h *Handler) disable(ctx context.Context, userID string) error {
	if err := h.store.DisableProfile(ctx, userID); err != nil {
		return err
	}
	if h.identity == nil {
		return nil
	}
	if err := h.identity.DisableUser(ctx, userID); err != nil {
		if errors.IsCode(err, errors.ErrCodeResourceNotFound) {
			h.logger.Warn("user not found in identity provider", map[string]interface{}{"userId": userID})
			return nil
		}
		return err
	}
	return nil
}
