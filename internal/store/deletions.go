package store

import (
	"context"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/models"
)

// FindPendingDeletion returns the user's pending deletion request, or nil when there is none.
func (s *Store) FindPendingDeletion(ctx context.Context, userID string) (*models.AccountDeletionRequest, error) {
	var r models.AccountDeletionRequest
	err := s.db.GetContext(ctx, &r, `SELECT id, user_id, COALESCE(reason, '') AS reason, status,
			requested_at, scheduled_deletion_at
		FROM account_deletion_requests
		WHERE user_id = $1 AND status = 'pending'
		ORDER BY requested_at DESC LIMIT 1`, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.NewQueryExecutionFailedError("find_pending_deletion", err)
	}
	return &r, nil
}

func (s *Store) CreateDeletionRequest(ctx context.Context, r models.AccountDeletionRequest) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO account_deletion_requests
			(id, user_id, reason, status, requested_at, scheduled_deletion_at)
		VALUES (:id, :user_id, :reason, :status, :requested_at, :scheduled_deletion_at)`, r)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}
