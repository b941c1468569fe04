package store

import (
	"context"
	"fmt"
	"time"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/models"
)

const washerColumns = `id, user_id, COALESCE(full_name, '') AS full_name, COALESCE(email, '') AS email,
	COALESCE(phone, '') AS phone, status, COALESCE(service_zip_codes, '{}') AS service_zip_codes,
	approved_at, COALESCE(rejection_reason, '') AS rejection_reason`

func (s *Store) GetWasher(ctx context.Context, id string) (*models.Washer, error) {
	var w models.Washer
	err := s.db.GetContext(ctx, &w, `SELECT `+washerColumns+` FROM washers WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewResourceNotFoundError("Washer", fmt.Sprintf("washerId: %s", id))
		}
		return nil, errors.NewQueryExecutionFailedError("get_washer", err)
	}
	return &w, nil
}

// ApprovedWashersForZip returns approved washers whose service area includes zip.
func (s *Store) ApprovedWashersForZip(ctx context.Context, zip string) ([]models.Washer, error) {
	var out []models.Washer
	err := s.db.SelectContext(ctx, &out, `SELECT `+washerColumns+` FROM washers
		WHERE status = 'approved' AND $1 = ANY(service_zip_codes)
		ORDER BY id`, zip)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("approved_washers_for_zip", err)
	}
	return out, nil
}

// SetWasherStatus records an approval decision.
func (s *Store) SetWasherStatus(ctx context.Context, id string, status models.WasherStatus, reason string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE washers SET
			status = $2,
			approved_at = CASE WHEN $2 = 'approved' THEN $3 ELSE approved_at END,
			rejection_reason = CASE WHEN $2 = 'rejected' THEN $4 ELSE NULL END
		WHERE id = $1`, id, string(status), at, reason)
	if err != nil {
		return errors.NewQueryExecutionFailedError("set_washer_status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewResourceNotFoundError("Washer", fmt.Sprintf("washerId: %s", id))
	}
	return nil
}
