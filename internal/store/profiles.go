package store

import (
	"context"
	"fmt"
	"time"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/models"
)

const profileColumns = `p.id, COALESCE(p.full_name, '') AS full_name, COALESCE(p.email, '') AS email,
	COALESCE(p.phone, '') AS phone, p.role, p.sms_opt_in, p.email_opt_in, p.is_disabled`

func (s *Store) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles p WHERE p.id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewResourceNotFoundError("Profile", fmt.Sprintf("userId: %s", id))
		}
		return nil, errors.NewQueryExecutionFailedError("get_profile", err)
	}
	return &p, nil
}

// ListCustomers returns every enabled customer profile.
func (s *Store) ListCustomers(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	err := s.db.SelectContext(ctx, &out, `SELECT `+profileColumns+` FROM profiles p
		WHERE p.role = 'customer' AND p.is_disabled = false ORDER BY p.id`)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_customers", err)
	}
	return out, nil
}

func (s *Store) DisableProfile(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE profiles SET is_disabled = true WHERE id = $1`, id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("disable_profile", err)
	}
	return nil
}

// InactiveCustomers returns enabled customers whose most recent order is older than cutoff.
// Customers who never ordered are not included.
func (s *Store) InactiveCustomers(ctx context.Context, cutoff time.Time) ([]models.Profile, error) {
	var out []models.Profile
	err := s.db.SelectContext(ctx, &out, `SELECT `+profileColumns+` FROM profiles p
		JOIN (SELECT customer_id, MAX(created_at) AS last_order_at FROM orders GROUP BY customer_id) o
			ON o.customer_id = p.id
		WHERE o.last_order_at < $1 AND p.is_disabled = false
		ORDER BY p.id`, cutoff)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("inactive_customers", err)
	}
	return out, nil
}

// CustomersByCompletedCount returns customers whose completed-order count equals count, or is at
// least count when atLeast is set.
func (s *Store) CustomersByCompletedCount(ctx context.Context, count int, atLeast bool) ([]models.CustomerOrderCount, error) {
	cmp := "="
	if atLeast {
		cmp = ">="
	}

	var out []models.CustomerOrderCount
	err := s.db.SelectContext(ctx, &out, `SELECT `+profileColumns+`, o.completed_orders FROM profiles p
		JOIN (SELECT customer_id, COUNT(*) AS completed_orders FROM orders
			WHERE status IN ('completed', 'delivered') GROUP BY customer_id) o
			ON o.customer_id = p.id
		WHERE o.completed_orders `+cmp+` $1 AND p.is_disabled = false
		ORDER BY p.id`, count)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("customers_by_completed_count", err)
	}
	return out, nil
}
