package store

import (
	"context"
	"fmt"
	"time"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/models"

	"github.com/lib/pq"
)

const orderColumns = `id, COALESCE(order_number, '') AS order_number, customer_id, washer_id, status, status_step,
	COALESCE(service_name, '') AS service_name, COALESCE(zip_code, '') AS zip_code, total_cents,
	washer_earnings_cents, is_express, created_at, claimed_at, completed_at`

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := s.db.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NewResourceNotFoundError("Order", fmt.Sprintf("orderId: %s", id))
		}
		return nil, errors.NewQueryExecutionFailedError("get_order", err)
	}
	return &o, nil
}

// CountActiveOrders counts the customer's orders that are not completed, delivered or cancelled.
func (s *Store) CountActiveOrders(ctx context.Context, customerID string) (int, error) {
	inactive := make([]string, 0, len(models.InactiveOrderStatuses))
	for _, st := range models.InactiveOrderStatuses {
		inactive = append(inactive, string(st))
	}

	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM orders WHERE customer_id = $1 AND status <> ALL($2)`,
		customerID, pq.Array(inactive))
	if err != nil {
		return 0, errors.NewQueryExecutionFailedError("count_active_orders", err)
	}
	return n, nil
}

// UpdateOrderStatus moves an order from expected to next. It fails with a business error when
// the row is no longer in the expected status, so concurrent updates cannot regress an order.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, expected, next models.OrderStatus, step *int, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET
			status = $3,
			status_step = COALESCE($4, status_step),
			claimed_at = CASE WHEN $3 = 'claimed' AND claimed_at IS NULL THEN $5 ELSE claimed_at END,
			completed_at = CASE WHEN $3 IN ('completed', 'delivered') AND completed_at IS NULL THEN $5 ELSE completed_at END
		WHERE id = $1 AND status = $2`,
		id, string(expected), string(next), step, at)
	if err != nil {
		return errors.NewQueryExecutionFailedError("update_order_status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionFailedError("update_order_status", err)
	}
	if n == 0 {
		return errors.NewBusinessRuleError("Order status changed concurrently",
			fmt.Sprintf("orderId: %s, expected: %s", id, expected))
	}
	return nil
}

// CompletedOrdersBetween returns orders completed in [from, to).
func (s *Store) CompletedOrdersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, `SELECT `+orderColumns+` FROM orders
		WHERE status IN ('completed', 'delivered') AND completed_at >= $1 AND completed_at < $2
		ORDER BY completed_at`, from, to)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("completed_orders_between", err)
	}
	return orders, nil
}
