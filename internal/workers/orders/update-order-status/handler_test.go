package updateorderstatus

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/models"
	"laundry-workers/internal/orders"
	sendordernotification "laundry-workers/internal/workers/notification/send-order-notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type update struct {
	expected, next models.OrderStatus
	step           *int
}

type MockStore struct {
	order     *models.Order
	updateErr error
	updates   []update
}

func (m *MockStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if m.order == nil {
		return nil, errors.NewResourceNotFoundError("Order", id)
	}
	o := *m.order
	return &o, nil
}

func (m *MockStore) UpdateOrderStatus(ctx context.Context, id string, expected, next models.OrderStatus, step *int, at time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, update{expected: expected, next: next, step: step})
	return nil
}

type MockNotifier struct {
	ExecuteFunc func(ctx context.Context, input *sendordernotification.Input) (*sendordernotification.Output, error)
	inputs      []*sendordernotification.Input
}

func (m *MockNotifier) Execute(ctx context.Context, input *sendordernotification.Input) (*sendordernotification.Output, error) {
	m.inputs = append(m.inputs, input)
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, input)
	}
	return &sendordernotification.Output{Success: true, EmailSent: true}, nil
}

func intPtr(i int) *int { return &i }

func newOrder(status models.OrderStatus, step *int) *models.Order {
	return &models.Order{ID: "order-1", CustomerID: "cust-1", Status: status, StatusStep: step}
}

func createTestHandler(t *testing.T, store Store, notifier Notifier) *Handler {
	return NewHandler(LoadConfig(), store, notifier, logger.NewTestLogger(t))
}

func TestExecute_AdvancesAndNotifies(t *testing.T) {
	store := &MockStore{order: newOrder(models.OrderClaimed, intPtr(3))}
	notifier := &MockNotifier{}

	out, err := createTestHandler(t, store, notifier).Execute(context.Background(),
		&Input{OrderID: "order-1", Status: "picked_up", StatusStep: intPtr(4)})
	require.NoError(t, err)

	assert.Equal(t, "claimed", out.PreviousStatus)
	assert.Equal(t, "picked_up", out.Status)
	assert.Equal(t, orders.Progress{Step: orders.StepPickedUp, Label: "Picked Up", Percent: 31}, out.Progress)
	require.NotNil(t, out.Notification)
	assert.True(t, out.Notification.EmailSent)

	require.Len(t, store.updates, 1)
	assert.Equal(t, models.OrderClaimed, store.updates[0].expected)
	assert.Equal(t, models.OrderPickedUp, store.updates[0].next)

	require.Len(t, notifier.inputs, 1)
	assert.Equal(t, &sendordernotification.Input{OrderID: "order-1", CustomerID: "cust-1", Status: "picked_up"}, notifier.inputs[0])
}

func TestExecute_StepOnlyDoesNotNotify(t *testing.T) {
	store := &MockStore{order: newOrder(models.OrderInProgress, intPtr(6))}
	notifier := &MockNotifier{}

	out, err := createTestHandler(t, store, notifier).Execute(context.Background(),
		&Input{OrderID: "order-1", StatusStep: intPtr(7)})
	require.NoError(t, err)

	assert.Equal(t, "in_progress", out.Status)
	assert.Equal(t, "Washing", out.Progress.Label)
	assert.Empty(t, notifier.inputs)
	require.Len(t, store.updates, 1)
	assert.Equal(t, models.OrderInProgress, store.updates[0].next)
}

func TestExecute_RejectsInvalidChanges(t *testing.T) {
	tests := []struct {
		name  string
		order *models.Order
		input Input
		code  errors.ErrorCode
	}{
		{"regression", newOrder(models.OrderWashed, nil), Input{Status: "claimed"}, errors.ErrCodeInvalidTransition},
		{"cancel after pickup", newOrder(models.OrderPickedUp, nil), Input{Status: "cancelled"}, errors.ErrCodeInvalidTransition},
		{"delivered is final", newOrder(models.OrderDelivered, nil), Input{Status: "completed"}, errors.ErrCodeInvalidTransition},
		{"step backwards", newOrder(models.OrderInProgress, intPtr(8)), Input{StatusStep: intPtr(5)}, errors.ErrCodeInvalidTransition},
		{"step out of range", newOrder(models.OrderInProgress, nil), Input{StatusStep: intPtr(14)}, errors.ErrCodeValidationFailed},
		{"nothing to change", newOrder(models.OrderInProgress, nil), Input{}, errors.ErrCodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockStore{order: tt.order}
			in := tt.input
			in.OrderID = "order-1"

			_, err := createTestHandler(t, store, &MockNotifier{}).Execute(context.Background(), &in)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
			assert.Empty(t, store.updates)
		})
	}
}

func TestExecute_NotificationFailureIsReported(t *testing.T) {
	store := &MockStore{order: newOrder(models.OrderPlaced, nil)}
	notifier := &MockNotifier{ExecuteFunc: func(ctx context.Context, input *sendordernotification.Input) (*sendordernotification.Output, error) {
		return nil, stderrors.New("profile lookup failed")
	}}

	out, err := createTestHandler(t, store, notifier).Execute(context.Background(),
		&Input{OrderID: "order-1", Status: "cancelled"})
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, "profile lookup failed", out.NotificationError)
	assert.Nil(t, out.Notification)
}

func TestExecute_NotifyCanBeDisabled(t *testing.T) {
	store := &MockStore{order: newOrder(models.OrderPlaced, nil)}
	notifier := &MockNotifier{}
	no := false

	_, err := createTestHandler(t, store, notifier).Execute(context.Background(),
		&Input{OrderID: "order-1", Status: "unclaimed", Notify: &no})
	require.NoError(t, err)
	assert.Empty(t, notifier.inputs)
}

func TestExecute_ConcurrentChangeIsReturned(t *testing.T) {
	store := &MockStore{
		order:     newOrder(models.OrderClaimed, nil),
		updateErr: errors.NewBusinessRuleError("Order status changed concurrently", "orderId: order-1"),
	}
	notifier := &MockNotifier{}

	_, err := createTestHandler(t, store, notifier).Execute(context.Background(),
		&Input{OrderID: "order-1", Status: "picked_up"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBusinessRule))
	assert.Empty(t, notifier.inputs)
}
