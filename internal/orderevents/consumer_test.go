package orderevents

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"laundry-workers/internal/common/config"
	"laundry-workers/internal/common/logger"
	sendordernotification "laundry-workers/internal/workers/notification/send-order-notification"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type acknowledger struct {
	mu      sync.Mutex
	acks    []uint64
	nacks   []uint64
	requeue []bool
}

func (a *acknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks = append(a.acks, tag)
	return nil
}

func (a *acknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks = append(a.nacks, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *acknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type MockNotifier struct {
	mu          sync.Mutex
	ExecuteFunc func(ctx context.Context, input *sendordernotification.Input) (*sendordernotification.Output, error)
	inputs      []*sendordernotification.Input
}

func (m *MockNotifier) Execute(ctx context.Context, input *sendordernotification.Input) (*sendordernotification.Output, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, input)
	}
	return &sendordernotification.Output{Success: true, EmailSent: true}, nil
}

type fakeChannel struct {
	deliveries chan amqp.Delivery
	declared   string
	prefetch   int
}

func (f *fakeChannel) Qos(prefetchCount, prefetchSize int, global bool) error {
	f.prefetch = prefetchCount
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	f.declared = name
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

var testConfig = config.RabbitMQConfig{OrderQueue: "order-status-events", ConsumerTag: "test", PrefetchCount: 4}

func delivery(ack *acknowledger, tag uint64, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: []byte(body)}
}

func TestHandle_ForwardsEventAndAcks(t *testing.T) {
	ack := &acknowledger{}
	notifier := &MockNotifier{}
	c := NewConsumer(&fakeChannel{}, testConfig, notifier, logger.NewTestLogger(t))

	c.Handle(context.Background(), delivery(ack, 7, `{"orderId":"order-1","customerId":"cust-1","status":"completed"}`))

	require.Len(t, notifier.inputs, 1)
	assert.Equal(t, &sendordernotification.Input{OrderID: "order-1", CustomerID: "cust-1", Status: "completed"}, notifier.inputs[0])
	assert.Equal(t, []uint64{7}, ack.acks)
	assert.Empty(t, ack.nacks)
}

func TestHandle_RejectsWithoutRequeue(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		notifier *MockNotifier
	}{
		{"not json", `{"orderId":`, &MockNotifier{}},
		{"missing status", `{"orderId":"order-1"}`, &MockNotifier{}},
		{"notifier error", `{"orderId":"order-1","status":"claimed"}`, &MockNotifier{
			ExecuteFunc: func(ctx context.Context, input *sendordernotification.Input) (*sendordernotification.Output, error) {
				return nil, stderrors.New("order lookup failed")
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &acknowledger{}
			c := NewConsumer(&fakeChannel{}, testConfig, tt.notifier, logger.NewTestLogger(t))

			c.Handle(context.Background(), delivery(ack, 3, tt.body))

			assert.Empty(t, ack.acks)
			assert.Equal(t, []uint64{3}, ack.nacks)
			assert.Equal(t, []bool{false}, ack.requeue)
		})
	}
}

func TestRun_ConsumesUntilChannelCloses(t *testing.T) {
	defer goleak.VerifyNone(t)

	ack := &acknowledger{}
	ch := &fakeChannel{deliveries: make(chan amqp.Delivery, 2)}
	notifier := &MockNotifier{}
	c := NewConsumer(ch, testConfig, notifier, logger.NewTestLogger(t))

	ch.deliveries <- delivery(ack, 1, `{"orderId":"order-1","status":"claimed"}`)
	ch.deliveries <- delivery(ack, 2, `{"orderId":"order-2","status":"picked_up"}`)
	close(ch.deliveries)

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, "order-status-events", ch.declared)
	assert.Equal(t, 4, ch.prefetch)
	assert.Equal(t, []uint64{1, 2}, ack.acks)
}

func TestRun_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ch := &fakeChannel{deliveries: make(chan amqp.Delivery)}
	c := NewConsumer(ch, testConfig, &MockNotifier{}, logger.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
