// Package orderevents feeds order status changes published on RabbitMQ to the order notifier.
package orderevents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"laundry-workers/internal/common/config"
	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/common/metrics"
	sendordernotification "laundry-workers/internal/workers/notification/send-order-notification"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event is the message body published when an order changes status.
type Event struct {
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId"`
	Status     string `json:"status"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

type Notifier interface {
	Execute(ctx context.Context, input *sendordernotification.Input) (*sendordernotification.Output, error)
}

// Channel is the part of *amqp.Channel the consumer uses.
type Channel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Consumer struct {
	channel  Channel
	cfg      config.RabbitMQConfig
	notifier Notifier
	timeout  time.Duration
	logger   logger.Logger
}

func NewConsumer(channel Channel, cfg config.RabbitMQConfig, notifier Notifier, log logger.Logger) *Consumer {
	return &Consumer{
		channel:  channel,
		cfg:      cfg,
		notifier: notifier,
		timeout:  30 * time.Second,
		logger:   log.WithFields(map[string]interface{}{"queue": cfg.OrderQueue}),
	}
}

// Dial opens a connection and channel to the broker.
func Dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	return conn, ch, nil
}

// Run consumes until ctx is cancelled or the broker closes the delivery channel.
func (c *Consumer) Run(ctx context.Context) error {
	if _, err := c.channel.QueueDeclare(c.cfg.OrderQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.cfg.OrderQueue, err)
	}
	if err := c.channel.Qos(c.cfg.PrefetchCount, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := c.channel.ConsumeWithContext(ctx, c.cfg.OrderQueue, c.cfg.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.OrderQueue, err)
	}

	c.logger.Info("order event consumer started", nil)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Warn("delivery channel closed", nil)
				return nil
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle processes one delivery. Malformed messages and failed notifications are rejected
// without requeue; delivery attempts are never retried automatically.
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) {
	var ev Event
	if err := json.Unmarshal(d.Body, &ev); err != nil || ev.OrderID == "" || ev.Status == "" {
		c.logger.Warn("discarding malformed order event", map[string]interface{}{
			"deliveryTag": d.DeliveryTag,
			"messageId":   d.MessageId,
		})
		metrics.OrderEventsConsumed.WithLabelValues("invalid").Inc()
		c.reject(d)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.notifier.Execute(ctx, &sendordernotification.Input{
		OrderID:    ev.OrderID,
		CustomerID: ev.CustomerID,
		Status:     ev.Status,
		Email:      ev.Email,
		Phone:      ev.Phone,
	})
	if err != nil {
		stdErr := errors.AsStandardError(err)
		c.logger.Error("order notification failed", map[string]interface{}{
			"orderId":   ev.OrderID,
			"status":    ev.Status,
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		metrics.OrderEventsConsumed.WithLabelValues("failed").Inc()
		c.reject(d)
		return
	}

	if err := d.Ack(false); err != nil {
		c.logger.Error("ack failed", map[string]interface{}{"deliveryTag": d.DeliveryTag, "error": err.Error()})
	}
	metrics.OrderEventsConsumed.WithLabelValues("processed").Inc()
	c.logger.Debug("order event processed", map[string]interface{}{
		"orderId":   ev.OrderID,
		"status":    ev.Status,
		"emailSent": out.EmailSent,
		"smsSent":   out.SMSSent,
	})
}

func (c *Consumer) reject(d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		c.logger.Error("nack failed", map[string]interface{}{"deliveryTag": d.DeliveryTag, "error": err.Error()})
	}
}
