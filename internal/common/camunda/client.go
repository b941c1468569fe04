package camunda

import (
	"context"
	"fmt"
	"time"

	"laundry-workers/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client owns the gateway connection shared by every job worker.
type Client struct {
	client         zbc.Client
	requestTimeout time.Duration
}

// NewClient connects to the configured gateway and fails unless its topology answers.
func NewClient(cfg config.CamundaConfig) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: !cfg.TLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, requestTimeout: config.GetDuration(cfg.RequestTimeout)}
	if err := c.HealthCheck(context.Background()); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
	}
	return c, nil
}

func (c *Client) Zeebe() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck asks the gateway for its topology and requires at least one broker.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	topology, err := c.client.NewTopologyCommand().Send(ctx)
	if err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	if len(topology.GetBrokers()) == 0 {
		return fmt.Errorf("zeebe gateway reports no brokers")
	}
	return nil
}
