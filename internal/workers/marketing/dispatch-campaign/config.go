package dispatchcampaign

import (
	"time"

	"laundry-workers/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	MaxConcurrency int
	SendRate       float64 // sends per second
	SendBurst      int
}

func LoadConfig(n config.NotificationConfig) *Config {
	return &Config{
		Timeout:        2 * time.Minute,
		MaxConcurrency: n.MaxConcurrency,
		SendRate:       n.SendRate,
		SendBurst:      n.SendBurst,
	}
}
