package notifyneworder

import (
	"time"

	"laundry-workers/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	MaxConcurrency int
	SendRate       float64
	SendBurst      int
}

func LoadConfig(n config.NotificationConfig) *Config {
	return &Config{
		Timeout:        time.Minute,
		MaxConcurrency: n.MaxConcurrency,
		SendRate:       n.SendRate,
		SendBurst:      n.SendBurst,
	}
}
