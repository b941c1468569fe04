package requestdeletion

import "time"

type Config struct {
	Timeout     time.Duration
	GracePeriod time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		GracePeriod: 7 * 24 * time.Hour,
	}
}
