package behavioraltriggers

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Minute,
	}
}
