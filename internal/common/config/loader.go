// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like NOTIFICATIONS_SMS_AUTH_TOKEN
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills provider secrets that are conventionally kept out of YAML.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Notifications.Email.APIKey, "EMAIL_API_KEY")
	setIfEmpty(&cfg.Notifications.SMS.AccountSID, "SMS_ACCOUNT_SID")
	setIfEmpty(&cfg.Notifications.SMS.AuthToken, "SMS_AUTH_TOKEN")
	setIfEmpty(&cfg.Auth.Keycloak.ClientSecret, "KEYCLOAK_CLIENT_SECRET")
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.RabbitMQ.URL, "RABBITMQ_URL")
	setIfEmpty(&cfg.Notifications.AWS.AccessKeyID, "AWS_ACCESS_KEY_ID")
	setIfEmpty(&cfg.Notifications.AWS.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*dst = val
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "laundry-workers"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.PoolSize == 0 {
		cfg.Database.Redis.PoolSize = 10
	}
	if cfg.Database.Redis.TemplateCacheTTL == 0 {
		cfg.Database.Redis.TemplateCacheTTL = 300
	}
	if cfg.Database.Elasticsearch.AuditIndex == "" {
		cfg.Database.Elasticsearch.AuditIndex = "notification-delivery-log"
	}

	if cfg.RabbitMQ.OrderQueue == "" {
		cfg.RabbitMQ.OrderQueue = "order-status-events"
	}
	if cfg.RabbitMQ.ConsumerTag == "" {
		cfg.RabbitMQ.ConsumerTag = "laundry-notifier"
	}
	if cfg.RabbitMQ.PrefetchCount == 0 {
		cfg.RabbitMQ.PrefetchCount = 10
	}

	if cfg.Auth.Keycloak.Timeout == 0 {
		cfg.Auth.Keycloak.Timeout = 10000
	}

	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15000
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60000
	}

	if cfg.Notifications.Email.Provider == "" {
		cfg.Notifications.Email.Provider = "api"
	}
	if cfg.Notifications.SMS.Provider == "" {
		cfg.Notifications.SMS.Provider = "gateway"
	}
	if cfg.Notifications.SMS.GatewayURL == "" {
		cfg.Notifications.SMS.GatewayURL = "https://api.twilio.com/2010-04-01"
	}
	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "us-east-1"
	}
	if cfg.Notifications.ProviderTimeout == 0 {
		cfg.Notifications.ProviderTimeout = 10000
	}
	if cfg.Notifications.MaxConcurrency == 0 {
		cfg.Notifications.MaxConcurrency = 10
	}
	if cfg.Notifications.SendRate == 0 {
		cfg.Notifications.SendRate = 20
	}
	if cfg.Notifications.SendBurst == 0 {
		cfg.Notifications.SendBurst = 5
	}

	if cfg.Template.RegistryPath == "" {
		cfg.Template.RegistryPath = "configs/templates.json"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	switch cfg.Notifications.Email.Provider {
	case "api":
		if cfg.Notifications.Email.Enabled && cfg.Notifications.Email.APIURL == "" {
			return fmt.Errorf("notifications.email.api_url is required for the api provider")
		}
	case "ses":
	default:
		return fmt.Errorf("notifications.email.provider must be api or ses, got %q", cfg.Notifications.Email.Provider)
	}

	switch cfg.Notifications.SMS.Provider {
	case "gateway":
		if cfg.Notifications.SMS.Enabled && cfg.Notifications.SMS.AccountSID == "" {
			return fmt.Errorf("notifications.sms.account_sid is required for the gateway provider")
		}
	case "sns":
	default:
		return fmt.Errorf("notifications.sms.provider must be gateway or sns, got %q", cfg.Notifications.SMS.Provider)
	}

	if cfg.Notifications.MaxConcurrency < 1 {
		return fmt.Errorf("notifications.max_concurrency must be positive")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
