// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	RabbitMQ      RabbitMQConfig          `mapstructure:"rabbitmq"`
	HTTP          HTTPConfig              `mapstructure:"http"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Auth          AuthConfig              `mapstructure:"auth"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Template      TemplateConfig          `mapstructure:"template"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	TLS            bool   `mapstructure:"tls"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ElasticsearchConfig configures the delivery-log audit mirror. An empty address list disables it.
type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	AuditIndex string   `mapstructure:"audit_index"`
}

func (e ElasticsearchConfig) Enabled() bool {
	return len(e.Addresses) > 0
}

type RedisConfig struct {
	Address          string `mapstructure:"address"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	PoolSize         int    `mapstructure:"pool_size"`
	TemplateCacheTTL int    `mapstructure:"template_cache_ttl"` // seconds
}

// RabbitMQConfig configures the order-event consumer. An empty URL disables it.
type RabbitMQConfig struct {
	URL           string `mapstructure:"url"`
	OrderQueue    string `mapstructure:"order_queue"`
	ConsumerTag   string `mapstructure:"consumer_tag"`
	PrefetchCount int    `mapstructure:"prefetch_count"`
}

type HTTPConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// AuthConfig holds the identity provider used to validate bearer tokens and disable accounts.
type AuthConfig struct {
	Keycloak struct {
		URL          string `mapstructure:"url"`
		Realm        string `mapstructure:"realm"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		Timeout      int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"keycloak"`
}

// NotificationConfig holds delivery provider settings shared by every sending worker.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		Provider  string `mapstructure:"provider"` // "api" or "ses"
		FromEmail string `mapstructure:"from_email"`
		APIURL    string `mapstructure:"api_url"`
		APIKey    string `mapstructure:"api_key"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled    bool   `mapstructure:"enabled"`
		Provider   string `mapstructure:"provider"` // "gateway" or "sns"
		FromNumber string `mapstructure:"from_number"`
		GatewayURL string `mapstructure:"gateway_url"`
		AccountSID string `mapstructure:"account_sid"`
		AuthToken  string `mapstructure:"auth_token"`
	} `mapstructure:"sms"`
	AWS             AWSConfig `mapstructure:"aws"`
	ProviderTimeout int       `mapstructure:"provider_timeout"` // milliseconds
	MaxConcurrency  int       `mapstructure:"max_concurrency"`
	SendRate        float64   `mapstructure:"send_rate"` // sends per second across a fan-out
	SendBurst       int       `mapstructure:"send_burst"`
}

// TemplateConfig points at the default template registry used for seeding and test sends.
type TemplateConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// AWSConfig selects the region for SES and SNS. Endpoint and static keys are for local stacks
// such as LocalStack; leave them empty to use the default credential chain.
type AWSConfig struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}
