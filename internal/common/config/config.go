// internal/common/config/config.go
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Auth          AuthConfig              `mapstructure:"auth"`
	Screening     ScreeningConfig         `mapstructure:"screening"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	APIs          APIsConfig              `mapstructure:"apis"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Tracing       TracingConfig           `mapstructure:"tracing"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the public HTTP API settings.
type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	OpsPort         int      `mapstructure:"ops_port"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	MaxUploadBytes  int64    `mapstructure:"max_upload_bytes"`
}

// Addr returns the listen address of the API server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// OpsAddr returns the listen address of the health/metrics server.
func (s ServerConfig) OpsAddr() string {
	return fmt.Sprintf(":%d", s.OpsPort)
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	ProcessID      string `mapstructure:"process_id"`
	ProcessFile    string `mapstructure:"process_file"`
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

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	JobsIndex string   `mapstructure:"jobs_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	CacheTTL int    `mapstructure:"cache_ttl"` // milliseconds
	PoolSize int    `mapstructure:"pool_size"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret"`
	JWTIssuer  string `mapstructure:"jwt_issuer"`
	ExpiresIn  string `mapstructure:"expires_in"`
	BcryptCost int    `mapstructure:"bcrypt_cost"`
}

// TokenTTL parses ExpiresIn, accepting Go durations and a trailing "d" for days.
func (a AuthConfig) TokenTTL() time.Duration {
	raw := strings.TrimSpace(a.ExpiresIn)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n > 0 {
			return time.Duration(n) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// ScreeningConfig controls the asynchronous screening pipeline.
type ScreeningConfig struct {
	Backend       string `mapstructure:"backend"` // "pool" or "zeebe"
	Concurrency   int    `mapstructure:"concurrency"`
	PollInterval  int    `mapstructure:"poll_interval"`  // milliseconds
	RunTimeout    int    `mapstructure:"run_timeout"`    // milliseconds
	WriteTimeout  int    `mapstructure:"write_timeout"`  // milliseconds
	StaleAfter    int    `mapstructure:"stale_after"`    // milliseconds
	SweepInterval int    `mapstructure:"sweep_interval"` // milliseconds
	SweepBatch    int    `mapstructure:"sweep_batch"`
	MaxAttempts   int    `mapstructure:"max_attempts"`
}

const (
	ScreeningBackendPool  = "pool"
	ScreeningBackendZeebe = "zeebe"
)

// IntegrationConfig holds settings for AWS services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled bool `mapstructure:"enabled"`
		} `mapstructure:"sns"`
		S3 struct {
			Enabled bool   `mapstructure:"enabled"`
			Bucket  string `mapstructure:"bucket"`
			Prefix  string `mapstructure:"prefix"`
		} `mapstructure:"s3"`
	} `mapstructure:"aws"`
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI struct {
		APIKey         string `mapstructure:"api_key"`
		Model          string `mapstructure:"model"`
		Timeout        int    `mapstructure:"timeout"` // milliseconds
		MaxDocumentMiB int    `mapstructure:"max_document_mib"`
	} `mapstructure:"genai"`
}

// NotificationConfig holds settings for the send-notification worker.
type NotificationConfig struct {
	Email struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"sms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TracingConfig holds the Jaeger exporter settings.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}
