package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/shared/infrastructure/convert"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Store
	StoreDriver     string
	SQLitePath      string
	DatabaseURL     string
	DatabaseMaxConn int32
	RedisURL        string
	RedisSessionTTL time.Duration

	// RabbitMQ
	RabbitMQURL   string
	RabbitMQQueue string

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxStatsInterval    time.Duration
	OutboxProcessorEnabled bool

	// Circuit breaker in front of the broker
	BreakerFailureThreshold uint32
	BreakerOpenTimeout      time.Duration

	// Booking
	BusinessDays     int
	DefaultJobNumber string

	// CalDAV
	CalDAVURL          string
	CalDAVUsername     string
	CalDAVPassword     string
	CalDAVCalendarPath string

	// Worker
	WorkerHealthAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		StoreDriver:     getEnv("STORE_DRIVER", "sqlite"),
		SQLitePath:      getEnv("SQLITE_PATH", defaultSQLitePath()),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DatabaseMaxConn: convert.IntToInt32Clamped(getIntEnv("DATABASE_MAX_CONNS", 10)),
		RedisURL:        getEnv("REDIS_URL", ""),
		RedisSessionTTL: getDurationEnv("REDIS_SESSION_TTL", 72*time.Hour),

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue: getEnv("RABBITMQ_QUEUE", "opportunity.booking.worker"),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 250*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 50),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", 30*time.Second),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		BreakerFailureThreshold: convert.IntToUint32Clamped(getIntEnv("BREAKER_FAILURE_THRESHOLD", 5)),
		BreakerOpenTimeout:      getDurationEnv("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		BusinessDays:     getIntEnv("BUSINESS_DAYS", 10),
		DefaultJobNumber: getEnv("DEFAULT_JOB_NUMBER", "JOB-2023-001"),

		CalDAVURL:          getEnv("CALDAV_URL", ""),
		CalDAVUsername:     getEnv("CALDAV_USERNAME", ""),
		CalDAVPassword:     getEnv("CALDAV_PASSWORD", ""),
		CalDAVCalendarPath: getEnv("CALDAV_CALENDAR_PATH", ""),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8090"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CalDAVEnabled reports whether confirmed appointments go to a CalDAV calendar.
func (c *Config) CalDAVEnabled() bool {
	return c.CalDAVURL != ""
}

// BrokerEnabled reports whether events are also published to RabbitMQ.
func (c *Config) BrokerEnabled() bool {
	return c.RabbitMQURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".opportunity", "data.db")
	}
	return filepath.Join(home, ".opportunity", "data.db")
}
