package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Scheduler    SchedulerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Format string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig holds landlord email delivery settings.
type NotificationConfig struct {
	EmailFrom    string
	AMQPURL      string
	Exchange     string
	Queue        string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	DashboardURL string
}

// SchedulerConfig controls the background sweeps.
type SchedulerConfig struct {
	Enabled                bool
	PresenceIntervalSec    int
	OfflineThresholdSec    int
	RetentionDays          int
	RetentionDelaySec      int
	RetentionIntervalHours int
	HeartbeatThrottleSec   int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "estate-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60*12),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			EmailFrom:    getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			AMQPURL:      os.Getenv("NOTIFY_AMQP_URL"),
			Exchange:     getEnv("NOTIFY_EXCHANGE", "estate.notifications"),
			Queue:        getEnv("NOTIFY_QUEUE", "estate.landlord-mail"),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     smtpPort,
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
			DashboardURL: getEnv("NOTIFY_DASHBOARD_URL", "http://localhost:3000"),
		},
		Scheduler: SchedulerConfig{
			Enabled:                getEnvAsBool("SCHEDULER_ENABLED", true),
			PresenceIntervalSec:    getEnvAsInt("PRESENCE_SWEEP_INTERVAL_SECONDS", 300),
			OfflineThresholdSec:    getEnvAsInt("PRESENCE_OFFLINE_THRESHOLD_SECONDS", 300),
			RetentionDays:          getEnvAsInt("ACTIVITY_RETENTION_DAYS", 7),
			RetentionDelaySec:      getEnvAsInt("ACTIVITY_RETENTION_DELAY_SECONDS", 10),
			RetentionIntervalHours: getEnvAsInt("ACTIVITY_RETENTION_INTERVAL_HOURS", 24),
			HeartbeatThrottleSec:   getEnvAsInt("PRESENCE_HEARTBEAT_THROTTLE_SECONDS", 30),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SMTPAddr returns host:port for the mail relay, or "" when SMTP is disabled.
func (n NotificationConfig) SMTPAddr() string {
	if n.SMTPHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", n.SMTPHost, n.SMTPPort)
}

func (s SchedulerConfig) PresenceInterval() time.Duration {
	return seconds(s.PresenceIntervalSec, 300)
}

func (s SchedulerConfig) OfflineThreshold() time.Duration {
	return seconds(s.OfflineThresholdSec, 300)
}

func (s SchedulerConfig) RetentionDelay() time.Duration {
	if s.RetentionDelaySec < 0 {
		return 0
	}
	return time.Duration(s.RetentionDelaySec) * time.Second
}

func (s SchedulerConfig) RetentionInterval() time.Duration {
	if s.RetentionIntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.RetentionIntervalHours) * time.Hour
}

// HeartbeatThrottle is kept below the offline threshold; otherwise the sweep
// could flip an active user offline while their heartbeats are suppressed.
func (s SchedulerConfig) HeartbeatThrottle() time.Duration {
	if s.HeartbeatThrottleSec <= 0 {
		return 0
	}
	throttle := time.Duration(s.HeartbeatThrottleSec) * time.Second
	if limit := s.OfflineThreshold(); throttle >= limit {
		return limit / 2
	}
	return throttle
}

func seconds(val, fallback int) time.Duration {
	if val <= 0 {
		val = fallback
	}
	return time.Duration(val) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
