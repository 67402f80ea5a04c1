package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
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
	Outbox       OutboxConfig
	Assignment   AssignmentConfig
	Realtime     RealtimeConfig
	Media        MediaConfig
	RateLimit    RateLimitConfig
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
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PasswordResetTTLMinutes int
	BcryptCost              int
}

// NotificationConfig holds the outbound mail relay settings.
// An empty SMTPHost selects the log sender.
type NotificationConfig struct {
	EmailFrom    string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	AdminEmails  []string
}

// OutboxConfig tunes the notification delivery worker.
type OutboxConfig struct {
	PollIntervalSeconds int
	BatchSize           int
	MaxAttempts         int
	InitialDelaySeconds int
	MaxDelaySeconds     int
	LeaseSeconds        int
}

// AssignmentConfig tunes the staff assignment resolver.
type AssignmentConfig struct {
	MaxCASRetries int
}

// RealtimeConfig configures the websocket gateway and its redis channel.
type RealtimeConfig struct {
	Addr           string
	Channel        string
	AllowedOrigins []string
}

// MediaConfig configures the room image store.
type MediaConfig struct {
	Dir       string
	BaseURL   string
	MaxWidth  int
	MaxUpload int
}

// RateLimitConfig configures the per-IP limiter on sensitive routes.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "hotel-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			EmailFrom:    getEnv("NOTIFY_EMAIL_FROM", "frontdesk@hotel.local"),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
			AdminEmails:  getEnvAsList("NOTIFY_ADMIN_EMAILS"),
		},
		Outbox: OutboxConfig{
			PollIntervalSeconds: getEnvAsInt("OUTBOX_POLL_INTERVAL_SECONDS", 5),
			BatchSize:           getEnvAsInt("OUTBOX_BATCH_SIZE", 50),
			MaxAttempts:         getEnvAsInt("OUTBOX_MAX_ATTEMPTS", 5),
			InitialDelaySeconds: getEnvAsInt("OUTBOX_RETRY_INITIAL_SECONDS", 10),
			MaxDelaySeconds:     getEnvAsInt("OUTBOX_RETRY_MAX_SECONDS", 600),
			LeaseSeconds:        getEnvAsInt("OUTBOX_LEASE_SECONDS", 300),
		},
		Assignment: AssignmentConfig{
			MaxCASRetries: getEnvAsInt("ASSIGNMENT_MAX_CAS_RETRIES", 3),
		},
		Realtime: RealtimeConfig{
			Addr:           getEnv("REALTIME_ADDR", "0.0.0.0:8081"),
			Channel:        getEnv("REALTIME_CHANNEL", "hotel:realtime"),
			AllowedOrigins: getEnvAsListDefault("REALTIME_ALLOWED_ORIGINS", []string{"*"}),
		},
		Media: MediaConfig{
			Dir:       getEnv("MEDIA_DIR", "./media"),
			BaseURL:   getEnv("MEDIA_BASE_URL", "/media"),
			MaxWidth:  getEnvAsInt("MEDIA_MAX_WIDTH", 1600),
			MaxUpload: getEnvAsInt("MEDIA_MAX_UPLOAD_BYTES", 10<<20),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 5),
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

// Lease returns how long a claimed row is hidden from other passes.
func (o OutboxConfig) Lease() time.Duration {
	if o.LeaseSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(o.LeaseSeconds) * time.Second
}

// PollInterval returns the outbox polling period.
func (o OutboxConfig) PollInterval() time.Duration {
	if o.PollIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(o.PollIntervalSeconds) * time.Second
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

func getEnvAsList(key string) []string {
	return getEnvAsListDefault(key, nil)
}

func getEnvAsListDefault(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
