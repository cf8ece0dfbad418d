package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Session     SessionConfig
	Buffer      BufferConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
	Property    PropertyConfig
	Escalation  EscalationConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
	MaxBodySize  int
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

// DSN returns URL when set, otherwise a connection string built from the parts.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}

type RedisConfig struct {
	URL          string
	Password     string
	DB           int
	EventChannel string
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type SessionConfig struct {
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type BufferConfig struct {
	Path            string
	MaxSize         int
	RetentionHours  int
	SyncInterval    time.Duration
	MaxRetry        int
	BatchSize       int
	CleanupSchedule string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// PropertyConfig describes the resort itself. Shift wall-clock times are
// interpreted in Location.
type PropertyConfig struct {
	Timezone string
	Location *time.Location
}

type EscalationConfig struct {
	Enabled      bool
	ScanInterval time.Duration
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "hermes-monitoring"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt("SERVER_MAX_CONN", 0),
			MaxBodySize:  getInt("SERVER_MAX_BODY_SIZE", 4<<20),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "hermes"),
			User:            getString("DB_USER", "hermes"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:          getString("REDIS_URL", "redis://localhost:6379"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           getInt("REDIS_DB", 0),
			EventChannel: getString("REDIS_EVENT_CHANNEL", "hermes:tasks"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "hermes-monitoring"),
			TTL:    getDuration("JWT_TTL", 12*time.Hour),
		},
		Session: SessionConfig{
			TTL:          getDuration("SESSION_TTL", 12*time.Hour),
			CookieName:   getString("SESSION_COOKIE_NAME", "hermes_session"),
			CookieSecure: getBool("SESSION_COOKIE_SECURE", false),
		},
		Buffer: BufferConfig{
			Path:            getString("BOLTDB_PATH", "./data/buffer.db"),
			MaxSize:         getInt("BUFFER_MAX_SIZE", 100_000),
			RetentionHours:  getInt("BUFFER_RETENTION_HOURS", 24),
			SyncInterval:    getDuration("SYNC_INTERVAL_SECONDS", 30*time.Second),
			MaxRetry:        getInt("MAX_RETRY_ATTEMPTS", 3),
			BatchSize:       getInt("BUFFER_BATCH_SIZE", 100),
			CleanupSchedule: getString("BUFFER_CLEANUP_SCHEDULE", "@hourly"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
		Property: PropertyConfig{
			Timezone: getString("PROPERTY_TIMEZONE", "UTC"),
		},
		Escalation: EscalationConfig{
			Enabled:      getBool("ESCALATION_ENABLED", true),
			ScanInterval: getDuration("ESCALATION_SCAN_INTERVAL", time.Minute),
		},
	}

	loc, err := time.LoadLocation(cfg.Property.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load PROPERTY_TIMEZONE %q: %w", cfg.Property.Timezone, err)
	}
	cfg.Property.Location = loc

	if cfg.Database.URL == "" {
		cfg.Database.URL = cfg.Database.DSN()
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
