package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates all runtime configuration so main stays lean.
type Config struct {
	Server     Server
	Database   Database
	Redis      RedisConfig
	Kafka      Kafka
	UserModule UserModule
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	ShutdownTimeout time.Duration
}

// Database holds PostgreSQL connection settings.
type Database struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the lib/pq connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode)
}

// RedisConfig holds Redis connection settings for the snapshot cache.
// An empty URL disables Redis entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SnapshotTTL  time.Duration
}

// Kafka holds broker settings for the audit pipeline.
// Empty brokers disable Kafka and audit events stay in the local store.
type Kafka struct {
	Brokers       []string
	ConsumerGroup string
	PollInterval  time.Duration
}

// UserModule holds settings for the external identity service.
type UserModule struct {
	BaseURL        string
	AdminEmail     string
	AdminPassword  string
	RequestTimeout time.Duration
}

// FromEnv builds the full configuration from environment variables.
// Defaults favour local development; production overrides everything.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envOr("APP_ADDR", ":8080"),
			JWTSigningKey:   envOr("SECRET_KEY", "dev-secret-key-change-in-production"),
			ShutdownTimeout: envDurationOr("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: Database{
			Host:            envOr("DB_HOST", "localhost"),
			Port:            envOr("DB_PORT", "5432"),
			Name:            envOr("DB_NAME", "basketball_db"),
			User:            envOr("DB_USER", "basketball_user"),
			Password:        envOr("DB_PASSWORD", "basketball_pass_2024"),
			SSLMode:         envOr("DB_SSLMODE", "disable"),
			MaxOpenConns:    envIntOr("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envIntOr("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDurationOr("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
			SnapshotTTL:  envDurationOr("REDIS_SNAPSHOT_TTL", 5*time.Minute),
		},
		Kafka: Kafka{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			ConsumerGroup: envOr("KAFKA_CONSUMER_GROUP", "basketball-audit"),
			PollInterval:  envDurationOr("KAFKA_POLL_INTERVAL", 2*time.Second),
		},
		UserModule: UserModule{
			BaseURL:        envOr("USER_MODULE_URL", "http://localhost:8096"),
			AdminEmail:     os.Getenv("USER_MODULE_ADMIN_EMAIL"),
			AdminPassword:  os.Getenv("USER_MODULE_ADMIN_PASSWORD"),
			RequestTimeout: envDurationOr("USER_MODULE_TIMEOUT", 8*time.Second),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
