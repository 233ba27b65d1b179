package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. It is read once at startup and
// passed explicitly into each component; nothing reads the environment after
// FromEnv returns.
type Config struct {
	Addr string

	// Backend collaborator (proofs, sessions, volume snapshots, dispatch).
	BackendURL     string
	BackendTimeout time.Duration

	// Correlation of asynchronous responses.
	CorrelationTimeout time.Duration

	// Verification sessions expire if no completion callback arrives.
	SessionTimeout time.Duration

	// Admin API authentication.
	AdminJWTKey string

	// Decision store. An empty DSN keeps decisions in memory.
	PostgresDSN string

	Redis RedisConfig
	Kafka KafkaConfig
}

// RedisConfig configures the optional Redis-backed daily volume store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the compliance report publisher. Empty brokers
// disable publishing.
type KafkaConfig struct {
	Brokers     []string
	ReportTopic string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:               getEnv("PAYGATE_ADDR", ":8080"),
		BackendURL:         getEnv("BACKEND_URL", "http://localhost:3001"),
		BackendTimeout:     getDuration("BACKEND_TIMEOUT", 5*time.Second),
		CorrelationTimeout: getDuration("CORRELATION_TIMEOUT", 10*time.Second),
		SessionTimeout:     getDuration("VERIFICATION_SESSION_TIMEOUT", 15*time.Minute),
		AdminJWTKey:        getEnv("ADMIN_JWT_KEY", "dev-secret-key-change-in-production"),
		PostgresDSN:        os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			ReportTopic: getEnv("REPORT_TOPIC", "paygate.compliance.reports"),
		},
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
