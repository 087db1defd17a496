package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when the corresponding variable is unset or invalid.
const (
	DefaultAddr           = ":8080"
	DefaultEnvironment    = "development"
	DefaultApplicantTopic = "applicant.registered"
	DefaultMinAge         = 16
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultForeignMinLen  = 4
	DefaultForeignMaxLen  = 20
	PivotDerivedFromClock = -1
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	Environment string
	AdminToken  string
	LogLevel    string

	Identity     IdentityConfig
	Registration RegistrationConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
}

// IdentityConfig tunes the ID number validator.
type IdentityConfig struct {
	// CenturyPivot is the largest two-digit year read as 20YY.
	// PivotDerivedFromClock derives it from the current year at startup.
	CenturyPivot     int
	ForeignMinLength int
	ForeignMaxLength int
}

// RegistrationConfig holds applicant registration policy.
type RegistrationConfig struct {
	MinAge         int
	IdempotencyTTL time.Duration
}

// DatabaseConfig enables the Postgres applicant store when URL is set.
type DatabaseConfig struct {
	URL string
}

// RedisConfig enables the Redis idempotency store when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers        []string
	ApplicantTopic string
}

// IsProduction reports whether the service runs in production.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:        stringOr("ADDR", DefaultAddr),
		Environment: stringOr("ENVIRONMENT", DefaultEnvironment),
		AdminToken:  os.Getenv("ADMIN_TOKEN"),
		LogLevel:    stringOr("LOG_LEVEL", "info"),
		Identity: IdentityConfig{
			CenturyPivot:     intInRange("ID_CENTURY_PIVOT", PivotDerivedFromClock, 0, 99),
			ForeignMinLength: intInRange("FOREIGN_ID_MIN_LEN", DefaultForeignMinLen, 1, 64),
			ForeignMaxLength: intInRange("FOREIGN_ID_MAX_LEN", DefaultForeignMaxLen, 1, 64),
		},
		Registration: RegistrationConfig{
			MinAge:         intInRange("REGISTRATION_MIN_AGE", DefaultMinAge, 0, 130),
			IdempotencyTTL: durationOr("IDEMPOTENCY_TTL", DefaultIdempotencyTTL),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:        splitList(os.Getenv("KAFKA_BROKERS")),
			ApplicantTopic: stringOr("KAFKA_APPLICANT_TOPIC", DefaultApplicantTopic),
		},
	}
}

func stringOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intInRange(key string, fallback, lo, hi int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return fallback
	}
	return n
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
