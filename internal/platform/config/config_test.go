package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"ADDR", "ENVIRONMENT", "ADMIN_TOKEN", "LOG_LEVEL", "DATABASE_URL", "REDIS_URL",
		"KAFKA_BROKERS", "KAFKA_APPLICANT_TOPIC", "ID_CENTURY_PIVOT", "FOREIGN_ID_MIN_LEN",
		"FOREIGN_ID_MAX_LEN", "REGISTRATION_MIN_AGE", "IDEMPOTENCY_TTL",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultEnvironment, cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.AdminToken)
	assert.Equal(t, PivotDerivedFromClock, cfg.Identity.CenturyPivot)
	assert.Equal(t, DefaultForeignMinLen, cfg.Identity.ForeignMinLength)
	assert.Equal(t, DefaultForeignMaxLen, cfg.Identity.ForeignMaxLength)
	assert.Equal(t, DefaultMinAge, cfg.Registration.MinAge)
	assert.Equal(t, DefaultIdempotencyTTL, cfg.Registration.IdempotencyTTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultApplicantTopic, cfg.Kafka.ApplicantTopic)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ID_CENTURY_PIVOT", "25")
	t.Setenv("FOREIGN_ID_MIN_LEN", "6")
	t.Setenv("FOREIGN_ID_MAX_LEN", "12")
	t.Setenv("REGISTRATION_MIN_AGE", "18")
	t.Setenv("IDEMPOTENCY_TTL", "90m")
	t.Setenv("KAFKA_BROKERS", " broker-1:9092, ,broker-2:9092 ")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 25, cfg.Identity.CenturyPivot)
	assert.Equal(t, 6, cfg.Identity.ForeignMinLength)
	assert.Equal(t, 12, cfg.Identity.ForeignMaxLength)
	assert.Equal(t, 18, cfg.Registration.MinAge)
	assert.Equal(t, 90*time.Minute, cfg.Registration.IdempotencyTTL)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ID_CENTURY_PIVOT", "100")
	t.Setenv("REGISTRATION_MIN_AGE", "old")
	t.Setenv("IDEMPOTENCY_TTL", "-5m")

	cfg := FromEnv()

	assert.Equal(t, PivotDerivedFromClock, cfg.Identity.CenturyPivot)
	assert.Equal(t, DefaultMinAge, cfg.Registration.MinAge)
	assert.Equal(t, DefaultIdempotencyTTL, cfg.Registration.IdempotencyTTL)
}
