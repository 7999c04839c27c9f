package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.True(t, cfg.Features.EnableRateCaching)
	assert.Equal(t, TaxRatesSourcePostgres, cfg.TaxRates.Source)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("FEATURE_TAX_EVENTS", "false")
	t.Setenv("REDIS_TTL_SECONDS", "60")
	t.Setenv("TAX_RATES_SOURCE", "static")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Features.EnableTaxEvents)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, TaxRatesSourceStatic, cfg.TaxRates.Source)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	t.Setenv("FEATURE_RATE_CACHING", "maybe")
	t.Setenv("KAFKA_BROKERS", " , ")

	cfg := Load()

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.True(t, cfg.Features.EnableRateCaching)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "tax", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=tax sslmode=disable", d.ConnectionString())
}
