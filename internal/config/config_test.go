package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "MONGO_URI", "MONGO_DB", "JWT_SECRET", "JWT_EXPIRY",
		"MAX_PAGE_SIZE", "S3_REGION", "S3_BUCKET", "MQTT_BROKER_URL",
		"RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW_SECONDS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "carsawa", cfg.DBName)
	assert.Equal(t, 720*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Empty(t, cfg.S3.Bucket)
	assert.Empty(t, cfg.MQTT.BrokerURL)
	assert.Equal(t, "carsawa/listings", cfg.MQTT.TopicPrefix)
	assert.Equal(t, 100, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 900, cfg.RateLimit.WindowSeconds)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("MONGO_DB", "carsawa_test")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("MAX_PAGE_SIZE", "25")
	t.Setenv("S3_BUCKET", "carsawa-images")
	t.Setenv("RATE_LIMIT_MAX", "10")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "carsawa_test", cfg.DBName)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 25, cfg.MaxPageSize)
	assert.Equal(t, "carsawa-images", cfg.S3.Bucket)
	assert.Equal(t, 10, cfg.RateLimit.MaxRequests)
}

func TestLoad_IgnoresUnparseableValues(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "soon")
	t.Setenv("MAX_PAGE_SIZE", "lots")

	cfg := Load()

	assert.Equal(t, 720*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 100, cfg.MaxPageSize)
}
