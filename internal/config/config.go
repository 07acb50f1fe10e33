package config

import (
	"os"
	"strconv"
	"time"
)

// S3 holds the object store settings for listing images. Endpoint is only
// set when pointing at an S3-compatible server such as MinIO.
type S3 struct {
	Region        string
	Bucket        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	KeyPrefix     string
	PublicBaseURL string
}

// MQTT holds the optional listing-event broker settings. An empty BrokerURL
// disables event publishing.
type MQTT struct {
	BrokerURL   string
	ClientID    string
	TopicPrefix string
}

// RateLimit holds the per-IP request budget applied to the API.
type RateLimit struct {
	MaxRequests   int
	WindowSeconds int
}

// Config is the immutable process configuration, built once at startup and
// passed into each component's constructor.
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	JWTSecret   string
	JWTExpiry   time.Duration
	MaxPageSize int
	S3          S3
	MQTT        MQTT
	RateLimit   RateLimit
}

// Load builds a Config from the environment, applying defaults for anything
// unset.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("MONGO_DB", "carsawa"),
		JWTSecret:   getEnv("JWT_SECRET", "default-secret-key-change-in-production"),
		JWTExpiry:   getDuration("JWT_EXPIRY", 720*time.Hour),
		MaxPageSize: getInt("MAX_PAGE_SIZE", 100),
		S3: S3{
			Region:        getEnv("S3_REGION", "us-east-1"),
			Bucket:        os.Getenv("S3_BUCKET"),
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			KeyPrefix:     getEnv("S3_KEY_PREFIX", "carsawa"),
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		},
		MQTT: MQTT{
			BrokerURL:   os.Getenv("MQTT_BROKER_URL"),
			ClientID:    getEnv("MQTT_CLIENT_ID", "carsawa-api"),
			TopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "carsawa/listings"),
		},
		RateLimit: RateLimit{
			MaxRequests:   getInt("RATE_LIMIT_MAX", 100),
			WindowSeconds: getInt("RATE_LIMIT_WINDOW_SECONDS", 900),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
