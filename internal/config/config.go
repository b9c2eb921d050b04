package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type NATSConfig struct {
	URL          string
	Stream       string
	Subject      string
	Durable      string
	MaxDeliver   int
	RetryDelay   time.Duration
	ConsumeQueue bool
}

type CacheConfig struct {
	// EvictInterval is the period of the unconditional full sweep over both caches.
	EvictInterval time.Duration
	// RedisTTL bounds how long stale generations linger in Redis.
	RedisTTL time.Duration
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "dms")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("NATS_STREAM", "AUTHOR_DELETE")
	viper.SetDefault("NATS_SUBJECT", "authors.delete")
	viper.SetDefault("NATS_DURABLE", "author-delete-worker")
	viper.SetDefault("NATS_MAX_DELIVER", 3)
	viper.SetDefault("NATS_RETRY_DELAY_MS", 5000)
	viper.SetDefault("NATS_CONSUME", true)
	viper.SetDefault("CACHE_EVICT_INTERVAL_SECONDS", 3600)
	viper.SetDefault("CACHE_REDIS_TTL_SECONDS", 3600)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_RPS", 50)
	viper.SetDefault("RATE_LIMIT_BURST", 100)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       0,
		},
		NATS: NATSConfig{
			URL:          viper.GetString("NATS_URL"),
			Stream:       viper.GetString("NATS_STREAM"),
			Subject:      viper.GetString("NATS_SUBJECT"),
			Durable:      viper.GetString("NATS_DURABLE"),
			MaxDeliver:   viper.GetInt("NATS_MAX_DELIVER"),
			RetryDelay:   time.Duration(viper.GetInt("NATS_RETRY_DELAY_MS")) * time.Millisecond,
			ConsumeQueue: viper.GetBool("NATS_CONSUME"),
		},
		Cache: CacheConfig{
			EvictInterval: time.Duration(viper.GetInt("CACHE_EVICT_INTERVAL_SECONDS")) * time.Second,
			RedisTTL:      time.Duration(viper.GetInt("CACHE_REDIS_TTL_SECONDS")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled: viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:     viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:   viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	return cfg, nil
}
