// Package config loads service settings from the environment through viper.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the service reads at start-up.
type Config struct {
	AppPort       string
	DBDriver      string
	DatabaseDSN   string
	JWTSecret     string
	RabbitMQURL   string
	RedisAddr     string
	StoreCacheTTL time.Duration
	LogLevel      string
	LogFormat     string
	SeedDemo      bool
}

// Load reads configuration from environment variables, falling back to defaults.
// An empty RABBITMQ_URL or REDIS_ADDR disables that integration.
func Load() Config {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:lapak.db?_busy_timeout=5000")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("STORE_CACHE_TTL", "10m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("SEED_DEMO", false)
	v.AutomaticEnv()

	return Config{
		AppPort:       v.GetString("APP_PORT"),
		DBDriver:      v.GetString("DB_DRIVER"),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		StoreCacheTTL: v.GetDuration("STORE_CACHE_TTL"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),
		SeedDemo:      v.GetBool("SEED_DEMO"),
	}
}
