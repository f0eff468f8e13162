package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	Redis     RedisConfig
	Fetch     FetchConfig
	Agreement AgreementConfig
	App       AppConfig
}

type ServerConfig struct {
	Port string
}

type UpstreamConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// FetchConfig bounds the per-faculty catalog fan-out.
type FetchConfig struct {
	RatePerSecond int
	Burst         int
}

type AgreementConfig struct {
	TTLMinutes           int
	SubmitTimeoutSeconds int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	CORSOrigin  string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Upstream: UpstreamConfig{
			BaseURL:        getEnv("UPSTREAM_BASE_URL", "http://localhost:9090"),
			TimeoutSeconds: getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 30),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Fetch: FetchConfig{
			RatePerSecond: getEnvAsInt("FETCH_RATE", 20),
			Burst:         getEnvAsInt("FETCH_BURST", 10),
		},
		Agreement: AgreementConfig{
			TTLMinutes:           getEnvAsInt("AGREEMENT_TTL_MINUTES", 30),
			SubmitTimeoutSeconds: getEnvAsInt("AGREEMENT_SUBMIT_TIMEOUT_SECONDS", 120),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("UPSTREAM_BASE_URL is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
