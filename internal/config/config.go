package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/XavierBriggs/fortuna/services/nfl-workbench/internal/grader"
)

// Defaults for configuration values.
const (
	DefaultServerAddr         = ":8090"
	DefaultBetLogPath         = "workbench.db"
	DefaultRunInterval        = 5 * time.Minute
	DefaultStartingBankroll   = 1000.0
	DefaultCloseBufferSeconds = 0
	DefaultSnapshotStream     = "lines.snapshots.nfl"
	DefaultConsumerGroup      = "nfl-workbench"
	DefaultConsumerID         = "workbench-1"
	DefaultCacheTTL           = 6 * time.Hour
)

// Config holds all application configuration
type Config struct {
	// HTTP API
	ServerAddr string

	// Postgres odds warehouse (empty disables warehouse loading)
	WarehouseDSN string

	// Local SQLite bet log
	BetLogPath string

	// Redis (empty disables cache and snapshot consumption)
	RedisURL      string
	RedisPassword string

	SnapshotStream string
	ConsumerGroup  string
	ConsumerID     string

	// Settlement policy
	Policy grader.Policy

	// Pipeline settings
	RunInterval        time.Duration
	CloseBufferSeconds int
	StartingBankroll   float64
	CacheTTL           time.Duration
}

// Load reads configuration from environment variables (and .env if present)
func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", DefaultServerAddr),
		WarehouseDSN:   getEnv("WAREHOUSE_DSN", ""),
		BetLogPath:     getEnv("BETLOG_PATH", DefaultBetLogPath),
		RedisURL:       getEnv("REDIS_URL", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		SnapshotStream: getEnv("SNAPSHOT_STREAM", DefaultSnapshotStream),
		ConsumerGroup:  getEnv("CONSUMER_GROUP", DefaultConsumerGroup),
		ConsumerID:     getEnv("CONSUMER_ID", DefaultConsumerID),

		Policy: grader.Policy{
			OddsCoverageStartsYear:  getEnvInt("ODDS_COVERAGE_STARTS_YEAR", 2006),
			SpreadTotalDefaultPrice: getEnvInt("SPREAD_TOTAL_DEFAULT_PRICE", -110),
			AssumeMLPrice:           grader.MLPricePolicy(getEnv("ASSUME_ML_PRICE_POLICY", string(grader.MLPolicyEven))),
		},

		RunInterval:        getEnvDuration("RUN_INTERVAL", DefaultRunInterval),
		CloseBufferSeconds: getEnvInt("CLOSE_BUFFER_SECONDS", DefaultCloseBufferSeconds),
		StartingBankroll:   getEnvFloat("STARTING_BANKROLL", DefaultStartingBankroll),
		CacheTTL:           getEnvDuration("CACHE_TTL", DefaultCacheTTL),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
