package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL         string
	HermesURL           string
	HermesDelay         time.Duration
	HermesRetryMax      int
	TaxRate             decimal.Decimal
	TaxCap              uint64
	ValueWorkerInterval time.Duration
	ReportInterval      time.Duration
	HTTPPort            string
	AdminAPIKey         string
	SpreadsheetID       string
	GoogleCredsFile     string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:         envOrDefaultWarn("DATABASE_URL", ""),
		HermesURL:           envOrDefault("HERMES_URL", "https://hermes.pyth.network"),
		HermesDelay:         envOrDefaultDuration("HERMES_DELAY", 1*time.Second),
		HermesRetryMax:      envOrDefaultInt("HERMES_RETRY_MAX", 5),
		TaxRate:             envOrDefaultDecimal("TAX_RATE", decimal.RequireFromString("0.005")),
		TaxCap:              envOrDefaultUint("TAX_CAP", 1_000_000),
		ValueWorkerInterval: envOrDefaultDuration("VALUE_WORKER_INTERVAL", 1*time.Hour),
		ReportInterval:      envOrDefaultDuration("REPORT_INTERVAL", 24*time.Hour),
		HTTPPort:            envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:         envOrDefault("ADMIN_API_KEY", ""),
		SpreadsheetID:       envOrDefault("EXPORT_SPREADSHEET_ID", ""),
		GoogleCredsFile:     envOrDefault("GOOGLE_CREDENTIALS_FILE", ""),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultUint(key string, defaultVal uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			slog.Warn("invalid unsigned env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultDecimal(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			slog.Warn("invalid decimal env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
