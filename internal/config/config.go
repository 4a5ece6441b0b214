package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	applog "lexledger/internal/log"
	"lexledger/internal/period"
)

var (
	validBackends      = []string{"memory", "sqlite"}
	validCacheBackends = []string{"none", "lru", "redis"}
	validLogFormats    = []string{"text", "json"}
)

type Config struct {
	// Storage
	DataBackend  string `envconfig:"DATA_BACKEND" default:"memory"`
	SQLiteDBPath string `envconfig:"SQLITE_DB_PATH" default:"./data/lexledger.db"`

	// AMQP
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"lexledger"`
	AMQPQueue    string `envconfig:"AMQP_QUEUE" default:"collection_changed"`

	// Read cache
	CacheBackend string        `envconfig:"CACHE_BACKEND" default:"lru"`
	CacheSize    int           `envconfig:"CACHE_SIZE" default:"64"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	RedisAddr    string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	// Ledger
	PeriodMaxMonth         period.YearMonth `envconfig:"PERIOD_MAX_MONTH" default:"2032-12"`
	InstallmentConcurrency int              `envconfig:"INSTALLMENT_CONCURRENCY" default:"4"`

	// Worker
	ReviewScanInterval   time.Duration `envconfig:"REVIEW_SCAN_INTERVAL" default:"1h"`
	ReportExportInterval time.Duration `envconfig:"REPORT_EXPORT_INTERVAL" default:"5m"`
	ReportPeriod         string        `envconfig:"REPORT_PERIOD" default:"current_month"`
	MetricsAddr          string        `envconfig:"METRICS_ADDR"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Google Sheets report export
	GoogleSpreadsheetID      string `envconfig:"GOOGLE_SPREADSHEET_ID"`
	GoogleServiceAccountFile string `envconfig:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleServiceAccountJSON string `envconfig:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	ReportSheetName          string `envconfig:"REPORT_SHEET_NAME" default:"Relatorio"`
	SheetsWritesPerMinute    int    `envconfig:"SHEETS_WRITES_PER_MINUTE" default:"10"`
}

// Load reads a .env file when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return &cfg, nil
}

// SheetsEnabled reports whether report export has enough settings to run.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != "" && (c.GoogleServiceAccountFile != "" || c.GoogleServiceAccountJSON != "")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate data backend
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate cache
	if !slices.Contains(validCacheBackends, c.CacheBackend) {
		errors = append(errors, fmt.Sprintf("invalid cache backend '%s': must be one of %v", c.CacheBackend, validCacheBackends))
	}
	if c.CacheBackend == "lru" && c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheBackend != "none" && c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.CacheBackend == "redis" && c.RedisAddr == "" {
		errors = append(errors, "Redis address cannot be empty when using redis cache backend")
	}

	// Validate ledger settings
	if c.PeriodMaxMonth.IsZero() {
		errors = append(errors, "period max month is required (YYYY-MM)")
	}
	if c.InstallmentConcurrency < 1 {
		errors = append(errors, fmt.Sprintf("invalid installment concurrency %d: must be at least 1", c.InstallmentConcurrency))
	} else if c.InstallmentConcurrency > 12 {
		errors = append(errors, fmt.Sprintf("invalid installment concurrency %d: must be at most 12", c.InstallmentConcurrency))
	}

	// Validate worker configuration
	if c.ReviewScanInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid review scan interval %v: must be at least 1 minute", c.ReviewScanInterval))
	} else if c.ReviewScanInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid review scan interval %v: must be at most 24 hours", c.ReviewScanInterval))
	}
	if c.ReportExportInterval < 10*time.Second {
		errors = append(errors, fmt.Sprintf("invalid report export interval %v: must be at least 10 seconds", c.ReportExportInterval))
	}
	if kind, err := period.ParseKind(c.ReportPeriod); err != nil || kind == period.CustomMonth {
		errors = append(errors, fmt.Sprintf("invalid report period '%s': must be a kind other than custom_month", c.ReportPeriod))
	}

	// Validate logging
	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	// Validate Google Sheets export if configured
	if c.GoogleSpreadsheetID != "" {
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for report export")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
		if c.ReportSheetName == "" {
			errors = append(errors, "report sheet name cannot be empty when report export is enabled")
		}
		if c.SheetsWritesPerMinute < 1 {
			errors = append(errors, fmt.Sprintf("invalid sheets writes per minute %d: must be at least 1", c.SheetsWritesPerMinute))
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
