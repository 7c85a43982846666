package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/validation"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	CORS        CORSConfig
	Log         LogConfig
	T212        T212Config
	FX          FXConfig
	MarketData  MarketDataConfig
	Calculation CalculationConfig
	Retry       RetryConfig
	Scheduler   SchedulerConfig
	HTTPTimeout time.Duration // Applied to every outbound HTTP client
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// T212Config holds Trading 212 API configuration
type T212Config struct {
	APIKey  string
	BaseURL string // e.g. https://live.trading212.com/api/v0/equity
}

// FXConfig holds exchange rate configuration.
// BaseCurrency is the currency every payout is reported in.
type FXConfig struct {
	URL          string
	BaseCurrency string
}

// MarketDataConfig holds Yahoo Finance client configuration
type MarketDataConfig struct {
	BaseURL            string
	RequestsPerSecond  float64
	Burst              int
	InstrumentCacheTTL time.Duration
}

// CalculationConfig tunes a dividend calculation run
type CalculationConfig struct {
	MaxConcurrency   int
	PastLookbackDays int // 0 disables realized dividends
}

// RetryConfig bounds retries against rate-limited upstream APIs
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// SchedulerConfig holds the cron schedule for the forecast refresh job
type SchedulerConfig struct {
	RefreshSchedule string // empty disables the job
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8000"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:8000",
			}),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
		T212: T212Config{
			APIKey:  getEnv("T212_API_KEY", ""),
			BaseURL: strings.TrimRight(getEnv("T212_BASE_URL", "https://live.trading212.com/api/v0/equity"), "/"),
		},
		FX: FXConfig{
			URL:          getEnv("FX_URL", "https://api.frankfurter.app/latest"),
			BaseCurrency: strings.ToUpper(getEnv("FX_BASE_CURRENCY", "GBP")),
		},
		MarketData: MarketDataConfig{
			BaseURL:            strings.TrimRight(getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"), "/"),
			RequestsPerSecond:  getEnvFloat("MARKET_DATA_RPS", 2),
			Burst:              getEnvInt("MARKET_DATA_BURST", 4),
			InstrumentCacheTTL: getEnvDuration("INSTRUMENT_CACHE_TTL", time.Hour),
		},
		Calculation: CalculationConfig{
			MaxConcurrency:   getEnvInt("CALC_MAX_CONCURRENCY", 4),
			PastLookbackDays: getEnvInt("PAST_LOOKBACK_DAYS", 0),
		},
		Retry: RetryConfig{
			MaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 5),
			BaseDelay:   getEnvDuration("RETRY_BASE_DELAY", 2*time.Second),
			MaxDelay:    getEnvDuration("RETRY_MAX_DELAY", 10*time.Second),
		},
		Scheduler: SchedulerConfig{
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", ""),
		},
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Calculation.MaxConcurrency < 1 {
		return fmt.Errorf("CALC_MAX_CONCURRENCY must be at least 1, got %d", c.Calculation.MaxConcurrency)
	}
	if c.Calculation.PastLookbackDays < 0 {
		return fmt.Errorf("PAST_LOOKBACK_DAYS cannot be negative, got %d", c.Calculation.PastLookbackDays)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.MarketData.RequestsPerSecond <= 0 {
		return fmt.Errorf("MARKET_DATA_RPS must be positive, got %v", c.MarketData.RequestsPerSecond)
	}
	if err := validation.ValidateCurrencyCode(c.FX.BaseCurrency); err != nil {
		return fmt.Errorf("FX_BASE_CURRENCY: %w", err)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
