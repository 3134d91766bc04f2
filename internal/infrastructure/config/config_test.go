package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"SERVER_PORT", "SERVER_HOST", "LOG_LEVEL", "PRICE_REFRESH_INTERVAL",
	"QUOTE_TIMEOUT", "QUOTE_CONCURRENCY", "FALLBACK_EXCHANGE_RATE", "EXCHANGE_RATE_TTL",
	"DISPLAY_TIMEZONE",
	"NAVER_BASE_URL", "YAHOO_BASE_URL", "EXCHANGE_RATE_BASE_URL", "HOLDINGS_CSV_PATH",
}

// clearEnv blanks every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.ServerHost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60*time.Second, cfg.PriceRefreshInterval)
	assert.Equal(t, 5*time.Second, cfg.QuoteTimeout)
	assert.Equal(t, 8, cfg.QuoteConcurrency)
	assert.Equal(t, 1370.0, cfg.FallbackExchangeRate)
	assert.Equal(t, time.Hour, cfg.ExchangeRateTTL)
	assert.Equal(t, "Asia/Seoul", cfg.Location.String())
	assert.Equal(t, DefaultNaverBaseURL, cfg.NaverBaseURL)
	assert.Equal(t, DefaultYahooBaseURL, cfg.YahooBaseURL)
	assert.Equal(t, DefaultExchangeRateBaseURL, cfg.ExchangeRateBaseURL)
	assert.Empty(t, cfg.HoldingsCSVPath)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PRICE_REFRESH_INTERVAL", "10m")
	t.Setenv("QUOTE_TIMEOUT", "2s")
	t.Setenv("QUOTE_CONCURRENCY", "3")
	t.Setenv("FALLBACK_EXCHANGE_RATE", "1400.5")
	t.Setenv("EXCHANGE_RATE_TTL", "15m")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")
	t.Setenv("NAVER_BASE_URL", "http://naver.local")
	t.Setenv("YAHOO_BASE_URL", "http://yahoo.local")
	t.Setenv("EXCHANGE_RATE_BASE_URL", "http://fx.local")
	t.Setenv("HOLDINGS_CSV_PATH", "/data/portfolio.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Minute, cfg.PriceRefreshInterval)
	assert.Equal(t, 2*time.Second, cfg.QuoteTimeout)
	assert.Equal(t, 3, cfg.QuoteConcurrency)
	assert.Equal(t, 1400.5, cfg.FallbackExchangeRate)
	assert.Equal(t, 15*time.Minute, cfg.ExchangeRateTTL)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, "http://naver.local", cfg.NaverBaseURL)
	assert.Equal(t, "http://yahoo.local", cfg.YahooBaseURL)
	assert.Equal(t, "http://fx.local", cfg.ExchangeRateBaseURL)
	assert.Equal(t, "/data/portfolio.csv", cfg.HoldingsCSVPath)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		value      string
		errMessage string
	}{
		{"refresh interval", "PRICE_REFRESH_INTERVAL", "invalid", "invalid PRICE_REFRESH_INTERVAL"},
		{"zero refresh interval", "PRICE_REFRESH_INTERVAL", "0s", "invalid PRICE_REFRESH_INTERVAL"},
		{"quote timeout", "QUOTE_TIMEOUT", "soon", "invalid QUOTE_TIMEOUT"},
		{"negative quote timeout", "QUOTE_TIMEOUT", "-1s", "invalid QUOTE_TIMEOUT"},
		{"concurrency", "QUOTE_CONCURRENCY", "many", "invalid QUOTE_CONCURRENCY"},
		{"zero concurrency", "QUOTE_CONCURRENCY", "0", "invalid QUOTE_CONCURRENCY"},
		{"fallback rate", "FALLBACK_EXCHANGE_RATE", "abc", "invalid FALLBACK_EXCHANGE_RATE"},
		{"non-positive fallback rate", "FALLBACK_EXCHANGE_RATE", "-1370", "invalid FALLBACK_EXCHANGE_RATE"},
		{"infinite fallback rate", "FALLBACK_EXCHANGE_RATE", "Inf", "invalid FALLBACK_EXCHANGE_RATE"},
		{"exchange rate ttl", "EXCHANGE_RATE_TTL", "hourly", "invalid EXCHANGE_RATE_TTL"},
		{"zero exchange rate ttl", "EXCHANGE_RATE_TTL", "0s", "invalid EXCHANGE_RATE_TTL"},
		{"timezone", "DISPLAY_TIMEZONE", "Mars/Olympus", "invalid DISPLAY_TIMEZONE"},
		{"log level", "LOG_LEVEL", "verbose", "invalid LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errMessage)
		})
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		expected     string
	}{
		{
			name:         "returns env value when set",
			key:          "TEST_KEY_1",
			defaultValue: "default",
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "TEST_KEY_2",
			defaultValue: "default",
			envValue:     "",
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.envValue)
			result := getEnvOrDefault(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}
