package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Seoul must resolve in minimal containers
)

const (
	DefaultNaverBaseURL        = "https://polling.finance.naver.com"
	DefaultYahooBaseURL        = "https://query1.finance.yahoo.com"
	DefaultExchangeRateBaseURL = "https://open.er-api.com"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

type Config struct {
	ServerPort           string
	ServerHost           string
	LogLevel             string
	PriceRefreshInterval time.Duration

	QuoteTimeout         time.Duration
	QuoteConcurrency     int
	FallbackExchangeRate float64
	ExchangeRateTTL      time.Duration

	// Location is loaded from DISPLAY_TIMEZONE.
	Location *time.Location

	NaverBaseURL        string
	YahooBaseURL        string
	ExchangeRateBaseURL string

	// HoldingsCSVPath is an optional holdings file valued at startup.
	HoldingsCSVPath string
}

func Load() (*Config, error) {
	port := getEnvOrDefault("SERVER_PORT", "8080")
	host := getEnvOrDefault("SERVER_HOST", "localhost")

	logLevel := strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: must be one of %s", logLevel, strings.Join(validLogLevels, ", "))
	}

	refreshInterval, err := parsePositiveDuration("PRICE_REFRESH_INTERVAL", "60s")
	if err != nil {
		return nil, err
	}

	quoteTimeout, err := parsePositiveDuration("QUOTE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	concurrency, err := strconv.Atoi(getEnvOrDefault("QUOTE_CONCURRENCY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_CONCURRENCY: %w", err)
	}
	if concurrency < 1 {
		return nil, errors.New("invalid QUOTE_CONCURRENCY: must be at least 1")
	}

	fallbackRate, err := strconv.ParseFloat(getEnvOrDefault("FALLBACK_EXCHANGE_RATE", "1370"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid FALLBACK_EXCHANGE_RATE: %w", err)
	}
	if fallbackRate <= 0 || math.IsInf(fallbackRate, 0) || math.IsNaN(fallbackRate) {
		return nil, errors.New("invalid FALLBACK_EXCHANGE_RATE: must be a positive number")
	}

	rateTTL, err := parsePositiveDuration("EXCHANGE_RATE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	timezone := getEnvOrDefault("DISPLAY_TIMEZONE", "Asia/Seoul")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}

	return &Config{
		ServerPort:           port,
		ServerHost:           host,
		LogLevel:             logLevel,
		PriceRefreshInterval: refreshInterval,
		QuoteTimeout:         quoteTimeout,
		QuoteConcurrency:     concurrency,
		FallbackExchangeRate: fallbackRate,
		ExchangeRateTTL:      rateTTL,
		Location:             location,
		NaverBaseURL:         getEnvOrDefault("NAVER_BASE_URL", DefaultNaverBaseURL),
		YahooBaseURL:         getEnvOrDefault("YAHOO_BASE_URL", DefaultYahooBaseURL),
		ExchangeRateBaseURL:  getEnvOrDefault("EXCHANGE_RATE_BASE_URL", DefaultExchangeRateBaseURL),
		HoldingsCSVPath:      os.Getenv("HOLDINGS_CSV_PATH"),
	}, nil
}

func parsePositiveDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnvOrDefault(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func isValidLogLevel(level string) bool {
	for _, l := range validLogLevels {
		if l == level {
			return true
		}
	}
	return false
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
