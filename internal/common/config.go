// Package common provides shared utilities for Fina.os
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Fina.os
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Scout       ScoutConfig   `toml:"scout"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds vault storage configuration.
type StorageConfig struct {
	Path    string `toml:"path"`     // BadgerHold data directory
	KeyPath string `toml:"key_path"` // secret key file for at-rest encryption
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	MarketData MarketDataConfig `toml:"marketdata"`
	Brokerage  BrokerageConfig  `toml:"brokerage"`
	Gemini     GeminiConfig     `toml:"gemini"`
}

// MarketDataConfig holds market data API configuration
type MarketDataConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *MarketDataConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// BrokerageConfig holds brokerage aggregator API configuration
type BrokerageConfig struct {
	BaseURL   string `toml:"base_url"`
	ClientID  string `toml:"client_id"`
	Secret    string `toml:"secret"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *BrokerageConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// ScoutConfig holds the harvest engine thresholds and symbol rules.
type ScoutConfig struct {
	// LossPercentThreshold is the fractional loss a position must reach
	// before it is considered for harvest (e.g. -0.05 for -5%).
	LossPercentThreshold float64 `toml:"loss_percent_threshold"`
	// MinHarvestAmount is the dollar floor an absolute loss must exceed.
	MinHarvestAmount float64 `toml:"min_harvest_amount"`
	// MaxTickerLength rejects raw tickers longer than this as non-equity noise.
	MaxTickerLength int `toml:"max_ticker_length"`
	// SymbolAliases maps raw tickers to the lookup symbol used by the
	// price service (e.g. BTC -> BTC-USD).
	SymbolAliases map[string]string `toml:"symbol_aliases"`
	// ScanInterval enables the background scout scheduler when non-empty
	// (e.g. "24h"). Empty disables scheduled scans.
	ScanInterval string `toml:"scan_interval"`
}

// GetScanInterval parses the scan interval; zero means scheduling disabled.
func (c *ScoutConfig) GetScanInterval() time.Duration {
	if c.ScanInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.ScanInterval)
	if err != nil {
		return 0
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path:    "data/vault",
			KeyPath: "config/secret.key",
		},
		Clients: ClientsConfig{
			MarketData: MarketDataConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Brokerage: BrokerageConfig{
				BaseURL:   "https://sandbox.plaid.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Scout: ScoutConfig{
			LossPercentThreshold: -0.05,
			MinHarvestAmount:     100,
			MaxTickerLength:      6,
			SymbolAliases: map[string]string{
				"BTC": "BTC-USD",
				"ETH": "ETH-USD",
				"LTC": "LTC-USD",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateScout(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINAOS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FINAOS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FINAOS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FINAOS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FINAOS_DATA_PATH"); path != "" {
		config.Storage.Path = filepath.Join(path, "vault")
		config.Storage.KeyPath = filepath.Join(path, "secret.key")
	}

	if interval := os.Getenv("FINAOS_SCAN_INTERVAL"); interval != "" {
		config.Scout.ScanInterval = interval
	}
}

// validateScout normalizes scout thresholds when a config file supplies
// values with the wrong sign. The loss threshold is a negative fraction;
// the harvest floor is a positive dollar amount.
func validateScout(config *Config) {
	if config.Scout.LossPercentThreshold > 0 {
		config.Scout.LossPercentThreshold = -config.Scout.LossPercentThreshold
	}
	if config.Scout.MinHarvestAmount < 0 {
		config.Scout.MinHarvestAmount = -config.Scout.MinHarvestAmount
	}
	if config.Scout.MaxTickerLength <= 0 {
		config.Scout.MaxTickerLength = 6
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from the environment, falling back to
// the configured value. Environment always wins so deployments can rotate
// keys without editing config files.
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"marketdata_api_key": {"EODHD_API_KEY", "FINAOS_MARKETDATA_API_KEY"},
		"gemini_api_key":     {"GEMINI_API_KEY", "FINAOS_GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"brokerage_secret":   {"PLAID_SECRET", "FINAOS_BROKERAGE_SECRET"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}
