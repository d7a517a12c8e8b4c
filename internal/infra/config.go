package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default Binance USDT-M Futures endpoints. The testnet is the default so a
// misconfigured binary can never touch real funds.
const (
	DefaultRestURL = "https://testnet.binancefuture.com"
	DefaultWSURL   = "wss://stream.binancefuture.com"
)

// Config holds the full application configuration.
// Secrets are overridden from environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Binance struct {
			RestURL      string `yaml:"rest_url"`
			WSURL        string `yaml:"ws_url"`
			APIKey       string `yaml:"api_key"`
			APISecret    string `yaml:"api_secret"`
			RecvWindowMS int64  `yaml:"recv_window_ms"`
			TimeoutSec   int    `yaml:"timeout_sec"`
		} `yaml:"binance"`
	} `yaml:"api"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// DefaultConfig returns a config that works with environment credentials
// alone, pointed at the testnet.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "futures_go"
	cfg.App.Version = "dev"
	cfg.API.Binance.RestURL = DefaultRestURL
	cfg.API.Binance.WSURL = DefaultWSURL
	cfg.API.Binance.RecvWindowMS = 5000
	cfg.API.Binance.TimeoutSec = 15
	cfg.Logging.Level = "info"
	overrideWithEnv(&cfg)
	return &cfg
}

// LoadConfig reads and parses the config file, applies environment overrides
// and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment variables take precedence over file values.
	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity. Credentials are checked separately
// by HasCredentials so read-only commands can run without keys.
func (c *Config) Validate() error {
	b := &c.API.Binance

	if !strings.HasPrefix(b.RestURL, "https://") && !strings.HasPrefix(b.RestURL, "http://") {
		return fmt.Errorf("invalid Binance REST URL: %s", b.RestURL)
	}
	if !strings.HasPrefix(b.WSURL, "ws://") && !strings.HasPrefix(b.WSURL, "wss://") {
		return fmt.Errorf("invalid Binance WS URL: %s", b.WSURL)
	}
	if b.RecvWindowMS <= 0 || b.RecvWindowMS > 60000 {
		return fmt.Errorf("recv_window_ms must be in (0, 60000], got %d", b.RecvWindowMS)
	}
	if b.TimeoutSec <= 0 {
		return fmt.Errorf("timeout_sec must be positive, got %d", b.TimeoutSec)
	}
	return nil
}

// HasCredentials reports whether both API key and secret are set.
// Signed endpoints are a precondition failure without them.
func (c *Config) HasCredentials() bool {
	return c.API.Binance.APIKey != "" && c.API.Binance.APISecret != ""
}

// Timeout returns the HTTP client timeout. A finite timeout is mandatory:
// hanging forever on an order submission is a correctness risk.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.Binance.TimeoutSec) * time.Second
}

// overrideWithEnv overrides secrets from environment variables.
// Environment wins over the config file.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("BINANCE_API_KEY"); key != "" {
		cfg.API.Binance.APIKey = strings.TrimSpace(key)
	}
	if secret := os.Getenv("BINANCE_API_SECRET"); secret != "" {
		cfg.API.Binance.APISecret = strings.TrimSpace(secret)
	}
}
