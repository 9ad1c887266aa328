package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradejournal/ledger"
)

// EnvConfigPath names the config file when no --config flag is given.
const EnvConfigPath = "TRADEJOURNAL_CONFIG"

// Config represents the complete journal configuration
type Config struct {
	Ledger LedgerConfig `json:"ledger" yaml:"ledger"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Auth   AuthConfig   `json:"auth" yaml:"auth"`
	Feed   FeedConfig   `json:"feed" yaml:"feed"`
	Server ServerConfig `json:"server" yaml:"server"`
	Log    LogConfig    `json:"log" yaml:"log"`
}

// LedgerConfig holds the balance used before one is set explicitly
type LedgerConfig struct {
	StartingBalance float64 `json:"starting_balance" yaml:"starting_balance"`
	Currency        string  `json:"currency" yaml:"currency"`
}

// StoreConfig selects where ledger state is persisted
type StoreConfig struct {
	Type          string `json:"type" yaml:"type"` // "file", "sqlite" or "redis"
	Path          string `json:"path,omitempty" yaml:"path,omitempty"`
	RedisAddr     string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
	KeyPrefix     string `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty"`
}

// AuthConfig is the single static login
type AuthConfig struct {
	Username   string `json:"username" yaml:"username"`
	Password   string `json:"password" yaml:"password"`
	TOTPSecret string `json:"totp_secret,omitempty" yaml:"totp_secret,omitempty"`
}

// FeedConfig drives the mock price ticker
type FeedConfig struct {
	Symbol    string  `json:"symbol" yaml:"symbol"`
	BasePrice float64 `json:"base_price" yaml:"base_price"`
	Jitter    float64 `json:"jitter" yaml:"jitter"`
	Interval  string  `json:"interval" yaml:"interval"` // e.g. "3s"
	History   int     `json:"history" yaml:"history"`
}

// ParseInterval converts the interval string to time.Duration
func (f FeedConfig) ParseInterval() (time.Duration, error) {
	if f.Interval == "" {
		return 0, nil
	}
	return time.ParseDuration(f.Interval)
}

// ServerConfig is the HTTP listener
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LogConfig controls slog output and tracing
type LogConfig struct {
	Level   string `json:"level" yaml:"level"`   // DEBUG, INFO, WARN, ERROR
	Format  string `json:"format" yaml:"format"` // json or text
	Tracing bool   `json:"tracing" yaml:"tracing"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on extension).
// Fields missing from the file keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load reads path, or the file named by TRADEJOURNAL_CONFIG, or returns
// Default when neither is set.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFromFile(path)
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Ledger.StartingBalance < 0 {
		return fmt.Errorf("ledger.starting_balance must not be negative")
	}
	if c.Ledger.Currency == "" {
		return fmt.Errorf("ledger.currency is required")
	}
	switch c.Store.Type {
	case "file", "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path required for %s store", c.Store.Type)
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr required for redis store")
		}
	default:
		return fmt.Errorf("store.type must be 'file', 'sqlite' or 'redis'")
	}
	if c.Auth.Username == "" || c.Auth.Password == "" {
		return fmt.Errorf("auth.username and auth.password are required")
	}
	if c.Feed.Symbol == "" {
		return fmt.Errorf("feed.symbol is required")
	}
	if c.Feed.BasePrice <= 0 {
		return fmt.Errorf("feed.base_price must be positive")
	}
	d, err := c.Feed.ParseInterval()
	if err != nil {
		return fmt.Errorf("feed.interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("feed.interval must be positive")
	}
	if c.Feed.History <= 0 {
		return fmt.Errorf("feed.history must be positive")
	}
	switch strings.ToUpper(c.Log.Level) {
	case "", "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("log.level must be DEBUG, INFO, WARN or ERROR")
	}
	if c.Log.Format != "" && c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format must be 'json' or 'text'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			StartingBalance: ledger.DefaultStartingBalance,
			Currency:        "USD",
		},
		Store: StoreConfig{
			Type:      "file",
			Path:      "./tradejournal.json",
			KeyPrefix: "tradejournal:",
		},
		Auth: AuthConfig{
			Username: "trader",
			Password: "changeme",
		},
		Feed: FeedConfig{
			Symbol:    "XAUUSD",
			BasePrice: 2020.45,
			Jitter:    10,
			Interval:  "3s",
			History:   20,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}
