package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "USD", cfg.Ledger.Currency)
	assert.Equal(t, 10000.0, cfg.Ledger.StartingBalance)
	assert.Equal(t, "XAUUSD", cfg.Feed.Symbol)
	assert.Equal(t, 20, cfg.Feed.History)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:   "negative starting balance",
			mutate: func(c *Config) { c.Ledger.StartingBalance = -1 },
			errMsg: "ledger.starting_balance must not be negative",
		},
		{
			name:   "missing currency",
			mutate: func(c *Config) { c.Ledger.Currency = "" },
			errMsg: "ledger.currency is required",
		},
		{
			name:   "unknown store",
			mutate: func(c *Config) { c.Store.Type = "postgres" },
			errMsg: "store.type must be",
		},
		{
			name:   "sqlite without path",
			mutate: func(c *Config) { c.Store = StoreConfig{Type: "sqlite"} },
			errMsg: "store.path required for sqlite store",
		},
		{
			name:   "redis without addr",
			mutate: func(c *Config) { c.Store = StoreConfig{Type: "redis"} },
			errMsg: "store.redis_addr required",
		},
		{
			name:   "redis with addr",
			mutate: func(c *Config) { c.Store = StoreConfig{Type: "redis", RedisAddr: "localhost:6379"} },
		},
		{
			name:   "missing password",
			mutate: func(c *Config) { c.Auth.Password = "" },
			errMsg: "auth.username and auth.password are required",
		},
		{
			name:   "zero base price",
			mutate: func(c *Config) { c.Feed.BasePrice = 0 },
			errMsg: "feed.base_price must be positive",
		},
		{
			name:   "bad interval",
			mutate: func(c *Config) { c.Feed.Interval = "soon" },
			errMsg: "feed.interval",
		},
		{
			name:   "empty interval",
			mutate: func(c *Config) { c.Feed.Interval = "" },
			errMsg: "feed.interval must be positive",
		},
		{
			name:   "zero history",
			mutate: func(c *Config) { c.Feed.History = 0 },
			errMsg: "feed.history must be positive",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Log.Level = "chatty" },
			errMsg: "log.level",
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Log.Format = "xml" },
			errMsg: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Ledger.StartingBalance = 2500
			cfg.Store = StoreConfig{Type: "sqlite", Path: "journal.db"}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			err := cfg.SaveToFile(path)
			require.NoError(t, err)

			_, err = os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Ledger, loaded.Ledger)
			assert.Equal(t, cfg.Store.Type, loaded.Store.Type)
			assert.Equal(t, cfg.Store.Path, loaded.Store.Path)
			assert.Equal(t, cfg.Feed, loaded.Feed)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ledger:\n  starting_balance: 500\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 500.0, cfg.Ledger.StartingBalance)
	assert.Equal(t, "USD", cfg.Ledger.Currency)
	assert.Equal(t, "XAUUSD", cfg.Feed.Symbol)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadUsesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.json")
	cfg := Default()
	cfg.Server.Addr = ":9999"
	require.NoError(t, cfg.SaveToFile(path))

	t.Setenv(EnvConfigPath, path)
	loaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", loaded.Server.Addr)
}

func TestLoadWithoutPathIsDefault(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFeedParseInterval(t *testing.T) {
	tests := []struct {
		interval string
		expected string
		wantErr  bool
	}{
		{"3s", "3s", false},
		{"1m", "1m0s", false},
		{"", "0s", false},
		{"invalid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.interval, func(t *testing.T) {
			f := FeedConfig{Interval: tt.interval}
			d, err := f.ParseInterval()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, d.String())
			}
		})
	}
}
