// Package config loads and validates the bot configuration from YAML or
// JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete bot configuration.
type Config struct {
	Symbol       string `json:"symbol" yaml:"symbol"`
	DryRun       bool   `json:"dry_run" yaml:"dry_run"`
	PollInterval string `json:"poll_interval" yaml:"poll_interval"` // e.g. "15s"
	OrderSize    float64 `json:"order_size" yaml:"order_size"`

	Account  AccountConfig  `json:"account" yaml:"account"`
	Fees     FeesConfig     `json:"fees" yaml:"fees"`
	Ledger   LedgerConfig   `json:"ledger" yaml:"ledger"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Orders   OrdersConfig   `json:"orders" yaml:"orders"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
	Notify   NotifyConfig   `json:"notify" yaml:"notify"`
}

// AccountConfig seeds the virtual account.
type AccountConfig struct {
	StartingBalance float64 `json:"starting_balance" yaml:"starting_balance"`
}

// FeesConfig holds the exchange fee schedule as fractions of notional.
type FeesConfig struct {
	MakerRate float64 `json:"maker_rate" yaml:"maker_rate"`
	TakerRate float64 `json:"taker_rate" yaml:"taker_rate"`
}

// LedgerConfig controls the durable trade record.
type LedgerConfig struct {
	Dir        string `json:"dir" yaml:"dir"`
	RawPath    string `json:"raw_path,omitempty" yaml:"raw_path,omitempty"`
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
}

// StrategyConfig selects the strategy by registry name and holds its
// thresholds and indicator periods.
type StrategyConfig struct {
	Name string `json:"name" yaml:"name"`

	RSIPeriod int `json:"rsi_period" yaml:"rsi_period"`
	SMAFast   int `json:"sma_fast" yaml:"sma_fast"`
	SMASlow   int `json:"sma_slow" yaml:"sma_slow"`
	WindowCap int `json:"window_cap" yaml:"window_cap"`

	BuyThreshold   float64 `json:"buy_threshold" yaml:"buy_threshold"`
	SellThreshold  float64 `json:"sell_threshold" yaml:"sell_threshold"`
	ExitLong       float64 `json:"exit_long" yaml:"exit_long"`
	ExitShort      float64 `json:"exit_short" yaml:"exit_short"`
	DepthThreshold float64 `json:"depth_threshold" yaml:"depth_threshold"`
	TakerThreshold float64 `json:"taker_threshold" yaml:"taker_threshold"`
}

// OrdersConfig holds the reconciliation policy: with Strict set, a
// failed live submission keeps the state machine where it was instead
// of advancing on intent.
type OrdersConfig struct {
	Strict bool `json:"strict" yaml:"strict"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// NotifyConfig enables the webhook sink when URL is set.
type NotifyConfig struct {
	WebhookURL string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, choosing the format by file
// extension (.yaml/.yml for YAML, otherwise JSON).
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

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// PollDuration parses the poll interval.
func (c *Config) PollDuration() (time.Duration, error) {
	return time.ParseDuration(c.PollInterval)
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if d, err := c.PollDuration(); err != nil || d <= 0 {
		return fmt.Errorf("poll_interval must be a positive duration")
	}
	if c.OrderSize <= 0 {
		return fmt.Errorf("order_size must be positive")
	}
	if c.Account.StartingBalance <= 0 {
		return fmt.Errorf("account.starting_balance must be positive")
	}
	if c.Fees.MakerRate < 0 || c.Fees.TakerRate < 0 {
		return fmt.Errorf("fee rates must be non-negative")
	}
	if c.Ledger.Dir == "" {
		return fmt.Errorf("ledger.dir is required")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Strategy.RSIPeriod <= 0 {
		return fmt.Errorf("strategy.rsi_period must be positive")
	}
	if c.Strategy.WindowCap <= 0 {
		return fmt.Errorf("strategy.window_cap must be positive")
	}
	if c.Strategy.BuyThreshold >= c.Strategy.SellThreshold {
		return fmt.Errorf("strategy.buy_threshold must be below sell_threshold")
	}
	return nil
}

// Default returns a configuration with the upstream defaults.
func Default() *Config {
	return &Config{
		Symbol:       "DOGEUSDT",
		DryRun:       true,
		PollInterval: "15s",
		OrderSize:    100,
		Account: AccountConfig{
			StartingBalance: 100,
		},
		Fees: FeesConfig{
			MakerRate: 0.0002,
			TakerRate: 0.0006,
		},
		Ledger: LedgerConfig{
			Dir: "logs",
		},
		Strategy: StrategyConfig{
			Name:           "rsi-depth",
			RSIPeriod:      14,
			SMAFast:        9,
			SMASlow:        21,
			WindowCap:      500,
			BuyThreshold:   20,
			SellThreshold:  80,
			ExitLong:       55,
			ExitShort:      45,
			DepthThreshold: 0.15,
			TakerThreshold: 0.10,
		},
	}
}
