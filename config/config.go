// Copyright (c) 2026 BVK Chaitanya

// Package config loads the shopwatch configuration file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/bvk/shopwatch/alerts"
	"github.com/bvk/shopwatch/metamon"
	"github.com/bvk/shopwatch/pricer"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the shopwatch configuration.
type Config struct {
	// How often the wallets are polled.
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// Game api settings
	API APIConfig `yaml:"api"`

	// Shop listing settings
	Shop ShopConfig `yaml:"shop"`

	// Price warning limits
	Thresholds ThresholdsConfig `yaml:"thresholds"`

	// Push notification settings
	Notify NotifyConfig `yaml:"notify"`

	// Terminal display settings
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// APIConfig contains the game api client settings.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`

	// Fixed wait before every request
	RequestDelay time.Duration `yaml:"request_delay"`

	// Maximum attempts per request
	RetryCount int `yaml:"retry_count"`

	HTTPTimeout time.Duration `yaml:"http_timeout"`

	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// ShopConfig contains the shop listing query parameters.
type ShopConfig struct {
	EggType    string `yaml:"egg_type"`
	PotionType string `yaml:"potion_type"`
	OrderType  string `yaml:"order_type"`
	PageSize   int    `yaml:"page_size"`
}

// ThresholdsConfig contains the price limits for warnings.
type ThresholdsConfig struct {
	EggBelow    decimal.Decimal `yaml:"egg_below"`
	EggOver     decimal.Decimal `yaml:"egg_over"`
	PotionBelow decimal.Decimal `yaml:"potion_below"`
	PotionOver  decimal.Decimal `yaml:"potion_over"`
}

// NotifyConfig contains push notification settings.
type NotifyConfig struct {
	// Minimum interval between repeated notifications of the same warning
	Freeze time.Duration `yaml:"freeze"`

	// Custom pushover endpoint (optional)
	PushoverURL string `yaml:"pushover_url"`
}

// DashboardConfig contains the terminal display settings.
type DashboardConfig struct {
	HistoryRows int `yaml:"history_rows"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	th := alerts.DefaultThresholds()
	return &Config{
		RefreshInterval: time.Minute,
		API: APIConfig{
			BaseURL:           metamon.DefaultBaseURL,
			RequestDelay:      time.Second,
			RetryCount:        5,
			HTTPTimeout:       30 * time.Second,
			RequestsPerSecond: 5,
		},
		Shop: ShopConfig{
			EggType:    metamon.Egg.ShopType(),
			PotionType: metamon.Potion.ShopType(),
			OrderType:  "2",
			PageSize:   10,
		},
		Thresholds: ThresholdsConfig{
			EggBelow:    th.EggBelow,
			EggOver:     th.EggOver,
			PotionBelow: th.PotionBelow,
			PotionOver:  th.PotionOver,
		},
		Notify: NotifyConfig{
			Freeze: time.Hour,
		},
		Dashboard: DashboardConfig{
			HistoryRows: 10,
		},
	}
}

// Load loads configuration from a YAML file. Missing fields keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("could not parse config file %q: %w", path, err)
	}
	return config, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive")
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid api base_url %q", c.API.BaseURL)
	}
	if c.API.RequestDelay < 0 {
		return fmt.Errorf("api request_delay cannot be negative")
	}
	if c.API.RetryCount <= 0 {
		return fmt.Errorf("api retry_count must be positive")
	}
	if c.API.RequestsPerSecond <= 0 {
		return fmt.Errorf("api requests_per_second must be positive")
	}
	if c.Shop.EggType == "" || c.Shop.PotionType == "" || c.Shop.OrderType == "" {
		return fmt.Errorf("shop egg_type, potion_type and order_type are required")
	}
	if c.Shop.PageSize <= 0 {
		return fmt.Errorf("shop page_size must be positive")
	}
	if err := c.AlertThresholds().Check(); err != nil {
		return err
	}
	if c.Notify.Freeze < 0 {
		return fmt.Errorf("notify freeze cannot be negative")
	}
	if c.Dashboard.HistoryRows < 0 {
		return fmt.Errorf("dashboard history_rows cannot be negative")
	}
	return nil
}

// ClientOptions returns the game api client options.
func (c *Config) ClientOptions() *metamon.Options {
	return &metamon.Options{
		BaseURL:           c.API.BaseURL,
		RequestDelay:      c.API.RequestDelay,
		RetryCount:        c.API.RetryCount,
		HttpClientTimeout: c.API.HTTPTimeout,
		RequestsPerSecond: c.API.RequestsPerSecond,
	}
}

// PollerOptions returns the price poller options.
func (c *Config) PollerOptions() *pricer.Options {
	return &pricer.Options{
		OrderType: c.Shop.OrderType,
		PageSize:  c.Shop.PageSize,
		ShopTypes: map[metamon.ItemKind]string{
			metamon.Egg:    c.Shop.EggType,
			metamon.Potion: c.Shop.PotionType,
		},
	}
}

func (c *Config) AlertThresholds() *alerts.Thresholds {
	return &alerts.Thresholds{
		EggBelow:    c.Thresholds.EggBelow,
		EggOver:     c.Thresholds.EggOver,
		PotionBelow: c.Thresholds.PotionBelow,
		PotionOver:  c.Thresholds.PotionOver,
	}
}
