package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration. Secrets can be
// overridden via environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Feed struct {
		WSURL       string   `yaml:"ws_url"`
		Key         string   `yaml:"key"`
		Secret      string   `yaml:"secret"`
		Underlyings []string `yaml:"underlyings"`
	} `yaml:"feed"`

	Scanner struct {
		InboxSize          int   `yaml:"inbox_size"`
		MaxAlerts          int   `yaml:"max_alerts"`
		SweepWindowMS      int64 `yaml:"sweep_window_ms"`
		SweepVenues        int   `yaml:"sweep_venues"`
		BlockSize          int64 `yaml:"block_size"`
		HighVolume         int64 `yaml:"high_volume"`
		LargePremiumDollar int64 `yaml:"large_premium_dollar"`
	} `yaml:"scanner"`

	Journal struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"journal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies env overrides, and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills the empirically tuned production thresholds wherever
// the file leaves a field unset.
func (c *Config) applyDefaults() {
	s := &c.Scanner
	if s.InboxSize == 0 {
		s.InboxSize = 1024
	}
	if s.MaxAlerts == 0 {
		s.MaxAlerts = 200
	}
	if s.SweepWindowMS == 0 {
		s.SweepWindowMS = 5000
	}
	if s.SweepVenues == 0 {
		s.SweepVenues = 3
	}
	if s.BlockSize == 0 {
		s.BlockSize = 50
	}
	if s.HighVolume == 0 {
		s.HighVolume = 500
	}
	if s.LargePremiumDollar == 0 {
		s.LargePremiumDollar = 100000
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Feed.WSURL == "" || (!strings.HasPrefix(c.Feed.WSURL, "ws://") && !strings.HasPrefix(c.Feed.WSURL, "wss://")) {
		return fmt.Errorf("invalid feed WS URL: %s", c.Feed.WSURL)
	}
	if len(c.Feed.Underlyings) == 0 {
		return fmt.Errorf("at least one tracked underlying is required")
	}
	if c.Scanner.SweepVenues < 2 {
		return fmt.Errorf("sweep venue threshold must be at least 2")
	}
	return nil
}

// overrideWithEnv applies environment variables over file values. Env wins
// so credentials can stay out of config files.
func overrideWithEnv(cfg *Config) {
	if cfg.Feed.Key != "" || cfg.Feed.Secret != "" {
		fmt.Println("⚠️  SECURITY WARNING: feed credentials found in config file.")
		fmt.Println("   Recommendation: use environment variables instead:")
		fmt.Println("   - FLOW_ALPACA_KEY, FLOW_ALPACA_SECRET")
	}

	if key := os.Getenv("FLOW_ALPACA_KEY"); key != "" {
		cfg.Feed.Key = key
	}
	if secret := os.Getenv("FLOW_ALPACA_SECRET"); secret != "" {
		cfg.Feed.Secret = secret
	}
}
