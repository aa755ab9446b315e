package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	User     UserConfig     `toml:"user"`
	Database DatabaseConfig `toml:"database"`
	Forecast ForecastConfig `toml:"forecast"`
	Watch    WatchConfig    `toml:"watch"`
}

type UserConfig struct {
	Name string `toml:"name"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ForecastConfig struct {
	// HorizonDays bounds how far ahead rendering and export walk the plan
	// when no availability window reaches further.
	HorizonDays int `toml:"horizon_days"`
}

type WatchConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
	LeadMinutes     int  `toml:"lead_minutes"`
}

func DefaultConfig() Config {
	return Config{
		Forecast: ForecastConfig{
			HorizonDays: 361,
		},
		Watch: WatchConfig{
			Enabled:         true,
			IntervalSeconds: 30,
			LeadMinutes:     15,
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tally"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TALLY_USER"); v != "" {
		cfg.User.Name = v
	}
	if v := os.Getenv("TALLY_DB"); v != "" {
		cfg.Database.Path = v
	}
	if cfg.User.Name == "" {
		cfg.User.Name = os.Getenv("USER")
	}
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
