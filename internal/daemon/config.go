// Package daemon manages the VitalQuest daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/vitalquest/vitalquest/internal/domain"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig        `toml:"api"`
	Storage   StorageConfig    `toml:"storage"`
	Engine    EngineConfig     `toml:"engine"`
	Telemetry TelemetryConfig  `toml:"telemetry"`
	Logging   LoggingConfig    `toml:"logging"`
	Rules     domain.GameRules `toml:"rules"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host" env:"VITALQUEST_API_HOST"`
	Port        int      `toml:"port" env:"VITALQUEST_API_PORT"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig controls where the SQLite database lives.
type StorageConfig struct {
	Dir string `toml:"dir" env:"VITALQUEST_STORAGE_DIR"`
}

// EngineConfig controls the rules engine runtime.
type EngineConfig struct {
	Timezone      string `toml:"timezone" env:"VITALQUEST_TIMEZONE"` // IANA name; "" or "Local" uses the host zone
	SweepInterval string `toml:"sweep_interval"`
	Username      string `toml:"username"` // default name for `vitalquest init`
}

// Location resolves the configured calendar time zone.
func (c EngineConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus" env:"VITALQUEST_PROMETHEUS"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"` // "info" or "debug"
	File  string `toml:"file"`  // empty logs to stderr only
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	homeDir := vitalquestHome()
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8787,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir: homeDir,
		},
		Engine: EngineConfig{
			Timezone:      "Local",
			SweepInterval: "15m",
			Username:      "Adventurer",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Rules: domain.DefaultGameRules(),
	}
}

// LoadConfig reads config from ~/.vitalquest/config.toml, falling back to
// defaults, then applies environment overrides.
func LoadConfig() (Config, error) {
	return loadConfigFile(filepath.Join(vitalquestHome(), "config.toml"))
}

func loadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the settings the daemon cannot start without.
func (c Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if _, err := c.Engine.Location(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Engine.SweepInterval != "" {
		if d, err := time.ParseDuration(c.Engine.SweepInterval); err != nil || d <= 0 {
			return fmt.Errorf("engine.sweep_interval %q is not a positive duration", c.Engine.SweepInterval)
		}
	}
	return c.Rules.Validate()
}

// SaveConfig writes the config to ~/.vitalquest/config.toml.
func SaveConfig(cfg Config) error {
	return saveConfigFile(filepath.Join(vitalquestHome(), "config.toml"), cfg)
}

func saveConfigFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// vitalquestHome returns the VitalQuest data directory.
func vitalquestHome() string {
	if dir := os.Getenv("VITALQUEST_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".vitalquest")
}

// Home is exported for use by other packages.
func Home() string {
	return vitalquestHome()
}
