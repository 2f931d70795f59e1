// Package config provides Viper-based configuration loading for pocketpet.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Save backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// DataConfig holds where game data lives on disk.
type DataConfig struct {
	// Dir is the root for saves, parental data and the default log file.
	Dir string `mapstructure:"dir"`
	// SaveBackend selects the slot store: "file" or "sqlite".
	SaveBackend string `mapstructure:"save_backend"`
}

// SavesDir returns the directory holding save<N>.json files.
func (d DataConfig) SavesDir() string { return filepath.Join(d.Dir, "saves") }

// SQLitePath returns the database file used by the sqlite backend.
func (d DataConfig) SQLitePath() string { return filepath.Join(d.Dir, "saves.db") }

// ParentalFile returns the path of the parental controls document.
func (d DataConfig) ParentalFile() string { return filepath.Join(d.Dir, "parentdata.json") }

// GameConfig holds the simulation cadence.
type GameConfig struct {
	// DecayInterval is the time between stat decay ticks.
	DecayInterval time.Duration `mapstructure:"decay_interval"`
	// SleepInterval is the time between sleep ramp steps.
	SleepInterval time.Duration `mapstructure:"sleep_interval"`
	// SleepIncrement is the sleep gained per ramp step.
	SleepIncrement int `mapstructure:"sleep_increment"`
	// InteractionCooldown applies to play and vet visits.
	InteractionCooldown time.Duration `mapstructure:"interaction_cooldown"`
	// RewardClicks is the number of clicks that earn one item.
	RewardClicks int `mapstructure:"reward_clicks"`
	// RewardWindow is how long a click burst stays open.
	RewardWindow time.Duration `mapstructure:"reward_window"`
	// ArchetypesFile optionally replaces the built-in archetype table.
	ArchetypesFile string `mapstructure:"archetypes_file"`
}

// ParentalConfig holds parental monitor settings.
type ParentalConfig struct {
	// MonitorInterval is how often play time is counted and the gate rechecked.
	MonitorInterval time.Duration `mapstructure:"monitor_interval"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File receives log output. Empty means stderr.
	File string `mapstructure:"file"`
}

// Config is the top-level application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Game     GameConfig     `mapstructure:"game"`
	Parental ParentalConfig `mapstructure:"parental"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateData(c.Data); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Parental.MonitorInterval <= 0 {
		errs = append(errs, fmt.Sprintf("parental.monitor_interval must be positive, got %s", c.Parental.MonitorInterval))
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateData(d DataConfig) error {
	var errs []string
	if d.Dir == "" {
		errs = append(errs, "data.dir must not be empty")
	}
	validBackends := map[string]bool{BackendFile: true, BackendSQLite: true}
	if !validBackends[d.SaveBackend] {
		errs = append(errs, fmt.Sprintf("data.save_backend must be one of [file, sqlite], got %q", d.SaveBackend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.DecayInterval <= 0 {
		errs = append(errs, fmt.Sprintf("game.decay_interval must be positive, got %s", g.DecayInterval))
	}
	if g.SleepInterval <= 0 {
		errs = append(errs, fmt.Sprintf("game.sleep_interval must be positive, got %s", g.SleepInterval))
	}
	if g.SleepIncrement < 1 || g.SleepIncrement > 100 {
		errs = append(errs, fmt.Sprintf("game.sleep_increment must be 1-100, got %d", g.SleepIncrement))
	}
	if g.InteractionCooldown < 0 {
		errs = append(errs, "game.interaction_cooldown must not be negative")
	}
	if g.RewardClicks < 1 {
		errs = append(errs, fmt.Sprintf("game.reward_clicks must be >= 1, got %d", g.RewardClicks))
	}
	if g.RewardWindow <= 0 {
		errs = append(errs, fmt.Sprintf("game.reward_window must be positive, got %s", g.RewardWindow))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with POCKETPET_ prefix
	v.SetEnvPrefix("POCKETPET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultDataDir returns ~/.config/pocketpet, or the working directory when
// no config directory is available.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "pocketpet")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", DefaultDataDir())
	v.SetDefault("data.save_backend", BackendFile)

	v.SetDefault("game.decay_interval", "5s")
	v.SetDefault("game.sleep_interval", "1s")
	v.SetDefault("game.sleep_increment", 25)
	v.SetDefault("game.interaction_cooldown", "10s")
	v.SetDefault("game.reward_clicks", 5)
	v.SetDefault("game.reward_window", "5s")
	v.SetDefault("game.archetypes_file", "")

	v.SetDefault("parental.monitor_interval", "1m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
}
