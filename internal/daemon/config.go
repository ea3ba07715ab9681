// Package daemon holds the timebank configuration and its on-disk layout.
package daemon

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tutu-network/timebank/internal/app/engine"
	"github.com/tutu-network/timebank/internal/domain"
)

// ConfigFileName is the TOML file read from the home directory.
const ConfigFileName = "config.toml"

// Config is the full timebank configuration (~/.timebank/config.toml).
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Timer   TimerConfig   `toml:"timer"`
	Bonus   BonusConfig   `toml:"bonus"`
	API     APIConfig     `toml:"api"`
}

// StorageConfig selects where the timer record lives.
type StorageConfig struct {
	Backend string `toml:"backend"` // "sqlite" or "memory"
	Path    string `toml:"path"`    // directory for the sqlite file; empty = home
	Key     string `toml:"key"`
}

// TimerConfig tunes the engine.
type TimerConfig struct {
	TickInterval string `toml:"tick_interval"`
	MaxBalanceMs int64  `toml:"max_balance_ms"`
}

// BonusConfig controls the daily login bonus.
type BonusConfig struct {
	Enabled  bool   `toml:"enabled"`
	Hour     int    `toml:"hour"`
	AmountMs int64  `toml:"amount_ms"`
	Timezone string `toml:"timezone"` // IANA name; empty = local
}

// APIConfig configures the HTTP controller surface.
type APIConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Metrics bool   `toml:"metrics"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: "sqlite",
			Key:     domain.StorageKey,
		},
		Timer: TimerConfig{
			TickInterval: domain.TickInterval.String(),
			MaxBalanceMs: domain.MaxBalance,
		},
		Bonus: BonusConfig{
			Enabled:  true,
			Hour:     domain.BonusHour,
			AmountMs: domain.BonusAmount,
		},
		API: APIConfig{
			Host:    "127.0.0.1",
			Port:    7410,
			Metrics: true,
		},
	}
}

// Home returns the timebank home directory ($TIMEBANK_HOME or ~/.timebank).
func Home() string {
	if env := os.Getenv("TIMEBANK_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".timebank")
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	return filepath.Join(Home(), ConfigFileName)
}

// LoadConfig decodes path over the defaults. A missing file yields the
// defaults without error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = ConfigPath()
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// StorageDir resolves the sqlite directory.
func (c Config) StorageDir() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return Home()
}

// Addr returns host:port for the API listener.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// Engine converts the configuration into engine settings.
func (c Config) Engine() engine.Config {
	cfg := engine.Config{
		TickInterval: parseInterval(c.Timer.TickInterval),
		MaxBalance:   c.Timer.MaxBalanceMs,
	}
	if cfg.MaxBalance <= 0 {
		cfg.MaxBalance = domain.MaxBalance
	}
	if c.Bonus.Enabled {
		cfg.Bonus = &engine.BonusPolicy{
			Hour:     c.Bonus.Hour,
			Amount:   c.Bonus.AmountMs,
			Location: parseLocation(c.Bonus.Timezone),
		}
		if cfg.Bonus.Hour < 0 || cfg.Bonus.Hour > 23 {
			log.Printf("[config] bonus hour %d out of range, using %d", cfg.Bonus.Hour, domain.BonusHour)
			cfg.Bonus.Hour = domain.BonusHour
		}
		if cfg.Bonus.Amount <= 0 {
			cfg.Bonus.Amount = domain.BonusAmount
		}
	}
	return cfg
}

// parseInterval parses a Go duration string, falling back to the default
// tick interval for empty, invalid or non-positive values.
func parseInterval(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return domain.TickInterval
	}
	return d
}

func parseLocation(name string) *time.Location {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("[config] unknown timezone %q, using local time", name)
		return nil
	}
	return loc
}
