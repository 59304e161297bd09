package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Export   ExportConfig   `mapstructure:"export"`
	UI       UIConfig       `mapstructure:"ui"`
}

// APIConfig points at the recommendation backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig controls the file logger.
type LogConfig struct {
	Env   string `mapstructure:"env"`
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// ExportConfig holds the directory result exports are written to.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string  `mapstructure:"currency_symbol"`
	MinRating      float64 `mapstructure:"min_rating"`
}

// Load reads configuration from .env, file and env. Env var overrides use
// prefix RESTOPICK_.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	home := os.Getenv("HOME")
	share := filepath.Join(home, ".local", "share", "restopick")
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("database.path", filepath.Join(share, "restopick.db"))
	v.SetDefault("log.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(share, "restopick.log"))
	v.SetDefault("export.dir", filepath.Join(share, "exports"))
	v.SetDefault("ui.currency_symbol", "₹")
	v.SetDefault("ui.min_rating", 0)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("RESTOPICK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "restopick"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("RESTOPICK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.UI.MinRating < 0 || c.UI.MinRating > 5 {
		return Config{}, fmt.Errorf("ui.min_rating %v out of range 0..5", c.UI.MinRating)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed.
func Save(cfg Config) error {
	path := os.Getenv("RESTOPICK_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "restopick", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.env", cfg.Log.Env)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.path", cfg.Log.Path)
	v.Set("export.dir", cfg.Export.Dir)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.min_rating", cfg.UI.MinRating)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
