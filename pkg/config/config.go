// Package config loads settings from defaults, an optional fourpillars.yaml,
// FOURPILLARS_* environment variables, and command-line flags, in rising
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "FOURPILLARS"

// Geo configures place search.
type Geo struct {
	Endpoint string        `mapstructure:"endpoint"`
	Language string        `mapstructure:"language"`
	Limit    int           `mapstructure:"limit"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Personality configures the personality API.
type Personality struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Cache configures the upstream response cache.
type Cache struct {
	Dir      string        `mapstructure:"dir"`
	TTL      time.Duration `mapstructure:"ttl"`
	Disabled bool          `mapstructure:"disabled"`
}

// Calendar configures the calendar library.
type Calendar struct {
	Sect int `mapstructure:"sect"`
}

// Server configures the HTTP API.
type Server struct {
	Port      string `mapstructure:"port"`
	RateLimit int    `mapstructure:"rate_limit"`
}

// Log configures logging.
type Log struct {
	Level string `mapstructure:"level"`
}

// Config is the full configuration.
type Config struct {
	Geo         Geo         `mapstructure:"geo"`
	Personality Personality `mapstructure:"personality"`
	Cache       Cache       `mapstructure:"cache"`
	Server      Server      `mapstructure:"server"`
	Log         Log         `mapstructure:"log"`
	Calendar    Calendar    `mapstructure:"calendar"`
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fourpillars")
}

// New returns a viper instance with defaults, environment binding, and the
// config file search path set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("geo.endpoint", "https://photon.komoot.io/api/")
	v.SetDefault("geo.language", "en")
	v.SetDefault("geo.limit", 5)
	v.SetDefault("geo.timeout", 5*time.Second)
	v.SetDefault("personality.endpoint", "")
	v.SetDefault("personality.api_key", "")
	v.SetDefault("personality.timeout", 10*time.Second)
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.disabled", false)
	v.SetDefault("calendar.sect", 2)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.rate_limit", 15)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("fourpillars")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/fourpillars")
	return v
}

// BindFlags maps flag names to config keys. Flags not present in fs are
// skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		f := fs.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}
	return nil
}

// Load reads the config file (explicit path if file is set) and decodes the
// result. A missing config file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Level parses the log level, defaulting to info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
