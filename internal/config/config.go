// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Thermoquad/hantekpsu/pkg/hantek"
)

// EnvPrefix is prepended to every environment override, e.g. HANTEK_PORT.
const EnvPrefix = "HANTEK"

type Config struct {
	Port        string        `mapstructure:"port"`
	Baud        int           `mapstructure:"baud"`
	Timeout     time.Duration `mapstructure:"timeout"`
	URL         string        `mapstructure:"url"`
	Username    string        `mapstructure:"username"`
	NoSSLVerify bool          `mapstructure:"no_ssl_verify"`
	Simulate    bool          `mapstructure:"simulate"`
	Log         LogConfig     `mapstructure:"log"`
}

type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	File   LogFileConfig `mapstructure:"file"`
}

type LogFileConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// New returns a viper instance with defaults and environment overrides
// applied. Callers bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", hantek.DefaultPort)
	v.SetDefault("baud", hantek.DefaultBaudRate)
	v.SetDefault("timeout", hantek.DefaultTimeout)
	v.SetDefault("url", "")
	v.SetDefault("username", "")
	v.SetDefault("no_ssl_verify", false)
	v.SetDefault("simulate", false)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file.filename", "")
	v.SetDefault("log.file.max_size", 10)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.max_age", 28)
	v.SetDefault("log.file.compress", false)
}

// Load reads the optional config file at path (YAML, TOML or JSON by
// extension) and decodes v into a validated Config. An empty path skips the
// file and uses defaults, environment and flags only.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.URL == "" && !cfg.Simulate && strings.TrimSpace(cfg.Port) == "" {
		return fmt.Errorf("config missing port")
	}
	if cfg.Baud <= 0 {
		return fmt.Errorf("baud must be positive, got %d", cfg.Baud)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.URL != "" && !strings.HasPrefix(cfg.URL, "ws://") && !strings.HasPrefix(cfg.URL, "wss://") {
		return fmt.Errorf("url must use ws:// or wss://, got %q", cfg.URL)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log format must be console or json, got %q", cfg.Log.Format)
	}
	return nil
}
