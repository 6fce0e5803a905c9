// Package config loads the ircline settings: built-in defaults, then an
// optional YAML file, then IRCLINE_* environment variables. Command-line
// flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ircline/ircline/ircclient"
)

// Environment variable names.
const (
	EnvServer         = "IRCLINE_SERVER"
	EnvPort           = "IRCLINE_PORT"
	EnvNick           = "IRCLINE_NICK"
	EnvRealName       = "IRCLINE_REALNAME"
	EnvChannel        = "IRCLINE_CHANNEL"
	EnvConnectTimeout = "IRCLINE_CONNECT_TIMEOUT"
	EnvLogLevel       = "IRCLINE_LOG_LEVEL"
	EnvMetricsAddr    = "IRCLINE_METRICS_ADDR"
	EnvHistoryFile    = "IRCLINE_HISTORY_FILE"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Identity IdentityConfig `yaml:"identity"`

	// Channel is joined right after an automatic connect.
	Channel string `yaml:"channel"`

	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	LogLevel       string        `yaml:"log_level"`

	// MetricsAddr enables the Prometheus endpoint when set, e.g. ":9100".
	MetricsAddr string `yaml:"metrics_addr"`

	HistoryFile string `yaml:"history_file"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type IdentityConfig struct {
	Nickname string `yaml:"nickname"`
	RealName string `yaml:"realname"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: ircclient.DefaultPort,
		},
		ConnectTimeout: ircclient.ConnectionTimeout,
		LogLevel:       "warn",
		HistoryFile:    defaultHistoryFile(),
	}
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ircline_history")
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored and existing variables win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the configuration. An empty path skips the YAML file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvServer, &c.Server.Host)
	str(EnvNick, &c.Identity.Nickname)
	str(EnvRealName, &c.Identity.RealName)
	str(EnvChannel, &c.Channel)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvMetricsAddr, &c.MetricsAddr)
	str(EnvHistoryFile, &c.HistoryFile)

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvConnectTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s (duration): %w", EnvConnectTimeout, err)
		}
		c.ConnectTimeout = d
	}
	return nil
}

// Validate checks values that would make the client misbehave. Missing
// server or nickname is allowed; see AutoConnect.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("connect timeout must not be negative")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// AutoConnect reports whether enough is configured to connect at startup.
func (c *Config) AutoConnect() bool {
	return c.Server.Host != "" && c.Identity.Nickname != ""
}

// SlogLevel returns the configured log level, defaulting to warn.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
