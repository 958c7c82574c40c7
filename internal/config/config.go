// Package config loads application configuration from an optional TOML file
// and environment variables. Environment variables win over the file, which
// wins over defaults.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration.
type Config struct {
	DBPath        string        `toml:"db_path"`
	ListenAddr    string        `toml:"listen_addr"`
	ScanDepth     int           `toml:"scan_depth"`
	Ignore        []string      `toml:"ignore"`
	Roots         []string      `toml:"roots"`
	WatchDebounce time.Duration `toml:"-"`
	LogLevel      string        `toml:"log_level"`

	// WatchDebounceRaw carries the file value of watch_debounce until it is
	// parsed into WatchDebounce.
	WatchDebounceRaw string `toml:"watch_debounce"`

	// SecretKey is the 32-byte AES key decoded from GITSWITCH_SECRET_KEY. It
	// is never read from the file. nil disables token storage.
	SecretKey []byte `toml:"-"`

	// File is the config file that was read, or "" if none existed.
	File string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:        filepath.Join(dataDir(), "state.db"),
		ListenAddr:    "127.0.0.1:7317",
		ScanDepth:     5,
		Ignore:        []string{},
		Roots:         []string{},
		WatchDebounce: 500 * time.Millisecond,
	}
}

// DefaultPath returns the config file location: $GITSWITCH_CONFIG, else
// gitswitch/config.toml under the user config directory.
func DefaultPath() string {
	if p := os.Getenv("GITSWITCH_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gitswitch.toml"
	}
	return filepath.Join(dir, "gitswitch", "config.toml")
}

func dataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "gitswitch")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "gitswitch")
	}
	return "."
}

// Load reads the config file at DefaultPath (a missing file is fine), applies
// GITSWITCH_* environment overrides and validates the result.
func Load() (*Config, error) {
	return LoadFile(DefaultPath())
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		cfg.File = path
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if cfg.WatchDebounceRaw != "" {
		d, err := time.ParseDuration(cfg.WatchDebounceRaw)
		if err != nil {
			return nil, fmt.Errorf("watch_debounce has invalid duration %q: %w", cfg.WatchDebounceRaw, err)
		}
		cfg.WatchDebounce = d
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.ScanDepth < 1 {
		return nil, fmt.Errorf("scan depth must be at least 1, got %d", cfg.ScanDepth)
	}
	if cfg.WatchDebounce < 0 {
		return nil, fmt.Errorf("watch debounce must not be negative, got %s", cfg.WatchDebounce)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("GITSWITCH_DB_PATH"); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := os.LookupEnv("GITSWITCH_LISTEN_ADDR"); ok && v != "" {
		c.ListenAddr = v
	}
	if v, ok := os.LookupEnv("GITSWITCH_SCAN_DEPTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GITSWITCH_SCAN_DEPTH has invalid value %q: %w", v, err)
		}
		c.ScanDepth = n
	}
	if v, ok := os.LookupEnv("GITSWITCH_IGNORE"); ok {
		c.Ignore = splitList(v, ",")
	}
	if v, ok := os.LookupEnv("GITSWITCH_ROOTS"); ok {
		c.Roots = splitList(v, string(os.PathListSeparator))
	}
	if v, ok := os.LookupEnv("GITSWITCH_WATCH_DEBOUNCE"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GITSWITCH_WATCH_DEBOUNCE has invalid duration %q: %w", v, err)
		}
		c.WatchDebounce = d
	}
	if v, ok := os.LookupEnv("GITSWITCH_LOG_LEVEL"); ok {
		c.LogLevel = v
	}

	if v, ok := os.LookupEnv("GITSWITCH_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return fmt.Errorf("GITSWITCH_SECRET_KEY must be hex-encoded: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("GITSWITCH_SECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", len(key))
		}
		c.SecretKey = key
	}
	return nil
}

func splitList(v, sep string) []string {
	out := []string{}
	for _, item := range strings.Split(v, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParseLevel maps a level name to a slog.Level. "" yields slog.LevelWarn.
func ParseLevel(s string) (slog.Level, error) {
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
		return 0, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
}

// HasSecretKey reports whether token storage is enabled.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}
