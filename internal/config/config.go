// Package config loads shelf's runtime configuration.
//
// Values are layered, later layers winning:
//
//  1. Default()
//  2. a YAML file (--config or $SHELF_CONFIG)
//  3. SHELF_* environment variables
//  4. command-line flags (applied by package cli)
//
// Validate must be called after the last layer.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/shelf/internal/catalogapi"
	"github.com/roach88/shelf/internal/ledger"
	"github.com/roach88/shelf/internal/query"
	"github.com/roach88/shelf/internal/queryurl"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreBadger = "badger"
	StoreMemory = "memory"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SHELF_"

// Config holds every tunable.
type Config struct {
	BaseURL   string        `yaml:"base_url" validate:"required,url"`
	DataDir   string        `yaml:"data_dir" validate:"required"`
	Store     string        `yaml:"store" validate:"oneof=sqlite badger memory"`
	CartKey   string        `yaml:"cart_key" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	RateLimit float64       `yaml:"rate_limit" validate:"gte=0"`
	RateBurst int           `yaml:"rate_burst" validate:"gte=1"`
	UserAgent string        `yaml:"user_agent" validate:"required"`
	LogLevel  string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	Defaults  Defaults      `yaml:"defaults"`
}

// Defaults is the query a browsing session starts with.
type Defaults struct {
	Category string `yaml:"category" validate:"required"`
	Limit    int    `yaml:"limit" validate:"gt=0"`
	Skip     int    `yaml:"skip" validate:"gte=0"`
	SortBy   string `yaml:"sort_by" validate:"sortkey"`
	Order    string `yaml:"order" validate:"sortorder"`
}

// Default returns the built-in configuration.
func Default() Config {
	d := query.Default()
	return Config{
		BaseURL:   queryurl.DefaultBaseURL,
		DataDir:   defaultDataDir(),
		Store:     StoreSQLite,
		CartKey:   ledger.DefaultKey,
		Timeout:   10 * time.Second,
		RateLimit: 5,
		RateBurst: 5,
		UserAgent: catalogapi.DefaultUserAgent,
		LogLevel:  "info",
		Defaults: Defaults{
			Category: d.Category,
			Limit:    d.Limit,
			Skip:     d.Skip,
			SortBy:   string(d.SortBy),
			Order:    string(d.Order),
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "shelf")
	}
	return ".shelf"
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. If path is empty $SHELF_CONFIG is used; if that is empty
// too no file is read. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	envString("BASE_URL", &c.BaseURL)
	envString("DATA_DIR", &c.DataDir)
	envString("STORE", &c.Store)
	envString("CART_KEY", &c.CartKey)
	envString("USER_AGENT", &c.UserAgent)
	envString("LOG_LEVEL", &c.LogLevel)
	envString("CATEGORY", &c.Defaults.Category)
	envString("SORT_BY", &c.Defaults.SortBy)
	envString("ORDER", &c.Defaults.Order)

	return errors.Join(
		envDuration("TIMEOUT", &c.Timeout),
		envFloat("RATE_LIMIT", &c.RateLimit),
		envInt("RATE_BURST", &c.RateBurst),
		envInt("LIMIT", &c.Defaults.Limit),
		envInt("SKIP", &c.Defaults.Skip),
	)
}

func envString(key string, dst *string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = f
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = d
	return nil
}

// Descriptor returns the starting query.
func (c Config) Descriptor() query.Descriptor {
	return query.Descriptor{
		Category: c.Defaults.Category,
		Limit:    c.Defaults.Limit,
		Skip:     c.Defaults.Skip,
		SortBy:   query.SortKey(c.Defaults.SortBy),
		Order:    query.Order(c.Defaults.Order),
	}
}

// Level returns LogLevel as a slog.Level. Unknown values map to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SQLitePath is the database file used by the sqlite store.
func (c Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "shelf.db")
}

// BadgerPath is the directory used by the badger store.
func (c Config) BadgerPath() string {
	return filepath.Join(c.DataDir, "badger")
}

// LogPath is where the interactive browser writes its log.
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, "shelf.log")
}

// ClientConfig returns the catalog client settings.
func (c Config) ClientConfig(logger *slog.Logger) catalogapi.Config {
	return catalogapi.Config{
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		RateLimit: c.RateLimit,
		RateBurst: c.RateBurst,
		UserAgent: c.UserAgent,
		Logger:    logger,
	}
}
