// Package config loads the consult runtime configuration.
//
// Values are layered: built-in defaults, then the YAML file (consult.yaml by
// default), then CONSULT_* environment variables. Command-line flags are applied
// last by the CLI.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no explicit config path is given.
const DefaultFile = "consult.yaml"

// Session store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the full runtime configuration.
type Config struct {
	// Content is a directory of YAML content. Empty means the bundled library.
	Content  string   `yaml:"content"`
	LogLevel string   `yaml:"log_level"`
	Sessions Sessions `yaml:"sessions"`
	HTTP     HTTP     `yaml:"http"`

	// MaxInputSize bounds a single line of operator input, in bytes.
	MaxInputSize int `yaml:"max_input_size"`
}

// Sessions configures where traversal sessions are persisted.
type Sessions struct {
	Backend string        `yaml:"backend"`
	Dir     string        `yaml:"dir"`
	SQLite  string        `yaml:"sqlite_path"`
	LockTTL time.Duration `yaml:"lock_ttl"`
	Redis   Redis         `yaml:"redis"`

	// EncryptionKey is a base64 encoded 32 byte AES key. Empty disables encryption.
	EncryptionKey string `yaml:"encryption_key"`
	// FallbackKeys are older keys still accepted for decryption.
	FallbackKeys []string `yaml:"fallback_keys"`
	// Redact lists regular expressions of node ids or input fields masked before persistence.
	Redact []string `yaml:"redact"`
}

// Redis configures the redis session backend.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// HTTP configures the serve command.
type HTTP struct {
	Port    int  `yaml:"port"`
	Metrics bool `yaml:"metrics"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel: "info",
		Sessions: Sessions{
			Backend: BackendFile,
			Dir:     ".consult/sessions",
			SQLite:  ".consult/sessions.db",
			LockTTL: 30 * time.Second,
			Redis: Redis{
				Addr:   "localhost:6379",
				Prefix: "consult:session:",
			},
		},
		HTTP: HTTP{
			Port:    8080,
			Metrics: true,
		},
		MaxInputSize: 4096,
	}
}

// Load builds the configuration from defaults, the file at path and the environment.
// An empty path reads DefaultFile if it exists. An explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.Content = envOr("CONSULT_CONTENT", c.Content)
	c.LogLevel = envOr("CONSULT_LOG_LEVEL", c.LogLevel)
	c.MaxInputSize = envInt("CONSULT_MAX_INPUT_SIZE", c.MaxInputSize)

	c.Sessions.Backend = envOr("CONSULT_SESSION_BACKEND", c.Sessions.Backend)
	c.Sessions.Dir = envOr("CONSULT_SESSION_DIR", c.Sessions.Dir)
	c.Sessions.SQLite = envOr("CONSULT_SQLITE_PATH", c.Sessions.SQLite)
	c.Sessions.EncryptionKey = envOr("CONSULT_ENCRYPTION_KEY", c.Sessions.EncryptionKey)
	if v := os.Getenv("CONSULT_REDACT"); v != "" {
		c.Sessions.Redact = strings.Split(v, ",")
	}

	c.Sessions.Redis.Addr = envOr("CONSULT_REDIS_ADDR", c.Sessions.Redis.Addr)
	c.Sessions.Redis.Password = envOr("CONSULT_REDIS_PASSWORD", c.Sessions.Redis.Password)
	c.Sessions.Redis.DB = envInt("CONSULT_REDIS_DB", c.Sessions.Redis.DB)
	c.Sessions.Redis.TTL = envDuration("CONSULT_SESSION_TTL", c.Sessions.Redis.TTL)

	c.HTTP.Port = envInt("CONSULT_HTTP_PORT", c.HTTP.Port)
	c.HTTP.Metrics = envBool("CONSULT_METRICS", c.HTTP.Metrics)
}

// Validate checks value ranges, that the encryption keys decode and that redact patterns compile.
func (c Config) Validate() error {
	switch c.Sessions.Backend {
	case BackendMemory, BackendFile, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown session backend %q", c.Sessions.Backend)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("max_input_size must be positive, got %d", c.MaxInputSize)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	if _, _, err := c.Keys(); err != nil {
		return err
	}
	for _, p := range c.Sessions.Redact {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
	}
	return nil
}

// Keys decodes the active and fallback encryption keys. The active key is nil
// when encryption is disabled.
func (c Config) Keys() ([]byte, [][]byte, error) {
	if c.Sessions.EncryptionKey == "" {
		if len(c.Sessions.FallbackKeys) > 0 {
			return nil, nil, errors.New("fallback_keys set without encryption_key")
		}
		return nil, nil, nil
	}
	active, err := decodeKey(c.Sessions.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("encryption_key: %w", err)
	}
	var fallback [][]byte
	for i, k := range c.Sessions.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// Level returns the configured log level, falling back to info.
func (c Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
