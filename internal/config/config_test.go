package config

import (
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "consult.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
content: ./library
log_level: debug
sessions:
  backend: redis
  lock_ttl: 10s
  redis:
    addr: cache:6379
    db: 2
    ttl: 24h
  redact: ["^pe-vitals$", "age"]
http:
  port: 9000
  metrics: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./library", cfg.Content)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, BackendRedis, cfg.Sessions.Backend)
	assert.Equal(t, 10*time.Second, cfg.Sessions.LockTTL)
	assert.Equal(t, "cache:6379", cfg.Sessions.Redis.Addr)
	assert.Equal(t, 2, cfg.Sessions.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Sessions.Redis.TTL)
	assert.Equal(t, "consult:session:", cfg.Sessions.Redis.Prefix, "unset keys keep defaults")
	assert.Equal(t, []string{"^pe-vitals$", "age"}, cfg.Sessions.Redact)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.False(t, cfg.HTTP.Metrics)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "sessions:\n  backend: redis\nhttp:\n  port: 9000\n")

	t.Setenv("CONSULT_SESSION_BACKEND", "sqlite")
	t.Setenv("CONSULT_HTTP_PORT", "7000")
	t.Setenv("CONSULT_SESSION_TTL", "5m")
	t.Setenv("CONSULT_REDACT", "age,weight")
	t.Setenv("CONSULT_MAX_INPUT_SIZE", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Sessions.Backend)
	assert.Equal(t, 7000, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Minute, cfg.Sessions.Redis.TTL)
	assert.Equal(t, []string{"age", "weight"}, cfg.Sessions.Redact)
	assert.Equal(t, 4096, cfg.MaxInputSize, "unparsable values are ignored")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "sessions: [", "failed to parse config"},
		{"backend", "sessions:\n  backend: mongo\n", "unknown session backend"},
		{"level", "log_level: loud\n", "invalid log level"},
		{"port", "http:\n  port: 70000\n", "invalid http port"},
		{"key", "sessions:\n  encryption_key: c2hvcnQ=\n", "key must be 32 bytes"},
		{"fallback alone", "sessions:\n  fallback_keys: [abc]\n", "fallback_keys set without encryption_key"},
		{"redact", "sessions:\n  redact: [\"(\"]\n", "invalid redact pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestKeys(t *testing.T) {
	active := strings.Repeat("a", 32)
	old := strings.Repeat("b", 32)

	cfg := Default()
	cfg.Sessions.EncryptionKey = base64.StdEncoding.EncodeToString([]byte(active))
	cfg.Sessions.FallbackKeys = []string{base64.StdEncoding.EncodeToString([]byte(old))}

	key, fallback, err := cfg.Keys()
	require.NoError(t, err)
	assert.Equal(t, []byte(active), key)
	assert.Equal(t, [][]byte{[]byte(old)}, fallback)

	key, fallback, err = Default().Keys()
	require.NoError(t, err)
	assert.Nil(t, key)
	assert.Nil(t, fallback)
}
