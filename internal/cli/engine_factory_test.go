package cli

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/consult/internal/config"
	"github.com/aretw0/consult/pkg/adapters/file"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Sessions.Backend = config.BackendMemory
	cfg.Sessions.Dir = filepath.Join(t.TempDir(), "sessions")
	cfg.Sessions.SQLite = filepath.Join(t.TempDir(), "sessions.db")
	return cfg
}

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	app, err := NewApp(cfg, false, true, false)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestCreateSessionStore_Backends(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		backend    string
		wantLocker bool
	}{
		{config.BackendMemory, false},
		{config.BackendFile, false},
		{config.BackendSQLite, false},
		{config.BackendRedis, true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Sessions.Backend = tt.backend
			cfg.Sessions.Redis.Addr = mr.Addr()

			store, locker, closer, err := createSessionStore(cfg)
			require.NoError(t, err)
			if closer != nil {
				t.Cleanup(func() { closer() })
			}
			assert.Equal(t, tt.wantLocker, locker != nil)

			ports.RunSessionStoreContract(t, store)
		})
	}
}

func TestCreateSessionStore_RedactsAndEncrypts(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sessions.Backend = config.BackendFile
	cfg.Sessions.Redact = []string{"^sbp$"}
	cfg.Sessions.EncryptionKey = base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))

	store, _, _, err := createSessionStore(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	s := domain.NewSession("pe", "pe-risk")
	s.Answers["pe-vitals"] = "sbp=85; rv=yes"
	require.NoError(t, store.Save(ctx, "walk-1", s))

	loaded, err := store.Load(ctx, "walk-1")
	require.NoError(t, err)
	assert.Equal(t, "sbp=***; rv=yes", loaded.Answers["pe-vitals"])

	raw, err := file.NewStore(cfg.Sessions.Dir).Load(ctx, "walk-1")
	require.NoError(t, err)
	assert.NotContains(t, raw.Answers, "pe-vitals")
	assert.NotEqual(t, "pe", raw.TreeID)
}

func TestCreateSessionStore_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sessions.Backend = "tape"
	_, _, _, err := createSessionStore(cfg)
	assert.ErrorContains(t, err, "unknown session backend")
}

func TestNewApp(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewApp(cfg, false, false, true)
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, "bundled", app.Engine.Name)
	require.NotNil(t, app.Registry)
	assert.NotNil(t, app.Engine.Metrics())

	cfg.Content = t.TempDir()
	_, err = NewApp(cfg, false, false, false)
	assert.Error(t, err, "an empty directory holds no trees")
}

func TestLoadConfig_Flags(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(Options{ContentDir: "trees", Debug: true})
	require.NoError(t, err)
	assert.Equal(t, "trees", cfg.Content)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = LoadConfig(Options{ConfigPath: "missing.yaml"})
	assert.Error(t, err)
}
