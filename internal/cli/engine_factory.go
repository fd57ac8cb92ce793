package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/consult"
	"github.com/aretw0/consult/internal/config"
	"github.com/aretw0/consult/internal/logging"
	"github.com/aretw0/consult/pkg/adapters/file"
	"github.com/aretw0/consult/pkg/adapters/memory"
	"github.com/aretw0/consult/pkg/adapters/redis"
	"github.com/aretw0/consult/pkg/adapters/sqlite"
	"github.com/aretw0/consult/pkg/observability"
	"github.com/aretw0/consult/pkg/persistence/middleware"
	"github.com/aretw0/consult/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Options holds the global flags shared by every command.
type Options struct {
	ConfigPath string
	ContentDir string
	Debug      bool
}

// App is an initialized engine with the resources backing it.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Engine   *consult.Engine
	Registry *prometheus.Registry

	closers []func() error
}

// Close releases session store connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadConfig reads the configuration file and environment, then applies flags.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if opts.ContentDir != "" {
		cfg.Content = opts.ContentDir
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// NewLogger configures the application logger. Interactive commands stay silent
// unless debugging, so logs do not interleave with the walk UI.
func NewLogger(cfg config.Config, debug, interactive bool) *slog.Logger {
	if interactive && !debug {
		return logging.NewNop()
	}
	return logging.New(cfg.Level())
}

// NewApp builds the engine described by cfg. With metrics set, a fresh Prometheus
// registry collects engine metrics.
func NewApp(cfg config.Config, debug, interactive, metrics bool) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: NewLogger(cfg, debug, interactive),
	}

	store, locker, closer, err := createSessionStore(cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	engineOpts := []consult.Option{
		consult.WithLogger(app.Logger),
		consult.WithSessionStore(store),
	}
	if cfg.Content != "" {
		engineOpts = append(engineOpts, consult.WithContentDir(cfg.Content))
	}
	if locker != nil {
		engineOpts = append(engineOpts, consult.WithLocker(locker, cfg.Sessions.LockTTL))
	}
	if debug {
		engineOpts = append(engineOpts, consult.WithLifecycleHooks(observability.LoggingHooks(app.Logger)))
	}
	if metrics {
		app.Registry = prometheus.NewRegistry()
		engineOpts = append(engineOpts, consult.WithMetrics(app.Registry))
	}

	engine, err := consult.New(engineOpts...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	app.Engine = engine
	app.Logger.Debug("engine ready", "library", engine.Name, "backend", cfg.Sessions.Backend)
	return app, nil
}

// createSessionStore opens the configured backend and wraps it with redaction and
// encryption. Redaction runs first so masked values are what gets encrypted.
func createSessionStore(cfg config.Config) (ports.SessionStore, ports.DistributedLocker, func() error, error) {
	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
		closer func() error
	)

	switch cfg.Sessions.Backend {
	case config.BackendMemory:
		store = memory.NewStore()
	case config.BackendFile:
		store = file.NewStore(cfg.Sessions.Dir)
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.Sessions.SQLite)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		store, closer = s, s.Close
	case config.BackendRedis:
		rc := cfg.Sessions.Redis
		opts := []redis.Option{}
		if rc.Prefix != "" {
			opts = append(opts, redis.WithPrefix(rc.Prefix))
		}
		if rc.TTL > 0 {
			opts = append(opts, redis.WithTTL(rc.TTL))
		}
		s := redis.New(rc.Addr, rc.Password, rc.DB, opts...)
		store, closer = s, s.Close
		locker = redis.NewLocker(s.Client(), s.Prefix())
	default:
		return nil, nil, nil, fmt.Errorf("unknown session backend %q", cfg.Sessions.Backend)
	}

	active, fallback, err := cfg.Keys()
	if err != nil {
		if closer != nil {
			closer()
		}
		return nil, nil, nil, err
	}

	var mws []middleware.Middleware
	if len(cfg.Sessions.Redact) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.Sessions.Redact))
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}

	return middleware.Chain(store, mws...), locker, closer, nil
}
