package consult

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/aretw0/consult/content"
	"github.com/aretw0/consult/internal/logging"
	"github.com/aretw0/consult/internal/runtime"
	"github.com/aretw0/consult/pkg/adapters/file"
	"github.com/aretw0/consult/pkg/adapters/memory"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/observability"
	"github.com/aretw0/consult/pkg/ports"
	"github.com/aretw0/consult/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Engine is the high-level entry point for the consult library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	rt atomic.Pointer[runtime.Engine]

	source   *file.Source
	content  ports.ContentStore
	sessions ports.SessionStore
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	hooks    domain.LifecycleHooks
	registry prometheus.Registerer
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
	manager  *session.Manager

	// Name labels the content library (directory name or "bundled").
	Name string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithContentDir reads the library from YAML files under dir. Directory libraries can be watched.
func WithContentDir(dir string) Option {
	return func(e *Engine) {
		if dir != "" {
			e.source = file.NewDirSource(dir)
		}
	}
}

// WithContent injects a prebuilt content store, bypassing the file loader.
func WithContent(store ports.ContentStore) Option {
	return func(e *Engine) {
		e.content = store
	}
}

// WithSessionStore sets where sessions are persisted. Defaults to an in-memory store.
func WithSessionStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.sessions = store
	}
}

// WithLocker enables distributed session locking.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMetrics registers Prometheus collectors on reg and feeds them from the lifecycle hooks.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source used for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New initializes a new Engine. Without WithContentDir or WithContent it serves
// the bundled library.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	switch {
	case eng.content != nil:
		eng.Name = "custom"
	case eng.source != nil:
		abs, err := filepath.Abs(eng.source.Dir())
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(abs)
	default:
		eng.source = file.NewSource(content.FS)
		eng.Name = "bundled"
	}
	eng.logger = eng.logger.With("library", eng.Name)

	if eng.content == nil {
		store, err := eng.source.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load content: %w", err)
		}
		eng.content = store
	}

	if eng.registry != nil {
		eng.metrics = observability.NewMetrics(eng.registry)
		eng.hooks = observability.Combine(eng.hooks, eng.metrics.Hooks())
	}

	eng.rt.Store(eng.newRuntime(eng.content))

	if eng.sessions == nil {
		eng.sessions = memory.NewStore()
	}
	managerOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(eng.locker))
		if eng.lockTTL > 0 {
			managerOpts = append(managerOpts, session.WithLockTTL(eng.lockTTL))
		}
	}
	eng.manager = session.NewManager(eng, eng.sessions, managerOpts...)

	return eng, nil
}

func (e *Engine) newRuntime(store ports.ContentStore) *runtime.Engine {
	opts := []runtime.EngineOption{
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
	}
	if e.now != nil {
		opts = append(opts, runtime.WithClock(e.now))
	}
	return runtime.NewEngine(store, opts...)
}

func (e *Engine) current() *runtime.Engine {
	return e.rt.Load()
}

// Content returns the content store currently served.
func (e *Engine) Content() ports.ContentStore {
	return e.current().Store()
}

// Sessions returns the session manager bound to the configured store.
func (e *Engine) Sessions() *session.Manager {
	return e.manager
}

// Metrics returns the collectors registered by WithMetrics, or nil.
func (e *Engine) Metrics() *observability.Metrics {
	return e.metrics
}

// Start creates a session positioned on the entry node of treeID.
func (e *Engine) Start(ctx context.Context, treeID string) (*domain.TreeSession, error) {
	return e.current().Start(ctx, treeID)
}

// Render projects the current node of s for display.
func (e *Engine) Render(ctx context.Context, s *domain.TreeSession) (*domain.RenderedNode, error) {
	return e.current().Render(ctx, s)
}

// SelectOption answers the current question with option i.
func (e *Engine) SelectOption(ctx context.Context, s *domain.TreeSession, i int) (*domain.TreeSession, error) {
	return e.current().SelectOption(ctx, s, i)
}

// Advance follows the Next edge of the current info node.
func (e *Engine) Advance(ctx context.Context, s *domain.TreeSession) (*domain.TreeSession, error) {
	return e.current().Advance(ctx, s)
}

// SubmitInput records validated input values and follows the Next edge.
func (e *Engine) SubmitInput(ctx context.Context, s *domain.TreeSession, values map[string]any) (*domain.TreeSession, error) {
	return e.current().SubmitInput(ctx, s, values)
}

// GoBack returns to the previously visited node.
func (e *Engine) GoBack(ctx context.Context, s *domain.TreeSession) (*domain.TreeSession, error) {
	return e.current().GoBack(ctx, s)
}

// JumpToNode moves to target within the same tree, recording the current node in history.
func (e *Engine) JumpToNode(ctx context.Context, s *domain.TreeSession, target string) (*domain.TreeSession, error) {
	return e.current().JumpToNode(ctx, s, target)
}

// RewindTo returns to the history entry at index, dropping everything after it.
func (e *Engine) RewindTo(ctx context.Context, s *domain.TreeSession, index int) (*domain.TreeSession, error) {
	return e.current().RewindTo(ctx, s, index)
}

// Reset starts s over from the tree's entry node.
func (e *Engine) Reset(ctx context.Context, s *domain.TreeSession) (*domain.TreeSession, error) {
	return e.current().Reset(ctx, s)
}

// Restore rebuilds a session from a snapshot, checking it against the current content.
func (e *Engine) Restore(ctx context.Context, snap domain.Snapshot) (*domain.TreeSession, error) {
	return e.current().Restore(ctx, snap)
}

// Calculate scores values against the calculator calcID.
func (e *Engine) Calculate(ctx context.Context, calcID string, values map[string]any) (*domain.CalculatorResult, error) {
	return e.current().Calculate(ctx, calcID, values)
}

// Progress reports module progress of the current node.
func (e *Engine) Progress(s *domain.TreeSession) (domain.Progress, error) {
	return e.current().Progress(s)
}

// AnswerHistory lists the recorded answers along the path of s.
func (e *Engine) AnswerHistory(s *domain.TreeSession) []domain.AnswerRecord {
	return e.current().AnswerHistory(s)
}

// Reload re-reads a directory library and swaps it in. Sessions in flight keep
// the content they started the operation with.
func (e *Engine) Reload() error {
	if e.source == nil || e.source.Dir() == "" {
		return fmt.Errorf("content is not backed by a directory")
	}
	store, err := e.source.Load()
	if err != nil {
		return fmt.Errorf("failed to reload content: %w", err)
	}
	e.rt.Store(e.newRuntime(store))
	trees, _ := store.ListTrees()
	e.logger.Info("content reloaded", "trees", len(trees))
	return nil
}

// Watch reloads the library whenever its files change and signals on the returned
// channel after every successful reload. Reload failures are logged and the
// previous content stays in place.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if e.source == nil || e.source.Dir() == "" {
		return nil, fmt.Errorf("current content does not support watching")
	}
	changes, err := e.source.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range changes {
			if err := e.Reload(); err != nil {
				e.logger.Warn("content reload failed", "err", err)
				continue
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, nil
}
