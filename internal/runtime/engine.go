package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/consult/internal/logging"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/ports"
)

// Engine is the traversal state machine. It holds no session state: every
// operation takes a session value and returns a new one, leaving the input untouched.
type Engine struct {
	store  ports.ContentStore
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides the time source used for session start timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a new engine reading from store.
func NewEngine(store ports.ContentStore, opts ...EngineOption) *Engine {
	e := &Engine{
		store:  store,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the content store the engine reads from.
func (e *Engine) Store() ports.ContentStore {
	return e.store
}

// Start creates a session positioned on the entry node of treeID.
func (e *Engine) Start(ctx context.Context, treeID string) (*domain.TreeSession, error) {
	entry, err := e.store.GetEntryNode(treeID)
	if err != nil {
		return nil, e.fail(ctx, nil, "start", treeID, "", err)
	}

	s := domain.NewSession(treeID, entry.ID)
	s.StartedAt = e.now()

	e.logger.Debug("session started", "tree", treeID, "node", entry.ID)
	e.emitNodeEnter(ctx, s, entry, "start")
	return s, nil
}

// Reset returns a fresh session on the entry node of the same tree, keeping the session ID.
// Answers and history are cleared and StartedAt is renewed.
func (e *Engine) Reset(ctx context.Context, s *domain.TreeSession) (*domain.TreeSession, error) {
	entry, err := e.store.GetEntryNode(s.TreeID)
	if err != nil {
		return nil, e.fail(ctx, s, "reset", s.TreeID, s.CurrentNodeID, err)
	}

	if cur, err := e.store.GetNode(s.TreeID, s.CurrentNodeID); err == nil {
		e.emitNodeLeave(ctx, s, cur, "reset")
	}

	next := domain.NewSession(s.TreeID, entry.ID)
	next.ID = s.ID
	next.StartedAt = e.now()

	e.emitNodeEnter(ctx, next, entry, "reset")
	return next, nil
}

// Restore validates a persisted snapshot against the content store and resumes it.
// The tree, the current node and every history entry must still exist.
func (e *Engine) Restore(ctx context.Context, snap domain.Snapshot) (*domain.TreeSession, error) {
	invalid := func(reason error) error {
		return &domain.TransitionError{
			Op:     "restore",
			TreeID: snap.TreeID,
			NodeID: snap.CurrentNodeID,
			Err:    fmt.Errorf("%w: %w", domain.ErrInvalidSnapshot, reason),
		}
	}

	if snap.TreeID == "" || snap.CurrentNodeID == "" {
		return nil, invalid(errors.New("missing tree or current node"))
	}
	tree, err := e.store.GetTree(snap.TreeID)
	if err != nil {
		return nil, invalid(err)
	}
	if _, ok := tree.Node(snap.CurrentNodeID); !ok {
		return nil, invalid(fmt.Errorf("current node %q: %w", snap.CurrentNodeID, domain.ErrNodeNotFound))
	}
	for i, id := range snap.History {
		if _, ok := tree.Node(id); !ok {
			return nil, invalid(fmt.Errorf("history[%d] %q: %w", i, id, domain.ErrNodeNotFound))
		}
	}
	if n := len(snap.History); n > 0 && snap.History[n-1] == snap.CurrentNodeID {
		return nil, invalid(fmt.Errorf("history ends with current node %q", snap.CurrentNodeID))
	}

	s := snap.Session()
	if snap.StartedAt == 0 {
		s.StartedAt = e.now()
	}
	return s, nil
}

// fail wraps err as a TransitionError (unless it already is one), logs it and fires the failure hook.
func (e *Engine) fail(ctx context.Context, s *domain.TreeSession, op, treeID, nodeID string, err error) error {
	var te *domain.TransitionError
	if !errors.As(err, &te) {
		te = &domain.TransitionError{Op: op, TreeID: treeID, NodeID: nodeID, Err: err}
	}

	e.logger.Debug("transition refused", "op", op, "tree", treeID, "node", nodeID, "error", err)

	if e.hooks.OnTransitionFailed != nil {
		ev := &domain.FailureEvent{
			EventBase: e.eventBase(s, domain.EventTransitionFailed, treeID),
			NodeID:    nodeID,
			Op:        op,
			Err:       te,
		}
		e.hooks.OnTransitionFailed(ctx, ev)
	}
	return te
}

func (e *Engine) eventBase(s *domain.TreeSession, typ domain.EventType, treeID string) domain.EventBase {
	base := domain.EventBase{
		Timestamp: time.Now(),
		Type:      typ,
		TreeID:    treeID,
	}
	if s != nil {
		base.SessionID = s.ID
	}
	return base
}

func (e *Engine) emitNodeEnter(ctx context.Context, s *domain.TreeSession, node *domain.DecisionNode, op string) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: e.eventBase(s, domain.EventNodeEnter, s.TreeID),
		NodeID:    node.ID,
		NodeType:  node.Type,
		Op:        op,
	})
}

func (e *Engine) emitNodeLeave(ctx context.Context, s *domain.TreeSession, node *domain.DecisionNode, op string) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: e.eventBase(s, domain.EventNodeLeave, s.TreeID),
		NodeID:    node.ID,
		NodeType:  node.Type,
		Op:        op,
	})
}

func (e *Engine) emitUnresolved(ctx context.Context, s *domain.TreeSession, nodeID string, span domain.Span) {
	e.logger.Warn("unresolved reference", "tree", s.TreeID, "node", nodeID, "kind", span.Kind, "target", span.Target)
	if e.hooks.OnUnresolvedReference == nil {
		return
	}
	e.hooks.OnUnresolvedReference(ctx, &domain.ReferenceEvent{
		EventBase: e.eventBase(s, domain.EventUnresolvedRef, s.TreeID),
		NodeID:    nodeID,
		Span:      span,
	})
}
