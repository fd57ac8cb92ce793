package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/consult/pkg/domain"
)

// LoggingHooks logs every lifecycle event on logger.
// Node events are logged at debug, failures and unresolved references at warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter",
				"session_id", e.SessionID,
				"tree_id", e.TreeID,
				"node_id", e.NodeID,
				"type", e.NodeType,
				"op", e.Op,
			)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_leave",
				"session_id", e.SessionID,
				"tree_id", e.TreeID,
				"node_id", e.NodeID,
				"op", e.Op,
			)
		},
		OnTransitionFailed: func(ctx context.Context, e *domain.FailureEvent) {
			logger.WarnContext(ctx, "transition_failed",
				"session_id", e.SessionID,
				"tree_id", e.TreeID,
				"node_id", e.NodeID,
				"op", e.Op,
				"reason", Reason(e.Err),
				"error", e.Err,
			)
		},
		OnUnresolvedReference: func(ctx context.Context, e *domain.ReferenceEvent) {
			logger.WarnContext(ctx, "unresolved_reference",
				"tree_id", e.TreeID,
				"node_id", e.NodeID,
				"kind", e.Span.Kind,
				"target", e.Span.Target,
			)
		},
	}
}

// Combine fans every event out to each of the given hook sets, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks

	for _, h := range sets {
		if h.OnNodeEnter != nil {
			out.OnNodeEnter = chain(out.OnNodeEnter, h.OnNodeEnter)
		}
		if h.OnNodeLeave != nil {
			out.OnNodeLeave = chain(out.OnNodeLeave, h.OnNodeLeave)
		}
		if h.OnTransitionFailed != nil {
			out.OnTransitionFailed = chain(out.OnTransitionFailed, h.OnTransitionFailed)
		}
		if h.OnUnresolvedReference != nil {
			out.OnUnresolvedReference = chain(out.OnUnresolvedReference, h.OnUnresolvedReference)
		}
	}
	return out
}

func chain[E any](first, second func(context.Context, E)) func(context.Context, E) {
	if first == nil {
		return second
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		second(ctx, e)
	}
}
