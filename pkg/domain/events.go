package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter        EventType = "node_enter"
	EventNodeLeave        EventType = "node_leave"
	EventTransitionFailed EventType = "transition_failed"
	EventUnresolvedRef    EventType = "unresolved_reference"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	TreeID    string    `json:"tree_id"`
}

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID   string   `json:"node_id"`
	NodeType NodeType `json:"node_type"`
	// Op is the traversal operation that caused the event (start, select, advance, ...).
	Op string `json:"op"`
}

// FailureEvent represents a refused transition.
type FailureEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Op     string `json:"op"`
	Err    error  `json:"-"`
}

// ReferenceEvent represents a span whose target is missing from the content store.
type ReferenceEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	Span   Span   `json:"span"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously inside the operation that triggers them.
type LifecycleHooks struct {
	OnNodeEnter           func(context.Context, *NodeEvent)
	OnNodeLeave           func(context.Context, *NodeEvent)
	OnTransitionFailed    func(context.Context, *FailureEvent)
	OnUnresolvedReference func(context.Context, *ReferenceEvent)
}
