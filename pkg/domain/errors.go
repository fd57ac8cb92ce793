package domain

import (
	"errors"
	"fmt"
)

// Content lookups.
var (
	ErrTreeNotFound       = errors.New("tree not found")
	ErrNodeNotFound       = errors.New("node not found")
	ErrDrugNotFound       = errors.New("drug not found")
	ErrInfoPageNotFound   = errors.New("info page not found")
	ErrCalculatorNotFound = errors.New("calculator not found")
	ErrUnknownNodeType    = errors.New("unknown node type")
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// Invalid operation requests.
var (
	ErrNotQuestion      = errors.New("current node is not a question")
	ErrWrongNodeType    = errors.New("operation not valid for current node type")
	ErrOptionOutOfRange = errors.New("option index out of range")
	ErrEmptyHistory     = errors.New("no previous node: already at entry")
	ErrHistoryIndex     = errors.New("history index out of range")
	ErrInvalidInput     = errors.New("invalid input values")
	ErrJumpToSelf       = errors.New("jump target is the current node")
)

// Content authoring errors detected at traversal time.
var (
	ErrNoNext         = errors.New("node has no next node")
	ErrDanglingTarget = errors.New("transition target does not exist")
	ErrUnknownNode    = errors.New("jump target does not exist in tree")
	ErrSelfLoop       = errors.New("transition target is the node itself")
)

// ErrInvalidSnapshot is returned when a persisted session no longer matches the content.
var ErrInvalidSnapshot = errors.New("invalid session snapshot")

// TransitionError reports a refused traversal operation. The session it was
// issued against is left untouched.
type TransitionError struct {
	Op     string
	TreeID string
	NodeID string
	Target string
	Err    error
}

func (e *TransitionError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s at %s/%s -> %s: %v", e.Op, e.TreeID, e.NodeID, e.Target, e.Err)
	}
	return fmt.Sprintf("%s at %s/%s: %v", e.Op, e.TreeID, e.NodeID, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// IsContentError reports whether err stems from broken authored content rather
// than from an invalid request.
func IsContentError(err error) bool {
	if errors.Is(err, ErrUnknownNode) {
		return false
	}
	return errors.Is(err, ErrDanglingTarget) ||
		errors.Is(err, ErrNoNext) ||
		errors.Is(err, ErrSelfLoop) ||
		errors.Is(err, ErrUnknownNodeType) ||
		errors.Is(err, ErrNodeNotFound)
}
