package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/schema"
)

// SelectOption answers the current question node with option i and moves to its target.
// The option label is recorded as the node's answer, overwriting any previous one.
func (e *Engine) SelectOption(ctx context.Context, s *domain.TreeSession, i int) (*domain.TreeSession, error) {
	const op = "select"

	node, err := e.currentNode(s)
	if err != nil {
		return nil, e.fail(ctx, s, op, s.TreeID, s.CurrentNodeID, err)
	}
	if node.Type != domain.NodeTypeQuestion {
		return nil, e.fail(ctx, s, op, s.TreeID, node.ID, fmt.Errorf("%w (got %s)", domain.ErrNotQuestion, node.Type))
	}
	if i < 0 || i >= len(node.Options) {
		return nil, e.fail(ctx, s, op, s.TreeID, node.ID,
			fmt.Errorf("%w: %d not in [0, %d)", domain.ErrOptionOutOfRange, i, len(node.Options)))
	}

	opt := node.Options[i]
	return e.forward(ctx, s, node, op, opt.Next, opt.Label, true)
}

// Advance follows the Next edge of the current info node. No answer is recorded.
func (e *Engine) Advance(ctx context.Context, s *domain.TreeSession) (*domain.TreeSession, error) {
	const op = "advance"

	node, err := e.currentNode(s)
	if err != nil {
		return nil, e.fail(ctx, s, op, s.TreeID, s.CurrentNodeID, err)
	}
	if node.Type != domain.NodeTypeInfo {
		return nil, e.fail(ctx, s, op, s.TreeID, node.ID, fmt.Errorf("%w: advance on %s node", domain.ErrWrongNodeType, node.Type))
	}
	if node.Next == "" {
		return nil, e.fail(ctx, s, op, s.TreeID, node.ID, domain.ErrNoNext)
	}
	return e.forward(ctx, s, node, op, node.Next, "", false)
}

// SubmitInput validates values against the current input node's fields, records the
// canonical "name=value; ..." answer and follows the node's Next edge.
func (e *Engine) SubmitInput(ctx context.Context, s *domain.TreeSession, values map[string]any) (*domain.TreeSession, error) {
	const op = "input"

	node, err := e.currentNode(s)
	if err != nil {
		return nil, e.fail(ctx, s, op, s.TreeID, s.CurrentNodeID, err)
	}
	if node.Type != domain.NodeTypeInput {
		return nil, e.fail(ctx, s, op, s.TreeID, node.ID, fmt.Errorf("%w: input on %s node", domain.ErrWrongNodeType, node.Type))
	}
	answer, err := schema.Canonical(node.Inputs, values)
	if err != nil {
		return nil, e.fail(ctx, s, op, s.TreeID, node.ID, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err))
	}
	if node.Next == "" {
		return nil, e.fail(ctx, s, op, s.TreeID, node.ID, domain.ErrNoNext)
	}
	return e.forward(ctx, s, node, op, node.Next, answer, true)
}

// GoBack returns to the most recently visited node. Answers are kept.
func (e *Engine) GoBack(ctx context.Context, s *domain.TreeSession) (*domain.TreeSession, error) {
	const op = "back"

	if !s.CanGoBack() {
		return nil, e.fail(ctx, s, op, s.TreeID, s.CurrentNodeID, domain.ErrEmptyHistory)
	}

	prevID := s.History[len(s.History)-1]
	prev, err := e.store.GetNode(s.TreeID, prevID)
	if err != nil {
		return nil, e.fail(ctx, s, op, s.TreeID, s.CurrentNodeID, err)
	}

	next := s.Clone()
	next.History = next.History[:len(next.History)-1]
	next.CurrentNodeID = prevID

	e.leaveCurrent(ctx, s, op)
	e.emitNodeEnter(ctx, next, prev, op)
	return next, nil
}

// JumpToNode moves to any node of the same tree, pushing the current node onto history.
// Jumps never cross trees: a tree link starts a separate session.
func (e *Engine) JumpToNode(ctx context.Context, s *domain.TreeSession, target string) (*domain.TreeSession, error) {
	const op = "jump"

	node, err := e.currentNode(s)
	if err != nil {
		return nil, e.fail(ctx, s, op, s.TreeID, s.CurrentNodeID, err)
	}
	if target == node.ID {
		return nil, e.fail(ctx, s, op, s.TreeID, node.ID, &domain.TransitionError{
			Op: op, TreeID: s.TreeID, NodeID: node.ID, Target: target, Err: domain.ErrJumpToSelf,
		})
	}
	dest, err := e.store.GetNode(s.TreeID, target)
	if err != nil {
		return nil, e.fail(ctx, s, op, s.TreeID, node.ID, &domain.TransitionError{
			Op: op, TreeID: s.TreeID, NodeID: node.ID, Target: target,
			Err: fmt.Errorf("%w: %w", domain.ErrUnknownNode, err),
		})
	}

	next := s.Clone()
	next.History = append(next.History, node.ID)
	next.CurrentNodeID = dest.ID

	e.emitNodeLeave(ctx, s, node, op)
	e.emitNodeEnter(ctx, next, dest, op)
	return next, nil
}

// RewindTo returns to History[index], truncating history to the entries before it.
// Answers are kept; re-answering a node overwrites its earlier answer.
func (e *Engine) RewindTo(ctx context.Context, s *domain.TreeSession, index int) (*domain.TreeSession, error) {
	const op = "rewind"

	if index < 0 || index >= len(s.History) {
		return nil, e.fail(ctx, s, op, s.TreeID, s.CurrentNodeID,
			fmt.Errorf("%w: %d not in [0, %d)", domain.ErrHistoryIndex, index, len(s.History)))
	}

	targetID := s.History[index]
	dest, err := e.store.GetNode(s.TreeID, targetID)
	if err != nil {
		return nil, e.fail(ctx, s, op, s.TreeID, s.CurrentNodeID, err)
	}

	next := s.Clone()
	next.History = next.History[:index]
	next.CurrentNodeID = targetID

	e.leaveCurrent(ctx, s, op)
	e.emitNodeEnter(ctx, next, dest, op)
	return next, nil
}

// forward moves from node to target, pushing node onto history and optionally recording an answer.
// An edge back onto node itself is refused: history would end with the current node.
func (e *Engine) forward(ctx context.Context, s *domain.TreeSession, node *domain.DecisionNode, op, target, answer string, record bool) (*domain.TreeSession, error) {
	if target == node.ID {
		return nil, e.fail(ctx, s, op, s.TreeID, node.ID, &domain.TransitionError{
			Op: op, TreeID: s.TreeID, NodeID: node.ID, Target: target, Err: domain.ErrSelfLoop,
		})
	}
	dest, err := e.store.GetNode(s.TreeID, target)
	if err != nil {
		return nil, e.fail(ctx, s, op, s.TreeID, node.ID, &domain.TransitionError{
			Op: op, TreeID: s.TreeID, NodeID: node.ID, Target: target,
			Err: fmt.Errorf("%w: %w", domain.ErrDanglingTarget, err),
		})
	}

	next := s.Clone()
	next.History = append(next.History, node.ID)
	next.CurrentNodeID = dest.ID
	if record {
		next.Answers[node.ID] = answer
	}

	e.logger.Debug("transition", "op", op, "tree", s.TreeID, "from", node.ID, "to", dest.ID)
	e.emitNodeLeave(ctx, s, node, op)
	e.emitNodeEnter(ctx, next, dest, op)
	return next, nil
}

func (e *Engine) currentNode(s *domain.TreeSession) (*domain.DecisionNode, error) {
	return e.store.GetNode(s.TreeID, s.CurrentNodeID)
}

func (e *Engine) leaveCurrent(ctx context.Context, s *domain.TreeSession, op string) {
	if node, err := e.store.GetNode(s.TreeID, s.CurrentNodeID); err == nil {
		e.emitNodeLeave(ctx, s, node, op)
	}
}
