package runtime

import (
	"context"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/inline"
	"github.com/aretw0/consult/pkg/ports"
)

// Render projects the current node of s into display form and reports
// unresolved references through the lifecycle hooks.
func (e *Engine) Render(ctx context.Context, s *domain.TreeSession) (*domain.RenderedNode, error) {
	tree, err := e.store.GetTree(s.TreeID)
	if err != nil {
		return nil, e.fail(ctx, s, "render", s.TreeID, s.CurrentNodeID, err)
	}
	node, ok := tree.Node(s.CurrentNodeID)
	if !ok {
		return nil, e.fail(ctx, s, "render", s.TreeID, s.CurrentNodeID, domain.ErrNodeNotFound)
	}

	out := RenderNode(e.store, tree, node)
	out.CanGoBack = s.CanGoBack()

	if out.Unresolved > 0 {
		for _, line := range out.Lines {
			for _, sp := range line.Spans {
				if !sp.Resolved {
					e.emitUnresolved(ctx, s, node.ID, sp.Span)
				}
			}
		}
		for _, link := range out.CalculatorLinks {
			if !link.Resolved {
				e.logger.Warn("unresolved calculator link", "tree", s.TreeID, "node", node.ID, "calculator", link.ID)
			}
		}
	}
	return out, nil
}

// RenderNode is the pure projection of node (owned by tree) against store.
// It never fails: references to missing content are flagged, not reported as errors.
// Calling it twice with the same arguments yields equal results.
func RenderNode(store ports.ContentStore, tree *domain.Tree, node *domain.DecisionNode) *domain.RenderedNode {
	// The result shares nothing with the stored node.
	own := node.Clone()
	out := &domain.RenderedNode{
		TreeID:         tree.ID,
		NodeID:         node.ID,
		Type:           node.Type,
		Title:          node.Title,
		Progress:       progressOf(tree, node),
		Options:        own.Options,
		Inputs:         own.Inputs,
		Recommendation: node.Recommendation,
		Confidence:     node.Confidence,
		Treatment:      own.Treatment,
		Images:         own.Images,
		Terminal:       node.IsTerminal(),
	}

	seen := make(map[domain.Intent]bool)
	for _, spans := range inline.ParseBody(node.Body) {
		line := domain.Line{Blank: len(spans) == 0}
		for _, sp := range spans {
			resolved := Resolves(store, tree, sp)
			line.Spans = append(line.Spans, domain.ResolvedSpan{Span: sp, Resolved: resolved})
			if !resolved {
				out.Unresolved++
				continue
			}
			for _, in := range sp.Intents() {
				if !seen[in] {
					seen[in] = true
					out.Intents = append(out.Intents, in)
				}
			}
		}
		out.Lines = append(out.Lines, line)
	}

	for _, link := range node.CalculatorLinks {
		resolved := ResolvesCalculator(store, link.ID)
		out.CalculatorLinks = append(out.CalculatorLinks, domain.ResolvedCalculatorLink{CalculatorLink: link, Resolved: resolved})
		if !resolved {
			out.Unresolved++
			continue
		}
		in := domain.Intent{Kind: domain.IntentShowCalculator, Target: link.ID}
		if !seen[in] {
			seen[in] = true
			out.Intents = append(out.Intents, in)
		}
	}

	for _, num := range node.Citation {
		c, ok := tree.Citation(num)
		if !ok {
			out.Unresolved++
			continue
		}
		out.Citations = append(out.Citations, c)
	}

	return out
}

// Resolves reports whether the target of sp exists in tree or store.
func Resolves(store ports.ContentStore, tree *domain.Tree, sp domain.Span) bool {
	switch sp.Kind {
	case domain.SpanText, domain.SpanBold:
		return true
	case domain.SpanNodeLink:
		_, ok := tree.Node(sp.Target)
		return ok
	case domain.SpanTreeLink:
		_, err := store.GetTree(sp.Target)
		return err == nil
	case domain.SpanDrugLink:
		_, err := store.GetDrug(sp.Target)
		return err == nil
	case domain.SpanInfoLink:
		_, err := store.GetInfoPage(sp.Target)
		return err == nil
	case domain.SpanCitation:
		for _, n := range sp.Citations {
			if _, ok := tree.Citation(n); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ResolvesCalculator reports whether calcID names a calculator of store.
func ResolvesCalculator(store ports.ContentStore, calcID string) bool {
	_, err := store.GetCalculator(calcID)
	return err == nil
}

func progressOf(tree *domain.Tree, node *domain.DecisionNode) domain.Progress {
	return domain.Progress{
		Module:       node.Module,
		TotalModules: tree.TotalModules(),
		Label:        tree.ModuleLabel(node.Module),
	}
}

// Progress locates the current node of s within its tree's modules.
func (e *Engine) Progress(s *domain.TreeSession) (domain.Progress, error) {
	tree, err := e.store.GetTree(s.TreeID)
	if err != nil {
		return domain.Progress{}, err
	}
	node, ok := tree.Node(s.CurrentNodeID)
	if !ok {
		return domain.Progress{}, domain.ErrNodeNotFound
	}
	return progressOf(tree, node), nil
}

// AnswerHistory lists the recorded answers along the walked path, oldest first.
// Nodes in history without an answer (info nodes, jumps) are skipped.
func (e *Engine) AnswerHistory(s *domain.TreeSession) []domain.AnswerRecord {
	var out []domain.AnswerRecord
	for _, id := range s.History {
		ans, ok := s.Answers[id]
		if !ok {
			continue
		}
		title := id
		if n, err := e.store.GetNode(s.TreeID, id); err == nil && n.Title != "" {
			title = n.Title
		}
		out = append(out, domain.AnswerRecord{NodeID: id, NodeTitle: title, Answer: ans})
	}
	return out
}
