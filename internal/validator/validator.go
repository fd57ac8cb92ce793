// Package validator lints decision trees and risk calculators for authoring mistakes
// the engine would only report at traversal time.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/consult/internal/runtime"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/inline"
	"github.com/aretw0/consult/pkg/ports"
)

// Severity ranks an issue.
type Severity string

const (
	// SeverityError marks content that breaks traversal or rendering.
	SeverityError Severity = "error"
	// SeverityWarning marks content that works but is likely unintended.
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeDanglingEdge      = "dangling-edge"
	CodeSelfLoop          = "self-loop"
	CodeUnreachable       = "unreachable"
	CodeNoOptions         = "no-options"
	CodeDeadEnd           = "dead-end"
	CodeUnresolvedRef     = "unresolved-reference"
	CodeMissingCitation   = "missing-citation"
	CodeModuleRange       = "module-out-of-range"
	CodeBadInput          = "bad-input"
	CodeUnusedAnnex       = "unused-annex"
	CodeUnknownUrgency    = "unknown-urgency"
	CodeUnknownConfidence = "unknown-confidence"
	CodeBadCalculator     = "bad-calculator"
)

// CalculatorScope is the TreeID of issues found in calculator definitions.
const CalculatorScope = "calculators"

// Issue is one finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	TreeID   string   `json:"tree_id"`
	NodeID   string   `json:"node_id,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	loc := i.TreeID
	if i.NodeID != "" {
		loc += "/" + i.NodeID
	}
	return fmt.Sprintf("%s [%s] %s: %s", i.Severity, i.Code, loc, i.Message)
}

// Report is the outcome of a validation run.
type Report struct {
	Trees       int     `json:"trees"`
	Nodes       int     `json:"nodes"`
	Calculators int     `json:"calculators"`
	Issues      []Issue `json:"issues"`
}

// Errors returns only the error-severity issues.
func (r *Report) Errors() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Err summarizes error-severity issues as an error, or returns nil.
func (r *Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

// Validate lints every tree of the store.
func Validate(store ports.ContentStore) (*Report, error) {
	metas, err := store.ListTrees()
	if err != nil {
		return nil, err
	}

	r := &Report{}
	for _, m := range metas {
		tree, err := store.GetTree(m.ID)
		if err != nil {
			return nil, err
		}
		r.Trees++
		r.Nodes += len(tree.Nodes)
		r.Issues = append(r.Issues, ValidateTree(store, tree)...)
	}

	calcs, err := store.ListCalculators()
	if err != nil {
		return nil, err
	}
	for _, m := range calcs {
		calc, err := store.GetCalculator(m.ID)
		if err != nil {
			return nil, err
		}
		r.Calculators++
		r.Issues = append(r.Issues, ValidateCalculator(calc)...)
	}
	return r, nil
}

// ValidateCalculator lints the criteria and bands of a calculator.
func ValidateCalculator(calc *domain.Calculator) []Issue {
	var issues []Issue
	add := func(format string, args ...any) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     CodeBadCalculator,
			TreeID:   CalculatorScope,
			NodeID:   calc.ID,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if len(calc.Fields) == 0 {
		add("calculator has no criteria")
	}
	seen := make(map[string]bool)
	for _, f := range calc.Fields {
		if f.Name == "" {
			add("criterion without a name")
			continue
		}
		if seen[f.Name] {
			add("duplicate criterion %q", f.Name)
		}
		seen[f.Name] = true

		switch f.Type {
		case domain.ScoreToggle, domain.ScoreNumber:
		case domain.ScoreSelect:
			if len(f.Options) == 0 {
				add("select criterion %q has no options", f.Name)
			}
		default:
			add("criterion %q has unsupported type %q", f.Name, f.Type)
		}
	}

	if len(calc.Bands) == 0 {
		add("calculator has no result bands")
	}
	for _, b := range calc.Bands {
		if b.Min != nil && b.Max != nil && *b.Min >= *b.Max {
			add("band %q is empty: [%g, %g)", b.Label, *b.Min, *b.Max)
		}
	}
	return issues
}

// ValidateTree lints a single tree. Lookups of other trees, drugs and info pages go through store.
func ValidateTree(store ports.ContentStore, tree *domain.Tree) []Issue {
	v := &treeLinter{store: store, tree: tree}
	v.crawl()
	for i := range tree.Nodes {
		v.node(&tree.Nodes[i])
	}
	sort.SliceStable(v.issues, func(a, b int) bool {
		return v.issues[a].Severity == SeverityError && v.issues[b].Severity != SeverityError
	})
	return v.issues
}

type treeLinter struct {
	store  ports.ContentStore
	tree   *domain.Tree
	issues []Issue
}

func (v *treeLinter) add(sev Severity, code, nodeID, format string, args ...any) {
	v.issues = append(v.issues, Issue{
		Severity: sev,
		Code:     code,
		TreeID:   v.tree.ID,
		NodeID:   nodeID,
		Message:  fmt.Sprintf(format, args...),
	})
}

// crawl walks the graph breadth-first from the entry node, reporting dangling edges
// and then every node the walk never reached.
func (v *treeLinter) crawl() {
	visited := make(map[string]bool)
	queue := []string{v.tree.EntryNodeID}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		node, ok := v.tree.Node(currentID)
		if !ok {
			continue
		}
		for _, target := range node.Successors() {
			if _, ok := v.tree.Node(target); !ok {
				v.add(SeverityError, CodeDanglingEdge, node.ID, "edge to missing node %q", target)
				continue
			}
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	for _, n := range v.tree.Nodes {
		if visited[n.ID] {
			continue
		}
		v.add(SeverityWarning, CodeUnreachable, n.ID, "not reachable from entry node %q", v.tree.EntryNodeID)
		for _, target := range n.Successors() {
			if _, ok := v.tree.Node(target); !ok {
				v.add(SeverityError, CodeDanglingEdge, n.ID, "edge to missing node %q", target)
			}
		}
	}
}

func (v *treeLinter) node(n *domain.DecisionNode) {
	for _, target := range n.Successors() {
		if target == n.ID {
			v.add(SeverityError, CodeSelfLoop, n.ID, "edge back to itself")
			break
		}
	}

	switch n.Type {
	case domain.NodeTypeQuestion:
		if len(n.Options) == 0 {
			v.add(SeverityError, CodeNoOptions, n.ID, "question has no options")
		}
		for _, opt := range n.Options {
			switch opt.Urgency {
			case "", domain.UrgencyRoutine, domain.UrgencyUrgent, domain.UrgencyCritical:
			default:
				v.add(SeverityWarning, CodeUnknownUrgency, n.ID, "option %q has urgency %q", opt.Label, opt.Urgency)
			}
		}
		if n.Next != "" {
			v.add(SeverityWarning, CodeUnusedAnnex, n.ID, "question ignores next %q", n.Next)
		}
	case domain.NodeTypeInfo, domain.NodeTypeInput:
		if n.Next == "" {
			v.add(SeverityWarning, CodeDeadEnd, n.ID, "%s node has no next and is not a result", n.Type)
		}
		if len(n.Options) > 0 {
			v.add(SeverityWarning, CodeUnusedAnnex, n.ID, "%s node ignores its options", n.Type)
		}
	case domain.NodeTypeResult:
		switch n.Confidence {
		case "", domain.ConfidenceDefinitive, domain.ConfidenceRecommended, domain.ConfidenceConsider:
		default:
			v.add(SeverityWarning, CodeUnknownConfidence, n.ID, "confidence %q", n.Confidence)
		}
		if n.Next != "" || len(n.Options) > 0 {
			v.add(SeverityWarning, CodeUnusedAnnex, n.ID, "result node ignores outgoing edges")
		}
	}

	if n.Type == domain.NodeTypeInput {
		v.inputs(n)
	} else if len(n.Inputs) > 0 {
		v.add(SeverityWarning, CodeUnusedAnnex, n.ID, "%s node ignores its inputs", n.Type)
	}

	if n.Module < 1 || (len(v.tree.ModuleLabels) > 0 && n.Module > len(v.tree.ModuleLabels)) {
		v.add(SeverityWarning, CodeModuleRange, n.ID, "module %d outside 1..%d", n.Module, len(v.tree.ModuleLabels))
	}

	for _, num := range n.Citation {
		if _, ok := v.tree.Citation(num); !ok {
			v.add(SeverityError, CodeMissingCitation, n.ID, "cites [%d] which is not in the citation table", num)
		}
	}

	for li, line := range inline.ParseBody(n.Body) {
		for _, sp := range line {
			if runtime.Resolves(v.store, v.tree, sp) {
				continue
			}
			if sp.Kind == domain.SpanCitation {
				v.add(SeverityError, CodeUnresolvedRef, n.ID, "line %d: citation %s not in table", li+1, inline.Format([]domain.Span{sp}))
				continue
			}
			v.add(SeverityError, CodeUnresolvedRef, n.ID, "line %d: %s %q not found", li+1, sp.Kind, sp.Target)
		}
	}

	for _, link := range n.CalculatorLinks {
		if !runtime.ResolvesCalculator(v.store, link.ID) {
			v.add(SeverityError, CodeUnresolvedRef, n.ID, "calculator %q not found", link.ID)
		}
	}
}

func (v *treeLinter) inputs(n *domain.DecisionNode) {
	if len(n.Inputs) == 0 {
		v.add(SeverityError, CodeBadInput, n.ID, "input node has no fields")
	}
	seen := make(map[string]bool)
	for _, f := range n.Inputs {
		if f.Name == "" {
			v.add(SeverityError, CodeBadInput, n.ID, "field without a name")
			continue
		}
		if seen[f.Name] {
			v.add(SeverityError, CodeBadInput, n.ID, "duplicate field %q", f.Name)
		}
		seen[f.Name] = true

		switch f.Type {
		case domain.InputNumber:
		case domain.InputSelect, domain.InputCheckbox:
			if len(f.Options) == 0 {
				v.add(SeverityError, CodeBadInput, n.ID, "%s field %q has no options", f.Type, f.Name)
			}
		default:
			v.add(SeverityError, CodeBadInput, n.ID, "field %q has unsupported type %q", f.Name, f.Type)
		}
	}
}
