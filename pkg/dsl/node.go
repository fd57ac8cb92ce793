package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/consult/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.DecisionNode
	builder *Builder
	errs    []error
}

func (n *NodeBuilder) typed(t domain.NodeType, title string) *NodeBuilder {
	n.node.Type = t
	n.node.Title = title
	return n
}

func (n *NodeBuilder) expect(op string, types ...domain.NodeType) {
	for _, t := range types {
		if n.node.Type == t {
			return
		}
	}
	n.errs = append(n.errs, fmt.Errorf("node %s: %s needs a %v node, got %q", n.node.ID, op, types, n.node.Type))
}

// Info marks the node as an informational step.
func (n *NodeBuilder) Info(title string) *NodeBuilder {
	return n.typed(domain.NodeTypeInfo, title)
}

// Question marks the node as a question. Add branches with Option.
func (n *NodeBuilder) Question(title string) *NodeBuilder {
	return n.typed(domain.NodeTypeQuestion, title)
}

// Result marks the node as a terminal recommendation.
func (n *NodeBuilder) Result(title string) *NodeBuilder {
	return n.typed(domain.NodeTypeResult, title)
}

// Input marks the node as a form. Add fields with Number, Select or Checkbox.
func (n *NodeBuilder) Input(title string) *NodeBuilder {
	return n.typed(domain.NodeTypeInput, title)
}

// Module sets the 1-based module of the node.
func (n *NodeBuilder) Module(m int) *NodeBuilder {
	n.node.Module = m
	return n
}

// Body sets the body text. Lines are joined with newlines.
func (n *NodeBuilder) Body(lines ...string) *NodeBuilder {
	n.node.Body = strings.Join(lines, "\n")
	return n
}

// Cite attaches citation numbers to the node.
func (n *NodeBuilder) Cite(nums ...int) *NodeBuilder {
	n.node.Citation = append(n.node.Citation, nums...)
	return n
}

// Next sets the successor of an info or input node.
func (n *NodeBuilder) Next(target string) *NodeBuilder {
	n.expect("Next", domain.NodeTypeInfo, domain.NodeTypeInput)
	n.node.Next = target
	return n
}

// Option adds a branch to a question node.
func (n *NodeBuilder) Option(label, target string) *NodeBuilder {
	return n.OptionUrgency(label, target, "")
}

// OptionUrgency adds a branch with an urgency hint.
func (n *NodeBuilder) OptionUrgency(label, target string, u domain.Urgency) *NodeBuilder {
	n.expect("Option", domain.NodeTypeQuestion)
	n.node.Options = append(n.node.Options, domain.Option{Label: label, Next: target, Urgency: u})
	return n
}

// Describe sets the description of the last option added.
func (n *NodeBuilder) Describe(text string) *NodeBuilder {
	if len(n.node.Options) == 0 {
		n.errs = append(n.errs, fmt.Errorf("node %s: Describe before any Option", n.node.ID))
		return n
	}
	n.node.Options[len(n.node.Options)-1].Description = text
	return n
}

// Number adds a numeric field to an input node.
func (n *NodeBuilder) Number(name, label, unit string) *NodeBuilder {
	n.expect("Number", domain.NodeTypeInput)
	n.node.Inputs = append(n.node.Inputs, domain.InputField{Name: name, Type: domain.InputNumber, Label: label, Unit: unit})
	return n
}

// Select adds a single-choice field to an input node. Values double as labels.
func (n *NodeBuilder) Select(name, label string, values ...string) *NodeBuilder {
	n.expect("Select", domain.NodeTypeInput)
	n.node.Inputs = append(n.node.Inputs, domain.InputField{Name: name, Type: domain.InputSelect, Label: label, Options: options(values)})
	return n
}

// Checkbox adds a multi-choice field to an input node. Values double as labels.
func (n *NodeBuilder) Checkbox(name, label string, values ...string) *NodeBuilder {
	n.expect("Checkbox", domain.NodeTypeInput)
	n.node.Inputs = append(n.node.Inputs, domain.InputField{Name: name, Type: domain.InputCheckbox, Label: label, Options: options(values)})
	return n
}

// Recommend sets the recommendation of a result node.
func (n *NodeBuilder) Recommend(text string, c domain.Confidence) *NodeBuilder {
	n.expect("Recommend", domain.NodeTypeResult)
	n.node.Recommendation = text
	n.node.Confidence = c
	return n
}

// Treat sets the treatment regimen of a result node.
func (n *NodeBuilder) Treat(t domain.TreatmentRegimen) *NodeBuilder {
	n.expect("Treat", domain.NodeTypeResult)
	n.node.Treatment = &t
	return n
}

// Image attaches a reference image.
func (n *NodeBuilder) Image(src, alt string) *NodeBuilder {
	n.node.Images = append(n.node.Images, domain.NodeImage{Src: src, Alt: alt})
	return n
}

// Calculator links an external calculator.
func (n *NodeBuilder) Calculator(id, label string) *NodeBuilder {
	n.node.CalculatorLinks = append(n.node.CalculatorLinks, domain.CalculatorLink{ID: id, Label: label})
	return n
}

// Build returns the underlying node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.DecisionNode {
	return n.node
}

func options(values []string) []domain.InputOption {
	out := make([]domain.InputOption, len(values))
	for i, v := range values {
		out[i] = domain.InputOption{Label: v, Value: v}
	}
	return out
}
