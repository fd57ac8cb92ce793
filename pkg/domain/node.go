package domain

import "fmt"

// NodeType determines which fields of a node are meaningful and how it is rendered.
type NodeType string

const (
	// NodeTypeQuestion halts and asks the operator to pick one of the node options.
	NodeTypeQuestion NodeType = "question"
	// NodeTypeInfo displays content and continues along Next.
	NodeTypeInfo NodeType = "info"
	// NodeTypeResult is a terminal recommendation.
	NodeTypeResult NodeType = "result"
	// NodeTypeInput collects form values before continuing along Next.
	NodeTypeInput NodeType = "input"
)

// ParseNodeType converts an authored type string into a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	switch t := NodeType(s); t {
	case NodeTypeQuestion, NodeTypeInfo, NodeTypeResult, NodeTypeInput:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNodeType, s)
	}
}

// Urgency drives colour-coding of options.
type Urgency string

const (
	UrgencyRoutine  Urgency = "routine"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyCritical Urgency = "critical"
)

// Confidence qualifies a result recommendation.
type Confidence string

const (
	ConfidenceDefinitive  Confidence = "definitive"
	ConfidenceRecommended Confidence = "recommended"
	ConfidenceConsider    Confidence = "consider"
)

// DecisionNode is a vertex in a clinical algorithm graph.
// Nodes are loaded once and never mutated; callers must treat them as read-only.
type DecisionNode struct {
	ID     string   `json:"id" yaml:"id" mapstructure:"id"`
	Type   NodeType `json:"type" yaml:"type" mapstructure:"type"`
	Module int      `json:"module" yaml:"module" mapstructure:"module"`
	Title  string   `json:"title" yaml:"title" mapstructure:"title"`

	// Body is authored text split on newlines; it may carry the inline reference syntax.
	Body string `json:"body" yaml:"body" mapstructure:"body"`

	// Citation indexes into the owning tree's citation table. Order and duplicates are kept.
	Citation []int `json:"citation,omitempty" yaml:"citation,omitempty" mapstructure:"citation"`

	// Options are the branches of a question node.
	Options []Option `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`

	// Inputs are the form fields of an input node.
	Inputs []InputField `json:"inputs,omitempty" yaml:"inputs,omitempty" mapstructure:"inputs"`

	// Next is the single successor of a non-question node. Empty means terminal.
	Next string `json:"next,omitempty" yaml:"next,omitempty" mapstructure:"next"`

	// Result annexes
	Recommendation string            `json:"recommendation,omitempty" yaml:"recommendation,omitempty" mapstructure:"recommendation"`
	Confidence     Confidence        `json:"confidence,omitempty" yaml:"confidence,omitempty" mapstructure:"confidence"`
	Treatment      *TreatmentRegimen `json:"treatment,omitempty" yaml:"treatment,omitempty" mapstructure:"treatment"`

	// Passive display annexes with no traversal effect.
	Images          []NodeImage      `json:"images,omitempty" yaml:"images,omitempty" mapstructure:"images"`
	CalculatorLinks []CalculatorLink `json:"calculatorLinks,omitempty" yaml:"calculatorLinks,omitempty" mapstructure:"calculatorLinks"`
}

// Option is one branch of a question node.
type Option struct {
	Label       string  `json:"label" yaml:"label" mapstructure:"label"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Next        string  `json:"next" yaml:"next" mapstructure:"next"`
	Urgency     Urgency `json:"urgency,omitempty" yaml:"urgency,omitempty" mapstructure:"urgency"`
}

// InputKind is the form control of an input field.
type InputKind string

const (
	InputNumber   InputKind = "number"
	InputSelect   InputKind = "select"
	InputCheckbox InputKind = "checkbox"
)

// InputField is one form field of an input node.
type InputField struct {
	Name    string        `json:"name" yaml:"name" mapstructure:"name"`
	Type    InputKind     `json:"type" yaml:"type" mapstructure:"type"`
	Label   string        `json:"label" yaml:"label" mapstructure:"label"`
	Unit    string        `json:"unit,omitempty" yaml:"unit,omitempty" mapstructure:"unit"`
	Options []InputOption `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
}

// InputOption is a selectable value of a select or checkbox field.
type InputOption struct {
	Label string `json:"label" yaml:"label" mapstructure:"label"`
	Value string `json:"value" yaml:"value" mapstructure:"value"`
}

// NodeImage is a reference image (ultrasound still, clinical photo).
type NodeImage struct {
	Src     string `json:"src" yaml:"src" mapstructure:"src"`
	Alt     string `json:"alt" yaml:"alt" mapstructure:"alt"`
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty" mapstructure:"caption"`
}

// CalculatorLink points at a risk calculator of the library.
type CalculatorLink struct {
	ID    string `json:"id" yaml:"id" mapstructure:"id"`
	Label string `json:"label" yaml:"label" mapstructure:"label"`
}

// TreatmentRegimen is the treatment annex of a result node.
type TreatmentRegimen struct {
	FirstLine   DrugRegimen  `json:"firstLine" yaml:"firstLine" mapstructure:"firstLine"`
	Alternative *DrugRegimen `json:"alternative,omitempty" yaml:"alternative,omitempty" mapstructure:"alternative"`
	PcnAllergy  *DrugRegimen `json:"pcnAllergy,omitempty" yaml:"pcnAllergy,omitempty" mapstructure:"pcnAllergy"`
	Monitoring  string       `json:"monitoring" yaml:"monitoring" mapstructure:"monitoring"`
}

// DrugRegimen is one line of a treatment regimen.
type DrugRegimen struct {
	Drug      string `json:"drug" yaml:"drug" mapstructure:"drug"`
	Dose      string `json:"dose" yaml:"dose" mapstructure:"dose"`
	Route     string `json:"route" yaml:"route" mapstructure:"route"`
	Frequency string `json:"frequency" yaml:"frequency" mapstructure:"frequency"`
	Duration  string `json:"duration" yaml:"duration" mapstructure:"duration"`
	Notes     string `json:"notes,omitempty" yaml:"notes,omitempty" mapstructure:"notes"`
}

// IsTerminal reports whether the node has no outgoing edge.
func (n *DecisionNode) IsTerminal() bool {
	switch n.Type {
	case NodeTypeResult:
		return true
	case NodeTypeQuestion:
		return len(n.Options) == 0
	case NodeTypeInfo, NodeTypeInput:
		return n.Next == ""
	default:
		return true
	}
}

// Successors returns the ids reachable in one authored step, in authored order.
func (n *DecisionNode) Successors() []string {
	var out []string
	for _, opt := range n.Options {
		out = append(out, opt.Next)
	}
	if n.Next != "" {
		out = append(out, n.Next)
	}
	return out
}
