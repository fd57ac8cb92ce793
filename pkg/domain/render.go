package domain

// ResolvedSpan is a span checked against the content store.
// Unresolved spans still carry their text; the host decides whether to show them
// as plain text or as a disabled control.
type ResolvedSpan struct {
	Span
	Resolved bool `json:"resolved"`
}

// ResolvedCalculatorLink is a calculator link checked against the content store.
type ResolvedCalculatorLink struct {
	CalculatorLink
	Resolved bool `json:"resolved"`
}

// Line is one rendered body line. Blank lines carry no spans but keep their slot.
type Line struct {
	Spans []ResolvedSpan `json:"spans"`
	Blank bool           `json:"blank,omitempty"`
}

// RenderedNode is the display-ready projection of a node.
type RenderedNode struct {
	TreeID   string       `json:"treeId"`
	NodeID   string       `json:"nodeId"`
	Type     NodeType     `json:"type"`
	Title    string       `json:"title"`
	Progress Progress     `json:"progress"`
	Lines    []Line       `json:"lines"`
	Options  []Option     `json:"options,omitempty"`
	Inputs   []InputField `json:"inputs,omitempty"`

	Recommendation string            `json:"recommendation,omitempty"`
	Confidence     Confidence        `json:"confidence,omitempty"`
	Treatment      *TreatmentRegimen `json:"treatment,omitempty"`

	Images          []NodeImage              `json:"images,omitempty"`
	CalculatorLinks []ResolvedCalculatorLink `json:"calculatorLinks,omitempty"`

	// Citations resolves the node's citation numbers against the tree table, in authored order.
	Citations []Citation `json:"citations,omitempty"`

	// Intents lists every host request reachable from this node, deduplicated in first-appearance order.
	Intents []Intent `json:"intents,omitempty"`

	// Unresolved counts spans whose target is missing from the content store.
	Unresolved int `json:"unresolved,omitempty"`

	Terminal  bool `json:"terminal"`
	CanGoBack bool `json:"canGoBack"`
}
