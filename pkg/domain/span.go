package domain

// SpanKind tags the variant of a Span.
type SpanKind string

const (
	SpanText     SpanKind = "text"
	SpanBold     SpanKind = "bold"
	SpanNodeLink SpanKind = "nodeLink"
	SpanTreeLink SpanKind = "treeLink"
	SpanDrugLink SpanKind = "drugLink"
	SpanInfoLink SpanKind = "infoLink"
	SpanCitation SpanKind = "citationRef"
)

// Span is one classified piece of a body line.
//
// Fields by kind:
//   - text, bold: Text
//   - nodeLink, treeLink, infoLink: Text (label), Target
//   - drugLink: Text (label), Target (drug id), Hint
//   - citationRef: Citations
type Span struct {
	Kind      SpanKind `json:"kind"`
	Text      string   `json:"text,omitempty"`
	Target    string   `json:"target,omitempty"`
	Hint      string   `json:"hint,omitempty"`
	Citations []int    `json:"citations,omitempty"`
}

// IsLink reports whether the span references other content.
func (s Span) IsLink() bool {
	switch s.Kind {
	case SpanNodeLink, SpanTreeLink, SpanDrugLink, SpanInfoLink:
		return true
	default:
		return false
	}
}

// Intents returns the host requests this span triggers when activated.
// A citation span yields one scroll intent per number.
func (s Span) Intents() []Intent {
	switch s.Kind {
	case SpanNodeLink:
		return []Intent{{Kind: IntentNavigateToNode, Target: s.Target}}
	case SpanTreeLink:
		return []Intent{{Kind: IntentNavigateToTree, Target: s.Target}}
	case SpanDrugLink:
		return []Intent{{Kind: IntentShowDrug, Target: s.Target, Hint: s.Hint}}
	case SpanInfoLink:
		return []Intent{{Kind: IntentShowInfo, Target: s.Target}}
	case SpanCitation:
		out := make([]Intent, 0, len(s.Citations))
		for _, n := range s.Citations {
			out = append(out, Intent{Kind: IntentScrollToCitation, Citation: n})
		}
		return out
	case SpanText, SpanBold:
		return nil
	default:
		return nil
	}
}
