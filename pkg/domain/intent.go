package domain

// IntentKind is the closed set of requests the core emits to the host UI.
type IntentKind string

const (
	IntentNavigateToNode   IntentKind = "navigateToNode"
	IntentNavigateToTree   IntentKind = "navigateToTree"
	IntentShowDrug         IntentKind = "showDrug"
	IntentShowInfo         IntentKind = "showInfo"
	IntentShowCalculator   IntentKind = "showCalculator"
	IntentScrollToCitation IntentKind = "scrollToCitation"
)

// Intent is a typed navigation or display request. The core never performs it;
// the host decides how to route, open a modal or scroll.
type Intent struct {
	Kind     IntentKind `json:"kind"`
	Target   string     `json:"target,omitempty"`
	Hint     string     `json:"hint,omitempty"`
	Citation int        `json:"citation,omitempty"`
}
