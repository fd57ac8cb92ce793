package domain

// ScoreFieldKind is the control of a calculator criterion.
type ScoreFieldKind string

const (
	// ScoreToggle adds Points when the criterion is present.
	ScoreToggle ScoreFieldKind = "toggle"
	// ScoreNumber adds the entered value when ValueIsPoints, else value times Points.
	ScoreNumber ScoreFieldKind = "number"
	// ScoreSelect adds the points of the chosen option.
	ScoreSelect ScoreFieldKind = "select"
)

// ScoreOption is one graded answer of a select criterion.
type ScoreOption struct {
	Label  string  `json:"label" yaml:"label" mapstructure:"label"`
	Points float64 `json:"points" yaml:"points" mapstructure:"points"`
}

// ScoreField is one criterion of a bedside risk score.
type ScoreField struct {
	Name          string         `json:"name" yaml:"name" mapstructure:"name"`
	Label         string         `json:"label" yaml:"label" mapstructure:"label"`
	Type          ScoreFieldKind `json:"type" yaml:"type" mapstructure:"type"`
	Points        float64        `json:"points,omitempty" yaml:"points,omitempty" mapstructure:"points"`
	ValueIsPoints bool           `json:"valueIsPoints,omitempty" yaml:"valueIsPoints,omitempty" mapstructure:"valueIsPoints"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Unit          string         `json:"unit,omitempty" yaml:"unit,omitempty" mapstructure:"unit"`
	Options       []ScoreOption  `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
}

// ScoreBand maps the score interval [Min, Max) to a risk class.
// A nil bound is open on that side.
type ScoreBand struct {
	Min    *float64 `json:"min,omitempty" yaml:"min,omitempty" mapstructure:"min"`
	Max    *float64 `json:"max,omitempty" yaml:"max,omitempty" mapstructure:"max"`
	Label  string   `json:"label" yaml:"label" mapstructure:"label"`
	Risk   string   `json:"risk" yaml:"risk" mapstructure:"risk"`
	Detail string   `json:"detail,omitempty" yaml:"detail,omitempty" mapstructure:"detail"`
}

// Contains reports whether score falls in the band.
func (b *ScoreBand) Contains(score float64) bool {
	if b.Min != nil && score < *b.Min {
		return false
	}
	if b.Max != nil && score >= *b.Max {
		return false
	}
	return true
}

// Calculator is a point-based risk score opened from a node's calculator links.
type Calculator struct {
	ID            string       `json:"id" yaml:"id" mapstructure:"id"`
	Title         string       `json:"title" yaml:"title" mapstructure:"title"`
	Subtitle      string       `json:"subtitle,omitempty" yaml:"subtitle,omitempty" mapstructure:"subtitle"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Fields        []ScoreField `json:"fields" yaml:"fields" mapstructure:"fields"`
	Bands         []ScoreBand  `json:"bands" yaml:"bands" mapstructure:"bands"`
	ThresholdNote string       `json:"thresholdNote,omitempty" yaml:"thresholdNote,omitempty" mapstructure:"thresholdNote"`
	Citations     []string     `json:"citations,omitempty" yaml:"citations,omitempty" mapstructure:"citations"`
}

// Band returns the first band containing score.
func (c *Calculator) Band(score float64) (*ScoreBand, bool) {
	for i := range c.Bands {
		if c.Bands[i].Contains(score) {
			return &c.Bands[i], true
		}
	}
	return nil, false
}

// Meta returns the listing view of the calculator.
func (c *Calculator) Meta() CalculatorMeta {
	return CalculatorMeta{ID: c.ID, Title: c.Title, Subtitle: c.Subtitle}
}

// CalculatorMeta is the listing view of a calculator.
type CalculatorMeta struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// FieldScore is the contribution of one criterion to a score.
type FieldScore struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Answer string  `json:"answer"`
	Points float64 `json:"points"`
}

// CalculatorResult is a computed score and the band it falls in.
// Band is nil when the calculator's bands leave the score uncovered.
type CalculatorResult struct {
	CalculatorID  string       `json:"calculatorId"`
	Title         string       `json:"title"`
	Score         float64      `json:"score"`
	Band          *ScoreBand   `json:"band,omitempty"`
	Items         []FieldScore `json:"items"`
	ThresholdNote string       `json:"thresholdNote,omitempty"`
}
