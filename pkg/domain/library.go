package domain

// Library is the full static content set: trees plus the shared drug, info page
// and calculator tables.
type Library struct {
	Trees       []Tree       `json:"trees" yaml:"trees" mapstructure:"trees"`
	Drugs       []DrugEntry  `json:"drugs,omitempty" yaml:"drugs,omitempty" mapstructure:"drugs"`
	InfoPages   []InfoPage   `json:"infoPages,omitempty" yaml:"infoPages,omitempty" mapstructure:"infoPages"`
	Calculators []Calculator `json:"calculators,omitempty" yaml:"calculators,omitempty" mapstructure:"calculators"`
}
