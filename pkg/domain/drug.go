package domain

import "strings"

// DrugDose is the regimen of a drug for one indication.
type DrugDose struct {
	Indication string `json:"indication" yaml:"indication" mapstructure:"indication"`
	Regimen    string `json:"regimen" yaml:"regimen" mapstructure:"regimen"`
}

// DrugEntry is a drug monograph shared by all trees.
type DrugEntry struct {
	ID                string     `json:"id" yaml:"id" mapstructure:"id"`
	Name              string     `json:"name" yaml:"name" mapstructure:"name"`
	GenericName       string     `json:"genericName" yaml:"genericName" mapstructure:"genericName"`
	DrugClass         string     `json:"drugClass" yaml:"drugClass" mapstructure:"drugClass"`
	Route             string     `json:"route" yaml:"route" mapstructure:"route"`
	Indications       []string   `json:"indications" yaml:"indications" mapstructure:"indications"`
	Dosing            []DrugDose `json:"dosing" yaml:"dosing" mapstructure:"dosing"`
	Contraindications []string   `json:"contraindications,omitempty" yaml:"contraindications,omitempty" mapstructure:"contraindications"`
	Cautions          []string   `json:"cautions,omitempty" yaml:"cautions,omitempty" mapstructure:"cautions"`
	Monitoring        string     `json:"monitoring,omitempty" yaml:"monitoring,omitempty" mapstructure:"monitoring"`
	Notes             string     `json:"notes,omitempty" yaml:"notes,omitempty" mapstructure:"notes"`
	Citations         []string   `json:"citations" yaml:"citations" mapstructure:"citations"`
}

// DoseFor returns the dosing entries whose indication contains hint (case-insensitive).
// An empty hint, or one matching nothing, returns every entry.
func (d *DrugEntry) DoseFor(hint string) []DrugDose {
	if hint == "" {
		return d.Dosing
	}
	var out []DrugDose
	for _, dose := range d.Dosing {
		if containsFold(dose.Indication, hint) {
			out = append(out, dose)
		}
	}
	if len(out) == 0 {
		return d.Dosing
	}
	return out
}

// InfoSection is one section of an info page.
type InfoSection struct {
	Heading   string       `json:"heading,omitempty" yaml:"heading,omitempty" mapstructure:"heading"`
	Body      string       `json:"body" yaml:"body" mapstructure:"body"`
	DrugTable []DrugDosing `json:"drugTable,omitempty" yaml:"drugTable,omitempty" mapstructure:"drugTable"`
}

// DrugDosing is a row of an info page drug table.
type DrugDosing struct {
	Drug    string `json:"drug" yaml:"drug" mapstructure:"drug"`
	Regimen string `json:"regimen" yaml:"regimen" mapstructure:"regimen"`
}

// InfoPage is a standalone clinical reference page opened from inline links.
type InfoPage struct {
	ID        string        `json:"id" yaml:"id" mapstructure:"id"`
	Title     string        `json:"title" yaml:"title" mapstructure:"title"`
	Subtitle  string        `json:"subtitle,omitempty" yaml:"subtitle,omitempty" mapstructure:"subtitle"`
	Sections  []InfoSection `json:"sections" yaml:"sections" mapstructure:"sections"`
	Citations []Citation    `json:"citations,omitempty" yaml:"citations,omitempty" mapstructure:"citations"`
	Shareable bool          `json:"shareable,omitempty" yaml:"shareable,omitempty" mapstructure:"shareable"`
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
