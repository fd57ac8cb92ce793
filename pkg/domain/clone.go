package domain

import "slices"

// Clone returns a copy of the node sharing no slices or pointers with n.
func (n *DecisionNode) Clone() DecisionNode {
	out := *n
	out.Citation = slices.Clone(n.Citation)
	out.Options = slices.Clone(n.Options)
	out.Inputs = cloneInputs(n.Inputs)
	out.Images = slices.Clone(n.Images)
	out.CalculatorLinks = slices.Clone(n.CalculatorLinks)
	if n.Treatment != nil {
		t := *n.Treatment
		if t.Alternative != nil {
			alt := *t.Alternative
			t.Alternative = &alt
		}
		if t.PcnAllergy != nil {
			pcn := *t.PcnAllergy
			t.PcnAllergy = &pcn
		}
		out.Treatment = &t
	}
	return out
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() Tree {
	out := *t
	out.ModuleLabels = slices.Clone(t.ModuleLabels)
	out.Citations = slices.Clone(t.Citations)
	out.Nodes = slices.Clone(t.Nodes)
	for i := range out.Nodes {
		out.Nodes[i] = t.Nodes[i].Clone()
	}
	return out
}

// Clone returns a deep copy of the drug entry.
func (d *DrugEntry) Clone() DrugEntry {
	out := *d
	out.Indications = slices.Clone(d.Indications)
	out.Dosing = slices.Clone(d.Dosing)
	out.Contraindications = slices.Clone(d.Contraindications)
	out.Cautions = slices.Clone(d.Cautions)
	out.Citations = slices.Clone(d.Citations)
	return out
}

// Clone returns a deep copy of the info page.
func (p *InfoPage) Clone() InfoPage {
	out := *p
	out.Citations = slices.Clone(p.Citations)
	out.Sections = slices.Clone(p.Sections)
	for i := range out.Sections {
		out.Sections[i].DrugTable = slices.Clone(p.Sections[i].DrugTable)
	}
	return out
}

// Clone returns a deep copy of the calculator.
func (c *Calculator) Clone() Calculator {
	out := *c
	out.Citations = slices.Clone(c.Citations)
	out.Fields = slices.Clone(c.Fields)
	for i := range out.Fields {
		out.Fields[i].Options = slices.Clone(c.Fields[i].Options)
	}
	out.Bands = slices.Clone(c.Bands)
	for i := range out.Bands {
		out.Bands[i].Min = cloneBound(c.Bands[i].Min)
		out.Bands[i].Max = cloneBound(c.Bands[i].Max)
	}
	return out
}

func cloneInputs(in []InputField) []InputField {
	out := slices.Clone(in)
	for i := range out {
		out[i].Options = slices.Clone(in[i].Options)
	}
	return out
}

func cloneBound(v *float64) *float64 {
	if v == nil {
		return nil
	}
	b := *v
	return &b
}
