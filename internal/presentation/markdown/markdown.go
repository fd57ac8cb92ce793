// Package markdown projects rendered nodes, drugs, info pages and calculators to Markdown.
//
// The output feeds the terminal renderer (glamour) and the HTML exporter (goldmark).
// Resolved references keep their #/type/id link form; unresolved ones degrade to their label.
package markdown

import (
	"fmt"
	"strings"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/inline"
)

// Node renders a node projection as Markdown.
func Node(r *domain.RenderedNode) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", r.Title)
	if p := r.Progress; p.Module > 0 {
		if p.Label != "" {
			fmt.Fprintf(&sb, "_Module %d of %d: %s_\n\n", p.Module, p.TotalModules, p.Label)
		} else {
			fmt.Fprintf(&sb, "_Module %d of %d_\n\n", p.Module, p.TotalModules)
		}
	}

	for _, line := range r.Lines {
		if line.Blank {
			continue
		}
		sb.WriteString(Line(line))
		sb.WriteString("\n\n")
	}

	if len(r.Options) > 0 {
		for i, opt := range r.Options {
			fmt.Fprintf(&sb, "%d. **%s**", i+1, opt.Label)
			if opt.Urgency != "" && opt.Urgency != domain.UrgencyRoutine {
				fmt.Fprintf(&sb, " `%s`", opt.Urgency)
			}
			if opt.Description != "" {
				fmt.Fprintf(&sb, ": %s", opt.Description)
			}
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}

	if len(r.Inputs) > 0 {
		for _, f := range r.Inputs {
			fmt.Fprintf(&sb, "- **%s** (`%s`, %s)", f.Label, f.Name, f.Type)
			if f.Unit != "" {
				fmt.Fprintf(&sb, " in %s", f.Unit)
			}
			if len(f.Options) > 0 {
				values := make([]string, len(f.Options))
				for i, o := range f.Options {
					values[i] = "`" + o.Value + "`"
				}
				fmt.Fprintf(&sb, ": %s", strings.Join(values, ", "))
			}
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}

	if r.Recommendation != "" {
		sb.WriteString("> **Recommendation**")
		if r.Confidence != "" {
			fmt.Fprintf(&sb, " (%s)", r.Confidence)
		}
		fmt.Fprintf(&sb, ": %s\n\n", r.Recommendation)
	}

	if r.Treatment != nil {
		sb.WriteString(Treatment(r.Treatment))
	}

	for _, img := range r.Images {
		fmt.Fprintf(&sb, "![%s](%s)\n", img.Alt, img.Src)
		if img.Caption != "" {
			fmt.Fprintf(&sb, "_%s_\n", img.Caption)
		}
		sb.WriteByte('\n')
	}

	if len(r.CalculatorLinks) > 0 {
		sb.WriteString("**Calculators:** ")
		labels := make([]string, len(r.CalculatorLinks))
		for i, c := range r.CalculatorLinks {
			if c.Resolved {
				labels[i] = fmt.Sprintf("[%s](#/calculator/%s)", c.Label, c.ID)
			} else {
				labels[i] = c.Label
			}
		}
		sb.WriteString(strings.Join(labels, ", "))
		sb.WriteString("\n\n")
	}

	sb.WriteString(References(r.Citations))
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// Line renders one body line.
func Line(line domain.Line) string {
	var sb strings.Builder
	for _, sp := range line.Spans {
		if sp.IsLink() && !sp.Resolved {
			sb.WriteString(sp.Text)
			continue
		}
		sb.WriteString(inline.Format([]domain.Span{sp.Span}))
	}
	return sb.String()
}

// Treatment renders a regimen table.
func Treatment(t *domain.TreatmentRegimen) string {
	var sb strings.Builder
	sb.WriteString("| Line | Drug | Dose | Route | Frequency | Duration |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")

	row := func(name string, d *domain.DrugRegimen) {
		if d == nil {
			return
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n", name, d.Drug, d.Dose, d.Route, d.Frequency, d.Duration)
	}
	row("First line", &t.FirstLine)
	row("Alternative", t.Alternative)
	row("Penicillin allergy", t.PcnAllergy)
	sb.WriteByte('\n')

	if t.Monitoring != "" {
		fmt.Fprintf(&sb, "**Monitoring:** %s\n\n", t.Monitoring)
	}
	return sb.String()
}

// References renders a citation list, or nothing when empty.
func References(cs []domain.Citation) string {
	if len(cs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## References\n\n")
	for _, c := range cs {
		fmt.Fprintf(&sb, "%d. %s\n", c.Num, c.Text)
	}
	sb.WriteByte('\n')
	return sb.String()
}

// Drug renders a monograph. A non-empty hint narrows dosing to matching indications.
func Drug(d *domain.DrugEntry, hint string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", d.Name)
	if d.GenericName != "" || d.DrugClass != "" {
		fmt.Fprintf(&sb, "_%s_", d.GenericName)
		if d.DrugClass != "" {
			fmt.Fprintf(&sb, " · %s", d.DrugClass)
		}
		sb.WriteString("\n\n")
	}
	if d.Route != "" {
		fmt.Fprintf(&sb, "**Route:** %s\n\n", d.Route)
	}

	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "## %s\n\n", title)
		for _, it := range items {
			fmt.Fprintf(&sb, "- %s\n", it)
		}
		sb.WriteByte('\n')
	}

	list("Indications", d.Indications)

	if doses := d.DoseFor(hint); len(doses) > 0 {
		sb.WriteString("## Dosing\n\n")
		for _, dose := range doses {
			fmt.Fprintf(&sb, "- **%s**: %s\n", dose.Indication, dose.Regimen)
		}
		sb.WriteByte('\n')
	}

	list("Contraindications", d.Contraindications)
	list("Cautions", d.Cautions)

	if d.Monitoring != "" {
		fmt.Fprintf(&sb, "## Monitoring\n\n%s\n\n", d.Monitoring)
	}
	if d.Notes != "" {
		fmt.Fprintf(&sb, "## Notes\n\n%s\n\n", d.Notes)
	}
	list("References", d.Citations)

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// InfoPage renders a standalone reference page.
func InfoPage(p *domain.InfoPage) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", p.Title)
	if p.Subtitle != "" {
		fmt.Fprintf(&sb, "_%s_\n\n", p.Subtitle)
	}
	for _, sec := range p.Sections {
		if sec.Heading != "" {
			fmt.Fprintf(&sb, "## %s\n\n", sec.Heading)
		}
		for _, spans := range inline.ParseBody(sec.Body) {
			if len(spans) == 0 {
				continue
			}
			sb.WriteString(inline.Format(spans))
			sb.WriteString("\n\n")
		}
		if len(sec.DrugTable) > 0 {
			sb.WriteString("| Drug | Regimen |\n|---|---|\n")
			for _, row := range sec.DrugTable {
				fmt.Fprintf(&sb, "| %s | %s |\n", row.Drug, row.Regimen)
			}
			sb.WriteByte('\n')
		}
	}
	sb.WriteString(References(p.Citations))
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// Calculator renders the criteria and result bands of a risk calculator.
func Calculator(c *domain.Calculator) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", c.Title)
	if c.Subtitle != "" {
		fmt.Fprintf(&sb, "_%s_\n\n", c.Subtitle)
	}
	if c.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", c.Description)
	}

	sb.WriteString("## Criteria\n\n")
	for _, f := range c.Fields {
		fmt.Fprintf(&sb, "- **%s** (`%s`)", f.Label, f.Name)
		switch f.Type {
		case domain.ScoreToggle:
			fmt.Fprintf(&sb, ": %s", points(f.Points))
		case domain.ScoreNumber:
			if f.ValueIsPoints {
				sb.WriteString(": value in points")
			} else {
				fmt.Fprintf(&sb, ": %s per unit", points(f.Points))
			}
			if f.Unit != "" {
				fmt.Fprintf(&sb, " (%s)", f.Unit)
			}
		case domain.ScoreSelect:
			opts := make([]string, len(f.Options))
			for i, o := range f.Options {
				opts[i] = fmt.Sprintf("%s = %g", o.Label, o.Points)
			}
			fmt.Fprintf(&sb, ": %s", strings.Join(opts, "; "))
		}
		if f.Description != "" {
			fmt.Fprintf(&sb, ". _%s_", f.Description)
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')

	if len(c.Bands) > 0 {
		sb.WriteString("## Interpretation\n\n| Score | Class | Risk | Detail |\n|---|---|---|---|\n")
		for _, b := range c.Bands {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", bandRange(b), b.Label, b.Risk, b.Detail)
		}
		sb.WriteByte('\n')
	}
	if c.ThresholdNote != "" {
		fmt.Fprintf(&sb, "> %s\n\n", c.ThresholdNote)
	}
	if len(c.Citations) > 0 {
		sb.WriteString("## References\n\n")
		for i, cite := range c.Citations {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, cite)
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// Score renders a calculator result with its per-criterion breakdown.
func Score(r *domain.CalculatorResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s: %g\n\n", r.Title, r.Score)
	if b := r.Band; b != nil {
		fmt.Fprintf(&sb, "**%s**", b.Label)
		if b.Risk != "" {
			fmt.Fprintf(&sb, " · %s", b.Risk)
		}
		sb.WriteString("\n\n")
		if b.Detail != "" {
			fmt.Fprintf(&sb, "%s\n\n", b.Detail)
		}
	} else {
		sb.WriteString("_No interpretation band covers this score._\n\n")
	}

	sb.WriteString("| Criterion | Answer | Points |\n|---|---|---|\n")
	for _, it := range r.Items {
		fmt.Fprintf(&sb, "| %s | %s | %g |\n", it.Label, it.Answer, it.Points)
	}
	sb.WriteByte('\n')

	if r.ThresholdNote != "" {
		fmt.Fprintf(&sb, "> %s\n", r.ThresholdNote)
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func points(p float64) string {
	if p == 1 {
		return "+1 point"
	}
	return fmt.Sprintf("+%g points", p)
}

func bandRange(b domain.ScoreBand) string {
	switch {
	case b.Min != nil && b.Max != nil:
		return fmt.Sprintf("%g to < %g", *b.Min, *b.Max)
	case b.Min != nil:
		return fmt.Sprintf("≥ %g", *b.Min)
	case b.Max != nil:
		return fmt.Sprintf("< %g", *b.Max)
	}
	return "any"
}

// Transcript renders the answers given so far followed by the current node.
func Transcript(tree *domain.Tree, answers []domain.AnswerRecord, current *domain.RenderedNode) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", tree.Title)
	if tree.Subtitle != "" {
		fmt.Fprintf(&sb, "_%s_\n\n", tree.Subtitle)
	}
	if len(answers) > 0 {
		sb.WriteString("## Pathway\n\n")
		for i, a := range answers {
			fmt.Fprintf(&sb, "%d. %s: **%s**\n", i+1, a.NodeTitle, a.Answer)
		}
		sb.WriteByte('\n')
	}
	if current != nil {
		// Demote the node headings one level under the tree title.
		for _, line := range strings.Split(strings.TrimRight(Node(current), "\n"), "\n") {
			if strings.HasPrefix(line, "#") {
				line = "#" + line
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
