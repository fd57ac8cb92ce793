package inline

import (
	"strconv"
	"strings"

	"github.com/aretw0/consult/pkg/domain"
)

// PlainText concatenates the prose of spans with every marker removed.
// Link labels are prose; citation numbers are markup and contribute nothing.
func PlainText(spans []domain.Span) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Kind == domain.SpanCitation {
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// Format writes spans back into the authored inline syntax.
func Format(spans []domain.Span) string {
	var b strings.Builder
	for _, s := range spans {
		switch s.Kind {
		case domain.SpanText:
			b.WriteString(s.Text)
		case domain.SpanBold:
			b.WriteString(boldMarker + s.Text + boldMarker)
		case domain.SpanNodeLink:
			writeLink(&b, s.Text, "node", s.Target)
		case domain.SpanTreeLink:
			writeLink(&b, s.Text, "tree", s.Target)
		case domain.SpanInfoLink:
			writeLink(&b, s.Text, "info", s.Target)
		case domain.SpanDrugLink:
			target := s.Target
			if s.Hint != "" {
				target += "/" + s.Hint
			}
			writeLink(&b, s.Text, "drug", target)
		case domain.SpanCitation:
			for _, n := range s.Citations {
				b.WriteString("[" + strconv.Itoa(n) + "]")
			}
		}
	}
	return b.String()
}

func writeLink(b *strings.Builder, label, kind, target string) {
	b.WriteString("[")
	b.WriteString(label)
	b.WriteString("](#/")
	b.WriteString(kind)
	b.WriteString("/")
	b.WriteString(target)
	b.WriteString(")")
}
