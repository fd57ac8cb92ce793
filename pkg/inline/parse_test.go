package inline_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/inline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) domain.Span { return domain.Span{Kind: domain.SpanText, Text: s} }
func bold(s string) domain.Span { return domain.Span{Kind: domain.SpanBold, Text: s} }
func cite(n ...int) domain.Span { return domain.Span{Kind: domain.SpanCitation, Citations: n} }

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []domain.Span
	}{
		{
			name: "Empty Line",
			line: "",
			want: nil,
		},
		{
			name: "Citation Scenario",
			line: "Risk factor. [2][5]",
			want: []domain.Span{text("Risk factor. "), cite(2, 5)},
		},
		{
			name: "Citation Only Line",
			line: "[1]",
			want: []domain.Span{cite(1)},
		},
		{
			name: "Citation Duplicates Kept",
			line: "[4][1][4]",
			want: []domain.Span{cite(4, 1, 4)},
		},
		{
			name: "Separated Citations Are Distinct Spans",
			line: "[1] and [2]",
			want: []domain.Span{cite(1), text(" and "), cite(2)},
		},
		{
			name: "Bold",
			line: "Give **dexamethasone** now",
			want: []domain.Span{text("Give "), bold("dexamethasone"), text(" now")},
		},
		{
			name: "Bold Minimal Match",
			line: "**a** and **b**",
			want: []domain.Span{bold("a"), text(" and "), bold("b")},
		},
		{
			name: "Unterminated Bold Degrades",
			line: "**severe stridor",
			want: []domain.Span{text("**severe stridor")},
		},
		{
			name: "Empty Bold Is Literal",
			line: "a****",
			want: []domain.Span{text("a****")},
		},
		{
			name: "Node Link",
			line: "See [severity score](#/node/severity).",
			want: []domain.Span{
				text("See "),
				{Kind: domain.SpanNodeLink, Text: "severity score", Target: "severity"},
				text("."),
			},
		},
		{
			name: "Tree Link",
			line: "[PE workup](#/tree/pe)",
			want: []domain.Span{{Kind: domain.SpanTreeLink, Text: "PE workup", Target: "pe"}},
		},
		{
			name: "Drug Link With Hint",
			line: "[Dexamethasone](#/drug/dexamethasone/croup)",
			want: []domain.Span{{Kind: domain.SpanDrugLink, Text: "Dexamethasone", Target: "dexamethasone", Hint: "croup"}},
		},
		{
			name: "Drug Hint Splits On First Slash",
			line: "[Heparin](#/drug/heparin/pe/high risk)",
			want: []domain.Span{{Kind: domain.SpanDrugLink, Text: "Heparin", Target: "heparin", Hint: "pe/high risk"}},
		},
		{
			name: "Drug Link Without Hint",
			line: "[Epi](#/drug/epinephrine)",
			want: []domain.Span{{Kind: domain.SpanDrugLink, Text: "Epi", Target: "epinephrine"}},
		},
		{
			name: "Info Link",
			line: "[Westley score](#/info/westley)",
			want: []domain.Span{{Kind: domain.SpanInfoLink, Text: "Westley score", Target: "westley"}},
		},
		{
			name: "Unknown Link Type Is Literal",
			line: "[x](#/calc/wells)",
			want: []domain.Span{text("[x](#/calc/wells)")},
		},
		{
			name: "Empty Label Is Literal",
			line: "[](#/node/a)",
			want: []domain.Span{text("[](#/node/a)")},
		},
		{
			name: "Unterminated Link Is Literal",
			line: "[x](#/node/a",
			want: []domain.Span{text("[x](#/node/a")},
		},
		{
			name: "External Link Is Literal",
			line: "[site](https://example.org)",
			want: []domain.Span{text("[site](https://example.org)")},
		},
		{
			name: "Bold Found Inside Unmatched Remainder",
			line: "[x] **y**",
			want: []domain.Span{text("[x] "), bold("y")},
		},
		{
			name: "Mixed",
			line: "**Stop** [heparin](#/drug/heparin) if bleeding [3]",
			want: []domain.Span{
				bold("Stop"),
				text(" "),
				{Kind: domain.SpanDrugLink, Text: "heparin", Target: "heparin"},
				text(" if bleeding "),
				cite(3),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inline.Parse(tt.line))
		})
	}
}

func TestParse_LiteralRoundTrip(t *testing.T) {
	lines := []string{
		"a",
		"Plain prose without any markup.",
		"Doses in mg/kg (max 10 mg), see below",
		"Unicode: β-agonist ≥ 2 µg",
		"*single star* and [bracket without close",
	}
	for _, l := range lines {
		got := inline.Parse(l)
		require.Len(t, got, 1, l)
		assert.Equal(t, text(l), got[0])
	}
}

var markup = regexp.MustCompile(`\*\*(.+?)\*\*|\[([^\]]+)\]\(#/(?:node|tree|drug|info)/[^)]+\)|(?:\[\d+\])+`)

// stripMarkup reproduces the expected prose of a line independently of the scanner.
func stripMarkup(line string) string {
	return markup.ReplaceAllStringFunc(line, func(m string) string {
		sub := markup.FindStringSubmatch(m)
		switch {
		case sub[1] != "":
			return sub[1]
		case sub[2] != "":
			return sub[2]
		default:
			return ""
		}
	})
}

func TestParse_Lossless(t *testing.T) {
	lines := []string{
		"Risk factor. [2][5]",
		"Give **dexamethasone** 0.6 mg/kg [Dexamethasone](#/drug/dexamethasone/croup) [1]",
		"Escalate to [massive PE](#/node/massive) or open [PE tree](#/tree/pe).",
		"**a** b **c**",
		"See [Westley](#/info/westley) [3][4]",
	}
	for _, l := range lines {
		assert.Equal(t, stripMarkup(l), inline.PlainText(inline.Parse(l)), l)
	}
}

func TestFormat_Inverse(t *testing.T) {
	lines := []string{
		"Risk factor. [2][5]",
		"**Stop** [heparin](#/drug/heparin/pe) if bleeding [3]",
		"[Westley](#/info/westley) and [next](#/node/b)",
	}
	for _, l := range lines {
		assert.Equal(t, l, inline.Format(inline.Parse(l)))
	}
}

func TestParseBody(t *testing.T) {
	body := "Line one [1]\n\n**Two**"
	got := inline.ParseBody(body)
	require.Len(t, got, 3)
	assert.Equal(t, []domain.Span{text("Line one "), cite(1)}, got[0])
	assert.Nil(t, got[1])
	assert.Equal(t, []domain.Span{bold("Two")}, got[2])

	assert.Nil(t, inline.ParseBody(""))
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{
		"",
		"Risk factor. [2][5]",
		"Give **dexamethasone** [Dexamethasone](#/drug/dexamethasone/croup) [1]",
		"[a](#/drug/x/)",
		"[007] and [99999999999999999999]",
		"***a** [[1] [x](#/node/)",
		"Unicode: β-agonist ≥ 2 µg",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, line string) {
		spans := inline.Parse(line)

		if !strings.ContainsAny(line, "*[") {
			assert.Equal(t, line, inline.PlainText(spans))
			if line != "" {
				assert.Equal(t, []domain.Span{text(line)}, spans)
			}
		}

		// Formatting normalizes once; after that it is a fixed point.
		once := inline.Format(spans)
		again := inline.Parse(once)
		assert.Equal(t, once, inline.Format(again))
		assert.Equal(t, inline.PlainText(spans), inline.PlainText(again))
	})
}
