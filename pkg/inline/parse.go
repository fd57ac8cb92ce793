package inline

import (
	"strconv"
	"strings"

	"github.com/aretw0/consult/pkg/domain"
)

const boldMarker = "**"

var linkKinds = map[string]domain.SpanKind{
	"node": domain.SpanNodeLink,
	"tree": domain.SpanTreeLink,
	"drug": domain.SpanDrugLink,
	"info": domain.SpanInfoLink,
}

// Parse converts a single line into spans. An empty line yields nil.
func Parse(line string) []domain.Span {
	if line == "" {
		return nil
	}

	p := &parser{line: line}
	for p.pos < len(line) {
		if p.bold() || p.link() || p.citations() {
			continue
		}
		p.lit.WriteByte(line[p.pos])
		p.pos++
	}
	p.flush()
	return p.spans
}

// ParseBody splits body on newlines and parses each line.
// Blank lines are kept as nil entries so callers can reserve space for them.
func ParseBody(body string) [][]domain.Span {
	if body == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	out := make([][]domain.Span, len(lines))
	for i, l := range lines {
		out[i] = Parse(l)
	}
	return out
}

type parser struct {
	line  string
	pos   int
	lit   strings.Builder
	spans []domain.Span
}

func (p *parser) flush() {
	if p.lit.Len() == 0 {
		return
	}
	p.spans = append(p.spans, domain.Span{Kind: domain.SpanText, Text: p.lit.String()})
	p.lit.Reset()
}

func (p *parser) emit(s domain.Span, end int) {
	p.flush()
	p.spans = append(p.spans, s)
	p.pos = end
}

// bold matches **text** with the shortest non-empty text.
func (p *parser) bold() bool {
	rest := p.line[p.pos:]
	if !strings.HasPrefix(rest, boldMarker) || len(rest) < 5 {
		return false
	}
	// Search from the third byte so the text holds at least one character.
	j := strings.Index(rest[3:], boldMarker)
	if j < 0 {
		return false
	}
	text := rest[2 : 3+j]
	p.emit(domain.Span{Kind: domain.SpanBold, Text: text}, p.pos+3+j+len(boldMarker))
	return true
}

// link matches [label](#/type/id).
func (p *parser) link() bool {
	rest := p.line[p.pos:]
	if rest[0] != '[' {
		return false
	}
	closeLabel := strings.IndexByte(rest, ']')
	if closeLabel < 2 {
		return false
	}
	label := rest[1:closeLabel]

	after := rest[closeLabel+1:]
	if !strings.HasPrefix(after, "(#/") {
		return false
	}
	ref := after[3:]
	slash := strings.IndexByte(ref, '/')
	if slash < 0 {
		return false
	}
	kind, ok := linkKinds[ref[:slash]]
	if !ok {
		return false
	}
	ref = ref[slash+1:]
	closeRef := strings.IndexByte(ref, ')')
	if closeRef < 1 {
		return false
	}
	id := ref[:closeRef]

	span := domain.Span{Kind: kind, Text: label, Target: id}
	if kind == domain.SpanDrugLink {
		if before, hint, found := strings.Cut(id, "/"); found {
			span.Target, span.Hint = before, hint
		}
	}

	// '[' + label + ']' + '(#/' + type + '/' + id + ')'
	consumed := closeLabel + 1 + 3 + slash + 1 + closeRef + 1
	p.emit(span, p.pos+consumed)
	return true
}

// citations matches one or more adjacent [n] groups.
func (p *parser) citations() bool {
	var nums []int
	end := p.pos
	for {
		n, width, ok := citationAt(p.line[end:])
		if !ok {
			break
		}
		nums = append(nums, n)
		end += width
	}
	if len(nums) == 0 {
		return false
	}
	p.emit(domain.Span{Kind: domain.SpanCitation, Citations: nums}, end)
	return true
}

func citationAt(s string) (n, width int, ok bool) {
	if len(s) < 3 || s[0] != '[' {
		return 0, 0, false
	}
	i := 1
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 1 || i >= len(s) || s[i] != ']' {
		return 0, 0, false
	}
	n, err := strconv.Atoi(s[1:i])
	if err != nil {
		// Out of int range: not a citation.
		return 0, 0, false
	}
	return n, i + 1, true
}
