package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPalette_PlainOption(t *testing.T) {
	p := PlainPalette()

	got := p.Option(2, domain.Option{Label: "Severe", Urgency: domain.UrgencyCritical, Description: "stridor at rest"})
	assert.Equal(t, "  [2] Severe (stridor at rest)", got)
	assert.Equal(t, "hint", p.Dim("hint"))
	assert.NotContains(t, p.Error("boom"), "\x1b[")
}

func TestPlainRenderer(t *testing.T) {
	out, err := PlainRenderer()("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(60)
	require.NoError(t, err)

	out, err := render("# Croup\n\nGive **dexamethasone**.")
	require.NoError(t, err)
	assert.Contains(t, out, "Croup")
	assert.Contains(t, out, "dexamethasone")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.GreaterOrEqual(t, strings.Count(buf.String(), "\n"), 5)
}
