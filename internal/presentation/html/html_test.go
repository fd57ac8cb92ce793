package html_test

import (
	"testing"

	"github.com/aretw0/consult/internal/presentation/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragment(t *testing.T) {
	got, err := html.Fragment("# Croup\n\nGive **dexamethasone** [1]\n\n| Drug | Dose |\n|---|---|\n| Dex | 0.6 mg/kg |\n")
	require.NoError(t, err)

	assert.Contains(t, got, "<h1>Croup</h1>")
	assert.Contains(t, got, "<strong>dexamethasone</strong> [1]")
	assert.Contains(t, got, "<td>Dex</td>")
}

func TestFragment_EscapesRawHTML(t *testing.T) {
	got, err := html.Fragment("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, got, "<script>")
}

func TestDocument(t *testing.T) {
	got, err := html.Document("PE <massive>", "# Title")
	require.NoError(t, err)

	assert.Contains(t, got, "<title>PE &lt;massive&gt;</title>")
	assert.Contains(t, got, "<h1>Title</h1>")
	assert.Contains(t, got, "<!DOCTYPE html>")
}
