package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/consult"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("CONSULT_SESSION_BACKEND", "file")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  []string
	}{
		{"version", "", []string{"version"}, []string{"consult version " + consult.Version}},
		{"trees", "", []string{"trees"}, []string{"croup", "pe"}},
		{"graph", "", []string{"graph", "pe"}, []string{"graph TD"}},
		{"drug", "", []string{"drug", "dexamethasone", "--hint", "croup"}, []string{"# Dexamethasone", "**Croup**"}},
		{"calc", "", []string{"calc"}, []string{"pesi", "spesi"}},
		{"calc spesi", "y\n\n\n\n\n\n", []string{"calc", "spesi", "--plain"}, []string{"# sPESI Score: 1", "Score ≥ 1"}},
		{"export", "", []string{"export", "croup", "croup-severity", "--html"}, []string{"<title>Severity</title>"}},
		{"validate", "", []string{"validate"}, []string{"Content is valid!"}},
		{"walk", "\n1\nq\n", []string{"walk", "croup", "--plain"}, []string{"# Mild croup", "Finished at 'croup-mild-tx' node."}},
		{"session ls", "", []string{"session", "ls"}, []string{"No active sessions found."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.stdin, tt.args...)
			require.NoError(t, err, out)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestCommands_Errors(t *testing.T) {
	_, err := run(t, "", "graph", "nope")
	assert.ErrorContains(t, err, "tree not found")

	_, err = run(t, "", "walk")
	assert.Error(t, err)

	_, err = run(t, "", "session", "inspect", "ghost")
	assert.ErrorContains(t, err, "ghost")

	_, err = run(t, "", "trees", "--config", "missing.yaml")
	assert.Error(t, err)
}
