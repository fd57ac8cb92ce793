package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCalculators(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	var out bytes.Buffer
	require.NoError(t, ListCalculators(app, &out))
	assert.Contains(t, out.String(), "ID")
	assert.Contains(t, out.String(), "pesi")
	assert.Contains(t, out.String(), "Simplified Pulmonary Embolism Severity Index")
}

func TestRunCalc(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	ctx := context.Background()

	// sPESI: age > 80, cancer and low saturation.
	var out bytes.Buffer
	in := strings.NewReader("yes\ny\n\n\n\ny\n")
	require.NoError(t, RunCalc(ctx, app, "spesi", true, in, &out))
	assert.Contains(t, out.String(), "# sPESI Score")
	assert.Contains(t, out.String(), "Age > 80 years [y/N]: ")
	assert.Contains(t, out.String(), "# sPESI Score: 3")
	assert.Contains(t, out.String(), "Intermediate / High Risk")

	out.Reset()
	err := RunCalc(ctx, app, "pesi", true, strings.NewReader("old\n"+strings.Repeat("\n", 10)), &out)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "Age [age]")

	assert.ErrorIs(t, RunCalc(ctx, app, "nope", true, strings.NewReader(""), &out), domain.ErrCalculatorNotFound)
}

func TestRunWalk_CalculatorFromNode(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	out := walk(t, app, WalkOptions{TreeID: "pe"},
		"",   // continue to the form
		"",   // fill it in
		"85", // sbp
		"yes",
		"troponin",
		"c spesi",
		"", "", "", "", "y", "",
		"c",
		"c ghost",
		"q",
	)
	assert.Contains(t, out, "c pesi  c spesi")
	assert.Contains(t, out, "# sPESI Score: 1")
	assert.Contains(t, out, "usage: c <calculator>")
	assert.Contains(t, out, domain.ErrCalculatorNotFound.Error())
	assert.Contains(t, out, "Finished at 'pe-risk' node.")
}
