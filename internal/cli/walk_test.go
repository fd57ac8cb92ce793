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

func walk(t *testing.T, app *App, opts WalkOptions, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	opts.Plain = true
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	require.NoError(t, RunWalk(context.Background(), app, opts, in, &out))
	return out.String()
}

func TestRunWalk_Croup(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	out := walk(t, app, WalkOptions{TreeID: "croup"},
		"",  // continue
		"1", // Mild
		"t",
		"b",
		"q",
	)

	assert.Contains(t, out, "# Recognizing croup")
	assert.Contains(t, out, "Press enter to continue.")
	assert.Contains(t, out, "  [1] Mild")
	assert.Contains(t, out, "# Mild croup")
	assert.Contains(t, out, "1. Severity: **Mild**")
	assert.Contains(t, out, "Finished at 'croup-severity' node.")

	ids, err := app.Engine.Sessions().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids, "throwaway sessions are removed on exit")
}

func TestRunWalk_ErrorsKeepTheLoopGoing(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	out := walk(t, app, WalkOptions{TreeID: "croup"},
		"b",
		"7",
		"zap",
		"j",
		"d nope",
		"j croup-icu",
		"q",
	)

	assert.Contains(t, out, domain.ErrEmptyHistory.Error())
	assert.Contains(t, out, domain.ErrNotQuestion.Error())
	assert.Contains(t, out, `unknown command "zap"`)
	assert.Contains(t, out, "usage: j <node>")
	assert.Contains(t, out, domain.ErrDrugNotFound.Error())
	assert.Contains(t, out, "End of pathway.")
	assert.Contains(t, out, "Finished at 'croup-icu' node.")
}

func TestRunWalk_ContentLookups(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	out := walk(t, app, WalkOptions{TreeID: "croup"},
		"d dexamethasone croup",
		"i westley-score",
		"h",
		"q",
	)

	assert.Contains(t, out, "# Dexamethasone")
	assert.Contains(t, out, "- **Croup**:")
	assert.NotContains(t, out, "- **Asthma exacerbation**:")
	assert.Contains(t, out, "Westley")
	assert.Contains(t, out, "Commands:")
}

func TestRunWalk_PersistentSessionWithForm(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	ctx := context.Background()
	opts := WalkOptions{TreeID: "pe", SessionID: "bedside"}

	out := walk(t, app, opts,
		"",  // continue to the form
		"",  // fill it in
		"85",
		"yes",
		"troponin",
		"q",
	)
	assert.Contains(t, out, "Session 'bedside' active.")
	assert.Contains(t, out, "Systolic blood pressure (mmHg): ")
	assert.Contains(t, out, "Abnormal biomarkers [troponin,bnp]: ")
	assert.Contains(t, out, "Finished at 'pe-risk' node.")

	var inspect bytes.Buffer
	require.NoError(t, InspectSession(ctx, app, "bedside", &inspect))
	assert.Contains(t, inspect.String(), `"currentNodeId": "pe-risk"`)
	assert.Contains(t, inspect.String(), "sbp=85; rv=yes; markers=troponin")

	out = walk(t, app, opts, "q")
	assert.Contains(t, out, "Resuming at 'pe-risk' node...")

	err := RunWalk(ctx, app, WalkOptions{TreeID: "croup", SessionID: "bedside", Plain: true}, strings.NewReader("q\n"), &bytes.Buffer{})
	assert.ErrorContains(t, err, `belongs to tree "pe"`)

	var list bytes.Buffer
	require.NoError(t, ListSessions(ctx, app, &list))
	assert.Contains(t, list.String(), "- bedside")

	var rm bytes.Buffer
	require.NoError(t, RemoveSessions(ctx, app, []string{"bedside"}, &rm))
	assert.Contains(t, rm.String(), "Removed session 'bedside'")

	list.Reset()
	require.NoError(t, ListSessions(ctx, app, &list))
	assert.Contains(t, list.String(), "No active sessions found.")
}

func TestRunWalk_FormErrorsListEachField(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	out := walk(t, app, WalkOptions{TreeID: "pe"},
		"",    // continue to the form
		"",    // fill it in
		"NaN", // sbp
		"",    // rv left out
		"",    // markers left out
		"q",
	)
	assert.Contains(t, out, "! RV dysfunction on echo or CT [rv]: required\n")
	assert.Contains(t, out, "! Systolic blood pressure [sbp]: expected a finite number")
	assert.Contains(t, out, "Finished at 'pe-vitals' node.")
}

func TestRunWalk_OversizedInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxInputSize = 8
	app := newTestApp(t, cfg)

	out := walk(t, app, WalkOptions{TreeID: "croup"},
		strings.Repeat("x", 20),
		"q",
	)
	assert.Contains(t, out, "! input exceeds maximum allowed size")
	assert.Contains(t, out, "Finished at 'croup-start' node.")
}

func TestRunWalk_EndOfInput(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	var out bytes.Buffer
	err := RunWalk(context.Background(), app, WalkOptions{TreeID: "croup", Plain: true}, strings.NewReader(""), &out)
	require.NoError(t, err, "end of input is a clean exit")
	assert.Contains(t, out.String(), "Stopped at 'croup-start' node.")

	err = RunWalk(context.Background(), app, WalkOptions{TreeID: "nope", Plain: true}, strings.NewReader(""), &out)
	assert.ErrorIs(t, err, domain.ErrTreeNotFound)
}
