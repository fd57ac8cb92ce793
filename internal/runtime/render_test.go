package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/consult/internal/runtime"
	"github.com/aretw0/consult/pkg/adapters/memory"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderLibrary() domain.Library {
	return domain.Library{
		Trees: []domain.Tree{
			{
				ID:          "pe",
				Title:       "Pulmonary embolism",
				EntryNodeID: "start",
				Citations:   []domain.Citation{{Num: 1, Text: "Konstantinides 2019"}, {Num: 2, Text: "Stevens 2021"}},
				Nodes: []domain.DecisionNode{
					{
						ID:    "start",
						Type:  domain.NodeTypeInfo,
						Title: "Overview",
						Body: "Give **heparin** per [Heparin](#/drug/heparin/pe) [1][2]\n" +
							"\n" +
							"See [Wells](#/info/wells), [croup](#/tree/croup) or [next](#/node/end).\n" +
							"Broken [x](#/drug/unobtainium) and [y](#/node/ghost) [9]\n" +
							"Again [Heparin](#/drug/heparin/pe)",
						Citation: []int{2, 1, 7},
						Next:     "end",
					},
					{ID: "end", Type: domain.NodeTypeResult, Title: "Done"},
					{
						ID:      "risk",
						Type:    domain.NodeTypeQuestion,
						Title:   "Severity",
						Body:    "Score with [Wells](#/info/wells)",
						Options: []domain.Option{{Label: "Low", Next: "end"}},
						Images:  []domain.NodeImage{{Src: "rv.png", Alt: "RV strain"}},
						CalculatorLinks: []domain.CalculatorLink{
							{ID: "pesi", Label: "PESI"},
							{ID: "ghost", Label: "Retired score"},
							{ID: "pesi", Label: "PESI again"},
						},
					},
				},
			},
			{ID: "croup", EntryNodeID: "a", Nodes: []domain.DecisionNode{{ID: "a", Type: domain.NodeTypeResult}}},
		},
		Drugs:       []domain.DrugEntry{{ID: "heparin", Name: "Heparin"}},
		InfoPages:   []domain.InfoPage{{ID: "wells", Title: "Wells"}},
		Calculators: []domain.Calculator{{ID: "pesi", Title: "PESI Score"}},
	}
}

func TestRenderNode(t *testing.T) {
	store := memory.MustContent(renderLibrary())
	tree, err := store.GetTree("pe")
	require.NoError(t, err)
	node, ok := tree.Node("start")
	require.True(t, ok)

	out := runtime.RenderNode(store, tree, node)

	require.Len(t, out.Lines, 5)
	assert.False(t, out.Lines[0].Blank)
	assert.True(t, out.Lines[1].Blank, "blank lines keep their slot")
	assert.Empty(t, out.Lines[1].Spans)

	drug := out.Lines[0].Spans[3]
	assert.Equal(t, domain.SpanDrugLink, drug.Kind)
	assert.Equal(t, "heparin", drug.Target)
	assert.Equal(t, "pe", drug.Hint)
	assert.True(t, drug.Resolved)

	broken := out.Lines[3].Spans
	assert.False(t, broken[1].Resolved, "missing drug")
	assert.False(t, broken[3].Resolved, "missing node")
	assert.False(t, broken[5].Resolved, "citation outside table")
	assert.Equal(t, "x", broken[1].Text, "unresolved spans keep their text")

	// 3 unresolved spans plus node citation 7.
	assert.Equal(t, 4, out.Unresolved)

	assert.Equal(t, []domain.Citation{{Num: 2, Text: "Stevens 2021"}, {Num: 1, Text: "Konstantinides 2019"}}, out.Citations)

	assert.Equal(t, []domain.Intent{
		{Kind: domain.IntentShowDrug, Target: "heparin", Hint: "pe"},
		{Kind: domain.IntentScrollToCitation, Citation: 1},
		{Kind: domain.IntentScrollToCitation, Citation: 2},
		{Kind: domain.IntentShowInfo, Target: "wells"},
		{Kind: domain.IntentNavigateToTree, Target: "croup"},
		{Kind: domain.IntentNavigateToNode, Target: "end"},
	}, out.Intents, "deduplicated, first appearance order, resolved only")

	assert.False(t, out.Terminal)
}

func TestRenderNode_CalculatorLinks(t *testing.T) {
	store := memory.MustContent(renderLibrary())
	tree, _ := store.GetTree("pe")
	node, ok := tree.Node("risk")
	require.True(t, ok)

	out := runtime.RenderNode(store, tree, node)

	require.Len(t, out.CalculatorLinks, 3)
	assert.True(t, out.CalculatorLinks[0].Resolved)
	assert.False(t, out.CalculatorLinks[1].Resolved)
	assert.Equal(t, "Retired score", out.CalculatorLinks[1].Label)
	assert.Equal(t, 1, out.Unresolved)

	assert.Equal(t, []domain.Intent{
		{Kind: domain.IntentShowInfo, Target: "wells"},
		{Kind: domain.IntentShowCalculator, Target: "pesi"},
	}, out.Intents)
}

func TestRenderNode_SharesNothingWithStore(t *testing.T) {
	store := memory.MustContent(renderLibrary())
	tree, _ := store.GetTree("pe")
	node, _ := tree.Node("risk")

	out := runtime.RenderNode(store, tree, node)
	out.Options[0].Next = "ghost"
	out.Images[0].Src = "other.png"

	again := runtime.RenderNode(store, tree, node)
	assert.Equal(t, "end", again.Options[0].Next)
	assert.Equal(t, "rv.png", again.Images[0].Src)

	stored, err := store.GetNode("pe", "risk")
	require.NoError(t, err)
	assert.Equal(t, "end", stored.Options[0].Next)
}

func TestRenderNode_Idempotent(t *testing.T) {
	store := memory.MustContent(renderLibrary())
	tree, _ := store.GetTree("pe")
	for _, n := range tree.Nodes {
		node := n
		a := runtime.RenderNode(store, tree, &node)
		b := runtime.RenderNode(store, tree, &node)
		assert.Equal(t, a, b, node.ID)
	}
}

func TestEngine_RenderFiresUnresolvedHook(t *testing.T) {
	store := memory.MustContent(renderLibrary())

	var refs []domain.Span
	eng := runtime.NewEngine(store, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnUnresolvedReference: func(_ context.Context, e *domain.ReferenceEvent) {
			refs = append(refs, e.Span)
		},
	}))

	ctx := context.Background()
	s, err := eng.Start(ctx, "pe")
	require.NoError(t, err)

	out, err := eng.Render(ctx, s)
	require.NoError(t, err)
	assert.False(t, out.CanGoBack)
	require.Len(t, refs, 3)
	assert.Equal(t, "unobtainium", refs[0].Target)

	s, err = eng.Advance(ctx, s)
	require.NoError(t, err)
	out, err = eng.Render(ctx, s)
	require.NoError(t, err)
	assert.True(t, out.Terminal)
	assert.True(t, out.CanGoBack)
	assert.Nil(t, out.Lines)
}
