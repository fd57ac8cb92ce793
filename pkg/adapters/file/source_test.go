package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/aretw0/consult/content"
	"github.com/aretw0/consult/pkg/adapters/file"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const miniTree = `
id: mini
title: Mini
entryNodeId: a
citations:
  - num: 1
    text: Ref
nodes:
  - id: a
    type: info
    module: 1
    title: A
    body: "See [b](#/node/b) [1]"
    citation: [1]
    next: b
  - id: b
    type: result
    module: 1
    title: B
`

const miniCalc = `
calculators:
  - id: s
    title: S
    fields:
      - name: a
        label: A
        type: select
        options:
          - label: Low
            points: 1
    bands:
      - min: 0
        max: 2.5
        label: Low
`

func TestSource_Bundled(t *testing.T) {
	store, err := file.NewSource(content.FS).Load()
	require.NoError(t, err)

	ports.RunContentStoreContract(t, store, "croup")
	ports.RunContentStoreContract(t, store, "pe")

	metas, err := store.ListTrees()
	require.NoError(t, err)
	require.Len(t, metas, 2)

	d, err := store.GetDrug("dexamethasone")
	require.NoError(t, err)
	require.Len(t, d.DoseFor("croup"), 1)

	p, err := store.GetInfoPage("croup-return-precautions")
	require.NoError(t, err)
	assert.True(t, p.Shareable)

	form, err := store.GetNode("pe", "pe-vitals")
	require.NoError(t, err)
	assert.Equal(t, domain.NodeTypeInput, form.Type)
	require.Len(t, form.Inputs, 3)
	assert.Equal(t, domain.InputCheckbox, form.Inputs[2].Type)

	massive, err := store.GetNode("pe", "pe-massive")
	require.NoError(t, err)
	require.NotNil(t, massive.Treatment)
	assert.Equal(t, "Alteplase", massive.Treatment.FirstLine.Drug)

	pesi, err := store.GetCalculator("pesi")
	require.NoError(t, err)
	require.Len(t, pesi.Fields, 11)
	assert.Equal(t, domain.ScoreNumber, pesi.Fields[0].Type)
	assert.True(t, pesi.Fields[0].ValueIsPoints)
	require.Len(t, pesi.Bands, 5)
	assert.Nil(t, pesi.Bands[0].Min)
	assert.Nil(t, pesi.Bands[4].Max)

	calcs, err := store.ListCalculators()
	require.NoError(t, err)
	assert.Len(t, calcs, 2)
}

func TestSource_Decode(t *testing.T) {
	fsys := fstest.MapFS{
		"trees/mini.yaml": {Data: []byte(miniTree)},
		"drugs.yml":       {Data: []byte("drugs:\n  - id: x\n    name: X\n")},
		"scores.yaml":     {Data: []byte(miniCalc)},
		"README.md":       {Data: []byte("ignored")},
	}

	lib, err := file.NewSource(fsys).Library()
	require.NoError(t, err)
	require.Len(t, lib.Trees, 1)
	require.Len(t, lib.Drugs, 1)
	require.Len(t, lib.Calculators, 1)
	calc := lib.Calculators[0]
	assert.Equal(t, domain.ScoreSelect, calc.Fields[0].Type)
	assert.Equal(t, []domain.ScoreOption{{Label: "Low", Points: 1}}, calc.Fields[0].Options)
	require.NotNil(t, calc.Bands[0].Max)
	assert.Equal(t, 2.5, *calc.Bands[0].Max)

	tree := lib.Trees[0]
	assert.Equal(t, "a", tree.EntryNodeID)
	assert.Equal(t, []int{1}, tree.Nodes[0].Citation)
	assert.Equal(t, domain.NodeTypeResult, tree.Nodes[1].Type)
}

func TestSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{
			name: "Empty",
			fsys: fstest.MapFS{"README.md": {Data: []byte("x")}},
			want: "no content documents",
		},
		{
			name: "Invalid YAML",
			fsys: fstest.MapFS{"bad.yaml": {Data: []byte("nodes: [")}},
			want: "invalid yaml",
		},
		{
			name: "Unknown Key",
			fsys: fstest.MapFS{"t.yaml": {Data: []byte("id: t\nentryNodeId: a\nnodse: []\nnodes:\n  - id: a\n    type: result\n")}},
			want: "nodse",
		},
		{
			name: "Unrecognized Document",
			fsys: fstest.MapFS{"x.yaml": {Data: []byte("foo: bar\n")}},
			want: "unrecognized document",
		},
		{
			name: "Unknown Node Type",
			fsys: fstest.MapFS{"t.yaml": {Data: []byte("id: t\nentryNodeId: a\nnodes:\n  - id: a\n    type: calculator\n")}},
			want: "unknown node type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := file.NewSource(tt.fsys).Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSource_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mini.yaml")
	require.NoError(t, os.WriteFile(path, []byte(miniTree), 0o644))

	src := file.NewDirSource(dir)
	_, err := src.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := src.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(miniTree+"\n"), 0o644))

	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change signal")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSource_WatchRequiresDir(t *testing.T) {
	_, err := file.NewSource(content.FS).Watch(context.Background())
	assert.Error(t, err)
}
