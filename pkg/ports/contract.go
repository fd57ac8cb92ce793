package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/consult/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		s := domain.NewSession("croup", "severity")
		s.ID = sessionID
		s.History = []string{"start"}
		s.Answers["start"] = "Barky cough"

		err := store.Save(ctx, sessionID, s)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.ID)
		assert.Equal(t, "croup", loaded.TreeID)
		assert.Equal(t, "severity", loaded.CurrentNodeID)
		assert.Equal(t, []string{"start"}, loaded.History)
		assert.Equal(t, "Barky cough", loaded.Answers["start"])
		// Snapshots carry millisecond precision.
		assert.Equal(t, s.StartedAt.UnixMilli(), loaded.StartedAt.UnixMilli())
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		s := domain.NewSession("croup", "start")
		s.ID = sessionID
		require.NoError(t, store.Save(ctx, sessionID, s))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "start", loaded.CurrentNodeID)
		assert.Empty(t, loaded.History)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSession("croup", "start"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting twice should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession("croup", "start"))
		_ = store.Save(ctx, id2, domain.NewSession("pe", "start"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunContentStoreContract verifies that a ContentStore exposes the given tree consistently
// through every lookup method. The tree must already be loaded into the store.
func RunContentStoreContract(t *testing.T, store ContentStore, treeID string) {
	t.Helper()

	tree, err := store.GetTree(treeID)
	require.NoError(t, err, "GetTree should find the fixture tree")
	require.NotEmpty(t, tree.Nodes)

	t.Run("GetEntryNode", func(t *testing.T) {
		entry, err := store.GetEntryNode(treeID)
		require.NoError(t, err)
		assert.Equal(t, tree.EntryNodeID, entry.ID)
	})

	t.Run("GetNode", func(t *testing.T) {
		for _, n := range tree.Nodes {
			got, err := store.GetNode(treeID, n.ID)
			require.NoError(t, err)
			assert.Equal(t, n.ID, got.ID)
			assert.Equal(t, n.Type, got.Type)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := store.GetTree("no-such-tree")
		assert.ErrorIs(t, err, domain.ErrTreeNotFound)

		_, err = store.GetNode(treeID, "no-such-node")
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)

		_, err = store.GetNode("no-such-tree", tree.EntryNodeID)
		assert.ErrorIs(t, err, domain.ErrTreeNotFound)

		_, err = store.GetDrug("no-such-drug")
		assert.ErrorIs(t, err, domain.ErrDrugNotFound)

		_, err = store.GetInfoPage("no-such-page")
		assert.ErrorIs(t, err, domain.ErrInfoPageNotFound)

		_, err = store.GetCalculator("no-such-calculator")
		assert.ErrorIs(t, err, domain.ErrCalculatorNotFound)
	})

	t.Run("ListCalculators", func(t *testing.T) {
		metas, err := store.ListCalculators()
		require.NoError(t, err)
		for i, m := range metas {
			if i > 0 {
				assert.LessOrEqual(t, metas[i-1].Title, m.Title, "ListCalculators must be ordered by title")
			}
			calc, err := store.GetCalculator(m.ID)
			require.NoError(t, err)
			assert.Equal(t, m.Title, calc.Title)
		}
	})

	t.Run("ListTrees", func(t *testing.T) {
		metas, err := store.ListTrees()
		require.NoError(t, err)

		var found bool
		for i, m := range metas {
			if i > 0 {
				assert.Less(t, metas[i-1].ID, m.ID, "ListTrees must be ordered by id")
			}
			if m.ID == treeID {
				found = true
				assert.Equal(t, len(tree.Nodes), m.NodeCount)
			}
		}
		assert.True(t, found, "ListTrees should include %s", treeID)
	})
}
