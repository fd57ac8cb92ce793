package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/consult/pkg/adapters/sqlite"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.SessionStore = (*sqlite.Store)(nil)

func openStore(t *testing.T) (*sqlite.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "sessions.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestSQLiteStore_Contract(t *testing.T) {
	store, _ := openStore(t)
	ports.RunSessionStoreContract(t, store)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()

	s := domain.NewSession("croup", "croup-severity")
	s.History = []string{"croup-start"}
	s.Answers["croup-severity"] = "Mild"
	require.NoError(t, store.Save(ctx, "keep", s))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "keep", got.ID)
	assert.Equal(t, []string{"croup-start"}, got.History)
	assert.Equal(t, "Mild", got.Answers["croup-severity"])
}

func TestSQLiteStore_ListByTree(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b", domain.NewSession("croup", "croup-start")))
	require.NoError(t, store.Save(ctx, "a", domain.NewSession("croup", "croup-start")))
	require.NoError(t, store.Save(ctx, "c", domain.NewSession("pe", "pe-start")))

	ids, err := store.ListByTree(ctx, "croup")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, all)
}
