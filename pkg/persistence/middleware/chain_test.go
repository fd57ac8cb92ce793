package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/consult/pkg/adapters/memory"
	"github.com/aretw0/consult/pkg/domain"
	"github.com/aretw0/consult/pkg/persistence/middleware"
	"github.com/aretw0/consult/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_Contract(t *testing.T) {
	store := middleware.Chain(memory.NewStore(),
		middleware.NewPIIMiddleware([]string{"^ssn$"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)
	ports.RunSessionStoreContract(t, store)
}

func TestChain_RedactsBeforeEncrypting(t *testing.T) {
	ctx := context.Background()
	inner := NewMockStore()
	store := middleware.Chain(inner,
		middleware.NewPIIMiddleware([]string{"^ssn$"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)

	s := domain.NewSession("t", "n")
	s.Answers["form"] = "ssn=123; age=40"
	require.NoError(t, store.Save(ctx, "x", s))

	loaded, err := store.Load(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "ssn=***; age=40", loaded.Answers["form"])

	raw, err := inner.Load(ctx, "x")
	require.NoError(t, err)
	assert.NotContains(t, raw.Answers, "form")
}
