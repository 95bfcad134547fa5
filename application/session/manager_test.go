package session

import (
	"context"
	"testing"

	"questnote/application/identity"
	"questnote/application/stores"
	"questnote/domain/config"
	"questnote/infrastructure/persistence/kv"
	"questnote/pkg/auth"
	pkgerrors "questnote/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(adapter *kv.MemoryAdapter) *Manager {
	cfg := config.DefaultDomainConfig()
	logger := zap.NewNop()
	return NewManager(
		identity.NewResolver(adapter, logger),
		stores.NewNoteStore(adapter, cfg, logger),
		stores.NewConnectionStore(adapter, cfg, logger),
		nil,
		cfg,
		logger,
	)
}

func TestManager_ForActor_NilActor(t *testing.T) {
	manager := newTestManager(kv.NewMemoryAdapter())

	_, err := manager.ForActor(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNoOwner(err))
}

func TestManager_ForActor_CachesPerOwner(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(kv.NewMemoryAdapter())

	actor := &auth.Actor{ID: "account-1", Authenticated: true}
	first, err := manager.ForActor(ctx, actor)
	require.NoError(t, err)
	second, err := manager.ForActor(ctx, actor)
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := manager.ForActor(ctx, &auth.Actor{ID: "account-2", Authenticated: true})
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestManager_ForActor_LocalIDCarriedAsAlias(t *testing.T) {
	ctx := context.Background()
	adapter := kv.NewMemoryAdapter()
	cfg := config.DefaultDomainConfig()
	noteStore := stores.NewNoteStore(adapter, cfg, zap.NewNop())

	// Notes written while anonymous, under the local id
	anonSess := newTestSessionOver(t, adapter, "local-1")
	_, err := anonSess.sess.CreateNote(ctx, "written before login", "")
	require.NoError(t, err)
	require.Len(t, noteStore.LoadForOwner(ctx, "local-1"), 1)

	// After logging in, the same actor still sees them
	manager := newTestManager(adapter)
	sess, err := manager.ForActor(ctx, &auth.Actor{
		ID:            "account-1",
		LocalID:       "local-1",
		Authenticated: true,
	})
	require.NoError(t, err)
	assert.Len(t, sess.Notes(), 1)
}

func TestManager_Evict(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(kv.NewMemoryAdapter())

	actor := &auth.Actor{ID: "account-1", Authenticated: true}
	first, err := manager.ForActor(ctx, actor)
	require.NoError(t, err)

	manager.Evict("account-1")

	second, err := manager.ForActor(ctx, actor)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
