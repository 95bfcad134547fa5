package session

import (
	"context"
	"testing"
	"time"

	"questnote/application/stores"
	"questnote/domain/config"
	"questnote/domain/core/entities"
	"questnote/infrastructure/persistence/kv"
	pkgerrors "questnote/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingRemote captures best-effort delete calls.
type recordingRemote struct {
	deleted chan string
}

func newRecordingRemote() *recordingRemote {
	return &recordingRemote{deleted: make(chan string, 8)}
}

func (r *recordingRemote) Delete(_ context.Context, noteID string) error {
	r.deleted <- noteID
	return nil
}

type testEnv struct {
	adapter *kv.MemoryAdapter
	remote  *recordingRemote
	sess    *Session
}

func newTestSession(t *testing.T, ownerID string) *testEnv {
	t.Helper()

	adapter := kv.NewMemoryAdapter()
	return newTestSessionOver(t, adapter, ownerID)
}

func newTestSessionOver(t *testing.T, adapter *kv.MemoryAdapter, ownerID string) *testEnv {
	t.Helper()

	cfg := config.DefaultDomainConfig()
	logger := zap.NewNop()
	remote := newRecordingRemote()

	sess := NewSession(
		ownerID,
		nil,
		stores.NewNoteStore(adapter, cfg, logger),
		stores.NewConnectionStore(adapter, cfg, logger),
		remote,
		cfg,
		logger,
	)
	require.NoError(t, sess.Load(context.Background()))

	return &testEnv{adapter: adapter, remote: remote, sess: sess}
}

func TestSession_CreateAndGetNote(t *testing.T) {
	ctx := context.Background()
	env := newTestSession(t, "u1")

	created, err := env.sess.CreateNote(ctx, "hello", "world")
	require.NoError(t, err)

	got, err := env.sess.GetNote(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.OwnerID)
	assert.Equal(t, "hello", got.Title)
	assert.NotNil(t, got.Tasks)
	assert.Empty(t, got.Tasks)
}

func TestSession_GetNote_Unknown(t *testing.T) {
	env := newTestSession(t, "u1")

	_, err := env.sess.GetNote("missing")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSession_MutationsRequireReady(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultDomainConfig()
	adapter := kv.NewMemoryAdapter()
	sess := NewSession("u1", nil,
		stores.NewNoteStore(adapter, cfg, zap.NewNop()),
		stores.NewConnectionStore(adapter, cfg, zap.NewNop()),
		nil, cfg, zap.NewNop(),
	)

	// Not loaded yet: still in loading state
	_, err := sess.CreateNote(ctx, "too early", "")
	assert.Error(t, err)
	assert.Equal(t, StateLoading, sess.State())

	require.NoError(t, sess.Load(ctx))
	assert.Equal(t, StateReady, sess.State())

	_, err = sess.CreateNote(ctx, "now fine", "")
	assert.NoError(t, err)
}

func TestSession_UpdateNote(t *testing.T) {
	ctx := context.Background()
	env := newTestSession(t, "u1")

	note, err := env.sess.CreateNote(ctx, "before", "body")
	require.NoError(t, err)

	title := "after"
	xp := 9
	updated, err := env.sess.UpdateNote(ctx, note.ID, NotePatch{Title: &title, XPValue: &xp})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, "body", updated.Content)
	assert.Equal(t, 9, updated.XPValue)
	assert.False(t, updated.UpdatedAt.Before(note.UpdatedAt))

	_, err = env.sess.UpdateNote(ctx, "missing", NotePatch{Title: &title})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSession_UpdateNote_MintsTaskIDs(t *testing.T) {
	ctx := context.Background()
	env := newTestSession(t, "u1")

	note, err := env.sess.CreateNote(ctx, "checklist", "")
	require.NoError(t, err)

	// A patch arriving from the API can carry brand-new tasks without ids.
	tasks := []entities.Task{{Text: "new task"}}
	updated, err := env.sess.UpdateNote(ctx, note.ID, NotePatch{Tasks: &tasks})
	require.NoError(t, err)
	require.Len(t, updated.Tasks, 1)
	require.NotEmpty(t, updated.Tasks[0].ID)

	// The minted id is immediately toggleable, no reload needed.
	toggled, err := env.sess.ToggleTask(ctx, note.ID, updated.Tasks[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.Tasks[0].Completed)
}

func TestSession_DeleteNote_RemovesConnections(t *testing.T) {
	ctx := context.Background()
	env := newTestSession(t, "u1")

	n1, err := env.sess.CreateNote(ctx, "A", "")
	require.NoError(t, err)
	n2, err := env.sess.CreateNote(ctx, "B", "")
	require.NoError(t, err)
	_, err = env.sess.CreateConnection(ctx, n1.ID, n2.ID, "")
	require.NoError(t, err)

	graph := env.sess.MindMapGraph()
	assert.Len(t, graph.Nodes, 2)
	assert.Len(t, graph.Edges, 1)

	assert.True(t, env.sess.DeleteNote(ctx, n1.ID))

	graph = env.sess.MindMapGraph()
	assert.Len(t, graph.Nodes, 1)
	assert.Empty(t, graph.Edges)
	assert.Empty(t, env.sess.Connections())

	// Unknown id reports false
	assert.False(t, env.sess.DeleteNote(ctx, n1.ID))
}

func TestSession_DeleteNote_CallsRemote(t *testing.T) {
	ctx := context.Background()
	env := newTestSession(t, "u1")

	note, err := env.sess.CreateNote(ctx, "synced", "")
	require.NoError(t, err)
	require.True(t, env.sess.DeleteNote(ctx, note.ID))

	select {
	case id := <-env.remote.deleted:
		assert.Equal(t, note.ID, id)
	case <-time.After(time.Second):
		t.Fatal("remote delete was never attempted")
	}
}

func TestSession_CreateConnection_SelfLoop(t *testing.T) {
	ctx := context.Background()
	env := newTestSession(t, "u1")

	note, err := env.sess.CreateNote(ctx, "A", "")
	require.NoError(t, err)

	_, err = env.sess.CreateConnection(ctx, note.ID, note.ID, "")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "cannot connect a note to itself")
	assert.Empty(t, env.sess.Connections())
}

func TestSession_CreateConnection_Duplicate(t *testing.T) {
	ctx := context.Background()
	env := newTestSession(t, "u1")

	n1, err := env.sess.CreateNote(ctx, "A", "")
	require.NoError(t, err)
	n2, err := env.sess.CreateNote(ctx, "B", "")
	require.NoError(t, err)

	_, err = env.sess.CreateConnection(ctx, n1.ID, n2.ID, "")
	require.NoError(t, err)

	_, err = env.sess.CreateConnection(ctx, n1.ID, n2.ID, "again")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Contains(t, err.Error(), "connection already exists")
	assert.Len(t, env.sess.Connections(), 1)
}

func TestSession_CreateConnection_BothDirections(t *testing.T) {
	ctx := context.Background()
	env := newTestSession(t, "u1")

	n1, err := env.sess.CreateNote(ctx, "A", "")
	require.NoError(t, err)
	n2, err := env.sess.CreateNote(ctx, "B", "")
	require.NoError(t, err)

	_, err = env.sess.CreateConnection(ctx, n1.ID, n2.ID, "")
	require.NoError(t, err)
	_, err = env.sess.CreateConnection(ctx, n2.ID, n1.ID, "")
	require.NoError(t, err)

	graph := env.sess.MindMapGraph()
	assert.Len(t, graph.Edges, 2)
}

func TestSession_DeleteConnection_Idempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestSession(t, "u1")

	n1, err := env.sess.CreateNote(ctx, "A", "")
	require.NoError(t, err)
	n2, err := env.sess.CreateNote(ctx, "B", "")
	require.NoError(t, err)
	conn, err := env.sess.CreateConnection(ctx, n1.ID, n2.ID, "")
	require.NoError(t, err)

	env.sess.DeleteConnection(ctx, conn.ID)
	assert.Empty(t, env.sess.Connections())

	// Deleting again is a no-op
	env.sess.DeleteConnection(ctx, conn.ID)
	env.sess.DeleteConnection(ctx, "never existed")
}

func TestSession_MindMapGraph_DropsDanglingEdges(t *testing.T) {
	ctx := context.Background()
	adapter := kv.NewMemoryAdapter()
	cfg := config.DefaultDomainConfig()
	connStore := stores.NewConnectionStore(adapter, cfg, zap.NewNop())

	// A stored connection referencing a note that no longer exists
	dangling, err := entities.NewConnection("u1", "ghost", "also-ghost", "", cfg)
	require.NoError(t, err)
	require.True(t, connStore.SaveForOwner(ctx, []*entities.Connection{dangling}, "u1"))

	env := newTestSessionOver(t, adapter, "u1")

	graph := env.sess.MindMapGraph()
	assert.Empty(t, graph.Edges)

	// Dropped from the view only, not from storage
	assert.Len(t, env.sess.Connections(), 1)
}

func TestSession_ChecklistFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestSession(t, "u1")

	note, err := env.sess.CreateNote(ctx, "quest", "")
	require.NoError(t, err)

	note, err = env.sess.AddTask(ctx, note.ID, "step one")
	require.NoError(t, err)
	note, err = env.sess.AddTask(ctx, note.ID, "step two")
	require.NoError(t, err)
	require.Len(t, note.Tasks, 2)

	note, err = env.sess.ToggleTask(ctx, note.ID, note.Tasks[0].ID)
	require.NoError(t, err)
	assert.True(t, note.Tasks[0].Completed)
	assert.False(t, note.AllChecked)

	note, awarded, err := env.sess.CompleteAllTasks(ctx, note.ID)
	require.NoError(t, err)
	assert.True(t, awarded)
	assert.True(t, note.AllChecked)

	// Already complete: no award the second time
	_, awarded, err = env.sess.CompleteAllTasks(ctx, note.ID)
	require.NoError(t, err)
	assert.False(t, awarded)
}

func TestSession_StateSurvivesReload(t *testing.T) {
	ctx := context.Background()
	env := newTestSession(t, "u1")

	n1, err := env.sess.CreateNote(ctx, "A", "")
	require.NoError(t, err)
	n2, err := env.sess.CreateNote(ctx, "B", "")
	require.NoError(t, err)
	_, err = env.sess.CreateConnection(ctx, n1.ID, n2.ID, "linked")
	require.NoError(t, err)

	// A fresh session over the same adapter sees the persisted state
	reloaded := newTestSessionOver(t, env.adapter, "u1")
	assert.Len(t, reloaded.sess.Notes(), 2)
	assert.Len(t, reloaded.sess.Connections(), 1)

	// Another owner sees nothing
	other := newTestSessionOver(t, env.adapter, "u2")
	assert.Empty(t, other.sess.Notes())
}

func TestSession_PersistenceFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	env := newTestSession(t, "u1")
	env.adapter.FailWrites = true

	note, err := env.sess.CreateNote(ctx, "volatile", "")
	require.NoError(t, err)

	// In memory but not durable
	got, err := env.sess.GetNote(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "volatile", got.Title)

	env.adapter.FailWrites = false
	fresh := newTestSessionOver(t, env.adapter, "u1")
	assert.Empty(t, fresh.sess.Notes())
}
