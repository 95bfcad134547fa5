package mindmap

import (
	"context"
	"testing"

	"questnote/domain/core/entities"
	pkgerrors "questnote/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSession records connect attempts and can be told to reject them.
type fakeSession struct {
	calls  [][2]string
	reject error
}

func (f *fakeSession) CreateConnection(_ context.Context, sourceID, targetID, _ string) (*entities.Connection, error) {
	f.calls = append(f.calls, [2]string{sourceID, targetID})
	if f.reject != nil {
		return nil, f.reject
	}
	return &entities.Connection{ID: "c1", SourceID: sourceID, TargetID: targetID}, nil
}

func newTestController(sess ConnectionCreator) *Controller {
	return NewController(sess, Bounds{Width: 1000, Height: 600}, DefaultLayoutConfig(), zap.NewNop())
}

func TestController_ConnectGestureAppliesIntent(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSession{}
	ctrl := newTestController(fake)
	ctrl.SyncNodes([]string{"n1", "n2"})

	ctrl.Handle(ctx, ToggleConnectMode{})
	ctrl.Handle(ctx, PointerDown{NodeID: "n1"})
	ctrl.Handle(ctx, PointerDown{NodeID: "n2"})

	require.Len(t, fake.calls, 1)
	assert.Equal(t, [2]string{"n1", "n2"}, fake.calls[0])
	assert.Empty(t, ctrl.Notice())
	assert.Equal(t, PhaseIdle, ctrl.State().Phase)
}

func TestController_RejectedIntentBecomesNotice(t *testing.T) {
	ctx := context.Background()
	fake := &fakeSession{reject: pkgerrors.NewConflictError("connection already exists")}
	ctrl := newTestController(fake)
	ctrl.SyncNodes([]string{"n1", "n2"})

	ctrl.Handle(ctx, ToggleConnectMode{})
	ctrl.Handle(ctx, PointerDown{NodeID: "n1"})
	ctrl.Handle(ctx, PointerDown{NodeID: "n2"})

	assert.Contains(t, ctrl.Notice(), "connection already exists")
	// The interaction session continues
	assert.Equal(t, PhaseIdle, ctrl.State().Phase)
	assert.True(t, ctrl.State().ConnectMode)
}

func TestController_DragUpdatesPosition(t *testing.T) {
	ctx := context.Background()
	ctrl := newTestController(&fakeSession{})
	ctrl.SyncNodes([]string{"n1"})

	start := ctrl.State().Positions["n1"]
	ctrl.Handle(ctx, PointerDown{NodeID: "n1", At: start})
	ctrl.Handle(ctx, PointerMove{At: Point{X: start.X + 50, Y: start.Y + 60}})
	ctrl.Handle(ctx, PointerUp{})

	moved := ctrl.State().Positions["n1"]
	assert.Equal(t, start.X+50, moved.X)
	assert.Equal(t, start.Y+60, moved.Y)
}

func TestController_SyncNodesKeepsDraggedPositions(t *testing.T) {
	ctx := context.Background()
	ctrl := newTestController(&fakeSession{})
	ctrl.SyncNodes([]string{"n1"})

	start := ctrl.State().Positions["n1"]
	ctrl.Handle(ctx, PointerDown{NodeID: "n1", At: start})
	ctrl.Handle(ctx, PointerMove{At: Point{X: start.X + 100, Y: start.Y}})
	ctrl.Handle(ctx, PointerUp{})

	ctrl.SyncNodes([]string{"n1", "n2"})
	assert.Equal(t, start.X+100, ctrl.State().Positions["n1"].X)
	assert.Contains(t, ctrl.State().Positions, "n2")
}
