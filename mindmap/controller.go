package mindmap

import (
	"context"
	"sync"

	"questnote/domain/core/entities"

	"go.uber.org/zap"
)

// ConnectionCreator is the slice of the graph session the controller
// needs to apply connect intents.
type ConnectionCreator interface {
	CreateConnection(ctx context.Context, sourceID, targetID, label string) (*entities.Connection, error)
}

// Controller adapts platform events to the pure engine. It owns the
// ephemeral state, applies connect intents to the session, and surfaces
// invariant errors as a user-facing notice instead of failing the
// interaction.
type Controller struct {
	mu     sync.Mutex
	state  State
	layout LayoutConfig

	sess   ConnectionCreator
	logger *zap.Logger

	notice string
}

// NewController creates a controller over the given session slice.
func NewController(sess ConnectionCreator, bounds Bounds, layout LayoutConfig, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		state:  NewState(bounds, Point{X: layout.NodeWidth, Y: layout.NodeHeight}),
		layout: layout,
		sess:   sess,
		logger: logger,
	}
}

// SyncNodes lays out any node ids that do not yet have a position,
// preserving positions the user has already dragged to. Ids no longer
// present are forgotten.
func (c *Controller) SyncNodes(nodeIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Positions = GridLayout(nodeIDs, c.state.Positions, c.state.Bounds, c.layout)
}

// Handle applies one event. A connect intent produced by the transition
// is applied to the session immediately; its error, if any, becomes the
// current notice and the interaction continues.
func (c *Controller) Handle(ctx context.Context, event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, intent := Transition(c.state, event)
	c.state = next

	if intent == nil {
		return
	}

	c.notice = ""
	if _, err := c.sess.CreateConnection(ctx, intent.SourceID, intent.TargetID, ""); err != nil {
		c.notice = err.Error()
		c.logger.Debug("connection rejected",
			zap.String("sourceID", intent.SourceID),
			zap.String("targetID", intent.TargetID),
			zap.Error(err),
		)
	}
}

// State returns a snapshot of the current engine state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.state
	snap.Positions = clonePositions(c.state.Positions)
	return snap
}

// Notice returns the last user-facing message produced by a rejected
// connect intent, or empty when the last intent succeeded.
func (c *Controller) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}
