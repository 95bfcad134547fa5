// Package mindmap is the interaction engine for the mind-map editor.
// The core is a pure transition function over an explicit state value,
// so every drag and connect gesture is testable without a UI toolkit.
// A Controller adapter applies the resulting intents to a graph session.
package mindmap

// Point is a position in container coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is the drawable container size nodes are clamped to.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Phase is the engine's interaction phase.
type Phase string

const (
	// PhaseIdle: no drag in progress, no pending connection source.
	PhaseIdle Phase = "idle"
	// PhaseDragging: a node follows the pointer.
	PhaseDragging Phase = "dragging"
	// PhaseAwaitingTarget: connect mode has a source, waiting for the
	// pointer-down that names the target.
	PhaseAwaitingTarget Phase = "awaiting_target"
)

// State is the full ephemeral UI state. It is never persisted: positions
// live only for the in-memory session and are re-derived by the grid
// layout on the next load.
type State struct {
	Phase           Phase
	ConnectMode     bool
	DraggedNodeID   string
	DragOffset      Point
	PendingSourceID string
	Pointer         Point
	Positions       map[string]Point
	Bounds          Bounds
	NodeSize        Point
}

// NewState creates an idle state over the given container bounds with
// the given node box size used for clamping.
func NewState(bounds Bounds, nodeSize Point) State {
	return State{
		Phase:     PhaseIdle,
		Positions: map[string]Point{},
		Bounds:    bounds,
		NodeSize:  nodeSize,
	}
}

// ConnectIntent asks the session to create a connection. It is the only
// side effect the engine ever requests; the adapter owns applying it and
// surfacing any self-loop or duplicate error to the user.
type ConnectIntent struct {
	SourceID string
	TargetID string
}

// Event is a pointer or mode event translated from the platform layer.
type Event interface{ isEvent() }

// PointerDown is a press on a node (or on the background when NodeID is
// empty).
type PointerDown struct {
	NodeID string
	At     Point
}

// PointerMove reports pointer motion.
type PointerMove struct {
	At Point
}

// PointerUp is a release anywhere in the container.
type PointerUp struct{}

// PointerLeave is the pointer exiting the container.
type PointerLeave struct{}

// ToggleConnectMode flips connect mode on or off.
type ToggleConnectMode struct{}

func (PointerDown) isEvent()       {}
func (PointerMove) isEvent()       {}
func (PointerUp) isEvent()         {}
func (PointerLeave) isEvent()      {}
func (ToggleConnectMode) isEvent() {}

// Transition applies one event to the state and returns the next state
// plus, at most, one connection intent. It never mutates its input.
func Transition(state State, event Event) (State, *ConnectIntent) {
	next := state

	switch ev := event.(type) {
	case PointerDown:
		next.Pointer = ev.At

		switch state.Phase {
		case PhaseIdle:
			if ev.NodeID == "" {
				return next, nil
			}
			if state.ConnectMode {
				next.Phase = PhaseAwaitingTarget
				next.PendingSourceID = ev.NodeID
				return next, nil
			}
			origin := state.Positions[ev.NodeID]
			next.Phase = PhaseDragging
			next.DraggedNodeID = ev.NodeID
			next.DragOffset = Point{X: ev.At.X - origin.X, Y: ev.At.Y - origin.Y}
			return next, nil

		case PhaseAwaitingTarget:
			// Any press resolves the pending source: a different node
			// completes the connection, anything else cancels it.
			source := state.PendingSourceID
			next.Phase = PhaseIdle
			next.PendingSourceID = ""
			if ev.NodeID == "" || ev.NodeID == source {
				return next, nil
			}
			return next, &ConnectIntent{SourceID: source, TargetID: ev.NodeID}

		case PhaseDragging:
			// A second press mid-drag should not happen with a single
			// pointer; treat it as ending the drag.
			next.Phase = PhaseIdle
			next.DraggedNodeID = ""
			return next, nil
		}

	case PointerMove:
		next.Pointer = ev.At
		if state.Phase == PhaseDragging && state.DraggedNodeID != "" {
			pos := Point{
				X: ev.At.X - state.DragOffset.X,
				Y: ev.At.Y - state.DragOffset.Y,
			}
			next.Positions = clonePositions(state.Positions)
			next.Positions[state.DraggedNodeID] = clamp(pos, state.Bounds, state.NodeSize)
		}
		return next, nil

	case PointerUp, PointerLeave:
		if state.Phase == PhaseDragging {
			next.Phase = PhaseIdle
			next.DraggedNodeID = ""
		}
		return next, nil

	case ToggleConnectMode:
		next.ConnectMode = !state.ConnectMode
		next.Phase = PhaseIdle
		next.DraggedNodeID = ""
		next.PendingSourceID = ""
		return next, nil
	}

	return next, nil
}

// clamp keeps the node box fully inside the container.
func clamp(p Point, bounds Bounds, nodeSize Point) Point {
	maxX := bounds.Width - nodeSize.X
	maxY := bounds.Height - nodeSize.Y
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}

	if p.X < 0 {
		p.X = 0
	} else if p.X > maxX {
		p.X = maxX
	}
	if p.Y < 0 {
		p.Y = 0
	} else if p.Y > maxY {
		p.Y = maxY
	}
	return p
}

func clonePositions(src map[string]Point) map[string]Point {
	dst := make(map[string]Point, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
