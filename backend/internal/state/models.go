package state

import (
	"fmt"
	"time"

	"graphite/backend/internal/graph"
	"graphite/backend/internal/layout"
)

// Client message types of a live layout session
const (
	InputPointerDown  = "pointer_down"
	InputPointerMove  = "pointer_move"
	InputPointerUp    = "pointer_up"
	InputPointerLeave = "pointer_leave"
	InputClick        = "click"
	InputWheel        = "wheel"
	InputZoomIn       = "zoom_in"
	InputZoomOut      = "zoom_out"
	InputReset        = "reset"
	InputHighlight    = "highlight"
	InputSearch       = "search"
	InputResize       = "resize"
)

// Server message types of a live layout session
const (
	OutputReady = "ready"
	OutputFrame = "frame"
	OutputClick = "node_click"
	OutputError = "error"
)

// ClientMessage is one input event sent by a remote canvas. Pointer
// coordinates are canvas pixels.
type ClientMessage struct {
	Type   string  `json:"type"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`
	NodeID string  `json:"nodeId,omitempty"`
	Query  string  `json:"query,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Validate checks that the message carries what its type needs
func (m *ClientMessage) Validate() error {
	switch m.Type {
	case InputPointerDown, InputPointerMove, InputPointerUp, InputPointerLeave,
		InputClick, InputWheel, InputZoomIn, InputZoomOut, InputReset,
		InputHighlight, InputSearch:
		return nil
	case InputResize:
		if m.Width <= 0 || m.Height <= 0 {
			return ErrInvalidMessage{Type: m.Type, Reason: "width and height must be positive"}
		}
		return nil
	case "":
		return ErrInvalidMessage{Reason: "type cannot be empty"}
	default:
		return ErrInvalidMessage{Type: m.Type, Reason: "unknown type"}
	}
}

// Point returns the pointer position of the message
func (m *ClientMessage) Point() layout.Position {
	return layout.Position{X: m.X, Y: m.Y}
}

// Apply performs the input on a simulator
func (m *ClientMessage) Apply(sim *layout.Simulator) {
	switch m.Type {
	case InputPointerDown:
		sim.PointerDown(m.Point())
	case InputPointerMove:
		sim.PointerMove(m.Point())
	case InputPointerUp:
		sim.PointerUp()
	case InputPointerLeave:
		sim.PointerLeave()
	case InputClick:
		sim.Click(m.Point())
	case InputWheel:
		sim.Wheel(m.DeltaY)
	case InputZoomIn:
		sim.ZoomIn()
	case InputZoomOut:
		sim.ZoomOut()
	case InputReset:
		sim.ResetView()
	case InputHighlight:
		sim.SetHighlight(m.NodeID)
	case InputSearch:
		sim.SetSearchQuery(m.Query)
	case InputResize:
		sim.Resize(m.Width, m.Height)
	}
}

// ServerMessage is one message pushed to a remote canvas
type ServerMessage struct {
	Type      string             `json:"type"`
	SessionID string             `json:"sessionId,omitempty"`
	Graph     *graph.GraphData   `json:"graph,omitempty"`
	Frame     *layout.FrameState `json:"frame,omitempty"`
	Node      *graph.GraphNode   `json:"node,omitempty"`
	Error     string             `json:"error,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewReady announces a session and the graph it lays out
func NewReady(sessionID string, data graph.GraphData) ServerMessage {
	return ServerMessage{Type: OutputReady, SessionID: sessionID, Graph: &data, Timestamp: time.Now()}
}

// NewFrame carries one frame
func NewFrame(frame layout.FrameState) ServerMessage {
	return ServerMessage{Type: OutputFrame, Frame: &frame, Timestamp: time.Now()}
}

// NewClick reports a clicked node
func NewClick(node graph.GraphNode) ServerMessage {
	return ServerMessage{Type: OutputClick, Node: &node, Timestamp: time.Now()}
}

// NewError reports a rejected input
func NewError(err error) ServerMessage {
	return ServerMessage{Type: OutputError, Error: err.Error(), Timestamp: time.Now()}
}

// Errors

type ErrInvalidMessage struct {
	Type   string
	Reason string
}

func (e ErrInvalidMessage) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("invalid message: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s message: %s", e.Type, e.Reason)
}
