package layout

import (
	"math"
	"math/rand/v2"
	"time"

	"graphite/backend/internal/graph"
)

// ClickHandler receives the node under a click
type ClickHandler func(node graph.GraphNode)

// Simulator holds the live layout of one graph together with its camera
// and pointer state. It is not safe for concurrent use; drive it from one
// goroutine, for example through a Loop.
type Simulator struct {
	cfg    Config
	params Params
	rng    *rand.Rand

	nodes []SimNode
	links []SimLink
	index map[string]int

	view      Viewport
	highlight string
	query     string
	hovered   int
	onClick   ClickHandler

	dragging int
	panning  bool
	last     Position

	seq uint64
}

// NewSimulator creates an empty simulator for a canvas
func NewSimulator(cfg Config, params Params) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Simulator{
		cfg:      cfg,
		params:   params,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		index:    make(map[string]int),
		view:     NewViewport(cfg.Width, cfg.Height),
		hovered:  -1,
		dragging: -1,
	}
}

// Mount replaces the graph. Nodes start at random positions on the canvas
// with zero velocity; links to unknown ids are kept but never drawn.
func (s *Simulator) Mount(data graph.GraphData) {
	s.nodes = make([]SimNode, 0, len(data.Nodes))
	s.index = make(map[string]int, len(data.Nodes))
	for _, n := range data.Nodes {
		if _, dup := s.index[n.ID]; dup {
			continue
		}
		s.index[n.ID] = len(s.nodes)
		s.nodes = append(s.nodes, SimNode{
			GraphNode: n,
			Pos:       Position{X: s.rng.Float64() * s.cfg.Width, Y: s.rng.Float64() * s.cfg.Height},
		})
	}

	s.links = make([]SimLink, 0, len(data.Links))
	for _, l := range data.Links {
		s.links = append(s.links, SimLink{GraphLink: l, Source: s.lookup(l.Source), Target: s.lookup(l.Target)})
	}

	s.hovered = -1
	s.dragging = -1
	s.panning = false
}

func (s *Simulator) lookup(id string) int {
	if i, ok := s.index[id]; ok {
		return i
	}
	return -1
}

// SetHighlight marks a node and recentres the camera on it. An empty or
// unknown id clears the highlight without moving the camera.
func (s *Simulator) SetHighlight(nodeID string) {
	s.highlight = nodeID
	if i := s.lookup(nodeID); i >= 0 {
		s.view.CenterOn(s.nodes[i].Pos)
	}
}

// Highlight returns the highlighted node id
func (s *Simulator) Highlight() string {
	return s.highlight
}

// OnNodeClick registers the click handler
func (s *Simulator) OnNodeClick(handler ClickHandler) {
	s.onClick = handler
}

// SetSearchQuery emphasises nodes whose name contains text
func (s *Simulator) SetSearchQuery(text string) {
	s.query = text
}

// Resize changes the canvas. Gravity pulls towards the new centre from
// the next step on.
func (s *Simulator) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	s.cfg.Width, s.cfg.Height = width, height
	s.view.Resize(width, height)
}

// Tick advances the physics by one step
func (s *Simulator) Tick() {
	Step(s.nodes, s.links, s.cfg.Center(), s.params)
	s.seq++
}

// Frame advances the physics and draws the result
func (s *Simulator) Frame(surface Surface) error {
	s.Tick()
	return s.Draw(surface)
}

// Relax runs n steps without drawing, stopping early once the layout has
// settled below energy
func (s *Simulator) Relax(n int, energy float64) int {
	for i := 0; i < n; i++ {
		s.Tick()
		if energy > 0 && KineticEnergy(s.nodes) < energy {
			return i + 1
		}
	}
	return n
}

// Draw renders the current positions
func (s *Simulator) Draw(surface Surface) error {
	return draw(surface, s.view, s.nodes, s.links, s.emphasisOf)
}

func (s *Simulator) emphasisOf(i int) emphasis {
	n := &s.nodes[i]
	return emphasis{
		highlighted: s.highlight != "" && n.ID == s.highlight,
		hovered:     i == s.hovered,
		match:       matchesQuery(n.Name, s.query),
	}
}

// ============================================================================
// Pointer input. Coordinates are canvas pixels.
// ============================================================================

// HitTest returns the index of the topmost node under a canvas point, or -1.
// People are hit within a circle, companies within a square.
func (s *Simulator) HitTest(screen Position) int {
	w := s.view.ToWorld(screen)
	for i := len(s.nodes) - 1; i >= 0; i-- {
		n := &s.nodes[i]
		d := w.Sub(n.Pos)
		if n.Type == graph.NodeCompany {
			if math.Abs(d.X) < CompanyHitRadius && math.Abs(d.Y) < CompanyHitRadius {
				return i
			}
			continue
		}
		if math.Hypot(d.X, d.Y) < PersonHitRadius {
			return i
		}
	}
	return -1
}

// NodeAt returns the node under a canvas point
func (s *Simulator) NodeAt(screen Position) (graph.GraphNode, bool) {
	if i := s.HitTest(screen); i >= 0 {
		return s.nodes[i].GraphNode, true
	}
	return graph.GraphNode{}, false
}

// PointerDown starts dragging the node under the pointer, or panning when
// there is none
func (s *Simulator) PointerDown(screen Position) {
	if i := s.HitTest(screen); i >= 0 {
		s.dragging = i
		s.nodes[i].Pinned = true
		s.nodes[i].Pin = s.nodes[i].Pos
	} else {
		s.panning = true
	}
	s.last = screen
}

// PointerMove drags, pans or updates the hovered node
func (s *Simulator) PointerMove(screen Position) {
	d := screen.Sub(s.last)
	switch {
	case s.dragging >= 0:
		n := &s.nodes[s.dragging]
		n.Pin = n.Pin.Add(d.Scale(1 / s.view.Scale))
	case s.panning:
		s.view.Pan(d.X, d.Y)
	default:
		s.hovered = s.HitTest(screen)
	}
	s.last = screen
}

// PointerUp releases a dragged node and ends panning
func (s *Simulator) PointerUp() {
	if s.dragging >= 0 && s.dragging < len(s.nodes) {
		s.nodes[s.dragging].Pinned = false
	}
	s.dragging = -1
	s.panning = false
}

// PointerLeave behaves like PointerUp and clears the hover
func (s *Simulator) PointerLeave() {
	s.PointerUp()
	s.hovered = -1
}

// Click invokes the click handler for the node under the pointer
func (s *Simulator) Click(screen Position) {
	node, ok := s.NodeAt(screen)
	if ok && s.onClick != nil {
		s.onClick(node)
	}
}

// Wheel zooms out for a positive delta and in otherwise
func (s *Simulator) Wheel(deltaY float64) {
	if deltaY > 0 {
		s.view.Zoom(wheelZoomOut)
	} else {
		s.view.Zoom(wheelZoomIn)
	}
}

// ZoomIn is the zoom-in button
func (s *Simulator) ZoomIn() {
	s.view.Zoom(buttonZoomIn)
}

// ZoomOut is the zoom-out button
func (s *Simulator) ZoomOut() {
	s.view.Zoom(buttonZoomOut)
}

// ResetView is the reset button
func (s *Simulator) ResetView() {
	s.view.Reset()
}

// ============================================================================
// Inspection
// ============================================================================

// Viewport returns the camera
func (s *Simulator) Viewport() Viewport {
	return s.view
}

// Hovered returns the hovered node id, empty if none
func (s *Simulator) Hovered() string {
	if s.hovered < 0 || s.hovered >= len(s.nodes) {
		return ""
	}
	return s.nodes[s.hovered].ID
}

// snapshot returns a copy of the simulation nodes
func (s *Simulator) snapshot() []SimNode {
	out := make([]SimNode, len(s.nodes))
	copy(out, s.nodes)
	return out
}

func (s *Simulator) node(id string) (SimNode, bool) {
	if i := s.lookup(id); i >= 0 {
		return s.nodes[i], true
	}
	return SimNode{}, false
}

// State captures positions and emphasis after the latest frame
func (s *Simulator) State() FrameState {
	state := FrameState{Seq: s.seq, Viewport: s.view, Nodes: make([]NodeState, 0, len(s.nodes))}
	for i := range s.nodes {
		n := &s.nodes[i]
		e := s.emphasisOf(i)
		state.Nodes = append(state.Nodes, NodeState{
			ID:          n.ID,
			X:           n.Pos.X,
			Y:           n.Pos.Y,
			Radius:      nodeRadius(n, e),
			Highlighted: e.highlighted,
			Hovered:     e.hovered,
			Match:       e.match,
			Pinned:      n.Pinned,
		})
	}
	return state
}
