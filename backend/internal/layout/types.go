package layout

import "graphite/backend/internal/graph"

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q
func (p Position) Add(q Position) Position {
	return Position{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p * k
func (p Position) Scale(k float64) Position {
	return Position{X: p.X * k, Y: p.Y * k}
}

// Config configures a simulator
type Config struct {
	Width  float64 // Canvas width
	Height float64 // Canvas height
	Seed   uint64  // Seed for initial placement; 0 picks a random one
}

// DefaultConfig is an 800x600 canvas
func DefaultConfig() Config {
	return Config{Width: 800, Height: 600}
}

// Center returns the middle of the canvas
func (c Config) Center() Position {
	return Position{X: c.Width / 2, Y: c.Height / 2}
}

// SimNode is a graph node with simulation state. A pinned node ignores
// forces and sits on Pin.
type SimNode struct {
	graph.GraphNode
	Pos    Position
	Vel    Position
	Pinned bool
	Pin    Position
}

// SimLink is a graph link resolved to node indices. An index of -1 marks an
// endpoint that is not in the node set; such links are ignored.
type SimLink struct {
	graph.GraphLink
	Source int
	Target int
}

// Resolved reports whether both endpoints exist
func (l SimLink) Resolved() bool {
	return l.Source >= 0 && l.Target >= 0
}

// NodeState is the externally visible state of one node after a frame
type NodeState struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"r"`
	Highlighted bool    `json:"highlighted,omitempty"`
	Hovered     bool    `json:"hovered,omitempty"`
	Match       bool    `json:"match,omitempty"`
	Pinned      bool    `json:"pinned,omitempty"`
}

// FrameState is everything a remote canvas needs to draw one frame
type FrameState struct {
	Seq      uint64      `json:"seq"`
	Viewport Viewport    `json:"viewport"`
	Nodes    []NodeState `json:"nodes"`
}
