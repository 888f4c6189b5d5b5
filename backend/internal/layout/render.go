package layout

import (
	"strings"

	"graphite/backend/internal/graph"
)

// LineStyle describes a link stroke
type LineStyle struct {
	Color string
	Width float64
	Dash  []float64
}

// ShapeStyle describes a node fill. Glow is the shadow colour, empty for none.
type ShapeStyle struct {
	Fill     string
	Glow     string
	GlowBlur float64
}

// TextStyle describes a node label
type TextStyle struct {
	Color string
	Size  float64
	Bold  bool
}

// Surface is something a frame can be drawn on. Coordinates passed to the
// drawing calls are world coordinates; Begin hands over the transform.
type Surface interface {
	Begin(view Viewport)
	Line(from, to Position, style LineStyle)
	Circle(center Position, radius float64, style ShapeStyle)
	RoundRect(center Position, size, corner float64, style ShapeStyle)
	Text(at Position, text string, style TextStyle)
	End() error
}

// Node sizes
const (
	PersonRadius  = 12.0
	CompanyRadius = 16.0
	EmphasisBoost = 4.0

	PersonHitRadius  = 16.0
	CompanyHitRadius = 20.0

	companySizeFactor = 1.5
	companyCorner     = 4.0
	labelOffset       = 14.0
	glowBlur          = 15.0
)

// Palette
const (
	colorPerson          = "#3B82F6"
	colorPersonEmphasis  = "#2563eb"
	colorTarget          = "#10B981"
	colorTargetEmphasis  = "#059669"
	colorCompany         = "#6B7280"
	colorLabel           = "#1A1A2E"
	colorLinkWorksAt     = "#94a3b8"
	colorLinkWorkedAt    = "#cbd5e1"
	colorLinkConnectedTo = "#e2e8f0"
)

func linkStyle(t graph.LinkType) LineStyle {
	switch t {
	case graph.LinkWorksAt:
		return LineStyle{Color: colorLinkWorksAt, Width: 1.5}
	case graph.LinkWorkedAt:
		return LineStyle{Color: colorLinkWorkedAt, Width: 1, Dash: []float64{4, 4}}
	default:
		return LineStyle{Color: colorLinkConnectedTo, Width: 0.5, Dash: []float64{2, 2}}
	}
}

// emphasis is the render-only state of one node
type emphasis struct {
	highlighted bool
	hovered     bool
	match       bool
}

func (e emphasis) any() bool {
	return e.highlighted || e.hovered || e.match
}

// matchesQuery reports whether a node name contains the search text
func matchesQuery(name, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	return q != "" && strings.Contains(strings.ToLower(name), q)
}

func nodeRadius(n *SimNode, e emphasis) float64 {
	r := PersonRadius
	if n.Type == graph.NodeCompany {
		r = CompanyRadius
	}
	if e.any() {
		r += EmphasisBoost
	}
	return r
}

func nodeStyle(n *SimNode, e emphasis) ShapeStyle {
	strong := e.highlighted || e.match
	var s ShapeStyle
	switch {
	case n.Type != graph.NodeCompany:
		s.Fill = colorPerson
		if strong {
			s.Fill = colorPersonEmphasis
		}
	case n.IsTarget:
		s.Fill = colorTarget
		if strong {
			s.Fill = colorTargetEmphasis
		}
	default:
		s.Fill = colorCompany
	}

	if e.highlighted || e.hovered {
		s.GlowBlur = glowBlur
		switch {
		case n.Type != graph.NodeCompany:
			s.Glow = colorPerson
		case n.IsTarget:
			s.Glow = colorTarget
		default:
			s.Glow = colorCompany
		}
	}
	return s
}

// draw renders links first, then nodes in order so later nodes sit on top
func draw(s Surface, view Viewport, nodes []SimNode, links []SimLink, emph func(i int) emphasis) error {
	s.Begin(view)

	for _, l := range links {
		if !l.Resolved() {
			continue
		}
		s.Line(nodes[l.Source].Pos, nodes[l.Target].Pos, linkStyle(l.Type))
	}

	for i := range nodes {
		n := &nodes[i]
		e := emph(i)
		r := nodeRadius(n, e)
		style := nodeStyle(n, e)
		if n.Type == graph.NodeCompany {
			s.RoundRect(n.Pos, r*companySizeFactor, companyCorner, style)
		} else {
			s.Circle(n.Pos, r, style)
		}

		size := 10.0
		bold := e.highlighted || e.hovered
		if bold {
			size = 11
		}
		s.Text(Position{X: n.Pos.X, Y: n.Pos.Y + r + labelOffset}, n.Name, TextStyle{Color: colorLabel, Size: size, Bold: bold})
	}

	return s.End()
}
