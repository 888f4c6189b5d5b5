package layout

import (
	"fmt"
	"io"
	"math"
	"strings"

	"graphite/backend/internal/graph"

	svg "github.com/ajstarks/svgo"
)

const (
	backgroundColor = "#FAFAFA"
	fontFamily      = "Inter, sans-serif"
	glowOpacity     = 0.35
)

// SVGSurface draws frames as SVG documents. Coordinates are rounded to
// whole pixels in world space before the viewport transform is applied.
type SVGSurface struct {
	w      *errWriter
	canvas *svg.SVG
}

// NewSVGSurface writes documents to w
func NewSVGSurface(w io.Writer) *SVGSurface {
	sw := &errWriter{w: w}
	return &SVGSurface{w: sw, canvas: svg.New(sw)}
}

// errWriter remembers the first write error so End can report it
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

func px(v float64) int {
	return int(math.Round(v))
}

// Begin opens the document and the viewport group
func (s *SVGSurface) Begin(view Viewport) {
	s.canvas.Start(px(view.Width), px(view.Height))
	s.canvas.Rect(0, 0, px(view.Width), px(view.Height), "fill:"+backgroundColor)
	cx, cy := view.Width/2, view.Height/2
	s.canvas.Gtransform(fmt.Sprintf("translate(%g %g) scale(%g) translate(%g %g)",
		view.X+cx, view.Y+cy, view.Scale, -cx, -cy))
}

// Line draws a link
func (s *SVGSurface) Line(from, to Position, style LineStyle) {
	css := fmt.Sprintf("stroke:%s;stroke-width:%g", style.Color, style.Width)
	if len(style.Dash) > 0 {
		parts := make([]string, len(style.Dash))
		for i, d := range style.Dash {
			parts[i] = fmt.Sprintf("%g", d)
		}
		css += ";stroke-dasharray:" + strings.Join(parts, ",")
	}
	s.canvas.Line(px(from.X), px(from.Y), px(to.X), px(to.Y), css)
}

// Circle draws a person node
func (s *SVGSurface) Circle(center Position, radius float64, style ShapeStyle) {
	if style.Glow != "" {
		s.canvas.Circle(px(center.X), px(center.Y), px(radius+style.GlowBlur/3),
			fmt.Sprintf("fill:%s;fill-opacity:%g", style.Glow, glowOpacity))
	}
	s.canvas.Circle(px(center.X), px(center.Y), px(radius), "fill:"+style.Fill)
}

// RoundRect draws a company node centred on center
func (s *SVGSurface) RoundRect(center Position, size, corner float64, style ShapeStyle) {
	if style.Glow != "" {
		g := size + style.GlowBlur/1.5
		s.canvas.Roundrect(px(center.X-g/2), px(center.Y-g/2), px(g), px(g), px(corner), px(corner),
			fmt.Sprintf("fill:%s;fill-opacity:%g", style.Glow, glowOpacity))
	}
	s.canvas.Roundrect(px(center.X-size/2), px(center.Y-size/2), px(size), px(size), px(corner), px(corner), "fill:"+style.Fill)
}

// Text draws a centred label
func (s *SVGSurface) Text(at Position, text string, style TextStyle) {
	css := fmt.Sprintf("text-anchor:middle;font-family:%s;font-size:%gpx;fill:%s", fontFamily, style.Size, style.Color)
	if style.Bold {
		css += ";font-weight:bold"
	}
	s.canvas.Text(px(at.X), px(at.Y), text, css)
}

// End closes the viewport group and the document
func (s *SVGSurface) End() error {
	s.canvas.Gend()
	s.canvas.End()
	if s.w.err != nil {
		return fmt.Errorf("failed to write svg: %w", s.w.err)
	}
	return nil
}

// RenderOptions controls an offline render
type RenderOptions struct {
	Frames    int     // physics steps before drawing
	Settle    float64 // stop early once kinetic energy drops below this, 0 never
	Highlight string
	Query     string
}

// RenderSVG relaxes a graph offline and writes the final frame as SVG.
// It returns the number of steps simulated.
func RenderSVG(w io.Writer, data graph.GraphData, cfg Config, opts RenderOptions) (int, error) {
	sim := NewSimulator(cfg, DefaultParams())
	sim.Mount(data)
	steps := sim.Relax(opts.Frames, opts.Settle)
	sim.SetSearchQuery(opts.Query)
	sim.SetHighlight(opts.Highlight)
	return steps, sim.Draw(NewSVGSurface(w))
}
