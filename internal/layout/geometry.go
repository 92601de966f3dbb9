// Package layout computes deterministic positions for the mesh graph:
// platforms on an ellipse, agents inside it near the platforms they connect,
// and curved edges between them. Every function is pure; the same inputs
// always produce the same layout.
package layout

import "math"

const (
	// NodeRadius is the rendered radius of a node.
	NodeRadius = 36.0
	// AgentSeparation is the minimum distance between two agent nodes.
	AgentSeparation = NodeRadius * 2.4
	// MaxCollisionPasses bounds collision resolution.
	MaxCollisionPasses = 16
	// ClampSafety pulls clamped points slightly inside the boundary.
	ClampSafety = 0.94

	minViewportWidth  = 400.0
	minViewportHeight = 360.0
)

// Point is a position in viewport coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64  { return p.Sub(q).Len() }

func midpoint(a, b Point) Point {
	return a.Add(b).Scale(0.5)
}

func polar(angle, radius float64) Point {
	return Point{math.Cos(angle) * radius, math.Sin(angle) * radius}
}

// slotAngle is the angle of slot i of n, starting at the top.
func slotAngle(i, n int) float64 {
	return 2*math.Pi*float64(i)/float64(n) - math.Pi/2
}

// Viewport is the drawing area.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultViewport is used before a client reports its size.
var DefaultViewport = Viewport{Width: 960, Height: 600}

// Ellipse is the layout boundary.
type Ellipse struct {
	Center Point   `json:"center"`
	RX     float64 `json:"rx"`
	RY     float64 `json:"ry"`
}

// NewEllipse derives the layout ellipse from a viewport. Dimensions below
// the minimum, including zero or negative ones, are raised to it.
func NewEllipse(vp Viewport) Ellipse {
	w := math.Max(vp.Width, minViewportWidth)
	h := math.Max(vp.Height, minViewportHeight)
	return Ellipse{
		Center: Point{w / 2, h / 2},
		RX:     math.Max(w/2-NodeRadius*2.2, NodeRadius*5.6),
		RY:     math.Max(h/2-NodeRadius*2.4, NodeRadius*4.5),
	}
}

// Norm is (dx/rx)² + (dy/ry)² for p; values above 1 lie outside.
func (e Ellipse) Norm(p Point) float64 {
	return norm(p.Sub(e.Center), e.RX, e.RY)
}

func norm(d Point, rx, ry float64) float64 {
	return d.X*d.X/(rx*rx) + d.Y*d.Y/(ry*ry)
}

// Clamp pulls p inside the ellipse shrunk by padding. The shrunk radii never
// drop below 2.8 and 2.6 node radii. Points already inside are returned as is.
func Clamp(p Point, e Ellipse, padding float64) Point {
	rx := math.Max(e.RX-padding, NodeRadius*2.8)
	ry := math.Max(e.RY-padding, NodeRadius*2.6)
	d := p.Sub(e.Center)
	n := norm(d, rx, ry)
	if n <= 1 {
		return p
	}
	return e.Center.Add(d.Scale(math.Sqrt(1/n) * ClampSafety))
}
