package svglayer

import (
	"image/color"

	"github.com/benoitkugler/svglayer/svgpath"
	"golang.org/x/image/colornames"
)

// Color is a canonical color, with components in [0, 1],
// not premultiplied. Every color with a zero alpha is the None color.
type Color struct{ R, G, B, A float64 }

var (
	// None is the canonical transparent color.
	None  = Color{}
	Black = Color{A: 1}
	White = Color{1, 1, 1, 1}
)

// IsNone reports whether c is fully transparent.
func (c Color) IsNone() bool { return c.A <= 0 }

// WithAlpha returns c with its alpha multiplied by op.
func (c Color) WithAlpha(op float64) Color {
	c.A *= op
	if c.A <= 0 {
		return None
	}
	return c
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) { return c.NRGBA().RGBA() }

// NRGBA converts c to a 8 bits color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{to8(c.R), to8(c.G), to8(c.B), to8(c.A)}
}

func to8(f float64) uint8 { return uint8(clamp01(f)*255 + 0.5) }

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// newColor builds a canonical color: a null alpha gives None.
func newColor(r, g, b, a float64) Color {
	if a <= 0 {
		return None
	}
	return Color{clamp01(r), clamp01(g), clamp01(b), clamp01(a)}
}

// ConvertColor converts a document color to its canonical form.
// current is the value used for 'currentColor'. Unknown
// keywords are converted to None.
func ConvertColor(c svgpath.Color, current Color) Color {
	switch c := c.(type) {
	case nil, svgpath.NoneColor:
		return None
	case svgpath.CurrentColor:
		return current
	case svgpath.NamedColor:
		if c == "transparent" {
			return None
		}
		rgba, ok := colornames.Map[string(c)]
		if !ok {
			return None
		}
		return newColor(float64(rgba.R)/255, float64(rgba.G)/255, float64(rgba.B)/255, float64(rgba.A)/255)
	case svgpath.RGBColor:
		return newColor(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, c.A)
	case svgpath.PercentColor:
		return newColor(c.R, c.G, c.B, c.A)
	case svgpath.HexColor:
		return newColor(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
	}
	return None
}

// Luminance returns the luminance of c, ignoring its alpha.
func (c Color) Luminance() float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// LuminanceToAlpha returns a black color whose alpha is
// the luminance of c times its alpha, as used by masks.
func (c Color) LuminanceToAlpha() Color {
	return newColor(0, 0, 0, c.Luminance()*c.A)
}

// Paint is the source of a fill or a stroke: one of
// Color, *Gradient or *PatternPaint.
type Paint interface {
	isPaint()
}

func (Color) isPaint()         {}
func (*Gradient) isPaint()     {}
func (*PatternPaint) isPaint() {}

// IsNone reports whether p paints nothing.
func IsNone(p Paint) bool {
	switch p := p.(type) {
	case nil:
		return true
	case Color:
		return p.IsNone()
	}
	return false
}

// GradientKind selects the geometry of a gradient.
type GradientKind uint8

const (
	Linear GradientKind = iota
	Radial
)

// GradientStop is a color stop. The RGB components are kept
// even for transparent stops, since they are interpolated.
type GradientStop struct {
	Offset float64
	Color  Color
}

// Gradient is a resolved linear or radial gradient, with
// at least two stops.
type Gradient struct {
	Kind GradientKind
	// For linear gradients, the vector from Start to End.
	Start, End svgpath.Point
	// For radial gradients, the end circle and the focal circle.
	Center, Focus svgpath.Point
	R, FR         float64

	Stops  []GradientStop
	Spread svgpath.SpreadMethod
	// Transform maps the gradient space to the user space of
	// the painted element. Bounding box units are already applied.
	Transform svgpath.Matrix2D
}

// Average returns the mean color of the stops, which
// may be used by backends without gradient support.
func (g *Gradient) Average() Color {
	var out Color
	for _, s := range g.Stops {
		out.R += s.Color.R
		out.G += s.Color.G
		out.B += s.Color.B
		out.A += s.Color.A
	}
	n := float64(len(g.Stops))
	if n == 0 {
		return None
	}
	return newColor(out.R/n, out.G/n, out.B/n, out.A/n)
}

// withOpacity returns a copy of g whose stop alphas are multiplied by op.
func (g *Gradient) withOpacity(op float64) *Gradient {
	if op == 1 {
		return g
	}
	out := *g
	out.Stops = make([]GradientStop, len(g.Stops))
	for i, s := range g.Stops {
		s.Color.A *= op
		out.Stops[i] = s
	}
	return &out
}

// PatternPaint is a resolved pattern: Content is repeated on the
// tiles of size Tile.W x Tile.H, the first one having its origin
// at (Tile.X, Tile.Y).
type PatternPaint struct {
	Tile svgpath.Rect
	// Transform maps the pattern space to the user space of
	// the painted element.
	Transform svgpath.Matrix2D
	// Content is expressed relatively to the tile origin.
	Content *Layer
}

// paintWithOpacity folds op into the paint alpha.
func paintWithOpacity(p Paint, op float64) Paint {
	switch p := p.(type) {
	case Color:
		return p.WithAlpha(op)
	case *Gradient:
		return p.withOpacity(op)
	case *PatternPaint:
		if op == 1 {
			return p
		}
		out := *p
		out.Content = &Layer{Contents: []Content{p.Content}, Opacity: op, Transform: svgpath.Identity}
		return &out
	}
	return p
}
