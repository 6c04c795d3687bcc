// Package svgpath implements the low level readers for SVG attribute
// values (numbers, lengths, colors, transforms and path data),
// and an abstract representation of normalized paths, which can then
// be consumed by painting backends.
package svgpath

import (
	"fmt"
	"strings"
)

type pathCommand uint8

// Human readable path constants
const (
	pathMoveTo pathCommand = iota
	pathLineTo
	pathCubicTo
	pathClose
)

// Operation groups the normalized path segments.
// Arcs and quadratic curves never appear in a Path:
// they are converted to cubic curves when parsed.
type Operation interface {
	command() pathCommand
}

type MoveTo Point

type LineTo Point

// CubicTo stores the two control points and the end point.
type CubicTo [3]Point

type Close struct{}

func (MoveTo) command() pathCommand  { return pathMoveTo }
func (LineTo) command() pathCommand  { return pathLineTo }
func (CubicTo) command() pathCommand { return pathCubicTo }
func (Close) command() pathCommand   { return pathClose }

// Path describes a sequence of normalized operations.
// A path built by this package always starts with a MoveTo.
type Path []Operation

// ToSVGPath returns a string representation of the path
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = fmt.Sprintf("M%4.3f,%4.3f", op.X, op.Y)
		case LineTo:
			chunks[i] = fmt.Sprintf("L%4.3f,%4.3f", op.X, op.Y)
		case CubicTo:
			chunks[i] = fmt.Sprintf("C%4.3f,%4.3f,%4.3f,%4.3f,%4.3f,%4.3f",
				op[0].X, op[0].Y, op[1].X, op[1].Y, op[2].X, op[2].Y)
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a Point) {
	*p = append(*p, MoveTo(a))
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b Point) {
	*p = append(*p, LineTo(b))
}

// QuadBezier adds a quadratic segment to the current curve,
// elevated to a cubic one.
func (p *Path) QuadBezier(b, c Point) {
	p0 := p.CurrentPoint()
	cp1 := p0.Add(b.Sub(p0).Mul(2. / 3))
	cp2 := c.Add(b.Sub(c).Mul(2. / 3))
	p.CubeBezier(cp1, cp2, c)
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d Point) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// CurrentPoint returns the pen position after the last operation.
func (p Path) CurrentPoint() Point {
	var cur, start Point
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			cur, start = Point(op), Point(op)
		case LineTo:
			cur = Point(op)
		case CubicTo:
			cur = op[2]
		case Close:
			cur = start
		}
	}
	return cur
}

// Transform returns a new path with every point mapped by m.
func (p Path) Transform(m Matrix2D) Path {
	out := make(Path, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			out[i] = MoveTo(m.TransformPoint(Point(op)))
		case LineTo:
			out[i] = LineTo(m.TransformPoint(Point(op)))
		case CubicTo:
			out[i] = CubicTo{m.TransformPoint(op[0]), m.TransformPoint(op[1]), m.TransformPoint(op[2])}
		case Close:
			out[i] = op
		}
	}
	return out
}

// PointCount returns the number of points stored in the path.
func (p Path) PointCount() int {
	n := 0
	for _, op := range p {
		switch op.(type) {
		case MoveTo, LineTo:
			n++
		case CubicTo:
			n += 3
		}
	}
	return n
}
