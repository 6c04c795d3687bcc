package svglayer

import "github.com/benoitkugler/svglayer/svgpath"

// Shape is a canonical geometry: one of Line, Rectangle,
// Ellipse, Polygon or PathShape.
type Shape interface {
	// Path returns the normalized path of the shape, made
	// of moves, lines, cubic Beziers and closes only.
	Path() svgpath.Path
	isShape()
}

type (
	// Line is an open polyline between its points.
	Line struct{ Points []svgpath.Point }

	// Rectangle has corner radii RX and RY, which may be zero.
	Rectangle struct {
		Rect   svgpath.Rect
		RX, RY float64
	}

	// Ellipse is defined by its bounding rectangle.
	Ellipse struct{ Rect svgpath.Rect }

	// Polygon is a closed polyline.
	Polygon struct{ Points []svgpath.Point }

	// PathShape is an arbitrary path.
	PathShape struct{ Data svgpath.Path }
)

func (Line) isShape()      {}
func (Rectangle) isShape() {}
func (Ellipse) isShape()   {}
func (Polygon) isShape()   {}
func (PathShape) isShape() {}

func polyline(points []svgpath.Point, closed bool) svgpath.Path {
	var p svgpath.Path
	for i, pt := range points {
		if i == 0 {
			p.Start(pt)
		} else {
			p.Line(pt)
		}
	}
	if closed && len(points) != 0 {
		p.Stop(true)
	}
	return p
}

func (l Line) Path() svgpath.Path    { return polyline(l.Points, false) }
func (l Polygon) Path() svgpath.Path { return polyline(l.Points, true) }

func (r Rectangle) Path() svgpath.Path {
	if r.RX == 0 || r.RY == 0 {
		return svgpath.RectPath(r.Rect.X, r.Rect.Y, r.Rect.W, r.Rect.H)
	}
	return svgpath.RoundRectPath(r.Rect.X, r.Rect.Y, r.Rect.W, r.Rect.H, r.RX, r.RY)
}

func (e Ellipse) Path() svgpath.Path {
	rx, ry := e.Rect.W/2, e.Rect.H/2
	return svgpath.EllipsePath(e.Rect.X+rx, e.Rect.Y+ry, rx, ry)
}

func (p PathShape) Path() svgpath.Path { return p.Data }
