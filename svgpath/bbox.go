package svgpath

import (
	"math"
)

// compute the bouding box of a path, needed when using
// paint servers or clip paths with objectBoundingBox units

// Rect is an axis aligned rectangle.
type Rect struct{ X, Y, W, H float64 }

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

// Union returns the smallest rectangle containing r and o.
// Empty rectangles are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.W == 0 && r.H == 0 {
		return o
	}
	if o.W == 0 && o.H == 0 {
		return r
	}
	minX, minY := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	maxX, maxY := math.Max(r.X+r.W, o.X+o.W), math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// Transform returns the bounding box of the transformed corners of r.
func (r Rect) Transform(m Matrix2D) Rect {
	return Path{
		MoveTo{r.X, r.Y}, LineTo{r.X + r.W, r.Y},
		LineTo{r.X + r.W, r.Y + r.H}, LineTo{r.X, r.Y + r.H},
	}.Transform(m).Bounds()
}

// ToUnit returns the transform mapping the unit square to r,
// used for objectBoundingBox units.
func (r Rect) ToUnit() Matrix2D {
	return Identity.Translate(r.X, r.Y).Scale(r.W, r.H)
}

type bezier interface {
	// compute the t zeroing the derivative
	criticalPoints() (tX, tY []float64)
	// compute the point a time t
	evaluateCurve(t float64) (x, y float64)
}

type line [2]Point

func (l line) criticalPoints() (tX, tY []float64) { return nil, nil }

func (l line) evaluateCurve(t float64) (x, y float64) {
	return bezierLine(l[0].X, l[1].X, t), bezierLine(l[0].Y, l[1].Y, t)
}

func bezierLine(p0, p1, t float64) float64 {
	return (p1-p0)*t + p0
}

type cubicBezier [4]Point

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	aX, bX, cX := cubicDerivative(cu[0].X, cu[1].X, cu[2].X, cu[3].X)
	aY, bY, cY := cubicDerivative(cu[0].Y, cu[1].Y, cu[2].Y, cu[3].Y)
	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluateCurve(t float64) (x, y float64) {
	return bezierSpline(cu[0].X, cu[1].X, cu[2].X, cu[3].X, t),
		bezierSpline(cu[0].Y, cu[1].Y, cu[2].Y, cu[3].Y, t)
}

// cubic polinomial
// x = At^3 + Bt^2 + Ct + D
// where A,B,C,D:
// A = p3 -3 * p2 + 3 * p1 - p0
// B = 3 * p2 - 6 * p1 +3 * p0
// C = 3 * p1 - 3 * p0
// D = p0
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		(p0)
}

// X' = (3*p3-9*p2+9*p1-3*p0)t^2 + (6*p2-12*p1+6*p0)t + (3*p1-3*p0)
// taken as aX^2 + bX + c  a,b and c are:
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

func quadraticRoots(a, b, c float64) []float64 {
	if a == 0 {
		if b == 0 {
			return nil
		}
		// simple line
		return []float64{-c / b}
	}
	d := b*b - 4*a*c
	if d < 0 {
		return nil
	}
	if d == 0 {
		return []float64{-b / (2 * a)}
	}
	sq := math.Sqrt(d)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}

// extend grows the box [min, max] with the extrema of curve
func extend(curve bezier, minP, maxP *Point) {
	resX, resY := curve.criticalPoints()
	for _, t := range append(append(resX, 0, 1), resY...) {
		// filter invalid value
		if !(0 <= t && t <= 1) {
			continue
		}
		x, y := curve.evaluateCurve(t)
		minP.X, minP.Y = math.Min(minP.X, x), math.Min(minP.Y, y)
		maxP.X, maxP.Y = math.Max(maxP.X, x), math.Max(maxP.Y, y)
	}
}

// Bounds returns the exact bounding box of the path,
// or an empty Rect for an empty path.
func (p Path) Bounds() Rect {
	if len(p) == 0 {
		return Rect{}
	}
	minP := Point{math.Inf(1), math.Inf(1)}
	maxP := Point{math.Inf(-1), math.Inf(-1)}
	var cur, start Point
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			cur, start = Point(op), Point(op)
			extend(line{cur, cur}, &minP, &maxP)
		case LineTo:
			extend(line{cur, Point(op)}, &minP, &maxP)
			cur = Point(op)
		case CubicTo:
			extend(cubicBezier{cur, op[0], op[1], op[2]}, &minP, &maxP)
			cur = op[2]
		case Close:
			cur = start
		}
	}
	return Rect{minP.X, minP.Y, maxP.X - minP.X, maxP.Y - minP.Y}
}
