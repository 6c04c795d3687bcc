package svgpath

import (
	"math"
)

// This file implements the transformation from
// high level shapes to their path equivalent

// maxDx is the maximum radians a cubic splice is allowed to span
// in ellipse parametric when approximating an off-axis ellipse.
const maxDx float64 = math.Pi / 8

// EllipsePath returns the path of the ellipse centered at (cx, cy),
// made of four cubic curves: MoveTo, 4 CubicTo, Close.
func EllipsePath(cx, cy, rx, ry float64) Path {
	p := make(Path, 0, 6)
	p.Start(Point{cx + rx, cy})
	for i := 0; i < 4; i++ {
		a0 := float64(i) * math.Pi / 2
		p.ellipseSpan(cx, cy, rx, ry, a0, a0+math.Pi/2)
	}
	p.Stop(true)
	return p
}

// RectPath returns the path of the rectangle (x, y, w, h), as
// MoveTo, 3 LineTo, Close.
func RectPath(x, y, w, h float64) Path {
	p := make(Path, 0, 5)
	p.Start(Point{x, y})
	p.Line(Point{x + w, y})
	p.Line(Point{x + w, y + h})
	p.Line(Point{x, y + h})
	p.Stop(true)
	return p
}

// RoundRectPath returns the path of a rectangle with rounded corners.
// The radii are clamped to half the width and height. Each corner
// is drawn with two cubic curves, so that the path has 14 segments.
// A zero radius falls back to RectPath.
func RoundRectPath(x, y, w, h, rx, ry float64) Path {
	rx, ry = math.Min(math.Abs(rx), w/2), math.Min(math.Abs(ry), h/2)
	if rx <= 0 || ry <= 0 {
		return RectPath(x, y, w, h)
	}
	maxX, maxY := x+w, y+h
	p := make(Path, 0, 14)
	p.Start(Point{x + rx, y})
	p.Line(Point{maxX - rx, y})
	p.roundCorner(maxX-rx, y+ry, rx, ry, -math.Pi/2)
	p.Line(Point{maxX, maxY - ry})
	p.roundCorner(maxX-rx, maxY-ry, rx, ry, 0)
	p.Line(Point{x + rx, maxY})
	p.roundCorner(x+rx, maxY-ry, rx, ry, math.Pi/2)
	p.Line(Point{x, y + ry})
	p.roundCorner(x+rx, y+ry, rx, ry, math.Pi)
	p.Stop(true)
	return p
}

// roundCorner adds a quarter of ellipse starting at angle a0,
// split in two cubic curves.
func (p *Path) roundCorner(cx, cy, rx, ry, a0 float64) {
	p.ellipseSpan(cx, cy, rx, ry, a0, a0+math.Pi/4)
	p.ellipseSpan(cx, cy, rx, ry, a0+math.Pi/4, a0+math.Pi/2)
}

// ellipseSpan adds one cubic curve approximating the axis aligned
// ellipse between the angles a0 and a1 (clockwise in SVG coordinates).
func (p *Path) ellipseSpan(cx, cy, rx, ry, a0, a1 float64) {
	k := 4. / 3 * math.Tan((a1-a0)/4)
	s0, c0 := math.Sincos(a0)
	s1, c1 := math.Sincos(a1)
	p0 := Point{cx + rx*c0, cy + ry*s0}
	p1 := Point{cx + rx*c1, cy + ry*s1}
	cp1 := Point{p0.X - k*rx*s0, p0.Y + k*ry*c0}
	cp2 := Point{p1.X + k*rx*s1, p1.Y - k*ry*c1}
	p.CubeBezier(cp1, cp2, p1)
}

// arcParams are the parameters of an elliptical arc,
// with radii already corrected by findEllipseCenter.
type arcParams struct {
	rx, ry          float64
	rotX            float64 // in radians
	largeArc, sweep bool
	end             Point
}

// addArc adds an arc starting at `start` to the path, and returns
// its end point.
func (p *Path) addArc(arc arcParams, cx, cy float64, start Point) Point {
	rotX := arc.rotX
	startAngle := math.Atan2(start.Y-cy, start.X-cx) - rotX
	endAngle := math.Atan2(arc.end.Y-cy, arc.end.X-cx) - rotX
	deltaTheta := endAngle - startAngle
	arcBig := math.Abs(deltaTheta) > math.Pi

	// Approximate ellipse using cubic bezeir splines
	etaStart := math.Atan2(math.Sin(startAngle)/arc.ry, math.Cos(startAngle)/arc.rx)
	etaEnd := math.Atan2(math.Sin(endAngle)/arc.ry, math.Cos(endAngle)/arc.rx)
	deltaEta := etaEnd - etaStart
	if arcBig != arc.largeArc {
		if deltaEta < 0 {
			deltaEta += math.Pi * 2
		} else {
			deltaEta -= math.Pi * 2
		}
	}
	// This check might be needed if the center point of the elipse is
	// at the midpoint of the start and end lines.
	if deltaEta < 0 && arc.sweep {
		deltaEta += math.Pi * 2
	} else if deltaEta >= 0 && !arc.sweep {
		deltaEta -= math.Pi * 2
	}

	// Round up to determine number of cubic splines to approximate bezier curve
	segs := int(math.Abs(deltaEta)/maxDx) + 1
	dEta := deltaEta / float64(segs) // span of each segment
	// Approximate the ellipse using a set of cubic bezier curves by the method of
	// L. Maisonobe, "Drawing an elliptical arc using polylines, quadratic
	// or cubic Bezier curves", 2003
	// https://www.spaceroots.org/documents/elllipse/elliptical-arc.pdf
	tde := math.Tan(dEta / 2)
	alpha := math.Sin(dEta) * (math.Sqrt(4+3*tde*tde) - 1) / 3
	lx, ly := start.X, start.Y
	sinTheta, cosTheta := math.Sin(rotX), math.Cos(rotX)
	ldx, ldy := ellipsePrime(arc.rx, arc.ry, sinTheta, cosTheta, etaStart)
	for i := 1; i <= segs; i++ {
		eta := etaStart + dEta*float64(i)
		var px, py float64
		if i == segs {
			px, py = arc.end.X, arc.end.Y // Just makes the end point exact; no roundoff error
		} else {
			px, py = ellipsePointAt(arc.rx, arc.ry, sinTheta, cosTheta, eta, cx, cy)
		}
		dx, dy := ellipsePrime(arc.rx, arc.ry, sinTheta, cosTheta, eta)
		p.CubeBezier(Point{lx + alpha*ldx, ly + alpha*ldy},
			Point{px - alpha*dx, py - alpha*dy}, Point{px, py})
		lx, ly, ldx, ldy = px, py, dx, dy
	}
	return Point{lx, ly}
}

// ellipsePrime gives tangent vectors for parameterized elipse; a, b, radii, eta parameter
func ellipsePrime(a, b, sinTheta, cosTheta, eta float64) (px, py float64) {
	bCosEta := b * math.Cos(eta)
	aSinEta := a * math.Sin(eta)
	px = -aSinEta*cosTheta - bCosEta*sinTheta
	py = -aSinEta*sinTheta + bCosEta*cosTheta
	return
}

// ellipsePointAt gives points for parameterized elipse; a, b, radii, eta parameter, center cx, cy
func ellipsePointAt(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	aCosEta := a * math.Cos(eta)
	bSinEta := b * math.Sin(eta)
	px = cx + aCosEta*cosTheta - bSinEta*sinTheta
	py = cy + aCosEta*sinTheta + bSinEta*cosTheta
	return
}

// findEllipseCenter locates the center of the Ellipse if it exists. If it does not exist,
// the radius values will be increased minimally for a solution to be possible
// while preserving the ra to rb ratio.  ra and rb arguments are pointers that can be
// checked after the call to see if the values changed. This method uses coordinate transformations
// to reduce the problem to finding the center of a circle that includes the origin
// and an arbitrary point. The center of the circle is then transformed
// back to the original coordinates and returned.
func findEllipseCenter(ra, rb *float64, rotX, startX, startY, endX, endY float64, sweep, smallArc bool) (cx, cy float64) {
	cos, sin := math.Cos(rotX), math.Sin(rotX)

	// Move origin to start point
	nx, ny := endX-startX, endY-startY

	// Rotate ellipse x-axis to coordinate x-axis
	nx, ny = nx*cos+ny*sin, -nx*sin+ny*cos
	// Scale X dimension so that ra = rb
	nx *= *rb / *ra // Now the ellipse is a circle radius rb; therefore foci and center coincide

	midX, midY := nx/2, ny/2
	midlenSq := midX*midX + midY*midY

	var hr float64
	if *rb**rb < midlenSq {
		// Requested ellipse does not exist; scale ra, rb to fit. Length of
		// span is greater than max width of ellipse, must scale *ra, *rb
		nrb := math.Sqrt(midlenSq)
		if *ra == *rb {
			*ra = nrb // prevents roundoff
		} else {
			*ra = *ra * nrb / *rb
		}
		*rb = nrb
	} else {
		hr = math.Sqrt(*rb**rb-midlenSq) / math.Sqrt(midlenSq)
	}
	// Notice that if hr is zero, both answers are the same.
	if (sweep && smallArc) || (!sweep && !smallArc) {
		cx = midX + midY*hr
		cy = midY - midX*hr
	} else {
		cx = midX - midY*hr
		cy = midY + midX*hr
	}

	// reverse scale
	cx *= *ra / *rb
	//Reverse rotate and translate back to original coordinates
	return cx*cos - cy*sin + startX, cx*sin + cy*cos + startY
}
