package svgpath

import (
	"fmt"
	"math"
	"strings"
)

// Matrix2D is an affine transform, with the coefficients in SVG order:
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Mult returns a·b, that is the transform applying b first, then a.
func (a Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F,
	}
}

// Then returns the transform applying a first, then b.
func (a Matrix2D) Then(b Matrix2D) Matrix2D { return b.Mult(a) }

// Translate returns a·translate(x, y).
func (a Matrix2D) Translate(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, 0, 1, x, y})
}

// Scale returns a·scale(x, y).
func (a Matrix2D) Scale(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{x, 0, 0, y, 0, 0})
}

// Rotate returns a·rotate(theta), with theta in radians.
func (a Matrix2D) Rotate(theta float64) Matrix2D {
	s, c := math.Sincos(theta)
	return a.Mult(Matrix2D{c, s, -s, c, 0, 0})
}

// SkewX returns a·skewX(theta), with theta in radians.
func (a Matrix2D) SkewX(theta float64) Matrix2D {
	return a.Mult(Matrix2D{1, 0, math.Tan(theta), 1, 0, 0})
}

// SkewY returns a·skewY(theta), with theta in radians.
func (a Matrix2D) SkewY(theta float64) Matrix2D {
	return a.Mult(Matrix2D{1, math.Tan(theta), 0, 1, 0, 0})
}

// Invert returns the inverse transform, or the identity
// if a is singular.
func (a Matrix2D) Invert() Matrix2D {
	det := a.A*a.D - a.B*a.C
	if det == 0 {
		return Identity
	}
	return Matrix2D{
		A: a.D / det,
		B: -a.B / det,
		C: -a.C / det,
		D: a.A / det,
		E: (a.C*a.F - a.D*a.E) / det,
		F: (a.B*a.E - a.A*a.F) / det,
	}
}

// Transform applies the transform to the point (x, y).
func (a Matrix2D) Transform(x, y float64) (float64, float64) {
	return x*a.A + y*a.C + a.E, x*a.B + y*a.D + a.F
}

// TransformPoint applies the transform to p.
func (a Matrix2D) TransformPoint(p Point) Point {
	x, y := a.Transform(p.X, p.Y)
	return Point{x, y}
}

// TransformVector applies the linear part of the transform.
func (a Matrix2D) TransformVector(x, y float64) (float64, float64) {
	return x*a.A + y*a.C, x*a.B + y*a.D
}

// IsIdentity reports whether a is exactly the identity.
func (a Matrix2D) IsIdentity() bool { return a == Identity }

// Scaling returns an approximation of the uniform scale factor of a,
// used to transform stroke widths.
func (a Matrix2D) Scaling() float64 {
	return math.Sqrt(math.Abs(a.A*a.D - a.B*a.C))
}

func (a Matrix2D) String() string {
	return fmt.Sprintf("matrix(%g %g %g %g %g %g)", a.A, a.B, a.C, a.D, a.E, a.F)
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }

func applyTransformFunc(m Matrix2D, name string, args []float64) (Matrix2D, error) {
	ln := len(args)
	switch name {
	case "matrix":
		if ln != 6 {
			return m, ErrParamMismatch
		}
		return m.Mult(Matrix2D{args[0], args[1], args[2], args[3], args[4], args[5]}), nil
	case "translate":
		switch ln {
		case 1:
			return m.Translate(args[0], 0), nil
		case 2:
			return m.Translate(args[0], args[1]), nil
		}
	case "scale":
		switch ln {
		case 1:
			return m.Scale(args[0], args[0]), nil
		case 2:
			return m.Scale(args[0], args[1]), nil
		}
	case "rotate":
		switch ln {
		case 1:
			return m.Rotate(degToRad(args[0])), nil
		case 3:
			return m.Translate(args[1], args[2]).
				Rotate(degToRad(args[0])).
				Translate(-args[1], -args[2]), nil
		}
	case "skewx":
		if ln == 1 {
			return m.SkewX(degToRad(args[0])), nil
		}
	case "skewy":
		if ln == 1 {
			return m.SkewY(degToRad(args[0])), nil
		}
	default:
		return m, fmt.Errorf("%w: unknown transform %q", ErrInvalid, name)
	}
	return m, ErrParamMismatch
}

// ParseTransform parses a transform list, such as
// "translate(10 20) rotate(45)". The whole input must be consumed.
// The returned matrix maps a point through the last function first.
func ParseTransform(v string) (Matrix2D, error) {
	sc := NewScanner(v)
	m := Identity
	sc.Skip(Whitespace)
	for first := true; !sc.AtEnd(); first = false {
		skip := CommaWhitespace
		if first {
			skip = Whitespace
		}
		name, err := sc.ScanIdent(skip)
		if err != nil {
			return Identity, err
		}
		if err := sc.Expect(Whitespace, '('); err != nil {
			return Identity, err
		}
		var args []float64
		for {
			sc.Skip(Whitespace)
			if sc.SkipByte(')') {
				break
			}
			argSkip := CommaWhitespace
			if len(args) == 0 {
				argSkip = Whitespace
			}
			f, err := sc.ScanNumber(argSkip)
			if err != nil {
				return Identity, err
			}
			args = append(args, f)
		}
		m, err = applyTransformFunc(m, strings.ToLower(name), args)
		if err != nil {
			return Identity, err
		}
		sc.Skip(Whitespace)
	}
	return m, nil
}
