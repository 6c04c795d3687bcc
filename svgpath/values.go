package svgpath

import (
	"fmt"
	"strings"
)

// ParseNumber parses a single number, surrounded by optional whitespace.
func ParseNumber(v string) (float64, error) {
	sc := NewScanner(v)
	f, err := sc.ScanNumber(Whitespace)
	if err != nil {
		return 0, err
	}
	if err := sc.ExpectEnd(); err != nil {
		return 0, err
	}
	return f, nil
}

// ParseNumberList parses numbers separated by commas and/or whitespace.
func ParseNumberList(v string) ([]float64, error) {
	sc := NewScanner(v)
	var out []float64
	sc.Skip(Whitespace)
	for !sc.AtEnd() {
		skip := CommaWhitespace
		if len(out) == 0 {
			skip = Whitespace
		}
		f, err := sc.ScanNumber(skip)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
		sc.Skip(Whitespace)
	}
	return out, nil
}

// Point is a 2D point in user space.
type Point struct{ X, Y float64 }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul returns p scaled by f.
func (p Point) Mul(f float64) Point { return Point{p.X * f, p.Y * f} }

// ParsePoints parses the 'points' attribute of polylines and polygons.
func ParsePoints(v string) ([]Point, error) {
	fs, err := ParseNumberList(v)
	if err != nil {
		return nil, err
	}
	if len(fs)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of coordinates", ErrInvalid)
	}
	out := make([]Point, len(fs)/2)
	for i := range out {
		out[i] = Point{fs[2*i], fs[2*i+1]}
	}
	return out, nil
}

// Unit is a length unit.
type Unit uint8

const (
	UnitNone Unit = iota
	UnitPx
	UnitPt
	UnitPc
	UnitMm
	UnitCm
	UnitIn
	UnitEm
	UnitEx
	UnitPercent
)

var unitNames = [...]string{
	UnitNone:    "",
	UnitPx:      "px",
	UnitPt:      "pt",
	UnitPc:      "pc",
	UnitMm:      "mm",
	UnitCm:      "cm",
	UnitIn:      "in",
	UnitEm:      "em",
	UnitEx:      "ex",
	UnitPercent: "%",
}

func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return "<unknown Unit>"
}

// Length is a number with a unit.
type Length struct {
	Value float64
	Unit  Unit
}

func (l Length) String() string { return fmt.Sprintf("%g%s", l.Value, l.Unit) }

// dpi used to convert absolute units
const dpi = 96

// Resolve converts l to user units. reference is the length percentages
// are relative to.
func (l Length) Resolve(reference, fontSize float64) float64 {
	switch l.Unit {
	case UnitPt:
		return l.Value * dpi / 72
	case UnitPc:
		return l.Value * dpi / 6
	case UnitMm:
		return l.Value * dpi / 25.4
	case UnitCm:
		return l.Value * dpi / 2.54
	case UnitIn:
		return l.Value * dpi
	case UnitEm:
		return l.Value * fontSize
	case UnitEx:
		return l.Value * fontSize / 2
	case UnitPercent:
		return l.Value * reference / 100
	default:
		return l.Value
	}
}

// ParseLength parses a number followed by an optional unit.
func ParseLength(v string) (Length, error) {
	sc := NewScanner(v)
	f, err := sc.ScanNumber(Whitespace)
	if err != nil {
		return Length{}, err
	}
	rest := strings.TrimSpace(sc.Remaining())
	for u, name := range unitNames {
		if strings.EqualFold(rest, name) {
			return Length{Value: f, Unit: Unit(u)}, nil
		}
	}
	return Length{}, fmt.Errorf("%w: unknown unit %q", ErrInvalid, rest)
}

// ParsePercentage accepts either a '%' suffixed value in [0, 100]
// or a bare value in [0, 1], and returns it as a fraction.
func ParsePercentage(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		f, err := ParseNumber(strings.TrimSuffix(v, "%"))
		if err != nil {
			return 0, err
		}
		if f < 0 || f > 100 {
			return 0, fmt.Errorf("%w: percentage out of range: %s", ErrInvalid, v)
		}
		return f / 100, nil
	}
	f, err := ParseNumber(v)
	if err != nil {
		return 0, err
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("%w: fraction out of range: %s", ErrInvalid, v)
	}
	return f, nil
}

// ViewBox is the user space rectangle mapped to the viewport.
type ViewBox struct{ X, Y, W, H float64 }

// ParseViewBox parses the four numbers of a viewBox attribute.
// Width and height must be positive.
func ParseViewBox(v string) (ViewBox, error) {
	fs, err := ParseNumberList(v)
	if err != nil {
		return ViewBox{}, err
	}
	if len(fs) != 4 {
		return ViewBox{}, ErrParamMismatch
	}
	if fs[2] <= 0 || fs[3] <= 0 {
		return ViewBox{}, fmt.Errorf("%w: non positive viewBox size", ErrInvalid)
	}
	return ViewBox{fs[0], fs[1], fs[2], fs[3]}, nil
}
