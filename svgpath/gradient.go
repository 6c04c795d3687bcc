package svgpath

import "fmt"

// Units is the coordinate system of paint servers,
// clip paths and masks contents.
type Units byte

// SVG bounds paremater constants
const (
	ObjectBoundingBox Units = iota
	UserSpaceOnUse
)

// ParseUnits parses the value of a gradientUnits (or similar) attribute.
func ParseUnits(v string) (Units, error) {
	switch v {
	case "objectBoundingBox":
		return ObjectBoundingBox, nil
	case "userSpaceOnUse":
		return UserSpaceOnUse, nil
	}
	return 0, fmt.Errorf("%w: unknown units %q", ErrInvalid, v)
}

// SpreadMethod is the type for spread parameters
type SpreadMethod byte

// SVG spread parameter constants
const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

// ParseSpreadMethod parses the value of a spreadMethod attribute.
func ParseSpreadMethod(v string) (SpreadMethod, error) {
	switch v {
	case "pad":
		return PadSpread, nil
	case "reflect":
		return ReflectSpread, nil
	case "repeat":
		return RepeatSpread, nil
	}
	return 0, fmt.Errorf("%w: unknown spread method %q", ErrInvalid, v)
}
