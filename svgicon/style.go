package svgicon

import "fmt"

// JoinMode type to specify how segments join.
type JoinMode uint8

// JoinMode constants determine how stroke segments bridge the gap at a join
// ArcClip mode is like MiterClip applied to arcs, and is not part of the SVG2.0
// standard.
const (
	Miter JoinMode = iota
	Round
	Bevel
	Arc       // New in SVG2
	MiterClip // New in SVG2
	ArcClip   // Like MiterClip applied to arcs, and is not part of the SVG2.0 standard.
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	case MiterClip:
		return "MiterClip"
	case Arc:
		return "Arc"
	case ArcClip:
		return "ArcClip"
	default:
		return "<unknown JoinMode>"
	}
}

func parseJoinMode(v string) (JoinMode, error) {
	switch v {
	case "miter":
		return Miter, nil
	case "miter-clip":
		return MiterClip, nil
	case "arc-clip":
		return ArcClip, nil
	case "round":
		return Round, nil
	case "arc":
		return Arc, nil
	case "bevel":
		return Bevel, nil
	}
	return 0, fmt.Errorf("%w: stroke-linejoin %q", ErrInvalid, v)
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	ButtCap CapMode = iota
	SquareCap
	RoundCap
)

func (c CapMode) String() string {
	switch c {
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	default:
		return "<unknown CapMode>"
	}
}

func parseCapMode(v string) (CapMode, error) {
	switch v {
	case "butt":
		return ButtCap, nil
	case "round":
		return RoundCap, nil
	case "square":
		return SquareCap, nil
	}
	return 0, fmt.Errorf("%w: stroke-linecap %q", ErrInvalid, v)
}

// FillRule selects the algorithm deciding the inside of a path.
type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

func (f FillRule) String() string {
	switch f {
	case NonZero:
		return "NonZero"
	case EvenOdd:
		return "EvenOdd"
	default:
		return "<unknown FillRule>"
	}
}

func parseFillRule(v string) (FillRule, error) {
	switch v {
	case "nonzero":
		return NonZero, nil
	case "evenodd":
		return EvenOdd, nil
	}
	return 0, fmt.Errorf("%w: fill-rule %q", ErrInvalid, v)
}

// BlendMode is a compositing operator.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	// BlendDestinationIn keeps the destination where the source is opaque.
	// It is not a mix-blend-mode value: it is used to apply masks.
	BlendDestinationIn
)

var blendNames = [...]string{
	BlendNormal:        "normal",
	BlendMultiply:      "multiply",
	BlendScreen:        "screen",
	BlendOverlay:       "overlay",
	BlendDarken:        "darken",
	BlendLighten:       "lighten",
	BlendDestinationIn: "destination-in",
}

func (b BlendMode) String() string {
	if int(b) < len(blendNames) {
		return blendNames[b]
	}
	return "<unknown BlendMode>"
}

func parseBlendMode(v string) (BlendMode, error) {
	for i, name := range blendNames[:BlendDestinationIn] {
		if v == name {
			return BlendMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: mix-blend-mode %q", ErrInvalid, v)
}
