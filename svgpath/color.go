package svgpath

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is a color literal as written in the document. Values are kept
// in their source form; conversion to a canonical RGBA happens when
// the scene is compiled.
type Color interface {
	isColor()
}

type (
	// NoneColor is the 'none' keyword.
	NoneColor struct{}

	// CurrentColor is the 'currentColor' keyword.
	CurrentColor struct{}

	// NamedColor is a lower-cased color keyword, such as "red" or "transparent".
	NamedColor string

	// RGBColor is a rgb()/rgba() function with integer components.
	RGBColor struct {
		R, G, B uint8
		A       float64 // in [0, 1]
	}

	// PercentColor is a rgb()/rgba() function with percentage components,
	// stored as fractions.
	PercentColor struct{ R, G, B, A float64 }

	// HexColor is a '#' prefixed color.
	HexColor struct{ R, G, B, A uint8 }
)

func (NoneColor) isColor()    {}
func (CurrentColor) isColor() {}
func (NamedColor) isColor()   {}
func (RGBColor) isColor()     {}
func (PercentColor) isColor() {}
func (HexColor) isColor()     {}

// ParseColor parses a color literal. The first structural match wins:
// 'none', then rgb()/rgba(), then '#' hex, then keywords.
func ParseColor(v string) (Color, error) {
	v = strings.TrimSpace(v)
	lower := strings.ToLower(v)
	switch {
	case lower == "none":
		return NoneColor{}, nil
	case strings.HasPrefix(lower, "rgb(") || strings.HasPrefix(lower, "rgba("):
		return parseRGBFunc(lower)
	case strings.HasPrefix(v, "#"):
		return parseHex(v[1:])
	case lower == "currentcolor":
		return CurrentColor{}, nil
	case lower == "transparent":
		return NamedColor(lower), nil
	}
	if _, ok := colornames.Map[lower]; ok {
		return NamedColor(lower), nil
	}
	return nil, fmt.Errorf("%w: unknown color %q", ErrInvalid, v)
}

func parseHex(h string) (Color, error) {
	sc := NewScanner(h)
	digits, err := sc.ScanHex()
	if err != nil {
		return nil, err
	}
	if err := sc.ExpectEnd(); err != nil {
		return nil, err
	}
	switch len(digits) {
	case 3, 4:
		// each nibble is doubled
		var expanded strings.Builder
		for i := 0; i < len(digits); i++ {
			expanded.WriteByte(digits[i])
			expanded.WriteByte(digits[i])
		}
		digits = expanded.String()
	case 6, 8:
	default:
		return nil, fmt.Errorf("%w: hex color with %d digits", ErrInvalid, len(digits))
	}
	u, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	if len(digits) == 6 {
		return HexColor{R: uint8(u >> 16), G: uint8(u >> 8), B: uint8(u), A: 0xff}, nil
	}
	return HexColor{R: uint8(u >> 24), G: uint8(u >> 16), B: uint8(u >> 8), A: uint8(u)}, nil
}

// parseRGBFunc parses rgb(r,g,b[,a]), where r,g,b are either all
// integers in [0, 255] or all percentages.
func parseRGBFunc(v string) (Color, error) {
	sc := NewScanner(v)
	if _, err := sc.ScanIdent(NoSpace); err != nil {
		return nil, err
	}
	if err := sc.Expect(Whitespace, '('); err != nil {
		return nil, err
	}
	var (
		comps   [4]float64
		percent [4]bool
		n       int
	)
	for {
		skip := CommaWhitespace
		if n == 0 {
			skip = Whitespace
		}
		if n == 3 {
			// the alpha component may also be introduced by a slash
			sc.Skip(Whitespace)
			if sc.SkipByte('/') {
				skip = Whitespace
			}
		}
		f, err := sc.ScanNumber(skip)
		if err != nil {
			return nil, err
		}
		if n == len(comps) {
			return nil, ErrParamMismatch
		}
		comps[n] = f
		percent[n] = sc.SkipByte('%')
		n++
		sc.Skip(Whitespace)
		if sc.SkipByte(')') {
			break
		}
	}
	if err := sc.ExpectEnd(); err != nil {
		return nil, err
	}
	if n != 3 && n != 4 {
		return nil, ErrParamMismatch
	}
	if percent[0] != percent[1] || percent[1] != percent[2] {
		return nil, fmt.Errorf("%w: mixed integer and percentage components", ErrInvalid)
	}
	alpha := 1.
	if n == 4 {
		alpha = comps[3]
		if percent[3] {
			alpha /= 100
		}
		alpha = clamp(alpha, 0, 1)
	}
	if percent[0] {
		return PercentColor{
			R: clamp(comps[0]/100, 0, 1),
			G: clamp(comps[1]/100, 0, 1),
			B: clamp(comps[2]/100, 0, 1),
			A: alpha,
		}, nil
	}
	return RGBColor{
		R: uint8(clamp(comps[0], 0, 255)),
		G: uint8(clamp(comps[1], 0, 255)),
		B: uint8(clamp(comps[2], 0, 255)),
		A: alpha,
	}, nil
}

func clamp(f, min, max float64) float64 {
	if f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}
