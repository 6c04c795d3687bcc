package svglayer

import (
	"math"

	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svgpath"
)

// State stores a concrete value for every inherited property.
type State struct {
	Fill, Stroke svgicon.Paint
	Color        Color // the value of 'currentColor'

	FillOpacity, StrokeOpacity float64
	FillRule, ClipRule         svgicon.FillRule

	StrokeWidth      float64
	StrokeLineCap    svgicon.CapMode
	StrokeLineJoin   svgicon.JoinMode
	StrokeMiterLimit float64
	StrokeDashArray  []float64 // empty for solid strokes
	StrokeDashOffset float64

	Visible bool

	FontFamily string
	FontSize   float64
	TextAnchor svgicon.TextAnchor
}

// DefaultState returns the initial values of the properties.
func DefaultState() State {
	return State{
		Fill:             svgicon.Paint{Color: svgpath.NamedColor("black")},
		Stroke:           svgicon.Paint{Color: svgpath.NoneColor{}},
		Color:            Black,
		FillOpacity:      1,
		StrokeOpacity:    1,
		FillRule:         svgicon.EvenOdd,
		ClipRule:         svgicon.NonZero,
		StrokeWidth:      1,
		StrokeLineCap:    svgicon.ButtCap,
		StrokeLineJoin:   svgicon.Miter,
		StrokeMiterLimit: 4,
		Visible:          true,
		FontFamily:       "sans-serif",
		FontSize:         16,
		TextAnchor:       svgicon.AnchorStart,
	}
}

// viewport is the reference size for percentages.
type viewport struct{ w, h float64 }

// diagonal is the reference for percentages which are neither horizontal
// nor vertical.
func (vp viewport) diagonal() float64 { return math.Hypot(vp.w, vp.h) / math.Sqrt2 }

// Derive returns the state of a child node whose effective attributes are attrs:
// each property set in attrs overrides the one of s.
func (s State) Derive(attrs svgicon.Attributes) State {
	return s.derive(attrs, viewport{})
}

func (s State) derive(attrs svgicon.Attributes, vp viewport) State {
	out := s
	if attrs.FontSize != nil {
		// em units are relative to the parent font size
		out.FontSize = attrs.FontSize.Resolve(s.FontSize, s.FontSize)
	}
	if attrs.Color != nil {
		out.Color = ConvertColor(attrs.Color, s.Color)
	}
	if attrs.Fill != nil {
		out.Fill = *attrs.Fill
	}
	if attrs.Stroke != nil {
		out.Stroke = *attrs.Stroke
	}
	if attrs.FillOpacity != nil {
		out.FillOpacity = *attrs.FillOpacity
	}
	if attrs.StrokeOpacity != nil {
		out.StrokeOpacity = *attrs.StrokeOpacity
	}
	if attrs.FillRule != nil {
		out.FillRule = *attrs.FillRule
	}
	if attrs.ClipRule != nil {
		out.ClipRule = *attrs.ClipRule
	}
	if attrs.StrokeWidth != nil {
		out.StrokeWidth = attrs.StrokeWidth.Resolve(vp.diagonal(), out.FontSize)
	}
	if attrs.StrokeLineCap != nil {
		out.StrokeLineCap = *attrs.StrokeLineCap
	}
	if attrs.StrokeLineJoin != nil {
		out.StrokeLineJoin = *attrs.StrokeLineJoin
	}
	if attrs.StrokeMiterLimit != nil {
		out.StrokeMiterLimit = *attrs.StrokeMiterLimit
	}
	if attrs.StrokeDashArray != nil {
		out.StrokeDashArray = *attrs.StrokeDashArray
	}
	if attrs.StrokeDashOffset != nil {
		out.StrokeDashOffset = *attrs.StrokeDashOffset
	}
	if attrs.Visibility != nil {
		out.Visible = *attrs.Visibility
	}
	if attrs.FontFamily != nil {
		out.FontFamily = *attrs.FontFamily
	}
	if attrs.TextAnchor != nil {
		out.TextAnchor = *attrs.TextAnchor
	}
	return out
}

// paintResolver resolves paint server references; it returns false
// if the reference is not valid.
type paintResolver func(ref string) (Paint, bool)

// resolvePaint converts the document paint, using resolve for references.
// An unresolved reference falls back to the fallback color, or None.
func (s State) resolvePaint(p svgicon.Paint, opacity float64, resolve paintResolver) Paint {
	if p.Ref != "" && resolve != nil {
		if out, ok := resolve(p.Ref); ok {
			return paintWithOpacity(out, opacity)
		}
	}
	return ConvertColor(p.Color, s.Color).WithAlpha(opacity)
}

// FillAttributes materializes the fill of s. Paint server references
// are replaced by their fallback color.
func (s State) FillAttributes() FillAttributes { return s.fillAttributes(nil) }

func (s State) fillAttributes(resolve paintResolver) FillAttributes {
	return FillAttributes{
		Paint: s.resolvePaint(s.Fill, s.FillOpacity, resolve),
		Rule:  s.FillRule,
	}
}

// StrokeAttributes materializes the stroke of s. A zero width
// gives a None paint, whatever the stroke property.
func (s State) StrokeAttributes() StrokeAttributes { return s.strokeAttributes(nil) }

func (s State) strokeAttributes(resolve paintResolver) StrokeAttributes {
	out := StrokeAttributes{
		Paint:      None,
		Width:      s.StrokeWidth,
		Cap:        s.StrokeLineCap,
		Join:       s.StrokeLineJoin,
		MiterLimit: s.StrokeMiterLimit,
		DashOffset: s.StrokeDashOffset,
	}
	if out.Width <= 0 {
		out.Width = 0
		return out
	}
	out.Paint = s.resolvePaint(s.Stroke, s.StrokeOpacity, resolve)
	out.Dash = normalizeDashes(s.StrokeDashArray)
	return out
}

// normalizeDashes returns nil for a solid stroke, and repeats
// odd length arrays.
func normalizeDashes(dashes []float64) []float64 {
	sum := 0.
	for _, d := range dashes {
		sum += d
	}
	if sum <= 0 {
		return nil
	}
	if len(dashes)%2 == 1 {
		return append(append([]float64(nil), dashes...), dashes...)
	}
	return dashes
}
