package svgicon

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/svglayer/svgpath"
)

// Paint is the value of a fill or stroke property: either a color
// (including 'none' and 'currentColor'), or a reference to a paint server,
// with an optional fallback color.
type Paint struct {
	Color svgpath.Color // nil for a reference without fallback
	Ref   string        // referenced id, without the '#'
}

// parsePaint parses "none", a color, or "url(#id) [fallback]".
func parsePaint(v string) (Paint, error) {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "url(") {
		id, rest, err := parseURL(v)
		if err != nil {
			return Paint{}, err
		}
		p := Paint{Ref: id}
		if rest = strings.TrimSpace(rest); rest != "" {
			p.Color, err = svgpath.ParseColor(rest)
			if err != nil {
				return Paint{}, err
			}
		}
		return p, nil
	}
	c, err := svgpath.ParseColor(v)
	return Paint{Color: c}, err
}

// parseURL parses url(#id) and returns the id and what follows
// the closing parenthesis.
func parseURL(v string) (id, rest string, err error) {
	end := strings.IndexByte(v, ')')
	if !strings.HasPrefix(v, "url(") || end == -1 {
		return "", "", fmt.Errorf("%w: invalid url %q", ErrInvalid, v)
	}
	inner := strings.Trim(strings.TrimSpace(v[len("url("):end]), `"'`)
	if !strings.HasPrefix(inner, "#") {
		return "", "", fmt.Errorf("%w: only local references are supported: %q", ErrInvalid, v)
	}
	if len(inner) == 1 {
		return "", "", errZeroLengthID
	}
	return inner[1:], v[end+1:], nil
}

// parseReference parses the value of clip-path, mask and filter:
// "none" gives an empty id.
func parseReference(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "none" {
		return "", nil
	}
	id, rest, err := parseURL(v)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(rest) != "" {
		return "", fmt.Errorf("%w: trailing content in %q", ErrInvalid, v)
	}
	return id, nil
}

// Display is the value of the display property.
type Display uint8

const (
	DisplayInline Display = iota
	DisplayNone
)

// TextAnchor is the value of the text-anchor property.
type TextAnchor uint8

const (
	AnchorStart TextAnchor = iota
	AnchorMiddle
	AnchorEnd
)

// Attributes stores the presentation attributes of a node.
// Every field is optional: a nil field is not specified.
type Attributes struct {
	Fill, Stroke *Paint
	Color        svgpath.Color

	StrokeWidth      *svgpath.Length
	StrokeLineCap    *CapMode
	StrokeLineJoin   *JoinMode
	StrokeMiterLimit *float64
	StrokeDashArray  *[]float64 // an empty slice for 'none'
	StrokeDashOffset *float64

	Opacity, FillOpacity, StrokeOpacity *float64

	FillRule, ClipRule *FillRule

	Display    *Display
	Visibility *bool // true if visible

	FontFamily *string
	FontSize   *svgpath.Length
	TextAnchor *TextAnchor

	Transform *svgpath.Matrix2D

	// referenced ids; an empty string means 'none'
	ClipPath, Mask, Filter *string

	StopColor   svgpath.Color
	StopOpacity *float64

	MixBlendMode *BlendMode
}

// pick returns b if it is set, a otherwise.
func pick[T any](a, b *T) *T {
	if b != nil {
		return b
	}
	return a
}

func pickColor(a, b svgpath.Color) svgpath.Color {
	if b != nil {
		return b
	}
	return a
}

// Merge returns the attributes of b applied over a: each field set in b
// wins, the other fields are taken from a.
func (a Attributes) Merge(b Attributes) Attributes {
	return Attributes{
		Fill:             pick(a.Fill, b.Fill),
		Stroke:           pick(a.Stroke, b.Stroke),
		Color:            pickColor(a.Color, b.Color),
		StrokeWidth:      pick(a.StrokeWidth, b.StrokeWidth),
		StrokeLineCap:    pick(a.StrokeLineCap, b.StrokeLineCap),
		StrokeLineJoin:   pick(a.StrokeLineJoin, b.StrokeLineJoin),
		StrokeMiterLimit: pick(a.StrokeMiterLimit, b.StrokeMiterLimit),
		StrokeDashArray:  pick(a.StrokeDashArray, b.StrokeDashArray),
		StrokeDashOffset: pick(a.StrokeDashOffset, b.StrokeDashOffset),
		Opacity:          pick(a.Opacity, b.Opacity),
		FillOpacity:      pick(a.FillOpacity, b.FillOpacity),
		StrokeOpacity:    pick(a.StrokeOpacity, b.StrokeOpacity),
		FillRule:         pick(a.FillRule, b.FillRule),
		ClipRule:         pick(a.ClipRule, b.ClipRule),
		Display:          pick(a.Display, b.Display),
		Visibility:       pick(a.Visibility, b.Visibility),
		FontFamily:       pick(a.FontFamily, b.FontFamily),
		FontSize:         pick(a.FontSize, b.FontSize),
		TextAnchor:       pick(a.TextAnchor, b.TextAnchor),
		Transform:        pick(a.Transform, b.Transform),
		ClipPath:         pick(a.ClipPath, b.ClipPath),
		Mask:             pick(a.Mask, b.Mask),
		Filter:           pick(a.Filter, b.Filter),
		StopColor:        pickColor(a.StopColor, b.StopColor),
		StopOpacity:      pick(a.StopOpacity, b.StopOpacity),
		MixBlendMode:     pick(a.MixBlendMode, b.MixBlendMode),
	}
}

func ptr[T any](v T) *T { return &v }

func parseOpacity(v string) (*float64, error) {
	f, err := svgpath.ParsePercentage(v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseNonNegative(v string) (*float64, error) {
	f, err := svgpath.ParseNumber(v)
	if err != nil {
		return nil, err
	}
	if f < 0 {
		return nil, fmt.Errorf("%w: negative value %s", ErrInvalid, v)
	}
	return &f, nil
}

// isPresentation reports whether name is handled by Set
func isPresentation(name string) bool {
	_, ok := presentationNames[name]
	return ok
}

var presentationNames = map[string]struct{}{
	"fill": {}, "stroke": {}, "color": {}, "stroke-width": {}, "stroke-linecap": {},
	"stroke-linejoin": {}, "stroke-miterlimit": {}, "stroke-dasharray": {},
	"stroke-dashoffset": {}, "opacity": {}, "fill-opacity": {}, "stroke-opacity": {},
	"fill-rule": {}, "clip-rule": {}, "display": {}, "visibility": {}, "font-family": {},
	"font-size": {}, "text-anchor": {}, "transform": {}, "clip-path": {}, "mask": {},
	"filter": {}, "stop-color": {}, "stop-opacity": {}, "mix-blend-mode": {},
}

// Set parses the presentation attribute (or style property) `name`.
// Unknown names are ignored. 'inherit' leaves the field unset, so that
// the inherited value is used.
func (a *Attributes) Set(name, value string) error {
	value = strings.TrimSpace(value)
	if value == "inherit" {
		return nil
	}
	var err error
	switch name {
	case "fill":
		var p Paint
		p, err = parsePaint(value)
		a.Fill = &p
	case "stroke":
		var p Paint
		p, err = parsePaint(value)
		a.Stroke = &p
	case "color":
		a.Color, err = svgpath.ParseColor(value)
	case "stroke-width":
		var l svgpath.Length
		l, err = svgpath.ParseLength(value)
		if err == nil && l.Value < 0 {
			err = fmt.Errorf("%w: negative stroke width", ErrInvalid)
		}
		a.StrokeWidth = &l
	case "stroke-linecap":
		var c CapMode
		c, err = parseCapMode(value)
		a.StrokeLineCap = &c
	case "stroke-linejoin":
		var j JoinMode
		j, err = parseJoinMode(value)
		a.StrokeLineJoin = &j
	case "stroke-miterlimit":
		a.StrokeMiterLimit, err = parseNonNegative(value)
	case "stroke-dasharray":
		var dashes []float64
		if value != "none" {
			dashes, err = svgpath.ParseNumberList(value)
			for _, d := range dashes {
				if d < 0 {
					err = fmt.Errorf("%w: negative dash length", ErrInvalid)
				}
			}
		}
		if dashes == nil {
			dashes = []float64{}
		}
		a.StrokeDashArray = &dashes
	case "stroke-dashoffset":
		var f float64
		f, err = svgpath.ParseNumber(value)
		a.StrokeDashOffset = &f
	case "opacity":
		a.Opacity, err = parseOpacity(value)
	case "fill-opacity":
		a.FillOpacity, err = parseOpacity(value)
	case "stroke-opacity":
		a.StrokeOpacity, err = parseOpacity(value)
	case "fill-rule":
		var r FillRule
		r, err = parseFillRule(value)
		a.FillRule = &r
	case "clip-rule":
		var r FillRule
		r, err = parseFillRule(value)
		a.ClipRule = &r
	case "display":
		if value == "none" {
			a.Display = ptr(DisplayNone)
		} else {
			a.Display = ptr(DisplayInline)
		}
	case "visibility":
		switch value {
		case "visible":
			a.Visibility = ptr(true)
		case "hidden", "collapse":
			a.Visibility = ptr(false)
		default:
			err = fmt.Errorf("%w: visibility %q", ErrInvalid, value)
		}
	case "font-family":
		a.FontFamily = ptr(strings.Trim(value, `"'`))
	case "font-size":
		var l svgpath.Length
		l, err = svgpath.ParseLength(value)
		a.FontSize = &l
	case "text-anchor":
		switch value {
		case "start":
			a.TextAnchor = ptr(AnchorStart)
		case "middle":
			a.TextAnchor = ptr(AnchorMiddle)
		case "end":
			a.TextAnchor = ptr(AnchorEnd)
		default:
			err = fmt.Errorf("%w: text-anchor %q", ErrInvalid, value)
		}
	case "transform":
		var m svgpath.Matrix2D
		m, err = svgpath.ParseTransform(value)
		a.Transform = &m
	case "clip-path":
		var id string
		id, err = parseReference(value)
		a.ClipPath = &id
	case "mask":
		var id string
		id, err = parseReference(value)
		a.Mask = &id
	case "filter":
		var id string
		id, err = parseReference(value)
		a.Filter = &id
	case "stop-color":
		a.StopColor, err = svgpath.ParseColor(value)
	case "stop-opacity":
		a.StopOpacity, err = parseOpacity(value)
	case "mix-blend-mode":
		var b BlendMode
		b, err = parseBlendMode(value)
		a.MixBlendMode = &b
	}
	if err != nil {
		// an invalid value leaves the field unspecified
		a.clear(name)
	}
	return err
}

func (a *Attributes) clear(name string) {
	switch name {
	case "fill":
		a.Fill = nil
	case "stroke":
		a.Stroke = nil
	case "color":
		a.Color = nil
	case "stroke-width":
		a.StrokeWidth = nil
	case "stroke-linecap":
		a.StrokeLineCap = nil
	case "stroke-linejoin":
		a.StrokeLineJoin = nil
	case "stroke-miterlimit":
		a.StrokeMiterLimit = nil
	case "stroke-dasharray":
		a.StrokeDashArray = nil
	case "stroke-dashoffset":
		a.StrokeDashOffset = nil
	case "opacity":
		a.Opacity = nil
	case "fill-opacity":
		a.FillOpacity = nil
	case "stroke-opacity":
		a.StrokeOpacity = nil
	case "fill-rule":
		a.FillRule = nil
	case "clip-rule":
		a.ClipRule = nil
	case "visibility":
		a.Visibility = nil
	case "font-size":
		a.FontSize = nil
	case "text-anchor":
		a.TextAnchor = nil
	case "transform":
		a.Transform = nil
	case "clip-path":
		a.ClipPath = nil
	case "mask":
		a.Mask = nil
	case "filter":
		a.Filter = nil
	case "stop-color":
		a.StopColor = nil
	case "stop-opacity":
		a.StopOpacity = nil
	case "mix-blend-mode":
		a.MixBlendMode = nil
	}
}

// declaration is one 'property: value' pair
type declaration struct{ property, value string }

// splitStyle splits an inline style into its declarations.
func splitStyle(style string) []declaration {
	var out []declaration
	for _, pair := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		v = strings.TrimSpace(strings.TrimSuffix(v, "!important"))
		if k == "" {
			continue
		}
		out = append(out, declaration{k, v})
	}
	return out
}

// ParseStyle parses an inline style attribute. Invalid declarations
// are skipped and reported in errs.
func ParseStyle(style string) (attrs Attributes, errs []error) {
	for _, decl := range splitStyle(style) {
		if err := attrs.Set(decl.property, decl.value); err != nil {
			errs = append(errs, &ParseError{Element: "style", Attribute: decl.property, Err: err})
		}
	}
	return attrs, errs
}
