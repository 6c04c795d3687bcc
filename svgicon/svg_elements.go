package svgicon

import (
	"strings"

	"github.com/benoitkugler/svglayer/svgpath"
)

func attrError(el *Element, name string, err error) error {
	return &ParseError{Element: el.Name, Attribute: name, Err: err}
}

func optLength(v string) (*svgpath.Length, error) {
	l, err := svgpath.ParseLength(v)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func nonNegative(l svgpath.Length) error {
	if l.Value < 0 {
		return ErrInvalid
	}
	return nil
}

// readFraction reads a number or a percentage, without range check
func readFraction(v string) (f float64, err error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err = svgpath.ParseNumber(v)
	f /= d
	return
}

// href returns the local reference of an href or xlink:href attribute
func href(el *Element) (string, bool) {
	v, ok := el.Attr("href")
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(strings.TrimSpace(v), "#"), true
}

// svgF reads the viewport attributes of root and nested 'svg' elements.
// In lenient modes an invalid attribute is left unset.
func svgF(c *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &Svg{NodeBase: base}
	for _, attr := range el.Attrs {
		var err error
		switch attr.Name.Local {
		case "viewBox":
			var vb svgpath.ViewBox
			if vb, err = svgpath.ParseViewBox(attr.Value); err == nil {
				out.ViewBox = &vb
			}
		case "width":
			out.Width, err = optLength(attr.Value)
		case "height":
			out.Height, err = optLength(attr.Value)
		case "x":
			out.X, err = svgpath.ParseLength(attr.Value)
		case "y":
			out.Y, err = svgpath.ParseLength(attr.Value)
		}
		if err != nil {
			if err := c.report(attrError(el, attr.Name.Local, err)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func gF(_ *iconCursor, _ *Element, base NodeBase) (Node, error) {
	return &Group{NodeBase: base}, nil
}

func anchorF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &Anchor{NodeBase: base}
	out.Href, _ = el.Attr("href")
	return out, nil
}

func symbolF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &Symbol{NodeBase: base}
	if v, ok := el.Attr("viewBox"); ok {
		vb, err := svgpath.ParseViewBox(v)
		if err != nil {
			return nil, attrError(el, "viewBox", err)
		}
		out.ViewBox = &vb
	}
	return out, nil
}

func lineF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &Line{NodeBase: base}
	var err error
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "x1":
			out.X1, err = svgpath.ParseLength(attr.Value)
		case "x2":
			out.X2, err = svgpath.ParseLength(attr.Value)
		case "y1":
			out.Y1, err = svgpath.ParseLength(attr.Value)
		case "y2":
			out.Y2, err = svgpath.ParseLength(attr.Value)
		}
		if err != nil {
			return nil, attrError(el, attr.Name.Local, err)
		}
	}
	return out, nil
}

func rectF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &Rect{NodeBase: base}
	var err error
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "x":
			out.X, err = svgpath.ParseLength(attr.Value)
		case "y":
			out.Y, err = svgpath.ParseLength(attr.Value)
		case "width":
			out.Width, err = svgpath.ParseLength(attr.Value)
			if err == nil {
				err = nonNegative(out.Width)
			}
		case "height":
			out.Height, err = svgpath.ParseLength(attr.Value)
			if err == nil {
				err = nonNegative(out.Height)
			}
		case "rx":
			if attr.Value != "auto" {
				out.RX, err = optLength(attr.Value)
			}
		case "ry":
			if attr.Value != "auto" {
				out.RY, err = optLength(attr.Value)
			}
		}
		if err != nil {
			return nil, attrError(el, attr.Name.Local, err)
		}
	}
	return out, nil
}

func circleF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &Circle{NodeBase: base}
	var err error
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "cx":
			out.CX, err = svgpath.ParseLength(attr.Value)
		case "cy":
			out.CY, err = svgpath.ParseLength(attr.Value)
		case "r":
			out.R, err = svgpath.ParseLength(attr.Value)
			if err == nil {
				err = nonNegative(out.R)
			}
		}
		if err != nil {
			return nil, attrError(el, attr.Name.Local, err)
		}
	}
	return out, nil
}

func ellipseF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &Ellipse{NodeBase: base}
	var err error
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "cx":
			out.CX, err = svgpath.ParseLength(attr.Value)
		case "cy":
			out.CY, err = svgpath.ParseLength(attr.Value)
		case "rx":
			out.RX, err = svgpath.ParseLength(attr.Value)
			if err == nil {
				err = nonNegative(out.RX)
			}
		case "ry":
			out.RY, err = svgpath.ParseLength(attr.Value)
			if err == nil {
				err = nonNegative(out.RY)
			}
		}
		if err != nil {
			return nil, attrError(el, attr.Name.Local, err)
		}
	}
	return out, nil
}

func readPoints(el *Element) ([]svgpath.Point, error) {
	v, _ := el.Attr("points")
	pts, err := svgpath.ParsePoints(v)
	if err != nil {
		return nil, attrError(el, "points", err)
	}
	return pts, nil
}

func polylineF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	pts, err := readPoints(el)
	if err != nil {
		return nil, err
	}
	return &Polyline{NodeBase: base, Points: pts}, nil
}

func polygonF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	pts, err := readPoints(el)
	if err != nil {
		return nil, err
	}
	return &Polygon{NodeBase: base, Points: pts}, nil
}

func pathF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	d, ok := el.Attr("d")
	if !ok {
		return nil, MissingAttributeError{Element: el.Name, Name: "d"}
	}
	data, err := svgpath.ParsePathData(d)
	if err != nil {
		return nil, attrError(el, "d", err)
	}
	return &PathNode{NodeBase: base, Data: data}, nil
}

// textContent concatenates the text of el and of its tspan descendants
func textContent(el *Element) string {
	var (
		sb    strings.Builder
		stack = []*Element{el}
	)
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sb.WriteString(e.Text)
		for i := len(e.Children) - 1; i >= 0; i-- {
			if e.Children[i].Name == "tspan" {
				stack = append(stack, e.Children[i])
			}
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func textF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &Text{NodeBase: base, Content: textContent(el)}
	var err error
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "x":
			out.X, err = svgpath.ParseLength(attr.Value)
		case "y":
			out.Y, err = svgpath.ParseLength(attr.Value)
		}
		if err != nil {
			return nil, attrError(el, attr.Name.Local, err)
		}
	}
	return out, nil
}

func imageF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &Image{NodeBase: base}
	v, ok := el.Attr("href")
	if !ok {
		return nil, MissingAttributeError{Element: el.Name, Name: "href"}
	}
	out.Href = strings.TrimSpace(v)
	var err error
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "x":
			out.X, err = svgpath.ParseLength(attr.Value)
		case "y":
			out.Y, err = svgpath.ParseLength(attr.Value)
		case "width":
			out.Width, err = svgpath.ParseLength(attr.Value)
		case "height":
			out.Height, err = svgpath.ParseLength(attr.Value)
		}
		if err != nil {
			return nil, attrError(el, attr.Name.Local, err)
		}
	}
	return out, nil
}

func useF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	ref, ok := href(el)
	if !ok {
		return nil, MissingAttributeError{Element: el.Name, Name: "href"}
	}
	if ref == "" {
		return nil, attrError(el, "href", errZeroLengthID)
	}
	out := &Use{NodeBase: base, Href: ref}
	var err error
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "x":
			out.X, err = svgpath.ParseLength(attr.Value)
		case "y":
			out.Y, err = svgpath.ParseLength(attr.Value)
		case "width":
			out.Width, err = optLength(attr.Value)
		case "height":
			out.Height, err = optLength(attr.Value)
		}
		if err != nil {
			return nil, attrError(el, attr.Name.Local, err)
		}
	}
	return out, nil
}

// readGradAttr reads the attributes shared by linear and radial gradients
func (c *iconCursor) readGradAttr(el *Element, grad *GradientBase) error {
	var err error
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "gradientTransform":
			var m svgpath.Matrix2D
			m, err = svgpath.ParseTransform(attr.Value)
			grad.Transform = &m
		case "gradientUnits":
			var u svgpath.Units
			u, err = svgpath.ParseUnits(attr.Value)
			grad.Units = &u
		case "spreadMethod":
			var s svgpath.SpreadMethod
			s, err = svgpath.ParseSpreadMethod(attr.Value)
			grad.Spread = &s
		case "href":
			grad.Href, _ = href(el)
		}
		if err != nil {
			return attrError(el, attr.Name.Local, err)
		}
	}
	return c.readStops(el, grad)
}

func (c *iconCursor) readStops(el *Element, grad *GradientBase) error {
	for _, child := range el.Children {
		if child.Name != "stop" {
			continue
		}
		base, err := c.readBase(child)
		if err != nil {
			return err
		}
		stop := &Stop{NodeBase: base}
		if v, ok := child.Attr("offset"); ok {
			stop.Offset, err = readFraction(v)
			if err != nil {
				if err := c.report(attrError(child, "offset", err)); err != nil {
					return err
				}
			}
		}
		// offsets are clamped, and must be increasing
		stop.Offset = clampUnit(stop.Offset)
		if n := len(grad.Stops); n > 0 && stop.Offset < grad.Stops[n-1].Offset {
			stop.Offset = grad.Stops[n-1].Offset
		}
		grad.Stops = append(grad.Stops, stop)
	}
	return nil
}

func clampUnit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func linearGradientF(c *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &LinearGradient{NodeBase: base}
	var err error
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "x1":
			out.X1, err = optLength(attr.Value)
		case "y1":
			out.Y1, err = optLength(attr.Value)
		case "x2":
			out.X2, err = optLength(attr.Value)
		case "y2":
			out.Y2, err = optLength(attr.Value)
		}
		if err != nil {
			return nil, attrError(el, attr.Name.Local, err)
		}
	}
	if err := c.readGradAttr(el, &out.GradientBase); err != nil {
		return nil, err
	}
	return out, nil
}

func radialGradientF(c *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &RadialGradient{NodeBase: base}
	var err error
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "cx":
			out.CX, err = optLength(attr.Value)
		case "cy":
			out.CY, err = optLength(attr.Value)
		case "fx":
			out.FX, err = optLength(attr.Value)
		case "fy":
			out.FY, err = optLength(attr.Value)
		case "r":
			out.R, err = optLength(attr.Value)
		case "fr":
			out.FR, err = optLength(attr.Value)
		}
		if err != nil {
			return nil, attrError(el, attr.Name.Local, err)
		}
	}
	if err := c.readGradAttr(el, &out.GradientBase); err != nil {
		return nil, err
	}
	return out, nil
}

func patternF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &Pattern{NodeBase: base}
	out.Href, _ = href(el)
	var err error
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "x":
			out.X, err = optLength(attr.Value)
		case "y":
			out.Y, err = optLength(attr.Value)
		case "width":
			out.Width, err = optLength(attr.Value)
		case "height":
			out.Height, err = optLength(attr.Value)
		case "patternUnits":
			var u svgpath.Units
			u, err = svgpath.ParseUnits(attr.Value)
			out.Units = &u
		case "patternContentUnits":
			var u svgpath.Units
			u, err = svgpath.ParseUnits(attr.Value)
			out.ContentUnits = &u
		case "patternTransform":
			var m svgpath.Matrix2D
			m, err = svgpath.ParseTransform(attr.Value)
			out.Transform = &m
		case "viewBox":
			var vb svgpath.ViewBox
			vb, err = svgpath.ParseViewBox(attr.Value)
			out.ViewBox = &vb
		}
		if err != nil {
			return nil, attrError(el, attr.Name.Local, err)
		}
	}
	return out, nil
}

func clipPathF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &ClipPath{NodeBase: base, Units: svgpath.UserSpaceOnUse}
	if v, ok := el.Attr("clipPathUnits"); ok {
		var err error
		out.Units, err = svgpath.ParseUnits(v)
		if err != nil {
			return nil, attrError(el, "clipPathUnits", err)
		}
	}
	return out, nil
}

func maskF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &Mask{
		NodeBase:     base,
		X:            svgpath.Length{Value: -10, Unit: svgpath.UnitPercent},
		Y:            svgpath.Length{Value: -10, Unit: svgpath.UnitPercent},
		Width:        svgpath.Length{Value: 120, Unit: svgpath.UnitPercent},
		Height:       svgpath.Length{Value: 120, Unit: svgpath.UnitPercent},
		Units:        svgpath.ObjectBoundingBox,
		ContentUnits: svgpath.UserSpaceOnUse,
	}
	var err error
	for _, attr := range el.Attrs {
		switch attr.Name.Local {
		case "x":
			out.X, err = svgpath.ParseLength(attr.Value)
		case "y":
			out.Y, err = svgpath.ParseLength(attr.Value)
		case "width":
			out.Width, err = svgpath.ParseLength(attr.Value)
		case "height":
			out.Height, err = svgpath.ParseLength(attr.Value)
		case "maskUnits":
			out.Units, err = svgpath.ParseUnits(attr.Value)
		case "maskContentUnits":
			out.ContentUnits, err = svgpath.ParseUnits(attr.Value)
		}
		if err != nil {
			return nil, attrError(el, attr.Name.Local, err)
		}
	}
	return out, nil
}

// supported filter primitives
var filterPrimitives = map[string]bool{
	"feGaussianBlur": true,
	"feOffset":       true,
	"feFlood":        true,
	"feBlend":        true,
	"feColorMatrix":  true,
	"feComposite":    true,
	"feMerge":        true,
}

func filterF(_ *iconCursor, el *Element, base NodeBase) (Node, error) {
	out := &Filter{NodeBase: base}
	for _, child := range el.Children {
		if !filterPrimitives[child.Name] {
			return nil, UnsupportedError{Construct: "filter primitive <" + child.Name + ">"}
		}
		prim := FilterPrimitive{Name: child.Name, Attrs: make(map[string]string, len(child.Attrs))}
		for _, attr := range child.Attrs {
			prim.Attrs[attr.Name.Local] = attr.Value
		}
		out.Primitives = append(out.Primitives, prim)
	}
	return out, nil
}
