package svglayer

import (
	"image"
	"image/color"

	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svgpath"
)

// enter marks id as being compiled, and returns false
// for cyclic or too deeply nested references.
func (c *compiler) enter(id string) bool {
	if c.active[id] {
		svgicon.Logger().Debug("svg: cyclic reference", "id", id)
		return false
	}
	if c.depth >= maxUseDepth {
		svgicon.Logger().Warn("svg: skipping reference", "id", id, "error", ErrUseDepth)
		return false
	}
	c.active[id] = true
	c.depth++
	return true
}

func (c *compiler) leave(id string) {
	delete(c.active, id)
	c.depth--
}

// subtree compiles the children of a referenced element (pattern, mask),
// with a state derived from the element itself.
func (c *compiler) subtree(n svgicon.Node, children []svgicon.Node, vp viewport, chain *idChain) *Layer {
	attrs := svgicon.Resolve(n.Base(), c.doc.StyleSheets)
	state := DefaultState().derive(attrs, vp)
	chain = chain.push(n.Base().ID)
	out := newLayer()
	tasks := make([]task, len(children))
	for i, child := range children {
		tasks[i] = task{node: child, parent: state, vp: vp, dst: out, chain: chain}
	}
	c.run(out, tasks...)
	return out
}

// paintResolver returns the function resolving paint servers,
// for an element with bounding box bbox.
func (c *compiler) paintResolver(bbox svgpath.Rect, vp viewport, state State, chain *idChain) paintResolver {
	return func(ref string) (Paint, bool) {
		node, ok := c.doc.Defs.Lookup(ref)
		if !ok {
			svgicon.Logger().Debug("svg: unresolved paint reference", "id", ref)
			return nil, false
		}
		switch node := node.(type) {
		case *svgicon.LinearGradient, *svgicon.RadialGradient:
			return c.resolveGradient(node, bbox, vp, state)
		case *svgicon.Pattern:
			if !c.enter(ref) {
				return nil, false
			}
			defer c.leave(ref)
			return c.resolvePattern(node, bbox, vp, chain)
		}
		svgicon.Logger().Debug("svg: invalid paint server", "id", ref)
		return nil, false
	}
}

// gradientChain follows the href links of a gradient.
func (c *compiler) gradientChain(node svgicon.Node) []svgicon.Node {
	seen := map[svgicon.Node]bool{}
	var out []svgicon.Node
	for node != nil && !seen[node] {
		seen[node] = true
		out = append(out, node)
		var href string
		switch g := node.(type) {
		case *svgicon.LinearGradient:
			href = g.Href
		case *svgicon.RadialGradient:
			href = g.Href
		default:
			return out[:len(out)-1]
		}
		if href == "" {
			break
		}
		node, _ = c.doc.Defs.Lookup(href)
	}
	return out
}

func gradientBase(n svgicon.Node) *svgicon.GradientBase {
	switch g := n.(type) {
	case *svgicon.LinearGradient:
		return &g.GradientBase
	case *svgicon.RadialGradient:
		return &g.GradientBase
	}
	return nil
}

// firstLength returns the first length set in the chain, or def.
func firstLength(chain []svgicon.Node, def svgpath.Length, get func(svgicon.Node) *svgpath.Length) svgpath.Length {
	for _, n := range chain {
		if l := get(n); l != nil {
			return *l
		}
	}
	return def
}

// resolveGradient builds the gradient for an element with bounding box bbox.
// A gradient without stops paints nothing, and a gradient with one stop
// paints its color.
func (c *compiler) resolveGradient(node svgicon.Node, bbox svgpath.Rect, vp viewport, state State) (Paint, bool) {
	chain := c.gradientChain(node)

	var (
		stops     []*svgicon.Stop
		units     = svgpath.ObjectBoundingBox
		spread    = svgpath.PadSpread
		transform = svgpath.Identity
		unitsSet  bool
		spreadSet bool
		transSet  bool
	)
	for _, n := range chain {
		gb := gradientBase(n)
		if stops == nil && gb.Stops != nil {
			stops = gb.Stops
		}
		if !unitsSet && gb.Units != nil {
			units, unitsSet = *gb.Units, true
		}
		if !spreadSet && gb.Spread != nil {
			spread, spreadSet = *gb.Spread, true
		}
		if !transSet && gb.Transform != nil {
			transform, transSet = *gb.Transform, true
		}
	}

	canonical := c.gradientStops(stops, state)
	switch len(canonical) {
	case 0:
		return None, true
	case 1:
		return canonical[0].Color, true
	}

	out := &Gradient{Stops: canonical, Spread: spread, Transform: transform}
	refW, refH, refD := vp.w, vp.h, vp.diagonal()
	if units == svgpath.ObjectBoundingBox {
		if bbox.IsEmpty() {
			return None, true
		}
		refW, refH, refD = 1, 1, 1
		out.Transform = bbox.ToUnit().Mult(transform)
	}
	fs := state.FontSize
	pct := func(v float64) svgpath.Length { return svgpath.Length{Value: v, Unit: svgpath.UnitPercent} }

	switch node.(type) {
	case *svgicon.LinearGradient:
		// only linear gradients provide the geometry of linear gradients
		var same []svgicon.Node
		for _, n := range chain {
			if _, ok := n.(*svgicon.LinearGradient); ok {
				same = append(same, n)
			}
		}
		get := func(f func(*svgicon.LinearGradient) *svgpath.Length) func(svgicon.Node) *svgpath.Length {
			return func(n svgicon.Node) *svgpath.Length { return f(n.(*svgicon.LinearGradient)) }
		}
		x1 := firstLength(same, pct(0), get(func(g *svgicon.LinearGradient) *svgpath.Length { return g.X1 }))
		y1 := firstLength(same, pct(0), get(func(g *svgicon.LinearGradient) *svgpath.Length { return g.Y1 }))
		x2 := firstLength(same, pct(100), get(func(g *svgicon.LinearGradient) *svgpath.Length { return g.X2 }))
		y2 := firstLength(same, pct(0), get(func(g *svgicon.LinearGradient) *svgpath.Length { return g.Y2 }))
		out.Kind = Linear
		out.Start = svgpath.Point{X: x1.Resolve(refW, fs), Y: y1.Resolve(refH, fs)}
		out.End = svgpath.Point{X: x2.Resolve(refW, fs), Y: y2.Resolve(refH, fs)}
	case *svgicon.RadialGradient:
		var same []svgicon.Node
		for _, n := range chain {
			if _, ok := n.(*svgicon.RadialGradient); ok {
				same = append(same, n)
			}
		}
		get := func(f func(*svgicon.RadialGradient) *svgpath.Length) func(svgicon.Node) *svgpath.Length {
			return func(n svgicon.Node) *svgpath.Length { return f(n.(*svgicon.RadialGradient)) }
		}
		cx := firstLength(same, pct(50), get(func(g *svgicon.RadialGradient) *svgpath.Length { return g.CX }))
		cy := firstLength(same, pct(50), get(func(g *svgicon.RadialGradient) *svgpath.Length { return g.CY }))
		r := firstLength(same, pct(50), get(func(g *svgicon.RadialGradient) *svgpath.Length { return g.R }))
		fx := firstLength(same, cx, get(func(g *svgicon.RadialGradient) *svgpath.Length { return g.FX }))
		fy := firstLength(same, cy, get(func(g *svgicon.RadialGradient) *svgpath.Length { return g.FY }))
		fr := firstLength(same, pct(0), get(func(g *svgicon.RadialGradient) *svgpath.Length { return g.FR }))
		out.Kind = Radial
		out.Center = svgpath.Point{X: cx.Resolve(refW, fs), Y: cy.Resolve(refH, fs)}
		out.Focus = svgpath.Point{X: fx.Resolve(refW, fs), Y: fy.Resolve(refH, fs)}
		out.R = r.Resolve(refD, fs)
		out.FR = fr.Resolve(refD, fs)
		if out.R <= 0 {
			// the area is painted with the last stop
			return canonical[len(canonical)-1].Color, true
		}
	}
	return out, true
}

// gradientStops converts the stops, whose color is given
// by the stop-color and stop-opacity properties.
func (c *compiler) gradientStops(stops []*svgicon.Stop, state State) []GradientStop {
	out := make([]GradientStop, 0, len(stops))
	for _, stop := range stops {
		attrs := svgicon.Resolve(&stop.NodeBase, c.doc.StyleSheets)
		current := state.Color
		if attrs.Color != nil {
			current = ConvertColor(attrs.Color, state.Color)
		}
		col := Black
		if attrs.StopColor != nil {
			col = convertStopColor(attrs.StopColor, current)
		}
		if attrs.StopOpacity != nil {
			col.A *= *attrs.StopOpacity
		}
		out = append(out, GradientStop{Offset: stop.Offset, Color: col})
	}
	return out
}

// convertStopColor is like ConvertColor, but keeps the RGB components
// of transparent colors.
func convertStopColor(c svgpath.Color, current Color) Color {
	switch c := c.(type) {
	case svgpath.RGBColor:
		return Color{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, c.A}
	case svgpath.PercentColor:
		return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B), clamp01(c.A)}
	case svgpath.HexColor:
		return Color{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255}
	}
	return ConvertColor(c, current)
}

// resolvePattern compiles the pattern for an element with bounding box bbox.
func (c *compiler) resolvePattern(node *svgicon.Pattern, bbox svgpath.Rect, vp viewport, chain *idChain) (Paint, bool) {
	// follow the href links
	var (
		patterns []*svgicon.Pattern
		seen     = map[*svgicon.Pattern]bool{}
	)
	for p := node; p != nil && !seen[p]; {
		seen[p] = true
		patterns = append(patterns, p)
		next, _ := c.doc.Defs.Lookup(p.Href)
		p, _ = next.(*svgicon.Pattern)
	}

	var (
		x, y, w, h   svgpath.Length
		units        = svgpath.ObjectBoundingBox
		contentUnits = svgpath.UserSpaceOnUse
		transform    = svgpath.Identity
		viewBox      *svgpath.ViewBox
		content      *svgicon.Pattern
	)
	var xSet, ySet, wSet, hSet, uSet, cuSet, tSet bool
	for _, p := range patterns {
		if !xSet && p.X != nil {
			x, xSet = *p.X, true
		}
		if !ySet && p.Y != nil {
			y, ySet = *p.Y, true
		}
		if !wSet && p.Width != nil {
			w, wSet = *p.Width, true
		}
		if !hSet && p.Height != nil {
			h, hSet = *p.Height, true
		}
		if !uSet && p.Units != nil {
			units, uSet = *p.Units, true
		}
		if !cuSet && p.ContentUnits != nil {
			contentUnits, cuSet = *p.ContentUnits, true
		}
		if !tSet && p.Transform != nil {
			transform, tSet = *p.Transform, true
		}
		if viewBox == nil {
			viewBox = p.ViewBox
		}
		if content == nil && len(p.Children) != 0 {
			content = p
		}
	}

	var tile svgpath.Rect
	if units == svgpath.ObjectBoundingBox {
		if bbox.IsEmpty() {
			return None, true
		}
		tile = svgpath.Rect{
			X: bbox.X + x.Resolve(1, 0)*bbox.W, Y: bbox.Y + y.Resolve(1, 0)*bbox.H,
			W: w.Resolve(1, 0) * bbox.W, H: h.Resolve(1, 0) * bbox.H,
		}
	} else {
		tile = svgpath.Rect{
			X: x.Resolve(vp.w, 0), Y: y.Resolve(vp.h, 0),
			W: w.Resolve(vp.w, 0), H: h.Resolve(vp.h, 0),
		}
	}
	if tile.IsEmpty() || content == nil {
		return None, true
	}

	contentVP := vp
	layer := c.subtree(content, content.Children, contentVP, chain)
	switch {
	case viewBox != nil:
		layer.Transform = ViewBoxTransform(viewBox, tile.W, tile.H)
	case contentUnits == svgpath.ObjectBoundingBox:
		layer.Transform = svgpath.Identity.Scale(bbox.W, bbox.H)
	}
	return &PatternPaint{Tile: tile, Transform: transform, Content: layer}, true
}

// resolvePending attaches the clip path and the mask to p.layer.
// Unresolved references are ignored.
func (c *compiler) resolvePending(p pendingRef) {
	if p.clip != "" {
		if node, ok := c.doc.Defs.Lookup(p.clip); ok {
			if cp, ok := node.(*svgicon.ClipPath); ok && c.enter(p.clip) {
				p.layer.ClipPaths = append(p.layer.ClipPaths, c.clipPath(cp, p.layer.Bounds(), p.vp))
				c.leave(p.clip)
			}
		} else {
			svgicon.Logger().Debug("svg: unresolved clip-path reference", "id", p.clip)
		}
	}
	if p.mask != "" {
		if node, ok := c.doc.Defs.Lookup(p.mask); ok {
			if m, ok := node.(*svgicon.Mask); ok && c.enter(p.mask) {
				p.layer.Mask = c.mask(m, p.layer.Bounds(), p.vp, p.chain)
				c.leave(p.mask)
			}
		} else {
			svgicon.Logger().Debug("svg: unresolved mask reference", "id", p.mask)
		}
	}
}

// clipPath merges the outlines of the children of cp into one path,
// expressed in the space of the clipped element.
func (c *compiler) clipPath(cp *svgicon.ClipPath, bbox svgpath.Rect, vp viewport) ClipPath {
	attrs := svgicon.Resolve(&cp.NodeBase, c.doc.StyleSheets)
	state := DefaultState().derive(attrs, vp)

	m := svgpath.Identity
	if cp.Units == svgpath.ObjectBoundingBox {
		if bbox.IsEmpty() {
			return ClipPath{}
		}
		m = bbox.ToUnit()
	}
	if attrs.Transform != nil {
		m = m.Mult(*attrs.Transform)
	}

	var (
		out   = ClipPath{Rule: state.ClipRule}
		count int
	)
	for _, child := range cp.Children {
		childAttrs := svgicon.Resolve(child.Base(), c.doc.StyleSheets)
		if childAttrs.Display != nil && *childAttrs.Display == svgicon.DisplayNone {
			continue
		}
		childState := state.derive(childAttrs, vp)
		if !childState.Visible {
			continue
		}
		cm := m
		if childAttrs.Transform != nil {
			cm = cm.Mult(*childAttrs.Transform)
		}
		node := child
		if use, ok := child.(*svgicon.Use); ok { // only direct references to shapes
			ref, ok := c.doc.Defs.Lookup(use.Href)
			if !ok {
				continue
			}
			cm = cm.Translate(use.X.Resolve(vp.w, childState.FontSize), use.Y.Resolve(vp.h, childState.FontSize))
			refAttrs := svgicon.Resolve(ref.Base(), c.doc.StyleSheets)
			if refAttrs.Transform != nil {
				cm = cm.Mult(*refAttrs.Transform)
			}
			childState = childState.derive(refAttrs, vp)
			node = ref
		}
		shape := geometry(node, vp, childState.FontSize)
		if shape == nil {
			continue
		}
		out.Path = append(out.Path, shape.Path().Transform(cm)...)
		out.Rule = childState.ClipRule
		count++
	}
	if count > 1 {
		// the union of the children
		out.Rule = svgicon.NonZero
	}
	return out
}

// mask compiles the mask content, converted to alpha by luminance,
// and restricted to the mask region.
func (c *compiler) mask(m *svgicon.Mask, bbox svgpath.Rect, vp viewport, chain *idChain) *Layer {
	out := newLayer()
	var region svgpath.Rect
	if m.Units == svgpath.ObjectBoundingBox {
		if bbox.IsEmpty() {
			return out // nothing is visible
		}
		region = svgpath.Rect{
			X: bbox.X + m.X.Resolve(1, 0)*bbox.W, Y: bbox.Y + m.Y.Resolve(1, 0)*bbox.H,
			W: m.Width.Resolve(1, 0) * bbox.W, H: m.Height.Resolve(1, 0) * bbox.H,
		}
	} else {
		region = svgpath.Rect{
			X: m.X.Resolve(vp.w, 0), Y: m.Y.Resolve(vp.h, 0),
			W: m.Width.Resolve(vp.w, 0), H: m.Height.Resolve(vp.h, 0),
		}
	}
	if region.IsEmpty() {
		return out
	}
	out.ClipPaths = []ClipPath{{Path: svgpath.RectPath(region.X, region.Y, region.W, region.H), Rule: svgicon.NonZero}}

	content := c.subtree(m, m.Children, vp, chain)
	if m.ContentUnits == svgpath.ObjectBoundingBox {
		content.Transform = bbox.ToUnit()
	}
	luminanceToAlpha(content)
	out.Contents = []Content{content}
	return out
}

// luminanceToAlpha converts in place the colors of l,
// replacing each color by its luminance alpha.
func luminanceToAlpha(l *Layer) {
	convertPaint := func(p Paint) Paint {
		switch p := p.(type) {
		case Color:
			return p.LuminanceToAlpha()
		case *Gradient:
			out := *p
			out.Stops = make([]GradientStop, len(p.Stops))
			for i, s := range p.Stops {
				out.Stops[i] = GradientStop{Offset: s.Offset, Color: Color{A: s.Color.Luminance() * s.Color.A}}
			}
			return &out
		case *PatternPaint:
			// patterns are compiled for each use, so
			// the content is not shared
			luminanceToAlpha(p.Content)
		}
		return p
	}
	l.Walk(func(la *Layer) {
		for i, content := range la.Contents {
			switch content := content.(type) {
			case ShapeContent:
				content.Fill.Paint = convertPaint(content.Fill.Paint)
				content.Stroke.Paint = convertPaint(content.Stroke.Paint)
				la.Contents[i] = content
			case TextContent:
				content.Fill = convertPaint(content.Fill)
				la.Contents[i] = content
			case ImageContent:
				content.Image = &Image{Img: luminanceImage(content.Image.Img)}
				la.Contents[i] = content
			}
		}
	})
}

// luminanceImage returns an alpha only image.
func luminanceImage(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			lum := Color{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255}.LuminanceToAlpha()
			out.SetNRGBA(x, y, color.NRGBA{A: to8(lum.A)})
		}
	}
	return out
}
