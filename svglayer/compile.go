// Package svglayer compiles a parsed SVG document into a scene graph
// of layers, where colors, geometry, paint servers and references are
// fully resolved.
package svglayer

import (
	"errors"
	"image"

	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svgpath"
)

// ErrUseDepth is logged when 'use' elements are nested too deeply.
var ErrUseDepth = errors.New("svg: too many nested use elements")

// maxUseDepth bounds the nesting of 'use' instances, and of
// references in general (clip paths, masks and patterns).
const maxUseDepth = 64

// ImageResolver loads the image referenced by an href which
// is not a data URI.
type ImageResolver func(href string) (image.Image, error)

// Options configures the compilation.
type Options struct {
	// Width and Height are the output size. When zero,
	// the document size is used.
	Width, Height float64

	// ImageResolver is used for external images. If nil,
	// only data URIs are supported.
	ImageResolver ImageResolver
}

// OutputSize returns the size of the drawing of doc.
func (opts Options) OutputSize(doc *svgicon.Document) (w, h float64) {
	w, h = doc.Size()
	if opts.Width > 0 {
		w = opts.Width
	}
	if opts.Height > 0 {
		h = opts.Height
	}
	return w, h
}

// ViewBoxTransform returns the transform fitting vb into a viewport
// of size width x height: a translation by (-vb.X, -vb.Y), followed by
// a scaling. A nil vb gives the identity.
func ViewBoxTransform(vb *svgpath.ViewBox, width, height float64) svgpath.Matrix2D {
	if vb == nil || vb.W <= 0 || vb.H <= 0 {
		return svgpath.Identity
	}
	return svgpath.Identity.Scale(width/vb.W, height/vb.H).Translate(-vb.X, -vb.Y)
}

// idChain is the list of the ids of the ancestors of a node,
// used to cut cyclic references.
type idChain struct {
	id     string
	parent *idChain
}

func (c *idChain) push(id string) *idChain {
	if id == "" {
		return c
	}
	return &idChain{id: id, parent: c}
}

func (c *idChain) has(id string) bool {
	for ; c != nil; c = c.parent {
		if c.id == id {
			return true
		}
	}
	return false
}

// task is a node waiting to be compiled.
type task struct {
	node   svgicon.Node
	parent State
	vp     viewport
	dst    *Layer
	chain  *idChain
	uses   int // number of use elements instancing this node

	// viewport size imposed by a 'use' element (or the output size for the root),
	// for 'svg' and 'symbol' nodes
	size *[2]float64
	root bool
}

// pendingRef is a clip path or a mask, resolved once
// the contents of layer are known.
type pendingRef struct {
	layer      *Layer
	clip, mask string
	vp         viewport
	chain      *idChain
}

type compiler struct {
	doc  *svgicon.Document
	opts Options

	active map[string]bool // referenced elements being compiled
	depth  int             // nesting of referenced elements
	images map[string]*Image
}

// Compile builds the scene graph of doc. The returned layer carries the
// viewport transform. Compilation never fails: invalid references or
// unsupported content are skipped.
func Compile(doc *svgicon.Document, opts Options) *Layer {
	c := &compiler{
		doc:    doc,
		opts:   opts,
		active: make(map[string]bool),
		images: make(map[string]*Image),
	}
	w, h := opts.OutputSize(doc)
	out := newLayer()
	c.run(out, task{
		node:   doc.Root,
		parent: DefaultState(),
		vp:     viewport{w, h},
		dst:    out,
		size:   &[2]float64{w, h},
		root:   true,
	})
	return out
}

// walker compiles a subtree with an explicit stack, so that
// the nesting depth is only bounded by memory.
type walker struct {
	c       *compiler
	stack   []task
	pending []pendingRef
}

// run compiles the given tasks into their destination layer.
func (c *compiler) run(dst *Layer, tasks ...task) {
	w := walker{c: c}
	for i := len(tasks) - 1; i >= 0; i-- {
		w.stack = append(w.stack, tasks[i])
	}
	for len(w.stack) > 0 {
		t := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		w.process(t)
	}
	for _, p := range w.pending {
		c.resolvePending(p)
	}
	inlineSimpleLayers(dst)
}

// pushChildren schedules the children of a container, in document order.
func (w *walker) pushChildren(children []svgicon.Node, parent task, state State, dst *Layer, vp viewport) {
	chain := parent.chain.push(parent.node.Base().ID)
	for i := len(children) - 1; i >= 0; i-- {
		w.stack = append(w.stack, task{
			node:   children[i],
			parent: state,
			vp:     vp,
			dst:    dst,
			chain:  chain,
			uses:   parent.uses,
		})
	}
}

// modifiers returns the layer receiving the contents of a node with
// the given attributes: dst itself if the node has no modifier,
// or a new layer appended to dst.
func (w *walker) modifiers(t task, attrs svgicon.Attributes, extra svgpath.Matrix2D) *Layer {
	l := newLayer()
	if attrs.Opacity != nil {
		l.Opacity = *attrs.Opacity
	}
	if attrs.Transform != nil {
		l.Transform = *attrs.Transform
	}
	l.Transform = l.Transform.Mult(extra)
	if attrs.MixBlendMode != nil {
		l.BlendMode = *attrs.MixBlendMode
	}
	if attrs.Filter != nil && *attrs.Filter != "" {
		svgicon.Logger().Debug("svg: filter effects are ignored", "filter", *attrs.Filter)
	}
	var clip, mask string
	if attrs.ClipPath != nil {
		clip = *attrs.ClipPath
	}
	if attrs.Mask != nil {
		mask = *attrs.Mask
	}
	if t.root {
		// the root element modifies the output layer itself
		l.Contents = t.dst.Contents
		*t.dst = *l
		l = t.dst
	} else if clip == "" && mask == "" && l.IsSimple() {
		return t.dst
	}
	if clip != "" || mask != "" {
		w.pending = append(w.pending, pendingRef{layer: l, clip: clip, mask: mask, vp: t.vp, chain: t.chain})
	}
	if !t.root {
		t.dst.Contents = append(t.dst.Contents, l)
	}
	return l
}

func (w *walker) process(t task) {
	c := w.c
	base := t.node.Base()
	attrs := svgicon.Resolve(base, c.doc.StyleSheets)
	if attrs.Display != nil && *attrs.Display == svgicon.DisplayNone {
		return
	}
	if attrs.Opacity != nil && *attrs.Opacity == 0 {
		return
	}
	state := t.parent.derive(attrs, t.vp)

	switch n := t.node.(type) {
	case *svgicon.Group:
		dst := w.modifiers(t, attrs, svgpath.Identity)
		w.pushChildren(n.Children, t, state, dst, t.vp)
	case *svgicon.Anchor:
		dst := w.modifiers(t, attrs, svgpath.Identity)
		w.pushChildren(n.Children, t, state, dst, t.vp)
	case *svgicon.Svg:
		var x, y float64
		if !t.root {
			x, y = n.X.Resolve(t.vp.w, state.FontSize), n.Y.Resolve(t.vp.h, state.FontSize)
		}
		width, height := t.vp.w, t.vp.h
		if n.Width != nil {
			width = n.Width.Resolve(t.vp.w, state.FontSize)
		}
		if n.Height != nil {
			height = n.Height.Resolve(t.vp.h, state.FontSize)
		}
		if t.size != nil {
			width, height = t.size[0], t.size[1]
		}
		w.viewport(t, attrs, state, n.Children, n.ViewBox, x, y, width, height)
	case *svgicon.Symbol:
		if t.size == nil { // only rendered through use
			return
		}
		w.viewport(t, attrs, state, n.Children, n.ViewBox, 0, 0, t.size[0], t.size[1])
	case *svgicon.Use:
		w.use(t, n, attrs, state)
	case *svgicon.Text:
		if !state.Visible || n.Content == "" {
			return
		}
		dst := w.modifiers(t, attrs, svgpath.Identity)
		text := TextContent{
			Text:       n.Content,
			X:          n.X.Resolve(t.vp.w, state.FontSize),
			Y:          n.Y.Resolve(t.vp.h, state.FontSize),
			FontFamily: state.FontFamily,
			FontSize:   state.FontSize,
			Anchor:     state.TextAnchor,
		}
		text.Fill = state.fillAttributes(c.paintResolver(svgpath.Rect{}, t.vp, state, t.chain)).Paint
		dst.Contents = append(dst.Contents, text)
	case *svgicon.Image:
		if !state.Visible {
			return
		}
		img, err := c.loadImage(n.Href)
		if err != nil {
			svgicon.Logger().Debug("svg: skipping image", "error", err)
			return
		}
		rect := svgpath.Rect{
			X: n.X.Resolve(t.vp.w, state.FontSize),
			Y: n.Y.Resolve(t.vp.h, state.FontSize),
			W: n.Width.Resolve(t.vp.w, state.FontSize),
			H: n.Height.Resolve(t.vp.h, state.FontSize),
		}
		if rect.W == 0 || rect.H == 0 { // use the intrinsic size
			iw, ih := img.Size()
			rect.W, rect.H = float64(iw), float64(ih)
		}
		if rect.IsEmpty() {
			return
		}
		dst := w.modifiers(t, attrs, svgpath.Identity)
		dst.Contents = append(dst.Contents, ImageContent{Image: img, Rect: rect})
	default:
		shape := geometry(t.node, t.vp, state.FontSize)
		if shape == nil || !state.Visible {
			return
		}
		dst := w.modifiers(t, attrs, svgpath.Identity)
		dst.Contents = append(dst.Contents, c.shapeContent(shape, state, t.vp, t.chain))
	}
}

// viewport handles 'svg' and 'symbol' elements, which establish a new viewport.
func (w *walker) viewport(t task, attrs svgicon.Attributes, state State, children []svgicon.Node,
	vb *svgpath.ViewBox, x, y, width, height float64,
) {
	m := svgpath.Identity.Translate(x, y)
	if width <= 0 || height <= 0 {
		if !t.root {
			return
		}
		// the root element without size: no fitting
	} else {
		m = m.Mult(ViewBoxTransform(vb, width, height))
	}
	dst := w.modifiers(t, attrs, m)
	vp := viewport{width, height}
	if vb != nil {
		vp = viewport{vb.W, vb.H}
	}
	w.pushChildren(children, t, state, dst, vp)
}

// use instantiates the referenced element.
func (w *walker) use(t task, n *svgicon.Use, attrs svgicon.Attributes, state State) {
	ref, ok := w.c.doc.Defs.Lookup(n.Href)
	if !ok {
		svgicon.Logger().Debug("svg: unresolved use reference", "href", n.Href)
		return
	}
	if t.chain.has(n.Href) || n.Href == n.ID {
		svgicon.Logger().Debug("svg: cyclic use reference", "href", n.Href)
		return
	}
	if t.uses >= maxUseDepth {
		svgicon.Logger().Warn("svg: skipping use instance", "href", n.Href, "error", ErrUseDepth)
		return
	}
	x, y := n.X.Resolve(t.vp.w, state.FontSize), n.Y.Resolve(t.vp.h, state.FontSize)
	dst := w.modifiers(t, attrs, svgpath.Identity.Translate(x, y))

	child := task{
		node:   ref,
		parent: state,
		vp:     t.vp,
		dst:    dst,
		chain:  t.chain.push(n.ID),
		uses:   t.uses + 1,
	}
	switch ref := ref.(type) {
	case *svgicon.Symbol, *svgicon.Svg:
		width, height := t.vp.w, t.vp.h // 100%
		if sv, ok := ref.(*svgicon.Svg); ok {
			if sv.Width != nil {
				width = sv.Width.Resolve(t.vp.w, state.FontSize)
			}
			if sv.Height != nil {
				height = sv.Height.Resolve(t.vp.h, state.FontSize)
			}
		}
		if n.Width != nil {
			width = n.Width.Resolve(t.vp.w, state.FontSize)
		}
		if n.Height != nil {
			height = n.Height.Resolve(t.vp.h, state.FontSize)
		}
		child.size = &[2]float64{width, height}
	}
	w.stack = append(w.stack, child)
}

// geometry returns the canonical shape of n, or nil if n
// is not a shape, or has no extent.
func geometry(n svgicon.Node, vp viewport, fontSize float64) Shape {
	switch n := n.(type) {
	case *svgicon.Rect:
		r := svgpath.Rect{
			X: n.X.Resolve(vp.w, fontSize), Y: n.Y.Resolve(vp.h, fontSize),
			W: n.Width.Resolve(vp.w, fontSize), H: n.Height.Resolve(vp.h, fontSize),
		}
		if r.IsEmpty() {
			return nil
		}
		var rx, ry float64
		if n.RX != nil {
			rx = n.RX.Resolve(vp.w, fontSize)
		}
		if n.RY != nil {
			ry = n.RY.Resolve(vp.h, fontSize)
		}
		if n.RX == nil {
			rx = ry
		}
		if n.RY == nil {
			ry = rx
		}
		rx, ry = clampRadius(rx, r.W/2), clampRadius(ry, r.H/2)
		return Rectangle{Rect: r, RX: rx, RY: ry}
	case *svgicon.Circle:
		r := n.R.Resolve(vp.diagonal(), fontSize)
		if r <= 0 {
			return nil
		}
		cx, cy := n.CX.Resolve(vp.w, fontSize), n.CY.Resolve(vp.h, fontSize)
		return Ellipse{Rect: svgpath.Rect{X: cx - r, Y: cy - r, W: 2 * r, H: 2 * r}}
	case *svgicon.Ellipse:
		rx, ry := n.RX.Resolve(vp.w, fontSize), n.RY.Resolve(vp.h, fontSize)
		if rx <= 0 || ry <= 0 {
			return nil
		}
		cx, cy := n.CX.Resolve(vp.w, fontSize), n.CY.Resolve(vp.h, fontSize)
		return Ellipse{Rect: svgpath.Rect{X: cx - rx, Y: cy - ry, W: 2 * rx, H: 2 * ry}}
	case *svgicon.Line:
		return Line{Points: []svgpath.Point{
			{X: n.X1.Resolve(vp.w, fontSize), Y: n.Y1.Resolve(vp.h, fontSize)},
			{X: n.X2.Resolve(vp.w, fontSize), Y: n.Y2.Resolve(vp.h, fontSize)},
		}}
	case *svgicon.Polyline:
		if len(n.Points) < 2 {
			return nil
		}
		return Line{Points: n.Points}
	case *svgicon.Polygon:
		if len(n.Points) < 2 {
			return nil
		}
		return Polygon{Points: n.Points}
	case *svgicon.PathNode:
		if len(n.Data) < 2 {
			return nil
		}
		return PathShape{Data: n.Data}
	}
	return nil
}

func clampRadius(r, max float64) float64 {
	if r < 0 {
		return 0
	}
	if r > max {
		return max
	}
	return r
}

// shapeContent resolves the paints of shape.
func (c *compiler) shapeContent(shape Shape, state State, vp viewport, chain *idChain) ShapeContent {
	resolve := c.paintResolver(shape.Path().Bounds(), vp, state, chain)
	return ShapeContent{
		Shape:  shape,
		Fill:   state.fillAttributes(resolve),
		Stroke: state.strokeAttributes(resolve),
	}
}
