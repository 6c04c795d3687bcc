package svglayer

import (
	"image"

	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svgpath"
)

// Layer is a node of the scene graph. A layer with a modifier (opacity,
// transform, clip paths, mask or blend mode) is composited in isolation.
type Layer struct {
	Contents []Content

	Opacity float64 // in [0, 1]
	// Transform is applied to the contents, the clip paths and the mask.
	Transform svgpath.Matrix2D
	// ClipPaths are intersected.
	ClipPaths []ClipPath
	// Mask, if not nil, is a layer whose alpha is used to mask the contents.
	Mask      *Layer
	BlendMode svgicon.BlendMode
}

func newLayer() *Layer { return &Layer{Opacity: 1, Transform: svgpath.Identity} }

// IsSimple reports whether l has no modifier, meaning
// its contents may be inlined in its parent.
func (l *Layer) IsSimple() bool {
	return l.Opacity == 1 && l.Transform.IsIdentity() && len(l.ClipPaths) == 0 &&
		l.Mask == nil && l.BlendMode == svgicon.BlendNormal
}

// ClipPath restricts the drawing area to the inside of Path.
type ClipPath struct {
	Path svgpath.Path
	Rule svgicon.FillRule
}

// Content is one of ShapeContent, ImageContent, TextContent or *Layer.
type Content interface {
	isContent()
}

func (ShapeContent) isContent() {}
func (ImageContent) isContent() {}
func (TextContent) isContent()  {}
func (*Layer) isContent()       {}

// FillAttributes are the resolved fill properties.
type FillAttributes struct {
	Paint Paint
	Rule  svgicon.FillRule
}

// StrokeAttributes are the resolved stroke properties.
// A zero Width always comes with a None paint.
type StrokeAttributes struct {
	Paint      Paint
	Width      float64
	Cap        svgicon.CapMode
	Join       svgicon.JoinMode
	MiterLimit float64
	Dash       []float64 // nil for a solid stroke
	DashOffset float64
}

// ShapeContent is a shape filled then stroked.
type ShapeContent struct {
	Shape  Shape
	Fill   FillAttributes
	Stroke StrokeAttributes
}

// Image is a decoded raster image.
type Image struct {
	Img image.Image
}

// Size returns the pixel dimensions of the image.
func (img *Image) Size() (w, h int) {
	b := img.Img.Bounds()
	return b.Dx(), b.Dy()
}

// ImageContent draws Image scaled into Rect.
type ImageContent struct {
	Image *Image
	Rect  svgpath.Rect
}

// TextContent is a run of text, anchored at (X, Y) on the baseline.
// Shaping and glyph outlines are left to the backends.
type TextContent struct {
	Text       string
	X, Y       float64
	FontFamily string
	FontSize   float64
	Anchor     svgicon.TextAnchor
	Fill       Paint
}

// Bounds returns the bounding box of the contents of l,
// in the coordinates of l (that is, before l.Transform is applied).
// Text contents are ignored.
func (l *Layer) Bounds() svgpath.Rect {
	type item struct {
		layer *Layer
		m     svgpath.Matrix2D
	}
	var (
		out   svgpath.Rect
		stack = []item{{l, svgpath.Identity}}
	)
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range it.layer.Contents {
			switch c := c.(type) {
			case ShapeContent:
				out = out.Union(c.Shape.Path().Transform(it.m).Bounds())
			case ImageContent:
				out = out.Union(c.Rect.Transform(it.m))
			case *Layer:
				stack = append(stack, item{c, it.m.Mult(c.Transform)})
			}
		}
	}
	return out
}

// Walk calls fn for each layer of the graph rooted at l, in
// depth first order, l included.
func (l *Layer) Walk(fn func(*Layer)) {
	stack := []*Layer{l}
	for len(stack) > 0 {
		la := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(la)
		for i := len(la.Contents) - 1; i >= 0; i-- {
			if sub, ok := la.Contents[i].(*Layer); ok {
				stack = append(stack, sub)
			}
		}
	}
}

// inlineSimpleLayers replaces the simple layers nested in l by their contents,
// and removes empty simple layers.
func inlineSimpleLayers(l *Layer) {
	// collect in pre-order, process in post-order
	var all []*Layer
	l.Walk(func(la *Layer) { all = append(all, la) })
	for i := len(all) - 1; i >= 0; i-- {
		la := all[i]
		hasSimple := false
		for _, c := range la.Contents {
			if sub, ok := c.(*Layer); ok && sub.IsSimple() {
				hasSimple = true
				break
			}
		}
		if !hasSimple {
			continue
		}
		contents := make([]Content, 0, len(la.Contents))
		for _, c := range la.Contents {
			if sub, ok := c.(*Layer); ok && sub.IsSimple() {
				contents = append(contents, sub.Contents...)
			} else {
				contents = append(contents, c)
			}
		}
		la.Contents = contents
	}
}
