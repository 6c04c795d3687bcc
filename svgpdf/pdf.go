// Implements a PDF backend to render SVG images,
// by writing content streams with github.com/benoitkugler/pdf.
package svgpdf

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/benoitkugler/pdf/contentstream"
	"github.com/benoitkugler/pdf/model"
	"github.com/benoitkugler/svglayer/svgdraw"
	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpath"
)

var _ svgdraw.Renderer[svglayer.Paint, svgpath.Path, model.Matrix, image.Image] = (*Renderer)(nil) // assert interface conformance

// Provider converts the transforms to PDF matrices.
type Provider struct{}

func (Provider) Color(p svglayer.Paint) svglayer.Paint { return p }
func (Provider) Path(p svgpath.Path) svgpath.Path      { return p }
func (Provider) Image(img *svglayer.Image) image.Image { return img.Img }

func (Provider) Transform(m svgpath.Matrix2D) model.Matrix {
	return model.Matrix{m.A, m.B, m.C, m.D, m.E, m.F}
}

// Options configures RenderSVGIconToPDF.
type Options struct {
	svglayer.Options
	ErrorMode svgicon.ErrorMode
	// Outliner, if not nil, is used to draw text.
	Outliner svgdraw.GlyphOutliner
}

// RenderSVGIconToPDF reads the given icon and renders it
// into the given file, on a page the size of the icon.
// A nil opts uses the document size and ignores the parsing errors.
func RenderSVGIconToPDF(icon io.Reader, pdfName string, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	doc, err := svgicon.ReadIconStream(icon, opts.ErrorMode)
	if err != nil {
		return err
	}
	w, h := opts.OutputSize(doc)
	page := contentstream.NewAppearance(w, h)
	Draw(&page, h, svglayer.Compile(doc, opts.Options), svgdraw.Options{Outliner: opts.Outliner})

	po := new(model.PageObject)
	page.ApplyToPageObject(po, true)
	var out model.Document
	out.Catalog.Pages.Kids = append(out.Catalog.Pages.Kids, po)
	return out.WriteFile(pdfName, nil)
}

// Draw draws the scene graph l onto cs. Since the PDF y axis
// points up, the drawing is flipped along an horizontal line
// at height/2.
func Draw(cs *contentstream.Appearance, height float64, l *svglayer.Layer, opts svgdraw.Options) {
	cs.Ops(
		contentstream.OpSave{},
		contentstream.OpConcat{Matrix: model.Matrix{1, 0, 0, -1, 0, height}},
	)
	svgdraw.Draw[svglayer.Paint, svgpath.Path, model.Matrix, image.Image](l, Provider{}, NewRenderer(cs), opts)
	cs.Ops(contentstream.OpRestore{})
}

// gsKey identifies a cached ExtGState
type gsKey struct {
	fill, stroke float64
	blend        svgicon.BlendMode
}

// state is the part of the graphic state the content
// stream cannot express directly.
type state struct {
	fillPaint   svglayer.Paint
	strokePaint svglayer.Paint

	alpha float64
	blend svgicon.BlendMode

	// opacity of the enclosing groups
	groupAlpha float64
	groupBlend svgicon.BlendMode

	// in effect in the content stream, restored by Q
	gs          *model.GraphicState
	fillColor   contentstream.OpSetFillRGBColor
	strokeColor contentstream.OpSetStrokeRGBColor
}

// Renderer writes PDF operations into a content stream.
//
// PDF transparency groups would require form XObjects: instead,
// the group opacity and blend mode are applied to every drawing
// of the group, which differs from the isolated composition when
// drawings overlap. Masks are not supported: their content is
// dropped and the masked drawings are kept. Images are skipped.
type Renderer struct {
	pdf *contentstream.Appearance

	states    map[gsKey]*model.GraphicState
	state     state
	saved     []state
	groups    []state // saved by PushTransparencyLayer
	discarded int     // depth of the ignored mask groups
}

// NewRenderer return a renderer which will
// write to the given `cs`.
func NewRenderer(cs *contentstream.Appearance) *Renderer {
	return &Renderer{
		pdf:    cs,
		states: make(map[gsKey]*model.GraphicState),
		state:  state{alpha: 1, groupAlpha: 1},
	}
}

// skip returns true inside a mask group
func (r *Renderer) skip() bool { return r.discarded != 0 }

func (r *Renderer) PushState() {
	r.saved = append(r.saved, r.state)
	if !r.skip() {
		r.pdf.Ops(contentstream.OpSave{})
	}
}

func (r *Renderer) PopState() {
	n := len(r.saved)
	if n == 0 {
		return
	}
	r.state = r.saved[n-1]
	r.saved = r.saved[:n-1]
	if !r.skip() {
		r.pdf.Ops(contentstream.OpRestore{})
	}
}

func (r *Renderer) PushTransparencyLayer(alpha float64) {
	r.groups = append(r.groups, r.state)
	if r.skip() || r.state.blend == svgicon.BlendDestinationIn {
		if r.discarded == 0 {
			svgicon.Logger().Debug("svgpdf: mask not supported, ignoring it")
		}
		r.discarded++
		return
	}
	r.pdf.Ops(contentstream.OpSave{})
	r.state.groupAlpha *= r.state.alpha * alpha
	if r.state.blend != svgicon.BlendNormal {
		r.state.groupBlend = r.state.blend
	}
	r.state.alpha, r.state.blend = 1, svgicon.BlendNormal
}

func (r *Renderer) PopTransparencyLayer() {
	n := len(r.groups)
	if n == 0 {
		return
	}
	saved := r.groups[n-1]
	r.groups = r.groups[:n-1]
	if r.skip() {
		r.discarded--
	} else {
		r.pdf.Ops(contentstream.OpRestore{})
		r.state.gs = saved.gs
		r.state.fillColor, r.state.strokeColor = saved.fillColor, saved.strokeColor
	}
	r.state.alpha, r.state.blend = saved.alpha, saved.blend
	r.state.groupAlpha, r.state.groupBlend = saved.groupAlpha, saved.groupBlend
}

func (r *Renderer) concat(m model.Matrix) {
	if !r.skip() {
		r.pdf.Ops(contentstream.OpConcat{Matrix: m})
	}
}

func (r *Renderer) ConcatTransform(m model.Matrix) { r.concat(m) }
func (r *Renderer) Translate(x, y float64)         { r.concat(model.Matrix{1, 0, 0, 1, x, y}) }
func (r *Renderer) Scale(x, y float64)             { r.concat(model.Matrix{x, 0, 0, y, 0, 0}) }

func (r *Renderer) Rotate(angle float64) {
	sin, cos := math.Sincos(angle)
	r.concat(model.Matrix{cos, sin, -sin, cos, 0, 0})
}

func (r *Renderer) SetFillColor(c svglayer.Paint)       { r.state.fillPaint = c }
func (r *Renderer) SetStrokeColor(c svglayer.Paint)     { r.state.strokePaint = c }
func (r *Renderer) SetAlpha(alpha float64)              { r.state.alpha = alpha }
func (r *Renderer) SetBlendMode(mode svgicon.BlendMode) { r.state.blend = mode }

func (r *Renderer) SetLineWidth(w float64) {
	if !r.skip() {
		r.pdf.Ops(contentstream.OpSetLineWidth{W: w})
	}
}

func (r *Renderer) SetLineCap(c svgicon.CapMode) {
	if !r.skip() {
		r.pdf.Ops(contentstream.OpSetLineCap{Style: capStyle(c)})
	}
}

func (r *Renderer) SetLineJoin(j svgicon.JoinMode) {
	if !r.skip() {
		r.pdf.Ops(contentstream.OpSetLineJoin{Style: joinStyle(j)})
	}
}

func (r *Renderer) SetMiterLimit(limit float64) {
	if !r.skip() {
		r.pdf.Ops(contentstream.OpSetMiterLimit{Limit: limit})
	}
}

func (r *Renderer) SetDash(dashes []float64, offset float64) {
	if !r.skip() {
		r.pdf.Ops(contentstream.OpSetDash{Dash: model.DashPattern{Array: dashes, Phase: offset}})
	}
}

func capStyle(c svgicon.CapMode) uint8 {
	switch c {
	case svgicon.RoundCap:
		return 1
	case svgicon.SquareCap:
		return 2
	default:
		return 0
	}
}

func joinStyle(j svgicon.JoinMode) uint8 {
	switch j {
	case svgicon.Round, svgicon.Arc, svgicon.ArcClip:
		return 1
	case svgicon.Bevel:
		return 2
	default:
		return 0
	}
}

// writePath adds the path construction operators.
func (r *Renderer) writePath(p svgpath.Path) {
	for _, op := range p {
		switch op := op.(type) {
		case svgpath.MoveTo:
			r.pdf.Ops(contentstream.OpMoveTo{X: op.X, Y: op.Y})
		case svgpath.LineTo:
			r.pdf.Ops(contentstream.OpLineTo{X: op.X, Y: op.Y})
		case svgpath.CubicTo:
			r.pdf.Ops(contentstream.OpCubicTo{
				X1: op[0].X, Y1: op[0].Y,
				X2: op[1].X, Y2: op[1].Y,
				X3: op[2].X, Y3: op[2].Y,
			})
		case svgpath.Close:
			r.pdf.Ops(contentstream.OpClosePath{})
		}
	}
}

func (r *Renderer) SetClipPath(p svgpath.Path, rule svgicon.FillRule) {
	if r.skip() {
		return
	}
	r.writePath(p)
	if rule == svgicon.EvenOdd {
		r.pdf.Ops(contentstream.OpEOClip{})
	} else {
		r.pdf.Ops(contentstream.OpClip{})
	}
	r.pdf.Ops(contentstream.OpEndPath{})
}

// solid returns the opaque color and the alpha of paint.
// Gradients are approximated by their mean color.
func solid(paint svglayer.Paint) (color.NRGBA, float64, bool) {
	var c svglayer.Color
	switch paint := paint.(type) {
	case svglayer.Color:
		c = paint
	case *svglayer.Gradient:
		svgicon.Logger().Debug("svgpdf: gradient approximated by its mean color")
		c = paint.Average()
	default:
		return color.NRGBA{}, 0, false
	}
	if c.IsNone() {
		return color.NRGBA{}, 0, false
	}
	out := c.NRGBA()
	out.A = 255
	return out, c.A, true
}

// setExtGState selects the graphic state with the given opacities,
// which are cached to avoid duplicate resources.
func (r *Renderer) setExtGState(fill, stroke float64) {
	key := gsKey{fill: fill, stroke: stroke, blend: r.state.blend}
	if key.blend == svgicon.BlendNormal {
		key.blend = r.state.groupBlend
	}
	gs, ok := r.states[key]
	if !ok {
		gs = &model.GraphicState{
			Ca: model.ObjFloat(fill),
			CA: model.ObjFloat(stroke),
			BM: []model.Name{blendName(key.blend)},
		}
		r.states[key] = gs
	}
	if gs == r.state.gs {
		return
	}
	name := r.pdf.AddExtGState(gs)
	r.pdf.Ops(contentstream.OpSetExtGState{Dict: name})
	r.state.gs = gs
}

var blendNames = [...]model.Name{
	svgicon.BlendNormal:   "Normal",
	svgicon.BlendMultiply: "Multiply",
	svgicon.BlendScreen:   "Screen",
	svgicon.BlendOverlay:  "Overlay",
	svgicon.BlendDarken:   "Darken",
	svgicon.BlendLighten:  "Lighten",
}

func blendName(mode svgicon.BlendMode) model.Name {
	if int(mode) < len(blendNames) {
		return blendNames[mode]
	}
	return "Normal"
}

// rgb returns the PDF components of an opaque color.
func rgb(c color.NRGBA) contentstream.OpSetFillRGBColor {
	return contentstream.OpSetFillRGBColor{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func (r *Renderer) opacity() float64 { return r.state.alpha * r.state.groupAlpha }

func (r *Renderer) Fill(p svgpath.Path, rule svgicon.FillRule) {
	if r.skip() {
		return
	}
	c, a, ok := solid(r.state.fillPaint)
	if !ok {
		return
	}
	if op := contentstream.OpSetFillRGBColor(rgb(c)); op != r.state.fillColor {
		r.pdf.Ops(op)
		r.state.fillColor = op
	}
	r.setExtGState(a*r.opacity(), 1)
	r.writePath(p)
	if rule == svgicon.EvenOdd {
		r.pdf.Ops(contentstream.OpEOFill{})
	} else {
		r.pdf.Ops(contentstream.OpFill{})
	}
}

func (r *Renderer) Stroke(p svgpath.Path) {
	if r.skip() {
		return
	}
	c, a, ok := solid(r.state.strokePaint)
	if !ok {
		return
	}
	if op := contentstream.OpSetStrokeRGBColor(rgb(c)); op != r.state.strokeColor {
		r.pdf.Ops(op)
		r.state.strokeColor = op
	}
	r.setExtGState(1, a*r.opacity())
	r.writePath(p)
	r.pdf.Ops(contentstream.OpStroke{})
}

func (r *Renderer) DrawImage(img image.Image, rect svgpath.Rect) {
	if !r.skip() {
		svgicon.Logger().Debug("svgpdf: images not supported, skipping")
	}
}
