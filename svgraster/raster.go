// Implements a raster backend to render SVG images,
// by wrapping rasterx.
package svgraster

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/benoitkugler/svglayer/svgdraw"
	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpath"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

var _ svgdraw.Renderer[svglayer.Paint, svgpath.Path, svgpath.Matrix2D, image.Image] = (*Renderer)(nil) // assert interface conformance

// Provider keeps the scene values: paths and gradients are
// converted when drawn, once the current transform is known.
type Provider struct{}

func (Provider) Color(p svglayer.Paint) svglayer.Paint         { return p }
func (Provider) Path(p svgpath.Path) svgpath.Path              { return p }
func (Provider) Transform(m svgpath.Matrix2D) svgpath.Matrix2D { return m }
func (Provider) Image(img *svglayer.Image) image.Image         { return img.Img }

// Options configures RasterSVGIconToImage.
type Options struct {
	svglayer.Options
	ErrorMode svgicon.ErrorMode
	// Outliner, if not nil, is used to draw text.
	Outliner svgdraw.GlyphOutliner
}

// RasterSVGIconToImage uses a ScannerGV instance to render the
// icon into an image and returns it. A nil opts uses the document size
// and ignores the parsing errors.
func RasterSVGIconToImage(icon io.Reader, opts *Options) (*image.RGBA, error) {
	if opts == nil {
		opts = &Options{}
	}
	doc, err := svgicon.ReadIconStream(icon, opts.ErrorMode)
	if err != nil {
		return nil, err
	}
	w, h := opts.OutputSize(doc)
	img := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(w)), int(math.Ceil(h))))
	if img.Rect.Empty() {
		return img, nil
	}
	Draw(img, svglayer.Compile(doc, opts.Options), svgdraw.Options{Outliner: opts.Outliner})
	return img, nil
}

// Draw draws the scene graph l onto img.
func Draw(img *image.RGBA, l *svglayer.Layer, opts svgdraw.Options) {
	svgdraw.Draw[svglayer.Paint, svgpath.Path, svgpath.Matrix2D, image.Image](l, Provider{}, NewRenderer(img), opts)
}

// state is the graphic state saved by PushState.
type state struct {
	ctm  svgpath.Matrix2D
	clip *image.Alpha // nil for no clipping

	fillPaint   svglayer.Paint
	strokePaint svglayer.Paint

	lineWidth  float64
	miterLimit float64
	cap        svgicon.CapMode
	join       svgicon.JoinMode
	dashes     []float64
	dashOffset float64

	alpha float64
	blend svgicon.BlendMode
}

// target is a drawing surface: the output image or a transparency layer.
type target struct {
	img    *image.RGBA
	filler *rasterx.Filler // we use separated instance
	dasher *rasterx.Dasher // to avoid shared state

	// for transparency layers
	alpha float64
	saved state
}

func newTarget(img *image.RGBA) *target {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	return &target{
		img:    img,
		filler: rasterx.NewFiller(w, h, rasterx.NewScannerGV(w, h, img, img.Rect)),
		dasher: rasterx.NewDasher(w, h, rasterx.NewScannerGV(w, h, img, img.Rect)),
	}
}

// Renderer draws on an *image.RGBA. Transparency layers and clipped
// or blended drawings go through offscreen images.
type Renderer struct {
	targets []*target // targets[0] is the output
	free    []*target
	scratch *target

	state  state
	states []state
}

// NewRenderer returns a renderer drawing on img, with default values.
func NewRenderer(img *image.RGBA) *Renderer {
	return &Renderer{
		targets: []*target{newTarget(img)},
		state: state{
			ctm:        svgpath.Identity,
			lineWidth:  1,
			miterLimit: 4,
			alpha:      1,
		},
	}
}

func (rd *Renderer) top() *target { return rd.targets[len(rd.targets)-1] }

// offscreen returns a cleared target, the size of the output.
func (rd *Renderer) offscreen() *target {
	if n := len(rd.free); n != 0 {
		t := rd.free[n-1]
		rd.free = rd.free[:n-1]
		return t
	}
	return newTarget(image.NewRGBA(rd.targets[0].img.Rect))
}

func (rd *Renderer) release(t *target) {
	clear(t.img.Pix)
	rd.free = append(rd.free, t)
}

// draw runs fn on the current target, or on an offscreen one if
// the clip or the blend mode require a separate composition.
func (rd *Renderer) draw(fn func(t *target)) {
	if rd.state.clip == nil && rd.state.blend == svgicon.BlendNormal {
		fn(rd.top())
		return
	}
	if rd.scratch == nil {
		rd.scratch = rd.offscreen()
	}
	fn(rd.scratch)
	composite(rd.top().img, rd.scratch.img, rd.state.clip, 1, rd.state.blend)
	clear(rd.scratch.img.Pix)
}

func (rd *Renderer) PushState() { rd.states = append(rd.states, rd.state) }

func (rd *Renderer) PopState() {
	if n := len(rd.states); n != 0 {
		rd.state = rd.states[n-1]
		rd.states = rd.states[:n-1]
	}
}

func (rd *Renderer) PushTransparencyLayer(alpha float64) {
	t := rd.offscreen()
	t.alpha = alpha
	t.saved = rd.state
	rd.targets = append(rd.targets, t)
	rd.state.alpha, rd.state.blend = 1, svgicon.BlendNormal
}

func (rd *Renderer) PopTransparencyLayer() {
	if len(rd.targets) <= 1 {
		return
	}
	t := rd.top()
	rd.targets = rd.targets[:len(rd.targets)-1]
	// the contents are already clipped
	composite(rd.top().img, t.img, nil, t.alpha, t.saved.blend)
	rd.state.alpha, rd.state.blend = t.saved.alpha, t.saved.blend
	rd.release(t)
}

func (rd *Renderer) ConcatTransform(m svgpath.Matrix2D) { rd.state.ctm = rd.state.ctm.Mult(m) }
func (rd *Renderer) Translate(x, y float64)             { rd.state.ctm = rd.state.ctm.Translate(x, y) }
func (rd *Renderer) Rotate(angle float64)               { rd.state.ctm = rd.state.ctm.Rotate(angle) }
func (rd *Renderer) Scale(x, y float64)                 { rd.state.ctm = rd.state.ctm.Scale(x, y) }

func (rd *Renderer) SetFillColor(c svglayer.Paint)       { rd.state.fillPaint = c }
func (rd *Renderer) SetStrokeColor(c svglayer.Paint)     { rd.state.strokePaint = c }
func (rd *Renderer) SetLineWidth(w float64)              { rd.state.lineWidth = w }
func (rd *Renderer) SetLineCap(c svgicon.CapMode)        { rd.state.cap = c }
func (rd *Renderer) SetLineJoin(j svgicon.JoinMode)      { rd.state.join = j }
func (rd *Renderer) SetMiterLimit(limit float64)         { rd.state.miterLimit = limit }
func (rd *Renderer) SetAlpha(alpha float64)              { rd.state.alpha = alpha }
func (rd *Renderer) SetBlendMode(mode svgicon.BlendMode) { rd.state.blend = mode }
func (rd *Renderer) SetDash(dashes []float64, offset float64) {
	rd.state.dashes, rd.state.dashOffset = dashes, offset
}

func toFixed(p svgpath.Point) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(p.X * 64), Y: fixed.Int26_6(p.Y * 64)}
}

// adder is implemented by rasterx.Filler and rasterx.Dasher
type adder interface {
	Start(a fixed.Point26_6)
	Line(b fixed.Point26_6)
	CubeBezier(b, c, d fixed.Point26_6)
	Stop(closeLoop bool)
}

func addPath(a adder, p svgpath.Path) {
	open := false
	for _, op := range p {
		switch op := op.(type) {
		case svgpath.MoveTo:
			if open {
				a.Stop(false)
			}
			a.Start(toFixed(svgpath.Point(op)))
			open = true
		case svgpath.LineTo:
			a.Line(toFixed(svgpath.Point(op)))
		case svgpath.CubicTo:
			a.CubeBezier(toFixed(op[0]), toFixed(op[1]), toFixed(op[2]))
		case svgpath.Close:
			if open {
				a.Stop(true)
				open = false
			}
		}
	}
	if open {
		a.Stop(false)
	}
}

func (rd *Renderer) SetClipPath(p svgpath.Path, rule svgicon.FillRule) {
	bounds := rd.targets[0].img.Rect
	w, h := bounds.Dx(), bounds.Dy()
	mask := image.NewAlpha(bounds)
	filler := rasterx.NewFiller(w, h, rasterx.NewScannerGV(w, h, mask, bounds))
	filler.SetWinding(rule == svgicon.NonZero)
	filler.SetColor(color.Opaque)
	addPath(filler, p.Transform(rd.state.ctm))
	filler.Draw()

	if old := rd.state.clip; old != nil {
		for i, v := range old.Pix {
			mask.Pix[i] = uint8(uint16(mask.Pix[i]) * uint16(v) / 255)
		}
	}
	rd.state.clip = mask
}

func (rd *Renderer) Fill(p svgpath.Path, rule svgicon.FillRule) {
	paint := rd.state.fillPaint
	if svglayer.IsNone(paint) {
		return
	}
	rd.draw(func(t *target) {
		t.filler.SetWinding(rule == svgicon.NonZero)
		rd.setColor(t.filler, paint)
		addPath(t.filler, p.Transform(rd.state.ctm))
		t.filler.Draw()
		t.filler.Clear()
	})
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgicon.Round:     rasterx.Round,
		svgicon.Bevel:     rasterx.Bevel,
		svgicon.Miter:     rasterx.Miter,
		svgicon.MiterClip: rasterx.MiterClip,
		svgicon.Arc:       rasterx.Arc,
		svgicon.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgicon.ButtCap:   rasterx.ButtCap,
		svgicon.SquareCap: rasterx.SquareCap,
		svgicon.RoundCap:  rasterx.RoundCap,
	}

	spreadToSpread = [...]rasterx.SpreadMethod{
		svgpath.PadSpread:     rasterx.PadSpread,
		svgpath.ReflectSpread: rasterx.ReflectSpread,
		svgpath.RepeatSpread:  rasterx.RepeatSpread,
	}
)

func (rd *Renderer) Stroke(p svgpath.Path) {
	st := rd.state
	if svglayer.IsNone(st.strokePaint) || st.lineWidth <= 0 {
		return
	}
	// the path is transformed before stroking: scale
	// the lengths accordingly
	scale := st.ctm.Scaling()
	var dashes []float64
	if len(st.dashes) != 0 {
		dashes = make([]float64, len(st.dashes))
		for i, d := range st.dashes {
			dashes[i] = d * scale
		}
	}
	rd.draw(func(t *target) {
		t.dasher.SetWinding(true)
		t.dasher.SetStroke(
			fixed.Int26_6(st.lineWidth*scale*64), fixed.Int26_6(st.miterLimit*64),
			capToFunc[st.cap], capToFunc[st.cap], rasterx.RoundGap,
			joinToJoin[st.join], dashes, st.dashOffset*scale,
		)
		rd.setColor(t.dasher, st.strokePaint)
		addPath(t.dasher, p.Transform(st.ctm))
		t.dasher.Draw()
		t.dasher.Clear()
	})
}

func (rd *Renderer) DrawImage(img image.Image, rect svgpath.Rect) {
	if img == nil || rect.IsEmpty() {
		return
	}
	b := img.Bounds()
	if b.Empty() {
		return
	}
	m := rd.state.ctm.Translate(rect.X, rect.Y).
		Scale(rect.W/float64(b.Dx()), rect.H/float64(b.Dy())).
		Translate(-float64(b.Min.X), -float64(b.Min.Y))

	if rd.scratch == nil {
		rd.scratch = rd.offscreen()
	}
	draw.BiLinear.Transform(rd.scratch.img, f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}, img, b, draw.Over, nil)
	composite(rd.top().img, rd.scratch.img, rd.state.clip, rd.state.alpha, rd.state.blend)
	clear(rd.scratch.img.Pix)
}

// colorSetter is implemented by the rasterx scanners
type colorSetter interface {
	SetColor(color interface{})
}

// setColor resolves the paint, applying the global alpha.
func (rd *Renderer) setColor(dst colorSetter, paint svglayer.Paint) {
	switch paint := paint.(type) {
	case svglayer.Color:
		c := paint.NRGBA()
		c.A = 255
		dst.SetColor(rasterx.ApplyOpacity(c, paint.A*rd.state.alpha))
	case *svglayer.Gradient:
		g := toRasterxGradient(paint, rd.state.ctm)
		dst.SetColor(g.GetColorFunction(rd.state.alpha))
	}
}

// toRasterxGradient expresses grad in device space.
func toRasterxGradient(grad *svglayer.Gradient, ctm svgpath.Matrix2D) rasterx.Gradient {
	var points [5]float64
	isRadial := grad.Kind == svglayer.Radial
	if isRadial {
		points = [5]float64{grad.Center.X, grad.Center.Y, grad.Focus.X, grad.Focus.Y, grad.R} // in rasterx fr is ignored
	} else {
		points = [5]float64{grad.Start.X, grad.Start.Y, grad.End.X, grad.End.Y}
	}
	stops := make([]rasterx.GradStop, len(grad.Stops))
	for i, s := range grad.Stops {
		c := s.Color.NRGBA()
		c.A = 255
		stops[i] = rasterx.GradStop{StopColor: c, Offset: s.Offset, Opacity: s.Color.A}
	}
	m := ctm.Mult(grad.Transform)
	out := rasterx.Gradient{
		Points:   points,
		Stops:    stops,
		Matrix:   rasterx.Matrix2D{A: m.A, B: m.B, C: m.C, D: m.D, E: m.E, F: m.F},
		Spread:   spreadToSpread[grad.Spread],
		Units:    rasterx.UserSpaceOnUse,
		IsRadial: isRadial,
	}
	// unit bounds, so that Matrix alone maps the gradient space
	out.Bounds.W, out.Bounds.H = 1, 1
	return out
}
