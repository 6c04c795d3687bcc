// Package svgcanvas renders SVG images on a gg 2D context,
// mapping transparency groups to native gg layers.
package svgcanvas

import (
	"image"
	"io"
	"math"

	"github.com/benoitkugler/svglayer/svgdraw"
	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpath"
	"github.com/gogpu/gg"
)

var _ svgdraw.Renderer[svglayer.Paint, svgpath.Path, gg.Matrix, *gg.ImageBuf] = (*Renderer)(nil)

// Provider converts transforms and images to their gg form.
type Provider struct{}

func (Provider) Color(p svglayer.Paint) svglayer.Paint { return p }
func (Provider) Path(p svgpath.Path) svgpath.Path      { return p }

// Transform maps x' = a x + c y + e, y' = b x + d y + f
// to the gg row-major layout.
func (Provider) Transform(m svgpath.Matrix2D) gg.Matrix {
	return gg.Matrix{A: m.A, B: m.C, C: m.E, D: m.B, E: m.D, F: m.F}
}

func (Provider) Image(img *svglayer.Image) *gg.ImageBuf {
	if img.Img == nil {
		return nil
	}
	return gg.ImageBufFromImage(img.Img)
}

// Options configures RenderSVGIcon.
type Options struct {
	svglayer.Options
	ErrorMode svgicon.ErrorMode
	// Outliner, if not nil, is used to draw text.
	Outliner svgdraw.GlyphOutliner
}

// RenderSVGIcon reads the given icon and draws it on a new context,
// whose image is returned. A nil opts uses the document size and
// ignores the parsing errors.
func RenderSVGIcon(icon io.Reader, opts *Options) (image.Image, error) {
	if opts == nil {
		opts = &Options{}
	}
	doc, err := svgicon.ReadIconStream(icon, opts.ErrorMode)
	if err != nil {
		return nil, err
	}
	w, h := opts.OutputSize(doc)
	iw, ih := int(math.Ceil(w)), int(math.Ceil(h))
	if iw <= 0 || ih <= 0 {
		return image.NewRGBA(image.Rectangle{}), nil
	}
	dc := gg.NewContext(iw, ih)
	defer dc.Close()
	Draw(dc, svglayer.Compile(doc, opts.Options), svgdraw.Options{Outliner: opts.Outliner})
	return dc.Image(), nil
}

// Draw draws the scene graph l on dc.
func Draw(dc *gg.Context, l *svglayer.Layer, opts svgdraw.Options) {
	svgdraw.Draw[svglayer.Paint, svgpath.Path, gg.Matrix, *gg.ImageBuf](l, Provider{}, NewRenderer(dc), opts)
}

// state holds the attributes not saved by gg.Context.Push,
// which are applied before each drawing.
type state struct {
	ctm svgpath.Matrix2D // used to map gradients to device space

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

// Renderer draws on a gg.Context.
//
// Masks are not supported: their content is dropped and the
// masked drawings are kept. The darken and lighten blend modes
// fall back to normal.
type Renderer struct {
	dc *gg.Context

	state     state
	saved     []state
	groups    []state
	discarded int // depth of the ignored mask groups
}

// NewRenderer returns a renderer drawing on dc.
func NewRenderer(dc *gg.Context) *Renderer {
	return &Renderer{
		dc: dc,
		state: state{
			ctm:        svgpath.Identity,
			lineWidth:  1,
			miterLimit: 4,
			alpha:      1,
		},
	}
}

func (r *Renderer) skip() bool { return r.discarded != 0 }

func (r *Renderer) PushState() {
	r.saved = append(r.saved, r.state)
	r.dc.Push()
}

func (r *Renderer) PopState() {
	n := len(r.saved)
	if n == 0 {
		return
	}
	r.state = r.saved[n-1]
	r.saved = r.saved[:n-1]
	r.dc.Pop()
}

func (r *Renderer) PushTransparencyLayer(alpha float64) {
	r.groups = append(r.groups, r.state)
	if r.skip() || r.state.blend == svgicon.BlendDestinationIn {
		if r.discarded == 0 {
			svgicon.Logger().Debug("svgcanvas: mask not supported, ignoring it")
		}
		r.discarded++
		return
	}
	r.dc.PushLayer(toBlendMode(r.state.blend), alpha)
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
		r.dc.PopLayer()
	}
	r.state.alpha, r.state.blend = saved.alpha, saved.blend
}

func toBlendMode(mode svgicon.BlendMode) gg.BlendMode {
	switch mode {
	case svgicon.BlendMultiply:
		return gg.BlendMultiply
	case svgicon.BlendScreen:
		return gg.BlendScreen
	case svgicon.BlendOverlay:
		return gg.BlendOverlay
	case svgicon.BlendNormal:
		return gg.BlendNormal
	}
	svgicon.Logger().Debug("svgcanvas: unsupported blend mode", "mode", mode)
	return gg.BlendNormal
}

func (r *Renderer) ConcatTransform(m gg.Matrix) {
	r.state.ctm = r.state.ctm.Mult(svgpath.Matrix2D{A: m.A, B: m.D, C: m.B, D: m.E, E: m.C, F: m.F})
	r.dc.Transform(m)
}

func (r *Renderer) Translate(x, y float64) {
	r.state.ctm = r.state.ctm.Translate(x, y)
	r.dc.Translate(x, y)
}

func (r *Renderer) Rotate(angle float64) {
	r.state.ctm = r.state.ctm.Rotate(angle)
	r.dc.Rotate(angle)
}

func (r *Renderer) Scale(x, y float64) {
	r.state.ctm = r.state.ctm.Scale(x, y)
	r.dc.Scale(x, y)
}

func (r *Renderer) SetFillColor(c svglayer.Paint)       { r.state.fillPaint = c }
func (r *Renderer) SetStrokeColor(c svglayer.Paint)     { r.state.strokePaint = c }
func (r *Renderer) SetLineWidth(w float64)              { r.state.lineWidth = w }
func (r *Renderer) SetLineCap(c svgicon.CapMode)        { r.state.cap = c }
func (r *Renderer) SetLineJoin(j svgicon.JoinMode)      { r.state.join = j }
func (r *Renderer) SetMiterLimit(limit float64)         { r.state.miterLimit = limit }
func (r *Renderer) SetAlpha(alpha float64)              { r.state.alpha = alpha }
func (r *Renderer) SetBlendMode(mode svgicon.BlendMode) { r.state.blend = mode }
func (r *Renderer) SetDash(dashes []float64, offset float64) {
	r.state.dashes, r.state.dashOffset = dashes, offset
}

// setPath replaces the current path of the context.
func (r *Renderer) setPath(p svgpath.Path) {
	r.dc.ClearPath()
	for _, op := range p {
		switch op := op.(type) {
		case svgpath.MoveTo:
			r.dc.MoveTo(op.X, op.Y)
		case svgpath.LineTo:
			r.dc.LineTo(op.X, op.Y)
		case svgpath.CubicTo:
			r.dc.CubicTo(op[0].X, op[0].Y, op[1].X, op[1].Y, op[2].X, op[2].Y)
		case svgpath.Close:
			r.dc.ClosePath()
		}
	}
}

func (r *Renderer) SetClipPath(p svgpath.Path, rule svgicon.FillRule) {
	if r.skip() {
		return
	}
	if rule == svgicon.EvenOdd {
		svgicon.Logger().Debug("svgcanvas: even-odd clip rule approximated by non-zero")
	}
	r.setPath(p)
	r.dc.Clip()
}

func (r *Renderer) Fill(p svgpath.Path, rule svgicon.FillRule) {
	if r.skip() {
		return
	}
	brush := r.brush(r.state.fillPaint)
	if brush == nil {
		return
	}
	r.dc.SetFillBrush(brush)
	if rule == svgicon.EvenOdd {
		r.dc.SetFillRule(gg.FillRuleEvenOdd)
	} else {
		r.dc.SetFillRule(gg.FillRuleNonZero)
	}
	r.setPath(p)
	if err := r.dc.Fill(); err != nil {
		svgicon.Logger().Debug("svgcanvas: fill failed", "err", err)
	}
}

var (
	capToCap = [...]gg.LineCap{
		svgicon.ButtCap:   gg.LineCapButt,
		svgicon.SquareCap: gg.LineCapSquare,
		svgicon.RoundCap:  gg.LineCapRound,
	}

	joinToJoin = [...]gg.LineJoin{
		svgicon.Miter:     gg.LineJoinMiter,
		svgicon.Round:     gg.LineJoinRound,
		svgicon.Bevel:     gg.LineJoinBevel,
		svgicon.Arc:       gg.LineJoinRound,
		svgicon.MiterClip: gg.LineJoinMiter,
		svgicon.ArcClip:   gg.LineJoinRound,
	}
)

func (r *Renderer) Stroke(p svgpath.Path) {
	st := r.state
	if r.skip() || st.lineWidth <= 0 {
		return
	}
	brush := r.brush(st.strokePaint)
	if brush == nil {
		return
	}
	r.dc.SetStrokeBrush(brush)
	stroke := gg.DefaultStroke().
		WithWidth(st.lineWidth).
		WithCap(capToCap[st.cap]).
		WithJoin(joinToJoin[st.join]).
		WithMiterLimit(st.miterLimit)
	if len(st.dashes) != 0 {
		stroke = stroke.WithDashPattern(st.dashes...).WithDashOffset(st.dashOffset)
	}
	r.dc.SetStroke(stroke)
	r.setPath(p)
	if err := r.dc.Stroke(); err != nil {
		svgicon.Logger().Debug("svgcanvas: stroke failed", "err", err)
	}
}

func (r *Renderer) DrawImage(img *gg.ImageBuf, rect svgpath.Rect) {
	if r.skip() || img == nil || rect.IsEmpty() {
		return
	}
	r.dc.DrawImageEx(img, gg.DrawImageOptions{
		X:         rect.X,
		Y:         rect.Y,
		DstWidth:  rect.W,
		DstHeight: rect.H,
		Opacity:   r.state.alpha,
		BlendMode: gg.BlendNormal,
	})
}
