package svgdraw

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpath"
)

// TextProvider converts scene values to their textual form,
// for use with TextRenderer.
type TextProvider struct{}

func (TextProvider) Color(p svglayer.Paint) string {
	switch p := p.(type) {
	case svglayer.Color:
		if p.IsNone() {
			return "none"
		}
		c := p.NRGBA()
		return fmt.Sprintf("rgba(%d, %d, %d, %.3g)", c.R, c.G, c.B, p.A)
	case *svglayer.Gradient:
		kind := "linear"
		if p.Kind == svglayer.Radial {
			kind = "radial"
		}
		stops := make([]string, len(p.Stops))
		for i, s := range p.Stops {
			stops[i] = fmt.Sprintf("%s %g", TextProvider{}.Color(s.Color), s.Offset)
		}
		return fmt.Sprintf("%s-gradient(%s)", kind, strings.Join(stops, ", "))
	}
	return "none"
}

func (TextProvider) Path(p svgpath.Path) string { return p.ToSVGPath() }

func (TextProvider) Transform(m svgpath.Matrix2D) string { return m.String() }

func (TextProvider) Image(img *svglayer.Image) string {
	w, h := img.Size()
	return fmt.Sprintf("image(%dx%d)", w, h)
}

// TextRenderer writes one line per command, indented
// by the nesting of states and transparency layers.
type TextRenderer struct {
	Lines  []string
	indent int
}

var _ Renderer[string, string, string, string] = (*TextRenderer)(nil)

func (tr *TextRenderer) String() string { return strings.Join(tr.Lines, "\n") }

func (tr *TextRenderer) line(format string, args ...interface{}) {
	tr.Lines = append(tr.Lines, strings.Repeat("  ", tr.indent)+fmt.Sprintf(format, args...))
}

func (tr *TextRenderer) open(format string, args ...interface{}) {
	tr.line(format, args...)
	tr.indent++
}

func (tr *TextRenderer) close(format string, args ...interface{}) {
	if tr.indent > 0 {
		tr.indent--
	}
	tr.line(format, args...)
}

func (tr *TextRenderer) PushState()                      { tr.open("PushState()") }
func (tr *TextRenderer) PopState()                       { tr.close("PopState()") }
func (tr *TextRenderer) PushTransparencyLayer(a float64) { tr.open("PushTransparencyLayer(%g)", a) }
func (tr *TextRenderer) PopTransparencyLayer()           { tr.close("PopTransparencyLayer()") }
func (tr *TextRenderer) ConcatTransform(m string)        { tr.line("ConcatTransform(%s)", m) }
func (tr *TextRenderer) Translate(x, y float64)          { tr.line("Translate(%g, %g)", x, y) }
func (tr *TextRenderer) Rotate(angle float64)            { tr.line("Rotate(%g)", angle) }
func (tr *TextRenderer) Scale(x, y float64)              { tr.line("Scale(%g, %g)", x, y) }
func (tr *TextRenderer) SetFillColor(c string)           { tr.line("SetFillColor(%s)", c) }
func (tr *TextRenderer) SetStrokeColor(c string)         { tr.line("SetStrokeColor(%s)", c) }
func (tr *TextRenderer) SetLineWidth(w float64)          { tr.line("SetLineWidth(%g)", w) }
func (tr *TextRenderer) SetLineCap(c svgicon.CapMode)    { tr.line("SetLineCap(%s)", c) }
func (tr *TextRenderer) SetLineJoin(j svgicon.JoinMode)  { tr.line("SetLineJoin(%s)", j) }
func (tr *TextRenderer) SetMiterLimit(limit float64)     { tr.line("SetMiterLimit(%g)", limit) }
func (tr *TextRenderer) SetAlpha(a float64)              { tr.line("SetAlpha(%g)", a) }
func (tr *TextRenderer) SetBlendMode(m svgicon.BlendMode) {
	tr.line("SetBlendMode(%s)", m)
}

func (tr *TextRenderer) SetDash(dashes []float64, offset float64) {
	if dashes == nil {
		tr.line("SetDash(none)")
		return
	}
	tr.line("SetDash(%v, %g)", dashes, offset)
}

func (tr *TextRenderer) SetClipPath(p string, rule svgicon.FillRule) {
	tr.line("SetClipPath(%q, %s)", p, rule)
}

func (tr *TextRenderer) Stroke(p string)                      { tr.line("Stroke(%q)", p) }
func (tr *TextRenderer) Fill(p string, rule svgicon.FillRule) { tr.line("Fill(%q, %s)", p, rule) }
func (tr *TextRenderer) DrawImage(img string, r svgpath.Rect) {
	tr.line("DrawImage(%s, %g %g %g %g)", img, r.X, r.Y, r.W, r.H)
}

// Dump returns the textual listing of the commands drawing l.
func Dump(l *svglayer.Layer, opts Options) string {
	var tr TextRenderer
	Draw[string, string, string, string](l, TextProvider{}, &tr, opts)
	return tr.String()
}
