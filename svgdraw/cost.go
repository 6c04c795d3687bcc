package svgdraw

import (
	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpath"
)

// CostProvider reduces paths to their point count and
// images to their pixel count.
type CostProvider struct{}

func (CostProvider) Color(svglayer.Paint) struct{}          { return struct{}{} }
func (CostProvider) Path(p svgpath.Path) int                { return p.PointCount() }
func (CostProvider) Transform(svgpath.Matrix2D) struct{}    { return struct{}{} }
func (CostProvider) Image(img *svglayer.Image) (pixels int) { w, h := img.Size(); return w * h }

// CostEstimator measures the work needed to draw a command stream.
type CostEstimator struct {
	Commands int
	Points   int // drawn or clipped path points
	Pixels   int // image pixels
	Layers   int // offscreen groups
}

var _ Renderer[struct{}, int, struct{}, int] = (*CostEstimator)(nil)

// EstimateCost returns the cost of drawing l.
func EstimateCost(l *svglayer.Layer, opts Options) CostEstimator {
	var ce CostEstimator
	Draw[struct{}, int, struct{}, int](l, CostProvider{}, &ce, opts)
	return ce
}

func (ce *CostEstimator) PushState() { ce.Commands++ }
func (ce *CostEstimator) PopState()  { ce.Commands++ }

func (ce *CostEstimator) PushTransparencyLayer(float64) {
	ce.Commands++
	ce.Layers++
}

func (ce *CostEstimator) PopTransparencyLayer()                 { ce.Commands++ }
func (ce *CostEstimator) ConcatTransform(struct{})              { ce.Commands++ }
func (ce *CostEstimator) Translate(_, _ float64)                { ce.Commands++ }
func (ce *CostEstimator) Rotate(float64)                        { ce.Commands++ }
func (ce *CostEstimator) Scale(_, _ float64)                    { ce.Commands++ }
func (ce *CostEstimator) SetFillColor(struct{})                 { ce.Commands++ }
func (ce *CostEstimator) SetStrokeColor(struct{})               { ce.Commands++ }
func (ce *CostEstimator) SetLineWidth(float64)                  { ce.Commands++ }
func (ce *CostEstimator) SetLineCap(svgicon.CapMode)            { ce.Commands++ }
func (ce *CostEstimator) SetLineJoin(svgicon.JoinMode)          { ce.Commands++ }
func (ce *CostEstimator) SetMiterLimit(float64)                 { ce.Commands++ }
func (ce *CostEstimator) SetDash([]float64, float64)            { ce.Commands++ }
func (ce *CostEstimator) SetAlpha(float64)                      { ce.Commands++ }
func (ce *CostEstimator) SetBlendMode(svgicon.BlendMode)        { ce.Commands++ }
func (ce *CostEstimator) SetClipPath(p int, _ svgicon.FillRule) { ce.Commands++; ce.Points += p }
func (ce *CostEstimator) Stroke(p int)                          { ce.Commands++; ce.Points += p }
func (ce *CostEstimator) Fill(p int, _ svgicon.FillRule)        { ce.Commands++; ce.Points += p }
func (ce *CostEstimator) DrawImage(pixels int, _ svgpath.Rect) {
	ce.Commands++
	ce.Pixels += pixels
}
