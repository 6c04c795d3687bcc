package svgdraw

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textStream = Stream[string, string, string, string]

var (
	red  = svglayer.Color{R: 1, A: 1}
	blue = svglayer.Color{B: 1, A: 1}
)

func newLayer(contents ...svglayer.Content) *svglayer.Layer {
	return &svglayer.Layer{Contents: contents, Opacity: 1, Transform: svgpath.Identity}
}

func rect(x, y, w, h float64, fill svglayer.Paint) svglayer.ShapeContent {
	return svglayer.ShapeContent{
		Shape: svglayer.Rectangle{Rect: svgpath.Rect{X: x, Y: y, W: w, H: h}},
		Fill:  svglayer.FillAttributes{Paint: fill, Rule: svgicon.NonZero},
	}
}

func emit(l *svglayer.Layer, opts Options) textStream {
	return Emit[string, string, string, string](l, TextProvider{}, opts)
}

func kinds(s textStream) []Kind {
	out := make([]Kind, len(s))
	for i, c := range s {
		out[i] = c.Kind
	}
	return out
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "PushTransparencyLayer", PushTransparencyLayer.String())
	assert.Equal(t, "DrawImage", DrawImage.String())
	assert.Equal(t, "<unknown Kind>", Kind(200).String())
}

func TestEmitLayers(t *testing.T) {
	simple := newLayer(rect(0, 0, 10, 10, red))

	translated := newLayer(rect(0, 0, 10, 10, red), rect(0, 0, 5, 5, blue))
	translated.Transform = svgpath.Identity.Translate(10, 20)
	translated.Opacity = 0.5

	single := newLayer(rect(0, 0, 10, 10, red))
	single.Opacity = 0.5

	masked := newLayer(rect(0, 0, 10, 10, red))
	masked.Mask = newLayer(rect(0, 0, 5, 5, svglayer.Black))

	blended := newLayer(rect(0, 0, 10, 10, red))
	blended.BlendMode = svgicon.BlendMultiply

	clipped := newLayer(rect(0, 0, 10, 10, red))
	clipped.ClipPaths = []svglayer.ClipPath{
		{Path: svgpath.RectPath(0, 0, 5, 5)},
		{Path: svgpath.RectPath(2, 2, 5, 5), Rule: svgicon.EvenOdd},
	}

	hidden := newLayer(rect(0, 0, 10, 10, red))
	hidden.Opacity = 0

	for _, test := range []struct {
		name  string
		layer *svglayer.Layer
		want  []Kind
	}{
		{"simple", simple, []Kind{SetFillColor, Fill}},
		{"translated", translated, []Kind{
			PushState, Translate, PushTransparencyLayer,
			SetFillColor, Fill, SetFillColor, Fill,
			PopTransparencyLayer, PopState,
		}},
		{"alpha", single, []Kind{PushState, SetAlpha, SetFillColor, Fill, PopState}},
		{"mask", masked, []Kind{
			PushTransparencyLayer, SetFillColor, Fill,
			SetBlendMode, PushTransparencyLayer, SetFillColor, Fill, PopTransparencyLayer,
			PopTransparencyLayer,
		}},
		{"blend", blended, []Kind{
			PushState, SetBlendMode, PushTransparencyLayer,
			SetFillColor, Fill,
			PopTransparencyLayer, PopState,
		}},
		{"clip", clipped, []Kind{PushState, SetClipPath, SetClipPath, SetFillColor, Fill, PopState}},
		{"hidden", hidden, []Kind{}},
		{"nested", newLayer(newLayer(rect(0, 0, 1, 1, red)), translated), []Kind{
			SetFillColor, Fill,
			PushState, Translate, PushTransparencyLayer,
			SetFillColor, Fill, SetFillColor, Fill,
			PopTransparencyLayer, PopState,
		}},
	} {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, kinds(emit(test.layer, Options{})))
		})
	}

	s := emit(masked, Options{})
	assert.Equal(t, svgicon.BlendDestinationIn, s[3].Blend)
	assert.Equal(t, 1., s[0].Value)

	s = emit(translated, Options{})
	assert.Equal(t, 10., s[1].X)
	assert.Equal(t, 20., s[1].Y)
	assert.Equal(t, 0.5, s[2].Value)

	s = emit(clipped, Options{})
	assert.Equal(t, svgicon.NonZero, s[1].Rule)
	assert.Equal(t, svgicon.EvenOdd, s[2].Rule)
}

func TestEmitTransforms(t *testing.T) {
	for _, test := range []struct {
		m    svgpath.Matrix2D
		want Kind
	}{
		{svgpath.Identity.Translate(3, 4), Translate},
		{svgpath.Identity.Scale(2, 3), Scale},
		{svgpath.Identity.Rotate(math.Pi / 2), Rotate},
		{svgpath.Identity.SkewX(0.3), ConcatTransform},
		{svgpath.Identity.Translate(1, 1).Scale(2, 2), ConcatTransform},
	} {
		l := newLayer(rect(0, 0, 1, 1, red))
		l.Transform = test.m
		s := emit(l, Options{})
		require.Len(t, s, 5)
		assert.Equal(t, test.want, s[1].Kind)
	}

	l := newLayer(rect(0, 0, 1, 1, red))
	l.Transform = svgpath.Identity.Rotate(math.Pi / 2)
	assert.InDelta(t, math.Pi/2, emit(l, Options{})[1].Value, 1e-12)
}

func TestEmitStroke(t *testing.T) {
	shape := rect(0, 0, 10, 10, nil)
	shape.Stroke = svglayer.StrokeAttributes{
		Paint: blue, Width: 2, Cap: svgicon.RoundCap, Join: svgicon.Bevel,
		MiterLimit: 4, Dash: []float64{1, 2}, DashOffset: 0.5,
	}
	s := emit(newLayer(shape), Options{})
	assert.Equal(t, []Kind{SetLineWidth, SetLineCap, SetLineJoin, SetMiterLimit, SetDash, SetStrokeColor, Stroke}, kinds(s))
	assert.Equal(t, 2., s[0].Value)
	assert.Equal(t, svgicon.RoundCap, s[1].Cap)
	assert.Equal(t, svgicon.Bevel, s[2].Join)
	assert.Equal(t, []float64{1, 2}, s[4].Dashes)
	assert.Equal(t, 0.5, s[4].Value)
	assert.Equal(t, "rgba(0, 0, 255, 1)", s[5].Color)

	// fill then stroke
	shape.Fill.Paint = red
	assert.Equal(t, []Kind{SetFillColor, Fill, SetLineWidth, SetLineCap, SetLineJoin, SetMiterLimit, SetDash, SetStrokeColor, Stroke},
		kinds(emit(newLayer(shape), Options{})))

	// a zero width draws nothing
	shape.Fill.Paint = nil
	shape.Stroke.Width = 0
	assert.Empty(t, emit(newLayer(shape), Options{}))
}

func TestEmitPattern(t *testing.T) {
	pattern := &svglayer.PatternPaint{
		Tile:      svgpath.Rect{W: 10, H: 10},
		Transform: svgpath.Identity,
		Content:   newLayer(rect(0, 0, 5, 5, red)),
	}
	shape := rect(0, 0, 20, 10, pattern)
	shape.Stroke = svglayer.StrokeAttributes{Paint: blue, Width: 1}

	s := emit(newLayer(shape), Options{})
	tile := []Kind{PushState, Translate, SetClipPath, SetFillColor, Fill, PopState}
	want := []Kind{PushState, SetClipPath}
	want = append(want, tile...)
	want = append(want, tile...)
	want = append(want, PopState, SetLineWidth, SetLineCap, SetLineJoin, SetMiterLimit, SetDash, SetStrokeColor, Stroke)
	assert.Equal(t, want, kinds(s))

	assert.Equal(t, 0., s[3].X)
	assert.Equal(t, 10., s[9].X)
	assert.Equal(t, s[1].Path, TextProvider{}.Path(svgpath.RectPath(0, 0, 20, 10)))
	assert.Equal(t, s[4].Path, TextProvider{}.Path(svgpath.RectPath(0, 0, 10, 10)))

	ce := EstimateCost(newLayer(shape), Options{})
	assert.Equal(t, len(s), ce.Commands)
	assert.Equal(t, 4+2*(4+4)+4, ce.Points)
	assert.Equal(t, 0, ce.Layers)
}

func TestEmitPatternTileLimit(t *testing.T) {
	pattern := &svglayer.PatternPaint{
		Tile:      svgpath.Rect{W: 1, H: 1},
		Transform: svgpath.Identity,
		Content:   newLayer(rect(0, 0, 0.5, 0.5, red)),
	}
	s := emit(newLayer(rect(0, 0, 1000, 1000, pattern)), Options{})
	tiles := 0
	for _, c := range s {
		if c.Kind == Translate {
			tiles++
		}
	}
	assert.Greater(t, tiles, 0)
	assert.LessOrEqual(t, tiles, MaxTiles)
}

type boxOutliner struct{ err error }

func (b boxOutliner) Outline(t svglayer.TextContent) (svgpath.Path, error) {
	return svgpath.RectPath(t.X, t.Y-t.FontSize, t.FontSize*float64(len(t.Text)), t.FontSize), b.err
}

func TestEmitText(t *testing.T) {
	l := newLayer(svglayer.TextContent{Text: "ab", X: 1, Y: 20, FontSize: 10, Fill: red})
	assert.Empty(t, emit(l, Options{}))
	assert.Empty(t, emit(l, Options{Outliner: boxOutliner{err: errors.New("no font")}}))

	s := emit(l, Options{Outliner: boxOutliner{}})
	assert.Equal(t, []Kind{SetFillColor, Fill}, kinds(s))
	assert.Equal(t, svgicon.NonZero, s[1].Rule)
	assert.Equal(t, TextProvider{}.Path(svgpath.RectPath(1, 10, 20, 10)), s[1].Path)
}

func TestFontOutliner(t *testing.T) {
	o := DefaultOutliner()
	text := svglayer.TextContent{Text: "Hi", X: 10, Y: 20, FontSize: 16}

	path, err := o.Outline(text)
	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.IsType(t, svgpath.MoveTo{}, path[0])
	bounds := path.Bounds()
	assert.GreaterOrEqual(t, bounds.X, 10.)
	assert.Less(t, bounds.Y, 20.)
	assert.LessOrEqual(t, bounds.Y+bounds.H, 20.5)

	text.Anchor = svgicon.AnchorEnd
	path, err = o.Outline(text)
	require.NoError(t, err)
	end := path.Bounds()
	assert.LessOrEqual(t, end.X+end.W, 10.)
	assert.InDelta(t, bounds.W, end.W, 1e-9)

	text.FontSize = 0
	path, err = o.Outline(text)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestEmitImage(t *testing.T) {
	l := newLayer(svglayer.ImageContent{Rect: svgpath.Rect{W: 10, H: 10}})
	assert.Empty(t, emit(l, Options{}))
}

func TestDeepNesting(t *testing.T) {
	const depth = 10000
	root := newLayer(rect(0, 0, 1, 1, red))
	for i := 0; i < depth; i++ {
		parent := newLayer(root)
		parent.Transform = svgpath.Identity.Translate(1, 0)
		root = parent
	}
	s := emit(root, Options{})
	assert.Len(t, s, 3*depth+2)
	assert.Equal(t, PopState, s[len(s)-1].Kind)
}

func TestDump(t *testing.T) {
	doc, err := svgicon.ReadIconStream(strings.NewReader(
		`<svg width="10" height="10"><rect width="5" height="5" fill="red" fill-rule="nonzero"/></svg>`), svgicon.StrictErrorMode)
	require.NoError(t, err)
	l := svglayer.Compile(doc, svglayer.Options{})
	assert.Equal(t, strings.Join([]string{
		`SetFillColor(rgba(255, 0, 0, 1))`,
		`Fill("M0.000,0.000 L5.000,0.000 L5.000,5.000 L0.000,5.000 Z", NonZero)`,
	}, "\n"), Dump(l, Options{}))

	l = newLayer(rect(0, 0, 1, 1, red))
	l.Opacity = 0.5
	l.Contents = append(l.Contents, rect(0, 0, 2, 2, blue))
	lines := strings.Split(Dump(l, Options{}), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "PushTransparencyLayer(0.5)", lines[0])
	assert.Equal(t, "  SetFillColor(rgba(255, 0, 0, 1))", lines[1])
	assert.Equal(t, "PopTransparencyLayer()", lines[5])
}
