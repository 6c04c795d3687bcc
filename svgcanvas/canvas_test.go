package svgcanvas

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpath"
	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, src string) image.Image {
	t.Helper()
	img, err := RenderSVGIcon(strings.NewReader(src), &Options{ErrorMode: svgicon.StrictErrorMode})
	require.NoError(t, err)
	return img
}

func isOpaqueRed(c color.Color) bool {
	r, g, b, a := c.RGBA()
	return r > 0xf000 && g < 0x1000 && b < 0x1000 && a > 0xf000
}

func isTransparent(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a == 0
}

func TestTestIcons(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "svgicon", "testdata", "*.svg"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, file := range files {
		f, err := os.Open(file)
		require.NoError(t, err)
		img, err := RenderSVGIcon(f, &Options{ErrorMode: svgicon.WarnErrorMode})
		f.Close()
		require.NoError(t, err, file)
		assert.False(t, img.Bounds().Empty(), file)
	}
}

func TestFill(t *testing.T) {
	img := render(t, `<svg width="10" height="10"><rect x="2" y="2" width="6" height="6" fill="red"/></svg>`)
	assert.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())
	assert.True(t, isOpaqueRed(img.At(5, 5)))
	assert.True(t, isTransparent(img.At(0, 0)))
	assert.True(t, isTransparent(img.At(9, 9)))

	img, err := RenderSVGIcon(strings.NewReader(`<svg/>`), nil)
	require.NoError(t, err)
	assert.True(t, img.Bounds().Empty())
}

func TestTransform(t *testing.T) {
	img := render(t, `<svg width="10" height="10">
		<rect width="2" height="2" fill="red" transform="translate(4 4) scale(2)"/>
	</svg>`)
	assert.True(t, isOpaqueRed(img.At(6, 6)))
	assert.True(t, isTransparent(img.At(1, 1)))
}

func TestLayer(t *testing.T) {
	dc := gg.NewContext(10, 10)
	r := NewRenderer(dc)
	r.PushTransparencyLayer(1)
	r.SetFillColor(svglayer.Color{R: 1, A: 1})
	r.Fill(svgpath.RectPath(0, 0, 10, 10), svgicon.NonZero)
	r.PopTransparencyLayer()

	img := dc.Image()
	assert.True(t, isOpaqueRed(img.At(5, 5)))

	// unbalanced pops are ignored
	r.PopTransparencyLayer()
	r.PopState()
}

func TestMaskIgnored(t *testing.T) {
	r := NewRenderer(gg.NewContext(10, 10))
	r.PushTransparencyLayer(1)
	r.SetBlendMode(svgicon.BlendDestinationIn)
	r.PushTransparencyLayer(1)
	assert.Equal(t, 1, r.discarded)
	r.PushTransparencyLayer(0.5)
	assert.Equal(t, 2, r.discarded)
	r.PopTransparencyLayer()
	r.PopTransparencyLayer()
	assert.Equal(t, 0, r.discarded)
	assert.Equal(t, svgicon.BlendDestinationIn, r.state.blend)
	r.PopTransparencyLayer()
	assert.Equal(t, svgicon.BlendNormal, r.state.blend)
}

func TestProvider(t *testing.T) {
	m := Provider{}.Transform(svgpath.Identity.Translate(3, 4))
	assert.Equal(t, gg.Matrix{A: 1, C: 3, E: 1, F: 4}, m)

	// the state transform follows the context one
	r := NewRenderer(gg.NewContext(1, 1))
	r.ConcatTransform(Provider{}.Transform(svgpath.Identity.Scale(2, 3)))
	r.Translate(1, 1)
	assert.Equal(t, svgpath.Identity.Scale(2, 3).Translate(1, 1), r.state.ctm)
}

func TestBrush(t *testing.T) {
	r := NewRenderer(gg.NewContext(1, 1))
	assert.Nil(t, r.brush(svglayer.None))
	assert.Nil(t, r.brush(nil))

	r.SetAlpha(0.5)
	b := r.brush(svglayer.Color{R: 1, A: 0.5})
	require.IsType(t, gg.SolidBrush{}, b)
	assert.Equal(t, gg.RGBA{R: 1, A: 0.25}, b.(gg.SolidBrush).Color)

	grad := &svglayer.Gradient{
		Kind:  svglayer.Linear,
		Start: svgpath.Point{X: 0, Y: 0}, End: svgpath.Point{X: 1, Y: 0},
		Stops: []svglayer.GradientStop{
			{Offset: 0, Color: svglayer.Color{R: 1, A: 1}},
			{Offset: 1, Color: svglayer.Color{B: 1, A: 1}},
		},
		Transform: svgpath.Identity,
	}
	r.Scale(10, 10)
	b = r.brush(grad)
	require.IsType(t, &gg.LinearGradientBrush{}, b)
	lg := b.(*gg.LinearGradientBrush)
	assert.InDelta(t, 10, lg.End.X, 1e-9)
	assert.InDelta(t, 0, lg.End.Y, 1e-9)
	assert.Len(t, lg.Stops, 2)
	assert.Equal(t, 0.5, lg.Stops[0].Color.A)

	grad.Kind = svglayer.Radial
	grad.Center, grad.Focus, grad.R = svgpath.Point{X: 1, Y: 1}, svgpath.Point{X: 1, Y: 1}, 2
	b = r.brush(grad)
	require.IsType(t, &gg.RadialGradientBrush{}, b)
	rg := b.(*gg.RadialGradientBrush)
	assert.InDelta(t, 10, rg.Center.X, 1e-9)
	assert.InDelta(t, 20, rg.EndRadius, 1e-9)
}

func TestLinearVector(t *testing.T) {
	start, end := svgpath.Point{X: 0, Y: 0}, svgpath.Point{X: 1, Y: 1}

	p0, p1 := linearVector(start, end, svgpath.Identity.Translate(1, 2))
	assert.Equal(t, svgpath.Point{X: 1, Y: 2}, p0)
	assert.InDelta(t, 2, p1.X, 1e-9)
	assert.InDelta(t, 3, p1.Y, 1e-9)

	// a non uniform scale changes the direction of the gradient
	p0, p1 = linearVector(start, end, svgpath.Identity.Scale(2, 1))
	assert.Equal(t, svgpath.Point{}, p0)
	assert.InDelta(t, 0.8, p1.X, 1e-9)
	assert.InDelta(t, 1.6, p1.Y, 1e-9)
}
