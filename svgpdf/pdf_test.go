package svgpdf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/pdf/contentstream"
	"github.com/benoitkugler/pdf/model"
	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderIcon(t *testing.T, filename string, dir string) {
	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	out := filepath.Join(dir, name+".pdf")
	err = RenderSVGIconToPDF(f, out, &Options{ErrorMode: svgicon.WarnErrorMode})
	require.NoError(t, err, filename)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")), filename)
}

func TestTestIcons(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "svgicon", "testdata", "*.svg"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	dir := t.TempDir()
	for _, file := range files {
		renderIcon(t, file, dir)
	}
}

func TestRenderFeatures(t *testing.T) {
	src := `<svg width="40" height="40">
		<linearGradient id="g"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
		<clipPath id="c"><circle cx="20" cy="20" r="15"/></clipPath>
		<mask id="m"><rect width="20" height="40" fill="white"/></mask>
		<g opacity="0.5" clip-path="url(#c)">
			<rect width="40" height="40" fill="url(#g)"/>
			<path d="M0 0 L40 40" stroke="green" stroke-dasharray="2 1" stroke-linecap="round"/>
		</g>
		<rect width="40" height="40" fill="red" mask="url(#m)" style="mix-blend-mode:multiply"/>
	</svg>`
	out := filepath.Join(t.TempDir(), "features.pdf")
	err := RenderSVGIconToPDF(strings.NewReader(src), out, &Options{ErrorMode: svgicon.StrictErrorMode})
	require.NoError(t, err)
	_, err = os.Stat(out)
	require.NoError(t, err)
}

func TestProvider(t *testing.T) {
	m := svgpath.Identity.Translate(3, 4).Scale(2, 5)
	assert.Equal(t, model.Matrix{2, 0, 0, 5, 3, 4}, Provider{}.Transform(m))
}

func TestStyles(t *testing.T) {
	assert.Equal(t, uint8(0), capStyle(svgicon.ButtCap))
	assert.Equal(t, uint8(1), capStyle(svgicon.RoundCap))
	assert.Equal(t, uint8(2), capStyle(svgicon.SquareCap))

	assert.Equal(t, uint8(0), joinStyle(svgicon.Miter))
	assert.Equal(t, uint8(0), joinStyle(svgicon.MiterClip))
	assert.Equal(t, uint8(1), joinStyle(svgicon.Round))
	assert.Equal(t, uint8(1), joinStyle(svgicon.Arc))
	assert.Equal(t, uint8(2), joinStyle(svgicon.Bevel))

	assert.Equal(t, model.Name("Multiply"), blendName(svgicon.BlendMultiply))
	assert.Equal(t, model.Name("Normal"), blendName(svgicon.BlendDestinationIn))
}

func TestSolid(t *testing.T) {
	c, a, ok := solid(svglayer.Color{R: 1, A: 0.5})
	require.True(t, ok)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(255), c.A)
	assert.Equal(t, 0.5, a)

	_, _, ok = solid(svglayer.None)
	assert.False(t, ok)
	_, _, ok = solid(nil)
	assert.False(t, ok)

	grad := &svglayer.Gradient{Stops: []svglayer.GradientStop{
		{Offset: 0, Color: svglayer.Color{R: 1, A: 1}},
		{Offset: 1, Color: svglayer.Color{B: 1, A: 1}},
	}}
	c, a, ok = solid(grad)
	require.True(t, ok)
	assert.Equal(t, uint8(128), c.R)
	assert.Equal(t, uint8(128), c.B)
	assert.Equal(t, 1., a)
}

func TestGraphicStateCache(t *testing.T) {
	cs := contentstream.NewAppearance(10, 10)
	r := NewRenderer(&cs)
	square := svgpath.RectPath(0, 0, 2, 2)

	r.SetFillColor(svglayer.Color{R: 1, A: 1})
	r.Fill(square, svgicon.NonZero)
	r.Fill(square, svgicon.EvenOdd)
	assert.Len(t, r.states, 1)

	r.PushState()
	r.SetAlpha(0.5)
	r.Fill(square, svgicon.NonZero)
	assert.Len(t, r.states, 2)
	r.PopState()
	assert.Equal(t, 1., r.state.alpha)

	// the group opacity applies to its drawings
	r.PushTransparencyLayer(0.5)
	r.SetAlpha(0.5)
	assert.Equal(t, 0.25, r.opacity())
	r.PopTransparencyLayer()
	assert.Equal(t, 1., r.opacity())

	// unbalanced pops are ignored
	r.PopState()
	r.PopTransparencyLayer()
}

func TestMaskIgnored(t *testing.T) {
	cs := contentstream.NewAppearance(10, 10)
	r := NewRenderer(&cs)
	square := svgpath.RectPath(0, 0, 2, 2)

	r.PushTransparencyLayer(1)
	r.SetFillColor(svglayer.Color{B: 1, A: 1})
	r.Fill(square, svgicon.NonZero)
	assert.Len(t, r.states, 1)

	r.SetBlendMode(svgicon.BlendDestinationIn)
	r.PushTransparencyLayer(1)
	assert.Equal(t, 1, r.discarded)
	r.SetFillColor(svglayer.Color{G: 1, A: 0.3})
	r.Fill(square, svgicon.NonZero)
	assert.Len(t, r.states, 1)
	r.PopTransparencyLayer()
	assert.Equal(t, 0, r.discarded)

	r.PopTransparencyLayer()
	assert.Equal(t, svgicon.BlendNormal, r.state.blend)
}

func TestPageSize(t *testing.T) {
	out := filepath.Join(t.TempDir(), "page.pdf")
	err := RenderSVGIconToPDF(strings.NewReader(`<svg width="40" height="20"><rect width="5" height="5"/></svg>`), out, nil)
	require.NoError(t, err)
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "/MediaBox [0 0 40 20]")
}

func TestColorsRestored(t *testing.T) {
	cs := contentstream.NewAppearance(10, 10)
	r := NewRenderer(&cs)
	square := svgpath.RectPath(0, 0, 2, 2)

	r.SetFillColor(svglayer.Color{R: 1, A: 1})
	r.Fill(square, svgicon.NonZero)
	r.Fill(square, svgicon.NonZero)

	// Q restores the red fill color: green must be set again
	r.PushState()
	r.SetFillColor(svglayer.Color{G: 1, A: 1})
	r.Fill(square, svgicon.NonZero)
	r.PopState()
	r.Fill(square, svgicon.NonZero)

	r.SetStrokeColor(svglayer.Color{B: 1, A: 1})
	r.PushTransparencyLayer(0.5)
	r.Stroke(square)
	r.PopTransparencyLayer()
	r.Stroke(square)

	content := string(cs.ToXFormObject(false).Content)
	assert.Equal(t, 1, strings.Count(content, "1 0 0 rg"))
	assert.Equal(t, 1, strings.Count(content, "0 1 0 rg"))
	assert.Equal(t, 2, strings.Count(content, "0 0 1 RG"))
}
