package svgicon

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/benoitkugler/svglayer/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseIcon(t *testing.T, iconPath string) *Document {
	t.Helper()
	doc, errSvg := ReadIcon(iconPath, WarnErrorMode)
	require.NoError(t, errSvg, iconPath)
	return doc
}

func parseString(t *testing.T, src string, mode ErrorMode) (*Document, error) {
	t.Helper()
	return ReadIconStream(strings.NewReader(src), mode)
}

func TestTestIcons(t *testing.T) {
	for _, p := range []string{"shapes", "latin1", "styled", "clipmask"} {
		parseIcon(t, "testdata/"+p+".svg")
	}
}

func TestShapesDocument(t *testing.T) {
	doc := parseIcon(t, "testdata/shapes.svg")
	assert.Equal(t, []string{"Shapes"}, doc.Titles)
	assert.Equal(t, []string{"A few basic shapes"}, doc.Descriptions)

	w, h := doc.Size()
	assert.Equal(t, 200., w)
	assert.Equal(t, 100., h)

	kinds := make([]string, len(doc.Root.Children))
	for i, n := range doc.Root.Children {
		kinds[i] = fmt.Sprintf("%T", n)
	}
	assert.Equal(t, []string{
		"*svgicon.Rect", "*svgicon.Circle", "*svgicon.Ellipse", "*svgicon.Line",
		"*svgicon.Polyline", "*svgicon.Polygon", "*svgicon.PathNode", "*svgicon.Use", "*svgicon.Text",
	}, kinds)

	rect := doc.Root.Children[0].(*Rect)
	require.NotNil(t, rect.RX)
	assert.Nil(t, rect.RY)
	assert.Equal(t, "grad", rect.Attrs.Fill.Ref)

	circle := doc.Root.Children[1].(*Circle)
	assert.Nil(t, circle.Attrs.Fill)
	assert.Equal(t, svgpath.RGBColor{R: 0, G: 128, B: 0, A: 1}, circle.Style.Fill.Color)
	assert.Equal(t, svgpath.Length{Value: 2}, *circle.Style.StrokeWidth)

	use := doc.Root.Children[7].(*Use)
	assert.Equal(t, "dot", use.Href)

	text := doc.Root.Children[8].(*Text)
	assert.Equal(t, "Hello world", text.Content)

	grad, ok := doc.Defs.Lookup("grad")
	require.True(t, ok)
	lg := grad.(*LinearGradient)
	require.Len(t, lg.Stops, 2)
	assert.Equal(t, 1., lg.Stops[1].Offset)
	assert.Equal(t, 0.5, *lg.Stops[1].Attrs.StopOpacity)

	_, ok = doc.Defs.Lookup("dot")
	assert.True(t, ok)
}

func TestCharset(t *testing.T) {
	doc := parseIcon(t, "testdata/latin1.svg")
	assert.Equal(t, []string{"Café"}, doc.Titles)
}

func TestSizeAndViewBox(t *testing.T) {
	doc, err := parseString(t, `<svg width="100" height="200"/>`, StrictErrorMode)
	require.NoError(t, err)
	w, h := doc.Size()
	assert.Equal(t, 100., w)
	assert.Equal(t, 200., h)
	assert.Nil(t, doc.ViewBox())

	doc, err = parseString(t, `<svg width="100" height="200" viewBox="10 20 100 200"/>`, StrictErrorMode)
	require.NoError(t, err)
	w, h = doc.Size()
	assert.Equal(t, 100., w)
	assert.Equal(t, 200., h)
	assert.Equal(t, &svgpath.ViewBox{X: 10, Y: 20, W: 100, H: 200}, doc.ViewBox())
}

func TestPathAlwaysStartsWithMove(t *testing.T) {
	doc, err := parseString(t, `<svg><path d=""/><path d="  "/><path d="m 5 5 l 1 1"/></svg>`, StrictErrorMode)
	require.NoError(t, err)
	require.Len(t, doc.Root.Children, 3)
	for _, n := range doc.Root.Children {
		p := n.(*PathNode)
		require.NotEmpty(t, p.Data)
		assert.IsType(t, svgpath.MoveTo{}, p.Data[0])
	}
}

func TestErrorModes(t *testing.T) {
	const src = `<svg>
		<rect width="10" height="10" fill="nocolor"/>
		<path d="M 1 1 L x"/>
		<foo/>
		<circle r="5"/>
	</svg>`

	_, err := parseString(t, src, StrictErrorMode)
	assert.True(t, errors.Is(err, ErrInvalid))

	doc, err := parseString(t, src, IgnoreErrorMode)
	require.NoError(t, err)
	// the invalid fill is dropped, the invalid path and the unknown
	// element are removed
	require.Len(t, doc.Root.Children, 2)
	rect := doc.Root.Children[0].(*Rect)
	assert.Nil(t, rect.Attrs.Fill)
	assert.IsType(t, &Circle{}, doc.Root.Children[1])

	_, err = parseString(t, `<svg><foo/></svg>`, StrictErrorMode)
	var ue UnsupportedError
	assert.True(t, errors.As(err, &ue))

	_, err = parseString(t, `<svg><use/></svg>`, StrictErrorMode)
	var me MissingAttributeError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "href", me.Name)

	_, err = parseString(t, `<svg><filter id="f"><feTurbulence/></filter></svg>`, StrictErrorMode)
	assert.True(t, errors.As(err, &ue))

	_, err = parseString(t, `<rect/>`, IgnoreErrorMode)
	assert.Error(t, err)
}

func TestDuplicateIDs(t *testing.T) {
	doc, err := parseString(t, `<svg><rect id="a" width="1" height="1"/><circle id="a" r="1"/></svg>`, StrictErrorMode)
	require.NoError(t, err)
	n, ok := doc.Defs.Lookup("a")
	require.True(t, ok)
	assert.IsType(t, &Rect{}, n)
}

func TestDeepNesting(t *testing.T) {
	const depth = 500
	src := `<svg>` + strings.Repeat(`<g>`, depth) + `<rect width="1" height="1"/>` +
		strings.Repeat(`</g>`, depth) + `</svg>`
	doc, err := parseString(t, src, StrictErrorMode)
	require.NoError(t, err)

	var n Node = doc.Root
	for i := 0; i < depth; i++ {
		children := Children(n)
		require.Len(t, children, 1)
		n = children[0]
		require.IsType(t, &Group{}, n)
	}
	assert.IsType(t, &Rect{}, Children(n)[0])
}

func TestForeignNamespaces(t *testing.T) {
	const src = `<svg xmlns="http://www.w3.org/2000/svg"
		xmlns:sodipodi="http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd"
		xmlns:x="http://example.com/x">
		<sodipodi:namedview id="nv"><rect width="1" height="1"/></sodipodi:namedview>
		<x:rect width="4" height="4"/>
		<rect width="5" height="5"/>
	</svg>`
	doc, err := parseString(t, src, StrictErrorMode)
	require.NoError(t, err)
	require.Len(t, doc.Root.Children, 1)
	assert.IsType(t, &Rect{}, doc.Root.Children[0])
	_, ok := doc.Defs.Lookup("nv")
	assert.False(t, ok)

	// elements without namespace declaration are still SVG
	doc, err = parseString(t, `<svg><rect width="5" height="5"/></svg>`, StrictErrorMode)
	require.NoError(t, err)
	assert.Len(t, doc.Root.Children, 1)

	_, err = parseString(t, `<x:svg xmlns:x="http://example.com/x"/>`, IgnoreErrorMode)
	assert.Error(t, err)
}

func TestLenientViewport(t *testing.T) {
	for _, src := range []string{
		`<svg width="abc" height="10"><rect width="5" height="5"/></svg>`,
		`<svg viewBox="0 0 0 10" height="10"><rect width="5" height="5"/></svg>`,
	} {
		_, err := parseString(t, src, StrictErrorMode)
		assert.True(t, errors.Is(err, ErrInvalid), src)

		for _, mode := range []ErrorMode{IgnoreErrorMode, WarnErrorMode} {
			doc, err := parseString(t, src, mode)
			require.NoError(t, err, src)
			assert.Nil(t, doc.Root.Width)
			assert.Nil(t, doc.Root.ViewBox)
			assert.Len(t, doc.Root.Children, 1)
		}
	}

	// nested viewports are handled the same way
	doc, err := parseString(t, `<svg><svg width="x" height="3"/></svg>`, IgnoreErrorMode)
	require.NoError(t, err)
	require.Len(t, doc.Root.Children, 1)
	nested := doc.Root.Children[0].(*Svg)
	assert.Nil(t, nested.Width)
	assert.Equal(t, svgpath.Length{Value: 3}, *nested.Height)
}
