package svgicon

import (
	"testing"

	"github.com/benoitkugler/svglayer/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillOf(t *testing.T, attrs Attributes) svgpath.Color {
	t.Helper()
	require.NotNil(t, attrs.Fill)
	return attrs.Fill.Color
}

func TestMerge(t *testing.T) {
	a, errs := ParseStyle("fill: red; stroke: blue; stroke-width: 3")
	require.Empty(t, errs)
	b, errs := ParseStyle("fill: green; opacity: 0.5")
	require.Empty(t, errs)

	m := a.Merge(b)
	assert.Equal(t, svgpath.NamedColor("green"), m.Fill.Color)
	assert.Equal(t, svgpath.NamedColor("blue"), m.Stroke.Color)
	assert.Equal(t, 3., m.StrokeWidth.Value)
	assert.Equal(t, 0.5, *m.Opacity)

	// merging with an empty set is the identity
	assert.Equal(t, a, a.Merge(Attributes{}))
	assert.Equal(t, a, Attributes{}.Merge(a))
}

func TestParseStyleErrors(t *testing.T) {
	attrs, errs := ParseStyle("fill: nocolor; stroke: red; opacity: 2; stroke-dasharray: 1 2 ; foo: bar")
	assert.Len(t, errs, 2)
	assert.Nil(t, attrs.Fill)
	assert.Nil(t, attrs.Opacity)
	assert.Equal(t, svgpath.NamedColor("red"), attrs.Stroke.Color)
	assert.Equal(t, []float64{1, 2}, *attrs.StrokeDashArray)
}

func TestCascadePrecedence(t *testing.T) {
	sheet, errs, err := ParseStyleSheet(`
		rect { fill: red }
		.c1 { fill: green }
		.c2 { fill: blue }
		#the-id { fill: yellow }
	`)
	require.NoError(t, err)
	require.Empty(t, errs)
	sheets := []StyleSheet{sheet}

	inline, _ := ParseStyle("fill: white")
	direct, _ := ParseStyle("fill: black")
	node := NodeBase{Tag: "rect", ID: "the-id", Classes: []string{"c1", "c2"}, Attrs: direct, Style: inline}

	assert.Equal(t, svgpath.NamedColor("white"), fillOf(t, Resolve(&node, sheets)))
	node.Style = Attributes{}
	assert.Equal(t, svgpath.NamedColor("yellow"), fillOf(t, Resolve(&node, sheets)))
	node.ID = ""
	// the last listed class wins
	assert.Equal(t, svgpath.NamedColor("blue"), fillOf(t, Resolve(&node, sheets)))
	node.Classes = []string{"c2", "c1"}
	assert.Equal(t, svgpath.NamedColor("green"), fillOf(t, Resolve(&node, sheets)))
	node.Classes = nil
	assert.Equal(t, svgpath.NamedColor("red"), fillOf(t, Resolve(&node, sheets)))
	node.Tag = "circle"
	assert.Equal(t, svgpath.NamedColor("black"), fillOf(t, Resolve(&node, sheets)))
}

func TestCascadeSheetOrder(t *testing.T) {
	s1, _, err := ParseStyleSheet(`.a { fill: red; stroke: red }`)
	require.NoError(t, err)
	s2, _, err := ParseStyleSheet(`.a { fill: blue }`)
	require.NoError(t, err)

	node := NodeBase{Tag: "rect", Classes: []string{"a"}}
	res := Resolve(&node, []StyleSheet{s1, s2})
	assert.Equal(t, svgpath.NamedColor("blue"), fillOf(t, res))
	assert.Equal(t, svgpath.NamedColor("red"), res.Stroke.Color)
}

func TestStyleSheetDocument(t *testing.T) {
	doc := parseIcon(t, "testdata/styled.svg")
	require.Len(t, doc.StyleSheets, 1)
	// '.blue, .other' is split, 'g > rect' is skipped
	assert.Len(t, doc.StyleSheets[0].Rules, 5)

	var fills []svgpath.Color
	for _, n := range doc.Root.Children {
		fills = append(fills, fillOf(t, Resolve(n.Base(), doc.StyleSheets)))
	}
	assert.Equal(t, []svgpath.Color{
		svgpath.NamedColor("red"),
		svgpath.NamedColor("blue"),
		svgpath.NamedColor("yellow"),
		svgpath.NamedColor("white"),
	}, fills)

	res := Resolve(doc.Root.Children[1].Base(), doc.StyleSheets)
	assert.Equal(t, 4., res.StrokeWidth.Value)
	assert.Equal(t, svgpath.NamedColor("black"), res.Stroke.Color)
}

func TestPaintReferences(t *testing.T) {
	var a Attributes
	require.NoError(t, a.Set("fill", "url(#g) red"))
	assert.Equal(t, Paint{Ref: "g", Color: svgpath.NamedColor("red")}, *a.Fill)
	require.NoError(t, a.Set("stroke", `url("#g2")`))
	assert.Equal(t, Paint{Ref: "g2"}, *a.Stroke)
	require.NoError(t, a.Set("clip-path", "none"))
	assert.Equal(t, "", *a.ClipPath)
	require.NoError(t, a.Set("mask", "url(#m)"))
	assert.Equal(t, "m", *a.Mask)
	assert.Error(t, a.Set("filter", "url(other.svg#f)"))
	assert.Nil(t, a.Filter)

	// inherit leaves the field unset
	require.NoError(t, a.Set("opacity", "inherit"))
	assert.Nil(t, a.Opacity)
}

func TestCascadeUniversal(t *testing.T) {
	// the universal rule is listed last but has the lowest precedence
	sheet, errs, err := ParseStyleSheet(`
		rect { fill: red }
		* { fill: green; stroke: blue }
	`)
	require.NoError(t, err)
	require.Empty(t, errs)
	sheets := []StyleSheet{sheet}

	node := NodeBase{Tag: "rect"}
	res := Resolve(&node, sheets)
	assert.Equal(t, svgpath.NamedColor("red"), fillOf(t, res))
	require.NotNil(t, res.Stroke)
	assert.Equal(t, svgpath.NamedColor("blue"), res.Stroke.Color)

	node.Tag = "circle"
	assert.Equal(t, svgpath.NamedColor("green"), fillOf(t, Resolve(&node, sheets)))
}
