package svgpath

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertMatrix(t *testing.T, want, got Matrix2D) {
	t.Helper()
	w := [6]float64{want.A, want.B, want.C, want.D, want.E, want.F}
	g := [6]float64{got.A, got.B, got.C, got.D, got.E, got.F}
	for i := range w {
		assert.InDelta(t, w[i], g[i], 1e-9, "coefficient %d of %s", i, got)
	}
}

func TestParseTransform(t *testing.T) {
	for _, test := range []struct {
		in   string
		want Matrix2D
	}{
		{"", Identity},
		{"translate(10)", Matrix2D{1, 0, 0, 1, 10, 0}},
		{"translate(10, 20)", Matrix2D{1, 0, 0, 1, 10, 20}},
		{"scale(2)", Matrix2D{2, 0, 0, 2, 0, 0}},
		{"scale(2 3)", Matrix2D{2, 0, 0, 3, 0, 0}},
		{"matrix(1 2 3 4 5 6)", Matrix2D{1, 2, 3, 4, 5, 6}},
		{"rotate(90)", Matrix2D{0, 1, -1, 0, 0, 0}},
		{"translate(10,0) scale(2)", Matrix2D{2, 0, 0, 2, 10, 0}},
		{"skewX(45)", Matrix2D{1, 0, 1, 1, 0, 0}},
	} {
		got, err := ParseTransform(test.in)
		require.NoError(t, err, test.in)
		assertMatrix(t, test.want, got)
	}

	// the last function applies first
	m, err := ParseTransform("translate(10,0) scale(2)")
	require.NoError(t, err)
	x, y := m.Transform(1, 1)
	assert.Equal(t, 12., x)
	assert.Equal(t, 2., y)

	m, err = ParseTransform("rotate(90 10 10)")
	require.NoError(t, err)
	x, y = m.Transform(10, 10)
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 10, y, 1e-9)

	for _, in := range []string{"translate(1,2,3)", "scale()", "foo(1)", "translate(1) garbage", "rotate(10"} {
		_, err := ParseTransform(in)
		assert.True(t, errors.Is(err, ErrInvalid), in)
	}
}

func TestMatrixComposition(t *testing.T) {
	tr := Identity.Translate(5, 0)
	sc := Identity.Scale(2, 2)
	// apply tr, then sc
	m := tr.Then(sc)
	x, y := m.Transform(1, 1)
	assert.Equal(t, 12., x)
	assert.Equal(t, 2., y)

	inv := m.Invert()
	x, y = inv.Transform(12, 2)
	assert.InDelta(t, 1, x, 1e-9)
	assert.InDelta(t, 1, y, 1e-9)

	// associativity
	r := Identity.Rotate(0.3)
	assertMatrix(t, tr.Then(sc).Then(r), tr.Then(sc.Then(r)))
}

func TestParsePathData(t *testing.T) {
	p, err := ParsePathData("")
	require.NoError(t, err)
	assert.Equal(t, Path{MoveTo{}}, p)

	p, err = ParsePathData("   ")
	require.NoError(t, err)
	assert.Equal(t, Path{MoveTo{}}, p)

	p, err = ParsePathData("M10 20 30 40 h5 v-5 z l1,1")
	require.NoError(t, err)
	assert.Equal(t, Path{
		MoveTo{10, 20},
		LineTo{30, 40},
		LineTo{35, 40},
		LineTo{35, 35},
		Close{},
		LineTo{11, 21},
	}, p)

	p, err = ParsePathData("m1,1,2,2")
	require.NoError(t, err)
	assert.Equal(t, Path{MoveTo{1, 1}, LineTo{3, 3}}, p)
}

func TestPathDataInvalid(t *testing.T) {
	for _, in := range []string{
		"L10 10",
		"M10",
		"M10 10 L5 x",
		"M10 10 Z 5 5",
		"M 1 1 A 1 1 0 2 1 5 5",
		"M0 0 K",
	} {
		_, err := ParsePathData(in)
		assert.True(t, errors.Is(err, ErrInvalid), in)
	}
}

func TestSmoothAndQuadratic(t *testing.T) {
	p, err := ParsePathData("M0 0 C 0 10 10 10 10 0 S 20 -10 20 0")
	require.NoError(t, err)
	require.Len(t, p, 3)
	s := p[2].(CubicTo)
	// reflection of (10,10) through (10,0)
	assert.Equal(t, Point{10, -10}, s[0])

	// S without a previous cubic uses the current point
	p, err = ParsePathData("M5 5 S 20 -10 20 0")
	require.NoError(t, err)
	assert.Equal(t, Point{5, 5}, p[1].(CubicTo)[0])

	p, err = ParsePathData("M0 0 Q 3 6 6 0 T 12 0")
	require.NoError(t, err)
	require.Len(t, p, 3)
	q := p[1].(CubicTo)
	assert.InDelta(t, 2, q[0].X, 1e-9)
	assert.InDelta(t, 4, q[0].Y, 1e-9)
	assert.InDelta(t, 4, q[1].X, 1e-9)
	assert.InDelta(t, 4, q[1].Y, 1e-9)
	// T reflects (3,6) through (6,0): control point (9,-6)
	tq := p[2].(CubicTo)
	assert.InDelta(t, 6+2./3*3, tq[0].X, 1e-9)
	assert.InDelta(t, -4, tq[0].Y, 1e-9)
}

func TestArc(t *testing.T) {
	p, err := ParsePathData("M0 0 A 10 10 0 0 1 20 0")
	require.NoError(t, err)
	assert.IsType(t, MoveTo{}, p[0])
	assert.Greater(t, len(p), 2)
	end := p[len(p)-1].(CubicTo)[2]
	assert.Equal(t, Point{20, 0}, end)
	// the half circle bulges up or down by its radius
	b := p.Bounds()
	assert.InDelta(t, 10, b.H, 1e-3)

	// degenerate arcs
	p, err = ParsePathData("M0 0 A 0 10 0 0 1 20 0 A 5 5 0 0 0 20 0")
	require.NoError(t, err)
	assert.Equal(t, Path{MoveTo{0, 0}, LineTo{20, 0}}, p)

	// packed flags
	_, err = ParsePathData("M0 0 a5 5 0 0110 0")
	assert.NoError(t, err)
}

func TestShapes(t *testing.T) {
	assert.Len(t, EllipsePath(10, 10, 5, 3), 6)
	assert.Len(t, RectPath(0, 0, 10, 10), 5)
	assert.Len(t, RoundRectPath(0, 0, 10, 10, 0, 0), 5)
	rr := RoundRectPath(0, 0, 10, 20, 2, 3)
	assert.Len(t, rr, 14)
	assert.Equal(t, MoveTo{2, 0}, rr[0])

	b := rr.Bounds()
	assert.InDelta(t, 0, b.X, 1e-9)
	assert.InDelta(t, 10, b.W, 1e-9)
	assert.InDelta(t, 20, b.H, 1e-9)

	e := EllipsePath(10, 10, 5, 3).Bounds()
	assert.InDelta(t, 5, e.X, 1e-9)
	assert.InDelta(t, 7, e.Y, 1e-9)
	assert.InDelta(t, 10, e.W, 1e-9)
	assert.InDelta(t, 6, e.H, 1e-9)
}

func TestBoundsCubic(t *testing.T) {
	p := Path{MoveTo{0, 0}, CubicTo{{0, 10}, {10, 10}, {10, 0}}}
	b := p.Bounds()
	assert.InDelta(t, 7.5, b.H, 1e-9)
	assert.InDelta(t, 10, b.W, 1e-9)
	assert.Equal(t, 4, p.PointCount())
	assert.Equal(t, Point{10, 0}, p.CurrentPoint())

	tr := p.Transform(Identity.Translate(1, 2))
	assert.Equal(t, MoveTo{1, 2}, tr[0])
	assert.True(t, math.Abs(tr.Bounds().Y-2) < 1e-9)
}
