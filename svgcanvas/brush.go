package svgcanvas

import (
	"math"

	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpath"
	"github.com/gogpu/gg"
)

// brush returns the gg brush for paint, with the global alpha
// applied, or nil if nothing should be drawn.
// gg evaluates brushes in device space: gradients are
// mapped with the current transform.
func (r *Renderer) brush(paint svglayer.Paint) gg.Brush {
	switch paint := paint.(type) {
	case svglayer.Color:
		if paint.IsNone() {
			return nil
		}
		return gg.Solid(toRGBA(paint, r.state.alpha))
	case *svglayer.Gradient:
		return gradientBrush(paint, r.state.ctm, r.state.alpha)
	}
	return nil
}

func toRGBA(c svglayer.Color, alpha float64) gg.RGBA {
	return gg.RGBA{R: c.R, G: c.G, B: c.B, A: c.A * alpha}
}

var spreadToExtend = [...]gg.ExtendMode{
	svgpath.PadSpread:     gg.ExtendPad,
	svgpath.ReflectSpread: gg.ExtendReflect,
	svgpath.RepeatSpread:  gg.ExtendRepeat,
}

func gradientBrush(grad *svglayer.Gradient, ctm svgpath.Matrix2D, alpha float64) gg.Brush {
	m := ctm.Mult(grad.Transform)
	extend := spreadToExtend[grad.Spread]
	if grad.Kind == svglayer.Radial {
		c := m.TransformPoint(grad.Center)
		f := m.TransformPoint(grad.Focus)
		// exact for uniform scales only
		scale := math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
		b := gg.NewRadialGradientBrush(c.X, c.Y, grad.FR*scale, grad.R*scale).
			SetFocus(f.X, f.Y).
			SetExtend(extend)
		for _, s := range grad.Stops {
			b.AddColorStop(s.Offset, toRGBA(s.Color, alpha))
		}
		return b
	}

	p0, p1 := linearVector(grad.Start, grad.End, m)
	b := gg.NewLinearGradientBrush(p0.X, p0.Y, p1.X, p1.Y).SetExtend(extend)
	for _, s := range grad.Stops {
		b.AddColorStop(s.Offset, toRGBA(s.Color, alpha))
	}
	return b
}

// linearVector returns the device space vector of the linear
// gradient from start to end: the iso-color lines, orthogonal to the
// vector in gradient space, are mapped by m and the end point is
// projected on their normal.
func linearVector(start, end svgpath.Point, m svgpath.Matrix2D) (p0, p1 svgpath.Point) {
	p0 = m.TransformPoint(start)
	q := m.TransformPoint(end)
	dx, dy := end.X-start.X, end.Y-start.Y
	// direction of the iso-color lines in device space
	ix, iy := m.TransformVector(-dy, dx)
	nx, ny := -iy, ix
	n2 := nx*nx + ny*ny
	if n2 == 0 {
		return p0, q
	}
	t := ((q.X-p0.X)*nx + (q.Y-p0.Y)*ny) / n2
	return p0, svgpath.Point{X: p0.X + t*nx, Y: p0.Y + t*ny}
}
