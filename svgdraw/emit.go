package svgdraw

import (
	"math"

	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpath"
)

// MaxTiles is the maximum number of tiles drawn to fill a shape
// with a pattern.
const MaxTiles = 4096

// Options configures the emission.
type Options struct {
	// Outliner converts text into paths. If nil,
	// text contents are skipped.
	Outliner GlyphOutliner
}

// item is a unit of work: a layer to open, a content
// to draw, or literal commands to append.
type item[C, P, M, I any] struct {
	layer   *svglayer.Layer
	content svglayer.Content
	cmds    []Command[C, P, M, I]
}

type emitter[C, P, M, I any] struct {
	provider TypeProvider[C, P, M, I]
	opts     Options

	out   Stream[C, P, M, I]
	stack []item[C, P, M, I]
}

// Emit walks the scene graph rooted at l and returns the commands
// drawing it. The walk does not use recursion, so that arbitrarily
// nested layers are supported.
func Emit[C, P, M, I any](l *svglayer.Layer, provider TypeProvider[C, P, M, I], opts Options) Stream[C, P, M, I] {
	if l == nil {
		return nil
	}
	e := emitter[C, P, M, I]{provider: provider, opts: opts}
	e.stack = append(e.stack, item[C, P, M, I]{layer: l})
	for len(e.stack) > 0 {
		it := e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]
		switch {
		case it.layer != nil:
			e.layer(it.layer)
		case it.content != nil:
			e.content(it.content)
		default:
			e.out = append(e.out, it.cmds...)
		}
	}
	return e.out
}

func (e *emitter[C, P, M, I]) cmd(c Command[C, P, M, I]) { e.out = append(e.out, c) }

// later schedules cmds after the items already pushed
// by the caller are processed.
func (e *emitter[C, P, M, I]) later(cmds ...Command[C, P, M, I]) {
	if len(cmds) != 0 {
		e.stack = append(e.stack, item[C, P, M, I]{cmds: cmds})
	}
}

// singleDrawing reports whether contents is made of exactly one
// drawing operation, whose opacity may then be applied with SetAlpha
// instead of an offscreen group.
func singleDrawing(contents []svglayer.Content) bool {
	if len(contents) != 1 {
		return false
	}
	switch c := contents[0].(type) {
	case svglayer.ImageContent:
		return true
	case svglayer.ShapeContent:
		hasFill, hasStroke := !svglayer.IsNone(c.Fill.Paint), !svglayer.IsNone(c.Stroke.Paint)
		_, isPattern := c.Fill.Paint.(*svglayer.PatternPaint)
		return !(hasFill && hasStroke) && !isPattern
	}
	return false
}

func (e *emitter[C, P, M, I]) layer(l *svglayer.Layer) {
	if l.Opacity <= 0 || len(l.Contents) == 0 {
		return
	}
	var (
		blend = l.BlendMode != svgicon.BlendNormal
		group = l.Opacity < 1 || l.Mask != nil || blend
		alpha = group && l.Mask == nil && !blend && singleDrawing(l.Contents)
		save  = alpha || blend || !l.Transform.IsIdentity() || len(l.ClipPaths) != 0
	)
	if alpha {
		group = false
	}

	if save {
		e.cmd(Command[C, P, M, I]{Kind: PushState})
		e.later(Command[C, P, M, I]{Kind: PopState})
	}
	if blend {
		e.cmd(Command[C, P, M, I]{Kind: SetBlendMode, Blend: l.BlendMode})
	}
	e.transform(l.Transform)
	for _, clip := range l.ClipPaths {
		e.cmd(Command[C, P, M, I]{Kind: SetClipPath, Path: e.provider.Path(clip.Path), Rule: clip.Rule})
	}
	if alpha {
		e.cmd(Command[C, P, M, I]{Kind: SetAlpha, Value: l.Opacity})
	}
	if group {
		e.cmd(Command[C, P, M, I]{Kind: PushTransparencyLayer, Value: l.Opacity})
		e.later(Command[C, P, M, I]{Kind: PopTransparencyLayer})
	}
	if l.Mask != nil {
		// the mask is composited on the contents as a whole
		e.later(Command[C, P, M, I]{Kind: PopTransparencyLayer})
		e.stack = append(e.stack, item[C, P, M, I]{layer: l.Mask})
		e.later(
			Command[C, P, M, I]{Kind: SetBlendMode, Blend: svgicon.BlendDestinationIn},
			Command[C, P, M, I]{Kind: PushTransparencyLayer, Value: 1},
		)
	}
	for i := len(l.Contents) - 1; i >= 0; i-- {
		if sub, ok := l.Contents[i].(*svglayer.Layer); ok {
			e.stack = append(e.stack, item[C, P, M, I]{layer: sub})
		} else {
			e.stack = append(e.stack, item[C, P, M, I]{content: l.Contents[i]})
		}
	}
}

// transform uses the simplest command expressing m.
func (e *emitter[C, P, M, I]) transform(m svgpath.Matrix2D) {
	switch {
	case m.IsIdentity():
	case m.A == 1 && m.B == 0 && m.C == 0 && m.D == 1:
		e.cmd(Command[C, P, M, I]{Kind: Translate, X: m.E, Y: m.F})
	case m.B == 0 && m.C == 0 && m.E == 0 && m.F == 0:
		e.cmd(Command[C, P, M, I]{Kind: Scale, X: m.A, Y: m.D})
	case m.E == 0 && m.F == 0 && m.A == m.D && m.B == -m.C && math.Abs(m.A*m.A+m.B*m.B-1) < 1e-12:
		e.cmd(Command[C, P, M, I]{Kind: Rotate, Value: math.Atan2(m.B, m.A)})
	default:
		e.cmd(Command[C, P, M, I]{Kind: ConcatTransform, Transform: e.provider.Transform(m)})
	}
}

func (e *emitter[C, P, M, I]) content(c svglayer.Content) {
	switch c := c.(type) {
	case svglayer.ShapeContent:
		e.shape(c)
	case svglayer.ImageContent:
		if c.Image == nil || c.Rect.IsEmpty() {
			return
		}
		e.cmd(Command[C, P, M, I]{Kind: DrawImage, Image: e.provider.Image(c.Image), Rect: c.Rect})
	case svglayer.TextContent:
		e.text(c)
	}
}

func (e *emitter[C, P, M, I]) shape(s svglayer.ShapeContent) {
	path := s.Shape.Path()
	hasFill := !svglayer.IsNone(s.Fill.Paint)
	hasStroke := !svglayer.IsNone(s.Stroke.Paint) && s.Stroke.Width > 0
	if len(path) == 0 || (!hasFill && !hasStroke) {
		return
	}
	p := e.provider.Path(path)

	var stroke []Command[C, P, M, I]
	if hasStroke {
		if _, ok := s.Stroke.Paint.(*svglayer.PatternPaint); ok {
			svgicon.Logger().Debug("svg: pattern strokes are not supported")
		} else {
			st := s.Stroke
			stroke = []Command[C, P, M, I]{
				{Kind: SetLineWidth, Value: st.Width},
				{Kind: SetLineCap, Cap: st.Cap},
				{Kind: SetLineJoin, Join: st.Join},
				{Kind: SetMiterLimit, Value: st.MiterLimit},
				{Kind: SetDash, Dashes: st.Dash, Value: st.DashOffset},
				{Kind: SetStrokeColor, Color: e.provider.Color(st.Paint)},
				{Kind: Stroke, Path: p},
			}
		}
	}
	if hasFill {
		e.fill(path, p, s.Fill.Paint, s.Fill.Rule, stroke)
	} else {
		e.out = append(e.out, stroke...)
	}
}

// fill fills path with paint, then appends after.
func (e *emitter[C, P, M, I]) fill(path svgpath.Path, p P, paint svglayer.Paint, rule svgicon.FillRule, after []Command[C, P, M, I]) {
	if pat, ok := paint.(*svglayer.PatternPaint); ok {
		e.pattern(path, p, rule, pat, after)
		return
	}
	e.cmd(Command[C, P, M, I]{Kind: SetFillColor, Color: e.provider.Color(paint)})
	e.cmd(Command[C, P, M, I]{Kind: Fill, Path: p, Rule: rule})
	e.out = append(e.out, after...)
}

// tileRange returns the indices [start, end) of the tiles of
// size step, starting at origin, covering [min, min+size].
func tileRange(origin, step, min, size float64) (start, end float64) {
	start = math.Floor((min - origin) / step)
	end = math.Ceil((min + size - origin) / step)
	if end <= start {
		end = start + 1
	}
	return start, end
}

// pattern clips to the shape and repeats the pattern tile over its bounds.
func (e *emitter[C, P, M, I]) pattern(path svgpath.Path, p P, rule svgicon.FillRule, pat *svglayer.PatternPaint, after []Command[C, P, M, I]) {
	tile := pat.Tile
	bounds := path.Transform(pat.Transform.Invert()).Bounds()
	if tile.IsEmpty() || pat.Content == nil || bounds.IsEmpty() {
		e.out = append(e.out, after...)
		return
	}
	i0, i1 := tileRange(tile.X, tile.W, bounds.X, bounds.W)
	j0, j1 := tileRange(tile.Y, tile.H, bounds.Y, bounds.H)
	if math.IsInf(i1-i0, 0) || math.IsNaN(i1-i0) || math.IsInf(j1-j0, 0) || math.IsNaN(j1-j0) {
		e.out = append(e.out, after...)
		return
	}
	if nx, ny := i1-i0, j1-j0; nx*ny > MaxTiles {
		svgicon.Logger().Debug("svg: too many pattern tiles", "count", nx*ny, "max", MaxTiles)
		if nx > MaxTiles {
			i1, j1 = i0+MaxTiles, j0+1
		} else {
			j1 = j0 + math.Floor(MaxTiles/nx)
		}
	}

	e.cmd(Command[C, P, M, I]{Kind: PushState})
	e.cmd(Command[C, P, M, I]{Kind: SetClipPath, Path: p, Rule: rule})
	e.transform(pat.Transform)
	e.later(append([]Command[C, P, M, I]{{Kind: PopState}}, after...)...)

	tileClip := e.provider.Path(svgpath.RectPath(0, 0, tile.W, tile.H))
	for j := j1 - 1; j >= j0; j-- {
		for i := i1 - 1; i >= i0; i-- {
			e.later(Command[C, P, M, I]{Kind: PopState})
			e.stack = append(e.stack, item[C, P, M, I]{layer: pat.Content})
			e.later(
				Command[C, P, M, I]{Kind: PushState},
				Command[C, P, M, I]{Kind: Translate, X: tile.X + i*tile.W, Y: tile.Y + j*tile.H},
				Command[C, P, M, I]{Kind: SetClipPath, Path: tileClip, Rule: svgicon.NonZero},
			)
		}
	}
}

func (e *emitter[C, P, M, I]) text(t svglayer.TextContent) {
	if svglayer.IsNone(t.Fill) || t.Text == "" {
		return
	}
	if e.opts.Outliner == nil {
		svgicon.Logger().Debug("svg: text skipped, no glyph outliner", "text", t.Text)
		return
	}
	path, err := e.opts.Outliner.Outline(t)
	if err != nil {
		svgicon.Logger().Debug("svg: text skipped", "text", t.Text, "err", err)
		return
	}
	if len(path) == 0 {
		return
	}
	e.fill(path, e.provider.Path(path), t.Fill, svgicon.NonZero, nil)
}
