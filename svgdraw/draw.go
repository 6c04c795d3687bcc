// Package svgdraw turns a compiled scene graph into a flat
// stream of drawing commands, and replays it on a driver
// implementing the actual draw operations, such as a rasterizer
// to output .png images or a pdf writer.
//
// The commands are generic over the backend types of colors (C),
// paths (P), transforms (M) and images (I), so that the conversion
// from the scene values happens once, at emission time, through
// a TypeProvider.
package svgdraw

import (
	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpath"
)

// Kind identifies a drawing command.
type Kind uint8

const (
	PushState Kind = iota
	PopState
	PushTransparencyLayer
	PopTransparencyLayer
	ConcatTransform
	Translate
	Rotate
	Scale
	SetFillColor
	SetStrokeColor
	SetLineWidth
	SetLineCap
	SetLineJoin
	SetMiterLimit
	SetDash
	SetClipPath
	SetAlpha
	SetBlendMode
	Stroke
	Fill
	DrawImage
)

var kindNames = [...]string{
	PushState:             "PushState",
	PopState:              "PopState",
	PushTransparencyLayer: "PushTransparencyLayer",
	PopTransparencyLayer:  "PopTransparencyLayer",
	ConcatTransform:       "ConcatTransform",
	Translate:             "Translate",
	Rotate:                "Rotate",
	Scale:                 "Scale",
	SetFillColor:          "SetFillColor",
	SetStrokeColor:        "SetStrokeColor",
	SetLineWidth:          "SetLineWidth",
	SetLineCap:            "SetLineCap",
	SetLineJoin:           "SetLineJoin",
	SetMiterLimit:         "SetMiterLimit",
	SetDash:               "SetDash",
	SetClipPath:           "SetClipPath",
	SetAlpha:              "SetAlpha",
	SetBlendMode:          "SetBlendMode",
	Stroke:                "Stroke",
	Fill:                  "Fill",
	DrawImage:             "DrawImage",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "<unknown Kind>"
}

// Command is one drawing operation. Only the fields
// relevant for its Kind are set:
//
//	PushTransparencyLayer, SetAlpha: Value
//	Translate, Scale: X, Y
//	Rotate: Value (radians)
//	SetLineWidth, SetMiterLimit: Value
//	SetDash: Dashes, Value (offset)
//	SetLineCap: Cap
//	SetLineJoin: Join
//	SetBlendMode: Blend
//	ConcatTransform: Transform
//	SetFillColor, SetStrokeColor: Color
//	SetClipPath, Fill: Path, Rule
//	Stroke: Path
//	DrawImage: Image, Rect
type Command[C, P, M, I any] struct {
	Kind Kind

	Value  float64
	X, Y   float64
	Dashes []float64
	Cap    svgicon.CapMode
	Join   svgicon.JoinMode
	Rule   svgicon.FillRule
	Blend  svgicon.BlendMode
	Rect   svgpath.Rect

	Color     C
	Path      P
	Transform M
	Image     I
}

// TypeProvider converts the scene values into backend values.
type TypeProvider[C, P, M, I any] interface {
	// Color is called with a svglayer.Color or a *svglayer.Gradient.
	Color(p svglayer.Paint) C
	Path(p svgpath.Path) P
	Transform(m svgpath.Matrix2D) M
	Image(img *svglayer.Image) I
}

// Renderer executes the drawing commands.
//
// The graphic state is made of the current transform, the clip
// area, the fill and stroke colors, the line attributes, the global
// alpha and the blend mode. It is saved by PushState and restored
// by PopState.
//
// PushTransparencyLayer starts an offscreen group, initially transparent,
// recording the current blend mode. Inside the group the alpha is 1 and
// the blend mode is normal. PopTransparencyLayer composites the group on
// the backdrop, with the given alpha and the recorded blend mode, then
// restores the alpha and blend mode in effect at the push.
type Renderer[C, P, M, I any] interface {
	PushState()
	PopState()
	PushTransparencyLayer(alpha float64)
	PopTransparencyLayer()

	// ConcatTransform, Translate, Rotate and Scale modify the current
	// transform, the new transformation being applied first.
	ConcatTransform(m M)
	Translate(x, y float64)
	Rotate(angle float64)
	Scale(x, y float64)

	SetFillColor(c C)
	SetStrokeColor(c C)
	SetLineWidth(w float64)
	SetLineCap(c svgicon.CapMode)
	SetLineJoin(j svgicon.JoinMode)
	SetMiterLimit(limit float64)
	// SetDash sets the dash pattern; nil means a solid line.
	SetDash(dashes []float64, offset float64)

	// SetClipPath intersects the clip area with the inside of p.
	SetClipPath(p P, rule svgicon.FillRule)
	// SetAlpha sets the opacity applied to subsequent drawing.
	SetAlpha(alpha float64)
	// SetBlendMode sets the compositing operator of subsequent
	// drawing and transparency layers.
	SetBlendMode(mode svgicon.BlendMode)

	Stroke(p P)
	Fill(p P, rule svgicon.FillRule)
	// DrawImage draws img scaled into rect.
	DrawImage(img I, rect svgpath.Rect)
}

// Stream is a list of commands, as returned by Emit.
type Stream[C, P, M, I any] []Command[C, P, M, I]

// Replay executes the commands on r.
func (s Stream[C, P, M, I]) Replay(r Renderer[C, P, M, I]) {
	for _, cmd := range s {
		switch cmd.Kind {
		case PushState:
			r.PushState()
		case PopState:
			r.PopState()
		case PushTransparencyLayer:
			r.PushTransparencyLayer(cmd.Value)
		case PopTransparencyLayer:
			r.PopTransparencyLayer()
		case ConcatTransform:
			r.ConcatTransform(cmd.Transform)
		case Translate:
			r.Translate(cmd.X, cmd.Y)
		case Rotate:
			r.Rotate(cmd.Value)
		case Scale:
			r.Scale(cmd.X, cmd.Y)
		case SetFillColor:
			r.SetFillColor(cmd.Color)
		case SetStrokeColor:
			r.SetStrokeColor(cmd.Color)
		case SetLineWidth:
			r.SetLineWidth(cmd.Value)
		case SetLineCap:
			r.SetLineCap(cmd.Cap)
		case SetLineJoin:
			r.SetLineJoin(cmd.Join)
		case SetMiterLimit:
			r.SetMiterLimit(cmd.Value)
		case SetDash:
			r.SetDash(cmd.Dashes, cmd.Value)
		case SetClipPath:
			r.SetClipPath(cmd.Path, cmd.Rule)
		case SetAlpha:
			r.SetAlpha(cmd.Value)
		case SetBlendMode:
			r.SetBlendMode(cmd.Blend)
		case Stroke:
			r.Stroke(cmd.Path)
		case Fill:
			r.Fill(cmd.Path, cmd.Rule)
		case DrawImage:
			r.DrawImage(cmd.Image, cmd.Rect)
		}
	}
}

// Draw emits l and replays the commands on r.
func Draw[C, P, M, I any](l *svglayer.Layer, provider TypeProvider[C, P, M, I], r Renderer[C, P, M, I], opts Options) {
	Emit(l, provider, opts).Replay(r)
}
