package svgdraw

import (
	"math"
	"sync"

	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/benoitkugler/svglayer/svglayer"
	"github.com/benoitkugler/svglayer/svgpath"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// GlyphOutliner converts a text run into a path, in
// the user space of the text element, filled with the nonzero rule.
type GlyphOutliner interface {
	Outline(t svglayer.TextContent) (svgpath.Path, error)
}

// FontOutliner lays out text on a single line, using
// one font for every family. It is safe for concurrent use.
type FontOutliner struct {
	font *sfnt.Font

	mu  sync.Mutex
	buf sfnt.Buffer
}

// NewFontOutliner parses a TrueType or OpenType font.
func NewFontOutliner(data []byte) (*FontOutliner, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	return &FontOutliner{font: f}, nil
}

var defaultOutliner = sync.OnceValue(func() *FontOutliner {
	out, err := NewFontOutliner(goregular.TTF)
	if err != nil {
		panic("svgdraw: invalid embedded font: " + err.Error())
	}
	return out
})

// DefaultOutliner returns an outliner using the Go Regular font.
func DefaultOutliner() *FontOutliner { return defaultOutliner() }

// Outline implements GlyphOutliner. Kerning is applied, but no shaping.
func (o *FontOutliner) Outline(t svglayer.TextContent) (svgpath.Path, error) {
	ppem := fixed.Int26_6(math.Round(t.FontSize * 64))
	if ppem <= 0 {
		return nil, nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	var (
		path    svgpath.Path
		x       fixed.Int26_6
		prev    sfnt.GlyphIndex
		hasPrev bool
		open    bool
	)
	toPoint := func(p fixed.Point26_6) svgpath.Point {
		return svgpath.Point{X: t.X + float64(x+p.X)/64, Y: t.Y + float64(p.Y)/64}
	}
	for _, r := range t.Text {
		gi, err := o.font.GlyphIndex(&o.buf, r)
		if err != nil {
			return nil, err
		}
		if hasPrev {
			if k, err := o.font.Kern(&o.buf, prev, gi, ppem, font.HintingNone); err == nil {
				x += k
			}
		}
		segments, err := o.font.LoadGlyph(&o.buf, gi, ppem, nil)
		if err != nil {
			svgicon.Logger().Debug("svg: missing glyph", "rune", r, "err", err)
		}
		// segments are only valid until the next call to LoadGlyph
		for _, seg := range segments {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				if open {
					path.Stop(true)
				}
				path.Start(toPoint(seg.Args[0]))
				open = true
			case sfnt.SegmentOpLineTo:
				path.Line(toPoint(seg.Args[0]))
			case sfnt.SegmentOpQuadTo:
				path.QuadBezier(toPoint(seg.Args[0]), toPoint(seg.Args[1]))
			case sfnt.SegmentOpCubeTo:
				path.CubeBezier(toPoint(seg.Args[0]), toPoint(seg.Args[1]), toPoint(seg.Args[2]))
			}
		}
		adv, err := o.font.GlyphAdvance(&o.buf, gi, ppem, font.HintingNone)
		if err != nil {
			return nil, err
		}
		x += adv
		prev, hasPrev = gi, true
	}
	if open {
		path.Stop(true)
	}

	width := float64(x) / 64
	switch t.Anchor {
	case svgicon.AnchorMiddle:
		path = path.Transform(svgpath.Identity.Translate(-width/2, 0))
	case svgicon.AnchorEnd:
		path = path.Transform(svgpath.Identity.Translate(-width, 0))
	}
	return path, nil
}
