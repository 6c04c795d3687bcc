package svgraster

import (
	"image"
	"image/color"
	"math"

	"github.com/benoitkugler/svglayer/svgicon"
	"golang.org/x/image/draw"
)

// composite draws src onto dst, which must have the same bounds,
// with the given opacity and blend mode. If clip is not nil, its
// coverage restricts the modified area.
func composite(dst, src *image.RGBA, clip *image.Alpha, alpha float64, mode svgicon.BlendMode) {
	b := dst.Rect
	if mode == svgicon.BlendNormal {
		switch {
		case clip == nil && alpha >= 1:
			draw.Draw(dst, b, src, b.Min, draw.Over)
			return
		case clip == nil:
			mask := image.NewUniform(color.Alpha{A: uint8(math.Round(clamp01(alpha) * 255))})
			draw.DrawMask(dst, b, src, b.Min, mask, image.Point{}, draw.Over)
			return
		case alpha >= 1:
			draw.DrawMask(dst, b, src, b.Min, clip, b.Min, draw.Over)
			return
		}
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cov := alpha
			if clip != nil {
				cov *= float64(clip.Pix[clip.PixOffset(x, y)]) / 255
			}
			i := dst.PixOffset(x, y)
			d, s := dst.Pix[i:i+4:i+4], src.Pix[i:i+4:i+4]
			if mode == svgicon.BlendDestinationIn {
				// d * (1 - cov + cov*sa)
				f := 1 - cov + cov*float64(s[3])/255
				for k := range d {
					d[k] = to8(float64(d[k]) / 255 * f)
				}
				continue
			}
			if s[3] == 0 || cov <= 0 {
				continue
			}
			blendPixel(d, s, cov, mode)
		}
	}
}

// blendPixel composites the premultiplied pixel s, scaled by cov,
// onto d with the separable blend mode.
func blendPixel(d, s []uint8, cov float64, mode svgicon.BlendMode) {
	sa := float64(s[3]) / 255 * cov
	da := float64(d[3]) / 255
	for k := 0; k < 3; k++ {
		cs := float64(s[k]) / 255 * cov // premultiplied
		cb := float64(d[k]) / 255
		// unpremultiplied components for the blend function
		var us, ub float64
		if sa > 0 {
			us = cs / sa
		}
		if da > 0 {
			ub = cb / da
		}
		out := (1-da)*cs + (1-sa)*cb + sa*da*blend(ub, us, mode)
		d[k] = to8(out)
	}
	d[3] = to8(sa + da*(1-sa))
}

// blend returns B(cb, cs), as defined by W3C Compositing and Blending.
func blend(cb, cs float64, mode svgicon.BlendMode) float64 {
	switch mode {
	case svgicon.BlendMultiply:
		return cb * cs
	case svgicon.BlendScreen:
		return cb + cs - cb*cs
	case svgicon.BlendOverlay:
		// hard-light with swapped layers
		if cb <= 0.5 {
			return 2 * cs * cb
		}
		return blend(cs, 2*cb-1, svgicon.BlendScreen)
	case svgicon.BlendDarken:
		return math.Min(cb, cs)
	case svgicon.BlendLighten:
		return math.Max(cb, cs)
	default:
		return cs
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func to8(f float64) uint8 { return uint8(math.Round(clamp01(f) * 255)) }
