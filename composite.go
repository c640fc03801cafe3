package maskedit

import (
	"image"
	"math"
)

const (
	// ActiveLayerOpacity weights the tint of the layer being painted.
	ActiveLayerOpacity = 0.5
	// InactiveLayerOpacity weights the tint of every other visible layer.
	InactiveLayerOpacity = 0.3
)

// Compositor blends visible layers over a background, each tinted with its
// layer color and weighted by its alpha. The background alpha channel is
// carried through untouched.
type Compositor struct {
	ActiveOpacity   float64
	InactiveOpacity float64
}

// NewCompositor returns a Compositor with the default opacities.
func NewCompositor() *Compositor {
	return &Compositor{ActiveOpacity: ActiveLayerOpacity, InactiveOpacity: InactiveLayerOpacity}
}

// Render returns a new raster holding the composite of layers over bg.
func (c *Compositor) Render(bg *image.NRGBA, layers []*Layer, active int) *image.NRGBA {
	dst := image.NewNRGBA(bg.Bounds())
	c.RenderInto(dst, bg, layers, active)
	return dst
}

// RenderInto writes the composite into dst, which must have the same size
// as bg. Layers in order are blended cumulatively:
//
//	channel = floor(channel*(1-a*o) + color*a*o)
//
// where a is the layer alpha in [0, 1] and o is ActiveOpacity for the
// active layer and InactiveOpacity otherwise. Pixels with zero alpha, hidden
// layers, and layers whose size differs from bg are skipped.
func (c *Compositor) RenderInto(dst, bg *image.NRGBA, layers []*Layer, active int) {
	b := bg.Bounds()
	w, h := b.Dx(), b.Dy()
	copyNRGBA(dst, bg)

	for i, l := range layers {
		if l == nil || !l.Visible {
			continue
		}
		if l.width != w || l.height != h {
			Logger().Debug("composite: skipping layer with mismatched size",
				"layer", i, "size", l.Bounds().Size(), "background", b.Size())
			continue
		}
		o := c.InactiveOpacity
		if i == active {
			o = c.ActiveOpacity
		}
		cr, cg, cb := float64(l.Color.R), float64(l.Color.G), float64(l.Color.B)
		for y := 0; y < h; y++ {
			row := l.alpha[y*w : (y+1)*w]
			pix := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			for x, a := range row {
				if a == 0 {
					continue
				}
				k := float64(a) / 255 * o
				p := pix[x*4 : x*4+3]
				p[0] = blendChannel(p[0], cr, k)
				p[1] = blendChannel(p[1], cg, k)
				p[2] = blendChannel(p[2], cb, k)
			}
		}
	}
}

func blendChannel(bg uint8, color, k float64) uint8 {
	v := math.Floor(float64(bg)*(1-k) + color*k)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// copyNRGBA copies src into dst row by row, honoring both strides.
func copyNRGBA(dst, src *image.NRGBA) {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	for y := 0; y < h; y++ {
		so := y * src.Stride
		do := y * dst.Stride
		copy(dst.Pix[do:do+w*4], src.Pix[so:so+w*4])
	}
}

// SolidBackground returns a w x h opaque raster of a single color. Sessions
// without a loaded image composite over it.
func SolidBackground(w, h int, c RGB) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = 255
	}
	return img
}
