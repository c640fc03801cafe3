package maskedit

import (
	"image"
	"math"
)

// BrushMode selects whether strokes add or remove mask coverage.
type BrushMode uint8

const (
	BrushPaint BrushMode = iota // source-over white
	BrushErase                  // destination-out
)

// String returns "paint" or "erase".
func (m BrushMode) String() string {
	if m == BrushErase {
		return "erase"
	}
	return "paint"
}

const (
	MinBrushDiameter     = 1.0
	MaxBrushDiameter     = 200.0
	DefaultBrushDiameter = 50.0
)

// BrushSettings controls the shape and strength of brush stamps.
type BrushSettings struct {
	// Diameter in canvas pixels, within [MinBrushDiameter, MaxBrushDiameter].
	Diameter float64
	// Opacity of a single stamp in [0, 1].
	Opacity float64
	// Mode selects paint or erase.
	Mode BrushMode
}

// DefaultBrush returns a 50px fully opaque paint brush.
func DefaultBrush() BrushSettings {
	return BrushSettings{Diameter: DefaultBrushDiameter, Opacity: 1, Mode: BrushPaint}
}

// SetDiameter sets the diameter, clamped to the allowed range.
func (b *BrushSettings) SetDiameter(d float64) {
	b.Diameter = clampFloat(d, MinBrushDiameter, MaxBrushDiameter)
}

// SetOpacity sets the opacity, clamped to [0, 1].
func (b *BrushSettings) SetOpacity(o float64) {
	b.Opacity = clampFloat(o, 0, 1)
}

// Stamp applies one circular brush stamp centered at canvas point (x, y)
// and returns the rectangle of pixels it touched. Pixels at the rim receive
// partial coverage across a one-pixel band.
func (l *Layer) Stamp(x, y float64, b BrushSettings) image.Rectangle {
	r := b.Diameter / 2
	if r <= 0 || b.Opacity <= 0 {
		return image.Rectangle{}
	}
	area := image.Rect(
		int(math.Floor(x-r-1)), int(math.Floor(y-r-1)),
		int(math.Ceil(x+r+1)), int(math.Ceil(y+r+1)),
	).Intersect(l.Bounds())
	if area.Empty() {
		return image.Rectangle{}
	}

	for py := area.Min.Y; py < area.Max.Y; py++ {
		dy := float64(py) + 0.5 - y
		row := l.alpha[py*l.width : (py+1)*l.width]
		for px := area.Min.X; px < area.Max.X; px++ {
			dx := float64(px) + 0.5 - x
			cov := r + 0.5 - math.Sqrt(dx*dx+dy*dy)
			if cov <= 0 {
				continue
			}
			if cov > 1 {
				cov = 1
			}
			src := cov * b.Opacity
			dst := float64(row[px]) / 255
			var out float64
			if b.Mode == BrushErase {
				out = dst * (1 - src)
			} else {
				out = src + dst*(1-src)
			}
			row[px] = uint8(math.Round(out * 255))
		}
	}
	return area
}

// strokeSteps returns the number of interpolation intervals for a segment of
// the given length when stamping every step units. Always at least 1.
func strokeSteps(dist, step float64) int {
	if step <= 0 {
		step = defaultStrokeStep
	}
	n := int(math.Floor(dist / step))
	if n < 1 {
		n = 1
	}
	return n
}

// StampLine stamps along the segment from (x0, y0) to (x1, y1) every step
// canvas units, including both endpoints. It returns the number of stamps
// and the union of touched pixels.
func (l *Layer) StampLine(x0, y0, x1, y1, step float64, b BrushSettings) (int, image.Rectangle) {
	dist := math.Hypot(x1-x0, y1-y0)
	steps := strokeSteps(dist, step)
	var dirty image.Rectangle
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		dirty = dirty.Union(l.Stamp(x0+(x1-x0)*t, y0+(y1-y0)*t, b))
	}
	return steps + 1, dirty
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
