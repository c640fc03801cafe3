package maskedit

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// CurvePoint is a control point: X is progress in [0, 1], Y is strength in
// [0, 2].
type CurvePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

const (
	curveWidth        = 700
	curveHeight       = 450
	curvePadding      = 50
	curveHitThreshold = 15.0
	curveMaxY         = 2.0
)

// DefaultCurvePoints returns the linear fade from 1 to 0.
func DefaultCurvePoints() []CurvePoint {
	return []CurvePoint{{0, 1}, {0.25, 0.75}, {0.5, 0.5}, {0.75, 0.25}, {1, 0}}
}

// CurveEditor is the model behind the curve designer widget: a list of
// control points edited with the pointer on a padded canvas. Every change is
// written to the node's points_data widget as JSON.
type CurveEditor struct {
	// Width, Height and Padding describe the drawing canvas.
	Width, Height, Padding float64

	points   []CurvePoint
	selected int
	hover    int
	dragging bool
	widgets  NodeWidgets
}

// NewCurveEditor returns an editor holding the default points. A nil
// widgets is allowed.
func NewCurveEditor(widgets NodeWidgets) *CurveEditor {
	c := &CurveEditor{
		Width:    curveWidth,
		Height:   curveHeight,
		Padding:  curvePadding,
		points:   DefaultCurvePoints(),
		selected: -1,
		hover:    -1,
		widgets:  widgets,
	}
	c.write()
	return c
}

// Points returns a copy of the control points in their current order.
func (c *CurveEditor) Points() []CurvePoint { return slices.Clone(c.points) }

// SetPoints replaces the control points.
func (c *CurveEditor) SetPoints(pts []CurvePoint) {
	c.points = slices.Clone(pts)
	c.selected, c.hover, c.dragging = -1, -1, false
	c.write()
}

// Hover returns the index of the point under the pointer, or -1.
func (c *CurveEditor) Hover() int { return c.hover }

// Dragging returns the index of the point being dragged, or -1.
func (c *CurveEditor) Dragging() int {
	if !c.dragging {
		return -1
	}
	return c.selected
}

// ToCanvas maps a point to canvas pixels.
func (c *CurveEditor) ToCanvas(p CurvePoint) (x, y float64) {
	return c.Padding + p.X*(c.Width-2*c.Padding),
		c.Height - c.Padding - p.Y*(c.Height-2*c.Padding)
}

// FromCanvas maps canvas pixels to a point, clamping X to [0, 1] and Y to
// [0, 2].
func (c *CurveEditor) FromCanvas(x, y float64) CurvePoint {
	return CurvePoint{
		X: clampFloat((x-c.Padding)/(c.Width-2*c.Padding), 0, 1),
		Y: clampFloat((c.Height-c.Padding-y)/(c.Height-2*c.Padding), 0, curveMaxY),
	}
}

// PointAt returns the first point within the hit threshold of (x, y), or -1.
func (c *CurveEditor) PointAt(x, y float64) int {
	for i, p := range c.points {
		px, py := c.ToCanvas(p)
		if math.Hypot(x-px, y-py) < curveHitThreshold {
			return i
		}
	}
	return -1
}

// PointerDown starts dragging the point under (x, y) or, when there is
// none, adds a point there.
func (c *CurveEditor) PointerDown(x, y float64) {
	if i := c.PointAt(x, y); i >= 0 {
		c.selected = i
		c.dragging = true
		return
	}
	c.points = append(c.points, c.FromCanvas(x, y))
	c.Sort()
}

// PointerMove drags the selected point or updates the hover index.
func (c *CurveEditor) PointerMove(x, y float64) {
	if c.dragging && c.selected >= 0 {
		c.points[c.selected] = c.FromCanvas(x, y)
		c.write()
		return
	}
	c.hover = c.PointAt(x, y)
}

// PointerUp ends a drag and re-sorts the points.
func (c *CurveEditor) PointerUp() {
	if c.dragging {
		c.Sort()
	}
	c.dragging = false
	c.selected = -1
}

// PointerLeave abandons any drag and hover.
func (c *CurveEditor) PointerLeave() {
	c.dragging = false
	c.selected = -1
	c.hover = -1
}

// DoubleClick deletes the point under (x, y).
func (c *CurveEditor) DoubleClick(x, y float64) bool {
	i := c.PointAt(x, y)
	if i < 0 {
		return false
	}
	return c.Delete(i)
}

// Delete removes point i. Curves keep at least two points; deleting from a
// two-point curve does nothing and returns false.
func (c *CurveEditor) Delete(i int) bool {
	if i < 0 || i >= len(c.points) || len(c.points) <= 2 {
		return false
	}
	c.points = slices.Delete(c.points, i, i+1)
	c.write()
	return true
}

// Clear replaces the points with the rising diagonal (0,0)-(1,1).
func (c *CurveEditor) Clear() {
	c.points = []CurvePoint{{0, 0}, {1, 1}}
	c.write()
}

// Reset restores the default points.
func (c *CurveEditor) Reset() {
	c.points = DefaultCurvePoints()
	c.write()
}

// AddMidpoint adds (0.5, 0.5).
func (c *CurveEditor) AddMidpoint() {
	c.points = append(c.points, CurvePoint{0.5, 0.5})
	c.Sort()
}

// MakeSymmetric keeps the points with X <= 0.5 and mirrors those left of
// the center onto the right half.
func (c *CurveEditor) MakeSymmetric() {
	var left []CurvePoint
	for _, p := range c.points {
		if p.X <= 0.5 {
			left = append(left, p)
		}
	}
	out := slices.Clone(left)
	for _, p := range left {
		if p.X < 0.5 {
			out = append(out, CurvePoint{1 - p.X, p.Y})
		}
	}
	c.points = out
	c.Sort()
}

// InvertY flips every point about the larger of 1 and the highest Y.
func (c *CurveEditor) InvertY() {
	maxY := 1.0
	for _, p := range c.points {
		maxY = math.Max(maxY, p.Y)
	}
	for i := range c.points {
		c.points[i].Y = maxY - c.points[i].Y
	}
	c.write()
}

// Sort orders the points by X, keeping the order of equal X.
func (c *CurveEditor) Sort() {
	slices.SortStableFunc(c.points, compareCurveX)
	c.write()
}

// Sample evaluates the curve at x by linear interpolation.
func (c *CurveEditor) Sample(x float64) float64 {
	return SampleCurve(c.points, x)
}

// MarshalPoints returns the points_data JSON.
func (c *CurveEditor) MarshalPoints() string {
	b, err := json.Marshal(c.points)
	if err != nil {
		// Only NaN or Inf coordinates fail, and FromCanvas never yields them.
		return "[]"
	}
	return string(b)
}

func (c *CurveEditor) write() {
	if c.widgets == nil {
		return
	}
	if !c.widgets.SetString(WidgetPointsData, c.MarshalPoints()) {
		Logger().Debug("curve: no points_data widget", "node", c.widgets.ID())
	}
}

func compareCurveX(a, b CurvePoint) int {
	return cmp.Compare(a.X, b.X)
}

// ParseCurvePoints parses a points_data value.
func ParseCurvePoints(data string) ([]CurvePoint, error) {
	var pts []CurvePoint
	if err := json.Unmarshal([]byte(data), &pts); err != nil {
		return nil, fmt.Errorf("parse curve points: %w", err)
	}
	return pts, nil
}

// SampleCurve evaluates piecewise-linear interpolation through pts at x.
// Points are sorted by X first; x outside the points takes the nearest end
// value. An empty curve is 0.
func SampleCurve(pts []CurvePoint, x float64) float64 {
	if len(pts) == 0 {
		return 0
	}
	sorted := slices.Clone(pts)
	slices.SortStableFunc(sorted, compareCurveX)
	if x <= sorted[0].X {
		return sorted[0].Y
	}
	last := sorted[len(sorted)-1]
	if x >= last.X {
		return last.Y
	}
	for i := 1; i < len(sorted); i++ {
		a, b := sorted[i-1], sorted[i]
		if x <= b.X {
			if b.X == a.X {
				return b.Y
			}
			t := (x - a.X) / (b.X - a.X)
			return a.Y + (b.Y-a.Y)*t
		}
	}
	return last.Y
}

// SampleCurveN evaluates the curve at n evenly spaced points over [0, 1].
func SampleCurveN(pts []CurvePoint, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		x := 0.0
		if n > 1 {
			x = float64(i) / float64(n-1)
		}
		out[i] = SampleCurve(pts, x)
	}
	return out
}
