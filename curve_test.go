package maskedit

import (
	"slices"
	"testing"
)

func curveNode() *MemoryNode {
	return NewMemoryNode("c").AddString(WidgetPointsData, "")
}

func assertPoints(t *testing.T, got, want []CurvePoint) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("points = %v, want %v", got, want)
	}
	for i := range got {
		if !approxEqual(got[i].X, want[i].X, 1e-9) || !approxEqual(got[i].Y, want[i].Y, 1e-9) {
			t.Fatalf("points = %v, want %v", got, want)
		}
	}
}

func TestNewCurveEditorWritesDefaults(t *testing.T) {
	node := curveNode()
	c := NewCurveEditor(node)
	assertPoints(t, c.Points(), DefaultCurvePoints())

	got, _ := node.String(WidgetPointsData)
	want := `[{"x":0,"y":1},{"x":0.25,"y":0.75},{"x":0.5,"y":0.5},{"x":0.75,"y":0.25},{"x":1,"y":0}]`
	if got != want {
		t.Errorf("points_data = %s, want %s", got, want)
	}
}

func TestCurveCanvasMapping(t *testing.T) {
	c := NewCurveEditor(nil)
	tests := []struct {
		name   string
		p      CurvePoint
		cx, cy float64
	}{
		{"origin", CurvePoint{0, 0}, 50, 400},
		{"unit", CurvePoint{1, 1}, 650, 50},
		{"mid", CurvePoint{0.5, 0.5}, 350, 225},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := c.ToCanvas(tt.p)
			if !approxEqual(x, tt.cx, 1e-9) || !approxEqual(y, tt.cy, 1e-9) {
				t.Errorf("ToCanvas = (%v, %v), want (%v, %v)", x, y, tt.cx, tt.cy)
			}
			back := c.FromCanvas(x, y)
			if !approxEqual(back.X, tt.p.X, 1e-9) || !approxEqual(back.Y, tt.p.Y, 1e-9) {
				t.Errorf("FromCanvas = %v, want %v", back, tt.p)
			}
		})
	}

	if p := c.FromCanvas(-100, 900); p != (CurvePoint{0, 0}) {
		t.Errorf("clamp low = %v", p)
	}
	if p := c.FromCanvas(800, -1000); p != (CurvePoint{1, 2}) {
		t.Errorf("clamp high = %v", p)
	}
}

func TestCurvePointAt(t *testing.T) {
	c := NewCurveEditor(nil)
	if i := c.PointAt(350, 225); i != 2 {
		t.Errorf("PointAt center = %d, want 2", i)
	}
	if i := c.PointAt(350+14, 225); i != 2 {
		t.Errorf("PointAt within threshold = %d, want 2", i)
	}
	if i := c.PointAt(350+15, 225); i != -1 {
		t.Errorf("PointAt at threshold = %d, want -1", i)
	}
}

func TestCurveAddPoint(t *testing.T) {
	node := curveNode()
	c := NewCurveEditor(node)
	c.PointerDown(200, 300)
	c.PointerUp()

	pts := c.Points()
	if len(pts) != 6 {
		t.Fatalf("points = %d, want 6", len(pts))
	}
	// Equal X keeps insertion order: the existing point stays first.
	if pts[1] != (CurvePoint{0.25, 0.75}) {
		t.Errorf("pts[1] = %v", pts[1])
	}
	if !approxEqual(pts[2].X, 0.25, 1e-9) || !approxEqual(pts[2].Y, 100.0/350, 1e-9) {
		t.Errorf("pts[2] = %v, want (0.25, %v)", pts[2], 100.0/350)
	}
	data, _ := node.String(WidgetPointsData)
	parsed, err := ParseCurvePoints(data)
	if err != nil {
		t.Fatal(err)
	}
	assertPoints(t, parsed, pts)
}

func TestCurveDragPoint(t *testing.T) {
	c := NewCurveEditor(nil)
	c.PointerDown(350, 225) // (0.5, 0.5)
	if c.Dragging() != 2 {
		t.Fatalf("Dragging = %d, want 2", c.Dragging())
	}
	// Drag past the 0.75 point; sorting happens on release.
	c.PointerMove(530, 120)
	if p := c.Points()[2]; !approxEqual(p.X, 0.8, 1e-9) || !approxEqual(p.Y, 0.8, 1e-9) {
		t.Errorf("dragged point = %v, want (0.8, 0.8)", p)
	}
	c.PointerUp()
	if c.Dragging() != -1 {
		t.Error("drag should end on release")
	}
	pts := c.Points()
	if !slices.IsSortedFunc(pts, compareCurveX) {
		t.Errorf("points not sorted: %v", pts)
	}
	if !approxEqual(pts[3].X, 0.8, 1e-9) {
		t.Errorf("pts[3] = %v, want the dragged point", pts[3])
	}
}

func TestCurveHover(t *testing.T) {
	c := NewCurveEditor(nil)
	c.PointerMove(50, 50) // (0, 1)
	if c.Hover() != 0 {
		t.Errorf("Hover = %d, want 0", c.Hover())
	}
	c.PointerMove(300, 300)
	if c.Hover() != -1 {
		t.Errorf("Hover = %d, want -1", c.Hover())
	}
	c.PointerMove(50, 50)
	c.PointerLeave()
	if c.Hover() != -1 || c.Dragging() != -1 {
		t.Error("leave should reset hover and drag")
	}
}

func TestCurveDelete(t *testing.T) {
	c := NewCurveEditor(nil)
	if !c.DoubleClick(350, 225) {
		t.Fatal("double click on a point should delete it")
	}
	if len(c.Points()) != 4 {
		t.Fatalf("points = %d, want 4", len(c.Points()))
	}
	if c.DoubleClick(300, 300) {
		t.Error("double click on empty space should do nothing")
	}
	c.Delete(0)
	c.Delete(0)
	if len(c.Points()) != 2 {
		t.Fatalf("points = %d, want 2", len(c.Points()))
	}
	if c.Delete(0) {
		t.Error("a curve keeps at least two points")
	}
	if c.Delete(7) {
		t.Error("out of range delete should fail")
	}
}

func TestCurveClearResetMidpoint(t *testing.T) {
	c := NewCurveEditor(nil)
	c.Clear()
	assertPoints(t, c.Points(), []CurvePoint{{0, 0}, {1, 1}})
	c.AddMidpoint()
	assertPoints(t, c.Points(), []CurvePoint{{0, 0}, {0.5, 0.5}, {1, 1}})
	c.Reset()
	assertPoints(t, c.Points(), DefaultCurvePoints())
}

func TestCurveMakeSymmetric(t *testing.T) {
	c := NewCurveEditor(nil)
	c.MakeSymmetric()
	assertPoints(t, c.Points(), []CurvePoint{{0, 1}, {0.25, 0.75}, {0.5, 0.5}, {0.75, 0.75}, {1, 1}})

	c.SetPoints([]CurvePoint{{0.1, 0.2}, {0.9, 1.5}})
	c.MakeSymmetric()
	assertPoints(t, c.Points(), []CurvePoint{{0.1, 0.2}, {0.9, 0.2}})
}

func TestCurveInvertY(t *testing.T) {
	c := NewCurveEditor(nil)
	c.InvertY()
	assertPoints(t, c.Points(), []CurvePoint{{0, 0}, {0.25, 0.25}, {0.5, 0.5}, {0.75, 0.75}, {1, 1}})

	c.SetPoints([]CurvePoint{{0, 0.5}, {1, 1.5}})
	c.InvertY()
	assertPoints(t, c.Points(), []CurvePoint{{0, 1}, {1, 0}})
}

func TestSampleCurve(t *testing.T) {
	pts := DefaultCurvePoints()
	tests := []struct {
		x, want float64
	}{
		{-1, 1},
		{0, 1},
		{0.1, 0.9},
		{0.6, 0.4},
		{1, 0},
		{2, 0},
	}
	for _, tt := range tests {
		if got := SampleCurve(pts, tt.x); !approxEqual(got, tt.want, 1e-9) {
			t.Errorf("SampleCurve(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
	if SampleCurve(nil, 0.5) != 0 {
		t.Error("empty curve should sample 0")
	}
	// Unsorted input is sorted before sampling.
	if got := SampleCurve([]CurvePoint{{1, 1}, {0, 0}}, 0.25); !approxEqual(got, 0.25, 1e-9) {
		t.Errorf("unsorted sample = %v, want 0.25", got)
	}

	got := SampleCurveN(pts, 5)
	want := []float64{1, 0.75, 0.5, 0.25, 0}
	for i := range want {
		if !approxEqual(got[i], want[i], 1e-9) {
			t.Errorf("SampleCurveN[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if SampleCurveN(pts, 0) != nil {
		t.Error("n=0 should return nil")
	}
	if c := NewCurveEditor(nil); !approxEqual(c.Sample(0.5), 0.5, 1e-9) {
		t.Errorf("Sample(0.5) = %v", c.Sample(0.5))
	}
}

func TestParseCurvePointsInvalid(t *testing.T) {
	if _, err := ParseCurvePoints("{"); err == nil {
		t.Error("expected error")
	}
}
