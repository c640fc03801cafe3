package maskedit

import (
	"slices"
	"testing"
)

const frame = 1.0 / 60

func mustLoadScript(t *testing.T, data string) *TestRunner {
	t.Helper()
	r, err := LoadTestScript([]byte(data))
	if err != nil {
		t.Fatalf("LoadTestScript: %v", err)
	}
	return r
}

func TestLoadTestScriptFields(t *testing.T) {
	r := mustLoadScript(t, `{"steps": [
		{"action": "screenshot", "label": "start"},
		{"action": "click", "x": 12, "y": 34},
		{"action": "wait", "frames": 5},
		{"action": "brush", "size": 20, "opacity": 0.5, "mode": "erase"},
		{"action": "toggle_layer", "layer": 2}
	]}`)

	want := []testStep{
		{Action: "screenshot", Label: "start"},
		{Action: "click", X: 12, Y: 34},
		{Action: "wait", Frames: 5},
		{Action: "brush", Size: 20, Opacity: 0.5, Mode: "erase"},
		{Action: "toggle_layer", Layer: 2},
	}
	if !slices.Equal(r.steps, want) {
		t.Errorf("steps = %+v\nwant %+v", r.steps, want)
	}
	if r.Done() {
		t.Error("fresh runner reports Done")
	}
}

func TestLoadTestScriptRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `steps: click`},
		{"no steps key", `{}`},
		{"empty steps", `{"steps": []}`},
		{"wrong type", `{"steps": {"action": "click"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadTestScript([]byte(tt.data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRunnerClickPaints(t *testing.T) {
	s, _, log := newTestSession(t, 120, 120)
	r := mustLoadScript(t, `{"steps": [{"action": "click", "x": 60, "y": 60}]}`)
	s.SetTestRunner(r)

	// Frame 1 queues the click and delivers the press; frame 2 the release.
	s.Update(frame)
	if s.State() != StateDrawing {
		t.Fatalf("State after press = %v, want drawing", s.State())
	}
	s.Update(frame)
	if got := log.count(EventStrokeEnd); got != 1 {
		t.Errorf("stroke_end = %d, want 1", got)
	}
	if a := s.Store().ActiveLayer().AlphaAt(60, 60); a != 255 {
		t.Errorf("alpha under click = %d, want 255", a)
	}
	s.Update(frame)
	if !r.Done() {
		t.Error("runner not done after the click drained")
	}
}

func TestRunnerWaitCountsFrames(t *testing.T) {
	s, _, _ := newTestSession(t, 10, 10)
	r := mustLoadScript(t, `{"steps": [
		{"action": "wait", "frames": 3},
		{"action": "screenshot", "label": "late"}
	]}`)

	for i := 1; i <= 3; i++ {
		r.step(s)
		if len(s.screenshotQueue) != 0 {
			t.Fatalf("screenshot queued on frame %d", i)
		}
		if r.Done() {
			t.Fatalf("done on frame %d", i)
		}
	}
	r.step(s)
	if !slices.Equal(s.screenshotQueue, []string{"late"}) {
		t.Errorf("screenshotQueue = %v, want [late]", s.screenshotQueue)
	}
	if !r.Done() {
		t.Error("runner not done after the last step")
	}
}

func TestRunnerDragQueuesFrames(t *testing.T) {
	s, _, _ := newTestSession(t, 300, 300)
	r := mustLoadScript(t, `{"steps": [{"action": "drag", "fromX": 20, "fromY": 20, "toX": 280, "toY": 20, "frames": 6}]}`)

	r.step(s)
	if len(s.injectQueue) != 6 {
		t.Fatalf("queued %d events, want 6", len(s.injectQueue))
	}
	if r.Done() {
		t.Error("runner done while input is queued")
	}
}

func TestRunnerHoldsWhileInjecting(t *testing.T) {
	s, _, _ := newTestSession(t, 100, 100)
	r := mustLoadScript(t, `{"steps": [
		{"action": "click", "x": 40, "y": 40},
		{"action": "screenshot", "label": "painted"}
	]}`)

	r.step(s)
	r.step(s)
	if r.next != 1 {
		t.Fatalf("next = %d while the click is queued, want 1", r.next)
	}

	s.injectQueue = s.injectQueue[:0]
	r.step(s)
	if r.next != 2 {
		t.Errorf("next = %d, want 2", r.next)
	}
	if !slices.Equal(s.screenshotQueue, []string{"painted"}) {
		t.Errorf("screenshotQueue = %v, want [painted]", s.screenshotQueue)
	}
}

func TestRunnerEditorCommands(t *testing.T) {
	s, _, _ := newTestSession(t, 20, 20)
	r := mustLoadScript(t, `{"steps": [
		{"action": "add_layer"},
		{"action": "layer", "layer": 1},
		{"action": "brush", "size": 12, "opacity": 0.25, "mode": "erase"},
		{"action": "fill"},
		{"action": "brush", "mode": "paint"},
		{"action": "fill"},
		{"action": "toggle_layer", "layer": 1},
		{"action": "wheel", "x": 10, "y": 10, "delta": -1},
		{"action": "layer", "layer": 42},
		{"action": "bogus"}
	]}`)
	s.SetTestRunner(r)
	for i := 0; i < 20 && !r.Done(); i++ {
		s.Update(frame)
	}
	if !r.Done() {
		t.Fatal("runner did not finish")
	}

	st := s.Store()
	if st.Len() != 4 {
		t.Errorf("Len = %d, want 4", st.Len())
	}
	if st.Active() != 1 {
		t.Errorf("Active = %d, want 1", st.Active())
	}
	if b := s.Brush(); b.Diameter != 12 || b.Opacity != 0.25 || b.Mode != BrushPaint {
		t.Errorf("Brush = %+v", b)
	}
	l := st.Layers()[1]
	if l.AlphaAt(5, 5) != 255 {
		t.Errorf("layer 1 alpha = %d, want 255 after paint fill", l.AlphaAt(5, 5))
	}
	if l.Visible {
		t.Error("layer 1 still visible")
	}
	if !approxEqual(s.Viewport().Zoom, 1.1, 1e-9) {
		t.Errorf("Zoom = %v, want 1.1", s.Viewport().Zoom)
	}
}

func TestRunnerSingleStepFinishes(t *testing.T) {
	s, _, _ := newTestSession(t, 10, 10)
	r := mustLoadScript(t, `{"steps": [{"action": "fit"}]}`)

	r.step(s)
	if !r.Done() {
		t.Error("runner not done after its only step")
	}
	r.step(s)
	if r.next != 1 {
		t.Errorf("next = %d after finishing, want 1", r.next)
	}
}
