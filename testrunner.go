package maskedit

import (
	"encoding/json"
	"errors"
	"fmt"
)

// testStep is one scripted action. Unused fields are zero.
type testStep struct {
	Action  string  `json:"action"`
	Label   string  `json:"label,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	FromX   float64 `json:"fromX,omitempty"`
	FromY   float64 `json:"fromY,omitempty"`
	ToX     float64 `json:"toX,omitempty"`
	ToY     float64 `json:"toY,omitempty"`
	Frames  int     `json:"frames,omitempty"`
	Delta   float64 `json:"delta,omitempty"`
	Layer   int     `json:"layer,omitempty"`
	Size    float64 `json:"size,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	Mode    string  `json:"mode,omitempty"`
}

type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected input, editor commands and screenshots
// across frames for automated testing. Attach to a Session via
// SetTestRunner.
//
// Actions: screenshot, click, drag, pan, wheel, wait, layer, add_layer,
// toggle_layer, clear, clear_all, fill, brush, fit, reset.
type TestRunner struct {
	steps []testStep
	next  int // index of the next step to run
	idle  int // frames left in the current wait
	done  bool
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a Session via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("load test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("load test script: script has no steps")
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the session. Session.Update
// advances it before consuming injected input.
func (s *Session) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether every step has run and its injected input drained.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. A step never starts while
// injected input from an earlier one is still queued.
func (r *TestRunner) step(s *Session) {
	switch {
	case r.done, s.Injecting():
		return
	case r.idle > 0:
		r.idle--
		return
	case r.next >= len(r.steps):
		r.done = true
		return
	}

	st := r.steps[r.next]
	if st.Action == "wait" {
		// The frame running the wait counts toward it.
		r.idle = max(st.Frames-1, 0)
	} else if err := st.apply(s); err != nil {
		Logger().Warn("test script step failed", "step", r.next, "action", st.Action, "err", err)
	}
	r.next++

	if r.next >= len(r.steps) && r.idle == 0 && !s.Injecting() {
		r.done = true
	}
}

// apply performs a non-wait step against the session.
func (st testStep) apply(s *Session) error {
	switch st.Action {
	case "screenshot":
		s.Screenshot(st.Label)
	case "click":
		s.InjectClick(st.X, st.Y)
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "pan":
		s.InjectPan(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "wheel":
		s.Wheel(st.X, st.Y, st.Delta)
	case "layer":
		return s.SetActiveLayer(st.Layer)
	case "add_layer":
		if !s.AddLayer() {
			return fmt.Errorf("layer limit %d reached", MaxLayers)
		}
	case "toggle_layer":
		return s.ToggleLayerVisible(st.Layer)
	case "clear":
		return s.ClearActiveLayer()
	case "clear_all":
		return s.ClearAllLayers()
	case "fill":
		return s.FillActiveLayer()
	case "brush":
		if st.Size > 0 {
			s.SetBrushDiameter(st.Size)
		}
		if st.Opacity > 0 {
			s.SetBrushOpacity(st.Opacity)
		}
		switch st.Mode {
		case "":
		case "paint":
			s.SetBrushMode(BrushPaint)
		case "erase":
			s.SetBrushMode(BrushErase)
		default:
			return fmt.Errorf("unknown brush mode %q", st.Mode)
		}
	case "fit":
		s.FitToView()
	case "reset":
		s.ResetView()
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}
