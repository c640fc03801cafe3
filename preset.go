package maskedit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Preset is a named set of scheduler widget values.
type Preset struct {
	StartStrength float64
	EndStrength   float64
	CurveType     string
	CurveParam    float64
}

// PresetCustom leaves the scheduler widgets as they are.
const PresetCustom = "Custom"

// Presets maps preset names to values. PresetCustom maps to nil.
var Presets = map[string]*Preset{
	PresetCustom:        nil,
	"Fade Out":          {1.0, 0.0, "ease_out", 2.0},
	"Fade In":           {0.0, 1.0, "ease_in", 2.0},
	"Peak Control":      {0.0, 0.0, "bell_curve", 2.0},
	"Valley Control":    {1.0, 1.0, "reverse_bell", 2.0},
	"Strong Start+End":  {1.0, 1.0, "reverse_bell", 3.0},
	"Oscillating":       {0.5, 0.5, "sine_wave", 3.0},
	"Exponential Decay": {1.0, 0.0, "exponential", 4.0},
	"Smooth Transition": {1.0, 0.0, "ease_in_out", 2.0},
}

// PresetNames lists the presets in display order.
var PresetNames = []string{
	PresetCustom, "Fade Out", "Fade In", "Peak Control", "Valley Control",
	"Strong Start+End", "Oscillating", "Exponential Decay", "Smooth Transition",
}

// Registration is a one-shot signal that the host finished creating a
// node and its widgets. The first Complete wins.
type Registration struct {
	once    sync.Once
	done    chan struct{}
	widgets NodeWidgets
}

// NewRegistration returns an incomplete registration.
func NewRegistration() *Registration {
	return &Registration{done: make(chan struct{})}
}

// Complete fires the registration with the created node's widgets.
// Later calls are ignored.
func (r *Registration) Complete(w NodeWidgets) {
	r.once.Do(func() {
		r.widgets = w
		close(r.done)
	})
}

// Done returns a channel closed when the registration completes.
func (r *Registration) Done() <-chan struct{} { return r.done }

// Wait blocks until the registration completes or ctx ends.
func (r *Registration) Wait(ctx context.Context) (NodeWidgets, error) {
	select {
	case <-r.done:
		return r.widgets, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// PresetApplier writes preset values into a scheduler node's widgets.
type PresetApplier struct {
	mu      sync.Mutex
	widgets NodeWidgets
}

// Attach waits, at most timeout, for reg to complete and binds the applier
// to the registered node. It fails with ErrRegistrationTimeout when the
// node never registers and ErrMissingWidget when the node has no preset
// widget.
func (a *PresetApplier) Attach(ctx context.Context, reg *Registration, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	w, err := reg.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		Logger().Warn("scheduler node never registered", "timeout", timeout)
		return fmt.Errorf("attach presets: %w", ErrRegistrationTimeout)
	}
	if err != nil {
		return fmt.Errorf("attach presets: %w", err)
	}
	if _, ok := w.String(WidgetPreset); !ok {
		return fmt.Errorf("attach presets: %s: %w", WidgetPreset, ErrMissingWidget)
	}
	a.mu.Lock()
	a.widgets = w
	a.mu.Unlock()
	Logger().Debug("preset handler attached", "node", w.ID())
	return nil
}

// Select applies the named preset and records it in the preset widget.
// PresetCustom and unknown names change nothing else and return false.
// Widgets the node lacks are skipped.
func (a *PresetApplier) Select(name string) bool {
	a.mu.Lock()
	w := a.widgets
	a.mu.Unlock()
	if w == nil {
		return false
	}
	w.SetString(WidgetPreset, name)
	p := Presets[name]
	if p == nil {
		return false
	}
	w.SetFloat(WidgetStartStrength, p.StartStrength)
	w.SetFloat(WidgetEndStrength, p.EndStrength)
	w.SetString(WidgetCurveType, p.CurveType)
	w.SetFloat(WidgetCurveParam, p.CurveParam)
	w.SetDirty()
	Logger().Debug("applied preset", "node", w.ID(), "preset", name)
	return true
}
