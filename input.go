package maskedit

import (
	"image"
	"slices"
)

// PointerEvent is a pointer sample in container coordinates: pixels relative
// to the untransformed area hosting the canvas.
type PointerEvent struct {
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// Event describes something that happened in a session. Fields that do not
// apply to Type are zero.
type Event struct {
	Type EventType
	// Layer is the active layer index.
	Layer int
	// Dirty is the union of canvas pixels changed since the previous redraw
	// (EventRedraw) or over the whole stroke (EventStrokeEnd).
	Dirty image.Rectangle
	// Stamps is the number of brush stamps in the stroke (EventStrokeEnd).
	Stamps int
	// Zoom, PanX and PanY are the viewport after the change (EventViewChanged).
	Zoom, PanX, PanY float64
	// Filename is the stored mask file name (EventSaved).
	Filename string
}

const eventTypeCount = int(EventClosed) + 1

// --- Handler registry ---

type eventHandler struct {
	id uint32
	fn func(Event)
}

type handlerRegistry struct {
	handlers [eventTypeCount][]eventHandler
	nextID   uint32
}

func (r *handlerRegistry) add(t EventType, fn func(Event)) CallbackHandle {
	r.nextID++
	r.handlers[t] = append(r.handlers[t], eventHandler{id: r.nextID, fn: fn})
	return CallbackHandle{id: r.nextID, reg: r, event: t}
}

// emit calls the handlers for e.Type in registration order. Handlers may
// remove themselves or close the session while being called.
func (r *handlerRegistry) emit(e Event) {
	hs := r.handlers[e.Type]
	if len(hs) == 0 {
		return
	}
	for _, h := range slices.Clone(hs) {
		h.fn(e)
	}
}

// removeAll drops every handler. Outstanding handles become no-ops.
func (r *handlerRegistry) removeAll() {
	for i := range r.handlers {
		clear(r.handlers[i])
		r.handlers[i] = nil
	}
}

func (r *handlerRegistry) count() int {
	n := 0
	for i := range r.handlers {
		n += len(r.handlers[i])
	}
	return n
}

// CallbackHandle allows removing a registered session callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
// The entry is removed from the slice to avoid nil iteration waste.
func (h CallbackHandle) Remove() {
	if h.reg == nil || int(h.event) >= eventTypeCount {
		return
	}
	h.reg.handlers[h.event] = removeEventHandler(h.reg.handlers[h.event], h.id)
}

func removeEventHandler(s []eventHandler, id uint32) []eventHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = eventHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// --- Session subscriptions ---

// OnStrokeBegin registers a callback fired when a paint stroke starts.
func (s *Session) OnStrokeBegin(fn func(Event)) CallbackHandle {
	return s.handlers.add(EventStrokeBegin, fn)
}

// OnStrokeEnd registers a callback fired after a stroke's final composite.
func (s *Session) OnStrokeEnd(fn func(Event)) CallbackHandle {
	return s.handlers.add(EventStrokeEnd, fn)
}

// OnRedraw registers a callback fired after every composite.
func (s *Session) OnRedraw(fn func(Event)) CallbackHandle {
	return s.handlers.add(EventRedraw, fn)
}

// OnLayersChanged registers a callback fired when the layer stack, its
// visibility, its contents (outside strokes) or the active layer change.
func (s *Session) OnLayersChanged(fn func(Event)) CallbackHandle {
	return s.handlers.add(EventLayersChanged, fn)
}

// OnViewChanged registers a callback fired when zoom or pan change.
func (s *Session) OnViewChanged(fn func(Event)) CallbackHandle {
	return s.handlers.add(EventViewChanged, fn)
}

// OnSaved registers a callback fired after masks were stored.
func (s *Session) OnSaved(fn func(Event)) CallbackHandle {
	return s.handlers.add(EventSaved, fn)
}

// OnClosed registers a callback fired once when the session closes. It is
// the last callback the session fires.
func (s *Session) OnClosed(fn func(Event)) CallbackHandle {
	return s.handlers.add(EventClosed, fn)
}

// --- Polled pointer state ---

// pointerState turns per-frame pointer snapshots (position plus whether a
// button is held) into down, move and up transitions.
type pointerState struct {
	down         bool
	button       MouseButton // button captured at press time
	lastX, lastY float64
	seen         bool
}

// processPointer runs the snapshot state machine for the single pointer.
func (s *Session) processPointer(x, y float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &s.pointer
	moved := !ps.seen || x != ps.lastX || y != ps.lastY
	ps.seen = true

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		s.PointerDown(PointerEvent{X: x, Y: y, Button: button, Modifiers: mods})
	case !pressed && ps.down:
		// A release polled at a new position moved there first.
		if moved {
			s.PointerMove(PointerEvent{X: x, Y: y, Button: ps.button, Modifiers: mods})
		}
		ps.down = false
		s.PointerUp(PointerEvent{X: x, Y: y, Button: ps.button, Modifiers: mods})
	case moved:
		// Held moves keep the press-time button.
		b := button
		if ps.down {
			b = ps.button
		}
		s.PointerMove(PointerEvent{X: x, Y: y, Button: b, Modifiers: mods})
	}
	ps.lastX, ps.lastY = x, y
}

// leavePointer reports that the pointer left the container.
func (s *Session) leavePointer() {
	s.pointer.down = false
	s.pointer.seen = false
	s.PointerLeave()
}
