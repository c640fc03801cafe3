package maskedit

// syntheticPointerEvent represents a single injected pointer event in
// container coordinates, fed through the same snapshot state machine as
// polled mouse input.
type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
	button  MouseButton
	leave   bool
}

// InjectPress queues a left-button press at the given container coordinates.
// The event is consumed on the next Update.
func (s *Session) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
		x: x, y: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectMove queues a pointer move with the button held down. Use this
// between InjectPress and InjectRelease to simulate a stroke.
func (s *Session) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
		x: x, y: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectRelease queues a pointer release at the given container coordinates.
func (s *Session) InjectRelease(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
		x: x, y: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// InjectLeave queues the pointer leaving the container.
func (s *Session) InjectLeave() {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{leave: true})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same coordinates: a single-stamp stroke. Consumes two frames.
func (s *Session) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a full stroke: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, and release at
// (toX, toY). The total sequence consumes `frames` frames. Minimum frames
// is 2 (press + release).
func (s *Session) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	s.injectDrag(fromX, fromY, toX, toY, frames, MouseButtonLeft)
}

// InjectPan is InjectDrag with the middle button, which pans the canvas.
func (s *Session) InjectPan(fromX, fromY, toX, toY float64, frames int) {
	s.injectDrag(fromX, fromY, toX, toY, frames, MouseButtonMiddle)
}

func (s *Session) injectDrag(fromX, fromY, toX, toY float64, frames int, button MouseButton) {
	if frames < 2 {
		frames = 2
	}
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{x: fromX, y: fromY, pressed: true, button: button})
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
			x:       fromX + (toX-fromX)*t,
			y:       fromY + (toY-fromY)*t,
			pressed: true,
			button:  button,
		})
	}
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{x: toX, y: toY, button: button})
}

// Injecting reports whether injected events are waiting. Presenters skip
// real pointer input while it is true.
func (s *Session) Injecting() bool { return len(s.injectQueue) > 0 }

// processInjectedInput pops one event from the inject queue and feeds it
// through processPointer. Returns true if an event was consumed.
func (s *Session) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	if evt.leave {
		s.leavePointer()
		return true
	}
	s.processPointer(evt.x, evt.y, evt.pressed, evt.button, 0)
	return true
}
