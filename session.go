package maskedit

import (
	"context"
	"fmt"
	"image"
	"time"
)

// SessionState is the interaction state of a session.
type SessionState uint8

const (
	StateIdle     SessionState = iota // no pointer interaction in progress
	StateDrawing                      // a paint stroke is in progress
	StatePanning                      // the canvas is being dragged
)

// String returns "idle", "drawing" or "panning".
func (st SessionState) String() string {
	switch st {
	case StateDrawing:
		return "drawing"
	case StatePanning:
		return "panning"
	default:
		return "idle"
	}
}

// EventSink receives every session event after the registered callbacks.
type EventSink interface {
	HandleEvent(Event)
}

// Session is one open mask editor: a layer stack over a background image, a
// viewport, a brush and the pointer state machine that ties them together.
//
// A Session is driven from a single goroutine. Pointer, wheel and key
// methods are the input surface; Update advances per-frame work (view
// animation, scripted input, throttled redraws).
type Session struct {
	cfg        EditorConfig
	store      *LayerStore
	view       *Viewport
	compositor *Compositor
	brush      BrushSettings
	background *image.NRGBA
	composite  *image.NRGBA

	containerW, containerH float64

	state        SessionState
	spaceHeld    bool
	lastCX       float64 // last canvas point of the stroke
	lastCY       float64
	lastX, lastY float64 // last container point while panning

	strokeStamps  int
	strokeDirty   image.Rectangle
	redrawDirty   image.Rectangle
	redrawPending bool
	lastRedraw    time.Time
	now           func() time.Time

	handlers handlerRegistry
	sink     EventSink
	storage  Storage
	nodeID   string
	closed   bool

	pointer         pointerState
	injectQueue     []syntheticPointerEvent
	testRunner      *TestRunner
	screenshotQueue []string
	// ScreenshotDir is where Screenshot writes composite PNGs.
	ScreenshotDir string

	debug bool
	stats debugStats
}

// NewSession opens an editor over bg with numLayers blank layers (clamped
// to [1, MaxLayers]). A nil bg returns ErrNoImage.
func NewSession(bg image.Image, numLayers int, opts ...SessionOption) (*Session, error) {
	if bg == nil {
		return nil, ErrNoImage
	}
	s := &Session{
		cfg:           DefaultEditorConfig(),
		view:          NewViewport(),
		compositor:    NewCompositor(),
		now:           time.Now,
		ScreenshotDir: "screenshots",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.StrokeStep <= 0 {
		s.cfg.StrokeStep = defaultStrokeStep
	}

	s.background = ToNRGBA(bg)
	b := s.background.Bounds()
	s.store = NewLayerStore(b.Dx(), b.Dy(), numLayers)
	for _, l := range s.store.Layers() {
		s.tint(l)
	}
	s.brush = s.cfg.Brush
	s.composite = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if s.containerW > 0 && s.containerH > 0 {
		s.view.FitToContainer(s.containerW, s.containerH, b.Dx(), b.Dy(), s.cfg.FitPadding)
	}
	s.Redraw()

	Logger().Info("session opened", "node", s.nodeID, "width", b.Dx(), "height", b.Dy(), "layers", s.store.Len())
	return s, nil
}

// Store returns the layer stack.
func (s *Session) Store() *LayerStore { return s.store }

// Viewport returns the session viewport.
func (s *Session) Viewport() *Viewport { return s.view }

// Background returns the background raster.
func (s *Session) Background() *image.NRGBA { return s.background }

// Composite returns the most recent composite. The image is reused across
// redraws.
func (s *Session) Composite() *image.NRGBA { return s.composite }

// State returns the interaction state.
func (s *Session) State() SessionState { return s.state }

// Brush returns the current brush.
func (s *Session) Brush() BrushSettings { return s.brush }

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool { return s.closed }

// Config returns the session configuration.
func (s *Session) Config() EditorConfig { return s.cfg }

// ContainerSize returns the size of the area hosting the canvas.
func (s *Session) ContainerSize() (w, h float64) { return s.containerW, s.containerH }

// SetEventSink installs a receiver for every event. Pass nil to remove it.
func (s *Session) SetEventSink(sink EventSink) { s.sink = sink }

// SetDebugMode enables per-stroke and per-composite statistics, logged at
// debug level.
func (s *Session) SetDebugMode(enabled bool) { s.debug = enabled }

// Seed loads persisted masks into the layers, one entry per layer index.
// Entries that are missing or do not fit leave their layer blank. It
// returns the number of layers seeded.
func (s *Session) Seed(set MaskSet) int {
	if s.closed {
		return 0
	}
	n := s.store.Seed(set.Layers(s.store.Len()))
	s.Redraw()
	return n
}

func (s *Session) canvasRect() Rect {
	return Rect{Width: float64(s.store.Width()), Height: float64(s.store.Height())}
}

// --- Pointer input ---

// PointerDown starts a stroke or a pan. The middle button, or the left
// button while Space or Alt is held, pans. The left button alone starts a stroke
// when the point lies on the canvas.
func (s *Session) PointerDown(e PointerEvent) {
	if s.closed || s.state != StateIdle {
		return
	}
	s.view.StopAnimation()
	if e.Button == MouseButtonMiddle || (e.Button == MouseButtonLeft && (s.spaceHeld || e.Modifiers&ModAlt != 0)) {
		s.state = StatePanning
		s.lastX, s.lastY = e.X, e.Y
		return
	}
	if e.Button != MouseButtonLeft {
		return
	}
	cx, cy := s.view.ContainerToCanvas(e.X, e.Y)
	if !s.canvasRect().Contains(cx, cy) {
		return
	}

	s.state = StateDrawing
	s.lastCX, s.lastCY = cx, cy
	s.strokeStamps = 1
	dirty := s.store.ActiveLayer().Stamp(cx, cy, s.brush)
	s.strokeDirty = dirty
	s.redrawDirty = s.redrawDirty.Union(dirty)
	s.emit(Event{Type: EventStrokeBegin, Layer: s.store.Active()})
	s.Redraw()
}

// PointerMove extends a stroke or a pan. Stroke moves that fall outside the
// canvas are ignored; the stroke resumes from its last point when the
// pointer returns.
func (s *Session) PointerMove(e PointerEvent) {
	if s.closed {
		return
	}
	switch s.state {
	case StatePanning:
		dx, dy := e.X-s.lastX, e.Y-s.lastY
		s.lastX, s.lastY = e.X, e.Y
		if dx == 0 && dy == 0 {
			return
		}
		s.view.Pan(dx, dy)
		s.emitView()
	case StateDrawing:
		cx, cy := s.view.ContainerToCanvas(e.X, e.Y)
		if !s.canvasRect().Contains(cx, cy) {
			return
		}
		n, dirty := s.store.ActiveLayer().StampLine(s.lastCX, s.lastCY, cx, cy, s.cfg.StrokeStep, s.brush)
		s.lastCX, s.lastCY = cx, cy
		s.strokeStamps += n
		s.strokeDirty = s.strokeDirty.Union(dirty)
		s.redrawDirty = s.redrawDirty.Union(dirty)
		s.requestRedraw()
	}
}

// PointerUp ends a stroke or a pan. A stroke always ends with a composite.
func (s *Session) PointerUp(PointerEvent) {
	s.endInteraction()
}

// PointerLeave is PointerUp for a pointer that left the container.
func (s *Session) PointerLeave() {
	s.endInteraction()
}

func (s *Session) endInteraction() {
	if s.closed {
		return
	}
	switch s.state {
	case StateDrawing:
		s.state = StateIdle
		s.Redraw()
		e := Event{Type: EventStrokeEnd, Layer: s.store.Active(), Dirty: s.strokeDirty, Stamps: s.strokeStamps}
		if s.debug {
			s.stats.strokes++
			s.stats.stamps += s.strokeStamps
			s.debugLogStroke(e)
		}
		s.strokeDirty = image.Rectangle{}
		s.strokeStamps = 0
		s.emit(e)
	case StatePanning:
		s.state = StateIdle
	}
}

// Wheel zooms toward the container point (x, y): in for negative deltaY,
// out for positive.
func (s *Session) Wheel(x, y, deltaY float64) {
	if s.closed || deltaY == 0 {
		return
	}
	factor := s.cfg.WheelZoomIn
	if deltaY > 0 {
		factor = s.cfg.WheelZoomOut
	}
	s.view.StopAnimation()
	if s.view.ZoomAt(x-s.view.PanX, y-s.view.PanY, factor) {
		s.emitView()
	}
}

// KeyDown handles a key press. Space arms panning; Escape cancels the
// session.
func (s *Session) KeyDown(k Key) {
	if s.closed {
		return
	}
	switch k {
	case KeySpace:
		s.spaceHeld = true
	case KeyEscape:
		s.Cancel()
	}
}

// KeyUp handles a key release.
func (s *Session) KeyUp(k Key) {
	if k == KeySpace {
		s.spaceHeld = false
	}
}

// --- Redraw ---

// Redraw recomputes the composite immediately and fires EventRedraw.
func (s *Session) Redraw() {
	if s.closed {
		return
	}
	var start time.Time
	if s.debug {
		start = time.Now()
	}
	s.compositor.RenderInto(s.composite, s.background, s.store.Layers(), s.store.Active())
	s.lastRedraw = s.now()
	s.redrawPending = false
	dirty := s.redrawDirty
	s.redrawDirty = image.Rectangle{}
	if s.debug {
		s.stats.redraws++
		s.stats.compositeTime += time.Since(start)
	}
	s.emit(Event{Type: EventRedraw, Layer: s.store.Active(), Dirty: dirty})
}

// requestRedraw composites now unless the previous composite is younger
// than the redraw interval, in which case the redraw is deferred to Update
// or the end of the stroke.
func (s *Session) requestRedraw() {
	if s.lastRedraw.IsZero() || s.now().Sub(s.lastRedraw) > s.cfg.RedrawInterval {
		s.Redraw()
		return
	}
	s.redrawPending = true
}

// RedrawPending reports whether a throttled redraw is waiting.
func (s *Session) RedrawPending() bool { return s.redrawPending }

// --- Frame update ---

// Update advances per-frame work by dt seconds: the test runner, one
// injected pointer event, the view animation and any deferred redraw.
func (s *Session) Update(dt float32) {
	if s.closed {
		return
	}
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInjectedInput()
	if s.closed {
		return
	}
	if s.view.Update(dt) {
		s.emitView()
	}
	if s.redrawPending && s.now().Sub(s.lastRedraw) > s.cfg.RedrawInterval {
		s.Redraw()
	}
	s.flushScreenshots()
}

// --- Layer operations ---

// AddLayer appends a blank layer and makes it active. At MaxLayers it does
// nothing and returns false.
func (s *Session) AddLayer() bool {
	if s.closed {
		return false
	}
	l, ok := s.store.AddLayer()
	if !ok {
		return false
	}
	s.tint(l)
	s.layersChanged()
	return true
}

// tint applies the configured palette, if any, to l.
func (s *Session) tint(l *Layer) {
	if n := len(s.cfg.Palette); n > 0 {
		l.Color = s.cfg.Palette[l.Index()%n]
	}
}

// SetActiveLayer selects the layer receiving strokes.
func (s *Session) SetActiveLayer(i int) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.store.SetActive(i); err != nil {
		return err
	}
	s.layersChanged()
	return nil
}

// ToggleLayerVisible shows or hides layer i.
func (s *Session) ToggleLayerVisible(i int) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.store.ToggleVisible(i); err != nil {
		return err
	}
	s.layersChanged()
	return nil
}

// ClearActiveLayer erases the active layer.
func (s *Session) ClearActiveLayer() error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.store.ClearLayer(s.store.Active()); err != nil {
		return err
	}
	s.layersChanged()
	return nil
}

// ClearAllLayers erases every layer.
func (s *Session) ClearAllLayers() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.store.ClearAll()
	s.layersChanged()
	return nil
}

// FillActiveLayer fills the active layer in the current brush mode: fully
// opaque for paint, fully transparent for erase.
func (s *Session) FillActiveLayer() error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.store.Fill(s.store.Active(), s.brush.Mode); err != nil {
		return err
	}
	s.layersChanged()
	return nil
}

func (s *Session) layersChanged() {
	s.redrawDirty = s.store.ActiveLayer().Bounds()
	s.Redraw()
	s.emit(Event{Type: EventLayersChanged, Layer: s.store.Active()})
}

// --- Brush ---

// SetBrushDiameter sets the brush diameter, clamped to
// [MinBrushDiameter, MaxBrushDiameter].
func (s *Session) SetBrushDiameter(d float64) { s.brush.SetDiameter(d) }

// SetBrushOpacity sets the brush opacity, clamped to [0, 1].
func (s *Session) SetBrushOpacity(o float64) { s.brush.SetOpacity(o) }

// SetBrushMode selects paint or erase.
func (s *Session) SetBrushMode(m BrushMode) { s.brush.Mode = m }

// --- View operations ---

// SetContainerSize records the size of the area hosting the canvas. The
// first call on a session without a size fits the canvas.
func (s *Session) SetContainerSize(w, h float64) {
	first := s.containerW <= 0 || s.containerH <= 0
	s.containerW, s.containerH = w, h
	if first && w > 0 && h > 0 {
		s.view.FitToContainer(w, h, s.store.Width(), s.store.Height(), s.cfg.FitPadding)
		s.emitView()
	}
}

// FitToView scales the canvas to fit the container, never above 1:1.
func (s *Session) FitToView() {
	if s.closed {
		return
	}
	if s.cfg.ViewAnimation > 0 {
		s.view.AnimateFit(s.containerW, s.containerH, s.store.Width(), s.store.Height(), s.cfg.FitPadding, s.cfg.ViewAnimation)
		return
	}
	s.view.StopAnimation()
	s.view.FitToContainer(s.containerW, s.containerH, s.store.Width(), s.store.Height(), s.cfg.FitPadding)
	s.emitView()
}

// ResetView shows the canvas at 1:1, centered.
func (s *Session) ResetView() {
	if s.closed {
		return
	}
	if s.cfg.ViewAnimation > 0 {
		s.view.AnimateReset(s.containerW, s.containerH, s.store.Width(), s.store.Height(), s.cfg.ViewAnimation)
		return
	}
	s.view.StopAnimation()
	s.view.ResetToIdentity(s.containerW, s.containerH, s.store.Width(), s.store.Height())
	s.emitView()
}

// ZoomIn zooms about the container center by the button step.
func (s *Session) ZoomIn() { s.zoomButton(s.cfg.ButtonZoomIn) }

// ZoomOut zooms about the container center by the button step.
func (s *Session) ZoomOut() { s.zoomButton(s.cfg.ButtonZoomOut) }

func (s *Session) zoomButton(factor float64) {
	if s.closed {
		return
	}
	s.view.StopAnimation()
	if s.view.ZoomBy(factor, s.containerW, s.containerH) {
		s.emitView()
	}
}

// ZoomInfo returns the zoom status label.
func (s *Session) ZoomInfo() string {
	return s.view.ZoomInfo(s.store.Width(), s.store.Height())
}

func (s *Session) emitView() {
	s.emit(Event{Type: EventViewChanged, Layer: s.store.Active(), Zoom: s.view.Zoom, PanX: s.view.PanX, PanY: s.view.PanY})
}

// --- Lifecycle ---

// MaskFilename returns the name Save stores masks under:
// mask_<nodeID>_<unix millis>.json.
func (s *Session) MaskFilename() string {
	return fmt.Sprintf("mask_%s_%d.json", s.nodeID, s.now().UnixMilli())
}

// Save encodes every layer and uploads the MaskSet through the session's
// Storage. On success it fires EventSaved, closes the session and returns
// the stored file name. On failure the session stays open with its layers
// intact.
func (s *Session) Save(ctx context.Context) (string, error) {
	if s.closed {
		return "", ErrSessionClosed
	}
	if s.storage == nil {
		return "", fmt.Errorf("save masks: no storage: %w", ErrUpload)
	}
	data, err := s.store.Encode().Marshal()
	if err != nil {
		return "", fmt.Errorf("save masks: %w", err)
	}
	filename := s.MaskFilename()
	name, err := s.storage.Upload(ctx, UploadFile{
		Name:        filename,
		Data:        data,
		ContentType: "application/json",
		Type:        "temp",
		Subfolder:   "masks",
	})
	if err != nil {
		Logger().Warn("failed to save masks", "node", s.nodeID, "file", filename, "err", err)
		return "", fmt.Errorf("save masks: %w", err)
	}
	if name == "" {
		name = filename
	}
	Logger().Info("saved masks", "node", s.nodeID, "file", name, "bytes", len(data))
	s.emit(Event{Type: EventSaved, Layer: s.store.Active(), Filename: name})
	s.Close()
	return name, nil
}

// Cancel closes the session without saving.
func (s *Session) Cancel() {
	if s.closed {
		return
	}
	Logger().Info("session cancelled", "node", s.nodeID)
	s.Close()
}

// Close ends the session: in-progress stroke state is discarded without a
// composite, EventClosed fires, and every subscription is released. Calling
// Close more than once is a no-op.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.state = StateIdle
	s.spaceHeld = false
	s.redrawPending = false
	s.strokeDirty = image.Rectangle{}
	s.strokeStamps = 0
	s.view.StopAnimation()
	s.injectQueue = nil
	s.testRunner = nil
	s.screenshotQueue = nil

	e := Event{Type: EventClosed, Layer: s.store.Active()}
	s.handlers.emit(e)
	if s.sink != nil {
		s.sink.HandleEvent(e)
	}
	s.handlers.removeAll()
	s.sink = nil
	if s.debug {
		s.debugLogSummary()
	}
	Logger().Info("session closed", "node", s.nodeID)
}

func (s *Session) emit(e Event) {
	s.handlers.emit(e)
	if s.sink != nil {
		s.sink.HandleEvent(e)
	}
}
