package maskedit

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunConfig holds optional configuration for Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ShowStatus draws the zoom, brush and layer status in the top-left corner.
	ShowStatus bool
}

var frameColor = color.RGBA{0x55, 0x55, 0x55, 0xFF}

// Game presents a Session in an Ebitengine window and feeds it mouse and
// keyboard input. It implements ebiten.Game.
//
// Keys: Space+drag, Alt+drag or middle-drag pans, wheel zooms, 1-9 and 0 select a
// layer, N adds a layer, H hides or shows the active layer, E toggles
// erase, [ and ] resize the brush, G fills, C clears (Shift+C clears all),
// F fits, R resets to 1:1, + and - zoom, Ctrl+S saves, Escape cancels.
type Game struct {
	session    *Session
	ctx        context.Context
	showStatus bool

	canvas      *ebiten.Image
	pix         []byte
	canvasDirty bool
	mouseInside bool
	saveErr     error
	redrawSub   CallbackHandle
}

// NewGame wraps a session for presentation.
func NewGame(ctx context.Context, s *Session, cfg RunConfig) *Game {
	g := &Game{session: s, ctx: ctx, showStatus: cfg.ShowStatus, canvasDirty: true}
	g.redrawSub = s.OnRedraw(func(Event) { g.canvasDirty = true })
	return g
}

// Update polls input and advances the session. It returns
// ebiten.Termination once the session is closed.
func (g *Game) Update() error {
	s := g.session
	if s.Closed() {
		return ebiten.Termination
	}
	dt := float32(1.0 / float64(ebiten.TPS()))

	g.processKeys()
	if s.Closed() {
		return ebiten.Termination
	}
	if !s.Injecting() {
		g.processMouse()
	}
	s.Update(dt)
	return nil
}

// processKeys maps key edges to session commands.
func (g *Game) processKeys() {
	s := g.session
	mods := readModifiers()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		s.KeyDown(KeySpace)
	}
	if inpututil.IsKeyJustReleased(ebiten.KeySpace) {
		s.KeyUp(KeySpace)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		s.KeyDown(KeyEscape)
		return
	}
	if mods&ModCtrl != 0 && inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if _, err := s.Save(g.ctx); err != nil {
			g.saveErr = err
		}
		return
	}

	digits := [...]ebiten.Key{
		ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5,
		ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9, ebiten.KeyDigit0,
	}
	for i, k := range digits {
		if inpututil.IsKeyJustPressed(k) && i < s.Store().Len() {
			_ = s.SetActiveLayer(i)
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		s.AddLayer()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		_ = s.ToggleLayerVisible(s.Store().Active())
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		if s.Brush().Mode == BrushErase {
			s.SetBrushMode(BrushPaint)
		} else {
			s.SetBrushMode(BrushErase)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		s.SetBrushDiameter(s.Brush().Diameter - 5)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		s.SetBrushDiameter(s.Brush().Diameter + 5)
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		_ = s.FillActiveLayer()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		if mods&ModShift != 0 {
			_ = s.ClearAllLayers()
		} else {
			_ = s.ClearActiveLayer()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		s.FitToView()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		s.ResetView()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		s.ZoomIn()
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		s.ZoomOut()
	}
}

// processMouse feeds the cursor, buttons and wheel to the session.
func (g *Game) processMouse() {
	s := g.session
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	cw, ch := s.ContainerSize()

	inside := x >= 0 && y >= 0 && x < cw && y < ch
	if !inside {
		if g.mouseInside {
			g.mouseInside = false
			s.leavePointer()
		}
		return
	}
	g.mouseInside = true

	if _, dy := ebiten.Wheel(); dy != 0 {
		// Wheel up is positive here and zooms in.
		s.Wheel(x, y, -dy)
	}

	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		switch {
		case left:
			button = MouseButtonLeft
		case middle:
			button = MouseButtonMiddle
		default:
			button = MouseButtonRight
		}
	}
	s.processPointer(x, y, pressed, button, readModifiers())
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// Draw uploads the composite when it changed and draws it under the
// viewport transform.
func (g *Game) Draw(screen *ebiten.Image) {
	s := g.session
	bg := s.Config().Background
	screen.Fill(color.RGBA{bg.R, bg.G, bg.B, 0xFF})
	comp := s.Composite()
	b := comp.Bounds()

	if g.canvas == nil {
		g.canvas = ebiten.NewImage(b.Dx(), b.Dy())
		g.pix = make([]byte, len(comp.Pix))
	}
	if g.canvasDirty {
		premultiply(g.pix, comp.Pix)
		g.canvas.WritePixels(g.pix)
		g.canvasDirty = false
	}

	v := s.Viewport()
	m := v.ViewMatrix()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.SetElement(0, 0, m[0])
	op.GeoM.SetElement(1, 0, m[1])
	op.GeoM.SetElement(0, 1, m[2])
	op.GeoM.SetElement(1, 1, m[3])
	op.GeoM.SetElement(0, 2, m[4])
	op.GeoM.SetElement(1, 2, m[5])
	if v.Zoom < 1 {
		op.Filter = ebiten.FilterLinear
	}
	screen.DrawImage(g.canvas, op)
	g.drawFrame(screen, b.Dx(), b.Dy())

	if g.showStatus {
		ebitenutil.DebugPrint(screen, g.status())
	}
}

// drawFrame outlines the canvas one pixel outside its edges.
func (g *Game) drawFrame(screen *ebiten.Image, w, h int) {
	x0, y0 := g.session.Viewport().CanvasToContainer(0, 0)
	x1, y1 := g.session.Viewport().CanvasToContainer(float64(w), float64(h))
	r := image.Rect(int(math.Floor(x0))-1, int(math.Floor(y0))-1, int(math.Ceil(x1))+1, int(math.Ceil(y1))+1)
	edges := [...]image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		e = e.Intersect(screen.Bounds())
		if e.Empty() {
			continue
		}
		screen.SubImage(e).(*ebiten.Image).Fill(frameColor)
	}
}

func (g *Game) status() string {
	s := g.session
	var sb strings.Builder
	sb.WriteString(s.ZoomInfo())
	br := s.Brush()
	fmt.Fprintf(&sb, "\nBrush: %.0fpx %.0f%% %s", br.Diameter, br.Opacity*100, br.Mode)
	for i, l := range s.Store().Layers() {
		marker := " "
		if i == s.Store().Active() {
			marker = ">"
		}
		vis := "on"
		if !l.Visible {
			vis = "off"
		}
		fmt.Fprintf(&sb, "\n%s %s %s [%s]", marker, l.Name, l.Color.Hex(), vis)
	}
	if g.saveErr != nil {
		fmt.Fprintf(&sb, "\nSave failed: %v", g.saveErr)
	}
	return sb.String()
}

// Layout reports the window size to the session as its container size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.session.SetContainerSize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// premultiply converts straight-alpha RGBA bytes to premultiplied alpha.
func premultiply(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		a := uint32(src[i+3])
		switch a {
		case 255:
			copy(dst[i:i+4], src[i:i+4])
		case 0:
			dst[i], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, 0
		default:
			dst[i] = uint8(uint32(src[i]) * a / 255)
			dst[i+1] = uint8(uint32(src[i+1]) * a / 255)
			dst[i+2] = uint8(uint32(src[i+2]) * a / 255)
			dst[i+3] = uint8(a)
		}
	}
}

// Run opens a window presenting the session and blocks until the session
// closes or the window is closed.
func Run(ctx context.Context, s *Session, cfg RunConfig) error {
	if cfg.Title == "" {
		cfg.Title = "Multi-Layer Mask Editor"
	}
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 800
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := NewGame(ctx, s, cfg)
	defer g.redrawSub.Remove()
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
