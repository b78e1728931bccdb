package viewer

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/Versifine/locomotor/internal/input"
	"github.com/Versifine/locomotor/internal/logger"
	"github.com/Versifine/locomotor/internal/physics"
	"github.com/Versifine/locomotor/internal/scene"
	"github.com/Versifine/locomotor/internal/sim"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// pixels per world unit
	defaultZoom = 24.0
	// look units per pixel of mouse travel
	defaultMouseScale = 0.1
	// look units while an arrow key is held
	arrowLook = 1.0
)

type Options struct {
	Title      string
	FrameRate  int
	Zoom       float64
	MouseScale float64
}

// Game is an ebiten window host: it polls the keyboard and mouse into the
// runner's actions, advances one frame per tick and draws the scene from
// above.
type Game struct {
	runner *sim.Runner
	device *input.Device
	opts   Options

	captured   bool
	haveCursor bool
	cursorX    int
	cursorY    int
}

func NewGame(r *sim.Runner, opts Options) *Game {
	if opts.FrameRate <= 0 {
		opts.FrameRate = ebiten.DefaultTPS
	}
	if opts.Zoom <= 0 {
		opts.Zoom = defaultZoom
	}
	if opts.MouseScale <= 0 {
		opts.MouseScale = defaultMouseScale
	}
	return &Game{
		runner: r,
		device: input.NewDevice(r.Actions()),
		opts:   opts,
	}
}

// Run opens the window and blocks until it is closed or the runner's
// hooks end the run.
func Run(r *sim.Runner, opts Options) error {
	g := NewGame(r, opts)
	title := opts.Title
	if title == "" {
		title = "locomotor"
	}
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(g.opts.FrameRate)
	g.setCaptured(true)

	defer g.device.Release()
	return ebiten.RunGame(g)
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.setCaptured(!g.captured)
	}

	g.device.Sync(g.sample())

	err := g.runner.Frame(1 / float64(ebiten.TPS()))
	if errors.Is(err, sim.ErrDone) {
		return ebiten.Termination
	}
	return err
}

func (g *Game) setCaptured(on bool) {
	g.captured = on
	g.haveCursor = false
	if on {
		ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	}
	logger.Component("viewer").Debug("Cursor capture", "captured", on)
}

func (g *Game) sample() input.Sample {
	s := input.Sample{
		Forward:  ebiten.IsKeyPressed(ebiten.KeyW),
		Backward: ebiten.IsKeyPressed(ebiten.KeyS),
		Left:     ebiten.IsKeyPressed(ebiten.KeyA),
		Right:    ebiten.IsKeyPressed(ebiten.KeyD),
		Jump:     ebiten.IsKeyPressed(ebiten.KeySpace),
	}

	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		s.Look[0] -= arrowLook
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		s.Look[0] += arrowLook
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		s.Look[1] += arrowLook
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		s.Look[1] -= arrowLook
	}

	x, y := ebiten.CursorPosition()
	if g.captured && g.haveCursor {
		// screen y grows downward; look y is positive up
		s.Look[0] += float64(x-g.cursorX) * g.opts.MouseScale
		s.Look[1] -= float64(y-g.cursorY) * g.opts.MouseScale
	}
	g.cursorX, g.cursorY, g.haveCursor = x, y, true
	return s
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	snap := g.runner.Snapshot()
	view := newProjection(screen.Bounds().Dx(), screen.Bounds().Dy(), g.opts.Zoom, snap.Position)

	sc := g.runner.Scene()
	for _, cell := range sc.Blocks.Cells() {
		x, y := view.point(float64(cell[0]), float64(cell[2]+1))
		size := float32(g.opts.Zoom)
		vector.DrawFilledRect(screen, x, y, size, size, blockColor(cell[1]), false)
	}

	player := g.runner.Player()
	for _, b := range sc.Bodies() {
		if b == player {
			continue
		}
		g.drawBox(screen, view, b.Bounds(), bodyColor(b))
	}

	g.drawPlayer(screen, view, snap)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("TPS: %.1f  %s\n%s", ebiten.ActualTPS(), captureHint(g.captured), snap.String()))
}

func (g *Game) drawBox(screen *ebiten.Image, view projection, box physics.AABB, clr color.Color) {
	x, y := view.point(box.MinX, box.MaxZ)
	w := float32((box.MaxX - box.MinX) * view.zoom)
	h := float32((box.MaxZ - box.MinZ) * view.zoom)
	vector.DrawFilledRect(screen, x, y, w, h, clr, false)
	vector.StrokeRect(screen, x, y, w, h, 1, colornames.Black, false)
}

func (g *Game) drawPlayer(screen *ebiten.Image, view projection, snap sim.Snapshot) {
	radius := 0.3
	if c := g.runner.Character(); c != nil {
		box := c.Box()
		radius = (box.MaxX - box.MinX) / 2
	}
	if p := g.runner.Player(); p != nil {
		radius = p.HalfExtents().X()
	}

	cx, cy := view.point(snap.Position.X(), snap.Position.Z())
	fill := colornames.Crimson
	if !snap.Grounded {
		fill = colornames.Orange
	}
	vector.DrawFilledCircle(screen, cx, cy, float32(radius*view.zoom), fill, true)

	heading := headingTip(snap.Position, snap.Yaw, radius*2)
	hx, hy := view.point(heading.X(), heading.Z())
	vector.StrokeLine(screen, cx, cy, hx, hy, 2, colornames.White, true)

	camera := headingTip(snap.Position, snap.CameraYaw, radius*3)
	kx, ky := view.point(camera.X(), camera.Z())
	vector.StrokeLine(screen, cx, cy, kx, ky, 1, colornames.Lightgrey, true)
}

func headingTip(origin mgl64.Vec3, yaw, length float64) mgl64.Vec3 {
	return origin.Add(physics.YawRotation(yaw).Rotate(physics.Forward).Mul(length))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

// projection maps the ground plane onto the screen with +Z up and the
// player at the centre.
type projection struct {
	cx, cy float64
	zoom   float64
	focus  mgl64.Vec3
}

func newProjection(w, h int, zoom float64, focus mgl64.Vec3) projection {
	return projection{cx: float64(w) / 2, cy: float64(h) / 2, zoom: zoom, focus: focus}
}

func (p projection) point(x, z float64) (float32, float32) {
	sx := p.cx + (x-p.focus.X())*p.zoom
	sy := p.cy - (z-p.focus.Z())*p.zoom
	return float32(sx), float32(sy)
}

func blockColor(y int) color.Color {
	switch {
	case y < 0:
		return colornames.Darkolivegreen
	case y == 0:
		return colornames.Sienna
	default:
		return colornames.Saddlebrown
	}
}

func bodyColor(b *scene.RigidBody) color.Color {
	if b.Kinematic() {
		return colornames.Steelblue
	}
	if b.Grounded() {
		return colornames.Goldenrod
	}
	return colornames.Khaki
}

func captureHint(captured bool) string {
	if captured {
		return "mouse captured (Esc to release)"
	}
	return "mouse free (Esc to capture)"
}

var _ ebiten.Game = (*Game)(nil)
