package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/urfave/cli"

	"github.com/taigrr/zonevis/pkg/log"
	"github.com/taigrr/zonevis/pkg/render"
)

const (
	moveSpeed   = 6.0 // units per second
	turnImpulse = 2.5 // radians per second
)

// Axis is one camera angle whose velocity decays with a critically damped
// spring.
type Axis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

func NewAxis(fps int) Axis {
	return Axis{velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// Update applies velocity to position and eases velocity toward zero.
func (a *Axis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// walker is the interactive state of the view command.
type walker struct {
	sc         *scene
	yaw, pitch Axis
	move       struct{ forward, right float64 }
	showHUD    bool
	firstView  bool
	rec        render.Recorder
	wire       *render.Wireframe
	rep        *render.Report
	fps        float64
	frames     int
	fpsTime    time.Time
}

// Interactive walks through a level in the terminal, drawing either the
// top-down visibility map of every frame or a wireframe of what the eye sees.
func Interactive(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := setupScene(ctx)
	if err != nil {
		return err
	}
	fps := ctx.Int("fps")
	if fps < 1 {
		fps = 30
	}

	// Log output would tear the screen.
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err == nil {
		defer devNull.Close()
		log.SetSink(devNull)
	}

	w := &walker{
		sc:      sc,
		yaw:     NewAxis(fps),
		pitch:   NewAxis(fps),
		showHUD: true,
		fpsTime: time.Now(),
	}
	w.yaw.Position = sc.view.Camera.Yaw
	w.pitch.Position = sc.view.Camera.Pitch
	return w.run(fps)
}

func (w *walker) run(fps int) error {
	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	fb := w.resize(width, height)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil

		case <-sigChan:
			cancel()

		case ev := <-term.Events():
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				fb = w.resize(width, height)
			case uv.KeyPressEvent:
				if w.key(ev) {
					cancel()
				}
			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w", "s"):
					w.move.forward = 0
				case ev.MatchString("a", "d"):
					w.move.right = 0
				}
			}

		case now := <-ticker.C:
			dt := min(now.Sub(lastFrame).Seconds(), 0.1)
			lastFrame = now
			w.step(now, dt)
			if !w.firstView {
				render.DrawMap(fb, w.sc.level, w.rep, w.sc.view.Camera.Position)
			}
			fb.Draw(term, uv.Rect(0, 0, width, max(height-1, 1)))
			w.drawHUD(term, width, height)
			if err := term.Display(); err != nil {
				cleanup()
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}

// resize makes a framebuffer filling all terminal rows but the HUD line.
func (w *walker) resize(width, height int) *render.Framebuffer {
	fb := render.NewFramebuffer(width, max(height-1, 1)*2)
	cam := w.sc.view.Camera
	cam.SetAspectRatio(float64(fb.Width) / float64(fb.Height))
	if w.wire == nil {
		w.wire = render.NewWireframe(cam, fb, w.sc.level)
	} else {
		w.wire.Resize(fb)
	}
	return fb
}

// key handles a key press and reports whether to quit.
func (w *walker) key(ev uv.KeyPressEvent) bool {
	v := w.sc.view
	switch {
	case ev.MatchString("escape", "ctrl+c"):
		return true
	case ev.MatchString("w"):
		w.move.forward = 1
	case ev.MatchString("s"):
		w.move.forward = -1
	case ev.MatchString("a"):
		w.move.right = -1
	case ev.MatchString("d"):
		w.move.right = 1
	case ev.MatchString("left"):
		w.yaw.Velocity += turnImpulse / 30
	case ev.MatchString("right"):
		w.yaw.Velocity -= turnImpulse / 30
	case ev.MatchString("up"):
		w.pitch.Velocity += turnImpulse / 60
	case ev.MatchString("down"):
		w.pitch.Velocity -= turnImpulse / 60
	case ev.MatchString("m"):
		v.Flags ^= render.StencilMirrors
	case ev.MatchString("tab"):
		w.firstView = !w.firstView
	case ev.MatchString("?"), ev.MatchString("shift+/"):
		w.showHUD = !w.showHUD
	}
	return false
}

// step advances the camera and renders one frame.
func (w *walker) step(now time.Time, dt float64) {
	w.yaw.Update()
	w.pitch.Update()
	w.pitch.Position = math.Max(-math.Pi/2+0.01, math.Min(math.Pi/2-0.01, w.pitch.Position))

	cam := w.sc.view.Camera
	cam.SetRotation(w.pitch.Position, w.yaw.Position)
	if w.move.forward != 0 {
		cam.MoveForward(w.move.forward * moveSpeed * dt)
	}
	if w.move.right != 0 {
		cam.MoveRight(w.move.right * moveSpeed * dt)
	}
	w.move.forward *= 0.9
	w.move.right *= 0.9

	w.sc.view.Time += dt
	if w.firstView {
		w.wire.Begin(render.ColorBackground)
		w.rep = w.sc.renderer.RenderView(w.sc.view, w.wire)
	} else {
		w.rec.Reset()
		w.rep = w.sc.renderer.RenderView(w.sc.view, &w.rec)
	}

	w.frames++
	if elapsed := now.Sub(w.fpsTime); elapsed >= time.Second {
		w.fps = float64(w.frames) / elapsed.Seconds()
		w.frames = 0
		w.fpsTime = now
	}
}

var (
	hudFg = color.RGBA{230, 230, 230, 255}
	hudBg = color.RGBA{20, 20, 20, 255}
)

func (w *walker) drawHUD(scr uv.Screen, width, height int) {
	if height < 2 {
		return
	}
	line := ""
	if w.showHUD && w.rep != nil {
		t := &w.rep.Total
		mirrors := "on"
		if !w.sc.view.Flags.Has(render.StencilMirrors) {
			mirrors = "off"
		}
		p := w.sc.view.Camera.Position
		line = fmt.Sprintf(" %.0f FPS | eye %.1f,%.1f,%.1f | passes %d | leaves %d | entities %d | portals %d | mirrors %s | wasd move, arrows turn, tab eye/map, m mirrors, esc quit",
			w.fps, p.X, p.Y, p.Z, len(w.rep.Passes), t.Leaves, t.Entities, t.Portals, mirrors)
	}
	row := height - 1
	runes := []rune(line)
	for col := 0; col < width; col++ {
		content := " "
		if col < len(runes) {
			content = string(runes[col])
		}
		scr.SetCell(col, row, &uv.Cell{
			Content: content,
			Width:   1,
			Style:   uv.Style{Fg: hudFg, Bg: hudBg},
		})
	}
}
