package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/spiderling/pkg/logging"
	"github.com/taigrr/spiderling/pkg/object"
	"github.com/taigrr/spiderling/pkg/render"
)

// HUD renders an overlay with scene info and the current pick.
type HUD struct {
	name      string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	Visible   bool
}

// NewHUD creates a new HUD
func NewHUD(name string, polyCount int) *HUD {
	return &HUD{
		name:      name,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render writes the HUD rows directly to the terminal.
func (h *HUD) Render(width, height int, mode Mode, pickInfo string) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Clear first so toggling off works.
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)
	if !h.Visible {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	titleCol := max((width-len(h.name)-2)/2, 1)
	fmt.Printf("%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, h.name, reset)

	polyCol := max(width-14, 1)
	fmt.Printf("%s%s%s%s %d polys %s", moveTo(1, polyCol), bgBlack, fgCyan, bold, h.polyCount, reset)

	fmt.Printf("%s%s%s [%s] %s %s", moveTo(height, 1), bgBlack, fgWhite, mode, pickInfo, reset)
	hintCol := max(width-24, 1)
	fmt.Printf("%s%s%s M: mode  G: grid %s", moveTo(height, hintCol), bgBlack, fgYellow, reset)
}

func describePick(r *Renderer) string {
	p := r.Selected()
	if !p.Found() {
		return "click to pick"
	}
	pos := p.Hit.Position
	kind := "object"
	if o, ok := p.Object.(*object.Rasterizable); ok {
		kind = o.Mesh().Name
	}
	return fmt.Sprintf("%s at (%.2f, %.2f, %.2f) t=%.2f", kind, pos.X, pos.Y, pos.Z, p.Hit.T)
}

// view runs the interactive terminal loop until ctx is done or the user
// quits.
func view(ctx context.Context, world *World, mode Mode, opts *options, bg render.Color, log logging.Logger) error {
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

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Each terminal row shows two framebuffer rows.
	renderer := NewRenderer(world, mode, opts.workers, width, height*2, bg, log)
	hud := NewHUD(world.Name, world.Triangles())
	rotation := NewRotationState(opts.fps)
	cam := world.Scene.Camera()
	home := cam.Position

	var mu sync.Mutex
	inputTorque := struct{ pitch, yaw, roll float64 }{}
	const torqueStrength = 3.0

	var mouseDown, dragged bool
	var lastMouseX, lastMouseY int

	// zoom keeps the camera between 1 and 50 units from the target.
	zoom := func(delta float64) {
		d := cam.Position.Distance(world.Target)
		cam.MoveForward(d - math.Min(50, math.Max(1, d+delta)))
	}

	go func() {
		for ev := range term.Events() {
			mu.Lock()
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				renderer.Resize(width, height*2)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c"):
					cancel()
				case ev.MatchString("shift+left"):
					cam.MoveRight(-0.25)
				case ev.MatchString("shift+right"):
					cam.MoveRight(0.25)
				case ev.MatchString("w", "up"):
					inputTorque.pitch = -torqueStrength
				case ev.MatchString("s", "down"):
					inputTorque.pitch = torqueStrength
				case ev.MatchString("a", "left"):
					inputTorque.yaw = -torqueStrength
				case ev.MatchString("d", "right"):
					inputTorque.yaw = torqueStrength
				case ev.MatchString("q"):
					inputTorque.roll = -torqueStrength
				case ev.MatchString("e"):
					inputTorque.roll = torqueStrength
				case ev.MatchString("r"):
					rotation.Reset()
					cam.SetPosition(home)
					cam.LookAt(world.Target)
				case ev.MatchString("m"):
					if renderer.mode == ModeRaster {
						renderer.mode = ModeTrace
					} else {
						renderer.mode = ModeRaster
					}
				case ev.MatchString("g"):
					renderer.ShowGrid = !renderer.ShowGrid
				case ev.MatchString("+", "="):
					zoom(-0.5)
				case ev.MatchString("-", "_"):
					zoom(0.5)
				case ev.MatchString("?", "shift+/"):
					hud.Visible = !hud.Visible
				}

			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w", "up", "s", "down"):
					inputTorque.pitch = 0
				case ev.MatchString("a", "left", "d", "right"):
					inputTorque.yaw = 0
				case ev.MatchString("q", "e"):
					inputTorque.roll = 0
				}

			case uv.MouseClickEvent:
				mouseDown, dragged = true, false
				lastMouseX, lastMouseY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				if mouseDown && !dragged {
					if p, ok := renderer.Pick(float64(ev.X)+0.5, float64(ev.Y*2)+1); ok {
						log.Debugf("picked %T at t=%.3f", p.Object, p.Hit.T)
					}
				}
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					dx := ev.X - lastMouseX
					dy := ev.Y - lastMouseY
					if dx != 0 || dy != 0 {
						dragged = true
					}
					rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					zoom(-0.5)
				case uv.MouseWheelDown:
					zoom(0.5)
				}
			}
			mu.Unlock()
		}
	}()

	targetDuration := time.Second / time.Duration(opts.fps)
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		mu.Lock()
		// Key release events are unreliable, so held torque decays.
		rotation.ApplyImpulse(inputTorque.pitch*dt, inputTorque.yaw*dt, inputTorque.roll*dt)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9
		inputTorque.roll *= 0.9
		rotation.Update()
		world.Animate(rotation.Matrix())

		err := renderer.Render(ctx)
		if err == nil {
			renderer.Framebuffer().Draw(term, term.Bounds())
			err = term.Display()
		}
		hud.UpdateFPS()
		hud.Render(width, height, renderer.mode, describePick(renderer))
		mu.Unlock()

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("render frame: %w", err)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
