// roam - interactive 3D scene viewer for the terminal.
// Renders triangle-mesh scenes with a free-flying camera.
//
// Controls:
//
//	W/A/S/D     - Move forward/left/back/right
//	R/F         - Move up/down
//	I/K/J/L     - Look up/down/left/right (arrow keys also work)
//	Q/E         - Roll left/right
//	+/-         - Focal length (zoom) in/out
//	Z/X         - Dolly zoom in/out
//	Tab         - Toggle wireframe overlay
//	P           - Save a screenshot (roam-<timestamp>.png)
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/fsnotify/fsnotify"

	"github.com/taigrr/roam/pkg/input"
	"github.com/taigrr/roam/pkg/math3d"
	"github.com/taigrr/roam/pkg/render"
	"github.com/taigrr/roam/pkg/scene"
)

// config comes from the environment first, then flags override.
type config struct {
	FPS     int     `env:"ROAM_FPS" envDefault:"60"`
	Ambient float64 `env:"ROAM_AMBIENT"`
	BG      string  `env:"ROAM_BG"`
	Watch   bool    `env:"ROAM_WATCH"`
	LogFile string  `env:"ROAM_LOG"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	flag.IntVar(&cfg.FPS, "fps", cfg.FPS, "Target FPS")
	flag.Float64Var(&cfg.Ambient, "ambient", cfg.Ambient, "Ambient light floor in (0,1); 0 uses the default")
	flag.StringVar(&cfg.BG, "bg", cfg.BG, "Fallback background color as R,G,B")
	flag.BoolVar(&cfg.Watch, "watch", cfg.Watch, "Reload the scene file when it changes")
	flag.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Write logs to this file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "roam - interactive terminal 3D scene viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: roam [options] <scene.toml>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  W/A/S/D     - Move\n")
		fmt.Fprintf(os.Stderr, "  R/F         - Move up/down\n")
		fmt.Fprintf(os.Stderr, "  I/J/K/L     - Look (arrows too)\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Roll\n")
		fmt.Fprintf(os.Stderr, "  +/-         - Zoom\n")
		fmt.Fprintf(os.Stderr, "  Z/X         - Dolly zoom\n")
		fmt.Fprintf(os.Stderr, "  Tab         - Wireframe\n")
		fmt.Fprintf(os.Stderr, "  P           - Screenshot\n")
		fmt.Fprintf(os.Stderr, "  ?           - HUD\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	if cfg.FPS < 1 {
		cfg.FPS = 60
	}

	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(flag.Arg(0), cfg, logger); err != nil {
		logger.Error("fatal", "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the app logger. Stdout belongs to the renderer, so
// without a log file everything is discarded.
func newLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
	})
	return logger, func() { f.Close() }, nil
}

// axis is one smoothed motion channel: key presses add velocity, a
// critically damped spring bleeds it back to zero.
type axis struct {
	vel    float64
	accel  float64
	spring harmonica.Spring
}

func newAxis(fps int) axis {
	// Frequency 4.0, damping 1.0: critically damped, no overshoot.
	return axis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

func (a *axis) impulse(v float64) {
	a.vel += v
}

// step returns this frame's displacement and decays the velocity.
func (a *axis) step() float64 {
	v := a.vel
	a.vel, a.accel = a.spring.Update(a.vel, a.accel, 0)
	return v
}

// motion holds the six smoothed camera channels.
type motion struct {
	right, up, forward axis // translation
	yaw, pitch, roll   axis // rotation
}

func newMotion(fps int) *motion {
	return &motion{
		right: newAxis(fps), up: newAxis(fps), forward: newAxis(fps),
		yaw: newAxis(fps), pitch: newAxis(fps), roll: newAxis(fps),
	}
}

// apply feeds a command into the motion springs; non-motion commands
// fall through to input.Apply for the instantaneous ones.
func (m *motion) apply(cmd input.Command, cam *render.Camera) bool {
	switch cmd {
	case input.MoveForward:
		m.forward.impulse(input.MoveStep)
	case input.MoveBack:
		m.forward.impulse(-input.MoveStep)
	case input.MoveLeft:
		m.right.impulse(-input.MoveStep)
	case input.MoveRight:
		m.right.impulse(input.MoveStep)
	case input.MoveUp:
		m.up.impulse(input.MoveStep)
	case input.MoveDown:
		m.up.impulse(-input.MoveStep)
	case input.LookLeft:
		m.yaw.impulse(-input.LookStep)
	case input.LookRight:
		m.yaw.impulse(input.LookStep)
	case input.LookUp:
		m.pitch.impulse(input.LookStep)
	case input.LookDown:
		m.pitch.impulse(-input.LookStep)
	case input.RollLeft:
		m.roll.impulse(-input.RollStep)
	case input.RollRight:
		m.roll.impulse(input.RollStep)
	default:
		return input.Apply(cmd, cam)
	}
	return true
}

// update advances the springs and moves the camera.
func (m *motion) update(cam *render.Camera) {
	cam.Move(m.right.step(), m.up.step(), m.forward.step())
	if y := m.yaw.step(); y != 0 {
		cam.LookRight(y)
	}
	if p := m.pitch.step(); p != 0 {
		cam.LookUp(p)
	}
	if r := m.roll.step(); r != 0 {
		cam.Roll(r)
	}
}

// frametimes is a rolling window of recent frame durations for the HUD.
type frametimes struct {
	samples [120]time.Duration
	n       int
	next    int
}

func (ft *frametimes) add(d time.Duration) {
	ft.samples[ft.next] = d
	ft.next = (ft.next + 1) % len(ft.samples)
	if ft.n < len(ft.samples) {
		ft.n++
	}
}

func (ft *frametimes) average() time.Duration {
	if ft.n == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < ft.n; i++ {
		sum += ft.samples[i]
	}
	return sum / time.Duration(ft.n)
}

// hud draws a two-line overlay with raw ANSI, outside the cell buffer so
// it never fights the depth-tested frame.
type hud struct {
	scenePath string
	visible   bool
}

func (h *hud) render(width, height int, cam *render.Camera, stats render.Stats, avg time.Duration, wire bool) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Clear the HUD rows so toggling off works.
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)
	if !h.visible {
		return
	}

	fps := 0.0
	if avg > 0 {
		fps = float64(time.Second) / float64(avg)
	}
	fmt.Printf("%s%s%s %.0f FPS (%.1fms) %s", moveTo(1, 1), bgBlack, fgGreen,
		fps, float64(avg.Microseconds())/1000, reset)

	title := filepath.Base(h.scenePath)
	titleCol := max((width-len(title)-2)/2, 1)
	fmt.Printf("%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, title, reset)

	polyStr := fmt.Sprintf(" %d/%d tris ", stats.Drawn, stats.Submitted)
	polyCol := max(width-len(polyStr)-1, 1)
	fmt.Print(moveTo(1, polyCol) + bgBlack + fgCyan + polyStr + reset)

	wireMark := "[ ]"
	if wire {
		wireMark = "[*]"
	}
	pos := cam.Position
	bottom := fmt.Sprintf(" pos %.1f,%.1f,%.1f  focal %.2f  %s wire  tab: toggle  ?: hud ",
		pos.X, pos.Y, pos.Z, cam.FocalLength, wireMark)
	fmt.Print(moveTo(height, 1) + bgBlack + fgWhite + bottom + reset)
}

// watchScene reloads the scene file on change and delivers fresh scenes
// on the returned channel until ctx ends. Bad intermediate saves are
// logged and skipped; the last good scene keeps rendering.
func watchScene(ctx context.Context, path string, logger *log.Logger) (<-chan *scene.Scene, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors often replace the file, which drops
	// a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	out := make(chan *scene.Scene, 1)
	go func() {
		defer watcher.Close()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				s, err := scene.Load(path)
				if err != nil {
					logger.Warn("scene reload failed", "err", err)
					continue
				}
				logger.Info("scene reloaded", "triangles", s.TriangleCount())
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error", "err", err)
			}
		}
	}()
	return out, nil
}

func run(scenePath string, cfg config, logger *log.Logger) error {
	if cfg.BG != "" {
		var r, g, b uint8
		if _, err := fmt.Sscanf(cfg.BG, "%d,%d,%d", &r, &g, &b); err != nil {
			return fmt.Errorf("parse background %q: %w", cfg.BG, err)
		}
		scene.DefaultBackground = scene.RGB(r, g, b)
	}

	s, err := scene.Load(scenePath)
	if err != nil {
		return err
	}
	logger.Info("scene loaded", "path", scenePath, "triangles", s.TriangleCount())

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

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	frame := render.NewFrame(fbWidth, fbHeight)

	cam := render.NewCamera()
	// Start back from the scene so everything is in view, aimed at its
	// center; dolly zoom references the same point.
	if s.TriangleCount() > 0 {
		bmin, bmax := s.Bounds()
		size := bmax.Sub(bmin).Len()
		if size < 1 {
			size = 1
		}
		center := s.Center()
		cam.LookAt(center.Add(math3d.V3(0, 0, size*1.5)), center, math3d.V3(0, 1, 0))
	}

	rast := render.Rasterizer{Ambient: cfg.Ambient}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	var reloads <-chan *scene.Scene
	if cfg.Watch {
		reloads, err = watchScene(ctx, scenePath, logger)
		if err != nil {
			logger.Warn("scene watching disabled", "err", err)
		}
	}

	commands := make(chan input.Command, 64)
	resizes := make(chan uv.WindowSizeEvent, 8)
	screenshots := make(chan struct{}, 1)

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				select {
				case resizes <- ev:
				default:
				}
			case uv.KeyPressEvent:
				if ev.MatchString("p") {
					select {
					case screenshots <- struct{}{}:
					default:
					}
					continue
				}
				cmd := input.Translate(ev)
				if cmd == input.Exit {
					cancel()
					return
				}
				if cmd != input.None {
					select {
					case commands <- cmd:
					default:
					}
				}
			}
		}
	}()

	mo := newMotion(cfg.FPS)
	overlay := &hud{scenePath: scenePath, visible: true}
	var times frametimes

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	targetDuration := time.Second / time.Duration(cfg.FPS)
	for {
		frameStart := time.Now()

		select {
		case <-ctx.Done():
			cleanup()
			logger.Info("shutting down")
			return nil
		case ev := <-resizes:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			termRenderer = render.NewTerminalRenderer(term, width, height)
			fbWidth, fbHeight = termRenderer.FramebufferSize()
			frame.Resize(fbWidth, fbHeight)
			logger.Debug("resized", "cols", width, "rows", height)
		case ns := <-reloads:
			if ns != nil {
				s = ns
			}
		default:
		}

	drain:
		for {
			select {
			case cmd := <-commands:
				switch cmd {
				case input.ToggleWireframe:
					rast.Wireframe = !rast.Wireframe
				case input.ToggleHUD:
					overlay.visible = !overlay.visible
				default:
					mo.apply(cmd, cam)
				}
			default:
				break drain
			}
		}

		mo.update(cam)

		rast.DrawScene(frame, cam, s)
		termRenderer.Render(frame)
		if err := termRenderer.Flush(); err != nil {
			cleanup()
			return fmt.Errorf("flush: %w", err)
		}

		select {
		case <-screenshots:
			name := fmt.Sprintf("roam-%s.png", time.Now().Format("20060102-150405"))
			if err := frame.SavePNG(name); err != nil {
				logger.Warn("screenshot failed", "err", err)
			} else {
				logger.Info("screenshot saved", "file", name)
			}
		default:
		}

		times.add(time.Since(frameStart))
		overlay.render(width, height, cam, rast.Stats(), times.average(), rast.Wireframe)

		if elapsed := time.Since(frameStart); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
