// facet - software 3D scene renderer for the terminal and PNG output
//
// Renders TOML scene documents or glTF models through three
// interchangeable back ends: a depth-buffer rasterizer, a per-pixel
// raycaster with optional depth of field, and a painter's-algorithm
// vector renderer.
//
// Controls:
//
//	Mouse drag  - Orbit around the scene
//	Scroll      - Zoom in/out (also +/-)
//	W/A/S/D     - Pan the view
//	1/2/3       - Switch renderer (raster/raycast/vector)
//	Space       - Random spin
//	R           - Reset the camera
//	P           - Save a PNG snapshot
//	Q/Esc       - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/gg"

	"github.com/taigrr/facet/pkg/ggcanvas"
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/render"
	"github.com/taigrr/facet/pkg/scene"
)

var (
	scenePath  = flag.String("scene", "", "Path to a TOML scene file")
	modelPath  = flag.String("model", "", "Path to a glTF/GLB model")
	rendererID = flag.String("renderer", "raster", "Renderer: raster, raycast or vector")
	outPath    = flag.String("out", "", "Render to a PNG file instead of the terminal")
	outWidth   = flag.Int("width", 1024, "PNG width in pixels")
	outHeight  = flag.Int("height", 1024, "PNG height in pixels")
	aa         = flag.Bool("aa", true, "Anti-alias raycast output")
	focusDist  = flag.Float64("focus", 0, "Depth-of-field focus distance for raycast PNGs (0 = off)")
	aperture   = flag.Float64("aperture", 0.25, "Depth-of-field aperture radius")
	dofSamples = flag.Int("dof-samples", 8, "Depth-of-field sub-cameras")
	resample   = flag.Float64("resample", 0, "Vector: subdivide facets above this projected area (0 = off)")
	overfill   = flag.Float64("overfill", 0, "Vector: expand facets outward to hide hairline seams")
	shadows    = flag.Bool("shadows", true, "Cast shadows in built-in scenes")
	watch      = flag.Bool("watch", false, "With -out: re-render when the input file changes")
	targetFPS  = flag.Int("fps", 30, "Interactive target FPS")
	verbose    = flag.Bool("verbose", false, "Debug logging, including render pass timings")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "facet - software 3D scene renderer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: facet [options] [scene.toml|model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Mouse drag  - Orbit around the scene\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom in/out (also +/-)\n")
		fmt.Fprintf(os.Stderr, "  W/A/S/D     - Pan the view\n")
		fmt.Fprintf(os.Stderr, "  1/2/3       - Switch renderer\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset the camera\n")
		fmt.Fprintf(os.Stderr, "  P           - Save a PNG snapshot\n")
		fmt.Fprintf(os.Stderr, "  Q/Esc       - Quit\n")
	}
	flag.Parse()

	level := log.InfoLevel
	if *verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	if *verbose {
		render.SetLogger(slog.New(logger))
	}

	if err := run(logger); err != nil {
		logger.Fatal(err)
	}
}

func run(logger *log.Logger) error {
	switch *rendererID {
	case "raster", "raycast", "vector":
	default:
		return fmt.Errorf("unknown renderer %q", *rendererID)
	}

	// A bare positional argument is a scene or model path.
	if flag.NArg() > 0 && *scenePath == "" && *modelPath == "" {
		if strings.EqualFold(filepath.Ext(flag.Arg(0)), ".toml") {
			*scenePath = flag.Arg(0)
		} else {
			*modelPath = flag.Arg(0)
		}
	}

	doc, paths, err := loadDoc()
	if err != nil {
		return err
	}

	if *outPath == "" {
		if *watch {
			return fmt.Errorf("-watch needs -out")
		}
		return runInteractive(doc)
	}

	if err := renderPNG(doc, doc.Camera, *outPath, logger); err != nil {
		return err
	}
	if !*watch {
		return nil
	}
	if len(paths) == 0 {
		return fmt.Errorf("-watch needs -scene or -model")
	}
	return watchLoop(paths, logger)
}

// loadDoc assembles the scene from the chosen source and returns the
// files to watch for changes.
func loadDoc() (*models.SceneDoc, []string, error) {
	switch {
	case *scenePath != "":
		doc, err := models.LoadScene(*scenePath)
		if err != nil {
			return nil, nil, err
		}
		return doc, []string{*scenePath}, nil
	case *modelPath != "":
		doc, err := modelDoc(*modelPath)
		if err != nil {
			return nil, nil, err
		}
		return doc, []string{*modelPath}, nil
	default:
		return demoDoc(), nil, nil
	}
}

// modelDoc stages a loaded model on a floor under a studio light rig.
func modelDoc(path string) (*models.SceneDoc, error) {
	mesh, err := models.LoadGLB(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	mesh.NormalizeSize(4)
	min, _ := mesh.Bounds()

	s := scene.NewScene()
	s.Add(mesh.Elements(models.ElementOptions{
		CastsShadow:    *shadows,
		ReceivesShadow: *shadows,
		Tag:            filepath.Base(path),
	})...)

	floor := models.Plane(16)
	floor.Transform(math3d.Translate(math3d.V3(0, min.Y-0.01, 0)))
	s.Add(floor.Elements(models.ElementOptions{
		Fill:           []scene.Material{scene.NewPhongMaterial(scene.RGB(0.72, 0.72, 0.75))},
		ReceivesShadow: *shadows,
		Tag:            "floor",
	})...)

	return &models.SceneDoc{
		Scene:      s,
		Camera:     render.NewPerspectiveCamera(math3d.V3(0, 2.5, 9), math3d.V3(0, -2.5, -9).Unit(), 5.5, math3d.V2(9, 9), 1),
		Lights:     studioLights(),
		Background: scene.RGB(0.12, 0.12, 0.16),
	}, nil
}

// demoDoc builds the scene shown when no input file is given.
func demoDoc() *models.SceneDoc {
	s := scene.NewScene()

	s.Add(models.Plane(14).Elements(models.ElementOptions{
		Fill:           []scene.Material{scene.NewPhongMaterial(scene.RGB(0.75, 0.75, 0.78))},
		ReceivesShadow: *shadows,
		Tag:            "floor",
	})...)

	cube := models.Cube(1.8)
	cube.Transform(math3d.Translate(math3d.V3(-1.7, 0.9, -0.4)).Mul(math3d.RotateY(math.Pi / 5)))
	s.Add(cube.Elements(models.ElementOptions{
		Fill:        []scene.Material{scene.NewPhongMaterial(scene.RGB(0.85, 0.3, 0.25))},
		CastsShadow: *shadows,
		Tag:         "cube",
	})...)

	ball := models.Sphere(1, 32, 16)
	ball.Transform(math3d.Translate(math3d.V3(1.5, 1, 0.6)))
	s.Add(ball.Elements(models.ElementOptions{
		Fill:        []scene.Material{scene.NewPhongMaterial(scene.RGB(0.25, 0.45, 0.85))},
		CastsShadow: *shadows,
		Tag:         "sphere",
	})...)

	tet := models.Tetrahedron(1.6)
	tet.Transform(math3d.Translate(math3d.V3(0.1, 0.8, 1.8)).Mul(math3d.RotateY(-math.Pi / 7)))
	s.Add(tet.Elements(models.ElementOptions{
		Fill:        []scene.Material{scene.NewPhongMaterial(scene.RGB(0.3, 0.7, 0.4))},
		CastsShadow: *shadows,
		Tag:         "tetrahedron",
	})...)

	return &models.SceneDoc{
		Scene:      s,
		Camera:     render.NewPerspectiveCamera(math3d.V3(6, 5, 9), math3d.V3(-6, -4.2, -9).Unit(), 6, math3d.V2(11, 11), 1),
		Lights:     studioLights(),
		Background: scene.RGB(0.12, 0.12, 0.16),
	}
}

func studioLights() []scene.Light {
	sun := scene.NewDirectionalLight(math3d.V3(-1, -1.4, -0.8).Unit(), 0.85)
	sun.Shadow = *shadows
	return []scene.Light{scene.NewAmbientLight(0.15), sun}
}

// renderPNG draws the scene once at full resolution and writes it to
// out.
func renderPNG(doc *models.SceneDoc, cam *render.PerspectiveCamera, out string, logger *log.Logger) error {
	start := time.Now()

	switch *rendererID {
	case "raster":
		r := render.NewRasterRenderer(*outWidth, *outHeight)
		r.Background = doc.Background
		if err := r.Render(doc.Scene, doc.Lights, cam).SavePNG(out); err != nil {
			return fmt.Errorf("save png: %w", err)
		}

	case "raycast":
		r := render.NewRaycastRenderer(*outWidth, *outHeight)
		r.Background = doc.Background
		r.AntiAlias = *aa
		var lastDecile atomic.Int64
		r.Progress = func(done, total int) {
			d := int64(done) * 10 / int64(total)
			if d > lastDecile.Load() {
				lastDecile.Store(d)
				logger.Debugf("raycasting %d%%", d*10)
			}
		}
		var rc scene.Camera = cam
		if *focusDist > 0 {
			rc = render.NewDepthOfFieldCamera(cam, *focusDist, *aperture, *dofSamples)
		}
		if err := r.Render(doc.Scene, doc.Lights, rc).SavePNG(out); err != nil {
			return fmt.Errorf("save png: %w", err)
		}

	case "vector":
		ctx := gg.NewContext(*outWidth, *outHeight)
		if doc.Background.A > 0 {
			bg := doc.Background
			ctx.ClearWithColor(gg.RGBA{R: bg.R, G: bg.G, B: bg.B, A: bg.A})
		}
		ggcanvas.Fit(ctx, cam)
		canvas := ggcanvas.New(ctx)
		v := render.NewVectorRenderer()
		v.ResamplingMaxSize = *resample
		v.ResamplingTime = render.ResampleAfterSorting
		v.OverFill = *overfill
		v.Render(doc.Scene, doc.Lights, cam, canvas)
		if err := canvas.Err(); err != nil {
			return fmt.Errorf("vector draw: %w", err)
		}
		if err := ctx.SavePNG(out); err != nil {
			return fmt.Errorf("save png: %w", err)
		}
	}

	logger.Infof("wrote %s (%s)", out, time.Since(start).Round(time.Millisecond))
	return nil
}

// watchLoop re-renders the PNG whenever one of the input files
// changes, until interrupted.
func watchLoop(paths []string, logger *log.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}
	logger.Infof("watching %s", strings.Join(paths, ", "))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	var pending <-chan time.Time
	for {
		select {
		case <-sig:
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				// Editors burst events on save, so settle first.
				pending = time.After(100 * time.Millisecond)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Errorf("watch: %v", err)

		case <-pending:
			pending = nil
			doc, _, err := loadDoc()
			if err != nil {
				logger.Errorf("reload: %v", err)
				continue
			}
			if err := renderPNG(doc, doc.Camera, *outPath, logger); err != nil {
				logger.Errorf("render: %v", err)
			}
			// Editors that replace the file drop the watch with it.
			for _, p := range paths {
				w.Add(p)
			}
		}
	}
}

// orbitAxis animates one orbit angle's velocity toward zero with a
// critically damped spring.
type orbitAxis struct {
	Velocity float64
	spring   harmonica.Spring
	accel    float64
}

func newOrbitAxis(fps int) orbitAxis {
	return orbitAxis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

func (a *orbitAxis) Update() {
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
}

// orbitState holds spring-damped orbit motion around the scene.
type orbitState struct {
	Theta, Phi orbitAxis
	fps        int
}

func newOrbitState(fps int) *orbitState {
	return &orbitState{
		Theta: newOrbitAxis(fps),
		Phi:   newOrbitAxis(fps),
		fps:   fps,
	}
}

func (o *orbitState) Update() {
	o.Theta.Update()
	o.Phi.Update()
}

func (o *orbitState) Impulse(theta, phi float64) {
	o.Theta.Velocity += theta
	o.Phi.Velocity += phi
}

func (o *orbitState) Reset() {
	o.Theta = newOrbitAxis(o.fps)
	o.Phi = newOrbitAxis(o.fps)
}

// viewport holds the renderers sized for the current terminal, with a
// letterboxed cell area matching the camera's aspect ratio. Each cell
// shows two vertically stacked pixels.
type viewport struct {
	area    uv.Rectangle
	raster  *render.RasterRenderer
	raycast *render.RaycastRenderer
	ggctx   *gg.Context
}

func newViewport(width, height int, cam *render.PerspectiveCamera, bg scene.Color) *viewport {
	vs := cam.ViewSize()
	aspect := vs.X / vs.Y

	cellH := height - 1
	cellW := int(float64(2*cellH) * aspect)
	if cellW > width {
		cellW = width
		cellH = int(float64(cellW) / aspect / 2)
	}
	cellW = max(cellW, 1)
	cellH = max(cellH, 1)

	x0 := (width - cellW) / 2
	y0 := (height - 1 - cellH) / 2

	v := &viewport{
		area:    uv.Rect(x0, y0, cellW, cellH),
		raster:  render.NewRasterRenderer(cellW, cellH*2),
		raycast: render.NewRaycastRenderer(cellW, cellH*2),
		ggctx:   gg.NewContext(cellW, cellH*2),
	}
	v.raster.Background = bg
	v.raycast.Background = bg
	v.raycast.AntiAlias = *aa
	return v
}

func runInteractive(doc *models.SceneDoc) error {
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

	// Any-event mouse tracking plus SGR extended mode.
	fmt.Fprint(os.Stdout, "\x1b[?1003h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	cam := doc.Camera
	camStart := *cam
	vp := newViewport(width, height, cam, doc.Background)
	spin := newOrbitState(*targetFPS)

	vec := render.NewVectorRenderer()
	vec.ResamplingMaxSize = *resample
	vec.ResamplingTime = render.ResampleAfterSorting
	vec.OverFill = *overfill

	mode := *rendererID
	var note string
	panStep := cam.ViewSize().X / 40

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	var mouseDown bool
	var lastX, lastY int

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				vp = newViewport(width, height, cam, doc.Background)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"), ev.MatchString("q"):
					cancel()
					return
				case ev.MatchString("1"):
					mode = "raster"
				case ev.MatchString("2"):
					mode = "raycast"
				case ev.MatchString("3"):
					mode = "vector"
				case ev.MatchString("space"):
					spin.Impulse((rand.Float64()-0.5)*0.6, (rand.Float64()-0.5)*0.3)
				case ev.MatchString("r"):
					*cam = camStart
					spin.Reset()
					note = ""
				case ev.MatchString("w", "up"):
					cam.Pan(0, panStep)
				case ev.MatchString("s", "down"):
					cam.Pan(0, -panStep)
				case ev.MatchString("a", "left"):
					cam.Pan(-panStep, 0)
				case ev.MatchString("d", "right"):
					cam.Pan(panStep, 0)
				case ev.MatchString("+", "="):
					cam.Zoom(0.5)
				case ev.MatchString("-", "_"):
					cam.Zoom(-0.5)
				case ev.MatchString("p"):
					camCopy := *cam
					name := fmt.Sprintf("facet-%s.png", time.Now().Format("20060102-150405"))
					if err := renderPNG(doc, &camCopy, name, log.New(io.Discard)); err != nil {
						note = "snapshot failed: " + err.Error()
					} else {
						note = "saved " + name
					}
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastX, lastY = ev.X, ev.Y

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					dx := ev.X - lastX
					dy := ev.Y - lastY
					spin.Impulse(float64(dx)*0.02, float64(dy)*0.02)
					lastX, lastY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					cam.Zoom(0.5)
				case uv.MouseWheelDown:
					cam.Zoom(-0.5)
				}
			}
		}
	}()

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	targetDuration := time.Second / time.Duration(*targetFPS)

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		frameStart := time.Now()

		spin.Update()
		cam.Orbit(spin.Theta.Velocity, spin.Phi.Velocity)

		v := vp
		switch mode {
		case "raster":
			v.raster.Render(doc.Scene, doc.Lights, cam).Draw(term, v.area)
		case "raycast":
			v.raycast.Render(doc.Scene, doc.Lights, cam).Draw(term, v.area)
		case "vector":
			v.ggctx.Identity()
			v.ggctx.Clear()
			ggcanvas.Fit(v.ggctx, cam)
			canvas := ggcanvas.New(v.ggctx)
			vec.Render(doc.Scene, doc.Lights, cam, canvas)
			render.FromImage(v.ggctx.Image()).Draw(term, v.area)
		}
		drawStatus(term, width, height, statusText(mode, note))

		if err := term.Display(); err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}

		if elapsed := time.Since(frameStart); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

func statusText(mode, note string) string {
	s := fmt.Sprintf(" %s | drag orbit  wheel zoom  wasd pan  1/2/3 renderer  p snapshot  q quit", mode)
	if note != "" {
		s += " | " + note
	}
	return s
}

// drawStatus writes the status line into the bottom row of cells.
func drawStatus(scr uv.Screen, width, height int, text string) {
	if height < 1 {
		return
	}
	row := height - 1
	runes := []rune(text)
	for col := 0; col < width; col++ {
		content := " "
		if col < len(runes) {
			content = string(runes[col])
		}
		scr.SetCell(col, row, &uv.Cell{Content: content, Width: 1})
	}
}
