// Package game runs the level viewer: window, main loop, camera, picking
// and hot reload.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/almond/internal/config"
	"github.com/Faultbox/almond/internal/engine/camera"
	"github.com/Faultbox/almond/internal/engine/collision"
	"github.com/Faultbox/almond/internal/engine/debug"
	"github.com/Faultbox/almond/internal/engine/input"
	"github.com/Faultbox/almond/internal/engine/renderer"
	"github.com/Faultbox/almond/internal/engine/shapes"
	"github.com/Faultbox/almond/internal/engine/window"
	"github.com/Faultbox/almond/internal/level"
	"github.com/Faultbox/almond/internal/watcher"
	"github.com/Faultbox/almond/pkg/math"
)

const (
	markerRadius     = 0.4
	markerHalfHeight = 0.5
	pickDistance     = 1000
	// clickSlop is how far the mouse may move between press and release
	// for the release to count as a click.
	clickSlop = 4
)

// Game is the viewer instance.
type Game struct {
	cfg      *config.Config
	log      *zap.Logger
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	loader   *level.Loader
	watcher  *watcher.FileWatcher
	reload   chan string

	scene       scene
	marker      *renderer.GPUMesh
	screenshots *debug.Screenshots

	pressX, pressY int
	wantShot       bool
}

// New opens the window and loads the configured map.
func New(cfg *config.Config, log *zap.Logger) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("initializing viewer",
		zap.String("map", cfg.Map.Path),
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	g := &Game{
		cfg:    cfg,
		log:    log,
		input:  input.New(),
		camera: camera.NewOrbitCamera(),
		loader: level.NewLoader(level.OptionsFromConfig(cfg), log.Named("level")),
		reload: make(chan string, 1),

		screenshots: debug.NewScreenshots("screenshots", "almond"),
	}
	g.scene.selected = -1
	g.camera.FOV = cfg.Graphics.FOV

	var err error
	g.window, err = window.New(window.Config{
		Title:      "almond - " + cfg.Map.Path,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, log.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The GL context must exist before the renderer.
	w, h := g.window.DrawableSize()
	g.renderer, err = renderer.New(renderer.Config{
		Width:     w,
		Height:    h,
		Wireframe: cfg.Graphics.Wireframe,
	}, log.Named("renderer"))
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	g.scene.gpu = g.renderer

	if err := g.createMarker(); err != nil {
		g.Close()
		return nil, err
	}

	if err := g.loadLevel(cfg.Map.Path); err != nil {
		g.Close()
		return nil, err
	}
	g.frameLevel()

	if cfg.Watch.Enabled {
		if err := g.startWatcher(); err != nil {
			log.Warn("hot reload disabled", zap.Error(err))
		}
	}

	log.Info("viewer initialized")
	return g, nil
}

func (g *Game) createMarker() error {
	mesh, err := shapes.NewCapsule(markerRadius, markerHalfHeight, 16, 8)
	if err != nil {
		return fmt.Errorf("building spawn marker: %w", err)
	}
	g.marker, err = g.renderer.UploadMesh(mesh)
	if err != nil {
		return fmt.Errorf("uploading spawn marker: %w", err)
	}
	return nil
}

func (g *Game) startWatcher() error {
	fw, err := watcher.NewFileWatcher(g.cfg.Watch.Debounce, g.log.Named("watcher"))
	if err != nil {
		return err
	}
	// Callbacks run on timer goroutines; GL work stays on the main thread.
	err = fw.Watch([]string{g.cfg.Map.Path}, func(path string) {
		select {
		case g.reload <- path:
		default:
		}
	})
	if err != nil {
		_ = fw.Close()
		return err
	}
	fw.Start()
	g.watcher = fw
	g.log.Info("watching map for changes", zap.String("path", g.cfg.Map.Path))
	return nil
}

// loadLevel builds path and makes it current.
func (g *Game) loadLevel(path string) error {
	lvl, err := g.loader.Load(path)
	if err != nil {
		return err
	}
	if err := g.scene.swap(lvl); err != nil {
		return err
	}
	g.window.SetTitle(fmt.Sprintf("almond - %s (%d brushes, %d skipped)", path, len(lvl.Meshes), lvl.Failed()))
	return nil
}

// hotReload reloads the level, keeping the current one on failure.
func (g *Game) hotReload(path string) {
	start := time.Now()
	if err := g.loadLevel(path); err != nil {
		g.log.Error("reload failed, keeping previous level", zap.String("path", path), zap.Error(err))
		return
	}
	g.log.Info("level reloaded", zap.String("path", path), zap.Duration("elapsed", time.Since(start)))
}

// frameLevel points the camera at the spawn or, failing that, the level bounds.
func (g *Game) frameLevel() {
	lvl := g.scene.level
	if lvl == nil || len(lvl.Meshes) == 0 {
		return
	}
	box := lvl.Bounds()
	g.camera.FitToBounds(box.Min, box.Max)
	if lvl.HasSpawn {
		g.camera.Center = lvl.Spawn
	}
}

// Run runs the main loop until the window closes or Escape is pressed.
func (g *Game) Run() error {
	g.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var frameBudget time.Duration
	if g.cfg.Graphics.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(g.cfg.Graphics.FPSLimit)
	}

	g.log.Info("starting main loop")

	for g.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if g.input.Update() {
			g.running = false
			break
		}
		g.handleEvents()

		select {
		case path := <-g.reload:
			g.hotReload(path)
		default:
		}

		g.update(dt)
		g.render()
		if g.wantShot {
			g.wantShot = false
			g.screenshot()
		}
		g.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			g.log.Debug("fps", zap.Int("count", frameCount), zap.Float32("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if spent := time.Since(now); spent < frameBudget {
				time.Sleep(frameBudget - spent)
			}
		}
	}

	return nil
}

func (g *Game) handleEvents() {
	for _, ev := range g.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			w, h := g.window.DrawableSize()
			g.renderer.Resize(w, h)

		case input.EventKeyDown:
			switch ev.Key {
			case sdl.SCANCODE_ESCAPE:
				g.running = false
			case sdl.SCANCODE_F1:
				g.renderer.SetWireframe(!g.renderer.Wireframe())
			case sdl.SCANCODE_F:
				g.frameLevel()
			case sdl.SCANCODE_R:
				g.hotReload(g.cfg.Map.Path)
			case sdl.SCANCODE_F12:
				g.wantShot = true
			}

		case input.EventMouseMove:
			if g.input.IsButtonHeld(sdl.BUTTON_RIGHT) {
				g.camera.HandleDrag(float32(ev.DeltaX), float32(ev.DeltaY))
			}

		case input.EventMouseWheel:
			g.camera.HandleZoom(float32(ev.DeltaY))

		case input.EventMouseDown:
			switch ev.Button {
			case sdl.BUTTON_LEFT:
				g.pressX, g.pressY = ev.MouseX, ev.MouseY
			case sdl.BUTTON_RIGHT:
				g.window.SetMouseCaptured(true)
			}

		case input.EventMouseUp:
			if ev.Button == sdl.BUTTON_RIGHT {
				g.window.SetMouseCaptured(false)
			}
			if ev.Button == sdl.BUTTON_LEFT && abs(ev.MouseX-g.pressX) <= clickSlop && abs(ev.MouseY-g.pressY) <= clickSlop {
				g.pickAt(ev.MouseX, ev.MouseY)
			}
		}
	}
}

// pickAt logs the brush under a window position.
func (g *Game) pickAt(x, y int) {
	w, h := g.window.Size()
	invViewProj := g.camera.ViewProjection(g.renderer.Aspect()).Inverse()
	ray := collision.ScreenToRay(float32(x), float32(y), float32(w), float32(h), invViewProj)

	hit, ok := g.scene.pick(ray, pickDistance)
	if !ok {
		g.scene.selected = -1
		g.log.Info("pick: nothing under cursor")
		return
	}
	g.scene.selectBody(hit.Ref)
	g.log.Info("pick",
		zap.Int("entity", hit.Ref.Entity),
		zap.Int("brush", hit.Ref.Brush),
		zap.String("classname", hit.ClassName),
		zap.Float32("distance", hit.Distance),
	)
}

func (g *Game) update(dt float32) {
	var forward, right, up float32
	if g.input.IsKeyHeld(sdl.SCANCODE_W) {
		forward++
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_S) {
		forward--
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_D) {
		right++
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_A) {
		right--
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_E) {
		up++
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_Q) {
		up--
	}
	if forward != 0 || right != 0 || up != 0 {
		// 60 fps reference step
		step := dt * 60
		g.camera.HandleMovement(forward*step, right*step, up*step)
	}
}

func (g *Game) render() {
	g.renderer.Begin(g.camera.ViewProjection(g.renderer.Aspect()))

	identity := math.Identity()
	for i, it := range g.scene.items {
		if it.gpu == nil {
			continue
		}
		g.renderer.DrawMesh(it.gpu, identity, g.scene.tint(i))
	}

	if lvl := g.scene.level; lvl != nil && lvl.HasSpawn {
		p := lvl.Spawn
		model := math.Translate(p.X, p.Y+markerRadius+markerHalfHeight, p.Z)
		g.renderer.DrawMesh(g.marker, model, [3]float32{1, 0.55, 0.1})
	}

	g.renderer.End()
}

// screenshot saves the frame in the back buffer.
func (g *Game) screenshot() {
	pix, w, h := g.renderer.ReadPixels()
	path, err := g.screenshots.Save(pix, w, h)
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases every resource. It is safe to call on a partially built Game.
func (g *Game) Close() {
	g.log.Info("closing viewer")

	var errs []error
	if g.watcher != nil {
		errs = append(errs, g.watcher.Close())
	}
	if g.renderer != nil {
		g.scene.release()
		g.renderer.DeleteMesh(g.marker)
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
	if err := errors.Join(errs...); err != nil {
		g.log.Warn("close", zap.Error(err))
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
