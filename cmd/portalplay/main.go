package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"portal-renderer/internal/config"
	"portal-renderer/internal/game"
	"portal-renderer/internal/logging"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/rendertarget"
	"portal-renderer/internal/scene"
	"portal-renderer/internal/texture"
)

const tps = 60

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	sceneFile := flag.String("scene", "", "Scene JSON (default: built-in room)")
	width := flag.Int("width", 0, "Window width in pixels (default: 640)")
	height := flag.Int("height", 0, "Window height in pixels (default: 360)")
	fov := flag.Float64("fov", 0, "Vertical field of view in degrees (default: 90)")
	scale := flag.Int("scale", 2, "Window pixels per rendered pixel")
	gizmos := flag.Bool("gizmos", false, "Draw portal camera and surface gizmos")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		Scene:      *sceneFile,
		Width:      *width,
		Height:     *height,
		FOVDegrees: *fov,
		Gizmos:     *gizmos,
		LogLevel:   *logLevel,
	})
	if *scale < 1 {
		*scale = 1
	}

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})))

	bindings, err := cfg.Bindings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	src, err := newDeviceSource(bindings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sc := scene.Default()
	if cfg.Scene != "" {
		sc, err = scene.Load(cfg.Scene)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
			os.Exit(1)
		}
	}
	var index *texture.Index
	if cfg.TextureDir != "" {
		index = texture.BuildIndex(cfg.TextureDir)
	}

	display := rendertarget.NewWindow(cfg.Width / *scale, cfg.Height / *scale)
	world := game.NewWorld(sc, display, game.Options{
		FOV:           mgl64.DegToRad(cfg.FOVDegrees),
		Footprint:     mgl64.Vec2{cfg.Footprint[0], cfg.Footprint[1]},
		MaxDistance:   cfg.MaxDistance,
		SurfaceOffset: cfg.SurfaceOffset,
		Sensitivity:   cfg.Sensitivity,
		Bindings:      bindings,
		Gizmos:        cfg.Gizmos,
		Textures:      texture.NewCache(index),
	})

	g := &playGame{world: world, display: display, src: src, scale: *scale}
	ebiten.SetWindowTitle("Portal renderer")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	ebiten.SetTPS(tps)
	if err := ebiten.RunGame(g); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// playGame drives the world from ebiten's loop.
type playGame struct {
	world   *game.World
	display *rendertarget.Window
	src     *deviceSource
	scale   int

	fb      *raster.FrameBuffer
	img     *ebiten.Image
	resized bool
}

func (g *playGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.world.Gizmos = !g.world.Gizmos
	}
	if g.resized && g.world.Resize() {
		g.resized = false
	}
	g.src.poll()
	g.world.Step(g.src, 1.0/tps)
	return nil
}

func (g *playGame) Draw(screen *ebiten.Image) {
	w, h, ok := g.display.PhysicalSize()
	if !ok {
		return
	}
	if g.fb == nil || g.fb.Width != w || g.fb.Height != h {
		g.fb = raster.NewFrameBuffer(w, h)
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(w, h)
	}

	g.world.Render(g.fb)
	g.img.WritePixels(g.fb.Color)
	screen.DrawImage(g.img, nil)
}

func (g *playGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := outsideWidth/g.scale, outsideHeight/g.scale
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if g.display.Set(w, h) {
		g.resized = true
	}
	return w, h
}
