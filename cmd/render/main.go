package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/config"
	"portal-renderer/internal/game"
	"portal-renderer/internal/input"
	"portal-renderer/internal/logging"
	"portal-renderer/internal/raster"
	"portal-renderer/internal/rendertarget"
	"portal-renderer/internal/scene"
	"portal-renderer/internal/snapshot"
	"portal-renderer/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	sceneFile := flag.String("scene", "", "Scene JSON (default: built-in room)")
	outputDir := flag.String("output", "", "Output directory (default: frames)")
	width := flag.Int("width", 0, "Output width in pixels (default: 640)")
	height := flag.Int("height", 0, "Output height in pixels (default: 360)")
	fov := flag.Float64("fov", 0, "Vertical field of view in degrees (default: 90)")
	format := flag.String("format", "", "Frame format: webp or tga (default: webp)")
	workers := flag.Int("workers", 0, "Number of encoder goroutines (default: NumCPU)")
	gizmos := flag.Bool("gizmos", false, "Draw portal camera and surface gizmos")
	maxFrames := flag.Int("frames", 0, "Stop after N frames (default: whole script)")
	fps := flag.Float64("fps", 30, "Simulation steps per second")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Scene:      *sceneFile,
		OutputDir:  *outputDir,
		Width:      *width,
		Height:     *height,
		FOVDegrees: *fov,
		Format:     *format,
		Workers:    *workers,
		Gizmos:     *gizmos,
		LogLevel:   *logLevel,
	})

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})))

	bindings, err := cfg.Bindings()
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

	var textures texture.Resolver
	if cfg.TextureDir != "" {
		texIndex := texture.BuildIndex(cfg.TextureDir)
		textures = texture.NewCache(texIndex)
		fmt.Printf("Textures: %d indexed\n", texIndex.Len())
	} else {
		textures = texture.NewCache(nil)
	}

	steps := cfg.Script
	if len(steps) == 0 {
		steps = demoScript(bindings, *fps)
	}
	script := input.NewScript(steps)
	total := script.Frames()
	if *maxFrames > 0 && *maxFrames < total {
		total = *maxFrames
	}
	if total == 0 {
		fmt.Println("No frames to render.")
		os.Exit(0)
	}

	// Render at the supersampled size; the snapshot writer scales down.
	rw, rh := cfg.Width*cfg.Supersample, cfg.Height*cfg.Supersample
	display := rendertarget.NewWindow(rw, rh)
	world := game.NewWorld(sc, display, game.Options{
		FOV:           mgl64.DegToRad(cfg.FOVDegrees),
		Footprint:     mgl64.Vec2{cfg.Footprint[0], cfg.Footprint[1]},
		MaxDistance:   cfg.MaxDistance,
		SurfaceOffset: cfg.SurfaceOffset,
		Sensitivity:   cfg.Sensitivity,
		Bindings:      bindings,
		Gizmos:        cfg.Gizmos,
		Textures:      textures,
	})

	writer, err := snapshot.NewWriter(snapshot.Config{
		OutputDir: cfg.OutputDir,
		Format:    cfg.Format,
		Workers:   cfg.Workers,
		Width:     cfg.Width,
		Height:    cfg.Height,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Portal renderer → %s\n", cfg.Format)
	fmt.Printf("Surfaces: %d, Frames: %d, Size: %dx%d (x%d), Workers: %d\n",
		sc.Len(), total, cfg.Width, cfg.Height, cfg.Supersample, cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	dt := 1 / *fps
	for i := 0; i < total && script.Next(); i++ {
		world.Step(script, dt)

		fb := raster.NewFrameBuffer(rw, rh)
		world.Render(fb)

		p := world.Player
		if err := writer.Submit(snapshot.Frame{
			Index:   i,
			Image:   fb.NRGBA(),
			Player:  [3]float64{p.Position[0], p.Position[1], p.Position[2]},
			Yaw:     p.Yaw,
			Portals: world.PortalNames(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
	}
	results := writer.Close()

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success := 0
	var failed []snapshot.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed = append(failed, r)
		}
	}
	fmt.Printf("Written: %d/%d\n", success, len(results))

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		limit := 20
		if len(failed) < limit {
			limit = len(failed)
		}
		for _, r := range failed[:limit] {
			fmt.Printf("  frame %d: %s\n", r.Index, r.Error)
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := snapshot.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing manifest: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Manifest: %s\n", manifestPath)

	if len(failed) > 0 {
		os.Exit(1)
	}
}

// demoScript shoots A straight ahead, turns right to shoot B, turns back and
// walks through A. Turns take half a second at unit mouse sensitivity.
func demoScript(b input.Bindings, fps float64) []input.Step {
	turnFrames := int(math.Ceil(fps / 2))
	turn := (math.Pi / 2) * fps / float64(turnFrames)
	return []input.Step{
		{Frames: 1},
		{Frames: 1, Tap: []string{b[input.ShootA]}},
		{Frames: turnFrames, Look: [2]float64{turn, 0}},
		{Frames: 1, Tap: []string{b[input.ShootB]}},
		{Frames: turnFrames, Look: [2]float64{-turn, 0}},
		{Frames: int(5 * fps), Hold: []string{b[input.Up]}},
	}
}
