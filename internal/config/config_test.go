package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"portal-renderer/internal/input"
)

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portal.json")
	data := `{
		"base_dir": "/data",
		"scene": "rooms/lab.json",
		"width": 320,
		"format": "tga",
		"footprint": [1.2, 2.2],
		"controls": {"shoot_a": "Q"},
		"script": [{"frames": 3, "hold": ["W"]}]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Resolve(Flags{Height: 200, Format: "webp"})

	if cfg.Scene != filepath.Join("/data", "rooms", "lab.json") {
		t.Errorf("Scene = %q", cfg.Scene)
	}
	if cfg.TextureDir != filepath.Join("/data", "rooms") {
		t.Errorf("TextureDir = %q, want the scene's directory", cfg.TextureDir)
	}
	if cfg.Width != 320 || cfg.Height != 200 {
		t.Errorf("size = %dx%d, want 320x200", cfg.Width, cfg.Height)
	}
	if cfg.Format != FormatWebP {
		t.Errorf("Format = %q, flag must win", cfg.Format)
	}
	if cfg.Footprint != [2]float64{1.2, 2.2} {
		t.Errorf("Footprint = %v", cfg.Footprint)
	}
	if len(cfg.Script) != 1 || cfg.Script[0].Frames != 3 || cfg.Script[0].Hold[0] != "W" {
		t.Errorf("Script = %+v", cfg.Script)
	}

	b, err := cfg.Bindings()
	if err != nil {
		t.Fatalf("Bindings: %v", err)
	}
	if b[input.ShootA] != "Q" || b[input.ShootB] != input.MouseRight {
		t.Errorf("bindings = %v", b)
	}
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})

	tests := []struct {
		name      string
		got, want any
	}{
		{"width", cfg.Width, 640},
		{"height", cfg.Height, 360},
		{"fov", cfg.FOVDegrees, 90.0},
		{"supersample", cfg.Supersample, 1},
		{"format", cfg.Format, FormatWebP},
		{"workers", cfg.Workers, runtime.NumCPU()},
		{"footprint", cfg.Footprint, [2]float64{1, 2}},
		{"max distance", cfg.MaxDistance, 100.0},
		{"surface offset", cfg.SurfaceOffset, 0.01},
		{"output", cfg.OutputDir, "frames"},
		{"log level", cfg.LogLevel, "info"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{"), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("Load of malformed JSON succeeded")
	}

	cfg := Config{Controls: map[string]string{"teleport": "T"}}
	if _, err := cfg.Bindings(); err == nil {
		t.Error("Bindings accepted an unknown action")
	}
}
