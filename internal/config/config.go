package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"portal-renderer/internal/input"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir"`
	Scene      string `json:"scene"`
	TextureDir string `json:"texture_dir"`
	OutputDir  string `json:"output_dir"`

	// Render settings
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FOVDegrees  float64 `json:"fov_degrees"`
	Supersample int     `json:"supersample"`
	Format      string  `json:"format"` // "webp" or "tga"
	Workers     int     `json:"workers"`
	Gizmos      bool    `json:"gizmos"`

	// Portal placement
	Footprint     [2]float64 `json:"footprint"`
	MaxDistance   float64    `json:"max_distance"`
	SurfaceOffset float64    `json:"surface_offset"`

	// Player and input
	Sensitivity float64           `json:"mouse_sensitivity"`
	Controls    map[string]string `json:"controls"`

	// Headless run
	Script []input.Step `json:"script"`

	LogLevel string `json:"log_level"`
}

// Output formats.
const (
	FormatWebP = "webp"
	FormatTGA  = "tga"
)

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.FOVDegrees > 0 {
		c.FOVDegrees = flags.FOVDegrees
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Gizmos {
		c.Gizmos = true
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		c.Scene = underBase(c.BaseDir, c.Scene)
		c.TextureDir = underBase(c.BaseDir, c.TextureDir)
		c.OutputDir = underBase(c.BaseDir, c.OutputDir)
	}
	if c.TextureDir == "" && c.Scene != "" {
		c.TextureDir = filepath.Dir(c.Scene)
	}
	if c.OutputDir == "" {
		c.OutputDir = "frames"
	}

	// Defaults for render settings
	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 360
	}
	if c.FOVDegrees <= 0 || c.FOVDegrees >= 180 {
		c.FOVDegrees = 90
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.Format != FormatTGA {
		c.Format = FormatWebP
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Footprint[0] <= 0 || c.Footprint[1] <= 0 {
		c.Footprint = [2]float64{1, 2}
	}
	if c.MaxDistance <= 0 {
		c.MaxDistance = 100
	}
	if c.SurfaceOffset <= 0 {
		c.SurfaceOffset = 0.01
	}
	if c.Sensitivity <= 0 {
		c.Sensitivity = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Bindings returns the default key bindings with the config's overrides
// applied.
func (c *Config) Bindings() (input.Bindings, error) {
	b := input.DefaultBindings()
	if err := b.Apply(c.Controls); err != nil {
		return nil, fmt.Errorf("config: controls: %w", err)
	}
	return b, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Scene      string
	OutputDir  string
	Width      int
	Height     int
	FOVDegrees float64
	Format     string
	Workers    int
	Gizmos     bool
	LogLevel   string
}

func underBase(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
