package scene

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"portal-renderer/internal/mathutil"
)

// sceneFile matches the JSON schema of a scene file.
type sceneFile struct {
	Surfaces []surfaceJSON `json:"surfaces"`
	Boxes    []boxJSON     `json:"boxes"`
	Spawn    *struct {
		Position [3]float64 `json:"position"`
		Yaw      float64    `json:"yaw"` // degrees
	} `json:"spawn"`
}

type poseJSON struct {
	Position [3]float64  `json:"position"`
	Rotation [3]float64  `json:"rotation"` // yaw, pitch, roll in degrees
	Scale    *[3]float64 `json:"scale"`
}

type surfaceJSON struct {
	Name        string     `json:"name"`
	Parent      *poseJSON  `json:"parent"`
	poseJSON               // local pose
	HalfExtents [2]float64 `json:"half_extents"`
	Color       string     `json:"color"`
	Texture     string     `json:"texture"`
}

type boxJSON struct {
	Name     string     `json:"name"`
	Center   [3]float64 `json:"center"`
	HalfSize [3]float64 `json:"half_size"`
	Color    string     `json:"color"`
}

// Load reads a JSON scene file. Relative texture paths resolve against the
// file's directory.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}

	var f sceneFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}

	s := New()
	dir := filepath.Dir(path)
	for i, sj := range f.Surfaces {
		if sj.HalfExtents[0] <= 0 || sj.HalfExtents[1] <= 0 {
			return nil, fmt.Errorf("scene: %s: surface %d (%q) has non-positive half extents", path, i, sj.Name)
		}
		c, err := parseColor(sj.Color, color.NRGBA{128, 128, 128, 255})
		if err != nil {
			return nil, fmt.Errorf("scene: %s: surface %d: %w", path, i, err)
		}
		parent := mathutil.IdentityPose()
		if sj.Parent != nil {
			parent = sj.Parent.pose()
		}
		tex := sj.Texture
		if tex != "" && !filepath.IsAbs(tex) {
			tex = filepath.Join(dir, tex)
		}
		s.Add(Surface{
			Name:        sj.Name,
			Parent:      parent,
			Local:       sj.poseJSON.pose(),
			HalfExtents: mgl64.Vec2{sj.HalfExtents[0], sj.HalfExtents[1]},
			Color:       c,
			Texture:     tex,
		})
	}

	for i, bj := range f.Boxes {
		c, err := parseColor(bj.Color, color.NRGBA{160, 160, 170, 255})
		if err != nil {
			return nil, fmt.Errorf("scene: %s: box %d: %w", path, i, err)
		}
		s.Boxes = append(s.Boxes, Box{
			Name:     bj.Name,
			Center:   mgl64.Vec3(bj.Center),
			HalfSize: mgl64.Vec3(bj.HalfSize),
			Color:    c,
		})
	}

	if f.Spawn != nil {
		s.Spawn = Spawn{
			Position: mgl64.Vec3(f.Spawn.Position),
			Yaw:      mgl64.DegToRad(f.Spawn.Yaw),
		}
	}
	return s, nil
}

func (p poseJSON) pose() mathutil.Pose {
	out := mathutil.PoseAt(p.Position[0], p.Position[1], p.Position[2])
	out.Rotation = mathutil.EulerDegYXZ(p.Rotation[0], p.Rotation[1], p.Rotation[2])
	if p.Scale != nil {
		out.Scale = mgl64.Vec3(*p.Scale)
	}
	return out
}

// parseColor accepts "#rrggbb" or "#rrggbbaa". Empty returns def.
func parseColor(s string, def color.NRGBA) (color.NRGBA, error) {
	if s == "" {
		return def, nil
	}
	hex := strings.TrimPrefix(s, "#")
	c := color.NRGBA{A: 255}
	var err error
	switch len(hex) {
	case 6:
		_, err = fmt.Sscanf(hex, "%2x%2x%2x", &c.R, &c.G, &c.B)
	case 8:
		_, err = fmt.Sscanf(hex, "%2x%2x%2x%2x", &c.R, &c.G, &c.B, &c.A)
	default:
		return def, fmt.Errorf("bad color %q", s)
	}
	if err != nil {
		return def, fmt.Errorf("bad color %q: %w", s, err)
	}
	return c, nil
}
