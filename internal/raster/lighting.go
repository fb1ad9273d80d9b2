package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// LightConfig holds precomputed lighting parameters. Directions are in world
// space and point toward the light.
type LightConfig struct {
	LightDir  mgl64.Vec3
	RimDir    mgl64.Vec3
	Ambient   float64
	Hemi      float64
	Direct    float64
	Rim       float64
	Exposure  float64
	SRGBGamma float64
	InvGamma  float64
}

// DefaultLightConfig returns an overhead key light with a low fill from the
// opposite side, tuned for an indoor room.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir:  mgl64.Vec3{0.3, 1, 0.45}.Normalize(),
		RimDir:    mgl64.Vec3{-0.5, 0.4, -0.6}.Normalize(),
		Ambient:   0.35,
		Hemi:      0.25,
		Direct:    0.55,
		Rim:       0.20,
		Exposure:  1.0,
		SRGBGamma: 2.2,
		InvGamma:  1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a world-space face
// normal.
func (lc *LightConfig) ComputeShade(normal mgl64.Vec3) float64 {
	// Lambertian (abs for double-sided)
	ndlMain := math.Abs(normal.Dot(lc.LightDir))
	ndlRim := math.Abs(normal.Dot(lc.RimDir))

	// Hemisphere fill: floors and ceilings get more sky than walls.
	hemi := math.Abs(normal[1])*0.5 + 0.5
	return lc.Ambient + hemi*lc.Hemi + ndlMain*lc.Direct + ndlRim*lc.Rim
}

// Shade applies a lighting scalar to an sRGB color: decode, scale, tone map,
// encode.
func (lc *LightConfig) Shade(r, g, b uint8, shade float64) (uint8, uint8, uint8) {
	k := shade * lc.Exposure
	fr := math.Pow(ACESTonemap(srgbToLinear[r]*k), lc.InvGamma)
	fg := math.Pow(ACESTonemap(srgbToLinear[g]*k), lc.InvGamma)
	fb := math.Pow(ACESTonemap(srgbToLinear[b]*k), lc.InvGamma)
	return clamp255(fr * 255), clamp255(fg * 255), clamp255(fb * 255)
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
