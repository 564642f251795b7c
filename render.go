package cspace

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/absfs/cspace/spin"
)

// VolumeRendererType selects how a voxel grid is drawn.
type VolumeRendererType int

const (
	// GaussianSplatter splats the full and mixed voxels and draws the
	// contour surfaces.
	GaussianSplatter VolumeRendererType = iota
	// Texture3D uploads the grid as a 3-D texture, one texel per voxel.
	Texture3D
)

func (t VolumeRendererType) String() string {
	switch t {
	case Texture3D:
		return "texture3d"
	case GaussianSplatter:
		return "gaussian-splatter"
	}
	return fmt.Sprintf("VolumeRendererType(%d)", int(t))
}

// ParseVolumeRendererType parses the names returned by String.
func ParseVolumeRendererType(name string) (VolumeRendererType, error) {
	switch name {
	case "texture3d":
		return Texture3D, nil
	case "gaussian-splatter":
		return GaussianSplatter, nil
	}
	return 0, fmt.Errorf("%w: unknown volume renderer %q", ErrInvalidParameters, name)
}

// Splatter constants used by GaussianSplatter backends.
const (
	SplatRadius          = 0.02
	SplatSampleDimension = 200
	SplatContourValue    = 0.01
)

// VolumeRenderer draws a finalized voxel buffer. It is built once and never
// mutated afterwards.
type VolumeRenderer interface {
	Render()
}

// Mesh is drawable geometry built by a backend.
type Mesh interface {
	Render()
}

// SmoothTriangle is a triangle with per-vertex normals.
type SmoothTriangle struct {
	Vertices [3]r3.Vec
	Normals  [3]r3.Vec
}

// FlatTriangle returns a smooth triangle whose normals are all the face
// normal (b-a)×(c-a).
func FlatTriangle(a, b, c r3.Vec) SmoothTriangle {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	return SmoothTriangle{Vertices: [3]r3.Vec{a, b, c}, Normals: [3]r3.Vec{n, n, n}}
}

// Materials used by the exact space and routes.
var (
	QuadricMaterial = color.NRGBA{R: 238, G: 144, B: 20, A: 255}
	CurveMaterial   = color.NRGBA{R: 51, G: 147, B: 41, A: 255}
)

// Backend creates render resources in some graphics context. Resources are
// handed their input at construction and own it from then on.
type Backend interface {
	NewVolumeRenderer(kind VolumeRendererType, grid *VoxelGrid) (VolumeRenderer, error)
	// NewPointVolumeRenderer draws explicit voxels; only splatting applies.
	NewPointVolumeRenderer(voxels []Voxel) (VolumeRenderer, error)
	NewTriangleMesh(triangles []SmoothTriangle) Mesh
	// NewPolyConeMesh draws a tube along the (s12, s23, s31) projection of
	// samples, see PolyConeProfile.
	NewPolyConeMesh(samples []spin.Spin, radius float64, sides int) Mesh
	NewSpinPointMesh(s spin.Spin, radius float64) Mesh
	SetMaterial(c color.NRGBA)
	SetViewClipPlane(enabled bool)
}

// TexelColor is the Texture3D color of a voxel type.
func TexelColor(t VoxelType) color.RGBA {
	switch t {
	case VoxelBorder:
		return color.RGBA{R: 64, G: 64, B: 64, A: 255}
	case VoxelImaginary:
		return color.RGBA{R: 32, G: 32, B: 32, A: 255}
	case VoxelRealEmpty:
		return color.RGBA{G: 255, A: 255}
	case VoxelRealFull:
		return color.RGBA{R: 255, A: 255}
	case VoxelRealMixed:
		return color.RGBA{R: 255, G: 255, A: 255}
	}
	return color.RGBA{A: 255}
}

// Texels returns the RGB8 texture of a grid in storage order.
func Texels(g *VoxelGrid) []byte {
	out := make([]byte, 0, 3*len(g.Cells))
	for _, t := range g.Cells {
		c := TexelColor(t)
		out = append(out, c.R, c.G, c.B)
	}
	return out
}

// PolyConeProfile returns the tube centerline and radii for samples. The
// radius shrinks with s0, from r at s0 = 1 to r/4 at s0 = -1.
func PolyConeProfile(samples []spin.Spin, r float64) (points []r3.Vec, radii []float64) {
	points = make([]r3.Vec, len(samples))
	radii = make([]float64, len(samples))
	for i, s := range samples {
		points[i] = s.Vector()
		radii[i] = r * ((s.S0+1)*0.5*0.75 + 0.25)
	}
	return points, radii
}
