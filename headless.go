package cspace

import (
	"fmt"
	"image/color"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/absfs/cspace/spin"
)

// DrawKind names the primitive a recorded draw call rendered.
type DrawKind string

const (
	DrawTexture3D DrawKind = "texture3d"
	DrawSplat     DrawKind = "splat"
	DrawTriangles DrawKind = "triangles"
	DrawPolyCone  DrawKind = "polycone"
	DrawSpinPoint DrawKind = "spinpoint"
)

// DrawCall is one recorded Render.
type DrawCall struct {
	Kind      DrawKind
	Material  color.NRGBA
	ClipPlane bool
	// Primitives counts texels, splat points, triangles or tube segments.
	Primitives int
}

// HeadlessBackend is a Backend without a graphics context. It prepares the
// same data a GPU backend would upload and records every draw call. It is
// safe for concurrent use.
type HeadlessBackend struct {
	mu       sync.Mutex
	material color.NRGBA
	clip     bool
	calls    []DrawCall
}

// NewHeadlessBackend returns a backend with a white material.
func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{material: color.NRGBA{R: 255, G: 255, B: 255, A: 255}}
}

var _ Backend = (*HeadlessBackend)(nil)

// Calls returns the draw calls recorded since the last Reset.
func (b *HeadlessBackend) Calls() []DrawCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]DrawCall(nil), b.calls...)
}

// Reset forgets the recorded draw calls.
func (b *HeadlessBackend) Reset() {
	b.mu.Lock()
	b.calls = nil
	b.mu.Unlock()
}

func (b *HeadlessBackend) record(kind DrawKind, n int) {
	b.mu.Lock()
	b.calls = append(b.calls, DrawCall{Kind: kind, Material: b.material, ClipPlane: b.clip, Primitives: n})
	b.mu.Unlock()
}

func (b *HeadlessBackend) SetMaterial(c color.NRGBA) {
	b.mu.Lock()
	b.material = c
	b.mu.Unlock()
}

func (b *HeadlessBackend) SetViewClipPlane(enabled bool) {
	b.mu.Lock()
	b.clip = enabled
	b.mu.Unlock()
}

func (b *HeadlessBackend) NewVolumeRenderer(kind VolumeRendererType, grid *VoxelGrid) (VolumeRenderer, error) {
	switch kind {
	case Texture3D:
		return &texture3D{backend: b, texels: Texels(grid), resolution: grid.Resolution}, nil
	case GaussianSplatter:
		return newSplatter(b, grid.Points(VoxelRealFull), grid.Points(VoxelRealMixed)), nil
	}
	return nil, fmt.Errorf("%w: volume renderer %v", ErrInvalidParameters, kind)
}

func (b *HeadlessBackend) NewPointVolumeRenderer(voxels []Voxel) (VolumeRenderer, error) {
	var full, mixed []Voxel
	for _, v := range voxels {
		switch v.Type {
		case VoxelRealFull:
			full = append(full, v)
		case VoxelRealMixed:
			mixed = append(mixed, v)
		}
	}
	return newSplatter(b, full, mixed), nil
}

func (b *HeadlessBackend) NewTriangleMesh(triangles []SmoothTriangle) Mesh {
	return &headlessMesh{backend: b, kind: DrawTriangles, n: len(triangles)}
}

func (b *HeadlessBackend) NewPolyConeMesh(samples []spin.Spin, radius float64, sides int) Mesh {
	return &headlessMesh{backend: b, kind: DrawPolyCone, n: max(len(samples)-1, 0)}
}

func (b *HeadlessBackend) NewSpinPointMesh(s spin.Spin, radius float64) Mesh {
	return &headlessMesh{backend: b, kind: DrawSpinPoint, n: 1}
}

type headlessMesh struct {
	backend *HeadlessBackend
	kind    DrawKind
	n       int
}

func (m *headlessMesh) Render() { m.backend.record(m.kind, m.n) }

type texture3D struct {
	backend    *HeadlessBackend
	texels     []byte
	resolution int
}

func (t *texture3D) Render() { t.backend.record(DrawTexture3D, len(t.texels)/3) }

// splatter draws the full set, then the mixed set.
type splatter struct {
	backend *HeadlessBackend
	full    []r3.Vec
	mixed   []r3.Vec
}

func newSplatter(b *HeadlessBackend, full, mixed []Voxel) *splatter {
	pts := func(vs []Voxel) []r3.Vec {
		out := make([]r3.Vec, len(vs))
		for i, v := range vs {
			out[i] = r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
		}
		return out
	}
	return &splatter{backend: b, full: pts(full), mixed: pts(mixed)}
}

func (s *splatter) Render() {
	s.backend.record(DrawSplat, len(s.full))
	s.backend.record(DrawSplat, len(s.mixed))
}
