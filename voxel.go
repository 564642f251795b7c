package cspace

import (
	"fmt"

	"github.com/absfs/cspace/spin"
)

// VoxelType classifies one cell of a configuration space. The numeric values
// are the persisted byte values.
type VoxelType uint8

const (
	VoxelRealEmpty VoxelType = iota
	VoxelRealFull
	VoxelRealMixed
	VoxelImaginary
	VoxelBorder
)

// NumVoxelTypes is the number of defined voxel types.
const NumVoxelTypes = int(VoxelBorder) + 1

func (t VoxelType) String() string {
	switch t {
	case VoxelRealEmpty:
		return "RealEmpty"
	case VoxelRealFull:
		return "RealFull"
	case VoxelRealMixed:
		return "RealMixed"
	case VoxelImaginary:
		return "Imaginary"
	case VoxelBorder:
		return "Border"
	}
	return fmt.Sprintf("VoxelType(%d)", uint8(t))
}

// Valid reports whether t is a defined voxel type.
func (t VoxelType) Valid() bool {
	return t <= VoxelBorder
}

// Voxel is a classified sample with explicit spin coordinates (s12, s23, s31).
type Voxel struct {
	Type    VoxelType
	X, Y, Z float64
}

// Histogram counts voxels per type, indexed by VoxelType.
type Histogram [NumVoxelTypes]int

// Total returns the number of counted voxels.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// MaxResolution is the largest supported raster resolution.
const MaxResolution = 256

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// ValidResolution reports whether n is a usable raster resolution.
func ValidResolution(n int) bool {
	return IsPowerOfTwo(n) && n <= MaxResolution
}

// VoxelGrid is a dense cube of Resolution³ classified cells. Cell (u, v, w)
// is stored at (u*R+v)*R+w and sits at spin coordinates
// (s12, s23, s31) = (c(u), c(v), c(w)) with c(i) = 2i/(R-1)-1.
type VoxelGrid struct {
	Resolution int
	Cells      []VoxelType
}

// NewVoxelGrid allocates a grid of RealEmpty cells.
func NewVoxelGrid(resolution int) (*VoxelGrid, error) {
	if !ValidResolution(resolution) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResolution, resolution)
	}
	return &VoxelGrid{
		Resolution: resolution,
		Cells:      make([]VoxelType, resolution*resolution*resolution),
	}, nil
}

// gridFromBytes reinterprets a decoded payload as a grid, checking the
// length and every byte.
func gridFromBytes(resolution int, data []byte) (*VoxelGrid, error) {
	if !ValidResolution(resolution) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResolution, resolution)
	}
	if want := resolution * resolution * resolution; len(data) != want {
		return nil, fmt.Errorf("%w: %d voxel bytes, want %d", ErrMalformedStream, len(data), want)
	}
	cells := make([]VoxelType, len(data))
	for i, b := range data {
		t := VoxelType(b)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: voxel %d has type %d", ErrMalformedStream, i, b)
		}
		cells[i] = t
	}
	return &VoxelGrid{Resolution: resolution, Cells: cells}, nil
}

// Index returns the storage index of (u, v, w).
func (g *VoxelGrid) Index(u, v, w int) int {
	return (u*g.Resolution+v)*g.Resolution + w
}

func (g *VoxelGrid) At(u, v, w int) VoxelType {
	return g.Cells[g.Index(u, v, w)]
}

func (g *VoxelGrid) Set(u, v, w int, t VoxelType) {
	g.Cells[g.Index(u, v, w)] = t
}

// IsShell reports whether (u, v, w) lies on the outermost layer.
func (g *VoxelGrid) IsShell(u, v, w int) bool {
	last := g.Resolution - 1
	return u == 0 || v == 0 || w == 0 || u == last || v == last || w == last
}

// Coordinates returns the spin coordinates of (u, v, w).
func (g *VoxelGrid) Coordinates(u, v, w int) (s12, s23, s31 float64) {
	return spin.GridCoordinate(u, g.Resolution), spin.GridCoordinate(v, g.Resolution), spin.GridCoordinate(w, g.Resolution)
}

// Bytes returns the persisted form: one byte per cell in storage order.
func (g *VoxelGrid) Bytes() []byte {
	out := make([]byte, len(g.Cells))
	for i, t := range g.Cells {
		out[i] = byte(t)
	}
	return out
}

// Histogram counts the cells of each type.
func (g *VoxelGrid) Histogram() Histogram {
	var h Histogram
	for _, t := range g.Cells {
		if t.Valid() {
			h[t]++
		}
	}
	return h
}

// Points returns the cells of type t as voxels with spin coordinates, in
// storage order.
func (g *VoxelGrid) Points(t VoxelType) []Voxel {
	var out []Voxel
	r := g.Resolution
	for u := 0; u < r; u++ {
		for v := 0; v < r; v++ {
			for w := 0; w < r; w++ {
				if g.At(u, v, w) != t {
					continue
				}
				x, y, z := g.Coordinates(u, v, w)
				out = append(out, Voxel{Type: t, X: x, Y: y, Z: z})
			}
		}
	}
	return out
}

// Clone returns a deep copy.
func (g *VoxelGrid) Clone() *VoxelGrid {
	return &VoxelGrid{Resolution: g.Resolution, Cells: append([]VoxelType(nil), g.Cells...)}
}
