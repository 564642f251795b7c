package cspace

import (
	"fmt"
	"io"

	"github.com/absfs/cspace/codec"
	"github.com/absfs/cspace/internal/qstream"
	"github.com/absfs/cspace/scene"
)

// RasterSpace is a configuration space sampled on a dense voxel grid.
type RasterSpace struct {
	baseSpace
	grid     *VoxelGrid
	renderer VolumeRenderer
	codec    *codec.Codec
}

// NewRasterSpace computes a raster with engine and classifies every cell.
// The resolution must be a power of two; the result routes through engine.
func NewRasterSpace(engine RasterConfiguration, problem *scene.Problem, params RasterParameters, opts *Options) (*RasterSpace, error) {
	o := opts.withDefaults()
	if !ValidResolution(params.Resolution) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidResolution, params.Resolution)
	}
	if err := engine.CreateFromScene(problem, params); err != nil {
		return nil, fmt.Errorf("cspace: raster engine: %w", err)
	}

	rep := engine.Rep()
	grid, err := NewVoxelGrid(rep.Resolution())
	if err != nil {
		return nil, fmt.Errorf("cspace: raster engine returned resolution %d: %w", rep.Resolution(), err)
	}
	classify(grid, rep)

	s, err := newRasterSpace(grid, o)
	if err != nil {
		return nil, err
	}
	s.router = NewGenericRouter(engine)
	o.Logger.Debug("raster configuration space computed",
		"resolution", grid.Resolution,
		"renderer", o.Renderer.String(),
		"histogram", s.Histogram())
	return s, nil
}

// classify fills grid from the engine raster. The outer shell is Border
// whatever the engine reports.
func classify(grid *VoxelGrid, rep RasterRepresentation) {
	r := grid.Resolution
	i := 0
	for u := 0; u < r; u++ {
		for v := 0; v < r; v++ {
			for w := 0; w < r; w++ {
				grid.Cells[i] = classifyVoxel(grid.IsShell(u, v, w), rep, u, v, w)
				i++
			}
		}
	}
}

func classifyVoxel(shell bool, rep RasterRepresentation, u, v, w int) VoxelType {
	if shell {
		return VoxelBorder
	}
	voxel := rep.Voxel(u, v, w)
	if !voxel.IsReal() {
		return VoxelImaginary
	}
	neg, pos := voxel.Value(CoverNegative), voxel.Value(CoverPositive)
	switch {
	case !neg && !pos:
		return VoxelRealEmpty
	case neg && pos:
		return VoxelRealFull
	default:
		return VoxelRealMixed
	}
}

// NewRasterSpaceFromGrid wraps an already classified grid. The space has no
// router. The grid must not be modified afterwards.
func NewRasterSpaceFromGrid(grid *VoxelGrid, opts *Options) (*RasterSpace, error) {
	if grid == nil || !ValidResolution(grid.Resolution) {
		return nil, ErrInvalidResolution
	}
	if len(grid.Cells) != grid.Resolution*grid.Resolution*grid.Resolution {
		return nil, fmt.Errorf("%w: %d cells for resolution %d", ErrInvalidParameters, len(grid.Cells), grid.Resolution)
	}
	return newRasterSpace(grid, opts.withDefaults())
}

func newRasterSpace(grid *VoxelGrid, o Options) (*RasterSpace, error) {
	renderer, err := o.Backend.NewVolumeRenderer(o.Renderer, grid)
	if err != nil {
		return nil, err
	}
	return &RasterSpace{grid: grid, renderer: renderer, codec: o.Codec}, nil
}

// ReadRasterSpace decodes a raster payload: uint32 resolution, then the
// uint32 length-prefixed compressed voxel bytes. The space has no router.
func ReadRasterSpace(r io.Reader, opts *Options) (*RasterSpace, error) {
	o := opts.withDefaults()
	qr := qstream.NewReader(r)
	resolution := qr.Uint32()
	blob := qr.Bytes()
	if err := qr.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStream, err)
	}
	if resolution > MaxResolution || !ValidResolution(int(resolution)) {
		return nil, fmt.Errorf("%w: resolution %d", ErrMalformedStream, resolution)
	}

	want := uint64(resolution) * uint64(resolution) * uint64(resolution)
	if n, err := codec.DecodedLength(blob); err != nil || n != want {
		return nil, fmt.Errorf("%w: compressed voxels do not declare %d bytes", ErrMalformedStream, want)
	}
	data, err := o.Codec.Decompress(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedStream, err)
	}
	grid, err := gridFromBytes(int(resolution), data)
	if err != nil {
		return nil, err
	}
	return newRasterSpace(grid, o)
}

// Save writes the raster payload read by ReadRasterSpace, compressed with the
// codec the space was created with.
func (s *RasterSpace) Save(w io.Writer) error { return s.save(w, s.codec) }

func (s *RasterSpace) save(w io.Writer, c *codec.Codec) error {
	blob, err := c.Compress(s.grid.Bytes())
	if err != nil {
		return err
	}
	qw := qstream.NewWriter(w)
	qw.Uint32(uint32(s.grid.Resolution))
	qw.Bytes(blob)
	return qw.Err()
}

func (s *RasterSpace) Render() { s.renderer.Render() }

func (s *RasterSpace) NeedsLighting() bool { return true }

// Resolution returns the grid resolution.
func (s *RasterSpace) Resolution() int { return s.grid.Resolution }

// Voxels returns a copy of the classified grid.
func (s *RasterSpace) Voxels() *VoxelGrid { return s.grid.Clone() }

// Histogram counts the voxels of each type.
func (s *RasterSpace) Histogram() Histogram { return s.grid.Histogram() }
