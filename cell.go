package cspace

import (
	"fmt"
	"io"

	"github.com/absfs/cspace/scene"
)

// CellSpace is a configuration space given by a sampled cell decomposition.
// Every sample of a cell is kept as a voxel with explicit coordinates, so
// only point-based volume rendering applies.
type CellSpace struct {
	baseSpace
	voxels   []Voxel
	renderer VolumeRenderer
}

// NewCellSpace computes a cell decomposition with engine. A cell classifies
// all of its samples: RealEmpty when the cell is empty, RealFull otherwise.
func NewCellSpace(engine CellConfiguration, problem *scene.Problem, params CellParameters, opts *Options) (*CellSpace, error) {
	o := opts.withDefaults()
	if params.SampleCount < 1 || params.SampleCount > MaxCellSampleCount {
		return nil, fmt.Errorf("%w: sample count %d", ErrInvalidParameters, params.SampleCount)
	}
	if err := engine.CreateFromScene(problem, params); err != nil {
		return nil, fmt.Errorf("cspace: cell engine: %w", err)
	}

	rep := engine.Rep()
	voxels := make([]Voxel, 0, rep.SampleCount())
	for _, cell := range rep.Cells() {
		t := VoxelRealFull
		if cell.IsEmpty() {
			t = VoxelRealEmpty
		}
		for _, s := range cell.Samples() {
			voxels = append(voxels, Voxel{Type: t, X: s.S12, Y: s.S23, Z: s.S31})
		}
	}
	if len(voxels) != rep.SampleCount() {
		return nil, fmt.Errorf("cspace: cell engine reported %d samples, cells hold %d", rep.SampleCount(), len(voxels))
	}

	renderer, err := o.Backend.NewPointVolumeRenderer(voxels)
	if err != nil {
		return nil, err
	}
	o.Logger.Debug("cell configuration space computed", "cells", len(rep.Cells()), "samples", len(voxels))
	return &CellSpace{
		baseSpace: baseSpace{router: NewGenericRouter(engine)},
		voxels:    voxels,
		renderer:  renderer,
	}, nil
}

// ReadCellSpace always fails: cell spaces have no persisted form.
func ReadCellSpace(io.Reader, *Options) (*CellSpace, error) {
	return nil, fmt.Errorf("%w: loading a cell configuration space", ErrUnsupported)
}

// Save always fails: cell spaces have no persisted form.
func (s *CellSpace) Save(io.Writer) error {
	return fmt.Errorf("%w: saving a cell configuration space", ErrUnsupported)
}

func (s *CellSpace) Render() { s.renderer.Render() }

func (s *CellSpace) NeedsLighting() bool { return true }

// Voxels returns a copy of the classified samples.
func (s *CellSpace) Voxels() []Voxel { return append([]Voxel(nil), s.voxels...) }

// Histogram counts the samples of each type.
func (s *CellSpace) Histogram() Histogram {
	var h Histogram
	for _, v := range s.voxels {
		h[v.Type]++
	}
	return h
}
