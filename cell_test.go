package cspace_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absfs/cspace"
	"github.com/absfs/cspace/internal/enginetest"
)

func newCell(t *testing.T, samples int, opts *cspace.Options) *cspace.CellSpace {
	t.Helper()
	s, err := cspace.NewCellSpace(&enginetest.Cells{}, overlapProblem(), cspace.CellParameters{SampleCount: samples}, opts)
	require.NoError(t, err)
	return s
}

func TestCellSpace(t *testing.T) {
	opts, _ := quietOptions()
	s := newCell(t, 500, opts)

	voxels := s.Voxels()
	require.Len(t, voxels, 500)
	for _, v := range voxels {
		require.Contains(t, []cspace.VoxelType{cspace.VoxelRealEmpty, cspace.VoxelRealFull}, v.Type)
		require.LessOrEqual(t, v.X*v.X+v.Y*v.Y+v.Z*v.Z, 1.0)
	}

	h := s.Histogram()
	assert.Equal(t, 500, h.Total())
	assert.Greater(t, h[cspace.VoxelRealFull], 0)
	assert.Greater(t, h[cspace.VoxelRealEmpty], 0)
	assert.NotNil(t, s.Router())
	assert.True(t, s.NeedsLighting())
}

func TestCellSpaceSampleCount(t *testing.T) {
	opts, _ := quietOptions()
	for _, n := range []int{0, -1, cspace.MaxCellSampleCount + 1} {
		_, err := cspace.NewCellSpace(&enginetest.Cells{}, overlapProblem(), cspace.CellParameters{SampleCount: n}, opts)
		assert.ErrorIs(t, err, cspace.ErrInvalidParameters, "sample count %d", n)
	}
	assert.Len(t, newCell(t, 1, opts).Voxels(), 1)
}

func TestCellSpaceRender(t *testing.T) {
	opts, backend := quietOptions()
	s := newCell(t, 200, opts)
	s.Render()

	calls := backend.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, cspace.DrawSplat, calls[0].Kind)
	assert.Equal(t, s.Histogram()[cspace.VoxelRealFull], calls[0].Primitives)
	assert.Equal(t, 0, calls[1].Primitives)
}

func TestCellSpaceNotPersisted(t *testing.T) {
	opts, _ := quietOptions()
	s := newCell(t, 10, opts)

	var buf bytes.Buffer
	assert.ErrorIs(t, s.Save(&buf), cspace.ErrUnsupported)
	_, err := cspace.ReadCellSpace(&buf, opts)
	assert.ErrorIs(t, err, cspace.ErrUnsupported)
}
