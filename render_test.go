package cspace_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/absfs/cspace"
	"github.com/absfs/cspace/spin"
)

func TestTexelColor(t *testing.T) {
	tests := map[cspace.VoxelType]color.RGBA{
		cspace.VoxelBorder:    {R: 64, G: 64, B: 64, A: 255},
		cspace.VoxelImaginary: {R: 32, G: 32, B: 32, A: 255},
		cspace.VoxelRealEmpty: {G: 255, A: 255},
		cspace.VoxelRealFull:  {R: 255, A: 255},
		cspace.VoxelRealMixed: {R: 255, G: 255, A: 255},
	}
	for vt, want := range tests {
		assert.Equal(t, want, cspace.TexelColor(vt), vt.String())
	}
}

func TestTexels(t *testing.T) {
	g, err := cspace.NewVoxelGrid(2)
	require.NoError(t, err)
	g.Set(0, 0, 1, cspace.VoxelRealFull)

	texels := cspace.Texels(g)
	require.Len(t, texels, 3*8)
	assert.Equal(t, []byte{0, 255, 0}, texels[0:3])
	assert.Equal(t, []byte{255, 0, 0}, texels[3:6])
}

func TestPolyConeProfile(t *testing.T) {
	samples := []spin.Spin{
		spin.Identity,
		spin.Identity.Neg(),
		{S12: 0.6, S0: 0.8},
		{S23: 1},
	}
	points, radii := cspace.PolyConeProfile(samples, 0.1)
	require.Len(t, points, 4)
	assert.Equal(t, r3.Vec{X: 0.6}, points[2])
	assert.Equal(t, r3.Vec{Y: 1}, points[3])

	want := []float64{0.1, 0.025, 0.1 * (1.8*0.5*0.75 + 0.25), 0.1 * 0.625}
	for i := range want {
		assert.True(t, scalar.EqualWithinAbs(want[i], radii[i], 1e-15), "radius %d: %v", i, radii[i])
	}
}

func TestFlatTriangle(t *testing.T) {
	tri := cspace.FlatTriangle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1})
	for _, n := range tri.Normals {
		assert.Equal(t, r3.Vec{Z: 1}, n)
	}
}

func TestParseVolumeRendererType(t *testing.T) {
	for _, want := range []cspace.VolumeRendererType{cspace.GaussianSplatter, cspace.Texture3D} {
		got, err := cspace.ParseVolumeRendererType(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := cspace.ParseVolumeRendererType("marching-cubes")
	assert.ErrorIs(t, err, cspace.ErrInvalidParameters)

	var zero cspace.VolumeRendererType
	assert.Equal(t, cspace.GaussianSplatter, zero)
}

func TestHeadlessBackend(t *testing.T) {
	b := cspace.NewHeadlessBackend()
	b.SetMaterial(cspace.QuadricMaterial)
	b.NewTriangleMesh(make([]cspace.SmoothTriangle, 3)).Render()
	b.SetMaterial(cspace.CurveMaterial)
	b.NewPolyConeMesh(nil, 0.1, 12).Render()

	calls := b.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, cspace.DrawCall{Kind: cspace.DrawTriangles, Material: cspace.QuadricMaterial, Primitives: 3}, calls[0])
	assert.Equal(t, cspace.DrawCall{Kind: cspace.DrawPolyCone, Material: cspace.CurveMaterial}, calls[1])

	_, err := b.NewVolumeRenderer(cspace.VolumeRendererType(7), &cspace.VoxelGrid{Resolution: 1, Cells: make([]cspace.VoxelType, 1)})
	assert.ErrorIs(t, err, cspace.ErrInvalidParameters)

	b.Reset()
	assert.Empty(t, b.Calls())
}
