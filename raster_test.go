package cspace_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/absfs/cspace"
	"github.com/absfs/cspace/codec"
	"github.com/absfs/cspace/internal/enginetest"
	"github.com/absfs/cspace/spin"
)

func TestRasterResolutions(t *testing.T) {
	opts, _ := quietOptions()
	for _, r := range []int{1, 2, 4, 8, 16, 32} {
		s := newRaster(t, r, overlapProblem(), opts)
		assert.Equal(t, r, s.Resolution())
		assert.Equal(t, r*r*r, s.Histogram().Total())
		assert.NotNil(t, s.Router())
	}

	for _, r := range []int{0, 3, 100, 200, 512} {
		_, err := cspace.NewRasterSpace(&enginetest.Raster{}, overlapProblem(), cspace.RasterParameters{Resolution: r}, opts)
		assert.ErrorIs(t, err, cspace.ErrInvalidResolution, "resolution %d", r)
	}
}

func TestRasterShellIsBorder(t *testing.T) {
	opts, _ := quietOptions()
	for _, r := range []int{2, 4, 16} {
		g := newRaster(t, r, overlapProblem(), opts).Voxels()
		for u := 0; u < r; u++ {
			for v := 0; v < r; v++ {
				for w := 0; w < r; w++ {
					if g.IsShell(u, v, w) {
						require.Equal(t, cspace.VoxelBorder, g.At(u, v, w), "(%d, %d, %d)", u, v, w)
					} else {
						require.NotEqual(t, cspace.VoxelBorder, g.At(u, v, w), "(%d, %d, %d)", u, v, w)
					}
				}
			}
		}
	}
}

// overlapDistance rotates the movable center of overlapProblem with s using
// quaternion multiplication and measures its distance to the obstacle.
func overlapDistance(s spin.Spin) float64 {
	q := s.Quaternion()
	c := quat.Number{Kmag: 1}
	p := quat.Mul(quat.Mul(q, c), quat.Conj(q))
	return r3.Norm(r3.Sub(r3.Vec{X: p.Imag, Y: p.Jmag, Z: p.Kmag}, r3.Vec{Z: 1}))
}

func TestRasterOneBallScenario(t *testing.T) {
	const r = 128
	const contact = 0.4

	opts, _ := quietOptions()
	g := newRaster(t, r, overlapProblem(), opts).Voxels()

	checked := 0
	for u := 0; u < r; u++ {
		for v := 0; v < r; v++ {
			for w := 0; w < r; w++ {
				got := g.At(u, v, w)
				if g.IsShell(u, v, w) {
					if got != cspace.VoxelBorder {
						t.Fatalf("(%d, %d, %d) = %v, want Border", u, v, w, got)
					}
					continue
				}
				x, y, z := g.Coordinates(u, v, w)
				d := 1 - (x*x + y*y + z*z)
				if d < 0 {
					if got != cspace.VoxelImaginary {
						t.Fatalf("(%d, %d, %d) = %v, want Imaginary", u, v, w, got)
					}
					continue
				}
				s0 := math.Sqrt(d)
				pos := overlapDistance(spin.Spin{S12: x, S23: y, S31: z, S0: s0})
				neg := overlapDistance(spin.Spin{S12: x, S23: y, S31: z, S0: -s0})
				if math.Abs(pos-contact) < 1e-9 || math.Abs(neg-contact) < 1e-9 {
					continue
				}
				want := cspace.VoxelRealMixed
				switch {
				case pos > contact && neg > contact:
					want = cspace.VoxelRealEmpty
				case pos <= contact && neg <= contact:
					want = cspace.VoxelRealFull
				}
				if got != want {
					t.Fatalf("(%d, %d, %d) = %v, want %v", u, v, w, got, want)
				}
				checked++
			}
		}
	}
	assert.Greater(t, checked, 0)

	h := g.Histogram()
	assert.Greater(t, h[cspace.VoxelRealFull], 0)
	assert.Greater(t, h[cspace.VoxelRealEmpty], h[cspace.VoxelRealFull])
	assert.Greater(t, h[cspace.VoxelImaginary], 0)
	assert.Equal(t, r*r*r-(r-2)*(r-2)*(r-2), h[cspace.VoxelBorder])

	// near the identity both balls coincide
	assert.Equal(t, cspace.VoxelRealFull, g.At(63, 63, 63))
	// about 118° around a diagonal axis separates them
	assert.Equal(t, cspace.VoxelRealEmpty, g.At(95, 95, 95))
	assert.Equal(t, cspace.VoxelImaginary, g.At(120, 120, 120))
	assert.Equal(t, cspace.VoxelBorder, g.At(0, 64, 64))
}

func TestRasterSaveLayout(t *testing.T) {
	opts, _ := quietOptions()
	s := newRaster(t, 16, overlapProblem(), opts)
	data := saveRaster(t, s)

	require.Greater(t, len(data), 8)
	assert.Equal(t, uint32(16), binary.BigEndian.Uint32(data[0:4]))
	blobLen := binary.BigEndian.Uint32(data[4:8])
	require.Equal(t, len(data)-8, int(blobLen))

	blob := data[8:]
	n, err := codec.DecodedLength(blob)
	require.NoError(t, err)
	assert.Equal(t, uint64(16*16*16), n)
	algo, ok := codec.DetectBlobAlgorithm(blob)
	require.True(t, ok)
	assert.Equal(t, codec.AlgorithmZlib, algo)

	raw, err := codec.Decompress(blob)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(s.Voxels().Bytes(), raw))
}

func TestRasterRoundTrip(t *testing.T) {
	opts, _ := quietOptions()
	s := newRaster(t, 32, overlapProblem(), opts)
	data := saveRaster(t, s)

	loaded, err := cspace.ReadRasterSpace(bytes.NewReader(data), opts)
	require.NoError(t, err)
	assert.Equal(t, 32, loaded.Resolution())
	assert.Empty(t, cmp.Diff(s.Voxels().Bytes(), loaded.Voxels().Bytes()))
	assert.Empty(t, cmp.Diff(data, saveRaster(t, loaded)))
	assert.Nil(t, loaded.Router())
}

func TestRasterRoundTripOtherCodec(t *testing.T) {
	c, err := codec.New(codec.RecommendedConfig())
	require.NoError(t, err)
	opts, _ := quietOptions()
	opts.Codec = c

	s := newRaster(t, 8, overlapProblem(), opts)
	data := saveRaster(t, s)
	algo, ok := codec.DetectBlobAlgorithm(data[8:])
	require.True(t, ok)
	assert.Equal(t, codec.AlgorithmZstd, algo)

	// the reader detects the algorithm, whatever its own codec config
	plain, _ := quietOptions()
	loaded, err := cspace.ReadRasterSpace(bytes.NewReader(data), plain)
	require.NoError(t, err)
	assert.Equal(t, s.Voxels(), loaded.Voxels())
}

func rasterPayload(t *testing.T, resolution uint32, voxels []byte) []byte {
	t.Helper()
	blob, err := codec.Compress(voxels)
	require.NoError(t, err)
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, resolution)
	binary.Write(&buf, binary.BigEndian, uint32(len(blob)))
	buf.Write(blob)
	return buf.Bytes()
}

func TestReadRasterSpaceMalformed(t *testing.T) {
	opts, _ := quietOptions()
	good := saveRaster(t, newRaster(t, 4, overlapProblem(), opts))

	outOfRange := make([]byte, 64)
	outOfRange[10] = 9

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"resolution only", good[:4]},
		{"truncated blob", good[:len(good)-3]},
		{"not a power of two", rasterPayload(t, 3, make([]byte, 27))},
		{"too large", rasterPayload(t, 512, make([]byte, 8))},
		{"short payload", rasterPayload(t, 4, make([]byte, 63))},
		{"undefined voxel type", rasterPayload(t, 4, outOfRange)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cspace.ReadRasterSpace(bytes.NewReader(tt.data), opts)
			assert.ErrorIs(t, err, cspace.ErrMalformedStream)
		})
	}
}

func TestNewRasterSpaceFromGrid(t *testing.T) {
	g, err := cspace.NewVoxelGrid(4)
	require.NoError(t, err)
	g.Set(1, 1, 1, cspace.VoxelRealFull)

	opts, _ := quietOptions()
	s, err := cspace.NewRasterSpaceFromGrid(g, opts)
	require.NoError(t, err)
	assert.Nil(t, s.Router())
	assert.Equal(t, 1, s.Histogram()[cspace.VoxelRealFull])

	_, err = cspace.NewRasterSpaceFromGrid(&cspace.VoxelGrid{Resolution: 4}, opts)
	assert.ErrorIs(t, err, cspace.ErrInvalidParameters)
	_, err = cspace.NewRasterSpaceFromGrid(nil, opts)
	assert.ErrorIs(t, err, cspace.ErrInvalidResolution)
}

func TestRasterRender(t *testing.T) {
	opts, backend := quietOptions()
	s := newRaster(t, 8, overlapProblem(), opts)
	h := s.Histogram()

	s.Render()
	calls := backend.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, cspace.DrawSplat, calls[0].Kind)
	assert.Equal(t, h[cspace.VoxelRealFull], calls[0].Primitives)
	assert.Equal(t, h[cspace.VoxelRealMixed], calls[1].Primitives)

	opts.Renderer = cspace.Texture3D
	backend.Reset()
	s = newRaster(t, 8, overlapProblem(), opts)
	s.Render()
	calls = backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, cspace.DrawTexture3D, calls[0].Kind)
	assert.Equal(t, 8*8*8, calls[0].Primitives)

	assert.True(t, s.NeedsLighting())
	assert.False(t, s.NeedsShaderLighting())
}
