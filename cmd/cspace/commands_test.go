package main

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/absfs/cspace"
	"github.com/absfs/cspace/internal/enginetest"
	"github.com/absfs/cspace/internal/logging"
	"github.com/absfs/cspace/scene"
	"github.com/absfs/cspace/vfs"
)

func run(t *testing.T, fsys *vfs.MemFS, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(fsys, nil)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func writeRaster(t *testing.T, fsys *vfs.MemFS, name string, resolution int) *cspace.RasterSpace {
	t.Helper()
	b := scene.FloatBall{Center: r3.Vec{Z: 1}, Radius: 0.2}
	p := &scene.Problem{
		Kind:      scene.KindBallList,
		Movable:   scene.Geometry{Balls: []scene.FloatBall{b}},
		Obstacles: scene.Geometry{Balls: []scene.FloatBall{b}},
	}
	opts := &cspace.Options{Logger: logging.Discard()}
	s, err := cspace.NewRasterSpace(&enginetest.Raster{}, p, cspace.RasterParameters{Resolution: resolution}, opts)
	require.NoError(t, err)
	require.NoError(t, cspace.SaveObject(fsys, name, cspace.NewRasterObject(s), opts))
	return s
}

func TestInspect(t *testing.T) {
	fsys := vfs.NewMemFS()
	s := writeRaster(t, fsys, "space.csp", 8)

	out, _, err := run(t, fsys, "inspect", "space.csp")
	require.NoError(t, err)
	assert.Contains(t, out, "kind:       RasterConfigurationSpace")
	assert.Contains(t, out, "resolution: 8")
	assert.Contains(t, out, "512 B in")
	assert.Contains(t, out, "zlib")

	h := s.Histogram()
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Border") {
			assert.Contains(t, line, "296")
		}
	}
	assert.Equal(t, 8*8*8-6*6*6, h[cspace.VoxelBorder])
}

func TestInspectFailures(t *testing.T) {
	fsys := vfs.NewMemFS()
	_, _, err := run(t, fsys, "inspect", "missing.csp")
	assert.Error(t, err)

	require.NoError(t, vfs.WriteFile(fsys, "cell.csp", binary.BigEndian.AppendUint32(nil, uint32(cspace.KindCell)), 0o644))
	_, stderr, err := run(t, fsys, "inspect", "cell.csp")
	assert.ErrorIs(t, err, cspace.ErrLoadFailed)
	assert.Contains(t, stderr, "failed to load configuration object")

	_, _, err = run(t, fsys, "inspect")
	assert.Error(t, err)
}

func TestRecompress(t *testing.T) {
	fsys := vfs.NewMemFS()
	s := writeRaster(t, fsys, "space.csp", 16)

	out, stderr, err := run(t, fsys, "--log-level", "debug", "recompress", "--algorithm", "zstd", "--level", "19", "space.csp", "small.csp")
	require.NoError(t, err)
	assert.Contains(t, out, "small.csp:")
	assert.Contains(t, out, "zstd")
	assert.Contains(t, stderr, "recompressed configuration space")

	obj, err := cspace.LoadObject(fsys, "small.csp", &cspace.Options{Logger: logging.Discard()})
	require.NoError(t, err)
	assert.Equal(t, s.Voxels(), obj.Raster().Voxels())

	out, _, err = run(t, fsys, "inspect", "small.csp")
	require.NoError(t, err)
	assert.Contains(t, out, "zstd")
}

func TestRecompressUsesConfig(t *testing.T) {
	fsys := vfs.NewMemFS()
	writeRaster(t, fsys, "space.csp", 8)
	require.NoError(t, vfs.WriteFile(fsys, "cspace.yaml", []byte("codec:\n  algorithm: lz4\n"), 0o644))

	out, _, err := run(t, fsys, "--config", "cspace.yaml", "recompress", "space.csp", "fast.csp")
	require.NoError(t, err)
	assert.Contains(t, out, "lz4")
}

func TestRecompressInvalid(t *testing.T) {
	fsys := vfs.NewMemFS()
	writeRaster(t, fsys, "space.csp", 8)

	_, _, err := run(t, fsys, "recompress", "--algorithm", "rar", "space.csp", "out.csp")
	assert.Error(t, err)
	_, _, err = run(t, fsys, "recompress", "--algorithm", "brotli", "--level", "30", "space.csp", "out.csp")
	assert.Error(t, err)
	assert.False(t, vfs.Exists(fsys, "out.csp"))
}

func TestBadConfig(t *testing.T) {
	fsys := vfs.NewMemFS()
	writeRaster(t, fsys, "space.csp", 8)
	require.NoError(t, vfs.WriteFile(fsys, "bad.yaml", []byte("log:\n  level: loud\n"), 0o644))

	_, _, err := run(t, fsys, "--config", "bad.yaml", "inspect", "space.csp")
	assert.Error(t, err)
	_, _, err = run(t, fsys, "--log-level", "loud", "inspect", "space.csp")
	assert.Error(t, err)
}

func TestScene(t *testing.T) {
	ball := func(x, r string) scene.Ball {
		return scene.Ball{
			Center: scene.Vec3{X: scene.MustDecimal(x), Y: scene.MustDecimal("0"), Z: scene.MustDecimal("1")},
			Radius: scene.MustDecimal(r),
		}
	}
	robot := scene.NewBallList([]scene.Ball{ball("0", "0.25")})
	robot.Rotating = true
	robot.Color = color.NRGBA{R: 255, G: 128, A: 255}
	obstacle := scene.NewBallList([]scene.Ball{ball("1.5", "0.5"), ball("-1.5", "0.5")})

	s := &scene.Scene{}
	s.Add(robot, obstacle)
	fsys := vfs.NewMemFS()
	require.NoError(t, scene.SaveArchive(fsys, "scene.arr", s))

	out, _, err := run(t, fsys, "scene", "scene.arr")
	require.NoError(t, err)
	assert.Contains(t, out, "objects: 2")
	assert.Contains(t, out, "0: DecimalBallList, 1 primitives, rotating=true visible=true color=#ff8000")
	assert.Contains(t, out, "1: DecimalBallList, 2 primitives, rotating=false")
	assert.Contains(t, out, "begin:   (1.000000, 0.000000, 0.000000, 0.000000)")
	assert.Contains(t, out, "problem: DecimalBallList, movable 1, obstacles 2")
	assert.Contains(t, out, "exact:   scaled by 10^2")
}

func TestSceneIncomplete(t *testing.T) {
	s := &scene.Scene{}
	s.Add(scene.NewBallList(nil))
	fsys := vfs.NewMemFS()
	require.NoError(t, scene.SaveArchive(fsys, "scene.arr", s))

	out, _, err := run(t, fsys, "scene", "scene.arr")
	require.NoError(t, err)
	assert.Contains(t, out, "problem: ")

	require.NoError(t, vfs.WriteFile(fsys, "broken.arr", []byte{0, 0}, 0o644))
	_, _, err = run(t, fsys, "scene", "broken.arr")
	assert.ErrorIs(t, err, scene.ErrMalformedArchive)
}
