package cspace_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/absfs/cspace"
	"github.com/absfs/cspace/internal/enginetest"
	"github.com/absfs/cspace/scene"
)

// quietOptions returns options with a discarding logger and a fresh
// headless backend.
func quietOptions() (*cspace.Options, *cspace.HeadlessBackend) {
	b := cspace.NewHeadlessBackend()
	return &cspace.Options{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Backend: b,
	}, b
}

// ballProblem is a one-ball movable set against a one-ball obstacle set.
func ballProblem(movable, obstacle scene.FloatBall) *scene.Problem {
	return &scene.Problem{
		Kind:      scene.KindBallList,
		Movable:   scene.Geometry{Balls: []scene.FloatBall{movable}},
		Obstacles: scene.Geometry{Balls: []scene.FloatBall{obstacle}},
	}
}

// overlapProblem places both balls at the same point on the z axis: the
// pair overlaps for rotations that keep that point close to itself.
func overlapProblem() *scene.Problem {
	b := scene.FloatBall{Center: r3.Vec{Z: 1}, Radius: 0.2}
	return ballProblem(b, b)
}

// routeProblem keeps the identity free and blocks rotations that carry the
// movable ball from the z axis onto the y axis.
func routeProblem() *scene.Problem {
	return ballProblem(
		scene.FloatBall{Center: r3.Vec{Z: 1}, Radius: 0.1},
		scene.FloatBall{Center: r3.Vec{Y: 1}, Radius: 0.1},
	)
}

func newRaster(t *testing.T, resolution int, p *scene.Problem, opts *cspace.Options) *cspace.RasterSpace {
	t.Helper()
	s, err := cspace.NewRasterSpace(&enginetest.Raster{}, p, cspace.RasterParameters{Resolution: resolution}, opts)
	require.NoError(t, err)
	return s
}

func saveRaster(t *testing.T, s *cspace.RasterSpace) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf))
	return buf.Bytes()
}

// quatClose compares two quaternions component-wise.
func quatClose(t *testing.T, want, got quat.Number) {
	t.Helper()
	require.InDelta(t, want.Real, got.Real, 1e-12, "real")
	require.InDelta(t, want.Imag, got.Imag, 1e-12, "imag")
	require.InDelta(t, want.Jmag, got.Jmag, 1e-12, "jmag")
	require.InDelta(t, want.Kmag, got.Kmag, 1e-12, "kmag")
}
