// Package spin implements spin coordinates, the four-parameter points on the
// unit 3-sphere that double cover the rotation group, and their mapping to the
// application quaternions of gonum's quat package.
//
// A spin (s12, s23, s31, s0) and its antipode (-s12, -s23, -s31, -s0)
// describe the same spatial rotation. Curves sampled from a representation
// engine may jump between the two sheets; use Continuous to restore a
// sign-continuous curve and PairSheets to materialize both sheets of a curve.
package spin

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Spin is a point of the double cover of SO(3) in bivector coordinates.
type Spin struct {
	S12, S23, S31, S0 float64
}

// Identity is the spin of the identity rotation.
var Identity = Spin{S0: 1}

// FromQuaternion maps an application quaternion to spin coordinates.
// The axis labeling is fixed by the representation engine:
// s12 = -k, s23 = -i, s31 = -j, s0 = real.
func FromQuaternion(q quat.Number) Spin {
	return Spin{
		S12: -q.Kmag,
		S23: -q.Imag,
		S31: -q.Jmag,
		S0:  q.Real,
	}
}

// Quaternion maps s back to an application quaternion. It is the exact
// inverse of FromQuaternion.
func (s Spin) Quaternion() quat.Number {
	return quat.Number{
		Real: s.S0,
		Imag: -s.S23,
		Jmag: -s.S31,
		Kmag: -s.S12,
	}
}

// Neg returns the antipode of s: the same rotation on the other sheet.
func (s Spin) Neg() Spin {
	return Spin{S12: -s.S12, S23: -s.S23, S31: -s.S31, S0: -s.S0}
}

// Dot returns the four-dimensional inner product of s and t.
func (s Spin) Dot(t Spin) float64 {
	return s.S12*t.S12 + s.S23*t.S23 + s.S31*t.S31 + s.S0*t.S0
}

// Norm returns the Euclidean norm of s.
func (s Spin) Norm() float64 {
	return math.Sqrt(s.Dot(s))
}

// Normalize returns s scaled to unit norm. The zero spin normalizes to Identity.
func (s Spin) Normalize() Spin {
	n := s.Norm()
	if n == 0 {
		return Identity
	}
	return Spin{S12: s.S12 / n, S23: s.S23 / n, S31: s.S31 / n, S0: s.S0 / n}
}

// Vector returns the bivector part (s12, s23, s31), the point at which the
// spin is drawn in the normalized spin cube.
func (s Spin) Vector() r3.Vec {
	return r3.Vec{X: s.S12, Y: s.S23, Z: s.S31}
}

// IsReal reports whether the bivector part lies inside the unit ball, the
// region in which a unit s0 exists.
func (s Spin) IsReal() bool {
	return r3.Dot(s.Vector(), s.Vector()) <= 1
}

// FromVectorAlign returns the spin rotating direction from onto direction to.
// Neither vector needs to be normalized; antiparallel inputs are degenerate.
func FromVectorAlign(from, to r3.Vec) Spin {
	f := r3.Unit(from)
	h := r3.Unit(r3.Add(f, r3.Unit(to)))

	return Spin{
		S0:  h.X*f.X + h.Y*f.Y + h.Z*f.Z,
		S12: h.X*f.Y - h.Y*f.X,
		S23: h.Y*f.Z - h.Z*f.Y,
		S31: h.Z*f.X - h.X*f.Z,
	}
}

// Rotate applies the rotation of the unit spin s to v.
func (s Spin) Rotate(v r3.Vec) r3.Vec {
	s0, s12, s23, s31 := s.S0, s.S12, s.S23, s.S31
	return r3.Vec{
		X: (s0*s0-s12*s12+s23*s23-s31*s31)*v.X + 2*(v.Y*(s0*s12+s23*s31)+v.Z*(s12*s23-s0*s31)),
		Y: (s0*s0-s12*s12-s23*s23+s31*s31)*v.Y + 2*(v.X*(s23*s31-s0*s12)+v.Z*(s12*s31+s0*s23)),
		Z: (s0*s0+s12*s12-s23*s23-s31*s31)*v.Z + 2*(v.X*(s12*s23+s0*s31)+v.Y*(s12*s31-s0*s23)),
	}
}

// GridCoordinate maps voxel index i of a grid with res cells per axis
// linearly onto [-1, 1]. A single-cell grid maps to 0.
func GridCoordinate(i, res int) float64 {
	if res <= 1 {
		return 0
	}
	return 2*float64(i)/float64(res-1) - 1
}
