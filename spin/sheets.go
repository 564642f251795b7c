package spin

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// SheetPair holds the two covering sheets of one physical curve.
// Negative[i] is the antipode of Positive[i].
type SheetPair struct {
	Positive []Spin
	Negative []Spin
}

// Antipodes returns a new slice holding the antipode of every sample.
func Antipodes(samples []Spin) []Spin {
	out := make([]Spin, len(samples))
	for i, s := range samples {
		out[i] = s.Neg()
	}
	return out
}

// PairSheets materializes both covering sheets of a sampled curve.
// The positive sheet is a copy of samples.
func PairSheets(samples []Spin) SheetPair {
	pos := make([]Spin, len(samples))
	copy(pos, samples)
	return SheetPair{Positive: pos, Negative: Antipodes(samples)}
}

// Continuous returns a copy of samples in which every sample lies on the
// same sheet as its predecessor: a sample is negated when its inner product
// with the previous output sample is negative.
func Continuous(samples []Spin) []Spin {
	out := make([]Spin, len(samples))
	for i, s := range samples {
		if i > 0 && s.Dot(out[i-1]) < 0 {
			s = s.Neg()
		}
		out[i] = s
	}
	return out
}

// QuaternionFromEuler builds the unit quaternion for the given roll, pitch
// and yaw in radians, composed yaw first, then pitch, then roll.
func QuaternionFromEuler(roll, pitch, yaw float64) quat.Number {
	s1, c1 := math.Sincos(yaw / 2)
	s2, c2 := math.Sincos(pitch / 2)
	s3, c3 := math.Sincos(roll / 2)

	return quat.Number{
		Real: c1*c2*c3 - s1*s2*s3,
		Imag: c1*c2*s3 + s1*s2*c3,
		Jmag: s1*c2*c3 + c1*s2*s3,
		Kmag: c1*s2*c3 - s1*c2*s3,
	}
}
