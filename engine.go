package cspace

import (
	"github.com/absfs/cspace/scene"
	"github.com/absfs/cspace/spin"
)

// The representation engine computes configuration spaces from scenes. It
// is an external collaborator: this package only consumes the contracts
// below. internal/enginetest provides a small deterministic implementation.

// Cover selects one of the two sheets of the double cover.
type Cover int

const (
	CoverNegative Cover = iota
	CoverPositive
)

// RasterVoxel is the engine's view of one raster cell.
type RasterVoxel interface {
	// IsReal reports whether the cell lies on the valid part of the cover.
	IsReal() bool
	// Value reports whether the cell is occupied on the given sheet.
	Value(c Cover) bool
}

// RasterRepresentation is a dense engine raster.
type RasterRepresentation interface {
	Resolution() int
	Voxel(u, v, w int) RasterVoxel
}

// Cell is one cell of a sampled decomposition.
type Cell interface {
	IsEmpty() bool
	Samples() []spin.Spin
}

// CellRepresentation is a sampled cell decomposition.
type CellRepresentation interface {
	Cells() []Cell
	// SampleCount is the total number of samples over all cells.
	SampleCount() int
}

// SpinQuadric is an engine quadric surface in spin space. It is opaque to
// this package and only handed to a QuadricMesher.
type SpinQuadric any

// Qsic is an intersection curve of two spin quadrics.
type Qsic interface {
	ComponentCount() int
	ComponentDimension(component int) int
}

// Qsip is an intersection point of a quadric and a curve.
type Qsip interface {
	Point() spin.Spin
}

// ExactRepresentation is an algebraic decomposition.
type ExactRepresentation interface {
	SpinQuadrics() []SpinQuadric
	Qsics() []Qsic
	Qsips() []Qsip
}

// EngineRoute is a route in spin coordinates as the engine reports it.
type EngineRoute interface {
	IsValid() bool
	Evaluate(t float64) spin.Spin
}

// RouteFinder searches for routes in spin coordinates.
type RouteFinder interface {
	FindRoute(begin, end spin.Spin) EngineRoute
}

// Configuration is an engine configuration: built once from a problem S with
// parameters P, exposing its representation R and route search.
type Configuration[S, P, R any] interface {
	RouteFinder
	CreateFromScene(problem S, params P) error
	Rep() R
}

// RasterParameters configure a raster computation.
type RasterParameters struct {
	Resolution int
}

// DefaultRasterResolution is the resolution used when none is given.
const DefaultRasterResolution = 128

// CellParameters configure a sampled cell computation.
type CellParameters struct {
	SampleCount int
}

// Sample count bounds for cell computations.
const (
	DefaultCellSampleCount = 10000
	MaxCellSampleCount     = 5000000
)

// ExactParameters configure an exact computation.
type ExactParameters struct {
	SuppressQsicCalculation bool
	SuppressQsipCalculation bool
}

type (
	RasterConfiguration = Configuration[*scene.Problem, RasterParameters, RasterRepresentation]
	CellConfiguration   = Configuration[*scene.Problem, CellParameters, CellRepresentation]
	ExactConfiguration  = Configuration[*scene.ExactProblem, ExactParameters, ExactRepresentation]
)

// QuadricMesher meshes a spin quadric into the triangle soups of its two
// sheets.
type QuadricMesher interface {
	MeshTriangleSoup(q SpinQuadric, angularBound, radiusBound, distanceBound float64) (positive, negative []SmoothTriangle, err error)
}

// QsicMesher samples one component of a curve as a spin polyline.
type QsicMesher interface {
	MeshComponent(q Qsic, component int, radiusBound float64) ([]spin.Spin, error)
}
