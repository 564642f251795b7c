package cspace

import (
	"fmt"
	"io"

	"github.com/absfs/cspace/scene"
	"github.com/absfs/cspace/spin"
)

// Mesher bounds for exact spaces.
const (
	QuadricAngularBound  = 30
	QuadricRadiusBound   = 0.03
	QuadricDistanceBound = 0.03
	QsicRadiusBound      = 0.1
	QsicTubeRadius       = 0.05
	QsicTubeSides        = 12
	QsipMarkerRadius     = 0.02
)

// ExactMeshing controls how an exact space is turned into meshes.
type ExactMeshing struct {
	Quadrics QuadricMesher
	Qsics    QsicMesher

	SuppressQuadricMeshing bool
	SuppressQsicMeshing    bool
	SuppressQsipMeshing    bool
	// ViewClipPlane clips the meshes against the view plane while rendering.
	ViewClipPlane bool
}

// meshPair holds the meshes of the two sheets of one surface or curve.
type meshPair struct {
	positive, negative Mesh
}

func (p meshPair) render() {
	p.positive.Render()
	p.negative.Render()
}

// ExactSpace is a configuration space given by its algebraic boundary:
// spin quadrics, their intersection curves and intersection points.
type ExactSpace struct {
	baseSpace
	backend  Backend
	clip     bool
	quadrics []meshPair
	curves   []meshPair
	points   []meshPair
}

// NewExactSpace computes the exact decomposition with engine and meshes it.
// Every curve component of dimension one is sampled once; the sheet on the
// other side of the double cover is its antipodal image.
func NewExactSpace(engine ExactConfiguration, problem *scene.ExactProblem, params ExactParameters, meshing ExactMeshing, opts *Options) (*ExactSpace, error) {
	o := opts.withDefaults()
	if !meshing.SuppressQuadricMeshing && meshing.Quadrics == nil {
		return nil, fmt.Errorf("%w: no quadric mesher", ErrInvalidParameters)
	}
	if !meshing.SuppressQsicMeshing && meshing.Qsics == nil {
		return nil, fmt.Errorf("%w: no curve mesher", ErrInvalidParameters)
	}
	if problem.Truncated {
		o.Logger.Warn("scene coordinates truncated for exact computation", "digits", problem.Digits)
	}
	if err := engine.CreateFromScene(problem, params); err != nil {
		return nil, fmt.Errorf("cspace: exact engine: %w", err)
	}

	rep := engine.Rep()
	s := &ExactSpace{
		baseSpace: baseSpace{router: NewGenericRouter(engine)},
		backend:   o.Backend,
		clip:      meshing.ViewClipPlane,
	}

	if !meshing.SuppressQuadricMeshing {
		for i, q := range rep.SpinQuadrics() {
			pos, neg, err := meshing.Quadrics.MeshTriangleSoup(q, QuadricAngularBound, QuadricRadiusBound, QuadricDistanceBound)
			if err != nil {
				return nil, fmt.Errorf("cspace: meshing quadric %d: %w", i, err)
			}
			s.quadrics = append(s.quadrics, meshPair{o.Backend.NewTriangleMesh(pos), o.Backend.NewTriangleMesh(neg)})
		}
	}

	if !meshing.SuppressQsicMeshing && !params.SuppressQsicCalculation {
		for i, q := range rep.Qsics() {
			for c := 0; c < q.ComponentCount(); c++ {
				if q.ComponentDimension(c) != 1 {
					continue
				}
				samples, err := meshing.Qsics.MeshComponent(q, c, QsicRadiusBound)
				if err != nil {
					return nil, fmt.Errorf("cspace: meshing curve %d component %d: %w", i, c, err)
				}
				sheets := spin.PairSheets(samples)
				s.curves = append(s.curves, meshPair{
					o.Backend.NewPolyConeMesh(sheets.Positive, QsicTubeRadius, QsicTubeSides),
					o.Backend.NewPolyConeMesh(sheets.Negative, QsicTubeRadius, QsicTubeSides),
				})
			}
		}
	}

	if !meshing.SuppressQsipMeshing && !params.SuppressQsipCalculation {
		for _, p := range rep.Qsips() {
			pt := p.Point()
			s.points = append(s.points, meshPair{
				o.Backend.NewSpinPointMesh(pt, QsipMarkerRadius),
				o.Backend.NewSpinPointMesh(pt.Neg(), QsipMarkerRadius),
			})
		}
	}

	o.Logger.Debug("exact configuration space computed",
		"quadrics", len(s.quadrics), "curves", len(s.curves), "points", len(s.points))
	return s, nil
}

// ReadExactSpace always fails: exact spaces have no persisted form.
func ReadExactSpace(io.Reader, *Options) (*ExactSpace, error) {
	return nil, fmt.Errorf("%w: loading an exact configuration space", ErrUnsupported)
}

// Save always fails: exact spaces have no persisted form.
func (s *ExactSpace) Save(io.Writer) error {
	return fmt.Errorf("%w: saving an exact configuration space", ErrUnsupported)
}

// Render draws the quadric sheets, then the curve tubes and points.
func (s *ExactSpace) Render() {
	if s.clip {
		s.backend.SetViewClipPlane(true)
		defer s.backend.SetViewClipPlane(false)
	}

	s.backend.SetMaterial(QuadricMaterial)
	for _, p := range s.quadrics {
		p.render()
	}

	s.backend.SetMaterial(CurveMaterial)
	for _, p := range s.curves {
		p.render()
	}
	for _, p := range s.points {
		p.render()
	}
}

func (s *ExactSpace) NeedsLighting() bool { return true }

// MeshCounts returns the number of quadric, curve and point mesh pairs.
func (s *ExactSpace) MeshCounts() (quadrics, curves, points int) {
	return len(s.quadrics), len(s.curves), len(s.points)
}
