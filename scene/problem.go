package scene

import (
	"errors"
	"math/big"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrEmptyScene is returned for a scene without objects.
	ErrEmptyScene = errors.New("scene: the scene must not be empty")

	// ErrMixedScene is returned when balls and triangles are combined.
	ErrMixedScene = errors.New("scene: the scene must contain spheres or triangles only")

	// ErrIncompleteScene is returned when the scene has no rotating or no
	// static primitives.
	ErrIncompleteScene = errors.New("scene: neither movable nor obstacles can be empty")
)

// MaxExactFractionDigits bounds the scale applied when converting a scene
// to integers. Coordinates with more fraction digits are truncated.
const MaxExactFractionDigits = 32

// FloatBall is a ball in float64 coordinates.
type FloatBall struct {
	Center r3.Vec
	Radius float64
}

// FloatTriangle is a triangle in float64 coordinates.
type FloatTriangle [3]r3.Vec

// Normal returns the unnormalized normal (b-a)×(c-a).
func (t FloatTriangle) Normal() r3.Vec {
	return r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
}

// Geometry is one side of a problem. Only the field matching the problem
// kind is populated.
type Geometry struct {
	Balls     []FloatBall
	Triangles []FloatTriangle
}

// Problem is a scene split into the rotating robot and the static
// obstacles, in float64 coordinates.
type Problem struct {
	Kind      ObjectKind
	Movable   Geometry
	Obstacles Geometry
}

// Problem assembles the motion-planning problem: rotating objects form the
// movable set, the others the obstacles.
func (s *Scene) Problem() (*Problem, error) {
	kind, err := s.kind()
	if err != nil {
		return nil, err
	}
	p := &Problem{Kind: kind}
	for _, o := range s.Objects {
		target := &p.Obstacles
		if o.Rotating {
			target = &p.Movable
		}
		for _, b := range o.Balls {
			target.Balls = append(target.Balls, FloatBall{Center: b.Center.Float(), Radius: b.Radius.Float64()})
		}
		for _, t := range o.Triangles {
			target.Triangles = append(target.Triangles, FloatTriangle{
				t.Vertices[0].Float(), t.Vertices[1].Float(), t.Vertices[2].Float(),
			})
		}
	}
	if p.Movable.len(kind) == 0 || p.Obstacles.len(kind) == 0 {
		return nil, ErrIncompleteScene
	}
	return p, nil
}

func (g *Geometry) len(kind ObjectKind) int {
	if kind == KindBallList {
		return len(g.Balls)
	}
	return len(g.Triangles)
}

func (s *Scene) kind() (ObjectKind, error) {
	if len(s.Objects) == 0 {
		return 0, ErrEmptyScene
	}
	kind := s.Objects[0].Kind
	for _, o := range s.Objects[1:] {
		if o.Kind != kind {
			return 0, ErrMixedScene
		}
	}
	return kind, nil
}

// IntVec is a point with integer coordinates.
type IntVec [3]*big.Int

// IntBall is a ball with integer center and radius.
type IntBall struct {
	Center IntVec
	Radius *big.Int
}

// IntTriangle is a triangle with integer vertices.
type IntTriangle [3]IntVec

// IntGeometry is one side of an exact problem.
type IntGeometry struct {
	Balls     []IntBall
	Triangles []IntTriangle
}

// ExactProblem is a scene scaled by 10^Digits onto the integers.
type ExactProblem struct {
	Kind      ObjectKind
	Digits    int
	Truncated bool
	Movable   IntGeometry
	Obstacles IntGeometry
}

// Exact assembles the problem over the integers. Every coordinate is scaled
// by the same power of ten, the smallest that makes all of them integral,
// capped at MaxExactFractionDigits; Truncated reports that the cap applied.
func (s *Scene) Exact() (*ExactProblem, error) {
	kind, err := s.kind()
	if err != nil {
		return nil, err
	}

	digits := 0
	update := func(d Decimal) {
		if n := d.FractionDigits(); n > digits {
			digits = n
		}
	}
	for _, o := range s.Objects {
		for _, b := range o.Balls {
			update(b.Center.X)
			update(b.Center.Y)
			update(b.Center.Z)
			update(b.Radius)
		}
		for _, t := range o.Triangles {
			for _, v := range t.Vertices {
				update(v.X)
				update(v.Y)
				update(v.Z)
			}
		}
	}

	p := &ExactProblem{Kind: kind, Digits: digits}
	if digits > MaxExactFractionDigits {
		p.Digits = MaxExactFractionDigits
		p.Truncated = true
	}
	scale := func(v Vec3) IntVec {
		return IntVec{v.X.Scaled(p.Digits), v.Y.Scaled(p.Digits), v.Z.Scaled(p.Digits)}
	}

	for _, o := range s.Objects {
		target := &p.Obstacles
		if o.Rotating {
			target = &p.Movable
		}
		for _, b := range o.Balls {
			target.Balls = append(target.Balls, IntBall{Center: scale(b.Center), Radius: b.Radius.Scaled(p.Digits)})
		}
		for _, t := range o.Triangles {
			target.Triangles = append(target.Triangles, IntTriangle{
				scale(t.Vertices[0]), scale(t.Vertices[1]), scale(t.Vertices[2]),
			})
		}
	}

	mv, ob := len(p.Movable.Balls), len(p.Obstacles.Balls)
	if kind == KindTriangleList {
		mv, ob = len(p.Movable.Triangles), len(p.Obstacles.Triangles)
	}
	if mv == 0 || ob == 0 {
		return nil, ErrIncompleteScene
	}
	return p, nil
}
