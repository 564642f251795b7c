// Package enginetest is a small deterministic representation engine for
// tests and demos. It decides occupancy by rotating the movable balls (or
// the bounding balls of the movable triangles) with a spin and checking them
// against the obstacle balls.
package enginetest

import (
	"math"
	"math/big"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/absfs/cspace"
	"github.com/absfs/cspace/scene"
	"github.com/absfs/cspace/spin"
)

type sphere struct {
	center r3.Vec
	radius float64
}

// world is the collision model shared by all configurations.
type world struct {
	movable   []sphere
	obstacles []sphere
}

func newWorld(p *scene.Problem) *world {
	return &world{movable: spheres(p.Movable), obstacles: spheres(p.Obstacles)}
}

func spheres(g scene.Geometry) []sphere {
	var out []sphere
	for _, b := range g.Balls {
		out = append(out, sphere{center: b.Center, radius: b.Radius})
	}
	for _, t := range g.Triangles {
		c := r3.Scale(1.0/3, r3.Add(r3.Add(t[0], t[1]), t[2]))
		r := 0.0
		for _, v := range t {
			r = math.Max(r, r3.Norm(r3.Sub(v, c)))
		}
		out = append(out, sphere{center: c, radius: r})
	}
	return out
}

// Collides reports whether the movable set rotated by s touches an obstacle.
func (w *world) Collides(s spin.Spin) bool {
	for _, m := range w.movable {
		c := s.Rotate(m.center)
		for _, o := range w.obstacles {
			if r3.Norm(r3.Sub(c, o.center)) <= m.radius+o.radius {
				return true
			}
		}
	}
	return false
}

// sheets returns the two spins above the cube point p, or false when p is
// outside the unit ball.
func sheets(p r3.Vec) (pos, neg spin.Spin, ok bool) {
	d := 1 - r3.Dot(p, p)
	if d < 0 {
		return spin.Spin{}, spin.Spin{}, false
	}
	s0 := math.Sqrt(d)
	pos = spin.Spin{S12: p.X, S23: p.Y, S31: p.Z, S0: s0}
	neg = spin.Spin{S12: p.X, S23: p.Y, S31: p.Z, S0: -s0}
	return pos, neg, true
}

// route interpolates linearly between two spins and normalizes.
type route struct {
	begin, end spin.Spin
	valid      bool
}

func (r *route) IsValid() bool { return r.valid }

func (r *route) Evaluate(t float64) spin.Spin {
	switch {
	case t <= 0:
		return r.begin
	case t >= 1:
		return r.end
	}
	return spin.Spin{
		S12: r.begin.S12 + t*(r.end.S12-r.begin.S12),
		S23: r.begin.S23 + t*(r.end.S23-r.begin.S23),
		S31: r.begin.S31 + t*(r.end.S31-r.begin.S31),
		S0:  r.begin.S0 + t*(r.end.S0-r.begin.S0),
	}.Normalize()
}

// findRoute returns a route that is valid when both endpoints are free and
// not antipodal.
func findRoute(w *world, begin, end spin.Spin) cspace.EngineRoute {
	r := &route{begin: begin, end: end}
	if w == nil {
		return r
	}
	r.valid = !w.Collides(begin) && !w.Collides(end) && begin.Dot(end) > -0.999
	return r
}

// Raster is a RasterConfiguration.
type Raster struct {
	world      *world
	resolution int
}

var _ cspace.RasterConfiguration = (*Raster)(nil)

func (r *Raster) CreateFromScene(p *scene.Problem, params cspace.RasterParameters) error {
	r.world = newWorld(p)
	r.resolution = params.Resolution
	return nil
}

func (r *Raster) Rep() cspace.RasterRepresentation { return r }

func (r *Raster) Resolution() int { return r.resolution }

func (r *Raster) Voxel(u, v, w int) cspace.RasterVoxel {
	p := r3.Vec{
		X: spin.GridCoordinate(u, r.resolution),
		Y: spin.GridCoordinate(v, r.resolution),
		Z: spin.GridCoordinate(w, r.resolution),
	}
	pos, neg, ok := sheets(p)
	if !ok {
		return rasterVoxel{}
	}
	return rasterVoxel{real: true, pos: r.world.Collides(pos), neg: r.world.Collides(neg)}
}

func (r *Raster) FindRoute(begin, end spin.Spin) cspace.EngineRoute {
	return findRoute(r.world, begin, end)
}

type rasterVoxel struct {
	real, pos, neg bool
}

func (v rasterVoxel) IsReal() bool { return v.real }

func (v rasterVoxel) Value(c cspace.Cover) bool {
	if c == cspace.CoverPositive {
		return v.pos
	}
	return v.neg
}

// Halton returns the i-th point of the Halton sequence in base b, in [0, 1).
func Halton(i, b int) float64 {
	f, r := 1.0, 0.0
	for i > 0 {
		f /= float64(b)
		r += f * float64(i%b)
		i /= b
	}
	return r
}

// CellGrid is the number of cells per axis of the cell decomposition.
const CellGrid = 4

// Cells is a CellConfiguration. Samples are Halton points of the unit ball
// lifted to the positive sheet and bucketed on a CellGrid³ lattice.
type Cells struct {
	world *world
	cells []cspace.Cell
	count int
}

var _ cspace.CellConfiguration = (*Cells)(nil)

func (c *Cells) CreateFromScene(p *scene.Problem, params cspace.CellParameters) error {
	c.world = newWorld(p)
	c.count = 0
	buckets := make(map[int]*cell)
	var order []int
	for i := 1; c.count < params.SampleCount; i++ {
		pt := r3.Vec{X: 2*Halton(i, 2) - 1, Y: 2*Halton(i, 3) - 1, Z: 2*Halton(i, 5) - 1}
		s, _, ok := sheets(pt)
		if !ok {
			continue
		}
		key := bucket(pt.X)*CellGrid*CellGrid + bucket(pt.Y)*CellGrid + bucket(pt.Z)
		b, seen := buckets[key]
		if !seen {
			b = &cell{empty: true}
			buckets[key] = b
			order = append(order, key)
		}
		b.samples = append(b.samples, s)
		if c.world.Collides(s) {
			b.empty = false
		}
		c.count++
	}
	c.cells = make([]cspace.Cell, len(order))
	for i, key := range order {
		c.cells[i] = buckets[key]
	}
	return nil
}

func bucket(x float64) int {
	return min(int((x+1)/2*CellGrid), CellGrid-1)
}

func (c *Cells) Rep() cspace.CellRepresentation { return c }

func (c *Cells) Cells() []cspace.Cell { return c.cells }

func (c *Cells) SampleCount() int { return c.count }

func (c *Cells) FindRoute(begin, end spin.Spin) cspace.EngineRoute {
	return findRoute(c.world, begin, end)
}

type cell struct {
	empty   bool
	samples []spin.Spin
}

func (c *cell) IsEmpty() bool        { return c.empty }
func (c *cell) Samples() []spin.Spin { return c.samples }

// Quadric is the toy spin quadric of one movable/obstacle pair.
type Quadric struct {
	Movable, Obstacle int
	// Contact is the spin of first contact along the pair's axis.
	Contact spin.Spin
}

// Qsic is the toy curve shared by two consecutive quadrics. Component 0 is
// a curve, component 1 an isolated point.
type Qsic struct {
	A, B   int
	Center spin.Spin
}

func (q *Qsic) ComponentCount() int { return 2 }

func (q *Qsic) ComponentDimension(c int) int {
	if c == 0 {
		return 1
	}
	return 0
}

type qsip struct{ p spin.Spin }

func (q qsip) Point() spin.Spin { return q.p }

// Exact is an ExactConfiguration over the integer scene.
type Exact struct {
	world    *world
	quadrics []cspace.SpinQuadric
	qsics    []cspace.Qsic
	qsips    []cspace.Qsip
}

var _ cspace.ExactConfiguration = (*Exact)(nil)

func (e *Exact) CreateFromScene(p *scene.ExactProblem, params cspace.ExactParameters) error {
	scale := new(big.Rat).SetFrac(big.NewInt(1), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(p.Digits)), nil))
	e.world = &world{movable: intSpheres(p.Movable, scale), obstacles: intSpheres(p.Obstacles, scale)}

	e.quadrics, e.qsics, e.qsips = nil, nil, nil
	for i, m := range e.world.movable {
		for j, o := range e.world.obstacles {
			e.quadrics = append(e.quadrics, &Quadric{Movable: i, Obstacle: j, Contact: spin.FromVectorAlign(m.center, o.center)})
		}
	}
	if params.SuppressQsicCalculation {
		return nil
	}
	for k := 0; k+1 < len(e.quadrics); k++ {
		a, b := e.quadrics[k].(*Quadric), e.quadrics[k+1].(*Quadric)
		center := spin.Spin{
			S12: a.Contact.S12 + b.Contact.S12,
			S23: a.Contact.S23 + b.Contact.S23,
			S31: a.Contact.S31 + b.Contact.S31,
			S0:  a.Contact.S0 + b.Contact.S0,
		}.Normalize()
		e.qsics = append(e.qsics, &Qsic{A: k, B: k + 1, Center: center})
		if !params.SuppressQsipCalculation {
			e.qsips = append(e.qsips, qsip{p: center})
		}
	}
	return nil
}

func intSpheres(g scene.IntGeometry, scale *big.Rat) []sphere {
	f := func(v *big.Int) float64 {
		x, _ := new(big.Rat).Mul(new(big.Rat).SetInt(v), scale).Float64()
		return x
	}
	vec := func(v scene.IntVec) r3.Vec { return r3.Vec{X: f(v[0]), Y: f(v[1]), Z: f(v[2])} }

	var out []sphere
	for _, b := range g.Balls {
		out = append(out, sphere{center: vec(b.Center), radius: f(b.Radius)})
	}
	for _, t := range g.Triangles {
		ft := scene.FloatTriangle{vec(t[0]), vec(t[1]), vec(t[2])}
		out = append(out, spheres(scene.Geometry{Triangles: []scene.FloatTriangle{ft}})...)
	}
	return out
}

func (e *Exact) Rep() cspace.ExactRepresentation { return e }

func (e *Exact) SpinQuadrics() []cspace.SpinQuadric { return e.quadrics }
func (e *Exact) Qsics() []cspace.Qsic               { return e.qsics }
func (e *Exact) Qsips() []cspace.Qsip               { return e.qsips }

func (e *Exact) FindRoute(begin, end spin.Spin) cspace.EngineRoute {
	return findRoute(e.world, begin, end)
}

// Mesher implements the quadric and curve meshers for the toy exact engine.
type Mesher struct {
	// Samples is the number of curve samples; 0 means 16.
	Samples int
	// Fail makes every call return an error.
	Fail error
}

var (
	_ cspace.QuadricMesher = Mesher{}
	_ cspace.QsicMesher    = Mesher{}
)

// MeshTriangleSoup returns one triangle per sheet at the contact spin.
func (m Mesher) MeshTriangleSoup(q cspace.SpinQuadric, angularBound, radiusBound, distanceBound float64) (pos, neg []cspace.SmoothTriangle, err error) {
	if m.Fail != nil {
		return nil, nil, m.Fail
	}
	c := q.(*Quadric).Contact.Vector()
	tri := func(c r3.Vec) cspace.SmoothTriangle {
		return cspace.FlatTriangle(c, r3.Add(c, r3.Vec{X: radiusBound}), r3.Add(c, r3.Vec{Y: radiusBound}))
	}
	return []cspace.SmoothTriangle{tri(c)}, []cspace.SmoothTriangle{tri(r3.Scale(-1, c))}, nil
}

// MeshComponent samples a small closed loop around the curve center.
func (m Mesher) MeshComponent(q cspace.Qsic, component int, radiusBound float64) ([]spin.Spin, error) {
	if m.Fail != nil {
		return nil, m.Fail
	}
	n := m.Samples
	if n == 0 {
		n = 16
	}
	c := q.(*Qsic).Center
	out := make([]spin.Spin, n+1)
	for i := range out {
		a := 2 * math.Pi * float64(i) / float64(n)
		out[i] = spin.Spin{
			S12: c.S12 + radiusBound*math.Cos(a),
			S23: c.S23 + radiusBound*math.Sin(a),
			S31: c.S31,
			S0:  c.S0,
		}.Normalize()
	}
	return out, nil
}
