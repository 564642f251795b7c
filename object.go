package cspace

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
)

// Kind is the shape of an Object. The values are the persisted type tags.
type Kind uint32

const (
	KindRaster Kind = 0
	KindCell   Kind = 1
	KindExact  Kind = 2
	KindRoute  Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindRaster:
		return "RasterConfigurationSpace"
	case KindCell:
		return "CellConfigurationSpace"
	case KindExact:
		return "ExactConfigurationSpace"
	case KindRoute:
		return "SampledRoute"
	}
	return "<unknown>"
}

// Object owns exactly one configuration space, or a route with its sampled
// rendering. Its kind never changes after construction. Objects start
// visible.
type Object struct {
	kind    Kind
	raster  *RasterSpace
	cell    *CellSpace
	exact   *ExactSpace
	route   Route
	sampled *SampledRoute
	visible bool
	id      uuid.UUID
}

func newObject(kind Kind) *Object {
	return &Object{kind: kind, visible: true, id: uuid.New()}
}

// NewRasterObject wraps a raster space.
func NewRasterObject(s *RasterSpace) *Object {
	o := newObject(KindRaster)
	o.raster = s
	return o
}

// NewCellObject wraps a cell space.
func NewCellObject(s *CellSpace) *Object {
	o := newObject(KindCell)
	o.cell = s
	return o
}

// NewExactObject wraps an exact space.
func NewExactObject(s *ExactSpace) *Object {
	o := newObject(KindExact)
	o.exact = s
	return o
}

// NewRouteObject wraps a found route and samples it for rendering.
func NewRouteObject(route Route, opts *Options) *Object {
	o := newObject(KindRoute)
	o.route = route
	o.sampled = NewSampledRoute(route, opts)
	return o
}

func (o *Object) Kind() Kind { return o.kind }

// ID identifies the object for the lifetime of the process.
func (o *Object) ID() uuid.UUID { return o.id }

func (o *Object) Visible() bool     { return o.visible }
func (o *Object) SetVisible(v bool) { o.visible = v }

// Space returns the owned space; for a route it is the sampled route.
func (o *Object) Space() ConfigurationSpace {
	switch {
	case o.kind == KindRaster && o.raster != nil:
		return o.raster
	case o.kind == KindCell && o.cell != nil:
		return o.cell
	case o.kind == KindExact && o.exact != nil:
		return o.exact
	case o.kind == KindRoute && o.sampled != nil:
		return o.sampled
	}
	return nil
}

// Raster returns the raster space, or nil for other kinds.
func (o *Object) Raster() *RasterSpace { return o.raster }

// Cell returns the cell space, or nil for other kinds.
func (o *Object) Cell() *CellSpace { return o.cell }

// Exact returns the exact space, or nil for other kinds.
func (o *Object) Exact() *ExactSpace { return o.exact }

// Route returns the route of a route object, or nil.
func (o *Object) Route() Route { return o.route }

// SampledRoute returns the sampled route of a route object, or nil.
func (o *Object) SampledRoute() *SampledRoute { return o.sampled }

// FindRoute searches the owned space. It returns nil, without error, when
// the space has no router or no route exists.
func (o *Object) FindRoute(begin, end quat.Number) Route {
	if o.kind == KindRoute {
		return nil
	}
	space := o.Space()
	if space == nil {
		return nil
	}
	router := space.Router()
	if router == nil {
		return nil
	}
	return router.FindRoute(begin, end)
}

func (o *Object) String() string {
	return fmt.Sprintf("%s(%s)", o.kind, o.id)
}
