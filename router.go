package cspace

import (
	"gonum.org/v1/gonum/num/quat"

	"github.com/absfs/cspace/spin"
)

// GenericRouter adapts an engine configuration to Router. It is the one
// place where application quaternions and engine spins are converted into
// each other.
type GenericRouter[C RouteFinder] struct {
	config C
}

// NewGenericRouter wraps a built engine configuration.
func NewGenericRouter[C RouteFinder](config C) *GenericRouter[C] {
	return &GenericRouter[C]{config: config}
}

// Configuration returns the wrapped engine configuration.
func (r *GenericRouter[C]) Configuration() C {
	return r.config
}

// FindRoute converts both endpoints to spins and asks the engine. It returns
// nil when the engine reports no valid route.
func (r *GenericRouter[C]) FindRoute(begin, end quat.Number) Route {
	route := r.config.FindRoute(spin.FromQuaternion(begin), spin.FromQuaternion(end))
	if route == nil || !route.IsValid() {
		return nil
	}
	return &GenericRoute{route: route}
}

// GenericRoute adapts an engine route to Route.
type GenericRoute struct {
	route EngineRoute
}

// Evaluate returns the orientation at t.
func (r *GenericRoute) Evaluate(t float64) quat.Number {
	return r.route.Evaluate(t).Quaternion()
}

// EngineRoute returns the wrapped engine route.
func (r *GenericRoute) EngineRoute() EngineRoute {
	return r.route
}
